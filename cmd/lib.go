package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"libsync/internal/installer"
)

var (
	// version is the release to install; "latest" asks the feed.
	version string

	// assumeYes skips the overwrite confirmation.
	assumeYes bool
)

// libCmd reports the installed library version against the feed's latest release.
var libCmd = &cobra.Command{
	Use:   "lib",
	Short: "Show the installed library version and the latest release",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := installer.NewSyncer(cfg)
		if err != nil {
			return err
		}
		_, err = s.Status(cmd.Context())
		return err
	},
}

// libUpdateCmd replaces the library with the requested release, or runs the
// package manager when the library is managed by one.
var libUpdateCmd = &cobra.Command{
	Use:     "update",
	Aliases: []string{"up"},
	Short:   "Update the library to the latest or a specific release",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := installer.NewSyncer(cfg,
			installer.WithAssumeYes(assumeYes),
			installer.WithProgressOutput(os.Stderr),
		)
		if err != nil {
			return err
		}
		return s.Update(cmd.Context(), version)
	},
}

func init() {
	libUpdateCmd.Flags().StringVarP(&version, "version", "v", "latest", "Release version to install")
	libUpdateCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Replace the library without asking")

	libCmd.AddCommand(libUpdateCmd)
	rootCmd.AddCommand(libCmd)
}
