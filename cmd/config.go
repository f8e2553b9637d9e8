package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"libsync/internal/config"
	"libsync/internal/logger"
)

// configCmd groups configuration helpers.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the libsync configuration file",
}

// configInitCmd writes the default configuration into the project.
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default " + config.FileName + " to the project root",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = filepath.Join(projectDir, config.FileName)
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		logger.Info("[INFO] Wrote default configuration to %s\n", logger.Highlight(path))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
