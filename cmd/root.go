package cmd

import (
	"errors"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"libsync/internal/config"
	"libsync/internal/logger"
	"libsync/internal/syncerr"
)

var (
	// debug enables debug logging via the `--debug` flag.
	debug bool

	// configPath overrides the per-project .libsync.yaml.
	configPath string

	// projectDir is the project root; defaults to the working directory.
	projectDir string
)

// rootCmd is the base command for the `libsync` CLI.
var rootCmd = &cobra.Command{
	Use:   "libsync",
	Short: "Keep a project's vendored front-end library in sync with its release feed",

	SilenceUsage:  true,
	SilenceErrors: true,

	// Initialize the logger before any subcommand runs.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(debug)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default <project>/"+config.FileName+")")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project", "p", ".", "Project root directory")
}

// Execute runs the CLI and exits non-zero on failure. A failed package
// manager run exits with the package manager's own status.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	if errors.Is(err, syncerr.ErrUserDeclined) {
		logger.Warn("[WARN] %v\n", err)
	} else {
		logger.Error("[ERROR] %v\n", err)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		os.Exit(exitErr.ExitCode())
	}
	os.Exit(1)
}

// loadConfig resolves the configuration for the selected project.
func loadConfig() (*config.Config, error) {
	return config.Load(projectDir, configPath)
}
