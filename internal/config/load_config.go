package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
	"libsync/internal/logger"
)

const (
	// FileName is the per-project config file looked up in the project root.
	FileName = ".libsync.yaml"

	envPrefix = "LIBSYNC"
)

// Load resolves the configuration for the project at projectDir.
// configFile overrides the default <projectDir>/.libsync.yaml; an explicitly
// named file must exist, the default one is optional.
// The proxy is also read from the PROXY environment variable.
func Load(projectDir, configFile string) (*Config, error) {
	absProject, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("resolving project dir %s: %w", projectDir, err)
	}

	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("proxy", envPrefix+"_PROXY", "PROXY"); err != nil {
		return nil, fmt.Errorf("binding proxy env: %w", err)
	}

	explicit := configFile != ""
	if !explicit {
		configFile = filepath.Join(absProject, FileName)
	}
	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		if explicit || !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", configFile, err)
		}
		logger.Debug("[DEBUG] No config file at %s, using defaults\n", configFile)
	} else {
		logger.Debug("[DEBUG] Loaded config from %s\n", configFile)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.ProjectDir = absProject

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every leaf of d with v so env overrides and
// Unmarshal see the full key set even without a config file.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("web_dir", d.WebDir)
	v.SetDefault("lib_dir", d.LibDir)
	v.SetDefault("proxy", d.Proxy)
	v.SetDefault("feed.url", d.Feed.URL)
	v.SetDefault("archive.base_url", d.Archive.BaseURL)
	v.SetDefault("archive.repo", d.Archive.Repo)
	v.SetDefault("archive.format", d.Archive.Format)
	v.SetDefault("archive.file_name", d.Archive.FileName)
	v.SetDefault("archive.exclude", d.Archive.Exclude)
	v.SetDefault("package_manager.manifest", d.PackageManager.Manifest)
	v.SetDefault("package_manager.command", d.PackageManager.Command)
	v.SetDefault("manifest.path", d.Manifest.Path)
	v.SetDefault("manifest.dependency", d.Manifest.Dependency)
}

// Validate reports configuration values the pipeline cannot work with.
func (c *Config) Validate() error {
	if c.LibDir == "" {
		return fmt.Errorf("config: lib_dir must not be empty")
	}
	if c.Feed.URL == "" {
		return fmt.Errorf("config: feed.url must not be empty")
	}
	if strings.Count(c.Archive.Repo, "/") != 1 {
		return fmt.Errorf("config: archive.repo must be owner/repo, got %q", c.Archive.Repo)
	}
	switch c.Archive.Format {
	case "zip", "tar.gz", "tar.xz", "7z":
	default:
		return fmt.Errorf("config: unsupported archive.format %q", c.Archive.Format)
	}
	if len(c.PackageManager.Command) == 0 {
		return fmt.Errorf("config: package_manager.command must not be empty")
	}
	return nil
}

// WriteDefault renders the default configuration as YAML to path.
// An existing file is left untouched and reported as an error.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("marshaling default config: %w", err)
	}

	logger.Debug("[DEBUG] Writing default config to %s:\n%s\n", path, string(data))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}
