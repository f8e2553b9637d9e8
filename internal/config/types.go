package config

import "path/filepath"

// Config is the fully resolved configuration for one libsync invocation.
// Values come from built-in defaults, an optional .libsync.yaml in the project
// root, and LIBSYNC_* environment variables, in increasing precedence.
type Config struct {
	// ProjectDir is the project root every relative path below is resolved against.
	ProjectDir string `yaml:"-" mapstructure:"-"`

	// WebDir must exist for ProjectDir to be considered a project (e.g., www).
	WebDir string `yaml:"web_dir" mapstructure:"web_dir"`

	// LibDir is the library directory relative to ProjectDir (e.g., www/lib/ionic).
	LibDir string `yaml:"lib_dir" mapstructure:"lib_dir"`

	// Proxy is an optional proxy URL applied to feed and archive requests.
	Proxy string `yaml:"proxy,omitempty" mapstructure:"proxy"`

	Feed           Feed           `yaml:"feed" mapstructure:"feed"`
	Archive        Archive        `yaml:"archive" mapstructure:"archive"`
	PackageManager PackageManager `yaml:"package_manager" mapstructure:"package_manager"`
	Manifest       Manifest       `yaml:"manifest" mapstructure:"manifest"`
}

// Feed describes the remote version feed.
// - URL: base URL serving latest.json and <version>/version.json.
type Feed struct {
	URL string `yaml:"url" mapstructure:"url"`
}

// Archive describes where release archives come from and how they are unpacked.
// - BaseURL: host serving <owner>/<repo>/archive/v<version>.<format>.
// - Repo: owner/repo publishing the release archives.
// - Format: zip, tar.gz, tar.xz or 7z.
// - FileName: base name of the downloaded archive inside the library dir.
// - Exclude: regular expressions matched against entry paths; matches are never written.
type Archive struct {
	BaseURL  string   `yaml:"base_url" mapstructure:"base_url"`
	Repo     string   `yaml:"repo" mapstructure:"repo"`
	Format   string   `yaml:"format" mapstructure:"format"`
	FileName string   `yaml:"file_name" mapstructure:"file_name"`
	Exclude  []string `yaml:"exclude" mapstructure:"exclude"`
}

// PackageManager describes the external package manager that takes over
// updates when its manifest is present in the library directory.
type PackageManager struct {
	Manifest string   `yaml:"manifest" mapstructure:"manifest"`
	Command  []string `yaml:"command" mapstructure:"command"`
}

// Manifest describes the project-level manifest that mirrors the installed version.
// - Path: manifest path relative to ProjectDir.
// - Dependency: key under devDependencies that receives "<repo>#<version>".
type Manifest struct {
	Path       string `yaml:"path" mapstructure:"path"`
	Dependency string `yaml:"dependency" mapstructure:"dependency"`
}

// Default returns the built-in configuration for an Ionic project.
func Default() Config {
	return Config{
		WebDir: "www",
		LibDir: "www/lib/ionic",
		Feed: Feed{
			URL: "http://code.ionicframework.com",
		},
		Archive: Archive{
			BaseURL:  "https://github.com",
			Repo:     "driftyco/ionic-bower",
			Format:   "zip",
			FileName: "ionic",
			Exclude:  []string{`(?i)bower.json|readme`},
		},
		PackageManager: PackageManager{
			Manifest: "bower.json",
			Command:  []string{"bower", "update", "ionic"},
		},
		Manifest: Manifest{
			Path:       "bower.json",
			Dependency: "ionic",
		},
	}
}

// WebPath returns the absolute web directory.
func (c *Config) WebPath() string {
	return filepath.Join(c.ProjectDir, c.WebDir)
}

// LibPath returns the absolute library directory.
func (c *Config) LibPath() string {
	return filepath.Join(c.ProjectDir, c.LibDir)
}

// ManifestPath returns the absolute path of the project-level manifest.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.ProjectDir, c.Manifest.Path)
}
