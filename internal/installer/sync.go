package installer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"libsync/internal/config"
	"libsync/internal/feed"
	"libsync/internal/logger"
	"libsync/internal/manifest"
	"libsync/internal/state"
	"libsync/internal/syncerr"
)

// Strategy is how a sync run updates the library. It is chosen once per run.
type Strategy int

const (
	// DirectArchive resolves, downloads, extracts and records the release itself.
	DirectArchive Strategy = iota
	// DelegatedPackageManager hands the update to the project's package manager.
	DelegatedPackageManager
)

func (s Strategy) String() string {
	switch s {
	case DirectArchive:
		return "direct-archive"
	case DelegatedPackageManager:
		return "delegated-package-manager"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// State is the position of a sync run in the pipeline.
// Runs only move forward; Failed is terminal and reachable from any state but Idle.
type State int

const (
	Idle State = iota
	ResolvingVersion
	Fetching
	Installing
	Recording
	Done
	Failed
)

var stateNames = [...]string{"Idle", "ResolvingVersion", "Fetching", "Installing", "Recording", "Done", "Failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// VersionResolver turns a version spec into a release descriptor.
type VersionResolver interface {
	Resolve(ctx context.Context, spec string) (feed.Descriptor, error)
}

// ArchiveFetcher downloads the release archive for a descriptor.
type ArchiveFetcher interface {
	Fetch(ctx context.Context, d feed.Descriptor, libDir string) (ArchiveHandle, error)
}

// ArchiveInstaller unpacks a downloaded archive into the library directory.
type ArchiveInstaller interface {
	Install(h ArchiveHandle, destDir string) (Report, error)
}

// VersionRecorder persists the installed version.
type VersionRecorder interface {
	Record(d feed.Descriptor, destDir string) error
}

// Syncer runs one library sync against a project. Create a new Syncer per run;
// Update refuses to run twice, whatever the first run's outcome.
type Syncer struct {
	cfg *config.Config

	resolver  VersionResolver
	fetcher   ArchiveFetcher
	installer ArchiveInstaller
	recorder  VersionRecorder
	pm        PackageManager

	in        io.Reader
	out       io.Writer
	assumeYes bool

	used       bool
	state      State
	strategy   Strategy
	descriptor feed.Descriptor
}

// SyncOption configures a Syncer.
type SyncOption func(*Syncer)

// WithPrompt sets where the confirmation prompt reads answers and writes questions.
func WithPrompt(in io.Reader, out io.Writer) SyncOption {
	return func(s *Syncer) {
		s.in = in
		s.out = out
	}
}

// WithAssumeYes skips the confirmation prompt.
func WithAssumeYes(yes bool) SyncOption {
	return func(s *Syncer) {
		s.assumeYes = yes
	}
}

// WithPackageManager replaces the external package manager runner.
func WithPackageManager(pm PackageManager) SyncOption {
	return func(s *Syncer) {
		s.pm = pm
	}
}

// WithProgressOutput draws the download progress bar on w.
func WithProgressOutput(w io.Writer) SyncOption {
	return func(s *Syncer) {
		if f, ok := s.fetcher.(*Fetcher); ok {
			f.progress = NewProgressBar(w)
		}
	}
}

// NewSyncer wires the default pipeline for cfg: feed resolver and archive
// fetcher sharing one proxied HTTP client, the archive installer, and a
// version recorder that mirrors into the project's bower.json.
func NewSyncer(cfg *config.Config, opts ...SyncOption) (*Syncer, error) {
	client, err := feed.NewHTTPClient(cfg.Proxy)
	if err != nil {
		return nil, err
	}
	if cfg.Proxy != "" {
		logger.Debug("[DEBUG] Using proxy %s\n", cfg.Proxy)
	}

	inst, err := NewInstaller(cfg.Archive.Repo, cfg.Archive.Exclude)
	if err != nil {
		return nil, err
	}

	s := &Syncer{
		cfg:       cfg,
		resolver:  feed.NewResolver(cfg.Feed.URL, feed.WithHTTPClient(client)),
		fetcher:   NewFetcher(cfg.Archive, WithHTTPClient(client)),
		installer: inst,
		recorder:  state.NewRecorder(manifest.NewBower(cfg.ManifestPath(), cfg.Manifest.Dependency, cfg.Archive.Repo)),
		pm:        ExecPackageManager{Stdout: os.Stdout, Stderr: os.Stderr},
		in:        os.Stdin,
		out:       os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// State returns where the run currently is.
func (s *Syncer) State() State {
	return s.state
}

// Strategy returns the strategy chosen for the run.
func (s *Syncer) Strategy() Strategy {
	return s.strategy
}

// Descriptor returns the release resolved by the run, if any.
func (s *Syncer) Descriptor() feed.Descriptor {
	return s.descriptor
}

// CheckProject verifies the configured web directory exists, i.e. that the
// project dir is the top level of a project.
func (s *Syncer) CheckProject() error {
	info, err := os.Stat(s.cfg.WebPath())
	if err != nil || !info.IsDir() {
		return syncerr.New(syncerr.ErrProjectNotFound,
			fmt.Sprintf("%q directory cannot be found. Make sure the working directory is at the top level of a project", s.cfg.WebDir), nil)
	}
	return nil
}

// DetectStrategy probes the library directory for the package manager's manifest.
func (s *Syncer) DetectStrategy() Strategy {
	probe := filepath.Join(s.cfg.LibPath(), s.cfg.PackageManager.Manifest)
	if _, err := os.Stat(probe); err == nil {
		logger.Debug("[DEBUG] Found %s, delegating to package manager\n", probe)
		return DelegatedPackageManager
	}
	return DirectArchive
}

// Update brings the library to the version named by spec ("latest" or a
// concrete version).
//
// When the library is managed by a package manager, its update command runs
// instead and its result is final. Otherwise the operator must confirm the
// overwrite before the resolve, fetch, install and record steps run in order.
// Any failure ends the run in Failed; the downloaded archive is removed
// whatever the outcome.
func (s *Syncer) Update(ctx context.Context, spec string) error {
	// One run per Syncer, including declined and delegated runs
	if s.used {
		return fmt.Errorf("sync run already used (state %s)", s.state)
	}
	s.used = true

	// Must be run from the top level of a project
	if err := s.CheckProject(); err != nil {
		return err
	}

	// Strategy is fixed for the rest of the run
	s.strategy = s.DetectStrategy()
	if s.strategy == DelegatedPackageManager {
		logger.Info("[INFO] Library is managed by %s, running package manager update\n", s.cfg.PackageManager.Manifest)
		return s.pm.Run(ctx, s.cfg.ProjectDir, s.cfg.PackageManager.Command)
	}

	// Direct archive installs overwrite the library dir, so ask first
	ok, err := s.confirm()
	if err != nil {
		return err
	}
	if !ok {
		return syncerr.New(syncerr.ErrUserDeclined, "update cancelled", nil)
	}

	return s.runPipeline(ctx, spec)
}

func (s *Syncer) confirm() (bool, error) {
	if s.assumeYes {
		return true, nil
	}
	question := fmt.Sprintf("Are you sure you want to replace %s with an updated version of %s?",
		logger.Highlight(s.cfg.LibPath()), s.cfg.Manifest.Dependency)
	return Confirm(s.in, s.out, question)
}

func (s *Syncer) runPipeline(ctx context.Context, spec string) error {
	libDir := s.cfg.LibPath()

	// Step 1: ask the feed which release the version spec names
	s.transition(ResolvingVersion)
	d, err := s.resolver.Resolve(ctx, spec)
	if err != nil {
		return s.fail(err)
	}
	s.descriptor = d
	if feed.IsLatest(spec) {
		logger.Info("[INFO] Latest version: %s\n", d)
	} else {
		logger.Info("[INFO] Version: %s\n", d)
	}

	// Step 2: download the release archive into the library dir
	s.transition(Fetching)
	h, err := s.fetcher.Fetch(ctx, d, libDir)
	if err != nil {
		return s.fail(err)
	}
	// The archive goes away whatever happens next
	defer s.cleanup(h.Path)

	// Step 3: unpack it over the current library
	s.transition(Installing)
	report, err := s.installer.Install(h, libDir)
	if err != nil {
		return s.fail(err)
	}
	logger.Debug("[DEBUG] Installed %d files, %d dirs, skipped %d entries\n", report.Written, report.Dirs, report.Skipped)

	// Step 4: record the new version only after a clean install
	s.transition(Recording)
	if err := s.recorder.Record(d, libDir); err != nil {
		return s.fail(err)
	}

	s.transition(Done)
	logger.Info("[INFO] %s version updated to: %s\n", s.cfg.Manifest.Dependency, logger.Highlight(d.VersionNumber))
	return nil
}

func (s *Syncer) transition(next State) {
	logger.Debug("[DEBUG] sync: %s -> %s\n", s.state, next)
	s.state = next
}

func (s *Syncer) fail(err error) error {
	s.transition(Failed)
	return err
}

// cleanup removes the downloaded archive. Failures are only logged.
func (s *Syncer) cleanup(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("[WARN] Failed to remove downloaded archive %s: %v\n", path, err)
		return
	}
	logger.Debug("[DEBUG] Removed downloaded archive %s\n", path)
}

// StatusReport compares the installed library with the feed's latest release.
type StatusReport struct {
	Local      state.Metadata  // zero when no metadata could be read
	LocalFile  string          // file Local was read from
	Latest     feed.Descriptor // feed's latest release
	OutOfDate  bool
	LocalKnown bool
}

// Status prints and returns the installed and latest versions.
// A missing local record is reported but is not an error; a feed failure is.
func (s *Syncer) Status(ctx context.Context) (StatusReport, error) {
	var report StatusReport
	if err := s.CheckProject(); err != nil {
		return report, err
	}

	// A missing local record is reported, not fatal
	md, src, err := state.Load(s.cfg.LibPath(), s.cfg.PackageManager.Manifest)
	if err != nil {
		logger.Error("[ERROR] Unable to load %s lib version information\n", s.cfg.Manifest.Dependency)
		logger.Debug("[DEBUG] %v\n", err)
	} else {
		report.Local, report.LocalFile, report.LocalKnown = md, src, true
		logger.Info("[INFO] Local %s version: %s  (%s)\n", s.cfg.Manifest.Dependency, md.Version, src)
	}

	// The feed's latest release is required
	latest, err := s.resolver.Resolve(ctx, feed.Latest)
	if err != nil {
		return report, err
	}
	report.Latest = latest
	logger.Info("[INFO] Latest %s version: %s\n", s.cfg.Manifest.Dependency, latest)

	if !report.LocalKnown {
		return report, nil
	}
	report.OutOfDate = isOutOfDate(md.Version, latest.VersionNumber)
	if report.OutOfDate {
		logger.Warn(" * Local version is out of date\n")
	} else {
		logger.Info(" * Local version up to date\n")
	}
	return report, nil
}

// isOutOfDate compares versions as semver when both parse, and falls back
// to plain inequality otherwise.
func isOutOfDate(local, latest string) bool {
	lv, err1 := semver.NewVersion(local)
	rv, err2 := semver.NewVersion(latest)
	if err1 != nil || err2 != nil {
		return local != latest
	}
	return lv.LessThan(rv)
}
