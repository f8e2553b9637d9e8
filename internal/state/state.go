package state

import (
	"encoding/json" // For JSON encoding and decoding of the metadata file
	"fmt"
	"os" // For file system operations like reading and writing files
	"path/filepath"

	"libsync/internal/feed"
	"libsync/internal/logger" // Custom logger package for logging errors and debug info
	"libsync/internal/syncerr"
)

// FileName is the metadata record inside the library directory.
const FileName = "version.json"

// Metadata is the on-disk record of the installed library version.
// It is the single source of truth for "what version is installed".
type Metadata struct {
	Version  string `json:"version"`  // Installed version string, e.g. "1.2.0"
	Codename string `json:"codename"` // Release codename, e.g. "foo"
	Date     string `json:"date"`     // Release date as published by the feed
}

// FromDescriptor converts a resolved descriptor into its on-disk shape.
func FromDescriptor(d feed.Descriptor) Metadata {
	return Metadata{
		Version:  d.VersionNumber,
		Codename: d.Codename,
		Date:     d.ReleaseDate,
	}
}

// Notifier mirrors a newly recorded version into a secondary manifest.
type Notifier interface {
	SetVersion(version string) error
}

// Recorder persists the installed version and notifies the secondary manifest.
type Recorder struct {
	notifier Notifier
}

// NewRecorder creates a Recorder. notifier may be nil.
func NewRecorder(notifier Notifier) *Recorder {
	return &Recorder{notifier: notifier}
}

// Record writes <destDir>/version.json for d and then notifies the secondary
// manifest. The file is written to a sibling temp file, synced, and renamed
// into place, so readers see either the old or the new record.
// A failed notification is logged and does not fail Record.
func (r *Recorder) Record(d feed.Descriptor, destDir string) error {
	path := filepath.Join(destDir, FileName)

	data, err := json.MarshalIndent(FromDescriptor(d), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling version data: %w", err)
	}

	logger.Debug("[DEBUG] Writing version data to %s:\n%s\n", path, string(data))
	if err := writeFileAtomic(path, data, 0644); err != nil {
		return syncerr.New(syncerr.ErrDestinationUnwritable, "writing version data", err)
	}

	if r.notifier != nil {
		if err := r.notifier.SetVersion(d.VersionNumber); err != nil {
			logger.Error("[ERROR] Failed to update secondary manifest to %s: %v\n", d.VersionNumber, err)
		}
	}
	return nil
}

// writeFileAtomic writes data to path via a temp file in the same directory.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// Load reads the installed version from <libDir>/version.json, falling back to
// the "version" field of <libDir>/<fallbackManifest> when the record is absent.
// It returns the metadata and the file it was read from.
func Load(libDir, fallbackManifest string) (Metadata, string, error) {
	path := filepath.Join(libDir, FileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && fallbackManifest != "" {
		path = filepath.Join(libDir, fallbackManifest)
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return Metadata{}, path, fmt.Errorf("unable to load lib version information: %w", err)
	}

	var md Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		return Metadata{}, path, fmt.Errorf("parsing %s: %w", path, err)
	}
	return md, path, nil
}
