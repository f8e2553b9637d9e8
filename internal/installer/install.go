package installer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"libsync/internal/logger"
	"libsync/internal/syncerr"
)

// Report summarizes one Install call.
type Report struct {
	Written int // files written
	Dirs    int // directory entries materialized
	Skipped int // entries filtered out or outside the archive prefix
	Failed  int // files that could not be written
}

// Installer unpacks a release archive into the library directory, stripping
// the archive's top-level folder and dropping packaging files.
type Installer struct {
	repo    string
	exclude []*regexp.Regexp
}

// NewInstaller creates an Installer for archives of repo (owner/repo).
// Entries whose archive-relative path matches any of the exclude patterns
// are never written.
func NewInstaller(repo string, exclude []string) (*Installer, error) {
	i := &Installer{repo: repo}
	for _, pattern := range exclude {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		i.exclude = append(i.exclude, re)
	}
	return i, nil
}

// Install extracts h into destDir entry by entry, in archive order.
//
// Directory entries are created when absent; file entries overwrite whatever
// is at their destination. A file that cannot be written is logged, removed,
// and skipped so the rest of the archive still lands; those failures are
// returned together as ErrDestinationUnwritable once the archive is exhausted.
// An unreadable archive stops the install with ErrArchiveCorrupt.
// Files written before a failure are not rolled back.
func (i *Installer) Install(h ArchiveHandle, destDir string) (Report, error) {
	var report Report
	var writeErrs []error

	// Every entry of a GitHub source archive sits under "<repo>-<version>/"
	prefix := archivePrefix(i.repo, h.Descriptor.VersionNumber)
	logger.Debug("[DEBUG] Installing %s into %s (prefix %s)\n", h.Path, destDir, prefix)

	walkErr := walkArchive(h.Path, h.Format, func(e entry) error {
		// Map the archive path onto the library dir
		rel, ok := stripPrefix(e.Name, prefix)
		if !ok {
			logger.Warn("[WARN] Skipping %s: outside %s\n", e.Name, prefix)
			report.Skipped++
			return nil
		}
		// Packaging files (bower.json, README) are drained, never written
		if i.excluded(rel) {
			logger.Debug("[DEBUG] Skipping packaging file %s\n", e.Name)
			report.Skipped++
			return nil
		}

		// Refuse entries that would land outside destDir
		target, ok := destPath(destDir, rel)
		if !ok {
			logger.Warn("[WARN] Skipping %s: escapes %s\n", e.Name, destDir)
			report.Skipped++
			return nil
		}

		// Directory entries: create if missing, existing dirs are fine
		if e.IsDir {
			if err := os.MkdirAll(target, 0755); err != nil {
				logger.Error("[ERROR] Failed to create directory %s: %v\n", target, err)
				writeErrs = append(writeErrs, fmt.Errorf("%s: %w", target, err))
				report.Failed++
				return nil
			}
			report.Dirs++
			return nil
		}

		// File entries: a broken archive stops the walk, a failed write does not
		readErr, writeErr := writeEntry(e, target)
		if readErr != nil {
			return syncerr.New(syncerr.ErrArchiveCorrupt, fmt.Sprintf("reading %s", e.Name), readErr)
		}
		if writeErr != nil {
			logger.Error("[ERROR] Error writing %s: %v\n", target, writeErr)
			writeErrs = append(writeErrs, fmt.Errorf("%s: %w", target, writeErr))
			report.Failed++
			return nil
		}

		logger.Debug("[DEBUG] Wrote %s\n", target)
		report.Written++
		return nil
	})

	// Archive errors take precedence; collected write failures ride along
	if walkErr != nil {
		return report, errors.Join(append([]error{walkErr}, writeErrs...)...)
	}
	if len(writeErrs) > 0 {
		return report, syncerr.New(syncerr.ErrDestinationUnwritable,
			fmt.Sprintf("%d of %d entries could not be written", len(writeErrs), report.Written+report.Dirs+len(writeErrs)),
			errors.Join(writeErrs...))
	}
	return report, nil
}

func (i *Installer) excluded(rel string) bool {
	for _, re := range i.exclude {
		if re.MatchString(rel) {
			return true
		}
	}
	return false
}

// stripPrefix removes the archive's top-level folder from name.
// The folder's own entry maps to "".
func stripPrefix(name, prefix string) (string, bool) {
	name = strings.TrimPrefix(strings.ReplaceAll(name, `\`, "/"), "./")
	if name == strings.TrimSuffix(prefix, "/") {
		return "", true
	}
	if !strings.HasPrefix(name, prefix) {
		return "", false
	}
	return strings.TrimPrefix(name, prefix), true
}

// destPath joins rel onto destDir, refusing paths that leave destDir.
func destPath(destDir, rel string) (string, bool) {
	target := filepath.Join(destDir, filepath.FromSlash(rel))
	r, err := filepath.Rel(destDir, target)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", false
	}
	return target, true
}

// writeEntry streams e to target, creating missing parent directories.
// It tells apart failures reading the archive from failures writing the file.
// A target truncated by a failed copy is removed.
func writeEntry(e entry, target string) (readErr, writeErr error) {
	// Parent dirs may have no entry of their own in the archive
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return nil, err
	}

	rc, err := e.Open()
	if err != nil {
		return err, nil
	}
	defer rc.Close()

	// Archives without permission bits get a regular file mode
	perm := e.Mode.Perm()
	if perm == 0 {
		perm = 0644
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return nil, err
	}

	w := &trackingWriter{w: out}
	_, copyErr := io.Copy(w, rc)
	closeErr := out.Close()

	// Attribute the failure to the side that produced it
	switch {
	case copyErr != nil && w.err != nil:
		removePartial(target)
		return nil, copyErr
	case copyErr != nil:
		removePartial(target)
		return copyErr, nil
	case closeErr != nil:
		removePartial(target)
		return nil, closeErr
	}
	return nil, nil
}

// trackingWriter remembers whether a copy failed on the write side.
type trackingWriter struct {
	w   io.Writer
	err error
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil {
		t.err = err
	}
	return n, err
}

func removePartial(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("[WARN] Failed to remove partial file %s: %v\n", path, err)
	}
}
