package installer

import (
	"archive/tar" // For reading .tar archives
	"archive/zip" // For reading .zip archives
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/bodgit/sevenzip" // For reading .7z archives
	"github.com/xi2/xz"          // For reading .xz compressed data
	"libsync/internal/logger"
	"libsync/internal/syncerr"
)

// entry is one member of a release archive, as seen by the installer.
type entry struct {
	Name  string      // slash-separated path inside the archive
	IsDir bool        // directory marker
	Mode  os.FileMode // permission bits recorded in the archive, may be zero
	open  func() (io.ReadCloser, error)
}

// Open returns the entry's content stream.
func (e entry) Open() (io.ReadCloser, error) {
	return e.open()
}

// walkArchive calls fn for every entry of the archive at src, one at a time,
// in the order the entries appear in the archive. Failures to open or parse
// the archive are reported as ErrArchiveCorrupt. An error from fn stops the walk.
func walkArchive(src, format string, fn func(entry) error) error {
	switch format {
	case "zip":
		logger.Debug("[DEBUG] compression type is zip\n")
		return walkZip(src, fn)
	case "7z":
		logger.Debug("[DEBUG] compression type is .7z\n")
		return walk7z(src, fn)
	case "tar.gz", "tar.xz":
		logger.Debug("[DEBUG] compression type is .%s\n", format)
		return walkTar(src, format, fn)
	default:
		return fmt.Errorf("unsupported archive format: %s", format)
	}
}

// walkTar handles gzip and xz compressed tar archives.
func walkTar(src, format string, fn func(entry) error) error {
	f, err := os.Open(src)
	if err != nil {
		return syncerr.New(syncerr.ErrArchiveCorrupt, "opening archive", err)
	}
	defer f.Close()

	var reader io.Reader
	switch format {
	case "tar.gz":
		gr, err := gzip.NewReader(f)
		if err != nil {
			return syncerr.New(syncerr.ErrArchiveCorrupt, "reading gzip header", err)
		}
		defer gr.Close()
		reader = gr
	case "tar.xz":
		xzr, err := xz.NewReader(f, 0)
		if err != nil {
			return syncerr.New(syncerr.ErrArchiveCorrupt, "reading xz header", err)
		}
		reader = xzr
	}

	tr := tar.NewReader(reader)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil // End of archive
		}
		if err != nil {
			return syncerr.New(syncerr.ErrArchiveCorrupt, "reading tar entry", err)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := fn(entry{Name: hdr.Name, IsDir: true, Mode: hdr.FileInfo().Mode()}); err != nil {
				return err
			}
		case tar.TypeReg:
			e := entry{
				Name: hdr.Name,
				Mode: hdr.FileInfo().Mode(),
				open: func() (io.ReadCloser, error) { return io.NopCloser(tr), nil },
			}
			if err := fn(e); err != nil {
				return err
			}
		default:
			logger.Debug("[DEBUG] Skipping non-regular tar entry %s (type %c)\n", hdr.Name, hdr.Typeflag)
		}
	}
}

// walkZip walks a .zip archive in central-directory order.
func walkZip(src string, fn func(entry) error) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return syncerr.New(syncerr.ErrArchiveCorrupt, "opening zip archive", err)
	}
	defer r.Close()

	for _, f := range r.File {
		e := entry{
			Name:  f.Name,
			IsDir: f.FileInfo().IsDir(),
			Mode:  f.Mode(),
			open:  f.Open,
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

// walk7z handles .7z archives using the sevenzip library.
func walk7z(src string, fn func(entry) error) error {
	r, err := sevenzip.OpenReader(src)
	if err != nil {
		return syncerr.New(syncerr.ErrArchiveCorrupt, "failed to open 7z archive", err)
	}
	defer r.Close()

	for _, f := range r.File {
		e := entry{
			Name:  f.Name,
			IsDir: f.FileInfo().IsDir(),
			Mode:  f.Mode(),
			open:  f.Open,
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}
