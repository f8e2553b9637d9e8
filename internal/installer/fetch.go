package installer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"libsync/internal/config"
	"libsync/internal/feed"
	"libsync/internal/logger"
	"libsync/internal/syncerr"
)

// ArchiveHandle is a downloaded release archive on local disk.
// It belongs to the sync run that created it and is removed when the run ends.
type ArchiveHandle struct {
	Path       string          // local archive file inside the library dir
	Format     string          // zip, tar.gz, tar.xz or 7z
	Descriptor feed.Descriptor // release the archive was downloaded for
}

// ProgressFunc receives the number of bytes written so far and the expected
// total from Content-Length, or -1 when the server did not send one. When the
// total was unknown it is called once more after the body ends, with total
// equal to received.
type ProgressFunc func(received, total int64)

// Fetcher downloads release archives into the library directory.
type Fetcher struct {
	archive    config.Archive
	httpClient *http.Client
	progress   ProgressFunc
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient sets the client used for archive downloads.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.httpClient = c
	}
}

// WithProgress sets the download progress reporter.
func WithProgress(p ProgressFunc) FetcherOption {
	return func(f *Fetcher) {
		f.progress = p
	}
}

// NewFetcher creates a Fetcher for the archives described by archive.
func NewFetcher(archive config.Archive, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		archive:    archive,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// URL returns the archive download URL for version.
func (f *Fetcher) URL(version string) string {
	return archiveURL(f.archive.BaseURL, f.archive.Repo, version, f.archive.Format)
}

// LocalPath returns where the archive is stored while a run is in progress.
// It lives inside libDir, not the system temp dir.
func (f *Fetcher) LocalPath(libDir string) string {
	return filepath.Join(libDir, f.archive.FileName+"."+f.archive.Format)
}

// Fetch downloads the archive for d into libDir and returns a handle to it.
// On any failure nothing is left at the local archive path. On success the
// file has been synced and closed.
func (f *Fetcher) Fetch(ctx context.Context, d feed.Descriptor, libDir string) (h ArchiveHandle, err error) {
	url := f.URL(d.VersionNumber)
	destPath := f.LocalPath(libDir)

	// Never leave a partial or stale archive behind on failure
	defer func() {
		if err != nil {
			if rerr := os.Remove(destPath); rerr != nil && !os.IsNotExist(rerr) {
				logger.Error("[ERROR] Failed to remove partial archive %s: %v\n", destPath, rerr)
			}
		}
	}()

	// The library dir is created here, not before the version is known
	if err := os.MkdirAll(libDir, 0755); err != nil {
		return ArchiveHandle{}, syncerr.New(syncerr.ErrDestinationUnwritable, "creating library directory", err)
	}

	logger.Info("[INFO] Downloading: %s\n", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ArchiveHandle{}, syncerr.New(syncerr.ErrDownloadTransportError, "creating download request", err)
	}

	// Send the request through the (possibly proxied) client
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return ArchiveHandle{}, syncerr.New(syncerr.ErrDownloadTransportError, fmt.Sprintf("failed to GET %s", url), err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("[WARN] Failed to close response body: %v\n", cerr)
		}
	}()

	// Check the status before touching the destination file
	if resp.StatusCode == http.StatusNotFound {
		return ArchiveHandle{}, syncerr.New(syncerr.ErrUnknownVersion, fmt.Sprintf("invalid version: %s", d.VersionNumber), nil)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return ArchiveHandle{}, syncerr.New(syncerr.ErrFeedUnavailable,
			fmt.Sprintf("unable to download archive (%d)", resp.StatusCode), nil)
	}

	// Create the local archive file
	out, err := os.Create(destPath)
	if err != nil {
		return ArchiveHandle{}, syncerr.New(syncerr.ErrDestinationUnwritable, fmt.Sprintf("failed to create file %s", destPath), err)
	}

	// Stream the body to disk
	written, err := f.copyWithProgress(out, resp.Body, resp.ContentLength)
	if err != nil {
		out.Close()
		return ArchiveHandle{}, err
	}
	// Flush to disk and close before handing the file to the installer
	if err := out.Sync(); err != nil {
		out.Close()
		return ArchiveHandle{}, syncerr.New(syncerr.ErrDestinationUnwritable, "syncing archive to disk", err)
	}
	if err := out.Close(); err != nil {
		return ArchiveHandle{}, syncerr.New(syncerr.ErrDestinationUnwritable, "closing archive file", err)
	}

	logger.Debug("[DEBUG] Downloaded %d bytes to %s\n", written, destPath)
	return ArchiveHandle{Path: destPath, Format: f.archive.Format, Descriptor: d}, nil
}

// copyWithProgress streams body into out, reporting progress after every chunk.
// Read failures are transport errors; write failures mean the destination is unwritable.
func (f *Fetcher) copyWithProgress(out io.Writer, body io.Reader, total int64) (int64, error) {
	if total <= 0 {
		total = -1
	}

	// Copy in 32KB chunks, reporting after each one
	var received int64
	buf := make([]byte, 32*1024)
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				return received, syncerr.New(syncerr.ErrDestinationUnwritable, "writing download", writeErr)
			}
			received += int64(n)
			f.report(received, total)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return received, syncerr.New(syncerr.ErrDownloadTransportError, "reading download stream", readErr)
		}
	}

	// A short body means the connection dropped without an error
	if total > 0 && received != total {
		return received, syncerr.New(syncerr.ErrDownloadTransportError,
			fmt.Sprintf("download truncated: got %d of %d bytes", received, total), nil)
	}
	// Let the reporter finish its line once the size is finally known
	if total < 0 && received > 0 {
		f.report(received, received)
	}
	return received, nil
}

// report forwards progress to the reporter. A panicking reporter is
// contained so it can never abort the download.
func (f *Fetcher) report(received, total int64) {
	if f.progress == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Debug("[DEBUG] Progress reporter failed: %v\n", r)
		}
	}()
	f.progress(received, total)
}
