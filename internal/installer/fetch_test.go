package installer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"libsync/internal/config"
	"libsync/internal/feed"
	"libsync/internal/syncerr"
)

func testArchiveConfig(baseURL string) config.Archive {
	a := config.Default().Archive
	a.BaseURL = baseURL
	return a
}

func TestFetch_Success(t *testing.T) {
	archiveData := buildZip(t, releaseEntries("1.2.0"))

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(archiveData)))
		w.Write(archiveData)
	}))
	defer server.Close()

	var lastReceived, lastTotal int64
	calls := 0
	f := NewFetcher(testArchiveConfig(server.URL),
		WithHTTPClient(server.Client()),
		WithProgress(func(received, total int64) {
			calls++
			lastReceived, lastTotal = received, total
		}))

	libDir := filepath.Join(t.TempDir(), "www", "lib", "ionic")
	h, err := f.Fetch(context.Background(), feed.Descriptor{VersionNumber: "1.2.0"}, libDir)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if gotPath != "/driftyco/ionic-bower/archive/v1.2.0.zip" {
		t.Errorf("requested %s", gotPath)
	}
	if h.Path != filepath.Join(libDir, "ionic.zip") || h.Format != "zip" {
		t.Errorf("unexpected handle %+v", h)
	}
	data, err := os.ReadFile(h.Path)
	if err != nil {
		t.Fatalf("reading archive: %v", err)
	}
	if len(data) != len(archiveData) {
		t.Errorf("archive is %d bytes, want %d", len(data), len(archiveData))
	}
	if calls == 0 || lastReceived != int64(len(archiveData)) || lastTotal != int64(len(archiveData)) {
		t.Errorf("progress calls=%d last=%d/%d", calls, lastReceived, lastTotal)
	}
}

func TestFetch_FailuresLeaveNoFile(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"not found", http.StatusNotFound, syncerr.ErrUnknownVersion},
		{"server error", http.StatusBadGateway, syncerr.ErrFeedUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			libDir := t.TempDir()
			f := NewFetcher(testArchiveConfig(server.URL), WithHTTPClient(server.Client()))
			// A leftover from an interrupted run must not survive a failed fetch either.
			os.WriteFile(f.LocalPath(libDir), []byte("stale"), 0644)

			_, err := f.Fetch(context.Background(), feed.Descriptor{VersionNumber: "9.9.9"}, libDir)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			assertNotExist(t, f.LocalPath(libDir))
		})
	}
}

func TestFetch_StreamInterrupted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100000")
		w.Write([]byte("PK partial data"))
		w.(http.Flusher).Flush()

		conn, _, err := w.(http.Hijacker).Hijack()
		if err != nil {
			t.Errorf("hijack: %v", err)
			return
		}
		conn.Close()
	}))
	defer server.Close()

	libDir := t.TempDir()
	f := NewFetcher(testArchiveConfig(server.URL), WithHTTPClient(server.Client()))
	_, err := f.Fetch(context.Background(), feed.Descriptor{VersionNumber: "1.2.0"}, libDir)
	if !errors.Is(err, syncerr.ErrDownloadTransportError) {
		t.Fatalf("got %v, want ErrDownloadTransportError", err)
	}
	assertNotExist(t, f.LocalPath(libDir))
}

func TestFetch_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	libDir := t.TempDir()
	f := NewFetcher(testArchiveConfig(url))
	_, err := f.Fetch(context.Background(), feed.Descriptor{VersionNumber: "1.2.0"}, libDir)
	if !errors.Is(err, syncerr.ErrDownloadTransportError) {
		t.Fatalf("got %v, want ErrDownloadTransportError", err)
	}
	assertNotExist(t, f.LocalPath(libDir))
}

func TestFetch_PanickingProgressDoesNotAbort(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("archive bytes"))
	}))
	defer server.Close()

	f := NewFetcher(testArchiveConfig(server.URL),
		WithHTTPClient(server.Client()),
		WithProgress(func(received, total int64) { panic("terminal went away") }))

	h, err := f.Fetch(context.Background(), feed.Descriptor{VersionNumber: "1.2.0"}, t.TempDir())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if data, _ := os.ReadFile(h.Path); string(data) != "archive bytes" {
		t.Errorf("archive content = %q", data)
	}
}

func TestFetcher_URLAndLocalPath(t *testing.T) {
	a := config.Default().Archive
	a.Format = "tar.gz"
	f := NewFetcher(a)

	if got, want := f.URL("1.0.0-rc.1"), "https://github.com/driftyco/ionic-bower/archive/v1.0.0-rc.1.tar.gz"; got != want {
		t.Errorf("URL = %s, want %s", got, want)
	}
	if got, want := f.LocalPath("/p/www/lib/ionic"), filepath.Join("/p/www/lib/ionic", "ionic.tar.gz"); got != want {
		t.Errorf("LocalPath = %s, want %s", got, want)
	}
}

func TestFetch_ThroughProxy(t *testing.T) {
	archiveData := buildZip(t, releaseEntries("1.2.0"))

	var gotHost, gotPath string
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHost, gotPath = r.Host, r.URL.Path
		w.Write(archiveData)
	}))
	defer proxy.Close()

	client, err := feed.NewHTTPClient(proxy.URL)
	if err != nil {
		t.Fatalf("NewHTTPClient failed: %v", err)
	}

	// archive.invalid never resolves, so only the proxy can answer.
	f := NewFetcher(testArchiveConfig("http://archive.invalid"), WithHTTPClient(client))
	h, err := f.Fetch(context.Background(), feed.Descriptor{VersionNumber: "1.2.0"}, t.TempDir())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if gotHost != "archive.invalid" || gotPath != "/driftyco/ionic-bower/archive/v1.2.0.zip" {
		t.Errorf("proxy saw host=%q path=%q", gotHost, gotPath)
	}
	if info, err := os.Stat(h.Path); err != nil || info.Size() != int64(len(archiveData)) {
		t.Errorf("archive not saved: %v", err)
	}
}

func TestFetch_UnknownLengthReportsCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Flushing before the body is complete forces chunked encoding, so no Content-Length.
		w.Write([]byte("first chunk "))
		w.(http.Flusher).Flush()
		w.Write([]byte("second chunk"))
	}))
	defer server.Close()

	type call struct{ received, total int64 }
	var calls []call
	f := NewFetcher(testArchiveConfig(server.URL),
		WithHTTPClient(server.Client()),
		WithProgress(func(received, total int64) {
			calls = append(calls, call{received, total})
		}))

	if _, err := f.Fetch(context.Background(), feed.Descriptor{VersionNumber: "1.2.0"}, t.TempDir()); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if len(calls) < 2 {
		t.Fatalf("expected progress and completion calls, got %v", calls)
	}
	for _, c := range calls[:len(calls)-1] {
		if c.total != -1 {
			t.Errorf("intermediate call %+v should report an unknown total", c)
		}
	}
	const size = int64(len("first chunk second chunk"))
	if last := calls[len(calls)-1]; last.received != size || last.total != size {
		t.Errorf("final call = %+v, want %d/%d", last, size, size)
	}
}
