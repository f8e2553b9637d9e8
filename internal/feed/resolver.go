package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"libsync/internal/logger"
	"libsync/internal/syncerr"
)

// Latest is the version spec that resolves to the feed's current release.
const Latest = "latest"

// Resolver looks up release descriptors on the remote feed.
// Every call performs exactly one request; nothing is cached.
type Resolver struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient sets the client used for feed requests.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) {
		r.httpClient = c
	}
}

// NewResolver creates a Resolver for the feed rooted at baseURL.
func NewResolver(baseURL string, opts ...Option) *Resolver {
	r := &Resolver{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsLatest reports whether spec asks for the newest release.
// An empty spec counts as latest.
func IsLatest(spec string) bool {
	spec = strings.TrimSpace(spec)
	return spec == "" || strings.EqualFold(spec, Latest)
}

// URL returns the feed document URL for spec.
func (r *Resolver) URL(spec string) string {
	if IsLatest(spec) {
		return r.baseURL + "/latest.json"
	}
	return r.baseURL + "/" + strings.TrimSpace(spec) + "/version.json"
}

// Resolve fetches and normalizes the descriptor for spec.
func (r *Resolver) Resolve(ctx context.Context, spec string) (Descriptor, error) {
	url := r.URL(spec)
	logger.Debug("[DEBUG] Fetching version data from %s\n", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Descriptor{}, syncerr.New(syncerr.ErrFeedUnreachable, "creating feed request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return Descriptor{}, syncerr.New(syncerr.ErrFeedUnreachable, "unable to receive version data", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("[WARN] Failed to close feed response body: %v\n", cerr)
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return Descriptor{}, syncerr.New(syncerr.ErrUnknownVersion, fmt.Sprintf("invalid version: %s", spec), nil)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return Descriptor{}, syncerr.New(syncerr.ErrFeedUnavailable,
			fmt.Sprintf("unable to load version data: HTTP status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Descriptor{}, syncerr.New(syncerr.ErrFeedUnreachable, "reading feed response", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return Descriptor{}, syncerr.New(syncerr.ErrFeedUnreachable, "feed returned an empty body", nil)
	}

	if err := validate(body); err != nil {
		return Descriptor{}, syncerr.New(syncerr.ErrMalformedFeedResponse,
			fmt.Sprintf("error loading %s version information", spec), err)
	}

	d, err := Normalize(body)
	if err != nil {
		return Descriptor{}, syncerr.New(syncerr.ErrMalformedFeedResponse,
			fmt.Sprintf("error loading %s version information", spec), err)
	}

	logger.Debug("[DEBUG] Resolved %s to %s (%s)\n", spec, d.VersionNumber, d.Codename)
	return d, nil
}
