package feed

import (
	"fmt"
	"net/http"
	"net/url"
)

// NewHTTPClient returns the client used for feed and archive requests.
// A non-empty proxy routes every request through it; otherwise the
// transport defaults apply. No timeout is set.
func NewHTTPClient(proxy string) (*http.Client, error) {
	if proxy == "" {
		return &http.Client{}, nil
	}

	proxyURL, err := url.Parse(proxy)
	if err != nil {
		return nil, fmt.Errorf("parsing proxy URL %q: %w", proxy, err)
	}
	if proxyURL.Scheme == "" || proxyURL.Host == "" {
		return nil, fmt.Errorf("proxy URL %q must include scheme and host", proxy)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = http.ProxyURL(proxyURL)
	return &http.Client{Transport: transport}, nil
}
