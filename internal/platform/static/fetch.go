package static

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Fetcher loads the markup of a page. form is nil for plain GET requests.
type Fetcher interface {
	Fetch(ctx context.Context, method, rawURL string, form url.Values) (string, error)
}

// HTTPFetcher loads pages over HTTP.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPFetcher returns a fetcher with its own cookie-less client.
func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if userAgent == "" {
		userAgent = "websteps/1.0"
	}
	return &HTTPFetcher{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: userAgent,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, method, rawURL string, form url.Values) (string, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", method, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%s %s: received status code %d", method, rawURL, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", rawURL, err)
	}
	return string(data), nil
}

// Pages serves markup from memory, keyed by URL. A URL with a query falls
// back to the entry without it.
type Pages map[string]string

func (p Pages) Fetch(_ context.Context, method, rawURL string, _ url.Values) (string, error) {
	if markup, ok := p[rawURL]; ok {
		return markup, nil
	}
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		if markup, ok := p[rawURL[:i]]; ok {
			return markup, nil
		}
	}
	return "", fmt.Errorf("%s %s: received status code 404", method, rawURL)
}
