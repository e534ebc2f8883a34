package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ppiankov/argus/internal/model"
)

// ErrRobotsDisallowed means the target site's robots.txt forbids the fetch
var ErrRobotsDisallowed = errors.New("fetch disallowed by robots.txt")

// Fetcher retrieves argument text from URLs. Bodies are capped, robots.txt
// is honored unless explicitly ignored, and HTML is reduced to prose.
type Fetcher struct {
	httpClient   *http.Client
	robots       *RobotsChecker
	userAgent    string
	maxBodyBytes int64
}

// NewFetcher creates a fetcher from HTTP config
func NewFetcher(cfg model.HTTPConfig) *Fetcher {
	f := &Fetcher{
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		userAgent:    cfg.UserAgent,
		maxBodyBytes: cfg.MaxBodyBytes,
	}
	if !cfg.IgnoreRobots {
		f.robots = NewRobotsChecker(cfg.UserAgent, cfg.Timeout)
	}
	return f
}

// Fetch retrieves a URL and returns its visible text
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if f.robots != nil {
		allowed, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return "", fmt.Errorf("robots check: %w", err)
		}
		if !allowed {
			return "", fmt.Errorf("%s: %w", rawURL, ErrRobotsDisallowed)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	reader := io.Reader(resp.Body)
	if f.maxBodyBytes > 0 {
		reader = io.LimitReader(resp.Body, f.maxBodyBytes)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	text, err := Normalize(string(body))
	if err != nil {
		return "", fmt.Errorf("extract text from %s: %w", rawURL, err)
	}
	if text == "" {
		return "", fmt.Errorf("fetch %s: no visible text", rawURL)
	}
	return text, nil
}
