package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/argus/internal/model"
)

func TestLooksLikeHTML(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"<!DOCTYPE html><html><body>x</body></html>", true},
		{"<p>Solar will dominate.</p>", true},
		{"<div class=\"post\">argument</div>", true},
		{"Solar will dominate energy by 2030.", false},
		{"Costs dropped 90% since 2010, a < b in every case.", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := LooksLikeHTML(tt.input); got != tt.want {
			t.Errorf("LooksLikeHTML(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestExtractText(t *testing.T) {
	page := `<!DOCTYPE html>
<html>
<head><title>Post</title><style>p { color: red; }</style></head>
<body>
<nav><a href="/">Home</a></nav>
<article>
<h1>On solar energy</h1>
<p>Solar will dominate energy by 2030.</p>
<p>Costs have dropped 90% since 2010.</p>
<script>trackPageView();</script>
</article>
<footer>Copyright 2026</footer>
</body>
</html>`

	text, err := ExtractText(page)
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}

	for _, want := range []string{"On solar energy", "Solar will dominate energy by 2030.", "Costs have dropped 90% since 2010."} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in %q", want, text)
		}
	}
	for _, skip := range []string{"trackPageView", "color: red", "Home", "Copyright"} {
		if strings.Contains(text, skip) {
			t.Errorf("chrome %q leaked into %q", skip, text)
		}
	}
	// Paragraphs stay on separate lines
	if !strings.Contains(text, "2030.\nCosts") {
		t.Errorf("paragraph boundary lost in %q", text)
	}
}

func TestNormalizePlainText(t *testing.T) {
	got, err := Normalize("  Solar   will dominate.\n\n\nCosts   dropped.  ")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want := "Solar will dominate.\nCosts dropped."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNormalizeUserAgent(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Argus/0.1 (+https://github.com/ppiankov/argus)", "Argus"},
		{"Argus", "Argus"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeUserAgent(tt.input); got != tt.want {
			t.Errorf("NormalizeUserAgent(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFetcherFetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
	})
	mux.HandleFunc("/post", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("missing user agent")
		}
		_, _ = w.Write([]byte(`<html><body><p>Solar will dominate energy by 2030.</p></body></html>`))
	})
	mux.HandleFunc("/private/post", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<p>secret</p>`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := NewFetcher(model.HTTPConfig{
		Timeout:      5 * time.Second,
		UserAgent:    "Argus/0.1",
		MaxBodyBytes: 1 << 20,
	})

	text, err := f.Fetch(context.Background(), server.URL+"/post")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if text != "Solar will dominate energy by 2030." {
		t.Errorf("unexpected text %q", text)
	}

	if _, err := f.Fetch(context.Background(), server.URL+"/private/post"); !errors.Is(err, ErrRobotsDisallowed) {
		t.Errorf("expected ErrRobotsDisallowed, got %v", err)
	}
}

func TestFetcherIgnoreRobots(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /\n"))
	})
	mux.HandleFunc("/post", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<p>Solar will dominate.</p>`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := NewFetcher(model.HTTPConfig{
		Timeout:      5 * time.Second,
		UserAgent:    "Argus/0.1",
		IgnoreRobots: true,
	})
	if _, err := f.Fetch(context.Background(), server.URL+"/post"); err != nil {
		t.Errorf("ignore_robots fetch should succeed: %v", err)
	}
}

func TestFetcherStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	f := NewFetcher(model.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "Argus/0.1"})
	if _, err := f.Fetch(context.Background(), server.URL+"/gone"); err == nil {
		t.Error("expected error on non-200 status")
	}
}

func TestFetcherBodyCap(t *testing.T) {
	big := strings.Repeat("Solar will dominate energy by 2030. ", 1000)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(big))
	}))
	defer server.Close()

	f := NewFetcher(model.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "Argus/0.1", MaxBodyBytes: 100})
	text, err := f.Fetch(context.Background(), server.URL+"/post")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(text) > 100 {
		t.Errorf("body cap not applied, got %d bytes", len(text))
	}
}
