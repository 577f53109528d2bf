package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"med-scraper/pkg/config"
	"med-scraper/pkg/fetch"
	"med-scraper/pkg/models"
)

func mustParse(t *testing.T, rawURL string) *url.URL {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("parse %q: %v", rawURL, err)
	}
	return u
}

type fakePDFHandler struct {
	mu   sync.Mutex
	urls []string
}

func (f *fakePDFHandler) Download(_ context.Context, rawURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, rawURL)
	return nil
}

// countingHandler wraps a handler and counts requests per path.
type countingHandler struct {
	mu      sync.Mutex
	counts  map[string]int
	handler http.Handler
}

func newCountingHandler(h http.Handler) *countingHandler {
	return &countingHandler{counts: make(map[string]int), handler: h}
}

func (c *countingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	c.counts[r.URL.Path]++
	c.mu.Unlock()
	c.handler.ServeHTTP(w, r)
}

func (c *countingHandler) count(path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[path]
}

func crawlConfig(baseURL, outputDir string, seeds, supplementary []string) *config.AppConfig {
	return &config.AppConfig{
		SiteKey:            "test_site",
		BaseURL:            baseURL,
		OutputBaseDir:      outputDir,
		UserAgent:          "test-agent",
		CourtesyDelay:      0,
		RateLimitCooldown:  10 * time.Millisecond,
		MaxRetries:         0,
		InitialRetryDelay:  time.Millisecond,
		MaxRetryDelay:      10 * time.Millisecond,
		SeedPaths:          seeds,
		SupplementaryPages: supplementary,
	}
}

func newTestCrawler(t *testing.T, cfg *config.AppConfig, pdfs PDFHandler) *Crawler {
	t.Helper()
	client := &http.Client{Timeout: 10 * time.Second}
	known := fetch.NewKnownPaths(cfg.SeedPaths)
	fetcher, err := fetch.NewFetcher(client, cfg, known, testLogger())
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}
	writer := NewWriter(cfg, testLogger())
	c, err := NewCrawler(cfg, fetcher, writer, pdfs, testLogger())
	if err != nil {
		t.Fatalf("NewCrawler: %v", err)
	}
	return c
}

func TestRun_CrawlsSeedsAndFollowsRelevantLinks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/education/financial-aid", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><main>
			<h1>Financial Aid</h1>
			<a href="/education/financial-aid/tuition">Tuition</a>
			<a href="/about/campus-map">Campus Map</a>
			<a href="https://other-host.example/education/financial-aid">External</a>
		</main></body></html>`))
	})
	mux.HandleFunc("/education/financial-aid/tuition", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><main><h1>Tuition</h1>
			<section><h2>Tuition</h2><p>Tuition is $45,000 per year for all students.</p></section>
		</main></body></html>`))
	})
	counting := newCountingHandler(mux)
	server := httptest.NewServer(counting)
	t.Cleanup(server.Close)

	cfg := crawlConfig(server.URL, t.TempDir(), []string{"/education/financial-aid"}, nil)
	c := newTestCrawler(t, cfg, nil)

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	corpus := c.Corpus()
	if _, ok := corpus[server.URL+"/education/financial-aid"]; !ok {
		t.Error("seed page missing from corpus")
	}
	tuitionRecord, ok := corpus[server.URL+"/education/financial-aid/tuition"]
	if !ok {
		t.Fatal("discovered tuition page missing from corpus")
	}
	if len(tuitionRecord.Categorized[models.CategoryTuition]) == 0 {
		t.Error("tuition page content not categorized")
	}

	// Irrelevant and off-host links must never be fetched.
	if counting.count("/about/campus-map") != 0 {
		t.Error("followed a link without any relevance keyword")
	}
}

func TestRun_AtMostOnceFetchPerURL(t *testing.T) {
	mux := http.NewServeMux()
	// Both pages link to each other; each must still be fetched exactly once.
	mux.HandleFunc("/education/financial-aid", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><a href="/education/admissions">Admissions</a></body></html>`))
	})
	mux.HandleFunc("/education/admissions", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><a href="/education/financial-aid">Aid</a></body></html>`))
	})
	counting := newCountingHandler(mux)
	server := httptest.NewServer(counting)
	t.Cleanup(server.Close)

	cfg := crawlConfig(server.URL, t.TempDir(), []string{"/education/financial-aid"}, nil)
	c := newTestCrawler(t, cfg, nil)

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, path := range []string{"/education/financial-aid", "/education/admissions"} {
		if got := counting.count(path); got != 1 {
			t.Errorf("expected exactly 1 fetch of %s, got %d", path, got)
		}
	}
}

func TestRun_FailedURLStillMarkedVisited(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/education/financial-aid", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	counting := newCountingHandler(mux)
	server := httptest.NewServer(counting)
	t.Cleanup(server.Close)

	cfg := crawlConfig(server.URL, t.TempDir(), []string{"/education/financial-aid"}, nil)
	c := newTestCrawler(t, cfg, nil)

	// Run must terminate despite the permanent failure, and the corpus
	// stays empty for the failed page.
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(c.Corpus()) != 0 {
		t.Errorf("expected empty corpus, got %d records", len(c.Corpus()))
	}
}

func TestRun_PDFLinksRoutedToHandler(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/education/financial-aid", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><main>
			<a href="/education/financial-aid/COA.pdf">Cost of Attendance</a>
		</main></body></html>`))
	})
	counting := newCountingHandler(mux)
	server := httptest.NewServer(counting)
	t.Cleanup(server.Close)

	cfg := crawlConfig(server.URL, t.TempDir(), []string{"/education/financial-aid"}, nil)
	pdfs := &fakePDFHandler{}
	c := newTestCrawler(t, cfg, pdfs)

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(pdfs.urls) != 1 || pdfs.urls[0] != server.URL+"/education/financial-aid/COA.pdf" {
		t.Errorf("expected PDF link routed to handler, got %v", pdfs.urls)
	}
	// The PDF URL must never reach the HTML fetch path.
	if counting.count("/education/financial-aid/COA.pdf") != 0 {
		t.Error("PDF URL was fetched as HTML")
	}
}

func TestRun_SupplementaryPagesSeeded(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/education/financial-aid", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>aid</p></body></html>`))
	})
	mux.HandleFunc("/education/medical/admissions", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>admissions overview text</p></body></html>`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	cfg := crawlConfig(server.URL, t.TempDir(),
		[]string{"/education/financial-aid"}, []string{"/education/medical/admissions"})
	c := newTestCrawler(t, cfg, nil)

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := c.Corpus()[server.URL+"/education/medical/admissions"]; !ok {
		t.Error("supplementary page missing from corpus")
	}
}

func TestShouldFollow(t *testing.T) {
	cfg := crawlConfig("https://icahn.mssm.edu", t.TempDir(), []string{"/education/financial-aid"}, nil)
	c := newTestCrawler(t, cfg, nil)

	tests := []struct {
		url  string
		want bool
	}{
		{"https://icahn.mssm.edu/education/TUITION-rates", true},
		{"https://icahn.mssm.edu/education/curriculum", true},
		{"https://icahn.mssm.edu/news/events", false},
		{"https://evil.example/education/tuition", false},
	}
	for _, tt := range tests {
		u := mustParse(t, tt.url)
		if got := c.shouldFollow(u); got != tt.want {
			t.Errorf("shouldFollow(%s) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
