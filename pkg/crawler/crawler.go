// Package crawler owns the crawl loop: the frontier, the visited set, the
// in-memory corpus, and the link-following policy.
package crawler

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"med-scraper/pkg/config"
	"med-scraper/pkg/extract"
	"med-scraper/pkg/fetch"
	"med-scraper/pkg/models"
	"med-scraper/pkg/queue"
	"med-scraper/pkg/utils"
)

// followKeywords is the fixed set of path substrings that make a discovered
// link worth following. Matching is case-insensitive on the resolved path.
var followKeywords = []string{
	"financial", "tuition", "scholarship", "aid", "admissions", "apply",
	"requirements", "mcat", "interview", "selection", "timeline",
	"prerequisites", "curriculum", "academic",
}

// PDFHandler receives PDF-suffixed URLs instead of the HTML pipeline.
type PDFHandler interface {
	Download(ctx context.Context, rawURL string) error
}

// Crawler drives the frontier to exhaustion: fetch, extract, classify,
// discover links, enqueue. Single-threaded; all mutable crawl state is
// owned here and mutated only through its methods.
type Crawler struct {
	log       *logrus.Entry
	cfg       *config.AppConfig
	base      *url.URL
	fetcher   *fetch.Fetcher
	extractor *extract.Extractor
	writer    *Writer
	pdfs      PDFHandler // Optional; nil disables the PDF download path

	frontier *queue.Frontier
	visited  map[string]bool
	corpus   models.Corpus

	pagesProcessed int
	pagesFailed    int
	pdfsRouted     int
}

// NewCrawler creates a Crawler and its owned state.
func NewCrawler(cfg *config.AppConfig, fetcher *fetch.Fetcher, writer *Writer, pdfs PDFHandler, log *logrus.Entry) (*Crawler, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, utils.WrapErrorf(utils.ErrParsing, "base URL '%s': %v", cfg.BaseURL, err)
	}
	return &Crawler{
		log:       log,
		cfg:       cfg,
		base:      base,
		fetcher:   fetcher,
		extractor: extract.NewExtractor(log),
		writer:    writer,
		pdfs:      pdfs,
		frontier:  queue.NewFrontier(),
		visited:   make(map[string]bool),
		corpus:    make(models.Corpus),
	}, nil
}

// Corpus returns the accumulated in-memory corpus.
func (c *Crawler) Corpus() models.Corpus {
	return c.corpus
}

// Run seeds the frontier and processes it to exhaustion, then invokes the
// corpus writer. Per-page failures are local; only a persistence failure in
// the final write step is returned as an error.
func (c *Crawler) Run(ctx context.Context) error {
	start := time.Now()
	c.seed()
	c.log.WithField("frontier_len", c.frontier.Len()).Info("Crawl starting")

	for {
		rawURL, ok := c.frontier.Pop()
		if !ok {
			break // Frontier exhausted
		}
		if err := ctx.Err(); err != nil {
			c.log.Warnf("Crawl interrupted: %v", err)
			break
		}
		if c.visited[rawURL] {
			continue
		}
		c.processURL(ctx, rawURL)
	}

	c.log.WithFields(logrus.Fields{
		"duration":        time.Since(start).String(),
		"pages_processed": c.pagesProcessed,
		"pages_failed":    c.pagesFailed,
		"pdfs_routed":     c.pdfsRouted,
		"visited":         len(c.visited),
	}).Info("Crawl finished")

	if err := c.writer.WriteAll(c.corpus); err != nil {
		return err
	}
	return ctx.Err()
}

// seed fills the frontier from the known-path catalog resolved against the
// base URL, plus the fixed supplementary pages.
func (c *Crawler) seed() {
	for _, p := range c.fetcher.KnownPaths().Snapshot() {
		c.frontier.Push(c.resolvePath(p))
	}
	for _, p := range c.cfg.SupplementaryPages {
		c.frontier.Push(c.resolvePath(p))
	}
}

func (c *Crawler) resolvePath(p string) string {
	return c.base.ResolveReference(&url.URL{Path: p}).String()
}

// processURL handles one frontier item: PDF routing, fetch, extraction, and
// link discovery. The URL is marked visited whether or not the fetch
// succeeds, which guarantees termination.
func (c *Crawler) processURL(ctx context.Context, rawURL string) {
	taskLog := c.log.WithField("url", rawURL)

	parsed, err := url.Parse(rawURL)
	if err != nil {
		taskLog.Warnf("Discarding unparseable URL: %v", err)
		c.visited[rawURL] = true
		return
	}

	// PDFs are never parsed as HTML; hand off to the download path.
	if strings.HasSuffix(strings.ToLower(parsed.Path), ".pdf") {
		c.visited[rawURL] = true
		c.pdfsRouted++
		if c.pdfs == nil {
			taskLog.Debug("PDF handling disabled; link recorded as visited only")
			return
		}
		if err := c.pdfs.Download(ctx, rawURL); err != nil {
			taskLog.WithField("category", utils.CategorizeError(err)).Warnf("PDF download failed: %v", err)
		}
		return
	}

	html, err := c.fetcher.Fetch(ctx, rawURL)
	c.visited[rawURL] = true
	if err != nil {
		c.pagesFailed++
		taskLog.WithField("category", utils.CategorizeError(err)).Warnf("Fetch failed, page skipped: %v", err)
		return
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		c.pagesFailed++
		taskLog.Warnf("HTML parse failed, page skipped: %v", err)
		return
	}

	record := c.extractor.Extract(doc, rawURL)
	c.corpus[rawURL] = record
	c.pagesProcessed++

	discovered := c.discoverLinks(doc)
	c.frontier.PushAll(discovered)
	taskLog.WithFields(logrus.Fields{
		"links_enqueued": len(discovered),
		"frontier_len":   c.frontier.Len(),
	}).Info("Processed page")
}

// discoverLinks scans anchors, resolves hrefs against the base URL, and
// applies the should-follow policy. Accepted links are returned in document
// order; deduplication is deferred to the pop step.
func (c *Crawler) discoverLinks(doc *goquery.Document) []string {
	var accepted []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if href == "" || strings.HasPrefix(href, "#") {
			return // Same-page fragment links are never followed
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := c.base.ResolveReference(ref)
		if c.shouldFollow(resolved) {
			accepted = append(accepted, resolved.String())
		}
	})
	return accepted
}

// shouldFollow rejects links outside the configured base host and accepts
// those whose path contains any follow keyword, case-insensitively.
func (c *Crawler) shouldFollow(u *url.URL) bool {
	if u.Hostname() != c.base.Hostname() {
		return false
	}
	pathLower := strings.ToLower(u.Path)
	for _, kw := range followKeywords {
		if strings.Contains(pathLower, kw) {
			return true
		}
	}
	return false
}
