package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"med-scraper/pkg/config"
	"med-scraper/pkg/retry"
	"med-scraper/pkg/utils"
)

// redirectKeywords trigger known-path registration when they appear in the
// final URL after a redirect.
var redirectKeywords = []string{"financial", "tuition", "scholarship", "aid"}

// Fetcher performs HTTP GETs with a browser identity, a fixed courtesy delay
// before every request, redirect tracking into the known-path list, and
// tiered error recovery (alternate known paths on 404, cooldown-and-retry on
// 429/403, bounded retry with backoff on 5xx and network errors).
type Fetcher struct {
	client *http.Client
	cfg    *config.AppConfig
	base   *url.URL
	known  *KnownPaths
	policy retry.Policy
	log    *logrus.Entry
}

// NewFetcher creates a Fetcher. The known-path list is shared with the crawl
// controller, which also seeds the frontier from it.
func NewFetcher(client *http.Client, cfg *config.AppConfig, known *KnownPaths, log *logrus.Entry) (*Fetcher, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, utils.WrapErrorf(utils.ErrParsing, "base URL '%s': %v", cfg.BaseURL, err)
	}
	return &Fetcher{
		client: client,
		cfg:    cfg,
		base:   base,
		known:  known,
		policy: retry.Policy{
			MaxAttempts:  cfg.MaxRetries + 1,
			InitialDelay: cfg.InitialRetryDelay,
			MaxDelay:     cfg.MaxRetryDelay,
		},
		log: log,
	}, nil
}

// KnownPaths exposes the shared known-path list.
func (f *Fetcher) KnownPaths() *KnownPaths {
	return f.known
}

// Fetch retrieves the HTML body of a URL. Failures are returned as errors the
// caller treats as non-fatal; the crawl continues with the next frontier item.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	reqLog := f.log.WithField("url", rawURL)
	reqLog.Info("Fetching page")

	if err := f.courtesyPause(ctx); err != nil {
		return "", err
	}

	resp, err := f.doWithRetry(ctx, rawURL)
	if err != nil {
		return "", err
	}
	// resp.Body is open; every branch below must consume or discard it.

	f.trackRedirect(rawURL, resp.Request.URL, reqLog)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return readAndClose(resp)

	case resp.StatusCode == http.StatusNotFound:
		drainAndClose(resp)
		reqLog.Warn("Got 404, trying alternate known paths")
		return f.tryKnownPaths(ctx, rawURL, reqLog)

	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden:
		drainAndClose(resp)
		reqLog.WithField("status_code", resp.StatusCode).Warnf("Rate limited, cooling down %v before one retry", f.cfg.RateLimitCooldown)
		return f.cooldownRetry(ctx, rawURL, reqLog)

	default:
		drainAndClose(resp)
		return "", utils.WrapErrorf(utils.ErrClientHTTPError, "status %d %s for '%s'", resp.StatusCode, resp.Status, rawURL)
	}
}

// courtesyPause applies the fixed respectful delay before a request.
func (f *Fetcher) courtesyPause(ctx context.Context) error {
	if f.cfg.CourtesyDelay <= 0 {
		return nil
	}
	select {
	case <-time.After(f.cfg.CourtesyDelay):
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context cancelled during courtesy delay: %w", ctx.Err())
	}
}

// doOnce performs a single GET with the browser header set.
func (f *Fetcher) doOnce(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, utils.WrapErrorf(utils.ErrRequestCreation, "for '%s': %v", rawURL, err)
	}
	ApplyBrowserHeaders(req, f.cfg.UserAgent)
	return f.client.Do(req)
}

// doWithRetry performs the GET under the retry policy. Network errors and 5xx
// responses are retried with exponential backoff; any response below 500 is
// returned to the caller for tiered handling, body open.
func (f *Fetcher) doWithRetry(ctx context.Context, rawURL string) (*http.Response, error) {
	reqLog := f.log.WithField("url", rawURL)
	var resp *http.Response

	err := f.policy.Do(ctx, reqLog, func() (bool, error) {
		r, doErr := f.doOnce(ctx, rawURL)
		if doErr != nil {
			if ctx.Err() != nil {
				return false, doErr // Context errors are not retryable
			}
			return true, doErr // Transient network failure
		}
		if r.StatusCode >= 500 {
			drainAndClose(r)
			return true, utils.WrapErrorf(utils.ErrServerHTTPError, "status %d %s", r.StatusCode, r.Status)
		}
		resp = r
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// trackRedirect registers the final path in the known-path list when the
// request was redirected and the final URL looks relevant.
func (f *Fetcher) trackRedirect(requested string, final *url.URL, reqLog *logrus.Entry) {
	if final == nil || final.String() == requested {
		return
	}
	reqLog.WithField("final_url", final.String()).Info("URL redirected")

	finalLower := strings.ToLower(final.String())
	for _, kw := range redirectKeywords {
		if strings.Contains(finalLower, kw) {
			if f.known.Add(final.Path) {
				reqLog.WithField("path", final.Path).Debug("Registered redirect target as known path")
			}
			return
		}
	}
}

// tryKnownPaths attempts each known path as an absolute URL against the base
// host, skipping the failed URL's own path. Parent paths of the failed URL
// are eligible: a 404 under /education/financial-aid/tuition can be
// substituted by /education/financial-aid. Returns the first successful body.
func (f *Fetcher) tryKnownPaths(ctx context.Context, failedURL string, reqLog *logrus.Entry) (string, error) {
	failedPath := failedURL
	if u, err := url.Parse(failedURL); err == nil {
		failedPath = u.Path
	}
	for _, p := range f.known.Snapshot() {
		if p == failedPath {
			continue
		}
		altURL := f.base.ResolveReference(&url.URL{Path: p}).String()

		resp, err := f.doOnce(ctx, altURL)
		if err != nil {
			if ctx.Err() != nil {
				return "", err
			}
			continue
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			reqLog.WithField("alt_url", altURL).Info("Found alternative path")
			return readAndClose(resp)
		}
		drainAndClose(resp)
	}
	return "", utils.WrapErrorf(utils.ErrPageNotFound, "'%s'", failedURL)
}

// cooldownRetry sleeps the fixed cooldown, then retries the original request
// exactly once.
func (f *Fetcher) cooldownRetry(ctx context.Context, rawURL string, reqLog *logrus.Entry) (string, error) {
	select {
	case <-time.After(f.cfg.RateLimitCooldown):
	case <-ctx.Done():
		return "", fmt.Errorf("context cancelled during rate-limit cooldown: %w", ctx.Err())
	}

	resp, err := f.doOnce(ctx, rawURL)
	if err != nil {
		return "", utils.WrapErrorf(utils.ErrRateLimited, "'%s': %v", rawURL, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		reqLog.Info("Cooldown retry succeeded")
		return readAndClose(resp)
	}
	drainAndClose(resp)
	return "", utils.WrapErrorf(utils.ErrRateLimited, "'%s': status %d after cooldown", rawURL, resp.StatusCode)
}

func readAndClose(resp *http.Response) (string, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading body from '%s': %w", resp.Request.URL, err)
	}
	return string(body), nil
}

func drainAndClose(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
