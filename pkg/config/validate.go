package config

import (
	"net/url"
	"strings"
	"time"

	"med-scraper/pkg/utils"
)

// defaultSeedPaths is the fixed catalog of paths believed relevant. It seeds
// both the frontier and the known-path list used for 404 recovery.
var defaultSeedPaths = []string{
	"/education/financial-aid",
	"/education/student-financial-services",
	"/education/enhanced-scholarship-initiative",
	"/education/financial-aid/application",
	"/education/financial-aid/md-need-based",
	"/education/financial-aid/css-profile",
	"/education/financial-aid/fafsa",
	"/education/financial-aid/loans",
	"/education/financial-aid/tuition",
	"/education/financial-aid/payment",
	"/education/financial-aid/scholarships",
	"/education/admissions/financial-aid",
	"/education/medical/financial-aid",
}

// defaultSupplementaryPages are always-included seed pages outside the
// financial catalog.
var defaultSupplementaryPages = []string{
	"/education/medical/admissions",
	"/education/medical/curriculum-program",
	"/education/medical/student-affairs",
}

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

// Validate checks AppConfig fields and applies sensible defaults.
// Returns collected warnings and any fatal error.
// Modifies receiver in place to apply defaults.
func (c *AppConfig) Validate() (warnings []string, err error) {
	if c.SiteKey == "" {
		c.SiteKey = "mount_sinai"
	}
	if c.SchoolName == "" {
		c.SchoolName = "Mount Sinai"
	}

	if c.BaseURL == "" {
		c.BaseURL = "https://icahn.mssm.edu"
	}
	parsed, parseErr := url.Parse(c.BaseURL)
	if parseErr != nil || parsed.Scheme == "" || parsed.Host == "" {
		return warnings, utils.WrapErrorf(utils.ErrConfigInvalid, "base_url '%s' is not an absolute URL", c.BaseURL)
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	if c.OutputBaseDir == "" {
		warnings = append(warnings, "output_base_dir is empty, defaulting to './scraped_content'")
		c.OutputBaseDir = "./scraped_content"
	}
	if c.StateDir == "" {
		warnings = append(warnings, "state_dir is empty, defaulting to './scraper_state'")
		c.StateDir = "./scraper_state"
	}

	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.CourtesyDelay < 0 {
		warnings = append(warnings, "courtesy_delay cannot be negative, setting to 0")
		c.CourtesyDelay = 0
	}
	if c.CourtesyDelay == 0 {
		c.CourtesyDelay = 2 * time.Second
	}
	if c.RateLimitCooldown <= 0 {
		c.RateLimitCooldown = 30 * time.Second
	}

	if c.MaxRetries < 0 {
		warnings = append(warnings, "max_retries cannot be negative, setting to 0")
		c.MaxRetries = 0
	}
	if c.MaxRetries == 0 && c.InitialRetryDelay == 0 {
		c.MaxRetries = 3
	}
	if c.MaxRetries > 0 {
		if c.InitialRetryDelay <= 0 {
			c.InitialRetryDelay = 1 * time.Second
		}
		if c.MaxRetryDelay <= 0 {
			c.MaxRetryDelay = 30 * time.Second
		}
	}
	if c.InitialRetryDelay > c.MaxRetryDelay && c.MaxRetryDelay > 0 {
		warnings = append(warnings, "initial_retry_delay exceeds max_retry_delay, using max_retry_delay for initial")
		c.InitialRetryDelay = c.MaxRetryDelay
	}

	if len(c.SeedPaths) == 0 {
		c.SeedPaths = append([]string(nil), defaultSeedPaths...)
	}
	if len(c.SupplementaryPages) == 0 {
		c.SupplementaryPages = append([]string(nil), defaultSupplementaryPages...)
	}
	for i, p := range c.SeedPaths {
		if !strings.HasPrefix(p, "/") {
			return warnings, utils.WrapErrorf(utils.ErrConfigInvalid, "seed_paths[%d] '%s' must start with '/'", i, p)
		}
	}

	// HTTP client defaults
	h := &c.HTTPClientSettings
	if h.Timeout <= 0 {
		h.Timeout = 30 * time.Second
	}
	if h.MaxIdleConns <= 0 {
		h.MaxIdleConns = 100
	}
	if h.MaxIdleConnsPerHost <= 0 {
		h.MaxIdleConnsPerHost = 2
	}
	if h.IdleConnTimeout <= 0 {
		h.IdleConnTimeout = 90 * time.Second
	}
	if h.TLSHandshakeTimeout <= 0 {
		h.TLSHandshakeTimeout = 10 * time.Second
	}
	if h.ExpectContinueTimeout <= 0 {
		h.ExpectContinueTimeout = 1 * time.Second
	}
	if h.DialerTimeout <= 0 {
		h.DialerTimeout = 15 * time.Second
	}
	if h.DialerKeepAlive <= 0 {
		h.DialerKeepAlive = 30 * time.Second
	}

	if c.TokenizerEncoding == "" {
		c.TokenizerEncoding = "cl100k_base"
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = 512
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		warnings = append(warnings, "chunk_overlap must be in [0, chunk_size), defaulting to 50")
		c.ChunkOverlap = 50
	}
	if c.ChunkOverlap == 0 {
		c.ChunkOverlap = 50
	}
	if c.PDFWorkers <= 0 {
		c.PDFWorkers = 4
	}

	if c.LLMModel == "" {
		c.LLMModel = "gpt-4o"
	}
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		warnings = append(warnings, "llm_temperature out of range, defaulting to 0.2")
		c.LLMTemperature = 0.2
	}
	if c.LLMTemperature == 0 {
		c.LLMTemperature = 0.2
	}
	if c.LLMMaxContentChars <= 0 {
		c.LLMMaxContentChars = 8000
	}

	return warnings, nil
}
