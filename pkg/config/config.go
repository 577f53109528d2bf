package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"med-scraper/pkg/utils"
)

// OutputDirEnvVar overrides output_base_dir when set in the environment.
const OutputDirEnvVar = "SCRAPER_OUTPUT_DIR"

// AppConfig holds the application configuration for all three pipelines
// (crawler, PDF processor, coverage validator).
type AppConfig struct {
	SiteKey       string `yaml:"site_key"`    // Used in output filenames
	SchoolName    string `yaml:"school_name"` // Used in validator prompts/reports
	BaseURL       string `yaml:"base_url"`
	OutputBaseDir string `yaml:"output_base_dir"`
	StateDir      string `yaml:"state_dir"` // PDF download ledger location

	UserAgent         string        `yaml:"user_agent,omitempty"`
	CourtesyDelay     time.Duration `yaml:"courtesy_delay,omitempty"`      // Fixed pause before every request
	RateLimitCooldown time.Duration `yaml:"rate_limit_cooldown,omitempty"` // Sleep before the single 429/403 retry
	MaxRetries        int           `yaml:"max_retries,omitempty"`
	InitialRetryDelay time.Duration `yaml:"initial_retry_delay,omitempty"`
	MaxRetryDelay     time.Duration `yaml:"max_retry_delay,omitempty"`

	SeedPaths          []string `yaml:"seed_paths,omitempty"`          // Known-path catalog, also seeds the frontier
	SupplementaryPages []string `yaml:"supplementary_pages,omitempty"` // Always-included extra seed paths

	HTTPClientSettings HTTPClientConfig `yaml:"http_client_settings,omitempty"`

	TokenizerEncoding string `yaml:"tokenizer_encoding,omitempty"`
	ChunkSize         int    `yaml:"chunk_size,omitempty"`    // Max PDF chunk size in tokens
	ChunkOverlap      int    `yaml:"chunk_overlap,omitempty"` // Overlap between PDF chunks in tokens
	PDFWorkers        int    `yaml:"pdf_workers,omitempty"`   // Concurrent PDF extractions

	LLMModel           string  `yaml:"llm_model,omitempty"`
	LLMTemperature     float64 `yaml:"llm_temperature,omitempty"`
	LLMMaxContentChars int     `yaml:"llm_max_content_chars,omitempty"` // Per-category prompt content cap
}

// HTTPClientConfig holds settings for the shared HTTP client.
type HTTPClientConfig struct {
	Timeout               time.Duration `yaml:"timeout,omitempty"`
	MaxIdleConns          int           `yaml:"max_idle_conns,omitempty"`
	MaxIdleConnsPerHost   int           `yaml:"max_idle_conns_per_host,omitempty"`
	IdleConnTimeout       time.Duration `yaml:"idle_conn_timeout,omitempty"`
	TLSHandshakeTimeout   time.Duration `yaml:"tls_handshake_timeout,omitempty"`
	ExpectContinueTimeout time.Duration `yaml:"expect_continue_timeout,omitempty"`
	DialerTimeout         time.Duration `yaml:"dialer_timeout,omitempty"`
	DialerKeepAlive       time.Duration `yaml:"dialer_keep_alive,omitempty"`
}

// Load reads and parses a YAML config file, then applies the environment
// override for the output directory. An empty path yields a config of pure
// defaults (applied later by Validate).
func Load(path string) (*AppConfig, error) {
	var cfg AppConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file '%s': %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, utils.WrapErrorf(utils.ErrConfigInvalid, "parsing config file '%s': %v", path, err)
		}
	}
	if dir := os.Getenv(OutputDirEnvVar); dir != "" {
		cfg.OutputBaseDir = dir
	}
	return &cfg, nil
}

// --- Derived output locations ---

// RawCorpusFile is the raw corpus JSON path.
func (c *AppConfig) RawCorpusFile() string {
	return filepath.Join(c.OutputBaseDir, "raw", c.SiteKey+"_raw.json")
}

// ProcessedCorpusFile is the processed (chunked) corpus JSON path.
func (c *AppConfig) ProcessedCorpusFile() string {
	return filepath.Join(c.OutputBaseDir, "processed", c.SiteKey+"_processed.json")
}

// PDFDir is where downloaded PDFs are stored.
func (c *AppConfig) PDFDir() string {
	return filepath.Join(c.OutputBaseDir, "pdfs")
}

// ProcessedPDFDir holds per-document PDF extraction JSON.
func (c *AppConfig) ProcessedPDFDir() string {
	return filepath.Join(c.OutputBaseDir, "processed_pdfs")
}

// MergedPDFFile is the merged PDF corpus JSON path.
func (c *AppConfig) MergedPDFFile() string {
	return filepath.Join(c.OutputBaseDir, "processed", c.SiteKey+"_pdfs_processed.json")
}

// ReportsDir holds coverage analysis reports.
func (c *AppConfig) ReportsDir() string {
	return filepath.Join(c.OutputBaseDir, "reports")
}
