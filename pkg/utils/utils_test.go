package utils

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clean name passes through", "COA_2026.pdf", "COA_2026.pdf"},
		{"invalid chars replaced", `fees:2026/fall?.pdf`, "fees_2026_fall_.pdf"},
		{"consecutive underscores collapsed", "a___b", "a_b"},
		{"leading and trailing trimmed", "_report_", "report"},
		{"empty becomes untitled", "", "untitled"},
		{"only invalid chars becomes untitled", `<>:"`, "untitled"},
		{"long name truncated", strings.Repeat("a", 150), strings.Repeat("a", 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.input); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestWrapErrorf(t *testing.T) {
	err := WrapErrorf(ErrDatabase, "reading key %q", "pdf:x")
	if !errors.Is(err, ErrDatabase) {
		t.Error("wrapped error should match its sentinel via errors.Is")
	}
	if !strings.Contains(err.Error(), `reading key "pdf:x"`) {
		t.Errorf("wrapped error missing context: %v", err)
	}
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "None"},
		{"page not found", WrapErrorf(ErrPageNotFound, "url %s", "https://x"), "HTTP_404"},
		{"rate limited", ErrRateLimited, "HTTP_RateLimited"},
		{"client 403", WrapErrorf(ErrClientHTTPError, "status 403 at /a"), "HTTP_403"},
		{"client 4xx generic", WrapErrorf(ErrClientHTTPError, "status 410"), "HTTP_4xx"},
		{"server 5xx", WrapErrorf(ErrServerHTTPError, "status 503"), "HTTP_5xx"},
		{"retry exhausted server", fmt.Errorf("%w: %w", ErrRetryFailed, ErrServerHTTPError), "RetryFailed_HTTPServer"},
		{"retry exhausted timeout", fmt.Errorf("%w: %w", ErrRetryFailed, errors.New("dial tcp: i/o timeout")), "RetryFailed_NetworkTimeout"},
		{"parsing URL", WrapErrorf(ErrParsing, "invalid URL %q", ":bad"), "Content_ParsingURL"},
		{"parsing PDF", WrapErrorf(ErrParsing, "PDF page extraction"), "Content_ParsingPDF"},
		{"empty content", ErrEmptyContent, "Content_Empty"},
		{"database", WrapErrorf(ErrDatabase, "txn failed"), "Database_Other"},
		{"llm", WrapErrorf(ErrLLMRequest, "model call"), "LLM_RequestFailed"},
		{"config", WrapErrorf(ErrConfigInvalid, "bad base url"), "Config_Validation"},
		{"context canceled", context.Canceled, "System_ContextCanceled"},
		{"connection refused string", errors.New("dial tcp 127.0.0.1:80: connection refused"), "Network_ConnectionRefused"},
		{"unknown", errors.New("something odd"), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CategorizeError(tt.err); got != tt.want {
				t.Errorf("CategorizeError(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
