package models

import "time"

// PDFStatus represents the download state of a PDF URL in the ledger.
type PDFStatus string

const (
	PDFStatusSuccess  PDFStatus = "success"
	PDFStatusFailure  PDFStatus = "failure"
	PDFStatusNotFound PDFStatus = "not_found" // No ledger entry for the URL
	PDFStatusDBError  PDFStatus = "db_error"
)

// PDFDBEntry stores the result of downloading a PDF URL.
type PDFDBEntry struct {
	Status      PDFStatus `json:"status"`
	LocalPath   string    `json:"local_path,omitempty"` // Relative path under the PDF directory (on success)
	SizeBytes   int64     `json:"size_bytes,omitempty"`
	ErrorType   string    `json:"error_type,omitempty"` // Error category (on failure)
	LastAttempt time.Time `json:"last_attempt"`
}
