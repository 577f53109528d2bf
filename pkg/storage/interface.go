package storage

import "med-scraper/pkg/models"

// PDFLedger tracks downloaded PDFs across runs, so re-crawls skip PDFs that
// were already fetched successfully. The page corpus itself is deliberately
// in-memory only; the ledger covers just the PDF download side.
type PDFLedger interface {
	// CheckPDF retrieves the recorded state of a PDF URL.
	// Returns PDFStatusNotFound when no entry exists.
	CheckPDF(rawURL string) (models.PDFStatus, *models.PDFDBEntry, error)

	// RecordPDF stores the download result for a PDF URL.
	RecordPDF(rawURL string, entry *models.PDFDBEntry) error

	// Count returns the number of ledger entries.
	Count() (int, error)

	// Close cleanly closes the underlying database.
	Close() error
}
