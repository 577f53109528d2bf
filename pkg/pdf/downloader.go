package pdf

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"med-scraper/pkg/config"
	"med-scraper/pkg/fetch"
	"med-scraper/pkg/models"
	"med-scraper/pkg/storage"
	"med-scraper/pkg/utils"
)

// Downloader saves PDF documents discovered during a crawl, recording every
// attempt in a persistent ledger so repeat runs skip files already on disk.
type Downloader struct {
	client *http.Client
	cfg    *config.AppConfig
	ledger storage.PDFLedger
	dir    string
	log    *logrus.Entry
}

// NewDownloader creates a Downloader writing into cfg.PDFDir().
func NewDownloader(cfg *config.AppConfig, client *http.Client, ledger storage.PDFLedger, logger *logrus.Entry) (*Downloader, error) {
	dir := cfg.PDFDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, utils.WrapErrorf(utils.ErrFilesystem, "creating PDF directory '%s': %v", dir, err)
	}
	return &Downloader{
		client: client,
		cfg:    cfg,
		ledger: ledger,
		dir:    dir,
		log:    logger.WithField("component", "pdf_downloader"),
	}, nil
}

// filenameFor derives a safe local filename from the URL's last path segment.
func filenameFor(rawURL string) string {
	name := "document"
	if u, err := url.Parse(rawURL); err == nil {
		if seg := path.Base(u.Path); seg != "" && seg != "/" && seg != "." {
			name = seg
		}
	}
	name = utils.SanitizeFilename(name)
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name
}

// Download fetches a PDF URL and stores it locally. A URL already recorded as
// a successful download is skipped when the file still exists on disk.
// Failures are recorded in the ledger and returned.
func (d *Downloader) Download(ctx context.Context, rawURL string) error {
	log := d.log.WithField("url", rawURL)

	status, entry, err := d.ledger.CheckPDF(rawURL)
	if err != nil {
		log.WithError(err).Warn("Ledger lookup failed, attempting download anyway")
	}
	if status == models.PDFStatusSuccess && entry != nil {
		local := filepath.Join(d.dir, entry.LocalPath)
		if _, statErr := os.Stat(local); statErr == nil {
			log.Debugf("PDF already downloaded: %s", entry.LocalPath)
			return nil
		}
		log.Warnf("Ledger says downloaded but file missing, re-fetching: %s", entry.LocalPath)
	}

	filename := filenameFor(rawURL)
	destPath := filepath.Join(d.dir, filename)

	size, err := d.fetchToFile(ctx, rawURL, destPath)
	now := time.Now().UTC()
	if err != nil {
		recordErr := d.ledger.RecordPDF(rawURL, &models.PDFDBEntry{
			Status:      models.PDFStatusFailure,
			ErrorType:   utils.CategorizeError(err),
			LastAttempt: now,
		})
		if recordErr != nil {
			log.WithError(recordErr).Error("Failed to record PDF failure in ledger")
		}
		return err
	}

	if recordErr := d.ledger.RecordPDF(rawURL, &models.PDFDBEntry{
		Status:      models.PDFStatusSuccess,
		LocalPath:   filename,
		SizeBytes:   size,
		LastAttempt: now,
	}); recordErr != nil {
		log.WithError(recordErr).Error("Failed to record PDF success in ledger")
	}
	log.Infof("Downloaded PDF (%d bytes): %s", size, filename)
	return nil
}

func (d *Downloader) fetchToFile(ctx context.Context, rawURL, destPath string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, utils.WrapErrorf(utils.ErrRequestCreation, "creating PDF request for '%s': %v", rawURL, err)
	}
	fetch.ApplyBrowserHeaders(req, d.cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf,*/*;q=0.8")

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching PDF '%s': %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		if resp.StatusCode >= 500 {
			return 0, utils.WrapErrorf(utils.ErrServerHTTPError, "PDF fetch status %d for '%s'", resp.StatusCode, rawURL)
		}
		return 0, utils.WrapErrorf(utils.ErrClientHTTPError, "PDF fetch status %d for '%s'", resp.StatusCode, rawURL)
	}

	tmpPath := destPath + ".partial"
	f, err := os.Create(tmpPath)
	if err != nil {
		return 0, utils.WrapErrorf(utils.ErrFilesystem, "creating '%s': %v", tmpPath, err)
	}
	size, err := io.Copy(f, resp.Body)
	closeErr := f.Close()
	if err != nil {
		os.Remove(tmpPath)
		return 0, utils.WrapErrorf(utils.ErrFilesystem, "writing '%s': %v", tmpPath, err)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return 0, utils.WrapErrorf(utils.ErrFilesystem, "closing '%s': %v", tmpPath, closeErr)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return 0, utils.WrapErrorf(utils.ErrFilesystem, "renaming '%s': %v", tmpPath, err)
	}
	return size, nil
}
