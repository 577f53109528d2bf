package crawler

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"med-scraper/pkg/clean"
	"med-scraper/pkg/config"
	"med-scraper/pkg/models"
	"med-scraper/pkg/utils"
)

// Writer serializes the accumulated corpus: a raw form mirroring the
// PageRecords, and a processed form flattened to ordered text chunks per URL.
type Writer struct {
	log           *logrus.Entry
	rawPath       string
	processedPath string
}

// NewWriter creates a Writer using the configured output locations.
func NewWriter(cfg *config.AppConfig, log *logrus.Entry) *Writer {
	return &Writer{
		log:           log,
		rawPath:       cfg.RawCorpusFile(),
		processedPath: cfg.ProcessedCorpusFile(),
	}
}

// WriteAll persists both corpus forms. Write errors are propagated; a failed
// final write means the run failed.
func (w *Writer) WriteAll(corpus models.Corpus) error {
	if err := writeJSON(w.rawPath, corpus); err != nil {
		return err
	}
	w.log.WithField("path", w.rawPath).Info("Raw corpus saved")

	if err := writeJSON(w.processedPath, BuildProcessed(corpus)); err != nil {
		return err
	}
	w.log.WithField("path", w.processedPath).Info("Processed corpus saved")
	return nil
}

// BuildProcessed flattens the corpus to the processed per-URL form. Each
// page's chunks go through the cleaning pass, which drops boilerplate and
// duplicate chunks before they reach the corpus file.
func BuildProcessed(corpus models.Corpus) map[string]models.ProcessedPage {
	processed := make(map[string]models.ProcessedPage, len(corpus))
	for url, record := range corpus {
		processed[url] = models.ProcessedPage{
			Title:      record.Title,
			TextChunks: clean.Chunks(BuildChunks(record)),
		}
	}
	return processed
}

// BuildChunks renders a record's text chunks in the fixed deterministic
// order: non-empty category buckets in display order (financial before
// admissions), then the introduction, then generic sections in page order.
func BuildChunks(record *models.PageRecord) []string {
	var chunks []string

	for _, category := range models.DisplayOrder() {
		bucket := record.Categorized[category]
		if len(bucket) == 0 {
			continue
		}
		chunk := category.DisplayName() + "\n\n"
		for i, entry := range bucket {
			if i > 0 {
				chunk += "\n\n"
			}
			chunk += entry
		}
		chunks = append(chunks, chunk)
	}

	if len(record.Intro) > 0 {
		chunk := "Introduction\n\n"
		for i, entry := range record.Intro {
			if i > 0 {
				chunk += "\n\n"
			}
			chunk += entry
		}
		chunks = append(chunks, chunk)
	}

	for _, section := range record.Sections {
		chunks = append(chunks, section.Heading+"\n\n"+section.Content)
	}

	return chunks
}

// writeJSON writes v as human-readable, UTF-8 JSON with 2-space indentation.
func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return utils.WrapErrorf(utils.ErrFilesystem, "creating output dir for '%s': %v", path, err)
	}
	file, err := os.Create(path)
	if err != nil {
		return utils.WrapErrorf(utils.ErrFilesystem, "creating '%s': %v", path, err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return utils.WrapErrorf(utils.ErrFilesystem, "encoding '%s': %v", path, err)
	}
	return nil
}
