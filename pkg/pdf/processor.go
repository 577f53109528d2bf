package pdf

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"med-scraper/pkg/classify"
	"med-scraper/pkg/config"
	"med-scraper/pkg/process"
	"med-scraper/pkg/utils"
)

// Document type patterns matched against PDF filenames, checked in order.
// First match wins; unmatched files fall through to other/general.
type typePattern struct {
	docType string
	subtype string
	re      *regexp.Regexp
}

var typePatterns = []typePattern{
	{"financial", "coa", regexp.MustCompile(`(?i)COA\.pdf$|Cost.+Attendance`)},
	{"financial", "scholarship", regexp.MustCompile(`(?i)Scholar|Award`)},
	{"financial", "budget", regexp.MustCompile(`(?i)Budget`)},
	{"financial", "aid", regexp.MustCompile(`(?i)Aid|FAFSA`)},
	{"admissions", "requirements", regexp.MustCompile(`(?i)Requirements|Prerequisites`)},
	{"admissions", "policies", regexp.MustCompile(`(?i)Policies|Procedures`)},
	{"admissions", "program_info", regexp.MustCompile(`(?i)Program|Curriculum`)},
	{"admissions", "timeline", regexp.MustCompile(`(?i)Timeline|Schedule`)},
}

var admissionsRequirementRe = regexp.MustCompile(`(?i)(?:required|prerequisite):[^.]*\.`)

// DetermineType classifies a PDF by filename into (docType, subtype).
func DetermineType(filename string) (string, string) {
	for _, p := range typePatterns {
		if p.re.MatchString(filename) {
			return p.docType, p.subtype
		}
	}
	return "other", "general"
}

// DocMetadata identifies a processed PDF.
type DocMetadata struct {
	Filename string `json:"filename"`
	Type     string `json:"type"`
	Subtype  string `json:"subtype"`
}

// ChunkMetadata is carried with every chunk for downstream retrieval.
type ChunkMetadata struct {
	DocType  string `json:"doc_type"`
	Subtype  string `json:"subtype"`
	Filename string `json:"filename"`
}

// DocChunk is one embedding-ready chunk of a document.
type DocChunk struct {
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
}

// DocContent holds everything extracted from one document.
type DocContent struct {
	Text          []PageContent       `json:"text"`
	ExtractedData map[string][]string `json:"extracted_data"`
	Chunks        []DocChunk          `json:"chunks"`
}

// ProcessedDoc is the per-document processing result.
type ProcessedDoc struct {
	Metadata DocMetadata `json:"metadata"`
	Content  DocContent  `json:"content"`
}

// TypeSummary counts processed files of one document type.
type TypeSummary struct {
	Count int      `json:"count"`
	Files []string `json:"files"`
}

// RunSummary is the processing summary written alongside per-document output.
type RunSummary struct {
	ProcessedFiles []string                `json:"processed_files"`
	FailedFiles    []string                `json:"failed_files"`
	Summary        map[string]*TypeSummary `json:"summary"`
}

// Processor extracts, analyzes and chunks every downloaded PDF.
type Processor struct {
	cfg *config.AppConfig
	log *logrus.Entry
}

// NewProcessor creates a Processor over cfg.PDFDir().
func NewProcessor(cfg *config.AppConfig, logger *logrus.Entry) *Processor {
	return &Processor{cfg: cfg, log: logger.WithField("component", "pdf_processor")}
}

func extractFinancialData(text string) map[string][]string {
	return map[string][]string{
		"amounts":      nonNil(classify.ExtractAmounts(text)),
		"deadlines":    nonNil(classify.ExtractDeadlines(text)),
		"requirements": nonNil(classify.ExtractRequirements(text)),
	}
}

func extractAdmissionsData(text string) map[string][]string {
	return map[string][]string{
		"requirements": nonNil(admissionsRequirementRe.FindAllString(text, -1)),
		"deadlines":    nonNil(classify.ExtractDeadlines(text)),
		"mcat_scores":  nonNil(classify.ExtractMCATRanges(text)),
		"gpa_info":     nonNil(classify.ExtractGPARanges(text)),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// ProcessFile processes a single PDF: per-page text, type-specific structured
// extraction, and embedding chunks. The per-document JSON is written to the
// processed directory.
func (p *Processor) ProcessFile(pdfPath string) (*ProcessedDoc, error) {
	filename := filepath.Base(pdfPath)
	docType, subtype := DetermineType(filename)
	log := p.log.WithFields(logrus.Fields{"file": filename, "type": docType, "subtype": subtype})
	log.Info("Processing PDF")

	pages, err := ExtractPages(pdfPath)
	if err != nil {
		return nil, err
	}

	var fullText strings.Builder
	for _, page := range pages {
		fullText.WriteString(page.Text)
		fullText.WriteString("\n\n")
	}
	text := fullText.String()

	doc := &ProcessedDoc{
		Metadata: DocMetadata{Filename: filename, Type: docType, Subtype: subtype},
		Content: DocContent{
			Text:          pages,
			ExtractedData: map[string][]string{},
			Chunks:        []DocChunk{},
		},
	}

	switch docType {
	case "financial":
		doc.Content.ExtractedData = extractFinancialData(text)
	case "admissions":
		doc.Content.ExtractedData = extractAdmissionsData(text)
	}

	chunks, err := process.ChunkText(text, process.ChunkerConfig{
		ChunkSize:    p.cfg.ChunkSize,
		ChunkOverlap: p.cfg.ChunkOverlap,
	})
	if err != nil {
		log.WithError(err).Warn("Chunking failed, falling back to whole-document chunk")
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			chunks = []string{trimmed}
		}
	}
	for _, chunk := range chunks {
		doc.Content.Chunks = append(doc.Content.Chunks, DocChunk{
			Text:     chunk,
			Metadata: ChunkMetadata{DocType: docType, Subtype: subtype, Filename: filename},
		})
	}

	outName := strings.TrimSuffix(filename, filepath.Ext(filename)) + "_processed.json"
	outPath := filepath.Join(p.cfg.ProcessedPDFDir(), outName)
	if err := writeJSON(outPath, doc); err != nil {
		return nil, err
	}
	log.Info("Successfully processed PDF")
	return doc, nil
}

// ProcessAll processes every .pdf in the PDF directory, concurrently up to
// cfg.PDFWorkers, then writes the processing summary and the merged corpus.
func (p *Processor) ProcessAll(ctx context.Context) (*RunSummary, error) {
	for _, dir := range []string{p.cfg.ProcessedPDFDir(), filepath.Dir(p.cfg.MergedPDFFile())} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, utils.WrapErrorf(utils.ErrFilesystem, "creating output directory '%s': %v", dir, err)
		}
	}

	entries, err := os.ReadDir(p.cfg.PDFDir())
	if err != nil {
		return nil, utils.WrapErrorf(utils.ErrFilesystem, "reading PDF directory '%s': %v", p.cfg.PDFDir(), err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(strings.ToLower(entry.Name()), ".pdf") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	p.log.Infof("Found %d PDF files to process", len(files))

	results := &RunSummary{
		ProcessedFiles: []string{},
		FailedFiles:    []string{},
		Summary: map[string]*TypeSummary{
			"financial":  {Files: []string{}},
			"admissions": {Files: []string{}},
			"other":      {Files: []string{}},
		},
	}
	merged := make(map[string]*ProcessedDoc)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.PDFWorkers)
	for _, filename := range files {
		filename := filename
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := p.ProcessFile(filepath.Join(p.cfg.PDFDir(), filename))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				p.log.WithError(err).Errorf("Failed to process %s", filename)
				results.FailedFiles = append(results.FailedFiles, filename)
				return nil // Extraction failures are local, not fatal
			}
			results.ProcessedFiles = append(results.ProcessedFiles, filename)
			summary := results.Summary[doc.Metadata.Type]
			summary.Count++
			summary.Files = append(summary.Files, filename)
			merged[filename] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Strings(results.ProcessedFiles)
	sort.Strings(results.FailedFiles)
	for _, summary := range results.Summary {
		sort.Strings(summary.Files)
	}

	summaryPath := filepath.Join(p.cfg.ProcessedPDFDir(), "processing_summary.json")
	if err := writeJSON(summaryPath, results); err != nil {
		return nil, err
	}
	if err := writeJSON(p.cfg.MergedPDFFile(), merged); err != nil {
		return nil, err
	}

	p.log.Infof("PDF processing complete: %d processed, %d failed",
		len(results.ProcessedFiles), len(results.FailedFiles))
	for docType, summary := range results.Summary {
		p.log.Infof("  %s: %d files", docType, summary.Count)
	}
	for _, failed := range results.FailedFiles {
		p.log.Warnf("  failed: %s", failed)
	}
	p.log.Infof("Merged content saved to: %s", p.cfg.MergedPDFFile())
	return results, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return utils.WrapErrorf(utils.ErrFilesystem, "creating '%s': %v", path, err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		f.Close()
		return utils.WrapErrorf(utils.ErrFilesystem, "writing JSON to '%s': %v", path, err)
	}
	return f.Close()
}
