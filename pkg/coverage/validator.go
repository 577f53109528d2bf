package coverage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"

	"med-scraper/pkg/config"
	"med-scraper/pkg/models"
	"med-scraper/pkg/pdf"
	"med-scraper/pkg/retry"
	"med-scraper/pkg/utils"
)

// Page is a unit of analyzable content: a processed web page or a processed
// PDF document flattened into the same shape.
type Page struct {
	Key    string // URL or PDF filename
	Title  string
	Chunks []string
}

func (p Page) text() string {
	return strings.Join(p.Chunks, "\n")
}

// CategoryResult is the analysis outcome for one category.
type CategoryResult struct {
	Category string
	Analysis string
	Err      error
}

// Validator runs the LLM-backed coverage audit over the produced corpora.
type Validator struct {
	cfg    *config.AppConfig
	llm    llms.Model
	policy retry.Policy
	log    *logrus.Entry
}

// NewValidator creates a Validator using the given language model. The model
// is injected so tests can supply a fake.
func NewValidator(cfg *config.AppConfig, llm llms.Model, logger *logrus.Entry) *Validator {
	return &Validator{
		cfg: cfg,
		llm: llm,
		policy: retry.Policy{
			MaxAttempts:  3,
			InitialDelay: time.Second,
			MaxDelay:     30 * time.Second,
		},
		log: logger.WithField("component", "coverage_validator"),
	}
}

// LoadContent reads the processed web corpus and, when present, the merged
// PDF corpus. The PDF corpus being absent is not an error: the audit still
// runs over web content alone.
func (v *Validator) LoadContent() ([]Page, error) {
	var pages []Page

	var web map[string]models.ProcessedPage
	if err := readJSON(v.cfg.ProcessedCorpusFile(), &web); err != nil {
		return nil, err
	}
	for url, record := range web {
		pages = append(pages, Page{Key: url, Title: record.Title, Chunks: record.TextChunks})
	}

	var docs map[string]pdf.ProcessedDoc
	mergedPath := v.cfg.MergedPDFFile()
	if err := readJSON(mergedPath, &docs); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		v.log.Infof("No merged PDF corpus at %s, auditing web content only", mergedPath)
	}
	for filename, doc := range docs {
		chunks := make([]string, 0, len(doc.Content.Chunks))
		for _, chunk := range doc.Content.Chunks {
			chunks = append(chunks, chunk.Text)
		}
		pages = append(pages, Page{Key: filename, Title: filename, Chunks: chunks})
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].Key < pages[j].Key })
	v.log.Infof("Loaded %d pages/documents for coverage analysis", len(pages))
	return pages, nil
}

// selectContent picks the pages most relevant to a category, ordered by
// descending relevance (key order breaks ties for determinism). When no page
// passes the must-include gate, the first few pages serve as a fallback
// sample so the model still sees representative content.
func selectContent(pages []Page, cat *CategoryTaxonomy) []Page {
	type scored struct {
		page  Page
		score float64
	}
	var relevant []scored
	for _, page := range pages {
		if score := cat.Relevance(page.text()); score > 0 {
			relevant = append(relevant, scored{page, score})
		}
	}
	if len(relevant) == 0 {
		n := len(pages)
		if n > 5 {
			n = 5
		}
		return pages[:n]
	}
	sort.SliceStable(relevant, func(i, j int) bool { return relevant[i].score > relevant[j].score })
	selected := make([]Page, len(relevant))
	for i, s := range relevant {
		selected[i] = s.page
	}
	return selected
}

func (v *Validator) buildPrompt(cat *CategoryTaxonomy, pages []Page) string {
	var content strings.Builder
	for _, page := range pages {
		content.WriteString("\nPage: " + page.Key + "\n")
		content.WriteString("Title: " + page.Title + "\n")
		content.WriteString(page.text())
		content.WriteString("\n")
	}
	contentText := SmartTruncate(content.String(), v.cfg.LLMMaxContentChars)

	aspects := make([]string, len(cat.KeyAspects))
	for i, aspect := range cat.KeyAspects {
		aspects[i] = "- " + aspect
	}

	return fmt.Sprintf(`You are an expert in medical education and pre-medical advising. Analyze the following content from %s's website regarding %s.

Category Description: %s
Key Aspects to Look For:
%s

Analyze the content for coverage of these aspects. Consider:
1. Is each key aspect adequately covered?
2. Is the information clear and detailed enough for pre-med students?
3. Are there any significant gaps in coverage?
4. Are there unique programs or opportunities that should be highlighted?
5. What additional information would be valuable for pre-med students?

Content to analyze:
%s

Provide a structured analysis with:
1. Coverage Assessment (0-100%%)
2. Strengths
3. Gaps
4. Recommendations`,
		v.cfg.SchoolName, cat.Name, cat.Description, strings.Join(aspects, "\n"), contentText)
}

const systemPrompt = "You are an expert medical education advisor analyzing website content coverage."

// AnalyzeCategory submits one category's content to the language model,
// retrying transient failures per the shared retry policy.
func (v *Validator) AnalyzeCategory(ctx context.Context, pages []Page, cat *CategoryTaxonomy) CategoryResult {
	log := v.log.WithField("category", cat.Name)
	prompt := v.buildPrompt(cat, selectContent(pages, cat))

	var analysis string
	err := v.policy.Do(ctx, log, func() (bool, error) {
		resp, err := v.llm.GenerateContent(ctx,
			[]llms.MessageContent{
				llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
				llms.TextParts(llms.ChatMessageTypeHuman, prompt),
			},
			llms.WithTemperature(v.cfg.LLMTemperature),
		)
		if err != nil {
			return true, utils.WrapErrorf(utils.ErrLLMRequest, "analyzing '%s': %v", cat.Name, err)
		}
		if len(resp.Choices) == 0 {
			return true, utils.WrapErrorf(utils.ErrLLMRequest, "empty response analyzing '%s'", cat.Name)
		}
		analysis = resp.Choices[0].Content
		return false, nil
	})
	if err != nil {
		log.WithError(err).Error("Category analysis failed")
		return CategoryResult{Category: cat.Name, Err: err}
	}
	log.Info("Completed category analysis")
	return CategoryResult{Category: cat.Name, Analysis: analysis}
}

// ValidateCoverage analyzes every core category in order.
func (v *Validator) ValidateCoverage(ctx context.Context) ([]CategoryResult, error) {
	pages, err := v.LoadContent()
	if err != nil {
		return nil, err
	}

	v.log.Infof("Starting content validation for %s", v.cfg.SchoolName)
	results := make([]CategoryResult, 0, len(CoreCategories))
	for i := range CoreCategories {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		cat := &CoreCategories[i]
		v.log.Infof("Analyzing category: %s", cat.Name)
		results = append(results, v.AnalyzeCategory(ctx, pages, cat))
	}
	v.log.Info("Validation complete")
	return results, nil
}

// GenerateReport renders the results as a plain-text report and writes it
// under the reports directory. Returns the report path.
func (v *Validator) GenerateReport(results []CategoryResult) (string, error) {
	now := time.Now()

	var report strings.Builder
	report.WriteString("Content Coverage Analysis Report\n")
	report.WriteString("School: " + v.cfg.SchoolName + "\n")
	report.WriteString("Date: " + now.Format("2006-01-02 15:04:05") + "\n\n")
	report.WriteString("Executive Summary\n")
	report.WriteString("================\n")
	for _, result := range results {
		report.WriteString("\n\n" + result.Category + "\n")
		report.WriteString(strings.Repeat("=", len(result.Category)) + "\n")
		if result.Err != nil {
			report.WriteString("Error during analysis: " + result.Err.Error() + "\n")
		} else {
			report.WriteString(result.Analysis)
		}
	}

	dir := v.cfg.ReportsDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", utils.WrapErrorf(utils.ErrFilesystem, "creating reports directory '%s': %v", dir, err)
	}
	name := fmt.Sprintf("%s_coverage_report_%s.txt",
		utils.SanitizeFilename(v.cfg.SchoolName), now.Format("20060102_150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(report.String()), 0644); err != nil {
		return "", utils.WrapErrorf(utils.ErrFilesystem, "writing report '%s': %v", path, err)
	}
	v.log.Infof("Report generated: %s", path)
	return path, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return utils.WrapErrorf(utils.ErrFilesystem, "reading '%s': %v", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return utils.WrapErrorf(utils.ErrParsing, "JSON decode of '%s': %v", path, err)
	}
	return nil
}
