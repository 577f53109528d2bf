package models

// Category identifies a content bucket a page section can be classified into.
// The set is closed; rule order and display order are fixed for reproducibility.
type Category string

const (
	// Financial categories
	CategoryTuition      Category = "tuition"
	CategoryAid          Category = "aid"
	CategoryScholarships Category = "scholarships"
	CategoryLoans        Category = "loans"
	CategoryCostOfLiving Category = "cost_of_living"

	// Admissions categories
	CategoryRequirements Category = "requirements"
	CategoryMCAT         Category = "mcat"
	CategoryGPA          Category = "gpa"
	CategoryTimeline     Category = "timeline"
	CategoryInterview    Category = "interview"
	CategorySelection    Category = "selection"
)

// DisplayOrder returns all categories in the fixed order used for processed
// output: financial buckets first, then admissions buckets.
func DisplayOrder() []Category {
	return []Category{
		CategoryTuition,
		CategoryAid,
		CategoryScholarships,
		CategoryLoans,
		CategoryCostOfLiving,
		CategoryRequirements,
		CategoryMCAT,
		CategoryGPA,
		CategoryTimeline,
		CategoryInterview,
		CategorySelection,
	}
}

// displayNames maps categories to the headings used for processed text chunks.
var displayNames = map[Category]string{
	CategoryTuition:      "Tuition and Fees",
	CategoryAid:          "Financial Aid",
	CategoryScholarships: "Scholarships and Grants",
	CategoryLoans:        "Loans",
	CategoryCostOfLiving: "Cost of Living",
	CategoryRequirements: "Admissions Requirements",
	CategoryMCAT:         "MCAT Scores",
	CategoryGPA:          "GPA Information",
	CategoryTimeline:     "Application Timeline",
	CategoryInterview:    "Interview Process",
	CategorySelection:    "Selection Criteria",
}

// DisplayName returns the human-readable heading for a category.
func (c Category) DisplayName() string {
	if name, ok := displayNames[c]; ok {
		return name
	}
	return string(c)
}

// GenericSection is a page section that matched no category.
type GenericSection struct {
	Heading string `json:"heading"`
	Content string `json:"content"`
}

// PageRecord is the structured result of extracting one page.
// It is created once per successfully fetched page and only appended to
// during its own construction.
type PageRecord struct {
	URL         string                `json:"url"`
	Title       string                `json:"title"`
	Intro       []string              `json:"intro"`
	Categorized map[Category][]string `json:"categorized"`
	Sections    []GenericSection      `json:"sections"`
}

// NewPageRecord returns a PageRecord with every category bucket initialized,
// so raw output has a stable shape across pages.
func NewPageRecord(url string) *PageRecord {
	categorized := make(map[Category][]string, len(displayNames))
	for _, c := range DisplayOrder() {
		categorized[c] = []string{}
	}
	return &PageRecord{
		URL:         url,
		Intro:       []string{},
		Categorized: categorized,
		Sections:    []GenericSection{},
	}
}

// Corpus maps each crawled URL to its page record. It is the single source of
// truth written out at the end of a run; there is no partial persistence.
type Corpus map[string]*PageRecord

// ProcessedPage is the flattened per-URL form written to the processed corpus.
type ProcessedPage struct {
	Title      string   `json:"title"`
	TextChunks []string `json:"text_chunks"`
}
