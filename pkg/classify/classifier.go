// Package classify maps page sections to financial/admissions content
// categories using keyword triggers on the section heading, and surfaces
// structured facts (amounts, deadlines, scores) as a synthesized summary line.
package classify

import (
	"regexp"
	"strings"

	"med-scraper/pkg/clean"
	"med-scraper/pkg/models"
)

// rule binds a category to its heading trigger keywords and an optional
// structured-extraction pattern run over the cleaned section body.
type rule struct {
	category models.Category
	keywords []string
	label    string         // Summary line label (only used when extract is set)
	extract  *regexp.Regexp // Optional pattern for structured facts
}

var (
	amountRe      = regexp.MustCompile(`\$[\d,]+(?:\.\d{2})?(?:\s*(?:per|/)\s*(?:semester|year|term))?`)
	deadlineRe    = regexp.MustCompile(`(?i)(?:deadline|due|by)[:\s].*?(?:\d{1,2}/\d{1,2}/\d{2,4}|\d{4}-\d{2}-\d{2})`)
	awardRe       = regexp.MustCompile(`(?i)(?:award|scholarship)[:\s].*?(?:\$[\d,]+(?:\.\d{2})?|full tuition)`)
	requirementRe = regexp.MustCompile(`(?i)(?:required|must submit|need to)[^.]*\.`)
	mcatRangeRe   = regexp.MustCompile(`\d{3}(?:\s*-\s*\d{3})?(?:\s*or\s*above)?`)
	gpaRangeRe    = regexp.MustCompile(`\d+\.\d+(?:\s*-\s*\d+\.\d+)?(?:\s*or\s*above)?`)
)

// rules is evaluated in declaration order; the first matching category wins.
// The order is part of the classifier's contract and must not change, or
// previously produced corpora stop being reproducible.
var rules = []rule{
	{models.CategoryTuition, []string{"tuition", "cost", "fee", "expense", "payment", "billing"}, "Amount Information", amountRe},
	{models.CategoryAid, []string{"financial aid", "fafsa", "css profile", "need-based", "assistance"}, "Important Deadlines", deadlineRe},
	{models.CategoryScholarships, []string{"scholarship", "grant", "award", "merit"}, "Available Awards", awardRe},
	{models.CategoryLoans, []string{"loan", "borrowing", "repayment", "debt"}, "", nil},
	{models.CategoryCostOfLiving, []string{"living expense", "housing cost", "budget", "cost of attendance"}, "", nil},
	{models.CategoryRequirements, []string{"requirement", "prerequisite", "coursework"}, "Stated Requirements", requirementRe},
	{models.CategoryMCAT, []string{"mcat"}, "Score Ranges", mcatRangeRe},
	{models.CategoryGPA, []string{"gpa", "grade point"}, "GPA Ranges", gpaRangeRe},
	{models.CategoryTimeline, []string{"timeline", "deadline", "schedule", "important dates"}, "Key Dates", deadlineRe},
	{models.CategoryInterview, []string{"interview"}, "", nil},
	{models.CategorySelection, []string{"selection", "criteria", "evaluation", "holistic"}, "", nil},
}

// Classify determines the content category for a section. It lower-cases the
// section title, tests it against each rule's keywords in declaration order,
// and returns the first match along with the cleaned body text, enriched with
// a prepended summary line when the rule's extraction pattern finds matches.
//
// The returned text is the cleaned body in all cases. When the cleaned body
// is empty, or no rule matches, matched is false; callers should skip the
// section entirely when the returned text is empty.
func Classify(sectionTitle, body string) (category models.Category, text string, matched bool) {
	cleaned := clean.Clean(body)
	if cleaned == "" {
		return "", "", false
	}

	titleLower := strings.ToLower(sectionTitle)
	for _, r := range rules {
		if !matchesAny(titleLower, r.keywords) {
			continue
		}
		if r.extract != nil {
			if found := r.extract.FindAllString(cleaned, -1); len(found) > 0 {
				cleaned = r.label + ": " + strings.Join(found, ", ") + "\n" + cleaned
			}
		}
		return r.category, cleaned, true
	}
	return "", cleaned, false
}

func matchesAny(titleLower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(titleLower, kw) {
			return true
		}
	}
	return false
}

// ExtractAmounts returns currency amount expressions found in text.
// Shared with the PDF pipeline, which applies the same extraction philosophy
// over full-document text rather than per section.
func ExtractAmounts(text string) []string { return amountRe.FindAllString(text, -1) }

// ExtractDeadlines returns deadline-shaped date expressions found in text.
func ExtractDeadlines(text string) []string { return deadlineRe.FindAllString(text, -1) }

// ExtractRequirements returns requirement-prefixed sentences found in text.
func ExtractRequirements(text string) []string { return requirementRe.FindAllString(text, -1) }

// ExtractMCATRanges returns MCAT-style three-digit score ranges found in text.
func ExtractMCATRanges(text string) []string { return mcatRangeRe.FindAllString(text, -1) }

// ExtractGPARanges returns GPA-style decimal ranges found in text.
func ExtractGPARanges(text string) []string { return gpaRangeRe.FindAllString(text, -1) }
