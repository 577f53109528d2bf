// Package coverage audits the produced corpora for topical coverage gaps.
// Pages are scored against per-category term taxonomies and the most relevant
// content is submitted to a language model for gap analysis.
package coverage

import (
	"strings"
	"unicode/utf8"
)

// CategoryTaxonomy describes one information category prospective students
// need, together with the terms used to gate and rank page relevance.
// MustInclude terms gate inclusion: a page mentioning none of them scores
// zero. Primary terms contribute weight 2 and related terms weight 1 toward
// the relevance percentage.
type CategoryTaxonomy struct {
	Name        string
	Description string
	KeyAspects  []string
	MustInclude []string
	Primary     []string
	Related     []string
}

// CoreCategories is the fixed audit checklist, evaluated in order.
var CoreCategories = []CategoryTaxonomy{
	{
		Name:        "Admissions Process & Requirements",
		Description: "Understanding the complete application process, requirements, and selection criteria",
		KeyAspects: []string{
			"Application process steps and timeline",
			"Academic requirements (courses, GPA)",
			"Standardized test requirements",
			"Selection criteria and evaluation process",
			"Interview process",
			"Unique admissions programs or pathways",
		},
		MustInclude: []string{"admission", "application", "applicant"},
		Primary:     []string{"requirement", "mcat", "gpa", "deadline", "interview", "prerequisite"},
		Related:     []string{"transcript", "letter of recommendation", "amcas", "selection", "criteria", "timeline"},
	},
	{
		Name:        "Curriculum & Academic Experience",
		Description: "Details about the medical education program structure and learning experience",
		KeyAspects: []string{
			"Curriculum overview and structure",
			"Pre-clinical and clinical training",
			"Learning methods and resources",
			"Evaluation and grading systems",
			"Academic support services",
			"Unique educational programs or tracks",
		},
		MustInclude: []string{"curriculum", "course", "program"},
		Primary:     []string{"clinical", "preclinical", "clerkship", "rotation", "year"},
		Related:     []string{"grading", "elective", "track", "lecture", "small group", "academic support"},
	},
	{
		Name:        "Research & Scholarly Opportunities",
		Description: "Available research and academic enrichment opportunities",
		KeyAspects: []string{
			"Research programs and opportunities",
			"Mentorship availability",
			"Funding for research",
			"Publication and presentation opportunities",
			"Special research tracks or programs",
			"Research facilities and resources",
		},
		MustInclude: []string{"research"},
		Primary:     []string{"laboratory", "mentor", "funding", "publication", "scholarly"},
		Related:     []string{"investigator", "poster", "fellowship", "thesis", "project"},
	},
	{
		Name:        "Clinical Experience & Training",
		Description: "Clinical exposure and hands-on training opportunities",
		KeyAspects: []string{
			"Clinical rotation structure",
			"Hospital and clinical sites",
			"Patient interaction opportunities",
			"Specialty exposure",
			"Early clinical exposure programs",
			"Clinical skills development",
		},
		MustInclude: []string{"clinical", "hospital", "patient"},
		Primary:     []string{"rotation", "clerkship", "training", "site"},
		Related:     []string{"specialty", "preceptor", "shadowing", "skills", "simulation"},
	},
	{
		Name:        "Financial Information",
		Description: "Complete understanding of costs and financial support",
		KeyAspects: []string{
			"Tuition and fees",
			"Financial aid availability",
			"Scholarships and grants",
			"Loan programs",
			"Cost of living considerations",
			"Financial planning resources",
		},
		MustInclude: []string{"financial", "tuition", "cost"},
		Primary:     []string{"scholarship", "aid", "loan", "grant", "fee"},
		Related:     []string{"fafsa", "css profile", "budget", "need-based", "funding", "debt"},
	},
	{
		Name:        "Student Life & Support",
		Description: "Student experience, wellness, and support systems",
		KeyAspects: []string{
			"Student wellness programs",
			"Housing and living arrangements",
			"Student organizations and activities",
			"Mentoring and advising",
			"Career counseling",
			"Campus facilities and resources",
		},
		MustInclude: []string{"student"},
		Primary:     []string{"housing", "wellness", "campus", "organization", "advising"},
		Related:     []string{"activities", "counseling", "community", "support", "life"},
	},
	{
		Name:        "Special Programs & Opportunities",
		Description: "Unique programs, tracks, and educational opportunities",
		KeyAspects: []string{
			"Dual degree programs",
			"Special admission programs",
			"Research tracks",
			"Global health opportunities",
			"Community service programs",
			"Leadership development",
		},
		MustInclude: []string{"program"},
		Primary:     []string{"dual degree", "md/phd", "global health", "track"},
		Related:     []string{"community service", "leadership", "pathway", "initiative", "opportunity"},
	},
}

// Relevance returns the weighted relevance of text to this category as a
// percentage of the maximum attainable score. A text containing none of the
// must-include terms scores zero regardless of other matches.
func (c *CategoryTaxonomy) Relevance(text string) float64 {
	lower := strings.ToLower(text)

	gated := false
	for _, term := range c.MustInclude {
		if strings.Contains(lower, term) {
			gated = true
			break
		}
	}
	if !gated {
		return 0
	}

	score := 0
	for _, term := range c.Primary {
		if strings.Contains(lower, term) {
			score += 2
		}
	}
	for _, term := range c.Related {
		if strings.Contains(lower, term) {
			score++
		}
	}

	max := 2*len(c.Primary) + len(c.Related)
	if max == 0 {
		return 0
	}
	return 100 * float64(score) / float64(max)
}

// SmartTruncate truncates text near maxChars, preferring the last sentence
// boundary before the limit so prompts end on complete sentences. The hard
// cut never lands mid-rune.
func SmartTruncate(text string, maxChars int) string {
	if len(text) <= maxChars {
		return text
	}
	cut := maxChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	head := text[:cut]
	if idx := strings.LastIndex(head, "."); idx > 0 {
		return head[:idx+1]
	}
	return head
}
