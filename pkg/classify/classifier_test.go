package classify

import (
	"strings"
	"testing"

	"med-scraper/pkg/models"
)

func TestClassify_TuitionAmountSummary(t *testing.T) {
	title := "Tuition and Fees"
	body := "Annual tuition for the MD program is $45,000 per year. Additional fees apply."

	category, text, matched := Classify(title, body)
	if !matched {
		t.Fatal("expected a tuition match")
	}
	if category != models.CategoryTuition {
		t.Errorf("expected tuition category, got %q", category)
	}
	if !strings.HasPrefix(text, "Amount Information: $45,000 per year") {
		t.Errorf("expected synthesized amount summary line, got %q", text)
	}
	if !strings.Contains(text, "Annual tuition for the MD program") {
		t.Errorf("expected cleaned body after summary line, got %q", text)
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	// Title matches both tuition ("cost") and cost_of_living ("cost of
	// attendance") triggers; the earlier rule must win.
	category, _, matched := Classify("Cost of Attendance", "Estimated budget for students.")
	if !matched {
		t.Fatal("expected a match")
	}
	if category != models.CategoryTuition {
		t.Errorf("expected tuition (first matching rule), got %q", category)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	title := "Financial Aid Deadlines"
	body := "FAFSA applications are due by 03/15/2026 for all applicants."

	firstCategory, firstText, _ := Classify(title, body)
	for i := 0; i < 10; i++ {
		category, text, _ := Classify(title, body)
		if category != firstCategory || text != firstText {
			t.Fatalf("classification not deterministic on run %d", i)
		}
	}
}

func TestClassify_CategoryTable(t *testing.T) {
	tests := []struct {
		title string
		body  string
		want  models.Category
	}{
		{"Scholarship Opportunities", "Merit awards are available to all admitted students.", models.CategoryScholarships},
		{"Loan Programs", "Federal loan repayment options for medical students.", models.CategoryLoans},
		{"Admissions Requirements", "Applicants are required to complete prerequisite coursework.", models.CategoryRequirements},
		{"MCAT Information", "Competitive applicants score 515 or above on the exam.", models.CategoryMCAT},
		{"GPA Expectations", "A grade point average of 3.7 or above is typical.", models.CategoryGPA},
		{"Application Timeline", "Key dates for the upcoming admissions cycle.", models.CategoryTimeline},
		{"Interview Day", "Interviews run from September through February.", models.CategoryInterview},
		{"Selection Process", "Our holistic evaluation considers every part of the application.", models.CategorySelection},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			category, _, matched := Classify(tt.title, tt.body)
			if !matched {
				t.Fatalf("expected %q to match", tt.title)
			}
			if category != tt.want {
				t.Errorf("expected %q, got %q", tt.want, category)
			}
		})
	}
}

func TestClassify_NoMatchReturnsCleanedBody(t *testing.T) {
	category, text, matched := Classify("About the Campus", "Our campus sits in the heart of the city.")
	if matched {
		t.Errorf("expected no match, got category %q", category)
	}
	if text != "Our campus sits in the heart of the city." {
		t.Errorf("expected cleaned body, got %q", text)
	}
}

func TestClassify_EmptyBodySkipped(t *testing.T) {
	_, text, matched := Classify("Tuition", "   \n\t  ")
	if matched {
		t.Error("expected no match for empty body")
	}
	if text != "" {
		t.Errorf("expected empty text, got %q", text)
	}
}

func TestClassify_NoSummaryLineWithoutExtraction(t *testing.T) {
	// Tuition section with no dollar amounts: body is returned unchanged.
	body := "Billing statements are issued at the start of each term."
	_, text, matched := Classify("Billing", body)
	if !matched {
		t.Fatal("expected billing to match tuition")
	}
	if strings.Contains(text, "Amount Information") {
		t.Errorf("expected no summary line without matches, got %q", text)
	}
}

func TestExtractHelpers(t *testing.T) {
	t.Run("amounts", func(t *testing.T) {
		got := ExtractAmounts("Tuition is $45,000 per year plus a $500 fee.")
		if len(got) != 2 || got[0] != "$45,000 per year" || got[1] != "$500" {
			t.Errorf("unexpected amounts: %v", got)
		}
	})
	t.Run("deadlines", func(t *testing.T) {
		got := ExtractDeadlines("Applications are due by 10/15/2026 this cycle.")
		if len(got) != 1 {
			t.Errorf("expected one deadline, got %v", got)
		}
	})
	t.Run("gpa ranges", func(t *testing.T) {
		got := ExtractGPARanges("Matriculants hold a 3.6 - 3.9 average.")
		if len(got) != 1 || got[0] != "3.6 - 3.9" {
			t.Errorf("unexpected GPA ranges: %v", got)
		}
	})
	t.Run("mcat ranges", func(t *testing.T) {
		got := ExtractMCATRanges("Scores of 510 - 520 are typical.")
		if len(got) != 1 || got[0] != "510 - 520" {
			t.Errorf("unexpected MCAT ranges: %v", got)
		}
	})
}
