package pdf

import (
	"testing"
)

func TestDetermineType(t *testing.T) {
	tests := []struct {
		filename    string
		wantType    string
		wantSubtype string
	}{
		{"COA.pdf", "financial", "coa"},
		{"Cost_of_Attendance_2026.pdf", "financial", "coa"},
		{"Scholarship_Guide.pdf", "financial", "scholarship"},
		{"Merit_Awards.pdf", "financial", "scholarship"},
		{"Student_Budget.pdf", "financial", "budget"},
		{"FAFSA_Instructions.pdf", "financial", "aid"},
		{"Admission_Requirements.pdf", "admissions", "requirements"},
		{"Prerequisites_List.pdf", "admissions", "requirements"},
		{"Academic_Policies.pdf", "admissions", "policies"},
		{"MD_Program_Overview.pdf", "admissions", "program_info"},
		{"Interview_Timeline.pdf", "admissions", "timeline"},
		{"campus_map.pdf", "other", "general"},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			docType, subtype := DetermineType(tt.filename)
			if docType != tt.wantType || subtype != tt.wantSubtype {
				t.Errorf("DetermineType(%q) = (%q, %q), want (%q, %q)",
					tt.filename, docType, subtype, tt.wantType, tt.wantSubtype)
			}
		})
	}
}

func TestDetermineType_FirstPatternWins(t *testing.T) {
	// Matches both scholarship (Award) and aid (Aid); earlier pattern wins.
	docType, subtype := DetermineType("Aid_Award_Letter.pdf")
	if docType != "financial" || subtype != "scholarship" {
		t.Errorf("expected (financial, scholarship), got (%q, %q)", docType, subtype)
	}
}

func TestExtractFinancialData(t *testing.T) {
	text := "Tuition is $45,000 per year. The deadline: 03/15/2026 applies. " +
		"Applicants are required to submit the CSS profile before review."

	data := extractFinancialData(text)
	if len(data["amounts"]) != 1 || data["amounts"][0] != "$45,000 per year" {
		t.Errorf("unexpected amounts: %v", data["amounts"])
	}
	if len(data["deadlines"]) != 1 {
		t.Errorf("unexpected deadlines: %v", data["deadlines"])
	}
	if len(data["requirements"]) != 1 {
		t.Errorf("unexpected requirements: %v", data["requirements"])
	}
}

func TestExtractAdmissionsData(t *testing.T) {
	text := "MCAT scores of 510 - 520 are typical. A GPA of 3.7 or above is expected. " +
		"Prerequisite: one year of biology coursework. Applications due by 10/15/2026 each cycle."

	data := extractAdmissionsData(text)
	if len(data["mcat_scores"]) == 0 {
		t.Errorf("expected MCAT scores extracted, got %v", data["mcat_scores"])
	}
	if len(data["gpa_info"]) == 0 {
		t.Errorf("expected GPA info extracted, got %v", data["gpa_info"])
	}
	if len(data["requirements"]) != 1 {
		t.Errorf("expected one prerequisite sentence, got %v", data["requirements"])
	}
	if len(data["deadlines"]) != 1 {
		t.Errorf("expected one deadline, got %v", data["deadlines"])
	}
}

func TestExtractData_EmptyText(t *testing.T) {
	data := extractFinancialData("")
	for key, values := range data {
		if values == nil {
			t.Errorf("key %q must map to an empty slice, not nil, for stable JSON", key)
		}
		if len(values) != 0 {
			t.Errorf("expected no %q in empty text, got %v", key, values)
		}
	}
}

func TestFilenameFor(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://example.edu/docs/COA.pdf", "COA.pdf"},
		{"https://example.edu/docs/Budget%20Sheet.pdf", "Budget Sheet.pdf"},
		{"https://example.edu/download?file=x", "download.pdf"},
		{"https://example.edu/", "document.pdf"},
		{"https://example.edu/docs/guide", "guide.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := filenameFor(tt.url); got != tt.want {
				t.Errorf("filenameFor(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}
