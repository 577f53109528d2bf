package extract

import (
	"io"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"med-scraper/pkg/models"
)

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse test document: %v", err)
	}
	return doc
}

func TestExtract_TitlePrefersH1(t *testing.T) {
	doc := parseDoc(t, `<html><head><title>Page Title Tag</title></head>
		<body><h1>Financial Aid Office</h1></body></html>`)

	record := NewExtractor(testLogger()).Extract(doc, "https://example.edu/aid")
	if record.Title != "Financial Aid Office" {
		t.Errorf("expected h1 title, got %q", record.Title)
	}
}

func TestExtract_TitleFallsBackToTitleTag(t *testing.T) {
	doc := parseDoc(t, `<html><head><title>Admissions | Example</title></head><body><p>text</p></body></html>`)

	record := NewExtractor(testLogger()).Extract(doc, "https://example.edu")
	if record.Title != "Admissions Example" {
		t.Errorf("expected cleaned title tag, got %q", record.Title)
	}
}

func TestExtract_IntroFromLeadingParagraphs(t *testing.T) {
	doc := parseDoc(t, `<html><body><main>
		<p>Welcome to the financial aid office of the school of medicine.</p>
		<p>We help students plan for the cost of their education.</p>
		<section><h2>Other</h2><p>Section text lives here for the record.</p></section>
	</main></body></html>`)

	record := NewExtractor(testLogger()).Extract(doc, "https://example.edu/aid")
	if len(record.Intro) != 2 {
		t.Fatalf("expected 2 intro paragraphs, got %d: %v", len(record.Intro), record.Intro)
	}
	if !strings.Contains(record.Intro[0], "Welcome to the financial aid office") {
		t.Errorf("unexpected first intro paragraph: %q", record.Intro[0])
	}
}

func TestExtract_CategorizedSection(t *testing.T) {
	doc := parseDoc(t, `<html><body><main>
		<section>
			<h2>Tuition and Fees</h2>
			<p>Annual tuition for the MD program is $45,000 per year.</p>
		</section>
	</main></body></html>`)

	record := NewExtractor(testLogger()).Extract(doc, "https://example.edu/tuition")
	bucket := record.Categorized[models.CategoryTuition]
	if len(bucket) == 0 {
		t.Fatal("expected tuition bucket to be populated")
	}
	if !strings.HasPrefix(bucket[0], "Amount Information: $45,000 per year") {
		t.Errorf("expected amount summary line, got %q", bucket[0])
	}
	if len(record.Sections) != 0 {
		t.Errorf("categorized section must not also appear as generic, got %v", record.Sections)
	}
}

func TestExtract_GenericSection(t *testing.T) {
	doc := parseDoc(t, `<html><body><main>
		<section>
			<h2>Campus History</h2>
			<p>The school was founded over a century ago in the city.</p>
		</section>
	</main></body></html>`)

	record := NewExtractor(testLogger()).Extract(doc, "https://example.edu/history")
	if len(record.Sections) != 1 {
		t.Fatalf("expected 1 generic section, got %d", len(record.Sections))
	}
	if record.Sections[0].Heading != "Campus History" {
		t.Errorf("unexpected heading %q", record.Sections[0].Heading)
	}
	if !strings.Contains(record.Sections[0].Content, "founded over a century ago") {
		t.Errorf("unexpected content %q", record.Sections[0].Content)
	}
}

func TestExtract_EmptySectionsDropped(t *testing.T) {
	doc := parseDoc(t, `<html><body><main>
		<section><h2>Empty Heading Only</h2></section>
		<section><h2>Tuition</h2><p></p></section>
	</main></body></html>`)

	record := NewExtractor(testLogger()).Extract(doc, "https://example.edu")
	if len(record.Sections) != 0 {
		t.Errorf("expected no generic sections, got %v", record.Sections)
	}
	if len(record.Categorized[models.CategoryTuition]) != 0 {
		t.Errorf("expected empty tuition bucket, got %v", record.Categorized[models.CategoryTuition])
	}
}

func TestExtract_ListItemsIncludedInBody(t *testing.T) {
	doc := parseDoc(t, `<html><body><main>
		<section>
			<h3>Admissions Requirements</h3>
			<ul>
				<li>One year of biology with laboratory work completed.</li>
				<li>One year of chemistry with laboratory work completed.</li>
			</ul>
		</section>
	</main></body></html>`)

	record := NewExtractor(testLogger()).Extract(doc, "https://example.edu/requirements")
	bucket := record.Categorized[models.CategoryRequirements]
	if len(bucket) == 0 {
		t.Fatal("expected requirements bucket to be populated")
	}
	if !strings.Contains(bucket[0], "One year of biology") {
		t.Errorf("expected list items in body, got %q", bucket[0])
	}
}

func TestExtract_WholeDocumentFallback(t *testing.T) {
	// No main or article region: the whole document is walked.
	doc := parseDoc(t, `<html><body>
		<div><h2>Scholarship Programs</h2><p>Merit awards cover partial tuition costs.</p></div>
	</body></html>`)

	record := NewExtractor(testLogger()).Extract(doc, "https://example.edu/scholarships")
	if len(record.Categorized[models.CategoryScholarships]) == 0 {
		t.Error("expected scholarships bucket populated via whole-document fallback")
	}
}
