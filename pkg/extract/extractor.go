// Package extract walks a parsed HTML document's section tree and assembles
// a structured per-page record with categorized and generic sections.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"med-scraper/pkg/classify"
	"med-scraper/pkg/clean"
	"med-scraper/pkg/models"
)

// Extractor turns parsed documents into PageRecords.
type Extractor struct {
	log *logrus.Entry
}

// NewExtractor creates an Extractor.
func NewExtractor(log *logrus.Entry) *Extractor {
	return &Extractor{log: log}
}

// Extract builds a PageRecord from a parsed document. Extraction never fails:
// missing regions fall back to the whole document, empty sections are dropped.
func (e *Extractor) Extract(doc *goquery.Document, pageURL string) *models.PageRecord {
	record := models.NewPageRecord(pageURL)
	record.Title = extractTitle(doc)

	main := mainContent(doc)
	extractIntro(main, record)

	main.Find("section, div, article").Each(func(_ int, section *goquery.Selection) {
		heading := sectionHeading(section)
		body := sectionBody(section)
		if body == "" {
			return // Section contributed no usable text
		}

		category, text, matched := classify.Classify(heading, body)
		if text == "" {
			return // Empty after cleaning; skip entirely
		}
		if matched {
			record.Categorized[category] = append(record.Categorized[category], text)
		} else {
			record.Sections = append(record.Sections, models.GenericSection{
				Heading: heading,
				Content: body,
			})
		}
	})

	e.log.WithFields(logrus.Fields{
		"url":              pageURL,
		"title":            record.Title,
		"generic_sections": len(record.Sections),
	}).Debug("Extracted page")
	return record
}

// extractTitle prefers the first-level heading over the document title tag.
func extractTitle(doc *goquery.Document) string {
	if h1 := doc.Find("h1").First(); h1.Length() > 0 {
		return clean.Clean(h1.Text())
	}
	if title := doc.Find("title").First(); title.Length() > 0 {
		return clean.Clean(title.Text())
	}
	return ""
}

// mainContent picks the first matching region among main, article, and the
// whole document. The whole-document fallback guarantees extraction always
// has something to walk.
func mainContent(doc *goquery.Document) *goquery.Selection {
	if main := doc.Find("main").First(); main.Length() > 0 {
		return main
	}
	if article := doc.Find("article").First(); article.Length() > 0 {
		return article
	}
	return doc.Selection
}

// extractIntro collects cleaned text of paragraphs that are direct children
// of the main region, i.e. lead-in text before any structural section.
func extractIntro(main *goquery.Selection, record *models.PageRecord) {
	main.ChildrenFiltered("p").Each(func(_ int, p *goquery.Selection) {
		if text := clean.Clean(p.Text()); text != "" {
			record.Intro = append(record.Intro, text)
		}
	})
}

// sectionHeading returns the cleaned text of the section's first heading.
func sectionHeading(section *goquery.Selection) string {
	header := section.Find("h1, h2, h3, h4").First()
	if header.Length() == 0 {
		return ""
	}
	return clean.Clean(header.Text())
}

// sectionBody concatenates cleaned text of paragraph, list-item, and div
// descendants. Divs without any paragraph or list-item children are skipped.
func sectionBody(section *goquery.Selection) string {
	var sb strings.Builder
	section.Find("p, li, div").Each(func(_ int, elem *goquery.Selection) {
		if goquery.NodeName(elem) == "div" && elem.Find("p, li").Length() == 0 {
			return
		}
		if text := clean.Clean(elem.Text()); text != "" {
			sb.WriteString(text)
			sb.WriteString("\n")
		}
	})
	return sb.String()
}
