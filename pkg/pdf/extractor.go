package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"med-scraper/pkg/utils"
)

// PageContent holds the extracted text of one PDF page.
type PageContent struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// ExtractPages extracts per-page text from a PDF file. pdfcpu has no direct
// text extraction API, so page content streams are extracted into a temp
// directory and read back (one file per page, "page_<n>" naming).
func ExtractPages(pdfPath string) ([]PageContent, error) {
	pdfCtx, err := api.ReadContextFile(pdfPath)
	if err != nil {
		return nil, utils.WrapErrorf(utils.ErrParsing, "reading PDF context for '%s': %v", pdfPath, err)
	}
	pageCount := pdfCtx.PageCount

	outDir, err := os.MkdirTemp("", "pdfextract_*")
	if err != nil {
		return nil, utils.WrapErrorf(utils.ErrFilesystem, "creating temp extraction dir: %v", err)
	}
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(pdfPath, outDir, nil, conf); err != nil {
		return nil, utils.WrapErrorf(utils.ErrParsing, "extracting PDF content from '%s': %v", pdfPath, err)
	}

	pageTexts := make(map[int]string)
	entries, _ := os.ReadDir(outDir)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(outDir, entry.Name()))
		if err != nil {
			continue
		}
		var pageNum int
		name := entry.Name()
		if _, err := fmt.Sscanf(name, "page_%d", &pageNum); err != nil {
			// Some pdfcpu versions prefix with the source file's basename.
			if idx := strings.LastIndex(name, "page_"); idx >= 0 {
				fmt.Sscanf(name[idx:], "page_%d", &pageNum)
			}
		}
		if pageNum > 0 {
			pageTexts[pageNum] = string(data)
		}
	}

	pages := make([]PageContent, 0, pageCount)
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		pages = append(pages, PageContent{Page: pageNum, Text: pageTexts[pageNum]})
	}
	return pages, nil
}
