package normalize

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/hoadon-ai/extractor/constants"
	"github.com/hoadon-ai/extractor/internal/common"
)

// normalizePDF extracts embedded text from every page in document order,
// joined with newlines. Pages with no extractable text contribute nothing.
// An empty concatenation means the document is unprocessable; PDFs are never
// rasterized here.
func (n *Normalizer) normalizePDF(doc Document) (Result, error) {
	text, pages, err := extractPDFText(doc.Content)
	if err != nil {
		n.logger.Warn("normalize.pdf.extract_failed", "name", doc.Name, "error", err)
		return Result{}, common.NewAppError("NORMALIZATION_ERROR", "pdf text extraction failed", common.ErrNormalization)
	}
	if text == "" {
		n.logger.Warn("normalize.pdf.no_text", "name", doc.Name, "pages", pages)
		return Result{}, common.NewAppError("NORMALIZATION_ERROR", "pdf contains no extractable text", common.ErrNormalization)
	}

	n.logger.Debug("normalize.pdf.ok", "name", doc.Name, "pages", pages, "text_len", len(text))
	return Result{
		Format: constants.PDF,
		Text:   text,
		Pages:  pages,
	}, nil
}

// extractPDFText walks the page tree with ledongthuc/pdf. The reader panics
// on some malformed inputs, so the recover turns those into plain errors.
func extractPDFText(content []byte) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}

	pages = reader.NumPage()
	var b strings.Builder
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil || strings.TrimSpace(pageText) == "" {
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String()), pages, nil
}
