package content

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/siherrmann/anonymizer/helper"
)

// ExtractPDF extracts the plain text of a PDF document. Pages whose text
// cannot be decoded are skipped rather than failing the whole document.
func ExtractPDF(data []byte) (*Content, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, helper.NewError("open pdf", err)
	}

	var text strings.Builder
	totalPages := reader.NumPage()

	for pageIndex := 1; pageIndex <= totalPages; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text.WriteString(pageText)
	}

	return &Content{
		Text:      text.String(),
		PageCount: totalPages,
		WordCount: countWords(text.String()),
	}, nil
}
