// Package content extracts plain text from uploaded documents. The rest of
// the library only ever consumes the extracted text.
package content

import (
	"strings"

	"github.com/siherrmann/anonymizer/model"
)

// Content is the result of extracting a document: its plain text and the
// page count (authoritative for PDF, estimated otherwise).
type Content struct {
	Text      string `json:"text"`
	PageCount int    `json:"page_count"`
	WordCount int    `json:"word_count"`
}

// FromPlainText wraps already-extracted text. The page count is estimated
// from the nominal page size.
func FromPlainText(text string) *Content {
	return &Content{
		Text:      text,
		PageCount: model.PageForOffset(len(text)),
		WordCount: countWords(text),
	}
}

func countWords(text string) int {
	return len(strings.Fields(text))
}
