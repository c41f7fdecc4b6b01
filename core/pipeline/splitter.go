package pipeline

import (
	"strings"

	"github.com/siherrmann/anonymizer/model"
)

// ParagraphSplitter creates a splitter that cuts the document into passages
// at blank lines. Each passage carries the page estimate of its start offset.
func ParagraphSplitter() SplitFunc {
	return func(text string) []*model.Passage {
		paragraphs := strings.Split(text, "\n\n")

		var passages []*model.Passage
		pos := 0

		for _, para := range paragraphs {
			trimmed := strings.TrimSpace(para)
			if trimmed == "" {
				pos += len(para) + 2
				continue
			}

			passages = append(passages, &model.Passage{
				Content: trimmed,
				Page:    model.PageForOffset(pos),
			})

			pos += len(para) + 2 // Account for "\n\n"
		}

		return passages
	}
}
