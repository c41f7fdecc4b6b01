// Package search finds plain-text and regex matches in a session's document
// with their surrounding context.
package search

import (
	"context"
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/siherrmann/anonymizer/helper"
	"github.com/siherrmann/anonymizer/model"
)

// TextSearch scans the text for the query and returns matches with up to
// ContextChars of context on both sides. In regex mode the query is compiled
// as given and an invalid pattern is an error; in text mode it is matched
// literally. Results are capped at MaxResults.
func TextSearch(ctx context.Context, text, query string, config model.SearchConfig) ([]*model.SearchResult, error) {
	if config.MaxResults <= 0 {
		config.MaxResults = model.DefaultSearchConfig().MaxResults
	}
	if config.ContextChars <= 0 {
		config.ContextChars = model.DefaultSearchConfig().ContextChars
	}

	pattern := query
	if config.Mode != model.SearchModeRegex {
		pattern = regexp.QuoteMeta(query)
	}
	if !config.CaseSensitive {
		pattern = "(?i)" + pattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, helper.NewError("compile search pattern", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := []*model.SearchResult{}
	for i, match := range re.FindAllStringIndex(text, config.MaxResults) {
		start := match[0] - config.ContextChars
		if start < 0 {
			start = 0
		}
		end := match[1] + config.ContextChars
		if end > len(text) {
			end = len(text)
		}
		// window edges must not cut a multibyte rune
		for start > 0 && !utf8.RuneStart(text[start]) {
			start--
		}
		for end < len(text) && !utf8.RuneStart(text[end]) {
			end++
		}

		results = append(results, &model.SearchResult{
			ID:            fmt.Sprintf("search_%d", i+1),
			Text:          text[match[0]:match[1]],
			Start:         match[0],
			End:           match[1],
			Page:          model.PageForOffset(match[0]),
			Context:       text[start:end],
			BeforeContext: text[start:match[0]],
			AfterContext:  text[match[1]:end],
		})
	}

	return results, nil
}
