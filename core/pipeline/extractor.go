package pipeline

import (
	"context"

	"github.com/siherrmann/anonymizer/core/patterns"
	"github.com/siherrmann/anonymizer/model"
)

// PatternExtractor creates the pattern entity source from a catalog.
// Every category is scanned left-to-right over the full text; one entity is
// emitted per match with its replacement precomputed. Matches within a
// category come out in ascending position order; entities of different
// categories are not sorted relative to each other. Empty text yields an
// empty list. Cancellation is checked between categories.
func PatternExtractor(catalog *patterns.Catalog) ExtractFunc {
	return func(ctx context.Context, text string) ([]*model.Entity, error) {
		entities := []*model.Entity{}
		if text == "" {
			return entities, nil
		}

		for _, detector := range catalog.Detectors() {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			for _, match := range detector.FindMatches(text) {
				value := text[match[0]:match[1]]
				entities = append(entities, model.NewEntity(
					detector.Type,
					value,
					patterns.ReplacementFor(detector.Type, value),
					model.SourcePattern,
					match[0],
					match[1],
				))
			}
		}

		return entities, nil
	}
}
