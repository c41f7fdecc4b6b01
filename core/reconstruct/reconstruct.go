// Package reconstruct applies positional substitutions to a document text
// without corrupting entity offsets.
package reconstruct

import (
	"fmt"
	"sort"

	"github.com/siherrmann/anonymizer/model"
)

// InvalidSpanError reports an entity whose span does not fit the text.
// The whole reconstruction call fails atomically; no partial output is
// produced.
type InvalidSpanError struct {
	EntityID string
	StartPos int
	EndPos   int
	TextLen  int
}

func (e *InvalidSpanError) Error() string {
	return fmt.Sprintf("invalid span [%d, %d) for entity %v in text of length %d", e.StartPos, e.EndPos, e.EntityID, e.TextLen)
}

// validateSpans checks every entity span against the text before any
// substitution happens, so a failing call never returns partial output.
func validateSpans(text string, entities []*model.Entity) error {
	for _, entity := range entities {
		if entity.StartPos < 0 || entity.StartPos >= entity.EndPos || entity.EndPos > len(text) {
			return &InvalidSpanError{
				EntityID: entity.ID.String(),
				StartPos: entity.StartPos,
				EndPos:   entity.EndPos,
				TextLen:  len(text),
			}
		}
	}
	return nil
}

// bySpanDescending returns the entities sorted by start position descending.
// Applying substitutions back to front keeps the offsets of every
// not-yet-processed entity valid regardless of length changes between a span
// and its replacement; front-to-back application would invalidate them after
// the first length change. The input slice is not modified.
func bySpanDescending(entities []*model.Entity) []*model.Entity {
	sorted := append([]*model.Entity{}, entities...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartPos > sorted[j].StartPos
	})
	return sorted
}

// Reconstruct produces the anonymized text by replacing every entity span
// with its replacement value. Entities with overlapping spans are a caller
// precondition: they are not detected here and will corrupt the output.
func Reconstruct(text string, entities []*model.Entity) (string, error) {
	if err := validateSpans(text, entities); err != nil {
		return "", err
	}

	result := text
	for _, entity := range bySpanDescending(entities) {
		result = result[:entity.StartPos] + entity.Replacement + result[entity.EndPos:]
	}

	return result, nil
}

// Highlight produces an annotated rendering of the text where every entity
// span is wrapped in a marker carrying its id and type, for interactive
// display. The same descending-order substitution is used as in Reconstruct,
// and the same span preconditions apply.
func Highlight(text string, entities []*model.Entity) (string, error) {
	if err := validateSpans(text, entities); err != nil {
		return "", err
	}

	result := text
	for _, entity := range bySpanDescending(entities) {
		marker := fmt.Sprintf(
			`<span class="entity-highlight" data-entity-id="%v" data-entity-type="%v">%v</span>`,
			entity.ID, entity.Type, result[entity.StartPos:entity.EndPos],
		)
		result = result[:entity.StartPos] + marker + result[entity.EndPos:]
	}

	return result, nil
}
