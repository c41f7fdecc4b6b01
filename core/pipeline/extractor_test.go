package pipeline

import (
	"context"
	"testing"

	"github.com/siherrmann/anonymizer/core/patterns"
	"github.com/siherrmann/anonymizer/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternExtractor(t *testing.T) {
	extractor := PatternExtractor(patterns.NewCatalog())

	t.Run("Extracts email and phone from contact line", func(t *testing.T) {
		text := "Contact: jean.dupont@example.com ou 06 12 34 56 78."

		entities, err := extractor(context.Background(), text)

		require.NoError(t, err)
		require.Equal(t, 2, len(entities))

		byType := make(map[model.EntityType]*model.Entity)
		for _, e := range entities {
			byType[e.Type] = e
		}

		email := byType[model.EntityTypeEmail]
		require.NotNil(t, email)
		assert.Equal(t, "jean.dupont@example.com", email.Value)
		assert.Equal(t, "XXXX.XXXXXX@XXXXXXX.XXX", email.Replacement)

		phone := byType[model.EntityTypePhone]
		require.NotNil(t, phone)
		assert.Equal(t, "06 12 34 56 78", phone.Value)
		assert.Equal(t, "XX XX XX XX XX", phone.Replacement)
	})

	t.Run("Every span points back at its value", func(t *testing.T) {
		text := "Mme Dupont, née le 12/03/1985 à Lyon, demeurant 4 rue Victor Hugo 69003, " +
			"joignable au 06 12 34 56 78 ou par mail marie.dupont@cabinet.fr, " +
			"IBAN FR7630006000011234567890189, SIREN 552 100 554."

		entities, err := extractor(context.Background(), text)

		require.NoError(t, err)
		require.NotEmpty(t, entities)
		for _, e := range entities {
			require.GreaterOrEqual(t, e.StartPos, 0)
			require.LessOrEqual(t, e.EndPos, len(text))
			assert.Equal(t, e.Value, text[e.StartPos:e.EndPos], "span of %s entity should slice back to its value", e.Type)
		}
	})

	t.Run("Entities carry pattern source and unique ids", func(t *testing.T) {
		text := "a@b.fr puis c@d.fr"

		entities, err := extractor(context.Background(), text)

		require.NoError(t, err)
		require.Equal(t, 2, len(entities))
		assert.NotEqual(t, entities[0].ID, entities[1].ID)
		for _, e := range entities {
			assert.Equal(t, model.SourcePattern, e.Source)
			assert.Nil(t, e.Confidence)
			assert.False(t, e.IsModified)
		}
	})

	t.Run("Page is derived from start offset", func(t *testing.T) {
		padding := make([]byte, model.PageSize+10)
		for i := range padding {
			padding[i] = 'a'
		}
		text := string(padding) + " contact@exemple.fr"

		entities, err := extractor(context.Background(), text)

		require.NoError(t, err)
		require.Equal(t, 1, len(entities))
		assert.Equal(t, 2, entities[0].Page)
	})

	t.Run("Empty text yields empty list", func(t *testing.T) {
		entities, err := extractor(context.Background(), "")

		require.NoError(t, err)
		assert.Empty(t, entities)
	})

	t.Run("Extraction is deterministic", func(t *testing.T) {
		text := "Fait à Paris le 12/03/2024, contact@exemple.fr."

		first, err := extractor(context.Background(), text)
		require.NoError(t, err)
		second, err := extractor(context.Background(), text)
		require.NoError(t, err)

		require.Equal(t, len(first), len(second))
		for i := range first {
			assert.Equal(t, first[i].Type, second[i].Type)
			assert.Equal(t, first[i].Value, second[i].Value)
			assert.Equal(t, first[i].StartPos, second[i].StartPos)
			assert.Equal(t, first[i].EndPos, second[i].EndPos)
		}
	})

	t.Run("Cancelled context stops extraction", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := extractor(ctx, "du texte avec contact@exemple.fr")

		assert.ErrorIs(t, err, context.Canceled)
	})
}
