package search

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/siherrmann/anonymizer/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextSearch(t *testing.T) {
	t.Run("Literal search finds all occurrences", func(t *testing.T) {
		text := "Dupont contre Dupont, audience du 12 mars."

		results, err := TextSearch(context.Background(), text, "Dupont", model.DefaultSearchConfig())

		require.NoError(t, err)
		require.Equal(t, 2, len(results))
		assert.Equal(t, "Dupont", results[0].Text)
		assert.Equal(t, 0, results[0].Start)
		assert.Equal(t, 6, results[0].End)
		assert.Equal(t, 14, results[1].Start)
	})

	t.Run("Result ids are sequential", func(t *testing.T) {
		text := "un deux un deux un"

		results, err := TextSearch(context.Background(), text, "un", model.DefaultSearchConfig())

		require.NoError(t, err)
		require.Equal(t, 3, len(results))
		assert.Equal(t, "search_1", results[0].ID)
		assert.Equal(t, "search_2", results[1].ID)
		assert.Equal(t, "search_3", results[2].ID)
	})

	t.Run("Search is case-insensitive by default", func(t *testing.T) {
		results, err := TextSearch(context.Background(), "DUPONT et dupont", "Dupont", model.DefaultSearchConfig())

		require.NoError(t, err)
		assert.Equal(t, 2, len(results))
	})

	t.Run("Case-sensitive search respects case", func(t *testing.T) {
		config := model.DefaultSearchConfig()
		config.CaseSensitive = true

		results, err := TextSearch(context.Background(), "DUPONT et dupont", "dupont", config)

		require.NoError(t, err)
		require.Equal(t, 1, len(results))
		assert.Equal(t, 10, results[0].Start)
	})

	t.Run("Literal mode escapes regex metacharacters", func(t *testing.T) {
		results, err := TextSearch(context.Background(), "montant de 1.500 euros", "1.500", model.DefaultSearchConfig())

		require.NoError(t, err)
		require.Equal(t, 1, len(results))
		assert.Equal(t, "1.500", results[0].Text)
	})

	t.Run("Regex mode interprets the pattern", func(t *testing.T) {
		config := model.DefaultSearchConfig()
		config.Mode = model.SearchModeRegex

		results, err := TextSearch(context.Background(), "ref A123 et ref B456", `[A-B]\d{3}`, config)

		require.NoError(t, err)
		require.Equal(t, 2, len(results))
		assert.Equal(t, "A123", results[0].Text)
		assert.Equal(t, "B456", results[1].Text)
	})

	t.Run("Invalid regex is an error", func(t *testing.T) {
		config := model.DefaultSearchConfig()
		config.Mode = model.SearchModeRegex

		_, err := TextSearch(context.Background(), "du texte", "(", config)

		assert.Error(t, err)
	})

	t.Run("Context is clamped to the text bounds", func(t *testing.T) {
		text := "Dupont au début"

		results, err := TextSearch(context.Background(), text, "Dupont", model.DefaultSearchConfig())

		require.NoError(t, err)
		require.Equal(t, 1, len(results))
		assert.Empty(t, results[0].BeforeContext)
		assert.Equal(t, " au début", results[0].AfterContext)
		assert.Equal(t, text, results[0].Context)
	})

	t.Run("Context window respects ContextChars", func(t *testing.T) {
		config := model.DefaultSearchConfig()
		config.ContextChars = 4
		text := "aaaaaaDupontbbbbbb"

		results, err := TextSearch(context.Background(), text, "Dupont", config)

		require.NoError(t, err)
		require.Equal(t, 1, len(results))
		assert.Equal(t, "aaaa", results[0].BeforeContext)
		assert.Equal(t, "bbbb", results[0].AfterContext)
		assert.Equal(t, "aaaaDupontbbbb", results[0].Context)
	})

	t.Run("Context window never cuts a multibyte rune", func(t *testing.T) {
		config := model.DefaultSearchConfig()
		config.CaseSensitive = true
		config.ContextChars = 3
		// é is two bytes, so a 3-byte window lands inside a rune on both sides
		text := strings.Repeat("é", 10) + "X" + strings.Repeat("é", 10)

		results, err := TextSearch(context.Background(), text, "X", config)

		require.NoError(t, err)
		require.Equal(t, 1, len(results))
		assert.True(t, utf8.ValidString(results[0].Context))
		assert.True(t, utf8.ValidString(results[0].BeforeContext))
		assert.True(t, utf8.ValidString(results[0].AfterContext))
		assert.Equal(t, "ééXéé", results[0].Context)
	})

	t.Run("Results are capped at MaxResults", func(t *testing.T) {
		config := model.DefaultSearchConfig()
		config.MaxResults = 3
		text := strings.Repeat("mot ", 20)

		results, err := TextSearch(context.Background(), text, "mot", config)

		require.NoError(t, err)
		assert.Equal(t, 3, len(results))
	})

	t.Run("No match yields empty result list", func(t *testing.T) {
		results, err := TextSearch(context.Background(), "rien ici", "absent", model.DefaultSearchConfig())

		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("Page is derived from the match offset", func(t *testing.T) {
		text := strings.Repeat("a", model.PageSize+50) + "Dupont"

		results, err := TextSearch(context.Background(), text, "Dupont", model.DefaultSearchConfig())

		require.NoError(t, err)
		require.Equal(t, 1, len(results))
		assert.Equal(t, 2, results[0].Page)
	})

	t.Run("Cancelled context stops the search", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := TextSearch(ctx, "du texte", "texte", model.DefaultSearchConfig())

		assert.ErrorIs(t, err, context.Canceled)
	})
}
