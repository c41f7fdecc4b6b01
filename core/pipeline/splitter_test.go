package pipeline

import (
	"strings"
	"testing"

	"github.com/siherrmann/anonymizer/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParagraphSplitter(t *testing.T) {
	splitter := ParagraphSplitter()

	t.Run("Splits text at blank lines", func(t *testing.T) {
		text := "Premier paragraphe.\n\nDeuxième paragraphe.\n\nTroisième paragraphe."

		passages := splitter(text)

		require.Equal(t, 3, len(passages))
		assert.Equal(t, "Premier paragraphe.", passages[0].Content)
		assert.Equal(t, "Deuxième paragraphe.", passages[1].Content)
		assert.Equal(t, "Troisième paragraphe.", passages[2].Content)
	})

	t.Run("Blank paragraphs are skipped", func(t *testing.T) {
		text := "Un.\n\n\n\nDeux."

		passages := splitter(text)

		require.Equal(t, 2, len(passages))
		assert.Equal(t, "Un.", passages[0].Content)
		assert.Equal(t, "Deux.", passages[1].Content)
	})

	t.Run("Single paragraph", func(t *testing.T) {
		passages := splitter("Un seul paragraphe sans coupure.")

		require.Equal(t, 1, len(passages))
		assert.Equal(t, 1, passages[0].Page)
	})

	t.Run("Empty text yields no passages", func(t *testing.T) {
		passages := splitter("")
		assert.Empty(t, passages)
	})

	t.Run("Page advances with the start offset", func(t *testing.T) {
		first := strings.Repeat("a", model.PageSize+100)
		text := first + "\n\nSur la deuxième page."

		passages := splitter(text)

		require.Equal(t, 2, len(passages))
		assert.Equal(t, 1, passages[0].Page)
		assert.Equal(t, 2, passages[1].Page)
	})

	t.Run("Content is trimmed", func(t *testing.T) {
		passages := splitter("  avec des espaces  \n\nsuite")

		require.Equal(t, 2, len(passages))
		assert.Equal(t, "avec des espaces", passages[0].Content)
	})
}
