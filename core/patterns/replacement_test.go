package patterns

import (
	"testing"

	"github.com/siherrmann/anonymizer/model"
	"github.com/stretchr/testify/assert"
)

func TestReplacementFor(t *testing.T) {
	t.Run("Email keeps dots and at sign", func(t *testing.T) {
		replacement := ReplacementFor(model.EntityTypeEmail, "jean.dupont@example.com")
		assert.Equal(t, "XXXX.XXXXXX@XXXXXXX.XXX", replacement)
	})

	t.Run("Phone keeps separators", func(t *testing.T) {
		replacement := ReplacementFor(model.EntityTypePhone, "06 12 34 56 78")
		assert.Equal(t, "XX XX XX XX XX", replacement)
	})

	t.Run("IBAN keeps country code and check digits", func(t *testing.T) {
		replacement := ReplacementFor(model.EntityTypeIban, "FR7630006000011234567890189")
		assert.Equal(t, "FR76XXXXXXXXXXXXXXXXXXXXXXX", replacement)
	})

	t.Run("Short IBAN fragment stays verbatim", func(t *testing.T) {
		replacement := ReplacementFor(model.EntityTypeIban, "FR76")
		assert.Equal(t, "FR76", replacement)
	})

	t.Run("SIREN masks digits only", func(t *testing.T) {
		replacement := ReplacementFor(model.EntityTypeSiren, "552 100 554")
		assert.Equal(t, "XXX XXX XXX", replacement)
	})

	t.Run("SIRET masks digits only", func(t *testing.T) {
		replacement := ReplacementFor(model.EntityTypeSiret, "552 100 554 00013")
		assert.Equal(t, "XXX XXX XXX XXXXX", replacement)
	})

	t.Run("Date masks digits and keeps month name and separators", func(t *testing.T) {
		assert.Equal(t, "XX/XX/XXXX", ReplacementFor(model.EntityTypeDate, "12/03/2024"))
		assert.Equal(t, "X février XXXX", ReplacementFor(model.EntityTypeDate, "3 février 2024"))
	})

	t.Run("Address masks digit runs and letters", func(t *testing.T) {
		replacement := ReplacementFor(model.EntityTypeAddress, "12 rue de la Paix 75002")
		assert.Equal(t, "XXX XXX XX XX XXXX XXX", replacement)
	})

	t.Run("Location, person and organization use constants", func(t *testing.T) {
		assert.Equal(t, "LIEU_XXX", ReplacementFor(model.EntityTypeLoc, "Paris"))
		assert.Equal(t, "PERSONNE_XXX", ReplacementFor(model.EntityTypePerson, "Jean Dupont"))
		assert.Equal(t, "ORGANISATION_XXX", ReplacementFor(model.EntityTypeOrg, "Société Générale"))
	})

	t.Run("Unknown type falls back to XXX", func(t *testing.T) {
		replacement := ReplacementFor(model.EntityType("UNKNOWN"), "whatever")
		assert.Equal(t, "XXX", replacement)
	})

	t.Run("Replacement is idempotent over its own output", func(t *testing.T) {
		values := map[model.EntityType]string{
			model.EntityTypeEmail: "jean.dupont@example.com",
			model.EntityTypePhone: "06 12 34 56 78",
			model.EntityTypeSiren: "552 100 554",
			model.EntityTypeDate:  "12/03/2024",
		}
		for entityType, value := range values {
			once := ReplacementFor(entityType, value)
			twice := ReplacementFor(entityType, once)
			assert.Equal(t, once, twice, "replacing twice should not change the result for %s", entityType)
		}
	})

	t.Run("Never returns empty for non-empty input", func(t *testing.T) {
		for _, entityType := range model.EntityTypes {
			replacement := ReplacementFor(entityType, "valeur")
			assert.NotEmpty(t, replacement, "replacement for %s should not be empty", entityType)
		}
	})
}
