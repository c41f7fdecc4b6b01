package patterns

import (
	"regexp"
	"strings"

	"github.com/siherrmann/anonymizer/model"
)

var (
	digitRun      = regexp.MustCompile(`[0-9]+`)
	addressLetter = regexp.MustCompile(`[A-Za-zÀ-ÿ]`)
)

// ReplacementFor computes the anonymized replacement for a value of the given
// type. It is a pure, total function: it never fails, and a type outside the
// closed enumeration falls back to the constant "XXX".
func ReplacementFor(entityType model.EntityType, value string) string {
	switch entityType {
	case model.EntityTypeEmail:
		// dots and the @ keep the shape of the address, everything else is masked
		return maskExcept(value, ".@")
	case model.EntityTypePhone:
		return maskDigits(value)
	case model.EntityTypeIban:
		// country code and check digits stay verbatim
		if len(value) <= 4 {
			return value
		}
		return value[:4] + strings.Repeat("X", len([]rune(value[4:])))
	case model.EntityTypeSiren, model.EntityTypeSiret:
		return maskDigits(value)
	case model.EntityTypeDate:
		return maskDigits(value)
	case model.EntityTypeAddress:
		masked := digitRun.ReplaceAllString(value, "XXX")
		return addressLetter.ReplaceAllString(masked, "X")
	case model.EntityTypeLoc:
		return "LIEU_XXX"
	case model.EntityTypePerson:
		return "PERSONNE_XXX"
	case model.EntityTypeOrg:
		return "ORGANISATION_XXX"
	default:
		return "XXX"
	}
}

// maskDigits replaces every digit with X, keeping separators.
func maskDigits(value string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return 'X'
		}
		return r
	}, value)
}

// maskExcept replaces every rune not in keep with X.
func maskExcept(value, keep string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(keep, r) {
			return r
		}
		return 'X'
	}, value)
}
