// Package patterns holds the static registry of French-locale entity
// detectors and the per-type replacement policy.
package patterns

import (
	"regexp"

	"github.com/siherrmann/anonymizer/model"
)

// Detector pairs a compiled matcher with the entity type it detects.
type Detector struct {
	Type model.EntityType
	re   *regexp.Regexp
}

// FindMatches returns all non-overlapping matches in text as [start, end)
// byte offset pairs, in left-to-right order.
func (d Detector) FindMatches(text string) [][]int {
	return d.re.FindAllStringIndex(text, -1)
}

// Catalog is the static set of pattern detectors, applied in a fixed order.
// PERSON and ORG have no pattern detector; those types only enter through the
// model or manual sources. Detectors run independently of each other, so two
// detectors may emit overlapping spans for the same text region; overlap
// resolution is left to the caller.
type Catalog struct {
	detectors []Detector
}

// French city gazetteer shared by the ADDRESS and LOC detectors.
const frenchCities = `Paris|Lyon|Marseille|Toulouse|Nice|Nantes|Strasbourg|Montpellier|Bordeaux|Lille|Rennes|Reims|Le Havre|Saint-Étienne|Toulon|Grenoble|Dijon|Angers|Nîmes|Villeurbanne`

// NewCatalog compiles the detector set. Patterns are static, so compilation
// failures are programming errors and panic via MustCompile.
func NewCatalog() *Catalog {
	return &Catalog{
		detectors: []Detector{
			{model.EntityTypeEmail, regexp.MustCompile(`\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`)},
			{model.EntityTypePhone, regexp.MustCompile(`(?:\+33|0)[1-9](?:[.\-\s]?\d{2}){4}`)},
			{model.EntityTypeIban, regexp.MustCompile(`\b[A-Z]{2}\d{2}[A-Z0-9]{4}\d{7}[A-Z0-9]{1,16}\b`)},
			{model.EntityTypeSiren, regexp.MustCompile(`\b\d{3}\s?\d{3}\s?\d{3}\b`)},
			{model.EntityTypeSiret, regexp.MustCompile(`\b\d{3}\s?\d{3}\s?\d{3}\s?\d{5}\b`)},
			{model.EntityTypeDate, regexp.MustCompile(`(?i)\b(?:\d{1,2}[/.\-]\d{1,2}[/.\-]\d{2,4}|\d{1,2}\s+(?:janvier|février|mars|avril|mai|juin|juillet|août|septembre|octobre|novembre|décembre)\s+\d{4})\b`)},
			{model.EntityTypeAddress, regexp.MustCompile(`(?i)\b\d+[\s,]+(?:rue|avenue|boulevard|place|allée|impasse|chemin|route)[^,\n]+(?:\d{5}|(?:` + frenchCities + `))`)},
			{model.EntityTypeLoc, regexp.MustCompile(`\b(?:` + frenchCities + `|France|Belgique|Suisse|Luxembourg)\b`)},
		},
	}
}

// Detectors returns the detectors in application order.
func (c *Catalog) Detectors() []Detector {
	return c.detectors
}
