package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PageSize is the nominal number of characters per displayed page.
// Page numbers derived from it are display estimates, not authoritative.
const PageSize = 3000

// EntityType is the closed set of semantic categories an entity can have.
type EntityType string

const (
	EntityTypePerson  EntityType = "PERSON"
	EntityTypeOrg     EntityType = "ORG"
	EntityTypeLoc     EntityType = "LOC"
	EntityTypeAddress EntityType = "ADDRESS"
	EntityTypeEmail   EntityType = "EMAIL"
	EntityTypePhone   EntityType = "PHONE"
	EntityTypeDate    EntityType = "DATE"
	EntityTypeIban    EntityType = "IBAN"
	EntityTypeSiren   EntityType = "SIREN"
	EntityTypeSiret   EntityType = "SIRET"
)

// EntityTypes lists all valid entity types.
var EntityTypes = []EntityType{
	EntityTypePerson,
	EntityTypeOrg,
	EntityTypeLoc,
	EntityTypeAddress,
	EntityTypeEmail,
	EntityTypePhone,
	EntityTypeDate,
	EntityTypeIban,
	EntityTypeSiren,
	EntityTypeSiret,
}

// Valid reports whether t is one of the known entity types.
func (t EntityType) Valid() bool {
	for _, known := range EntityTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseEntityType parses a string into an entity type. The lookup is
// case-insensitive.
func ParseEntityType(s string) (EntityType, error) {
	t := EntityType(strings.ToUpper(s))
	if !t.Valid() {
		return "", fmt.Errorf("unknown entity type: %s", s)
	}
	return t, nil
}

// nerLabelMapping maps NER model labels to entity types.
var nerLabelMapping = map[string]EntityType{
	"PER":          EntityTypePerson,
	"PERSON":       EntityTypePerson,
	"ORG":          EntityTypeOrg,
	"ORGANIZATION": EntityTypeOrg,
	"LOC":          EntityTypeLoc,
	"LOCATION":     EntityTypeLoc,
	"GPE":          EntityTypeLoc,
	"EMAIL":        EntityTypeEmail,
	"PHONE":        EntityTypePhone,
	"DATE":         EntityTypeDate,
	"IBAN":         EntityTypeIban,
	"SIREN":        EntityTypeSiren,
	"SIRET":        EntityTypeSiret,
	"ADDRESS":      EntityTypeAddress,
}

// EntityTypeFromLabel maps a NER label to an entity type.
// The lookup is case-insensitive and unknown labels map to LOC.
func EntityTypeFromLabel(label string) EntityType {
	if t, ok := nerLabelMapping[strings.ToUpper(label)]; ok {
		return t
	}
	return EntityTypeLoc
}

// Source is the provenance of an entity. It never changes after creation.
type Source string

const (
	SourcePattern Source = "pattern"
	SourceModel   Source = "model"
	SourceManual  Source = "manual"
)

// Entity represents a detected or manually added span of interest in a document.
// StartPos and EndPos are half-open byte offsets into the original text.
// Value is the exact substring at detection time and is immutable afterwards,
// even if the surrounding text is edited later.
type Entity struct {
	ID          uuid.UUID  `json:"id"`
	Type        EntityType `json:"entity_type"`
	Value       string     `json:"value"`
	Replacement string     `json:"replacement"`
	Confidence  *float64   `json:"confidence,omitempty"`
	Source      Source     `json:"source"`
	StartPos    int        `json:"start_pos"`
	EndPos      int        `json:"end_pos"`
	Page        int        `json:"page"`
	IsModified  bool       `json:"is_modified"`
	GroupID     *uuid.UUID `json:"group_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// PageForOffset estimates the page a text offset falls on. The first page
// is 1.
func PageForOffset(offset int) int {
	if offset <= 0 {
		return 1
	}
	return (offset + PageSize - 1) / PageSize
}

// NewEntity creates an entity for the span [startPos, endPos) with the given
// provenance. The page estimate is derived from the start offset.
func NewEntity(entityType EntityType, value, replacement string, source Source, startPos, endPos int) *Entity {
	return &Entity{
		ID:          uuid.New(),
		Type:        entityType,
		Value:       value,
		Replacement: replacement,
		Source:      source,
		StartPos:    startPos,
		EndPos:      endPos,
		Page:        PageForOffset(startPos),
		IsModified:  false,
		CreatedAt:   time.Now(),
	}
}
