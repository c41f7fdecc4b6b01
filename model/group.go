package model

import (
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Group is a user-defined cluster of entities sharing one replacement pattern.
// EntityIDs is kept consistent with each member entity's GroupID by the
// session mutation operations.
type Group struct {
	ID                 uuid.UUID   `json:"id"`
	Name               string      `json:"name"`
	ReplacementPattern string      `json:"replacement_pattern"`
	Color              string      `json:"color"`
	EntityIDs          []uuid.UUID `json:"entity_ids"`
	CreatedAt          time.Time   `json:"created_at"`
}

// groupColors is a fixed presentation palette. The color carries no meaning.
var groupColors = []string{
	"#3b82f6", // blue
	"#22c55e", // green
	"#a855f7", // purple
	"#f97316", // orange
	"#ec4899", // pink
	"#6366f1", // indigo
}

// DefaultReplacementPattern builds the default replacement pattern for a
// group name, e.g. "Dupont" -> "DUPONT_[INDEX]".
func DefaultReplacementPattern(name string) string {
	return strings.ToUpper(name) + "_[INDEX]"
}

// NewGroup creates a group with the given members. An empty replacementPattern
// falls back to the default pattern derived from the name.
func NewGroup(name string, entityIDs []uuid.UUID, replacementPattern string) *Group {
	if replacementPattern == "" {
		replacementPattern = DefaultReplacementPattern(name)
	}
	return &Group{
		ID:                 uuid.New(),
		Name:               name,
		ReplacementPattern: replacementPattern,
		Color:              groupColors[rand.Intn(len(groupColors))],
		EntityIDs:          append([]uuid.UUID{}, entityIDs...),
		CreatedAt:          time.Now(),
	}
}

// Contains reports whether the group has the given entity as a member.
func (g *Group) Contains(entityID uuid.UUID) bool {
	for _, id := range g.EntityIDs {
		if id == entityID {
			return true
		}
	}
	return false
}

// removeEntityID removes an entity id from the member list, preserving order.
func (g *Group) removeEntityID(entityID uuid.UUID) {
	kept := g.EntityIDs[:0]
	for _, id := range g.EntityIDs {
		if id != entityID {
			kept = append(kept, id)
		}
	}
	g.EntityIDs = kept
}
