package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors returned by session mutation operations.
var (
	ErrEntityNotFound = errors.New("entity not found")
	ErrGroupNotFound  = errors.New("group not found")
)

// Processing modes of a session. Pattern detection always runs; the model
// source is merged in only in AI mode.
const (
	ModeStandard = "standard"
	ModeAI       = "ai"
)

// Document describes the source document of a session. Text is the extracted
// plain text all entity offsets refer to.
type Document struct {
	Filename   string    `json:"filename"`
	Format     string    `json:"format"`
	Size       int       `json:"size"`
	Text       string    `json:"text"`
	PageCount  int       `json:"page_count"`
	WordCount  int       `json:"word_count"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Statistics summarizes the entity list of a session.
type Statistics struct {
	TotalEntities  int                `json:"total_entities"`
	EntitiesByType map[EntityType]int `json:"entities_by_type"`
	LastModified   *time.Time         `json:"last_modified,omitempty"`
}

// Session aggregates one document's extracted text with the current entity
// and group lists. A session exclusively owns its entities and groups; they
// have no existence outside of it. All mutations go through the methods below
// so the entity/group consistency invariant holds at every step: an entity's
// GroupID, if set, references an existing group whose EntityIDs contains the
// entity's id.
type Session struct {
	ID           uuid.UUID  `json:"id"`
	Document     Document   `json:"document"`
	Entities     EntityList `json:"entities"`
	Groups       GroupList  `json:"groups"`
	Mode         string     `json:"mode"`
	Statistics   Statistics `json:"statistics"`
	CreatedAt    time.Time  `json:"created_at"`
	LastAccessed time.Time  `json:"last_accessed"`
}

// NewSession creates a session owning the given entities.
func NewSession(doc Document, entities []*Entity, mode string) *Session {
	now := time.Now()
	s := &Session{
		ID:           uuid.New(),
		Document:     doc,
		Entities:     EntityList(entities),
		Groups:       GroupList{},
		Mode:         mode,
		CreatedAt:    now,
		LastAccessed: now,
	}
	s.RecalculateStatistics()
	return s
}

// RecalculateStatistics recomputes the totals from the current entity list.
func (s *Session) RecalculateStatistics() {
	byType := make(map[EntityType]int)
	for _, e := range s.Entities {
		byType[e.Type]++
	}
	s.Statistics.TotalEntities = len(s.Entities)
	s.Statistics.EntitiesByType = byType
}

func (s *Session) touch() {
	now := time.Now()
	s.Statistics.LastModified = &now
}

// Entity returns the entity with the given id, or nil.
func (s *Session) Entity(entityID uuid.UUID) *Entity {
	for _, e := range s.Entities {
		if e.ID == entityID {
			return e
		}
	}
	return nil
}

// Group returns the group with the given id, or nil.
func (s *Session) Group(groupID uuid.UUID) *Group {
	for _, g := range s.Groups {
		if g.ID == groupID {
			return g
		}
	}
	return nil
}

// AddEntity appends a manually created entity and updates the statistics.
func (s *Session) AddEntity(entity *Entity) {
	s.Entities = append(s.Entities, entity)
	s.RecalculateStatistics()
	s.touch()
}

// EntityUpdate carries the fields of an entity a caller may change.
// Nil fields are left untouched.
type EntityUpdate struct {
	Type        *EntityType `json:"entity_type,omitempty"`
	Replacement *string     `json:"replacement,omitempty"`
	Confidence  *float64    `json:"confidence,omitempty"`
}

// UpdateEntity applies an update to an entity. Any applied update marks the
// entity as modified; the flag is never reset.
func (s *Session) UpdateEntity(entityID uuid.UUID, update EntityUpdate) (*Entity, error) {
	entity := s.Entity(entityID)
	if entity == nil {
		return nil, ErrEntityNotFound
	}
	if update.Type != nil {
		entity.Type = *update.Type
	}
	if update.Replacement != nil {
		entity.Replacement = *update.Replacement
	}
	if update.Confidence != nil {
		entity.Confidence = update.Confidence
	}
	entity.IsModified = true
	s.RecalculateStatistics()
	s.touch()
	return entity, nil
}

// DeleteEntity removes an entity from the session. If the entity belongs to a
// group, its id is removed from that group's member list in the same step.
func (s *Session) DeleteEntity(entityID uuid.UUID) error {
	index := -1
	for i, e := range s.Entities {
		if e.ID == entityID {
			index = i
			break
		}
	}
	if index == -1 {
		return ErrEntityNotFound
	}

	entity := s.Entities[index]
	if entity.GroupID != nil {
		if group := s.Group(*entity.GroupID); group != nil {
			group.removeEntityID(entityID)
		}
	}

	s.Entities = append(s.Entities[:index], s.Entities[index+1:]...)
	s.RecalculateStatistics()
	s.touch()
	return nil
}

// CreateGroup creates a group over the given entities and sets their GroupID.
// Unknown entity ids are rejected before anything is changed.
func (s *Session) CreateGroup(name string, entityIDs []uuid.UUID, replacementPattern string) (*Group, error) {
	for _, id := range entityIDs {
		if s.Entity(id) == nil {
			return nil, ErrEntityNotFound
		}
	}

	group := NewGroup(name, entityIDs, replacementPattern)
	for _, id := range entityIDs {
		entity := s.Entity(id)
		groupID := group.ID
		entity.GroupID = &groupID
	}
	s.Groups = append(s.Groups, group)
	s.touch()
	return group, nil
}

// GroupUpdate carries the fields of a group a caller may change.
type GroupUpdate struct {
	Name               *string `json:"name,omitempty"`
	ReplacementPattern *string `json:"replacement_pattern,omitempty"`
	Color              *string `json:"color,omitempty"`
}

// UpdateGroup applies an update to a group. Membership is not changed here;
// it only moves through CreateGroup, DeleteGroup and DeleteEntity.
func (s *Session) UpdateGroup(groupID uuid.UUID, update GroupUpdate) (*Group, error) {
	group := s.Group(groupID)
	if group == nil {
		return nil, ErrGroupNotFound
	}
	if update.Name != nil {
		group.Name = *update.Name
	}
	if update.ReplacementPattern != nil {
		group.ReplacementPattern = *update.ReplacementPattern
	}
	if update.Color != nil {
		group.Color = *update.Color
	}
	s.touch()
	return group, nil
}

// DeleteGroup removes a group and clears the GroupID of every member entity.
func (s *Session) DeleteGroup(groupID uuid.UUID) error {
	index := -1
	for i, g := range s.Groups {
		if g.ID == groupID {
			index = i
			break
		}
	}
	if index == -1 {
		return ErrGroupNotFound
	}

	for _, e := range s.Entities {
		if e.GroupID != nil && *e.GroupID == groupID {
			e.GroupID = nil
		}
	}

	s.Groups = append(s.Groups[:index], s.Groups[index+1:]...)
	s.touch()
	return nil
}
