package anonymizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/siherrmann/anonymizer/content"
	"github.com/siherrmann/anonymizer/core/patterns"
	"github.com/siherrmann/anonymizer/core/pipeline"
	"github.com/siherrmann/anonymizer/core/reconstruct"
	"github.com/siherrmann/anonymizer/core/search"
	"github.com/siherrmann/anonymizer/core/similarity"
	"github.com/siherrmann/anonymizer/database"
	"github.com/siherrmann/anonymizer/helper"
	"github.com/siherrmann/anonymizer/metrics"
	"github.com/siherrmann/anonymizer/model"
	loadSql "github.com/siherrmann/anonymizer/sql"
)

// ErrSessionNotFound is returned when a session does not exist or has expired.
var ErrSessionNotFound = errors.New("session not found")

// Anonymizer provides a unified interface to document processing, entity
// management and the session store
type Anonymizer struct {
	DB       *helper.Database
	Sessions *database.SessionsDBHandler
	Passages *database.PassagesDBHandler
	Catalog  *patterns.Catalog
	Pipeline *pipeline.Pipeline
	// Logging
	log *slog.Logger
}

// NewAnonymizer creates a new Anonymizer instance with all handlers initialized
func NewAnonymizer(config *helper.DatabaseConfiguration, embeddingDim int) (*Anonymizer, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	// Initialize database
	db := helper.NewDatabase("anonymizer", config, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Create handlers in the correct order (sessions first, passages reference them)
	// force=false to not reload if functions already exist
	sessions, err := database.NewSessionsDBHandler(db, database.DefaultSessionTTL, false)
	if err != nil {
		return nil, helper.NewError("create sessions handler", err)
	}

	passages, err := database.NewPassagesDBHandler(db, embeddingDim, false)
	if err != nil {
		return nil, helper.NewError("create passages handler", err)
	}

	catalog := patterns.NewCatalog()

	return &Anonymizer{
		DB:       db,
		Sessions: sessions,
		Passages: passages,
		Catalog:  catalog,
		Pipeline: pipeline.NewPipeline(pipeline.PatternExtractor(catalog)),
		log:      logger,
	}, nil
}

// Close closes the database connection
func (a *Anonymizer) Close() error {
	if a.DB != nil && a.DB.Instance != nil {
		return a.DB.Instance.Close()
	}
	return nil
}

// SetPipeline replaces the processing pipeline
func (a *Anonymizer) SetPipeline(pipeline *pipeline.Pipeline) {
	a.Pipeline = pipeline
}

// SetModelExtractor sets the model entity source. Both the local hugot NER
// extractor and the remote service client fit; the pipeline only sees an
// extract function.
func (a *Anonymizer) SetModelExtractor(extractor pipeline.ExtractFunc) {
	a.Pipeline.SetModelExtractor(extractor)
}

// UseDefaultModelExtractor sets up the local ONNX NER model source.
// This uses the distilbert-NER model via hugot with simple aggregation.
func (a *Anonymizer) UseDefaultModelExtractor() error {
	extractor, err := pipeline.DefaultModelExtractor()
	if err != nil {
		return helper.NewError("create default model extractor", err)
	}

	a.Pipeline.SetModelExtractor(extractor)
	return nil
}

// UseDefaultEmbedder sets up the default embedder for semantic passage search.
// This uses the all-MiniLM-L6-v2 model (384 dimensions).
func (a *Anonymizer) UseDefaultEmbedder() error {
	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		return helper.NewError("create default embedder", err)
	}

	a.Pipeline.SetEmbedder(embedder)
	return nil
}

// ProcessDocument runs entity extraction over the extracted document text and
// creates a session owning the results. Pattern detection always runs; the
// model source is merged in when the mode is ai and an extractor is set.
// When an embedder is configured the text is also split into passages and
// indexed for semantic search.
func (a *Anonymizer) ProcessDocument(ctx context.Context, cont *content.Content, filename string, format string, mode string) (*model.Session, error) {
	if cont == nil || cont.Text == "" {
		return nil, helper.NewError("process document", fmt.Errorf("document text is empty"))
	}

	timer := prometheus.NewTimer(metrics.ExtractionDuration)
	entities, err := a.Pipeline.Extract(ctx, cont.Text, mode == model.ModeAI)
	timer.ObserveDuration()
	if err != nil {
		return nil, helper.NewError("extract entities", err)
	}

	for _, entity := range entities {
		metrics.EntitiesExtracted.WithLabelValues(string(entity.Type), string(entity.Source)).Inc()
	}

	doc := model.Document{
		Filename:   filename,
		Format:     format,
		Size:       len(cont.Text),
		Text:       cont.Text,
		PageCount:  cont.PageCount,
		WordCount:  cont.WordCount,
		UploadedAt: time.Now(),
	}

	session := model.NewSession(doc, entities, mode)
	if err := a.Sessions.PutSession(session); err != nil {
		return nil, helper.NewError("store session", err)
	}

	a.log.Info("Processed document",
		slog.String("session_id", session.ID.String()),
		slog.String("filename", filename),
		slog.Int("num_entities", len(entities)),
	)

	if a.Pipeline.Embedder != nil && a.Pipeline.Splitter != nil {
		if err := a.indexPassages(ctx, session.ID, cont.Text); err != nil {
			return nil, helper.NewError("index passages", err)
		}
	}

	metrics.DocumentsProcessed.WithLabelValues(format).Inc()
	a.refreshSessionGauge()

	return session, nil
}

// indexPassages splits the text into passages, embeds them and stores them
// for semantic search.
func (a *Anonymizer) indexPassages(ctx context.Context, sessionID uuid.UUID, text string) error {
	passages := a.Pipeline.Splitter(text)
	for i, passage := range passages {
		if err := ctx.Err(); err != nil {
			return err
		}

		embedding, err := a.Pipeline.Embedder(passage.Content)
		if err != nil {
			return helper.NewError(fmt.Sprintf("embed passage %d", i), err)
		}

		passage.SessionID = sessionID
		passage.Embedding = embedding
		if err := a.Passages.InsertPassage(passage); err != nil {
			return helper.NewError(fmt.Sprintf("insert passage %d", i), err)
		}
	}

	a.log.Info("Indexed passages", slog.Int("num_passages", len(passages)), slog.String("session_id", sessionID.String()))

	return nil
}

// Session retrieves a session by id and refreshes its expiry.
func (a *Anonymizer) Session(ctx context.Context, sessionID uuid.UUID) (*model.Session, error) {
	session, err := a.Sessions.SelectSession(sessionID)
	if err != nil {
		return nil, helper.NewError("select session", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// mutateSession loads a session, applies the mutation and stores the result.
// Concurrent mutations of the same session follow last writer wins.
func (a *Anonymizer) mutateSession(ctx context.Context, sessionID uuid.UUID, mutate func(*model.Session) error) (*model.Session, error) {
	session, err := a.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := mutate(session); err != nil {
		return nil, err
	}

	if err := a.Sessions.PutSession(session); err != nil {
		return nil, helper.NewError("store session", err)
	}

	return session, nil
}

// AddEntity adds a manually selected entity to a session. The entity type is
// given as a string so callers can pass user input directly; an empty
// replacement is filled with the type's default replacement policy.
func (a *Anonymizer) AddEntity(ctx context.Context, sessionID uuid.UUID, entityType string, value, replacement string, startPos, endPos int) (*model.Entity, error) {
	parsedType, err := model.ParseEntityType(entityType)
	if err != nil {
		return nil, helper.NewError("add entity", err)
	}
	if replacement == "" {
		replacement = patterns.ReplacementFor(parsedType, value)
	}

	entity := model.NewEntity(parsedType, value, replacement, model.SourceManual, startPos, endPos)
	_, err = a.mutateSession(ctx, sessionID, func(session *model.Session) error {
		if endPos > len(session.Document.Text) || startPos < 0 || startPos >= endPos {
			return helper.NewError("add entity", fmt.Errorf("span [%d, %d) out of range for text of length %d", startPos, endPos, len(session.Document.Text)))
		}
		session.AddEntity(entity)
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.EntitiesExtracted.WithLabelValues(string(entity.Type), string(model.SourceManual)).Inc()

	return entity, nil
}

// UpdateEntity applies an update to an entity and marks it as modified.
func (a *Anonymizer) UpdateEntity(ctx context.Context, sessionID, entityID uuid.UUID, update model.EntityUpdate) (*model.Entity, error) {
	var entity *model.Entity
	_, err := a.mutateSession(ctx, sessionID, func(session *model.Session) error {
		var err error
		entity, err = session.UpdateEntity(entityID, update)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// DeleteEntity removes an entity from a session.
func (a *Anonymizer) DeleteEntity(ctx context.Context, sessionID, entityID uuid.UUID) error {
	_, err := a.mutateSession(ctx, sessionID, func(session *model.Session) error {
		return session.DeleteEntity(entityID)
	})
	return err
}

// CreateGroup creates an entity group in a session. An empty replacement
// pattern is filled with the default derived from the group name.
func (a *Anonymizer) CreateGroup(ctx context.Context, sessionID uuid.UUID, name string, entityIDs []uuid.UUID, replacementPattern string) (*model.Group, error) {
	var group *model.Group
	_, err := a.mutateSession(ctx, sessionID, func(session *model.Session) error {
		var err error
		group, err = session.CreateGroup(name, entityIDs, replacementPattern)
		return err
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// UpdateGroup applies an update to a group.
func (a *Anonymizer) UpdateGroup(ctx context.Context, sessionID, groupID uuid.UUID, update model.GroupUpdate) (*model.Group, error) {
	var group *model.Group
	_, err := a.mutateSession(ctx, sessionID, func(session *model.Session) error {
		var err error
		group, err = session.UpdateGroup(groupID, update)
		return err
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// DeleteGroup removes a group from a session and ungroups its members.
func (a *Anonymizer) DeleteGroup(ctx context.Context, sessionID, groupID uuid.UUID) error {
	_, err := a.mutateSession(ctx, sessionID, func(session *model.Session) error {
		return session.DeleteGroup(groupID)
	})
	return err
}

// Anonymize produces the anonymized text of a session's document. Entities in
// a group share the group's replacement pattern, with [INDEX] resolved to the
// group's ordinal so distinct groups of the same kind stay distinguishable.
func (a *Anonymizer) Anonymize(ctx context.Context, sessionID uuid.UUID) (string, error) {
	session, err := a.Session(ctx, sessionID)
	if err != nil {
		return "", err
	}

	timer := prometheus.NewTimer(metrics.ReconstructionDuration)
	defer timer.ObserveDuration()

	result, err := reconstruct.Reconstruct(session.Document.Text, a.effectiveEntities(session))
	if err != nil {
		return "", helper.NewError("reconstruct text", err)
	}

	return result, nil
}

// HighlightDocument produces the session text with every entity wrapped in a
// highlight marker, for review before anonymization.
func (a *Anonymizer) HighlightDocument(ctx context.Context, sessionID uuid.UUID) (string, error) {
	session, err := a.Session(ctx, sessionID)
	if err != nil {
		return "", err
	}

	result, err := reconstruct.Highlight(session.Document.Text, session.Entities)
	if err != nil {
		return "", helper.NewError("highlight text", err)
	}

	return result, nil
}

// effectiveEntities resolves group replacement patterns into per-entity
// replacements. Ungrouped entities keep their own replacement.
func (a *Anonymizer) effectiveEntities(session *model.Session) []*model.Entity {
	groupReplacements := make(map[uuid.UUID]string, len(session.Groups))
	for i, group := range session.Groups {
		groupReplacements[group.ID] = strings.ReplaceAll(group.ReplacementPattern, "[INDEX]", fmt.Sprintf("%03d", i+1))
	}

	entities := make([]*model.Entity, 0, len(session.Entities))
	for _, entity := range session.Entities {
		if entity.GroupID != nil {
			if replacement, ok := groupReplacements[*entity.GroupID]; ok {
				grouped := *entity
				grouped.Replacement = replacement
				entities = append(entities, &grouped)
				continue
			}
		}
		entities = append(entities, entity)
	}
	return entities
}

// FindSimilarEntities clusters a session's entities of one type by textual
// similarity. Pass an empty type to cluster across all types at once; the
// clustering itself never mixes types.
func (a *Anonymizer) FindSimilarEntities(ctx context.Context, sessionID uuid.UUID, entityType model.EntityType, threshold float64) ([]*model.EntityCluster, error) {
	session, err := a.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	entities := session.Entities
	if entityType != "" {
		filtered := make([]*model.Entity, 0, len(entities))
		for _, entity := range entities {
			if entity.Type == entityType {
				filtered = append(filtered, entity)
			}
		}
		entities = filtered
	}

	return similarity.ClusterByType(ctx, entities, threshold)
}

// SearchText runs a plain or regex search over the session's document text.
func (a *Anonymizer) SearchText(ctx context.Context, sessionID uuid.UUID, query string, config model.SearchConfig) ([]*model.SearchResult, error) {
	session, err := a.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return search.TextSearch(ctx, session.Document.Text, query, config)
}

// SemanticSearch retrieves the indexed passages of a session closest to the
// query by embedding similarity. Requires an embedder; passages are indexed
// at process time.
func (a *Anonymizer) SemanticSearch(ctx context.Context, sessionID uuid.UUID, query string, topK int) ([]*model.PassageMatch, error) {
	if a.Pipeline == nil || a.Pipeline.Embedder == nil {
		return nil, helper.NewError("semantic search", fmt.Errorf("pipeline with embedder not set, use UseDefaultEmbedder() first"))
	}

	if _, err := a.Session(ctx, sessionID); err != nil {
		return nil, err
	}

	embedding, err := a.Pipeline.Embedder(query)
	if err != nil {
		return nil, helper.NewError("generate embedding", err)
	}

	if topK <= 0 {
		topK = 10
	}

	return a.Passages.SelectPassagesBySimilarity(sessionID, embedding, topK, 0)
}

// AuditReport renders a markdown summary of a session: totals, per-type
// counts, modification and group counts, and the full value to replacement
// listing.
func (a *Anonymizer) AuditReport(ctx context.Context, sessionID uuid.UUID) (string, error) {
	session, err := a.Session(ctx, sessionID)
	if err != nil {
		return "", err
	}

	modified := 0
	for _, entity := range session.Entities {
		if entity.IsModified {
			modified++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Rapport d'anonymisation\n\n")
	fmt.Fprintf(&b, "- Document : %s (%s)\n", session.Document.Filename, session.Document.Format)
	fmt.Fprintf(&b, "- Pages : %d, mots : %d\n", session.Document.PageCount, session.Document.WordCount)
	fmt.Fprintf(&b, "- Entités détectées : %d\n", session.Statistics.TotalEntities)
	fmt.Fprintf(&b, "- Entités modifiées : %d\n", modified)
	fmt.Fprintf(&b, "- Groupes : %d\n\n", len(session.Groups))

	b.WriteString("## Entités par type\n\n")
	types := make([]string, 0, len(session.Statistics.EntitiesByType))
	for entityType := range session.Statistics.EntitiesByType {
		types = append(types, string(entityType))
	}
	sort.Strings(types)
	for _, entityType := range types {
		fmt.Fprintf(&b, "- %s : %d\n", entityType, session.Statistics.EntitiesByType[model.EntityType(entityType)])
	}

	b.WriteString("\n## Remplacements\n\n")
	b.WriteString("| Type | Valeur | Remplacement |\n|---|---|---|\n")
	for _, entity := range a.effectiveEntities(session) {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", entity.Type, entity.Value, entity.Replacement)
	}

	return b.String(), nil
}

// DeleteSession removes a session and its indexed passages. Returns false
// when no session with that id existed.
func (a *Anonymizer) DeleteSession(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	if _, err := a.Passages.DeletePassagesBySession(sessionID); err != nil {
		return false, helper.NewError("delete passages", err)
	}

	deleted, err := a.Sessions.DeleteSession(sessionID)
	if err != nil {
		return false, helper.NewError("delete session", err)
	}

	a.refreshSessionGauge()

	return deleted, nil
}

// CleanupExpiredSessions removes all sessions past their expiry.
func (a *Anonymizer) CleanupExpiredSessions(ctx context.Context) (int, error) {
	deleted, err := a.Sessions.DeleteExpiredSessions()
	if err != nil {
		return 0, helper.NewError("delete expired sessions", err)
	}

	if deleted > 0 {
		a.log.Info("Removed expired sessions", slog.Int("num_sessions", deleted))
	}
	a.refreshSessionGauge()

	return deleted, nil
}

func (a *Anonymizer) refreshSessionGauge() {
	count, err := a.Sessions.CountActiveSessions()
	if err != nil {
		return
	}
	metrics.ActiveSessions.Set(float64(count))
}
