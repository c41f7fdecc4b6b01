package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/anonymizer/helper"
	"github.com/siherrmann/anonymizer/model"
	anonymizersql "github.com/siherrmann/anonymizer/sql"
)

// PassagesDBHandlerFunctions defines the interface for Passages database operations.
type PassagesDBHandlerFunctions interface {
	InsertPassage(passage *model.Passage) error
	SelectPassagesBySimilarity(sessionID uuid.UUID, embedding []float32, limit int, threshold float64) ([]*model.PassageMatch, error)
	DeletePassagesBySession(sessionID uuid.UUID) (int, error)
}

// PassagesDBHandler handles passage-related database operations.
type PassagesDBHandler struct {
	db *helper.Database
}

// NewPassagesDBHandler creates a new passages database handler.
// It initializes the database connection and loads passage-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewPassagesDBHandler(db *helper.Database, embeddingDim int, force bool) (*PassagesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	passagesDbHandler := &PassagesDBHandler{
		db: db,
	}

	err := anonymizersql.LoadPassagesSql(passagesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load passages sql", err)
	}

	err = passagesDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized PassagesDBHandler")

	return passagesDbHandler, nil
}

// CreateTable creates the 'passages' table in the database.
// If the table already exists, it does not create it again.
func (h *PassagesDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_passages($1);`, embeddingDim)
	if err != nil {
		log.Panicf("error initializing passages table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table passages")

	return nil
}

// InsertPassage inserts a new passage with its embedding
func (h *PassagesDBHandler) InsertPassage(passage *model.Passage) error {
	embeddingVector := pgvector.NewVector(passage.Embedding)
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_passage($1, $2, $3, $4)`,
		passage.SessionID,
		passage.Content,
		passage.Page,
		embeddingVector,
	)

	err := row.Scan(
		&passage.ID,
		&passage.SessionID,
		&passage.Content,
		&passage.Page,
		&passage.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectPassagesBySimilarity retrieves the passages of a session closest to
// the given embedding by cosine similarity, best match first.
func (h *PassagesDBHandler) SelectPassagesBySimilarity(sessionID uuid.UUID, embedding []float32, limit int, threshold float64) ([]*model.PassageMatch, error) {
	embeddingVector := pgvector.NewVector(embedding)
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_passages_by_similarity($1, $2, $3, $4)`,
		sessionID,
		embeddingVector,
		limit,
		threshold,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var matches []*model.PassageMatch
	for rows.Next() {
		match := &model.PassageMatch{}
		err := rows.Scan(
			&match.ID,
			&match.SessionID,
			&match.Content,
			&match.Page,
			&match.Similarity,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		matches = append(matches, match)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return matches, nil
}

// DeletePassagesBySession deletes all passages of a session and returns how
// many were removed.
func (h *PassagesDBHandler) DeletePassagesBySession(sessionID uuid.UUID) (int, error) {
	var deleted int
	err := h.db.Instance.QueryRow(
		`SELECT delete_passages_by_session($1)`,
		sessionID,
	).Scan(&deleted)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return deleted, nil
}
