package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/anonymizer/helper"
	"github.com/siherrmann/anonymizer/model"
	anonymizersql "github.com/siherrmann/anonymizer/sql"
)

// DefaultSessionTTL is the sliding expiry applied to sessions on every write
// and read.
const DefaultSessionTTL = 2 * time.Hour

// SessionsDBHandlerFunctions defines the interface for Sessions database operations.
type SessionsDBHandlerFunctions interface {
	PutSession(session *model.Session) error
	SelectSession(id uuid.UUID) (*model.Session, error)
	SelectActiveSessions(limit int) ([]*model.Session, error)
	DeleteSession(id uuid.UUID) (bool, error)
	DeleteExpiredSessions() (int, error)
	CountActiveSessions() (int, error)
}

// SessionsDBHandler handles session-related database operations.
// Sessions expire after a sliding TTL; reading a session through
// SelectSession pushes its expiry forward.
type SessionsDBHandler struct {
	db  *helper.Database
	ttl time.Duration
}

// NewSessionsDBHandler creates a new sessions database handler.
// It initializes the database connection and loads session-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewSessionsDBHandler(db *helper.Database, ttl time.Duration, force bool) (*SessionsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	sessionsDbHandler := &SessionsDBHandler{
		db:  db,
		ttl: ttl,
	}

	err := anonymizersql.LoadSessionsSql(sessionsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load sessions sql", err)
	}

	err = sessionsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized SessionsDBHandler")

	return sessionsDbHandler, nil
}

// CreateTable creates the 'sessions' table in the database.
// If the table already exists, it does not create it again.
func (h *SessionsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_sessions();`)
	if err != nil {
		log.Panicf("error initializing sessions table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table sessions")

	return nil
}

// PutSession inserts or fully replaces a session and resets its expiry.
// Concurrent writers to the same session follow last writer wins.
func (h *SessionsDBHandler) PutSession(session *model.Session) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM upsert_session($1, $2, $3, $4, $5, $6, $7, $8)`,
		session.ID,
		session.Document,
		session.Entities,
		session.Groups,
		session.Mode,
		session.Statistics,
		session.CreatedAt,
		int(h.ttl.Seconds()),
	)

	var expiresAt time.Time
	err := row.Scan(
		&session.ID,
		&session.Document,
		&session.Entities,
		&session.Groups,
		&session.Mode,
		&session.Statistics,
		&session.CreatedAt,
		&session.LastAccessed,
		&expiresAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectSession retrieves an unexpired session by id and pushes its expiry
// forward by the handler's TTL. Returns nil without error when the session
// does not exist or has expired.
func (h *SessionsDBHandler) SelectSession(id uuid.UUID) (*model.Session, error) {
	session := &model.Session{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_session($1, $2)`,
		id,
		int(h.ttl.Seconds()),
	)

	var expiresAt time.Time
	err := row.Scan(
		&session.ID,
		&session.Document,
		&session.Entities,
		&session.Groups,
		&session.Mode,
		&session.Statistics,
		&session.CreatedAt,
		&session.LastAccessed,
		&expiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return session, nil
}

// SelectActiveSessions retrieves unexpired sessions ordered by last access.
func (h *SessionsDBHandler) SelectActiveSessions(limit int) ([]*model.Session, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_active_sessions($1)`,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var sessions []*model.Session
	for rows.Next() {
		session := &model.Session{}
		var expiresAt time.Time
		err := rows.Scan(
			&session.ID,
			&session.Document,
			&session.Entities,
			&session.Groups,
			&session.Mode,
			&session.Statistics,
			&session.CreatedAt,
			&session.LastAccessed,
			&expiresAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		sessions = append(sessions, session)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return sessions, nil
}

// DeleteSession deletes a session by id. Returns false when no session with
// that id existed.
func (h *SessionsDBHandler) DeleteSession(id uuid.UUID) (bool, error) {
	var deleted bool
	err := h.db.Instance.QueryRow(
		`SELECT delete_session($1)`,
		id,
	).Scan(&deleted)
	if err != nil {
		return false, helper.NewError("scan", err)
	}
	return deleted, nil
}

// DeleteExpiredSessions removes all sessions past their expiry and returns
// how many were removed.
func (h *SessionsDBHandler) DeleteExpiredSessions() (int, error) {
	var deleted int
	err := h.db.Instance.QueryRow(
		`SELECT delete_expired_sessions()`,
	).Scan(&deleted)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return deleted, nil
}

// CountActiveSessions returns the number of unexpired sessions.
func (h *SessionsDBHandler) CountActiveSessions() (int, error) {
	var count int
	err := h.db.Instance.QueryRow(
		`SELECT count_active_sessions()`,
	).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}
