package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session statuses.
const (
	StatusStarted   = "started"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Session represents one run of a routine against a display.
type Session struct {
	ID              string
	DisplayID       string
	RoutineName     string
	Status          string
	StartedAt       time.Time
	CompletedAt     *time.Time
	DurationSeconds *int64
	ErrorMessage    *string
}

// StepExecution represents one executed step within a session.
type StepExecution struct {
	ID         int64
	SessionID  string
	StepIndex  int
	StepType   string
	Status     string
	Detail     *string
	StartedAt  time.Time
	DurationMs int64
}

// StartSession records the start of a routine run and returns its ID.
func (db *DB) StartSession(displayID, routineName string) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.Exec(`
		INSERT INTO sessions (id, display_id, routine_name, status, started_at)
		VALUES (?, ?, ?, ?, datetime('now'))
	`, id, displayID, routineName, StatusStarted)

	if err != nil {
		return "", fmt.Errorf("failed to start session: %w", err)
	}

	return id, nil
}

// CompleteSession marks a session as completed.
func (db *DB) CompleteSession(sessionID string) error {
	_, err := db.conn.Exec(`
		UPDATE sessions
		SET status = ?,
		    completed_at = datetime('now'),
		    duration_seconds = CAST((julianday('now') - julianday(started_at)) * 86400 AS INTEGER)
		WHERE id = ?
	`, StatusCompleted, sessionID)

	if err != nil {
		return fmt.Errorf("failed to complete session: %w", err)
	}
	return nil
}

// FailSession marks a session as failed with an error message.
func (db *DB) FailSession(sessionID, errorMessage string) error {
	_, err := db.conn.Exec(`
		UPDATE sessions
		SET status = ?,
		    completed_at = datetime('now'),
		    duration_seconds = CAST((julianday('now') - julianday(started_at)) * 86400 AS INTEGER),
		    error_message = ?
		WHERE id = ?
	`, StatusFailed, errorMessage, sessionID)

	if err != nil {
		return fmt.Errorf("failed to mark session as failed: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (db *DB) GetSession(sessionID string) (*Session, error) {
	var s Session
	var completedAt sql.NullTime
	var durationSeconds sql.NullInt64
	var errorMessage sql.NullString

	err := db.conn.QueryRow(`
		SELECT id, display_id, routine_name, status, started_at,
		       completed_at, duration_seconds, error_message
		FROM sessions
		WHERE id = ?
	`, sessionID).Scan(
		&s.ID,
		&s.DisplayID,
		&s.RoutineName,
		&s.Status,
		&s.StartedAt,
		&completedAt,
		&durationSeconds,
		&errorMessage,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session not found: %s", sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if completedAt.Valid {
		s.CompletedAt = &completedAt.Time
	}
	if durationSeconds.Valid {
		s.DurationSeconds = &durationSeconds.Int64
	}
	if errorMessage.Valid {
		s.ErrorMessage = &errorMessage.String
	}

	return &s, nil
}

// ListRecentSessions returns the most recent sessions, newest first.
func (db *DB) ListRecentSessions(limit int) ([]Session, error) {
	rows, err := db.conn.Query(`
		SELECT id, display_id, routine_name, status, started_at,
		       completed_at, duration_seconds, error_message
		FROM sessions
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		var completedAt sql.NullTime
		var durationSeconds sql.NullInt64
		var errorMessage sql.NullString

		if err := rows.Scan(
			&s.ID,
			&s.DisplayID,
			&s.RoutineName,
			&s.Status,
			&s.StartedAt,
			&completedAt,
			&durationSeconds,
			&errorMessage,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		if completedAt.Valid {
			s.CompletedAt = &completedAt.Time
		}
		if durationSeconds.Valid {
			s.DurationSeconds = &durationSeconds.Int64
		}
		if errorMessage.Valid {
			s.ErrorMessage = &errorMessage.String
		}

		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

// RecordStep appends a step execution to a session's history.
func (db *DB) RecordStep(sessionID string, stepIndex int, stepType, status, detail string, startedAt time.Time, duration time.Duration) (int64, error) {
	var detailValue interface{}
	if detail != "" {
		detailValue = detail
	}

	result, err := db.conn.Exec(`
		INSERT INTO step_executions (session_id, step_index, step_type, status, detail, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sessionID, stepIndex, stepType, status, detailValue, startedAt, duration.Milliseconds())

	if err != nil {
		return 0, fmt.Errorf("failed to record step: %w", err)
	}

	return result.LastInsertId()
}

// ListSessionSteps returns a session's step executions in execution order.
func (db *DB) ListSessionSteps(sessionID string) ([]StepExecution, error) {
	rows, err := db.conn.Query(`
		SELECT id, session_id, step_index, step_type, status, detail, started_at, duration_ms
		FROM step_executions
		WHERE session_id = ?
		ORDER BY step_index ASC, id ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}
	defer rows.Close()

	var steps []StepExecution
	for rows.Next() {
		var step StepExecution
		var detail sql.NullString

		if err := rows.Scan(
			&step.ID,
			&step.SessionID,
			&step.StepIndex,
			&step.StepType,
			&step.Status,
			&detail,
			&step.StartedAt,
			&step.DurationMs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}

		if detail.Valid {
			step.Detail = &detail.String
		}

		steps = append(steps, step)
	}

	return steps, rows.Err()
}
