package routine

import (
	"fmt"
	"time"

	"xcontrol.dev/xcontrol/internal/database"
	"xcontrol.dev/xcontrol/internal/logging"
)

// History is the slice of the run-history store the executor records to.
type History interface {
	StartSession(displayID, routineName string) (string, error)
	CompleteSession(sessionID string) error
	FailSession(sessionID, errorMessage string) error
	RecordStep(sessionID string, stepIndex int, stepType, status, detail string, startedAt time.Time, duration time.Duration) (int64, error)
}

var _ History = (*database.DB)(nil)

// Executor runs built routines and records each run as a session.
type Executor struct {
	history History
	logger  *logging.Logger
}

// NewExecutor creates an executor. History recording is optional.
func NewExecutor() *Executor {
	return &Executor{
		logger: logging.New("routine"),
	}
}

// WithHistory sets the store that sessions and steps are recorded to.
func (e *Executor) WithHistory(history History) *Executor {
	e.history = history
	return e
}

// WithLogger replaces the executor's logger.
func (e *Executor) WithLogger(logger *logging.Logger) *Executor {
	e.logger = logger
	return e
}

// Execute runs a built routine against a controller, stopping at the first
// failing step. When a history store is configured, the run and each
// executed step are recorded.
func (e *Executor) Execute(ctrl Controller, displayID, routineName string, b *Builder) error {
	sessionID := ""
	if e.history != nil {
		id, err := e.history.StartSession(displayID, routineName)
		if err != nil {
			return fmt.Errorf("failed to start session: %w", err)
		}
		sessionID = id
	}

	e.logger.InfoWithContext("Routine started", map[string]interface{}{
		"routine": routineName,
		"display": displayID,
		"steps":   len(b.Steps()),
	})

	for i, step := range b.Steps() {
		if step.issue != nil {
			err := fmt.Errorf("step %d (%s): %w", i+1, step.name, step.issue)
			e.finish(sessionID, err)
			return err
		}

		startedAt := time.Now()
		detail, err := step.execute(ctrl)
		duration := time.Since(startedAt)

		if err != nil {
			e.recordStep(sessionID, i, step.name, database.StatusFailed, err.Error(), startedAt, duration)
			stepErr := fmt.Errorf("step %d (%s): %w", i+1, step.name, err)
			e.finish(sessionID, stepErr)
			return stepErr
		}

		e.recordStep(sessionID, i, step.name, database.StatusCompleted, detail, startedAt, duration)
		e.logger.DebugWithContext("Step completed", map[string]interface{}{
			"step":     step.name,
			"index":    i,
			"duration": duration.String(),
		})
	}

	e.finish(sessionID, nil)
	e.logger.InfoWithContext("Routine completed", map[string]interface{}{
		"routine": routineName,
		"display": displayID,
	})
	return nil
}

func (e *Executor) recordStep(sessionID string, index int, name, status, detail string, startedAt time.Time, duration time.Duration) {
	if e.history == nil || sessionID == "" {
		return
	}
	if _, err := e.history.RecordStep(sessionID, index, name, status, detail, startedAt, duration); err != nil {
		e.logger.Error("Failed to record step", err)
	}
}

func (e *Executor) finish(sessionID string, runErr error) {
	if e.history == nil || sessionID == "" {
		return
	}
	var err error
	if runErr != nil {
		err = e.history.FailSession(sessionID, runErr.Error())
	} else {
		err = e.history.CompleteSession(sessionID)
	}
	if err != nil {
		e.logger.Error("Failed to finish session", err)
	}
}
