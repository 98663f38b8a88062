// Package research models the lifecycle of a keyword research run.
package research

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/rankforge/rankforge/pkg/errors"
	"github.com/rankforge/rankforge/pkg/types/common"
)

// ---
// Status
// ---

// Status is the run state machine: pending → processing → completed|failed.
// Terminal states are immutable.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ---
// Progress log
// ---

// ProgressEntry is one append-only line of a run's progress log.  Indent
// reflects nesting: stage headers at 0, per-seed sub-steps deeper.
type ProgressEntry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
	Indent  int       `json:"indent"`
}

// ---
// Run
// ---

// Run is a durable research run.  Domain, Niche and Competitors capture the
// target context at creation time so a background worker can execute the run
// without consulting any other store.
type Run struct {
	ID           common.ID
	ProjectID    common.ID
	Status       Status
	Domain       string
	Niche        string
	Competitors  []string
	SeedKeywords []string
	ProgressLog  []ProgressEntry
	TotalFound   int
	ErrorMessage *string
	CreatedAt    time.Time
	StartedAt    *time.Time
	FinishedAt   *time.Time
}

// NewRun creates a pending run.  seeds may be empty, in which case the
// orchestrator generates them.
func NewRun(projectID common.ID, domain, niche string, competitors, seeds []string) *Run {
	return &Run{
		ID:           common.NewID(),
		ProjectID:    projectID,
		Status:       StatusPending,
		Domain:       domain,
		Niche:        niche,
		Competitors:  append([]string(nil), competitors...),
		SeedKeywords: append([]string(nil), seeds...),
		CreatedAt:    time.Now().UTC(),
	}
}

// Log appends a progress entry at the given indent level.
func (r *Run) Log(indent int, format string, args ...interface{}) {
	r.ProgressLog = append(r.ProgressLog, ProgressEntry{
		Time:    time.Now().UTC(),
		Message: fmt.Sprintf(format, args...),
		Indent:  indent,
	})
}

// Start transitions pending → processing.
func (r *Run) Start() error {
	if r.Status != StatusPending {
		return apperrors.New(apperrors.ErrCodeRunInvalidTransition,
			fmt.Sprintf("cannot start run in state %q", r.Status))
	}
	now := time.Now().UTC()
	r.Status = StatusProcessing
	r.StartedAt = &now
	return nil
}

// Complete transitions processing → completed with the final pre-truncation
// candidate count.
func (r *Run) Complete(totalFound int) error {
	if r.Status != StatusProcessing {
		return apperrors.New(apperrors.ErrCodeRunInvalidTransition,
			fmt.Sprintf("cannot complete run in state %q", r.Status))
	}
	now := time.Now().UTC()
	r.Status = StatusCompleted
	r.TotalFound = totalFound
	r.FinishedAt = &now
	return nil
}

// Fail transitions processing → failed, recording the error message verbatim.
// Failing an already-terminal run is rejected so terminal states stay
// immutable.
func (r *Run) Fail(message string) error {
	if r.Status.Terminal() {
		return apperrors.New(apperrors.ErrCodeRunInvalidTransition,
			fmt.Sprintf("cannot fail run in state %q", r.Status))
	}
	now := time.Now().UTC()
	r.Status = StatusFailed
	r.ErrorMessage = &message
	r.FinishedAt = &now
	return nil
}

// ---
// Repository
// ---

// Repository is the persistence port for research runs.
type Repository interface {
	Create(ctx context.Context, run *Run) error
	GetByID(ctx context.Context, id common.ID) (*Run, error)
	Update(ctx context.Context, run *Run) error
	// NextPending atomically claims the oldest pending run and moves it to
	// processing, or returns nil when none is waiting.
	NextPending(ctx context.Context) (*Run, error)
}
