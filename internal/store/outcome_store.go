package store

import (
	"context"
	"errors"
	"time"

	"github.com/dunamismax/avatarforge/internal/domain"
)

var ErrRunIDRequired = errors.New("run id is required")

// Record is one persisted task outcome.
type Record struct {
	RunID      string
	Name       string
	OutputName string
	Status     string
	Shape      string
	Stage      string
	ErrorKind  string
	Message    string
	OutputPath string
	DurationMS int64
	CreatedAt  time.Time
}

type OutcomeStore interface {
	Record(ctx context.Context, runID string, outcome domain.Outcome) error
	ListRun(ctx context.Context, runID string) ([]Record, error)
}

// NewRecord flattens an outcome into its stored form.
func NewRecord(runID string, outcome domain.Outcome, now time.Time) Record {
	return Record{
		RunID:      runID,
		Name:       outcome.Task.Name,
		OutputName: outcome.Task.OutputName,
		Status:     outcome.Status(),
		Shape:      outcome.Shape,
		Stage:      string(outcome.Stage),
		ErrorKind:  string(outcome.Kind),
		Message:    outcome.Message,
		OutputPath: outcome.OutputPath,
		DurationMS: outcome.Duration.Milliseconds(),
		CreatedAt:  now.UTC(),
	}
}
