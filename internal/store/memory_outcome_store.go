package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dunamismax/avatarforge/internal/domain"
)

type MemoryOutcomeStore struct {
	mu   sync.RWMutex
	runs map[string][]Record
}

func NewMemoryOutcomeStore() *MemoryOutcomeStore {
	return &MemoryOutcomeStore{
		runs: make(map[string][]Record),
	}
}

func (s *MemoryOutcomeStore) Record(_ context.Context, runID string, outcome domain.Outcome) error {
	if strings.TrimSpace(runID) == "" {
		return ErrRunIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[runID] = append(s.runs[runID], NewRecord(runID, outcome, time.Now()))
	return nil
}

// ListRun returns the run's records ordered by input name.
func (s *MemoryOutcomeStore) ListRun(_ context.Context, runID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := append([]Record(nil), s.runs[runID]...)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Name < records[j].Name
	})
	return records, nil
}
