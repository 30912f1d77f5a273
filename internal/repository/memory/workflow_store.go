package memory

import (
	"context"
	"sync"

	"backend/internal/model"
)

// WorkflowStore holds the ordered stage list. Replace swaps the whole slice
// under the lock, so readers see either the old list or the new one in full.
type WorkflowStore struct {
	mu    sync.RWMutex
	steps []model.WorkflowStep
}

func NewWorkflowStore(initial []model.WorkflowStep) *WorkflowStore {
	s := &WorkflowStore{}
	s.steps = make([]model.WorkflowStep, len(initial))
	copy(s.steps, initial)
	return s
}

func (s *WorkflowStore) Steps(ctx context.Context) ([]model.WorkflowStep, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.WorkflowStep, len(s.steps))
	copy(out, s.steps)
	return out, nil
}

func (s *WorkflowStore) Replace(ctx context.Context, steps []model.WorkflowStep) error {
	next := make([]model.WorkflowStep, len(steps))
	copy(next, steps)

	s.mu.Lock()
	s.steps = next
	s.mu.Unlock()
	return nil
}
