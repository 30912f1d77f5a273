package memory

import (
	"context"
	"sort"
	"sync"

	"backend/internal/model"
	"backend/internal/repository"
)

// requestRecord pairs a request with its own mutex so that read-modify-write
// cycles on one request never interleave, while transitions on distinct
// requests proceed independently.
type requestRecord struct {
	mu  sync.Mutex
	req model.Request
}

// RequestStore is the in-memory RequestRepository. It is the default backend:
// the engine's state is session-scoped by design.
type RequestStore struct {
	mu      sync.RWMutex
	records map[string]*requestRecord
}

func NewRequestStore() *RequestStore {
	return &RequestStore{records: make(map[string]*requestRecord)}
}

func cloneRequest(r model.Request) model.Request {
	out := r
	if r.CurrentAssigneeRole != nil {
		role := *r.CurrentAssigneeRole
		out.CurrentAssigneeRole = &role
	}
	out.Comments = make([]model.Comment, len(r.Comments))
	copy(out.Comments, r.Comments)
	return out
}

func (s *RequestStore) Create(ctx context.Context, req *model.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[req.ID]; exists {
		return model.ErrValidation
	}
	s.records[req.ID] = &requestRecord{req: cloneRequest(*req)}
	return nil
}

func (s *RequestStore) GetByID(ctx context.Context, id string) (*model.Request, error) {
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrRequestNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := cloneRequest(rec.req)
	return &out, nil
}

func (s *RequestStore) List(ctx context.Context, filter repository.RequestFilter) ([]model.Request, int64, error) {
	s.mu.RLock()
	all := make([]model.Request, 0, len(s.records))
	for _, rec := range s.records {
		rec.mu.Lock()
		req := cloneRequest(rec.req)
		rec.mu.Unlock()
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		all = append(all, req)
	}
	s.mu.RUnlock()

	// Newest first, matching the frontend's request list ordering.
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := int64(len(all))
	page, limit := filter.Page, filter.Limit
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		return all, total, nil
	}
	offset := (page - 1) * limit
	if offset >= len(all) {
		return []model.Request{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (s *RequestStore) Update(ctx context.Context, id string, mutate func(req *model.Request) error) (*model.Request, error) {
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, model.ErrRequestNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	// Mutate a copy so a failed mutation leaves the stored request untouched.
	working := cloneRequest(rec.req)
	if err := mutate(&working); err != nil {
		return nil, err
	}
	rec.req = working

	out := cloneRequest(working)
	return &out, nil
}

func (s *RequestStore) ActiveAssigneeRoles(ctx context.Context) ([]model.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[model.Role]bool)
	var roles []model.Role
	for _, rec := range s.records {
		rec.mu.Lock()
		assignee := rec.req.CurrentAssigneeRole
		terminal := rec.req.Status.IsTerminal()
		rec.mu.Unlock()
		if terminal || assignee == nil || seen[*assignee] {
			continue
		}
		seen[*assignee] = true
		roles = append(roles, *assignee)
	}
	return roles, nil
}

func (s *RequestStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return model.ErrRequestNotFound
	}
	delete(s.records, id)
	return nil
}
