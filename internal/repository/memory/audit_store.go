package memory

import (
	"context"
	"sync"

	"backend/internal/model"
)

// AuditStore is the in-memory append-only audit log. New entries are inserted
// at the head so reads come back newest first; nothing is ever updated or
// removed.
type AuditStore struct {
	mu      sync.RWMutex
	entries []model.AuditEntry
}

func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

func (s *AuditStore) Append(ctx context.Context, entry *model.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append([]model.AuditEntry{*entry}, s.entries...)
	return nil
}

func (s *AuditStore) List(ctx context.Context, page, limit int) ([]model.AuditEntry, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := int64(len(s.entries))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	offset := (page - 1) * limit
	if offset >= len(s.entries) {
		return []model.AuditEntry{}, total, nil
	}
	end := offset + limit
	if end > len(s.entries) {
		end = len(s.entries)
	}

	out := make([]model.AuditEntry, end-offset)
	copy(out, s.entries[offset:end])
	return out, total, nil
}

func (s *AuditStore) All(ctx context.Context) ([]model.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.AuditEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}
