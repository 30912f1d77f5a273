package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"backend/internal/model"
)

// AuditStore persists audit entries. Only inserts and ordered reads exist;
// there is deliberately no update or delete path.
type AuditStore struct {
	db *gorm.DB
}

func NewAuditStore(db *gorm.DB) *AuditStore {
	return &AuditStore{db: db}
}

func (s *AuditStore) Append(ctx context.Context, entry *model.AuditEntry) error {
	if err := getDB(ctx, s.db).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

func (s *AuditStore) List(ctx context.Context, page, limit int) ([]model.AuditEntry, int64, error) {
	db := getDB(ctx, s.db)

	var total int64
	if err := db.Model(&model.AuditEntry{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	var entries []model.AuditEntry
	err := db.Order("timestamp DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (s *AuditStore) All(ctx context.Context) ([]model.AuditEntry, error) {
	var entries []model.AuditEntry
	if err := getDB(ctx, s.db).Order("timestamp DESC, id DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
