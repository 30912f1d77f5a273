package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"backend/internal/model"
	"backend/internal/repository"
)

// RequestStore is the GORM-backed RequestRepository for deployments that
// embed the engine behind a database. The engine itself only requires the
// in-memory store; this adapter exists for multi-writer setups.
type RequestStore struct {
	db *gorm.DB
}

func NewRequestStore(db *gorm.DB) *RequestStore {
	return &RequestStore{db: db}
}

func (s *RequestStore) Create(ctx context.Context, req *model.Request) error {
	if err := getDB(ctx, s.db).Create(req).Error; err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return nil
}

func (s *RequestStore) GetByID(ctx context.Context, id string) (*model.Request, error) {
	var req model.Request
	err := getDB(ctx, s.db).Preload("Comments").First(&req, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (s *RequestStore) List(ctx context.Context, filter repository.RequestFilter) ([]model.Request, int64, error) {
	db := getDB(ctx, s.db)

	var total int64
	countQuery := db.Model(&model.Request{})
	if filter.Status != "" {
		countQuery = countQuery.Where("status = ?", filter.Status)
	}
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count requests: %w", err)
	}

	page, limit := filter.Page, filter.Limit
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	var requests []model.Request
	query := db.Preload("Comments").Order("created_at DESC")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if err := query.Offset((page - 1) * limit).Limit(limit).Find(&requests).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch requests: %w", err)
	}

	return requests, total, nil
}

// Update serializes concurrent writers through a SELECT ... FOR UPDATE row
// lock. Callers are expected to run it inside TxManager.RunInTx so the lock
// spans the paired audit append as well.
func (s *RequestStore) Update(ctx context.Context, id string, mutate func(req *model.Request) error) (*model.Request, error) {
	db := getDB(ctx, s.db)

	var req model.Request
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Comments").
		First(&req, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrRequestNotFound
		}
		return nil, err
	}

	if err := mutate(&req); err != nil {
		return nil, err
	}

	if err := db.Session(&gorm.Session{FullSaveAssociations: true}).Save(&req).Error; err != nil {
		return nil, fmt.Errorf("failed to update request: %w", err)
	}
	return &req, nil
}

func (s *RequestStore) ActiveAssigneeRoles(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	err := getDB(ctx, s.db).Model(&model.Request{}).
		Distinct("current_assignee_role").
		Where("current_assignee_role IS NOT NULL").
		Where("status NOT IN ?", []model.RequestStatus{model.StatusApproved, model.StatusRejected}).
		Pluck("current_assignee_role", &roles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to collect active assignee roles: %w", err)
	}
	return roles, nil
}

func (s *RequestStore) Delete(ctx context.Context, id string) error {
	res := getDB(ctx, s.db).Delete(&model.Request{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete request: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return model.ErrRequestNotFound
	}
	return nil
}
