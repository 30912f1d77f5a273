package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"backend/internal/model"
)

// WorkflowStore persists the stage list. Replace rewrites the whole table in
// one transaction so readers never observe a partially swapped definition.
type WorkflowStore struct {
	db *gorm.DB
}

func NewWorkflowStore(db *gorm.DB) *WorkflowStore {
	return &WorkflowStore{db: db}
}

func (s *WorkflowStore) Steps(ctx context.Context) ([]model.WorkflowStep, error) {
	var steps []model.WorkflowStep
	if err := getDB(ctx, s.db).Order("step_order ASC").Find(&steps).Error; err != nil {
		return nil, err
	}
	return steps, nil
}

func (s *WorkflowStore) Replace(ctx context.Context, steps []model.WorkflowStep) error {
	run := func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.WorkflowStep{}).Error; err != nil {
			return fmt.Errorf("failed to clear workflow steps: %w", err)
		}
		if err := tx.Create(&steps).Error; err != nil {
			return fmt.Errorf("failed to insert workflow steps: %w", err)
		}
		return nil
	}

	db := getDB(ctx, s.db)
	if _, inTx := ctx.Value(txKey).(*gorm.DB); inTx {
		return run(db)
	}
	return db.Transaction(run)
}
