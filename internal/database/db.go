package database

import (
	"context"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"backend/internal/model"
)

// NewConnection initializes a GORM connection pool and migrates the engine's
// tables. Only used when the service runs against the postgres store adapter;
// the default deployment keeps everything in memory.
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&model.Request{},
		&model.Comment{},
		&model.WorkflowStep{},
		&model.AuditEntry{},
	); err != nil {
		return nil, err
	}

	return db, nil
}

// EnsureWorkflow seeds the stage table with the default pipeline when it is
// empty so a fresh database can route submissions immediately.
func EnsureWorkflow(ctx context.Context, db *gorm.DB, steps []model.WorkflowStep) error {
	var count int64
	if err := db.WithContext(ctx).Model(&model.WorkflowStep{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&steps).Error
}
