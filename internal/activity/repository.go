// Package activity persists the operator's intent history.
package activity

import (
	"context"
	"errors"

	"cache-viewer/internal/models"

	"gorm.io/gorm"
)

// DefaultLimit bounds Recent when callers pass a non-positive limit.
const DefaultLimit = 50

// Repository stores activity records in the journal database.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a Repository backed by db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Record appends one activity.
func (r *Repository) Record(ctx context.Context, a models.Activity) error {
	if a.Kind == "" {
		return errors.New("activity kind is required")
	}
	a.ID = 0
	return r.db.WithContext(ctx).Create(&a).Error
}

// Recent lists up to limit activities, newest first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	var activities []models.Activity
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}
