// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"github.com/sponsorly/branddesk/models"
	"gorm.io/gorm"
)

// BrandRepositoryImpl implements BrandRepository interface
type BrandRepositoryImpl struct {
	*BaseRepository[models.Brand, models.BrandFilter]
}

// NewBrandRepository creates a new brand repository
func NewBrandRepository(db *gorm.DB) BrandRepository {
	return &BrandRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Brand, models.BrandFilter](db),
	}
}

// ListByUser retrieves all brands belonging to a user
func (r *BrandRepositoryImpl) ListByUser(ctx context.Context, userID uint) ([]*models.Brand, error) {
	db := r.getDB(ctx)

	var brands []*models.Brand
	err := db.Where("user_id = ?", userID).
		Order("name ASC").
		Find(&brands).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list brands by user: %w", err)
	}

	return brands, nil
}
