// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/sponsorly/branddesk/models"
	"gorm.io/gorm"
)

// DealRepositoryImpl implements DealRepository interface
type DealRepositoryImpl struct {
	*BaseRepository[models.Deal, models.DealFilter]
}

// NewDealRepository creates a new deal repository
func NewDealRepository(db *gorm.DB) DealRepository {
	return &DealRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Deal, models.DealFilter](db),
	}
}

// ByUUID retrieves a deal by UUID
func (r *DealRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Deal, error) {
	db := r.getDB(ctx)

	var deal models.Deal
	err := db.Where("uuid = ?", uuid).Last(&deal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find deal by UUID: %w", err)
	}

	return &deal, nil
}

// ListByUser retrieves deals owned by a user with pagination
func (r *DealRepositoryImpl) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Deal, error) {
	db := r.getDB(ctx)

	var deals []*models.Deal
	err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Preload("Brand").
		Find(&deals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list deals by user: %w", err)
	}

	return deals, nil
}

// VerifyOwnership checks that a deal belongs to the given user
func (r *DealRepositoryImpl) VerifyOwnership(ctx context.Context, dealID, userID uint) (bool, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.Model(&models.Deal{}).
		Where("id = ? AND user_id = ?", dealID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to verify deal ownership: %w", err)
	}

	return count > 0, nil
}
