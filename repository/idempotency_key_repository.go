// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/sponsorly/branddesk/models"
	"github.com/sponsorly/branddesk/utils"
	"gorm.io/gorm"
)

// IdempotencyKeyRepositoryImpl implements IdempotencyKeyRepository interface
type IdempotencyKeyRepositoryImpl struct {
	*BaseRepository[models.IdempotencyKey, models.IdempotencyKeyFilter]
}

// NewIdempotencyKeyRepository creates a new idempotency key repository
func NewIdempotencyKeyRepository(db *gorm.DB) IdempotencyKeyRepository {
	return &IdempotencyKeyRepositoryImpl{
		BaseRepository: NewBaseRepository[models.IdempotencyKey, models.IdempotencyKeyFilter](db),
	}
}

// ByUserOperationKey retrieves a replay marker by its composite key
func (r *IdempotencyKeyRepositoryImpl) ByUserOperationKey(ctx context.Context, userID uint, operation, key string) (*models.IdempotencyKey, error) {
	db := r.getDB(ctx)

	var marker models.IdempotencyKey
	err := db.Where("user_id = ? AND operation = ? AND key = ?", userID, operation, key).
		Last(&marker).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find idempotency key: %w", err)
	}

	return &marker, nil
}

// Complete stores the canonical response and flips the marker to completed
func (r *IdempotencyKeyRepositoryImpl) Complete(ctx context.Context, id uint, response []byte) error {
	db := r.getDB(ctx)

	err := db.Model(&models.IdempotencyKey{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     models.IdempotencyStatusCompleted,
			"response":   response,
			"updated_at": utils.UTCNow(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to complete idempotency key %d: %w", id, err)
	}

	return nil
}

// Delete removes a replay marker, freeing the key for a clean retry after
// a failed run
func (r *IdempotencyKeyRepositoryImpl) Delete(ctx context.Context, id uint) error {
	db := r.getDB(ctx)

	err := db.Delete(&models.IdempotencyKey{}, id).Error
	if err != nil {
		return fmt.Errorf("failed to delete idempotency key %d: %w", id, err)
	}

	return nil
}
