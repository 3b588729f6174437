// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/sponsorly/branddesk/models"
	"gorm.io/gorm"
)

// DeliverableRepositoryImpl implements DeliverableRepository interface
type DeliverableRepositoryImpl struct {
	*BaseRepository[models.Deliverable, models.DeliverableFilter]
}

// NewDeliverableRepository creates a new deliverable repository
func NewDeliverableRepository(db *gorm.DB) DeliverableRepository {
	return &DeliverableRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Deliverable, models.DeliverableFilter](db),
	}
}

// ByUUID retrieves a deliverable by UUID
func (r *DeliverableRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Deliverable, error) {
	db := r.getDB(ctx)

	var deliverable models.Deliverable
	err := db.Where("uuid = ?", uuid).Last(&deliverable).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find deliverable by UUID: %w", err)
	}

	return &deliverable, nil
}

// ListByDeal retrieves all deliverables attached to a deal
func (r *DeliverableRepositoryImpl) ListByDeal(ctx context.Context, dealID uint) ([]*models.Deliverable, error) {
	db := r.getDB(ctx)

	var deliverables []*models.Deliverable
	err := db.Where("deal_id = ?", dealID).
		Order("scheduled_at ASC NULLS LAST").
		Find(&deliverables).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list deliverables by deal: %w", err)
	}

	return deliverables, nil
}

// Update persists changes to an existing deliverable
func (r *DeliverableRepositoryImpl) Update(ctx context.Context, deliverable *models.Deliverable) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Save(deliverable).Error
	if err != nil {
		return fmt.Errorf("failed to update deliverable: %w", err)
	}

	return nil
}

// UpdateStatus transitions a deliverable to a new status
func (r *DeliverableRepositoryImpl) UpdateStatus(ctx context.Context, deliverableID uint, status models.DeliverableStatus) error {
	db := r.getDB(ctx)

	err := db.Model(&models.Deliverable{}).
		Where("id = ?", deliverableID).
		Update("status", status).Error
	if err != nil {
		return fmt.Errorf("failed to update deliverable status: %w", err)
	}

	return nil
}
