// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sponsorly/branddesk/models"
	"gorm.io/gorm"
)

// ConflictRepositoryImpl implements ConflictRepository interface
type ConflictRepositoryImpl struct {
	*BaseRepository[models.Conflict, models.ConflictFilter]
}

// NewConflictRepository creates a new conflict repository
func NewConflictRepository(db *gorm.DB) ConflictRepository {
	return &ConflictRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Conflict, models.ConflictFilter](db),
	}
}

// ByUUID retrieves a conflict by UUID
func (r *ConflictRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.Conflict, error) {
	db := r.getDB(ctx)

	var conflict models.Conflict
	err := db.Where("uuid = ?", id).
		Preload("ConflictingRule").
		Preload("Deal").
		Last(&conflict).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find conflict by UUID: %w", err)
	}

	return &conflict, nil
}

// ByFilter retrieves conflicts matching the filter with pagination.
// OwnerUserID scopes the result to conflicts on deals the user owns by
// joining through the deals table.
func (r *ConflictRepositoryImpl) ByFilter(ctx context.Context, filter models.ConflictFilter, limit, offset int) ([]*models.Conflict, error) {
	db := r.getDB(ctx)

	query := r.applyFilter(db.Model(&models.Conflict{}), filter)

	var conflicts []*models.Conflict
	err := query.Order("conflicts.detected_at DESC").
		Limit(limit).
		Offset(offset).
		Preload("ConflictingRule").
		Preload("Deal").
		Find(&conflicts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conflicts by filter: %w", err)
	}

	return conflicts, nil
}

// Count returns the number of conflicts matching the filter
func (r *ConflictRepositoryImpl) Count(ctx context.Context, filter models.ConflictFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := r.applyFilter(db.Model(&models.Conflict{}), filter).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count conflicts: %w", err)
	}

	return count, nil
}

// MarkResolved stamps resolution on an active conflict. Resolving an
// already-resolved conflict is a no-op, so retries are safe.
func (r *ConflictRepositoryImpl) MarkResolved(ctx context.Context, conflictID uint, resolvedBy uint, resolvedAt time.Time) error {
	db := r.getDB(ctx)

	err := db.Model(&models.Conflict{}).
		Where("id = ? AND resolved_at IS NULL", conflictID).
		Updates(map[string]any{
			"auto_resolved":   true,
			"acknowledged_by": resolvedBy,
			"acknowledged_at": resolvedAt,
			"resolved_at":     resolvedAt,
			"updated_at":      resolvedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark conflict %d resolved: %w", conflictID, err)
	}

	return nil
}

// CountActive counts unresolved conflicts across all deals a user owns
func (r *ConflictRepositoryImpl) CountActive(ctx context.Context, ownerUserID uint) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.Model(&models.Conflict{}).
		Joins("JOIN deals ON deals.id = conflicts.deal_id").
		Where("deals.user_id = ?", ownerUserID).
		Where("conflicts.resolved_at IS NULL").
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active conflicts: %w", err)
	}

	return count, nil
}

// CountBySeverity counts unresolved conflicts per severity for a user
func (r *ConflictRepositoryImpl) CountBySeverity(ctx context.Context, ownerUserID uint) (map[models.ConflictSeverity]int64, error) {
	db := r.getDB(ctx)

	type severityCount struct {
		Severity models.ConflictSeverity
		Total    int64
	}

	var rows []severityCount
	err := db.Model(&models.Conflict{}).
		Select("conflicts.severity AS severity, COUNT(*) AS total").
		Joins("JOIN deals ON deals.id = conflicts.deal_id").
		Where("deals.user_id = ?", ownerUserID).
		Where("conflicts.resolved_at IS NULL").
		Group("conflicts.severity").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count conflicts by severity: %w", err)
	}

	counts := make(map[models.ConflictSeverity]int64, len(rows))
	for _, row := range rows {
		counts[row.Severity] = row.Total
	}

	return counts, nil
}

// applyFilter applies conflict filter conditions to the query
func (r *ConflictRepositoryImpl) applyFilter(db *gorm.DB, filter models.ConflictFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("conflicts.id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("conflicts.uuid = ?", *filter.UUID)
	}
	if filter.Type != nil {
		db = db.Where("conflicts.type = ?", *filter.Type)
	}
	if filter.Severity != nil {
		db = db.Where("conflicts.severity = ?", *filter.Severity)
	}
	if filter.AutoResolved != nil {
		db = db.Where("conflicts.auto_resolved = ?", *filter.AutoResolved)
	}
	if filter.Resolved != nil {
		if *filter.Resolved {
			db = db.Where("conflicts.resolved_at IS NOT NULL")
		} else {
			db = db.Where("conflicts.resolved_at IS NULL")
		}
	}
	if filter.ConflictingRuleID != nil {
		db = db.Where("conflicts.conflicting_rule_id = ?", *filter.ConflictingRuleID)
	}
	if filter.DeliverableUUID != nil {
		db = db.Where("conflicts.deliverable_uuid = ?", *filter.DeliverableUUID)
	}
	if filter.DealID != nil {
		db = db.Where("conflicts.deal_id = ?", *filter.DealID)
	}
	if filter.OwnerUserID != nil {
		db = db.Joins("JOIN deals ON deals.id = conflicts.deal_id").
			Where("deals.user_id = ?", *filter.OwnerUserID)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("conflicts.created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("conflicts.created_at <= ?", *filter.CreatedBefore)
	}
	return db
}
