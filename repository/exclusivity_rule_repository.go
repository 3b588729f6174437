// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"github.com/sponsorly/branddesk/models"
	"gorm.io/gorm"
)

// ExclusivityRuleRepositoryImpl implements ExclusivityRuleRepository interface
type ExclusivityRuleRepositoryImpl struct {
	*BaseRepository[models.ExclusivityRule, models.ExclusivityRuleFilter]
}

// NewExclusivityRuleRepository creates a new exclusivity rule repository
func NewExclusivityRuleRepository(db *gorm.DB) ExclusivityRuleRepository {
	return &ExclusivityRuleRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ExclusivityRule, models.ExclusivityRuleFilter](db),
	}
}

// ListByDeal retrieves all rules attached to a deal
func (r *ExclusivityRuleRepositoryImpl) ListByDeal(ctx context.Context, dealID uint) ([]*models.ExclusivityRule, error) {
	db := r.getDB(ctx)

	var rules []*models.ExclusivityRule
	err := db.Where("deal_id = ?", dealID).
		Order("id ASC").
		Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list exclusivity rules by deal: %w", err)
	}

	return rules, nil
}

// ListForUser retrieves every rule across a user's deals, excluding the
// rules of one deal. Detection passes exclude the candidate's own deal so
// a deal never conflicts with itself. Deal status is deliberately not
// filtered: a rule on a completed deal still binds for as long as its
// window runs.
func (r *ExclusivityRuleRepositoryImpl) ListForUser(ctx context.Context, userID uint, excludingDealID uint) ([]*models.ExclusivityRule, error) {
	db := r.getDB(ctx)

	var rules []*models.ExclusivityRule
	query := db.Joins("JOIN deals ON deals.id = exclusivity_rules.deal_id").
		Where("deals.user_id = ?", userID)
	if excludingDealID != 0 {
		query = query.Where("exclusivity_rules.deal_id <> ?", excludingDealID)
	}

	err := query.Order("exclusivity_rules.id ASC").Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list exclusivity rules for user: %w", err)
	}

	return rules, nil
}

// ReplaceForDeal swaps a deal's rule set wholesale. Existing rows are
// removed and the new set inserted; callers wrap this in a transaction
// together with any dependent writes.
func (r *ExclusivityRuleRepositoryImpl) ReplaceForDeal(ctx context.Context, dealID uint, rules []*models.ExclusivityRule) error {
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

	err = db.Where("deal_id = ?", dealID).Delete(&models.ExclusivityRule{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear exclusivity rules for deal %d: %w", dealID, err)
	}

	for _, rule := range rules {
		rule.DealID = dealID
	}
	if len(rules) > 0 {
		err = db.Create(&rules).Error
		if err != nil {
			return fmt.Errorf("failed to insert exclusivity rules for deal %d: %w", dealID, err)
		}
	}

	return nil
}
