// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sponsorly/branddesk/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
}

// UserRepository defines operations for dashboard users
type UserRepository interface {
	Repository[models.User, models.UserFilter]
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByUUID(ctx context.Context, uuid string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, userID uint, at time.Time) error
}

// BrandRepository defines operations for brands
type BrandRepository interface {
	Repository[models.Brand, models.BrandFilter]
	ListByUser(ctx context.Context, userID uint) ([]*models.Brand, error)
}

// DealRepository defines operations for sponsorship deals
type DealRepository interface {
	Repository[models.Deal, models.DealFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Deal, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Deal, error)
	VerifyOwnership(ctx context.Context, dealID, userID uint) (bool, error)
}

// ExclusivityRuleRepository defines operations for deal exclusivity rules
type ExclusivityRuleRepository interface {
	Repository[models.ExclusivityRule, models.ExclusivityRuleFilter]
	ListByDeal(ctx context.Context, dealID uint) ([]*models.ExclusivityRule, error)
	ListForUser(ctx context.Context, userID uint, excludingDealID uint) ([]*models.ExclusivityRule, error)
	ReplaceForDeal(ctx context.Context, dealID uint, rules []*models.ExclusivityRule) error
}

// DeliverableRepository defines operations for deliverables
type DeliverableRepository interface {
	Repository[models.Deliverable, models.DeliverableFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Deliverable, error)
	ListByDeal(ctx context.Context, dealID uint) ([]*models.Deliverable, error)
	Update(ctx context.Context, deliverable *models.Deliverable) error
	UpdateStatus(ctx context.Context, deliverableID uint, status models.DeliverableStatus) error
}

// ConflictRepository defines operations for exclusivity conflicts
type ConflictRepository interface {
	Repository[models.Conflict, models.ConflictFilter]
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.Conflict, error)
	ByFilter(ctx context.Context, filter models.ConflictFilter, limit, offset int) ([]*models.Conflict, error)
	Count(ctx context.Context, filter models.ConflictFilter) (int64, error)
	MarkResolved(ctx context.Context, conflictID uint, resolvedBy uint, resolvedAt time.Time) error
	CountActive(ctx context.Context, ownerUserID uint) (int64, error)
	CountBySeverity(ctx context.Context, ownerUserID uint) (map[models.ConflictSeverity]int64, error)
}

// IdempotencyKeyRepository defines operations for idempotent request replay markers
type IdempotencyKeyRepository interface {
	Repository[models.IdempotencyKey, models.IdempotencyKeyFilter]
	ByUserOperationKey(ctx context.Context, userID uint, operation, key string) (*models.IdempotencyKey, error)
	Complete(ctx context.Context, id uint, response []byte) error
	Delete(ctx context.Context, id uint) error
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.AuditLog, error)
	ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error)
	ListFailedActions(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
}
