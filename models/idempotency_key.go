package models

import (
	"encoding/json"
	"time"
)

// IdempotencyStatus marks whether a guarded operation finished
type IdempotencyStatus string

const (
	IdempotencyStatusInProgress IdempotencyStatus = "in_progress"
	IdempotencyStatusCompleted  IdempotencyStatus = "completed"
)

// IdempotencyKey records the outcome of a guarded mutation so a retried
// identical request observes the same result without re-inserting rows.
// Keyed by (user, operation, client-supplied key).
type IdempotencyKey struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	UserID    uint              `gorm:"not null;uniqueIndex:uk_idempotency_user_op_key" json:"user_id"`
	Operation string            `gorm:"size:64;not null;uniqueIndex:uk_idempotency_user_op_key" json:"operation"`
	Key       string            `gorm:"size:255;not null;uniqueIndex:uk_idempotency_user_op_key" json:"key"`
	Status    IdempotencyStatus `gorm:"type:varchar(16);not null;default:'in_progress'" json:"status"`
	Response  json.RawMessage   `gorm:"type:jsonb" json:"response,omitempty"`
	CreatedAt time.Time         `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time         `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// TableName returns the table name for the model
func (IdempotencyKey) TableName() string { return "idempotency_keys" }

// IdempotencyKeyFilter provides filter fields for repository queries
type IdempotencyKeyFilter struct {
	ID        *uint
	UserID    *uint
	Operation *string
	Key       *string
}
