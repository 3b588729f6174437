package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sponsorly/branddesk/utils"
	"gorm.io/gorm"
)

// DeliverableStatus represents the status of a deliverable
type DeliverableStatus string

const (
	DeliverableStatusPlanned   DeliverableStatus = "planned"
	DeliverableStatusDelivered DeliverableStatus = "delivered"
	DeliverableStatusCancelled DeliverableStatus = "cancelled"
)

// String returns the string representation of the status
func (s DeliverableStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s DeliverableStatus) Valid() bool {
	switch s {
	case DeliverableStatusPlanned, DeliverableStatusDelivered, DeliverableStatusCancelled:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for DeliverableStatus
func (s *DeliverableStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = DeliverableStatus(v)
	case []byte:
		*s = DeliverableStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into DeliverableStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for DeliverableStatus
func (s DeliverableStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid DeliverableStatus: %s", s)
	}
	return string(s), nil
}

// Deliverable represents a piece of sponsored content promised under a deal.
// Its UUID is generated before persistence so that conflict rows can
// reference a candidate whose creation was ultimately blocked.
type Deliverable struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	UUID        uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:uk_deliverables_uuid" json:"uuid"`
	DealID      uint              `gorm:"not null;index:idx_deliverables_deal_id" json:"deal_id"`
	Title       string            `gorm:"size:255;not null" json:"title"`
	Category    *string           `gorm:"size:512" json:"category,omitempty"`
	Platform    string            `gorm:"size:32;not null" json:"platform"`
	Region      *string           `gorm:"size:32" json:"region,omitempty"`
	ScheduledAt *time.Time        `gorm:"index:idx_deliverables_scheduled_at" json:"scheduled_at,omitempty"`
	Status      DeliverableStatus `gorm:"type:varchar(32);not null;default:'planned'" json:"status"`
	CreatedAt   time.Time         `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt   *time.Time        `json:"updated_at,omitempty"`

	// Relations
	Deal *Deal `gorm:"foreignKey:DealID;references:ID" json:"deal,omitempty"`
}

// TableName returns the table name for the model
func (Deliverable) TableName() string {
	return "deliverables"
}

// BeforeCreate is called before creating a new record
func (d *Deliverable) BeforeCreate(tx *gorm.DB) error {
	if d.UUID == uuid.Nil {
		d.UUID = uuid.New()
	}
	if d.Status == "" {
		d.Status = DeliverableStatusPlanned
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (d *Deliverable) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	d.UpdatedAt = &now
	return nil
}

// DeliverableFilter represents filter criteria for deliverables
type DeliverableFilter struct {
	ID              *uint              `json:"id,omitempty"`
	UUID            *uuid.UUID         `json:"uuid,omitempty"`
	DealID          *uint              `json:"deal_id,omitempty"`
	UserID          *uint              `json:"user_id,omitempty"`
	Platform        *string            `json:"platform,omitempty"`
	Status          *DeliverableStatus `json:"status,omitempty"`
	ScheduledAfter  *time.Time         `json:"scheduled_after,omitempty"`
	ScheduledBefore *time.Time         `json:"scheduled_before,omitempty"`
}
