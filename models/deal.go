package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sponsorly/branddesk/utils"
	"gorm.io/gorm"
)

// DealStatus represents the status of a sponsorship deal
type DealStatus string

const (
	DealStatusDraft      DealStatus = "draft"
	DealStatusActive     DealStatus = "active"
	DealStatusCompleted  DealStatus = "completed"
	DealStatusTerminated DealStatus = "terminated"
)

// String returns the string representation of the status
func (s DealStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s DealStatus) Valid() bool {
	switch s {
	case DealStatusDraft, DealStatusActive, DealStatusCompleted, DealStatusTerminated:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for DealStatus
func (s *DealStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = DealStatus(v)
	case []byte:
		*s = DealStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into DealStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for DealStatus
func (s DealStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid DealStatus: %s", s)
	}
	return string(s), nil
}

// Deal represents a sponsorship deal between a user and a brand.
// A deal owns exclusivity rules and deliverables.
type Deal struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uk_deals_uuid" json:"uuid"`
	UserID    uint            `gorm:"not null;index:idx_deals_user_id" json:"user_id"`
	BrandID   uint            `gorm:"not null;index:idx_deals_brand_id" json:"brand_id"`
	Title     string          `gorm:"size:255;not null" json:"title"`
	Amount    decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Currency  string          `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Status    DealStatus      `gorm:"type:varchar(32);not null;default:'draft';index:idx_deals_status" json:"status"`
	CreatedAt time.Time       `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_deals_created_at" json:"created_at"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`

	// Relations
	User             *User             `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Brand            *Brand            `gorm:"foreignKey:BrandID;references:ID" json:"brand,omitempty"`
	ExclusivityRules []ExclusivityRule `gorm:"foreignKey:DealID" json:"exclusivity_rules,omitempty"`
	Deliverables     []Deliverable     `gorm:"foreignKey:DealID" json:"deliverables,omitempty"`
}

// TableName returns the table name for the model
func (Deal) TableName() string {
	return "deals"
}

// BeforeCreate is called before creating a new record
func (d *Deal) BeforeCreate(tx *gorm.DB) error {
	if d.UUID == uuid.Nil {
		d.UUID = uuid.New()
	}
	if d.Status == "" {
		d.Status = DealStatusDraft
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (d *Deal) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	d.UpdatedAt = &now
	return nil
}

// IsEditable checks if the deal (and its exclusivity rules) can be edited
func (d *Deal) IsEditable() bool {
	return d.Status == DealStatusDraft || d.Status == DealStatusActive
}

// DealFilter represents filter criteria for deals
type DealFilter struct {
	ID            *uint       `json:"id,omitempty"`
	UUID          *uuid.UUID  `json:"uuid,omitempty"`
	UserID        *uint       `json:"user_id,omitempty"`
	BrandID       *uint       `json:"brand_id,omitempty"`
	Status        *DealStatus `json:"status,omitempty"`
	Title         *string     `json:"title,omitempty"`
	CreatedAfter  *time.Time  `json:"created_after,omitempty"`
	CreatedBefore *time.Time  `json:"created_before,omitempty"`
}
