package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/sponsorly/branddesk/utils"
	"gorm.io/gorm"
)

// Brand represents a sponsoring brand a user has deals with
type Brand struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uk_brands_uuid" json:"uuid"`
	UserID    uint       `gorm:"not null;index:idx_brands_user_id" json:"user_id"`
	Name      string     `gorm:"size:255;not null" json:"name"`
	Website   *string    `gorm:"size:512" json:"website,omitempty"`
	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	// Relations
	User  *User  `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Deals []Deal `gorm:"foreignKey:BrandID" json:"deals,omitempty"`
}

// TableName returns the table name for the model
func (Brand) TableName() string {
	return "brands"
}

// BeforeCreate is called before creating a new record
func (b *Brand) BeforeCreate(tx *gorm.DB) error {
	if b.UUID == uuid.Nil {
		b.UUID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BrandFilter represents filter criteria for brands
type BrandFilter struct {
	ID     *uint      `json:"id,omitempty"`
	UUID   *uuid.UUID `json:"uuid,omitempty"`
	UserID *uint      `json:"user_id,omitempty"`
	Name   *string    `json:"name,omitempty"`
}
