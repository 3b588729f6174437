package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sponsorly/branddesk/utils"
	"gorm.io/gorm"
)

// ConflictType represents the kind of conflict a record describes.
// The exclusivity engine only produces exclusivity conflicts; the other
// types are produced elsewhere and share the same record shape.
type ConflictType string

const (
	ConflictTypeExclusivity    ConflictType = "exclusivity"
	ConflictTypeRevisionLimit  ConflictType = "revision_limit"
	ConflictTypeApprovalSLA    ConflictType = "approval_sla"
	ConflictTypePaymentDispute ConflictType = "payment_dispute"
)

// String returns the string representation of the type
func (t ConflictType) String() string {
	return string(t)
}

// Valid checks if the conflict type is valid
func (t ConflictType) Valid() bool {
	switch t {
	case ConflictTypeExclusivity, ConflictTypeRevisionLimit,
		ConflictTypeApprovalSLA, ConflictTypePaymentDispute:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for ConflictType
func (t *ConflictType) Scan(value any) error {
	if value == nil {
		*t = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*t = ConflictType(v)
	case []byte:
		*t = ConflictType(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ConflictType", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for ConflictType
func (t ConflictType) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid ConflictType: %s", t)
	}
	return string(t), nil
}

// ConflictSeverity represents how strongly a conflict gates the candidate
type ConflictSeverity string

const (
	ConflictSeverityWarn  ConflictSeverity = "warn"
	ConflictSeverityBlock ConflictSeverity = "block"
)

// String returns the string representation of the severity
func (s ConflictSeverity) String() string {
	return string(s)
}

// Valid checks if the severity is valid
func (s ConflictSeverity) Valid() bool {
	switch s {
	case ConflictSeverityWarn, ConflictSeverityBlock:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for ConflictSeverity
func (s *ConflictSeverity) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = ConflictSeverity(v)
	case []byte:
		*s = ConflictSeverity(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ConflictSeverity", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for ConflictSeverity
func (s ConflictSeverity) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid ConflictSeverity: %s", s)
	}
	return string(s), nil
}

// Category relationship kinds recorded in overlap facts
const (
	CategoryRelationExact      = "exact"
	CategoryRelationDescendant = "descendant"
)

// ConflictOverlapVersion is the current schema version of the overlap payload
const ConflictOverlapVersion = 1

// ConflictOverlap is the closed, versioned set of facts describing why a
// rule matched a candidate. Downstream consumers get compile-time
// guarantees instead of an open-ended map.
type ConflictOverlap struct {
	Version                  int        `json:"version"`
	RuleID                   uint       `json:"rule_id"`
	RulePath                 string     `json:"rule_path"`
	CandidateCategory        string     `json:"candidate_category"`
	CategoryRelation         string     `json:"category_relation"`
	Platform                 string     `json:"platform"`
	WindowStart              time.Time  `json:"window_start"`
	WindowEnd                time.Time  `json:"window_end"`
	ScheduledAt              time.Time  `json:"scheduled_at"`
	CorrelationID            *string    `json:"correlation_id,omitempty"`
	ProceededDespiteConflict bool       `json:"proceeded_despite_conflict"`
	DetectedAt               time.Time  `json:"detected_at"`
}

// Value implements the driver.Valuer interface for ConflictOverlap
func (o ConflictOverlap) Value() (driver.Value, error) {
	return json.Marshal(o)
}

// Scan implements the sql.Scanner interface for ConflictOverlap
func (o *ConflictOverlap) Scan(value any) error {
	if value == nil {
		*o = ConflictOverlap{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ConflictOverlap", value)
	}

	return json.Unmarshal(bytes, o)
}

// Conflict is a persisted record of one rule/candidate overlap. It is
// created only as a byproduct of a detection pass that found at least one
// overlap, and transitions active -> resolved exactly once; there is no
// reopen transition. Acknowledgement audit fields live on the record
// itself, not inside the overlap payload.
type Conflict struct {
	ID                  uint             `gorm:"primaryKey" json:"id"`
	UUID                uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:uk_conflicts_uuid" json:"uuid"`
	Type                ConflictType     `gorm:"type:varchar(32);not null;index:idx_conflicts_type" json:"type"`
	Severity            ConflictSeverity `gorm:"type:varchar(16);not null" json:"severity"`
	Overlap             ConflictOverlap  `gorm:"type:jsonb;not null" json:"overlap"`
	SuggestedResolutions pq.StringArray  `gorm:"type:text[];not null" json:"suggested_resolutions"`
	AutoResolved        bool             `gorm:"not null;default:false;index:idx_conflicts_auto_resolved" json:"auto_resolved"`
	ConflictingRuleID   *uint            `gorm:"index:idx_conflicts_rule_id" json:"conflicting_rule_id,omitempty"`
	DeliverableUUID     uuid.UUID        `gorm:"type:uuid;not null;index:idx_conflicts_deliverable_uuid" json:"deliverable_uuid"`
	DealID              uint             `gorm:"not null;index:idx_conflicts_deal_id" json:"deal_id"`
	AcknowledgedBy      *uint            `json:"acknowledged_by,omitempty"`
	AcknowledgedAt      *time.Time       `json:"acknowledged_at,omitempty"`
	ResolvedAt          *time.Time       `json:"resolved_at,omitempty"`
	DetectedAt          time.Time        `gorm:"not null" json:"detected_at"`
	CreatedAt           time.Time        `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_conflicts_created_at" json:"created_at"`
	UpdatedAt           *time.Time       `json:"updated_at,omitempty"`

	// Relations
	ConflictingRule *ExclusivityRule `gorm:"foreignKey:ConflictingRuleID;references:ID" json:"conflicting_rule,omitempty"`
	Deal            *Deal            `gorm:"foreignKey:DealID;references:ID" json:"deal,omitempty"`
}

// TableName returns the table name for the model
func (Conflict) TableName() string {
	return "conflicts"
}

// BeforeCreate is called before creating a new record
func (c *Conflict) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.DetectedAt.IsZero() {
		c.DetectedAt = utils.UTCNow()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (c *Conflict) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	c.UpdatedAt = &now
	return nil
}

// IsActive reports whether the conflict still awaits resolution
func (c *Conflict) IsActive() bool {
	return c.ResolvedAt == nil
}

// ConflictStatus is the query-surface status of a conflict record
type ConflictStatus string

const (
	ConflictStatusActive   ConflictStatus = "active"
	ConflictStatusResolved ConflictStatus = "resolved"
	ConflictStatusAll      ConflictStatus = "all"
)

// Valid checks if the status filter value is valid
func (s ConflictStatus) Valid() bool {
	switch s {
	case ConflictStatusActive, ConflictStatusResolved, ConflictStatusAll:
		return true
	default:
		return false
	}
}

// ConflictFilter represents filter criteria for conflicts
type ConflictFilter struct {
	ID                *uint             `json:"id,omitempty"`
	UUID              *uuid.UUID        `json:"uuid,omitempty"`
	Type              *ConflictType     `json:"type,omitempty"`
	Severity          *ConflictSeverity `json:"severity,omitempty"`
	AutoResolved      *bool             `json:"auto_resolved,omitempty"`
	Resolved          *bool             `json:"resolved,omitempty"`
	ConflictingRuleID *uint             `json:"conflicting_rule_id,omitempty"`
	DeliverableUUID   *uuid.UUID        `json:"deliverable_uuid,omitempty"`
	DealID            *uint             `json:"deal_id,omitempty"`
	OwnerUserID       *uint             `json:"owner_user_id,omitempty"`
	CreatedAfter      *time.Time        `json:"created_after,omitempty"`
	CreatedBefore     *time.Time        `json:"created_before,omitempty"`
}
