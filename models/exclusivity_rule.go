package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sponsorly/branddesk/utils"
	"gorm.io/gorm"
)

// Platform values a rule or deliverable can target
const (
	PlatformInstagram = "instagram"
	PlatformYouTube   = "youtube"
	PlatformTikTok    = "tiktok"
)

// Region values a rule or deliverable can target
const (
	RegionUS     = "us"
	RegionIN     = "in"
	RegionGlobal = "global"
)

// ValidPlatform checks platform membership in the supported set
func ValidPlatform(p string) bool {
	switch p {
	case PlatformInstagram, PlatformYouTube, PlatformTikTok:
		return true
	default:
		return false
	}
}

// ValidRegion checks region membership in the supported set
func ValidRegion(r string) bool {
	switch r {
	case RegionUS, RegionIN, RegionGlobal:
		return true
	default:
		return false
	}
}

// RuleScope represents how widely a rule's category path applies
type RuleScope string

const (
	// RuleScopeExactCategory matches only the literal category path
	RuleScopeExactCategory RuleScope = "exact_category"
	// RuleScopeParentCategory matches the path and every descendant beneath it
	RuleScopeParentCategory RuleScope = "parent_category"
)

// String returns the string representation of the scope
func (s RuleScope) String() string {
	return string(s)
}

// Valid checks if the scope is valid
func (s RuleScope) Valid() bool {
	switch s {
	case RuleScopeExactCategory, RuleScopeParentCategory:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for RuleScope
func (s *RuleScope) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = RuleScope(v)
	case []byte:
		*s = RuleScope(string(v))
	default:
		return fmt.Errorf("cannot scan %T into RuleScope", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for RuleScope
func (s RuleScope) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid RuleScope: %s", s)
	}
	return string(s), nil
}

// ExclusivityRule is a time-bounded, platform/region-scoped restriction
// attached to one deal forbidding competing content in a category.
// Rules are immutable once matched against: deal edits replace a deal's
// rule set wholesale, they never patch individual rows.
type ExclusivityRule struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	DealID       uint           `gorm:"not null;index:idx_exclusivity_rules_deal_id" json:"deal_id"`
	CategoryPath string         `gorm:"size:512;not null;index:idx_exclusivity_rules_category_path" json:"category_path"`
	Scope        RuleScope      `gorm:"type:varchar(32);not null" json:"scope"`
	StartDate    time.Time      `gorm:"type:date;not null" json:"start_date"`
	EndDate      time.Time      `gorm:"type:date;not null;index:idx_exclusivity_rules_end_date" json:"end_date"`
	Platforms    pq.StringArray `gorm:"type:text[];not null" json:"platforms"`
	Regions      pq.StringArray `gorm:"type:text[];not null" json:"regions"`
	Notes        *string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt    time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`

	// Relations
	Deal *Deal `gorm:"foreignKey:DealID;references:ID" json:"deal,omitempty"`
}

// TableName returns the table name for the model
func (ExclusivityRule) TableName() string {
	return "exclusivity_rules"
}

// BeforeCreate is called before creating a new record
func (r *ExclusivityRule) BeforeCreate(tx *gorm.DB) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = utils.UTCNow()
	}
	return nil
}

// CoversPlatform reports whether the rule restricts the given platform
func (r *ExclusivityRule) CoversPlatform(platform string) bool {
	for _, p := range r.Platforms {
		if p == platform {
			return true
		}
	}
	return false
}

// CoversRegion reports whether the rule restricts the given region.
// A rule carrying the global region covers everything, and a global
// candidate intersects any rule region.
func (r *ExclusivityRule) CoversRegion(region string) bool {
	if region == RegionGlobal {
		return len(r.Regions) > 0
	}
	for _, reg := range r.Regions {
		if reg == region || reg == RegionGlobal {
			return true
		}
	}
	return false
}

// ContainsDate reports whether t falls within [StartDate, EndDate],
// inclusive of both bounds. Comparison is at day granularity in UTC.
func (r *ExclusivityRule) ContainsDate(t time.Time) bool {
	day := t.UTC().Truncate(24 * time.Hour)
	start := r.StartDate.UTC().Truncate(24 * time.Hour)
	end := r.EndDate.UTC().Truncate(24 * time.Hour)
	return !day.Before(start) && !day.After(end)
}

// ExclusivityRuleFilter represents filter criteria for exclusivity rules
type ExclusivityRuleFilter struct {
	ID              *uint      `json:"id,omitempty"`
	DealID          *uint      `json:"deal_id,omitempty"`
	ExcludingDealID *uint      `json:"excluding_deal_id,omitempty"`
	UserID          *uint      `json:"user_id,omitempty"`
	CategoryPath    *string    `json:"category_path,omitempty"`
	Scope           *RuleScope `json:"scope,omitempty"`
	ActiveOn        *time.Time `json:"active_on,omitempty"`
}
