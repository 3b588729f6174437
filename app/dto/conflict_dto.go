// Package dto contains Data Transfer Objects for API request and response structures
package dto

import (
	"time"
)

// OverlapInfo mirrors the stored overlap facts of a conflict record
type OverlapInfo struct {
	Version                  int       `json:"version"`
	RuleID                   uint      `json:"rule_id"`
	RulePath                 string    `json:"rule_path"`
	CandidateCategory        string    `json:"candidate_category"`
	CategoryRelation         string    `json:"category_relation"`
	Platform                 string    `json:"platform"`
	WindowStart              time.Time `json:"window_start"`
	WindowEnd                time.Time `json:"window_end"`
	ScheduledAt              time.Time `json:"scheduled_at"`
	CorrelationID            *string   `json:"correlation_id,omitempty"`
	ProceededDespiteConflict bool      `json:"proceeded_despite_conflict"`
	DetectedAt               time.Time `json:"detected_at"`
}

// ConflictInfo represents a conflict record in responses
type ConflictInfo struct {
	UUID                 string      `json:"uuid"`
	Type                 string      `json:"type"`
	Severity             string      `json:"severity"`
	Status               string      `json:"status"`
	Overlap              OverlapInfo `json:"overlap"`
	SuggestedResolutions []string    `json:"suggested_resolutions"`
	AutoResolved         bool        `json:"auto_resolved"`
	DeliverableUUID      string      `json:"deliverable_uuid"`
	DealUUID             string      `json:"deal_uuid,omitempty"`
	DetectedAt           time.Time   `json:"detected_at"`
	AcknowledgedAt       *time.Time  `json:"acknowledged_at,omitempty"`
	ResolvedAt           *time.Time  `json:"resolved_at,omitempty"`
}

// ListConflictsRequest represents a paginated list request for a user's conflicts
type ListConflictsRequest struct {
	UserID uint   `json:"-"`
	Status string `json:"status"` // active, resolved, all
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
}

// ListConflictsResponse represents a paginated list of conflicts
type ListConflictsResponse struct {
	Message    string         `json:"message"`
	Items      []ConflictInfo `json:"items"`
	Pagination PaginationInfo `json:"pagination"`
}

// ResolveConflictRequest represents the request to acknowledge and resolve a conflict
type ResolveConflictRequest struct {
	UUID   string  `json:"-"`
	UserID uint    `json:"-"`
	Note   *string `json:"note,omitempty" validate:"omitempty,max=1000"`
}

// ResolveConflictResponse represents the response after resolving a conflict
type ResolveConflictResponse struct {
	Message    string    `json:"message"`
	UUID       string    `json:"uuid"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// ConflictSummaryResponse represents aggregate counts of a user's open conflicts
type ConflictSummaryResponse struct {
	Message     string           `json:"message"`
	Active      int64            `json:"active"`
	BySeverity  map[string]int64 `json:"by_severity"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// Common error codes for conflict operations
const (
	ErrorConflictNotFound      = "CONFLICT_NOT_FOUND"
	ErrorInvalidConflictStatus = "INVALID_CONFLICT_STATUS"
)
