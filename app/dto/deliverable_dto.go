// Package dto contains Data Transfer Objects for API request and response structures
package dto

import (
	"time"
)

// CreateDeliverableRequest represents the request to plan a new deliverable
// under a deal. Detection runs before the row is persisted.
type CreateDeliverableRequest struct {
	UserID               uint       `json:"-"`
	IdempotencyKey       string     `json:"-"`
	DealUUID             string     `json:"deal_uuid" validate:"required,uuid4"`
	Title                string     `json:"title" validate:"required,min=1,max=255"`
	Category             *string    `json:"category,omitempty" validate:"omitempty,max=512"`
	Platform             string     `json:"platform" validate:"required,oneof=instagram youtube tiktok"`
	Region               *string    `json:"region,omitempty" validate:"omitempty,oneof=us in global"`
	ScheduledAt          *time.Time `json:"scheduled_at,omitempty"`
	AcknowledgeConflicts bool       `json:"acknowledge_conflicts"`
}

// UpdateDeliverableRequest represents the request to reschedule or retarget
// an existing deliverable. Detection reruns against the updated candidate.
type UpdateDeliverableRequest struct {
	UUID                 string     `json:"-"`
	UserID               uint       `json:"-"`
	IdempotencyKey       string     `json:"-"`
	Title                *string    `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Category             *string    `json:"category,omitempty" validate:"omitempty,max=512"`
	Platform             *string    `json:"platform,omitempty" validate:"omitempty,oneof=instagram youtube tiktok"`
	Region               *string    `json:"region,omitempty" validate:"omitempty,oneof=us in global"`
	ScheduledAt          *time.Time `json:"scheduled_at,omitempty"`
	AcknowledgeConflicts bool       `json:"acknowledge_conflicts"`
}

// DeliverableInfo represents a deliverable in responses
type DeliverableInfo struct {
	UUID        string     `json:"uuid"`
	DealUUID    string     `json:"deal_uuid"`
	Title       string     `json:"title"`
	Category    *string    `json:"category,omitempty"`
	Platform    string     `json:"platform"`
	Region      *string    `json:"region,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

// DetectionOutcomeResponse represents the result of a detection pass: the
// conflicts it found and whether the candidate was persisted.
type DetectionOutcomeResponse struct {
	Message                  string           `json:"message"`
	Persisted                bool             `json:"persisted"`
	RequiresAcknowledgement  bool             `json:"requires_acknowledgement"`
	ProceededDespiteConflict bool             `json:"proceeded_despite_conflict"`
	Deliverable              *DeliverableInfo `json:"deliverable,omitempty"`
	Conflicts                []ConflictInfo   `json:"conflicts"`
}

// Common error codes for deliverable operations
const (
	ErrorDealNotFound        = "DEAL_NOT_FOUND"
	ErrorDeliverableNotFound = "DELIVERABLE_NOT_FOUND"
	ErrorDeliverableBlocked  = "DELIVERABLE_BLOCKED"
	ErrorIdempotencyReplay   = "IDEMPOTENT_REPLAY_IN_PROGRESS"
)
