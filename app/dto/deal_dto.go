// Package dto contains Data Transfer Objects for API request and response structures
package dto

import (
	"time"
)

// ExclusivityRuleInput represents one rule in a replace-rules request
type ExclusivityRuleInput struct {
	CategoryPath string    `json:"category_path" validate:"required,min=1,max=512"`
	Scope        string    `json:"scope" validate:"required,oneof=exact_category parent_category"`
	StartDate    time.Time `json:"start_date" validate:"required"`
	EndDate      time.Time `json:"end_date" validate:"required"`
	Platforms    []string  `json:"platforms" validate:"required,min=1,dive,oneof=instagram youtube tiktok"`
	Regions      []string  `json:"regions" validate:"required,min=1,dive,oneof=us in global"`
	Notes        *string   `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// ReplaceExclusivityRulesRequest swaps a deal's rule set wholesale
type ReplaceExclusivityRulesRequest struct {
	DealUUID string                 `json:"-"`
	UserID   uint                   `json:"-"`
	Rules    []ExclusivityRuleInput `json:"rules" validate:"required,dive"`
}

// ExclusivityRuleInfo represents a rule in responses
type ExclusivityRuleInfo struct {
	ID           uint      `json:"id"`
	CategoryPath string    `json:"category_path"`
	Scope        string    `json:"scope"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Platforms    []string  `json:"platforms"`
	Regions      []string  `json:"regions"`
	Notes        *string   `json:"notes,omitempty"`
}

// ReplaceExclusivityRulesResponse represents the response after replacing rules
type ReplaceExclusivityRulesResponse struct {
	Message  string                `json:"message"`
	DealUUID string                `json:"deal_uuid"`
	Rules    []ExclusivityRuleInfo `json:"rules"`
}

// Common error codes for deal operations
const (
	ErrorDealNotEditable = "DEAL_NOT_EDITABLE"
	ErrorInvalidRule     = "INVALID_EXCLUSIVITY_RULE"
)
