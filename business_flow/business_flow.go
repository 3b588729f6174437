// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/sponsorly/branddesk/app/dto"
	"github.com/sponsorly/branddesk/models"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for audit logging and session tracking
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	SessionID  string            `json:"session_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// SetSessionID sets the session ID
func (cm *ClientMetadata) SetSessionID(sessionID string) {
	cm.SessionID = sessionID
}

// ToUserInfo converts a user model to UserInfo for authentication responses
func ToUserInfo(user models.User) dto.UserInfo {
	return dto.UserInfo{
		ID:          user.ID,
		UUID:        user.UUID.String(),
		Email:       user.Email,
		DisplayName: user.DisplayName,
		IsActive:    user.IsActive,
		CreatedAt:   user.CreatedAt.Format(time.RFC3339),
	}
}

// ToDeliverableInfo converts a deliverable model to its response shape
func ToDeliverableInfo(deliverable models.Deliverable, dealUUID string) dto.DeliverableInfo {
	return dto.DeliverableInfo{
		UUID:        deliverable.UUID.String(),
		DealUUID:    dealUUID,
		Title:       deliverable.Title,
		Category:    deliverable.Category,
		Platform:    deliverable.Platform,
		Region:      deliverable.Region,
		ScheduledAt: deliverable.ScheduledAt,
		Status:      deliverable.Status.String(),
		CreatedAt:   deliverable.CreatedAt,
	}
}

// ToOverlapInfo converts stored overlap facts to their response shape
func ToOverlapInfo(overlap models.ConflictOverlap) dto.OverlapInfo {
	return dto.OverlapInfo{
		Version:                  overlap.Version,
		RuleID:                   overlap.RuleID,
		RulePath:                 overlap.RulePath,
		CandidateCategory:        overlap.CandidateCategory,
		CategoryRelation:         overlap.CategoryRelation,
		Platform:                 overlap.Platform,
		WindowStart:              overlap.WindowStart,
		WindowEnd:                overlap.WindowEnd,
		ScheduledAt:              overlap.ScheduledAt,
		CorrelationID:            overlap.CorrelationID,
		ProceededDespiteConflict: overlap.ProceededDespiteConflict,
		DetectedAt:               overlap.DetectedAt,
	}
}

// ToConflictInfo converts a conflict model to its response shape
func ToConflictInfo(conflict models.Conflict) dto.ConflictInfo {
	status := string(models.ConflictStatusActive)
	if !conflict.IsActive() {
		status = string(models.ConflictStatusResolved)
	}

	dealUUID := ""
	if conflict.Deal != nil {
		dealUUID = conflict.Deal.UUID.String()
	}

	return dto.ConflictInfo{
		UUID:                 conflict.UUID.String(),
		Type:                 conflict.Type.String(),
		Severity:             conflict.Severity.String(),
		Status:               status,
		Overlap:              ToOverlapInfo(conflict.Overlap),
		SuggestedResolutions: conflict.SuggestedResolutions,
		AutoResolved:         conflict.AutoResolved,
		DeliverableUUID:      conflict.DeliverableUUID.String(),
		DealUUID:             dealUUID,
		DetectedAt:           conflict.DetectedAt,
		AcknowledgedAt:       conflict.AcknowledgedAt,
		ResolvedAt:           conflict.ResolvedAt,
	}
}

// ToExclusivityRuleInfo converts a rule model to its response shape
func ToExclusivityRuleInfo(rule models.ExclusivityRule) dto.ExclusivityRuleInfo {
	return dto.ExclusivityRuleInfo{
		ID:           rule.ID,
		CategoryPath: rule.CategoryPath,
		Scope:        rule.Scope.String(),
		StartDate:    rule.StartDate,
		EndDate:      rule.EndDate,
		Platforms:    rule.Platforms,
		Regions:      rule.Regions,
		Notes:        rule.Notes,
	}
}
