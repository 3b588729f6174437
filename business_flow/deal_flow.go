// Package businessflow contains the core business logic and use cases for deal management workflows
package businessflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sponsorly/branddesk/app/dto"
	"github.com/sponsorly/branddesk/models"
	"github.com/sponsorly/branddesk/repository"
	"github.com/sponsorly/branddesk/utils"
	"gorm.io/gorm"
)

// DealFlow handles deal-scoped operations, most importantly wholesale
// replacement of a deal's exclusivity rule set
type DealFlow interface {
	ReplaceExclusivityRules(ctx context.Context, request *dto.ReplaceExclusivityRulesRequest, metadata *ClientMetadata) (*dto.ReplaceExclusivityRulesResponse, error)
	ListExclusivityRules(ctx context.Context, dealUUID string, userID uint) ([]dto.ExclusivityRuleInfo, error)
}

// DealFlowImpl implements the deal business flow
type DealFlowImpl struct {
	dealRepo  repository.DealRepository
	ruleRepo  repository.ExclusivityRuleRepository
	auditRepo repository.AuditLogRepository
	db        *gorm.DB
}

// NewDealFlow creates a new deal flow instance
func NewDealFlow(
	dealRepo repository.DealRepository,
	ruleRepo repository.ExclusivityRuleRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) DealFlow {
	return &DealFlowImpl{
		dealRepo:  dealRepo,
		ruleRepo:  ruleRepo,
		auditRepo: auditRepo,
		db:        db,
	}
}

// ReplaceExclusivityRules swaps a deal's rule set in one transaction.
// Rules are never patched row by row: the incoming set fully replaces
// whatever the deal had before.
func (df *DealFlowImpl) ReplaceExclusivityRules(ctx context.Context, request *dto.ReplaceExclusivityRulesRequest, metadata *ClientMetadata) (*dto.ReplaceExclusivityRulesResponse, error) {
	deal, err := df.dealRepo.ByUUID(ctx, request.DealUUID)
	if err != nil {
		return nil, NewBusinessError("DEAL_LOOKUP_FAILED", "Failed to load deal", err)
	}
	if deal == nil || deal.UserID != request.UserID {
		return nil, NewBusinessError("DEAL_NOT_FOUND", "Deal not found", ErrDealNotFound)
	}
	if !deal.IsEditable() {
		return nil, NewBusinessError("DEAL_NOT_EDITABLE", "Deal is not editable in its current status", ErrDealNotEditable)
	}

	rules := make([]*models.ExclusivityRule, 0, len(request.Rules))
	for i, input := range request.Rules {
		rule, err := df.buildRule(deal.ID, input)
		if err != nil {
			return nil, NewBusinessError("INVALID_EXCLUSIVITY_RULE", fmt.Sprintf("Rule %d is invalid", i+1), err)
		}
		rules = append(rules, rule)
	}

	err = repository.WithTransaction(ctx, df.db, func(ctx context.Context) error {
		return df.ruleRepo.ReplaceForDeal(ctx, deal.ID, rules)
	})
	if err != nil {
		errMsg := fmt.Sprintf("Exclusivity rule replacement failed: %s", err.Error())
		_ = df.logDealAction(ctx, &request.UserID, models.AuditActionExclusivityRulesReplaced, errMsg, false, &errMsg, metadata)
		return nil, NewBusinessError("RULE_REPLACE_FAILED", "Failed to replace exclusivity rules", err)
	}

	msg := fmt.Sprintf("Replaced exclusivity rules for deal %s: %d rule(s)", deal.UUID, len(rules))
	_ = df.logDealAction(ctx, &request.UserID, models.AuditActionExclusivityRulesReplaced, msg, true, nil, metadata)

	infos := make([]dto.ExclusivityRuleInfo, 0, len(rules))
	for _, rule := range rules {
		infos = append(infos, ToExclusivityRuleInfo(*rule))
	}

	return &dto.ReplaceExclusivityRulesResponse{
		Message:  "Exclusivity rules replaced successfully",
		DealUUID: deal.UUID.String(),
		Rules:    infos,
	}, nil
}

// ListExclusivityRules returns the current rule set of one owned deal
func (df *DealFlowImpl) ListExclusivityRules(ctx context.Context, dealUUID string, userID uint) ([]dto.ExclusivityRuleInfo, error) {
	deal, err := df.dealRepo.ByUUID(ctx, dealUUID)
	if err != nil {
		return nil, NewBusinessError("DEAL_LOOKUP_FAILED", "Failed to load deal", err)
	}
	if deal == nil || deal.UserID != userID {
		return nil, NewBusinessError("DEAL_NOT_FOUND", "Deal not found", ErrDealNotFound)
	}

	rules, err := df.ruleRepo.ListByDeal(ctx, deal.ID)
	if err != nil {
		return nil, NewBusinessError("RULE_LIST_FAILED", "Failed to list exclusivity rules", err)
	}

	infos := make([]dto.ExclusivityRuleInfo, 0, len(rules))
	for _, rule := range rules {
		infos = append(infos, ToExclusivityRuleInfo(*rule))
	}
	return infos, nil
}

// Private helper methods

func (df *DealFlowImpl) buildRule(dealID uint, input dto.ExclusivityRuleInput) (*models.ExclusivityRule, error) {
	categoryPath := strings.TrimSpace(input.CategoryPath)
	if categoryPath == "" {
		return nil, ErrInvalidCategoryPath
	}

	scope := models.RuleScope(input.Scope)
	if !scope.Valid() {
		return nil, ErrInvalidRuleScope
	}

	start := input.StartDate.UTC().Truncate(24 * time.Hour)
	end := input.EndDate.UTC().Truncate(24 * time.Hour)
	// The window must span at least one full day; equal dates are rejected.
	if !end.After(start) {
		return nil, ErrInvalidRuleWindow
	}

	if len(input.Platforms) == 0 {
		return nil, ErrInvalidPlatform
	}
	for _, platform := range input.Platforms {
		if !models.ValidPlatform(platform) {
			return nil, ErrInvalidPlatform
		}
	}

	if len(input.Regions) == 0 {
		return nil, ErrInvalidRegion
	}
	for _, region := range input.Regions {
		if !models.ValidRegion(region) {
			return nil, ErrInvalidRegion
		}
	}

	return &models.ExclusivityRule{
		DealID:       dealID,
		CategoryPath: categoryPath,
		Scope:        scope,
		StartDate:    start,
		EndDate:      end,
		Platforms:    input.Platforms,
		Regions:      input.Regions,
		Notes:        input.Notes,
	}, nil
}

func (df *DealFlowImpl) logDealAction(ctx context.Context, userID *uint, action string, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errMsg,
	}

	requestID := ctx.Value(RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}

	return df.auditRepo.Save(ctx, audit)
}
