// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/sponsorly/branddesk/app/dto"
	"github.com/sponsorly/branddesk/app/middleware"
	businessflow "github.com/sponsorly/branddesk/business_flow"
)

// DealHandlerInterface defines the contract for deal handlers
type DealHandlerInterface interface {
	ReplaceExclusivityRules(c fiber.Ctx) error
	ListExclusivityRules(c fiber.Ctx) error
}

// DealHandler handles deal-related HTTP requests
type DealHandler struct {
	dealFlow  businessflow.DealFlow
	validator *validator.Validate
}

func (h *DealHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *DealHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewDealHandler creates a new deal handler
func NewDealHandler(dealFlow businessflow.DealFlow) *DealHandler {
	return &DealHandler{
		dealFlow:  dealFlow,
		validator: validator.New(),
	}
}

// ReplaceExclusivityRules swaps a deal's exclusivity rule set wholesale
func (h *DealHandler) ReplaceExclusivityRules(c fiber.Ctx) error {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists || userID == 0 {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.ReplaceExclusivityRulesRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.DealUUID = c.Params("uuid")
	req.UserID = userID

	// Validate request
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.dealFlow.ReplaceExclusivityRules(h.createRequestContext(c, "/api/v1/deals/:uuid/exclusivity-rules"), &req, metadata)
	if err != nil {
		if businessflow.IsDealNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Deal not found", "DEAL_NOT_FOUND", nil)
		}
		if businessflow.IsDealNotEditable(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Deal is not editable in its current status", dto.ErrorDealNotEditable, nil)
		}
		if businessflow.IsInvalidRuleScope(err) || businessflow.IsInvalidPlatform(err) ||
			businessflow.IsInvalidRegion(err) || businessflow.IsInvalidCategoryPath(err) ||
			businessflow.IsInvalidRuleWindow(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), dto.ErrorInvalidRule, nil)
		}

		log.Println("Replace exclusivity rules failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to replace exclusivity rules", "RULE_REPLACE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// ListExclusivityRules returns the current rule set of one owned deal
func (h *DealHandler) ListExclusivityRules(c fiber.Ctx) error {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists || userID == 0 {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	rules, err := h.dealFlow.ListExclusivityRules(h.createRequestContext(c, "/api/v1/deals/:uuid/exclusivity-rules"), c.Params("uuid"), userID)
	if err != nil {
		if businessflow.IsDealNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Deal not found", "DEAL_NOT_FOUND", nil)
		}

		log.Println("List exclusivity rules failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list exclusivity rules", "RULE_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Exclusivity rules retrieved successfully", fiber.Map{
		"rules": rules,
	})
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *DealHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, businessflow.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "cancel_func", cancel)

	return ctx
}
