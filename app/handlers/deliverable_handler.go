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
	"github.com/sponsorly/branddesk/utils"
)

// DeliverableHandlerInterface defines the contract for deliverable handlers
type DeliverableHandlerInterface interface {
	CreateDeliverable(c fiber.Ctx) error
	UpdateDeliverable(c fiber.Ctx) error
}

// DeliverableHandler handles deliverable-related HTTP requests
type DeliverableHandler struct {
	conflictFlow businessflow.ConflictFlow
	validator    *validator.Validate
}

func (h *DeliverableHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *DeliverableHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewDeliverableHandler creates a new deliverable handler
func NewDeliverableHandler(conflictFlow businessflow.ConflictFlow) *DeliverableHandler {
	return &DeliverableHandler{
		conflictFlow: conflictFlow,
		validator:    validator.New(),
	}
}

// CreateDeliverable runs conflict detection for a new deliverable and
// persists it when nothing blocks. Detected conflicts come back with a
// 409 until the caller resubmits with acknowledgement.
func (h *DeliverableHandler) CreateDeliverable(c fiber.Ctx) error {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists || userID == 0 {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.CreateDeliverableRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UserID = userID
	req.IdempotencyKey = c.Get(utils.IdempotencyKeyHeader)

	// Validate request
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.conflictFlow.CreateDeliverable(h.createRequestContext(c, "/api/v1/deliverables"), &req, metadata)
	if err != nil {
		middleware.RecordDetectionRun(middleware.DetectionOutcomeFailed)
		return h.detectionErrorResponse(c, err, "Failed to create deliverable", "DELIVERABLE_CREATE_FAILED")
	}
	middleware.RecordDetectionRun(detectionOutcome(result))

	if result.RequiresAcknowledgement {
		return h.ErrorResponse(c, fiber.StatusConflict, result.Message, dto.ErrorDeliverableBlocked, result)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// UpdateDeliverable reruns conflict detection against the updated fields
// before any change becomes visible
func (h *DeliverableHandler) UpdateDeliverable(c fiber.Ctx) error {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists || userID == 0 {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.UpdateDeliverableRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UUID = c.Params("uuid")
	req.UserID = userID
	req.IdempotencyKey = c.Get(utils.IdempotencyKeyHeader)

	// Validate request
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.conflictFlow.UpdateDeliverable(h.createRequestContext(c, "/api/v1/deliverables/:uuid"), &req, metadata)
	if err != nil {
		middleware.RecordDetectionRun(middleware.DetectionOutcomeFailed)
		return h.detectionErrorResponse(c, err, "Failed to update deliverable", "DELIVERABLE_UPDATE_FAILED")
	}
	middleware.RecordDetectionRun(detectionOutcome(result))

	if result.RequiresAcknowledgement {
		return h.ErrorResponse(c, fiber.StatusConflict, result.Message, dto.ErrorDeliverableBlocked, result)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// Private helper methods

func detectionOutcome(result *dto.DetectionOutcomeResponse) string {
	switch {
	case result.RequiresAcknowledgement:
		return middleware.DetectionOutcomeBlocked
	case result.ProceededDespiteConflict:
		return middleware.DetectionOutcomeAcknowledged
	default:
		return middleware.DetectionOutcomeClean
	}
}

func (h *DeliverableHandler) detectionErrorResponse(c fiber.Ctx, err error, message, code string) error {
	if businessflow.IsDealNotFound(err) {
		return h.ErrorResponse(c, fiber.StatusNotFound, "Deal not found", dto.ErrorDealNotFound, nil)
	}
	if businessflow.IsDeliverableNotFound(err) {
		return h.ErrorResponse(c, fiber.StatusNotFound, "Deliverable not found", dto.ErrorDeliverableNotFound, nil)
	}
	if businessflow.IsIdempotencyInProgress(err) {
		return h.ErrorResponse(c, fiber.StatusConflict, "An identical request is still in progress", dto.ErrorIdempotencyReplay, nil)
	}
	if businessflow.IsRuleFetchFailed(err) {
		return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Conflict detection is temporarily unavailable", "DETECTION_UNAVAILABLE", nil)
	}

	log.Println(message, err)
	return h.ErrorResponse(c, fiber.StatusInternalServerError, message, code, nil)
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *DeliverableHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, businessflow.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "cancel_func", cancel)

	return ctx
}
