// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/sponsorly/branddesk/app/dto"
	"github.com/sponsorly/branddesk/app/middleware"
	businessflow "github.com/sponsorly/branddesk/business_flow"
)

// ConflictHandlerInterface defines the contract for conflict handlers
type ConflictHandlerInterface interface {
	ListConflicts(c fiber.Ctx) error
	ResolveConflict(c fiber.Ctx) error
	GetSummary(c fiber.Ctx) error
	ExportConflicts(c fiber.Ctx) error
}

// ConflictHandler handles conflict-related HTTP requests
type ConflictHandler struct {
	conflictFlow businessflow.ConflictFlow
	validator    *validator.Validate
}

func (h *ConflictHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ConflictHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewConflictHandler creates a new conflict handler
func NewConflictHandler(conflictFlow businessflow.ConflictFlow) *ConflictHandler {
	return &ConflictHandler{
		conflictFlow: conflictFlow,
		validator:    validator.New(),
	}
}

// ListConflicts returns the caller's conflicts filtered by lifecycle status
func (h *ConflictHandler) ListConflicts(c fiber.Ctx) error {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists || userID == 0 {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	req := dto.ListConflictsRequest{
		UserID: userID,
		Status: c.Query("status", "active"),
		Page:   page,
		Limit:  limit,
	}

	result, err := h.conflictFlow.ListConflicts(h.createRequestContext(c, "/api/v1/conflicts"), &req)
	if err != nil {
		if businessflow.IsInvalidConflictStatus(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid conflict status filter", dto.ErrorInvalidConflictStatus, nil)
		}
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination parameters", "INVALID_PAGINATION", nil)
		}

		log.Println("List conflicts failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list conflicts", "CONFLICT_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// ResolveConflict acknowledges and resolves one of the caller's conflicts
func (h *ConflictHandler) ResolveConflict(c fiber.Ctx) error {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists || userID == 0 {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.ResolveConflictRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
		}
	}
	req.UUID = c.Params("uuid")
	req.UserID = userID

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", collectValidationErrors(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.conflictFlow.ResolveConflict(h.createRequestContext(c, "/api/v1/conflicts/:uuid/resolve"), &req, metadata)
	if err != nil {
		if businessflow.IsConflictNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Conflict not found", dto.ErrorConflictNotFound, nil)
		}

		log.Println("Resolve conflict failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve conflict", "CONFLICT_RESOLVE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// GetSummary returns aggregate counts of the caller's open conflicts
func (h *ConflictHandler) GetSummary(c fiber.Ctx) error {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists || userID == 0 {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	result, err := h.conflictFlow.GetSummary(h.createRequestContext(c, "/api/v1/conflicts/summary"), userID)
	if err != nil {
		log.Println("Conflict summary failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to summarize conflicts", "CONFLICT_SUMMARY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// ExportConflicts streams the caller's conflicts as an xlsx workbook
func (h *ConflictHandler) ExportConflicts(c fiber.Ctx) error {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists || userID == 0 {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	payload, filename, err := h.conflictFlow.ExportConflicts(h.createRequestContext(c, "/api/v1/conflicts/export"), userID, c.Query("status", "all"))
	if err != nil {
		if businessflow.IsInvalidConflictStatus(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid conflict status filter", dto.ErrorInvalidConflictStatus, nil)
		}

		log.Println("Export conflicts failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export conflicts", "CONFLICT_EXPORT_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	return c.Status(fiber.StatusOK).Send(payload)
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *ConflictHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, businessflow.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "cancel_func", cancel)

	return ctx
}
