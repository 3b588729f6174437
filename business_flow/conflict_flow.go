// Package businessflow contains the core business logic and use cases for conflict detection workflows
package businessflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sponsorly/branddesk/app/dto"
	"github.com/sponsorly/branddesk/app/services"
	"github.com/sponsorly/branddesk/models"
	"github.com/sponsorly/branddesk/repository"
	"github.com/sponsorly/branddesk/utils"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Idempotency operation names for guarded mutations
const (
	OperationDeliverableCreate = "deliverable_create"
	OperationDeliverableUpdate = "deliverable_update"
)

// ConflictFlow orchestrates exclusivity conflict detection and the
// resolution lifecycle: detect, block or proceed, persist, acknowledge,
// resolve.
type ConflictFlow interface {
	CreateDeliverable(ctx context.Context, request *dto.CreateDeliverableRequest, metadata *ClientMetadata) (*dto.DetectionOutcomeResponse, error)
	UpdateDeliverable(ctx context.Context, request *dto.UpdateDeliverableRequest, metadata *ClientMetadata) (*dto.DetectionOutcomeResponse, error)
	ListConflicts(ctx context.Context, request *dto.ListConflictsRequest) (*dto.ListConflictsResponse, error)
	ResolveConflict(ctx context.Context, request *dto.ResolveConflictRequest, metadata *ClientMetadata) (*dto.ResolveConflictResponse, error)
	GetSummary(ctx context.Context, userID uint) (*dto.ConflictSummaryResponse, error)
	ExportConflicts(ctx context.Context, userID uint, status string) ([]byte, string, error)
}

// ConflictFlowImpl implements the conflict detection business flow
type ConflictFlowImpl struct {
	dealRepo        repository.DealRepository
	ruleRepo        repository.ExclusivityRuleRepository
	deliverableRepo repository.DeliverableRepository
	conflictRepo    repository.ConflictRepository
	auditRepo       repository.AuditLogRepository
	guard           services.IdempotencyGuard
	cache           *redis.Client
	db              *gorm.DB
}

// NewConflictFlow creates a new conflict flow instance
func NewConflictFlow(
	dealRepo repository.DealRepository,
	ruleRepo repository.ExclusivityRuleRepository,
	deliverableRepo repository.DeliverableRepository,
	conflictRepo repository.ConflictRepository,
	auditRepo repository.AuditLogRepository,
	guard services.IdempotencyGuard,
	cache *redis.Client,
	db *gorm.DB,
) ConflictFlow {
	return &ConflictFlowImpl{
		dealRepo:        dealRepo,
		ruleRepo:        ruleRepo,
		deliverableRepo: deliverableRepo,
		conflictRepo:    conflictRepo,
		auditRepo:       auditRepo,
		guard:           guard,
		cache:           cache,
		db:              db,
	}
}

// CreateDeliverable runs detection for a new candidate and persists it
// when nothing blocks. Retries with the same idempotency key replay the
// original outcome without re-inserting rows.
func (cf *ConflictFlowImpl) CreateDeliverable(ctx context.Context, request *dto.CreateDeliverableRequest, metadata *ClientMetadata) (*dto.DetectionOutcomeResponse, error) {
	payload, _, err := cf.guard.Execute(ctx, request.UserID, OperationDeliverableCreate, request.IdempotencyKey, func(ctx context.Context) (any, error) {
		return cf.createDeliverable(ctx, request, metadata)
	})
	if err != nil {
		if errors.Is(err, services.ErrReplayInProgress) {
			return nil, NewBusinessError("IDEMPOTENT_REPLAY_IN_PROGRESS", "An identical request is still in progress", ErrIdempotencyInProgress)
		}
		return nil, err
	}

	var response dto.DetectionOutcomeResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return nil, NewBusinessError("DETECTION_DECODE_FAILED", "Failed to decode detection outcome", err)
	}
	return &response, nil
}

func (cf *ConflictFlowImpl) createDeliverable(ctx context.Context, request *dto.CreateDeliverableRequest, metadata *ClientMetadata) (*dto.DetectionOutcomeResponse, error) {
	deal, err := cf.loadOwnedDeal(ctx, request.DealUUID, request.UserID)
	if err != nil {
		return nil, err
	}

	candidate := &CandidateAsset{
		UUID:        uuid.New(),
		DealID:      deal.ID,
		Title:       request.Title,
		Category:    request.Category,
		Platform:    request.Platform,
		Region:      request.Region,
		ScheduledAt: request.ScheduledAt,
	}

	response, err := cf.runDetection(ctx, deal, candidate, nil, request.AcknowledgeConflicts, request.UserID, metadata)
	if err != nil {
		errMsg := fmt.Sprintf("Conflict detection failed: %s", err.Error())
		_ = cf.logConflictAction(ctx, &request.UserID, models.AuditActionConflictDetectionFailed, errMsg, false, &errMsg, metadata)
		return nil, NewBusinessError("DETECTION_FAILED", "Conflict detection failed", err)
	}

	cf.auditDetectionOutcome(ctx, request.UserID, candidate, response, metadata)
	return response, nil
}

// UpdateDeliverable reruns detection against the updated candidate before
// any change becomes visible. The candidate keeps the deliverable's UUID
// so conflict history stays attached to one asset.
func (cf *ConflictFlowImpl) UpdateDeliverable(ctx context.Context, request *dto.UpdateDeliverableRequest, metadata *ClientMetadata) (*dto.DetectionOutcomeResponse, error) {
	payload, _, err := cf.guard.Execute(ctx, request.UserID, OperationDeliverableUpdate, request.IdempotencyKey, func(ctx context.Context) (any, error) {
		return cf.updateDeliverable(ctx, request, metadata)
	})
	if err != nil {
		if errors.Is(err, services.ErrReplayInProgress) {
			return nil, NewBusinessError("IDEMPOTENT_REPLAY_IN_PROGRESS", "An identical request is still in progress", ErrIdempotencyInProgress)
		}
		return nil, err
	}

	var response dto.DetectionOutcomeResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return nil, NewBusinessError("DETECTION_DECODE_FAILED", "Failed to decode detection outcome", err)
	}
	return &response, nil
}

func (cf *ConflictFlowImpl) updateDeliverable(ctx context.Context, request *dto.UpdateDeliverableRequest, metadata *ClientMetadata) (*dto.DetectionOutcomeResponse, error) {
	deliverable, err := cf.deliverableRepo.ByUUID(ctx, request.UUID)
	if err != nil {
		return nil, err
	}
	if deliverable == nil {
		return nil, NewBusinessError("DELIVERABLE_NOT_FOUND", "Deliverable not found", ErrDeliverableNotFound)
	}

	deal, err := cf.dealRepo.ByID(ctx, deliverable.DealID)
	if err != nil {
		return nil, err
	}
	if deal == nil || deal.UserID != request.UserID {
		return nil, NewBusinessError("DELIVERABLE_NOT_FOUND", "Deliverable not found", ErrDeliverableNotFound)
	}

	patched := *deliverable
	if request.Title != nil {
		patched.Title = *request.Title
	}
	if request.Category != nil {
		patched.Category = request.Category
	}
	if request.Platform != nil {
		patched.Platform = *request.Platform
	}
	if request.Region != nil {
		patched.Region = request.Region
	}
	if request.ScheduledAt != nil {
		patched.ScheduledAt = request.ScheduledAt
	}

	candidate := &CandidateAsset{
		UUID:        deliverable.UUID,
		DealID:      deal.ID,
		Title:       patched.Title,
		Category:    patched.Category,
		Platform:    patched.Platform,
		Region:      patched.Region,
		ScheduledAt: patched.ScheduledAt,
	}

	response, err := cf.runDetection(ctx, deal, candidate, &patched, request.AcknowledgeConflicts, request.UserID, metadata)
	if err != nil {
		errMsg := fmt.Sprintf("Conflict detection failed: %s", err.Error())
		_ = cf.logConflictAction(ctx, &request.UserID, models.AuditActionConflictDetectionFailed, errMsg, false, &errMsg, metadata)
		return nil, NewBusinessError("DETECTION_FAILED", "Conflict detection failed", err)
	}

	cf.auditDetectionOutcome(ctx, request.UserID, candidate, response, metadata)
	return response, nil
}

// runDetection executes the detect -> block-or-proceed -> persist sequence
// inside one transaction. Rule reads and candidate/conflict writes share
// the transaction so concurrent sibling requests cannot slip a rule set in
// between detection and persistence.
//
// existing is nil for a create; for an update it carries the patched row
// to persist instead of inserting a new one.
func (cf *ConflictFlowImpl) runDetection(ctx context.Context, deal *models.Deal, candidate *CandidateAsset, existing *models.Deliverable, acknowledge bool, userID uint, metadata *ClientMetadata) (*dto.DetectionOutcomeResponse, error) {
	var correlationID *string
	if metadata != nil && metadata.RequestID != "" {
		correlationID = &metadata.RequestID
	}

	return cf.WithDetectionTransaction(ctx, func(ctx context.Context) (*dto.DetectionOutcomeResponse, error) {
		rules, err := cf.ruleRepo.ListForUser(ctx, userID, deal.ID)
		if err != nil {
			// Deliverables are never created blind: a failed rule fetch
			// fails the whole operation.
			return nil, fmt.Errorf("%w: %v", ErrRuleFetchFailed, err)
		}

		overlaps := EvaluateRules(rules, candidate)

		var acknowledgedBy *uint
		if acknowledge {
			acknowledgedBy = &userID
		}
		conflicts := Classify(candidate, overlaps, correlationID, acknowledgedBy)

		conflictInfos := make([]dto.ConflictInfo, 0, len(conflicts))

		if len(conflicts) == 0 {
			deliverable, err := cf.persistCandidate(ctx, candidate, existing)
			if err != nil {
				return nil, err
			}
			info := ToDeliverableInfo(*deliverable, deal.UUID.String())
			return &dto.DetectionOutcomeResponse{
				Message:     "No conflicts detected",
				Persisted:   true,
				Deliverable: &info,
				Conflicts:   conflictInfos,
			}, nil
		}

		if err := cf.conflictRepo.SaveBatch(ctx, conflicts); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConflictPersistFailed, err)
		}
		for _, conflict := range conflicts {
			conflictInfos = append(conflictInfos, ToConflictInfo(*conflict))
		}

		if !acknowledge {
			// Conflict history exists even for a request the caller will
			// not finalize; the candidate itself is not persisted.
			return &dto.DetectionOutcomeResponse{
				Message:                 "Conflicts detected; resubmit with acknowledgement to proceed",
				Persisted:               false,
				RequiresAcknowledgement: true,
				Conflicts:               conflictInfos,
			}, nil
		}

		deliverable, err := cf.persistCandidate(ctx, candidate, existing)
		if err != nil {
			return nil, err
		}
		info := ToDeliverableInfo(*deliverable, deal.UUID.String())
		return &dto.DetectionOutcomeResponse{
			Message:                  "Conflicts acknowledged; deliverable persisted",
			Persisted:                true,
			ProceededDespiteConflict: true,
			Deliverable:              &info,
			Conflicts:                conflictInfos,
		}, nil
	})
}

func (cf *ConflictFlowImpl) persistCandidate(ctx context.Context, candidate *CandidateAsset, existing *models.Deliverable) (*models.Deliverable, error) {
	if existing != nil {
		if err := cf.deliverableRepo.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	deliverable := &models.Deliverable{
		UUID:        candidate.UUID,
		DealID:      candidate.DealID,
		Title:       candidate.Title,
		Category:    candidate.Category,
		Platform:    candidate.Platform,
		Region:      candidate.Region,
		ScheduledAt: candidate.ScheduledAt,
		Status:      models.DeliverableStatusPlanned,
	}
	if err := cf.deliverableRepo.Save(ctx, deliverable); err != nil {
		return nil, err
	}
	return deliverable, nil
}

// ListConflicts returns the caller's conflicts filtered by lifecycle status
func (cf *ConflictFlowImpl) ListConflicts(ctx context.Context, request *dto.ListConflictsRequest) (*dto.ListConflictsResponse, error) {
	status := models.ConflictStatus(request.Status)
	if request.Status == "" {
		status = models.ConflictStatusActive
	}
	if !status.Valid() {
		return nil, NewBusinessError("INVALID_CONFLICT_STATUS", "Conflict status must be active, resolved, or all", ErrInvalidConflictStatus)
	}

	page := request.Page
	if page == 0 {
		page = 1
	}
	if page < 1 {
		return nil, NewBusinessError("INVALID_PAGE", "Page must be at least 1", ErrInvalidPage)
	}
	limit := request.Limit
	if limit == 0 {
		limit = 20
	}
	if limit < 1 || limit > 100 {
		return nil, NewBusinessError("INVALID_PAGE_SIZE", "Page size must be between 1 and 100", ErrInvalidPageSize)
	}

	filter := models.ConflictFilter{OwnerUserID: &request.UserID}
	switch status {
	case models.ConflictStatusActive:
		filter.Resolved = utils.ToPtr(false)
	case models.ConflictStatusResolved:
		filter.Resolved = utils.ToPtr(true)
	}

	total, err := cf.conflictRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("CONFLICT_LIST_FAILED", "Failed to list conflicts", err)
	}

	conflicts, err := cf.conflictRepo.ByFilter(ctx, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, NewBusinessError("CONFLICT_LIST_FAILED", "Failed to list conflicts", err)
	}

	items := make([]dto.ConflictInfo, 0, len(conflicts))
	for _, conflict := range conflicts {
		items = append(items, ToConflictInfo(*conflict))
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &dto.ListConflictsResponse{
		Message: "Conflicts retrieved successfully",
		Items:   items,
		Pagination: dto.PaginationInfo{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: totalPages,
		},
	}, nil
}

// ResolveConflict acknowledges and resolves an active conflict. Conflicts
// the caller does not own surface as NotFound; existence is never leaked.
// Resolving an already-resolved conflict returns the same resolved state.
func (cf *ConflictFlowImpl) ResolveConflict(ctx context.Context, request *dto.ResolveConflictRequest, metadata *ClientMetadata) (*dto.ResolveConflictResponse, error) {
	conflictUUID, err := utils.ParseUUID(request.UUID)
	if err != nil {
		return nil, NewBusinessError("CONFLICT_NOT_FOUND", "Conflict not found", ErrConflictNotFound)
	}

	conflict, err := cf.conflictRepo.ByUUID(ctx, conflictUUID)
	if err != nil {
		return nil, NewBusinessError("CONFLICT_RESOLVE_FAILED", "Failed to resolve conflict", err)
	}
	if conflict == nil || conflict.Deal == nil || conflict.Deal.UserID != request.UserID {
		return nil, NewBusinessError("CONFLICT_NOT_FOUND", "Conflict not found", ErrConflictNotFound)
	}

	if conflict.ResolvedAt != nil {
		return &dto.ResolveConflictResponse{
			Message:    "Conflict already resolved",
			UUID:       conflict.UUID.String(),
			ResolvedAt: *conflict.ResolvedAt,
		}, nil
	}

	resolvedAt := utils.UTCNow()
	err = repository.WithTransaction(ctx, cf.db, func(ctx context.Context) error {
		return cf.conflictRepo.MarkResolved(ctx, conflict.ID, request.UserID, resolvedAt)
	})
	if err != nil {
		errMsg := fmt.Sprintf("Conflict resolution failed: %s", err.Error())
		_ = cf.logConflictAction(ctx, &request.UserID, models.AuditActionConflictResolved, errMsg, false, &errMsg, metadata)
		return nil, NewBusinessError("CONFLICT_RESOLVE_FAILED", "Failed to resolve conflict", err)
	}

	cf.invalidateSummary(ctx, request.UserID)

	msg := fmt.Sprintf("Conflict resolved: %s", conflict.UUID)
	_ = cf.logConflictAction(ctx, &request.UserID, models.AuditActionConflictResolved, msg, true, nil, metadata)

	return &dto.ResolveConflictResponse{
		Message:    "Conflict resolved successfully",
		UUID:       conflict.UUID.String(),
		ResolvedAt: resolvedAt,
	}, nil
}

// GetSummary returns aggregate counts of the caller's open conflicts,
// served from cache when fresh
func (cf *ConflictFlowImpl) GetSummary(ctx context.Context, userID uint) (*dto.ConflictSummaryResponse, error) {
	cacheKey := fmt.Sprintf("%s:%d", utils.ConflictSummaryCacheKey, userID)

	if cf.cache != nil {
		if cached, err := cf.cache.Get(ctx, cacheKey).Bytes(); err == nil && len(cached) > 0 {
			var response dto.ConflictSummaryResponse
			if err := json.Unmarshal(cached, &response); err == nil {
				return &response, nil
			}
		}
	}

	active, err := cf.conflictRepo.CountActive(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("CONFLICT_SUMMARY_FAILED", "Failed to summarize conflicts", err)
	}

	bySeverity, err := cf.conflictRepo.CountBySeverity(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("CONFLICT_SUMMARY_FAILED", "Failed to summarize conflicts", err)
	}

	severities := make(map[string]int64, len(bySeverity))
	for severity, count := range bySeverity {
		severities[severity.String()] = count
	}

	response := &dto.ConflictSummaryResponse{
		Message:     "Conflict summary retrieved successfully",
		Active:      active,
		BySeverity:  severities,
		GeneratedAt: utils.UTCNow(),
	}

	if cf.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			_ = cf.cache.Set(ctx, cacheKey, payload, utils.ConflictSummaryCacheTTL).Err()
		}
	}

	return response, nil
}

// ExportConflicts renders the caller's conflicts as an xlsx workbook
func (cf *ConflictFlowImpl) ExportConflicts(ctx context.Context, userID uint, status string) ([]byte, string, error) {
	listStatus := status
	if listStatus == "" {
		listStatus = string(models.ConflictStatusAll)
	}

	var items []dto.ConflictInfo
	for page := 1; ; page++ {
		list, err := cf.ListConflicts(ctx, &dto.ListConflictsRequest{
			UserID: userID,
			Status: listStatus,
			Page:   page,
			Limit:  100,
		})
		if err != nil {
			return nil, "", err
		}
		items = append(items, list.Items...)
		if page >= list.Pagination.TotalPages {
			break
		}
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Conflicts"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{
		"UUID", "Type", "Severity", "Status", "Rule Path", "Candidate Category",
		"Relation", "Platform", "Window Start", "Window End", "Scheduled At",
		"Detected At", "Resolved At",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, header)
	}

	for row, item := range items {
		resolvedAt := ""
		if item.ResolvedAt != nil {
			resolvedAt = item.ResolvedAt.Format("2006-01-02 15:04:05")
		}
		values := []any{
			item.UUID, item.Type, item.Severity, item.Status,
			item.Overlap.RulePath, item.Overlap.CandidateCategory,
			item.Overlap.CategoryRelation, item.Overlap.Platform,
			item.Overlap.WindowStart.Format("2006-01-02"),
			item.Overlap.WindowEnd.Format("2006-01-02"),
			item.Overlap.ScheduledAt.Format("2006-01-02"),
			item.DetectedAt.Format("2006-01-02 15:04:05"),
			resolvedAt,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", NewBusinessError("CONFLICT_EXPORT_FAILED", "Failed to export conflicts", err)
	}

	filename := fmt.Sprintf("conflicts_%s.xlsx", utils.UTCNow().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// Private helper methods

func (cf *ConflictFlowImpl) loadOwnedDeal(ctx context.Context, dealUUID string, userID uint) (*models.Deal, error) {
	deal, err := cf.dealRepo.ByUUID(ctx, dealUUID)
	if err != nil {
		return nil, NewBusinessError("DEAL_LOOKUP_FAILED", "Failed to load deal", err)
	}
	// A deal owned by someone else surfaces as NotFound so existence is
	// never leaked across accounts.
	if deal == nil || deal.UserID != userID {
		return nil, NewBusinessError("DEAL_NOT_FOUND", "Deal not found", ErrDealNotFound)
	}
	return deal, nil
}

func (cf *ConflictFlowImpl) auditDetectionOutcome(ctx context.Context, userID uint, candidate *CandidateAsset, response *dto.DetectionOutcomeResponse, metadata *ClientMetadata) {
	switch {
	case response.RequiresAcknowledgement:
		msg := fmt.Sprintf("Deliverable %s blocked pending acknowledgement: %d conflict(s)", candidate.UUID, len(response.Conflicts))
		_ = cf.logConflictAction(ctx, &userID, models.AuditActionDeliverableBlocked, msg, true, nil, metadata)
	case response.ProceededDespiteConflict:
		msg := fmt.Sprintf("Deliverable %s persisted despite %d acknowledged conflict(s)", candidate.UUID, len(response.Conflicts))
		_ = cf.logConflictAction(ctx, &userID, models.AuditActionConflictAcknowledged, msg, true, nil, metadata)
	default:
		msg := fmt.Sprintf("Deliverable %s persisted with no conflicts", candidate.UUID)
		_ = cf.logConflictAction(ctx, &userID, models.AuditActionDeliverableCreated, msg, true, nil, metadata)
	}

	if len(response.Conflicts) > 0 {
		cf.invalidateSummary(ctx, userID)
	}
}

func (cf *ConflictFlowImpl) invalidateSummary(ctx context.Context, userID uint) {
	if cf.cache == nil {
		return
	}
	cacheKey := fmt.Sprintf("%s:%d", utils.ConflictSummaryCacheKey, userID)
	_ = cf.cache.Del(ctx, cacheKey).Err()
}

func (cf *ConflictFlowImpl) logConflictAction(ctx context.Context, userID *uint, action string, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
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

	return cf.auditRepo.Save(ctx, audit)
}

func (cf *ConflictFlowImpl) WithDetectionTransaction(ctx context.Context, fn func(context.Context) (*dto.DetectionOutcomeResponse, error)) (*dto.DetectionOutcomeResponse, error) {
	var result *dto.DetectionOutcomeResponse
	var fnErr error

	err := repository.WithTransaction(ctx, cf.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}
