// Package tests contains integration tests for the conflict detection flow
package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sponsorly/branddesk/app/dto"
	"github.com/sponsorly/branddesk/app/services"
	businessflow "github.com/sponsorly/branddesk/business_flow"
	"github.com/sponsorly/branddesk/models"
	"github.com/sponsorly/branddesk/repository"
	testingutil "github.com/sponsorly/branddesk/testing"
	"github.com/sponsorly/branddesk/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// conflictFlowEnv wires a ConflictFlow against a throwaway database. The
// Redis client is nil, so the idempotency guard runs on the marker table
// alone and summaries are computed fresh on every call.
type conflictFlowEnv struct {
	flow            businessflow.ConflictFlow
	dealRepo        repository.DealRepository
	deliverableRepo repository.DeliverableRepository
	conflictRepo    repository.ConflictRepository
	fixtures        *testingutil.TestFixtures
}

func newConflictFlowEnv(testDB *testingutil.TestDB) *conflictFlowEnv {
	dealRepo := repository.NewDealRepository(testDB.DB)
	ruleRepo := repository.NewExclusivityRuleRepository(testDB.DB)
	deliverableRepo := repository.NewDeliverableRepository(testDB.DB)
	conflictRepo := repository.NewConflictRepository(testDB.DB)
	auditRepo := repository.NewAuditLogRepository(testDB.DB)
	idempotencyRepo := repository.NewIdempotencyKeyRepository(testDB.DB)
	guard := services.NewIdempotencyGuard(nil, idempotencyRepo, testDB.DB)

	return &conflictFlowEnv{
		flow: businessflow.NewConflictFlow(
			dealRepo, ruleRepo, deliverableRepo, conflictRepo, auditRepo, guard, nil, testDB.DB,
		),
		dealRepo:        dealRepo,
		deliverableRepo: deliverableRepo,
		conflictRepo:    conflictRepo,
		fixtures:        testingutil.NewTestFixtures(testDB),
	}
}

func testMetadata() *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")
	metadata.SetRequestID("test-request-id")
	return metadata
}

func ruleWindowStart() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
func ruleWindowEnd() time.Time   { return time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC) }

func TestCreateDeliverableDetection(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env := newConflictFlowEnv(testDB)
		ctx := testingutil.CreateTestContext()

		user, err := env.fixtures.CreateTestUser()
		require.NoError(t, err)
		ruleDeal, err := env.fixtures.CreateTestDeal(user.ID, 0, models.DealStatusActive)
		require.NoError(t, err)
		candidateDeal, err := env.fixtures.CreateTestDeal(user.ID, 0, models.DealStatusActive)
		require.NoError(t, err)

		_, err = env.fixtures.CreateTestRule(ruleDeal.ID, "Food & Beverage/Energy Drinks",
			models.RuleScopeExactCategory, ruleWindowStart(), ruleWindowEnd())
		require.NoError(t, err)

		inWindow := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

		baseRequest := func() *dto.CreateDeliverableRequest {
			return &dto.CreateDeliverableRequest{
				UserID:      user.ID,
				DealUUID:    candidateDeal.UUID.String(),
				Title:       "March campaign post",
				Category:    utils.ToPtr("Food & Beverage/Energy Drinks"),
				Platform:    models.PlatformInstagram,
				ScheduledAt: utils.ToPtr(inWindow),
			}
		}

		t.Run("BlockedWithoutAcknowledgement", func(t *testing.T) {
			result, err := env.flow.CreateDeliverable(ctx, baseRequest(), testMetadata())
			require.NoError(t, err)

			assert.False(t, result.Persisted)
			assert.True(t, result.RequiresAcknowledgement)
			assert.Nil(t, result.Deliverable)
			require.Len(t, result.Conflicts, 1)
			assert.Equal(t, string(models.ConflictSeverityBlock), result.Conflicts[0].Severity)
			assert.Equal(t, string(models.ConflictStatusActive), result.Conflicts[0].Status)
			assert.NotEmpty(t, result.Conflicts[0].SuggestedResolutions)

			// Conflict history is persisted even though the candidate is not
			active, err := env.conflictRepo.CountActive(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(1), active)

			deliverable, err := env.deliverableRepo.ByUUID(ctx, result.Conflicts[0].DeliverableUUID)
			require.NoError(t, err)
			assert.Nil(t, deliverable)
		})

		t.Run("AcknowledgedProceedsAndAutoResolves", func(t *testing.T) {
			request := baseRequest()
			request.AcknowledgeConflicts = true

			result, err := env.flow.CreateDeliverable(ctx, request, testMetadata())
			require.NoError(t, err)

			assert.True(t, result.Persisted)
			assert.True(t, result.ProceededDespiteConflict)
			require.NotNil(t, result.Deliverable)
			require.Len(t, result.Conflicts, 1)
			assert.True(t, result.Conflicts[0].AutoResolved)
			assert.Equal(t, string(models.ConflictStatusResolved), result.Conflicts[0].Status)
			assert.NotNil(t, result.Conflicts[0].ResolvedAt)

			deliverable, err := env.deliverableRepo.ByUUID(ctx, result.Deliverable.UUID)
			require.NoError(t, err)
			require.NotNil(t, deliverable)
			assert.Equal(t, models.DeliverableStatusPlanned, deliverable.Status)
		})

		t.Run("ParentScopeDescendantWarns", func(t *testing.T) {
			_, err := env.fixtures.CreateTestRule(ruleDeal.ID, "Gaming",
				models.RuleScopeParentCategory, ruleWindowStart(), ruleWindowEnd())
			require.NoError(t, err)

			request := baseRequest()
			request.Category = utils.ToPtr("Gaming/Consoles")

			result, err := env.flow.CreateDeliverable(ctx, request, testMetadata())
			require.NoError(t, err)
			require.Len(t, result.Conflicts, 1)
			assert.Equal(t, string(models.ConflictSeverityWarn), result.Conflicts[0].Severity)
			assert.True(t, result.RequiresAcknowledgement)
		})

		t.Run("NoCategoryNeverMatches", func(t *testing.T) {
			request := baseRequest()
			request.Category = nil

			result, err := env.flow.CreateDeliverable(ctx, request, testMetadata())
			require.NoError(t, err)
			assert.True(t, result.Persisted)
			assert.Empty(t, result.Conflicts)
		})

		t.Run("NoScheduleSkipsDetection", func(t *testing.T) {
			request := baseRequest()
			request.ScheduledAt = nil

			result, err := env.flow.CreateDeliverable(ctx, request, testMetadata())
			require.NoError(t, err)
			assert.True(t, result.Persisted)
			assert.Empty(t, result.Conflicts)
		})

		t.Run("ScheduleOutsideWindowIsClean", func(t *testing.T) {
			request := baseRequest()
			request.ScheduledAt = utils.ToPtr(time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC))

			result, err := env.flow.CreateDeliverable(ctx, request, testMetadata())
			require.NoError(t, err)
			assert.True(t, result.Persisted)
			assert.Empty(t, result.Conflicts)
		})

		t.Run("OwnDealRulesDoNotSelfConflict", func(t *testing.T) {
			// The rule holder's own deliverables are not evaluated against
			// that deal's rules.
			request := baseRequest()
			request.DealUUID = ruleDeal.UUID.String()

			result, err := env.flow.CreateDeliverable(ctx, request, testMetadata())
			require.NoError(t, err)
			assert.True(t, result.Persisted)
			assert.Empty(t, result.Conflicts)
		})

		t.Run("CompletedDealRulesStillApply", func(t *testing.T) {
			// A finished deal's exclusivity window can outlive the deal
			// itself; its rules keep binding until the window closes.
			completedDeal, err := env.fixtures.CreateTestDeal(user.ID, 0, models.DealStatusCompleted)
			require.NoError(t, err)
			_, err = env.fixtures.CreateTestRule(completedDeal.ID, "Travel",
				models.RuleScopeExactCategory, ruleWindowStart(), ruleWindowEnd())
			require.NoError(t, err)

			request := baseRequest()
			request.Category = utils.ToPtr("Travel")

			result, err := env.flow.CreateDeliverable(ctx, request, testMetadata())
			require.NoError(t, err)
			assert.True(t, result.RequiresAcknowledgement)
			require.Len(t, result.Conflicts, 1)
			assert.Equal(t, string(models.ConflictSeverityBlock), result.Conflicts[0].Severity)
		})

		t.Run("ForeignDealIsNotFound", func(t *testing.T) {
			stranger, err := env.fixtures.CreateTestUser()
			require.NoError(t, err)

			request := baseRequest()
			request.UserID = stranger.ID

			_, err = env.flow.CreateDeliverable(ctx, request, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsDealNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCreateDeliverableIdempotency(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env := newConflictFlowEnv(testDB)
		ctx := testingutil.CreateTestContext()

		user, err := env.fixtures.CreateTestUser()
		require.NoError(t, err)
		deal, err := env.fixtures.CreateTestDeal(user.ID, 0, models.DealStatusActive)
		require.NoError(t, err)

		request := &dto.CreateDeliverableRequest{
			UserID:         user.ID,
			IdempotencyKey: "retry-key-1",
			DealUUID:       deal.UUID.String(),
			Title:          "Retried post",
			Category:       utils.ToPtr("Tech"),
			Platform:       models.PlatformYouTube,
			ScheduledAt:    utils.ToPtr(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)),
		}

		first, err := env.flow.CreateDeliverable(ctx, request, testMetadata())
		require.NoError(t, err)
		require.NotNil(t, first.Deliverable)

		second, err := env.flow.CreateDeliverable(ctx, request, testMetadata())
		require.NoError(t, err)
		require.NotNil(t, second.Deliverable)

		// The replay returns the original outcome; no second row appears
		assert.Equal(t, first.Deliverable.UUID, second.Deliverable.UUID)

		deliverables, err := env.deliverableRepo.ListByDeal(ctx, deal.ID)
		require.NoError(t, err)
		assert.Len(t, deliverables, 1)

		return nil
	})
	require.NoError(t, err)
}

// failingMarkerRepo fails the first completion stamp, standing in for a
// run that dies between the guarded mutation and the marker write.
type failingMarkerRepo struct {
	repository.IdempotencyKeyRepository
	failures int
}

func (r *failingMarkerRepo) Complete(ctx context.Context, id uint, response []byte) error {
	if r.failures > 0 {
		r.failures--
		return errors.New("connection reset")
	}
	return r.IdempotencyKeyRepository.Complete(ctx, id, response)
}

func TestCreateDeliverableIdempotencyAtomicity(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		dealRepo := repository.NewDealRepository(testDB.DB)
		ruleRepo := repository.NewExclusivityRuleRepository(testDB.DB)
		deliverableRepo := repository.NewDeliverableRepository(testDB.DB)
		conflictRepo := repository.NewConflictRepository(testDB.DB)
		auditRepo := repository.NewAuditLogRepository(testDB.DB)
		markerRepo := &failingMarkerRepo{
			IdempotencyKeyRepository: repository.NewIdempotencyKeyRepository(testDB.DB),
			failures:                 1,
		}
		guard := services.NewIdempotencyGuard(nil, markerRepo, testDB.DB)
		flow := businessflow.NewConflictFlow(
			dealRepo, ruleRepo, deliverableRepo, conflictRepo, auditRepo, guard, nil, testDB.DB,
		)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		user, err := fixtures.CreateTestUser()
		require.NoError(t, err)
		deal, err := fixtures.CreateTestDeal(user.ID, 0, models.DealStatusActive)
		require.NoError(t, err)

		request := &dto.CreateDeliverableRequest{
			UserID:         user.ID,
			IdempotencyKey: "retry-key-2",
			DealUUID:       deal.UUID.String(),
			Title:          "Crash-retried post",
			Category:       utils.ToPtr("Tech"),
			Platform:       models.PlatformTikTok,
			ScheduledAt:    utils.ToPtr(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)),
		}

		// The failed completion rolls the deliverable back with it; nothing
		// is half-committed.
		_, err = flow.CreateDeliverable(ctx, request, testMetadata())
		require.Error(t, err)
		deliverables, err := deliverableRepo.ListByDeal(ctx, deal.ID)
		require.NoError(t, err)
		assert.Empty(t, deliverables)

		// The retry re-runs the whole operation and leaves exactly one row
		result, err := flow.CreateDeliverable(ctx, request, testMetadata())
		require.NoError(t, err)
		assert.True(t, result.Persisted)
		deliverables, err = deliverableRepo.ListByDeal(ctx, deal.ID)
		require.NoError(t, err)
		assert.Len(t, deliverables, 1)

		return nil
	})
	require.NoError(t, err)
}

func TestUpdateDeliverableDetection(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env := newConflictFlowEnv(testDB)
		ctx := testingutil.CreateTestContext()

		user, err := env.fixtures.CreateTestUser()
		require.NoError(t, err)
		ruleDeal, err := env.fixtures.CreateTestDeal(user.ID, 0, models.DealStatusActive)
		require.NoError(t, err)
		candidateDeal, err := env.fixtures.CreateTestDeal(user.ID, 0, models.DealStatusActive)
		require.NoError(t, err)

		_, err = env.fixtures.CreateTestRule(ruleDeal.ID, "Fitness",
			models.RuleScopeParentCategory, ruleWindowStart(), ruleWindowEnd())
		require.NoError(t, err)

		// Starts clean: scheduled outside the protected window
		deliverable, err := env.fixtures.CreateTestDeliverable(candidateDeal.ID,
			utils.ToPtr("Fitness/Supplements"),
			utils.ToPtr(time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)))
		require.NoError(t, err)

		t.Run("RescheduleIntoWindowBlocks", func(t *testing.T) {
			request := &dto.UpdateDeliverableRequest{
				UUID:        deliverable.UUID.String(),
				UserID:      user.ID,
				ScheduledAt: utils.ToPtr(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)),
			}

			result, err := env.flow.UpdateDeliverable(ctx, request, testMetadata())
			require.NoError(t, err)
			assert.False(t, result.Persisted)
			assert.True(t, result.RequiresAcknowledgement)
			require.Len(t, result.Conflicts, 1)
			// History stays attached to the existing asset
			assert.Equal(t, deliverable.UUID.String(), result.Conflicts[0].DeliverableUUID)

			// The stored row is untouched
			stored, err := env.deliverableRepo.ByUUID(ctx, deliverable.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, stored.ScheduledAt)
			assert.True(t, stored.ScheduledAt.Equal(time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)))
		})

		t.Run("AcknowledgedRescheduleApplies", func(t *testing.T) {
			newSchedule := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
			request := &dto.UpdateDeliverableRequest{
				UUID:                 deliverable.UUID.String(),
				UserID:               user.ID,
				ScheduledAt:          utils.ToPtr(newSchedule),
				AcknowledgeConflicts: true,
			}

			result, err := env.flow.UpdateDeliverable(ctx, request, testMetadata())
			require.NoError(t, err)
			assert.True(t, result.Persisted)
			assert.True(t, result.ProceededDespiteConflict)

			stored, err := env.deliverableRepo.ByUUID(ctx, deliverable.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, stored.ScheduledAt)
			assert.True(t, stored.ScheduledAt.Equal(newSchedule))
		})

		t.Run("ForeignDeliverableIsNotFound", func(t *testing.T) {
			stranger, err := env.fixtures.CreateTestUser()
			require.NoError(t, err)

			request := &dto.UpdateDeliverableRequest{
				UUID:   deliverable.UUID.String(),
				UserID: stranger.ID,
				Title:  utils.ToPtr("Hijacked"),
			}

			_, err = env.flow.UpdateDeliverable(ctx, request, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsDeliverableNotFound(err))
		})

		t.Run("UnknownDeliverableIsNotFound", func(t *testing.T) {
			request := &dto.UpdateDeliverableRequest{
				UUID:   "9e107d9d-3721-4a38-91f0-5c1f3f5e9b10",
				UserID: user.ID,
			}

			_, err := env.flow.UpdateDeliverable(ctx, request, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsDeliverableNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestResolveConflict(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env := newConflictFlowEnv(testDB)
		ctx := testingutil.CreateTestContext()

		user, err := env.fixtures.CreateTestUser()
		require.NoError(t, err)
		deal, err := env.fixtures.CreateTestDeal(user.ID, 0, models.DealStatusActive)
		require.NoError(t, err)
		conflict, err := env.fixtures.CreateTestConflict(deal.ID, nil, models.ConflictSeverityBlock)
		require.NoError(t, err)

		t.Run("ResolveActiveConflict", func(t *testing.T) {
			result, err := env.flow.ResolveConflict(ctx, &dto.ResolveConflictRequest{
				UUID:   conflict.UUID.String(),
				UserID: user.ID,
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, conflict.UUID.String(), result.UUID)
			assert.False(t, result.ResolvedAt.IsZero())

			// An explicit resolve lands the row in the same terminal state
			// as an acknowledged detection: resolved and auto_resolved.
			stored, err := env.conflictRepo.ByUUID(ctx, conflict.UUID)
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.True(t, stored.AutoResolved)
			require.NotNil(t, stored.ResolvedAt)
			require.NotNil(t, stored.AcknowledgedBy)
			assert.Equal(t, user.ID, *stored.AcknowledgedBy)
		})

		t.Run("DoubleResolveIsIdempotent", func(t *testing.T) {
			first, err := env.flow.ResolveConflict(ctx, &dto.ResolveConflictRequest{
				UUID:   conflict.UUID.String(),
				UserID: user.ID,
			}, testMetadata())
			require.NoError(t, err)

			second, err := env.flow.ResolveConflict(ctx, &dto.ResolveConflictRequest{
				UUID:   conflict.UUID.String(),
				UserID: user.ID,
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, first.ResolvedAt.Unix(), second.ResolvedAt.Unix())
		})

		t.Run("ForeignConflictIsNotFound", func(t *testing.T) {
			stranger, err := env.fixtures.CreateTestUser()
			require.NoError(t, err)

			_, err = env.flow.ResolveConflict(ctx, &dto.ResolveConflictRequest{
				UUID:   conflict.UUID.String(),
				UserID: stranger.ID,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsConflictNotFound(err))
		})

		t.Run("MalformedUUIDIsNotFound", func(t *testing.T) {
			_, err := env.flow.ResolveConflict(ctx, &dto.ResolveConflictRequest{
				UUID:   "not-a-uuid",
				UserID: user.ID,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsConflictNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestListAndSummarizeConflicts(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env := newConflictFlowEnv(testDB)
		ctx := testingutil.CreateTestContext()

		user, err := env.fixtures.CreateTestUser()
		require.NoError(t, err)
		deal, err := env.fixtures.CreateTestDeal(user.ID, 0, models.DealStatusActive)
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			_, err = env.fixtures.CreateTestConflict(deal.ID, nil, models.ConflictSeverityBlock)
			require.NoError(t, err)
		}
		resolved, err := env.fixtures.CreateTestConflict(deal.ID, nil, models.ConflictSeverityWarn)
		require.NoError(t, err)
		require.NoError(t, env.conflictRepo.MarkResolved(ctx, resolved.ID, user.ID, utils.UTCNow()))

		t.Run("DefaultListsActive", func(t *testing.T) {
			list, err := env.flow.ListConflicts(ctx, &dto.ListConflictsRequest{UserID: user.ID})
			require.NoError(t, err)
			assert.Equal(t, int64(3), list.Pagination.Total)
			assert.Len(t, list.Items, 3)
			for _, item := range list.Items {
				assert.Equal(t, string(models.ConflictStatusActive), item.Status)
			}
		})

		t.Run("ResolvedFilter", func(t *testing.T) {
			list, err := env.flow.ListConflicts(ctx, &dto.ListConflictsRequest{
				UserID: user.ID,
				Status: string(models.ConflictStatusResolved),
			})
			require.NoError(t, err)
			assert.Equal(t, int64(1), list.Pagination.Total)
		})

		t.Run("AllFilterWithPagination", func(t *testing.T) {
			list, err := env.flow.ListConflicts(ctx, &dto.ListConflictsRequest{
				UserID: user.ID,
				Status: string(models.ConflictStatusAll),
				Page:   2,
				Limit:  3,
			})
			require.NoError(t, err)
			assert.Equal(t, int64(4), list.Pagination.Total)
			assert.Equal(t, 2, list.Pagination.TotalPages)
			assert.Len(t, list.Items, 1)
		})

		t.Run("InvalidStatusRejected", func(t *testing.T) {
			_, err := env.flow.ListConflicts(ctx, &dto.ListConflictsRequest{
				UserID: user.ID,
				Status: "archived",
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidConflictStatus(err))
		})

		t.Run("InvalidPaginationRejected", func(t *testing.T) {
			_, err := env.flow.ListConflicts(ctx, &dto.ListConflictsRequest{UserID: user.ID, Page: -1})
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidPage(err))

			_, err = env.flow.ListConflicts(ctx, &dto.ListConflictsRequest{UserID: user.ID, Limit: 500})
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidPageSize(err))
		})

		t.Run("Summary", func(t *testing.T) {
			summary, err := env.flow.GetSummary(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(3), summary.Active)
			assert.Equal(t, int64(3), summary.BySeverity[string(models.ConflictSeverityBlock)])
		})

		t.Run("Export", func(t *testing.T) {
			payload, filename, err := env.flow.ExportConflicts(ctx, user.ID, "")
			require.NoError(t, err)
			assert.NotEmpty(t, payload)
			assert.Contains(t, filename, "conflicts_")
			assert.Contains(t, filename, ".xlsx")
		})

		return nil
	})
	require.NoError(t, err)
}
