// Package tests contains integration tests for the deal rule editing flow
package tests

import (
	"testing"
	"time"

	"github.com/sponsorly/branddesk/app/dto"
	businessflow "github.com/sponsorly/branddesk/business_flow"
	"github.com/sponsorly/branddesk/models"
	"github.com/sponsorly/branddesk/repository"
	testingutil "github.com/sponsorly/branddesk/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDealFlow(testDB *testingutil.TestDB) businessflow.DealFlow {
	return businessflow.NewDealFlow(
		repository.NewDealRepository(testDB.DB),
		repository.NewExclusivityRuleRepository(testDB.DB),
		repository.NewAuditLogRepository(testDB.DB),
		testDB.DB,
	)
}

func validRuleInput() dto.ExclusivityRuleInput {
	return dto.ExclusivityRuleInput{
		CategoryPath: "Food & Beverage/Energy Drinks",
		Scope:        string(models.RuleScopeExactCategory),
		StartDate:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Platforms:    []string{models.PlatformInstagram, models.PlatformYouTube},
		Regions:      []string{models.RegionUS},
	}
}

func TestReplaceExclusivityRules(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		dealFlow := newDealFlow(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := testMetadata()

		user, err := fixtures.CreateTestUser()
		require.NoError(t, err)
		deal, err := fixtures.CreateTestDeal(user.ID, 0, models.DealStatusActive)
		require.NoError(t, err)

		t.Run("ReplaceSucceeds", func(t *testing.T) {
			response, err := dealFlow.ReplaceExclusivityRules(ctx, &dto.ReplaceExclusivityRulesRequest{
				DealUUID: deal.UUID.String(),
				UserID:   user.ID,
				Rules:    []dto.ExclusivityRuleInput{validRuleInput()},
			}, metadata)
			require.NoError(t, err)
			require.Len(t, response.Rules, 1)
			assert.Equal(t, "Food & Beverage/Energy Drinks", response.Rules[0].CategoryPath)
		})

		t.Run("ReplaceIsWholesale", func(t *testing.T) {
			second := validRuleInput()
			second.CategoryPath = "Gaming"
			second.Scope = string(models.RuleScopeParentCategory)

			response, err := dealFlow.ReplaceExclusivityRules(ctx, &dto.ReplaceExclusivityRulesRequest{
				DealUUID: deal.UUID.String(),
				UserID:   user.ID,
				Rules:    []dto.ExclusivityRuleInput{second},
			}, metadata)
			require.NoError(t, err)
			require.Len(t, response.Rules, 1)
			assert.Equal(t, "Gaming", response.Rules[0].CategoryPath)

			rules, err := dealFlow.ListExclusivityRules(ctx, deal.UUID.String(), user.ID)
			require.NoError(t, err)
			require.Len(t, rules, 1)
			assert.Equal(t, "Gaming", rules[0].CategoryPath)
		})

		t.Run("DatesTruncatedToDays", func(t *testing.T) {
			input := validRuleInput()
			input.StartDate = time.Date(2026, 3, 1, 17, 45, 0, 0, time.UTC)
			input.EndDate = time.Date(2026, 3, 31, 3, 10, 0, 0, time.UTC)

			response, err := dealFlow.ReplaceExclusivityRules(ctx, &dto.ReplaceExclusivityRulesRequest{
				DealUUID: deal.UUID.String(),
				UserID:   user.ID,
				Rules:    []dto.ExclusivityRuleInput{input},
			}, metadata)
			require.NoError(t, err)
			require.Len(t, response.Rules, 1)
			assert.True(t, response.Rules[0].StartDate.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
			assert.True(t, response.Rules[0].EndDate.Equal(time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)))
		})

		t.Run("StartAfterEndRejected", func(t *testing.T) {
			input := validRuleInput()
			input.StartDate = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

			_, err := dealFlow.ReplaceExclusivityRules(ctx, &dto.ReplaceExclusivityRulesRequest{
				DealUUID: deal.UUID.String(),
				UserID:   user.ID,
				Rules:    []dto.ExclusivityRuleInput{input},
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidRuleWindow(err))
		})

		t.Run("EqualDatesRejected", func(t *testing.T) {
			// The window must be strictly positive at day granularity, so
			// identical start and end dates are invalid even when the raw
			// timestamps differ within the day.
			input := validRuleInput()
			input.StartDate = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
			input.EndDate = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

			_, err := dealFlow.ReplaceExclusivityRules(ctx, &dto.ReplaceExclusivityRulesRequest{
				DealUUID: deal.UUID.String(),
				UserID:   user.ID,
				Rules:    []dto.ExclusivityRuleInput{input},
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidRuleWindow(err))
		})

		t.Run("BlankCategoryRejected", func(t *testing.T) {
			input := validRuleInput()
			input.CategoryPath = "   "

			_, err := dealFlow.ReplaceExclusivityRules(ctx, &dto.ReplaceExclusivityRulesRequest{
				DealUUID: deal.UUID.String(),
				UserID:   user.ID,
				Rules:    []dto.ExclusivityRuleInput{input},
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidCategoryPath(err))
		})

		t.Run("UnknownScopeRejected", func(t *testing.T) {
			input := validRuleInput()
			input.Scope = "sibling_category"

			_, err := dealFlow.ReplaceExclusivityRules(ctx, &dto.ReplaceExclusivityRulesRequest{
				DealUUID: deal.UUID.String(),
				UserID:   user.ID,
				Rules:    []dto.ExclusivityRuleInput{input},
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidRuleScope(err))
		})

		t.Run("UnknownPlatformRejected", func(t *testing.T) {
			input := validRuleInput()
			input.Platforms = []string{"twitch"}

			_, err := dealFlow.ReplaceExclusivityRules(ctx, &dto.ReplaceExclusivityRulesRequest{
				DealUUID: deal.UUID.String(),
				UserID:   user.ID,
				Rules:    []dto.ExclusivityRuleInput{input},
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidPlatform(err))
		})

		t.Run("UnknownRegionRejected", func(t *testing.T) {
			input := validRuleInput()
			input.Regions = []string{"eu"}

			_, err := dealFlow.ReplaceExclusivityRules(ctx, &dto.ReplaceExclusivityRulesRequest{
				DealUUID: deal.UUID.String(),
				UserID:   user.ID,
				Rules:    []dto.ExclusivityRuleInput{input},
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidRegion(err))
		})

		t.Run("CompletedDealNotEditable", func(t *testing.T) {
			completed, err := fixtures.CreateTestDeal(user.ID, 0, models.DealStatusCompleted)
			require.NoError(t, err)

			_, err = dealFlow.ReplaceExclusivityRules(ctx, &dto.ReplaceExclusivityRulesRequest{
				DealUUID: completed.UUID.String(),
				UserID:   user.ID,
				Rules:    []dto.ExclusivityRuleInput{validRuleInput()},
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsDealNotEditable(err))
		})

		t.Run("ForeignDealIsNotFound", func(t *testing.T) {
			stranger, err := fixtures.CreateTestUser()
			require.NoError(t, err)

			_, err = dealFlow.ReplaceExclusivityRules(ctx, &dto.ReplaceExclusivityRulesRequest{
				DealUUID: deal.UUID.String(),
				UserID:   stranger.ID,
				Rules:    []dto.ExclusivityRuleInput{validRuleInput()},
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsDealNotFound(err))

			_, err = dealFlow.ListExclusivityRules(ctx, deal.UUID.String(), stranger.ID)
			require.Error(t, err)
			assert.True(t, businessflow.IsDealNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
