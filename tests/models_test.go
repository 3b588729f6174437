// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sponsorly/branddesk/models"
	testingutil "github.com/sponsorly/branddesk/testing"
	"github.com/sponsorly/branddesk/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUser(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		t.Run("CreateUser", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			assert.NotZero(t, user.ID)
			assert.NotEqual(t, uuid.Nil, user.UUID)
			assert.True(t, utils.IsTrue(user.IsActive))
		})

		t.Run("PasswordHashing", func(t *testing.T) {
			user, err := fixtures.CreateTestUser()
			require.NoError(t, err)
			assert.NotEmpty(t, user.PasswordHash)
			err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(testingutil.TestPassword))
			assert.NoError(t, err)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestDeal(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		user, err := fixtures.CreateTestUser()
		require.NoError(t, err)

		t.Run("EditableStatuses", func(t *testing.T) {
			draft, err := fixtures.CreateTestDeal(user.ID, 0, models.DealStatusDraft)
			require.NoError(t, err)
			assert.True(t, draft.IsEditable())

			active, err := fixtures.CreateTestDeal(user.ID, 0, models.DealStatusActive)
			require.NoError(t, err)
			assert.True(t, active.IsEditable())

			completed, err := fixtures.CreateTestDeal(user.ID, 0, models.DealStatusCompleted)
			require.NoError(t, err)
			assert.False(t, completed.IsEditable())

			terminated, err := fixtures.CreateTestDeal(user.ID, 0, models.DealStatusTerminated)
			require.NoError(t, err)
			assert.False(t, terminated.IsEditable())
		})

		t.Run("UUIDGeneratedOnCreate", func(t *testing.T) {
			deal, err := fixtures.CreateTestDeal(user.ID, 0, models.DealStatusActive)
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, deal.UUID)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestExclusivityRuleModel(t *testing.T) {
	rule := &models.ExclusivityRule{
		CategoryPath: "Food & Beverage",
		Scope:        models.RuleScopeParentCategory,
		StartDate:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Platforms:    []string{models.PlatformInstagram},
		Regions:      []string{models.RegionUS},
	}

	t.Run("CoversPlatform", func(t *testing.T) {
		assert.True(t, rule.CoversPlatform(models.PlatformInstagram))
		assert.False(t, rule.CoversPlatform(models.PlatformTikTok))
	})

	t.Run("CoversRegion", func(t *testing.T) {
		assert.True(t, rule.CoversRegion(models.RegionUS))
		assert.False(t, rule.CoversRegion(models.RegionIN))
		// A global candidate intersects any non-empty rule region set
		assert.True(t, rule.CoversRegion(models.RegionGlobal))
	})

	t.Run("GlobalRuleRegionCoversEverything", func(t *testing.T) {
		global := *rule
		global.Regions = []string{models.RegionGlobal}
		assert.True(t, global.CoversRegion(models.RegionIN))
		assert.True(t, global.CoversRegion(models.RegionUS))
	})

	t.Run("ContainsDateInclusiveBounds", func(t *testing.T) {
		assert.True(t, rule.ContainsDate(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
		assert.True(t, rule.ContainsDate(time.Date(2026, 3, 31, 23, 59, 0, 0, time.UTC)))
		assert.False(t, rule.ContainsDate(time.Date(2026, 2, 28, 23, 59, 0, 0, time.UTC)))
		assert.False(t, rule.ContainsDate(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("ScopeValidity", func(t *testing.T) {
		assert.True(t, models.RuleScopeExactCategory.Valid())
		assert.True(t, models.RuleScopeParentCategory.Valid())
		assert.False(t, models.RuleScope("everything").Valid())
	})
}

func TestConflictModel(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		user, err := fixtures.CreateTestUser()
		require.NoError(t, err)
		deal, err := fixtures.CreateTestDeal(user.ID, 0, models.DealStatusActive)
		require.NoError(t, err)

		t.Run("OverlapRoundTripsThroughJSONB", func(t *testing.T) {
			created, err := fixtures.CreateTestConflict(deal.ID, nil, models.ConflictSeverityBlock)
			require.NoError(t, err)

			var loaded models.Conflict
			require.NoError(t, testDB.DB.First(&loaded, created.ID).Error)
			assert.Equal(t, created.Overlap.RulePath, loaded.Overlap.RulePath)
			assert.Equal(t, created.Overlap.CategoryRelation, loaded.Overlap.CategoryRelation)
			assert.Equal(t, created.Overlap.Platform, loaded.Overlap.Platform)
			assert.Equal(t, []string(created.SuggestedResolutions), []string(loaded.SuggestedResolutions))
		})

		t.Run("ActiveUntilResolved", func(t *testing.T) {
			conflict, err := fixtures.CreateTestConflict(deal.ID, nil, models.ConflictSeverityWarn)
			require.NoError(t, err)
			assert.True(t, conflict.IsActive())

			now := utils.UTCNow()
			conflict.ResolvedAt = &now
			assert.False(t, conflict.IsActive())
		})

		return nil
	})
	require.NoError(t, err)
}

func TestEnumValidity(t *testing.T) {
	t.Run("ConflictType", func(t *testing.T) {
		assert.True(t, models.ConflictTypeExclusivity.Valid())
		assert.False(t, models.ConflictType("budget").Valid())
	})

	t.Run("ConflictSeverity", func(t *testing.T) {
		assert.True(t, models.ConflictSeverityWarn.Valid())
		assert.True(t, models.ConflictSeverityBlock.Valid())
		assert.False(t, models.ConflictSeverity("fatal").Valid())
	})

	t.Run("Platforms", func(t *testing.T) {
		assert.True(t, models.ValidPlatform(models.PlatformYouTube))
		assert.False(t, models.ValidPlatform("twitch"))
	})

	t.Run("Regions", func(t *testing.T) {
		assert.True(t, models.ValidRegion(models.RegionGlobal))
		assert.False(t, models.ValidRegion("eu"))
	})
}
