package businessflow

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sponsorly/branddesk/models"
	"github.com/sponsorly/branddesk/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func testRule() *models.ExclusivityRule {
	return &models.ExclusivityRule{
		ID:           42,
		DealID:       7,
		CategoryPath: "Food & Beverage/Energy Drinks",
		Scope:        models.RuleScopeExactCategory,
		StartDate:    day("2026-03-01"),
		EndDate:      day("2026-03-31"),
		Platforms:    []string{models.PlatformInstagram, models.PlatformYouTube},
		Regions:      []string{models.RegionUS},
	}
}

func testCandidate() *CandidateAsset {
	return &CandidateAsset{
		UUID:        uuid.New(),
		DealID:      9,
		Title:       "March promo post",
		Category:    utils.ToPtr("Food & Beverage/Energy Drinks"),
		Platform:    models.PlatformInstagram,
		Region:      utils.ToPtr(models.RegionUS),
		ScheduledAt: utils.ToPtr(day("2026-03-15")),
	}
}

func TestEvaluateOverlapMatch(t *testing.T) {
	rule := testRule()
	candidate := testCandidate()

	facts := EvaluateOverlap(rule, candidate)
	require.NotNil(t, facts)

	assert.Equal(t, models.ConflictOverlapVersion, facts.Version)
	assert.Equal(t, rule.ID, facts.RuleID)
	assert.Equal(t, rule.CategoryPath, facts.RulePath)
	assert.Equal(t, *candidate.Category, facts.CandidateCategory)
	assert.Equal(t, models.CategoryRelationExact, facts.CategoryRelation)
	assert.Equal(t, candidate.Platform, facts.Platform)
	assert.Equal(t, rule.StartDate, facts.WindowStart)
	assert.Equal(t, rule.EndDate, facts.WindowEnd)
	assert.Equal(t, *candidate.ScheduledAt, facts.ScheduledAt)
	assert.False(t, facts.DetectedAt.IsZero())
}

func TestEvaluateOverlapSchedule(t *testing.T) {
	t.Run("NoScheduleSkipsDetection", func(t *testing.T) {
		candidate := testCandidate()
		candidate.ScheduledAt = nil
		assert.Nil(t, EvaluateOverlap(testRule(), candidate))
	})

	t.Run("ZeroScheduleSkipsDetection", func(t *testing.T) {
		candidate := testCandidate()
		candidate.ScheduledAt = &time.Time{}
		assert.Nil(t, EvaluateOverlap(testRule(), candidate))
	})

	t.Run("StartBoundaryInclusive", func(t *testing.T) {
		candidate := testCandidate()
		candidate.ScheduledAt = utils.ToPtr(day("2026-03-01"))
		assert.NotNil(t, EvaluateOverlap(testRule(), candidate))
	})

	t.Run("EndBoundaryInclusive", func(t *testing.T) {
		candidate := testCandidate()
		candidate.ScheduledAt = utils.ToPtr(day("2026-03-31"))
		assert.NotNil(t, EvaluateOverlap(testRule(), candidate))
	})

	t.Run("EndBoundaryHoldsForLateTimeOfDay", func(t *testing.T) {
		candidate := testCandidate()
		candidate.ScheduledAt = utils.ToPtr(day("2026-03-31").Add(23 * time.Hour))
		assert.NotNil(t, EvaluateOverlap(testRule(), candidate))
	})

	t.Run("DayBeforeWindowMisses", func(t *testing.T) {
		candidate := testCandidate()
		candidate.ScheduledAt = utils.ToPtr(day("2026-02-28"))
		assert.Nil(t, EvaluateOverlap(testRule(), candidate))
	})

	t.Run("DayAfterWindowMisses", func(t *testing.T) {
		candidate := testCandidate()
		candidate.ScheduledAt = utils.ToPtr(day("2026-04-01"))
		assert.Nil(t, EvaluateOverlap(testRule(), candidate))
	})
}

func TestEvaluateOverlapPlatform(t *testing.T) {
	t.Run("UncoveredPlatformMisses", func(t *testing.T) {
		candidate := testCandidate()
		candidate.Platform = models.PlatformTikTok
		assert.Nil(t, EvaluateOverlap(testRule(), candidate))
	})

	t.Run("AnyListedPlatformMatches", func(t *testing.T) {
		candidate := testCandidate()
		candidate.Platform = models.PlatformYouTube
		assert.NotNil(t, EvaluateOverlap(testRule(), candidate))
	})
}

func TestEvaluateOverlapRegion(t *testing.T) {
	t.Run("DisjointRegionMisses", func(t *testing.T) {
		candidate := testCandidate()
		candidate.Region = utils.ToPtr(models.RegionIN)
		assert.Nil(t, EvaluateOverlap(testRule(), candidate))
	})

	t.Run("AbsentRegionIsNotRestrictive", func(t *testing.T) {
		candidate := testCandidate()
		candidate.Region = nil
		assert.NotNil(t, EvaluateOverlap(testRule(), candidate))
	})

	t.Run("BlankRegionIsNotRestrictive", func(t *testing.T) {
		candidate := testCandidate()
		candidate.Region = utils.ToPtr("  ")
		assert.NotNil(t, EvaluateOverlap(testRule(), candidate))
	})

	t.Run("GlobalCandidateIntersectsAnyRuleRegion", func(t *testing.T) {
		candidate := testCandidate()
		candidate.Region = utils.ToPtr(models.RegionGlobal)
		assert.NotNil(t, EvaluateOverlap(testRule(), candidate))
	})

	t.Run("GlobalRuleCoversAnyCandidateRegion", func(t *testing.T) {
		rule := testRule()
		rule.Regions = []string{models.RegionGlobal}
		candidate := testCandidate()
		candidate.Region = utils.ToPtr(models.RegionIN)
		assert.NotNil(t, EvaluateOverlap(rule, candidate))
	})
}

func TestEvaluateOverlapCategory(t *testing.T) {
	t.Run("NoCandidateCategoryMisses", func(t *testing.T) {
		candidate := testCandidate()
		candidate.Category = nil
		assert.Nil(t, EvaluateOverlap(testRule(), candidate))
	})

	t.Run("DescendantUnderParentScopeMatches", func(t *testing.T) {
		rule := testRule()
		rule.Scope = models.RuleScopeParentCategory
		rule.CategoryPath = "Food & Beverage"
		candidate := testCandidate()

		facts := EvaluateOverlap(rule, candidate)
		require.NotNil(t, facts)
		assert.Equal(t, models.CategoryRelationDescendant, facts.CategoryRelation)
	})
}

func TestEvaluateRules(t *testing.T) {
	t.Run("CollectsEveryMatchedRule", func(t *testing.T) {
		exact := testRule()
		parent := testRule()
		parent.ID = 43
		parent.Scope = models.RuleScopeParentCategory
		parent.CategoryPath = "Food & Beverage"
		miss := testRule()
		miss.ID = 44
		miss.CategoryPath = "Gaming"

		overlaps := EvaluateRules([]*models.ExclusivityRule{exact, parent, miss}, testCandidate())
		require.Len(t, overlaps, 2)
		assert.Equal(t, exact.ID, overlaps[0].Rule.ID)
		assert.Equal(t, parent.ID, overlaps[1].Rule.ID)
	})

	t.Run("EmptyRuleSetYieldsNothing", func(t *testing.T) {
		assert.Empty(t, EvaluateRules(nil, testCandidate()))
	})
}
