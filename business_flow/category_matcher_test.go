package businessflow

import (
	"testing"

	"github.com/sponsorly/branddesk/models"
	"github.com/sponsorly/branddesk/utils"
	"github.com/stretchr/testify/assert"
)

func TestCategoryMatchesExactScope(t *testing.T) {
	rulePath := "Food & Beverage/Energy Drinks"

	t.Run("LiteralMatch", func(t *testing.T) {
		assert.True(t, CategoryMatches(models.RuleScopeExactCategory, rulePath, utils.ToPtr(rulePath)))
	})

	t.Run("DescendantDoesNotMatch", func(t *testing.T) {
		candidate := utils.ToPtr("Food & Beverage/Energy Drinks/Sugar Free")
		assert.False(t, CategoryMatches(models.RuleScopeExactCategory, rulePath, candidate))
	})

	t.Run("AncestorDoesNotMatch", func(t *testing.T) {
		candidate := utils.ToPtr("Food & Beverage")
		assert.False(t, CategoryMatches(models.RuleScopeExactCategory, rulePath, candidate))
	})

	t.Run("CaseSensitive", func(t *testing.T) {
		candidate := utils.ToPtr("food & beverage/energy drinks")
		assert.False(t, CategoryMatches(models.RuleScopeExactCategory, rulePath, candidate))
	})

	t.Run("SurroundingWhitespaceTrimmed", func(t *testing.T) {
		candidate := utils.ToPtr("  Food & Beverage/Energy Drinks  ")
		assert.True(t, CategoryMatches(models.RuleScopeExactCategory, rulePath, candidate))
	})
}

func TestCategoryMatchesParentScope(t *testing.T) {
	rulePath := "Food & Beverage"

	t.Run("MatchesPathItself", func(t *testing.T) {
		assert.True(t, CategoryMatches(models.RuleScopeParentCategory, rulePath, utils.ToPtr(rulePath)))
	})

	t.Run("MatchesDirectChild", func(t *testing.T) {
		candidate := utils.ToPtr("Food & Beverage/Energy Drinks")
		assert.True(t, CategoryMatches(models.RuleScopeParentCategory, rulePath, candidate))
	})

	t.Run("MatchesDeepDescendant", func(t *testing.T) {
		candidate := utils.ToPtr("Food & Beverage/Energy Drinks/Sugar Free/Citrus")
		assert.True(t, CategoryMatches(models.RuleScopeParentCategory, rulePath, candidate))
	})

	t.Run("SiblingPrefixDoesNotMatch", func(t *testing.T) {
		// "Food" must not capture "Foodie Content": descent requires a
		// separator boundary, not a string prefix.
		candidate := utils.ToPtr("Foodie Content/Reviews")
		assert.False(t, CategoryMatches(models.RuleScopeParentCategory, "Food", candidate))
	})

	t.Run("AncestorDoesNotMatch", func(t *testing.T) {
		candidate := utils.ToPtr("Food")
		assert.False(t, CategoryMatches(models.RuleScopeParentCategory, rulePath, candidate))
	})
}

func TestCategoryMatchesEdgeCases(t *testing.T) {
	t.Run("NilCandidateNeverMatches", func(t *testing.T) {
		assert.False(t, CategoryMatches(models.RuleScopeExactCategory, "Tech", nil))
		assert.False(t, CategoryMatches(models.RuleScopeParentCategory, "Tech", nil))
	})

	t.Run("EmptyCandidateNeverMatches", func(t *testing.T) {
		assert.False(t, CategoryMatches(models.RuleScopeParentCategory, "Tech", utils.ToPtr("")))
		assert.False(t, CategoryMatches(models.RuleScopeParentCategory, "Tech", utils.ToPtr("   ")))
	})

	t.Run("EmptyRulePathNeverMatches", func(t *testing.T) {
		assert.False(t, CategoryMatches(models.RuleScopeExactCategory, "", utils.ToPtr("Tech")))
	})

	t.Run("UnknownScopeNeverMatches", func(t *testing.T) {
		assert.False(t, CategoryMatches(models.RuleScope("everything"), "Tech", utils.ToPtr("Tech")))
	})
}

func TestCategoryRelation(t *testing.T) {
	t.Run("ExactWhenPathsEqual", func(t *testing.T) {
		assert.Equal(t, models.CategoryRelationExact, CategoryRelation("Tech", "Tech"))
	})

	t.Run("ExactIgnoresSurroundingWhitespace", func(t *testing.T) {
		assert.Equal(t, models.CategoryRelationExact, CategoryRelation("Tech", " Tech "))
	})

	t.Run("DescendantOtherwise", func(t *testing.T) {
		assert.Equal(t, models.CategoryRelationDescendant, CategoryRelation("Tech", "Tech/Phones"))
	})
}
