// Package businessflow contains the core business logic and use cases for conflict detection workflows
package businessflow

import (
	"strings"

	"github.com/sponsorly/branddesk/models"
)

// CategoryPathSeparator delimits levels in a hierarchical category path
const CategoryPathSeparator = "/"

// CategoryMatches decides whether a candidate's category falls inside a
// rule's protected category scope. Paths are trimmed but compared
// case-sensitively; there is no case folding.
//
// EXACT_CATEGORY matches only the literal path. PARENT_CATEGORY matches
// the path itself and any descendant beneath it, at any depth. A candidate
// with no category never matches: absence of a category is treated as "no
// category asserted", a deliberate under-approximation.
func CategoryMatches(scope models.RuleScope, rulePath string, candidatePath *string) bool {
	if candidatePath == nil {
		return false
	}

	rule := strings.TrimSpace(rulePath)
	candidate := strings.TrimSpace(*candidatePath)
	if rule == "" || candidate == "" {
		return false
	}

	switch scope {
	case models.RuleScopeExactCategory:
		return candidate == rule
	case models.RuleScopeParentCategory:
		return candidate == rule || strings.HasPrefix(candidate, rule+CategoryPathSeparator)
	default:
		return false
	}
}

// CategoryRelation names how a matched candidate path relates to the rule
// path: models.CategoryRelationExact for identical paths,
// models.CategoryRelationDescendant for a path strictly below the rule's.
// Only meaningful for paths that already matched.
func CategoryRelation(rulePath string, candidatePath string) string {
	if strings.TrimSpace(candidatePath) == strings.TrimSpace(rulePath) {
		return models.CategoryRelationExact
	}
	return models.CategoryRelationDescendant
}
