// Package businessflow contains the core business logic and use cases for conflict detection workflows
package businessflow

import (
	"fmt"

	"github.com/sponsorly/branddesk/models"
	"github.com/sponsorly/branddesk/utils"
)

// SeverityFor maps the category relationship of a matched rule to a
// conflict severity. It is a pure function of the match facts: an exact
// category hit blocks outright, while a descendant hit under a
// PARENT_CATEGORY rule is a lower-confidence match and only warns.
// Platform and date containment are preconditions here; a non-overlap
// never reaches classification.
func SeverityFor(scope models.RuleScope, categoryRelation string) models.ConflictSeverity {
	if scope == models.RuleScopeExactCategory {
		return models.ConflictSeverityBlock
	}
	if categoryRelation == models.CategoryRelationExact {
		return models.ConflictSeverityBlock
	}
	return models.ConflictSeverityWarn
}

// SuggestedResolutions generates ordered remediation suggestions from the
// overlap facts. The list is derived, never free text.
func SuggestedResolutions(overlap models.ConflictOverlap) []string {
	suggestions := []string{
		fmt.Sprintf("Move the scheduled date outside %s - %s",
			overlap.WindowStart.Format("2006-01-02"), overlap.WindowEnd.Format("2006-01-02")),
		fmt.Sprintf("Choose a platform not covered by the existing rule on %q", overlap.RulePath),
	}
	if overlap.CategoryRelation == models.CategoryRelationDescendant {
		suggestions = append(suggestions,
			fmt.Sprintf("Recategorize the deliverable outside the %q subtree", overlap.RulePath))
	}
	suggestions = append(suggestions, "Contact the brand to request an exclusivity waiver")
	return suggestions
}

// Classify turns overlap facts into conflict records, one per matched
// rule. Conflicts are never merged or deduplicated across rules. When the
// caller acknowledged the conflicts up front, each record is created
// already resolved, stamped with the acknowledging user and time.
func Classify(candidate *CandidateAsset, overlaps []RuleOverlap, correlationID *string, acknowledgedBy *uint) []*models.Conflict {
	if len(overlaps) == 0 {
		return nil
	}

	now := utils.UTCNow()
	conflicts := make([]*models.Conflict, 0, len(overlaps))
	for _, overlap := range overlaps {
		facts := overlap.Facts
		facts.CorrelationID = correlationID
		facts.ProceededDespiteConflict = acknowledgedBy != nil

		conflict := &models.Conflict{
			Type:                 models.ConflictTypeExclusivity,
			Severity:             SeverityFor(overlap.Rule.Scope, facts.CategoryRelation),
			Overlap:              facts,
			SuggestedResolutions: SuggestedResolutions(facts),
			AutoResolved:         acknowledgedBy != nil,
			ConflictingRuleID:    &overlap.Rule.ID,
			DeliverableUUID:      candidate.UUID,
			DealID:               candidate.DealID,
			DetectedAt:           facts.DetectedAt,
		}

		if acknowledgedBy != nil {
			conflict.AcknowledgedBy = acknowledgedBy
			conflict.AcknowledgedAt = &now
			conflict.ResolvedAt = &now
		}

		conflicts = append(conflicts, conflict)
	}

	return conflicts
}
