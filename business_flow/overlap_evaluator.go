// Package businessflow contains the core business logic and use cases for conflict detection workflows
package businessflow

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sponsorly/branddesk/models"
	"github.com/sponsorly/branddesk/utils"
)

// CandidateAsset is the deliverable being evaluated against existing
// rules, not yet necessarily persisted. Its UUID is generated before
// detection so conflict rows can reference a candidate whose creation is
// later blocked.
type CandidateAsset struct {
	UUID        uuid.UUID
	DealID      uint
	Title       string
	Category    *string
	Platform    string
	Region      *string
	ScheduledAt *time.Time
}

// HasSchedule reports whether the candidate carries a scheduled date.
// Without one, detection is skipped entirely: no date means nothing to
// compare, a pass-through rather than a failure.
func (c *CandidateAsset) HasSchedule() bool {
	return c.ScheduledAt != nil && !c.ScheduledAt.IsZero()
}

// EvaluateOverlap checks platform, time-window, region, and category
// overlap between a candidate and one rule. It short-circuits on the
// first failing dimension and returns nil when any dimension rules the
// match out. A non-nil result carries the full overlap facts.
//
// Region is only a disqualifying filter when the candidate declares one;
// an absent region is non-restrictive, favoring false positives over
// missed violations.
func EvaluateOverlap(rule *models.ExclusivityRule, candidate *CandidateAsset) *models.ConflictOverlap {
	if !candidate.HasSchedule() {
		return nil
	}

	if !rule.CoversPlatform(candidate.Platform) {
		return nil
	}

	if !rule.ContainsDate(*candidate.ScheduledAt) {
		return nil
	}

	if candidate.Region != nil && strings.TrimSpace(*candidate.Region) != "" {
		if !rule.CoversRegion(*candidate.Region) {
			return nil
		}
	}

	if !CategoryMatches(rule.Scope, rule.CategoryPath, candidate.Category) {
		return nil
	}

	return &models.ConflictOverlap{
		Version:           models.ConflictOverlapVersion,
		RuleID:            rule.ID,
		RulePath:          strings.TrimSpace(rule.CategoryPath),
		CandidateCategory: strings.TrimSpace(*candidate.Category),
		CategoryRelation:  CategoryRelation(rule.CategoryPath, *candidate.Category),
		Platform:          candidate.Platform,
		WindowStart:       rule.StartDate,
		WindowEnd:         rule.EndDate,
		ScheduledAt:       *candidate.ScheduledAt,
		DetectedAt:        utils.UTCNow(),
	}
}

// EvaluateRules runs the evaluator over a full rule set and collects the
// overlap facts, pairing each with the rule that produced it.
func EvaluateRules(rules []*models.ExclusivityRule, candidate *CandidateAsset) []RuleOverlap {
	var overlaps []RuleOverlap
	for _, rule := range rules {
		if facts := EvaluateOverlap(rule, candidate); facts != nil {
			overlaps = append(overlaps, RuleOverlap{Rule: rule, Facts: *facts})
		}
	}
	return overlaps
}

// RuleOverlap pairs one matched rule with the facts describing the match
type RuleOverlap struct {
	Rule  *models.ExclusivityRule
	Facts models.ConflictOverlap
}
