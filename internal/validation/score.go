package validation

import (
	"strings"

	"github.com/promptsmith/refinery/internal/record"
)

// Category names as they appear in the report breakdown.
const (
	CategoryIntent       = "intent"
	CategoryRequirements = "requirements"
	CategoryConstraints  = "constraints"
	CategoryDeliverables = "deliverables"
	CategoryNoConflicts  = "no_conflicts"
)

// Completeness weights per category. They sum to exactly 1.00, so the
// aggregate score is bounded to [0,1] by construction.
const (
	WeightIntent       = 0.30
	WeightRequirements = 0.40
	WeightConstraints  = 0.15
	WeightDeliverables = 0.10
	WeightNoConflicts  = 0.05
)

// Per-status requirement contributions.
const (
	ContributionConfirmed = 1.0
	ContributionInferred  = 0.6
	ContributionMissing   = 0.0
)

// Saturation denominators: scores stop improving past these counts.
// Constraints and deliverables are valuable but not required, so a
// handful is as good as many.
const (
	ConstraintSaturation  = 3
	DeliverableSaturation = 2
)

// ConflictPenalty is the sub-score cost of each documented conflict.
// Conflicts depress the conflict-freedom category only; they never
// reject a record on their own.
const ConflictPenalty = 0.25

// Categories lists the breakdown categories in reporting order.
func Categories() []string {
	return []string{
		CategoryIntent,
		CategoryRequirements,
		CategoryConstraints,
		CategoryDeliverables,
		CategoryNoConflicts,
	}
}

// IntentScore averages four equal-weight presence indicators: purpose,
// problem statement, domain, and confidence. Presence means non-empty
// after trimming — semantic quality is out of scope here.
func IntentScore(in record.Intent) float64 {
	present := 0
	if strings.TrimSpace(in.Purpose) != "" {
		present++
	}
	if strings.TrimSpace(in.ProblemBeingSolved) != "" {
		present++
	}
	if strings.TrimSpace(in.Domain) != "" {
		present++
	}
	if in.Confidence != "" {
		present++
	}
	return float64(present) / 4.0
}

// RequirementsScore is the weighted fill ratio across all requirements:
// confirmed 1.0, inferred 0.6, missing 0.0, averaged over the total
// count. Zero requirements score zero.
func RequirementsScore(reqs []record.Requirement) float64 {
	if len(reqs) == 0 {
		return 0
	}
	total := 0.0
	for _, r := range reqs {
		switch r.Status {
		case record.StatusConfirmed:
			total += ContributionConfirmed
		case record.StatusInferred:
			total += ContributionInferred
		default:
			// missing, or anything unrecognized that slipped past the
			// decode boundary, contributes nothing
			total += ContributionMissing
		}
	}
	return clamp01(total / float64(len(reqs)))
}

// ConstraintsScore saturates at ConstraintSaturation items.
func ConstraintsScore(cs []record.Constraint) float64 {
	return clamp01(float64(len(cs)) / float64(ConstraintSaturation))
}

// DeliverablesScore saturates at DeliverableSaturation items.
func DeliverablesScore(ds []string) float64 {
	return clamp01(float64(len(ds)) / float64(DeliverableSaturation))
}

// ConflictFreedomScore starts at 1.0 and loses ConflictPenalty per
// documented conflict, floored at zero.
func ConflictFreedomScore(conflicts []record.Conflict) float64 {
	return clamp01(1.0 - ConflictPenalty*float64(len(conflicts)))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
