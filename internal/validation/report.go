package validation

import (
	"math"

	"github.com/promptsmith/refinery/internal/record"
)

// CategoryScore is one row of the report breakdown: the category's
// sub-score in [0,1] and its weighted contribution to the total.
type CategoryScore struct {
	Score        float64 `json:"score"`
	Contribution float64 `json:"contribution"`
}

// Report is the engine's output for one record: the validity verdict,
// the reasons behind a rejection, and the completeness breakdown.
// It is constructed once per Evaluate call and never mutated after.
type Report struct {
	IsValid           bool                     `json:"is_valid"`
	RejectionReasons  []string                 `json:"rejection_reasons"`
	CompletenessScore float64                  `json:"completeness_score"`
	Breakdown         map[string]CategoryScore `json:"breakdown"`
}

// RoundedScore returns the completeness score rounded to two decimal
// places for reporting. The Report itself carries full precision so
// downstream composition never accumulates rounding error.
func (r Report) RoundedScore() float64 {
	return math.Round(r.CompletenessScore*100) / 100
}

// Evaluate runs the full validation pass over one Structured Record:
// essential checks, all five category scorers, and the weighted
// aggregation. It is a pure function — same record in, same report out —
// and safe to call concurrently.
//
// The completeness score is computed even for invalid records; it tells
// the caller how close a rejected record was to being usable. Conversely,
// conflicts depress the score but never flip validity.
func Evaluate(rec record.Record) Report {
	// The record arrives normalized (record.Decode) and is treated as
	// immutable here. Nil category slices from hand-constructed records
	// are still safe: every scorer is total over its slice.
	reasons := Check(rec)
	if reasons == nil {
		reasons = []string{}
	}

	subScores := map[string]float64{
		CategoryIntent:       IntentScore(rec.Intent),
		CategoryRequirements: RequirementsScore(rec.Requirements),
		CategoryConstraints:  ConstraintsScore(rec.Constraints),
		CategoryDeliverables: DeliverablesScore(rec.Deliverables),
		CategoryNoConflicts:  ConflictFreedomScore(rec.Conflicts),
	}
	weights := map[string]float64{
		CategoryIntent:       WeightIntent,
		CategoryRequirements: WeightRequirements,
		CategoryConstraints:  WeightConstraints,
		CategoryDeliverables: WeightDeliverables,
		CategoryNoConflicts:  WeightNoConflicts,
	}

	breakdown := make(map[string]CategoryScore, len(subScores))
	total := 0.0
	for _, category := range Categories() {
		score := subScores[category]
		contribution := score * weights[category]
		breakdown[category] = CategoryScore{Score: score, Contribution: contribution}
		total += contribution
	}

	return Report{
		IsValid:           len(reasons) == 0,
		RejectionReasons:  reasons,
		CompletenessScore: total,
		Breakdown:         breakdown,
	}
}
