package validation

import (
	"reflect"
	"testing"

	"github.com/promptsmith/refinery/internal/record"
)

// --- Evaluate: verdict and reasons ---

func TestEvaluate_ValidRecord(t *testing.T) {
	rep := Evaluate(actionableRecord())

	if !rep.IsValid {
		t.Errorf("want valid, got reasons %v", rep.RejectionReasons)
	}
	if len(rep.RejectionReasons) != 0 {
		t.Errorf("valid report must carry no reasons, got %v", rep.RejectionReasons)
	}
	if rep.RejectionReasons == nil {
		t.Error("reasons should be an empty slice, not nil")
	}
}

func TestEvaluate_ValidIffNoReasons(t *testing.T) {
	records := []record.Record{
		{},
		actionableRecord(),
		{Intent: record.Intent{Purpose: "Build a food delivery mobile app"}},
		{Requirements: []record.Requirement{{Description: "r", Status: record.StatusConfirmed}}},
	}

	for i, rec := range records {
		rep := Evaluate(rec)
		if rep.IsValid != (len(rep.RejectionReasons) == 0) {
			t.Errorf("record %d: IsValid=%v with %d reasons", i, rep.IsValid, len(rep.RejectionReasons))
		}
	}
}

func TestEvaluate_ShortPurposeAlwaysRejected(t *testing.T) {
	// Independent of everything else in the record.
	rec := actionableRecord()
	rec.Intent.Purpose = "app"
	rec.Intent.Domain = "Food delivery"
	rec.Intent.Confidence = record.ConfidenceHigh
	rec.Constraints = []record.Constraint{{Kind: "budget", Value: "$50k"}}
	rec.Deliverables = []string{"iOS app", "API"}

	rep := Evaluate(rec)
	if rep.IsValid {
		t.Fatal("short purpose must reject the record")
	}
	if !containsReason(rep.RejectionReasons, ReasonNoIntent) {
		t.Errorf("want %q, got %v", ReasonNoIntent, rep.RejectionReasons)
	}
}

func TestEvaluate_ZeroRequirementsAlwaysInvalid(t *testing.T) {
	rec := actionableRecord()
	rec.Requirements = []record.Requirement{}

	rep := Evaluate(rec)
	if rep.IsValid {
		t.Error("zero requirements must reject the record regardless of intent quality")
	}
}

// --- Evaluate: score and breakdown ---

func TestEvaluate_ScoreInUnitInterval(t *testing.T) {
	records := []record.Record{
		{},
		actionableRecord(),
		{
			Intent: record.Intent{
				Purpose:            "Build a food delivery mobile app",
				ProblemBeingSolved: "Users struggle to find nearby restaurants quickly",
				Domain:             "Food delivery",
				Confidence:         record.ConfidenceHigh,
			},
			Requirements: []record.Requirement{
				{Description: "r1", Status: record.StatusConfirmed},
				{Description: "r2", Status: record.StatusConfirmed},
			},
			Constraints:  make([]record.Constraint, 5),
			Deliverables: make([]string, 5),
		},
		{Conflicts: make([]record.Conflict, 50)},
	}

	for i, rec := range records {
		rep := Evaluate(rec)
		if rep.CompletenessScore < 0 || rep.CompletenessScore > 1 {
			t.Errorf("record %d: score %v out of [0,1]", i, rep.CompletenessScore)
		}
	}
}

func TestEvaluate_ScoreComputedForInvalidRecords(t *testing.T) {
	// Diagnostic value: an invalid record still shows how close it was.
	rec := record.Record{
		Intent: record.Intent{Purpose: "", ProblemBeingSolved: "Users lose track of their tasks"},
		Requirements: []record.Requirement{
			{Description: "Add tasks", Status: record.StatusConfirmed},
		},
		Deliverables: []string{"Web app"},
	}

	rep := Evaluate(rec)
	if rep.IsValid {
		t.Fatal("record should be invalid")
	}
	if rep.CompletenessScore <= 0 {
		t.Errorf("invalid record with partial content should score > 0, got %v", rep.CompletenessScore)
	}
	if len(rep.Breakdown) != 5 {
		t.Errorf("breakdown must always carry all 5 categories, got %d", len(rep.Breakdown))
	}
}

func TestEvaluate_BreakdownContributions(t *testing.T) {
	rep := Evaluate(actionableRecord())

	total := 0.0
	for _, category := range Categories() {
		cs, ok := rep.Breakdown[category]
		if !ok {
			t.Fatalf("breakdown missing category %q", category)
		}
		if cs.Score < 0 || cs.Score > 1 {
			t.Errorf("%s: sub-score %v out of [0,1]", category, cs.Score)
		}
		total += cs.Contribution
	}
	if !almostEqual(total, rep.CompletenessScore) {
		t.Errorf("contributions sum to %v, score is %v", total, rep.CompletenessScore)
	}
}

func TestEvaluate_AddingConfirmedRequirementNeverDecreasesScore(t *testing.T) {
	rec := record.Record{
		Intent: record.Intent{
			Purpose:            "Build a food delivery mobile app",
			ProblemBeingSolved: "Users struggle to find nearby restaurants quickly",
		},
	}

	prev := Evaluate(rec).CompletenessScore
	for i := 0; i < 10; i++ {
		rec.Requirements = append(rec.Requirements, record.Requirement{
			Description: "requirement",
			Status:      record.StatusConfirmed,
		})
		score := Evaluate(rec).CompletenessScore
		if score < prev-epsilon {
			t.Fatalf("adding confirmed requirement #%d decreased score: %v -> %v", i+1, prev, score)
		}
		prev = score
	}
}

func TestEvaluate_ConflictPenaltyIsExact(t *testing.T) {
	rec := actionableRecord()

	prev := Evaluate(rec)
	if !prev.IsValid {
		t.Fatal("baseline record should be valid")
	}

	// Each added conflict costs exactly weight × penalty until the
	// conflict-freedom contribution hits its floor of zero.
	perConflict := WeightNoConflicts * ConflictPenalty // 0.0125
	for i := 1; i <= 6; i++ {
		rec.Conflicts = append(rec.Conflicts, record.Conflict{Issue: "contradiction"})
		rep := Evaluate(rec)

		if rep.CompletenessScore > prev.CompletenessScore+epsilon {
			t.Fatalf("conflict #%d increased score: %v -> %v", i, prev.CompletenessScore, rep.CompletenessScore)
		}

		wantDelta := perConflict
		if i > 4 {
			wantDelta = 0 // floored: 4 conflicts already zero the sub-score
		}
		gotDelta := prev.CompletenessScore - rep.CompletenessScore
		if !almostEqual(gotDelta, wantDelta) {
			t.Errorf("conflict #%d: delta %v, want %v", i, gotDelta, wantDelta)
		}

		// Conflicts never block validity.
		if !rep.IsValid {
			t.Errorf("conflict #%d flipped validity", i)
		}
		prev = rep
	}
}

// --- Spec scenarios ---

func TestEvaluate_FoodDeliveryScenario(t *testing.T) {
	rec := record.Record{
		Intent: record.Intent{
			Purpose:            "Build a food delivery mobile app",
			ProblemBeingSolved: "Users struggle to find nearby restaurants quickly",
		},
		Requirements: []record.Requirement{
			{Description: "Restaurant search", Status: record.StatusConfirmed},
			{Description: "Order placement", Status: record.StatusConfirmed},
		},
	}

	rep := Evaluate(rec)
	if !rep.IsValid {
		t.Fatalf("want valid, got %v", rep.RejectionReasons)
	}
	// Domain and confidence absent: 2 of 4 intent indicators.
	if got := rep.Breakdown[CategoryIntent].Score; !almostEqual(got, 0.5) {
		t.Errorf("intent sub-score = %v, want 0.5", got)
	}
	if got := rep.Breakdown[CategoryRequirements].Score; !almostEqual(got, 1.0) {
		t.Errorf("requirements sub-score = %v, want 1.0", got)
	}
}

func TestEvaluate_ConflictHeavyScenario(t *testing.T) {
	// 8 requirements, 3 conflicts, 2 constraints: conflicts depress one
	// category but the record stays valid.
	rec := record.Record{
		Intent: record.Intent{
			Purpose:            "Build a food delivery mobile app",
			ProblemBeingSolved: "Users struggle to find nearby restaurants quickly",
		},
	}
	for i := 0; i < 8; i++ {
		rec.Requirements = append(rec.Requirements, record.Requirement{
			Description: "requirement", Status: record.StatusConfirmed,
		})
	}
	rec.Conflicts = make([]record.Conflict, 3)
	rec.Constraints = make([]record.Constraint, 2)

	rep := Evaluate(rec)
	if !rep.IsValid {
		t.Fatalf("conflicts must not block validity, got %v", rep.RejectionReasons)
	}
	cf := rep.Breakdown[CategoryNoConflicts]
	if !almostEqual(cf.Score, 0.25) {
		t.Errorf("conflict-freedom sub-score = %v, want 0.25", cf.Score)
	}
	if !almostEqual(cf.Contribution, 0.0125) {
		t.Errorf("conflict-freedom contribution = %v, want 0.0125", cf.Contribution)
	}
}

// --- Purity ---

func TestEvaluate_Idempotent(t *testing.T) {
	rec := record.Record{
		Intent: record.Intent{
			Purpose:            "Build a food delivery mobile app",
			ProblemBeingSolved: "Users struggle to find nearby restaurants quickly",
			Domain:             "Food delivery",
		},
		Requirements: []record.Requirement{
			{Description: "Restaurant search", Status: record.StatusConfirmed},
			{Description: "Push notifications", Status: record.StatusInferred},
		},
		Constraints: []record.Constraint{{Kind: "timeline", Value: "3 months"}},
		Conflicts:   []record.Conflict{{Issue: "contradiction"}},
	}

	first := Evaluate(rec)
	second := Evaluate(rec)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Evaluate is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

// --- Rounding ---

func TestRoundedScore(t *testing.T) {
	tests := []struct {
		raw  float64
		want float64
	}{
		{0.0, 0.0},
		{0.125, 0.13}, // round half away from zero at the reporting boundary
		{0.6749999, 0.67},
		{1.0, 1.0},
	}

	for _, tt := range tests {
		rep := Report{CompletenessScore: tt.raw}
		if got := rep.RoundedScore(); !almostEqual(got, tt.want) {
			t.Errorf("RoundedScore(%v) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
