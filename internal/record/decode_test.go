package record

import (
	"strings"
	"testing"
)

// minimalRecord is the smallest document satisfying the decode contract.
const minimalRecord = `{
	"intent": {"purpose": "Build a task manager", "problem_being_solved": "Teams lose track of work"},
	"requirements": [{"description": "Add tasks", "status": "confirmed"}]
}`

// --- Happy path ---

func TestDecode_MinimalRecord(t *testing.T) {
	rec, err := Decode([]byte(minimalRecord))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if rec.Intent.Purpose != "Build a task manager" {
		t.Errorf("Purpose = %q", rec.Intent.Purpose)
	}
	if len(rec.Requirements) != 1 || rec.Requirements[0].Status != StatusConfirmed {
		t.Errorf("Requirements = %+v", rec.Requirements)
	}

	// Optional categories are normalized, not rejected.
	if rec.Constraints == nil || rec.Deliverables == nil || rec.Conflicts == nil || rec.Assumptions == nil {
		t.Error("optional categories should be normalized to empty slices")
	}
}

func TestDecode_FullRecord(t *testing.T) {
	doc := `{
		"intent": {
			"purpose": "Build a food delivery mobile app",
			"problem_being_solved": "Users struggle to find nearby restaurants quickly",
			"domain": "Food delivery",
			"confidence": "high"
		},
		"requirements": [
			{"description": "Restaurant search", "status": "confirmed"},
			{"description": "Push notifications", "status": "inferred"},
			{"description": "Payment provider", "status": "missing"}
		],
		"constraints": [{"kind": "budget", "value": "$50k", "impact": "limits scope to one platform"}],
		"deliverables": ["iOS app", "REST API"],
		"conflicts": [{
			"issue": "Text says BookMyShow but image shows Swiggy",
			"evidence": [
				{"source": "text", "excerpt": "like BookMyShow"},
				{"source": "image", "excerpt": "food delivery home screen"}
			],
			"impact": "domain is ambiguous"
		}],
		"assumptions": [{"statement": "Mobile-first", "risk": "desktop users excluded"}]
	}`

	rec, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if rec.Intent.Confidence != ConfidenceHigh {
		t.Errorf("Confidence = %q", rec.Intent.Confidence)
	}
	if len(rec.Requirements) != 3 {
		t.Errorf("want 3 requirements, got %d", len(rec.Requirements))
	}
	if len(rec.Conflicts) != 1 || len(rec.Conflicts[0].Evidence) != 2 {
		t.Errorf("Conflicts = %+v", rec.Conflicts)
	}
	if rec.Constraints[0].Kind != "budget" || rec.Constraints[0].Value != "$50k" {
		t.Errorf("Constraints = %+v", rec.Constraints)
	}
}

func TestDecode_UnknownFieldsTolerated(t *testing.T) {
	// The collaborator may attach annotations (e.g. per-requirement
	// source attribution) that the engine has no opinion on.
	doc := `{
		"intent": {"purpose": "Build a task manager", "problem_being_solved": "Teams lose track of work"},
		"requirements": [{"description": "Add tasks", "status": "confirmed", "source": "text"}],
		"processing_metadata": {"input_modalities": ["text"]}
	}`

	if _, err := Decode([]byte(doc)); err != nil {
		t.Fatalf("Decode should tolerate unknown fields, got: %v", err)
	}
}

// --- Structural errors ---

func TestDecode_StructuralErrors(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantField string
	}{
		{"not JSON", `not a record`, ""},
		{"root is an array", `[]`, ""},
		{"missing intent", `{"requirements": []}`, "intent"},
		{"null intent", `{"intent": null, "requirements": []}`, "intent"},
		{
			"missing requirements",
			`{"intent": {"purpose": "p", "problem_being_solved": "q"}}`,
			"requirements",
		},
		{
			"requirements wrong type",
			`{"intent": {"purpose": "p", "problem_being_solved": "q"}, "requirements": "add tasks"}`,
			"requirements",
		},
		{
			"purpose wrong type",
			`{"intent": {"purpose": 42, "problem_being_solved": "q"}, "requirements": []}`,
			"intent.purpose",
		},
		{
			"bad status",
			`{"intent": {"purpose": "p", "problem_being_solved": "q"}, "requirements": [{"description": "d", "status": "maybe"}]}`,
			"requirements[0].status",
		},
		{
			"bad confidence",
			`{"intent": {"purpose": "p", "problem_being_solved": "q", "confidence": "certain"}, "requirements": []}`,
			"intent.confidence",
		},
		{
			"deliverables wrong element type",
			`{"intent": {"purpose": "p", "problem_being_solved": "q"}, "requirements": [], "deliverables": [{"item": "app"}]}`,
			"deliverables",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			if err == nil {
				t.Fatal("Decode should fail")
			}
			if !IsStructural(err) {
				t.Fatalf("error should be structural, got %T: %v", err, err)
			}
			if tt.wantField != "" && !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("error should name field %q, got: %v", tt.wantField, err)
			}
		})
	}
}

func TestDecode_EmptyRequirementsIsNotStructural(t *testing.T) {
	// Zero requirements is a semantic problem (the checker rejects it),
	// never a structural one: the container is present and well-typed.
	doc := `{
		"intent": {"purpose": "Build a task manager", "problem_being_solved": "Teams lose track of work"},
		"requirements": []
	}`

	rec, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(rec.Requirements) != 0 {
		t.Errorf("want 0 requirements, got %d", len(rec.Requirements))
	}
}

func TestIsStructural_OtherErrors(t *testing.T) {
	if IsStructural(nil) {
		t.Error("nil is not structural")
	}
	if IsStructural(errTest) {
		t.Error("plain errors are not structural")
	}
}

var errTest = &testError{}

type testError struct{}

func (*testError) Error() string { return "test error" }
