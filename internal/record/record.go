// Package record defines the Structured Record — the normalized output of
// the extraction collaborator — and the boundary that turns raw JSON into it.
//
// The package has exactly two responsibilities:
//   - shape: the types below mirror the extraction contract field for field
//   - normalization: a record handed to the validation engine never carries
//     nil category slices; an absent category is an empty sequence
//
// No scoring or validation logic lives here. The engine consumes these types
// as already-normalized input and re-derives nothing.
package record

import "fmt"

// --- Confidence enum ---

// Confidence is the extraction collaborator's self-assessed certainty
// about the intent. Empty means the collaborator did not report one.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// validConfidences is the set of allowed confidence values.
// The empty string is allowed: confidence is an optional field.
var validConfidences = map[Confidence]bool{
	"":               true,
	ConfidenceLow:    true,
	ConfidenceMedium: true,
	ConfidenceHigh:   true,
}

// ValidateConfidence returns an error if the confidence is not recognized.
func ValidateConfidence(c Confidence) error {
	if !validConfidences[c] {
		return fmt.Errorf("invalid confidence %q: must be one of: low, medium, high (or absent)", c)
	}
	return nil
}

// --- Requirement status enum ---

// Status marks how a requirement was established by the extraction
// collaborator: explicitly stated, derived from context, or identified
// as a gap.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusInferred  Status = "inferred"
	StatusMissing   Status = "missing"
)

// validStatuses is the set of allowed requirement statuses.
var validStatuses = map[Status]bool{
	StatusConfirmed: true,
	StatusInferred:  true,
	StatusMissing:   true,
}

// ValidateStatus returns an error if the status is not recognized.
func ValidateStatus(s Status) error {
	if !validStatuses[s] {
		return fmt.Errorf("invalid requirement status %q: must be one of: confirmed, inferred, missing", s)
	}
	return nil
}

// --- Record components ---

// Intent captures what the user is trying to build and why.
// Purpose and ProblemBeingSolved are the essential fields; Domain and
// Confidence are optional enrichment (empty string = absent).
type Intent struct {
	Purpose            string     `json:"purpose"`
	ProblemBeingSolved string     `json:"problem_being_solved"`
	Domain             string     `json:"domain,omitempty"`
	Confidence         Confidence `json:"confidence,omitempty"`
}

// Requirement is a single functional need with its extraction status.
type Requirement struct {
	Description string `json:"description"`
	Status      Status `json:"status"`
}

// Constraint is a limitation (budget, timeline, platform, technical)
// with an optional impact statement.
type Constraint struct {
	Kind   string `json:"kind"`
	Value  string `json:"value"`
	Impact string `json:"impact,omitempty"`
}

// Evidence is one sourced excerpt backing a conflict.
type Evidence struct {
	Source  string `json:"source"`
	Excerpt string `json:"excerpt"`
}

// Conflict documents a contradiction between extracted data points.
// Conflicts are detected upstream; the engine only consumes them as a
// magnitude signal and never resolves them.
type Conflict struct {
	Issue    string     `json:"issue"`
	Evidence []Evidence `json:"evidence"`
	Impact   string     `json:"impact"`
}

// Assumption is something the collaborator inferred without explicit
// support, with an optional risk statement.
type Assumption struct {
	Statement string `json:"statement"`
	Risk      string `json:"risk,omitempty"`
}

// Record is the Structured Record the validation engine evaluates.
// It is produced once per refinement request and treated as immutable.
type Record struct {
	Intent       Intent        `json:"intent"`
	Requirements []Requirement `json:"requirements"`
	Constraints  []Constraint  `json:"constraints"`
	Deliverables []string      `json:"deliverables"`
	Conflicts    []Conflict    `json:"conflicts"`
	Assumptions  []Assumption  `json:"assumptions"`
}

// Normalize enforces the schema invariant that category sequences are
// never nil: an absent category becomes an empty slice. This runs once
// at the boundary so scoring logic never branches on presence.
func (r *Record) Normalize() {
	if r.Requirements == nil {
		r.Requirements = []Requirement{}
	}
	if r.Constraints == nil {
		r.Constraints = []Constraint{}
	}
	if r.Deliverables == nil {
		r.Deliverables = []string{}
	}
	if r.Conflicts == nil {
		r.Conflicts = []Conflict{}
	}
	if r.Assumptions == nil {
		r.Assumptions = []Assumption{}
	}
	for i := range r.Conflicts {
		if r.Conflicts[i].Evidence == nil {
			r.Conflicts[i].Evidence = []Evidence{}
		}
	}
}
