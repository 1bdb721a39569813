package record

import (
	"encoding/json"
	"errors"
	"fmt"
)

// StructuralError reports a record that does not conform to the schema:
// a missing required container, a wrong value type, or an unrecognized
// enum value. It is fatal to the call that supplied the record — the
// engine never partially scores a malformed record — but local to that
// call: other evaluations are unaffected.
//
// A StructuralError is distinct from a semantic rejection. A well-formed
// record that fails essential checks produces a normal Report with
// IsValid=false, never an error.
type StructuralError struct {
	Field  string // JSON path of the offending field, or "" for the root
	Reason string
}

func (e *StructuralError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("structural error: %s", e.Reason)
	}
	return fmt.Sprintf("structural error at %q: %s", e.Field, e.Reason)
}

// IsStructural reports whether err is (or wraps) a StructuralError.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}

// wire mirrors Record with pointers on the required containers so that
// absence can be told apart from emptiness. The optional categories
// decode directly — absence there is normalized, not rejected.
type wire struct {
	Intent       *Intent        `json:"intent"`
	Requirements *[]Requirement `json:"requirements"`
	Constraints  []Constraint   `json:"constraints"`
	Deliverables []string       `json:"deliverables"`
	Conflicts    []Conflict     `json:"conflicts"`
	Assumptions  []Assumption   `json:"assumptions"`
}

// Decode parses a raw JSON document from the extraction collaborator
// into a normalized Record.
//
// Contract:
//   - the document must be a JSON object
//   - `intent` and `requirements` are required containers; omitting them
//     (or sending null) is a structural error
//   - `constraints`, `deliverables`, `conflicts`, `assumptions` may be
//     absent and are normalized to empty sequences
//   - known fields must carry the documented types; enum fields must
//     carry recognized values
//   - unknown fields are ignored (tolerant reader — the collaborator may
//     attach extra annotations the engine has no opinion on)
//
// Every violation is reported as a *StructuralError so callers can
// distinguish malformed input from a semantic rejection.
func Decode(data []byte) (Record, error) {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return Record{}, structuralFromJSON(err)
	}

	if w.Intent == nil {
		return Record{}, &StructuralError{Field: "intent", Reason: "required container is missing or null"}
	}
	if w.Requirements == nil {
		return Record{}, &StructuralError{Field: "requirements", Reason: "required container is missing or null"}
	}

	if err := ValidateConfidence(w.Intent.Confidence); err != nil {
		return Record{}, &StructuralError{Field: "intent.confidence", Reason: err.Error()}
	}
	for i, req := range *w.Requirements {
		if err := ValidateStatus(req.Status); err != nil {
			return Record{}, &StructuralError{
				Field:  fmt.Sprintf("requirements[%d].status", i),
				Reason: err.Error(),
			}
		}
	}

	rec := Record{
		Intent:       *w.Intent,
		Requirements: *w.Requirements,
		Constraints:  w.Constraints,
		Deliverables: w.Deliverables,
		Conflicts:    w.Conflicts,
		Assumptions:  w.Assumptions,
	}
	rec.Normalize()
	return rec, nil
}

// structuralFromJSON converts encoding/json failures into StructuralError,
// preserving the field path when the decoder knows it.
func structuralFromJSON(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &StructuralError{
			Field:  typeErr.Field,
			Reason: fmt.Sprintf("expected %s, got JSON %s", typeErr.Type, typeErr.Value),
		}
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &StructuralError{Reason: fmt.Sprintf("invalid JSON at offset %d: %v", syntaxErr.Offset, syntaxErr)}
	}
	return &StructuralError{Reason: err.Error()}
}
