// Package validation is the deterministic rule layer downstream of
// extraction: it decides whether a Structured Record is actionable and
// produces an auditable completeness score.
//
// The package is the core value proposition of Refinery. Everything in it
// is a pure function over an already-normalized record — no I/O, no state,
// no calls back to the extraction collaborator — so every rule is
// reproducible and testable with hand-constructed records.
//
// Two layers, deliberately separate:
//   - essential checks gate usability (binary): Check
//   - category scorers rate quality (graded): Evaluate's breakdown
//
// A record that barely clears the essential thresholds is valid with a low
// score; judging semantic quality is the scorer's job, never the checker's.
package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/promptsmith/refinery/internal/record"
)

// Essential-field thresholds. Fixed policy, not derived from data.
const (
	// MinIntentLength is the minimum trimmed length, in characters, for
	// intent.purpose and intent.problem_being_solved.
	MinIntentLength = 10

	// MinRequirements is the minimum requirement count for a record to
	// be actionable.
	MinRequirements = 1
)

// Rejection reasons. These are part of the output contract — callers and
// tests match on the exact text.
const (
	ReasonNoIntent       = "No clear product/system intent"
	ReasonNoProblem      = "Problem statement missing or unclear"
	ReasonNoRequirements = "No actionable requirements identified"
)

// Check runs every essential-field rule against the record and returns
// all violations. An empty result means the record is structurally
// actionable.
//
// The rules are evaluated independently — violations are collected, not
// short-circuited — so a caller always sees the full list of reasons.
func Check(rec record.Record) []string {
	var reasons []string

	// Lengths are counted in characters, not bytes, so non-ASCII intents
	// are held to the same threshold.
	if utf8.RuneCountInString(strings.TrimSpace(rec.Intent.Purpose)) < MinIntentLength {
		reasons = append(reasons, ReasonNoIntent)
	}
	if utf8.RuneCountInString(strings.TrimSpace(rec.Intent.ProblemBeingSolved)) < MinIntentLength {
		reasons = append(reasons, ReasonNoProblem)
	}
	if len(rec.Requirements) < MinRequirements {
		reasons = append(reasons, ReasonNoRequirements)
	}

	return reasons
}
