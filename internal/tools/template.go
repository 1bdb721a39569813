package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/promptsmith/refinery/internal/validation"
)

// TemplateTool handles the refine_template MCP tool. It documents the
// Structured Record shape and the fixed validation policy so the
// extraction collaborator knows exactly what to produce and how it will
// be judged.
type TemplateTool struct{}

// NewTemplateTool creates a TemplateTool.
func NewTemplateTool() *TemplateTool {
	return &TemplateTool{}
}

// Definition returns the MCP tool definition for registration.
func (t *TemplateTool) Definition() mcp.Tool {
	return mcp.NewTool("refine_template",
		mcp.WithDescription(
			"Get the Structured Record template and the validation policy: essential-field rules "+
				"(what makes a record VALID), category weights, and scoring formulas. "+
				"Call this BEFORE extracting, then shape your extraction to the template. "+
				"Status markers matter: 'confirmed' = explicitly stated in an input, "+
				"'inferred' = logically derived from context, 'missing' = identified but unknown. "+
				"Never invent information — document gaps as missing and inferences as assumptions, "+
				"and record every cross-input contradiction as a conflict with evidence.",
		),
	)
}

// recordTemplate is the target shape for extraction, mirroring
// record.Decode's contract.
const recordTemplate = `{
  "intent": {
    "purpose": "",
    "problem_being_solved": "",
    "domain": "",
    "confidence": "low | medium | high"
  },
  "requirements": [
    {
      "description": "",
      "status": "confirmed | inferred | missing"
    }
  ],
  "constraints": [
    {
      "kind": "",
      "value": "",
      "impact": ""
    }
  ],
  "deliverables": [
    ""
  ],
  "conflicts": [
    {
      "issue": "",
      "evidence": [
        { "source": "", "excerpt": "" }
      ],
      "impact": ""
    }
  ],
  "assumptions": [
    {
      "statement": "",
      "risk": ""
    }
  ]
}`

// Handle processes the refine_template tool call.
func (t *TemplateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	response := "# Structured Record Template\n\n" +
		codeBlock("json", recordTemplate) +
		"\n\n## Essential Fields (blocking — a violation makes the record INVALID)\n\n" +
		fmt.Sprintf(
			"| Field | Rule | Rejection reason |\n|---|---|---|\n"+
				"| intent.purpose | trimmed length >= %d | %s |\n"+
				"| intent.problem_being_solved | trimmed length >= %d | %s |\n"+
				"| requirements | count >= %d | %s |\n",
			validation.MinIntentLength, validation.ReasonNoIntent,
			validation.MinIntentLength, validation.ReasonNoProblem,
			validation.MinRequirements, validation.ReasonNoRequirements,
		) +
		"\n## Optional Fields (non-blocking but scored)\n\n" +
		"- constraints: budget, timeline, platform, technical limitations\n" +
		"- deliverables: specific outputs or artifacts\n" +
		"- assumptions: explicit assumptions made during extraction, with risk\n" +
		"\n## Completeness Scoring (weights sum to 1.00)\n\n" +
		fmt.Sprintf(
			"| Category | Weight | Formula |\n|---|---|---|\n"+
				"| intent | %.2f | mean of 4 presence indicators: purpose, problem, domain, confidence |\n"+
				"| requirements | %.2f | mean contribution: confirmed %.1f, inferred %.1f, missing %.1f |\n"+
				"| constraints | %.2f | min(1, count/%d) |\n"+
				"| deliverables | %.2f | min(1, count/%d) |\n"+
				"| no_conflicts | %.2f | max(0, 1 - %.2f x conflict count) |\n",
			validation.WeightIntent,
			validation.WeightRequirements,
			validation.ContributionConfirmed, validation.ContributionInferred, validation.ContributionMissing,
			validation.WeightConstraints, validation.ConstraintSaturation,
			validation.WeightDeliverables, validation.DeliverableSaturation,
			validation.WeightNoConflicts, validation.ConflictPenalty,
		) +
		"\nConflicts never make a record invalid — they only lower the no_conflicts sub-score. " +
		"Document every contradiction; never auto-resolve one."

	return mcp.NewToolResultText(response), nil
}
