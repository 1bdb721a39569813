package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/promptsmith/refinery/internal/record"
	"github.com/promptsmith/refinery/internal/templates"
	"github.com/promptsmith/refinery/internal/validation"
)

// EvaluateTool handles the refine_evaluate MCP tool — the deterministic
// core of Refinery. The extraction collaborator (the calling model)
// submits one Structured Record as JSON; the tool returns the validation
// report and, for valid records, the generated text prompt.
type EvaluateTool struct {
	renderer templates.Renderer
}

// NewEvaluateTool creates an EvaluateTool with its renderer.
func NewEvaluateTool(renderer templates.Renderer) *EvaluateTool {
	return &EvaluateTool{renderer: renderer}
}

// Definition returns the MCP tool definition for registration.
func (t *EvaluateTool) Definition() mcp.Tool {
	return mcp.NewTool("refine_evaluate",
		mcp.WithDescription(
			"Validate and score a Structured Record extracted from the user's raw inputs. "+
				"YOU perform the extraction (read staged inputs with intake_inputs, identify intent, "+
				"requirements, constraints, deliverables, conflicts, and assumptions), then submit the "+
				"record here as JSON matching the refine_template shape. "+
				"The tool applies fixed, deterministic rules: essential-field checks decide validity, "+
				"five weighted category scores produce a completeness score in [0,1]. "+
				"An INVALID verdict is a normal outcome, not an error — present the rejection reasons "+
				"to the user and refine the inputs. Conflicts never block validity; they only lower the score.",
		),
		mcp.WithString("record_json",
			mcp.Required(),
			mcp.Description(
				"The Structured Record as a JSON object. Required containers: intent "+
					"{purpose, problem_being_solved, domain?, confidence?} and requirements "+
					"[{description, status: confirmed|inferred|missing}]. Optional containers "+
					"(default to empty): constraints [{kind, value, impact?}], deliverables [string], "+
					"conflicts [{issue, evidence: [{source, excerpt}], impact}], "+
					"assumptions [{statement, risk?}]. Call refine_template for the full shape.",
			),
		),
	)
}

// Handle processes the refine_evaluate tool call.
func (t *EvaluateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recordJSON := req.GetString("record_json", "")
	if recordJSON == "" {
		return mcp.NewToolResultError("'record_json' is required — submit the extracted Structured Record as JSON"), nil
	}

	rec, err := record.Decode([]byte(recordJSON))
	if err != nil {
		// Structural errors are fatal to this call but still expected
		// input, so they come back as a tool error result — never as a
		// transport failure.
		var se *record.StructuralError
		if errors.As(err, &se) {
			return mcp.NewToolResultError(fmt.Sprintf(
				"%v\n\nThe record does not conform to the schema. Call refine_template for the expected shape and resubmit.",
				se,
			)), nil
		}
		return nil, fmt.Errorf("decoding record: %w", err)
	}

	report := validation.Evaluate(rec)

	reportMD, err := t.renderer.Render(
		templates.ValidationReport,
		templates.NewValidationReportData(report),
	)
	if err != nil {
		return nil, fmt.Errorf("rendering report: %w", err)
	}

	response := reportMD

	if report.IsValid {
		prompt, err := t.renderer.Render(
			templates.RefinedPrompt,
			templates.NewRefinedPromptData(rec),
		)
		if err != nil {
			return nil, fmt.Errorf("rendering refined prompt: %w", err)
		}
		response += "\n## Generated Text Prompt\n\n" + prompt
	} else {
		response += "\nNo text prompt is generated for an invalid record. " +
			"Address the rejection reasons with the user and resubmit.\n"
	}

	response += "\n## Report JSON\n\n" + codeBlock("json", marshalReport(report))

	return mcp.NewToolResultText(response), nil
}

// marshalReport serializes a report with the completeness score rounded
// to two decimals — this is the reporting boundary; full precision stays
// inside the engine.
func marshalReport(rep validation.Report) string {
	rounded := rep
	rounded.CompletenessScore = rep.RoundedScore()

	data, err := json.MarshalIndent(rounded, "", "  ")
	if err != nil {
		// A Report contains only marshalable fields; this cannot happen
		// for well-formed reports.
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(data)
}
