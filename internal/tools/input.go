package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/promptsmith/refinery/internal/intake"
)

// AddInputTool handles the intake_add_input MCP tool.
type AddInputTool struct {
	store *intake.Store
}

// NewAddInputTool creates an AddInputTool with the intake store.
func NewAddInputTool(store *intake.Store) *AddInputTool {
	return &AddInputTool{store: store}
}

// Definition returns the MCP tool definition for intake_add_input.
func (t *AddInputTool) Definition() mcp.Tool {
	return mcp.NewTool("intake_add_input",
		mcp.WithDescription(
			"Stage one raw input in an intake session. Text inputs carry their content directly; "+
				"image and document inputs carry a file path or URL reference — Refinery never decodes "+
				"media, the reference is for YOU to read during extraction. Keep source labels "+
				"distinct (e.g. 'email from client', 'whiteboard photo') so conflicts can cite them.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("The intake session to stage into"),
		),
		mcp.WithString("modality",
			mcp.Required(),
			mcp.Description("Input medium: text, image, or document"),
		),
		mcp.WithString("content",
			mcp.Description("The raw text (required for text modality)"),
		),
		mcp.WithString("ref",
			mcp.Description("File path or URL (required for image/document modality)"),
		),
		mcp.WithString("source",
			mcp.Description("Where this input came from, used for conflict evidence attribution (default: the modality name)"),
		),
		mcp.WithString("note",
			mcp.Description("Optional processing note (e.g. 'low-resolution scan, table partially unreadable')"),
		),
	)
}

// Handle processes the intake_add_input tool call.
func (t *AddInputTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := req.GetString("session_id", "")
	if sessionID == "" {
		return mcp.NewToolResultError("'session_id' is required"), nil
	}
	modality := req.GetString("modality", "")
	if modality == "" {
		return mcp.NewToolResultError("'modality' is required: text, image, or document"), nil
	}

	id, err := t.store.AddInput(intake.AddInputParams{
		SessionID: sessionID,
		Modality:  intake.Modality(modality),
		Source:    req.GetString("source", ""),
		Content:   req.GetString("content", ""),
		Ref:       req.GetString("ref", ""),
		Note:      req.GetString("note", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Input staged (%s), ID: %d", modality, id)), nil
}

// ─── ListInputsTool ──────────────────────────────────────────────────────────

// ListInputsTool handles the intake_inputs MCP tool.
type ListInputsTool struct {
	store *intake.Store
}

// NewListInputsTool creates a ListInputsTool with the intake store.
func NewListInputsTool(store *intake.Store) *ListInputsTool {
	return &ListInputsTool{store: store}
}

// Definition returns the MCP tool definition for intake_inputs.
func (t *ListInputsTool) Definition() mcp.Tool {
	return mcp.NewTool("intake_inputs",
		mcp.WithDescription(
			"List a session's staged inputs in staging order, with source labels and modalities. "+
				"Read this before extracting: every requirement you mark 'confirmed' must be traceable "+
				"to one of these inputs, and contradictions BETWEEN inputs become conflicts with "+
				"evidence citing the source labels.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("The intake session to read"),
		),
	)
}

// Handle processes the intake_inputs tool call.
func (t *ListInputsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := req.GetString("session_id", "")
	if sessionID == "" {
		return mcp.NewToolResultError("'session_id' is required"), nil
	}

	inputs, err := t.store.ListInputs(sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	modalities, err := t.store.Modalities(sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(inputs) == 0 {
		return mcp.NewToolResultText("No inputs staged yet. Add some with intake_add_input."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Staged Inputs (%d)\n\n", len(inputs))

	var names []string
	for _, m := range modalities {
		names = append(names, string(m))
	}
	fmt.Fprintf(&sb, "**Modalities:** %s\n\n", strings.Join(names, ", "))

	for i, in := range inputs {
		fmt.Fprintf(&sb, "## %d. [%s] %s\n\n", i+1, in.Modality, in.Source)
		switch in.Modality {
		case intake.ModalityText:
			sb.WriteString(in.Content + "\n\n")
		default:
			fmt.Fprintf(&sb, "Reference: %s\n\n", in.Ref)
		}
		if in.Note != "" {
			fmt.Fprintf(&sb, "_Note: %s_\n\n", in.Note)
		}
	}

	return mcp.NewToolResultText(sb.String()), nil
}
