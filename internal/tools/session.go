package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/promptsmith/refinery/internal/intake"
)

// StartSessionTool handles the intake_start MCP tool.
type StartSessionTool struct {
	store *intake.Store
}

// NewStartSessionTool creates a StartSessionTool with the intake store.
func NewStartSessionTool(store *intake.Store) *StartSessionTool {
	return &StartSessionTool{store: store}
}

// Definition returns the MCP tool definition for intake_start.
func (t *StartSessionTool) Definition() mcp.Tool {
	return mcp.NewTool("intake_start",
		mcp.WithDescription(
			"Start an intake session for one refinement request. Stage the user's raw inputs "+
				"(text, image references, document references) with intake_add_input, then read them "+
				"back with intake_inputs when you are ready to extract a Structured Record.",
		),
		mcp.WithString("title",
			mcp.Description("Short label for the refinement request (e.g. 'food delivery app idea')"),
		),
	)
}

// Handle processes the intake_start tool call.
func (t *StartSessionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")

	sess, err := t.store.StartSession(title)
	if err != nil {
		return nil, fmt.Errorf("starting session: %w", err)
	}

	response := fmt.Sprintf(
		"Intake session started: %q\nSession ID: %s\n\n"+
			"Stage inputs with intake_add_input (modality: text, image, or document), "+
			"then call intake_inputs to read everything back for extraction.",
		sess.Title, sess.ID,
	)
	return mcp.NewToolResultText(response), nil
}

// ─── EndSessionTool ──────────────────────────────────────────────────────────

// EndSessionTool handles the intake_end MCP tool.
type EndSessionTool struct {
	store *intake.Store
}

// NewEndSessionTool creates an EndSessionTool with the intake store.
func NewEndSessionTool(store *intake.Store) *EndSessionTool {
	return &EndSessionTool{store: store}
}

// Definition returns the MCP tool definition for intake_end.
func (t *EndSessionTool) Definition() mcp.Tool {
	return mcp.NewTool("intake_end",
		mcp.WithDescription(
			"Close an intake session once its record has been evaluated. "+
				"Ended sessions reject further inputs; their staged inputs remain readable.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("The intake session to close"),
		),
	)
}

// Handle processes the intake_end tool call.
func (t *EndSessionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := req.GetString("session_id", "")
	if sessionID == "" {
		return mcp.NewToolResultError("'session_id' is required"), nil
	}

	if err := t.store.EndSession(sessionID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Intake session %s ended.", sessionID)), nil
}
