package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/promptsmith/refinery/internal/intake"
)

// snippetLength caps how much staged content a search hit displays.
const snippetLength = 200

// SearchInputsTool handles the intake_search MCP tool.
type SearchInputsTool struct {
	store *intake.Store
}

// NewSearchInputsTool creates a SearchInputsTool with the intake store.
func NewSearchInputsTool(store *intake.Store) *SearchInputsTool {
	return &SearchInputsTool{store: store}
}

// Definition returns the MCP tool definition for intake_search.
func (t *SearchInputsTool) Definition() mcp.Tool {
	return mcp.NewTool("intake_search",
		mcp.WithDescription(
			"Full-text search across staged inputs from all intake sessions. "+
				"Useful when the user references an earlier refinement request "+
				"('like that booking app we discussed') and you need to find its inputs.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search terms, matched against staged content, source labels, and notes"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results to return (default 20)"),
		),
	)
}

// Handle processes the intake_search tool call.
func (t *SearchInputsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}
	limit := intArg(req, "limit", 0)

	results, err := t.store.SearchInputs(query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching inputs: %w", err)
	}

	if len(results) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No staged inputs match %q.", query)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Search Results for %q (%d)\n\n", query, len(results))
	for _, r := range results {
		fmt.Fprintf(&sb, "- [%s] %s (session %s, input %d)\n", r.Modality, r.Source, r.SessionID, r.ID)
		if r.Content != "" {
			fmt.Fprintf(&sb, "  %s\n", truncate(strings.TrimSpace(r.Content), snippetLength))
		}
		if r.Ref != "" {
			fmt.Fprintf(&sb, "  Reference: %s\n", r.Ref)
		}
	}

	return mcp.NewToolResultText(sb.String()), nil
}
