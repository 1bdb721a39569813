// Package tools implements Refinery's MCP tool handlers.
//
// Each tool is a struct that receives its dependencies at construction
// and exposes Definition/Handle, one tool concern per file. Expected
// failures (malformed records, unknown sessions) come back as tool error
// results — data for the calling model — while infrastructure failures
// are returned as Go errors.
package tools

import (
	"fmt"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
)

// intArg extracts an integer argument from a tool request. JSON numbers
// arrive as float64.
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// codeBlock wraps text in a fenced markdown block.
func codeBlock(lang, text string) string {
	return fmt.Sprintf("```%s\n%s\n```", lang, text)
}

// truncate shortens s for display, marking the cut. The cut lands on a
// rune boundary so the result stays valid UTF-8.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max] + "…"
}
