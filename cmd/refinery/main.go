// Refinery: Prompt Refinement Validation MCP Server
//
// A universal MCP server that turns any AI tool into a prompt-refinement
// system: the model extracts a Structured Record from the user's raw
// inputs, and Refinery validates and scores it with fixed, deterministic
// rules.
//
// Usage:
//
//	refinery serve    # Start MCP server (stdio transport)
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/promptsmith/refinery/internal/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("refinery v%s\n", server.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	s, cleanup, err := server.New()
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// The stdio transport owns stdout; all diagnostics go to stderr.
	// Interrupts close stdin, which ends the serve loop.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		os.Stdin.Close()
	}()

	return mcpserver.ServeStdio(s)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Refinery v%s — Prompt Refinement Validation MCP Server

Usage:
  refinery serve    Start the MCP server (stdio transport)

Configuration:
  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "refinery": {
        "command": "refinery",
        "args": ["serve"]
      }
    }
  }

Environment:
  REFINERY_DATA_DIR   Intake database directory (default: ~/.refinery)
`, server.Version)
}
