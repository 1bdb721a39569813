// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates concrete implementations and
// injects them into the tools that depend on abstractions. No business
// logic lives here — only wiring.
package server

import (
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/server"
	"github.com/promptsmith/refinery/internal/intake"
	"github.com/promptsmith/refinery/internal/templates"
	"github.com/promptsmith/refinery/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools registered.
//
// The returned cleanup function closes the intake store's database
// connection and must be called on shutdown (typically via defer). It is
// always non-nil and safe to call even if intake init failed.
func New() (*server.MCPServer, func(), error) {
	renderer, err := templates.NewRenderer()
	if err != nil {
		return nil, noop, fmt.Errorf("creating renderer: %w", err)
	}

	s := server.NewMCPServer(
		"refinery",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Validation engine tools ---
	//
	// These are pure and stateless; they work even when intake is down.

	templateTool := tools.NewTemplateTool()
	s.AddTool(templateTool.Definition(), templateTool.Handle)

	evaluateTool := tools.NewEvaluateTool(renderer)
	s.AddTool(evaluateTool.Definition(), evaluateTool.Handle)

	// --- Intake tools ---
	//
	// Intake is an independent subsystem: if SQLite fails to initialize,
	// the validation tools keep working. We log a warning to stderr and
	// skip intake tool registration.

	cleanup := noop
	store, storeErr := intake.New(intake.DefaultConfig())
	if storeErr != nil {
		log.Printf("WARNING: intake subsystem disabled: %v", storeErr)
	} else {
		cleanup = func() {
			if err := store.Close(); err != nil {
				log.Printf("WARNING: intake store close: %v", err)
			}
		}
		registerIntakeTools(s, store)
	}

	return s, cleanup, nil
}

// noop is the default cleanup when intake is disabled.
func noop() {}

// registerIntakeTools registers the input-staging tools.
func registerIntakeTools(s *server.MCPServer, store *intake.Store) {
	startTool := tools.NewStartSessionTool(store)
	s.AddTool(startTool.Definition(), startTool.Handle)

	endTool := tools.NewEndSessionTool(store)
	s.AddTool(endTool.Definition(), endTool.Handle)

	addTool := tools.NewAddInputTool(store)
	s.AddTool(addTool.Definition(), addTool.Handle)

	listTool := tools.NewListInputsTool(store)
	s.AddTool(listTool.Definition(), listTool.Handle)

	searchTool := tools.NewSearchInputsTool(store)
	s.AddTool(searchTool.Definition(), searchTool.Handle)
}

// serverInstructions returns the system instructions that tell the AI
// how to act as Refinery's extraction collaborator.
func serverInstructions() string {
	return `You have access to Refinery, a prompt-refinement validation server.

## What Refinery Does

Refinery turns vague, multi-modal user requests (text, mockup images,
requirement documents) into validated, structured prompts. The division of
labor is strict:

- YOU are the extraction collaborator: you read raw inputs and produce a
  Structured Record (intent, requirements, constraints, deliverables,
  conflicts, assumptions).
- REFINERY is the deterministic judge: fixed, reproducible rules decide
  whether your record is actionable and how complete it is. Refinery never
  second-guesses your extraction; it only validates and scores the record
  you submit.

## Workflow

1. intake_start — open a session for the refinement request
2. intake_add_input — stage each raw input with a distinct source label
   (text content directly; image/document file references for you to read)
3. intake_inputs — read everything back before extracting
4. refine_template — get the record shape and the validation policy
5. Extract the Structured Record yourself, following the critical rules below
6. refine_evaluate — submit the record; present the report to the user
7. If INVALID: show the rejection reasons, gather what's missing, resubmit
8. intake_end — close the session when done

## CRITICAL Extraction Rules

1. Never make up information — only extract or reasonably infer from inputs
2. Use status markers correctly:
   - "confirmed": explicitly stated in an input
   - "inferred": logically derived from context
   - "missing": identified as needed but not present
3. Detect and document conflicts BETWEEN inputs. Compare domains across
   text, image, and document sources; flag contradicting project types,
   UI patterns, and requirements. Cite evidence with source labels.
   Never resolve a conflict yourself — the user decides.
4. Make every assumption explicit, with the risk if it's wrong.

## Reading the Report

- INVALID is a normal outcome, not an error. Present the rejection reasons
  and help the user fill the gaps; purely creative requests (poems, stories)
  are correctly rejected for having no product/system intent.
- Conflicts never block validity — they lower the no_conflicts sub-score.
  A valid record with conflicts is actionable but needs the user's decisions.
- The completeness score is reported even for invalid records; use it to
  show the user how close they are.`
}
