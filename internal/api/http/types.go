package http

import (
	"github.com/GriffinCanCode/rubico-playground/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/rubico-playground/internal/sandbox"
)

// SnippetRequest is the body of every snippet endpoint
type SnippetRequest struct {
	Snippet string `json:"snippet"`
}

// LibraryResponse describes the bound function surface
type LibraryResponse struct {
	URL      string   `json:"url"`
	Binding  string   `json:"binding"`
	OutputID string   `json:"output_id"`
	Names    []string `json:"names"`
}

// DocumentResponse is an assembled, bridged document
type DocumentResponse struct {
	Document  string `json:"document"`
	Markup    string `json:"markup"`
	Reference string `json:"reference"`
	Digest    string `json:"digest"`
}

// RunResponse is the outcome of loading a snippet's document
type RunResponse struct {
	RunID      string        `json:"run_id"`
	Reference  string        `json:"reference"`
	Digest     string        `json:"digest"`
	Status     string        `json:"status"`
	Output     []string      `json:"output"`
	Errors     []ScriptError `json:"errors"`
	DurationMs int64         `json:"duration_ms"`
	Error      string        `json:"error,omitempty"`
}

// ScriptError is an uncaught error from one script of the document
type ScriptError struct {
	Script  int    `json:"script"`
	Message string `json:"message"`
}

// EvaluateResponse is the outcome of evaluating a snippet directly
type EvaluateResponse struct {
	Console    []ConsoleEntry `json:"console"`
	Value      string         `json:"value"`
	DurationMs int64          `json:"duration_ms"`
	Error      string         `json:"error,omitempty"`
}

// ConsoleEntry is one captured console call
type ConsoleEntry struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// MetricsResponse is the JSON metrics summary
type MetricsResponse struct {
	Summary monitoring.Snapshot `json:"summary"`
	Pool    sandbox.PoolStats   `json:"pool"`
}

func scriptErrors(errs []sandbox.ScriptError) []ScriptError {
	out := make([]ScriptError, len(errs))
	for i, e := range errs {
		out[i] = ScriptError{Script: e.Script, Message: e.Message}
	}
	return out
}

func consoleEntries(entries []sandbox.LogEntry) []ConsoleEntry {
	out := make([]ConsoleEntry, len(entries))
	for i, e := range entries {
		out[i] = ConsoleEntry{Level: e.Level, Message: e.Message}
	}
	return out
}

func orEmpty(lines []string) []string {
	if lines == nil {
		return []string{}
	}
	return lines
}
