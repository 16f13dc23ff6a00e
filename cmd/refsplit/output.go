package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matsen/refsplit/internal/reference"
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg, Code: code})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// RunResponse is the response for the run command.
type RunResponse struct {
	RunID       string                `json:"run_id"`
	Source      string                `json:"source"`
	Backend     string                `json:"backend"`
	Numbering   string                `json:"numbering"`
	Count       int                   `json:"count"`
	Output      string                `json:"output,omitempty"`
	Rerun       bool                  `json:"rerun,omitempty"`
	Fallback    bool                  `json:"fallback,omitempty"`
	Diagnostics []string              `json:"diagnostics,omitempty"`
	References  []reference.Reference `json:"references,omitempty"`
}

// DOIResult is one normalized input of the doi command.
type DOIResult struct {
	Input  string   `json:"input"`
	Output string   `json:"output,omitempty"`
	DOIs   []string `json:"dois"`
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}
