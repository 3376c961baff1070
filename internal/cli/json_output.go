// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - JSON output for scripting.

package cli

import (
	"encoding/json"
	"io"
	"time"
)

// JSONResponse is the envelope of every --json output.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data any `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the RFC3339 time the response was generated
	Timestamp string `json:"timestamp"`

	// Command is the command that was executed
	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data any) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Write encodes the response as indented JSON.
func (r *JSONResponse) Write(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// =============================================================================
// RESPONSE DATA TYPES
// =============================================================================

// VersionData is the data of the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// AskData is the data of the ask command.
type AskData struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Kind     string  `json:"kind"`
	Score    float64 `json:"score,omitempty"`
	Model    string  `json:"model"`
	Duration string  `json:"duration"`
}

// ModelData describes one model on the Ollama server.
type ModelData struct {
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	SizeHuman  string `json:"size_human"`
	ModifiedAt string `json:"modified_at"`
	Current    bool   `json:"current"`
}
