// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jeranaias/raspdbot/internal/util"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Document is the persisted form of a conversation.
type Document struct {
	ModelPath string    `json:"model_path"`
	History   []Message `json:"history"`
}

// ErrInvalidDocument is returned when session data is not a JSON object.
var ErrInvalidDocument = errors.New("session document must be a JSON object")

// Serialize builds a document from a model identifier and history. The
// history is copied.
func Serialize(model string, history []Message) Document {
	h := make([]Message, len(history))
	copy(h, history)
	return Document{ModelPath: model, History: h}
}

// Marshal encodes doc as indented JSON. Non-ASCII text is written as-is.
func Marshal(doc Document) ([]byte, error) {
	if doc.History == nil {
		doc.History = []Message{}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Deserialize parses session data leniently.
func Deserialize(data []byte) (Document, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return Document{}, fmt.Errorf("invalid session JSON: %w", err)
		}
		return Document{}, ErrInvalidDocument
	}
	if raw == nil {
		return Document{}, ErrInvalidDocument
	}

	doc := Document{
		ModelPath: util.Stringify(raw["model_path"]),
		History:   []Message{},
	}

	entries, ok := raw["history"].([]any)
	if !ok {
		return doc, nil
	}
	for _, e := range entries {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		doc.History = append(doc.History, Message{
			Role:    util.Stringify(m["role"]),
			Content: util.Stringify(m["content"]),
		})
	}
	return doc, nil
}

// LoadFile reads and parses a session file.
func LoadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read session file: %w", err)
	}
	doc, err := Deserialize(data)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// SaveFile writes doc to path atomically.
func SaveFile(path string, doc Document) error {
	data, err := Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// DataDir returns the raspdbot data directory (~/.raspdbot).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".raspdbot"), nil
}

// DefaultHistoryPath returns the autosave location (~/.raspdbot/history.json).
func DefaultHistoryPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.json"), nil
}
