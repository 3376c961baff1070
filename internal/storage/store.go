// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/raspdbot/internal/util"
)

// =============================================================================
// SESSION META
// =============================================================================

// SessionMeta describes a stored session for listings.
type SessionMeta struct {
	Name         string    `json:"name"`
	ModelPath    string    `json:"model_path"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
	Preview      string    `json:"preview"` // first user message, truncated
}

// =============================================================================
// STORE
// =============================================================================

// ErrSessionNotFound is returned when a named session does not exist.
var ErrSessionNotFound = errors.New("session not found")

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// Store keeps named session documents in a directory.
type Store struct {
	// BaseDir holds one <name>.json per session.
	// Default: ~/.raspdbot/sessions/
	BaseDir string

	// MaxSessions limits stored sessions (0 = unlimited). The least
	// recently saved are removed first.
	MaxSessions int
}

// NewStore creates a store in the default directory.
func NewStore() (*Store, error) {
	dir, err := DataDir()
	if err != nil {
		return nil, err
	}
	return NewStoreWithDir(filepath.Join(dir, "sessions"))
}

// NewStoreWithDir creates a store with a custom directory.
func NewStoreWithDir(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &Store{BaseDir: baseDir, MaxSessions: 100}, nil
}

// Save writes doc under name and returns the name used. An empty name
// gets a generated one.
func (s *Store) Save(name string, doc Document) (string, error) {
	if name == "" {
		name = "chat_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	}
	if !validName.MatchString(name) {
		return "", fmt.Errorf("invalid session name %q", name)
	}

	if err := SaveFile(s.filePath(name), doc); err != nil {
		return "", err
	}

	if s.MaxSessions > 0 {
		s.enforceLimit()
	}
	return name, nil
}

// Load reads the named session.
func (s *Store) Load(name string) (Document, error) {
	if !validName.MatchString(name) {
		return Document{}, ErrSessionNotFound
	}
	path := s.filePath(name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Document{}, ErrSessionNotFound
	}
	return LoadFile(path)
}

// List returns all stored sessions, most recently saved first. Files that
// fail to parse are skipped.
func (s *Store) List() ([]SessionMeta, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SessionMeta{}, nil
		}
		return nil, err
	}

	metas := []SessionMeta{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		doc, err := LoadFile(filepath.Join(s.BaseDir, entry.Name()))
		if err != nil {
			continue
		}

		metas = append(metas, SessionMeta{
			Name:         strings.TrimSuffix(entry.Name(), ".json"),
			ModelPath:    doc.ModelPath,
			UpdatedAt:    info.ModTime(),
			MessageCount: len(doc.History),
			Preview:      Preview(doc, 80),
		})
	}

	sort.SliceStable(metas, func(i, j int) bool {
		if metas[i].UpdatedAt.Equal(metas[j].UpdatedAt) {
			return metas[i].Name < metas[j].Name
		}
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})
	return metas, nil
}

// Delete removes the named session.
func (s *Store) Delete(name string) error {
	if !validName.MatchString(name) {
		return ErrSessionNotFound
	}
	if err := os.Remove(s.filePath(name)); err != nil {
		if os.IsNotExist(err) {
			return ErrSessionNotFound
		}
		return err
	}
	return nil
}

func (s *Store) enforceLimit() {
	metas, err := s.List()
	if err != nil || len(metas) <= s.MaxSessions {
		return
	}
	for _, m := range metas[s.MaxSessions:] {
		s.Delete(m.Name)
	}
}

func (s *Store) filePath(name string) string {
	return filepath.Join(s.BaseDir, name+".json")
}

// =============================================================================
// FORMATTING
// =============================================================================

// Preview returns the first user message of doc on one line, truncated to
// maxRunes.
func Preview(doc Document, maxRunes int) string {
	for _, m := range doc.History {
		if m.Role == RoleUser && m.Content != "" {
			return util.TruncateRunes(util.OneLine(m.Content), maxRunes)
		}
	}
	return ""
}

// FormatSessionList formats sessions as a table for the terminal.
func FormatSessionList(sessions []SessionMeta) string {
	if len(sessions) == 0 {
		return "No saved sessions."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-20s %-16s %8s  %s\n", "NAME", "SAVED", "MESSAGES", "PREVIEW"))
	for _, s := range sessions {
		sb.WriteString(fmt.Sprintf("%-20s %-16s %8d  %s\n",
			util.TruncateRunes(s.Name, 20),
			s.UpdatedAt.Format("2006-01-02 15:04"),
			s.MessageCount,
			util.TruncateRunes(s.Preview, 40)))
	}
	return sb.String()
}
