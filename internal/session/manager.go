// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/raspdbot/internal/chat"
	"github.com/jeranaias/raspdbot/internal/storage"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotFound is returned for unknown conversation ids.
	ErrNotFound = errors.New("conversation not found")

	// ErrBusy is returned when a conversation is already answering.
	ErrBusy = errors.New("conversation is busy")

	// ErrLimit is returned when MaxConversations would be exceeded.
	ErrLimit = errors.New("too many conversations")
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// Factory builds the engine of a new conversation.
type Factory func() *chat.Engine

// ExchangeFunc observes every answered input.
type ExchangeFunc func(id, input string, reply chat.Reply, err error)

// Config holds configuration for the session manager.
type Config struct {
	// IdleTimeout removes conversations without activity (0 = never).
	IdleTimeout time.Duration

	// MaxConversations caps live conversations (0 = unlimited).
	MaxConversations int

	// SweepInterval is how often Run calls Sweep (default: 1 minute).
	SweepInterval time.Duration

	// OnExchange, when set, is called after every Ask.
	OnExchange ExchangeFunc
}

// DefaultConfig returns the default manager configuration.
func DefaultConfig() Config {
	return Config{
		IdleTimeout:      30 * time.Minute,
		MaxConversations: 256,
		SweepInterval:    time.Minute,
	}
}

// =============================================================================
// CONVERSATION
// =============================================================================

// Info is a snapshot of a conversation.
type Info struct {
	ID           string    `json:"id"`
	Model        string    `json:"model"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	Messages     int       `json:"messages"`
	Busy         bool      `json:"busy"`
	ClarifyState string    `json:"clarify_state"`
}

type conversation struct {
	id        string
	createdAt time.Time
	engine    *chat.Engine

	// lock serializes requests; busy mirrors it for cheap reads.
	lock         sync.Mutex
	busy         atomic.Bool
	lastActivity atomic.Int64
}

func (c *conversation) touch(t time.Time) {
	c.lastActivity.Store(t.UnixNano())
}

func (c *conversation) info() Info {
	return Info{
		ID:           c.id,
		Model:        c.engine.Model(),
		CreatedAt:    c.createdAt,
		LastActivity: time.Unix(0, c.lastActivity.Load()),
		Messages:     len(c.engine.History()),
		Busy:         c.busy.Load(),
		ClarifyState: c.engine.ClarifyState().String(),
	}
}

// acquire takes the request lock without waiting.
func (c *conversation) acquire() bool {
	if !c.lock.TryLock() {
		return false
	}
	c.busy.Store(true)
	return true
}

func (c *conversation) release() {
	c.busy.Store(false)
	c.lock.Unlock()
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager owns the live conversations. It is safe for concurrent use.
type Manager struct {
	factory Factory
	config  Config
	now     func() time.Time

	mu            sync.RWMutex
	conversations map[string]*conversation
}

// NewManager creates a manager that builds engines with factory.
func NewManager(factory Factory, cfg Config) *Manager {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	return &Manager{
		factory:       factory,
		config:        cfg,
		now:           time.Now,
		conversations: make(map[string]*conversation),
	}
}

// Create starts a new empty conversation.
func (m *Manager) Create() (Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.config.MaxConversations > 0 && len(m.conversations) >= m.config.MaxConversations {
		return Info{}, ErrLimit
	}

	now := m.now()
	c := &conversation{
		id:        uuid.NewString(),
		createdAt: now,
		engine:    m.factory(),
	}
	c.touch(now)
	m.conversations[c.id] = c
	return c.info(), nil
}

// Get returns a snapshot of one conversation.
func (m *Manager) Get(id string) (Info, error) {
	c, err := m.lookup(id)
	if err != nil {
		return Info{}, err
	}
	return c.info(), nil
}

// History returns the messages of one conversation.
func (m *Manager) History(id string) ([]storage.Message, error) {
	c, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	return c.engine.History(), nil
}

// List returns all conversations, oldest first.
func (m *Manager) List() []Info {
	m.mu.RLock()
	infos := make([]Info, 0, len(m.conversations))
	for _, c := range m.conversations {
		infos = append(infos, c.info())
	}
	m.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].ID < infos[j].ID
		}
		return infos[i].CreatedAt.Before(infos[j].CreatedAt)
	})
	return infos
}

// Len returns the number of live conversations.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conversations)
}

// Delete removes a conversation. A conversation that is answering cannot
// be deleted.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.conversations[id]
	if !ok {
		return ErrNotFound
	}
	if !c.acquire() {
		return ErrBusy
	}
	defer c.release()
	delete(m.conversations, id)
	return nil
}

// Ask sends input to one conversation. It fails with ErrBusy when the
// conversation is already answering.
func (m *Manager) Ask(ctx context.Context, id, input string) (chat.Reply, error) {
	c, err := m.checkout(id)
	if err != nil {
		return chat.Reply{}, err
	}
	defer c.release()

	c.touch(m.now())
	reply, err := c.engine.Ask(ctx, input)
	c.touch(m.now())

	if m.config.OnExchange != nil {
		m.config.OnExchange(id, input, reply, err)
	}
	return reply, err
}

// Reset clears one conversation's history and clarification state.
func (m *Manager) Reset(id string) error {
	c, err := m.checkout(id)
	if err != nil {
		return err
	}
	defer c.release()

	c.engine.Reset()
	c.touch(m.now())
	return nil
}

// Busy reports whether a conversation is answering.
func (m *Manager) Busy(id string) (bool, error) {
	c, err := m.lookup(id)
	if err != nil {
		return false, err
	}
	return c.busy.Load(), nil
}

// Sweep removes conversations idle since before now-IdleTimeout and
// returns how many were removed. Conversations holding their request lock
// are kept.
func (m *Manager) Sweep() int {
	if m.config.IdleTimeout <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.config.IdleTimeout).UnixNano()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, c := range m.conversations {
		if c.lastActivity.Load() >= cutoff || !c.acquire() {
			continue
		}
		delete(m.conversations, id)
		c.release()
		removed++
	}
	return removed
}

// Run sweeps idle conversations until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// checkout looks up a conversation and takes its request lock. The
// conversation may be swept between the lookup and the lock, so
// membership is checked again once the lock is held.
func (m *Manager) checkout(id string) (*conversation, error) {
	c, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	return m.claim(id, c)
}

func (m *Manager) claim(id string, c *conversation) (*conversation, error) {
	if !c.acquire() {
		return nil, ErrBusy
	}
	m.mu.RLock()
	live := m.conversations[id] == c
	m.mu.RUnlock()
	if !live {
		c.release()
		return nil, ErrNotFound
	}
	return c, nil
}

func (m *Manager) lookup(id string) (*conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}
