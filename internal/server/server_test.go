// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/raspdbot/internal/chat"
	"github.com/jeranaias/raspdbot/internal/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, m *chat.MockCompleter, cfg session.Config, opts Options) (*Server, *session.Manager) {
	t.Helper()
	logger := discardLogger()
	mgr := session.NewManager(func() *chat.Engine {
		return chat.New(m, chat.Options{Model: "raspdbot-star", Logger: logger})
	}, cfg)
	opts.Logger = logger
	return New(mgr, opts), mgr
}

func do(t *testing.T, h http.Handler, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.RemoteAddr = "203.0.113.7:5000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func createSession(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/v1/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode[session.Info](t, rec).ID
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, &chat.MockCompleter{}, session.DefaultConfig(), Options{})
	h := srv.Handler()
	createSession(t, h)

	rec := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	health := decode[HealthResponse](t, rec)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 1, health.Conversations)
}

func TestSessionLifecycle(t *testing.T) {
	mock := &chat.MockCompleter{Response: "The car uses an ultrasonic sensor."}
	srv, _ := newTestServer(t, mock, session.DefaultConfig(), Options{})
	h := srv.Handler()

	id := createSession(t, h)

	rec := do(t, h, http.MethodPost, "/v1/sessions/"+id+"/messages", `{"message":"what sensors does it have"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	msg := decode[MessageResponse](t, rec)
	assert.Equal(t, id, msg.SessionID)
	assert.Equal(t, "answer", msg.Kind)
	assert.Equal(t, "The car uses an ultrasonic sensor.", msg.Text)

	rec = do(t, h, http.MethodGet, "/v1/sessions/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[SessionResponse](t, rec)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, 2, got.Messages)
	require.Len(t, got.History, 2)
	assert.Equal(t, "user", got.History[0].Role)
	assert.Equal(t, "assistant", got.History[1].Role)

	rec = do(t, h, http.MethodGet, "/v1/sessions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[map[string][]session.Info](t, rec)
	assert.Len(t, list["sessions"], 1)

	rec = do(t, h, http.MethodPost, "/v1/sessions/"+id+"/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[session.Info](t, rec).Messages)

	rec = do(t, h, http.MethodDelete, "/v1/sessions/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMessageKinds(t *testing.T) {
	mock := &chat.MockCompleter{Response: "unused"}
	srv, _ := newTestServer(t, mock, session.DefaultConfig(), Options{})
	h := srv.Handler()
	id := createSession(t, h)

	rec := do(t, h, http.MethodPost, "/v1/sessions/"+id+"/messages", `{"message":"   "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "prompt", decode[MessageResponse](t, rec).Kind)

	rec = do(t, h, http.MethodPost, "/v1/sessions/"+id+"/messages", `{"message":"hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "greeting", decode[MessageResponse](t, rec).Kind)

	assert.Equal(t, 0, mock.Calls())
}

func TestMessageErrors(t *testing.T) {
	srv, _ := newTestServer(t, &chat.MockCompleter{Response: "x"}, session.DefaultConfig(), Options{MaxBodyBytes: 32})
	h := srv.Handler()
	id := createSession(t, h)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"unknown session", "/v1/sessions/missing/messages", `{"message":"x"}`, http.StatusNotFound},
		{"empty body", "/v1/sessions/" + id + "/messages", "", http.StatusBadRequest},
		{"bad json", "/v1/sessions/" + id + "/messages", `{"message":`, http.StatusBadRequest},
		{"too large", "/v1/sessions/" + id + "/messages", `{"message":"` + strings.Repeat("a", 64) + `"}`, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			body := decode[errorResponse](t, rec)
			assert.Equal(t, tt.status, body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestCompletionFailureIsBadGateway(t *testing.T) {
	mock := &chat.MockCompleter{Err: errors.New("ollama is not running")}
	srv, _ := newTestServer(t, mock, session.DefaultConfig(), Options{})
	h := srv.Handler()
	id := createSession(t, h)

	rec := do(t, h, http.MethodPost, "/v1/sessions/"+id+"/messages", `{"message":"how fast can it go"}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	msg := decode[MessageResponse](t, rec)
	assert.Equal(t, "error", msg.Kind)
	assert.Contains(t, msg.Text, "not running")
}

func TestBusyConversationConflicts(t *testing.T) {
	gate := make(chan struct{})
	mock := &chat.MockCompleter{Response: "done", Gate: gate}
	srv, mgr := newTestServer(t, mock, session.DefaultConfig(), Options{})
	h := srv.Handler()
	id := createSession(t, h)

	var wg sync.WaitGroup
	wg.Add(1)
	var first *httptest.ResponseRecorder
	go func() {
		defer wg.Done()
		first = do(t, h, http.MethodPost, "/v1/sessions/"+id+"/messages", `{"message":"describe the motors"}`)
	}()

	require.Eventually(t, func() bool {
		busy, err := mgr.Busy(id)
		return err == nil && busy
	}, 2*time.Second, 5*time.Millisecond)

	rec := do(t, h, http.MethodPost, "/v1/sessions/"+id+"/messages", `{"message":"and the battery"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/v1/sessions/"+id+"/reset", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	close(gate)
	wg.Wait()
	require.NotNil(t, first)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, 1, mock.Calls())
}

func TestSessionLimit(t *testing.T) {
	cfg := session.DefaultConfig()
	cfg.MaxConversations = 1
	srv, _ := newTestServer(t, &chat.MockCompleter{}, cfg, Options{})
	h := srv.Handler()

	createSession(t, h)
	rec := do(t, h, http.MethodPost, "/v1/sessions", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRateLimit(t *testing.T) {
	srv, _ := newTestServer(t, &chat.MockCompleter{}, session.DefaultConfig(), Options{RateLimit: 0.001, RateBurst: 2})
	h := srv.Handler()

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code)

	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	// Another client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "198.51.100.9:4000"
	other := httptest.NewRecorder()
	h.ServeHTTP(other, req)
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestRateLimiterPrune(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.Allow("a")
	rl.Allow("b")
	assert.Equal(t, 2, rl.Clients())

	now = now.Add(11 * time.Minute)
	rl.Allow("b")
	assert.Equal(t, 1, rl.Prune())
	assert.Equal(t, 1, rl.Clients())
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		require.True(t, rl.Allow("a"))
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLoggingMiddlewareCapturesStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	h := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/brew", nil))

	out := buf.String()
	assert.Contains(t, out, "REQUEST")
	assert.Contains(t, out, "status=418")
	assert.Contains(t, out, "path=/brew")
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		xff    string
		want   string
	}{
		{"direct", "203.0.113.7:5000", "", "203.0.113.7"},
		{"untrusted forward ignored", "203.0.113.7:5000", "1.2.3.4", "203.0.113.7"},
		{"trusted proxy", "127.0.0.1:5000", "1.2.3.4, 10.0.0.1", "1.2.3.4"},
		{"invalid forward", "10.0.0.2:5000", "not-an-ip", "10.0.0.2"},
		{"no port", "192.168.1.5", "", "192.168.1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := newTestServer(t, &chat.MockCompleter{}, session.DefaultConfig(), Options{})
	rec := do(t, srv.Handler(), http.MethodGet, "/v2/nothing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
