// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLog(t *testing.T) *Log {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "db", "transcript.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestRecordAndRecent(t *testing.T) {
	l := openTestLog(t)
	ctx := context.Background()

	require.NoError(t, l.RecordExchange(ctx, "s1", "what sensors does it have", "answer", "ultrasonic and camera"))
	require.NoError(t, l.RecordExchange(ctx, "s2", "what is the weather", "clarify", "Is this question about RaspDbot-Star?"))

	all, err := l.Recent(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "what sensors does it have", all[0].Content)
	assert.Equal(t, "user", all[0].Role)
	assert.Equal(t, "input", all[0].Kind)
	assert.Equal(t, "clarify", all[3].Kind)
	assert.NotEmpty(t, all[0].ID)

	s1, err := l.Recent(ctx, "s1", 10)
	require.NoError(t, err)
	require.Len(t, s1, 2)
	assert.Equal(t, "assistant", s1[1].Role)
	assert.Equal(t, "ultrasonic and camera", s1[1].Content)
}

func TestRecentLimitKeepsNewest(t *testing.T) {
	l := openTestLog(t)
	ctx := context.Background()

	base := time.Now()
	for i, content := range []string{"one", "two", "three"} {
		require.NoError(t, l.Record(ctx, Entry{
			SessionID: "s",
			Role:      "user",
			Kind:      "input",
			Content:   content,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	got, err := l.Recent(ctx, "s", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "two", got[0].Content)
	assert.Equal(t, "three", got[1].Content)
	assert.Equal(t, base.Add(2*time.Second).UnixNano(), got[1].CreatedAt.UnixNano())
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcript.db")
	ctx := context.Background()

	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.Record(ctx, Entry{SessionID: "s", Role: "user", Kind: "input", Content: "persisted"}))
	require.NoError(t, l.Close())

	l, err = Open(path)
	require.NoError(t, err)
	defer l.Close()

	got, err := l.Recent(ctx, "s", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "persisted", got[0].Content)
}

func TestNilLogIsDisabled(t *testing.T) {
	var l *Log
	ctx := context.Background()
	assert.NoError(t, l.Record(ctx, Entry{Content: "x"}))
	assert.NoError(t, l.RecordExchange(ctx, "s", "a", "answer", "b"))
	got, err := l.Recent(ctx, "", 10)
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, l.Close())
}
