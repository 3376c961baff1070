// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/raspdbot/internal/config"
	"github.com/jeranaias/raspdbot/internal/export"
	"github.com/jeranaias/raspdbot/internal/ollama"
	"github.com/jeranaias/raspdbot/internal/persona"
	"github.com/jeranaias/raspdbot/internal/storage"
	"github.com/jeranaias/raspdbot/internal/transcript"
)

func testDocument() storage.Document {
	return storage.Serialize("raspdbot-star", []storage.Message{
		{Role: storage.RoleUser, Content: "What is the top speed?"},
		{Role: storage.RoleAssistant, Content: "About 2 m/s."},
	})
}

func TestLoadDocumentFromFileAndStore(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Sessions.Dir = filepath.Join(dir, "sessions")

	path := filepath.Join(dir, "history.json")
	require.NoError(t, storage.SaveFile(path, testDocument()))

	doc, err := loadDocument(cfg, path)
	require.NoError(t, err)
	assert.Len(t, doc.History, 2)

	store, err := openStore(cfg)
	require.NoError(t, err)
	_, err = store.Save("demo", testDocument())
	require.NoError(t, err)

	doc, err = loadDocument(cfg, "demo")
	require.NoError(t, err)
	assert.Equal(t, "About 2 m/s.", doc.History[1].Content)

	_, err = loadDocument(cfg, "missing")
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))

	_, err = loadDocument(cfg, filepath.Join(dir, "missing.json"))
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))
}

func TestWriteExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeExport(&buf, testDocument(), export.NewTextExporter(persona.Default())))
	assert.Contains(t, buf.String(), "What is the top speed?")
	assert.Contains(t, buf.String(), "About 2 m/s.")
}

func TestWriteTranscript(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	entries := []transcript.Entry{
		{ID: "1", SessionID: "abcdef123456", Role: "user", Content: "line one\nline two", CreatedAt: created},
		{ID: "2", SessionID: "abcdef123456", Role: "assistant", Kind: "answer", Content: "Reply.", CreatedAt: created},
	}

	var buf bytes.Buffer
	require.NoError(t, writeTranscript(&buf, entries, false))
	out := buf.String()
	assert.Contains(t, out, "line one line two")
	assert.Contains(t, out, "assistant/answer")

	buf.Reset()
	require.NoError(t, writeTranscript(&buf, nil, true))
	assert.Contains(t, buf.String(), `"data": []`)

	buf.Reset()
	require.NoError(t, writeTranscript(&buf, nil, false))
	assert.Contains(t, buf.String(), "No transcript entries.")
}

func TestWriteModels(t *testing.T) {
	models := []ollama.ModelInfo{
		{Name: "raspdbot-star", Size: 4 << 30, ModifiedAt: time.Now().Add(-2 * time.Hour)},
		{Name: "tinyllama", Size: 512 << 20, ModifiedAt: time.Now().Add(-48 * time.Hour)},
	}

	var buf bytes.Buffer
	require.NoError(t, writeModels(&buf, models, "raspdbot-star", false))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "raspdbot-star")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(lines[1]), "*"))
	assert.Contains(t, lines[2], "2d ago")

	buf.Reset()
	require.NoError(t, writeModels(&buf, models, "tinyllama", true))
	assert.Contains(t, buf.String(), `"size_human": "4.0 GB"`)
	assert.Contains(t, buf.String(), `"current": true`)
}

func TestConfigCommandSetGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	args := Args{ConfigPath: path}

	var buf bytes.Buffer
	args.Subcommand, args.ConfigKey, args.ConfigVal = "set", "retrieval.threshold", "0.55"
	require.NoError(t, HandleConfigCommand(args, &buf))
	assert.Contains(t, buf.String(), "retrieval.threshold = 0.55")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "threshold = 0.55")

	buf.Reset()
	args.Subcommand, args.ConfigVal = "get", ""
	require.NoError(t, HandleConfigCommand(args, &buf))
	assert.Equal(t, "0.55\n", buf.String())
}

func TestConfigCommandRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	err := HandleConfigCommand(Args{ConfigPath: path, Subcommand: "set", ConfigKey: "retrieval.threshold", ConfigVal: "7"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.NoFileExists(t, path)

	err = HandleConfigCommand(Args{ConfigPath: path, Subcommand: "set", ConfigKey: "no.such_key", ConfigVal: "1"}, &bytes.Buffer{})
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	err = HandleConfigCommand(Args{ConfigPath: path, Subcommand: "bogus"}, &bytes.Buffer{})
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestConfigCommandInitAndPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	args := Args{ConfigPath: path, Subcommand: "init", Raw: []string{"init"}}

	var buf bytes.Buffer
	require.NoError(t, HandleConfigCommand(args, &buf))
	assert.FileExists(t, path)
	require.Error(t, HandleConfigCommand(args, &buf), "init must not overwrite")

	args.Raw = []string{"init", "--force"}
	require.NoError(t, HandleConfigCommand(args, &buf))

	buf.Reset()
	require.NoError(t, HandleConfigCommand(Args{ConfigPath: path, Subcommand: "path", JSON: true}, &buf))
	assert.Contains(t, buf.String(), `"exists": true`)
}

func TestConfigCommandKeys(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HandleConfigCommand(Args{ConfigPath: filepath.Join(t.TempDir(), "c.toml"), Subcommand: "keys"}, &buf))
	assert.Contains(t, buf.String(), "retrieval.threshold")
	assert.Contains(t, buf.String(), "RASPDBOT_MODEL")
}

func TestAppParamsAndEngine(t *testing.T) {
	cfg := config.Default()
	client := ollama.NewClientWithConfig(&ollama.ClientConfig{BaseURL: "http://127.0.0.1:1", DefaultModel: "raspdbot-star"})
	app := &App{Config: cfg, Persona: persona.Default(), Client: client, Completer: ollama.NewCompleter(client, "")}

	assert.Equal(t, cfg.Generation.Temperature, app.Params().Temperature)

	engine := app.NewEngine()
	assert.Equal(t, "raspdbot-star", engine.Model())
	assert.NoError(t, app.Close())
}
