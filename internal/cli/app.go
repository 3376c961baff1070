// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Startup shared by the chat, ask, tui and serve commands.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jeranaias/raspdbot/internal/chat"
	"github.com/jeranaias/raspdbot/internal/clarify"
	"github.com/jeranaias/raspdbot/internal/config"
	"github.com/jeranaias/raspdbot/internal/corpus"
	"github.com/jeranaias/raspdbot/internal/ollama"
	"github.com/jeranaias/raspdbot/internal/persona"
	"github.com/jeranaias/raspdbot/internal/storage"
	"github.com/jeranaias/raspdbot/internal/transcript"
	"github.com/jeranaias/raspdbot/internal/util"
)

// startupTimeout bounds the Ollama checks at startup.
const startupTimeout = 10 * time.Second

// =============================================================================
// CONFIG
// =============================================================================

// LoadConfig loads .env, the config file and the command line overrides,
// then stores the result as the global configuration.
func LoadConfig(args Args) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	var cfg *config.Config
	var err error
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(util.ExpandHome(args.ConfigPath))
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if args.Model != "" {
		cfg.Ollama.Model = args.Model
	}
	if args.Corpus != "" {
		cfg.Corpus.Path = args.Corpus
	}
	if args.Persona != "" {
		cfg.Chat.Persona = args.Persona
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	config.SetGlobal(cfg)
	return cfg, nil
}

// =============================================================================
// APP
// =============================================================================

// AppOptions select what NewApp sets up.
type AppOptions struct {
	// CheckModel requires a running Ollama with the configured model.
	CheckModel bool
	// Watch reloads the corpus when its file changes.
	Watch bool
	// LogOutput receives diagnostic logs (default: stderr).
	LogOutput io.Writer
}

// App holds everything a front end needs to build conversations.
type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	Persona    persona.Persona
	Client     *ollama.Client
	Completer  *ollama.Completer
	Source     *corpus.Source // nil in the plain variant
	Watcher    *corpus.Watcher
	Transcript *transcript.Log // nil when disabled
}

// NewApp validates the environment and loads the corpus. Ollama not
// running, a missing model, or a missing or empty corpus are fatal.
func NewApp(ctx context.Context, cfg *config.Config, args Args, opts AppOptions) (*App, error) {
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}
	logger := NewLogger(opts.LogOutput, cfg.Log.Level, args.Verbose, args.Quiet)
	slog.SetDefault(logger)

	p, err := persona.Get(cfg.Chat.Persona)
	if err != nil {
		return nil, &ValidationError{Field: "persona", Value: cfg.Chat.Persona, Reason: err.Error()}
	}

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:      cfg.Ollama.URL,
		Timeout:      cfg.OllamaTimeout(),
		DefaultModel: cfg.Ollama.Model,
	})

	app := &App{
		Config:    cfg,
		Logger:    logger,
		Persona:   p,
		Client:    client,
		Completer: ollama.NewCompleter(client, cfg.Ollama.Model),
	}

	if opts.CheckModel {
		if err := app.checkModel(ctx); err != nil {
			return nil, err
		}
	}

	if err := app.loadCorpus(opts.Watch); err != nil {
		app.Close()
		return nil, err
	}

	if path := cfg.Transcript.Path; path != "" {
		log, err := transcript.Open(util.ExpandHome(path))
		if err != nil {
			// The transcript is optional; chatting still works without it.
			logger.Warn("TRANSCRIPT_DISABLED", "path", path, "error", err)
		} else {
			app.Transcript = log
		}
	}

	return app, nil
}

func (a *App) checkModel(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	if err := a.Client.CheckRunning(ctx); err != nil {
		return WrapError(err, fmt.Sprintf("cannot reach Ollama at %s (start it with: ollama serve)", a.Config.Ollama.URL))
	}
	model := a.Completer.Model()
	if !a.Client.ModelExists(ctx, model) {
		return &NotFoundError{
			Resource: "model",
			ID:       model,
			Hint:     "Create or pull it first, for example: ollama create " + model + " -f Modelfile",
		}
	}
	return nil
}

func (a *App) loadCorpus(watch bool) error {
	path := a.Config.Corpus.Path
	if path == "" {
		return nil
	}
	path = util.ExpandHome(path)

	c, err := corpus.Load(path, a.Logger)
	if err != nil {
		return err
	}
	a.Source = corpus.NewSource(c)
	a.Logger.Info("CORPUS_LOADED", "path", path, "pairs", c.Len(), "skipped", c.Skipped)

	if !watch || !a.Config.Corpus.Watch {
		return nil
	}
	w, err := corpus.NewWatcher(path, a.Source, a.Logger, a.Config.CorpusDebounce())
	if err != nil {
		a.Logger.Warn("CORPUS_WATCH disabled", "error", err)
		return nil
	}
	if err := w.Start(); err != nil {
		a.Logger.Warn("CORPUS_WATCH disabled", "error", err)
		_ = w.Close()
		return nil
	}
	a.Watcher = w
	return nil
}

// Params returns the generation parameters from the config. The retrieval
// variant samples with RetrievalTemperature.
func (a *App) Params() ollama.Params {
	g := a.Config.Generation
	p := ollama.Params{
		MaxTokens:     g.MaxTokens,
		Temperature:   g.Temperature,
		TopP:          g.TopP,
		TopK:          g.TopK,
		RepeatPenalty: g.RepeatPenalty,
	}
	if a.Source != nil {
		p.Temperature = g.RetrievalTemperature
	}
	return p
}

// NewEngine builds a new conversation.
func (a *App) NewEngine() *chat.Engine {
	opts := chat.Options{
		Persona: a.Persona,
		Model:   a.Completer.Model(),
		Params:  a.Params(),
		Policy: clarify.Policy{
			Threshold:   a.Config.Retrieval.Threshold,
			MaxAttempts: a.Config.Retrieval.MaxAttempts,
		},
		TopK:   a.Config.Retrieval.TopK,
		Logger: a.Logger,
	}
	if a.Source != nil {
		opts.Source = a.Source
	}
	return chat.New(a.Completer, opts)
}

// HistoryPath returns the autosave file.
func (a *App) HistoryPath() string {
	if p := a.Config.Chat.HistoryPath; p != "" {
		return util.ExpandHome(p)
	}
	p, err := storage.DefaultHistoryPath()
	if err != nil {
		return ""
	}
	return p
}

// Store returns the directory of named sessions.
func (a *App) Store() (*storage.Store, error) {
	return openStore(a.Config)
}

func openStore(cfg *config.Config) (*storage.Store, error) {
	dir := cfg.Sessions.Dir
	if dir == "" {
		return storage.NewStore()
	}
	s, err := storage.NewStoreWithDir(util.ExpandHome(dir))
	if err != nil {
		return nil, err
	}
	if cfg.Sessions.MaxSaved > 0 {
		s.MaxSessions = cfg.Sessions.MaxSaved
	}
	return s, nil
}

// Close stops the watcher and closes the transcript.
func (a *App) Close() error {
	var errs []error
	if a.Watcher != nil {
		errs = append(errs, a.Watcher.Close())
	}
	errs = append(errs, a.Transcript.Close())
	return errors.Join(errs...)
}
