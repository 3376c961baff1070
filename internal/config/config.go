// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/raspdbot/internal/persona"
	"github.com/jeranaias/raspdbot/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete raspdbot configuration.
type Config struct {
	Ollama     OllamaConfig     `toml:"ollama" json:"ollama"`
	Corpus     CorpusConfig     `toml:"corpus" json:"corpus"`
	Retrieval  RetrievalConfig  `toml:"retrieval" json:"retrieval"`
	Generation GenerationConfig `toml:"generation" json:"generation"`
	Chat       ChatConfig       `toml:"chat" json:"chat"`
	Sessions   SessionsConfig   `toml:"sessions" json:"sessions"`
	Transcript TranscriptConfig `toml:"transcript" json:"transcript"`
	Server     ServerConfig     `toml:"server" json:"server"`
	Log        LogConfig        `toml:"log" json:"log"`
}

// OllamaConfig locates the completion server.
type OllamaConfig struct {
	URL         string `toml:"url" json:"url"`
	Model       string `toml:"model" json:"model"`
	TimeoutSecs int    `toml:"timeout_secs" json:"timeout_secs"`
}

// CorpusConfig points at the JSONL reference data. An empty path runs the
// plain variant without retrieval.
type CorpusConfig struct {
	Path       string `toml:"path" json:"path"`
	Watch      bool   `toml:"watch" json:"watch"`
	DebounceMs int    `toml:"debounce_ms" json:"debounce_ms"`
}

// RetrievalConfig holds the clarification policy and retrieval depth.
type RetrievalConfig struct {
	Threshold   float64 `toml:"threshold" json:"threshold"`
	MaxAttempts int     `toml:"max_attempts" json:"max_attempts"`
	TopK        int     `toml:"top_k" json:"top_k"`
}

// GenerationConfig holds sampling parameters. RetrievalTemperature
// replaces Temperature when a corpus is loaded.
type GenerationConfig struct {
	MaxTokens            int     `toml:"max_tokens" json:"max_tokens"`
	Temperature          float64 `toml:"temperature" json:"temperature"`
	RetrievalTemperature float64 `toml:"retrieval_temperature" json:"retrieval_temperature"`
	TopP                 float64 `toml:"top_p" json:"top_p"`
	TopK                 int     `toml:"top_k" json:"top_k"`
	RepeatPenalty        float64 `toml:"repeat_penalty" json:"repeat_penalty"`
}

// ChatConfig controls the interactive front ends.
type ChatConfig struct {
	Persona     string `toml:"persona" json:"persona"`
	HistoryPath string `toml:"history_path" json:"history_path"`
	Autosave    bool   `toml:"autosave" json:"autosave"`
	Markdown    bool   `toml:"markdown" json:"markdown"`
}

// SessionsConfig controls saved sessions and server conversations.
type SessionsConfig struct {
	Dir              string `toml:"dir" json:"dir"`
	MaxSaved         int    `toml:"max_saved" json:"max_saved"`
	MaxConversations int    `toml:"max_conversations" json:"max_conversations"`
	IdleTimeoutSecs  int    `toml:"idle_timeout_secs" json:"idle_timeout_secs"`
}

// TranscriptConfig enables the SQLite transcript. An empty path disables it.
type TranscriptConfig struct {
	Path string `toml:"path" json:"path"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr      string  `toml:"addr" json:"addr"`
	RateLimit float64 `toml:"rate_limit" json:"rate_limit"` // requests per second per client, 0 = off
	RateBurst int     `toml:"rate_burst" json:"rate_burst"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string `toml:"level" json:"level"`
}

// =============================================================================
// DEFAULT CONFIG
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Ollama: OllamaConfig{
			URL:         "http://127.0.0.1:11434",
			Model:       "raspdbot-star",
			TimeoutSecs: 120,
		},
		Corpus: CorpusConfig{
			Watch:      true,
			DebounceMs: 500,
		},
		Retrieval: RetrievalConfig{
			Threshold:   0.60,
			MaxAttempts: 2,
			TopK:        5,
		},
		Generation: GenerationConfig{
			MaxTokens:            256,
			Temperature:          0.35,
			RetrievalTemperature: 0.3,
			TopP:                 0.9,
			TopK:                 50,
			RepeatPenalty:        1.15,
		},
		Chat: ChatConfig{
			Persona:     persona.DefaultName,
			HistoryPath: "~/.raspdbot/history.json",
			Autosave:    true,
			Markdown:    true,
		},
		Sessions: SessionsConfig{
			Dir:              "~/.raspdbot/sessions",
			MaxSaved:         100,
			MaxConversations: 256,
			IdleTimeoutSecs:  1800,
		},
		Transcript: TranscriptConfig{
			Path: "~/.raspdbot/transcript.db",
		},
		Server: ServerConfig{
			Addr:      "127.0.0.1:8080",
			RateLimit: 2,
			RateBurst: 5,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// OllamaTimeout returns the completion request timeout.
func (c *Config) OllamaTimeout() time.Duration {
	return time.Duration(c.Ollama.TimeoutSecs) * time.Second
}

// CorpusDebounce returns the hot reload debounce interval.
func (c *Config) CorpusDebounce() time.Duration {
	return time.Duration(c.Corpus.DebounceMs) * time.Millisecond
}

// IdleTimeout returns how long a server conversation may sit unused.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.Sessions.IdleTimeoutSecs) * time.Second
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the raspdbot configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".raspdbot"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// LoadDotEnv loads KEY=value pairs from the given files (".env" when none
// are given) into the environment. Variables already set win, and missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			return LoadFromPath(tomlPath)
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			return LoadFromPath(jsonPath)
		}
	}

	cfg := Default()
	return finish(cfg)
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(strings.ToLower(path), ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg. Keys missing from the file keep
// their current values.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# raspdbot configuration file\n")
	sb.WriteString("# Environment variables RASPDBOT_* override these values.\n\n")
	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file.
func SaveJSON(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Ollama
	if u, err := url.Parse(c.Ollama.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add("ollama.url", "invalid URL '%s', must be http(s)://host:port", c.Ollama.URL)
	}
	if strings.TrimSpace(c.Ollama.Model) == "" {
		add("ollama.model", "must not be empty")
	}
	if c.Ollama.TimeoutSecs < 1 || c.Ollama.TimeoutSecs > 3600 {
		add("ollama.timeout_secs", "must be between 1 and 3600, got %d", c.Ollama.TimeoutSecs)
	}

	// Corpus
	if c.Corpus.DebounceMs < 0 {
		add("corpus.debounce_ms", "must not be negative")
	}

	// Retrieval
	if c.Retrieval.Threshold < 0 || c.Retrieval.Threshold > 1 {
		add("retrieval.threshold", "must be between 0 and 1, got %g", c.Retrieval.Threshold)
	}
	if c.Retrieval.MaxAttempts < 0 || c.Retrieval.MaxAttempts > 10 {
		add("retrieval.max_attempts", "must be between 0 and 10, got %d", c.Retrieval.MaxAttempts)
	}
	if c.Retrieval.TopK < 1 || c.Retrieval.TopK > 100 {
		add("retrieval.top_k", "must be between 1 and 100, got %d", c.Retrieval.TopK)
	}

	// Generation
	g := c.Generation
	if g.MaxTokens < 1 || g.MaxTokens > 8192 {
		add("generation.max_tokens", "must be between 1 and 8192, got %d", g.MaxTokens)
	}
	if g.Temperature < 0 || g.Temperature > 2 {
		add("generation.temperature", "must be between 0 and 2, got %g", g.Temperature)
	}
	if g.RetrievalTemperature < 0 || g.RetrievalTemperature > 2 {
		add("generation.retrieval_temperature", "must be between 0 and 2, got %g", g.RetrievalTemperature)
	}
	if g.TopP <= 0 || g.TopP > 1 {
		add("generation.top_p", "must be in (0, 1], got %g", g.TopP)
	}
	if g.TopK < 0 {
		add("generation.top_k", "must not be negative")
	}
	if g.RepeatPenalty <= 0 {
		add("generation.repeat_penalty", "must be positive, got %g", g.RepeatPenalty)
	}

	// Chat
	if _, err := persona.Get(c.Chat.Persona); err != nil {
		add("chat.persona", "unknown persona '%s', must be one of: %s", c.Chat.Persona, strings.Join(persona.Names(), ", "))
	}

	// Sessions
	if c.Sessions.MaxSaved < 0 {
		add("sessions.max_saved", "must not be negative")
	}
	if c.Sessions.MaxConversations < 1 {
		add("sessions.max_conversations", "must be at least 1, got %d", c.Sessions.MaxConversations)
	}
	if c.Sessions.IdleTimeoutSecs < 0 {
		add("sessions.idle_timeout_secs", "must not be negative")
	}

	// Server
	if c.Server.RateLimit < 0 {
		add("server.rate_limit", "must not be negative")
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		add("server.rate_burst", "must be at least 1 when rate_limit is set")
	}

	// Log
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		add("log.level", "invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills empty values that have no meaningful zero.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Ollama.URL == "" {
		c.Ollama.URL = d.Ollama.URL
	}
	if c.Ollama.Model == "" {
		c.Ollama.Model = d.Ollama.Model
	}
	if c.Ollama.TimeoutSecs == 0 {
		c.Ollama.TimeoutSecs = d.Ollama.TimeoutSecs
	}
	if c.Retrieval.TopK == 0 {
		c.Retrieval.TopK = d.Retrieval.TopK
	}
	if c.Generation.MaxTokens == 0 {
		c.Generation.MaxTokens = d.Generation.MaxTokens
	}
	if c.Chat.Persona == "" {
		c.Chat.Persona = d.Chat.Persona
	}
	if c.Sessions.MaxConversations == 0 {
		c.Sessions.MaxConversations = d.Sessions.MaxConversations
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// envOverrides maps environment variables to dot-notation keys.
var envOverrides = []struct {
	env string
	key string
}{
	{"RASPDBOT_OLLAMA_URL", "ollama.url"},
	{"RASPDBOT_MODEL", "ollama.model"},
	{"RASPDBOT_TIMEOUT", "ollama.timeout_secs"},
	{"RASPDBOT_CORPUS", "corpus.path"},
	{"RASPDBOT_CORPUS_WATCH", "corpus.watch"},
	{"RASPDBOT_THRESHOLD", "retrieval.threshold"},
	{"RASPDBOT_MAX_ATTEMPTS", "retrieval.max_attempts"},
	{"RASPDBOT_TOP_K", "retrieval.top_k"},
	{"RASPDBOT_PERSONA", "chat.persona"},
	{"RASPDBOT_HISTORY", "chat.history_path"},
	{"RASPDBOT_SESSIONS_DIR", "sessions.dir"},
	{"RASPDBOT_TRANSCRIPT", "transcript.path"},
	{"RASPDBOT_ADDR", "server.addr"},
	{"RASPDBOT_LOG_LEVEL", "log.level"},
}

// EnvVars returns the supported environment variable names.
func EnvVars() []string {
	names := make([]string, len(envOverrides))
	for i, o := range envOverrides {
		names[i] = o.env
	}
	return names
}

// ApplyEnvOverrides applies RASPDBOT_* environment variables.
// RASPDBOT_TRANSCRIPT may be set to an empty value to disable the transcript.
func (c *Config) ApplyEnvOverrides() error {
	var errs ValidateErrors
	for _, o := range envOverrides {
		val, ok := os.LookupEnv(o.env)
		if !ok {
			continue
		}
		if val == "" && o.key != "transcript.path" && o.key != "corpus.path" {
			continue
		}
		if err := c.Set(o.key, val); err != nil {
			errs = append(errs, ValidationError{Field: o.env, Message: err.Error()})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "retrieval.threshold").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "retrieval.threshold").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("'%s' is a section, not a value", key)
			}
			return field, nil
		}

		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}

	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}

	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		strVal = strings.TrimSpace(strVal)
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes" || lower == "on")
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all configuration keys in dot notation, in
// declaration order.
func GetAllKeys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i)
		prefix := tagName(section)
		for j := 0; j < section.Type.NumField(); j++ {
			keys = append(keys, prefix+"."+tagName(section.Type.Field(j)))
		}
	}
	return keys
}

func tagName(f reflect.StructField) string {
	if tag := f.Tag.Get("toml"); tag != "" {
		return strings.Split(tag, ",")[0]
	}
	return strings.ToLower(f.Name)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Clone creates a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the configuration as indented JSON.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
// This should only be used in tests to reset state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
