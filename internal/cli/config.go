// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation.
//
// Command: config [subcommand]
//
// Subcommands:
//   show (default)      Display the effective configuration
//   path                Show the configuration file path
//   init [--force]      Write the default configuration file
//   get <key>           Print one value
//   set <key> <value>   Change one value in the configuration file
//   keys                List every key
//
// Examples:
//   raspdbot config
//   raspdbot config show --json
//   raspdbot config set retrieval.threshold 0.55
//   raspdbot config set corpus.path ~/raspdbot/qa.jsonl
//   raspdbot config get ollama.model

package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/raspdbot/internal/config"
	"github.com/jeranaias/raspdbot/internal/util"
)

// =============================================================================
// CONFIG STYLES
// =============================================================================

var (
	configSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("255")). // White
				MarginTop(1)

	configKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")). // Light gray
			Width(26)

	configValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82")) // Green

	configPathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)
)

// =============================================================================
// HANDLE CONFIG
// =============================================================================

// HandleConfigCommand handles the "config" command. It runs without a
// running Ollama and before the config is validated, so a broken file can
// still be inspected and fixed.
func HandleConfigCommand(args Args, w io.Writer) error {
	path, err := configFilePath(args)
	if err != nil {
		return err
	}

	switch args.Subcommand {
	case "", "show":
		return handleConfigShow(w, args)

	case "path":
		return handleConfigPath(w, path, args.JSON)

	case "init":
		return handleConfigInit(w, path, NewArgParser(args.Raw[1:], "force").BoolFlag("force"))

	case "get":
		return handleConfigGet(w, args)

	case "set":
		return handleConfigSet(w, path, args.ConfigKey, args.ConfigVal)

	case "keys":
		return handleConfigKeys(w, args.JSON)

	default:
		return &ValidationError{
			Field:   "subcommand",
			Value:   args.Subcommand,
			Reason:  "must be one of show, path, init, get, set, keys",
			Example: "raspdbot config set retrieval.threshold 0.55",
		}
	}
}

// configFilePath returns the file the config command edits.
func configFilePath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return util.ExpandHome(args.ConfigPath), nil
	}
	return config.ConfigPathTOML()
}

// loadEffective loads the configuration the other commands would use.
func loadEffective(args Args) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	if args.ConfigPath != "" {
		return config.LoadFromPath(util.ExpandHome(args.ConfigPath))
	}
	return config.Load()
}

func handleConfigShow(w io.Writer, args Args) error {
	cfg, err := loadEffective(args)
	if err != nil {
		return err
	}
	if args.JSON {
		return NewJSONResponse("config show", cfg).Write(w)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("RaspDbot Configuration"))
	fmt.Fprintln(w, RenderSeparator(41))

	section := ""
	for _, key := range config.GetAllKeys() {
		name, field, _ := strings.Cut(key, ".")
		if name != section {
			section = name
			fmt.Fprintln(w, configSectionStyle.Render("["+section+"]"))
		}
		value, err := cfg.Get(key)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %s%s\n", configKeyStyle.Render(field+":"), configValueStyle.Render(fmt.Sprint(value)))
	}
	fmt.Fprintln(w)
	return nil
}

func handleConfigPath(w io.Writer, path string, asJSON bool) error {
	_, err := os.Stat(path)
	exists := err == nil
	if asJSON {
		return NewJSONResponse("config path", map[string]any{
			"path":   path,
			"exists": exists,
		}).Write(w)
	}
	fmt.Fprintln(w, configPathStyle.Render(path))
	if !exists {
		fmt.Fprintln(w, DimStyle.Render("(not created yet, run: raspdbot config init)"))
	}
	return nil
}

func handleConfigInit(w io.Writer, path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
	}
	if err := config.SaveTOML(config.Default(), path); err != nil {
		return err
	}
	fmt.Fprintln(w, SuccessStyle.Render("Wrote "+path))
	return nil
}

func handleConfigGet(w io.Writer, args Args) error {
	if args.ConfigKey == "" {
		return ErrMissingArgument("key", "raspdbot config get retrieval.threshold")
	}
	cfg, err := loadEffective(args)
	if err != nil {
		return err
	}
	value, err := cfg.Get(args.ConfigKey)
	if err != nil {
		return &ValidationError{Field: "key", Value: args.ConfigKey, Reason: err.Error()}
	}
	if args.JSON {
		return NewJSONResponse("config get", map[string]any{
			"key":   args.ConfigKey,
			"value": value,
		}).Write(w)
	}
	fmt.Fprintln(w, value)
	return nil
}

// handleConfigSet edits the file itself, so environment overrides are
// never written back.
func handleConfigSet(w io.Writer, path, key, value string) error {
	if key == "" {
		return ErrMissingArgument("key", "raspdbot config set retrieval.threshold 0.55")
	}

	cfg := config.Default()
	if _, err := os.Stat(path); err == nil {
		if strings.HasSuffix(strings.ToLower(path), ".json") {
			err = config.LoadJSON(cfg, path)
		} else {
			err = config.LoadTOML(cfg, path)
		}
		if err != nil {
			return err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := cfg.Set(key, value); err != nil {
		return &ValidationError{Field: "key", Value: key, Reason: err.Error()}
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	var err error
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		err = config.SaveJSON(cfg, path)
	} else {
		err = config.SaveTOML(cfg, path)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %s = %s\n", SuccessStyle.Render("Set"), key, value)
	return nil
}

func handleConfigKeys(w io.Writer, asJSON bool) error {
	keys := config.GetAllKeys()
	if asJSON {
		return NewJSONResponse("config keys", map[string]any{
			"keys": keys,
			"env":  config.EnvVars(),
		}).Write(w)
	}
	for _, k := range keys {
		fmt.Fprintln(w, k)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("Environment overrides"))
	for _, e := range config.EnvVars() {
		fmt.Fprintln(w, "  "+e)
	}
	return nil
}
