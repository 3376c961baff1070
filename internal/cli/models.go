// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// models.go - Lists the models on the Ollama server.
//
// Command: models
//
// Examples:
//   raspdbot models
//   raspdbot models --json

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/jeranaias/raspdbot/internal/config"
	"github.com/jeranaias/raspdbot/internal/ollama"
)

// HandleModelsCommand lists the models the Ollama server has.
func HandleModelsCommand(ctx context.Context, cfg *config.Config, args Args) error {
	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:      cfg.Ollama.URL,
		Timeout:      startupTimeout,
		DefaultModel: cfg.Ollama.Model,
	})

	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	models, err := client.ListModels(ctx)
	if err != nil {
		return WrapError(err, "cannot list models at "+cfg.Ollama.URL)
	}
	return writeModels(os.Stdout, models, cfg.Ollama.Model, args.JSON)
}

func writeModels(w io.Writer, models []ollama.ModelInfo, current string, asJSON bool) error {
	if asJSON {
		data := make([]ModelData, 0, len(models))
		for _, m := range models {
			data = append(data, ModelData{
				Name:       m.Name,
				Size:       m.Size,
				SizeHuman:  m.FormatSize(),
				ModifiedAt: m.ModifiedAt.UTC().Format(time.RFC3339),
				Current:    m.Name == current,
			})
		}
		return NewJSONResponse("models", data).Write(w)
	}

	if len(models) == 0 {
		fmt.Fprintln(w, DimStyle.Render("No models installed. Create one with: ollama create "+current+" -f Modelfile"))
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE\tMODIFIED\t")
	for _, m := range models {
		marker := ""
		if m.Name == current {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s ago\t%s\n", m.Name, m.FormatSize(), age(time.Since(m.ModifiedAt)), marker)
	}
	return tw.Flush()
}

// age prints d in its largest whole unit: 45s, 12m, 5h, 3d.
func age(d time.Duration) string {
	units := []struct {
		size time.Duration
		name string
	}{
		{24 * time.Hour, "d"},
		{time.Hour, "h"},
		{time.Minute, "m"},
	}
	for _, u := range units {
		if d >= u.size {
			return fmt.Sprintf("%d%s", d/u.size, u.name)
		}
	}
	return fmt.Sprintf("%ds", d/time.Second)
}
