// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package corpus

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jeranaias/raspdbot/internal/util"
)

// maxLineSize bounds a single corpus record.
const maxLineSize = 4 * 1024 * 1024

var (
	// ErrNotFound is returned when the corpus file does not exist.
	ErrNotFound = errors.New("corpus file not found")

	// ErrEmpty is returned when no question/answer pair could be extracted.
	ErrEmpty = errors.New("no question/answer pairs found in corpus")
)

// Pair is one reference question with its answer.
type Pair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Corpus is an immutable snapshot of a loaded corpus file.
type Corpus struct {
	Path     string
	Pairs    []Pair
	Skipped  int
	LoadedAt time.Time
}

// Len returns the number of pairs.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Pairs)
}

// Load reads and parses the corpus at path. A missing file and a file
// without any usable pair are errors.
func Load(path string, logger *slog.Logger) (*Corpus, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}
	defer f.Close()

	pairs, skipped, err := Parse(f, logger.With("path", path))
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus %s: %w", path, err)
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, path)
	}

	return &Corpus{
		Path:     path,
		Pairs:    pairs,
		Skipped:  skipped,
		LoadedAt: time.Now(),
	}, nil
}

// Parse extracts pairs from newline-delimited JSON. It returns the pairs
// in file order and the number of non-blank lines that were skipped.
// Lines longer than maxLineSize are skipped like any other bad line.
func Parse(r io.Reader, logger *slog.Logger) ([]Pair, int, error) {
	return parse(r, logger, maxLineSize)
}

func parse(r io.Reader, logger *slog.Logger, limit int) ([]Pair, int, error) {
	if logger == nil {
		logger = slog.Default()
	}

	br := bufio.NewReaderSize(r, 64*1024)

	var pairs []Pair
	skipped := 0
	lineNo := 0
	for {
		raw, size, err := readLine(br, limit)
		if err != nil && err != io.EOF {
			return nil, skipped, err
		}
		if size == 0 && err == io.EOF {
			break
		}
		lineNo++

		if size > limit {
			logger.Warn("CORPUS_SKIP line too long", "line", lineNo, "bytes", size, "limit", limit)
			skipped++
		} else if line := bytes.TrimSpace(raw); len(line) > 0 {
			if p, ok := parseRecord(line, lineNo, logger); ok {
				pairs = append(pairs, p)
			} else {
				skipped++
			}
		}

		if err == io.EOF {
			break
		}
	}
	return pairs, skipped, nil
}

// readLine reads one line without its newline. Once a line grows past
// limit the rest of it is discarded and only its size is reported.
func readLine(br *bufio.Reader, limit int) ([]byte, int, error) {
	var line []byte
	size := 0
	for {
		chunk, err := br.ReadSlice('\n')
		size += len(chunk)
		if size <= limit+1 {
			line = append(line, chunk...)
		} else {
			line = nil
		}
		switch {
		case err == bufio.ErrBufferFull:
			continue
		case err == nil:
			size--
			if line != nil {
				line = line[:len(line)-1]
			}
			return line, size, nil
		default:
			return line, size, err
		}
	}
}

func parseRecord(line []byte, lineNo int, logger *slog.Logger) (Pair, bool) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	var record map[string]any
	if err := dec.Decode(&record); err != nil {
		logger.Warn("CORPUS_SKIP invalid JSON", "line", lineNo, "error", err)
		return Pair{}, false
	}

	q, a := Extract(record)
	if q == "" || a == "" {
		logger.Warn("CORPUS_SKIP no question/answer pair", "line", lineNo)
		return Pair{}, false
	}
	return Pair{Question: q, Answer: a}, true
}

// fieldSchemas are tried in order; the first pair of keys present wins.
var fieldSchemas = [][2]string{
	{"prompt", "completion"},
	{"question", "answer"},
	{"instruction", "response"},
	{"input", "output"},
}

// Extract returns the question and answer of one decoded record. Either
// may be empty when the record does not carry a usable pair.
func Extract(record map[string]any) (question, answer string) {
	for _, schema := range fieldSchemas {
		q, qok := record[schema[0]]
		a, aok := record[schema[1]]
		if qok && aok {
			return strings.TrimSpace(util.Stringify(q)), strings.TrimSpace(util.Stringify(a))
		}
	}

	msgs, ok := record["messages"].([]any)
	if !ok {
		return "", ""
	}
	var userParts, assistantParts []string
	for _, m := range msgs {
		msg, ok := m.(map[string]any)
		if !ok {
			continue
		}
		role, _ := msg["role"].(string)
		content := ""
		if c, ok := msg["content"]; ok {
			content = strings.TrimSpace(util.Stringify(c))
		}
		switch role {
		case "user":
			userParts = append(userParts, content)
		case "assistant":
			assistantParts = append(assistantParts, content)
		}
	}
	return strings.TrimSpace(strings.Join(userParts, "\n")),
		strings.TrimSpace(strings.Join(assistantParts, "\n"))
}
