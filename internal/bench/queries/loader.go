package queries

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/DjordjeVuckovic/searchbench/internal/apperr"
)

const maxLineSize = 1 << 20

// Set is the loaded query list plus the records that were skipped.
type Set struct {
	Queries  []string
	Warnings []Warning
}

// Warning describes a skipped record. Line is the 1-based JSONL line or
// dataset row.
type Warning struct {
	Line   int
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Reason)
}

type record struct {
	Query *string `json:"query"`
}

// LoadFromFile reads .json (array of strings or of {"query": ...} objects)
// or .jsonl (one {"query": ...} object per line). Malformed JSONL lines are
// skipped with a Warning; a malformed .json document is rejected.
func LoadFromFile(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.NewConfigWrap("open queries file", err)
	}
	defer f.Close()

	var set *Set
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		set, err = ParseJSON(f)
	case ".jsonl", ".ndjson":
		set, err = ParseJSONL(f)
	default:
		return nil, apperr.NewConfig(fmt.Sprintf("unsupported queries file extension %q (want .json or .jsonl)", ext))
	}
	if err != nil {
		return nil, err
	}

	for _, w := range set.Warnings {
		slog.Warn("Skipped malformed query record", "path", path, "line", w.Line, "reason", w.Reason)
	}
	if len(set.Queries) == 0 {
		return nil, apperr.NewConfig(fmt.Sprintf("queries file %s has no usable queries", path))
	}
	return set, nil
}

func ParseJSON(r io.Reader) (*Set, error) {
	dec := json.NewDecoder(r)
	var items []json.RawMessage
	if err := dec.Decode(&items); err != nil {
		return nil, apperr.NewConfigWrap("parse queries JSON array", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, apperr.NewConfig("queries JSON has data after the top-level array")
	}

	set := &Set{Queries: make([]string, 0, len(items))}
	for i, raw := range items {
		q, err := parseItem(raw)
		if err != nil {
			return nil, apperr.NewConfigWrap(fmt.Sprintf("query at index %d", i), err)
		}
		if q != "" {
			set.Queries = append(set.Queries, q)
		}
	}
	return set, nil
}

func parseItem(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return "", fmt.Errorf("want a string or an object with a query field: %w", err)
	}
	if rec.Query == nil {
		return "", fmt.Errorf("object has no query field")
	}
	return strings.TrimSpace(*rec.Query), nil
}

func ParseJSONL(r io.Reader) (*Set, error) {
	set := &Set{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}

		var rec record
		if err := json.Unmarshal(text, &rec); err != nil {
			set.Warnings = append(set.Warnings, Warning{Line: line, Reason: fmt.Sprintf("invalid JSON: %v", err)})
			continue
		}
		if rec.Query == nil || strings.TrimSpace(*rec.Query) == "" {
			set.Warnings = append(set.Warnings, Warning{Line: line, Reason: "missing or empty query field"})
			continue
		}
		set.Queries = append(set.Queries, strings.TrimSpace(*rec.Query))
	}
	if err := scanner.Err(); err != nil {
		return nil, apperr.NewConfigWrap(fmt.Sprintf("read queries JSONL at line %d", line+1), err)
	}
	return set, nil
}

// Sample picks min(n, len(queries)) distinct queries at random. n <= 0
// returns all queries unchanged.
func Sample(queries []string, n int, rng *rand.Rand) []string {
	if n <= 0 || n >= len(queries) {
		return queries
	}
	idx := rng.Perm(len(queries))[:n]
	out := make([]string, n)
	for i, j := range idx {
		out[i] = queries[j]
	}
	return out
}
