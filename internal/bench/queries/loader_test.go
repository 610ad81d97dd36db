package queries

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DjordjeVuckovic/searchbench/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile_JSON(t *testing.T) {
	t.Run("array of strings", func(t *testing.T) {
		path := writeFile(t, "q.json", `["golang generics", "  best pizza nyc  ", ""]`)
		set, err := LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"golang generics", "best pizza nyc"}, set.Queries)
		assert.Empty(t, set.Warnings)
	})

	t.Run("array of objects", func(t *testing.T) {
		path := writeFile(t, "q.json", `[{"query": "a"}, "b", {"query": "c", "id": 3}]`)
		set, err := LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, set.Queries)
	})

	t.Run("not an array is rejected", func(t *testing.T) {
		path := writeFile(t, "q.json", `{"query": "a"}`)
		_, err := LoadFromFile(path)
		require.Error(t, err)
		assert.True(t, apperr.IsConfig(err))
	})

	t.Run("bad element is rejected", func(t *testing.T) {
		path := writeFile(t, "q.json", `["a", 42]`)
		_, err := LoadFromFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "index 1")
	})
}

func TestLoadFromFile_JSONL(t *testing.T) {
	t.Run("valid lines", func(t *testing.T) {
		path := writeFile(t, "q.jsonl", "{\"query\": \"a\"}\n\n{\"query\": \"b\", \"topic\": \"x\"}\n")
		set, err := LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, set.Queries)
		assert.Empty(t, set.Warnings)
	})

	t.Run("malformed lines are skipped with a warning", func(t *testing.T) {
		content := strings.Join([]string{
			`{"query": "first"}`,
			`{"query": "broken"`,
			`{"text": "no query field"}`,
			`{"query": "   "}`,
			`{"query": "last"}`,
		}, "\n")
		path := writeFile(t, "q.jsonl", content)

		set, err := LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "last"}, set.Queries)
		require.Len(t, set.Warnings, 3)
		assert.Equal(t, 2, set.Warnings[0].Line)
		assert.Contains(t, set.Warnings[0].Reason, "invalid JSON")
		assert.Equal(t, 3, set.Warnings[1].Line)
		assert.Equal(t, 4, set.Warnings[2].Line)
		assert.Equal(t, "line 3: missing or empty query field", set.Warnings[1].String())
	})

	t.Run("all lines malformed is a config error", func(t *testing.T) {
		path := writeFile(t, "q.jsonl", "nope\nstill nope\n")
		_, err := LoadFromFile(path)
		require.Error(t, err)
		assert.True(t, apperr.IsConfig(err))
		assert.Contains(t, err.Error(), "no usable queries")
	})
}

func TestLoadFromFile_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.json"))
		require.Error(t, err)
		assert.True(t, apperr.IsConfig(err))
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeFile(t, "q.csv", "a,b")
		_, err := LoadFromFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported")
	})
}

func TestParseJSON_TrailingData(t *testing.T) {
	for name, input := range map[string]string{
		"garbage":      `["a"] garbage`,
		"second array": `["a"] ["b"]`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseJSON(strings.NewReader(input))
			require.Error(t, err)
			assert.True(t, apperr.IsConfig(err))
		})
	}

	set, err := ParseJSON(strings.NewReader("[\"a\"]\n\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, set.Queries)
}

func TestSample(t *testing.T) {
	queries := []string{"a", "b", "c", "d", "e"}

	t.Run("subset without replacement", func(t *testing.T) {
		got := Sample(queries, 3, rand.New(rand.NewPCG(1, 2)))
		require.Len(t, got, 3)

		seen := map[string]bool{}
		for _, q := range got {
			assert.Contains(t, queries, q)
			assert.False(t, seen[q], "duplicate %q", q)
			seen[q] = true
		}
	})

	t.Run("deterministic for a seed", func(t *testing.T) {
		a := Sample(queries, 2, rand.New(rand.NewPCG(7, 7)))
		b := Sample(queries, 2, rand.New(rand.NewPCG(7, 7)))
		assert.Equal(t, a, b)
	})

	t.Run("n larger than input", func(t *testing.T) {
		assert.Equal(t, queries, Sample(queries, 10, rand.New(rand.NewPCG(1, 1))))
	})

	t.Run("n zero keeps all", func(t *testing.T) {
		assert.Equal(t, queries, Sample(queries, 0, nil))
	})
}
