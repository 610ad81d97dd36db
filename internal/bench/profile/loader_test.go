package profile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DjordjeVuckovic/searchbench/internal/apperr"
	"github.com/DjordjeVuckovic/searchbench/internal/bench/engine"
	"github.com/DjordjeVuckovic/searchbench/internal/bench/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("valid profile", func(t *testing.T) {
		yaml := `
engines: [brave, exa-fast, elasticsearch]
queries:
  file: queries.jsonl
  sample: 50
  seed: 42
run:
  num_results: 5
  parallel: true
  max_workers: 8
  timeout: 15s
  pause: 0s
  rate_limit: 2
output:
  dir: out
engine_options:
  brave:
    rate_limit: 1
    base_url: http://localhost:8080
elasticsearch:
  index: web
  fields: [title, body]
`
		p, err := Parse([]byte(yaml))
		require.NoError(t, err)
		assert.Equal(t, []string{"brave", "exa-fast", "elasticsearch"}, p.Engines)
		assert.Equal(t, 50, p.Queries.Sample)
		assert.Equal(t, uint64(42), p.Queries.Seed)
		assert.Equal(t, "out", p.Output.Dir)

		cfg := p.RunnerConfig()
		assert.Equal(t, 5, cfg.NumResults)
		assert.True(t, cfg.Parallel)
		assert.Equal(t, 8, cfg.MaxWorkers)
		assert.Equal(t, 15*time.Second, cfg.QueryTimeout)
		assert.Zero(t, cfg.Pause)

		opts := p.EngineOpts()
		assert.Equal(t, 2.0, opts.RateLimit)
		assert.Equal(t, 1.0, opts.RateLimits[engine.Brave])
		assert.Equal(t, "http://localhost:8080", opts.BaseURLs[engine.Brave])
		assert.Equal(t, "web", opts.EsIndex)
		assert.Equal(t, []string{"title", "body"}, opts.EsFields)
		assert.Equal(t, 8, opts.MaxIdleConns)
	})

	t.Run("defaults applied", func(t *testing.T) {
		p, err := Parse([]byte("run: {}\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{engine.All}, p.Engines)
		assert.Equal(t, runner.DefaultNumResults, p.Run.NumResults)
		assert.Equal(t, runner.DefaultMaxWorkers, p.Run.MaxWorkers)
		assert.Equal(t, runner.DefaultQueryTimeout, p.Run.Timeout)
		assert.Equal(t, DefaultOutputDir, p.Output.Dir)
		assert.Equal(t, DefaultEsIndex, p.Elasticsearch.Index)

		cfg := p.RunnerConfig()
		assert.False(t, cfg.Parallel)
		assert.Equal(t, runner.DefaultPause, cfg.Pause)
	})

	t.Run("unknown engine", func(t *testing.T) {
		_, err := Parse([]byte("engines: [bing]\n"))
		require.Error(t, err)
		assert.True(t, apperr.IsConfig(err))
		assert.Contains(t, err.Error(), "unknown engine")
	})

	t.Run("unknown engine in options", func(t *testing.T) {
		_, err := Parse([]byte("engine_options:\n  bing:\n    rate_limit: 1\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "engine_options")
	})

	t.Run("negative workers", func(t *testing.T) {
		_, err := Parse([]byte("run:\n  max_workers: -1\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_workers")
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := Parse([]byte("engines: [brave"))
		require.Error(t, err)
		assert.True(t, apperr.IsConfig(err))
	})
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engines: [perplexity]\n"), 0o644))

	p, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{engine.Perplexity}, p.Engines)

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, apperr.IsConfig(err))
}

func TestDefault(t *testing.T) {
	p := Default()
	assert.Equal(t, []string{engine.All}, p.Engines)
	assert.Equal(t, runner.DefaultConfig().NumResults, p.RunnerConfig().NumResults)
}
