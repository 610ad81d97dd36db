package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/DjordjeVuckovic/searchbench/internal/apperr"
	"github.com/DjordjeVuckovic/searchbench/internal/bench/engine"
	"github.com/DjordjeVuckovic/searchbench/internal/bench/profile"
	"github.com/DjordjeVuckovic/searchbench/internal/bench/runner"
	"github.com/DjordjeVuckovic/searchbench/pkg/config/env"
	"github.com/spf13/cobra"
)

const pgURLEnv = "SEARCHBENCH_PG_URL"

type cliConfig struct {
	File        string
	API         string
	NumQueries  int
	NumResults  int
	Parallel    bool
	MaxWorkers  int
	Timeout     time.Duration
	RateLimit   float64
	Output      string
	ProfilePath string
	PgURL       string
	Seed        uint64
}

// bindBenchFlags registers the flags shared by every benchmarking command.
func bindBenchFlags(cmd *cobra.Command, cfg *cliConfig) {
	f := cmd.Flags()
	f.StringVar(&cfg.API, "api", engine.All, "Engine to benchmark: "+strings.Join(engine.Names(), ", ")+", all, or a comma separated list")
	f.IntVar(&cfg.NumResults, "num-results", runner.DefaultNumResults, "Number of results requested per query")
	f.BoolVar(&cfg.Parallel, "parallel", false, "Run queries concurrently")
	f.IntVar(&cfg.MaxWorkers, "max-workers", runner.DefaultMaxWorkers, "Maximum concurrent queries in parallel mode")
	f.DurationVar(&cfg.Timeout, "timeout", runner.DefaultQueryTimeout, "Timeout for a single query")
	f.Float64Var(&cfg.RateLimit, "rate-limit", 0, "Requests per second per engine, 0 disables")
	f.StringVar(&cfg.Output, "output", profile.DefaultOutputDir, "Directory for result JSON files")
	f.StringVar(&cfg.ProfilePath, "profile", "", "Path to a YAML bench profile")
	f.StringVar(&cfg.PgURL, "pg", "", "PostgreSQL URL to archive runs in (default $"+pgURLEnv+")")
}

// resolve loads the profile, if any, and lays explicitly set flags over it.
func (c *cliConfig) resolve(cmd *cobra.Command) (*profile.Profile, error) {
	p := profile.Default()
	if c.ProfilePath != "" {
		loaded, err := profile.LoadFromFile(c.ProfilePath)
		if err != nil {
			return nil, err
		}
		p = loaded
	}

	changed := cmd.Flags().Changed
	if changed("api") {
		p.Engines = []string{c.API}
	}
	if changed("num-results") {
		p.Run.NumResults = c.NumResults
	}
	if changed("parallel") {
		parallel := c.Parallel
		p.Run.Parallel = &parallel
	}
	if changed("max-workers") {
		p.Run.MaxWorkers = c.MaxWorkers
	}
	if changed("timeout") {
		p.Run.Timeout = c.Timeout
	}
	if changed("rate-limit") {
		if c.RateLimit < 0 {
			return nil, apperr.NewConfig(fmt.Sprintf("rate limit must not be negative, got %v", c.RateLimit))
		}
		p.Run.RateLimit = c.RateLimit
	}
	if changed("output") {
		p.Output.Dir = c.Output
	}
	if cmd.Flags().Lookup("file") != nil && changed("file") {
		p.Queries.File = c.File
	}
	if cmd.Flags().Lookup("num-queries") != nil && changed("num-queries") {
		if c.NumQueries < 0 {
			return nil, apperr.NewConfig(fmt.Sprintf("num queries must not be negative, got %d", c.NumQueries))
		}
		p.Queries.Sample = c.NumQueries
	}
	if cmd.Flags().Lookup("seed") != nil && changed("seed") {
		p.Queries.Seed = c.Seed
	}

	if err := p.RunnerConfig().Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// engines expands the profile's engine selectors into engine ids.
func engines(p *profile.Profile) ([]string, error) {
	return engine.Expand(strings.Join(p.Engines, ","))
}

func (c *cliConfig) pgURL() string {
	if c.PgURL != "" {
		return c.PgURL
	}
	return env.Lookup(pgURLEnv)
}
