package profile

import (
	"fmt"
	"os"

	"github.com/DjordjeVuckovic/searchbench/internal/apperr"
	"github.com/DjordjeVuckovic/searchbench/internal/bench/engine"
	"github.com/DjordjeVuckovic/searchbench/internal/bench/runner"
	"gopkg.in/yaml.v3"
)

const (
	DefaultOutputDir = "results"
	DefaultEsIndex   = "news"
)

func LoadFromFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.NewConfigWrap("read profile file", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, apperr.NewConfigWrap("parse profile YAML", err)
	}
	if err := validate(&p); err != nil {
		return nil, apperr.NewConfigWrap("invalid profile", err)
	}
	return &p, nil
}

func validate(p *Profile) error {
	if len(p.Engines) == 0 {
		p.Engines = []string{engine.All}
	}
	for _, name := range p.Engines {
		if name != engine.All && !engine.IsKnown(name) {
			return fmt.Errorf("unknown engine %q", name)
		}
	}
	for name, opt := range p.EngineOptions {
		if !engine.IsKnown(name) {
			return fmt.Errorf("engine_options references unknown engine %q", name)
		}
		if opt.RateLimit != nil && *opt.RateLimit < 0 {
			return fmt.Errorf("engine %q has negative rate_limit", name)
		}
	}

	if p.Run.NumResults < 0 {
		return fmt.Errorf("num_results must not be negative, got %d", p.Run.NumResults)
	}
	if p.Run.NumResults == 0 {
		p.Run.NumResults = runner.DefaultNumResults
	}
	if p.Run.MaxWorkers < 0 {
		return fmt.Errorf("max_workers must not be negative, got %d", p.Run.MaxWorkers)
	}
	if p.Run.MaxWorkers == 0 {
		p.Run.MaxWorkers = runner.DefaultMaxWorkers
	}
	if p.Run.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", p.Run.Timeout)
	}
	if p.Run.Timeout == 0 {
		p.Run.Timeout = runner.DefaultQueryTimeout
	}
	if p.Run.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative, got %v", p.Run.RateLimit)
	}
	if p.Queries.Sample < 0 {
		return fmt.Errorf("queries.sample must not be negative, got %d", p.Queries.Sample)
	}

	if p.Output.Dir == "" {
		p.Output.Dir = DefaultOutputDir
	}
	if p.Elasticsearch.Index == "" {
		p.Elasticsearch.Index = DefaultEsIndex
	}
	return nil
}

// Default is the profile used when no file is given.
func Default() *Profile {
	p := &Profile{}
	_ = validate(p)
	return p
}

func (p *Profile) RunnerConfig() runner.Config {
	cfg := runner.DefaultConfig()
	cfg.NumResults = p.Run.NumResults
	cfg.MaxWorkers = p.Run.MaxWorkers
	cfg.QueryTimeout = p.Run.Timeout
	if p.Run.Parallel != nil {
		cfg.Parallel = *p.Run.Parallel
	}
	if p.Run.Pause != nil {
		cfg.Pause = *p.Run.Pause
	}
	return cfg
}

func (p *Profile) EngineOpts() engine.Options {
	opts := engine.Options{
		Timeout:      p.Run.Timeout,
		RateLimit:    p.Run.RateLimit,
		RateLimits:   make(map[string]float64),
		BaseURLs:     make(map[string]string),
		EsIndex:      p.Elasticsearch.Index,
		EsFields:     p.Elasticsearch.Fields,
		MaxIdleConns: p.Run.MaxWorkers,
	}
	for name, o := range p.EngineOptions {
		if o.RateLimit != nil {
			opts.RateLimits[name] = *o.RateLimit
		}
		if o.BaseURL != "" {
			opts.BaseURLs[name] = o.BaseURL
		}
	}
	return opts
}
