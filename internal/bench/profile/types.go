package profile

import "time"

// Profile is a reusable benchmark setup kept in YAML. Zero values mean
// "not set"; defaults are filled in by Parse.
type Profile struct {
	Engines       []string                `yaml:"engines"`
	Queries       QueriesConfig           `yaml:"queries"`
	Run           RunConfig               `yaml:"run"`
	Output        OutputConfig            `yaml:"output"`
	EngineOptions map[string]EngineOption `yaml:"engine_options"`
	Elasticsearch EsConfig                `yaml:"elasticsearch"`
}

type QueriesConfig struct {
	File   string `yaml:"file"`
	Sample int    `yaml:"sample"`
	Seed   uint64 `yaml:"seed"`
}

type RunConfig struct {
	NumResults int            `yaml:"num_results"`
	Parallel   *bool          `yaml:"parallel"`
	MaxWorkers int            `yaml:"max_workers"`
	Timeout    time.Duration  `yaml:"timeout"`
	Pause      *time.Duration `yaml:"pause"`
	RateLimit  float64        `yaml:"rate_limit"`
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
}

type EngineOption struct {
	RateLimit *float64 `yaml:"rate_limit"`
	BaseURL   string   `yaml:"base_url"`
}

type EsConfig struct {
	Index  string   `yaml:"index"`
	Fields []string `yaml:"fields"`
}
