package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/DjordjeVuckovic/searchbench/internal/apperr"
	"github.com/DjordjeVuckovic/searchbench/pkg/config/env"
	"github.com/DjordjeVuckovic/searchbench/pkg/stringsutil"
)

const (
	ExaAuto       = "exa-auto"
	ExaFast       = "exa-fast"
	Brave         = "brave"
	Perplexity    = "perplexity"
	Parallel      = "parallel"
	Elasticsearch = "elasticsearch"

	// All selects every hosted provider. Elasticsearch needs a local
	// cluster and is only run when named explicitly.
	All = "all"
)

var hosted = []string{ExaAuto, ExaFast, Brave, Perplexity, Parallel}

// Names lists every selectable engine id.
func Names() []string {
	return append(append([]string{}, hosted...), Elasticsearch)
}

func IsKnown(name string) bool {
	for _, n := range Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Expand turns an API selector ("all", one engine id, or a comma separated
// list) into engine ids, preserving order and dropping duplicates.
func Expand(selector string) ([]string, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" || selector == All {
		return append([]string{}, hosted...), nil
	}

	seen := make(map[string]bool)
	var names []string
	for _, part := range strings.Split(selector, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		if name == All {
			for _, h := range hosted {
				if !seen[h] {
					seen[h] = true
					names = append(names, h)
				}
			}
			continue
		}
		if !IsKnown(name) {
			return nil, apperr.NewConfig(fmt.Sprintf("unknown api %q (valid: %s, all)", name, strings.Join(Names(), ", ")))
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, apperr.NewConfig("no api selected")
	}
	return names, nil
}

type Credentials struct {
	ExaAPIKey        string
	BraveAPIKey      string
	PerplexityAPIKey string
	ParallelAPIKey   string
	EsAddresses      []string
	EsUsername       string
	EsPassword       string
}

func CredentialsFromEnv() Credentials {
	return Credentials{
		ExaAPIKey:        env.Lookup("EXA_API_KEY"),
		BraveAPIKey:      env.Lookup("BRAVE_API_KEY"),
		PerplexityAPIKey: env.Lookup("PERPLEXITY_API_KEY"),
		ParallelAPIKey:   env.Lookup("PARALLEL_API_KEY"),
		EsAddresses:      stringsutil.SplitNonEmpty(env.Lookup("ELASTICSEARCH_ADDRESSES"), ","),
		EsUsername:       env.Lookup("ELASTICSEARCH_USERNAME"),
		EsPassword:       env.Lookup("ELASTICSEARCH_PASSWORD"),
	}
}

type Options struct {
	Timeout    time.Duration
	RateLimit  float64            // requests per second, 0 disables
	RateLimits map[string]float64 // engine id -> override of RateLimit
	BaseURLs   map[string]string  // engine id -> base URL override
	EsIndex    string
	EsFields   []string
	// MaxIdleConns is the idle pool size per provider host. Set it to the
	// worker count so parallel runs do not redial between queries.
	MaxIdleConns int
}

// New builds the executor for one engine id. A missing credential is a
// configuration error.
func New(name string, creds Credentials, opts Options) (Executor, error) {
	restOpts := []Option{
		WithTimeout(opts.Timeout),
		WithBaseURL(opts.BaseURLs[name]),
		WithMaxIdleConns(opts.MaxIdleConns),
	}

	var exec Executor
	switch name {
	case ExaAuto, ExaFast:
		if creds.ExaAPIKey == "" {
			return nil, missingCredential(name, "EXA_API_KEY")
		}
		searchType := ExaSearchAuto
		if name == ExaFast {
			searchType = ExaSearchFast
		}
		exec = NewExaExecutor(name, creds.ExaAPIKey, searchType, restOpts...)

	case Brave:
		if creds.BraveAPIKey == "" {
			return nil, missingCredential(name, "BRAVE_API_KEY")
		}
		exec = NewBraveExecutor(creds.BraveAPIKey, restOpts...)

	case Perplexity:
		if creds.PerplexityAPIKey == "" {
			return nil, missingCredential(name, "PERPLEXITY_API_KEY")
		}
		exec = NewPerplexityExecutor(creds.PerplexityAPIKey, restOpts...)

	case Parallel:
		if creds.ParallelAPIKey == "" {
			return nil, missingCredential(name, "PARALLEL_API_KEY")
		}
		exec = NewParallelExecutor(creds.ParallelAPIKey, restOpts...)

	case Elasticsearch:
		if len(creds.EsAddresses) == 0 {
			return nil, missingCredential(name, "ELASTICSEARCH_ADDRESSES")
		}
		es, err := NewEsExecutor(EsConfig{
			Addresses:    creds.EsAddresses,
			Username:     creds.EsUsername,
			Password:     creds.EsPassword,
			Index:        opts.EsIndex,
			Fields:       opts.EsFields,
			Timeout:      opts.Timeout,
			MaxIdleConns: opts.MaxIdleConns,
		})
		if err != nil {
			return nil, apperr.NewConfigWrap("configure elasticsearch", err)
		}
		exec = es

	default:
		return nil, apperr.NewConfig(fmt.Sprintf("unsupported engine %q", name))
	}

	limit := opts.RateLimit
	if v, ok := opts.RateLimits[name]; ok {
		limit = v
	}
	if limit > 0 {
		return NewRateLimited(exec, limit), nil
	}
	return exec, nil
}

// NewAll builds executors for every name, in order. Nothing is returned if
// any engine fails to configure, so no query is sent on a bad setup.
func NewAll(names []string, creds Credentials, opts Options) ([]Executor, func(), error) {
	executors := make([]Executor, 0, len(names))

	cleanup := func() {
		for _, e := range executors {
			_ = e.Close()
		}
	}

	for _, name := range names {
		exec, err := New(name, creds, opts)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		executors = append(executors, exec)
	}

	return executors, cleanup, nil
}

func missingCredential(engine, key string) error {
	return apperr.NewConfig(fmt.Sprintf("%s is required for engine %q", key, engine))
}
