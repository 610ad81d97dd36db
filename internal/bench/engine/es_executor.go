package engine

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
)

var defaultEsFields = []string{"title", "description", "content"}

type EsConfig struct {
	Addresses    []string
	Username     string
	Password     string
	// CACert is the PEM bundle used to verify an https cluster.
	CACert       []byte
	Index        string
	Fields       []string
	Timeout      time.Duration
	MaxIdleConns int
}

// EsExecutor runs a multi_match query against a self-hosted Elasticsearch
// index. It gives a local baseline next to the hosted providers.
type EsExecutor struct {
	name   string
	index  string
	fields []string
	client *elasticsearch.TypedClient
}

func NewEsExecutor(cfg EsConfig) (*EsExecutor, error) {
	if len(cfg.Addresses) == 0 {
		return nil, fmt.Errorf("elasticsearch: no addresses configured")
	}
	if cfg.Index == "" {
		return nil, fmt.Errorf("elasticsearch: no index configured")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := newTransport()
	transport.ResponseHeaderTimeout = timeout
	if cfg.MaxIdleConns > transport.MaxIdleConnsPerHost {
		transport.MaxIdleConnsPerHost = cfg.MaxIdleConns
		transport.MaxIdleConns = max(transport.MaxIdleConns, cfg.MaxIdleConns)
	}

	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
		Transport: transport,
		CACert:    cfg.CACert,
	}
	if cfg.Username != "" && cfg.Password != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	client, err := elasticsearch.NewTypedClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	fields := cfg.Fields
	if len(fields) == 0 {
		fields = defaultEsFields
	}

	return &EsExecutor{
		name:   Elasticsearch,
		index:  cfg.Index,
		fields: fields,
		client: client,
	}, nil
}

func (e *EsExecutor) Execute(ctx context.Context, query string, numResults int) (Execution, error) {
	searchReq := e.client.Search().
		Index(e.index).
		Query(&types.Query{
			MultiMatch: &types.MultiMatchQuery{
				Query:  query,
				Fields: e.fields,
			},
		}).
		Size(numResults)

	start := time.Now()
	res, err := searchReq.Do(ctx)
	latency := time.Since(start)
	if err != nil {
		return Execution{Latency: latency}, fmt.Errorf("es search: %w", err)
	}

	ids := make([]string, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		if hit.Id_ != nil {
			ids = append(ids, *hit.Id_)
		}
	}

	return Execution{
		URLs:       ids,
		StatusCode: http.StatusOK,
		Latency:    latency,
	}, nil
}

func (e *EsExecutor) Name() string { return e.name }
func (e *EsExecutor) Close() error { return nil }
