package queries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/DjordjeVuckovic/searchbench/internal/apperr"
	"github.com/DjordjeVuckovic/searchbench/pkg/config/env"
	"github.com/DjordjeVuckovic/searchbench/pkg/middleware"
)

const (
	DefaultDatasetsServerURL = "https://datasets-server.huggingface.co"
	DefaultSplit             = "train"
	DefaultQueryField        = "query"

	// datasetPageSize is the largest page the /rows endpoint serves.
	datasetPageSize    = 100
	datasetTimeout     = 30 * time.Second
	maxDatasetErrorLen = 512
)

// DatasetRequest selects the rows to read. Limit 0 reads the whole split.
type DatasetRequest struct {
	Name       string
	Config     string
	Split      string
	QueryField string
	Limit      int
}

func (r *DatasetRequest) normalize() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return apperr.NewConfig("a dataset name is required")
	}
	if r.Limit < 0 {
		return apperr.NewConfig(fmt.Sprintf("dataset limit must not be negative, got %d", r.Limit))
	}
	if r.Split == "" {
		r.Split = DefaultSplit
	}
	if r.QueryField == "" {
		r.QueryField = DefaultQueryField
	}
	return nil
}

// DatasetSource reads queries from a HuggingFace dataset through the
// datasets-server REST API, one page of rows at a time.
type DatasetSource struct {
	baseURL string
	token   string
	client  *http.Client
}

type DatasetOption func(*DatasetSource)

func WithDatasetBaseURL(baseURL string) DatasetOption {
	return func(s *DatasetSource) {
		if baseURL != "" {
			s.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithDatasetToken authenticates requests, needed for gated datasets.
func WithDatasetToken(token string) DatasetOption {
	return func(s *DatasetSource) {
		s.token = token
	}
}

func WithDatasetHTTPClient(client *http.Client) DatasetOption {
	return func(s *DatasetSource) {
		s.client = client
	}
}

func NewDatasetSource(opts ...DatasetOption) *DatasetSource {
	s := &DatasetSource{
		baseURL: DefaultDatasetsServerURL,
		client:  &http.Client{Timeout: datasetTimeout, Transport: middleware.Logger(nil)},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewDatasetSourceFromEnv reads HF_TOKEN and HF_DATASETS_SERVER_URL.
func NewDatasetSourceFromEnv(opts ...DatasetOption) *DatasetSource {
	opts = append([]DatasetOption{
		WithDatasetBaseURL(env.Lookup("HF_DATASETS_SERVER_URL")),
		WithDatasetToken(env.Lookup("HF_TOKEN")),
	}, opts...)
	return NewDatasetSource(opts...)
}

type splitsResponse struct {
	Splits []struct {
		Config string `json:"config"`
		Split  string `json:"split"`
	} `json:"splits"`
}

type rowsResponse struct {
	Rows []struct {
		RowIdx int                        `json:"row_idx"`
		Row    map[string]json.RawMessage `json:"row"`
	} `json:"rows"`
	NumRowsTotal int `json:"num_rows_total"`
}

// Load pages through the split in row order and keeps the first Limit usable
// queries. Rows without a string query field are skipped with a Warning.
func (s *DatasetSource) Load(ctx context.Context, req DatasetRequest) (*Set, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}

	if req.Config == "" {
		config, err := s.resolveConfig(ctx, req.Name, req.Split)
		if err != nil {
			return nil, err
		}
		req.Config = config
	}

	slog.Info("Loading dataset", "dataset", req.Name, "config", req.Config, "split", req.Split, "limit", req.Limit)

	set := &Set{}
	for offset := 0; ; {
		var page rowsResponse
		if err := s.get(ctx, "/rows", url.Values{
			"dataset": {req.Name},
			"config":  {req.Config},
			"split":   {req.Split},
			"offset":  {strconv.Itoa(offset)},
			"length":  {strconv.Itoa(datasetPageSize)},
		}, &page); err != nil {
			return nil, err
		}

		for _, row := range page.Rows {
			q, reason := rowQuery(row.Row, req.QueryField)
			if reason != "" {
				set.Warnings = append(set.Warnings, Warning{Line: row.RowIdx + 1, Reason: reason})
				continue
			}
			set.Queries = append(set.Queries, q)
			if req.Limit > 0 && len(set.Queries) >= req.Limit {
				return finishDataset(req, set)
			}
		}

		offset += len(page.Rows)
		if len(page.Rows) == 0 || offset >= page.NumRowsTotal {
			return finishDataset(req, set)
		}
	}
}

func finishDataset(req DatasetRequest, set *Set) (*Set, error) {
	if len(set.Queries) == 0 {
		return nil, apperr.NewConfig(fmt.Sprintf("dataset %s has no usable %q values", req.Name, req.QueryField))
	}
	slog.Info("Loaded dataset queries", "dataset", req.Name, "count", len(set.Queries), "skipped", len(set.Warnings))
	return set, nil
}

func (s *DatasetSource) resolveConfig(ctx context.Context, name, split string) (string, error) {
	var resp splitsResponse
	if err := s.get(ctx, "/splits", url.Values{"dataset": {name}}, &resp); err != nil {
		return "", err
	}
	for _, sp := range resp.Splits {
		if sp.Split == split {
			slog.Debug("Resolved dataset config", "dataset", name, "config", sp.Config)
			return sp.Config, nil
		}
	}
	return "", apperr.NewConfig(fmt.Sprintf("dataset %s has no split %q", name, split))
}

func rowQuery(row map[string]json.RawMessage, field string) (string, string) {
	raw, ok := row[field]
	if !ok {
		return "", fmt.Sprintf("missing field %q", field)
	}
	var q string
	if err := json.Unmarshal(raw, &q); err != nil {
		return "", fmt.Sprintf("field %q is not a string", field)
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return "", fmt.Sprintf("empty field %q", field)
	}
	return q, ""
}

func (s *DatasetSource) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("dataset create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("dataset request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("dataset read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(body) > maxDatasetErrorLen {
			body = body[:maxDatasetErrorLen]
		}
		msg := fmt.Sprintf("datasets-server %s returned status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
		// Unknown dataset, config or split.
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound {
			return apperr.NewConfig(msg)
		}
		return errors.New(msg)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("dataset decode %s: %w", path, err)
	}
	return nil
}
