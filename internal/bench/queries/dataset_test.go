package queries

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/DjordjeVuckovic/searchbench/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDatasetsServer serves /splits and /rows for one dataset whose rows
// are given in order.
type fakeDatasetsServer struct {
	mu      sync.Mutex
	offsets []int
	auth    []string
}

func (f *fakeDatasetsServer) start(t *testing.T, config string, rows []map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("dataset") != "org/queries" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"The dataset does not exist."}`))
			return
		}

		f.mu.Lock()
		f.auth = append(f.auth, r.Header.Get("Authorization"))
		f.mu.Unlock()

		switch r.URL.Path {
		case "/splits":
			_, _ = fmt.Fprintf(w, `{"splits":[{"dataset":"org/queries","config":%q,"split":"test"},{"dataset":"org/queries","config":%q,"split":"train"}]}`, config, config)

		case "/rows":
			assert.Equal(t, config, q.Get("config"))
			assert.Equal(t, "train", q.Get("split"))
			offset, _ := strconv.Atoi(q.Get("offset"))
			length, _ := strconv.Atoi(q.Get("length"))

			f.mu.Lock()
			f.offsets = append(f.offsets, offset)
			f.mu.Unlock()

			type row struct {
				RowIdx int            `json:"row_idx"`
				Row    map[string]any `json:"row"`
			}
			page := []row{}
			for i := offset; i < len(rows) && i < offset+length; i++ {
				page = append(page, row{RowIdx: i, Row: rows[i]})
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"rows": page, "num_rows_total": len(rows)})

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func makeRows(n int) []map[string]any {
	rows := make([]map[string]any, n)
	for i := range rows {
		rows[i] = map[string]any{"query": fmt.Sprintf("q%03d", i), "id": i}
	}
	return rows
}

func TestDatasetSource_Load(t *testing.T) {
	t.Run("pages through every row", func(t *testing.T) {
		fake := &fakeDatasetsServer{}
		srv := fake.start(t, "v1.1", makeRows(250))

		set, err := NewDatasetSource(WithDatasetBaseURL(srv.URL)).Load(context.Background(), DatasetRequest{
			Name:   "org/queries",
			Config: "v1.1",
		})
		require.NoError(t, err)
		require.Len(t, set.Queries, 250)
		assert.Equal(t, "q000", set.Queries[0])
		assert.Equal(t, "q249", set.Queries[249])
		assert.Equal(t, []int{0, 100, 200}, fake.offsets)
	})

	t.Run("stops at the limit", func(t *testing.T) {
		fake := &fakeDatasetsServer{}
		srv := fake.start(t, "default", makeRows(250))

		set, err := NewDatasetSource(WithDatasetBaseURL(srv.URL)).Load(context.Background(), DatasetRequest{
			Name:   "org/queries",
			Config: "default",
			Limit:  120,
		})
		require.NoError(t, err)
		assert.Len(t, set.Queries, 120)
		assert.Equal(t, []int{0, 100}, fake.offsets)
	})

	t.Run("resolves the config from the split", func(t *testing.T) {
		fake := &fakeDatasetsServer{}
		srv := fake.start(t, "v2.1", makeRows(3))

		set, err := NewDatasetSource(WithDatasetBaseURL(srv.URL), WithDatasetToken("hf-token")).
			Load(context.Background(), DatasetRequest{Name: "org/queries"})
		require.NoError(t, err)
		assert.Equal(t, []string{"q000", "q001", "q002"}, set.Queries)
		for _, h := range fake.auth {
			assert.Equal(t, "Bearer hf-token", h)
		}
	})

	t.Run("skips rows without a usable field", func(t *testing.T) {
		rows := []map[string]any{
			{"query": "first"},
			{"text": "no query"},
			{"query": 42},
			{"query": "  "},
			{"query": " last "},
		}
		fake := &fakeDatasetsServer{}
		srv := fake.start(t, "default", rows)

		set, err := NewDatasetSource(WithDatasetBaseURL(srv.URL)).Load(context.Background(), DatasetRequest{
			Name:   "org/queries",
			Config: "default",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "last"}, set.Queries)
		require.Len(t, set.Warnings, 3)
		assert.Equal(t, 2, set.Warnings[0].Line)
		assert.Contains(t, set.Warnings[1].Reason, "not a string")
	})

	t.Run("custom query field", func(t *testing.T) {
		rows := []map[string]any{{"question": "why is the sky blue"}}
		fake := &fakeDatasetsServer{}
		srv := fake.start(t, "default", rows)

		set, err := NewDatasetSource(WithDatasetBaseURL(srv.URL)).Load(context.Background(), DatasetRequest{
			Name:       "org/queries",
			Config:     "default",
			QueryField: "question",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"why is the sky blue"}, set.Queries)
	})
}

func TestDatasetSource_LoadErrors(t *testing.T) {
	fake := &fakeDatasetsServer{}
	srv := fake.start(t, "default", []map[string]any{{"text": "x"}})
	source := NewDatasetSource(WithDatasetBaseURL(srv.URL))

	tests := []struct {
		name string
		req  DatasetRequest
		want string
	}{
		{name: "no name", req: DatasetRequest{}, want: "dataset name"},
		{name: "negative limit", req: DatasetRequest{Name: "org/queries", Limit: -1}, want: "negative"},
		{name: "unknown dataset", req: DatasetRequest{Name: "org/missing", Config: "default"}, want: "status 404"},
		{name: "unknown split", req: DatasetRequest{Name: "org/queries", Split: "validation"}, want: `no split "validation"`},
		{name: "no usable rows", req: DatasetRequest{Name: "org/queries", Config: "default"}, want: "no usable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := source.Load(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, apperr.IsConfig(err), "expected config error, got %v", err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDatasetSource_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewDatasetSource(WithDatasetBaseURL(srv.URL)).Load(context.Background(), DatasetRequest{
		Name:   "org/queries",
		Config: "default",
	})
	require.Error(t, err)
	assert.False(t, apperr.IsConfig(err))
	assert.Contains(t, err.Error(), "status 500")
}
