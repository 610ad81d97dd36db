package engine

import (
	"context"
	"net/http"
)

const parallelBaseURL = "https://api.parallel.ai"

// ParallelExecutor queries the Parallel Web Systems search API in one-shot mode.
type ParallelExecutor struct {
	restExecutor
}

func NewParallelExecutor(apiKey string, opts ...Option) *ParallelExecutor {
	return &ParallelExecutor{restExecutor: newRestExecutor(Parallel, parallelBaseURL, apiKey, opts)}
}

type parallelRequest struct {
	SearchQueries []string `json:"search_queries"`
	MaxResults    int      `json:"max_results"`
	Mode          string   `json:"mode"`
}

type parallelResponse struct {
	Results []urlResult `json:"results"`
}

func (e *ParallelExecutor) Execute(ctx context.Context, query string, numResults int) (Execution, error) {
	req, err := e.newJSONRequest(ctx, http.MethodPost, "/v1beta/search", parallelRequest{
		SearchQueries: []string{query},
		MaxResults:    numResults,
		Mode:          "one-shot",
	})
	if err != nil {
		return Execution{}, err
	}
	req.Header.Set("x-api-key", e.apiKey)

	body, exec, err := e.roundTrip(req)
	if err != nil {
		return exec, err
	}
	if exec.StatusCode != http.StatusOK {
		return exec, e.statusError(exec.StatusCode, body)
	}

	var resp parallelResponse
	if err := e.decode(body, &resp); err != nil {
		return exec, err
	}
	exec.URLs = collectURLs(resp.Results)
	return exec, nil
}
