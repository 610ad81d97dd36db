package engine

import (
	"context"
	"net/http"
)

const perplexityBaseURL = "https://api.perplexity.ai"

type PerplexityExecutor struct {
	restExecutor
}

func NewPerplexityExecutor(apiKey string, opts ...Option) *PerplexityExecutor {
	return &PerplexityExecutor{restExecutor: newRestExecutor(Perplexity, perplexityBaseURL, apiKey, opts)}
}

type perplexityRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type perplexityResponse struct {
	Results []urlResult `json:"results"`
}

func (e *PerplexityExecutor) Execute(ctx context.Context, query string, numResults int) (Execution, error) {
	req, err := e.newJSONRequest(ctx, http.MethodPost, "/search", perplexityRequest{
		Query:      query,
		MaxResults: numResults,
	})
	if err != nil {
		return Execution{}, err
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	body, exec, err := e.roundTrip(req)
	if err != nil {
		return exec, err
	}
	if exec.StatusCode != http.StatusOK {
		return exec, e.statusError(exec.StatusCode, body)
	}

	var resp perplexityResponse
	if err := e.decode(body, &resp); err != nil {
		return exec, err
	}
	exec.URLs = collectURLs(resp.Results)
	return exec, nil
}
