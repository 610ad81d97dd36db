package engine

import (
	"context"
	"net/http"
)

const exaBaseURL = "https://api.exa.ai"

type ExaSearchType string

const (
	ExaSearchAuto ExaSearchType = "auto"
	ExaSearchFast ExaSearchType = "fast"
)

type ExaExecutor struct {
	restExecutor
	searchType ExaSearchType
}

func NewExaExecutor(name, apiKey string, searchType ExaSearchType, opts ...Option) *ExaExecutor {
	return &ExaExecutor{
		restExecutor: newRestExecutor(name, exaBaseURL, apiKey, opts),
		searchType:   searchType,
	}
}

type exaRequest struct {
	Query      string        `json:"query"`
	NumResults int           `json:"numResults"`
	Type       ExaSearchType `json:"type"`
}

type exaResponse struct {
	Results []urlResult `json:"results"`
}

func (e *ExaExecutor) Execute(ctx context.Context, query string, numResults int) (Execution, error) {
	req, err := e.newJSONRequest(ctx, http.MethodPost, "/search", exaRequest{
		Query:      query,
		NumResults: numResults,
		Type:       e.searchType,
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

	var resp exaResponse
	if err := e.decode(body, &resp); err != nil {
		return exec, err
	}
	exec.URLs = collectURLs(resp.Results)
	return exec, nil
}
