package engine

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

const braveBaseURL = "https://api.search.brave.com"

type BraveExecutor struct {
	restExecutor
}

func NewBraveExecutor(apiKey string, opts ...Option) *BraveExecutor {
	return &BraveExecutor{restExecutor: newRestExecutor(Brave, braveBaseURL, apiKey, opts)}
}

type braveResponse struct {
	Web struct {
		Results []urlResult `json:"results"`
	} `json:"web"`
}

func (e *BraveExecutor) Execute(ctx context.Context, query string, numResults int) (Execution, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(numResults))

	req, err := e.newJSONRequest(ctx, http.MethodGet, "/res/v1/web/search?"+params.Encode(), nil)
	if err != nil {
		return Execution{}, err
	}
	req.Header.Set("X-Subscription-Token", e.apiKey)

	body, exec, err := e.roundTrip(req)
	if err != nil {
		return exec, err
	}
	// Brave answers 422 for queries it refuses to process; that is an empty result, not an outage.
	if exec.StatusCode == http.StatusUnprocessableEntity {
		return exec, nil
	}
	if exec.StatusCode != http.StatusOK {
		return exec, e.statusError(exec.StatusCode, body)
	}

	var resp braveResponse
	if err := e.decode(body, &resp); err != nil {
		return exec, err
	}
	exec.URLs = collectURLs(resp.Web.Results)
	return exec, nil
}
