package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"benchdash/internal/benchmark"
)

const benchmarksRunQuery = `query {
  benchmarksrun(order_by: {id: asc}) {
    id
    commits
    name
    branch
    mbs_per_sec
    ops_per_sec
    time
  }
}`

// GraphQL fetches the benchmarksrun table through a GraphQL endpoint.
type GraphQL struct {
	endpoint string
	client   *http.Client
	// Header is added to every request, e.g. an admin secret.
	Header http.Header
	// DefaultBranch tags rows without a branch.
	DefaultBranch string
}

func NewGraphQL(endpoint string, timeout time.Duration) *GraphQL {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GraphQL{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		Header:   make(http.Header),
	}
}

func (g *GraphQL) Name() string { return TypeGraphQL }

type graphQLResponse struct {
	Data struct {
		BenchmarksRun []WireRow `json:"benchmarksrun"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (g *GraphQL) Fetch(ctx context.Context) ([]benchmark.Record, error) {
	body, err := json.Marshal(map[string]string{"query": benchmarksRunQuery})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &FetchError{Source: TypeGraphQL, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range g.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &FetchError{Source: TypeGraphQL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &FetchError{
			Source:     TypeGraphQL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response: %s", strings.TrimSpace(string(snippet))),
		}
	}

	var out graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &FetchError{Source: TypeGraphQL, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	if len(out.Errors) > 0 {
		msgs := make([]string, 0, len(out.Errors))
		for _, e := range out.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, &FetchError{Source: TypeGraphQL, StatusCode: resp.StatusCode, Err: errors.New(strings.Join(msgs, "; "))}
	}

	return Decode(TypeGraphQL, g.DefaultBranch, out.Data.BenchmarksRun), nil
}

func (g *GraphQL) Close() error {
	g.client.CloseIdleConnections()
	return nil
}
