// Package search provides the web-search collaborator: a Serper.dev
// provider plus model-backed summarization of the raw results.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNoAPIKey is returned at construction when no search credential is
// configured. Missing credentials are a fail-fast configuration error,
// not a runtime one.
var ErrNoAPIKey = errors.New("no Serper API key configured")

const serperEndpoint = "https://google.serper.dev/search"

// Result is a single search result.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// Serper queries the Serper.dev Google search API.
type Serper struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewSerper creates a Serper provider. It fails when apiKey is empty.
func NewSerper(apiKey string) (*Serper, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return &Serper{
		apiKey:   apiKey,
		endpoint: serperEndpoint,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

// serperResponse is the JSON response from Serper's search endpoint.
type serperResponse struct {
	AnswerBox struct {
		Answer  string `json:"answer"`
		Snippet string `json:"snippet"`
	} `json:"answerBox"`
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

// Search executes a query and returns up to count results. An answer-box
// hit is returned first when present.
func (s *Serper) Search(ctx context.Context, query string, count int) ([]Result, error) {
	if count <= 0 {
		count = 5
	}

	body, err := json.Marshal(map[string]any{"q": query})
	if err != nil {
		return nil, fmt.Errorf("serper: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("serper: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serper: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("serper: HTTP %d: %s", resp.StatusCode, string(snippet))
	}

	var sr serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("serper: decode response: %w", err)
	}

	var results []Result
	if sr.AnswerBox.Answer != "" || sr.AnswerBox.Snippet != "" {
		snippet := sr.AnswerBox.Answer
		if snippet == "" {
			snippet = sr.AnswerBox.Snippet
		}
		results = append(results, Result{Title: "Answer", Snippet: snippet})
	}
	for _, o := range sr.Organic {
		if len(results) >= count {
			break
		}
		results = append(results, Result{Title: o.Title, URL: o.Link, Snippet: o.Snippet})
	}

	return results, nil
}
