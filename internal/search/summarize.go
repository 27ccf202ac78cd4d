package search

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/ShayCichocki/wayfind/internal/model"
	"github.com/ShayCichocki/wayfind/pkg/models"
)

// summarizePrompt condenses raw snippets into an answer for the goal.
// Args: language, goal, query, formatted snippets.
const summarizePrompt = `Answer in the "%s" language.
You are helping with the objective: "%s".
Summarize the following web search results for the query "%s" into a
concise answer. Cite source titles inline where useful.

%s`

// Summarizer is the orchestrator-facing search collaborator: it runs the
// query through a provider and condenses the snippets with the model.
// Search never returns a Go error at call time; failures come back as an
// inline error string the session can display.
type Summarizer struct {
	provider *Serper
	client   model.Client
}

// NewSummarizer wires a provider to the model collaborator.
func NewSummarizer(provider *Serper, client model.Client) *Summarizer {
	return &Summarizer{provider: provider, client: client}
}

// Search executes the query and returns summarized text. Provider errors
// degrade to an inline error string; summarization errors degrade to the
// formatted raw snippets.
func (s *Summarizer) Search(ctx context.Context, settings models.ModelSettings, goal, query string) string {
	results, err := s.provider.Search(ctx, query, 5)
	if err != nil {
		log.Printf("[search] query failed: %v", err)
		return fmt.Sprintf("ERROR: failed to fetch search results for %q: %v", query, err)
	}
	if len(results) == 0 {
		return fmt.Sprintf("No search results found for %q.", query)
	}

	raw := FormatResults(results)

	resp, err := s.client.Complete(ctx, model.Request{
		Messages: []model.Message{{
			Role: "user",
			Content: fmt.Sprintf(summarizePrompt,
				settings.LanguageOrDefault(), goal, query, raw),
		}},
		Settings: settings,
	})
	if err != nil {
		log.Printf("[search] summarization failed, returning raw results: %v", err)
		return raw
	}

	if text := model.ExtractText(resp); text != "" {
		return text
	}
	return raw
}

// FormatResults renders results as a numbered snippet list.
func FormatResults(results []Result) string {
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r.Title)
		if r.Snippet != "" {
			fmt.Fprintf(&b, "   %s\n", r.Snippet)
		}
		if r.URL != "" {
			fmt.Fprintf(&b, "   %s\n", r.URL)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
