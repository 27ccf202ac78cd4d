package orchestrate

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/ShayCichocki/wayfind/internal/invoke"
	"github.com/ShayCichocki/wayfind/internal/model"
	"github.com/ShayCichocki/wayfind/internal/taskparse"
	"github.com/ShayCichocki/wayfind/pkg/models"
)

// searchUnavailableMarker prefixes results for tasks the analysis routed
// to search when no search credential is configured. The task still
// executes through reasoning; the marker keeps the degradation visible.
const searchUnavailableMarker = "ERROR: search is unavailable (no search credential configured), answered from reasoning instead.\n\n"

// executeDefault is the fallback result when both the primary chain and
// the direct model call fail during execution.
const executeDefault = "I am sorry, I could not complete the task right now. The model is unavailable; please try again later."

// LiveService is the production orchestrator: every stage is one model
// call through the resilient invocation layer, plus parsing.
type LiveService struct {
	invoker *invoke.Invoker
	client  model.Client
	search  Searcher
}

// NewLiveService creates the live orchestrator. search may be nil.
func NewLiveService(invoker *invoke.Invoker, client model.Client, search Searcher) *LiveService {
	return &LiveService{invoker: invoker, client: client, search: search}
}

// promptChain is the structured call the invocation layer retries: one
// completion with the agent persona and a pre-rendered user prompt. The
// invocation input is what gets fingerprinted for the cache; the prompt
// is rendered from the same fields.
type promptChain struct {
	client model.Client
	prompt string
}

func (c promptChain) Invoke(ctx context.Context, input map[string]any) (model.Response, error) {
	return c.client.Complete(ctx, model.Request{
		System:   agentPersona,
		Messages: []model.Message{{Role: "user", Content: c.prompt}},
		Settings: invoke.SettingsFrom(input),
	})
}

// StartGoal decomposes the goal into initial tasks. If anything below
// fails unexpectedly, a single synthetic bootstrap task comes back
// instead of an empty list so the session loop never stalls on its very
// first step.
func (s *LiveService) StartGoal(ctx context.Context, settings models.ModelSettings, goal string) (tasks []string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[orchestrate] start goal panicked: %v", r)
			tasks = []string{bootstrapTask(goal)}
		}
	}()

	input := invoke.WithSettings(map[string]any{
		"stage":    "start",
		"goal":     goal,
		"language": settings.LanguageOrDefault(),
	}, settings)
	chain := promptChain{
		client: s.client,
		prompt: fmt.Sprintf(startGoalPrompt, settings.LanguageOrDefault(), goal),
	}

	result := s.invoker.SafeInvoke(ctx, chain, input, "[]")
	return taskparse.ExtractTasks(result, nil)
}

// AnalyzeTask decides reason-vs-search for one task. Malformed model
// output falls back to the fixed default analysis; analysis never blocks
// execution.
func (s *LiveService) AnalyzeTask(ctx context.Context, settings models.ModelSettings, goal, task string) Analysis {
	input := invoke.WithSettings(map[string]any{
		"stage":            "analyze",
		"goal":             goal,
		"task":             task,
		"availableActions": availableActions,
	}, settings)
	chain := promptChain{
		client: s.client,
		prompt: fmt.Sprintf(analyzeTaskPrompt, goal, task, strings.Join(availableActions, ", ")),
	}

	result := s.invoker.SafeInvoke(ctx, chain, input, defaultAnalysisJSON)
	return parseAnalysis(result)
}

// ExecuteTask carries out one task. Search-routed tasks delegate to the
// search collaborator and return its summary verbatim; without a search
// credential they execute through reasoning behind a visible error marker.
func (s *LiveService) ExecuteTask(ctx context.Context, settings models.ModelSettings, goal, task string, analysis Analysis) string {
	if analysis.Action == ActionSearch {
		if s.search != nil {
			return s.search.Search(ctx, settings, goal, analysis.Arg)
		}
		return searchUnavailableMarker + s.reason(ctx, settings, goal, task)
	}

	return s.reason(ctx, settings, goal, task)
}

// reason is the reasoning execution path: a direct model call through the
// invocation layer with the fixed apology default.
func (s *LiveService) reason(ctx context.Context, settings models.ModelSettings, goal, task string) string {
	input := invoke.WithSettings(map[string]any{
		"stage":    "execute",
		"goal":     goal,
		"task":     task,
		"language": settings.LanguageOrDefault(),
	}, settings)
	chain := promptChain{
		client: s.client,
		prompt: fmt.Sprintf(executeTaskPrompt, settings.LanguageOrDefault(), goal, task),
	}

	return s.invoker.SafeInvoke(ctx, chain, input, executeDefault)
}

// CreateTasks proposes follow-up tasks from the last result. Total
// failure yields an empty list: the loop simply proposes no new work.
func (s *LiveService) CreateTasks(ctx context.Context, settings models.ModelSettings, goal string, pending []string, lastTask, lastResult string, completed []string) (tasks []string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[orchestrate] create tasks panicked: %v", r)
			tasks = nil
		}
	}()

	input := invoke.WithSettings(map[string]any{
		"stage":      "create",
		"goal":       goal,
		"tasks":      pending,
		"lastTask":   lastTask,
		"lastResult": lastResult,
		"language":   settings.LanguageOrDefault(),
	}, settings)
	chain := promptChain{
		client: s.client,
		prompt: fmt.Sprintf(createTasksPrompt,
			settings.LanguageOrDefault(), goal, joinTasks(pending), lastTask, lastResult),
	}

	result := s.invoker.SafeInvoke(ctx, chain, input, "[]")
	return taskparse.ExtractTasks(result, completed)
}

// bootstrapTask is the synthetic first task used when goal decomposition
// fails outright.
func bootstrapTask(goal string) string {
	return fmt.Sprintf("Make a concrete plan for how to achieve this goal: %s", goal)
}

// joinTasks renders a pending-task list for prompt text.
func joinTasks(tasks []string) string {
	if len(tasks) == 0 {
		return "[]"
	}
	b, err := json.Marshal(tasks)
	if err != nil {
		return strings.Join(tasks, "; ")
	}
	return string(b)
}
