// Package orchestrate implements the four-stage agent control loop:
// start goal → analyze task → execute task → create follow-up tasks.
// Each stage is an independent, statelessly-invokable operation; the
// caller owns session state (goal, pending tasks, completed tasks) and
// re-supplies it on every call, along with loop-budget enforcement.
package orchestrate

import (
	"context"

	"github.com/ShayCichocki/wayfind/internal/invoke"
	"github.com/ShayCichocki/wayfind/internal/model"
	"github.com/ShayCichocki/wayfind/pkg/models"
)

// AgentService is the orchestrator contract. No method returns an error:
// every stage degrades to a usable value instead of failing the session.
type AgentService interface {
	// StartGoal decomposes a fresh goal into the initial task list.
	StartGoal(ctx context.Context, settings models.ModelSettings, goal string) []string

	// AnalyzeTask decides whether to reason or search for one task.
	AnalyzeTask(ctx context.Context, settings models.ModelSettings, goal, task string) Analysis

	// ExecuteTask carries out one task according to its analysis and
	// returns the result text.
	ExecuteTask(ctx context.Context, settings models.ModelSettings, goal, task string, analysis Analysis) string

	// CreateTasks proposes follow-up tasks from the last result. Tasks
	// already present in completed are never reproduced.
	CreateTasks(ctx context.Context, settings models.ModelSettings, goal string, pending []string, lastTask, lastResult string, completed []string) []string
}

// Searcher is the external web-search collaborator. Implementations
// return result text or an inline error string; they never fail with a
// Go error at call time.
type Searcher interface {
	Search(ctx context.Context, settings models.ModelSettings, goal, query string) string
}

// Options configures service construction.
type Options struct {
	// Mock selects the canned offline implementation instead of the
	// live one.
	Mock bool
	// Invoker is the resilient invocation layer (required when live).
	Invoker *invoke.Invoker
	// Client is the model collaborator (required when live).
	Client model.Client
	// Searcher is the optional web-search collaborator. Nil degrades
	// search-analyzed tasks to reasoning with an inline error marker.
	Searcher Searcher
}

// New constructs an AgentService. The Mock flag picks between the live
// four-stage implementation and the deterministic canned one.
func New(opts Options) AgentService {
	if opts.Mock {
		return NewMockService()
	}
	return NewLiveService(opts.Invoker, opts.Client, opts.Searcher)
}
