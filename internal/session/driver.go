// Package session runs the agent loop end to end: it seeds the queue from
// a goal, walks each task through analyze/execute, folds follow-up tasks
// back into the queue, and stops on loop budget, queue exhaustion, or an
// external stop signal. Session state lives here, not in the orchestrator.
package session

import (
	"context"
	"log"
	"time"

	"github.com/ShayCichocki/wayfind/internal/orchestrate"
	"github.com/ShayCichocki/wayfind/pkg/models"
)

// DefaultLoopBudget caps how many tasks a session executes before it is
// forced to stop.
const DefaultLoopBudget = 5

const pausePollInterval = 500 * time.Millisecond

// Controller reports external stop/pause requests. *ControlWatcher
// satisfies it; a nil Controller means the session runs uninterrupted.
type Controller interface {
	ShouldStop() bool
	ShouldPause() bool
}

// Summary is the final accounting of a session run.
type Summary struct {
	Goal       string
	Completed  []models.Task
	Pending    []string
	Loops      int
	StopReason string
}

// Driver owns session state and drives the orchestrator through it.
type Driver struct {
	agent      orchestrate.AgentService
	settings   models.ModelSettings
	loopBudget int
	control    Controller
	events     chan<- Event
}

// NewDriver builds a driver. loopBudget values below 1 fall back to
// DefaultLoopBudget. events and control may be nil.
func NewDriver(agent orchestrate.AgentService, settings models.ModelSettings, loopBudget int, control Controller, events chan<- Event) *Driver {
	if loopBudget < 1 {
		loopBudget = DefaultLoopBudget
	}
	return &Driver{
		agent:      agent,
		settings:   settings,
		loopBudget: loopBudget,
		control:    control,
		events:     events,
	}
}

// Run executes the session loop for goal until the queue drains, the loop
// budget is spent, the context is cancelled, or a stop signal arrives.
func (d *Driver) Run(ctx context.Context, goal string) Summary {
	summary := Summary{Goal: goal}

	queue := d.agent.StartGoal(ctx, d.settings, goal)
	d.emit(Event{Type: EventTasksCreated, Tasks: queue})
	log.Printf("[session] goal started with %d initial task(s)", len(queue))

	var completedTexts []string
	for len(queue) > 0 {
		if reason, stopped := d.checkStop(ctx); stopped {
			summary.StopReason = reason
			break
		}
		if summary.Loops >= d.loopBudget {
			summary.StopReason = "loop budget reached"
			break
		}

		task := queue[0]
		queue = queue[1:]
		summary.Loops++

		record := models.NewTask(task)
		record.Status = models.TaskStatusExecuting
		d.emit(Event{Type: EventTaskStarted, Task: task})

		analysis := d.agent.AnalyzeTask(ctx, d.settings, goal, task)
		d.emit(Event{Type: EventTaskAnalyzed, Task: task, Action: analysis.Action})

		result := d.agent.ExecuteTask(ctx, d.settings, goal, task, analysis)
		record.Complete(analysis.Action, result)
		completedTexts = append(completedTexts, task)
		summary.Completed = append(summary.Completed, *record)
		d.emit(Event{Type: EventTaskCompleted, Task: task, Action: analysis.Action, Result: result})
		log.Printf("[session] completed task %d/%d: %s", summary.Loops, d.loopBudget, task)

		created := d.agent.CreateTasks(ctx, d.settings, goal, queue, task, result, completedTexts)
		if len(created) > 0 {
			queue = append(queue, created...)
			d.emit(Event{Type: EventTasksCreated, Tasks: created})
		}
	}

	if summary.StopReason == "" {
		summary.StopReason = "no tasks remaining"
	}
	summary.Pending = queue
	d.emit(Event{Type: EventSessionDone, Message: summary.StopReason})
	log.Printf("[session] done: %s (%d task(s) completed, %d pending)", summary.StopReason, len(summary.Completed), len(summary.Pending))
	return summary
}

// checkStop consults the context and controller before each iteration,
// blocking while a pause signal is in effect.
func (d *Driver) checkStop(ctx context.Context) (string, bool) {
	for {
		if err := ctx.Err(); err != nil {
			return "cancelled", true
		}
		if d.control == nil {
			return "", false
		}
		if d.control.ShouldStop() {
			return "stop requested", true
		}
		if !d.control.ShouldPause() {
			return "", false
		}
		select {
		case <-ctx.Done():
			return "cancelled", true
		case <-time.After(pausePollInterval):
		}
	}
}

func (d *Driver) emit(ev Event) {
	if d.events == nil {
		return
	}
	d.events <- ev
}
