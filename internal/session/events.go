package session

// EventType identifies what happened in the session loop.
type EventType string

const (
	// EventTasksCreated reports new tasks entering the queue.
	EventTasksCreated EventType = "tasks_created"
	// EventTaskStarted reports a task popped for execution.
	EventTaskStarted EventType = "task_started"
	// EventTaskAnalyzed reports the reason/search decision for a task.
	EventTaskAnalyzed EventType = "task_analyzed"
	// EventTaskCompleted reports a finished task with its result.
	EventTaskCompleted EventType = "task_completed"
	// EventSessionDone reports loop termination and its reason.
	EventSessionDone EventType = "session_done"
)

// Event is one observable step of a running session, consumed by the TUI
// or the headless printer.
type Event struct {
	Type EventType
	// Task is the task text for task-scoped events.
	Task string
	// Tasks carries the batch for EventTasksCreated.
	Tasks []string
	// Action is the analysis decision for EventTaskAnalyzed.
	Action string
	// Result is the execution output for EventTaskCompleted.
	Result string
	// Message is the human-readable detail for EventSessionDone.
	Message string
}
