package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task in a session.
type TaskStatus string

const (
	// TaskStatusPending indicates the task is queued and not started.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusExecuting indicates the task is being worked on.
	TaskStatusExecuting TaskStatus = "executing"
	// TaskStatusDone indicates the task completed.
	TaskStatusDone TaskStatus = "done"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusExecuting, TaskStatusDone:
		return true
	default:
		return false
	}
}

// Task is one decomposed unit of work in a session. The orchestrator core
// treats tasks as plain strings; this record carries the bookkeeping the
// session driver and display layers need on top of that.
type Task struct {
	// ID uniquely identifies this task record. Duplicate task text is
	// legal, so display layers key on ID, not text.
	ID string `json:"id"`
	// Text is the natural-language task description. Equality between
	// tasks is by exact text match.
	Text string `json:"text"`
	// Status is the current state of the task.
	Status TaskStatus `json:"status"`
	// Action is how the task was executed ("reason" or "search"),
	// set once analyzed.
	Action string `json:"action,omitempty"`
	// Result is the execution output, set once done.
	Result string `json:"result,omitempty"`
	// CreatedAt is when the task entered the queue.
	CreatedAt time.Time `json:"created_at"`
	// CompletedAt is when the task finished, if it has.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewTask returns a pending task with the given text.
func NewTask(text string) *Task {
	return &Task{
		ID:        uuid.NewString(),
		Text:      text,
		Status:    TaskStatusPending,
		CreatedAt: time.Now(),
	}
}

// Complete marks the task done, recording how it was executed and what
// came back.
func (t *Task) Complete(action, result string) {
	now := time.Now()
	t.Status = TaskStatusDone
	t.Action = action
	t.Result = result
	t.CompletedAt = &now
}
