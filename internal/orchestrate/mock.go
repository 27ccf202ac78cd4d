package orchestrate

import (
	"context"
	"fmt"

	"github.com/ShayCichocki/wayfind/pkg/models"
)

// MockService returns fixed canned outputs with no model or network
// access. It exists for deterministic tests and offline operation, behind
// the same AgentService interface as the live implementation.
type MockService struct{}

// NewMockService creates the canned orchestrator.
func NewMockService() *MockService {
	return &MockService{}
}

// StartGoal returns a fixed three-task plan.
func (m *MockService) StartGoal(_ context.Context, _ models.ModelSettings, goal string) []string {
	return []string{
		fmt.Sprintf("Break down the goal into concrete steps: %s", goal),
		"Execute each step and record the outcome",
		"Summarize what was accomplished",
	}
}

// AnalyzeTask always chooses reasoning.
func (m *MockService) AnalyzeTask(_ context.Context, _ models.ModelSettings, _ string, task string) Analysis {
	return Analysis{Action: ActionReason, Arg: fmt.Sprintf("Mock analysis of: %s", task)}
}

// ExecuteTask returns a canned result naming the task.
func (m *MockService) ExecuteTask(_ context.Context, _ models.ModelSettings, _ string, task string, _ Analysis) string {
	return fmt.Sprintf("Mock execution result for task: %s", task)
}

// CreateTasks never proposes follow-up work, so mock sessions terminate
// once the initial queue drains.
func (m *MockService) CreateTasks(_ context.Context, _ models.ModelSettings, _ string, _ []string, _, _ string, _ []string) []string {
	return nil
}
