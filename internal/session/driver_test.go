package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ShayCichocki/wayfind/internal/orchestrate"
	"github.com/ShayCichocki/wayfind/pkg/models"
)

// scriptedAgent lets tests control every stage of the loop.
type scriptedAgent struct {
	initial   []string
	followups [][]string // consumed one batch per CreateTasks call

	createCalls   int
	completedSeen [][]string
}

func (s *scriptedAgent) StartGoal(_ context.Context, _ models.ModelSettings, _ string) []string {
	return s.initial
}

func (s *scriptedAgent) AnalyzeTask(_ context.Context, _ models.ModelSettings, _ string, task string) orchestrate.Analysis {
	return orchestrate.Analysis{Action: orchestrate.ActionReason, Arg: task}
}

func (s *scriptedAgent) ExecuteTask(_ context.Context, _ models.ModelSettings, _ string, task string, _ orchestrate.Analysis) string {
	return "result of " + task
}

func (s *scriptedAgent) CreateTasks(_ context.Context, _ models.ModelSettings, _ string, _ []string, _, _ string, completed []string) []string {
	s.completedSeen = append(s.completedSeen, append([]string(nil), completed...))
	if s.createCalls < len(s.followups) {
		batch := s.followups[s.createCalls]
		s.createCalls++
		return batch
	}
	s.createCalls++
	return nil
}

func collectEvents(ch <-chan Event) []Event {
	var events []Event
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func TestDriverDrainsQueue(t *testing.T) {
	agent := &scriptedAgent{initial: []string{"task a", "task b"}}
	d := NewDriver(agent, models.ModelSettings{}, 10, nil, nil)

	summary := d.Run(context.Background(), "test goal")

	if summary.StopReason != "no tasks remaining" {
		t.Fatalf("StopReason = %q, want %q", summary.StopReason, "no tasks remaining")
	}
	if len(summary.Completed) != 2 {
		t.Fatalf("completed %d tasks, want 2", len(summary.Completed))
	}
	if summary.Completed[0].Text != "task a" || summary.Completed[1].Text != "task b" {
		t.Fatalf("completed order = %q, %q", summary.Completed[0].Text, summary.Completed[1].Text)
	}
	if summary.Completed[0].Result != "result of task a" {
		t.Fatalf("Result = %q", summary.Completed[0].Result)
	}
	if summary.Completed[0].Status != models.TaskStatusDone {
		t.Fatalf("Status = %q, want done", summary.Completed[0].Status)
	}
	if len(summary.Pending) != 0 {
		t.Fatalf("pending = %v, want empty", summary.Pending)
	}
}

func TestDriverEnforcesLoopBudget(t *testing.T) {
	agent := &scriptedAgent{
		initial: []string{"t1"},
		followups: [][]string{
			{"t2"}, {"t3"}, {"t4"}, {"t5"}, {"t6"}, {"t7"},
		},
	}
	d := NewDriver(agent, models.ModelSettings{}, 3, nil, nil)

	summary := d.Run(context.Background(), "endless goal")

	if summary.StopReason != "loop budget reached" {
		t.Fatalf("StopReason = %q, want %q", summary.StopReason, "loop budget reached")
	}
	if summary.Loops != 3 {
		t.Fatalf("Loops = %d, want 3", summary.Loops)
	}
	if len(summary.Completed) != 3 {
		t.Fatalf("completed %d tasks, want 3", len(summary.Completed))
	}
	if len(summary.Pending) == 0 {
		t.Fatal("expected leftover pending tasks after budget stop")
	}
}

func TestDriverAppendsFollowupsToQueue(t *testing.T) {
	agent := &scriptedAgent{
		initial:   []string{"first", "second"},
		followups: [][]string{{"third"}},
	}
	d := NewDriver(agent, models.ModelSettings{}, 10, nil, nil)

	summary := d.Run(context.Background(), "goal")

	if len(summary.Completed) != 3 {
		t.Fatalf("completed %d tasks, want 3", len(summary.Completed))
	}
	// Follow-ups go to the back of the queue, not the front.
	want := []string{"first", "second", "third"}
	for i, w := range want {
		if summary.Completed[i].Text != w {
			t.Fatalf("completed[%d] = %q, want %q", i, summary.Completed[i].Text, w)
		}
	}
}

func TestDriverPassesCompletedToCreateTasks(t *testing.T) {
	agent := &scriptedAgent{initial: []string{"a", "b"}}
	d := NewDriver(agent, models.ModelSettings{}, 10, nil, nil)

	d.Run(context.Background(), "goal")

	if len(agent.completedSeen) != 2 {
		t.Fatalf("CreateTasks called %d times, want 2", len(agent.completedSeen))
	}
	if got := agent.completedSeen[0]; len(got) != 1 || got[0] != "a" {
		t.Fatalf("first completed slice = %v, want [a]", got)
	}
	if got := agent.completedSeen[1]; len(got) != 2 || got[1] != "b" {
		t.Fatalf("second completed slice = %v, want [a b]", got)
	}
}

func TestDriverEmitsEvents(t *testing.T) {
	agent := &scriptedAgent{initial: []string{"only task"}}
	events := make(chan Event, 16)
	d := NewDriver(agent, models.ModelSettings{}, 10, nil, events)

	d.Run(context.Background(), "goal")
	close(events)

	got := collectEvents(events)
	wantTypes := []EventType{
		EventTasksCreated,
		EventTaskStarted,
		EventTaskAnalyzed,
		EventTaskCompleted,
		EventSessionDone,
	}
	if len(got) != len(wantTypes) {
		t.Fatalf("got %d events, want %d: %+v", len(got), len(wantTypes), got)
	}
	for i, w := range wantTypes {
		if got[i].Type != w {
			t.Fatalf("event[%d].Type = %q, want %q", i, got[i].Type, w)
		}
	}
	if got[2].Action != orchestrate.ActionReason {
		t.Fatalf("analyzed event Action = %q, want %q", got[2].Action, orchestrate.ActionReason)
	}
	if got[3].Result != "result of only task" {
		t.Fatalf("completed event Result = %q", got[3].Result)
	}
	if got[4].Message != "no tasks remaining" {
		t.Fatalf("done event Message = %q", got[4].Message)
	}
}

func TestDriverHonorsContextCancellation(t *testing.T) {
	agent := &scriptedAgent{initial: []string{"a", "b", "c"}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := NewDriver(agent, models.ModelSettings{}, 10, nil, nil)

	summary := d.Run(ctx, "goal")

	if summary.StopReason != "cancelled" {
		t.Fatalf("StopReason = %q, want %q", summary.StopReason, "cancelled")
	}
	if len(summary.Completed) != 0 {
		t.Fatalf("completed %d tasks, want 0", len(summary.Completed))
	}
	if len(summary.Pending) != 3 {
		t.Fatalf("pending = %v, want original 3 tasks", summary.Pending)
	}
}

type stubController struct {
	stop  bool
	pause bool
}

func (s *stubController) ShouldStop() bool  { return s.stop }
func (s *stubController) ShouldPause() bool { return s.pause }

func TestDriverHonorsStopSignal(t *testing.T) {
	agent := &scriptedAgent{initial: []string{"a", "b"}}
	d := NewDriver(agent, models.ModelSettings{}, 10, &stubController{stop: true}, nil)

	summary := d.Run(context.Background(), "goal")

	if summary.StopReason != "stop requested" {
		t.Fatalf("StopReason = %q, want %q", summary.StopReason, "stop requested")
	}
	if len(summary.Completed) != 0 {
		t.Fatalf("completed %d tasks, want 0", len(summary.Completed))
	}
}

func TestDriverRunsWithMockService(t *testing.T) {
	d := NewDriver(orchestrate.NewMockService(), models.ModelSettings{}, DefaultLoopBudget, nil, nil)

	summary := d.Run(context.Background(), "write a haiku")

	if len(summary.Completed) != 3 {
		t.Fatalf("completed %d tasks, want 3", len(summary.Completed))
	}
	if summary.StopReason != "no tasks remaining" {
		t.Fatalf("StopReason = %q", summary.StopReason)
	}
}

func TestControlWatcherStopSignal(t *testing.T) {
	dir := t.TempDir()
	cw, err := NewControlWatcher(dir)
	if err != nil {
		t.Fatalf("NewControlWatcher: %v", err)
	}
	defer cw.Close()

	if cw.ShouldStop() {
		t.Fatal("fresh watcher reports stop")
	}
	if err := cw.SendStop(); err != nil {
		t.Fatalf("SendStop: %v", err)
	}
	if !cw.ShouldStop() {
		t.Fatal("stop file present but ShouldStop is false")
	}

	cw.ClearSignals()
	if cw.ShouldStop() {
		t.Fatal("stop still reported after ClearSignals")
	}
	if _, err := os.Stat(filepath.Join(dir, "signals", stopSignalFile)); !os.IsNotExist(err) {
		t.Fatal("stop file not removed by ClearSignals")
	}
}

func TestControlWatcherPauseFollowsFile(t *testing.T) {
	dir := t.TempDir()
	cw, err := NewControlWatcher(dir)
	if err != nil {
		t.Fatalf("NewControlWatcher: %v", err)
	}
	defer cw.Close()

	if cw.ShouldPause() {
		t.Fatal("fresh watcher reports pause")
	}
	if err := cw.SendPause(); err != nil {
		t.Fatalf("SendPause: %v", err)
	}
	if !cw.ShouldPause() {
		t.Fatal("pause file present but ShouldPause is false")
	}
	if err := cw.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if cw.ShouldPause() {
		t.Fatal("pause still reported after Resume")
	}
}
