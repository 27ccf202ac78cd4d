package orchestrate

import (
	"context"
	"reflect"
	"testing"

	"github.com/ShayCichocki/wayfind/pkg/models"
)

func TestMockServiceIsDeterministic(t *testing.T) {
	svc := NewMockService()
	ctx := context.Background()
	settings := models.ModelSettings{}

	first := svc.StartGoal(ctx, settings, "Learn Go")
	second := svc.StartGoal(ctx, settings, "Learn Go")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("StartGoal not deterministic: %v vs %v", first, second)
	}
	if len(first) == 0 {
		t.Fatal("StartGoal returned no tasks")
	}

	a := svc.AnalyzeTask(ctx, settings, "Learn Go", first[0])
	if a.Action != ActionReason {
		t.Errorf("AnalyzeTask action = %q, want reason", a.Action)
	}

	result := svc.ExecuteTask(ctx, settings, "Learn Go", first[0], a)
	if result == "" {
		t.Error("ExecuteTask returned empty result")
	}

	if follow := svc.CreateTasks(ctx, settings, "Learn Go", first[1:], first[0], result, nil); len(follow) != 0 {
		t.Errorf("CreateTasks = %v, want none so mock sessions terminate", follow)
	}
}

func TestNewSelectsImplementationByFlag(t *testing.T) {
	if _, ok := New(Options{Mock: true}).(*MockService); !ok {
		t.Error("New(Mock: true) did not return the mock implementation")
	}
	if _, ok := New(Options{}).(*LiveService); !ok {
		t.Error("New(Mock: false) did not return the live implementation")
	}
}
