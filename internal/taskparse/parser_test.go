package taskparse

import (
	"reflect"
	"testing"
)

func TestExtractTasks(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		completed []string
		want      []string
	}{
		{
			name: "json array",
			text: `["Do X","Do Y"]`,
			want: []string{"Do X", "Do Y"},
		},
		{
			name:      "json array drops completed",
			text:      `["Do X","Do Y"]`,
			completed: []string{"Do X"},
			want:      []string{"Do Y"},
		},
		{
			name: "noise only",
			text: "No new tasks needed.",
			want: []string{},
		},
		{
			name: "numbered lines strip prefix",
			text: "1. Research topic\n2. Write summary",
			want: []string{"Research topic", "Write summary"},
		},
		{
			name: "embedded array in prose",
			text: "Here are the next steps:\n[\"Collect sources\", \"Draft outline\"]\nGood luck!",
			want: []string{"Collect sources", "Draft outline"},
		},
		{
			name: "embedded array with markdown fence",
			text: "```json\n[\"Analyze data\"]\n```",
			want: []string{"Analyze data"},
		},
		{
			name: "embedded array tolerates nested brackets",
			text: `Next: ["Index entries [a-z]", "Review [draft] notes"]`,
			want: []string{"Index entries [a-z]", "Review [draft] notes"},
		},
		{
			name: "embedded array tolerates brackets inside strings",
			text: `Plan: ["Fix the [0] edge case"] done`,
			want: []string{"Fix the [0] edge case"},
		},
		{
			name: "array with non-string elements keeps strings",
			text: `["Do X", 42, {"not": "a task"}, "Do Y"]`,
			want: []string{"Do X", "Do Y"},
		},
		{
			name: "line fallback skips delimiters and commentary",
			text: "[\nThe objective is ambitious\nResearch the market\n]\nWrite the report",
			want: []string{"Research the market", "Write the report"},
		},
		{
			name: "line fallback skips goal mentions",
			text: "This supports the goal directly\nInterview three users",
			want: []string{"Interview three users"},
		},
		{
			name: "noise tasks filtered inside arrays",
			text: `["Do X", "No task needed", "Task complete", "Do nothing"]`,
			want: []string{"Do X"},
		},
		{
			name: "task prefix variants stripped",
			text: `["Task 1: Research topic", "2) Write summary", "3 - Publish"]`,
			want: []string{"Research topic", "Write summary", "Publish"},
		},
		{
			name: "empty input",
			text: "",
			want: []string{},
		},
		{
			name: "empty array",
			text: "[]",
			want: []string{},
		},
		{
			name: "whitespace only",
			text: "   \n\t  ",
			want: []string{},
		},
		{
			name: "malformed json falls back to lines",
			text: `["Do X", "Do Y"`,
			want: []string{`["Do X", "Do Y"`},
		},
		{
			name: "bracket-wrapped unquoted list falls back to lines",
			text: "[\nResearch topic\nWrite summary\n]",
			want: []string{"Research topic", "Write summary"},
		},
		{
			name:      "completed filter is exact text match",
			text:      `["Do X", "do x"]`,
			completed: []string{"Do X"},
			want:      []string{"do x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTasks(tt.text, tt.completed)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractTasks(%q) = %#v, want %#v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractTasksPreservesOrder(t *testing.T) {
	got := ExtractTasks(`["c", "a", "b"]`, nil)
	want := []string{"c", "a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractTasks reordered: %v, want %v", got, want)
	}
}

func TestNoisePattern(t *testing.T) {
	noisy := []string{
		"No task needed",
		"no new tasks needed.",
		"No tasks required",
		"Task complete",
		"task completed!",
		"All tasks are completed",
		"Do nothing",
		"None",
	}
	for _, s := range noisy {
		if !noisePattern.MatchString(s) {
			t.Errorf("noisePattern missed %q", s)
		}
	}

	real := []string{
		"Research why no tasks were found",
		"Complete the quarterly report",
		"Do nothing until the report arrives, then file it",
	}
	for _, s := range real {
		if noisePattern.MatchString(s) {
			t.Errorf("noisePattern wrongly matched %q", s)
		}
	}
}
