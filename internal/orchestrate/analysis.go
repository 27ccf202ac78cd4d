package orchestrate

import (
	"encoding/json"
	"strings"
)

// Action values for Analysis.
const (
	// ActionReason executes the task with model reasoning alone.
	ActionReason = "reason"
	// ActionSearch executes the task with a web search first.
	ActionSearch = "search"
)

// availableActions is presented to the model when analyzing a task.
var availableActions = []string{ActionReason, ActionSearch}

// Analysis is the decision for how to execute a task: the action to take
// and its argument (a search query or a reasoning note). Produced fresh
// for every task; it has no lifecycle beyond analyze → execute.
type Analysis struct {
	Action string `json:"action"`
	Arg    string `json:"arg"`
}

// defaultAnalysis is returned whenever the model's analysis cannot be
// parsed. Analysis never blocks execution.
var defaultAnalysis = Analysis{Action: ActionReason, Arg: "Fallback due to parsing failure"}

// defaultAnalysisJSON is the canned invocation default, shaped like a
// valid analysis so downstream parsing still succeeds.
var defaultAnalysisJSON = `{"action": "reason", "arg": "Fallback due to parsing failure"}`

// parseAnalysis turns model text into an Analysis. Unparsable JSON or an
// unknown action yields the fixed default rather than an error.
func parseAnalysis(text string) Analysis {
	text = strings.TrimSpace(text)

	// Tolerate a fenced or prose-wrapped JSON object.
	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			text = text[start : end+1]
		}
	}

	var a Analysis
	if err := json.Unmarshal([]byte(text), &a); err != nil {
		return defaultAnalysis
	}
	if !validAction(a.Action) {
		return defaultAnalysis
	}
	return a
}

func validAction(action string) bool {
	for _, a := range availableActions {
		if a == action {
			return true
		}
	}
	return false
}
