// Package taskparse turns freeform model output into a clean ordered list
// of task strings.
package taskparse

import (
	"encoding/json"
	"regexp"
	"strings"
)

// noisePattern matches "no task needed" / "task complete" / "do nothing"
// style responses that are commentary, not tasks.
var noisePattern = regexp.MustCompile(`(?i)^\s*(` +
	`no\s+(new\s+)?tasks?(\s+(are\s+)?(needed|required|remain(ing)?))?` +
	`|(all\s+)?tasks?\s+((is|are)\s+)?complete[d]?` +
	`|do\s+nothing` +
	`|none` +
	`)[.!]?\s*$`)

// ordinalPrefix matches a leading "1.", "2)", "Task 3:" style prefix.
var ordinalPrefix = regexp.MustCompile(`(?i)^\s*(task\s*)?\d+\s*[.):\-]\s*`)

// commentaryLine matches fallback-path lines that restate the objective
// rather than naming a task.
var commentaryLine = regexp.MustCompile(`(?i)\b(objective|goal)\b`)

// ExtractTasks parses model text into an ordered list of tasks, dropping
// anything already present in completed. It tries, in order: the whole
// text as a JSON array, the first embedded bracket-balanced array literal,
// and finally one task per non-empty line. It never fails; the worst case
// is an empty list.
func ExtractTasks(text string, completed []string) []string {
	var raw []string

	trimmed := strings.TrimSpace(text)
	if arr, ok := parseJSONArray(trimmed); ok {
		raw = arr
	} else if arr, ok := scanEmbeddedArray(trimmed); ok {
		raw = arr
	} else {
		raw = parseLines(trimmed)
	}

	return postProcess(raw, completed)
}

// parseJSONArray parses s as a JSON array, keeping only string elements.
func parseJSONArray(s string) ([]string, bool) {
	var elems []any
	if err := json.Unmarshal([]byte(s), &elems); err != nil {
		return nil, false
	}

	out := make([]string, 0, len(elems))
	for _, e := range elems {
		if str, ok := e.(string); ok {
			out = append(out, str)
		}
	}
	return out, true
}

// scanEmbeddedArray finds the first top-level bracket-balanced [...]
// substring that parses as a JSON array of strings, tolerating nested
// bracket pairs and brackets inside quoted strings.
func scanEmbeddedArray(s string) ([]string, bool) {
	for start := 0; start < len(s); start++ {
		if s[start] != '[' {
			continue
		}

		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(s); i++ {
			c := s[i]
			if inString {
				switch {
				case escaped:
					escaped = false
				case c == '\\':
					escaped = true
				case c == '"':
					inString = false
				}
				continue
			}

			switch c {
			case '"':
				inString = true
			case '[':
				depth++
			case ']':
				depth--
				if depth == 0 {
					if tasks, ok := parseJSONArray(s[start : i+1]); ok {
						return tasks, true
					}
					i = len(s) // malformed candidate, try the next '['
				}
			}
		}
	}
	return nil, false
}

// parseLines treats each non-empty line as a candidate task, skipping
// array delimiters and objective/goal commentary.
func parseLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isDelimiterLine(line) {
			continue
		}
		if commentaryLine.MatchString(line) {
			continue
		}
		out = append(out, line)
	}
	return out
}

// isDelimiterLine reports whether line is only array punctuation.
func isDelimiterLine(line string) bool {
	stripped := strings.Trim(line, "[], \t")
	return stripped == ""
}

// postProcess applies the uniform cleanup regardless of extraction path:
// drop completed tasks, drop noise, strip ordinal prefixes. Ordering is
// preserved from extraction order.
func postProcess(tasks, completed []string) []string {
	done := make(map[string]bool, len(completed))
	for _, c := range completed {
		done[c] = true
	}

	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		if done[task] {
			continue
		}
		if noisePattern.MatchString(task) {
			continue
		}
		task = ordinalPrefix.ReplaceAllString(task, "")
		task = strings.TrimSpace(task)
		if task == "" {
			continue
		}
		out = append(out, task)
	}
	return out
}
