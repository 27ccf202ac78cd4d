package model

import "encoding/json"

// Response is the closed set of shapes a model invocation can return:
// PlainText, StructuredMessage, or Unknown. ExtractText is total over the
// set, so callers never probe shapes ad hoc.
type Response interface {
	isResponse()
}

// PlainText is a bare string response.
type PlainText string

func (PlainText) isResponse() {}

// StructuredMessage is an assistant message composed of ordered parts.
type StructuredMessage struct {
	Parts []Part
}

func (StructuredMessage) isResponse() {}

// Part is one content block of a structured message. Only text-bearing
// parts contribute to extraction.
type Part struct {
	Type string
	Text string
}

// Unknown wraps any response shape outside the known set.
type Unknown struct {
	Value any
}

func (Unknown) isResponse() {}

// ExtractText normalizes a response into a plain string: pass-through for
// PlainText, in-order concatenation of text-bearing parts for a
// StructuredMessage, best-effort JSON for Unknown, and empty string when
// nothing is extractable.
func ExtractText(r Response) string {
	switch v := r.(type) {
	case PlainText:
		return string(v)
	case StructuredMessage:
		var out string
		for _, p := range v.Parts {
			out += p.Text
		}
		return out
	case Unknown:
		if v.Value == nil {
			return ""
		}
		if s, ok := v.Value.(string); ok {
			return s
		}
		b, err := json.Marshal(v.Value)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return ""
	}
}
