// Package payload normalizes JSON that upstream services wrap
// inconsistently: code fences around the document, documents encoded as a
// JSON string, or both nested a few levels deep.
package payload

import (
	"bytes"
	"encoding/json"
	"strings"
)

// maxDepth bounds how many string/fence layers Unwrap peels.
const maxDepth = 4

// StripFences removes a surrounding ``` or ```json fence and trims
// whitespace. Text without a fence is returned trimmed.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop an info string such as "json" on the opening line.
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		if info := strings.TrimSpace(s[:nl]); !strings.ContainsAny(info, "{[\"") {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Unwrap returns the innermost JSON document in raw. A JSON string whose
// content is itself a (possibly fenced) JSON object or array is decoded and
// unwrapped again. Plain strings and anything that is not JSON after fence
// removal are returned as-is.
func Unwrap(raw []byte) []byte {
	cur := bytes.TrimSpace(raw)
	for i := 0; i < maxDepth; i++ {
		if stripped := StripFences(string(cur)); stripped != string(cur) {
			cur = []byte(stripped)
			continue
		}
		if len(cur) == 0 || cur[0] != '"' {
			return cur
		}
		var s string
		if err := json.Unmarshal(cur, &s); err != nil {
			return cur
		}
		inner := StripFences(s)
		if !(looksLikeDocument(inner) || strings.HasPrefix(inner, `"`)) || !json.Valid([]byte(inner)) {
			return cur
		}
		cur = []byte(inner)
	}
	return cur
}

// Text returns raw as display text: a JSON string is decoded, anything else
// is returned verbatim, and fences are removed in both cases.
func Text(raw []byte) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return StripFences(s)
		}
	}
	return StripFences(string(raw))
}

func looksLikeDocument(s string) bool {
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}
