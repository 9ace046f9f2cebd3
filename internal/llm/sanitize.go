package llm

import (
	"encoding/json"
	"strings"

	"github.com/hoadon-ai/extractor/internal/common"
)

// ExtractJSONObject turns the model's raw text reply into a parsed record.
// The model is permitted a few words of preamble/postamble around a fenced
// code block; everything outside the first fence pair is discarded. The
// remaining text must parse as a strict JSON object — a reply that parses to
// an array or scalar is an extraction failure, never silently coerced.
//
// Returns the parsed object together with the candidate bytes that were
// parsed, so callers can log the raw text on failure.
func ExtractJSONObject(raw string) (map[string]any, []byte, error) {
	candidate := stripFences(raw)
	data := []byte(candidate)

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, data, common.NewAppError("RESPONSE_PARSE_ERROR", "model reply is not valid JSON", common.ErrResponseParse)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, data, common.NewAppError("RESPONSE_PARSE_ERROR", "model reply is not a JSON object", common.ErrResponseParse)
	}
	return obj, data, nil
}

// stripFences extracts the content between the first opening code fence and
// the next closing fence. A "json" label on the opening fence is dropped.
// Replies without fences pass through trimmed.
func stripFences(raw string) string {
	s := raw
	if i := strings.Index(s, "```json"); i >= 0 {
		s = s[i+len("```json"):]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	} else if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+len("```"):]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}
	return strings.TrimSpace(s)
}
