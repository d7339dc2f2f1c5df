package chunking

import (
	"encoding/json"
	"strings"
)

// DecodeLenient parses model output that is supposed to be JSON but often
// arrives wrapped in prose or code fences. Strict parse first, then a
// recovery pass over the outermost brace-delimited slice. Returns false for
// unparseable input instead of an error so callers pick their own fallback.
func DecodeLenient(raw string, v any) bool {
	if json.Unmarshal([]byte(raw), v) == nil {
		return true
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return false
	}
	return json.Unmarshal([]byte(raw[start:end+1]), v) == nil
}
