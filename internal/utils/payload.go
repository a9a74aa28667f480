package utils

import (
	"encoding/json"
	"strings"
)

// DecodePayload normalizes a body that may arrive as raw JSON text, a JSON-encoded
// string or a double-encoded string. Values it cannot parse are returned unchanged
// so the validator can reject them.
func DecodePayload(raw any) any {
	switch v := raw.(type) {
	case json.RawMessage:
		return decodeText(string(v), raw)
	case []byte:
		return decodeText(string(v), raw)
	case string:
		return decodeText(v, raw)
	default:
		return raw
	}
}

func decodeText(text string, original any) any {
	if parsed, ok := parseJSON(text); ok {
		if inner, isString := parsed.(string); isString && looksStructured(inner) {
			if again, ok := parseJSON(inner); ok {
				return again
			}
		}
		return parsed
	}

	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 2 || trimmed[0] != '"' || trimmed[len(trimmed)-1] != '"' {
		return original
	}

	var unquoted string
	if err := json.Unmarshal([]byte(trimmed), &unquoted); err != nil {
		return original
	}
	if parsed, ok := parseJSON(unquoted); ok {
		return parsed
	}
	return original
}

// looksStructured reports whether text holds a JSON object or array
func looksStructured(text string) bool {
	trimmed := strings.TrimSpace(text)
	return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
}

func parseJSON(text string) (any, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, false
	}
	return v, true
}
