// Package logging provides utilities for secure logging with data masking.
package logging

import (
	"encoding/json"
	"strings"
)

// sensitiveFields are JSON body fields whose values must never reach logs:
// admin passwords, session tokens, and report access tokens.
var sensitiveFields = map[string]bool{
	"password":      true,
	"token":         true,
	"session_token": true,
}

// MaskHeader redacts sensitive header values based on header name.
//
// Rules:
// - Password/secret headers: "[REDACTED]" (no partial reveal)
// - Authorization and token headers: "****" + last 4 chars
// - Other headers: returned unchanged
func MaskHeader(name, value string) string {
	lowerName := strings.ToLower(name)

	if strings.Contains(lowerName, "password") || strings.Contains(lowerName, "secret") {
		return "[REDACTED]"
	}

	if lowerName == "authorization" || lowerName == "x-api-key" {
		if len(value) < 4 {
			return "****"
		}
		return "****" + value[len(value)-4:]
	}

	return value
}

// MaskJSONBody redacts sensitive fields in a JSON body before logging.
// Non-JSON bodies are returned unchanged.
func MaskJSONBody(body []byte) []byte {
	if len(body) == 0 {
		return body
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return body
	}

	masked := maskValue(data)

	result, err := json.Marshal(masked)
	if err != nil {
		return body
	}
	return result
}

func maskValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if sensitiveFields[strings.ToLower(k)] {
				out[k] = "[REDACTED]"
			} else {
				out[k] = maskValue(inner)
			}
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = maskValue(inner)
		}
		return out
	default:
		return v
	}
}

// MaskToken formats a credential for logs: "****" + last 4 chars.
// Short values are fully masked.
func MaskToken(token string) string {
	if len(token) < 8 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}
