// internal/engine/extract/extract.go

// Package extract implements tolerant, order-dependent field lookup over
// untyped payloads. Bureau integrations return differently shaped documents
// depending on provider version, so callers declare an ordered list of
// candidate paths and take the first one that yields a finite number.
package extract

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Extract attempts each candidate path in order against the payload and
// returns the first value that parses to a finite number. It returns nil if
// no path matches. Malformed paths, absent keys, and non-numeric values are
// treated as "no match", never as errors.
func Extract(payload map[string]interface{}, candidatePaths []string) *float64 {
	if payload == nil {
		return nil
	}

	for _, path := range candidatePaths {
		if val, ok := lookupPath(payload, path); ok {
			if num, ok := toFiniteNumber(val); ok {
				return &num
			}
		}
	}

	return nil
}

// ExtractOr is Extract with a default for the nil case.
func ExtractOr(payload map[string]interface{}, candidatePaths []string, fallback float64) float64 {
	if v := Extract(payload, candidatePaths); v != nil {
		return *v
	}
	return fallback
}

// ExtractString walks the same candidate paths but returns the first
// non-empty string value. Used for fields like employment status where the
// canonical value is textual.
func ExtractString(payload map[string]interface{}, candidatePaths []string) string {
	if payload == nil {
		return ""
	}

	for _, path := range candidatePaths {
		if val, ok := lookupPath(payload, path); ok {
			if s, ok := val.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}

	return ""
}

// ExtractSlice returns the first candidate path holding a non-nil slice.
func ExtractSlice(payload map[string]interface{}, candidatePaths []string) []interface{} {
	if payload == nil {
		return nil
	}

	for _, path := range candidatePaths {
		if val, ok := lookupPath(payload, path); ok {
			if s, ok := val.([]interface{}); ok {
				return s
			}
		}
	}

	return nil
}

// lookupPath resolves a dot-separated path like "creditScoreData.score"
// against nested map[string]interface{} values. Any segment that does not
// resolve, including empty segments from a malformed path, ends the walk.
func lookupPath(payload map[string]interface{}, path string) (interface{}, bool) {
	segments := strings.Split(path, ".")

	var current interface{} = payload
	for _, seg := range segments {
		if seg == "" {
			return nil, false
		}

		node, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}

		current, ok = node[seg]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// toFiniteNumber coerces JSON-decoded values into a finite float64. String
// values are parsed because some bureau providers quote numeric fields.
func toFiniteNumber(val interface{}) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, isFinite(v)
	case float32:
		return float64(v), isFinite(float64(v))
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil && isFinite(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil && isFinite(f)
	default:
		return 0, false
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
