package main

import (
	"fmt"
	"strconv"
	"time"
)

// Helper functions for extracting typed values from normalized payload maps

func getStringFromMap(m map[string]any, key string) string {
	if v, ok := m[key]; ok {
		if v == nil {
			return ""
		}
		if s, ok := v.(string); ok {
			return s
		}
		if f, ok := v.(float64); ok {
			// Status and sub-status codes arrive as bare numbers from some
			// producers; render them without a float suffix.
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return fmt.Sprintf("%v", v)
	}
	return ""
}

func getFloat64FromMap(m map[string]any, key string) float64 {
	if v, ok := m[key]; ok {
		switch val := v.(type) {
		case float64:
			return val
		case float32:
			return float64(val)
		case int:
			return float64(val)
		case int64:
			return float64(val)
		case string:
			// Some SDK versions emit latencies as quoted strings
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				return f
			}
		}
	}
	return 0
}

func getInt64FromMap(m map[string]any, key string) int64 {
	if v, ok := m[key]; ok {
		switch val := v.(type) {
		case float64:
			return int64(val)
		case int64:
			return val
		case int:
			return int64(val)
		case string:
			if i, err := strconv.ParseInt(val, 10, 64); err == nil {
				return i
			}
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				return int64(f)
			}
		}
	}
	return 0
}

func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return nil
}

func asSlice(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}
	return nil
}

// timestampLayouts covers the formats seen across SDK versions: RFC3339 with
// seven-digit fractions, and space-separated variants with or without
// milliseconds.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
}

func parseTimestampFromMap(m map[string]any, key string) time.Time {
	s := getStringFromMap(m, key)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
