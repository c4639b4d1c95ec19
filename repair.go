package main

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Exports get cut off mid-write when the client truncates its diagnostics
// string, so a record can end anywhere: inside a string, after a property
// name, between array elements. Each repair pass fixes one layer of damage
// and re-parses; deeply truncated records converge over a few passes. The
// cap bounds work on adversarial input that never converges.
const maxRepairPasses = 10

// repairParse parses a raw diagnostic record, repairing truncation when the
// direct parse fails. Valid input is returned as-is with repaired=false.
func repairParse(raw string) (any, bool, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v, false, nil
	}

	s := raw
	for pass := 0; pass < maxRepairPasses; pass++ {
		s = repairPass(s)
		var v any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return v, true, nil
		}
	}
	return nil, false, fmt.Errorf("record not parseable after %d repair passes", maxRepairPasses)
}

// repairPass applies one layer of truncation repair: strip the truncation
// marker and trailing comma, close an unterminated string, drop a dangling
// property, then close every structure still open at end of input.
func repairPass(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "...")
	s = strings.TrimSuffix(s, "…")
	s = strings.TrimRight(s, " \t\r\n")
	s = strings.TrimSuffix(s, ",")

	// Single forward scan tracking open structures and string state. An
	// escaped quote must not toggle string mode.
	var open []byte
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			if escaped {
				escaped = false
				continue
			}
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			open = append(open, '}')
		case '[':
			open = append(open, ']')
		case '}', ']':
			if len(open) > 0 && open[len(open)-1] == c {
				open = open[:len(open)-1]
			}
		}
	}

	if inString {
		if escaped {
			// Input ended mid-escape; the closing quote would be eaten.
			s = s[:len(s)-1]
		}
		s += `"`
	}

	s = stripDanglingProperty(s)

	// Close remaining structures innermost first.
	for i := len(open) - 1; i >= 0; i-- {
		s += string(open[i])
	}
	return s
}

// stripDanglingProperty removes a trailing `"key":` with no value, or a bare
// `"key"` left behind after the string close, so the object can be sealed.
func stripDanglingProperty(s string) string {
	t := strings.TrimRight(s, " \t\r\n")

	if strings.HasSuffix(t, ":") {
		t = strings.TrimRight(t[:len(t)-1], " \t\r\n")
		if strings.HasSuffix(t, `"`) {
			if start := openingQuote(t); start >= 0 {
				t = strings.TrimRight(t[:start], " \t\r\n")
				t = strings.TrimSuffix(t, ",")
			}
		}
		return t
	}

	if strings.HasSuffix(t, `"`) {
		start := openingQuote(t)
		if start < 0 {
			return t
		}
		// A trailing string preceded by `{` or `,` is a property name that
		// never got its colon; one preceded by `:` or `[` is a value and
		// must stay.
		before := strings.TrimRight(t[:start], " \t\r\n")
		if strings.HasSuffix(before, "{") {
			return before
		}
		if strings.HasSuffix(before, ",") {
			return strings.TrimSuffix(before, ",")
		}
	}
	return t
}

// openingQuote returns the index of the quote opening the string that ends
// at the last character of s, or -1. Walks backwards honoring escapes.
func openingQuote(s string) int {
	for i := len(s) - 2; i >= 0; i-- {
		if s[i] != '"' {
			continue
		}
		// Count preceding backslashes; an odd run means this quote is
		// escaped content, not a delimiter.
		backslashes := 0
		for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
			backslashes++
		}
		if backslashes%2 == 0 {
			return i
		}
	}
	return -1
}
