package main

import (
	"encoding/json"
	"os"
	"time"
)

// LogLevel represents the severity level of a log entry
type LogLevel string

const (
	LevelError LogLevel = "ERROR"
	LevelWarn  LogLevel = "WARN"
	LevelInfo  LogLevel = "INFO"
)

// LogEntry represents a structured log entry
type LogEntry struct {
	Timestamp  string         `json:"timestamp"`
	Level      LogLevel       `json:"level"`
	Message    string         `json:"message"`
	Error      string         `json:"error,omitempty"`
	Phase      string         `json:"phase,omitempty"`
	Records    int            `json:"records,omitempty"`
	DurationMs float64        `json:"duration_ms,omitempty"`
	Fields     map[string]any `json:"fields,omitempty"`
}

// logEntry writes a structured log entry to stderr as JSON
func logEntry(entry LogEntry) {
	entry.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)

	jsonData, err := json.Marshal(entry)
	if err != nil {
		// Fallback to simple log if JSON marshaling fails
		os.Stderr.WriteString(entry.Timestamp + " [" + string(entry.Level) + "] " + entry.Message + "\n")
		return
	}

	os.Stderr.Write(jsonData)
	os.Stderr.WriteString("\n")
}

// LogError logs an error with structured JSON format
func LogError(err error, msg string, fields ...map[string]any) {
	entry := LogEntry{
		Level:   LevelError,
		Message: msg,
	}

	if err != nil {
		entry.Error = err.Error()
	}

	if len(fields) > 0 {
		entry.Fields = fields[0]
	}

	logEntry(entry)
}

// LogWarn logs a warning with structured JSON format
func LogWarn(msg string, fields ...map[string]any) {
	entry := LogEntry{
		Level:   LevelWarn,
		Message: msg,
	}

	if len(fields) > 0 {
		entry.Fields = fields[0]
	}

	logEntry(entry)
}

// LogInfo logs an info message with structured JSON format
func LogInfo(msg string, fields ...map[string]any) {
	entry := LogEntry{
		Level:   LevelInfo,
		Message: msg,
	}

	if len(fields) > 0 {
		entry.Fields = fields[0]
	}

	logEntry(entry)
}

// LogRunSummary logs the end-of-run pipeline summary
func LogRunSummary(phase string, records int, duration time.Duration, fields ...map[string]any) {
	entry := LogEntry{
		Level:      LevelInfo,
		Message:    "analysis completed",
		Phase:      phase,
		Records:    records,
		DurationMs: float64(duration.Nanoseconds()) / 1e6,
	}

	if len(fields) > 0 {
		entry.Fields = fields[0]
	}

	logEntry(entry)
}
