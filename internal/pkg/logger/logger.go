// Package logger provides the process diagnostic log. Debug, Info and
// Warn are gated by verbose mode; Error always writes.
package logger

import (
	"fmt"
	"log"
	"sort"
	"strings"
)

// StdLogger is a lightweight implementation backed by Go's log package.
type StdLogger struct {
	verbose bool
}

// NewStd creates a StdLogger.
func NewStd(verbose bool) *StdLogger {
	return &StdLogger{verbose: verbose}
}

func (l *StdLogger) Debug(msg string, fields map[string]interface{}) {
	if !l.verbose {
		return
	}
	emit("DEBUG", msg, fields)
}

func (l *StdLogger) Info(msg string, fields map[string]interface{}) {
	if !l.verbose {
		return
	}
	emit("INFO", msg, fields)
}

func (l *StdLogger) Warn(msg string, fields map[string]interface{}) {
	if !l.verbose {
		return
	}
	emit("WARN", msg, fields)
}

// Error is never gated; audit and credential failures must surface even
// when verbose mode is off.
func (l *StdLogger) Error(msg string, err error, fields map[string]interface{}) {
	if err != nil {
		merged := make(map[string]interface{}, len(fields)+1)
		for key, value := range fields {
			merged[key] = value
		}
		merged["error"] = err
		fields = merged
	}
	emit("ERROR", msg, fields)
}

func emit(level, msg string, fields map[string]interface{}) {
	line := "[" + level + "] " + msg
	if rendered := renderFields(fields); rendered != "" {
		line += " " + rendered
	}
	log.Println(line)
}

// renderFields flattens a field map into sorted key=value pairs.
func renderFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", key, fields[key]))
	}
	return strings.Join(parts, " ")
}
