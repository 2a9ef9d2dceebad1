// Package audit appends pipeline decisions to a size-rotated JSONL file.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/ports"
)

const timestampLayout = "2006-01-02T15:04:05Z"

// FileLogger writes one JSON object per line. Rotation is size-based and
// handled by lumberjack. Privacy redaction happens at write time, so a
// record written while privacy mode is on stays redacted forever.
type FileLogger struct {
	mu      sync.Mutex
	writer  *lumberjack.Logger
	path    string
	privacy bool
	now     func() time.Time
}

// NewFileLogger rotates at maxSizeMB megabytes keeping maxBackups old files.
func NewFileLogger(path string, maxSizeMB, maxBackups int) *FileLogger {
	return &FileLogger{
		writer: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
		},
		path: path,
		now:  time.Now,
	}
}

// Path returns the active log file location.
func (l *FileLogger) Path() string {
	return l.path
}

// LogEvent stamps the event with the current UTC time, applies redaction
// if privacy mode is on, and appends it as one JSON line.
func (l *FileLogger) LogEvent(event domain.AuditEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	event.Timestamp = l.now().UTC().Format(timestampLayout)
	if l.privacy {
		event.UserInput = domain.RedactionMarker
		event.GeneratedCommand = domain.RedactionMarker
		event.CommandOutput = domain.RedactionMarker
	}

	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	if _, err := l.writer.Write(append(raw, '\n')); err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// SetPrivacy toggles write-time redaction.
func (l *FileLogger) SetPrivacy(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.privacy = enabled
}

// Privacy reports whether redaction is active.
func (l *FileLogger) Privacy() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.privacy
}

// CurrentSize returns the active file size in bytes, 0 if absent.
func (l *FileLogger) CurrentSize() int64 {
	info, err := os.Stat(l.path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// Close flushes and releases the underlying file.
func (l *FileLogger) Close() error {
	return l.writer.Close()
}

var _ ports.AuditLogger = (*FileLogger)(nil)
