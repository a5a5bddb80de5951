// Package publishers delivers run-summary events to configured sinks: HTTP
// endpoints and cloud queues.
package publishers

import (
	"context"
	"time"
)

// Event summarizes one finished monitoring run.
type Event struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Keywords    int       `json:"keywords"`
	Collected   int       `json:"collected"`
	Rows        int       `json:"rows"`
	ReportFiles []string  `json:"report_files,omitempty"`
}

// Publisher delivers events to one configured sink.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// Logger is the minimal logging contract the senders need. It is satisfied by
// the monitor's internal logger without importing it here.
type Logger interface {
	DebugObj(msg, event string, fields map[string]any)
	ErrorObj(msg, event string, fields map[string]any)
}

type nopLogger struct{}

func (nopLogger) DebugObj(string, string, map[string]any) {}
func (nopLogger) ErrorObj(string, string, map[string]any) {}

// ensureLogger substitutes a no-op logger for nil.
func ensureLogger(log Logger) Logger {
	if log == nil {
		return nopLogger{}
	}
	return log
}
