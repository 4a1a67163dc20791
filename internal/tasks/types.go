package tasks

import (
	"context"
	"time"

	"github.com/felixzheng98/cedarlink/internal/logging"
)

// TaskFunc is the unit of work. It receives a logger whose output is both
// forwarded to the process log and retained in the task's log buffer.
type TaskFunc func(ctx context.Context, logger logging.InternalLogger) error

type TaskStatus struct {
	Name       string    `json:"name,omitempty"`
	Running    bool      `json:"running,omitempty"`
	LastRun    time.Time `json:"last_run"`
	LastResult string    `json:"last_result,omitempty"`
	NextRun    time.Time `json:"next_run"`
}

type LogEntry struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level,omitempty"`
	Message string    `json:"message,omitempty"`
}
