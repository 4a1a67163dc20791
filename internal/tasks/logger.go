package tasks

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/felixzheng98/cedarlink/internal/logging"
)

var _ logging.InternalLogger = (*captureLogger)(nil)

// captureLogger forwards to zerolog and appends every line to the task's
// retained log buffer.
type captureLogger struct {
	task *RunnableTask
	zlog zerolog.Logger
}

func newCaptureLogger(task *RunnableTask, zlog zerolog.Logger) *captureLogger {
	return &captureLogger{task: task, zlog: zlog}
}

func (l *captureLogger) Debug(format string, args ...any) {
	l.zlog.Debug().Msgf(format, args...)
	l.task.AppendLog("debug", fmt.Sprintf(format, args...))
}

func (l *captureLogger) Info(format string, args ...any) {
	l.zlog.Info().Msgf(format, args...)
	l.task.AppendLog("info", fmt.Sprintf(format, args...))
}

func (l *captureLogger) Warn(format string, args ...any) {
	l.zlog.Warn().Msgf(format, args...)
	l.task.AppendLog("warn", fmt.Sprintf(format, args...))
}

func (l *captureLogger) Error(format string, args ...any) {
	l.zlog.Error().Msgf(format, args...)
	l.task.AppendLog("error", fmt.Sprintf(format, args...))
}
