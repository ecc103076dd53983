// Package logging is a thin facade over log/slog that also feeds log
// messages into a pubsub broker so long-running commands can surface them.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"time"
)

func Info(msg string, args ...any) {
	slog.Info(msg, args...)
}

func Debug(msg string, args ...any) {
	slog.Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	slog.Warn(msg, args...)
}

func Error(msg string, args ...any) {
	slog.Error(msg, args...)
}

// RecoverPanic recovers from a panic in the calling goroutine, logs it with a
// stack trace, and then runs cleanup if provided.
func RecoverPanic(name string, cleanup func()) {
	if r := recover(); r != nil {
		Error("Panic recovered", "name", name, "panic", fmt.Sprintf("%v", r))

		filename := fmt.Sprintf("dprintd-panic-%s-%s.log", name, time.Now().Format("20060102-150405"))
		if file, err := os.Create(filename); err == nil {
			fmt.Fprintf(file, "Panic in %s: %v\n\n", name, r)
			fmt.Fprintf(file, "Time: %s\n\n", time.Now().Format(time.RFC3339))
			fmt.Fprintf(file, "Stack Trace:\n%s\n", debug.Stack())
			file.Close()
			Info("Panic details written", "file", filename)
		}

		if cleanup != nil {
			cleanup()
		}
	}
}
