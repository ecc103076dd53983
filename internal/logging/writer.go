package logging

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/simonheimlicher/dprint-vscode/internal/pubsub"
)

// LogMessage is one parsed log line as published to subscribers.
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
}

var broker = pubsub.NewBroker[LogMessage]()

// Subscribe returns a feed of log messages written through NewWriter.
func Subscribe(ctx context.Context) <-chan pubsub.Event[LogMessage] {
	return broker.Subscribe(ctx)
}

// writer is installed as the slog handler output. Lines are mirrored to
// stderr (stdout carries formatting results) and published to subscribers.
type writer struct{}

func NewWriter() *writer {
	return &writer{}
}

func (w *writer) Write(p []byte) (int, error) {
	if _, err := os.Stderr.Write(p); err != nil {
		return 0, err
	}

	line := strings.TrimRight(string(p), "\n")
	broker.Publish(pubsub.CreatedEvent, LogMessage{
		Time:    time.Now(),
		Level:   parseLevel(line),
		Message: line,
	})
	return len(p), nil
}

func parseLevel(line string) string {
	for _, lvl := range []string{"DEBUG", "INFO", "WARN", "ERROR"} {
		if strings.Contains(line, "level="+lvl) {
			return lvl
		}
	}
	return "INFO"
}
