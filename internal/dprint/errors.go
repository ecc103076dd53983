package dprint

import (
	"errors"
	"fmt"
)

// ErrProcessUnavailable indicates the editor service process has exited or
// was never started. Callers decide whether to restart; the supervisor never
// auto-spawns.
var ErrProcessUnavailable = errors.New("editor service process is not running")

// SpawnError reports that the dprint executable could not be started at all.
// It is surfaced to the caller and never retried automatically.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}
