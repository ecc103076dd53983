// Package dprint owns the lifecycle of dprint editor-service subprocesses:
// spawning, the serialized request/response channel over stdio, crash
// observation and termination.
package dprint

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/simonheimlicher/dprint-vscode/internal/logging"
)

// Options configures a Supervisor.
type Options struct {
	// Command is the dprint executable. Extra args before "editor-service"
	// may be supplied via Args (used by tests to run a stub binary).
	Command string
	Args    []string

	// Dir is the child's working directory. For the global catch-all binding
	// this is the user config file's directory so that include/exclude globs
	// resolve against it.
	Dir string

	// ConfigPath, when set, is passed to the child via --config.
	ConfigPath string

	Verbose bool
	Env     map[string]string
}

// Supervisor owns at most one live editor service process. Calls are strictly
// serialized: the transport is a single ordered byte stream with no
// multiplexing, so a second call queues until the first completes. The
// supervisor never restarts a process on its own; after a crash it simply
// reports ErrProcessUnavailable until the owner starts it again.
type Supervisor struct {
	opts Options

	mu     sync.Mutex // guards proc
	callMu sync.Mutex // serializes Call
	proc   *process
}

// process is one spawned child with its streams. A dead process is detached
// from the supervisor by the wait observer; the struct itself stays immutable
// apart from the pending map.
type process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	nextID atomic.Uint32

	pendingMu sync.Mutex
	pending   map[uint32]chan response

	done       chan struct{} // closed once the child has been reaped
	exitErr    error
	terminated atomic.Bool // set before an intentional kill
}

func NewSupervisor(opts Options) *Supervisor {
	return &Supervisor{opts: opts}
}

// Start spawns the editor service. The child receives this process's pid so
// it can self-terminate if its parent dies; that argument is the sole guard
// against orphaned subprocesses. Start is a no-op when a process is already
// alive. Spawn failures are reported as *SpawnError and not retried.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.proc != nil {
		return nil
	}

	args := append([]string{}, s.opts.Args...)
	args = append(args, "editor-service", "--parent-pid", strconv.Itoa(os.Getpid()))
	if s.opts.ConfigPath != "" {
		args = append(args, "--config", s.opts.ConfigPath)
	}
	if s.opts.Verbose {
		args = append(args, "--verbose")
	}

	cmd := exec.Command(s.opts.Command, args...)
	cmd.Dir = s.opts.Dir
	cmd.Env = os.Environ()
	for k, v := range s.opts.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return &SpawnError{Command: s.opts.Command, Err: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &SpawnError{Command: s.opts.Command, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &SpawnError{Command: s.opts.Command, Err: err}
	}

	if err := cmd.Start(); err != nil {
		return &SpawnError{Command: s.opts.Command, Err: err}
	}

	p := &process{
		cmd:     cmd,
		stdin:   stdin,
		pending: make(map[uint32]chan response),
		done:    make(chan struct{}),
	}
	s.proc = p

	logging.Debug("Editor service started", "command", s.opts.Command, "pid", cmd.Process.Pid, "dir", s.opts.Dir)

	go p.readLoop(bufio.NewReader(stdout))
	go s.forwardStderr(stderr)
	go s.observeExit(p)

	return nil
}

// Call sends one request and awaits its correlated response. Calls queue
// behind the in-flight call. When ctx is cancelled the caller abandons
// interest in the result, but the exchange stays in flight: subsequent calls
// queue until its response arrives or the process dies. The process is never
// spawned here: a dead or unstarted child yields ErrProcessUnavailable.
func (s *Supervisor) Call(ctx context.Context, method string, params, result any) error {
	s.callMu.Lock()
	handoff := false
	defer func() {
		if !handoff {
			s.callMu.Unlock()
		}
	}()

	s.mu.Lock()
	p := s.proc
	s.mu.Unlock()
	if p == nil {
		return ErrProcessUnavailable
	}

	id := p.nextID.Add(1)
	ch := make(chan response, 1)

	p.pendingMu.Lock()
	select {
	case <-p.done:
		p.pendingMu.Unlock()
		return ErrProcessUnavailable
	default:
	}
	p.pending[id] = ch
	p.pendingMu.Unlock()

	if err := writeMessage(p.stdin, request{ID: id, Method: method, Params: params}); err != nil {
		p.unregister(id)
		return fmt.Errorf("%w: writing request: %v", ErrProcessUnavailable, err)
	}

	select {
	case resp := <-ch:
		if resp.Error != "" {
			return fmt.Errorf("editor service: %s", resp.Error)
		}
		if result != nil && len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, result); err != nil {
				return fmt.Errorf("decoding response: %w", err)
			}
		}
		return nil
	case <-p.done:
		// Detach eagerly so the owner's restart is not a no-op against the
		// dead process while observeExit is still reaping it.
		s.detach(p)
		return ErrProcessUnavailable
	case <-ctx.Done():
		// The caller abandons the result, but the exchange is still
		// outstanding on the wire. Hand callMu to a drain goroutine so the
		// next call cannot write until this one's response arrives or the
		// process dies; one call in flight stays true even across
		// cancellation.
		handoff = true
		go func() {
			defer s.callMu.Unlock()
			select {
			case <-ch:
			case <-p.done:
			}
		}()
		return ctx.Err()
	}
}

// Pid returns the live child's process id.
func (s *Supervisor) Pid() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proc == nil || s.proc.cmd.Process == nil {
		return 0, false
	}
	return s.proc.cmd.Process.Pid, true
}

// Alive reports whether a child process is currently running.
func (s *Supervisor) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proc != nil
}

// Terminate kills the child, if any, and releases its streams. Idempotent and
// safe to call when no process is alive.
func (s *Supervisor) Terminate() {
	s.mu.Lock()
	p := s.proc
	s.proc = nil
	s.mu.Unlock()

	if p == nil {
		return
	}

	p.terminated.Store(true)
	p.stdin.Close()
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	<-p.done
}

// observeExit reaps the child and detects unexpected exits. On a crash the
// supervisor transitions to the no-process state; restarting is the owner's
// decision on its next formatting attempt.
func (s *Supervisor) observeExit(p *process) {
	err := p.cmd.Wait()
	p.exitErr = err

	p.pendingMu.Lock()
	close(p.done)
	p.pending = nil
	p.pendingMu.Unlock()

	s.detach(p)

	if !p.terminated.Load() {
		logging.Warn("Editor service exited unexpectedly", "command", s.opts.Command, "error", err)
	}
}

func (s *Supervisor) detach(p *process) {
	s.mu.Lock()
	if s.proc == p {
		s.proc = nil
	}
	s.mu.Unlock()
}

func (s *Supervisor) forwardStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if s.opts.Verbose {
			logging.Info("dprint", "stderr", scanner.Text())
		} else {
			logging.Debug("dprint", "stderr", scanner.Text())
		}
	}
}

func (p *process) readLoop(r *bufio.Reader) {
	for {
		body, err := readMessage(r)
		if err != nil {
			// Stream closed; observeExit owns state transitions.
			return
		}

		var resp response
		if err := json.Unmarshal(body, &resp); err != nil {
			logging.Warn("Discarding malformed editor service message", "error", err)
			continue
		}

		p.pendingMu.Lock()
		ch, ok := p.pending[resp.ID]
		if ok {
			delete(p.pending, resp.ID)
		}
		p.pendingMu.Unlock()

		if ok {
			ch <- resp
		}
	}
}

func (p *process) unregister(id uint32) {
	p.pendingMu.Lock()
	if p.pending != nil {
		delete(p.pending, id)
	}
	p.pendingMu.Unlock()
}
