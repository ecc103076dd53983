package dprint

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The tests below re-exec the test binary as a stub editor service; see
// TestHelperProcess at the bottom of the file.

func stubOptions(t *testing.T, configPath string) Options {
	t.Helper()
	return Options{
		Command:    os.Args[0],
		Args:       []string{"-test.run=TestHelperProcess", "--"},
		Dir:        t.TempDir(),
		ConfigPath: configPath,
		Env:        map[string]string{"GO_WANT_HELPER_PROCESS": "1"},
	}
}

func startStub(t *testing.T, configPath string) *Supervisor {
	t.Helper()
	s := NewSupervisor(stubOptions(t, configPath))
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Terminate)
	return s
}

func callFormat(t *testing.T, s *Supervisor, text string) FormatResponse {
	t.Helper()
	var resp FormatResponse
	err := s.Call(context.Background(), "format", FormatRequest{
		FilePath: "/ws/a.json",
		FileText: text,
	}, &resp)
	require.NoError(t, err)
	return resp
}

func TestSupervisorFormat(t *testing.T) {
	s := startStub(t, "")

	resp := callFormat(t, s, `{"test":5}`)
	require.NotNil(t, resp.Text)
	assert.Equal(t, "{\n  \"test\": 5\n}\n", *resp.Text)
}

func TestSupervisorFormatAlreadyFormatted(t *testing.T) {
	s := startStub(t, "")

	resp := callFormat(t, s, "{\n  \"test\": 5\n}\n")
	assert.Nil(t, resp.Text, "an already formatted document yields no text")
}

func TestSupervisorPassesConfigPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "dprint.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{"preferSingleLine": true}`), 0o644))

	s := startStub(t, configPath)

	resp := callFormat(t, s, "{\n  \"test\": 5\n}\n")
	require.NotNil(t, resp.Text)
	assert.Equal(t, "{ \"test\": 5 }\n", *resp.Text)
}

func TestSupervisorCallWithoutStart(t *testing.T) {
	s := NewSupervisor(stubOptions(t, ""))
	err := s.Call(context.Background(), "format", FormatRequest{}, nil)
	assert.ErrorIs(t, err, ErrProcessUnavailable)
}

func TestSupervisorSpawnError(t *testing.T) {
	s := NewSupervisor(Options{Command: "dprint-definitely-not-installed"})
	err := s.Start(context.Background())

	var spawnErr *SpawnError
	require.ErrorAs(t, err, &spawnErr)
	assert.Equal(t, "dprint-definitely-not-installed", spawnErr.Command)
	assert.False(t, s.Alive(), "a failed spawn must not leave a process attached")
}

func TestSupervisorStartIdempotent(t *testing.T) {
	s := startStub(t, "")

	pid1, ok := s.Pid()
	require.True(t, ok)

	require.NoError(t, s.Start(context.Background()))
	pid2, ok := s.Pid()
	require.True(t, ok)
	assert.Equal(t, pid1, pid2)
}

func TestSupervisorSerializedCalls(t *testing.T) {
	s := startStub(t, "")

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	results := make([]int, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var resp struct {
				Value int `json:"value"`
			}
			errs[i] = s.Call(context.Background(), "echo", map[string]int{"value": i}, &resp)
			results[i] = resp.Value
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, i, results[i], "response correlated to the wrong caller")
	}
}

func TestSupervisorCrashDetection(t *testing.T) {
	s := startStub(t, "")

	pid1, ok := s.Pid()
	require.True(t, ok)

	err := s.Call(context.Background(), "crash", nil, nil)
	assert.ErrorIs(t, err, ErrProcessUnavailable)
	assert.False(t, s.Alive())

	// The owner restarts explicitly; a fresh process must come up.
	require.NoError(t, s.Start(context.Background()))
	pid2, ok := s.Pid()
	require.True(t, ok)
	assert.NotEqual(t, pid1, pid2)

	resp := callFormat(t, s, `{"test":5}`)
	require.NotNil(t, resp.Text)
	assert.Equal(t, "{\n  \"test\": 5\n}\n", *resp.Text)
}

func TestSupervisorCancelledCallLeavesChannelIntact(t *testing.T) {
	s := startStub(t, "")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := s.Call(ctx, "sleep", map[string]int{"ms": 400}, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The abandoned exchange completes on its own; the next call must still
	// receive its own response.
	var resp struct {
		Value int `json:"value"`
	}
	require.NoError(t, s.Call(context.Background(), "echo", map[string]int{"value": 42}, &resp))
	assert.Equal(t, 42, resp.Value)
}

func TestSupervisorCancelledCallBlocksNextWrite(t *testing.T) {
	s := startStub(t, "")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	err := s.Call(ctx, "sleep", map[string]int{"ms": 400}, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// The abandoned exchange is still on the wire; the next call must queue
	// behind it rather than writing a second request immediately.
	var resp struct {
		Value int `json:"value"`
	}
	require.NoError(t, s.Call(context.Background(), "echo", map[string]int{"value": 7}, &resp))
	assert.Equal(t, 7, resp.Value)
	assert.GreaterOrEqual(t, time.Since(start), 400*time.Millisecond,
		"second call must not complete before the abandoned one resolves")
}

func TestSupervisorTerminateReleasesAbandonedCall(t *testing.T) {
	s := startStub(t, "")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := s.Call(ctx, "sleep", map[string]int{"ms": 5000}, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Killing the process must unblock the queue; a follow-up call fails
	// fast instead of deadlocking behind the abandoned exchange.
	s.Terminate()

	done := make(chan error, 1)
	go func() {
		done <- s.Call(context.Background(), "echo", map[string]int{"value": 1}, nil)
	}()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrProcessUnavailable)
	case <-time.After(2 * time.Second):
		t.Fatal("call queue deadlocked after terminate")
	}
}

func TestSupervisorStartCancelledContext(t *testing.T) {
	s := NewSupervisor(stubOptions(t, ""))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Start(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, s.Alive())
}

func TestSupervisorTerminateIdempotent(t *testing.T) {
	s := NewSupervisor(stubOptions(t, ""))
	s.Terminate() // no process yet

	require.NoError(t, s.Start(context.Background()))
	s.Terminate()
	s.Terminate()

	assert.False(t, s.Alive())
	assert.ErrorIs(t, s.Call(context.Background(), "format", FormatRequest{}, nil), ErrProcessUnavailable)
}

func TestQueryEditorInfo(t *testing.T) {
	t.Setenv("GO_WANT_HELPER_PROCESS", "1")

	info, err := QueryEditorInfo(context.Background(), os.Args[0],
		[]string{"-test.run=TestHelperProcess", "--"}, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, int64(5), info.SchemaVersion)
	assert.Equal(t, "0.45.0", info.CliVersion)
	require.Len(t, info.Plugins, 1)
	assert.Equal(t, "dprint-plugin-json", info.Plugins[0].Name)
	assert.Equal(t, []string{"json", "jsonc"}, info.Plugins[0].FileExtensions)
}

func TestQueryEditorInfoInvalidOutput(t *testing.T) {
	t.Setenv("GO_WANT_HELPER_PROCESS", "1")
	t.Setenv("STUB_EDITOR_INFO", "not json at all")

	_, err := QueryEditorInfo(context.Background(), os.Args[0],
		[]string{"-test.run=TestHelperProcess", "--"}, t.TempDir())
	assert.Error(t, err)
}

// TestHelperProcess is not a real test. When re-executed with
// GO_WANT_HELPER_PROCESS set it acts as a stub dprint binary: "editor-info"
// prints metadata and exits, "editor-service" speaks the length-prefixed JSON
// channel on stdin/stdout until killed.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	for i, arg := range args {
		if arg == "--" {
			args = args[i+1:]
			break
		}
	}
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "stub: missing subcommand")
		os.Exit(2)
	}

	switch args[0] {
	case "editor-info":
		if out := os.Getenv("STUB_EDITOR_INFO"); out != "" {
			fmt.Print(out)
		} else {
			fmt.Print(`{"schemaVersion":5,"cliVersion":"0.45.0",` +
				`"plugins":[{"name":"dprint-plugin-json","fileExtensions":["json","jsonc"]}]}`)
		}
		os.Exit(0)
	case "editor-service":
		runStubEditorService(args[1:])
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "stub: unknown subcommand %q\n", args[0])
		os.Exit(2)
	}
}

type stubConfig struct {
	PreferSingleLine bool `json:"preferSingleLine"`
}

func runStubEditorService(args []string) {
	var cfg stubConfig
	for i := 0; i < len(args); i++ {
		if args[i] == "--config" && i+1 < len(args) {
			if data, err := os.ReadFile(args[i+1]); err == nil {
				_ = json.Unmarshal(data, &cfg)
			}
		}
	}

	in := bufio.NewReader(os.Stdin)
	for {
		body, err := readMessage(in)
		if err != nil {
			return
		}

		var req struct {
			ID     uint32          `json:"id"`
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			continue
		}

		switch req.Method {
		case "format":
			var fr FormatRequest
			if err := json.Unmarshal(req.Params, &fr); err != nil {
				stubRespond(req.ID, nil, err.Error())
				continue
			}
			formatted, err := stubFormat(fr.FileText, cfg)
			if err != nil {
				stubRespond(req.ID, nil, err.Error())
				continue
			}
			resp := FormatResponse{}
			if formatted != fr.FileText {
				resp.Text = &formatted
			}
			result, _ := json.Marshal(resp)
			stubRespond(req.ID, result, "")
		case "echo":
			stubRespond(req.ID, req.Params, "")
		case "sleep":
			var p struct {
				Ms int `json:"ms"`
			}
			_ = json.Unmarshal(req.Params, &p)
			time.Sleep(time.Duration(p.Ms) * time.Millisecond)
			stubRespond(req.ID, nil, "")
		case "crash":
			os.Exit(3)
		default:
			stubRespond(req.ID, nil, "unknown method "+req.Method)
		}
	}
}

func stubRespond(id uint32, result json.RawMessage, errMsg string) {
	_ = writeMessage(os.Stdout, response{ID: id, Result: result, Error: errMsg})
}

func stubFormat(text string, cfg stubConfig) (string, error) {
	if !json.Valid([]byte(text)) {
		return "", errors.New("invalid JSON input")
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, []byte(text)); err != nil {
		return "", err
	}

	if cfg.PreferSingleLine {
		s := compact.String()
		s = strings.ReplaceAll(s, ":", ": ")
		s = strings.ReplaceAll(s, ",", ", ")
		if len(s) > 2 && s[0] == '{' {
			s = "{ " + s[1:len(s)-1] + " }"
		}
		return s + "\n", nil
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, compact.Bytes(), "", "  "); err != nil {
		return "", err
	}
	return pretty.String() + "\n", nil
}
