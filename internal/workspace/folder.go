package workspace

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/simonheimlicher/dprint-vscode/internal/config"
	"github.com/simonheimlicher/dprint-vscode/internal/discovery"
	"github.com/simonheimlicher/dprint-vscode/internal/dprint"
	"github.com/simonheimlicher/dprint-vscode/internal/logging"
)

// Document is one formatting request payload.
type Document struct {
	Path string
	Text string
}

// Folder is one folder's formatter binding as seen by the router. A Folder is
// created fresh on every re-initialization and never mutated in place.
type Folder interface {
	// Initialize prepares the binding, returning false when the folder must
	// be excluded from the routing table (invalid config, broken executable).
	// Called exactly once per instance.
	Initialize(ctx context.Context) bool

	// Format routes one document through the bound editor service. The
	// returned text equals doc.Text when nothing changed.
	Format(ctx context.Context, doc Document) (string, error)

	Pid() (int, bool)
	Root() string
	Info() dprint.EditorInfo
	Dispose()
}

// FolderFactory constructs Folder instances for resolved bindings.
type FolderFactory interface {
	NewFolder(binding discovery.Binding) Folder
}

// serviceProcess is the slice of the process supervisor the folder service
// uses. Satisfied by *dprint.Supervisor.
type serviceProcess interface {
	Start(ctx context.Context) error
	Call(ctx context.Context, method string, params, result any) error
	Alive() bool
	Pid() (int, bool)
	Terminate()
}

type folderService struct {
	binding discovery.Binding
	command string
	args    []string
	dir     string

	proc serviceProcess
	info dprint.EditorInfo

	startMu  sync.Mutex
	disposed atomic.Bool
}

type folderFactory struct {
	cfg *config.Config

	// extraArgs precede the editor-service subcommand; tests use them to run
	// a stub executable.
	extraArgs []string
}

// NewFolderFactory returns the production factory backed by dprint
// subprocess supervisors.
func NewFolderFactory(cfg *config.Config) FolderFactory {
	return &folderFactory{cfg: cfg}
}

func (f *folderFactory) NewFolder(binding discovery.Binding) Folder {
	dir := binding.Root
	if binding.UseConfigDirAsCwd && binding.ConfigPath != "" {
		// Include/exclude globs in a user-level config are evaluated against
		// the config's own directory, not the anchor folder.
		dir = filepath.Dir(binding.ConfigPath)
	}

	sup := dprint.NewSupervisor(dprint.Options{
		Command:    f.cfg.Executable(),
		Args:       f.extraArgs,
		Dir:        dir,
		ConfigPath: binding.ConfigPath,
		Verbose:    f.cfg.Verbose,
	})

	return &folderService{
		binding: binding,
		command: f.cfg.Executable(),
		args:    f.extraArgs,
		dir:     dir,
		proc:    sup,
	}
}

func (s *folderService) Initialize(ctx context.Context) bool {
	if s.binding.ConfigPath != "" {
		if err := discovery.ValidateConfig(s.binding.ConfigPath); err != nil {
			logging.Warn("Excluding folder: configuration invalid", "root", s.binding.Root, "error", err)
			return false
		}
	}

	info, err := dprint.QueryEditorInfo(ctx, s.command, s.args, s.dir)
	if err != nil {
		logging.Warn("Excluding folder: editor info query failed", "root", s.binding.Root, "error", err)
		return false
	}
	s.info = info

	logging.Debug("Folder initialized", "root", s.binding.Root, "config", s.binding.ConfigPath, "plugins", len(info.Plugins))
	return true
}

// Format dispatches one request. A dead process is started on demand; when
// the call fails because the process went away, exactly one restart-and-retry
// is attempted before the failure surfaces. A surfaced failure means the
// editor shows no change; it never corrupts the document.
func (s *folderService) Format(ctx context.Context, doc Document) (string, error) {
	if s.disposed.Load() {
		return "", ErrDisposed
	}

	if err := s.ensureStarted(ctx); err != nil {
		return "", err
	}

	text, err := s.callFormat(ctx, doc)
	if err == nil {
		return text, nil
	}
	if !errors.Is(err, dprint.ErrProcessUnavailable) {
		return "", err
	}

	logging.Info("Editor service unavailable, restarting once", "root", s.binding.Root)
	s.proc.Terminate()
	if err := s.ensureStarted(ctx); err != nil {
		return "", err
	}
	return s.callFormat(ctx, doc)
}

func (s *folderService) callFormat(ctx context.Context, doc Document) (string, error) {
	var resp dprint.FormatResponse
	req := dprint.FormatRequest{FilePath: doc.Path, FileText: doc.Text}
	if err := s.proc.Call(ctx, "format", req, &resp); err != nil {
		return "", err
	}
	if resp.Text == nil {
		return doc.Text, nil
	}
	return *resp.Text, nil
}

func (s *folderService) ensureStarted(ctx context.Context) error {
	s.startMu.Lock()
	defer s.startMu.Unlock()
	// Re-checked under startMu: a Dispose that landed while a restart was in
	// flight must not be followed by a fresh spawn into the dead binding.
	if s.disposed.Load() {
		return ErrDisposed
	}
	if s.proc.Alive() {
		return nil
	}
	return s.proc.Start(ctx)
}

func (s *folderService) Pid() (int, bool) {
	return s.proc.Pid()
}

func (s *folderService) Root() string {
	return s.binding.Root
}

func (s *folderService) Info() dprint.EditorInfo {
	return s.info
}

// Dispose terminates the bound editor service. Idempotent. Taking startMu
// orders the terminate against any in-flight start, so a process spawned
// concurrently is still torn down here.
func (s *folderService) Dispose() {
	if s.disposed.Swap(true) {
		return
	}
	s.startMu.Lock()
	defer s.startMu.Unlock()
	s.proc.Terminate()
}
