// Package workspace routes formatting requests to per-folder dprint editor
// services and coordinates their lifecycle across re-initializations.
package workspace

import (
	"context"
	"sort"
	"sync"

	"github.com/simonheimlicher/dprint-vscode/internal/discovery"
	"github.com/simonheimlicher/dprint-vscode/internal/dprint"
	"github.com/simonheimlicher/dprint-vscode/internal/logging"
	"github.com/simonheimlicher/dprint-vscode/internal/pubsub"
)

// FolderInfo pairs a bound folder root with the formatter's self-reported
// editor metadata.
type FolderInfo struct {
	Root   string
	Editor dprint.EditorInfo
}

// Event describes a workspace lifecycle change published to subscribers.
type Event struct {
	Kind    string
	Folders int
}

const (
	EventInitialized = "initialized"
	EventDisposed    = "disposed"
)

// generation is one complete, atomically swapped snapshot of the routing
// table. Folders are ordered longest root first so the first prefix match is
// the longest one.
type generation struct {
	folders []Folder
	global  Folder
}

// Service owns the set of folder bindings and the routing table. The table is
// replaced as a whole on re-initialization, never mutated in place.
type Service struct {
	*pubsub.Broker[Event]

	resolver *discovery.Resolver
	factory  FolderFactory
	roots    []discovery.FolderRoot

	mu       sync.RWMutex
	gen      *generation
	disposed bool
}

func NewService(resolver *discovery.Resolver, factory FolderFactory, roots []discovery.FolderRoot) *Service {
	return &Service{
		Broker:   pubsub.NewBroker[Event](),
		resolver: resolver,
		factory:  factory,
		roots:    roots,
	}
}

// InitializeFolders rebuilds the routing table from scratch: discovery,
// per-folder precedence resolution, fresh Folder instances initialized
// concurrently, and an atomic swap. The previous generation is disposed only
// after the new one is fully constructed, so routing never observes a window
// with neither generation functioning. One folder's failure never aborts its
// siblings; partial success is success.
func (s *Service) InitializeFolders(ctx context.Context) ([]FolderInfo, error) {
	s.mu.RLock()
	if s.disposed {
		s.mu.RUnlock()
		return nil, ErrDisposed
	}
	s.mu.RUnlock()

	resolution := s.resolver.Resolve(s.roots)

	type slot struct {
		folder Folder
		ok     bool
	}

	slots := make([]slot, len(resolution.Bindings))
	var globalSlot *slot

	var wg sync.WaitGroup
	initFolder := func(target *slot, binding discovery.Binding) {
		target.folder = s.factory.NewFolder(binding)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer logging.RecoverPanic("folder-init", nil)
			target.ok = target.folder.Initialize(ctx)
		}()
	}

	for i, binding := range resolution.Bindings {
		initFolder(&slots[i], binding)
	}
	if resolution.Global != nil {
		globalSlot = &slot{}
		initFolder(globalSlot, *resolution.Global)
	}
	wg.Wait()

	newGen := &generation{}
	var infos []FolderInfo
	for _, sl := range slots {
		if !sl.ok {
			sl.folder.Dispose()
			continue
		}
		newGen.folders = append(newGen.folders, sl.folder)
		infos = append(infos, FolderInfo{Root: sl.folder.Root(), Editor: sl.folder.Info()})
	}
	sort.SliceStable(newGen.folders, func(i, j int) bool {
		return len(newGen.folders[i].Root()) > len(newGen.folders[j].Root())
	})
	if globalSlot != nil {
		if globalSlot.ok {
			newGen.global = globalSlot.folder
		} else {
			globalSlot.folder.Dispose()
		}
	}

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		// Torn down while we were initializing: discard the stale result
		// rather than installing a half-built table.
		disposeGeneration(newGen)
		return nil, ErrDisposed
	}
	oldGen := s.gen
	s.gen = newGen
	s.mu.Unlock()

	disposeGeneration(oldGen)

	logging.Info("Workspace initialized", "folders", len(newGen.folders), "global", newGen.global != nil)
	s.Publish(pubsub.UpdatedEvent, Event{Kind: EventInitialized, Folders: len(newGen.folders)})
	return infos, nil
}

// Format resolves the owning folder by longest-prefix match of the document
// path against all bound roots, falling back to the global binding. Returns
// ErrNoFormatter when neither matches.
func (s *Service) Format(ctx context.Context, doc Document) (string, error) {
	s.mu.RLock()
	if s.disposed {
		s.mu.RUnlock()
		return "", ErrDisposed
	}
	gen := s.gen
	s.mu.RUnlock()

	if gen == nil {
		return "", ErrNoFormatter
	}

	for _, folder := range gen.folders {
		if discovery.Within(doc.Path, folder.Root()) {
			return folder.Format(ctx, doc)
		}
	}
	if gen.global != nil {
		return gen.global.Format(ctx, doc)
	}
	return "", ErrNoFormatter
}

// EditorServicePid returns the process id of the first live bound formatter,
// folder bindings first and the global binding last. This exists for external
// observation (test harnesses simulating crashes); production code paths must
// not depend on it.
func (s *Service) EditorServicePid() (int, bool) {
	s.mu.RLock()
	gen := s.gen
	disposed := s.disposed
	s.mu.RUnlock()

	if disposed || gen == nil {
		return 0, false
	}
	for _, folder := range gen.folders {
		if pid, ok := folder.Pid(); ok {
			return pid, true
		}
	}
	if gen.global != nil {
		if pid, ok := gen.global.Pid(); ok {
			return pid, true
		}
	}
	return 0, false
}

// Dispose tears down every bound folder and marks the service terminally
// disposed; all subsequent operations fail with ErrDisposed. Idempotent.
func (s *Service) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	gen := s.gen
	s.gen = nil
	s.mu.Unlock()

	disposeGeneration(gen)
	s.Publish(pubsub.DeletedEvent, Event{Kind: EventDisposed})
	s.Broker.Shutdown()
	logging.Info("Workspace disposed")
}

func disposeGeneration(gen *generation) {
	if gen == nil {
		return
	}
	for _, folder := range gen.folders {
		folder.Dispose()
	}
	if gen.global != nil {
		gen.global.Dispose()
	}
}
