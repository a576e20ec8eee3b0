// Package indexer turns project parts (a build configuration plus the files
// it compiles) into tasks on the pending-work queue, and evicts the work
// and stored results of parts that go away.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"symbol-indexer/internal/fileid"
	"symbol-indexer/internal/sortutil"
	"symbol-indexer/internal/symbols"
	"symbol-indexer/internal/symstore"
	"symbol-indexer/internal/taskqueue"
	"symbol-indexer/internal/walk"
)

// ProjectPart is one build configuration and the files it covers.
type ProjectPart struct {
	Name    string
	Defines []string
	Files   []walk.File
}

// Storage is the symbol sink plus the eviction hook used on removal.
type Storage interface {
	taskqueue.SymbolStorage
	DeleteConfiguration(config string) error
}

// ChangeFunc observes a file whose stored symbols were replaced. before is
// nil when the file had no record yet.
type ChangeFunc func(config, path string, before, after []symbols.Symbol)

type Indexer struct {
	queue    *taskqueue.Guarded
	files    *fileid.Cache
	storage  Storage
	onChange ChangeFunc
	readFile func(string) ([]byte, error)
}

type Option func(*Indexer)

// WithChangeFunc reports symbol changes produced by executed tasks.
func WithChangeFunc(fn ChangeFunc) Option {
	return func(ix *Indexer) { ix.onChange = fn }
}

// WithReadFile replaces os.ReadFile for tests.
func WithReadFile(fn func(string) ([]byte, error)) Option {
	return func(ix *Indexer) { ix.readFile = fn }
}

func New(queue *taskqueue.Guarded, files *fileid.Cache, storage Storage, opts ...Option) *Indexer {
	ix := &Indexer{queue: queue, files: files, storage: storage, readFile: os.ReadFile}
	for _, o := range opts {
		o(ix)
	}
	return ix
}

// UpdateProjectParts queues one task per (file, part). Work already queued
// for the same file and configuration is replaced by the new task.
// It returns the number of tasks handed to the queue.
func (ix *Indexer) UpdateProjectParts(ctx context.Context, parts []ProjectPart) int {
	var tasks []taskqueue.Task
	for _, part := range parts {
		cfg := ix.queue.ConfigID(part.Name)
		defines := slices.Clone(part.Defines)
		for _, f := range part.Files {
			id := ix.files.FileID(f.RelPath)
			tasks = append(tasks, taskqueue.NewTask(id, cfg, ix.action(part.Name, defines, f)))
		}
		slog.DebugContext(ctx, "project part queued", "config", part.Name, "config_id", cfg, "files", len(part.Files))
	}
	slices.SortFunc(tasks, taskqueue.CompareTasks)
	ix.queue.AddOrUpdateTasks(tasks)
	slog.InfoContext(ctx, "tasks queued", "parts", len(parts), "tasks", len(tasks), "pending", ix.queue.Len())
	return len(tasks)
}

// RemoveProjectParts drops pending work for the named configurations and
// deletes what was stored for them. Configuration ids stay reserved.
func (ix *Indexer) RemoveProjectParts(ctx context.Context, names []string) error {
	names = sortutil.SortedUnique(names)
	before := ix.queue.Len()
	ix.queue.RemoveTasks(names)
	for _, name := range names {
		if err := ix.storage.DeleteConfiguration(name); err != nil {
			return fmt.Errorf("remove project part %q: %w", name, err)
		}
	}
	slog.InfoContext(ctx, "project parts removed", "configs", names, "dropped", before-ix.queue.Len())
	return nil
}

// action indexes f under one configuration. Unchanged content with the
// same defines is skipped by fingerprint.
func (ix *Indexer) action(config string, defines []string, f walk.File) taskqueue.Action {
	return func(ctx context.Context, c taskqueue.SymbolsCollector, s taskqueue.SymbolStorage) error {
		data, err := ix.readFile(f.AbsPath)
		if err != nil {
			return fmt.Errorf("read %s: %w", f.RelPath, err)
		}
		fp := symstore.Fingerprint(data, defines...)
		old, ok, err := s.Fingerprint(config, f.RelPath)
		if err != nil {
			return fmt.Errorf("fingerprint %s@%s: %w", f.RelPath, config, err)
		}
		if ok && old == fp {
			slog.DebugContext(ctx, "file unchanged", "path", f.RelPath, "config", config)
			return nil
		}

		c.Clear()
		if err := c.Collect(f.RelPath, data, defines); err != nil {
			return fmt.Errorf("collect %s@%s: %w", f.RelPath, config, err)
		}
		syms := c.Symbols()
		prev, err := s.StoreFileSymbols(config, f.RelPath, fp, syms)
		if err != nil {
			return fmt.Errorf("store %s@%s: %w", f.RelPath, config, err)
		}
		if ix.onChange != nil {
			ix.onChange(config, f.RelPath, prev, syms)
		}
		return nil
	}
}
