// Package taskqueue holds the pending-work queue of the background symbol
// indexer: one task per (file, build configuration) pair, kept sorted and
// unique by that key.
//
// This file provides:
//   - FileID / ConfigID: the two halves of a task key
//   - TaskKey: the key itself, with the total order used everywhere
//   - Task: key plus the opaque Action that does the indexing work
//
// Ordering and equality only ever look at TaskKey; the Action is carried
// data that an update replaces wholesale.
package taskqueue

import (
	"cmp"
	"context"

	"symbol-indexer/internal/symbols"
)

// FileID identifies a source file. Values come from an external identifier
// service (see internal/fileid); the queue only compares them.
type FileID uint32

// ConfigID is the interned numeric form of a configuration string id. It is
// the configuration's first-seen rank in a ConfigInterner.
type ConfigID uint32

// SymbolsCollector gathers symbols from one file under one configuration.
type SymbolsCollector interface {
	Collect(path string, data []byte, defines []string) error
	Symbols() []symbols.Symbol
	Clear()
}

// SymbolStorage persists what a collector found. StoreFileSymbols returns
// the symbols previously recorded for (config, path), if any.
type SymbolStorage interface {
	Fingerprint(config, path string) (uint64, bool, error)
	StoreFileSymbols(config, path string, fingerprint uint64, syms []symbols.Symbol) ([]symbols.Symbol, error)
}

// Action is the unit of work attached to a task. The queue never calls it.
type Action func(ctx context.Context, collector SymbolsCollector, storage SymbolStorage) error

// TaskKey is the identity of a task: (file, configuration).
type TaskKey struct {
	File   FileID
	Config ConfigID
}

// Compare orders keys by file first, configuration second.
func (k TaskKey) Compare(o TaskKey) int {
	if c := cmp.Compare(k.File, o.File); c != 0 {
		return c
	}
	return cmp.Compare(k.Config, o.Config)
}

// Task is one outstanding unit of indexing work.
type Task struct {
	FileID   FileID
	ConfigID ConfigID
	Action   Action
}

// NewTask builds a task for the given key parts.
func NewTask(file FileID, config ConfigID, action Action) Task {
	return Task{FileID: file, ConfigID: config, Action: action}
}

// Key extracts the identity of t.
func (t Task) Key() TaskKey { return TaskKey{File: t.FileID, Config: t.ConfigID} }

// CompareTasks is the sort function for task slices.
func CompareTasks(a, b Task) int { return a.Key().Compare(b.Key()) }

// SameKey reports whether a and b describe the same unit of work.
func SameKey(a, b Task) bool { return a.Key() == b.Key() }
