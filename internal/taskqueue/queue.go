package taskqueue

import "slices"

// Queue is the sorted, key-unique store of pending indexing tasks.
//
// Invariants:
//   - tasks is sorted ascending by TaskKey
//   - no two tasks share a TaskKey
//   - every ConfigID in tasks was produced by configs
//
// Queue is a single-writer structure; wrap it in Guarded when several
// goroutines touch it.
type Queue struct {
	configs *ConfigInterner
	tasks   []Task
}

// New returns an empty queue with its own configuration interner.
func New() *Queue {
	return &Queue{configs: NewConfigInterner()}
}

// Configs exposes the interner backing this queue.
func (q *Queue) Configs() *ConfigInterner { return q.configs }

// ConfigID resolves (and if needed assigns) the id of one configuration.
func (q *Queue) ConfigID(name string) ConfigID { return q.configs.Resolve(name) }

// ConfigIDs resolves several configurations; the result is sorted ascending.
func (q *Queue) ConfigIDs(names []string) []ConfigID { return q.configs.ResolveBatch(names) }

// AddOrUpdateTasks merges incoming into the queue in one forward sweep.
// A task whose key is already queued replaces the queued task's Action in
// place; any other task is inserted at its sorted position.
//
// incoming is expected to be sorted by key without duplicates. Input that
// breaks this is normalized first (stable sort, last occurrence of a key
// wins) so the queue invariants hold regardless.
func (q *Queue) AddOrUpdateTasks(incoming []Task) {
	if len(incoming) == 0 {
		return
	}
	incoming = normalize(incoming)
	if len(q.tasks) == 0 {
		q.tasks = slices.Clone(incoming)
		return
	}

	merged := make([]Task, 0, len(q.tasks)+len(incoming))
	i, j := 0, 0
	for i < len(q.tasks) && j < len(incoming) {
		switch c := q.tasks[i].Key().Compare(incoming[j].Key()); {
		case c < 0:
			merged = append(merged, q.tasks[i])
			i++
		case c > 0:
			merged = append(merged, incoming[j])
			j++
		default:
			merged = append(merged, incoming[j])
			i++
			j++
		}
	}
	merged = append(merged, q.tasks[i:]...)
	merged = append(merged, incoming[j:]...)
	q.tasks = merged
}

// RemoveTasks drops every task belonging to one of the named configurations.
// Names are only looked up, never interned: a configuration that was never
// seen cannot own tasks. The interner keeps the ids of removed
// configurations, so re-adding one later reuses its old id.
//
// The store is ordered by file first, so this is a linear scan that keeps
// the relative order of the survivors.
func (q *Queue) RemoveTasks(names []string) {
	ids := make([]ConfigID, 0, len(names))
	for _, n := range names {
		if id, ok := q.configs.Lookup(n); ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 || len(q.tasks) == 0 {
		return
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	q.tasks = slices.DeleteFunc(q.tasks, func(t Task) bool {
		_, found := slices.BinarySearch(ids, t.ConfigID)
		return found
	})
}

// Tasks returns a copy of the queued tasks in key order.
func (q *Queue) Tasks() []Task { return slices.Clone(q.tasks) }

// Len is the number of queued tasks.
func (q *Queue) Len() int { return len(q.tasks) }

// TakeFront removes and returns up to n tasks from the head of the queue.
// This is the claim step used by the execution layer.
func (q *Queue) TakeFront(n int) []Task {
	if n <= 0 || len(q.tasks) == 0 {
		return nil
	}
	n = min(n, len(q.tasks))
	out := slices.Clone(q.tasks[:n])
	clear(q.tasks[:n])
	q.tasks = q.tasks[n:]
	if len(q.tasks) == 0 {
		q.tasks = nil
	}
	return out
}

// normalize returns in when it is already strictly increasing by key,
// otherwise a sorted copy with one entry per key (the last one given).
func normalize(in []Task) []Task {
	if isStrictlySorted(in) {
		return in
	}
	out := slices.Clone(in)
	slices.SortStableFunc(out, CompareTasks)
	w := 0
	for r := range out {
		if w > 0 && SameKey(out[w-1], out[r]) {
			out[w-1] = out[r]
			continue
		}
		out[w] = out[r]
		w++
	}
	clear(out[w:])
	return out[:w]
}

func isStrictlySorted(in []Task) bool {
	for k := 1; k < len(in); k++ {
		if in[k-1].Key().Compare(in[k].Key()) >= 0 {
			return false
		}
	}
	return true
}
