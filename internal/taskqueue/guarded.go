package taskqueue

import "sync"

// Guarded serializes every queue and interner operation behind one mutex.
// One lock covers both because RemoveTasks reads the interner while
// ConfigID may be growing it.
type Guarded struct {
	mu sync.Mutex
	q  *Queue
}

// NewGuarded wraps a fresh Queue.
func NewGuarded() *Guarded {
	return &Guarded{q: New()}
}

// ConfigID resolves one configuration name.
func (g *Guarded) ConfigID(name string) ConfigID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.q.ConfigID(name)
}

// ConfigIDs resolves several configuration names, sorted ascending.
func (g *Guarded) ConfigIDs(names []string) []ConfigID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.q.ConfigIDs(names)
}

// ConfigName maps a numeric configuration id back to its name.
func (g *Guarded) ConfigName(id ConfigID) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.q.configs.Name(id)
}

// AddOrUpdateTasks is Queue.AddOrUpdateTasks under the lock.
func (g *Guarded) AddOrUpdateTasks(tasks []Task) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.q.AddOrUpdateTasks(tasks)
}

// RemoveTasks is Queue.RemoveTasks under the lock.
func (g *Guarded) RemoveTasks(names []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.q.RemoveTasks(names)
}

// Tasks returns a snapshot of the queued tasks.
func (g *Guarded) Tasks() []Task {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.q.Tasks()
}

// Len is the number of queued tasks.
func (g *Guarded) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.q.Len()
}

// TakeFront claims up to n tasks from the head of the queue.
func (g *Guarded) TakeFront(n int) []Task {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.q.TakeFront(n)
}
