package scope

import (
	"cmp"
	"slices"
	"sync"
	"sync/atomic"
)

// Entry is a cached singleton together with the sequence number it was
// assigned when its producer first succeeded.
type Entry[T any] struct {
	ID       string
	Value    T
	Sequence uint64
}

type failure struct {
	err   error
	epoch uint64
}

// Manager caches singletons and serializes their construction. One
// container-wide creation lock guards every singleton construction; nested
// constructions on the same resolution chain pass locked=true and run under
// the lock their outermost caller already holds.
type Manager[T any] struct {
	creation sync.Mutex

	mu        sync.RWMutex
	instances map[string]Entry[T]
	failures  map[string]failure
	epoch     uint64

	seq atomic.Uint64
}

func NewManager[T any]() *Manager[T] {
	return &Manager[T]{
		instances: make(map[string]Entry[T]),
		failures:  make(map[string]failure),
	}
}

// NextSequence hands out the monotonic creation sequence.
func (m *Manager[T]) NextSequence() uint64 {
	return m.seq.Add(1)
}

func (m *Manager[T]) Get(id string) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.instances[id]
	return e.Value, ok
}

func (m *Manager[T]) Has(id string) bool {
	_, ok := m.Get(id)
	return ok
}

// Drain waits for the singleton construction in progress, if any, to finish.
func (m *Manager[T]) Drain() {
	m.creation.Lock()
	defer m.creation.Unlock()
}

// Singleton returns the cached instance for id or constructs it exactly once.
// Callers that block while another caller constructs id receive that
// caller's failure instead of retrying.
func (m *Manager[T]) Singleton(id string, locked bool, create func() (T, uint64, error)) (T, error) {
	if v, ok := m.Get(id); ok {
		return v, nil
	}
	if locked {
		return m.construct(id, create)
	}

	m.mu.RLock()
	waitedFrom := m.epoch
	m.mu.RUnlock()

	m.creation.Lock()
	defer m.creation.Unlock()

	if v, ok := m.Get(id); ok {
		return v, nil
	}

	m.mu.RLock()
	f, failed := m.failures[id]
	m.mu.RUnlock()
	if failed && f.epoch > waitedFrom {
		var zero T
		return zero, f.err
	}

	return m.construct(id, create)
}

func (m *Manager[T]) construct(id string, create func() (T, uint64, error)) (T, error) {
	v, seq, err := create()

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.epoch++
		m.failures[id] = failure{err: err, epoch: m.epoch}
		var zero T
		return zero, err
	}

	delete(m.failures, id)
	m.instances[id] = Entry[T]{ID: id, Value: v, Sequence: seq}
	return v, nil
}

// Prototype constructs a fresh instance and keeps nothing.
func (m *Manager[T]) Prototype(create func() (T, error)) (T, error) {
	return create()
}

// Put caches a ready singleton directly.
func (m *Manager[T]) Put(id string, v T, seq uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.instances[id] = Entry[T]{ID: id, Value: v, Sequence: seq}
}

// Tracked lists cached singletons, latest creation first.
func (m *Manager[T]) Tracked() []Entry[T] {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]Entry[T], 0, len(m.instances))
	for _, e := range m.instances {
		entries = append(entries, e)
	}
	slices.SortFunc(
		entries, func(a, b Entry[T]) int {
			return cmp.Compare(b.Sequence, a.Sequence)
		},
	)
	return entries
}

func (m *Manager[T]) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.instances)
}

func (m *Manager[T]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.instances = make(map[string]Entry[T])
	m.failures = make(map[string]failure)
}
