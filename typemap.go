// Package typemap provides a concurrency-safe map that lazily computes and
// permanently caches exactly one value per distinct type key.
//
// A single lazycache-style once cell shared by a generic function is shared
// across ALL instantiations of that function, so the first type to touch it
// wins and every other instantiation silently observes the wrong value.
// TypeMap fixes that by keying the cached value on the call site's type
// arguments:
//
//	var serialized typemap.TypeMap[string]
//
//	func schemaFor[T any]() string {
//		return typemap.For[T](&serialized, func() string {
//			return buildSchema[T]()
//		})
//	}
//
// Values are retained for the remaining lifetime of the process. There is no
// eviction, expiration, or mutation of an already-initialized value.
package typemap

import (
	"sync"
	"sync/atomic"
)

// TypeMap lazily computes and permanently caches one value of type V per
// distinct Key. It is safe for concurrent use. The zero TypeMap is ready to
// use. Entries are never removed or overwritten: every distinct key used
// over the life of the process retains its value until the process exits.
type TypeMap[V any] struct {
	mu    sync.RWMutex
	slots map[Key]*slot[V]
}

// New creates an empty TypeMap. Equivalent to new(TypeMap[V]).
func New[V any]() *TypeMap[V] {
	return &TypeMap[V]{slots: make(map[Key]*slot[V])}
}

// slot is the once cell for a single key. The zero slot is empty. A filled
// slot is never unfilled, so the done fast path needs no lock. Unlike
// sync.Once, a failed initializer leaves the slot empty so a later call can
// retry.
type slot[V any] struct {
	mu   sync.Mutex
	done atomic.Bool
	val  V
}

func (s *slot[V]) fill(init func() (V, error)) (V, error) {
	if s.done.Load() {
		return s.val, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done.Load() {
		return s.val, nil
	}
	val, err := init()
	if err != nil {
		var zero V
		return zero, err
	}
	s.val = val
	s.done.Store(true)
	return val, nil
}

// slotFor returns the once cell for k, creating an empty one if needed. The
// map lock is only ever held for the lookup and the insert, never while an
// initializer runs, and the read lock is released before the write lock is
// taken.
func (m *TypeMap[V]) slotFor(k Key) *slot[V] {
	if k.IsZero() {
		panic("typemap: zero Key")
	}
	m.mu.RLock()
	s, ok := m.slots[k]
	m.mu.RUnlock()
	if ok {
		return s
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.slots[k]; ok {
		return s
	}
	if m.slots == nil {
		m.slots = make(map[Key]*slot[V])
	}
	s = new(slot[V])
	m.slots[k] = s
	return s
}

// Do returns the value for k, computing it with init on the first call for
// that key and returning the cached value on every call after. init runs at
// most once per key per TypeMap, no matter how many goroutines race on the
// first call.
//
// init may itself call back into the same TypeMap for a DIFFERENT key
// (directly or transitively) without deadlocking. A recursive call for the
// SAME key deadlocks on that key's cell and must be avoided.
func (m *TypeMap[V]) Do(k Key, init func() V) V {
	val, _ := m.slotFor(k).fill(func() (V, error) {
		return init(), nil
	})
	return val
}

// DoErr is like Do for initializers that can fail. On error nothing is
// cached for k: the error is returned to this caller and a later call for
// the same key runs its initializer again. Concurrent callers racing on an
// uninitialized key wait for the in-flight initializer rather than running
// their own.
func (m *TypeMap[V]) DoErr(k Key, init func() (V, error)) (V, error) {
	return m.slotFor(k).fill(init)
}

// For returns the value cached for type K in m, computing it with init on
// first use. This is the per-instantiation call site for generic functions:
//
//	func nameOf[T any](m *typemap.TypeMap[string]) string {
//		return typemap.For[T](m, func() string { return fmt.Sprintf("%T", *new(T)) })
//	}
func For[K any, V any](m *TypeMap[V], init func() V) V {
	return m.Do(KeyFor[K](), init)
}

// For2 is For keyed by the ordered pair of types (K1, K2).
func For2[K1 any, K2 any, V any](m *TypeMap[V], init func() V) V {
	return m.Do(KeyFor2[K1, K2](), init)
}

// For3 is For keyed by the ordered triple of types (K1, K2, K3).
func For3[K1 any, K2 any, K3 any, V any](m *TypeMap[V], init func() V) V {
	return m.Do(KeyFor3[K1, K2, K3](), init)
}

// ForErr is For with a fallible initializer; see DoErr for the retry
// semantics.
func ForErr[K any, V any](m *TypeMap[V], init func() (V, error)) (V, error) {
	return m.DoErr(KeyFor[K](), init)
}
