package typemap

import "sync"

// The process-wide maps, one per value type, keyed by KeyFor[V]. Same
// double-checked read-then-write protocol as TypeMap.slot. Entries live for
// the remaining lifetime of the process.
var (
	globalMu sync.RWMutex
	globals  = make(map[Key]any)
)

// Global returns the process-wide TypeMap for value type V, constructing it
// on first use. Every caller naming the same V gets the same instance, which
// is never torn down, so values cached through it are valid for the rest of
// the process.
func Global[V any]() *TypeMap[V] {
	k := KeyFor[V]()
	globalMu.RLock()
	m, ok := globals[k]
	globalMu.RUnlock()
	if ok {
		return m.(*TypeMap[V])
	}
	globalMu.Lock()
	defer globalMu.Unlock()
	if m, ok := globals[k]; ok {
		return m.(*TypeMap[V])
	}
	tm := New[V]()
	globals[k] = tm
	return tm
}
