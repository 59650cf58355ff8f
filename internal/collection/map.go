package collection

import "sync"

// SyncMap is a mutex guarded generic map. It backs per-connection request
// correlation tables, so Range must be safe against concurrent resolution.
type SyncMap[K comparable, V any] struct {
	m   map[K]V
	mux sync.RWMutex
}

func (m *SyncMap[K, V]) Get(k K) (V, bool) {
	m.mux.RLock()
	defer m.mux.RUnlock()
	v, ok := m.m[k]
	return v, ok
}

func (m *SyncMap[K, V]) Put(k K, v V) {
	m.mux.Lock()
	defer m.mux.Unlock()
	m.m[k] = v
}

func (m *SyncMap[K, V]) Delete(k K) {
	m.mux.Lock()
	defer m.mux.Unlock()
	delete(m.m, k)
}

// Take removes and returns the entry in one critical section.
func (m *SyncMap[K, V]) Take(k K) (V, bool) {
	m.mux.Lock()
	defer m.mux.Unlock()
	v, ok := m.m[k]
	if ok {
		delete(m.m, k)
	}
	return v, ok
}

func (m *SyncMap[K, V]) Size() int {
	m.mux.RLock()
	defer m.mux.RUnlock()
	return len(m.m)
}

// Range visits a snapshot of the entries; f returning false stops the walk.
func (m *SyncMap[K, V]) Range(f func(key K, value V) bool) {
	m.mux.RLock()
	type entry struct {
		k K
		v V
	}
	entries := make([]entry, 0, len(m.m))
	for k, v := range m.m {
		entries = append(entries, entry{k, v})
	}
	m.mux.RUnlock()
	for _, e := range entries {
		if !f(e.k, e.v) {
			return
		}
	}
}

// Drain removes all entries and returns them; used on teardown to resolve
// every in-flight request exactly once.
func (m *SyncMap[K, V]) Drain() map[K]V {
	m.mux.Lock()
	defer m.mux.Unlock()
	ret := m.m
	m.m = make(map[K]V)
	return ret
}

func NewSyncMap[K comparable, V any]() *SyncMap[K, V] {
	return &SyncMap[K, V]{m: make(map[K]V)}
}
