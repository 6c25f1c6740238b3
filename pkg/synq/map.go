// Package synq holds the small set of concurrency-safe containers the
// lookup protocol shares across foreign call sites.
package synq

import "sync"

// Map is a generic map that is safe for concurrent use.
type Map[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]V
}

func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		m: make(map[K]V),
	}
}

// Load returns the value stored for key; ok reports whether it was
// present.
func (cm *Map[K, V]) Load(key K) (value V, ok bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	value, ok = cm.m[key]
	return
}

// Store sets the value for a key.
func (cm *Map[K, V]) Store(key K, value V) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.m[key] = value
}

// LoadOrInsert returns the value stored for key, inserting value when
// the key is absent. loaded reports whether the value was already
// present.
func (cm *Map[K, V]) LoadOrInsert(key K, value V) (actual V, loaded bool) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if v, ok := cm.m[key]; ok {
		return v, true
	}

	cm.m[key] = value
	return value, false
}

// Delete removes the key from the map.
func (cm *Map[K, V]) Delete(key K) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	delete(cm.m, key)
}

func (cm *Map[K, V]) Len() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.m)
}

// Copy returns a snapshot of the map's contents.
func (cm *Map[K, V]) Copy() map[K]V {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	dest := make(map[K]V, len(cm.m))
	for k, v := range cm.m {
		dest[k] = v
	}

	return dest
}

func (cm *Map[K, V]) Reset() {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.m = make(map[K]V)
}
