// Package dungeon defines the map/portal/sub-map data model and the shared
// map registry that generation pipelines operate on.
//
// # Registry and handles
//
// Maps never hold pointers to each other. Every neighbor relationship
// (portal targets, sub-map targets) is a Handle into a Registry, a grow-only
// arena in which each entry carries its own read/write lock. Handle values
// are stable for the life of the registry and are never recycled, which is
// what lets the portal graph contain cycles, self-loops, and shared
// multi-parent references without ownership gymnastics.
//
// # Lock discipline
//
// Read and Write lock a single map. Distinct handles never contend; the
// slot table itself is read-mostly, so independent pipelines can generate
// unrelated dungeons in parallel against one registry. Algorithms that must
// hold two maps at once (reciprocation writes both ends of a portal) use
// WritePair, which orders lock acquisition by handle and collapses a
// self-loop to a single lock: taking Write(h) twice on the same handle
// would deadlock.
//
// Resolving a handle that was never issued is a programming error and
// panics; it is never a silent no-op.
package dungeon

import (
	"fmt"
	"sync"
)

// Handle is an opaque, copyable identifier for a map in a Registry.
// The zero Handle refers to the first map inserted.
type Handle int

// MapProvider creates a fresh map in the registry and returns its handle.
// Providers are supplied by callers, never by the core: generators that
// spawn maps (edge portals, sub-map placement) call them on demand.
type MapProvider func(*Registry) Handle

// NewMapProvider is the default provider: it inserts an empty unbounded map.
func NewMapProvider() MapProvider {
	return func(r *Registry) Handle { return r.Insert(NewMap()) }
}

type slot struct {
	mu sync.RWMutex
	m  *Map
}

// Registry is a grow-only arena of maps addressed by Handle.
// The zero value is not usable; use NewRegistry.
type Registry struct {
	mu    sync.RWMutex
	slots []*slot
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Insert adds m to the registry and returns its handle.
func (r *Registry) Insert(m *Map) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots = append(r.slots, &slot{m: m})
	return Handle(len(r.slots) - 1)
}

// Len returns the number of maps ever inserted, including invalidated ones.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.slots)
}

func (r *Registry) slot(h Handle) *slot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if h < 0 || int(h) >= len(r.slots) {
		panic(fmt.Sprintf("dungeon: invalid map handle %d (registry holds %d maps)", h, len(r.slots)))
	}
	return r.slots[h]
}

// Read runs fn with shared access to the map at h. The map must not be
// mutated inside fn. Panics if h was never issued by this registry.
func (r *Registry) Read(h Handle, fn func(*Map)) {
	s := r.slot(h)
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.m)
}

// Write runs fn with exclusive access to the map at h.
// Panics if h was never issued by this registry.
func (r *Registry) Write(h Handle, fn func(*Map)) {
	s := r.slot(h)
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.m)
}

// WritePair runs fn with exclusive access to the maps at a and b.
// Locks are acquired in handle order so that two WritePair calls with the
// same handles in either order cannot deadlock. When a == b (a self-loop in
// the portal graph) only one lock is taken and fn receives the same map for
// both arguments.
func (r *Registry) WritePair(a, b Handle, fn func(ma, mb *Map)) {
	if a == b {
		r.Write(a, func(m *Map) { fn(m, m) })
		return
	}
	sa, sb := r.slot(a), r.slot(b)
	first, second := sa, sb
	if b < a {
		first, second = sb, sa
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()
	fn(sa.m, sb.m)
}

// Invalidate marks the map at h as rejected. The handle stays valid and is
// never recycled; the map is simply flagged so later inspection can tell it
// was discarded during retry-based placement.
func (r *Registry) Invalidate(h Handle) {
	r.Write(h, func(m *Map) { m.invalid = true })
}
