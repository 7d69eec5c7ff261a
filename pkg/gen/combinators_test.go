package gen

import (
	"sync"
	"testing"

	"github.com/dungenlab/dungen/pkg/dungeon"
	"github.com/dungenlab/dungen/pkg/geom"
)

// linkMaps inserts n maps and joins them with portals in a ring:
// map0→map1→…→map(n-1)→map0.
func linkRing(r *dungeon.Registry, n int) []dungeon.Handle {
	handles := make([]dungeon.Handle, n)
	for i := range handles {
		handles[i] = r.Insert(dungeon.NewMap())
	}
	for i, h := range handles {
		next := handles[(i+1)%n]
		r.Write(h, func(m *dungeon.Map) {
			m.AddPortal(dungeon.Portal{LocalPos: geom.Pt(1, 0), Facing: geom.South, Target: next})
		})
	}
	return handles
}

func TestSequentialOrder(t *testing.T) {
	r := dungeon.NewRegistry()
	h := r.Insert(dungeon.NewMap())

	var order []string
	step := func(name string) Generator {
		return Func(func(*dungeon.Registry, dungeon.Handle) { order = append(order, name) })
	}

	NewSequential(step("a"), step("b"), step("c")).Apply(r, h)

	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Errorf("order = %v, want [a b c]", order)
	}
}

func TestIfPredicate(t *testing.T) {
	r := dungeon.NewRegistry()
	h := r.Insert(dungeon.NewMap())

	calls := 0
	counted := Func(func(*dungeon.Registry, dungeon.Handle) { calls++ })

	// Fresh map: still the zero size, so the generator runs.
	NewIf(IfUngenerated, counted).Apply(r, h)
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}

	// Give the map content; the predicate now blocks the generator.
	NewEmptyRoom(geom.Sz(4, 4)).Apply(r, h)
	NewIf(IfUngenerated, counted).Apply(r, h)
	if calls != 1 {
		t.Errorf("calls = %d after content, want 1", calls)
	}
}

func TestTraversePortalsOneHop(t *testing.T) {
	r := dungeon.NewRegistry()
	// a → b → c: one hop from a must reach b but not c.
	a := r.Insert(dungeon.NewMap())
	b := r.Insert(dungeon.NewMap())
	c := r.Insert(dungeon.NewMap())
	r.Write(a, func(m *dungeon.Map) {
		m.AddPortal(dungeon.Portal{LocalPos: geom.Pt(1, 0), Target: b})
	})
	r.Write(b, func(m *dungeon.Map) {
		m.AddPortal(dungeon.Portal{LocalPos: geom.Pt(1, 0), Target: c})
	})

	visited := make(map[dungeon.Handle]int)
	NewTraversePortals(Func(func(_ *dungeon.Registry, h dungeon.Handle) {
		visited[h]++
	})).Apply(r, a)

	if visited[a] != 0 || visited[b] != 1 || visited[c] != 0 {
		t.Errorf("visited = %v, want b exactly once", visited)
	}
}

func TestTraversePortalsSnapshotsTargets(t *testing.T) {
	r := dungeon.NewRegistry()
	a := r.Insert(dungeon.NewMap())
	b := r.Insert(dungeon.NewMap())
	extra := r.Insert(dungeon.NewMap())
	r.Write(a, func(m *dungeon.Map) {
		m.AddPortal(dungeon.Portal{LocalPos: geom.Pt(1, 0), Target: b})
	})

	// The inner generator grows a's portal list mid-traversal; the
	// snapshot taken up front keeps the new target out of this pass.
	visits := 0
	NewTraversePortals(Func(func(r *dungeon.Registry, h dungeon.Handle) {
		visits++
		r.Write(a, func(m *dungeon.Map) {
			m.AddPortal(dungeon.Portal{LocalPos: geom.Pt(2, 0), Target: extra})
		})
	})).Apply(r, a)

	if visits != 1 {
		t.Errorf("visits = %d, want 1 (snapshot should exclude portals added during traversal)", visits)
	}
}

func TestTraverseThisAndPortals(t *testing.T) {
	r := dungeon.NewRegistry()
	handles := linkRing(r, 2)

	visited := make(map[dungeon.Handle]int)
	NewTraverseThisAndPortals(Func(func(_ *dungeon.Registry, h dungeon.Handle) {
		visited[h]++
	})).Apply(r, handles[0])

	if visited[handles[0]] != 1 || visited[handles[1]] != 1 {
		t.Errorf("visited = %v, want each of the pair exactly once", visited)
	}
}

func TestVisitOnceIdempotent(t *testing.T) {
	r := dungeon.NewRegistry()
	h := r.Insert(dungeon.NewMap())

	calls := 0
	guard := NewVisitOnce(Func(func(*dungeon.Registry, dungeon.Handle) { calls++ }))

	guard.Apply(r, h)
	guard.Apply(r, h)
	guard.ApplyPlaced(r, h)

	if calls != 1 {
		t.Errorf("inner generator ran %d times, want 1", calls)
	}
}

func TestVisitOnceDistinctHandles(t *testing.T) {
	r := dungeon.NewRegistry()
	const n = 10

	calls := 0
	guard := NewVisitOnce(Func(func(*dungeon.Registry, dungeon.Handle) { calls++ }))

	handles := make([]dungeon.Handle, n)
	for i := range handles {
		handles[i] = r.Insert(dungeon.NewMap())
	}
	// Offer every handle several times, interleaved.
	for round := 0; round < 3; round++ {
		for _, h := range handles {
			guard.Apply(r, h)
		}
	}

	if calls != n {
		t.Errorf("inner generator ran %d times for %d distinct handles, want %d", calls, n, n)
	}
}

func TestVisitOnceConcurrent(t *testing.T) {
	r := dungeon.NewRegistry()
	h := r.Insert(dungeon.NewMap())

	var mu sync.Mutex
	calls := 0
	guard := NewVisitOnce(Func(func(*dungeon.Registry, dungeon.Handle) {
		mu.Lock()
		calls++
		mu.Unlock()
	}))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			guard.Apply(r, h)
		}()
	}
	wg.Wait()

	if calls != 1 {
		t.Errorf("check-and-insert not atomic: inner generator ran %d times", calls)
	}
}

func TestCyclicTraversalTerminates(t *testing.T) {
	for _, k := range []int{1, 2, 5} {
		r := dungeon.NewRegistry()
		handles := linkRing(r, k)

		visited := make(map[dungeon.Handle]int)

		// The visit-once guard gates both the payload and the recursion, so
		// a revisited handle stops the walk.
		var walk Generator
		walk = NewVisitOnce(Func(func(r *dungeon.Registry, h dungeon.Handle) {
			visited[h]++
			NewTraversePortals(Func(func(r *dungeon.Registry, h dungeon.Handle) {
				walk.Apply(r, h)
			})).Apply(r, h)
		}))

		walk.Apply(r, handles[0])

		for _, h := range handles {
			if visited[h] != 1 {
				t.Errorf("k=%d: map %d visited %d times, want 1", k, h, visited[h])
			}
		}
		if len(visited) != k {
			t.Errorf("k=%d: visited %d maps, want %d", k, len(visited), k)
		}
	}
}

func TestSelfLoopTraversal(t *testing.T) {
	r := dungeon.NewRegistry()
	h := r.Insert(dungeon.NewMap())
	r.Write(h, func(m *dungeon.Map) {
		m.AddPortal(dungeon.Portal{LocalPos: geom.Pt(1, 0), Target: h})
	})

	calls := 0
	guard := NewVisitOnce(Func(func(*dungeon.Registry, dungeon.Handle) { calls++ }))
	NewTraverseThisAndPortals(guard).Apply(r, h)

	if calls != 1 {
		t.Errorf("self-loop: inner generator ran %d times, want 1", calls)
	}
}
