package recipe

import (
	"context"
	"strings"
	"testing"

	"github.com/dungenlab/dungen/pkg/cache"
)

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	r := NewRunner(c, nil, nil)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRunnerExecute(t *testing.T) {
	r := newTestRunner(t)
	rec := mustParse(t, sampleRecipe)

	res, err := r.Execute(context.Background(), Options{
		Recipe:  rec,
		Formats: []string{FormatASCII, FormatJSON, FormatDOT},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.RunID == "" {
		t.Error("result has no run ID")
	}
	if res.DungeonHash == "" {
		t.Error("result has no dungeon hash")
	}
	if res.Stats.Seed != rec.Seed {
		t.Errorf("seed = %d, want recipe seed %d", res.Stats.Seed, rec.Seed)
	}
	if res.Stats.MapCount != res.Registry.Len() {
		t.Errorf("map count = %d, registry holds %d", res.Stats.MapCount, res.Registry.Len())
	}
	for _, f := range []string{FormatASCII, FormatJSON, FormatDOT} {
		if len(res.Artifacts[f]) == 0 {
			t.Errorf("no %s artifact", f)
		}
	}
	if !strings.Contains(string(res.Artifacts[FormatDOT]), "digraph dungeon") {
		t.Error("dot artifact is not a digraph")
	}
}

func TestRunnerCachesAcrossRuns(t *testing.T) {
	r := newTestRunner(t)
	rec := mustParse(t, sampleRecipe)
	opts := Options{Recipe: rec, Formats: []string{FormatASCII, FormatJSON}}

	first, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.CacheInfo.GenerateHit || first.CacheInfo.RenderHit {
		t.Error("first run should not hit the cache")
	}

	second, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !second.CacheInfo.GenerateHit {
		t.Error("second run should hit the dungeon cache")
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run should hit the artifact cache")
	}
	if second.DungeonHash != first.DungeonHash {
		t.Error("cached dungeon hash differs from original")
	}
	if string(second.Artifacts[FormatASCII]) != string(first.Artifacts[FormatASCII]) {
		t.Error("cached artifact differs from original")
	}
	if second.RunID == first.RunID {
		t.Error("runs should get distinct IDs")
	}
}

func TestRunnerSeedOverride(t *testing.T) {
	r := newTestRunner(t)
	rec := mustParse(t, sampleRecipe)

	seed := uint64(12345)
	res, err := r.Execute(context.Background(), Options{Recipe: rec, Seed: &seed})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Stats.Seed != seed {
		t.Errorf("seed = %d, want override %d", res.Stats.Seed, seed)
	}

	base, err := r.Execute(context.Background(), Options{Recipe: rec})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if base.DungeonHash == res.DungeonHash {
		t.Error("override seed produced the same dungeon as the recipe seed")
	}
}

func TestRunnerRefreshBypassesCache(t *testing.T) {
	r := newTestRunner(t)
	rec := mustParse(t, sampleRecipe)
	opts := Options{Recipe: rec}

	if _, err := r.Execute(context.Background(), opts); err != nil {
		t.Fatal(err)
	}

	opts.Refresh = true
	res, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.GenerateHit || res.CacheInfo.RenderHit {
		t.Error("refresh run should not report cache hits")
	}
}

func TestRunnerRejectsBadOptions(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	defer r.Close()

	if _, err := r.Execute(context.Background(), Options{}); err == nil {
		t.Error("expected error for missing recipe")
	}

	rec := mustParse(t, "[root]\nwidth = 8\nheight = 6")
	if _, err := r.Execute(context.Background(), Options{Recipe: rec, Formats: []string{"gif"}}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestRunnerNilCollaboratorDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	defer r.Close()
	if r.Cache == nil || r.Keyer == nil || r.Logger == nil {
		t.Error("NewRunner should fill nil collaborators")
	}
}
