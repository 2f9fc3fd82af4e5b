package telemetry

import "testing"

func hasBookmark(bms []Bookmark, typ BookmarkType) bool {
	for _, bm := range bms {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_KillSurge(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(Snapshot{Tick: int32(i * 60), Population: 50, SpeciesCount: 2, Kills: 2})
	}

	bms := bd.Check(Snapshot{Tick: 300, Population: 50, SpeciesCount: 2, Kills: 8})
	if !hasBookmark(bms, BookmarkKillSurge) {
		t.Error("expected kill_surge bookmark")
	}
}

func TestBookmarkDetector_SpeciesRadiation(t *testing.T) {
	bd := NewBookmarkDetector(10)
	for i := 0; i < 4; i++ {
		bd.Check(Snapshot{Tick: int32(i * 60), Population: 50, SpeciesCount: 2})
	}
	if bms := bd.Check(Snapshot{Tick: 240, Population: 50, SpeciesCount: 3}); hasBookmark(bms, BookmarkSpeciesRadiation) {
		t.Error("3 species should not count as radiation")
	}
	if bms := bd.Check(Snapshot{Tick: 300, Population: 50, SpeciesCount: 6}); !hasBookmark(bms, BookmarkSpeciesRadiation) {
		t.Error("expected species_radiation bookmark")
	}
}

func TestBookmarkDetector_PopulationCrash(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(Snapshot{Tick: int32(i * 60), Population: 100, SpeciesCount: 2})
	}

	bms := bd.Check(Snapshot{Tick: 300, Population: 50, SpeciesCount: 2})
	if !hasBookmark(bms, BookmarkPopulationCrash) {
		t.Fatal("expected population_crash bookmark")
	}

	// The peak resets after a crash.
	bms = bd.Check(Snapshot{Tick: 360, Population: 48, SpeciesCount: 2})
	if hasBookmark(bms, BookmarkPopulationCrash) {
		t.Error("crash fired twice for the same drop")
	}
}

func TestBookmarkDetector_PopulationRecovery(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 3; i++ {
		bd.Check(Snapshot{Tick: int32(i * 60), Population: 3, SpeciesCount: 1})
	}

	bms := bd.Check(Snapshot{Tick: 240, Population: 12, SpeciesCount: 1})
	if !hasBookmark(bms, BookmarkPopulationRecovery) {
		t.Error("expected population_recovery bookmark")
	}
}

func TestBookmarkDetector_StableEcosystemFiresOnce(t *testing.T) {
	bd := NewBookmarkDetector(10)

	fired := 0
	for i := 0; i < 20; i++ {
		bms := bd.Check(Snapshot{Tick: int32(i * 60), Population: 100, SpeciesCount: 3})
		if hasBookmark(bms, BookmarkStableEcosystem) {
			fired++
			if i != 8 {
				t.Errorf("fired at snapshot %d, want 8", i)
			}
		}
	}
	if fired != 1 {
		t.Errorf("fired %d times, want 1", fired)
	}
}

func TestBookmarkDetector_UnstableResets(t *testing.T) {
	bd := NewBookmarkDetector(10)
	pops := []int{100, 40, 100, 40, 100, 40, 100, 40, 100, 40, 100}
	for i, p := range pops {
		bms := bd.Check(Snapshot{Tick: int32(i * 60), Population: p, SpeciesCount: 3})
		if hasBookmark(bms, BookmarkStableEcosystem) {
			t.Fatalf("oscillating population flagged stable at %d", i)
		}
	}
}
