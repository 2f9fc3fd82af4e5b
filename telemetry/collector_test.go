package telemetry

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/biome/components"
	"github.com/pthm-cable/biome/config"
	"github.com/pthm-cable/biome/genetics"
	"github.com/pthm-cable/biome/world"
)

func testWorld(t *testing.T) *world.World {
	t.Helper()
	cfg, err := config.Defaults()
	if err != nil {
		t.Fatal(err)
	}
	cfg.World.Water = nil
	cfg.World.Obstacles = nil
	return world.New(cfg, rand.New(rand.NewSource(11)))
}

func spawn(w *world.World, sex genetics.Sex, species, generation int) {
	cfg := w.Config()
	w.SpawnAgent(world.AgentSpec{
		X:          100,
		Y:          100,
		Genome:     genetics.NewRandomGenome(w.Rand(), sex, cfg.Traits),
		Species:    species,
		Generation: generation,
		Energy:     50,
		Hydration:  70,
	})
}

// ---------- Interval gating ----------

func TestStatsCollector_NeverMoreOftenThanInterval(t *testing.T) {
	w := testWorld(t)
	c := NewStatsCollector(config.TelemetryConfig{StatsInterval: 1, HistorySize: 600})

	dt := 1.0 / 60
	for tick := int32(1); tick <= 600; tick++ {
		c.Update(w, dt, tick)
	}

	h := c.History()
	if len(h) < 9 || len(h) > 10 {
		t.Fatalf("history length = %d after 10 s, want 9 or 10", len(h))
	}
	for i := 1; i < len(h); i++ {
		if gap := h[i].SimTime - h[i-1].SimTime; gap < 1-1e-9 {
			t.Errorf("snapshots %d and %d only %v s apart", i-1, i, gap)
		}
	}
}

func TestStatsCollector_HistoryCapEvictsOldest(t *testing.T) {
	w := testWorld(t)
	c := NewStatsCollector(config.TelemetryConfig{StatsInterval: 1, HistorySize: 600})

	for tick := int32(1); tick <= 650; tick++ {
		c.Update(w, 1, tick)
	}

	h := c.History()
	if len(h) != 600 {
		t.Fatalf("history length = %d, want 600", len(h))
	}
	if h[0].Tick != 51 || h[599].Tick != 650 {
		t.Errorf("history spans ticks %d..%d, want 51..650", h[0].Tick, h[599].Tick)
	}
	latest, ok := c.Latest()
	if !ok || latest.Tick != 650 {
		t.Errorf("latest = %d (ok=%v), want 650", latest.Tick, ok)
	}
}

func TestStatsCollector_LatestEmpty(t *testing.T) {
	c := NewStatsCollector(config.TelemetryConfig{StatsInterval: 1, HistorySize: 10})
	if _, ok := c.Latest(); ok {
		t.Error("empty collector reported a latest snapshot")
	}
	if len(c.History()) != 0 {
		t.Error("empty collector has history")
	}
}

// ---------- Aggregates ----------

func TestStatsCollector_CaptureCounts(t *testing.T) {
	w := testWorld(t)
	spawn(w, genetics.Male, 1, 0)
	spawn(w, genetics.Female, 1, 3)
	spawn(w, genetics.Female, 2, 5)
	spawn(w, genetics.Male, 2, 1)

	list := w.AgentList()
	w.Agent(list[0]).Drives.Attack = 0.9
	w.Agent(list[1]).Drives.Mate = 0.9
	w.Agent(list[2]).Health.Infect("fever", 5)
	w.Agent(list[3]).Vitals.Alive = false

	c := NewStatsCollector(config.TelemetryConfig{StatsInterval: 1, HistorySize: 10})
	s := c.Capture(w, 7)

	if s.Population != 3 || s.Males != 1 || s.Females != 2 {
		t.Errorf("population/males/females = %d/%d/%d, want 3/1/2", s.Population, s.Males, s.Females)
	}
	if s.SpeciesCount != 2 || s.SpeciesCounts[1] != 2 || s.SpeciesCounts[2] != 1 {
		t.Errorf("species counts = %v", s.SpeciesCounts)
	}
	if s.SpeciesBySex[1] != [2]int{1, 1} || s.SpeciesBySex[2] != [2]int{0, 1} {
		t.Errorf("species by sex = %v", s.SpeciesBySex)
	}
	if s.Attackers != 1 || s.Maters != 1 || s.Infected != 1 {
		t.Errorf("attackers/maters/infected = %d/%d/%d", s.Attackers, s.Maters, s.Infected)
	}
	if s.MaxGeneration != 5 {
		t.Errorf("max generation = %d, want 5", s.MaxGeneration)
	}
	if s.MeanEnergy != 50 || s.MeanHydration != 70 {
		t.Errorf("means = %v/%v", s.MeanEnergy, s.MeanHydration)
	}
	if len(s.TraitMeans) != len(w.Config().Derived.TraitNames) {
		t.Errorf("trait means = %d traits", len(s.TraitMeans))
	}
	if s.GeneticDiversity < 0 {
		t.Errorf("diversity = %v", s.GeneticDiversity)
	}
}

func TestStatsCollector_EventCountersResetPerSnapshot(t *testing.T) {
	w := testWorld(t)
	c := NewStatsCollector(config.TelemetryConfig{StatsInterval: 1, HistorySize: 10})

	c.RecordBirths(3)
	c.RecordKills(2)
	c.RecordCleanup(world.CleanupReport{Deaths: map[components.DeathCause]int{
		components.CauseStarvation: 1,
		components.CauseKilled:     2,
	}})

	s, ok := c.Update(w, 1, 1)
	if !ok {
		t.Fatal("no snapshot at interval")
	}
	if s.Births != 3 || s.Kills != 2 || s.Deaths != 3 {
		t.Errorf("births/kills/deaths = %d/%d/%d, want 3/2/3", s.Births, s.Kills, s.Deaths)
	}
	s, _ = c.Update(w, 1, 2)
	if s.Births != 0 || s.Kills != 0 || s.Deaths != 0 {
		t.Error("counters not reset after snapshot")
	}
}
