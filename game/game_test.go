package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/biome/config"
	"github.com/pthm-cable/biome/genetics"
	"github.com/pthm-cable/biome/telemetry"
	"github.com/pthm-cable/biome/world"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Defaults()
	if err != nil {
		t.Fatal(err)
	}
	cfg.World.Width = 400
	cfg.World.Height = 400
	cfg.World.InitialAgents = 20
	cfg.World.FounderSpecies = 3
	cfg.World.Obstacles = nil
	cfg.World.Water = []config.WaterConfig{{X: 200, Y: 200, Radius: 40}}
	cfg.Food.Initial = 40
	return cfg
}

func newTestGame(t *testing.T, seed int64) *Game {
	t.Helper()
	g := NewGameWithOptions(Options{Config: testConfig(t), Seed: seed})
	t.Cleanup(g.Unload)
	return g
}

// ---------- Setup ----------

func TestNewGame_SpawnsFounders(t *testing.T) {
	g := newTestGame(t, 1)

	if got := g.Population(); got != 20 {
		t.Fatalf("Population = %d, want 20", got)
	}
	if got := g.Controller().Len(); got != 20 {
		t.Errorf("brains = %d, want 20", got)
	}
	if got := g.World().FoodCount(); got != 40 {
		t.Errorf("food = %d, want 40", got)
	}

	species := map[int]int{}
	sexes := map[genetics.Sex]int{}
	g.World().ForEachAgent(func(a world.Agent) {
		species[a.Her.Species]++
		sexes[a.Her.Sex]++
	})
	for sp := 1; sp <= 3; sp++ {
		if species[sp] == 0 {
			t.Errorf("founder species %d missing", sp)
		}
	}
	if len(species) != 3 {
		t.Errorf("species ids = %v, want exactly 1..3", species)
	}
	if sexes[genetics.Male] != 10 || sexes[genetics.Female] != 10 {
		t.Errorf("sexes = %v, want 10/10", sexes)
	}
}

func TestNewGame_SpeedFloor(t *testing.T) {
	g := NewGameWithOptions(Options{Config: testConfig(t), Seed: 1, Speed: 0})
	defer g.Unload()
	g.Update()
	if g.Tick() != 1 {
		t.Errorf("Tick = %d, want 1", g.Tick())
	}
}

// ---------- Tick gating ----------

func TestUpdate_PausedDoesNotAdvance(t *testing.T) {
	g := newTestGame(t, 2)
	g.SetPaused(true)
	g.Update()
	if g.Tick() != 0 || g.SimTime() != 0 {
		t.Fatalf("paused Update advanced to tick %d", g.Tick())
	}

	g.Step()
	if g.Tick() != 1 {
		t.Errorf("Step while paused: Tick = %d, want 1", g.Tick())
	}

	g.SetPaused(false)
	g.Update()
	if g.Tick() != 2 {
		t.Errorf("Tick = %d, want 2", g.Tick())
	}
}

func TestUpdate_SpeedMultiplier(t *testing.T) {
	g := newTestGame(t, 3)
	g.SetSpeed(4)
	g.Update()
	if g.Tick() != 4 {
		t.Errorf("Tick = %d, want 4", g.Tick())
	}
	g.SetSpeed(-2)
	g.Update()
	if g.Tick() != 5 {
		t.Errorf("Tick = %d, want 5", g.Tick())
	}
	want := 5 * g.cfg.World.DT
	if d := g.SimTime() - want; d > 1e-9 || d < -1e-9 {
		t.Errorf("SimTime = %v, want %v", g.SimTime(), want)
	}
}

// ---------- Determinism ----------

func TestStep_SameSeedSameRun(t *testing.T) {
	a := newTestGame(t, 7)
	b := newTestGame(t, 7)
	for i := 0; i < 300; i++ {
		a.Step()
		b.Step()
	}

	if a.Population() != b.Population() || a.World().FoodCount() != b.World().FoodCount() {
		t.Fatalf("diverged: pop %d/%d food %d/%d",
			a.Population(), b.Population(), a.World().FoodCount(), b.World().FoodCount())
	}
	la, lb := a.World().AgentList(), b.World().AgentList()
	if len(la) != len(lb) {
		t.Fatalf("agent lists differ: %d vs %d", len(la), len(lb))
	}
	for i := range la {
		pa, pb := a.World().Agent(la[i]), b.World().Agent(lb[i])
		if pa.Pos.X != pb.Pos.X || pa.Pos.Y != pb.Pos.Y || pa.Vitals.Energy != pb.Vitals.Energy {
			t.Fatalf("agent %d diverged", i)
		}
	}
}

// ---------- Bookkeeping ----------

func TestStep_BrainsTrackPopulation(t *testing.T) {
	cfg := testConfig(t)
	cfg.Reproduction.MaturityAge = 0
	cfg.Reproduction.Cooldown = 1
	g := NewGameWithOptions(Options{Config: cfg, Seed: 11})
	defer g.Unload()

	for i := 0; i < 600; i++ {
		g.Step()
		if n := g.Controller().Len(); n != len(g.World().AgentList()) {
			t.Fatalf("tick %d: %d brains for %d agents", g.Tick(), n, len(g.World().AgentList()))
		}
	}
	for _, e := range g.World().AgentList() {
		a := g.World().Agent(e)
		if !a.Vitals.Alive {
			t.Fatalf("dead agent %d survived cleanup", a.Her.ID)
		}
		if g.Controller().Brain(a.Her.ID) == nil {
			t.Fatalf("agent %d has no brain", a.Her.ID)
		}
	}
}

func TestStep_SnapshotsReachCallbackAndHistory(t *testing.T) {
	var snaps []telemetry.Snapshot
	g := NewGameWithOptions(Options{
		Config:        testConfig(t),
		Seed:          5,
		StatsCallback: func(s telemetry.Snapshot) { snaps = append(snaps, s) },
	})
	defer g.Unload()

	for i := 0; i < 200; i++ {
		g.Step()
	}
	if len(snaps) < 2 {
		t.Fatalf("got %d snapshots in 200 ticks, want at least 2", len(snaps))
	}
	if got := len(g.Stats().History()); got != len(snaps) {
		t.Errorf("history = %d, callback saw %d", got, len(snaps))
	}
	for i := 1; i < len(snaps); i++ {
		if snaps[i].Tick <= snaps[i-1].Tick {
			t.Errorf("snapshot ticks not increasing: %d then %d", snaps[i-1].Tick, snaps[i].Tick)
		}
	}
}

func TestOutput_WritesFiles(t *testing.T) {
	dir := t.TempDir()
	g := NewGameWithOptions(Options{Config: testConfig(t), Seed: 9, OutputDir: dir})
	for i := 0; i < 130; i++ {
		g.Step()
	}
	g.Unload()

	for _, name := range []string{"config.yaml", "stats.csv", "perf.csv", "events.csv", "bookmarks.csv", "hall_of_fame.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, "stats.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("stats.csv is empty")
	}
}
