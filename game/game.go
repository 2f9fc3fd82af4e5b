// Package game wires the world, the behaviour controller, the ecological
// systems, the event manager and telemetry into a fixed-order tick loop.
package game

import (
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/biome/config"
	"github.com/pthm-cable/biome/events"
	"github.com/pthm-cable/biome/neural"
	"github.com/pthm-cable/biome/systems"
	"github.com/pthm-cable/biome/telemetry"
	"github.com/pthm-cable/biome/world"
)

const (
	bookmarkHistory = 10
	hallOfFameSize  = 20
)

// Options configures a game instance.
type Options struct {
	// Config to run with; nil uses the global config.
	Config *config.Config
	Seed   int64
	// Speed is the number of ticks per Update call (minimum 1).
	Speed     int
	LogStats  bool
	OutputDir string

	// StatsCallback, if set, receives every recorded snapshot.
	StatsCallback func(telemetry.Snapshot)
}

// Game holds the complete simulation state.
type Game struct {
	cfg     *config.Config
	rng     *rand.Rand
	rngSeed int64

	world      *world.World
	controller *neural.Controller

	combat  *systems.CombatSystem
	somatic *systems.SomaticSystem
	disease *systems.DiseaseSystem
	repro   *systems.ReproductionSystem
	events  *events.Manager

	stats         *telemetry.StatsCollector
	bookmarks     *telemetry.BookmarkDetector
	hallOfFame    *telemetry.HallOfFame
	perf          *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	statsCallback func(telemetry.Snapshot)
	logStats      bool
	sinceLog      float64

	// State
	tick    int32
	simTime float64
	paused  bool
	speed   int
}

// NewGameWithOptions builds a world, spawns the founders and initial food,
// and opens the output directory when one is given. Output failures are
// logged and disable output rather than aborting the run.
func NewGameWithOptions(opts Options) *Game {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	speed := opts.Speed
	if speed < 1 {
		speed = 1
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	g := &Game{
		cfg:           cfg,
		rng:           rng,
		rngSeed:       opts.Seed,
		world:         world.New(cfg, rng),
		controller:    neural.NewController(cfg, rng),
		combat:        systems.NewCombatSystem(),
		disease:       systems.NewDiseaseSystem(),
		repro:         systems.NewReproductionSystem(cfg, cfg.World.FounderSpecies+1),
		events:        events.NewManager(cfg.Events.LogSize),
		stats:         telemetry.NewStatsCollector(cfg.Telemetry),
		bookmarks:     telemetry.NewBookmarkDetector(bookmarkHistory),
		hallOfFame:    telemetry.NewHallOfFame(hallOfFameSize),
		perf:          telemetry.NewPerfCollector(120),
		statsCallback: opts.StatsCallback,
		logStats:      opts.LogStats,
		speed:         speed,
	}
	g.somatic = &systems.SomaticSystem{OnGenomeChanged: g.controller.Rebuild}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
	} else if om != nil {
		if err := om.WriteConfig(cfg); err != nil {
			slog.Error("failed to write config", "error", err)
		}
		g.outputManager = om
	}

	g.spawnInitialPopulation()
	g.world.SeedFood(cfg.Food.Initial)
	return g
}

// Update runs Speed ticks unless paused.
func (g *Game) Update() {
	if g.paused {
		return
	}
	for i := 0; i < g.speed; i++ {
		g.simulationStep()
	}
}

// Step runs exactly one tick regardless of the pause flag.
func (g *Game) Step() {
	g.simulationStep()
}

// Unload writes the hall of fame, then flushes and closes output files.
func (g *Game) Unload() {
	if err := g.outputManager.WriteHallOfFame(g.hallOfFame); err != nil {
		slog.Error("failed to write hall of fame", "error", err)
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
		return
	}
	if dir := g.outputManager.Dir(); dir != "" {
		slog.Info("output written", "dir", dir)
	}
}

// Tick returns the number of completed ticks.
func (g *Game) Tick() int32 { return g.tick }

// SimTime returns the simulated seconds elapsed.
func (g *Game) SimTime() float64 { return g.simTime }

// Seed returns the RNG seed the run was started with.
func (g *Game) Seed() int64 { return g.rngSeed }

// SetPaused sets the pause flag.
func (g *Game) SetPaused(p bool) { g.paused = p }

// Paused reports whether Update is gated.
func (g *Game) Paused() bool { return g.paused }

// SetSpeed sets the ticks-per-Update multiplier (minimum 1).
func (g *Game) SetSpeed(n int) {
	if n < 1 {
		n = 1
	}
	g.speed = n
}

// World exposes the simulated world.
func (g *Game) World() *world.World { return g.world }

// Controller exposes the behaviour controller.
func (g *Game) Controller() *neural.Controller { return g.controller }

// Stats exposes the stats collector.
func (g *Game) Stats() *telemetry.StatsCollector { return g.stats }

// HallOfFame exposes the fittest dead agents per species.
func (g *Game) HallOfFame() *telemetry.HallOfFame { return g.hallOfFame }

// Events exposes the event manager.
func (g *Game) Events() *events.Manager { return g.events }

// Population returns the number of living agents.
func (g *Game) Population() int { return g.world.AgentCount() }
