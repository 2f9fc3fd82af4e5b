// Package world owns agents, food, water and obstacles, and the spatial
// indexes every per-tick system queries.
package world

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/biome/components"
	"github.com/pthm-cable/biome/config"
	"github.com/pthm-cable/biome/genetics"
)

// Agent bundles pointers to one agent's components. Pointers stay valid
// until the next structural change (spawn or cleanup).
type Agent struct {
	Entity ecs.Entity
	Pos    *components.Position
	Vel    *components.Velocity
	Vitals *components.Vitals
	Her    *components.Heredity
	Drives *components.Drives
	Health *components.Health
	Life   *components.Lifetime
}

// AgentSpec describes a new agent.
type AgentSpec struct {
	X, Y       float64
	Heading    float64
	Genome     *genetics.Genome
	Species    int
	Generation int
	Energy     float64
	Hydration  float64
	Similarity float64
	Resistance map[string]float64
	BirthTick  int32
}

// MatingEvent is a display-only marker left where a mating succeeded.
type MatingEvent struct {
	X, Y      float64
	Remaining float64 // seconds left on screen
}

// CleanupReport summarizes what Cleanup removed.
type CleanupReport struct {
	Deaths      map[components.DeathCause]int
	RemovedIDs  []uint32
	FoodRemoved int
}

// World holds the ECS store and derived spatial state for one run.
type World struct {
	cfg *config.Config
	rng *rand.Rand

	ecs *ecs.World

	agentMapper *ecs.Map7[
		components.Position,
		components.Velocity,
		components.Vitals,
		components.Heredity,
		components.Drives,
		components.Health,
		components.Lifetime,
	]
	agentFilter *ecs.Filter7[
		components.Position,
		components.Velocity,
		components.Vitals,
		components.Heredity,
		components.Drives,
		components.Health,
		components.Lifetime,
	]
	foodMapper *ecs.Map2[components.Position, components.Food]
	foodFilter *ecs.Filter2[components.Position, components.Food]

	vitalsMap *ecs.Map[components.Vitals]
	foodMap   *ecs.Map[components.Food]
	posMap    *ecs.Map[components.Position]

	agentList []ecs.Entity
	foodList  []ecs.Entity

	agentGrid *SpatialGrid
	foodGrid  *SpatialGrid

	Water        []WaterSource
	Obstacles    []Obstacle
	Clusters     *FoodClusters
	MatingEvents []MatingEvent

	width, height float64
	nextID        uint32
}

// New builds an empty world: scenery and food clusters are placed, but no
// agents or food are spawned.
func New(cfg *config.Config, rng *rand.Rand) *World {
	store := ecs.NewWorld()

	w := &World{
		cfg: cfg,
		rng: rng,
		ecs: store,
		agentMapper: ecs.NewMap7[
			components.Position,
			components.Velocity,
			components.Vitals,
			components.Heredity,
			components.Drives,
			components.Health,
			components.Lifetime,
		](store),
		agentFilter: ecs.NewFilter7[
			components.Position,
			components.Velocity,
			components.Vitals,
			components.Heredity,
			components.Drives,
			components.Health,
			components.Lifetime,
		](store),
		foodMapper: ecs.NewMap2[components.Position, components.Food](store),
		foodFilter: ecs.NewFilter2[components.Position, components.Food](store),
		vitalsMap:  ecs.NewMap[components.Vitals](store),
		foodMap:    ecs.NewMap[components.Food](store),
		posMap:     ecs.NewMap[components.Position](store),
		width:      cfg.World.Width,
		height:     cfg.World.Height,
		nextID:     1,
	}

	w.agentGrid = NewSpatialGrid(w.width, w.height, cfg.World.AgentCellSize, w.locate, w.agentAlive)
	w.agentGrid.SetSlack(w.agentGrid.Slack() + MaxStep(cfg))
	w.foodGrid = NewSpatialGrid(w.width, w.height, cfg.World.FoodCellSize, w.locate, w.foodAlive)

	for _, wc := range cfg.World.Water {
		w.Water = append(w.Water, WaterSource{X: wc.X, Y: wc.Y, Radius: wc.Radius})
	}
	if len(w.Water) == 0 {
		for i := 0; i < cfg.World.GeneratedWater; i++ {
			r := cfg.World.WaterRadiusMin + rng.Float64()*(cfg.World.WaterRadiusMax-cfg.World.WaterRadiusMin)
			w.Water = append(w.Water, WaterSource{X: rng.Float64() * w.width, Y: rng.Float64() * w.height, Radius: r})
		}
	}
	for _, oc := range cfg.World.Obstacles {
		w.Obstacles = append(w.Obstacles, NewObstacle(oc))
	}
	w.Clusters = newFoodClusters(w, rng.Int63())

	return w
}

// Config returns the settings the world was built with.
func (w *World) Config() *config.Config { return w.cfg }

// Rand returns the run's random source.
func (w *World) Rand() *rand.Rand { return w.rng }

// Size returns the world dimensions.
func (w *World) Size() (float64, float64) { return w.width, w.height }

// Delta returns the toroidal shortest delta between two points.
func (w *World) Delta(x1, y1, x2, y2 float64) (float64, float64) {
	return ToroidalDelta(x1, y1, x2, y2, w.width, w.height)
}

// WrapPos maps a point into world bounds.
func (w *World) WrapPos(x, y float64) (float64, float64) {
	return Wrap(x, w.width), Wrap(y, w.height)
}

// SpawnAgent creates an agent and returns its entity. The phenotype is
// computed from the genome here.
func (w *World) SpawnAgent(spec AgentSpec) ecs.Entity {
	x, y := w.WrapPos(spec.X, spec.Y)
	res := make(map[string]float64, len(w.cfg.Disease.Names))
	for _, d := range w.cfg.Disease.Names {
		res[d] = clamp01(spec.Resistance[d])
	}

	pos := components.Position{X: x, Y: y}
	vel := components.Velocity{}
	vitals := components.Vitals{
		Energy:    math.Min(spec.Energy, w.cfg.Agent.MaxEnergy),
		Hydration: math.Min(spec.Hydration, w.cfg.Agent.MaxHydration),
		Alive:     true,
	}
	her := components.Heredity{
		ID:         w.nextID,
		Genome:     spec.Genome,
		Phenotype:  genetics.ComputePhenotype(spec.Genome, w.cfg.Traits),
		Species:    spec.Species,
		Sex:        spec.Genome.Sex,
		Generation: spec.Generation,
		Similarity: spec.Similarity,
	}
	drives := components.Drives{Heading: spec.Heading, Mods: components.NeutralModifiers()}
	health := components.Health{Resistance: res}
	life := components.Lifetime{BirthTick: spec.BirthTick}
	w.nextID++

	e := w.agentMapper.NewEntity(&pos, &vel, &vitals, &her, &drives, &health, &life)
	w.agentList = append(w.agentList, e)
	return e
}

// SpawnFoodAt places one food item.
func (w *World) SpawnFoodAt(x, y, energy float64) ecs.Entity {
	x, y = w.WrapPos(x, y)
	pos := components.Position{X: x, Y: y}
	food := components.Food{Energy: energy, Alive: true}
	e := w.foodMapper.NewEntity(&pos, &food)
	w.foodList = append(w.foodList, e)
	return e
}

// Agent returns component pointers for an agent entity.
func (w *World) Agent(e ecs.Entity) Agent {
	pos, vel, vitals, her, drives, health, life := w.agentMapper.Get(e)
	return Agent{Entity: e, Pos: pos, Vel: vel, Vitals: vitals, Her: her, Drives: drives, Health: health, Life: life}
}

// Food returns the position and state of a food entity.
func (w *World) Food(e ecs.Entity) (*components.Position, *components.Food) {
	return w.foodMapper.Get(e)
}

// Position returns any entity's position.
func (w *World) Position(e ecs.Entity) *components.Position {
	return w.posMap.Get(e)
}

// AgentList returns the agents present this tick in spawn order, including
// dead ones awaiting cleanup. The slice must not be modified.
func (w *World) AgentList() []ecs.Entity { return w.agentList }

// FoodList returns food entities present this tick, including eaten ones
// awaiting cleanup.
func (w *World) FoodList() []ecs.Entity { return w.foodList }

// AgentCount returns the number of living agents.
func (w *World) AgentCount() int {
	n := 0
	for _, e := range w.agentList {
		if w.agentAlive(e) {
			n++
		}
	}
	return n
}

// FoodCount returns the number of uneaten food items.
func (w *World) FoodCount() int {
	n := 0
	for _, e := range w.foodList {
		if w.foodAlive(e) {
			n++
		}
	}
	return n
}

// ForEachAgent runs fn over every agent via an ECS query. fn must not
// spawn or remove entities.
func (w *World) ForEachAgent(fn func(a Agent)) {
	query := w.agentFilter.Query()
	for query.Next() {
		pos, vel, vitals, her, drives, health, life := query.Get()
		fn(Agent{Entity: query.Entity(), Pos: pos, Vel: vel, Vitals: vitals, Her: her, Drives: drives, Health: health, Life: life})
	}
}

func (w *World) locate(e ecs.Entity) (float64, float64) {
	pos := w.posMap.Get(e)
	return pos.X, pos.Y
}

// MaxStep returns the farthest an agent can move in one tick.
func MaxStep(cfg *config.Config) float64 {
	return cfg.Agent.MaxSpeed * cfg.Trait("speed").Hi * cfg.World.DT
}

func (w *World) agentAlive(e ecs.Entity) bool {
	if !w.ecs.Alive(e) || !w.vitalsMap.Has(e) {
		return false
	}
	return w.vitalsMap.Get(e).Alive
}

func (w *World) foodAlive(e ecs.Entity) bool {
	if !w.ecs.Alive(e) || !w.foodMap.Has(e) {
		return false
	}
	return w.foodMap.Get(e).Alive
}

// IsAlive reports whether e is a living agent.
func (w *World) IsAlive(e ecs.Entity) bool { return w.agentAlive(e) }

// RebuildGrids re-buckets living agents and uneaten food at their current
// positions. Queries until the next rebuild still measure live positions;
// agents moving up to one tick's step plus a cell between rebuilds are found.
func (w *World) RebuildGrids() {
	w.agentGrid.Clear()
	query := w.agentFilter.Query()
	for query.Next() {
		pos, _, vitals, _, _, _, _ := query.Get()
		if vitals.Alive {
			w.agentGrid.Insert(query.Entity(), pos.X, pos.Y)
		}
	}

	w.foodGrid.Clear()
	fq := w.foodFilter.Query()
	for fq.Next() {
		pos, food := fq.Get()
		if food.Alive {
			w.foodGrid.Insert(fq.Entity(), pos.X, pos.Y)
		}
	}
}

// QueryAgents returns living agents within r of (x, y), excluding exclude.
func (w *World) QueryAgents(dst []Neighbor, x, y, r float64, exclude ecs.Entity) []Neighbor {
	return w.agentGrid.QueryRadiusInto(dst, x, y, r, exclude)
}

// NearestAgent returns the closest living agent within r.
func (w *World) NearestAgent(x, y, r float64, exclude ecs.Entity) (Neighbor, bool) {
	return w.agentGrid.QueryNearest(x, y, r, exclude)
}

// QueryFood returns uneaten food within r of (x, y).
func (w *World) QueryFood(dst []Neighbor, x, y, r float64) []Neighbor {
	return w.foodGrid.QueryRadiusInto(dst, x, y, r, ecs.Entity{})
}

// NearestFood returns the closest uneaten food within r.
func (w *World) NearestFood(x, y, r float64) (Neighbor, bool) {
	return w.foodGrid.QueryNearest(x, y, r, ecs.Entity{})
}

// Cleanup removes dead agents, eaten food and dead obstacles.
func (w *World) Cleanup() CleanupReport {
	report := CleanupReport{Deaths: make(map[components.DeathCause]int)}

	// First pass: collect (no structural changes while iterating)
	var deadAgents []ecs.Entity
	kept := w.agentList[:0]
	for _, e := range w.agentList {
		if w.agentAlive(e) {
			kept = append(kept, e)
			continue
		}
		if w.ecs.Alive(e) {
			deadAgents = append(deadAgents, e)
		}
	}
	w.agentList = kept

	var eaten []ecs.Entity
	keptFood := w.foodList[:0]
	for _, e := range w.foodList {
		if w.foodAlive(e) {
			keptFood = append(keptFood, e)
			continue
		}
		if w.ecs.Alive(e) {
			eaten = append(eaten, e)
		}
	}
	w.foodList = keptFood

	// Second pass: remove
	for _, e := range deadAgents {
		a := w.Agent(e)
		report.Deaths[a.Vitals.Cause]++
		report.RemovedIDs = append(report.RemovedIDs, a.Her.ID)
		w.ecs.RemoveEntity(e)
	}
	for _, e := range eaten {
		w.ecs.RemoveEntity(e)
	}
	report.FoodRemoved = len(eaten)

	obstacles := w.Obstacles[:0]
	for _, o := range w.Obstacles {
		if o.Alive {
			obstacles = append(obstacles, o)
		}
	}
	w.Obstacles = obstacles

	return report
}

// RecordMating leaves a mating marker for display.
func (w *World) RecordMating(x, y float64) {
	w.MatingEvents = append(w.MatingEvents, MatingEvent{X: x, Y: y, Remaining: w.cfg.Reproduction.MatingEventDuration})
}

// AgeMatingEvents counts markers down and drops expired ones.
func (w *World) AgeMatingEvents(dt float64) {
	kept := w.MatingEvents[:0]
	for _, ev := range w.MatingEvents {
		ev.Remaining -= dt
		if ev.Remaining > 0 {
			kept = append(kept, ev)
		}
	}
	w.MatingEvents = kept
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
