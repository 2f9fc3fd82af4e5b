package neural

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/biome/components"
	"github.com/pthm-cable/biome/config"
	"github.com/pthm-cable/biome/genetics"
	"github.com/pthm-cable/biome/systems"
	"github.com/pthm-cable/biome/world"
)

// Brain is an agent's network plus output biases derived from its phenotype.
type Brain struct {
	Net  *FFNN
	Bias [NumOutputs]float64
}

// Controller runs the movement phase: it senses, evaluates each agent's
// brain, writes drives and modifiers, and moves agents across the torus.
// Brains are keyed by agent ID.
type Controller struct {
	cfg    *config.Config
	rng    *rand.Rand
	brains map[uint32]*Brain
	inputs [NumInputs]float64
}

// NewController creates a controller drawing randomness from rng.
func NewController(cfg *config.Config, rng *rand.Rand) *Controller {
	return &Controller{
		cfg:    cfg,
		rng:    rng,
		brains: make(map[uint32]*Brain),
	}
}

// Brain returns an agent's brain, or nil.
func (c *Controller) Brain(id uint32) *Brain { return c.brains[id] }

// Len returns the number of brains held.
func (c *Controller) Len() int { return len(c.brains) }

// Attach gives an agent a freshly initialized brain.
func (c *Controller) Attach(a world.Agent) *Brain {
	b := &Brain{Net: NewFFNN(c.rng, c.cfg.Controller.Hidden)}
	c.brains[a.Her.ID] = b
	c.Rebuild(a)
	return b
}

// Inherit gives a newborn a sparsely mutated copy of its parent's brain.
// A parent without a brain yields a fresh one.
func (c *Controller) Inherit(child world.Agent, parentID uint32) *Brain {
	parent := c.brains[parentID]
	if parent == nil {
		return c.Attach(child)
	}
	cc := c.cfg.Controller
	net := parent.Net.Clone()
	net.MutateSparse(c.rng, cc.MutationRate, cc.MutationSigma, cc.BigRate, cc.BigSigma)
	b := &Brain{Net: net}
	c.brains[child.Her.ID] = b
	c.Rebuild(child)
	return b
}

// Rebuild re-derives phenotype-dependent state after a genome change.
func (c *Controller) Rebuild(a world.Agent) {
	if b := c.brains[a.Her.ID]; b != nil {
		b.Bias = PhenotypeBias(a.Her.Phenotype)
	}
	a.Drives.Mods = Modifiers(c.cfg, a)
}

// Remove drops the brains of removed agents.
func (c *Controller) Remove(ids []uint32) {
	for _, id := range ids {
		delete(c.brains, id)
	}
}

// Update runs the movement phase for every living agent.
func (c *Controller) Update(w *world.World, dt float64) {
	cfg := c.cfg
	for _, e := range w.AgentList() {
		a := w.Agent(e)
		if !a.Vitals.Alive {
			continue
		}
		b := c.brains[a.Her.ID]
		if b == nil {
			b = c.Attach(a)
		}

		s := c.sense(w, a)
		s.ToInputs(&c.inputs)
		out := DecodeOutputs(b.Net.Forward(&c.inputs, &b.Bias))

		d := a.Drives
		d.Attack = out.Attack
		d.Avoid = out.Avoid
		d.Mate = out.Mate
		d.Effort = out.Effort
		d.TurnRate = out.Turn * cfg.Agent.MaxTurnRate
		d.Heading = math.Mod(d.Heading+d.TurnRate*dt, 2*math.Pi)
		d.Mods = Modifiers(cfg, a)

		speed := cfg.Agent.MaxSpeed * a.Her.Phenotype.Get("speed") * out.Effort
		vx, vy := math.Cos(d.Heading)*speed, math.Sin(d.Heading)*speed
		nx, ny := w.WrapPos(a.Pos.X+vx*dt, a.Pos.Y+vy*dt)
		if w.InRock(nx, ny) {
			a.Vel.X, a.Vel.Y = 0, 0
			continue
		}
		a.Vel.X, a.Vel.Y = vx, vy
		a.Pos.X, a.Pos.Y = nx, ny
	}
}

// sense gathers an agent's perception from the grids built this tick.
func (c *Controller) sense(w *world.World, a world.Agent) Sensors {
	cfg := c.cfg
	vision := math.Max(1, a.Her.Phenotype.Get("vision"))
	s := Sensors{
		EnergyNorm:    a.Vitals.Energy / cfg.Agent.MaxEnergy,
		HydrationNorm: a.Vitals.Hydration / cfg.Agent.MaxHydration,
		InWater:       a.Vitals.InWater,
		Infected:      a.Health.Infected,
	}
	heading := a.Drives.Heading

	if n, ok := w.NearestFood(a.Pos.X, a.Pos.Y, vision); ok {
		s.FoodFwd, s.FoodSide = toLocal(n.DX, n.DY, heading, vision)
	}
	if n, ok := w.NearestAgent(a.Pos.X, a.Pos.Y, vision, a.Entity); ok {
		s.AgentFwd, s.AgentSide = toLocal(n.DX, n.DY, heading, vision)
		other := w.Agent(n.E)
		r := other.Her.Phenotype.Get("size") / math.Max(0.1, a.Her.Phenotype.Get("size"))
		s.RelativeSize = r / (1 + r)
	}
	return s
}

// PhenotypeBias maps traits onto output biases: aggressive agents lean
// toward attack, timid ones toward avoidance, fertile ones toward mating
// and fast ones toward effort.
func PhenotypeBias(p genetics.Phenotype) [NumOutputs]float64 {
	var bias [NumOutputs]float64
	aggression := p.Get("aggression")
	bias[OutAttack] = (aggression - 0.5) * 2
	bias[OutAvoid] = (0.5 - aggression) * 2
	bias[OutEffort] = (p.Get("speed") - 1) * 0.5
	bias[OutMate] = p.Get("fertility") - 0.5
	return bias
}

// Modifiers derives the per-tick multipliers systems read from an agent's
// phenotype and age.
func Modifiers(cfg *config.Config, a world.Agent) components.Modifiers {
	p := a.Her.Phenotype
	return components.Modifiers{
		EffectiveAttack:      0.5 + p.Get("aggression"),
		EffectiveMetabolism:  clampf(2-p.Get("energy_efficiency"), 0.25, 2),
		DamageReduction:      clampf((p.Get("size")-1)*0.4, 0, 0.5),
		ReproductionModifier: (0.5 + 0.5*clampf(p.Get("fertility"), 0, 1)) * Senescence(cfg, a),
	}
}

// Senescence is 1 until SenescenceStart of the effective lifespan, then
// falls linearly to SenescenceFloor at the end of life.
func Senescence(cfg *config.Config, a world.Agent) float64 {
	rc := cfg.Reproduction
	lifespan := systems.EffectiveMaxAge(cfg.Agent.MaxAge, a.Her.Phenotype.Get("max_age"))
	start := rc.SenescenceStart * lifespan
	if lifespan <= 0 || a.Vitals.Age <= start {
		return 1
	}
	frac := clampf((a.Vitals.Age-start)/(lifespan-start), 0, 1)
	return 1 - frac*(1-rc.SenescenceFloor)
}
