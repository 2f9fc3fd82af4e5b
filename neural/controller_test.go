package neural

import (
	"math"
	"math/rand"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/biome/config"
	"github.com/pthm-cable/biome/genetics"
	"github.com/pthm-cable/biome/world"
)

func testSetup(t *testing.T) (*config.Config, *world.World, *Controller) {
	t.Helper()
	cfg, err := config.Defaults()
	if err != nil {
		t.Fatal(err)
	}
	cfg.World.Width, cfg.World.Height = 400, 400
	cfg.World.Water = nil
	cfg.World.Obstacles = nil
	rng := rand.New(rand.NewSource(9))
	return cfg, world.New(cfg, rng), NewController(cfg, rng)
}

func spawnAt(w *world.World, x, y float64) ecs.Entity {
	cfg := w.Config()
	return w.SpawnAgent(world.AgentSpec{
		X: x, Y: y,
		Genome:    genetics.NewRandomGenome(w.Rand(), genetics.Female, cfg.Traits),
		Species:   1,
		Energy:    cfg.Agent.MaxEnergy,
		Hydration: cfg.Agent.MaxHydration,
	})
}

// ---------- Brains ----------

func TestController_AttachInheritRemove(t *testing.T) {
	_, w, c := testSetup(t)
	pe := spawnAt(w, 100, 100)
	ce := spawnAt(w, 110, 100)
	parent, child := w.Agent(pe), w.Agent(ce)

	pb := c.Attach(parent)
	cb := c.Inherit(child, parent.Her.ID)
	if c.Len() != 2 {
		t.Fatalf("brains = %d, want 2", c.Len())
	}
	if cb.Net == pb.Net {
		t.Error("child shares the parent's network")
	}
	if cb.Net.Hidden() != pb.Net.Hidden() {
		t.Error("child network has a different shape")
	}

	c.Remove([]uint32{parent.Her.ID})
	if c.Brain(parent.Her.ID) != nil || c.Brain(child.Her.ID) == nil {
		t.Error("Remove dropped the wrong brain")
	}
}

func TestController_InheritWithoutParentBrain(t *testing.T) {
	_, w, c := testSetup(t)
	child := w.Agent(spawnAt(w, 100, 100))
	if b := c.Inherit(child, 999); b == nil || c.Brain(child.Her.ID) != b {
		t.Error("orphan should get a fresh brain")
	}
}

func TestController_RebuildTracksPhenotype(t *testing.T) {
	_, w, c := testSetup(t)
	a := w.Agent(spawnAt(w, 100, 100))
	c.Attach(a)

	a.Her.Phenotype["aggression"] = 1
	c.Rebuild(a)
	if got := c.Brain(a.Her.ID).Bias[OutAttack]; got != 1 {
		t.Errorf("attack bias = %v, want 1", got)
	}
	if a.Drives.Mods.EffectiveAttack != 1.5 {
		t.Errorf("effective attack = %v, want 1.5", a.Drives.Mods.EffectiveAttack)
	}
}

// ---------- Movement ----------

func TestController_UpdateWritesDrivesAndMoves(t *testing.T) {
	cfg, w, c := testSetup(t)
	e := spawnAt(w, 200, 200)
	spawnAt(w, 230, 200)
	w.RebuildGrids()

	c.Update(w, cfg.World.DT)

	a := w.Agent(e)
	d := a.Drives
	for name, v := range map[string]float64{"effort": d.Effort, "attack": d.Attack, "avoid": d.Avoid, "mate": d.Mate} {
		if v < 0 || v > 1 {
			t.Errorf("%s = %v outside [0,1]", name, v)
		}
	}
	if math.Abs(d.TurnRate) > cfg.Agent.MaxTurnRate {
		t.Errorf("turn rate %v exceeds max", d.TurnRate)
	}
	speed := a.Vel.Speed()
	want := cfg.Agent.MaxSpeed * a.Her.Phenotype.Get("speed") * d.Effort
	if math.Abs(speed-want) > 1e-9 {
		t.Errorf("speed = %v, want %v", speed, want)
	}
	moved := math.Hypot(a.Pos.X-200, a.Pos.Y-200)
	if math.Abs(moved-speed*cfg.World.DT) > 1e-9 {
		t.Errorf("moved %v, want %v", moved, speed*cfg.World.DT)
	}
	if c.Brain(a.Her.ID) == nil {
		t.Error("Update should attach a brain on demand")
	}
}

func TestController_UpdateWrapsPosition(t *testing.T) {
	_, w, c := testSetup(t)
	a := w.Agent(spawnAt(w, 399.99, 0.01))
	c.Update(w, 1)
	if a.Pos.X < 0 || a.Pos.X >= 400 || a.Pos.Y < 0 || a.Pos.Y >= 400 {
		t.Errorf("position (%v, %v) left the world", a.Pos.X, a.Pos.Y)
	}
}

func TestController_RockBlocksMovement(t *testing.T) {
	cfg, _, _ := testSetup(t)
	cfg.World.Obstacles = []config.ObstacleConfig{{Kind: "rock", X: 0, Y: 0, W: 400, H: 400}}
	rng := rand.New(rand.NewSource(9))
	w := world.New(cfg, rng)
	c := NewController(cfg, rng)
	a := w.Agent(spawnAt(w, 200, 200))

	c.Update(w, 1)
	if a.Pos.X != 200 || a.Pos.Y != 200 || a.Vel.Speed() != 0 {
		t.Errorf("agent moved into rock: pos=(%v,%v) speed=%v", a.Pos.X, a.Pos.Y, a.Vel.Speed())
	}
}

func TestController_SkipsDead(t *testing.T) {
	_, w, c := testSetup(t)
	a := w.Agent(spawnAt(w, 100, 100))
	a.Vitals.Alive = false
	c.Update(w, 1)
	if a.Pos.X != 100 || c.Len() != 0 {
		t.Error("dead agent was moved or given a brain")
	}
}

// ---------- Modifiers ----------

func TestModifiers(t *testing.T) {
	cfg, w, _ := testSetup(t)
	a := w.Agent(spawnAt(w, 100, 100))
	a.Her.Phenotype["aggression"] = 0
	a.Her.Phenotype["energy_efficiency"] = 1.5
	a.Her.Phenotype["size"] = 2
	a.Her.Phenotype["fertility"] = 1

	m := Modifiers(cfg, a)
	if m.EffectiveAttack != 0.5 {
		t.Errorf("effective attack = %v, want 0.5", m.EffectiveAttack)
	}
	if m.EffectiveMetabolism != 0.5 {
		t.Errorf("metabolism = %v, want 0.5", m.EffectiveMetabolism)
	}
	if m.DamageReduction != 0.4 {
		t.Errorf("damage reduction = %v, want 0.4", m.DamageReduction)
	}
	if m.ReproductionModifier != 1 {
		t.Errorf("reproduction modifier = %v, want 1 for a young fertile agent", m.ReproductionModifier)
	}
}

func TestSenescence(t *testing.T) {
	cfg, w, _ := testSetup(t)
	cfg.Agent.MaxAge = 100
	cfg.Reproduction.SenescenceStart = 0.5
	cfg.Reproduction.SenescenceFloor = 0.2
	a := w.Agent(spawnAt(w, 100, 100))
	a.Her.Phenotype["max_age"] = 200 // global cap of 100 applies

	tests := []struct {
		age, want float64
	}{
		{0, 1},
		{50, 1},
		{75, 0.6},
		{100, 0.2},
		{150, 0.2},
	}
	for _, tt := range tests {
		a.Vitals.Age = tt.age
		if got := Senescence(cfg, a); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Senescence(age=%v) = %v, want %v", tt.age, got, tt.want)
		}
	}
}
