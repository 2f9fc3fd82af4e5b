package game

import (
	"github.com/pthm-cable/biome/systems"
	"github.com/pthm-cable/biome/telemetry"
)

// simulationStep runs one tick. The order is load-bearing: combat and
// energy read the modifiers movement writes, reproduction sees this tick's
// energy, and cleanup runs after every system that can kill.
func (g *Game) simulationStep() {
	dt := g.cfg.World.DT
	w := g.world
	g.perf.StartTick()

	g.perf.StartPhase(telemetry.PhaseGrids)
	w.RebuildGrids()

	g.perf.StartPhase(telemetry.PhaseMovement)
	g.controller.Update(w, dt)

	g.perf.StartPhase(telemetry.PhaseCombat)
	g.stats.RecordKills(g.combat.Update(w, dt))

	g.perf.StartPhase(telemetry.PhaseFeeding)
	systems.UpdateFeeding(w)

	g.perf.StartPhase(telemetry.PhaseHydration)
	systems.UpdateHydration(w, dt)

	g.perf.StartPhase(telemetry.PhaseEnergy)
	systems.UpdateEnergy(w, dt)

	g.perf.StartPhase(telemetry.PhaseReproduction)
	births := g.repro.Update(w, g.tick)
	g.attachBrains(births)
	g.stats.RecordBirths(len(births))

	g.perf.StartPhase(telemetry.PhaseAging)
	systems.UpdateAging(w, dt)

	g.perf.StartPhase(telemetry.PhaseSomatic)
	g.somatic.Update(w, dt)

	g.perf.StartPhase(telemetry.PhaseInfection)
	systems.UpdateInfections(w, dt)

	g.perf.StartPhase(telemetry.PhaseExposure)
	systems.UpdateWaterExposure(w, dt)

	g.perf.StartPhase(telemetry.PhaseDisease)
	g.disease.Update(w)

	g.perf.StartPhase(telemetry.PhaseEvents)
	fired := g.events.Update(w, dt, g.tick)

	g.perf.StartPhase(telemetry.PhaseCleanup)
	g.cleanupDead()

	g.perf.StartPhase(telemetry.PhaseFood)
	w.Clusters.Update(dt)
	w.SpawnFood(dt)
	w.AgeMatingEvents(dt)

	g.perf.StartPhase(telemetry.PhaseStats)
	g.simTime += dt
	g.tick++
	snap, ok := g.stats.Update(w, dt, g.tick)
	g.perf.EndTick()

	g.recordEvents(fired)
	if ok {
		g.recordSnapshot(snap)
	}
}
