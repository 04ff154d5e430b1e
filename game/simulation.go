package game

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pelagialabs/pelagia/config"
	"github.com/pelagialabs/pelagia/telemetry"
)

// step advances the simulation by dt seconds.
func (g *Game) step(dt float64) {
	g.perf.StartTick()

	// 1. Rebuild the spatial index.
	g.perf.StartPhase(telemetry.PhaseSpatialGrid)
	g.rebuildGrid()

	// 2. Behavior components, in ascending organism ID order.
	g.perf.StartPhase(telemetry.PhasePhysiology)
	for _, run := range g.runtimes {
		g.syncFromECS(run)
		run.force = r3.Vec{}
		run.torque = 0
		for _, mr := range run.modules {
			mr.comp.Update(mr.host, dt)
		}
	}

	// 3. Publish this frame's channel writes.
	g.perf.StartPhase(telemetry.PhaseChannels)
	for _, run := range g.runtimes {
		run.org.Net.Commit()
		g.watchHuntChannels(run, dt)
	}

	// 4. Slow tick.
	g.perf.StartPhase(telemetry.PhaseTick)
	g.tickAccum += dt
	interval := 1 / config.Cfg().Physics.TickHz
	for g.tickAccum >= interval {
		g.tickAccum -= interval
		for _, run := range g.runtimes {
			for _, mr := range run.modules {
				mr.comp.Tick(mr.host)
			}
		}
	}

	// 5. Apply propulsion, integrate, sync poses back.
	g.perf.StartPhase(telemetry.PhasePhysics)
	g.applyPropulsion(dt)
	g.physics.Update(dt)
	for _, run := range g.runtimes {
		g.syncFromECS(run)
	}

	// 6. Food turnover.
	g.perf.StartPhase(telemetry.PhaseMorsels)
	g.morselPhase(dt)

	// 7. Metabolism and death.
	g.perf.StartPhase(telemetry.PhaseEnergy)
	g.energyPhase(dt)

	// 8. Fading render state.
	g.perf.StartPhase(telemetry.PhaseCleanup)
	g.decayRings(dt)

	// 9. Telemetry window.
	g.perf.StartPhase(telemetry.PhaseTelemetry)
	g.tick++
	g.simTime += dt
	g.flushTelemetry()

	g.perf.EndTick()
}

// rebuildGrid reindexes every positioned entity.
func (g *Game) rebuildGrid() {
	g.grid.Clear()

	cq := g.creatureFilter.Query()
	for cq.Next() {
		pos, _, _, _, _, _ := cq.Get()
		g.grid.Insert(cq.Entity(), pos.Pos)
	}
	mq := g.morselFilter.Query()
	for mq.Next() {
		pos, _, _, _ := mq.Get()
		g.grid.Insert(mq.Entity(), pos.Pos)
	}
	fq := g.featureFilter.Query()
	for fq.Next() {
		pos, _ := fq.Get()
		g.grid.Insert(fq.Entity(), pos.Pos)
	}
}

// syncFromECS copies the entity's kinematic state onto the organism so
// module poses and Self queries see current values.
func (g *Game) syncFromECS(run *orgRuntime) {
	pos := g.posMap.Get(run.entity)
	vel := g.velMap.Get(run.entity)
	rot := g.rotMap.Get(run.entity)
	if pos == nil || vel == nil || rot == nil {
		return
	}
	run.org.Pos = pos.Pos
	run.org.Vel = vel.Vel
	run.org.Heading = rot.Heading
	run.org.AngVel = rot.AngVel
	run.org.UpdatePoses()
}

// applyPropulsion turns the frame's accumulated module forces into
// velocity and spin changes.
func (g *Game) applyPropulsion(dt float64) {
	for _, run := range g.runtimes {
		if run.mass <= 0 {
			continue
		}
		vel := g.velMap.Get(run.entity)
		rot := g.rotMap.Get(run.entity)
		if vel == nil || rot == nil {
			continue
		}
		vel.Vel = r3.Add(vel.Vel, r3.Scale(dt/run.mass, run.force))

		// Moment of inertia of a solid sphere at the assembly radius.
		inertia := 0.4 * run.mass * run.org.Radius * run.org.Radius
		if inertia < 0.1 {
			inertia = 0.1
		}
		rot.AngVel += run.torque / inertia * dt
	}
}

// watchHuntChannels derives catch/miss/escape telemetry from the
// committed grip channels. A snap arms strikeTimer; a grip rising edge
// inside the window is a catch, an expired window is a miss, and a
// falling edge while the clench command still holds is an escape.
func (g *Game) watchHuntChannels(run *orgRuntime, dt float64) {
	for _, mr := range run.modules {
		if mr.gripCh < 0 {
			continue
		}
		grip := run.org.Net.Input(mr.host.boardIdx, mr.gripCh)

		if grip >= 0.5 && mr.prevGrip < 0.5 {
			g.collector.RecordCatch()
			mr.strikeTimer = 0
		} else if grip < 0.5 && mr.prevGrip >= 0.5 {
			clench := 0.0
			if mr.clenchCh >= 0 {
				clench = run.org.Net.Input(mr.host.boardIdx, mr.clenchCh)
			}
			if clench > 0.1 {
				g.collector.RecordEscape()
			}
		}
		mr.prevGrip = grip

		if mr.strikeTimer > 0 {
			mr.strikeTimer -= dt
			if mr.strikeTimer <= 0 {
				g.collector.RecordMiss()
			}
		}
	}
}

// flushTelemetry closes the stats window when due and writes the
// aggregates out.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.simTime) {
		return
	}

	energies := make([]float64, 0, len(g.runtimes))
	query := g.creatureFilter.Query()
	for query.Next() {
		_, _, _, _, en, _ := query.Get()
		if en.Alive {
			energies = append(energies, en.Value)
		}
	}

	stats := g.collector.Flush(g.simTime, len(g.runtimes), g.morselCount, energies)
	perfStats := g.perf.Stats()

	if g.opts.LogStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.output != nil {
		if err := g.output.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.output.WritePerf(perfStats, stats.WindowEnd); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}
