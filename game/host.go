package game

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pelagialabs/pelagia/body"
	"github.com/pelagialabs/pelagia/components"
	"github.com/pelagialabs/pelagia/physiology"
	"github.com/pelagialabs/pelagia/sense"
	"github.com/pelagialabs/pelagia/stimulus"
)

// colourPair is an animated element's diffuse/emissive state, driven by
// behavior components through SetColour.
type colourPair struct {
	Diffuse  body.Colour
	Emissive body.Colour
}

// moduleRuntime binds one module's behavior component to its host. The
// grip/clench channel indices feed the hunt counters; -1 means the
// module has no such channel.
type moduleRuntime struct {
	comp physiology.Component
	host *moduleHost

	gripCh      int
	clenchCh    int
	prevGrip    float64
	strikeTimer float64
}

// orgRuntime is the game-side state behind one creature entity: the
// organism tree, its behavior components, and the forces they
// accumulated this frame.
type orgRuntime struct {
	g       *Game
	org     *body.Organism
	entity  ecs.Entity
	modules []*moduleRuntime

	mass     float64
	buoyancy float64

	force  r3.Vec
	torque float64

	colours map[string]colourPair
}

// orgRuntime implements sense.Detectable for spatial queries.

func (r *orgRuntime) EntityID() uint32     { return r.org.ID }
func (r *orgRuntime) Location() r3.Vec     { return r.org.Pos }
func (r *orgRuntime) Velocity() r3.Vec     { return r.org.Vel }
func (r *orgRuntime) Mass() float64        { return r.mass }
func (r *orgRuntime) Radius() float64      { return r.org.Radius }
func (r *orgRuntime) Colour() body.Colour  { return r.org.Colour }
func (r *orgRuntime) Terrain() bool        { return false }
func (r *orgRuntime) DepthFraction() float64 {
	return r.org.DepthFraction(r.g.bounds.Depth)
}

// pointTarget adapts a morsel or terrain feature to sense.Detectable.
type pointTarget struct {
	id        uint32
	pos       r3.Vec
	vel       r3.Vec
	mass      float64
	radius    float64
	depthFrac float64
	colour    body.Colour
	terrain   bool
}

func (t pointTarget) EntityID() uint32       { return t.id }
func (t pointTarget) Location() r3.Vec       { return t.pos }
func (t pointTarget) Velocity() r3.Vec       { return t.vel }
func (t pointTarget) Mass() float64          { return t.mass }
func (t pointTarget) Radius() float64        { return t.radius }
func (t pointTarget) Colour() body.Colour    { return t.colour }
func (t pointTarget) DepthFraction() float64 { return t.depthFrac }
func (t pointTarget) Terrain() bool          { return t.terrain }

// detectable builds the sense adapter for an ECS entity, or nil for
// entities that cannot be sensed.
func (g *Game) detectable(e ecs.Entity) sense.Detectable {
	if g.creatureMap.Has(e) {
		c := g.creatureMap.Get(e)
		if run, ok := g.creatures[c.ID]; ok {
			return run
		}
		return nil
	}
	if !g.bodyMap.Has(e) || !g.posMap.Has(e) {
		return nil
	}
	b := g.bodyMap.Get(e)
	pos := g.posMap.Get(e)
	t := pointTarget{
		id:      b.ID,
		pos:     pos.Pos,
		mass:    b.Mass,
		radius:  b.Radius,
		colour:  b.Colour,
		terrain: b.Kind == components.KindFeature,
	}
	if g.velMap.Has(e) {
		t.vel = g.velMap.Get(e).Vel
	}
	if g.bounds.Depth > 0 {
		f := 1 - pos.Pos.Z/g.bounds.Depth
		if f < 0 {
			f = 0
		} else if f > 1 {
			f = 1
		}
		t.depthFrac = f
	}
	return t
}

// moduleHost implements physiology.Host for one module.
type moduleHost struct {
	g        *Game
	run      *orgRuntime
	mod      *body.Module
	boardIdx int
}

func (h *moduleHost) Module() *body.Module { return h.mod }

func (h *moduleHost) Self() physiology.SelfInfo {
	o := h.run.org
	return physiology.SelfInfo{
		Location: h.mod.Pos,
		Velocity: o.Vel,
		Mass:     h.mod.Mass,
		Radius:   h.mod.Radius,
		Depth:    o.DepthFraction(h.g.bounds.Depth),
		Colour:   o.Colour,
	}
}

func (h *moduleHost) Input(ch int) float64 {
	return h.run.org.Net.Input(h.boardIdx, ch)
}

func (h *moduleHost) Output(ch int, v float64) {
	h.run.org.Net.Output(h.boardIdx, ch, v)
}

func (h *moduleHost) Sense(hotspot int, rng float64, f sense.Filter) []sense.Item {
	origin, fwd := h.mod.HotspotWorld(hotspot)
	g := h.g

	g.neighborBuf = g.grid.QueryRadiusInto(g.neighborBuf[:0], origin, rng, h.run.entity, g.posMap)

	items := make([]sense.Item, 0, len(g.neighborBuf))
	for _, n := range g.neighborBuf {
		d := g.detectable(n.E)
		if d == nil || d.EntityID() == h.run.org.ID {
			continue
		}
		if d.Terrain() {
			if !f.Terrain {
				continue
			}
		} else if !f.Organisms {
			continue
		}
		if f.LineOfSight && !g.terrain.SegmentClear(origin, d.Location()) {
			continue
		}
		items = append(items, sense.NewItem(d, origin, fwd, rng))
	}

	sort.Slice(items, func(i, j int) bool {
		di, dj := items[i].Distance(), items[j].Distance()
		if di != dj {
			return di < dj
		}
		return items[i].Target.EntityID() < items[j].Target.EntityID()
	})
	return items
}

func (h *moduleHost) Emit(typ string, hotspot int, rng, halfAngle float64, params [4]float64) {
	origin, axis := h.mod.HotspotWorld(hotspot)
	s := &stimulus.Stimulus{
		EmitterID: h.run.org.ID,
		Origin:    origin,
		Range:     rng,
		Type:      typ,
		Params:    params,
	}
	h.g.dispatch(h.run, s, axis, halfAngle)
}

func (h *moduleHost) EmitTo(target uint32, typ string, hotspot int, rng float64, params [4]float64) {
	origin, _ := h.mod.HotspotWorld(hotspot)
	s := &stimulus.Stimulus{
		EmitterID: h.run.org.ID,
		TargetID:  target,
		Origin:    origin,
		Range:     rng,
		Type:      typ,
		Params:    params,
	}
	h.g.dispatch(h.run, s, r3.Vec{}, stimulus.WholeSphere)
}

func (h *moduleHost) EmitSound(rng, pitch, cue float64) {
	s := stimulus.NewSound(h.run.org.ID, h.mod.Pos, rng, pitch, cue)
	h.g.dispatch(h.run, s, r3.Vec{}, stimulus.WholeSphere)
}

func (h *moduleHost) EmitDisturbance(rng float64) {
	s := stimulus.NewDisturbance(h.run.org.ID, h.mod.Pos, rng)
	// A snap from a gripping module arms the miss timer; a catch within
	// the window cancels it.
	for _, mr := range h.run.modules {
		if mr.host == h && mr.gripCh >= 0 {
			mr.strikeTimer = 1.5
		}
	}
	h.g.dispatch(h.run, s, r3.Vec{}, stimulus.WholeSphere)
}

func (h *moduleHost) Reply(orig *stimulus.Stimulus, params [4]float64) {
	s := orig.MakeReply(h.run.org.ID, h.mod.Pos, params)
	h.g.dispatch(h.run, s, r3.Vec{}, stimulus.WholeSphere)
}

func (h *moduleHost) SetColour(element string, diffuse, emissive body.Colour) {
	h.run.colours[element] = colourPair{Diffuse: diffuse, Emissive: emissive}
}

func (h *moduleHost) Propel(hotspot int, force float64) {
	pos, fwd := h.mod.HotspotWorld(hotspot)
	f := r3.Scale(force, fwd)
	h.run.force = r3.Add(h.run.force, f)
	lever := r3.Sub(pos, h.run.org.Pos)
	h.run.torque += lever.X*f.Y - lever.Y*f.X
}

func (h *moduleHost) DrawEnergy(amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	en := h.g.energyMap.Get(h.run.entity)
	if en == nil || !en.Alive {
		return 0
	}
	grant := amount
	if grant > en.Value {
		grant = en.Value
	}
	en.Value -= grant
	return grant
}

func (h *moduleHost) Deposit(amount float64) {
	if amount <= 0 {
		return
	}
	en := h.g.energyMap.Get(h.run.entity)
	if en == nil || !en.Alive {
		return
	}
	en.Value += amount
	if en.Value > en.Max {
		en.Value = en.Max
	}
}

func (h *moduleHost) Chemical(idx int) float64 {
	if idx < 0 || idx >= body.NumChemicals {
		return 0
	}
	return h.run.org.Chemicals[idx]
}

func (h *moduleHost) StirChemical(idx int, delta float64) {
	if idx < 0 || idx >= body.NumChemicals {
		return
	}
	v := h.run.org.Chemicals[idx] + delta
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	h.run.org.Chemicals[idx] = v
}

func (h *moduleHost) Logf(format string, args ...any) {
	slog.Debug("physiology",
		"organism", h.run.org.ID,
		"module", h.mod.Name,
		"msg", fmt.Sprintf(format, args...),
	)
}

// recipient is one ordered delivery target for a broadcast stimulus.
type recipient struct {
	entity ecs.Entity
	id     uint32
	pos    r3.Vec
	dist   float64
	run    *orgRuntime // nil for morsels and features
}

// dispatch delivers a stimulus synchronously. Replies go straight to
// their target; broadcasts reach every entity inside the range sphere
// (and the cone, when one is given) in ascending distance order with
// entity ID as the tie-break.
func (g *Game) dispatch(src *orgRuntime, s *stimulus.Stimulus, axis r3.Vec, halfAngle float64) {
	if !s.Reply {
		switch s.Type {
		case stimulus.TypeSound:
			g.collector.RecordSound()
		case stimulus.TypeDisturbance:
			g.collector.RecordDisturbance()
		}
	}

	if s.TargetID != 0 {
		if run, ok := g.creatures[s.TargetID]; ok {
			handled := g.deliverToCreature(run, s)
			if !handled && s.Type == stimulus.TypeFeed && !s.Reply {
				g.answerFeedFromCreature(run, s)
			}
			return
		}
		if e, ok := g.bodies[s.TargetID]; ok {
			if s.Type == stimulus.TypeFeed && !s.Reply && g.morselMap.Has(e) {
				if pos := g.posMap.Get(e); pos != nil {
					g.answerFeedFromMorsel(e, pos.Pos, s)
				}
			}
		}
		return
	}

	g.neighborBuf = g.grid.QueryRadiusInto(g.neighborBuf[:0], s.Origin, s.Range, src.entity, g.posMap)

	recipients := make([]recipient, 0, len(g.neighborBuf))
	for _, n := range g.neighborBuf {
		pos := g.posMap.Get(n.E)
		if pos == nil {
			continue
		}
		rec := recipient{entity: n.E, pos: pos.Pos, dist: n.DistSq}
		if g.creatureMap.Has(n.E) {
			run, ok := g.creatures[g.creatureMap.Get(n.E).ID]
			if !ok || run == src {
				continue
			}
			rec.run = run
			rec.id = run.org.ID
		} else if g.bodyMap.Has(n.E) {
			rec.id = g.bodyMap.Get(n.E).ID
		} else {
			continue
		}
		if !stimulus.InCone(s.Origin, axis, rec.pos, halfAngle) {
			continue
		}
		recipients = append(recipients, rec)
	}

	sort.Slice(recipients, func(i, j int) bool {
		if recipients[i].dist != recipients[j].dist {
			return recipients[i].dist < recipients[j].dist
		}
		return recipients[i].id < recipients[j].id
	})

	for _, rec := range recipients {
		if rec.run != nil {
			handled := g.deliverToCreature(rec.run, s)
			if !handled && s.Type == stimulus.TypeFeed && !s.Reply {
				g.answerFeedFromCreature(rec.run, s)
			}
			continue
		}
		if s.Type == stimulus.TypeFeed && !s.Reply && g.morselMap.Has(rec.entity) {
			g.answerFeedFromMorsel(rec.entity, rec.pos, s)
		}
	}

	g.recordRing(s)
}

// deliverToCreature offers the stimulus to every one of the creature's
// modules in attachment order. Several senses can react to the same
// event, so a claim by one module must not hide it from the rest; the
// return value reports whether anyone claimed it.
func (g *Game) deliverToCreature(run *orgRuntime, s *stimulus.Stimulus) bool {
	handled := false
	for _, mr := range run.modules {
		if mr.comp.HandleStimulus(mr.host, s) {
			handled = true
		}
	}
	return handled
}

// answerFeedFromCreature handles a feed request none of the recipient's
// components claimed: the bite lands on plain flesh, so the host
// withdraws from the recipient's energy store and replies with the
// granted amount.
func (g *Game) answerFeedFromCreature(run *orgRuntime, s *stimulus.Stimulus) {
	en := g.energyMap.Get(run.entity)
	if en == nil || !en.Alive {
		return
	}
	grant := s.Params[0]
	if grant > en.Value {
		grant = en.Value
	}
	if grant <= 0 {
		return
	}
	en.Value -= grant
	g.collector.RecordFeed()

	reply := s.MakeReply(run.org.ID, run.org.Pos, [4]float64{grant})
	if emitter, ok := g.creatures[s.EmitterID]; ok {
		g.deliverToCreature(emitter, reply)
	}
}

// answerFeedFromMorsel grants energy from a morsel's remaining
// nutrition. A depleted morsel is collected by the morsel phase.
func (g *Game) answerFeedFromMorsel(e ecs.Entity, pos r3.Vec, s *stimulus.Stimulus) {
	m := g.morselMap.Get(e)
	if m == nil || m.Nutrition <= 0 {
		return
	}
	grant := s.Params[0]
	if grant > m.Nutrition {
		grant = m.Nutrition
	}
	m.Nutrition -= grant
	g.collector.RecordFeed()

	var replierID uint32
	if b := g.bodyMap.Get(e); b != nil {
		replierID = b.ID
	}
	reply := s.MakeReply(replierID, pos, [4]float64{grant})
	if emitter, ok := g.creatures[s.EmitterID]; ok {
		g.deliverToCreature(emitter, reply)
	}
}
