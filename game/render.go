package game

import (
	"fmt"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pelagialabs/pelagia/renderer"
	"github.com/pelagialabs/pelagia/stimulus"
)

// stimulusRing is a fading visual trace of an emission.
type stimulusRing struct {
	pos      r3.Vec
	maxRange float64
	age      float64
	ttl      float64
	colour   rl.Color
}

// recordRing captures an emission for the debug overlay. Headless runs
// skip this entirely.
func (g *Game) recordRing(s *stimulus.Stimulus) {
	if g.camera == nil || s.Reply {
		return
	}
	var c rl.Color
	switch s.Type {
	case stimulus.TypeSound:
		c = rl.NewColor(120, 200, 255, 160)
	case stimulus.TypeDisturbance:
		c = rl.NewColor(255, 180, 90, 160)
	default:
		c = rl.NewColor(200, 120, 255, 160)
	}
	g.rings = append(g.rings, stimulusRing{
		pos:      s.Origin,
		maxRange: s.Range,
		ttl:      0.7,
		colour:   c,
	})
}

// decayRings ages and drops expired ring traces.
func (g *Game) decayRings(dt float64) {
	alive := g.rings[:0]
	for _, r := range g.rings {
		r.age += dt
		if r.age < r.ttl {
			alive = append(alive, r)
		}
	}
	g.rings = alive
}

// depthCue returns the size/brightness multiplier for an entity at
// height z: full near the surface, dimmer near the seabed.
func (g *Game) depthCue(z float64) float32 {
	if !g.hud.ShowDepthCues || g.bounds.Depth <= 0 {
		return 1
	}
	t := z / g.bounds.Depth
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return float32(0.5 + 0.5*t)
}

// Draw renders the frame.
func (g *Game) Draw() {
	rl.BeginDrawing()

	g.water.Draw(g.camera)

	g.drawFeatures()
	g.drawMorsels()
	g.drawCreatures()
	if g.hud.ShowRings {
		g.drawRings()
	}

	g.drawHUD()

	rl.EndDrawing()
}

func (g *Game) drawFeatures() {
	query := g.featureFilter.Query()
	for query.Next() {
		pos, bod := query.Get()
		if !g.camera.IsVisible(float32(pos.Pos.X), float32(pos.Pos.Y), float32(bod.Radius)) {
			continue
		}
		sx, sy := g.camera.WorldToScreen(float32(pos.Pos.X), float32(pos.Pos.Y))
		r := float32(bod.Radius) * g.camera.Zoom
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, r, rl.NewColor(96, 90, 82, 255))
	}
}

func (g *Game) drawMorsels() {
	query := g.morselFilter.Query()
	for query.Next() {
		pos, _, bod, _ := query.Get()
		if !g.camera.IsVisible(float32(pos.Pos.X), float32(pos.Pos.Y), float32(bod.Radius)) {
			continue
		}
		cue := g.depthCue(pos.Pos.Z)
		sx, sy := g.camera.WorldToScreen(float32(pos.Pos.X), float32(pos.Pos.Y))
		r := float32(bod.Radius) * g.camera.Zoom * cue
		if r < 1 {
			r = 1
		}
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy},
			r, rl.NewColor(uint8(210*cue), uint8(195*cue), uint8(130*cue), 255))
	}
}

func (g *Game) drawCreatures() {
	for _, run := range g.runtimes {
		org := run.org
		if !g.camera.IsVisible(float32(org.Pos.X), float32(org.Pos.Y), float32(org.Radius)*2) {
			continue
		}
		cue := g.depthCue(org.Pos.Z)

		for _, m := range org.Modules {
			sx, sy := g.camera.WorldToScreen(float32(m.Pos.X), float32(m.Pos.Y))
			r := float32(m.Radius) * g.camera.Zoom * cue
			if r < 1.5 {
				r = 1.5
			}
			c := org.Colour.Scale(float64(cue))
			rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, r, rl.NewColor(
				uint8(c.R*255), uint8(c.G*255), uint8(c.B*255), 255))

			// Jaw joints show as a brighter rim while open.
			if len(m.Joints) > 0 && m.Joints[0] > 0.05 && strings.HasPrefix(m.Asset, "jaw") {
				rl.DrawCircleLines(int32(sx), int32(sy), r+2,
					rl.NewColor(255, 255, 255, uint8(120*m.Joints[0])))
			}

			if pair, ok := run.colours["photophore"]; ok && strings.HasPrefix(m.Asset, "photophore") {
				glow := pair.Emissive
				intensity := (glow.R + glow.G + glow.B) / 3
				if intensity > 0.05 {
					rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, r*(2+float32(intensity)*3),
						rl.NewColor(uint8(glow.R*255), uint8(glow.G*255), uint8(glow.B*255),
							uint8(70*intensity)))
				}
			}
		}

		// Heading tick from the root.
		root := org.Root()
		_, fwd, _ := root.Frame()
		tip := r3.Add(org.Pos, r3.Scale(org.Radius*1.6, fwd))
		x0, y0 := g.camera.WorldToScreen(float32(org.Pos.X), float32(org.Pos.Y))
		x1, y1 := g.camera.WorldToScreen(float32(tip.X), float32(tip.Y))
		rl.DrawLineV(rl.Vector2{X: x0, Y: y0}, rl.Vector2{X: x1, Y: y1}, rl.NewColor(255, 255, 255, 90))

		if run.org.ID == g.selectedID {
			sx, sy := g.camera.WorldToScreen(float32(org.Pos.X), float32(org.Pos.Y))
			rl.DrawCircleLines(int32(sx), int32(sy),
				float32(org.Radius)*g.camera.Zoom*1.8, rl.SkyBlue)
		}
	}
}

func (g *Game) drawRings() {
	for _, ring := range g.rings {
		f := ring.age / ring.ttl
		radius := float32(ring.maxRange*f) * g.camera.Zoom
		c := ring.colour
		c.A = uint8(float64(c.A) * (1 - f))
		sx, sy := g.camera.WorldToScreen(float32(ring.pos.X), float32(ring.pos.Y))
		rl.DrawCircleLines(int32(sx), int32(sy), radius, c)
	}
}

func (g *Game) drawHUD() {
	g.hud.Paused = g.paused
	g.hud.Speed = float32(g.stepsPerUpdate)
	g.hud.Creatures = len(g.runtimes)
	g.hud.Morsels = g.morselCount
	g.hud.SimTime = g.simTime
	g.hud.Selected = ""
	if run, ok := g.creatures[g.selectedID]; ok {
		g.hud.Selected = fmt.Sprintf("%s #%d", run.org.Species, run.org.ID)
	}

	renderer.DrawHUD(&g.hud)

	g.paused = g.hud.Paused
	g.stepsPerUpdate = int(g.hud.Speed)
	if g.stepsPerUpdate < 1 {
		g.stepsPerUpdate = 1
	}
}
