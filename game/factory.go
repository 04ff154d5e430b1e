package game

import (
	"fmt"
	"math"

	"github.com/pelagialabs/pelagia/body"
	"github.com/pelagialabs/pelagia/channel"
	"github.com/pelagialabs/pelagia/components"
	"github.com/pelagialabs/pelagia/config"
	"github.com/pelagialabs/pelagia/physiology"
	"gonum.org/v1/gonum/spatial/r3"
)

// assembleOrganism builds a creature from a species blueprint: modules
// instantiated from the asset catalog, attached into a tree, channel
// layouts registered on the signal board, and link drivers resolved
// along the socket/plug pairs. Any unresolved name is a configuration
// error that aborts the whole assembly.
func (g *Game) assembleOrganism(sp config.SpeciesConfig, id uint32, pos r3.Vec, heading float64) (*orgRuntime, error) {
	org := body.NewOrganism(id, sp.Name)
	org.Colour = g.speciesColour(sp.Name)

	run := &orgRuntime{
		g:       g,
		org:     org,
		colours: make(map[string]colourPair),
	}

	byName := make(map[string]*body.Module, len(sp.Modules))

	for i, bp := range sp.Modules {
		group, typ, asset, err := bp.SplitComponent()
		if err != nil {
			return nil, fmt.Errorf("species %q: %w", sp.Name, err)
		}

		comp, err := g.registry.New(group, typ, g.spawnCtx)
		if err != nil {
			return nil, fmt.Errorf("species %q module %q: %w", sp.Name, bp.Name, err)
		}

		spec, ok := body.LookupAsset(asset)
		if !ok {
			return nil, fmt.Errorf("species %q module %q: unknown asset %q", sp.Name, bp.Name, asset)
		}
		m := spec.NewModule(bp.Name)

		variant, err := physiology.ResolveVariant(comp, asset)
		if err != nil {
			return nil, fmt.Errorf("species %q module %q: %w", sp.Name, bp.Name, err)
		}
		m.Variant = variant

		var parent *body.Module
		socket := -1
		if i > 0 {
			parent, ok = byName[bp.Parent]
			if !ok {
				return nil, fmt.Errorf("species %q module %q: unknown parent %q", sp.Name, bp.Name, bp.Parent)
			}
			socket = parent.SocketIndex(bp.Socket)
			if socket < 0 {
				return nil, fmt.Errorf("species %q module %q: parent %q has no socket %q",
					sp.Name, bp.Name, bp.Parent, bp.Socket)
			}
			if parent.Sockets[socket].Child != nil {
				return nil, fmt.Errorf("species %q module %q: socket %q on %q already occupied",
					sp.Name, bp.Name, bp.Socket, bp.Parent)
			}
		}

		org.Attach(m, parent, socket)
		boardIdx := org.Net.AddModule(sp.Name+"/"+bp.Name, comp.Layouts().ForVariant(variant))
		byName[bp.Name] = m

		mr := &moduleRuntime{
			comp:     comp,
			host:     &moduleHost{g: g, run: run, mod: m, boardIdx: boardIdx},
			gripCh:   -1,
			clenchCh: -1,
		}
		for ci, cs := range org.Net.Specs(boardIdx) {
			switch cs.Name {
			case "grip":
				mr.gripCh = ci
			case "clench":
				mr.clenchCh = ci
			}
		}
		run.modules = append(run.modules, mr)
	}

	g.resolveLinks(org)

	org.Pos = pos
	org.Heading = heading
	org.UpdatePoses()

	for _, m := range org.Modules {
		run.mass += m.Mass
		run.buoyancy += m.Mass * m.Buoyancy
	}
	if run.mass > 0 {
		run.buoyancy /= run.mass
	} else {
		run.buoyancy = 1
	}

	return run, nil
}

// resolveLinks wires channel drivers along the organism tree. A channel
// sourced at the plug links to the parent channel addressed at the
// shared socket; a channel sourced at a socket links to the child's
// plug-addressed channel. Matching prefers equal names and falls back
// to the first candidate. Channels with no counterpart keep their
// chemical or constant fallback driver.
func (g *Game) resolveLinks(org *body.Organism) {
	for mi, m := range org.Modules {
		specs := org.Net.Specs(mi)
		for ci, cs := range specs {
			if cs.Source == channel.EndpointNone {
				continue // output: the behavior writes it
			}

			if cs.Source == channel.EndpointPlug {
				if m.Plug == nil {
					continue
				}
				pi := m.Plug.Parent.Index
				if target := findEndpoint(org.Net.Specs(pi), cs.Name, channel.SocketEndpoint(m.Plug.Socket)); target >= 0 {
					org.Net.SetDriver(mi, ci, channel.Driver{
						Kind: channel.DriveLink, Module: pi, Channel: target,
					})
				}
				continue
			}

			// Socket-sourced: link to the child attached there, if any.
			si := int(cs.Source)
			if si >= len(m.Sockets) || m.Sockets[si].Child == nil {
				continue
			}
			child := m.Sockets[si].Child
			if target := findEndpoint(org.Net.Specs(child.Index), cs.Name, channel.EndpointPlug); target >= 0 {
				org.Net.SetDriver(mi, ci, channel.Driver{
					Kind: channel.DriveLink, Module: child.Index, Channel: target,
				})
			}
		}
	}
}

// findEndpoint returns the index of a channel with the given
// destination, preferring one whose name matches.
func findEndpoint(specs []channel.Spec, name string, dest channel.Endpoint) int {
	found := -1
	for i, s := range specs {
		if s.Dest != dest {
			continue
		}
		if s.Name == name {
			return i
		}
		if found < 0 {
			found = i
		}
	}
	return found
}

// speciesColour derives a stable base colour from the species name with
// per-individual jitter.
func (g *Game) speciesColour(name string) body.Colour {
	var hash uint32 = 2166136261
	for i := 0; i < len(name); i++ {
		hash ^= uint32(name[i])
		hash *= 16777619
	}
	hue := float64(hash%360) / 360
	jitter := (g.rng.Float64() - 0.5) * 0.1

	// Cheap hue-to-RGB on a pastel band.
	r := 0.45 + 0.4*math.Abs(math.Sin((hue+jitter)*2*math.Pi))
	gg := 0.45 + 0.4*math.Abs(math.Sin((hue+jitter)*2*math.Pi+2.1))
	b := 0.45 + 0.4*math.Abs(math.Sin((hue+jitter)*2*math.Pi+4.2))
	return body.Colour{R: r, G: gg, B: b}
}

// spawnCreature assembles a species instance, registers its runtime,
// and creates the backing ECS entity.
func (g *Game) spawnCreature(sp config.SpeciesConfig, pos r3.Vec, heading float64) (*orgRuntime, error) {
	cfg := config.Cfg()

	id := g.nextID
	g.nextID++

	run, err := g.assembleOrganism(sp, id, pos, heading)
	if err != nil {
		return nil, err
	}

	p := components.Position{Pos: pos}
	vel := components.Velocity{}
	rot := components.Rotation{Heading: heading}
	bod := components.Body{
		ID:       id,
		Kind:     components.KindCreature,
		Radius:   run.org.Radius,
		Mass:     run.mass,
		Buoyancy: run.buoyancy,
		Colour:   run.org.Colour,
	}
	en := components.Energy{
		Value: cfg.Energy.Initial,
		Max:   cfg.Energy.Max,
		Alive: true,
	}
	cr := components.Creature{ID: id, Species: sp.Name}

	run.entity = g.creatureMapper.NewEntity(&p, &vel, &rot, &bod, &en, &cr)

	g.runtimes = append(g.runtimes, run)
	g.creatures[id] = run

	for _, mr := range run.modules {
		if err := mr.comp.Init(mr.host); err != nil {
			g.removeCreature(run)
			return nil, fmt.Errorf("species %q: init %q: %w", sp.Name, mr.host.mod.Name, err)
		}
	}

	g.collector.RecordBirth()
	return run, nil
}
