package channel

import "fmt"

// DriverKind selects how a readable channel gets its value.
type DriverKind uint8

const (
	DriveConstant DriverKind = iota // the channel's declared fallback value
	DriveChemical                   // a body-wide chemical concentration
	DriveLink                       // another module's channel on the same board
)

// Driver is the resolved upstream source of a channel. Drivers are
// fixed at organism assembly time by the host's nervous system; the
// behavior component only ever sees the resulting scalar.
type Driver struct {
	Kind     DriverKind
	Module   int // DriveLink: board index of the source module
	Channel  int // DriveLink: channel index on the source module
	Chemical int // DriveChemical: chemical index
	Constant float64
}

type boardModule struct {
	label   string
	specs   []Spec
	drivers []Driver
	read    []float64 // values visible to Input this frame
	write   []float64 // values staged by Output, published on Commit
}

// Board holds all channel values of one organism. Reads see the
// previous frame's writes; Commit publishes the staged writes once the
// host has updated every module, which is what keeps Input pure for the
// duration of a frame.
type Board struct {
	chem    []float64
	modules []boardModule
}

// NewBoard creates a board whose chemical-driven channels read from
// chem. The slice is aliased, not copied.
func NewBoard(chem []float64) *Board {
	return &Board{chem: chem}
}

// AddModule registers a module's resolved layout and returns its board
// index. Every channel starts at its fallback value and is driven by
// its declared chemical when one is named.
func (b *Board) AddModule(label string, specs []Spec) int {
	m := boardModule{
		label:   label,
		specs:   specs,
		drivers: make([]Driver, len(specs)),
		read:    make([]float64, len(specs)),
		write:   make([]float64, len(specs)),
	}
	for i, s := range specs {
		if s.Chemical >= 0 && s.Chemical < len(b.chem) {
			m.drivers[i] = Driver{Kind: DriveChemical, Chemical: s.Chemical}
		} else {
			m.drivers[i] = Driver{Kind: DriveConstant, Constant: s.Fallback}
		}
		m.read[i] = s.Fallback
		m.write[i] = s.Fallback
	}
	b.modules = append(b.modules, m)
	return len(b.modules) - 1
}

// Specs returns the layout registered for a board module.
func (b *Board) Specs(mod int) []Spec { return b.modules[mod].specs }

// SetDriver overrides a channel's driver. Used by the host when it
// resolves socket/plug links at assembly time.
func (b *Board) SetDriver(mod, ch int, d Driver) {
	b.modules[mod].drivers[ch] = d
}

// Driver returns the resolved driver for a channel.
func (b *Board) Driver(mod, ch int) Driver { return b.modules[mod].drivers[ch] }

// Input returns the current scalar on a module's channel. Output-role
// channels read back their own last committed value; everything else
// resolves through the channel's driver. An index outside the declared
// layout is an authoring defect and panics with enough context to fix
// the declaration.
func (b *Board) Input(mod, ch int) float64 {
	m := &b.modules[mod]
	if ch < 0 || ch >= len(m.specs) {
		panic(fmt.Sprintf("channel: %s: input index %d outside declared layout (%d channels)",
			m.label, ch, len(m.specs)))
	}
	if m.specs[ch].Role() == RoleOutput {
		return m.read[ch]
	}
	return b.resolve(m, ch, 0)
}

const maxLinkDepth = 16

func (b *Board) resolve(m *boardModule, ch, depth int) float64 {
	d := m.drivers[ch]
	switch d.Kind {
	case DriveChemical:
		if d.Chemical >= 0 && d.Chemical < len(b.chem) {
			return b.chem[d.Chemical]
		}
		return m.specs[ch].Fallback
	case DriveLink:
		src := &b.modules[d.Module]
		if src.specs[d.Channel].Role() == RoleOutput {
			return src.read[d.Channel]
		}
		if depth >= maxLinkDepth {
			return src.specs[d.Channel].Fallback
		}
		// Bypass and input channels forward their own upstream value.
		return b.resolve(src, d.Channel, depth+1)
	default:
		return d.Constant
	}
}

// Output stages a write on an output-role channel. Writing any other
// role, or an undeclared index, indicates a mistake in the component's
// channel declaration and panics rather than being silently dropped.
func (b *Board) Output(mod, ch int, v float64) {
	m := &b.modules[mod]
	if ch < 0 || ch >= len(m.specs) {
		panic(fmt.Sprintf("channel: %s: output index %d outside declared layout (%d channels)",
			m.label, ch, len(m.specs)))
	}
	if role := m.specs[ch].Role(); role != RoleOutput {
		panic(fmt.Sprintf("channel: %s: channel %d (%s) has role %s, not output",
			m.label, ch, m.specs[ch].Name, role))
	}
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	m.write[ch] = v
}

// Commit publishes all staged writes. The host calls this exactly once
// per frame, after every module's continuous update, so downstream
// readers always observe the previous frame's values.
func (b *Board) Commit() {
	for i := range b.modules {
		copy(b.modules[i].read, b.modules[i].write)
	}
}
