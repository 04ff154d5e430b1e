// Package channel implements the directed signal network between a
// creature's modules: per-module channel declarations, role
// classification, variant-selected layouts, and the double-buffered
// value board that gives every frame single-writer semantics.
package channel

import "fmt"

// Endpoint identifies where a channel terminates on a module:
// a socket index, the plug toward the parent, or nowhere.
type Endpoint int8

const (
	// EndpointNone marks a channel end that terminates inside the
	// module's behavior component.
	EndpointNone Endpoint = -1
	// EndpointPlug is the attachment toward the parent module.
	EndpointPlug Endpoint = -2
)

// SocketEndpoint returns the endpoint for socket index i.
func SocketEndpoint(i int) Endpoint { return Endpoint(i) }

// IsSocket reports whether the endpoint is a real socket.
func (e Endpoint) IsSocket() bool { return e >= 0 }

func (e Endpoint) String() string {
	switch e {
	case EndpointNone:
		return "none"
	case EndpointPlug:
		return "plug"
	default:
		return fmt.Sprintf("socket%d", int(e))
	}
}

// Role classifies a channel by its endpoints. The role is derived,
// never stored.
type Role uint8

const (
	RoleInput  Role = iota // destination is none: value arrives here
	RoleOutput             // source is none: behavior writes the value
	RoleBypass             // both ends real: value passes through
)

func (r Role) String() string {
	switch r {
	case RoleInput:
		return "input"
	case RoleOutput:
		return "output"
	default:
		return "bypass"
	}
}

// Spec declares one channel of a module's behavior component.
type Spec struct {
	Name     string
	Source   Endpoint
	Dest     Endpoint
	Chemical int     // body chemical driving the channel by default; -1 for none
	Fallback float64 // constant value when nothing else drives the channel
}

// Role derives the channel's classification. The destination test takes
// priority so that classification stays total even for a degenerate
// spec with both ends "none".
func (s Spec) Role() Role {
	if s.Dest == EndpointNone {
		return RoleInput
	}
	if s.Source == EndpointNone {
		return RoleOutput
	}
	return RoleBypass
}

// LayoutSet holds one channel layout per structural variant of a
// component type. A component with a single layout uses it for every
// variant.
type LayoutSet struct {
	layouts [][]Spec
}

// NewLayoutSet builds a layout set. Passing nothing means the component
// declares no channels.
func NewLayoutSet(layouts ...[]Spec) LayoutSet {
	return LayoutSet{layouts: layouts}
}

// Len returns the number of declared layouts.
func (s LayoutSet) Len() int { return len(s.layouts) }

// ForVariant resolves the layout for a variant index: the variant's own
// layout when declared, otherwise layout 0, otherwise no channels.
func (s LayoutSet) ForVariant(v int) []Spec {
	if v >= 0 && v < len(s.layouts) {
		return s.layouts[v]
	}
	if len(s.layouts) > 0 {
		return s.layouts[0]
	}
	return nil
}
