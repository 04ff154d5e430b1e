package channel

import "testing"

func TestSpecRole(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want Role
	}{
		{"input from plug", Spec{Source: EndpointPlug, Dest: EndpointNone}, RoleInput},
		{"input from socket", Spec{Source: SocketEndpoint(2), Dest: EndpointNone}, RoleInput},
		{"output to plug", Spec{Source: EndpointNone, Dest: EndpointPlug}, RoleOutput},
		{"output to socket", Spec{Source: EndpointNone, Dest: SocketEndpoint(0)}, RoleOutput},
		{"bypass plug to socket", Spec{Source: EndpointPlug, Dest: SocketEndpoint(1)}, RoleBypass},
		{"bypass socket to socket", Spec{Source: SocketEndpoint(0), Dest: SocketEndpoint(1)}, RoleBypass},
		{"degenerate both none", Spec{Source: EndpointNone, Dest: EndpointNone}, RoleInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.spec.Role(); got != tt.want {
				t.Errorf("Role() = %v, want %v", got, tt.want)
			}
			// The classification invariants from the role definition.
			switch got := tt.spec.Role(); got {
			case RoleInput:
				if tt.spec.Dest != EndpointNone {
					t.Errorf("input channel has destination %v", tt.spec.Dest)
				}
			case RoleOutput:
				if tt.spec.Source != EndpointNone {
					t.Errorf("output channel has source %v", tt.spec.Source)
				}
			}
		})
	}
}

func TestLayoutSetForVariant(t *testing.T) {
	a := []Spec{{Name: "a"}}
	b := []Spec{{Name: "b0"}, {Name: "b1"}}

	tests := []struct {
		name    string
		set     LayoutSet
		variant int
		wantLen int
	}{
		{"declared variant", NewLayoutSet(a, b), 1, 2},
		{"variant zero", NewLayoutSet(a, b), 0, 1},
		{"beyond declared falls back to first", NewLayoutSet(a, b), 5, 1},
		{"single layout serves all variants", NewLayoutSet(b), 3, 2},
		{"no layouts means no channels", NewLayoutSet(), 0, 0},
		{"no layouts, high variant", NewLayoutSet(), 7, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.set.ForVariant(tt.variant)
			if len(got) != tt.wantLen {
				t.Errorf("ForVariant(%d) returned %d specs, want %d", tt.variant, len(got), tt.wantLen)
			}
		})
	}
}

func TestBoardCommitStaging(t *testing.T) {
	b := NewBoard(nil)
	mod := b.AddModule("tail", []Spec{
		{Name: "beat", Source: EndpointNone, Dest: EndpointPlug, Chemical: -1, Fallback: 0.5},
	})

	if got := b.Input(mod, 0); got != 0.5 {
		t.Fatalf("initial value = %v, want fallback 0.5", got)
	}

	b.Output(mod, 0, 0.9)
	if got := b.Input(mod, 0); got != 0.5 {
		t.Errorf("write visible before Commit: got %v", got)
	}

	b.Commit()
	if got := b.Input(mod, 0); got != 0.9 {
		t.Errorf("after Commit got %v, want 0.9", got)
	}
}

func TestBoardOutputClamps(t *testing.T) {
	b := NewBoard(nil)
	mod := b.AddModule("tail", []Spec{
		{Name: "beat", Source: EndpointNone, Dest: EndpointPlug, Chemical: -1},
	})
	b.Output(mod, 0, 1.7)
	b.Commit()
	if got := b.Input(mod, 0); got != 1 {
		t.Errorf("clamped value = %v, want 1", got)
	}
}

func TestBoardWriteViolations(t *testing.T) {
	b := NewBoard(nil)
	mod := b.AddModule("jaw", []Spec{
		{Name: "clench", Source: EndpointPlug, Dest: EndpointNone, Chemical: -1},
		{Name: "grip", Source: EndpointNone, Dest: EndpointPlug, Chemical: -1},
	})

	mustPanic := func(name string, f func()) {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			f()
		})
	}

	mustPanic("writing an input channel", func() { b.Output(mod, 0, 1) })
	mustPanic("writing beyond the layout", func() { b.Output(mod, 2, 1) })
	mustPanic("reading beyond the layout", func() { b.Input(mod, 9) })
}

func TestBoardChemicalDriver(t *testing.T) {
	chem := make([]float64, 3)
	b := NewBoard(chem)
	mod := b.AddModule("photophore", []Spec{
		{Name: "glow", Source: EndpointPlug, Dest: EndpointNone, Chemical: 1, Fallback: 0.2},
	})

	chem[1] = 0.75
	if got := b.Input(mod, 0); got != 0.75 {
		t.Errorf("chemical-driven input = %v, want 0.75", got)
	}
}

func TestBoardLinkDriver(t *testing.T) {
	b := NewBoard(nil)
	whisker := b.AddModule("whisker", []Spec{
		{Name: "alarm", Source: EndpointNone, Dest: EndpointPlug, Chemical: -1},
	})
	head := b.AddModule("head", []Spec{
		{Name: "alarm.in", Source: SocketEndpoint(0), Dest: EndpointNone, Chemical: -1, Fallback: 0.1},
	})
	b.SetDriver(head, 0, Driver{Kind: DriveLink, Module: whisker, Channel: 0})

	b.Output(whisker, 0, 0.8)
	b.Commit()
	if got := b.Input(head, 0); got != 0.8 {
		t.Errorf("linked input = %v, want 0.8", got)
	}
}

func TestBoardLinkThroughBypass(t *testing.T) {
	b := NewBoard(nil)
	// whisker output -> jaw bypass -> head input
	whisker := b.AddModule("whisker", []Spec{
		{Name: "alarm", Source: EndpointNone, Dest: EndpointPlug, Chemical: -1},
	})
	jaw := b.AddModule("jaw", []Spec{
		{Name: "alarm.pass", Source: SocketEndpoint(0), Dest: EndpointPlug, Chemical: -1},
	})
	head := b.AddModule("head", []Spec{
		{Name: "alarm.in", Source: SocketEndpoint(0), Dest: EndpointNone, Chemical: -1},
	})
	b.SetDriver(jaw, 0, Driver{Kind: DriveLink, Module: whisker, Channel: 0})
	b.SetDriver(head, 0, Driver{Kind: DriveLink, Module: jaw, Channel: 0})

	b.Output(whisker, 0, 0.6)
	b.Commit()
	if got := b.Input(head, 0); got != 0.6 {
		t.Errorf("value through bypass = %v, want 0.6", got)
	}
}
