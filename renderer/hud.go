package renderer

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDState is the mutable control surface the HUD edits in place.
type HUDState struct {
	Paused        bool
	Speed         float32 // simulation steps per update, 1..10
	ShowDepthCues bool
	ShowRings     bool

	// Status line fields, written by the game each frame.
	Creatures int
	Morsels   int
	SimTime   float64
	Selected  string
}

// DrawHUD renders the control panel and writes any interaction back
// into state.
func DrawHUD(state *HUDState) {
	panelX := float32(10)
	panelY := float32(10)
	panelW := float32(230)

	rl.DrawRectangle(int32(panelX)-4, int32(panelY)-4, int32(panelW)+8, 160, rl.NewColor(10, 16, 24, 200))

	rl.DrawText("Pelagia", int32(panelX), int32(panelY), 20, rl.RayWhite)
	panelY += 28

	label := "Pause"
	if state.Paused {
		label = "Resume"
	}
	if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 100, Height: 24}, label) {
		state.Paused = !state.Paused
	}
	panelY += 32

	rl.DrawText("Speed", int32(panelX), int32(panelY+2), 14, rl.Gray)
	state.Speed = gui.SliderBar(
		rl.Rectangle{X: panelX + 50, Y: panelY, Width: panelW - 100, Height: 18},
		"1", "10",
		state.Speed, 1, 10,
	)
	rl.DrawText(fmt.Sprintf("%dx", int(state.Speed)), int32(panelX+panelW-40), int32(panelY+2), 14, rl.RayWhite)
	panelY += 28

	state.ShowDepthCues = gui.CheckBox(
		rl.Rectangle{X: panelX, Y: panelY, Width: 16, Height: 16},
		"depth cues", state.ShowDepthCues)
	panelY += 24

	state.ShowRings = gui.CheckBox(
		rl.Rectangle{X: panelX, Y: panelY, Width: 16, Height: 16},
		"stimulus rings", state.ShowRings)
	panelY += 26

	rl.DrawText(fmt.Sprintf("t=%.0fs  creatures=%d  morsels=%d",
		state.SimTime, state.Creatures, state.Morsels),
		int32(panelX), int32(panelY), 12, rl.LightGray)
	panelY += 18

	if state.Selected != "" {
		rl.DrawText("following "+state.Selected+" (WASD steer, N sing, B flash)",
			int32(panelX), int32(panelY), 10, rl.SkyBlue)
	}
}
