package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"
)

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 10 {
		g.stepsPerUpdate++
	}

	// Tab cycles the followed creature, Escape releases it.
	if rl.IsKeyPressed(rl.KeyTab) {
		g.selectNextCreature()
	}
	if rl.IsKeyPressed(rl.KeyEscape) {
		g.selectedID = 0
	}

	g.handleSelectedCreature()
	g.handleCameraInput()
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h
	g.camera.Resize(w, h)
}

// selectNextCreature advances the followed creature in ID order.
func (g *Game) selectNextCreature() {
	if len(g.runtimes) == 0 {
		g.selectedID = 0
		return
	}
	for _, run := range g.runtimes {
		if run.org.ID > g.selectedID {
			g.selectedID = run.org.ID
			return
		}
	}
	g.selectedID = g.runtimes[0].org.ID
}

// handleSelectedCreature forwards steering and commands to the followed
// creature's camera-accepting module.
func (g *Game) handleSelectedCreature() {
	run, ok := g.creatures[g.selectedID]
	if !ok {
		return
	}

	var viewpoint *moduleRuntime
	for _, mr := range run.modules {
		if mr.comp.AcceptCamera() {
			viewpoint = mr
			break
		}
	}
	if viewpoint == nil {
		return
	}

	var dir r3.Vec
	throttle := 0.0
	steering := false
	if rl.IsKeyDown(rl.KeyA) {
		dir.X -= 1
		steering = true
	}
	if rl.IsKeyDown(rl.KeyD) {
		dir.X += 1
		steering = true
	}
	if rl.IsKeyDown(rl.KeyW) {
		dir.Y += 1
		throttle = 0.9
		steering = true
	}
	if rl.IsKeyDown(rl.KeyS) {
		dir.Y -= 1
		throttle = 0.1
		steering = true
	}
	if steering {
		viewpoint.comp.Steer(viewpoint.host, dir, throttle)
	}

	if rl.IsKeyPressed(rl.KeyN) {
		viewpoint.comp.Command(viewpoint.host, "sing", 0.8)
	}
	if rl.IsKeyPressed(rl.KeyB) {
		viewpoint.comp.Command(viewpoint.host, "flash", 1)
	}

	g.camera.Follow(float32(run.org.Pos.X), float32(run.org.Pos.Y))
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	// Pan speed scales inversely with zoom for natural feel
	panSpeed := float32(8.0)

	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, -panSpeed)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		g.camera.ZoomBy(1 + wheel*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}
