// Package renderer draws the debug view: a top-down projection of the
// basin with depth-shaded water, the seabed relief, and the HUD.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pelagialabs/pelagia/camera"
	"github.com/pelagialabs/pelagia/systems"
)

// WaterLayer renders the water column and seabed relief as a coarse
// shaded tile grid. Tiles are sampled from the terrain height field
// once and reshaded per frame, which is cheap enough that no GPU pass
// is needed for a debug view.
type WaterLayer struct {
	terrain *systems.Terrain
	width   float64
	height  float64
	depth   float64

	tile  float64
	cols  int
	rows  int
	floor []float64 // cached floor heights, row-major
}

// NewWaterLayer samples the seabed for a basin of the given extents.
func NewWaterLayer(terrain *systems.Terrain, width, height, depth float64) *WaterLayer {
	const tile = 8.0
	cols := int(width/tile) + 1
	rows := int(height/tile) + 1

	w := &WaterLayer{
		terrain: terrain,
		width:   width,
		height:  height,
		depth:   depth,
		tile:    tile,
		cols:    cols,
		rows:    rows,
		floor:   make([]float64, cols*rows),
	}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			x := (float64(col) + 0.5) * tile
			y := (float64(row) + 0.5) * tile
			w.floor[row*cols+col] = terrain.Floor(x, y)
		}
	}
	return w
}

// Draw paints the visible part of the basin: deep water is dark,
// shallow rock shades toward sand.
func (w *WaterLayer) Draw(cam *camera.Camera) {
	rl.ClearBackground(rl.NewColor(6, 18, 34, 255))

	minX, minY, maxX, maxY := cam.VisibleWorldBounds()
	minCol := clampInt(int(float64(minX)/w.tile), 0, w.cols-1)
	maxCol := clampInt(int(float64(maxX)/w.tile)+1, 0, w.cols-1)
	minRow := clampInt(int(float64(minY)/w.tile), 0, w.rows-1)
	maxRow := clampInt(int(float64(maxY)/w.tile)+1, 0, w.rows-1)

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			floor := w.floor[row*w.cols+col]
			// Column depth above the floor controls the blue; tall rock
			// shows through as grey-brown.
			t := floor / w.depth
			if t < 0 {
				t = 0
			} else if t > 1 {
				t = 1
			}
			c := rl.NewColor(
				uint8(8+60*t),
				uint8(24+48*t),
				uint8(46+30*t),
				255,
			)
			if t > 0.16 {
				c = rl.NewColor(uint8(70+90*t), uint8(64+70*t), uint8(52+40*t), 255)
			}

			sx, sy := cam.WorldToScreen(float32(float64(col)*w.tile), float32(float64(row)*w.tile))
			size := float32(w.tile) * cam.Zoom
			rl.DrawRectangle(int32(sx), int32(sy), int32(size)+1, int32(size)+1, c)
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
