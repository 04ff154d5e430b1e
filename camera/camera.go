// Package camera provides a 2D camera system for viewport control.
package camera

// Camera controls the top-down viewport into the basin. The world has
// walls, so the camera clamps instead of wrapping: the visible area
// never extends past a world edge.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float32

	// Zoom level (1.0 = 1:1, 2.0 = 2x magnification)
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// World dimensions (for clamping)
	WorldW, WorldH float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera centered on the world with 1:1 zoom.
func New(viewportW, viewportH, worldW, worldH float32) *Camera {
	// At zoom Z the visible world area is (viewportW/Z, viewportH/Z);
	// the minimum zoom keeps that area inside the world.
	minZoom := viewportW / worldW
	if z := viewportH / worldH; z > minZoom {
		minZoom = z
	}

	c := &Camera{
		X:         worldW / 2,
		Y:         worldH / 2,
		Zoom:      1.0,
		ViewportW: viewportW,
		ViewportH: viewportH,
		WorldW:    worldW,
		WorldH:    worldH,
		MinZoom:   minZoom,
		MaxZoom:   8.0,
	}
	if c.Zoom < c.MinZoom {
		c.Zoom = c.MinZoom
	}
	c.clampCenter()
	return c
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportH/2 + (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportW/2)/c.Zoom
	wy = c.Y + (sy-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// IsVisible returns true if a circle at (wx, wy) with given radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wy, radius float32) bool {
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return absf(wx-c.X) <= halfW && absf(wy-c.Y) <= halfH
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.MinZoom = viewportW / c.WorldW
	if z := viewportH / c.WorldH; z > c.MinZoom {
		c.MinZoom = z
	}
	if c.Zoom < c.MinZoom {
		c.Zoom = c.MinZoom
	}
	c.clampCenter()
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	c.X += dx / c.Zoom
	c.Y += dy / c.Zoom
	c.clampCenter()
}

// Follow recenters the camera on a world position, keeping the view
// inside the world.
func (c *Camera) Follow(wx, wy float32) {
	c.X = wx
	c.Y = wy
	c.clampCenter()
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
	c.clampCenter()
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to the default position and zoom.
func (c *Camera) Reset() {
	c.X = c.WorldW / 2
	c.Y = c.WorldH / 2
	c.Zoom = c.MinZoom
	c.clampCenter()
}

// VisibleWorldBounds returns the world-coordinate bounds of the
// visible area as (minX, minY, maxX, maxY).
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)
	return c.X - halfW, c.Y - halfH, c.X + halfW, c.Y + halfH
}

// clampCenter keeps the visible area inside the world bounds.
func (c *Camera) clampCenter() {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)

	c.X = clamp(c.X, halfW, c.WorldW-halfW)
	c.Y = clamp(c.Y, halfH, c.WorldH-halfH)
}

// absf returns the absolute value of a float32.
func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
