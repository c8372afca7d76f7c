package tableau

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Camera animation and physics constants.
const (
	// DefaultMinZoom and DefaultMaxZoom bound the zoom clamp range.
	DefaultMinZoom = 0.1
	DefaultMaxZoom = 3.0

	// cameraTweenDuration is the fixed duration of animated pan/zoom/fit
	// transitions, in seconds.
	cameraTweenDuration = 0.35

	// panFriction is the per-second decay factor applied to inertial pan
	// velocity after a drag release.
	panFriction = 6.0

	// inertiaCutoff stops inertial panning once velocity drops below this
	// magnitude in world units per second.
	inertiaCutoff = 4.0
)

// panAnim holds active tweens for an animated camera transition. A new
// transition request replaces the whole struct, abandoning the old one.
type panAnim struct {
	tweenX   *gween.Tween
	tweenY   *gween.Tween
	tweenZ   *gween.Tween // nil when only position animates
	doneX    bool
	doneY    bool
	doneZoom bool
}

// Camera maintains the world-to-screen transform for the card canvas:
// pan, clamped zoom, inertial deceleration, and animated transitions.
// The camera centers on (X, Y) in world space.
type Camera struct {
	// X and Y are the world-space position the camera centers on.
	X, Y float64
	// Zoom is the scale factor (1.0 = no zoom, >1 = zoom in, <1 = zoom out).
	Zoom float64
	// Viewport is the screen-space rectangle this camera renders into.
	Viewport Rect
	// MinZoom and MaxZoom clamp every zoom assignment, animated or not.
	MinZoom, MaxZoom float64

	// OnZoomChange fires when Zoom actually changes (equality-gated).
	OnZoomChange func(zoom float64)
	// OnViewportChange fires when the visible world rect actually changes,
	// whether from panning, zooming, or a viewport resize (equality-gated).
	OnViewportChange func(bounds Rect)

	anim *panAnim

	// Inertial pan state.
	velX, velY float64
	dragging   bool
	dragPaused bool

	viewMatrix    [6]float64
	invViewMatrix [6]float64
	dirty         bool

	lastZoom   float64
	lastBounds Rect
}

// NewCamera creates a camera with default zoom limits and the given viewport.
func NewCamera(viewport Rect) *Camera {
	c := &Camera{
		Zoom:     1.0,
		Viewport: viewport,
		MinZoom:  DefaultMinZoom,
		MaxZoom:  DefaultMaxZoom,
		dirty:    true,
	}
	c.lastZoom = c.Zoom
	c.lastBounds = c.VisibleBounds()
	return c
}

// SetViewport updates the screen-space viewport, keeping the world center
// fixed. Call on window resize.
func (c *Camera) SetViewport(viewport Rect) {
	if c.Viewport == viewport {
		return
	}
	c.Viewport = viewport
	c.dirty = true
}

// clampZoom restricts z to [MinZoom, MaxZoom].
func (c *Camera) clampZoom(z float64) float64 {
	return math.Max(c.MinZoom, math.Min(z, c.MaxZoom))
}

// PanTo moves the camera center to (x, y), snapping immediately or easing
// there over the fixed transition duration. An animated request supersedes
// any in-flight transition.
func (c *Camera) PanTo(x, y float64, animate bool) {
	c.stopInertia()
	if !animate {
		c.anim = nil
		c.X = x
		c.Y = y
		c.dirty = true
		return
	}
	c.anim = &panAnim{
		tweenX: gween.New(float32(c.X), float32(x), cameraTweenDuration, ease.OutQuad),
		tweenY: gween.New(float32(c.Y), float32(y), cameraTweenDuration, ease.OutQuad),
	}
}

// SetZoom sets the zoom factor, clamped to [MinZoom, MaxZoom], snapping
// immediately or easing over the fixed transition duration. The world point
// at the viewport center stays fixed.
func (c *Camera) SetZoom(zoom float64, animate bool) {
	zoom = c.clampZoom(zoom)
	c.stopInertia()
	if !animate {
		c.anim = nil
		c.Zoom = zoom
		c.dirty = true
		return
	}
	c.anim = &panAnim{
		tweenX: gween.New(float32(c.X), float32(c.X), cameraTweenDuration, ease.OutQuad),
		tweenY: gween.New(float32(c.Y), float32(c.Y), cameraTweenDuration, ease.OutQuad),
		tweenZ: gween.New(float32(c.Zoom), float32(zoom), cameraTweenDuration, ease.OutQuad),
	}
}

// ZoomAround sets the zoom factor immediately while keeping the world point
// under the given screen position stationary. Used for wheel zoom-to-cursor.
func (c *Camera) ZoomAround(zoom, sx, sy float64) {
	zoom = c.clampZoom(zoom)
	if zoom == c.Zoom {
		return
	}
	wx, wy := c.ScreenToWorld(sx, sy)
	c.anim = nil
	c.Zoom = zoom
	c.dirty = true
	// Re-center so (wx, wy) maps back to (sx, sy) at the new zoom.
	nwx, nwy := c.ScreenToWorld(sx, sy)
	c.X += wx - nwx
	c.Y += wy - nwy
	c.dirty = true
}

// FitToContent animates the camera so bounds (plus padding on every side)
// fits within the viewport on both axes, centered on the bounds' centroid.
// The resulting zoom is clamped to [MinZoom, MaxZoom].
func (c *Camera) FitToContent(bounds Rect, padding float64) {
	padded := bounds.Expand(padding)
	targetZoom := c.Zoom
	if padded.Width > 0 && padded.Height > 0 {
		zx := c.Viewport.Width / padded.Width
		zy := c.Viewport.Height / padded.Height
		targetZoom = c.clampZoom(math.Min(zx, zy))
	}
	cx := padded.X + padded.Width/2
	cy := padded.Y + padded.Height/2

	c.stopInertia()
	c.anim = &panAnim{
		tweenX: gween.New(float32(c.X), float32(cx), cameraTweenDuration, ease.OutQuad),
		tweenY: gween.New(float32(c.Y), float32(cy), cameraTweenDuration, ease.OutQuad),
		tweenZ: gween.New(float32(c.Zoom), float32(targetZoom), cameraTweenDuration, ease.OutQuad),
	}
}

// --- Drag panning ---

// PauseDrag suspends camera pan-on-drag so the scene controller can claim
// pointer-drag semantics for card dragging or box selection.
func (c *Camera) PauseDrag() {
	c.dragPaused = true
	c.dragging = false
}

// ResumeDrag re-enables camera pan-on-drag.
func (c *Camera) ResumeDrag() {
	c.dragPaused = false
}

// DragPaused reports whether pan-on-drag is currently suspended.
func (c *Camera) DragPaused() bool {
	return c.dragPaused
}

// Drag pans the camera by a screen-space pointer delta. dt is the frame time
// used to derive the release velocity for inertia. No-op while paused.
func (c *Camera) Drag(dxScreen, dyScreen, dt float64) {
	if c.dragPaused {
		return
	}
	c.anim = nil
	c.dragging = true
	dx := -dxScreen / c.Zoom
	dy := -dyScreen / c.Zoom
	c.X += dx
	c.Y += dy
	c.dirty = true
	if dt > 0 {
		c.velX = dx / dt
		c.velY = dy / dt
	}
}

// EndDrag releases a camera drag, letting the accumulated velocity decay as
// inertial panning.
func (c *Camera) EndDrag() {
	c.dragging = false
}

func (c *Camera) stopInertia() {
	c.velX = 0
	c.velY = 0
	c.dragging = false
}

// Update advances animations and inertia by dt seconds and fires the
// equality-gated change notifications. Called once per frame by the Stage.
func (c *Camera) Update(dt float64) {
	if c.anim != nil {
		a := c.anim
		if !a.doneX {
			val, done := a.tweenX.Update(float32(dt))
			c.X = float64(val)
			a.doneX = done
		}
		if !a.doneY {
			val, done := a.tweenY.Update(float32(dt))
			c.Y = float64(val)
			a.doneY = done
		}
		if a.tweenZ != nil && !a.doneZoom {
			val, done := a.tweenZ.Update(float32(dt))
			c.Zoom = c.clampZoom(float64(val))
			a.doneZoom = done
		}
		c.dirty = true
		if a.doneX && a.doneY && (a.tweenZ == nil || a.doneZoom) {
			// Only clear if a new request hasn't replaced us mid-update.
			if c.anim == a {
				c.anim = nil
			}
		}
	} else if !c.dragging && (c.velX != 0 || c.velY != 0) {
		// Inertial deceleration.
		decay := math.Exp(-panFriction * dt)
		c.velX *= decay
		c.velY *= decay
		if math.Hypot(c.velX, c.velY) < inertiaCutoff {
			c.velX = 0
			c.velY = 0
		} else {
			c.X += c.velX * dt
			c.Y += c.velY * dt
			c.dirty = true
		}
	}

	c.notifyChanges()
}

// notifyChanges fires OnZoomChange/OnViewportChange when the underlying
// values actually changed since the last notification.
func (c *Camera) notifyChanges() {
	if c.Zoom != c.lastZoom {
		c.lastZoom = c.Zoom
		if c.OnZoomChange != nil {
			c.OnZoomChange(c.Zoom)
		}
	}
	bounds := c.VisibleBounds()
	if bounds != c.lastBounds {
		c.lastBounds = bounds
		if c.OnViewportChange != nil {
			c.OnViewportChange(bounds)
		}
	}
}

// computeViewMatrix recomputes the cached view matrix if dirty.
//
// viewMatrix = Translate(cx, cy) * Scale(zoom) * Translate(-X, -Y)
// where cx, cy = viewport center.
func (c *Camera) computeViewMatrix() [6]float64 {
	if !c.dirty {
		return c.viewMatrix
	}
	c.dirty = false

	cx := c.Viewport.X + c.Viewport.Width/2
	cy := c.Viewport.Y + c.Viewport.Height/2
	z := c.Zoom

	c.viewMatrix = [6]float64{z, 0, 0, z, cx - z*c.X, cy - z*c.Y}
	c.invViewMatrix = invertAffine(c.viewMatrix)
	return c.viewMatrix
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	c.computeViewMatrix()
	sx, sy = transformPoint(c.viewMatrix, wx, wy)
	return
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	c.computeViewMatrix()
	wx, wy = transformPoint(c.invViewMatrix, sx, sy)
	return
}

// VisibleBounds returns the world-space rectangle currently visible through
// the viewport. Stays correct through SetViewport resizes.
func (c *Camera) VisibleBounds() Rect {
	c.computeViewMatrix()
	x0, y0 := transformPoint(c.invViewMatrix, c.Viewport.X, c.Viewport.Y)
	x1, y1 := transformPoint(c.invViewMatrix, c.Viewport.X+c.Viewport.Width, c.Viewport.Y+c.Viewport.Height)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Animating reports whether an eased transition is in flight.
func (c *Camera) Animating() bool {
	return c.anim != nil
}
