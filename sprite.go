package tableau

import (
	"image/color"
	"math"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// dimmedAlpha is the opacity of a card excluded by the active highlight set.
const dimmedAlpha = 0.3

// SceneNode is the capability a renderable canvas element exposes to the
// stage: a world position, axis-aligned bounds, draw order, visibility, and a
// draw call. CardSprite is the only implementation today; the interface keeps
// the stage independent of the concrete rendering backend.
type SceneNode interface {
	Position() Vec2
	Bounds() Rect
	ZIndex() int
	Visible() bool
	Draw(screen *ebiten.Image, view [6]float64)
}

// OverlayState is the deck/collection-derived overlay pushed into a sprite by
// Stage.UpdateOverlays.
type OverlayState struct {
	Quantity      int
	QuantityColor QuantityColor
	Highlighted   bool
}

// CardSprite renders one card: its current texture at the applied LOD tier,
// selection outline, quantity badge, and orientation. All state mutation goes
// through the owning Stage; the sprite never selects or repositions itself.
type CardSprite struct {
	Name string
	Slug string
	// Landscape cards render their portrait texture rotated 90 degrees with
	// width and height swapped. The rotation is purely presentational:
	// position and bounds stay axis-aligned in unrotated grid space.
	Landscape bool

	// X, Y is the live base position (grid-aligned except mid-drag).
	X, Y float64
	// StackOffset displaces rendering within a stacking bucket without
	// touching the base position.
	StackOffset Vec2

	selected bool
	hovered  bool
	overlay  OverlayState

	zIndex  int
	visible bool

	desired Level
	applied Level
	texture *ebiten.Image
}

// NewCardSprite creates a sprite for one card at its layout position. The
// lowest texture tier is requested on the next stage preload pass; nothing
// blocks here.
func NewCardSprite(entry CardLayoutEntry) *CardSprite {
	return &CardSprite{
		Name:      entry.Name,
		Slug:      Slugify(entry.Name),
		Landscape: entry.Landscape,
		X:         entry.Position.X,
		Y:         entry.Position.Y,
		visible:   true,
		desired:   LevelThumb,
		overlay:   OverlayState{Highlighted: true},
	}
}

// Position returns the live base position.
func (s *CardSprite) Position() Vec2 {
	return Vec2{X: s.X, Y: s.Y}
}

// Bounds returns the axis-aligned world footprint including the stacking
// offset. Landscape cards swap width and height.
func (s *CardSprite) Bounds() Rect {
	w, h := float64(CardWidth), float64(CardHeight)
	if s.Landscape {
		w, h = h, w
	}
	return Rect{X: s.X + s.StackOffset.X, Y: s.Y + s.StackOffset.Y, Width: w, Height: h}
}

// ZIndex returns the draw order; later stacking indices draw on top.
func (s *CardSprite) ZIndex() int {
	return s.zIndex
}

// SetZIndex sets the draw order.
func (s *CardSprite) SetZIndex(z int) {
	s.zIndex = z
}

// Visible reports whether the sprite survived the last culling pass.
func (s *CardSprite) Visible() bool {
	return s.visible
}

// SetVisible marks the sprite in or out of the culled set.
func (s *CardSprite) SetVisible(v bool) {
	s.visible = v
}

// Selected reports the selection outline state.
func (s *CardSprite) Selected() bool {
	return s.selected
}

// SetSelected toggles the selection outline. No other side effects.
func (s *CardSprite) SetSelected(sel bool) {
	s.selected = sel
}

// SetHovered marks the pointer hovering this sprite. Hover forces the full
// texture tier regardless of zoom; un-hover reverts on the next UpdateLOD.
func (s *CardSprite) SetHovered(h bool) {
	s.hovered = h
	if h {
		s.desired = LevelFull
	}
}

// SetState applies the deck-overlay state: quantity badge (hidden when
// quantity <= 0), badge color, and whole-card dimming when not highlighted.
func (s *CardSprite) SetState(st OverlayState) {
	s.overlay = st
}

// State returns the current overlay state.
func (s *CardSprite) State() OverlayState {
	return s.overlay
}

// UpdateLOD recomputes the desired texture tier for the given zoom. The
// applied texture only changes once a matching texture is available, so a
// pending tier switch never blanks the card.
func (s *CardSprite) UpdateLOD(zoom float64) {
	if s.hovered {
		s.desired = LevelFull
		return
	}
	s.desired = LevelForZoom(zoom)
}

// DesiredLevel returns the tier the sprite wants for its current state.
func (s *CardSprite) DesiredLevel() Level {
	return s.desired
}

// EnsureTexture applies the best resident texture for the desired tier,
// sync-only. Returns false when the desired tier is not yet resident and the
// stage should queue an asynchronous preload for this slug.
func (s *CardSprite) EnsureTexture(cache *TextureCache) bool {
	if s.texture != nil && s.applied == s.desired {
		return true
	}
	if img, ok := cache.GetSync(s.Slug, s.desired); ok {
		s.texture = img
		s.applied = s.desired
		return true
	}
	if s.texture == nil {
		// Show something rather than a hole while the first load runs.
		if img, ok := cache.GetSync(s.Slug, LevelThumb); ok {
			s.texture = img
			s.applied = LevelThumb
		}
	}
	return false
}

// DropTexture clears the transient texture reference, e.g. after an eviction
// pass. The cache owns the underlying image.
func (s *CardSprite) DropTexture() {
	s.texture = nil
}

// Draw renders the card through the camera view matrix. A nil texture renders
// nothing; the overlay still draws so a selected, loading card shows its
// outline.
func (s *CardSprite) Draw(screen *ebiten.Image, view [6]float64) {
	b := s.Bounds()
	sx, sy := transformPoint(view, b.X, b.Y)
	zoom := view[0]

	if s.texture != nil {
		tw := s.texture.Bounds().Dx()
		th := s.texture.Bounds().Dy()
		if tw > 0 && th > 0 {
			op := &ebiten.DrawImageOptions{}
			op.Filter = ebiten.FilterLinear
			op.GeoM.Scale(float64(CardWidth)/float64(tw), float64(CardHeight)/float64(th))
			if s.Landscape {
				op.GeoM.Rotate(math.Pi / 2)
				op.GeoM.Translate(CardHeight, 0)
			}
			op.GeoM.Scale(zoom, zoom)
			op.GeoM.Translate(sx, sy)
			if !s.overlay.Highlighted {
				op.ColorScale.ScaleAlpha(dimmedAlpha)
			}
			screen.DrawImage(s.texture, op)
		}
	}

	if s.selected {
		vector.StrokeRect(screen,
			float32(sx), float32(sy),
			float32(b.Width*zoom), float32(b.Height*zoom),
			3, color.RGBA{R: 0xff, G: 0xd7, B: 0x00, A: 0xff}, false)
	}

	if s.overlay.Quantity > 0 {
		s.drawQuantityBadge(screen, sx, sy)
	}
}

// drawQuantityBadge draws the quantity count in the card's top-left corner
// with the three-way overlay color behind it. The badge keeps a fixed screen
// size so it stays legible at any zoom.
func (s *CardSprite) drawQuantityBadge(screen *ebiten.Image, sx, sy float64) {
	var badge color.RGBA
	switch s.overlay.QuantityColor {
	case QuantityShortfall:
		badge = color.RGBA{R: 0xd0, G: 0x30, B: 0x30, A: 0xe0}
	case QuantityNoneOwned:
		badge = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xe0}
	default:
		badge = color.RGBA{R: 0x20, G: 0x60, B: 0x20, A: 0xe0}
	}
	const badgeSize = 20
	vector.DrawFilledRect(screen, float32(sx), float32(sy), badgeSize, badgeSize, badge, false)
	ebitenutil.DebugPrintAt(screen, strconv.Itoa(s.overlay.Quantity), int(sx)+4, int(sy)+2)
}
