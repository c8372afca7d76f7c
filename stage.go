package tableau

import (
	"context"
	"image/color"
	"math"
	"sort"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Interaction and culling tuning.
const (
	// StackOffsetUnit is the per-index displacement within a stacking bucket,
	// in world pixels.
	StackOffsetUnit = 30

	// boxDeadZone distinguishes a click from a box-select drag, in world units.
	boxDeadZone = 10

	// doubleClickWindow is the maximum gap between two clicks on the same
	// card for them to count as a double-click.
	doubleClickWindow = 300 * time.Millisecond

	// cullMargin expands the visible bounds before marking cards hidden so
	// cards at the fringe have textures before they scroll in.
	cullMargin = 300

	// cullInterval throttles culling recomputation; rapid viewport changes
	// coalesce into one pass.
	cullInterval = 50 * time.Millisecond

	// fitPadding is the world-space padding around the layout when the
	// camera fits to content after a rebuild.
	fitPadding = 120
)

// gestureMode is the pointer state machine's current mode. Modes are mutually
// exclusive per gesture.
type gestureMode uint8

const (
	modeIdle gestureMode = iota
	modeBoxSelecting
	modeDraggingCards
)

// lastClick remembers the previous pointer-down for double-click detection.
type lastClick struct {
	name   string
	button MouseButton
	at     time.Time
}

// Stage owns the full set of card sprites and orchestrates layout, culling,
// texture preloading, and the pointer-driven selection/drag/stacking state
// machine. All mutation of selection, stacking buckets, and card positions
// goes through the stage.
type Stage struct {
	// OnAddCard fires when a card is double-clicked with the primary button.
	// One-way notification to the external deck layer.
	OnAddCard func(name string)
	// OnRemoveCard fires when a card is double-clicked with the secondary button.
	OnRemoveCard func(name string)

	camera *Camera
	cache  *TextureCache

	cards      []Card
	sprites    map[string]*CardSprite
	drawOrder  []*CardSprite
	orderDirty bool

	selection  map[string]struct{}
	buckets    map[GridKey][]string // per cell, front-to-back; last = topmost
	cardBucket map[string]GridKey

	mode       gestureMode
	boxStart   Vec2
	boxRect    Rect
	dragOrigin Vec2
	dragStart  map[string]Vec2
	pressName  string

	prevClick lastClick
	hoverName string

	initialized  bool
	pendingCards []Card

	lastCull    time.Time
	cullPending bool

	input inputState

	ctx    context.Context
	cancel context.CancelFunc
}

// NewStage creates a stage bound to a texture cache. The stage is inert until
// Init is called with the host surface's viewport; operations in between are
// queued and applied on Init.
func NewStage(cache *TextureCache) *Stage {
	ctx, cancel := context.WithCancel(context.Background())
	return &Stage{
		cache:      cache,
		sprites:    make(map[string]*CardSprite),
		selection:  make(map[string]struct{}),
		buckets:    make(map[GridKey][]string),
		cardBucket: make(map[string]GridKey),
		dragStart:  make(map[string]Vec2),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Init attaches the stage to a ready host surface. A card list supplied
// before Init is applied now.
func (st *Stage) Init(viewport Rect) {
	if st.initialized {
		st.camera.SetViewport(viewport)
		return
	}
	st.camera = NewCamera(viewport)
	st.camera.OnViewportChange = func(Rect) { st.requestCull() }
	st.camera.OnZoomChange = func(zoom float64) { st.refreshLOD(zoom) }
	st.initialized = true

	if st.pendingCards != nil {
		cards := st.pendingCards
		st.pendingCards = nil
		st.SetCards(cards)
	}
}

// Camera returns the stage's camera, or nil before Init.
func (st *Stage) Camera() *Camera {
	return st.camera
}

// Resize updates the host viewport. Safe before Init.
func (st *Stage) Resize(viewport Rect) {
	if st.camera != nil {
		st.camera.SetViewport(viewport)
	}
}

// Dispose tears the stage down: pending culls are dropped, in-flight loads
// are cancelled, and all cached textures released.
func (st *Stage) Dispose() {
	st.cancel()
	st.cullPending = false
	st.sprites = make(map[string]*CardSprite)
	st.drawOrder = nil
	st.selection = make(map[string]struct{})
	st.buckets = make(map[GridKey][]string)
	st.cardBucket = make(map[string]GridKey)
	st.cache.Clear()
}

// SetCards replaces the entire card list, recomputing the layout wholesale
// and rebuilding every sprite. Called before Init, the list is queued and
// applied once the surface is ready. No stale per-card state survives.
func (st *Stage) SetCards(cards []Card) {
	if !st.initialized {
		st.pendingCards = cards
		return
	}
	st.cards = cards

	st.sprites = make(map[string]*CardSprite, len(cards))
	st.drawOrder = st.drawOrder[:0]
	st.selection = make(map[string]struct{})
	st.buckets = make(map[GridKey][]string)
	st.cardBucket = make(map[string]GridKey)
	st.mode = modeIdle
	st.hoverName = ""

	entries := CalculateLayout(cards)
	for _, e := range entries {
		sp := NewCardSprite(e)
		st.sprites[e.Name] = sp
		st.drawOrder = append(st.drawOrder, sp)
		key := PixelsToGrid(e.Position.X, e.Position.Y)
		st.buckets[key] = append(st.buckets[key], e.Name)
		st.cardBucket[e.Name] = key
	}
	for key := range st.buckets {
		st.rebuildBucket(key)
	}
	st.orderDirty = true

	logger().Info("layout rebuilt", "cards", len(cards), "entries", len(entries))

	st.camera.FitToContent(LayoutBounds(entries), fitPadding)
	st.cullNow()
}

// Sprite returns the sprite for a card name, or nil.
func (st *Stage) Sprite(name string) *CardSprite {
	return st.sprites[name]
}

// Selection returns the selected card names in no particular order.
func (st *Stage) Selection() []string {
	out := make([]string, 0, len(st.selection))
	for name := range st.selection {
		out = append(out, name)
	}
	return out
}

// IsSelected reports whether a card is in the selection set.
func (st *Stage) IsSelected(name string) bool {
	_, ok := st.selection[name]
	return ok
}

func (st *Stage) setSelected(name string, sel bool) {
	sp := st.sprites[name]
	if sp == nil {
		return
	}
	if sel {
		st.selection[name] = struct{}{}
	} else {
		delete(st.selection, name)
	}
	sp.SetSelected(sel)
}

func (st *Stage) clearSelection() {
	for name := range st.selection {
		if sp := st.sprites[name]; sp != nil {
			sp.SetSelected(false)
		}
		delete(st.selection, name)
	}
}

// --- Stacking ---

// rebuildBucket recomputes stacking offsets and z-order for one grid cell.
// A sole card sits at its exact base position. Larger buckets fan out
// symmetrically around the base position: portrait stacks grow downward
// (positive Y, revealing each card's name bar above the next), landscape
// stacks grow upward.
func (st *Stage) rebuildBucket(key GridKey) {
	names := st.buckets[key]
	if len(names) == 0 {
		delete(st.buckets, key)
		return
	}
	total := float64(len(names)-1) * StackOffsetUnit
	for i, name := range names {
		sp := st.sprites[name]
		if sp == nil {
			continue
		}
		offset := 0.0
		if len(names) > 1 {
			offset = float64(i)*StackOffsetUnit - total/2
			if sp.Landscape {
				offset = -offset
			}
		}
		sp.StackOffset = Vec2{Y: offset}
		sp.SetZIndex(i)
	}
	st.orderDirty = true
}

// bringToFront moves a card to the top of its stacking bucket and reapplies
// offsets and z-order. No-op for buckets of one.
func (st *Stage) bringToFront(name string) {
	key, ok := st.cardBucket[name]
	if !ok {
		return
	}
	names := st.buckets[key]
	if len(names) < 2 {
		return
	}
	for i, n := range names {
		if n == name {
			names = append(names[:i], names[i+1:]...)
			names = append(names, name)
			st.buckets[key] = names
			st.rebuildBucket(key)
			return
		}
	}
}

// moveToBucket reassigns a card from its current bucket to the cell that
// contains (x, y), appending it at the top, and rebuilds both buckets. A
// same-cell move is a no-op; surfacing is the caller's call (bringToFront).
func (st *Stage) moveToBucket(name string, x, y float64) {
	newKey := PixelsToGrid(x, y)
	oldKey, had := st.cardBucket[name]
	if had && oldKey == newKey {
		return
	}
	if had {
		names := st.buckets[oldKey]
		for i, n := range names {
			if n == name {
				st.buckets[oldKey] = append(names[:i], names[i+1:]...)
				break
			}
		}
		st.rebuildBucket(oldKey)
	}
	st.buckets[newKey] = append(st.buckets[newKey], name)
	st.cardBucket[name] = newKey
	st.rebuildBucket(newKey)
}

// BucketSize returns the number of cards stacked in the cell at (x, y).
func (st *Stage) BucketSize(x, y float64) int {
	return len(st.buckets[PixelsToGrid(x, y)])
}

// --- Hit testing ---

// CardAtPoint returns the topmost visible card whose bounds contain the world
// point, or nil.
func (st *Stage) CardAtPoint(wx, wy float64) *CardSprite {
	order := st.sortedDrawOrder()
	for i := len(order) - 1; i >= 0; i-- {
		sp := order[i]
		if sp.Visible() && sp.Bounds().Contains(wx, wy) {
			return sp
		}
	}
	return nil
}

// sortedDrawOrder returns sprites sorted back-to-front by z-index. The sort
// is stable so cards in distinct buckets keep layout order.
func (st *Stage) sortedDrawOrder() []*CardSprite {
	if st.orderDirty {
		sort.SliceStable(st.drawOrder, func(i, j int) bool {
			return st.drawOrder[i].ZIndex() < st.drawOrder[j].ZIndex()
		})
		st.orderDirty = false
	}
	return st.drawOrder
}

// --- Pointer state machine ---

// PointerDown feeds a pointer press into the gesture state machine.
// Coordinates are screen-space; the stage converts through the camera.
func (st *Stage) PointerDown(sx, sy float64, button MouseButton, mods KeyModifiers, at time.Time) {
	if !st.initialized || st.mode != modeIdle {
		return
	}
	wx, wy := st.camera.ScreenToWorld(sx, sy)
	hit := st.CardAtPoint(wx, wy)

	// Double-click detection happens before any mode/selection change.
	if hit != nil && hit.Name == st.prevClick.name && button == st.prevClick.button &&
		at.Sub(st.prevClick.at) <= doubleClickWindow {
		st.prevClick = lastClick{}
		switch button {
		case MouseButtonLeft:
			if st.OnAddCard != nil {
				st.OnAddCard(hit.Name)
			}
		case MouseButtonRight:
			if st.OnRemoveCard != nil {
				st.OnRemoveCard(hit.Name)
			}
		}
		return
	}
	if hit != nil {
		st.prevClick = lastClick{name: hit.Name, button: button, at: at}
	} else {
		st.prevClick = lastClick{}
	}

	// Right button never starts selection or drag; the camera owns it.
	if button == MouseButtonRight {
		return
	}

	// Shift-click toggles membership; a plain click, not a press-drag.
	if mods&ModShift != 0 {
		if hit != nil {
			st.setSelected(hit.Name, !st.IsSelected(hit.Name))
		}
		return
	}

	// Ctrl/Cmd forces box selection regardless of what's under the pointer.
	if mods&(ModCtrl|ModMeta) != 0 {
		st.mode = modeBoxSelecting
		st.boxStart = Vec2{X: wx, Y: wy}
		st.boxRect = Rect{X: wx, Y: wy}
		st.pressName = ""
		st.camera.PauseDrag()
		return
	}

	if hit != nil && st.IsSelected(hit.Name) {
		// Pressing a selected card starts dragging the whole selection.
		st.mode = modeDraggingCards
		st.dragOrigin = Vec2{X: wx, Y: wy}
		st.dragStart = make(map[string]Vec2, len(st.selection))
		for name := range st.selection {
			if sp := st.sprites[name]; sp != nil {
				st.dragStart[name] = Vec2{X: sp.X, Y: sp.Y}
			}
		}
		st.pressName = hit.Name
		st.camera.PauseDrag()
		return
	}

	// Empty space or an unselected card: restart the selection and arm a box.
	st.clearSelection()
	st.pressName = ""
	if hit != nil {
		st.setSelected(hit.Name, true)
		st.pressName = hit.Name
	}
	st.mode = modeBoxSelecting
	st.boxStart = Vec2{X: wx, Y: wy}
	st.boxRect = Rect{X: wx, Y: wy}
	st.camera.PauseDrag()
}

// PointerMove feeds pointer motion into the gesture state machine and tracks
// hover when idle.
func (st *Stage) PointerMove(sx, sy float64) {
	if !st.initialized {
		return
	}
	wx, wy := st.camera.ScreenToWorld(sx, sy)

	switch st.mode {
	case modeBoxSelecting:
		st.boxRect = rectBetween(st.boxStart, Vec2{X: wx, Y: wy})
	case modeDraggingCards:
		dx := wx - st.dragOrigin.X
		dy := wy - st.dragOrigin.Y
		for name, start := range st.dragStart {
			if sp := st.sprites[name]; sp != nil {
				sp.X = start.X + dx
				sp.Y = start.Y + dy
			}
		}
	default:
		st.updateHover(wx, wy)
	}
}

// PointerUp feeds a pointer release into the gesture state machine. Only the
// primary button completes a gesture; releasing another button mid-gesture,
// or releasing with no matching press, is a no-op.
func (st *Stage) PointerUp(sx, sy float64, button MouseButton, mods KeyModifiers, at time.Time) {
	if !st.initialized || button != MouseButtonLeft {
		return
	}
	wx, wy := st.camera.ScreenToWorld(sx, sy)

	switch st.mode {
	case modeBoxSelecting:
		st.boxRect = rectBetween(st.boxStart, Vec2{X: wx, Y: wy})
		if st.boxRect.Width > boxDeadZone || st.boxRect.Height > boxDeadZone {
			// A real box: replace the selection with exactly the intersected cards.
			st.clearSelection()
			for _, sp := range st.drawOrder {
				if sp.Bounds().Intersects(st.boxRect) {
					st.setSelected(sp.Name, true)
				}
			}
		} else if st.pressName != "" {
			// A plain click; selection was applied at pointer-down. A click on
			// a stacked card surfaces it.
			st.bringToFront(st.pressName)
		}
		st.camera.ResumeDrag()
		st.mode = modeIdle

	case modeDraggingCards:
		for name := range st.dragStart {
			sp := st.sprites[name]
			if sp == nil {
				continue
			}
			snapped := SnapToGrid(sp.X, sp.Y)
			sp.X = snapped.X
			sp.Y = snapped.Y
			st.moveToBucket(name, snapped.X, snapped.Y)
		}
		// Only the pressed card surfaces; co-selected cards that stayed in
		// their cell keep their stack order.
		if st.pressName != "" {
			st.bringToFront(st.pressName)
		}
		st.dragStart = make(map[string]Vec2)
		st.camera.ResumeDrag()
		st.mode = modeIdle
		st.requestCull()
	}
}

// rectBetween normalizes two corner points into a Rect.
func rectBetween(a, b Vec2) Rect {
	return Rect{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(b.X - a.X),
		Height: math.Abs(b.Y - a.Y),
	}
}

// updateHover tracks the card under an idle pointer. Hover forces the full
// texture tier; un-hover reverts to the zoom-appropriate tier.
func (st *Stage) updateHover(wx, wy float64) {
	var name string
	hit := st.CardAtPoint(wx, wy)
	if hit != nil {
		name = hit.Name
	}
	if name == st.hoverName {
		return
	}
	if prev := st.sprites[st.hoverName]; prev != nil {
		prev.SetHovered(false)
		prev.UpdateLOD(st.camera.Zoom)
	}
	st.hoverName = name
	if hit != nil {
		hit.SetHovered(true)
		st.cache.Preload(st.ctx, []string{hit.Slug}, LevelFull)
	}
}

// --- Deck overlays ---

// UpdateOverlays recomputes every card's quantity badge from the active deck
// and collection. Quantity is the combined mainboard+sideboard+avatar count;
// the maybeboard never counts. With a non-empty collection loaded, the badge
// colors by comparing deck count against owned count. Names unknown to the
// scene are skipped. Idempotent pull-based recompute, not a diff.
func (st *Stage) UpdateOverlays(deck Deck, collection []DeckEntry) {
	counts := make(map[string]int)
	for _, board := range [][]DeckEntry{deck.Mainboard, deck.Sideboard, deck.Avatar} {
		for _, e := range board {
			counts[e.Name] += e.Quantity
		}
	}
	owned := make(map[string]int, len(collection))
	for _, e := range collection {
		owned[e.Name] += e.Quantity
	}

	for name, sp := range st.sprites {
		qty := counts[name]
		colorFor := QuantityDefault
		if len(collection) > 0 {
			switch {
			case owned[name] == 0:
				colorFor = QuantityNoneOwned
			case qty > owned[name]:
				colorFor = QuantityShortfall
			}
		}
		sp.SetState(OverlayState{
			Quantity:      qty,
			QuantityColor: colorFor,
			Highlighted:   true,
		})
	}
}

// --- Culling & LOD ---

// requestCull schedules a culling pass, coalescing rapid viewport changes
// into one recompute per cullInterval.
func (st *Stage) requestCull() {
	if !st.initialized {
		return
	}
	if time.Since(st.lastCull) >= cullInterval {
		st.cullNow()
		return
	}
	st.cullPending = true
}

// cullNow marks each sprite visible or hidden against the margin-expanded
// camera bounds and hands newly-visible cards to the texture preloader.
func (st *Stage) cullNow() {
	st.lastCull = time.Now()
	st.cullPending = false

	bounds := st.camera.VisibleBounds().Expand(cullMargin)
	level := LevelForZoom(st.camera.Zoom)

	var newlyVisible []string
	visible := 0
	for _, sp := range st.drawOrder {
		vis := sp.Bounds().Intersects(bounds)
		if vis {
			visible++
			if !sp.Visible() {
				newlyVisible = append(newlyVisible, sp.Slug)
			}
		}
		sp.SetVisible(vis)
	}
	if len(newlyVisible) > 0 {
		st.cache.Preload(st.ctx, newlyVisible, level)
	}
	logger().Debug("culling pass", "visible", visible, "total", len(st.drawOrder), "preload", len(newlyVisible))
}

// refreshLOD retargets every visible sprite's texture tier after a zoom
// change and queues loads for tiers not yet resident. Sprites preload at
// their own desired tier, so a hovered card keeps requesting the full tier.
func (st *Stage) refreshLOD(zoom float64) {
	var missing map[Level][]string
	for _, sp := range st.drawOrder {
		if !sp.Visible() {
			continue
		}
		sp.UpdateLOD(zoom)
		if !sp.EnsureTexture(st.cache) {
			if missing == nil {
				missing = make(map[Level][]string)
			}
			missing[sp.DesiredLevel()] = append(missing[sp.DesiredLevel()], sp.Slug)
		}
	}
	for level, slugs := range missing {
		st.cache.Preload(st.ctx, slugs, level)
	}
}

// --- Frame loop ---

// Update advances the camera and throttled culling by dt seconds and applies
// freshly-loaded textures to visible sprites. Pointer events are fed
// separately (see input.go for the ebiten adapter).
func (st *Stage) Update(dt float64) {
	if !st.initialized {
		return
	}
	st.camera.Update(dt)

	if st.cullPending && time.Since(st.lastCull) >= cullInterval {
		st.cullNow()
	}

	var missing map[Level][]string
	for _, sp := range st.drawOrder {
		if !sp.Visible() {
			continue
		}
		if !sp.EnsureTexture(st.cache) {
			if missing == nil {
				missing = make(map[Level][]string)
			}
			missing[sp.DesiredLevel()] = append(missing[sp.DesiredLevel()], sp.Slug)
		}
	}
	for level, slugs := range missing {
		st.cache.Preload(st.ctx, slugs, level)
	}
}

// Draw renders all visible sprites back-to-front plus the box-select
// rectangle when one is being drawn.
func (st *Stage) Draw(screen *ebiten.Image) {
	if !st.initialized {
		return
	}
	view := st.camera.computeViewMatrix()
	for _, sp := range st.sortedDrawOrder() {
		if sp.Visible() {
			sp.Draw(screen, view)
		}
	}

	if st.mode == modeBoxSelecting {
		x0, y0 := transformPoint(view, st.boxRect.X, st.boxRect.Y)
		x1, y1 := transformPoint(view, st.boxRect.X+st.boxRect.Width, st.boxRect.Y+st.boxRect.Height)
		vector.StrokeRect(screen, float32(x0), float32(y0), float32(x1-x0), float32(y1-y0),
			1, color.RGBA{R: 0x66, G: 0xaa, B: 0xff, A: 0xff}, false)
	}
}

// EvictOffscreen releases cached textures for cards outside the current
// culling set. Call sparingly, e.g. on a memory pressure signal.
func (st *Stage) EvictOffscreen() {
	var active []string
	for _, sp := range st.drawOrder {
		if sp.Visible() {
			active = append(active, sp.Slug)
		}
	}
	st.cache.Evict(active)
	for _, sp := range st.drawOrder {
		if !sp.Visible() {
			sp.DropTexture()
		}
	}
}
