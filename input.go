package tableau

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// wheelZoomStep scales the camera zoom per mouse-wheel notch.
const wheelZoomStep = 1.1

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) || ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) || ebiten.IsKeyPressed(ebiten.KeyAltLeft) || ebiten.IsKeyPressed(ebiten.KeyAltRight) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) || ebiten.IsKeyPressed(ebiten.KeyMetaLeft) || ebiten.IsKeyPressed(ebiten.KeyMetaRight) {
		mods |= ModMeta
	}
	return mods
}

// inputState tracks cursor motion between frames for camera drag deltas.
type inputState struct {
	lastX, lastY float64
	rightDown    bool
}

// ProcessInput polls ebiten's mouse state once per frame and feeds the
// stage's pointer state machine. The secondary button pans the camera
// directly (never selection); the wheel zooms around the cursor.
func (st *Stage) ProcessInput(dt float64) {
	if !st.initialized {
		return
	}
	mods := readModifiers()
	mx, my := ebiten.CursorPosition()
	sx, sy := float64(mx), float64(my)
	now := time.Now()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		st.PointerDown(sx, sy, MouseButtonLeft, mods, now)
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		st.PointerUp(sx, sy, MouseButtonLeft, mods, now)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		st.PointerDown(sx, sy, MouseButtonRight, mods, now)
		st.input.rightDown = true
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonRight) {
		st.PointerUp(sx, sy, MouseButtonRight, mods, now)
		st.input.rightDown = false
		st.camera.EndDrag()
	}

	if sx != st.input.lastX || sy != st.input.lastY {
		if st.input.rightDown {
			st.camera.Drag(sx-st.input.lastX, sy-st.input.lastY, dt)
		}
		st.PointerMove(sx, sy)
		st.input.lastX = sx
		st.input.lastY = sy
	}

	if _, wheelY := ebiten.Wheel(); wheelY != 0 {
		factor := wheelZoomStep
		if wheelY < 0 {
			factor = 1 / wheelZoomStep
		}
		st.camera.ZoomAround(st.camera.Zoom*factor, sx, sy)
	}
}
