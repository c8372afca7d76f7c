package tableau

// Level is a texture quality tier selected by the current zoom.
type Level uint8

const (
	LevelThumb  Level = iota // smallest tier; distant overview zooms
	LevelMedium              // mid tier
	LevelFull                // full-resolution card scan
)

// String returns the tier name used in asset paths and logs.
func (l Level) String() string {
	switch l {
	case LevelThumb:
		return "thumb"
	case LevelMedium:
		return "medium"
	default:
		return "full"
	}
}

// Zoom thresholds for tier selection. Below ZoomThumbMax the thumbnail tier
// suffices; at or above ZoomFullMin the full scan is wanted.
const (
	ZoomThumbMax = 0.4
	ZoomFullMin  = 1.0
)

// LevelForZoom maps a camera zoom factor to the texture tier worth showing at
// that magnification.
func LevelForZoom(zoom float64) Level {
	switch {
	case zoom < ZoomThumbMax:
		return LevelThumb
	case zoom < ZoomFullMin:
		return LevelMedium
	default:
		return LevelFull
	}
}
