package tableau

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the convenience game loop created by Run.
type RunConfig struct {
	Title  string
	Width  int
	Height int
}

// game adapts a Stage to ebiten.Game for Run.
type game struct {
	stage *Stage
	w, h  int
}

func (g *game) Update() error {
	dt := 1.0 / float64(ebiten.TPS())
	g.stage.ProcessInput(dt)
	g.stage.Update(dt)
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.stage.Draw(screen)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.w || outsideHeight != g.h {
		g.w, g.h = outsideWidth, outsideHeight
		g.stage.Resize(Rect{Width: float64(g.w), Height: float64(g.h)})
	}
	return g.w, g.h
}

// Run initializes the stage against a window of the given size and drives the
// frame loop until the window closes. For full control, implement
// [ebiten.Game] yourself and call [Stage.ProcessInput], [Stage.Update], and
// [Stage.Draw] directly.
func Run(stage *Stage, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = 1280
	}
	if cfg.Height <= 0 {
		cfg.Height = 800
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	stage.Init(Rect{Width: float64(cfg.Width), Height: float64(cfg.Height)})
	defer stage.Dispose()

	return ebiten.RunGame(&game{stage: stage, w: cfg.Width, h: cfg.Height})
}
