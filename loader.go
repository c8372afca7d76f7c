package tableau

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
)

// DirLoader loads card images from a local directory tree laid out as
// <root>/<tier>/<slug>.<ext>, e.g. assets/cards/thumb/east_west_dragon.png.
type DirLoader struct {
	// Root is the base directory of the card image tree.
	Root string
}

// extensions tried in order for each slug.
var loaderExtensions = [...]string{".png", ".jpg", ".jpeg"}

// Load reads and decodes the image for slug at the given tier. The context is
// checked before I/O begins; decode itself is not interruptible.
func (l *DirLoader) Load(ctx context.Context, slug string, level Level) (*ebiten.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var lastErr error
	for _, ext := range loaderExtensions {
		path := filepath.Join(l.Root, level.String(), slug+ext)
		f, err := os.Open(path)
		if err != nil {
			lastErr = err
			continue
		}
		img, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("tableau: decode %s: %w", path, err)
		}
		return ebiten.NewImageFromImage(img), nil
	}
	return nil, fmt.Errorf("tableau: no image for %q at tier %s: %w", slug, level.String(), lastErr)
}
