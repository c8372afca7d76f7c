package tableau

import (
	"context"
	"errors"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/sync/semaphore"
)

// DefaultLoadConcurrency caps simultaneous texture loads across the cache.
const DefaultLoadConcurrency = 8

// Loader fetches one card image at one quality tier. Implementations are
// addressed only by slug; the cache never sees file paths or URLs.
type Loader interface {
	Load(ctx context.Context, slug string, level Level) (*ebiten.Image, error)
}

// texKey addresses one cache entry: one slug at one quality tier.
type texKey struct {
	slug  string
	level Level
}

// inflightLoad tracks a single underlying load shared by every concurrent
// request for the same key. done is closed exactly once when the load settles.
type inflightLoad struct {
	done chan struct{}
	img  *ebiten.Image
	err  error
}

// TextureCache decouples card visuals from image I/O: per-tier residency,
// request coalescing, permanent failure memoization, and a global concurrency
// cap on loads. A single coarse mutex guards all maps; loads themselves run
// outside the lock.
//
// The cache is the sole owner of resident textures. Card sprites hold only
// transient references for drawing and must never deallocate them.
type TextureCache struct {
	loader Loader
	sem    *semaphore.Weighted

	mu       sync.Mutex
	resident map[texKey]*ebiten.Image
	inflight map[texKey]*inflightLoad
	failed   map[string]bool // by slug; failure on any tier dooms the slug
	gen      uint64          // bumped by Clear to discard straggler loads

	placeholderImg *ebiten.Image
}

// NewTextureCache creates a cache backed by the given loader. concurrency
// caps simultaneous loads; values <= 0 use DefaultLoadConcurrency.
func NewTextureCache(loader Loader, concurrency int) *TextureCache {
	if concurrency <= 0 {
		concurrency = DefaultLoadConcurrency
	}
	return &TextureCache{
		loader:   loader,
		sem:      semaphore.NewWeighted(int64(concurrency)),
		resident: make(map[texKey]*ebiten.Image),
		inflight: make(map[texKey]*inflightLoad),
		failed:   make(map[string]bool),
	}
}

// Placeholder returns the shared stand-in texture rendered for slugs whose
// load failed. Lazily created.
func (c *TextureCache) Placeholder() *ebiten.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.placeholderLocked()
}

func (c *TextureCache) placeholderLocked() *ebiten.Image {
	if c.placeholderImg == nil {
		c.placeholderImg = ebiten.NewImage(CardWidth, CardHeight)
		c.placeholderImg.Fill(color.RGBA{R: 0x22, G: 0x20, B: 0x2a, A: 0xff})
	}
	return c.placeholderImg
}

// Get returns the texture for slug at the given tier, loading it if
// necessary. Concurrent calls for the same key share one underlying load.
// A slug that ever failed resolves immediately to the placeholder without
// another load attempt. Blocks until the texture is available or ctx is done;
// on cancellation it returns the placeholder.
func (c *TextureCache) Get(ctx context.Context, slug string, level Level) *ebiten.Image {
	key := texKey{slug: slug, level: level}

	c.mu.Lock()
	if img, ok := c.resident[key]; ok {
		c.mu.Unlock()
		return img
	}
	if c.failed[slug] {
		img := c.placeholderLocked()
		c.mu.Unlock()
		return img
	}
	fl, joined := c.inflight[key]
	if !joined {
		fl = &inflightLoad{done: make(chan struct{})}
		c.inflight[key] = fl
	}
	gen := c.gen
	c.mu.Unlock()

	if !joined {
		c.runLoad(ctx, key, fl, gen)
	}

	select {
	case <-fl.done:
	case <-ctx.Done():
		return c.Placeholder()
	}
	if fl.err != nil {
		return c.Placeholder()
	}
	return fl.img
}

// GetSync returns the resident texture for slug at the given tier without
// loading. When the exact tier is absent it falls back to any already-loaded
// tier, preferring the closest one, so callers can avoid flicker before
// taking the asynchronous path. A failed slug with nothing resident resolves
// to the placeholder so the card never renders as a hole. Returns
// (nil, false) only when a load could still produce something.
func (c *TextureCache) GetSync(slug string, level Level) (*ebiten.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if img, ok := c.resident[texKey{slug: slug, level: level}]; ok {
		return img, true
	}
	// Nearest coarser tier first, then finer.
	for l := level; l > LevelThumb; l-- {
		if img, ok := c.resident[texKey{slug: slug, level: l - 1}]; ok {
			return img, true
		}
	}
	for l := level + 1; l <= LevelFull; l++ {
		if img, ok := c.resident[texKey{slug: slug, level: l}]; ok {
			return img, true
		}
	}
	if c.failed[slug] {
		return c.placeholderLocked(), true
	}
	return nil, false
}

// Preload queues loads for a batch of slugs, typically newly-visible cards.
// Slugs already resident, in flight, or failed are filtered out; the rest
// load under the cache's concurrency cap. Returns immediately.
func (c *TextureCache) Preload(ctx context.Context, slugs []string, level Level) {
	c.mu.Lock()
	type job struct {
		key texKey
		fl  *inflightLoad
	}
	jobs := make([]job, 0, len(slugs))
	for _, slug := range slugs {
		key := texKey{slug: slug, level: level}
		if _, ok := c.resident[key]; ok {
			continue
		}
		if c.failed[slug] {
			continue
		}
		if _, ok := c.inflight[key]; ok {
			continue
		}
		fl := &inflightLoad{done: make(chan struct{})}
		c.inflight[key] = fl
		jobs = append(jobs, job{key: key, fl: fl})
	}
	gen := c.gen
	c.mu.Unlock()

	for _, j := range jobs {
		go c.runLoad(ctx, j.key, j.fl, gen)
	}
}

// runLoad performs the single underlying load for key under the concurrency
// cap and settles fl exactly once.
func (c *TextureCache) runLoad(ctx context.Context, key texKey, fl *inflightLoad, gen uint64) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		c.settle(key, fl, gen, nil, err)
		return
	}
	img, err := c.loader.Load(ctx, key.slug, key.level)
	c.sem.Release(1)
	c.settle(key, fl, gen, img, err)
}

// settle records a finished load. Real failures are memoized per slug and
// logged once; context cancellation is not memoized so a torn-down scene
// doesn't doom slugs for a successor cache generation.
func (c *TextureCache) settle(key texKey, fl *inflightLoad, gen uint64, img *ebiten.Image, err error) {
	c.mu.Lock()
	stale := gen != c.gen
	if !stale {
		delete(c.inflight, key)
		switch {
		case err == nil:
			c.resident[key] = img
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			// Aborted, not failed.
		default:
			if !c.failed[key.slug] {
				c.failed[key.slug] = true
				logger().Warn("texture load failed", "slug", key.slug, "level", key.level.String(), "err", err)
			}
		}
	}
	c.mu.Unlock()

	if stale && img != nil {
		img.Deallocate()
	}

	fl.img = img
	fl.err = err
	if stale && fl.err == nil {
		fl.err = context.Canceled
	}
	close(fl.done)
}

// Evict releases the graphics memory of every resident texture whose slug is
// not in active. Failure memoization is kept; only residency is dropped.
func (c *TextureCache) Evict(active []string) {
	keep := make(map[string]struct{}, len(active))
	for _, slug := range active {
		keep[slug] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for key, img := range c.resident {
		if _, ok := keep[key.slug]; ok {
			continue
		}
		img.Deallocate()
		delete(c.resident, key)
	}
}

// Clear releases every resident texture and resets failure memoization.
// Loads still in flight are discarded when they settle. Called on scene
// teardown.
func (c *TextureCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, img := range c.resident {
		img.Deallocate()
		delete(c.resident, key)
	}
	c.inflight = make(map[texKey]*inflightLoad)
	c.failed = make(map[string]bool)
	c.gen++
	logger().Info("texture cache cleared")
}

// Len returns the number of resident textures across all tiers.
func (c *TextureCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.resident)
}
