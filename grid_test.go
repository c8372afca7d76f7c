package tableau

import (
	"fmt"
	"math"
	"testing"
)

func TestSnapToGrid(t *testing.T) {
	tests := []struct {
		name string
		x, y float64
		want Vec2
	}{
		{"origin", 0, 0, Vec2{0, 0}},
		{"already aligned", 110, 165, Vec2{110, 165}},
		{"round down", 20, 20, Vec2{0, 0}},
		{"round up", 30, 40, Vec2{55, 55}},
		{"negative", -30, -20, Vec2{-55, 0}},
		{"sub-unit drag", 37, 21, Vec2{55, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SnapToGrid(tt.x, tt.y); got != tt.want {
				t.Errorf("SnapToGrid(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestSnapToGridIdempotent(t *testing.T) {
	for _, p := range []Vec2{{13, 91}, {-200.5, 3000}, {54.9, 55.1}} {
		once := SnapToGrid(p.X, p.Y)
		twice := SnapToGrid(once.X, once.Y)
		if once != twice {
			t.Errorf("snap not idempotent: %v -> %v -> %v", p, once, twice)
		}
	}
}

func TestPixelsToGridConsistentWithSnap(t *testing.T) {
	// A snapped position must map to exactly one cell whose corner it is.
	for _, p := range []Vec2{{0, 0}, {37, 21}, {-80, 190}, {1234, -567}} {
		snapped := SnapToGrid(p.X, p.Y)
		key := PixelsToGrid(snapped.X, snapped.Y)
		if float64(key.Col*GridUnit) != snapped.X || float64(key.Row*GridUnit) != snapped.Y {
			t.Errorf("cell %v does not anchor snapped position %v", key, snapped)
		}
	}
}

// testLibrary builds a deterministic mixed card list.
func testLibrary() []Card {
	var cards []Card
	elements := []Thresholds{{Air: 1}, {Earth: 2}, {Fire: 1}, {Water: 1}, {Air: 1, Fire: 1}, {}}
	types := []CardType{CardTypeMinion, CardTypeMagic, CardTypeAura, CardTypeArtifact, CardTypeSite}
	for ei, th := range elements {
		for ti, ct := range types {
			for cost := 0; cost < 9; cost++ {
				cards = append(cards, Card{
					Name:       fmt.Sprintf("c-%d-%d-%d", ei, ti, cost),
					Type:       ct,
					Cost:       cost % 5, // force cost ties
					Thresholds: th,
				})
			}
		}
	}
	cards = append(cards,
		Card{Name: "av-beta", Type: CardTypeAvatar, SetName: "Beta", Rarity: "Elite"},
		Card{Name: "av-alpha", Type: CardTypeAvatar, SetName: "Alpha", Rarity: "Unique"},
		Card{Name: "av-precon", Type: CardTypeAvatar, SetName: "Alpha", Rarity: "Precon"},
		Card{Name: "av-unlisted", Type: CardTypeAvatar, SetName: "Homebrew", Rarity: "Ordinary"},
	)
	return cards
}

func TestCalculateLayoutDeterministic(t *testing.T) {
	cards := testLibrary()
	a := CalculateLayout(cards)
	b := CalculateLayout(cards)
	if len(a) != len(b) {
		t.Fatalf("entry counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("entry %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestCalculateLayoutGridAligned(t *testing.T) {
	for _, e := range CalculateLayout(testLibrary()) {
		if math.Mod(e.Position.X, GridUnit) != 0 || math.Mod(e.Position.Y, GridUnit) != 0 {
			t.Errorf("%s at %v is not grid aligned", e.Name, e.Position)
		}
	}
}

func TestCalculateLayoutNoOverlap(t *testing.T) {
	entries := CalculateLayout(testLibrary())
	footprint := func(e CardLayoutEntry) Rect {
		w, h := float64(CardWidth), float64(CardHeight)
		if e.Landscape {
			w, h = h, w
		}
		return Rect{X: e.Position.X, Y: e.Position.Y, Width: w, Height: h}
	}
	overlaps := func(a, b Rect) bool {
		return a.X < b.X+b.Width && b.X < a.X+a.Width &&
			a.Y < b.Y+b.Height && b.Y < a.Y+a.Height
	}
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			if overlaps(footprint(entries[i]), footprint(entries[j])) {
				t.Fatalf("%s overlaps %s", entries[i].Name, entries[j].Name)
			}
		}
	}
}

func TestCalculateLayoutSortStable(t *testing.T) {
	// Two buckets' worth of equal-cost cards must keep input order.
	cards := []Card{
		{Name: "first", Type: CardTypeMinion, Cost: 2, Thresholds: Thresholds{Air: 1}},
		{Name: "second", Type: CardTypeMinion, Cost: 2, Thresholds: Thresholds{Air: 1}},
		{Name: "cheap", Type: CardTypeMinion, Cost: 1, Thresholds: Thresholds{Air: 1}},
		{Name: "third", Type: CardTypeMinion, Cost: 2, Thresholds: Thresholds{Air: 1}},
	}
	entries := CalculateLayout(cards)
	byName := make(map[string]CardLayoutEntry, len(entries))
	for _, e := range entries {
		byName[e.Name] = e
	}
	if byName["cheap"].Position.X != 0 {
		t.Errorf("cheapest card should lead the row, got %v", byName["cheap"].Position)
	}
	// Row-major: first < second < third in X.
	if !(byName["first"].Position.X < byName["second"].Position.X &&
		byName["second"].Position.X < byName["third"].Position.X) {
		t.Errorf("equal-cost cards reordered: first=%v second=%v third=%v",
			byName["first"].Position, byName["second"].Position, byName["third"].Position)
	}
}

func TestCalculateLayoutCostNonDecreasing(t *testing.T) {
	entries := CalculateLayout(testLibrary())
	// Within one (group, type) bucket, row-major order implies Y-then-X order;
	// cost must be non-decreasing along it.
	type bucketID struct {
		g ThresholdGroup
		t CardType
	}
	buckets := make(map[bucketID][]CardLayoutEntry)
	for _, e := range entries {
		if e.Type == CardTypeAvatar {
			continue
		}
		id := bucketID{e.Group, e.Type}
		buckets[id] = append(buckets[id], e)
	}
	for id, es := range buckets {
		for i := 1; i < len(es); i++ {
			prev, cur := es[i-1], es[i]
			inOrder := prev.Position.Y < cur.Position.Y ||
				(prev.Position.Y == cur.Position.Y && prev.Position.X < cur.Position.X)
			if inOrder && prev.Cost > cur.Cost {
				t.Fatalf("bucket %v: cost decreases from %s(%d) to %s(%d)",
					id, prev.Name, prev.Cost, cur.Name, cur.Cost)
			}
		}
	}
}

func TestCalculateLayoutTwoColumns(t *testing.T) {
	// One air minion and one water minion: two separate threshold columns,
	// air first, each a single card at its column's grid origin.
	cards := []Card{
		{Name: "gale", Type: CardTypeMinion, Cost: 2, Thresholds: Thresholds{Air: 1}},
		{Name: "tide", Type: CardTypeMinion, Cost: 1, Thresholds: Thresholds{Water: 1}},
	}
	entries := CalculateLayout(cards)
	if len(entries) != 2 {
		t.Fatalf("entry count = %d, want 2", len(entries))
	}
	byName := map[string]CardLayoutEntry{entries[0].Name: entries[0], entries[1].Name: entries[1]}

	gale := byName["gale"]
	if gale.Position != (Vec2{0, 0}) {
		t.Errorf("air column should start at origin, got %v", gale.Position)
	}
	tide := byName["tide"]
	// Air column is one portrait card wide (2 cells) plus the group gap.
	wantX := float64((2 + groupGapCols) * GridUnit)
	if tide.Position.X != wantX || tide.Position.Y != 0 {
		t.Errorf("water column origin = %v, want (%v, 0)", tide.Position, wantX)
	}
}

func TestCalculateLayoutUnknownTypeFallback(t *testing.T) {
	// An unrecognized type routes to the catch-all bucket after Site rather
	// than being dropped or crashing.
	cards := []Card{
		{Name: "normal", Type: CardTypeMinion, Cost: 1, Thresholds: Thresholds{Fire: 1}},
		{Name: "weird", Type: CardTypeUnknown, Cost: 1, Thresholds: Thresholds{Fire: 1}},
	}
	entries := CalculateLayout(cards)
	if len(entries) != 2 {
		t.Fatalf("unknown-type card was dropped: %d entries", len(entries))
	}
	var weird CardLayoutEntry
	for _, e := range entries {
		if e.Name == "weird" {
			weird = e
		}
	}
	if weird.Position.Y <= 0 {
		t.Errorf("catch-all bucket should sit below the minion bucket, got %v", weird.Position)
	}
}

func TestCalculateLayoutSiteLandscape(t *testing.T) {
	cards := []Card{{Name: "keep", Type: CardTypeSite, Cost: 0, Thresholds: Thresholds{Earth: 1}}}
	entries := CalculateLayout(cards)
	if len(entries) != 1 || !entries[0].Landscape {
		t.Fatalf("site should lay out landscape: %+v", entries)
	}
}

func TestAvatarOrdering(t *testing.T) {
	entries := CalculateLayout(testLibrary())
	var avatars []CardLayoutEntry
	for _, e := range entries {
		if e.Type == CardTypeAvatar {
			avatars = append(avatars, e)
		}
	}
	if len(avatars) != 4 {
		t.Fatalf("avatar count = %d, want 4", len(avatars))
	}
	// Sorted output order: precon Alpha, unique Alpha, Beta, unlisted set.
	wantOrder := []string{"av-precon", "av-alpha", "av-beta", "av-unlisted"}
	for i, want := range wantOrder {
		if avatars[i].Name != want {
			t.Fatalf("avatar order = %v..., want %v at %d", avatars[i].Name, want, i)
		}
	}
	// Avatars sit to the right of every threshold-group column.
	maxGroupX := 0.0
	for _, e := range entries {
		if e.Type != CardTypeAvatar && e.Position.X > maxGroupX {
			maxGroupX = e.Position.X
		}
	}
	for _, a := range avatars {
		if a.Position.X <= maxGroupX {
			t.Errorf("avatar %s at %v not right of groups (max %v)", a.Name, a.Position, maxGroupX)
		}
	}
}

func TestCalculateLayoutEmpty(t *testing.T) {
	if entries := CalculateLayout(nil); len(entries) != 0 {
		t.Errorf("empty input produced %d entries", len(entries))
	}
}

func TestLayoutBounds(t *testing.T) {
	entries := []CardLayoutEntry{
		{Name: "a", Position: Vec2{0, 0}},
		{Name: "b", Position: Vec2{550, 330}, Landscape: true},
	}
	b := LayoutBounds(entries)
	if b.X != 0 || b.Y != 0 {
		t.Errorf("bounds origin = (%v,%v), want (0,0)", b.X, b.Y)
	}
	if b.Width != 550+CardHeight || b.Height != 330+CardWidth {
		t.Errorf("bounds size = (%v,%v)", b.Width, b.Height)
	}
	if (LayoutBounds(nil) != Rect{}) {
		t.Error("empty layout should have zero bounds")
	}
}

func BenchmarkCalculateLayout(b *testing.B) {
	cards := testLibrary()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		CalculateLayout(cards)
	}
}
