package tableau

import (
	"math"
	"sort"
)

// Layout geometry. All layout math is expressed in multiples of GridUnit so
// every computed position lands exactly on a grid cell boundary.
const (
	// GridUnit is the fixed square cell size underlying all layout and
	// snapping math, in world pixels.
	GridUnit = 55

	// CardWidth and CardHeight are the rendered size of a portrait card.
	// A portrait card spans 2x3 grid cells; a landscape (site) card 3x2.
	CardWidth  = 110
	CardHeight = 165

	portraitPerRow  = 6  // cards per row within a portrait type bucket
	landscapePerRow = 4  // cards per row within a site bucket
	avatarsPerRow   = 12 // avatars per row in the avatar block

	subgroupGapRows = 1 // grid units of vertical gap after each type bucket
	groupGapCols    = 2 // grid units of horizontal gap after each threshold group
)

// SnapToGrid rounds a world position to the nearest multiple of GridUnit in
// each axis. Idempotent: snapping a snapped position is a no-op.
func SnapToGrid(x, y float64) Vec2 {
	return Vec2{
		X: math.Round(x/GridUnit) * GridUnit,
		Y: math.Round(y/GridUnit) * GridUnit,
	}
}

// GridKey addresses one stacking bucket: the grid cell a card's top-left
// corner occupies.
type GridKey struct {
	Col, Row int
}

// PixelsToGrid floor-divides a world position by GridUnit. A position produced
// by SnapToGrid always maps to exactly one cell.
func PixelsToGrid(x, y float64) GridKey {
	return GridKey{
		Col: int(math.Floor(x / GridUnit)),
		Row: int(math.Floor(y / GridUnit)),
	}
}

// CardLayoutEntry is one card's computed placement. Positions are absolute
// world pixels, always grid-unit aligned. Superseded by the card's live
// position once the scene takes over.
type CardLayoutEntry struct {
	Name      string
	Position  Vec2
	Landscape bool
	Group     ThresholdGroup
	Type      CardType
	Cost      int
}

// thresholdGroupOrder is the fixed left-to-right column order.
var thresholdGroupOrder = [...]ThresholdGroup{
	GroupAir, GroupEarth, GroupFire, GroupWater, GroupMultiple, GroupNone,
}

// typeBucketOrder is the fixed top-to-bottom bucket order within a threshold
// group. Unknown types fall into a deterministic catch-all bucket after Site
// rather than being dropped.
var typeBucketOrder = [...]CardType{
	CardTypeMinion, CardTypeMagic, CardTypeAura, CardTypeArtifact, CardTypeSite,
	CardTypeUnknown,
}

// avatarSetOrder is the canonical set release order used to sort the avatar
// block. Sets not listed here sort after all listed sets.
var avatarSetOrder = map[string]int{
	"Alpha":             0,
	"Beta":              1,
	"Arthurian Legends": 2,
}

// avatarRarityRank orders avatars within a set. The "none"/preconstructed
// pseudo-rarity sorts first; unknown rarity strings sort last.
func avatarRarityRank(rarity string) int {
	switch rarity {
	case "", "None", "Precon":
		return 0
	case "Ordinary":
		return 1
	case "Exceptional":
		return 2
	case "Elite":
		return 3
	case "Unique":
		return 4
	default:
		return 5
	}
}

// avatarSetRank returns the canonical index for a set name, or a rank past
// every listed set when the name is unlisted.
func avatarSetRank(set string) int {
	if r, ok := avatarSetOrder[set]; ok {
		return r
	}
	return len(avatarSetOrder)
}

// cellSize returns a bucket's per-card cell footprint in grid units.
func cellSize(landscape bool) (cols, rows int) {
	if landscape {
		return 3, 2 // 165x110
	}
	return 2, 3 // 110x165
}

// CalculateLayout positions every card on the grid. It is pure and
// deterministic: the same input always produces the same entries.
//
// Non-avatars form one column per threshold group (air, earth, fire, water,
// multiple, none), each column stacked from type buckets (Minion, Magic, Aura,
// Artifact, Site, then a catch-all for unknown types) sorted by ascending cost
// with input order preserved on ties. Cards within a bucket pack row-major
// with zero gap. Avatars form their own block to the right of all groups,
// ordered by canonical set then rarity.
func CalculateLayout(cards []Card) []CardLayoutEntry {
	var avatars []Card
	// group -> type bucket -> cards, preserving input order for sort stability.
	buckets := make(map[ThresholdGroup]map[CardType][]Card)

	for _, c := range cards {
		if c.Type == CardTypeAvatar {
			avatars = append(avatars, c)
			continue
		}
		g := c.Thresholds.Group()
		if buckets[g] == nil {
			buckets[g] = make(map[CardType][]Card)
		}
		buckets[g][c.Type] = append(buckets[g][c.Type], c)
	}

	entries := make([]CardLayoutEntry, 0, len(cards))
	groupX := 0 // horizontal cursor, grid units

	for _, g := range thresholdGroupOrder {
		typed := buckets[g]
		if len(typed) == 0 {
			continue
		}

		y := 0 // vertical cursor within the group, grid units
		maxWidth := 0

		for _, ct := range typeBucketOrder {
			bucket := typed[ct]
			if len(bucket) == 0 {
				continue
			}
			sort.SliceStable(bucket, func(i, j int) bool {
				return bucket[i].Cost < bucket[j].Cost
			})

			landscape := ct == CardTypeSite
			cellCols, cellRows := cellSize(landscape)
			perRow := portraitPerRow
			if landscape {
				perRow = landscapePerRow
			}

			for i, c := range bucket {
				col := i % perRow
				row := i / perRow
				entries = append(entries, CardLayoutEntry{
					Name:      c.Name,
					Position:  Vec2{X: float64((groupX + col*cellCols) * GridUnit), Y: float64((y + row*cellRows) * GridUnit)},
					Landscape: landscape,
					Group:     g,
					Type:      c.Type,
					Cost:      c.Cost,
				})
			}

			rows := (len(bucket) + perRow - 1) / perRow
			y += rows*cellRows + subgroupGapRows

			width := len(bucket)
			if width > perRow {
				width = perRow
			}
			if w := width * cellCols; w > maxWidth {
				maxWidth = w
			}
		}

		groupX += maxWidth + groupGapCols
	}

	entries = append(entries, layoutAvatars(avatars, groupX)...)
	return entries
}

// layoutAvatars places the avatar block starting at startX grid units,
// avatarsPerRow wide, sorted by canonical set order then rarity rank. Both
// sorts are stable so ties keep input order.
func layoutAvatars(avatars []Card, startX int) []CardLayoutEntry {
	if len(avatars) == 0 {
		return nil
	}
	sorted := make([]Card, len(avatars))
	copy(sorted, avatars)
	sort.SliceStable(sorted, func(i, j int) bool {
		si, sj := avatarSetRank(sorted[i].SetName), avatarSetRank(sorted[j].SetName)
		if si != sj {
			return si < sj
		}
		return avatarRarityRank(sorted[i].Rarity) < avatarRarityRank(sorted[j].Rarity)
	})

	cellCols, cellRows := cellSize(false)
	entries := make([]CardLayoutEntry, 0, len(sorted))
	for i, c := range sorted {
		col := i % avatarsPerRow
		row := i / avatarsPerRow
		entries = append(entries, CardLayoutEntry{
			Name:     c.Name,
			Position: Vec2{X: float64((startX + col*cellCols) * GridUnit), Y: float64(row * cellRows * GridUnit)},
			Group:    c.Thresholds.Group(),
			Type:     CardTypeAvatar,
			Cost:     c.Cost,
		})
	}
	return entries
}

// LayoutBounds returns the tight world-space bounding rect of a set of layout
// entries, used to fit the camera after a rebuild. Returns a zero Rect for an
// empty layout.
func LayoutBounds(entries []CardLayoutEntry) Rect {
	if len(entries) == 0 {
		return Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, e := range entries {
		w, h := float64(CardWidth), float64(CardHeight)
		if e.Landscape {
			w, h = h, w
		}
		minX = math.Min(minX, e.Position.X)
		minY = math.Min(minY, e.Position.Y)
		maxX = math.Max(maxX, e.Position.X+w)
		maxY = math.Max(maxY, e.Position.Y+h)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
