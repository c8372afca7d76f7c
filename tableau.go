package tableau

// Vec2 is a 2D vector used for positions, offsets, and deltas throughout the API.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Expand returns r grown by margin on every side.
func (r Rect) Expand(margin float64) Rect {
	return Rect{
		X:      r.X - margin,
		Y:      r.Y - margin,
		Width:  r.Width + 2*margin,
		Height: r.Height + 2*margin,
	}
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

// CardType classifies a card. The zero value is CardTypeUnknown so that data
// from an out-of-date card database degrades deterministically during layout.
type CardType uint8

const (
	CardTypeUnknown  CardType = iota // unrecognized type string from the card database
	CardTypeMinion                   // creatures
	CardTypeMagic                    // one-shot spells
	CardTypeAura                     // persistent enchantments
	CardTypeArtifact                 // equipment and relics
	CardTypeSite                     // locations; rendered landscape
	CardTypeAvatar                   // player avatars; laid out in their own block
)

// ParseCardType maps a card database type string to a CardType.
func ParseCardType(s string) CardType {
	switch s {
	case "Minion":
		return CardTypeMinion
	case "Magic":
		return CardTypeMagic
	case "Aura":
		return CardTypeAura
	case "Artifact":
		return CardTypeArtifact
	case "Site":
		return CardTypeSite
	case "Avatar":
		return CardTypeAvatar
	default:
		return CardTypeUnknown
	}
}

// ThresholdGroup is the elemental affinity classification of a card, derived
// from which of its elemental thresholds are non-zero.
type ThresholdGroup uint8

const (
	GroupAir      ThresholdGroup = iota // only the air threshold is active
	GroupEarth                          // only the earth threshold is active
	GroupFire                           // only the fire threshold is active
	GroupWater                          // only the water threshold is active
	GroupMultiple                       // two or more thresholds are active
	GroupNone                           // no threshold is active
)

// Thresholds holds a card's elemental threshold requirements.
type Thresholds struct {
	Air, Earth, Fire, Water int
}

// Group derives the ThresholdGroup: exactly one active threshold yields that
// element, zero yields GroupNone, more than one yields GroupMultiple.
func (t Thresholds) Group() ThresholdGroup {
	active := 0
	group := GroupNone
	if t.Air > 0 {
		active++
		group = GroupAir
	}
	if t.Earth > 0 {
		active++
		group = GroupEarth
	}
	if t.Fire > 0 {
		active++
		group = GroupFire
	}
	if t.Water > 0 {
		active++
		group = GroupWater
	}
	if active > 1 {
		return GroupMultiple
	}
	return group
}

// Card is immutable reference data owned by the external card database.
// The engine never mutates it.
type Card struct {
	Name       string // unique key
	Type       CardType
	Rarity     string // raw rarity string; ordering is resolved by the layout
	Cost       int
	Thresholds Thresholds
	SetName    string // primary set; used only for avatar ordering
}

// Landscape reports whether the card renders rotated 90 degrees
// (sites lie on their side; everything else stands upright).
func (c Card) Landscape() bool {
	return c.Type == CardTypeSite
}

// DeckEntry is one line of a deck board or collection list.
type DeckEntry struct {
	Name     string
	Quantity int
}

// Deck is the active deck snapshot supplied by the external UI layer on every
// deck change. Maybeboard quantities never count toward overlays.
type Deck struct {
	Mainboard  []DeckEntry
	Sideboard  []DeckEntry
	Avatar     []DeckEntry
	Maybeboard []DeckEntry
}

// QuantityColor is the three-way overlay tint for a card's quantity badge.
type QuantityColor uint8

const (
	QuantityDefault   QuantityColor = iota // deck count within collection count
	QuantityShortfall                      // more copies in deck than the collection holds
	QuantityNoneOwned                      // collection loaded but holds no copies
)
