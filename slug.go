package tableau

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// deaccent decomposes to NFD, drops combining marks, and recomposes, so
// "Sjaelström" becomes "Sjaelstrom".
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify derives the asset key for a card name: lowercase, diacritics folded
// to base Latin letters, apostrophes removed, whitespace and hyphens collapsed
// to single underscores, all other non-alphanumerics dropped, and leading,
// trailing, and duplicate underscores collapsed.
func Slugify(name string) string {
	folded, _, err := transform.String(deaccent, name)
	if err != nil {
		// Transform only fails on malformed UTF-8; fall back to the raw name
		// so a card still gets a stable (if ugly) key.
		folded = name
	}

	var b strings.Builder
	b.Grow(len(folded))
	lastUnderscore := true // swallow leading separators
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case r == '\'' || r == '’':
			// Apostrophes vanish entirely: "Will-o'-the-Wisp" keeps no gap.
		case unicode.IsSpace(r) || r == '-' || r == '_':
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimRight(b.String(), "_")
}
