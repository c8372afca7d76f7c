package tableau

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Sjaelström", "sjaelstrom"},
		{"East-West Dragon", "east_west_dragon"},
		{"Will-o'-the-Wisp", "will_o_the_wisp"},
		{"Ruler’s Guard", "rulers_guard"},
		{"Fire Bolt", "fire_bolt"},
		{"  Spaced   Out  ", "spaced_out"},
		{"Already_slugged", "already_slugged"},
		{"Häxan!", "haxan"},
		{"Über-café crème", "uber_cafe_creme"},
		{"123 Go", "123_go"},
		{"---", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.name); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSlugifyStable(t *testing.T) {
	// Slugifying a slug must be a no-op so keys can be re-derived safely.
	for _, name := range []string{"East-West Dragon", "Sjaelström", "Will-o'-the-Wisp"} {
		once := Slugify(name)
		if twice := Slugify(once); twice != once {
			t.Errorf("Slugify(%q) -> %q -> %q, not stable", name, once, twice)
		}
	}
}
