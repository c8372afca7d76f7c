package tableau

import "testing"

func TestLevelForZoom(t *testing.T) {
	tests := []struct {
		zoom float64
		want Level
	}{
		{0.1, LevelThumb},
		{0.39, LevelThumb},
		{0.4, LevelMedium},
		{0.5, LevelMedium},
		{0.99, LevelMedium},
		{1.0, LevelFull},
		{2.5, LevelFull},
	}
	for _, tt := range tests {
		if got := LevelForZoom(tt.zoom); got != tt.want {
			t.Errorf("LevelForZoom(%v) = %v, want %v", tt.zoom, got, tt.want)
		}
	}
}

func TestLevelString(t *testing.T) {
	if LevelThumb.String() != "thumb" || LevelMedium.String() != "medium" || LevelFull.String() != "full" {
		t.Errorf("unexpected tier names: %v %v %v", LevelThumb, LevelMedium, LevelFull)
	}
}
