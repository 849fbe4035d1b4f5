package effects

import "testing"

func TestAtCycles(t *testing.T) {
	want := []Style{Rotation, ZoomIn, ZoomOut, Translation, TranslationInverse, Rotation, ZoomIn}
	for i, w := range want {
		if got := At(Palette, i); got != w {
			t.Errorf("Boundary %d: expected %s, got %s", i, w, got)
		}
	}
	if got := At(nil, 6); got != ZoomIn {
		t.Errorf("Expected default palette, got %s", got)
	}
}

func TestParsePalette(t *testing.T) {
	p, err := ParsePalette([]string{"Zoom_In", " translation "})
	if err != nil {
		t.Fatalf("ParsePalette failed: %v", err)
	}
	if len(p) != 2 || p[0] != ZoomIn || p[1] != Translation {
		t.Errorf("Unexpected palette %v", p)
	}
	if _, err := ParsePalette([]string{"spin"}); err == nil {
		t.Error("Expected error for unknown style")
	}
	def, _ := ParsePalette(nil)
	if len(def) != len(Palette) {
		t.Errorf("Expected default palette, got %v", def)
	}
}

func TestXfadeName(t *testing.T) {
	for _, s := range Palette {
		if XfadeName(s) == "fade" {
			t.Errorf("Style %s has no xfade mapping", s)
		}
	}
	if XfadeName("spin") != "fade" {
		t.Error("Expected fade fallback")
	}
}
