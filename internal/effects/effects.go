package effects

import (
	"fmt"
	"strings"
)

// Style names a transition look. The generator decides how to render it.
type Style string

const (
	Rotation           Style = "rotation"
	ZoomIn             Style = "zoom_in"
	ZoomOut            Style = "zoom_out"
	Translation        Style = "translation"
	TranslationInverse Style = "translation_inverse"
)

// Palette is the default style cycle, one entry per clip boundary.
var Palette = []Style{Rotation, ZoomIn, ZoomOut, Translation, TranslationInverse}

// xfadeNames maps styles onto ffmpeg xfade transitions.
var xfadeNames = map[Style]string{
	Rotation:           "radial",
	ZoomIn:             "zoomin",
	ZoomOut:            "circleopen",
	Translation:        "slideleft",
	TranslationInverse: "slideright",
}

// ParseStyle accepts a style name in any case.
func ParseStyle(name string) (Style, error) {
	s := Style(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := xfadeNames[s]; !ok {
		return "", fmt.Errorf("unknown transition style: %s", name)
	}
	return s, nil
}

// ParsePalette parses a list of style names. An empty list gives the default palette.
func ParsePalette(names []string) ([]Style, error) {
	if len(names) == 0 {
		return append([]Style(nil), Palette...), nil
	}
	out := make([]Style, 0, len(names))
	for _, n := range names {
		s, err := ParseStyle(n)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// At picks the style for boundary i, cycling through palette.
func At(palette []Style, i int) Style {
	if len(palette) == 0 {
		palette = Palette
	}
	return palette[i%len(palette)]
}

// XfadeName returns the ffmpeg xfade transition for s, "fade" for unknown styles.
func XfadeName(s Style) string {
	if name, ok := xfadeNames[s]; ok {
		return name
	}
	return "fade"
}
