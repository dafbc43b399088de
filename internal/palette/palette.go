// Package palette holds the preset colors a todo can be tagged with.
package palette

import "strings"

var colors = []string{
	"#FFCDD2",
	"#F8BBD0",
	"#E1BEE7",
	"#D1C4E9",
	"#C5CAE9",
	"#BBDEFB",
	"#B3E5FC",
	"#B2EBF2",
	"#B2DFDB",
	"#C8E6C9",
	"#DCEDC8",
	"#FFF9C4",
	"#FFECB3",
	"#FFE0B2",
	"#FFCCBC",
	"#D7CCC8",
	"#CFD8DC",
}

const (
	selectedBorder = "2px solid black"
	defaultBorder  = "1px solid #ccc"
)

// Swatch is one selectable color circle.
type Swatch struct {
	Color    string
	Selected bool
}

func (s Swatch) Border() string {
	if s.Selected {
		return selectedBorder
	}
	return defaultBorder
}

// Colors returns a copy of the preset colors in display order.
func Colors() []string {
	return append([]string(nil), colors...)
}

func Contains(color string) bool {
	for _, c := range colors {
		if strings.EqualFold(c, color) {
			return true
		}
	}
	return false
}

// Palette renders the swatches and reports the chosen color through OnSelect.
type Palette struct {
	OnSelect func(color string)
}

func (p Palette) Swatches(selected string) []Swatch {
	swatches := make([]Swatch, len(colors))
	for i, c := range colors {
		swatches[i] = Swatch{Color: c, Selected: c == selected}
	}
	return swatches
}

// Select reports color to OnSelect. Colors outside the palette are ignored
// and false is returned.
func (p Palette) Select(color string) bool {
	if !Contains(color) {
		return false
	}
	if p.OnSelect != nil {
		p.OnSelect(canonical(color))
	}
	return true
}

func canonical(color string) string {
	for _, c := range colors {
		if strings.EqualFold(c, color) {
			return c
		}
	}
	return color
}
