// Package theme holds the color palettes shared by the editor and viewer.
package theme

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme is a named set of terminal colors.
type Theme struct {
	Name string

	Base     lipgloss.Color
	Surface0 lipgloss.Color
	Surface1 lipgloss.Color
	Surface2 lipgloss.Color
	Text     lipgloss.Color
	Subtext  lipgloss.Color
	Overlay  lipgloss.Color

	Blue     lipgloss.Color
	Lavender lipgloss.Color
	Mauve    lipgloss.Color
	Green    lipgloss.Color
	Yellow   lipgloss.Color
	Peach    lipgloss.Color
	Red      lipgloss.Color

	// Semantic roles.
	Primary  lipgloss.Color
	Success  lipgloss.Color
	Warning  lipgloss.Color
	Info     lipgloss.Color
	Error    lipgloss.Color
	Playhead lipgloss.Color
}

// Mocha is the dark palette.
var Mocha = Theme{
	Name:     "mocha",
	Base:     "#1e1e2e",
	Surface0: "#313244",
	Surface1: "#45475a",
	Surface2: "#585b70",
	Text:     "#cdd6f4",
	Subtext:  "#a6adc8",
	Overlay:  "#6c7086",
	Blue:     "#89b4fa",
	Lavender: "#b4befe",
	Mauve:    "#cba6f7",
	Green:    "#a6e3a1",
	Yellow:   "#f9e2af",
	Peach:    "#fab387",
	Red:      "#f38ba8",
	Primary:  "#89b4fa",
	Success:  "#a6e3a1",
	Warning:  "#f9e2af",
	Info:     "#74c7ec",
	Error:    "#f38ba8",
	Playhead: "#f38ba8",
}

// Latte is the light palette.
var Latte = Theme{
	Name:     "latte",
	Base:     "#eff1f5",
	Surface0: "#ccd0da",
	Surface1: "#bcc0cc",
	Surface2: "#acb0be",
	Text:     "#4c4f69",
	Subtext:  "#6c6f85",
	Overlay:  "#9ca0b0",
	Blue:     "#1e66f5",
	Lavender: "#7287fd",
	Mauve:    "#8839ef",
	Green:    "#40a02b",
	Yellow:   "#df8e1d",
	Peach:    "#fe640b",
	Red:      "#d20f39",
	Primary:  "#1e66f5",
	Success:  "#40a02b",
	Warning:  "#df8e1d",
	Info:     "#209fb5",
	Error:    "#d20f39",
	Playhead: "#d20f39",
}

// ByName returns the palette with the given name. "auto" and unknown names
// detect the terminal background.
func ByName(name string) Theme {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mocha", "dark":
		return Mocha
	case "latte", "light":
		return Latte
	default:
		if termenv.HasDarkBackground() {
			return Mocha
		}
		return Latte
	}
}

// Current honors MTA_THEME and falls back to background detection.
func Current() Theme {
	return ByName(os.Getenv("MTA_THEME"))
}

// Plain reports whether output should carry no styling at all: NO_COLOR is
// set or the terminal supports no colors.
func Plain() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return true
	}
	return termenv.EnvColorProfile() == termenv.Ascii
}

// Readable picks black or white text for a block background color.
func Readable(bg string) lipgloss.Color {
	c, err := parseHex(bg)
	if err != nil {
		return "#000000"
	}
	// Rec. 601 luma.
	luma := 0.299*float64(c[0]) + 0.587*float64(c[1]) + 0.114*float64(c[2])
	if luma > 140 {
		return "#111111"
	}
	return "#ffffff"
}

type rgb [3]uint8

type hexError string

func (e hexError) Error() string { return "invalid hex color " + string(e) }

func parseHex(s string) (rgb, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return rgb{}, hexError(s)
	}
	var out rgb
	for i := 0; i < 3; i++ {
		hi, ok1 := hexVal(s[2*i])
		lo, ok2 := hexVal(s[2*i+1])
		if !ok1 || !ok2 {
			return rgb{}, hexError(s)
		}
		out[i] = hi<<4 | lo
	}
	return out, nil
}

func hexVal(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
