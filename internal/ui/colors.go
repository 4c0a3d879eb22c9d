package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	darkPalette  = NewPalette("#A238FF", "#04B575", "#FF5F87", "#FFA500", "#626262")
	lightPalette = NewPalette("#6B1FB1", "#00875A", "#C4002B", "#B35C00", "#8A8A8A")
)

// PaletteFor returns the stylesheet for a theme name, defaulting to dark.
func PaletteFor(theme string) *Palette {
	if theme == "light" {
		return lightPalette
	}
	return darkPalette
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	accent  string
	title   lipgloss.Style
	ok      lipgloss.Style
	err     lipgloss.Style
	warn    lipgloss.Style
	help    lipgloss.Style
	current lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		accent:  t,
		title:   NewBold(t).MarginBottom(1),
		ok:      NewBold(s),
		err:     NewBold(e),
		warn:    NewStyle(w),
		help:    NewEm(h),
		current: NewBold(t),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
