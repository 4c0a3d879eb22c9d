package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/shared"
)

var _ list.Item = trackItem{}

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	index   int
	track   models.Track
	current bool
	liked   bool
	noPrev  string
}

func (i trackItem) FilterValue() string { return i.track.Title + " " + i.track.Artist }

func (i trackItem) Title() string {
	marker := "  "
	if i.current {
		marker = "♪ "
	}
	title := fmt.Sprintf("%s%d. %s", marker, i.index+1, i.track.Title)
	if i.liked {
		title += " ♥"
	}
	return title
}

func (i trackItem) Description() string {
	parts := []string{i.track.Artist}
	if i.track.Album != "" {
		parts = append(parts, i.track.Album)
	}
	parts = append(parts, shared.FormatDuration(float64(i.track.Duration)))
	if !i.track.HasPreview() {
		parts = append(parts, i.noPrev)
	}
	return "   " + strings.Join(parts, " • ")
}
