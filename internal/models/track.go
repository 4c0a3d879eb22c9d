package models

import (
	"strings"
)

// Track is a single recommended song. Tracks are immutable once decoded.
type Track struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	PreviewURL string `json:"preview_url,omitempty"`
	Link       string `json:"deezer_link"`
	CoverImage string `json:"cover_image,omitempty"`
	Duration   int    `json:"duration"` // seconds
}

// HasPreview reports whether the track carries a playable preview URL.
func (t Track) HasPreview() bool {
	return strings.TrimSpace(t.PreviewURL) != ""
}

// Playlist is a named, ordered sequence of tracks. The player never mutates it.
type Playlist struct {
	Name   string  `json:"name"`
	Tracks []Track `json:"tracks"`
}

// Len returns the number of tracks.
func (p Playlist) Len() int { return len(p.Tracks) }

// IDs returns the track identifiers in playlist order, skipping blanks.
func (p Playlist) IDs() []string {
	ids := make([]string, 0, len(p.Tracks))
	for _, t := range p.Tracks {
		if t.ID != "" {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// PreviewCount returns how many tracks can be previewed.
func (p Playlist) PreviewCount() int {
	n := 0
	for _, t := range p.Tracks {
		if t.HasPreview() {
			n++
		}
	}
	return n
}
