package models

import (
	"strings"
	"time"

	"github.com/desertthunder/moodtune/internal/shared"
)

// ExportRequest asks for a new Deezer playlist built from track ids.
type ExportRequest struct {
	TrackIDs []string
	MoodName string
	Genres   []string
	Energy   Energy
}

// NewExportRequest derives an export request from a discovery result.
func NewExportRequest(r DiscoverResult) ExportRequest {
	return ExportRequest{
		TrackIDs: r.Playlist().IDs(),
		MoodName: r.Metadata.InterpretedMood,
		Genres:   r.Metadata.Genres,
		Energy:   r.Metadata.Energy,
	}
}

// Title returns the playlist title shown on Deezer.
func (r ExportRequest) Title() string {
	mood := strings.TrimSpace(r.MoodName)
	if mood == "" {
		mood = "Untitled"
	}
	return "Mood: " + mood
}

// Description lists the first three genres and the energy level.
func (r ExportRequest) Description() string {
	parts := []string{"Generated by MoodTune"}
	if len(r.Genres) > 0 {
		genres := r.Genres
		if len(genres) > 3 {
			genres = genres[:3]
		}
		parts = append(parts, "Genres: "+strings.Join(genres, ", "))
	}
	energy := r.Energy
	if energy == "" {
		energy = EnergyMedium
	}
	parts = append(parts, "Energy: "+string(energy))
	return strings.Join(parts, " | ")
}

// Validate requires at least one track id.
func (r ExportRequest) Validate() error {
	if len(r.TrackIDs) == 0 {
		return shared.ErrNoTracks
	}
	return nil
}

// ExportedPlaylist is a playlist created on Deezer.
type ExportedPlaylist struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	AppURL      string `json:"app_url"`
	TrackCount  int    `json:"track_count"`
}

// DeezerUser is the authenticated Deezer account.
type DeezerUser struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Link    string `json:"link"`
	Picture string `json:"picture"`
	Country string `json:"country"`
}

// AuthStatus is the locally known state of the Deezer session.
type AuthStatus struct {
	Enabled       bool      // OAuth app credentials are configured
	Authenticated bool      // a token is stored and has not expired
	Expiry        time.Time // zero when the token does not expire
}
