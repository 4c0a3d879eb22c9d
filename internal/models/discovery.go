package models

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/desertthunder/moodtune/internal/shared"
)

const (
	MinQueryLength = 10
	MaxQueryLength = 500
)

// Language is a supported interface and recognition language.
type Language string

const (
	English Language = "en"
	Spanish Language = "es"
)

// ParseLanguage accepts "en" or "es" (case-insensitive).
func ParseLanguage(s string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case English:
		return English, nil
	case Spanish:
		return Spanish, nil
	default:
		return "", fmt.Errorf("%w: %q (want en or es)", shared.ErrInvalidLanguage, s)
	}
}

// SpeechTag returns the BCP 47 locale a recognizer expects.
func (l Language) SpeechTag() string {
	if l == Spanish {
		return "es-ES"
	}
	return "en-US"
}

// Energy is the backend's coarse energy classification.
type Energy string

const (
	EnergyLow    Energy = "low"
	EnergyMedium Energy = "medium"
	EnergyHigh   Energy = "high"
)

// Metadata describes how the backend interpreted a mood query.
type Metadata struct {
	InterpretedMood string   `json:"interpreted_mood"`
	Energy          Energy   `json:"energy_level"`
	Genres          []string `json:"suggested_genres"`
	SearchQuery     string   `json:"search_query_used,omitempty"`
}

// TopGenres returns at most n genres.
func (m Metadata) TopGenres(n int) []string {
	if len(m.Genres) <= n {
		return m.Genres
	}
	return m.Genres[:n]
}

// DiscoverRequest is the body sent to the discovery endpoint.
type DiscoverRequest struct {
	Query    string   `json:"user_query"`
	Language Language `json:"language"`
}

// DiscoverResult is the discovery endpoint's response.
type DiscoverResult struct {
	Success  bool     `json:"success"`
	Tracks   []Track  `json:"tracks"`
	Metadata Metadata `json:"metadata"`
}

// Playlist wraps the tracks for the player, named after the interpreted mood.
func (r DiscoverResult) Playlist() Playlist {
	name := r.Metadata.InterpretedMood
	if name == "" {
		name = "Untitled mood"
	}
	return Playlist{Name: name, Tracks: r.Tracks}
}

// Health is the backend health payload.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ValidateQuery rejects mood descriptions that are too short once trimmed, or too long as typed.
func ValidateQuery(q string) error {
	if utf8.RuneCountInString(strings.TrimSpace(q)) < MinQueryLength {
		return shared.ErrQueryTooShort
	}
	if utf8.RuneCountInString(q) > MaxQueryLength {
		return shared.ErrQueryTooLong
	}
	return nil
}

// Validate checks the query and the language.
func (r DiscoverRequest) Validate() error {
	if err := ValidateQuery(r.Query); err != nil {
		return err
	}
	_, err := ParseLanguage(string(r.Language))
	return err
}
