// package services defines the HTTP clients MoodTune talks to
//
// The discovery backend (mood → tracks) and Deezer (OAuth + playlists)
package services

import (
	"context"

	"github.com/desertthunder/moodtune/internal/models"
	"golang.org/x/oauth2"
)

// Discoverer turns a mood description into tracks.
type Discoverer interface {
	// Discover sends the query to the backend. Invalid requests are rejected before any network call.
	Discover(ctx context.Context, req models.DiscoverRequest) (*models.DiscoverResult, error)

	// Health reports the backend status.
	Health(ctx context.Context) (*models.Health, error)
}

// PlaylistExporter persists a track list as a playlist on an external service.
type PlaylistExporter interface {
	// Status reports the locally known session state. It never touches the network.
	Status() models.AuthStatus

	// CurrentUser returns the account the session belongs to.
	CurrentUser(ctx context.Context) (*models.DeezerUser, error)

	// CreateMoodPlaylist creates the playlist and adds the tracks. A failure leaves nothing behind.
	CreateMoodPlaylist(ctx context.Context, req models.ExportRequest) (*models.ExportedPlaylist, error)
}

// OAuthService is implemented by exporters that authenticate with an authorization-code flow.
type OAuthService interface {
	// AuthURL returns the URL the user visits to grant access.
	AuthURL(state string) string

	// Exchange trades an authorization code for a token and stores it.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
}
