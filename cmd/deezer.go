package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/moodtune/internal/repositories"
	"github.com/desertthunder/moodtune/internal/server"
	"github.com/desertthunder/moodtune/internal/shared"
	"github.com/desertthunder/moodtune/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const authTimeout = 2 * time.Minute

// callbackPath extracts the path the OAuth redirect lands on.
func callbackPath(redirectURI string) string {
	u, err := url.Parse(redirectURI)
	if err != nil || u.Path == "" {
		return "/callback"
	}
	return u.Path
}

// doOAuth runs the authorization-code flow against a local callback server.
func (r *Runner) doOAuth(ctx context.Context) (*oauth2.Token, error) {
	state := shared.GenerateState()
	authURL := r.deezer.AuthURL(state)
	handler := server.NewOAuthHandler(r.deezer, state, callbackPath(r.config.Credentials.Deezer.RedirectURI))
	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)

	r.writePlain("→ Opening browser for Deezer authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}
	r.writePlain("→ Waiting for authorization (%s timeout)...\n", authTimeout)

	token, err := server.WaitForCallback(ctx, addr, handler, authTimeout, r.logger)
	if err != nil {
		return nil, fmt.Errorf("authorization failed: %w", err)
	}
	if token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}
	return token, nil
}

// DeezerAuth performs the OAuth flow and stores the session in the config file.
func (r *Runner) DeezerAuth(ctx context.Context, cmd *cli.Command) error {
	if r.deezer == nil {
		return fmt.Errorf("%w: Deezer service not initialized", shared.ErrServiceUnavailable)
	}
	if !r.deezer.Status().Enabled {
		return fmt.Errorf("%w: set credentials.deezer.app_id and secret_key in %s", shared.ErrOAuthDisabled, r.configPath)
	}

	token, err := r.doOAuth(ctx)
	if err != nil {
		return err
	}
	if err := r.saveTokens(token); err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	if r.configPath != "" {
		r.writePlain("✓ Session saved to %s\n\n", r.configPath)
	}
	r.writePlain("You can now use: moodtune deezer export \"your mood\"\n")
	return nil
}

// DeezerLogout clears the stored session.
func (r *Runner) DeezerLogout(ctx context.Context, cmd *cli.Command) error {
	r.config.Credentials.Deezer.Clear()
	if r.deezer != nil {
		r.deezer.SetToken(nil)
	}
	if err := r.saveConfig(); err != nil {
		return err
	}
	return r.writePlain("✓ Logged out of Deezer\n")
}

// DeezerStatus reports the local session state without calling Deezer.
func (r *Runner) DeezerStatus(ctx context.Context, cmd *cli.Command) error {
	if r.deezer == nil {
		return fmt.Errorf("%w: Deezer service not initialized", shared.ErrServiceUnavailable)
	}
	status := r.deezer.Status()

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"enabled":       status.Enabled,
			"authenticated": status.Authenticated,
			"expiry":        status.Expiry,
		}, cmd.Bool("pretty"))
	}

	switch {
	case !status.Enabled:
		r.writePlain("Export: ✗ OAuth not configured\n")
		return r.writePlain("Set credentials.deezer.app_id and secret_key, then run 'moodtune deezer auth'.\n")
	case !status.Authenticated:
		r.writePlain("Export: ✓ Configured\n")
		return r.writePlain("Session: ✗ Not authenticated (run 'moodtune deezer auth')\n")
	}

	r.writePlain("Export: ✓ Configured\n")
	r.writePlain("Session: ✓ Authenticated\n")
	if status.Expiry.IsZero() {
		return r.writePlain("Expires: never\n")
	}
	return r.writePlain("Expires: %s\n", status.Expiry.Local().Format(time.RFC1123))
}

// DeezerWhoami prints the account the stored session belongs to.
func (r *Runner) DeezerWhoami(ctx context.Context, cmd *cli.Command) error {
	if r.deezer == nil {
		return fmt.Errorf("%w: Deezer service not initialized", shared.ErrServiceUnavailable)
	}
	status := r.deezer.Status()
	if !status.Enabled {
		return shared.ErrOAuthDisabled
	}
	if !status.Authenticated {
		return shared.ErrNotAuthenticated
	}

	user, err := r.deezer.CurrentUser(ctx)
	if err != nil {
		return r.authHint(err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, cmd.Bool("pretty"))
	}
	r.writePlain("User: %s (id %d)\n", user.Name, user.ID)
	if user.Country != "" {
		r.writePlain("Country: %s\n", user.Country)
	}
	if user.Link != "" {
		r.writePlain("Profile: %s\n", user.Link)
	}
	return nil
}

// DeezerExport discovers tracks for a mood and saves them as a Deezer playlist.
func (r *Runner) DeezerExport(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: mood description", shared.ErrMissingArgument)
	}
	lang, err := r.language(cmd)
	if err != nil {
		return err
	}

	exporter, err := r.exportEngine()
	if err != nil {
		return err
	}
	// Fail before discovery when the export would be refused anyway.
	if status := r.deezer.Status(); !status.Enabled {
		return r.authHint(shared.ErrOAuthDisabled)
	} else if !status.Authenticated {
		return r.authHint(shared.ErrNotAuthenticated)
	}
	discovery, err := r.discoveryEngine(true)
	if err != nil {
		return err
	}

	useJSON := cmd.Bool("json")
	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	if useJSON {
		go func() {
			defer close(done)
			for range progress {
			}
		}()
	} else {
		go r.printProgress(progress, done)
	}

	run, err := discovery.Discover(ctx, query, lang, progress)
	var exported *tasks.ExportRun
	if err == nil {
		exported, err = exporter.Export(ctx, run.Result, progress)
	}
	close(progress)
	<-done
	if err != nil {
		return r.authHint(err)
	}

	if cmd.Bool("open") {
		if via, err := tasks.Open(exported.Playlist); err != nil {
			r.logger.Warn("failed to open playlist", "error", err)
		} else {
			r.logger.Debug("opened playlist", "via", via)
		}
	}

	if useJSON {
		return r.writeJSON(exported.Playlist, cmd.Bool("pretty"))
	}

	r.writePlain("\n✓ Playlist created: %s\n", exported.Playlist.Title)
	r.writePlain("  Tracks: %d\n", exported.Playlist.TrackCount)
	r.writePlain("  Link: %s\n", exported.Playlist.URL)
	return nil
}

// DeezerHistory lists recorded exports, most recent first.
func (r *Runner) DeezerHistory(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	records, err := repositories.NewExportRepository(db).List(map[string]any{"limit": cmd.Int("limit")})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		type row struct {
			PlaylistID string    `json:"playlist_id"`
			Title      string    `json:"title"`
			Mood       string    `json:"mood"`
			URL        string    `json:"url"`
			Tracks     int       `json:"tracks"`
			CreatedAt  time.Time `json:"created_at"`
		}
		rows := make([]row, 0, len(records))
		for _, rec := range records {
			rows = append(rows, row{rec.PlaylistID, rec.Title, rec.Mood, rec.URL, rec.TrackCount, rec.CreatedAt()})
		}
		return r.writeJSON(rows, cmd.Bool("pretty"))
	}

	if len(records) == 0 {
		return r.writePlain("No playlists exported yet.\n")
	}
	r.writePlain("Exported %d playlists:\n\n", len(records))
	for i, rec := range records {
		r.writePlain("%d. %s (%d tracks)\n", i+1, rec.Title, rec.TrackCount)
		r.writePlain("   Mood: %s\n", rec.Mood)
		r.writePlain("   Link: %s\n", rec.URL)
		r.writePlain("   Created: %s\n\n", rec.CreatedAt().Local().Format("2006-01-02 15:04"))
	}
	return nil
}

// authHint adds the next step to session errors.
func (r *Runner) authHint(err error) error {
	switch {
	case errors.Is(err, shared.ErrOAuthDisabled):
		return fmt.Errorf("%w (set credentials.deezer.app_id and secret_key)", err)
	case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrTokenExpired):
		return fmt.Errorf("%w (run 'moodtune deezer auth')", err)
	}
	return err
}
