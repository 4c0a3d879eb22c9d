// Deezer API implementation of [PlaylistExporter] and [OAuthService]
//
// Deezer API reference: https://developers.deezer.com/api
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	deezerOAuthURL = "https://connect.deezer.com/oauth"
	deezerAPIURL   = "https://api.deezer.com"
	deezerWebURL   = "https://www.deezer.com"
	deezerAppURL   = "deezer://www.deezer.com"
	deezerPerms    = "manage_library,offline_access"

	// Deezer allows 50 requests per 5 seconds per user.
	defaultDeezerRate  = 10.0
	defaultDeezerBurst = 5
)

// deezerError is the {"error": {...}} envelope Deezer returns, usually with HTTP 200.
type deezerError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (e *deezerError) Error() string {
	return fmt.Sprintf("deezer %s (code %d): %s", e.Type, e.Code, e.Message)
}

func (e *deezerError) expired() bool {
	return e.Type == "OAuthException" || e.Code == 300
}

// DeezerOption configures a [DeezerService].
type DeezerOption func(*DeezerService)

// WithHTTPClient sets the client used for API and token calls.
func WithHTTPClient(c *http.Client) DeezerOption {
	return func(d *DeezerService) { d.httpClient = c }
}

// WithDeezerURLs overrides the API and OAuth base URLs.
func WithDeezerURLs(apiURL, oauthURL string) DeezerOption {
	return func(d *DeezerService) {
		if apiURL != "" {
			d.apiURL = strings.TrimRight(apiURL, "/")
		}
		if oauthURL != "" {
			d.oauthURL = strings.TrimRight(oauthURL, "/")
		}
	}
}

// WithRateLimit sets the sustained request rate in requests per second.
func WithRateLimit(perSecond float64) DeezerOption {
	return func(d *DeezerService) {
		if perSecond > 0 {
			d.limiter = rate.NewLimiter(rate.Limit(perSecond), defaultDeezerBurst)
		}
	}
}

// WithDeezerLogger sets the service logger.
func WithDeezerLogger(l *log.Logger) DeezerOption {
	return func(d *DeezerService) { d.logger = l }
}

// DeezerService talks to Deezer's OAuth endpoints and REST API.
type DeezerService struct {
	config     *oauth2.Config
	appID      string
	secret     string
	token      *oauth2.Token
	httpClient *http.Client
	limiter    *rate.Limiter
	apiURL     string
	oauthURL   string
	logger     *log.Logger
}

// NewDeezerService creates a Deezer client from app_id, secret_key and redirect_uri.
//
// Missing app credentials do not fail construction: the service reports OAuth as
// disabled through [DeezerService.Status] instead.
func NewDeezerService(credentials map[string]string, opts ...DeezerOption) *DeezerService {
	redirectURI := credentials["redirect_uri"]
	if redirectURI == "" {
		redirectURI = "http://localhost:3000/callback"
	}

	d := &DeezerService{
		appID:      credentials["app_id"],
		secret:     credentials["secret_key"],
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(defaultDeezerRate), defaultDeezerBurst),
		apiURL:     deezerAPIURL,
		oauthURL:   deezerOAuthURL,
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.config = &oauth2.Config{
		ClientID:     d.appID,
		ClientSecret: d.secret,
		RedirectURL:  redirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:  d.oauthURL + "/auth.php",
			TokenURL: d.oauthURL + "/access_token.php",
		},
	}
	return d
}

func (d *DeezerService) Name() string {
	return "Deezer"
}

// Configured reports whether app credentials are present.
func (d *DeezerService) Configured() bool {
	return d.appID != "" && d.secret != ""
}

// AuthURL returns the Deezer authorization URL.
func (d *DeezerService) AuthURL(state string) string {
	return d.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("app_id", d.appID),
		oauth2.SetAuthURLParam("perms", deezerPerms),
	)
}

// Exchange trades an authorization code for an access token and stores it.
//
// An "expires" of 0 means the token does not expire (offline_access).
func (d *DeezerService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if !d.Configured() {
		return nil, shared.ErrOAuthDisabled
	}
	if code == "" {
		return nil, fmt.Errorf("%w: empty authorization code", shared.ErrAuthFailed)
	}

	params := url.Values{}
	params.Set("app_id", d.appID)
	params.Set("secret", d.secret)
	params.Set("code", code)
	params.Set("output", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.config.Endpoint.TokenURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: token endpoint status %d", shared.ErrAuthFailed, resp.StatusCode)
	}

	var payload struct {
		AccessToken string      `json:"access_token"`
		Expires     json.Number `json:"expires"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.AccessToken == "" {
		return nil, fmt.Errorf("%w: %s", shared.ErrAuthFailed, strings.TrimSpace(string(body)))
	}

	token := &oauth2.Token{AccessToken: payload.AccessToken, TokenType: "Bearer"}
	if secs, err := payload.Expires.Int64(); err == nil && secs > 0 {
		token.Expiry = time.Now().Add(time.Duration(secs) * time.Second)
	}

	d.token = token
	d.logger.Info("deezer token obtained", "expires", token.Expiry)
	return token, nil
}

// Authenticate loads a session from credentials: "access_token" (with an optional RFC 3339
// "expiry") or an "auth_code" to exchange.
func (d *DeezerService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken := credentials["access_token"]; accessToken != "" {
		token := &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
		if raw := credentials["expiry"]; raw != "" {
			expiry, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return fmt.Errorf("%w: expiry: %v", shared.ErrInvalidCredentials, err)
			}
			token.Expiry = expiry
		}
		d.token = token
		return nil
	}

	if authCode := credentials["auth_code"]; authCode != "" {
		_, err := d.Exchange(ctx, authCode)
		return err
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrMissingCredentials)
}

// SetToken replaces the stored session. A nil token clears it.
func (d *DeezerService) SetToken(token *oauth2.Token) {
	d.token = token
}

// Token returns the stored session, or nil.
func (d *DeezerService) Token() *oauth2.Token {
	return d.token
}

// Status reports whether OAuth is configured and whether a live session is stored.
func (d *DeezerService) Status() models.AuthStatus {
	status := models.AuthStatus{Enabled: d.Configured()}
	if d.token != nil && d.token.AccessToken != "" {
		status.Expiry = d.token.Expiry
		status.Authenticated = d.token.Expiry.IsZero() || time.Now().Before(d.token.Expiry)
	}
	return status
}

// doRequest performs an authenticated call against the Deezer API and decodes the body into result.
func (d *DeezerService) doRequest(ctx context.Context, method, endpoint string, params url.Values, result any) error {
	if d.token == nil || d.token.AccessToken == "" {
		return shared.ErrNotAuthenticated
	}
	if !d.token.Expiry.IsZero() && time.Now().After(d.token.Expiry) {
		return shared.ErrTokenExpired
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTimeout, err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("access_token", d.token.AccessToken)

	req, err := http.NewRequestWithContext(ctx, method, d.apiURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: deezer status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if bytes.HasPrefix(bytes.TrimSpace(body), []byte("{")) {
		var envelope struct {
			Error *deezerError `json:"error"`
		}
		if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
			if envelope.Error.expired() {
				return fmt.Errorf("%w: %w", shared.ErrTokenExpired, envelope.Error)
			}
			return fmt.Errorf("%w: %w", shared.ErrAPIRequest, envelope.Error)
		}
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// CurrentUser retrieves the authenticated user's profile.
func (d *DeezerService) CurrentUser(ctx context.Context) (*models.DeezerUser, error) {
	var user models.DeezerUser
	if err := d.doRequest(ctx, http.MethodGet, "/user/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreatePlaylist creates an empty playlist and returns its id.
func (d *DeezerService) CreatePlaylist(ctx context.Context, title, description string) (string, error) {
	params := url.Values{}
	params.Set("title", title)
	if description != "" {
		params.Set("description", description)
	}

	var raw json.RawMessage
	if err := d.doRequest(ctx, http.MethodPost, "/user/me/playlists", params, &raw); err != nil {
		return "", err
	}

	var created struct {
		ID json.Number `json:"id"`
	}
	if err := json.Unmarshal(raw, &created); err != nil || created.ID == "" {
		return "", fmt.Errorf("%w: unexpected create response %s", shared.ErrAPIRequest, string(raw))
	}
	return created.ID.String(), nil
}

// AddTracks appends track ids to a playlist.
func (d *DeezerService) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return shared.ErrNoTracks
	}

	params := url.Values{}
	params.Set("songs", strings.Join(trackIDs, ","))

	var ok bool
	endpoint := fmt.Sprintf("/playlist/%s/tracks", url.PathEscape(playlistID))
	if err := d.doRequest(ctx, http.MethodPost, endpoint, params, &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: deezer refused the tracks", shared.ErrAPIRequest)
	}
	return nil
}

// DeletePlaylist removes a playlist owned by the user.
func (d *DeezerService) DeletePlaylist(ctx context.Context, playlistID string) error {
	endpoint := fmt.Sprintf("/playlist/%s", url.PathEscape(playlistID))
	return d.doRequest(ctx, http.MethodDelete, endpoint, nil, nil)
}

// CreateMoodPlaylist creates "Mood: <name>" with the requested tracks.
//
// If the tracks cannot be added the new playlist is deleted again.
func (d *DeezerService) CreateMoodPlaylist(ctx context.Context, req models.ExportRequest) (*models.ExportedPlaylist, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	title, description := req.Title(), req.Description()
	id, err := d.CreatePlaylist(ctx, title, description)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrExportFailed, err)
	}

	if err := d.AddTracks(ctx, id, req.TrackIDs); err != nil {
		// Cleanup must run even if ctx was cancelled mid-export.
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if delErr := d.DeletePlaylist(cleanupCtx, id); delErr != nil {
			d.logger.Error("failed to delete partial playlist", "playlist", id, "err", delErr)
			err = errors.Join(err, delErr)
		}
		return nil, fmt.Errorf("%w: %w", shared.ErrExportFailed, err)
	}

	d.logger.Info("exported playlist", "playlist", id, "tracks", len(req.TrackIDs))
	return &models.ExportedPlaylist{
		ID:          id,
		Title:       title,
		Description: description,
		URL:         fmt.Sprintf("%s/playlist/%s", deezerWebURL, id),
		AppURL:      fmt.Sprintf("%s/playlist/%s", deezerAppURL, id),
		TrackCount:  len(req.TrackIDs),
	}, nil
}
