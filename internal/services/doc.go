// Package services implements the HTTP clients for the discovery backend and Deezer.
//
// # Discovery
//
// [DiscoveryService] implements [Discoverer] against the mood backend:
//   - POST /api/discover with {"user_query", "language"}
//   - GET /api/health
//
// Backend failures (non-2xx responses carrying {"error","error_code"} or {"detail"},
// unsuccessful payloads, transport errors) are all reported as [shared.ErrDiscoveryFailed]
// so callers can show one generic, retryable message. The backend's own reason is kept
// in the wrapped [APIError] for logs.
//
// # Deezer
//
// [DeezerService] implements [PlaylistExporter] and [OAuthService].
//
// Deezer's OAuth is not standard: the authorization URL takes app_id and perms instead of
// client_id and scope, the token exchange is a GET returning {"access_token","expires"}, and
// API calls carry the token as an access_token query parameter. [oauth2.Config] builds the
// authorization URL and [oauth2.Token] carries the session; the exchange is done by hand.
//
// Deezer reports most errors as HTTP 200 with an {"error": {...}} body. These map to:
//   - [shared.ErrTokenExpired] : OAuthException or code 300
//   - [shared.ErrAPIRequest] : anything else
//
// Requests are throttled with a [rate.Limiter] (Deezer allows 50 requests per 5 seconds).
//
// Playlist creation is two calls: create the playlist, then add tracks. If adding tracks
// fails, the playlist is deleted before the error is returned.
package services
