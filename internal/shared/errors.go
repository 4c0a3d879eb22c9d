package shared

import "errors"

var (
	ErrNotImplemented = errors.New("not implemented")

	// Configuration errors
	ErrMissingConfig      = errors.New("configuration not found")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrMissingCredentials = errors.New("missing credentials")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Authentication errors
	ErrAuthFailed       = errors.New("authentication failed")
	ErrNotAuthenticated = errors.New("not authenticated with Deezer")
	ErrOAuthDisabled    = errors.New("Deezer OAuth is not configured")
	ErrTokenExpired     = errors.New("access token expired")
	ErrTimeout          = errors.New("operation timed out")

	// API and service errors
	ErrAPIRequest         = errors.New("API request failed")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrDiscoveryFailed    = errors.New("could not find music for this mood, try again")
	ErrExportFailed       = errors.New("failed to export playlist")
	ErrPlaylistNotFound   = errors.New("playlist not found")
	ErrCacheMiss          = errors.New("no cached discovery")

	// Input validation errors
	ErrInvalidInput    = errors.New("invalid input")
	ErrQueryTooShort   = errors.New("describe your mood in at least 10 characters")
	ErrQueryTooLong    = errors.New("mood description must be 500 characters or fewer")
	ErrInvalidLanguage = errors.New("unsupported language")
	ErrMissingArgument = errors.New("missing required argument")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidFlag     = errors.New("invalid flag value")
	ErrNoTracks        = errors.New("no tracks to export")
)
