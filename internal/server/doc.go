// Package server runs the short-lived local HTTP server that receives the Deezer OAuth callback.
//
// # Routing
//
// [Mux] mounts a [Handler] behind a [Middleware] chain, first added outermost,
// and refuses methods other than GET and HEAD.
//
// # OAuth Callback Handler
//
// [OAuthHandler] validates the state parameter, hands the authorization code to
// an [Exchanger] and reports the outcome once through [OAuthHandler.Result].
// Later callbacks are rejected.
//
// # Usage
//
// `moodtune deezer auth` opens the authorization URL in a browser and calls
// [WaitForCallback], which serves on the configured host and port until the
// callback arrives, the context ends or the timeout passes.
package server
