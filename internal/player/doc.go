// Package player implements the playlist audio player.
//
// A [Player] owns the current track selection, the transport state and the
// advance policy for a read-only [models.Playlist]. It is bound to at most one
// audio [Resource] at a time, always the preview of the selected track.
//
// The player is not safe for concurrent use. One goroutine issues commands and
// feeds resource [Event] values to [Player.HandleEvent]; events are matched by
// resource identity, so callbacks from a released resource are ignored even
// when the same track is selected again.
//
// Per-track phases:
//
//	Idle     -> Ready    (resource reported its duration)
//	Ready    -> Playing  (Play)
//	Playing <-> Paused   (Pause / Play)
//	Playing  -> advance policy on natural end, Ended after the last track
//	any      -> Idle     (resource error; Play retries)
package player
