package player

import "errors"

var (
	ErrNoContent       = errors.New("player has no tracks")
	ErrNoPreview       = errors.New("track has no preview")
	ErrNotReady        = errors.New("track is still loading")
	ErrInvalidState    = errors.New("command not valid in current state")
	ErrIndexOutOfRange = errors.New("track index out of range")
	ErrClosed          = errors.New("player is closed")
)
