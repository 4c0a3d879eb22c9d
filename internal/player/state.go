package player

import "github.com/desertthunder/moodtune/internal/models"

// Transport is the coarse playback status shown to the user.
type Transport int

const (
	Stopped Transport = iota
	Playing
	Paused
)

func (t Transport) String() string {
	switch t {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// Phase is the lifecycle state of the selected track.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseReady
	PhasePlaying
	PhasePaused
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseReady:
		return "ready"
	case PhasePlaying:
		return "playing"
	case PhasePaused:
		return "paused"
	case PhaseEnded:
		return "ended"
	default:
		return "idle"
	}
}

// State is a snapshot of the player for rendering.
type State struct {
	Enabled   bool
	Index     int
	Track     models.Track
	Phase     Phase
	Transport Transport
	Elapsed   float64 // seconds
	Duration  float64 // seconds; a hint until the resource reports
	Volume    float64
	Shuffle   bool
	Repeat    bool
	Liked     bool
	CanPlay   bool
	Loading   bool
	Err       error
}

// Progress returns elapsed/duration in [0,1].
func (s State) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return min(max(s.Elapsed/s.Duration, 0), 1)
}
