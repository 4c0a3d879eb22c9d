package player

// Resource is a single bound audio stream.
//
// Play is fire-and-forget: a resource may accept it before it has loaded and
// report the outcome later as an [Event]. Implementations must tolerate Close
// being called more than once.
type Resource interface {
	ID() string
	Play() error
	Pause()
	Seek(seconds float64)
	SetVolume(v float64)
	Close() error
}

// Factory binds new resources. The id is chosen by the player and must be
// carried on every [Event] the resource emits.
type Factory interface {
	Open(id, url string) (Resource, error)
}

// EventKind identifies a resource callback.
type EventKind int

const (
	EventReady EventKind = iota
	EventProgress
	EventEnded
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventReady:
		return "ready"
	case EventProgress:
		return "progress"
	case EventEnded:
		return "ended"
	default:
		return "error"
	}
}

// Event is a resource callback keyed by resource identity.
type Event struct {
	Resource string
	Kind     EventKind
	Duration float64 // EventReady
	Elapsed  float64 // EventProgress
	Err      error   // EventError
}
