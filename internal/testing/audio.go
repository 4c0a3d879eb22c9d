package testing

import (
	"errors"

	"github.com/desertthunder/moodtune/internal/player"
)

// FakeResource is an in-memory [player.Resource] that records every call.
type FakeResource struct {
	id      string
	URL     string
	Playing bool
	Volume  float64
	Seeks   []float64
	Plays   int
	Pauses  int
	Closed  bool
	PlayErr error
}

func (r *FakeResource) ID() string { return r.id }

func (r *FakeResource) Play() error {
	r.Plays++
	if r.PlayErr != nil {
		return r.PlayErr
	}
	r.Playing = true
	return nil
}

func (r *FakeResource) Pause()               { r.Pauses++; r.Playing = false }
func (r *FakeResource) Seek(seconds float64) { r.Seeks = append(r.Seeks, seconds) }
func (r *FakeResource) SetVolume(v float64)  { r.Volume = v }

func (r *FakeResource) Close() error {
	r.Closed = true
	r.Playing = false
	return nil
}

// Ready builds the event a loaded resource would emit.
func (r *FakeResource) Ready(duration float64) player.Event {
	return player.Event{Resource: r.id, Kind: player.EventReady, Duration: duration}
}

func (r *FakeResource) Progress(elapsed float64) player.Event {
	return player.Event{Resource: r.id, Kind: player.EventProgress, Elapsed: elapsed}
}

func (r *FakeResource) Ended() player.Event {
	return player.Event{Resource: r.id, Kind: player.EventEnded}
}

func (r *FakeResource) Failed(err error) player.Event {
	return player.Event{Resource: r.id, Kind: player.EventError, Err: err}
}

// FakeFactory opens [FakeResource] values and keeps all of them for inspection.
type FakeFactory struct {
	Opened  []*FakeResource
	OpenErr error
	PlayErr map[string]error // keyed by URL
}

func (f *FakeFactory) Open(id, url string) (player.Resource, error) {
	if f.OpenErr != nil {
		return nil, f.OpenErr
	}
	r := &FakeResource{id: id, URL: url, PlayErr: f.PlayErr[url]}
	f.Opened = append(f.Opened, r)
	return r, nil
}

// Last returns the most recently opened resource.
func (f *FakeFactory) Last() *FakeResource {
	if len(f.Opened) == 0 {
		return nil
	}
	return f.Opened[len(f.Opened)-1]
}

// Live counts resources that have not been closed.
func (f *FakeFactory) Live() int {
	n := 0
	for _, r := range f.Opened {
		if !r.Closed {
			n++
		}
	}
	return n
}

var ErrFakePlayback = errors.New("fake playback failure")
