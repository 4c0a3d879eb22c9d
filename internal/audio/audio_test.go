package audio

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/desertthunder/moodtune/internal/player"
	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
)

// queued receives every sequence handed to the speaker.
var queued = make(chan beep.Streamer, 8)

func init() {
	initSpeaker = func() error { return nil }
	playSpeaker = func(s ...beep.Streamer) {
		for _, st := range s {
			queued <- st
		}
	}
}

// silentMP3 builds mono MPEG-1 Layer III frames at 128 kbit/s and 44.1 kHz
// with zeroed side info, which decode to silence.
func silentMP3(frames int) []byte {
	frame := make([]byte, 417)
	copy(frame, []byte{0xFF, 0xFB, 0x90, 0xC4})
	return bytes.Repeat(frame, frames)
}

// drain streams s to exhaustion the way the speaker would.
func drain(t *testing.T, s beep.Streamer) {
	t.Helper()
	buf := make([][2]float64, 512)
	for i := 0; i < 10000; i++ {
		speaker.Lock()
		_, ok := s.Stream(buf)
		speaker.Unlock()
		if !ok {
			return
		}
	}
	t.Fatal("sequence never drained")
}

func nextQueued(t *testing.T) beep.Streamer {
	t.Helper()
	select {
	case s := <-queued:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("nothing was queued on the speaker")
		return nil
	}
}

// nextLifecycle skips progress ticks.
func nextLifecycle(t *testing.T, b *Backend) player.Event {
	t.Helper()
	for {
		if ev := nextEvent(t, b); ev.Kind != player.EventProgress {
			return ev
		}
	}
}

func nextEvent(t *testing.T, b *Backend) player.Event {
	t.Helper()
	select {
	case ev := <-b.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an event")
		return player.Event{}
	}
}

func TestOpen(t *testing.T) {
	t.Run("missing preview reports an error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		b := NewBackend(srv.Client(), nil)
		res, err := b.Open("r1", srv.URL+"/preview.mp3")
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		defer res.Close()

		ev := nextEvent(t, b)
		if ev.Kind != player.EventError || ev.Resource != "r1" || ev.Err == nil {
			t.Errorf("unexpected event %+v", ev)
		}
	})

	t.Run("invalid mp3 reports a decode error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("definitely not audio"))
		}))
		defer srv.Close()

		b := NewBackend(srv.Client(), nil)
		res, _ := b.Open("r2", srv.URL)
		defer res.Close()

		if err := res.Play(); err != nil {
			t.Errorf("Play before load should be accepted, got %v", err)
		}

		ev := nextEvent(t, b)
		if ev.Kind != player.EventError || !errors.Is(ev.Err, ErrDecode) {
			t.Errorf("expected decode error, got %+v", ev)
		}
	})

	t.Run("bad URL", func(t *testing.T) {
		b := NewBackend(nil, nil)
		res, _ := b.Open("r3", "://nope")
		defer res.Close()

		if ev := nextEvent(t, b); ev.Kind != player.EventError {
			t.Errorf("expected error event, got %+v", ev)
		}
	})

	t.Run("closing while loading is silent", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		b := NewBackend(srv.Client(), nil)
		res, _ := b.Open("r4", srv.URL)

		if err := res.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
		if err := res.Close(); err != nil {
			t.Errorf("second Close failed: %v", err)
		}
		if err := res.Play(); !errors.Is(err, player.ErrClosed) {
			t.Errorf("expected ErrClosed, got %v", err)
		}

		select {
		case ev := <-b.Events():
			t.Errorf("unexpected event after close: %+v", ev)
		case <-time.After(100 * time.Millisecond):
		}
	})
}

func TestPlayback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(silentMP3(40))
	}))
	defer srv.Close()

	b := NewBackend(srv.Client(), nil)
	res, err := b.Open("p1", srv.URL+"/preview.mp3")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer res.Close()

	ev := nextLifecycle(t, b)
	if ev.Kind != player.EventReady || ev.Resource != "p1" {
		t.Fatalf("expected ready, got %+v", ev)
	}
	// 40 frames of 1152 samples
	if ev.Duration < 0.9 || ev.Duration > 1.2 {
		t.Errorf("unexpected duration %v", ev.Duration)
	}

	if err := res.Play(); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	drain(t, nextQueued(t))

	if ev := nextLifecycle(t, b); ev.Kind != player.EventEnded || ev.Resource != "p1" {
		t.Fatalf("expected ended, got %+v", ev)
	}

	t.Run("replays after seeking to the start", func(t *testing.T) {
		res.Seek(0)
		if err := res.Play(); err != nil {
			t.Fatalf("Play after end failed: %v", err)
		}
		drain(t, nextQueued(t))

		if ev := nextLifecycle(t, b); ev.Kind != player.EventEnded {
			t.Errorf("expected a second ended event, got %+v", ev)
		}
	})

	t.Run("play while queued does not queue twice", func(t *testing.T) {
		res.Seek(0)
		res.Play()
		res.Pause()
		res.Play()

		nextQueued(t)
		select {
		case <-queued:
			t.Error("resume must reuse the queued sequence")
		case <-time.After(50 * time.Millisecond):
		}
	})
}

func TestApplyVolume(t *testing.T) {
	tc := []struct {
		in     float64
		silent bool
		gain   float64
	}{
		{0, true, 0},
		{1, false, 0},
		{0.5, false, -1},
		{0.25, false, -2},
	}

	for _, c := range tc {
		g := &effects.Volume{Base: 2}
		applyVolume(g, c.in)
		if g.Silent != c.silent || g.Volume != c.gain {
			t.Errorf("applyVolume(%v) = silent %v gain %v, want %v %v", c.in, g.Silent, g.Volume, c.silent, c.gain)
		}
	}
}

func TestResourceBeforeLoad(t *testing.T) {
	r := &preview{id: "x", done: make(chan struct{}), cancel: func() {}, backend: NewBackend(nil, nil), volume: 1}

	r.SetVolume(0.3)
	r.Seek(10)
	r.Pause()
	if r.volume != 0.3 || r.wantPlay {
		t.Errorf("unexpected state volume=%v wantPlay=%v", r.volume, r.wantPlay)
	}
	if err := r.Play(); err != nil || !r.wantPlay {
		t.Errorf("Play should record intent, got err=%v wantPlay=%v", err, r.wantPlay)
	}
	if r.ID() != "x" {
		t.Errorf("unexpected id %q", r.ID())
	}
}
