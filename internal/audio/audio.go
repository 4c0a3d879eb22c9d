package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodtune/internal/player"
	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

const (
	sampleRate       beep.SampleRate = 44100
	progressInterval                 = 250 * time.Millisecond
	maxPreviewBytes                  = 16 << 20
)

// ErrDecode is reported when a preview is not a playable MP3.
var ErrDecode = errors.New("could not decode preview")

// Swapped in tests so no audio device is opened.
var (
	initSpeaker = func() error { return speaker.Init(sampleRate, sampleRate.N(time.Second/10)) }
	playSpeaker = speaker.Play
)

// Backend opens preview resources and fans their events into one channel.
type Backend struct {
	client *http.Client
	logger *log.Logger
	events chan player.Event

	initOnce sync.Once
	initErr  error
}

// NewBackend creates a backend. A nil client uses a 30 second timeout.
func NewBackend(client *http.Client, logger *log.Logger) *Backend {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Backend{client: client, logger: logger, events: make(chan player.Event, 32)}
}

// Events delivers resource callbacks. Feed them to [player.Player.HandleEvent].
func (b *Backend) Events() <-chan player.Event { return b.events }

func (b *Backend) speakerReady() error {
	b.initOnce.Do(func() {
		if err := initSpeaker(); err != nil {
			b.initErr = fmt.Errorf("failed to open audio output: %w", err)
		}
	})
	return b.initErr
}

// Open starts loading url in the background and returns immediately.
func (b *Backend) Open(id, url string) (player.Resource, error) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &preview{
		id:      id,
		url:     url,
		backend: b,
		cancel:  cancel,
		done:    make(chan struct{}),
		volume:  1,
	}
	go r.load(ctx)
	return r, nil
}

type preview struct {
	id      string
	url     string
	backend *Backend
	cancel  context.CancelFunc
	done    chan struct{}

	mu       sync.Mutex
	stream   beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	gain     *effects.Volume
	volume   float64
	wantPlay bool
	queued   bool // sequence is on the speaker
	ticking  bool
	closed   bool
}

type memReader struct{ *bytes.Reader }

func (memReader) Close() error { return nil }

func (r *preview) ID() string { return r.id }

// emit delivers lifecycle events even when the reader is slow and drops
// progress ticks instead of blocking.
func (r *preview) emit(ev player.Event) {
	ev.Resource = r.id
	if ev.Kind == player.EventProgress {
		select {
		case r.backend.events <- ev:
		default:
		}
		return
	}
	select {
	case r.backend.events <- ev:
	case <-r.done:
	}
}

func (r *preview) fail(err error) {
	r.backend.logger.Warn("preview failed", "resource", r.id, "error", err)
	r.emit(player.Event{Kind: player.EventError, Err: err})
}

func (r *preview) load(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		r.fail(fmt.Errorf("invalid preview URL: %w", err))
		return
	}

	resp, err := r.backend.client.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			r.fail(fmt.Errorf("failed to fetch preview: %w", err))
		}
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.fail(fmt.Errorf("failed to fetch preview: status %d", resp.StatusCode))
		return
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPreviewBytes))
	if err != nil {
		if ctx.Err() == nil {
			r.fail(fmt.Errorf("failed to read preview: %w", err))
		}
		return
	}

	stream, format, err := mp3.Decode(memReader{bytes.NewReader(data)})
	if err != nil {
		r.fail(fmt.Errorf("%w: %w", ErrDecode, err))
		return
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		stream.Close()
		return
	}
	r.stream, r.format = stream, format
	r.gain = &effects.Volume{Base: 2}
	r.gain.Streamer = beep.Resample(4, format.SampleRate, sampleRate, stream)
	r.ctrl = &beep.Ctrl{Streamer: r.gain, Paused: true}
	applyVolume(r.gain, r.volume)
	want := r.wantPlay
	r.mu.Unlock()

	r.emit(player.Event{Kind: player.EventReady, Duration: format.SampleRate.D(stream.Len()).Seconds()})

	if want {
		if err := r.Play(); err != nil {
			r.fail(err)
		}
	}
}

// Play starts or resumes output. Before the preview has loaded it only
// records the intent.
func (r *preview) Play() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return player.ErrClosed
	}
	if r.ctrl == nil {
		r.wantPlay = true
		return nil
	}

	if err := r.backend.speakerReady(); err != nil {
		return err
	}

	speaker.Lock()
	r.ctrl.Paused = false
	speaker.Unlock()

	if !r.queued {
		r.queued = true
		playSpeaker(beep.Seq(r.ctrl, beep.Callback(func() { go r.finished() })))
	}
	if !r.ticking {
		r.ticking = true
		go r.tick()
	}
	return nil
}

func (r *preview) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.wantPlay = false
	if r.ctrl == nil {
		return
	}
	speaker.Lock()
	r.ctrl.Paused = true
	speaker.Unlock()
}

func (r *preview) Seek(seconds float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stream == nil || r.closed {
		return
	}
	pos := r.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	pos = max(0, min(pos, r.stream.Len()-1))

	speaker.Lock()
	err := r.stream.Seek(pos)
	speaker.Unlock()
	if err != nil {
		r.backend.logger.Debug("seek failed", "resource", r.id, "error", err)
	}
}

func (r *preview) SetVolume(v float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.volume = v
	if r.gain == nil {
		return
	}
	speaker.Lock()
	applyVolume(r.gain, v)
	speaker.Unlock()
}

// applyVolume maps a linear 0..1 level onto the base-2 gain used by effects.Volume.
func applyVolume(g *effects.Volume, v float64) {
	g.Silent = v <= 0
	if v > 0 {
		g.Volume = math.Log2(v)
	}
}

func (r *preview) elapsed() (float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.ctrl == nil {
		return 0, false
	}
	speaker.Lock()
	defer speaker.Unlock()
	if r.ctrl.Paused {
		return 0, false
	}
	return r.format.SampleRate.D(r.stream.Position()).Seconds(), true
}

func (r *preview) tick() {
	t := time.NewTicker(progressInterval)
	defer t.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-t.C:
			if s, ok := r.elapsed(); ok {
				r.emit(player.Event{Kind: player.EventProgress, Elapsed: s})
			}
		}
	}
}

// finished runs after the speaker drains the sequence.
func (r *preview) finished() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.queued = false
	r.ctrl.Paused = true
	r.mu.Unlock()

	r.emit(player.Event{Kind: player.EventEnded})
}

// Close stops output and releases the decoder. Safe to call more than once.
func (r *preview) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	r.cancel()
	close(r.done)

	if r.ctrl == nil {
		return nil
	}

	speaker.Lock()
	r.ctrl.Streamer = nil
	err := r.stream.Close()
	speaker.Unlock()
	return err
}
