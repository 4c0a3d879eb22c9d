package player

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/shared"
)

const (
	DefaultVolume           = 0.7
	DefaultFallbackDuration = 30.0
	DefaultRestartThreshold = 3.0
)

// Option configures a [Player].
type Option func(*Player)

// WithLogger sets the logger used for resource lifecycle messages.
func WithLogger(l *log.Logger) Option {
	return func(p *Player) { p.logger = l }
}

// WithRandom replaces the index picker used by shuffle. f must return a value in [0,n).
func WithRandom(f func(n int) int) Option {
	return func(p *Player) { p.random = f }
}

// WithVolume sets the initial volume.
func WithVolume(v float64) Option {
	return func(p *Player) { p.volume = clamp(v, 0, 1) }
}

// WithFallbackDuration sets the duration hint used before a resource reports one.
func WithFallbackDuration(seconds float64) Option {
	return func(p *Player) {
		if seconds > 0 {
			p.fallback = seconds
		}
	}
}

// WithRestartThreshold sets how far into a track Previous restarts instead of moving back.
func WithRestartThreshold(seconds float64) Option {
	return func(p *Player) {
		if seconds >= 0 {
			p.restart = seconds
		}
	}
}

// Player is the playlist audio player state machine.
type Player struct {
	playlist models.Playlist
	factory  Factory
	logger   *log.Logger
	random   func(n int) int
	fallback float64
	restart  float64

	index     int
	res       Resource
	phase     Phase
	transport Transport
	elapsed   float64
	duration  float64
	volume    float64
	shuffle   bool
	repeat    bool
	liked     map[int]bool
	err       error
	closed    bool
}

// New creates a player for playlist and selects the first track.
//
// An empty playlist yields a disabled player whose commands return [ErrNoContent].
func New(playlist models.Playlist, factory Factory, opts ...Option) *Player {
	p := &Player{
		playlist: playlist,
		factory:  factory,
		logger:   log.New(io.Discard),
		random:   rand.IntN,
		fallback: DefaultFallbackDuration,
		restart:  DefaultRestartThreshold,
		volume:   DefaultVolume,
		liked:    make(map[int]bool),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.duration = p.fallback
	if p.Enabled() {
		p.bind(0)
	}
	return p
}

// Enabled reports whether the player has any tracks.
func (p *Player) Enabled() bool { return len(p.playlist.Tracks) > 0 }

// Playlist returns the playlist the player was built with.
func (p *Player) Playlist() models.Playlist { return p.playlist }

// State returns a snapshot for rendering.
func (p *Player) State() State {
	s := State{
		Enabled:   p.Enabled(),
		Index:     p.index,
		Phase:     p.phase,
		Transport: p.transport,
		Elapsed:   p.elapsed,
		Duration:  p.duration,
		Volume:    p.volume,
		Shuffle:   p.shuffle,
		Repeat:    p.repeat,
		Liked:     p.liked[p.index],
		Err:       p.err,
	}
	if !s.Enabled {
		return s
	}
	s.Track = p.playlist.Tracks[p.index]
	s.CanPlay = !p.closed && s.Track.HasPreview()
	s.Loading = p.phase == PhaseIdle && p.res != nil
	return s
}

// Select binds the track at index i. The previous resource is always released.
func (p *Player) Select(i int) error {
	if err := p.check(); err != nil {
		return err
	}
	if i < 0 || i >= len(p.playlist.Tracks) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	p.bind(i)
	return nil
}

// Play starts or resumes the current track.
//
// From Idle after a failure the track is rebound and started. A resource that
// fails to start leaves the player Idle with the error recorded; the error is
// also returned.
func (p *Player) Play() error {
	if err := p.check(); err != nil {
		return err
	}
	if !p.current().HasPreview() {
		return ErrNoPreview
	}

	switch p.phase {
	case PhasePlaying:
		return nil
	case PhaseIdle:
		if p.res != nil {
			return ErrNotReady
		}
		p.bind(p.index)
		if p.res == nil {
			return p.err
		}
	case PhaseEnded:
		p.res.Seek(0)
		p.elapsed = 0
	}
	return p.start()
}

// Pause pauses a playing track.
func (p *Player) Pause() error {
	if err := p.check(); err != nil {
		return err
	}
	if p.phase != PhasePlaying {
		return fmt.Errorf("%w: pause while %s", ErrInvalidState, p.phase)
	}
	p.res.Pause()
	p.phase = PhasePaused
	p.transport = Paused
	return nil
}

// TogglePlay pauses a playing track and plays anything else.
func (p *Player) TogglePlay() error {
	if p.phase == PhasePlaying && !p.closed {
		return p.Pause()
	}
	return p.Play()
}

// Seek moves to t seconds, clamped to the duration hint. Transport is unchanged.
func (p *Player) Seek(t float64) error {
	if err := p.check(); err != nil {
		return err
	}
	switch p.phase {
	case PhaseReady, PhasePlaying, PhasePaused:
	default:
		return fmt.Errorf("%w: seek while %s", ErrInvalidState, p.phase)
	}
	t = clamp(t, 0, p.duration)
	p.res.Seek(t)
	p.elapsed = t
	return nil
}

// SetVolume clamps v to [0,1] and applies it now and to later bindings.
func (p *Player) SetVolume(v float64) error {
	if err := p.check(); err != nil {
		return err
	}
	p.volume = clamp(v, 0, 1)
	if p.res != nil {
		p.res.SetVolume(p.volume)
	}
	return nil
}

// Next selects the following track, or a random one when shuffle is on.
// On the last track without shuffle it does nothing.
func (p *Player) Next() error {
	if err := p.check(); err != nil {
		return err
	}
	switch {
	case p.shuffle:
		p.bind(p.random(len(p.playlist.Tracks)))
	case p.index < len(p.playlist.Tracks)-1:
		p.bind(p.index + 1)
	}
	return nil
}

// Previous restarts the current track once past the restart threshold,
// otherwise selects the preceding track. On the first track it does nothing.
func (p *Player) Previous() error {
	if err := p.check(); err != nil {
		return err
	}
	if p.elapsed > p.restart && p.res != nil {
		return p.Seek(0)
	}
	if p.index > 0 {
		p.bind(p.index - 1)
	}
	return nil
}

// ToggleShuffle flips shuffle and returns the new value. A disabled or closed
// player is left unchanged.
func (p *Player) ToggleShuffle() bool {
	if p.check() == nil {
		p.shuffle = !p.shuffle
	}
	return p.shuffle
}

func (p *Player) ToggleRepeat() bool {
	if p.check() == nil {
		p.repeat = !p.repeat
	}
	return p.repeat
}

// ToggleLike flips the session-only like flag of the current track.
func (p *Player) ToggleLike() bool {
	if p.check() != nil {
		return false
	}
	p.liked[p.index] = !p.liked[p.index]
	return p.liked[p.index]
}

// Liked reports the like flag of track i.
func (p *Player) Liked(i int) bool { return p.liked[i] }

// HandleEvent applies a resource callback. It reports false when the event
// belongs to a resource that is no longer bound.
func (p *Player) HandleEvent(ev Event) bool {
	if p.closed || p.res == nil || ev.Resource != p.res.ID() {
		return false
	}

	switch ev.Kind {
	case EventReady:
		if ev.Duration > 0 {
			p.duration = ev.Duration
		}
		if p.phase == PhaseIdle {
			p.phase = PhaseReady
			p.transport = Paused
		}
	case EventProgress:
		if p.phase == PhasePlaying && ev.Elapsed > p.elapsed {
			p.elapsed = min(ev.Elapsed, p.duration)
		}
	case EventEnded:
		if p.phase == PhasePlaying {
			p.advance()
		}
	case EventError:
		err := ev.Err
		if err == nil {
			err = errors.New("playback error")
		}
		p.fail(err)
	}
	return true
}

// Close releases the bound resource. Later commands return [ErrClosed].
func (p *Player) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	p.release()
	p.phase = PhaseIdle
	p.transport = Stopped
	return nil
}

func (p *Player) check() error {
	if p.closed {
		return ErrClosed
	}
	if !p.Enabled() {
		return ErrNoContent
	}
	return nil
}

func (p *Player) current() models.Track { return p.playlist.Tracks[p.index] }

// advance applies the end-of-track policy: repeat, then shuffle, then next, then stop.
func (p *Player) advance() {
	last := len(p.playlist.Tracks) - 1
	switch {
	case p.repeat:
		p.res.Seek(0)
		p.elapsed = 0
		p.start()
	case p.shuffle:
		p.bind(p.random(last + 1))
		p.autoplay()
	case p.index < last:
		p.bind(p.index + 1)
		p.autoplay()
	default:
		p.res.Pause()
		p.res.Seek(0)
		p.elapsed = 0
		p.phase = PhaseEnded
		p.transport = Stopped
	}
}

// autoplay starts a freshly bound track when it has a preview. Tracks without
// one stay Idle and the advance stops there.
func (p *Player) autoplay() {
	if p.res != nil {
		p.start()
	}
}

func (p *Player) start() error {
	if err := p.res.Play(); err != nil {
		p.fail(err)
		return err
	}
	p.phase = PhasePlaying
	p.transport = Playing
	p.err = nil
	return nil
}

// bind releases the current resource and opens one for track i.
func (p *Player) bind(i int) {
	p.release()

	p.index = i
	p.elapsed = 0
	p.transport = Stopped
	p.phase = PhaseIdle
	p.err = nil

	// Track.Duration is the full song; previews are shorter.
	track := p.playlist.Tracks[i]
	p.duration = p.fallback
	if !track.HasPreview() {
		return
	}

	id := shared.GenerateID()
	res, err := p.factory.Open(id, track.PreviewURL)
	if err != nil {
		p.logger.Warn("failed to open preview", "track", track.ID, "err", err)
		p.err = err
		return
	}
	res.SetVolume(p.volume)
	p.res = res
	p.logger.Debug("bound preview", "track", track.ID, "resource", id)
}

func (p *Player) release() {
	if p.res == nil {
		return
	}
	if err := p.res.Close(); err != nil {
		p.logger.Warn("failed to release preview", "resource", p.res.ID(), "err", err)
	}
	p.res = nil
}

func (p *Player) fail(err error) {
	p.logger.Warn("playback failed", "track", p.current().ID, "err", err)
	p.release()
	p.phase = PhaseIdle
	p.transport = Stopped
	p.elapsed = 0
	p.err = err
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
