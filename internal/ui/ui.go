package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/player"
	"github.com/desertthunder/moodtune/internal/shared"
	"github.com/desertthunder/moodtune/internal/speech"
	"github.com/desertthunder/moodtune/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	IdleView ViewState = iota
	LoadingView
	ResultsView
	ErrorView
)

const (
	seekStep   = 5.0
	volumeStep = 0.1
)

// Preferences is the read-only view of user settings the TUI needs.
type Preferences interface {
	Language() string
	Theme() string
}

// Discoverer runs a mood discovery, see [tasks.DiscoveryEngine].
type Discoverer interface {
	Discover(ctx context.Context, query string, lang models.Language, progress chan<- tasks.ProgressUpdate) (*tasks.DiscoveryRun, error)
}

// Exporter saves results as a playlist, see [tasks.ExportEngine].
type Exporter interface {
	Export(ctx context.Context, result *models.DiscoverResult, progress chan<- tasks.ProgressUpdate) (*tasks.ExportRun, error)
}

// Listener transcribes one utterance, see [speech.Session].
type Listener interface {
	SetLanguage(lang models.Language)
	Listen(ctx context.Context) (string, error)
}

// AudioBackend opens preview resources and reports their events.
type AudioBackend interface {
	player.Factory
	Events() <-chan player.Event
}

// Deps are the collaborators of the TUI. Only Discovery is required.
type Deps struct {
	Discovery Discoverer
	Export    Exporter
	Audio     AudioBackend
	Speech    Listener
	Player    []player.Option
	Logger    *log.Logger
	Opener    func(*models.ExportedPlaylist) (string, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc
	deps   Deps
	lang   models.Language
	styles *Palette
	logger *log.Logger

	view   ViewState
	width  int
	height int

	input    textinput.Model
	spinner  spinner.Model
	tracks   list.Model
	bar      progress.Model
	help     help.Model
	keys     keyMap
	seq      int
	query    string
	progress tasks.ProgressUpdate

	player      *player.Player
	result      *models.DiscoverResult
	cached      bool
	pendingPlay bool

	exporting bool
	exported  *models.ExportedPlaylist
	listening bool

	notice string // transient one-line feedback
	inline string // validation message under the input
	err    error
}

// NewModel creates the TUI model. Preferences are read once.
func NewModel(ctx context.Context, prefs Preferences, deps Deps) *Model {
	lang, err := models.ParseLanguage(prefs.Language())
	if err != nil {
		lang = models.English
	}
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	if deps.Opener == nil {
		deps.Opener = tasks.Open
	}

	ti := textinput.New()
	ti.Prompt = "› "
	ti.Width = 60
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	styles := PaletteFor(prefs.Theme())
	delegate := list.NewDefaultDelegate()
	tracks := list.New(nil, delegate, 0, 0)
	tracks.SetShowHelp(false)
	tracks.SetShowStatusBar(false)
	tracks.SetFilteringEnabled(false)

	ctx, cancel := context.WithCancel(ctx)
	m := &Model{
		ctx:     ctx,
		cancel:  cancel,
		deps:    deps,
		lang:    lang,
		styles:  styles,
		logger:  deps.Logger,
		view:    IdleView,
		input:   ti,
		spinner: sp,
		tracks:  tracks,
		bar:     progress.New(progress.WithSolidFill(styles.accent), progress.WithoutPercentage(), progress.WithWidth(40)),
		help:    help.New(),
		keys:    newKeyMap(),
	}
	m.localize()
	return m
}

func (m *Model) t(p phrase) string { return text(m.lang, p) }

func (m *Model) localize() {
	m.input.Placeholder = m.t(phPlaceholder)
}

// ViewState returns the current view.
func (m *Model) ViewState() ViewState { return m.view }

// Init starts the cursor blink and the audio event pump.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForAudio())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.tracks.SetSize(max(msg.Width-4, 20), max(msg.Height-14, 5))
		m.bar.Width = max(min(msg.Width-20, 60), 10)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case IdleView:
			return m.handleIdleKeys(msg)
		case LoadingView:
			return m.handleLoadingKeys(msg)
		case ResultsView:
			return m.handleResultsKeys(msg)
		case ErrorView:
			return m.handleErrorKeys(msg)
		}

	case spinner.TickMsg:
		if m.view != LoadingView && !m.exporting && !m.listening {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.progress = msg.update
		return m, nil

	case discoveredMsg:
		return m.handleDiscovered(msg)

	case audioEventMsg:
		m.handleAudio(player.Event(msg))
		return m, m.waitForAudio()

	case exportedMsg:
		return m.handleExported(msg)

	case transcriptMsg:
		return m.handleTranscript(msg)

	case openedMsg:
		if msg.err != nil {
			m.notice = msg.err.Error()
		}
		return m, nil
	}

	if m.view == IdleView {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleIdleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, idleQuit):
		if m.result != nil && msg.String() == "esc" {
			m.view = ResultsView
			m.input.Blur()
			return m, nil
		}
		return m, m.quit()
	case key.Matches(msg, m.keys.submit):
		return m, m.submit(m.input.Value())
	case key.Matches(msg, m.keys.voice):
		return m, m.listen()
	case key.Matches(msg, m.keys.lang):
		if m.lang == models.English {
			m.lang = models.Spanish
		} else {
			m.lang = models.English
		}
		m.localize()
		m.inline = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.inline = ""
	return m, cmd
}

func (m *Model) handleLoadingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, m.quit()
	case "esc":
		m.seq++
		m.toIdle()
		return m, textinput.Blink
	}
	return m, nil
}

func (m *Model) handleErrorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.retry):
		return m, m.submit(m.query)
	case key.Matches(msg, m.keys.search), key.Matches(msg, m.keys.back):
		m.toIdle()
		return m, textinput.Blink
	}
	return m, nil
}

func (m *Model) handleResultsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.player
	var err error

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.search):
		m.toIdle()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.export):
		return m, m.export()
	case key.Matches(msg, m.keys.open):
		return m, m.open()
	case p == nil || !p.Enabled():
		return m, nil
	case key.Matches(msg, m.keys.choose):
		err = m.choose(m.tracks.Index())
	case key.Matches(msg, m.keys.toggle):
		err = m.toggle()
	case key.Matches(msg, m.keys.next):
		err = m.skip(p.Next)
	case key.Matches(msg, m.keys.prev):
		err = m.skip(p.Previous)
	case key.Matches(msg, m.keys.forward):
		s := p.State()
		err = p.Seek(s.Elapsed + seekStep)
	case key.Matches(msg, m.keys.rewind):
		s := p.State()
		err = p.Seek(s.Elapsed - seekStep)
	case key.Matches(msg, m.keys.louder):
		err = p.SetVolume(p.State().Volume + volumeStep)
	case key.Matches(msg, m.keys.quieter):
		err = p.SetVolume(p.State().Volume - volumeStep)
	case key.Matches(msg, m.keys.shuffle):
		p.ToggleShuffle()
	case key.Matches(msg, m.keys.repeat):
		p.ToggleRepeat()
	case key.Matches(msg, m.keys.like):
		p.ToggleLike()
	default:
		var cmd tea.Cmd
		m.tracks, cmd = m.tracks.Update(msg)
		return m, cmd
	}

	m.report(err)
	m.sync()
	return m, nil
}

// choose binds track i and starts it once it is ready.
func (m *Model) choose(i int) error {
	if err := m.player.Select(i); err != nil {
		return err
	}
	if !m.player.State().CanPlay {
		m.pendingPlay = false
		return player.ErrNoPreview
	}
	m.pendingPlay = true
	return nil
}

func (m *Model) toggle() error {
	s := m.player.State()
	if s.Loading {
		m.pendingPlay = !m.pendingPlay
		return nil
	}
	m.pendingPlay = false
	return m.player.TogglePlay()
}

// skip moves with fn and keeps playing if the player was playing.
func (m *Model) skip(fn func() error) error {
	before := m.player.State()
	if err := fn(); err != nil {
		return err
	}
	after := m.player.State()
	if after.Index != before.Index && before.Transport == player.Playing && after.CanPlay {
		m.pendingPlay = true
	}
	return nil
}

func (m *Model) report(err error) {
	switch {
	case err == nil:
		m.notice = ""
	case errors.Is(err, player.ErrNoPreview):
		m.notice = m.t(phNoPreview)
	case errors.Is(err, player.ErrNotReady), errors.Is(err, player.ErrInvalidState):
		m.logger.Debug("player command ignored", "error", err)
	default:
		m.notice = m.t(phPlaybackFailed)
		m.logger.Warn("player command failed", "error", err)
	}
}

func (m *Model) handleAudio(ev player.Event) {
	if m.player == nil || !m.player.HandleEvent(ev) {
		return
	}

	s := m.player.State()
	switch {
	case m.pendingPlay && s.Phase == player.PhaseReady:
		m.pendingPlay = false
		m.report(m.player.Play())
	case s.Phase == player.PhaseIdle && s.Err != nil:
		m.pendingPlay = false
		m.notice = m.t(phPlaybackFailed)
	}
	m.sync()
}

// sync refreshes the track list from the player.
func (m *Model) sync() {
	if m.player == nil {
		return
	}
	s := m.player.State()
	tracks := m.player.Playlist().Tracks
	items := make([]list.Item, len(tracks))
	for i, tr := range tracks {
		items[i] = trackItem{index: i, track: tr, current: i == s.Index, liked: m.player.Liked(i), noPrev: m.t(phNoPreview)}
	}
	m.tracks.SetItems(items)
	if m.tracks.Index() != s.Index && len(items) > 0 {
		m.tracks.Select(s.Index)
	}
}

func (m *Model) toIdle() {
	m.view = IdleView
	m.inline = ""
	m.input.Focus()
}

func (m *Model) quit() tea.Cmd {
	m.Close()
	return tea.Quit
}

// Close releases the player and cancels pending work. Safe to call more than once.
func (m *Model) Close() {
	m.cancel()
	if m.player != nil {
		m.player.Close()
	}
}

// submit validates locally and starts discovery. Invalid input stays on the idle view.
func (m *Model) submit(query string) tea.Cmd {
	if err := models.ValidateQuery(query); err != nil {
		m.view = IdleView
		m.input.Focus()
		if errors.Is(err, shared.ErrQueryTooLong) {
			m.inline = m.t(phTooLong)
		} else {
			m.inline = m.t(phTooShort)
		}
		return nil
	}
	if m.deps.Discovery == nil {
		m.err = shared.ErrServiceUnavailable
		m.view = ErrorView
		return nil
	}

	m.seq++
	seq := m.seq
	m.query = query
	m.inline = ""
	m.notice = ""
	m.progress = tasks.ProgressUpdate{Message: m.t(phLoading)}
	m.view = LoadingView
	m.input.Blur()

	ch := make(chan tasks.ProgressUpdate, 8)
	lang := m.lang
	discover := func() tea.Msg {
		defer close(ch)
		run, err := m.deps.Discovery.Discover(m.ctx, query, lang, ch)
		return discoveredMsg{seq: seq, run: run, err: err}
	}
	return tea.Batch(m.spinner.Tick, discover, waitForProgress(seq, ch))
}

func waitForProgress(seq int, ch <-chan tasks.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-ch
		if !ok {
			return nil
		}
		return progressMsg{seq: seq, update: update}
	}
}

func (m *Model) handleDiscovered(msg discoveredMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.seq {
		return m, nil
	}
	if msg.err != nil {
		m.err = msg.err
		m.view = ErrorView
		m.logger.Warn("discovery failed", "error", msg.err)
		return m, nil
	}

	if m.player != nil {
		m.player.Close()
	}
	m.result = msg.run.Result
	m.cached = msg.run.Cached
	m.exported = nil
	m.pendingPlay = false
	m.err = nil
	m.player = player.New(m.result.Playlist(), m.factory(), m.deps.Player...)
	m.tracks.Title = m.result.Playlist().Name
	m.tracks.ResetSelected()
	m.sync()
	m.view = ResultsView
	return m, nil
}

func (m *Model) factory() player.Factory {
	if m.deps.Audio == nil {
		return silentFactory{}
	}
	return m.deps.Audio
}

func (m *Model) waitForAudio() tea.Cmd {
	if m.deps.Audio == nil {
		return nil
	}
	events := m.deps.Audio.Events()
	return func() tea.Msg {
		select {
		case ev := <-events:
			return audioEventMsg(ev)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) export() tea.Cmd {
	if m.exporting || m.result == nil {
		return nil
	}
	if m.deps.Export == nil {
		m.notice = m.t(phExportOff)
		return nil
	}

	m.exporting = true
	m.notice = m.t(phExporting)
	result := m.result
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		run, err := m.deps.Export.Export(m.ctx, result, nil)
		return exportedMsg{run: run, err: err}
	})
}

func (m *Model) handleExported(msg exportedMsg) (tea.Model, tea.Cmd) {
	m.exporting = false
	switch {
	case msg.err == nil:
		m.exported = msg.run.Playlist
		m.notice = fmt.Sprintf(m.t(phExported), msg.run.Playlist.Title)
	case errors.Is(msg.err, shared.ErrOAuthDisabled):
		m.notice = m.t(phExportOff)
	case errors.Is(msg.err, shared.ErrNotAuthenticated):
		m.notice = m.t(phExportLogin)
	case errors.Is(msg.err, shared.ErrTokenExpired):
		m.notice = m.t(phExportExpired)
	default:
		m.notice = m.t(phExportFailed)
		m.logger.Warn("export failed", "error", msg.err)
	}
	return m, nil
}

func (m *Model) open() tea.Cmd {
	if m.exported == nil {
		return nil
	}
	p := m.exported
	return func() tea.Msg {
		target, err := m.deps.Opener(p)
		return openedMsg{target: target, err: err}
	}
}

func (m *Model) listen() tea.Cmd {
	if m.listening {
		return nil
	}
	if m.deps.Speech == nil {
		m.notice = m.t(phVoiceOff)
		return nil
	}

	m.listening = true
	m.notice = m.t(phListening)
	m.deps.Speech.SetLanguage(m.lang)
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		text, err := m.deps.Speech.Listen(m.ctx)
		return transcriptMsg{text: text, err: err}
	})
}

func (m *Model) handleTranscript(msg transcriptMsg) (tea.Model, tea.Cmd) {
	m.listening = false
	m.notice = ""

	if msg.err != nil {
		switch speech.KindOf(msg.err) {
		case speech.Aborted:
		case speech.PermissionDenied:
			m.notice = m.t(phVoiceDenied)
		case speech.NoSpeech:
			m.notice = m.t(phVoiceSilent)
		default:
			m.notice = m.t(phVoiceFailed)
		}
		return m, nil
	}

	m.input.SetValue(msg.text)
	m.input.CursorEnd()
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LoadingView:
		return m.renderLoading()
	case ResultsView:
		return m.renderResults()
	case ErrorView:
		return m.renderError()
	default:
		return m.renderIdle()
	}
}

func (m *Model) renderIdle() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("MoodTune"))
	b.WriteString("\n")
	b.WriteString(m.t(phPrompt) + "\n\n")
	b.WriteString(m.input.View() + "\n")

	n := utf8.RuneCountInString(m.input.Value())
	counter := fmt.Sprintf("%d/%d", n, models.MaxQueryLength)
	trimmed := utf8.RuneCountInString(strings.TrimSpace(m.input.Value()))
	switch {
	case n > models.MaxQueryLength:
		counter = m.styles.err.Render(counter)
	case trimmed > 0 && trimmed < models.MinQueryLength:
		counter = m.styles.warn.Render(counter)
	default:
		counter = m.styles.help.Render(counter)
	}
	fmt.Fprintf(&b, "%s  %s\n", counter, m.styles.help.Render(string(m.lang)))

	if m.inline != "" {
		b.WriteString(m.styles.err.Render(m.inline) + "\n")
	}
	if m.listening {
		b.WriteString(m.spinner.View() + " ")
	}
	if m.notice != "" {
		b.WriteString(m.styles.warn.Render(m.notice) + "\n")
	}

	b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{m.keys.submit, m.keys.voice, m.keys.lang, idleQuit}))
	return b.String()
}

func (m *Model) renderLoading() string {
	msg := m.progress.Message
	if msg == "" {
		msg = m.t(phLoading)
	}
	return fmt.Sprintf("%s\n\n%s %s\n\n%s",
		m.styles.title.Render("MoodTune"),
		m.spinner.View(), msg,
		m.help.ShortHelpView([]key.Binding{m.keys.back}))
}

func (m *Model) renderError() string {
	msg := m.t(phErrorTitle)
	if m.err != nil {
		msg = fmt.Sprintf("%s: %v", msg, m.err)
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s\n\n%s",
		m.styles.title.Render("MoodTune"),
		m.styles.err.Render(msg),
		m.t(phRetry),
		m.help.ShortHelpView([]key.Binding{m.keys.retry, m.keys.search, m.keys.quit}))
}

func (m *Model) renderResults() string {
	var b strings.Builder
	meta := m.result.Metadata

	header := m.result.Playlist().Name
	if m.cached {
		header += " " + m.styles.help.Render("("+m.t(phCached)+")")
	}
	b.WriteString(m.styles.title.Render(header) + "\n")

	details := []string{string(orMedium(meta.Energy))}
	if g := meta.TopGenres(3); len(g) > 0 {
		details = append(details, strings.Join(g, ", "))
	}
	b.WriteString(m.styles.help.Render(strings.Join(details, " • ")) + "\n\n")

	if m.player == nil || !m.player.Enabled() {
		b.WriteString(m.styles.warn.Render(m.t(phNoTracks)) + "\n\n")
	} else {
		b.WriteString(m.renderPlayer() + "\n\n")
		b.WriteString(m.tracks.View() + "\n")
	}

	if m.exporting {
		b.WriteString(m.spinner.View() + " ")
	}
	if m.notice != "" {
		b.WriteString(m.styles.warn.Render(m.notice) + "\n")
	}
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

func (m *Model) renderPlayer() string {
	s := m.player.State()

	icon := "■"
	switch {
	case s.Loading || (m.pendingPlay && s.Phase == player.PhaseIdle):
		icon = m.spinner.View()
	case s.Transport == player.Playing:
		icon = "▶"
	case s.Transport == player.Paused:
		icon = "❚❚"
	}

	now := fmt.Sprintf("%s %s · %s", icon, m.styles.current.Render(s.Track.Title), s.Track.Artist)
	if s.Liked {
		now += " " + m.styles.err.Render("♥")
	}

	flags := []string{fmt.Sprintf("vol %d%%", int(s.Volume*100+0.5))}
	if s.Shuffle {
		flags = append(flags, "shuffle")
	}
	if s.Repeat {
		flags = append(flags, "repeat")
	}

	bar := fmt.Sprintf("%s %s / %s",
		m.bar.ViewAs(s.Progress()),
		shared.FormatDuration(s.Elapsed),
		shared.FormatDuration(s.Duration))

	return fmt.Sprintf("%s\n%s  %s", now, bar, m.styles.help.Render(strings.Join(flags, " · ")))
}

func orMedium(e models.Energy) models.Energy {
	if e == "" {
		return models.EnergyMedium
	}
	return e
}

// silentFactory is used when no audio output is available: every open fails
// so the player stays usable for browsing and export.
type silentFactory struct{}

var errNoAudio = errors.New("audio output unavailable")

func (silentFactory) Open(string, string) (player.Resource, error) { return nil, errNoAudio }
