// package speech turns one spoken utterance into text using an external recognizer.
//
// The recognizer is any command that records a single utterance and prints the
// transcript on stdout, configured under [speech] in the config file. The
// literal {lang} in its arguments and the MOODTUNE_LANG environment variable
// carry the recognition locale.
package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/shared"
)

// Capability reports whether voice input can be offered.
type Capability int

const (
	Unsupported Capability = iota
	Ready
)

func (c Capability) String() string {
	if c == Ready {
		return "ready"
	}
	return "unsupported"
}

// ErrorKind distinguishes recognition failures so callers can message them differently.
type ErrorKind int

const (
	Failed ErrorKind = iota
	PermissionDenied
	NoSpeech
	Aborted
)

func (k ErrorKind) String() string {
	switch k {
	case PermissionDenied:
		return "permission_denied"
	case NoSpeech:
		return "no_speech"
	case Aborted:
		return "aborted"
	default:
		return "failed"
	}
}

// Exit codes a recognizer uses to signal that microphone access was refused.
const (
	exitNotPermitted = 77
	exitCannotExec   = 126
)

// ErrBusy is returned when Listen is called while another utterance is being recorded.
var ErrBusy = errors.New("already listening")

// Error is a recognition failure.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case PermissionDenied:
		msg = "microphone access was denied"
	case NoSpeech:
		msg = "no speech detected, try again"
	case Aborted:
		msg = "listening stopped"
	default:
		msg = "speech recognition failed"
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of a recognition error, or Failed for any other error.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return Failed
}

// IsAborted reports whether err is a cancelled recognition, which callers ignore.
func IsAborted(err error) bool {
	return err != nil && KindOf(err) == Aborted
}

// Session is an acquired recognizer. Close it with the component that opened it.
type Session struct {
	path   string
	args   []string
	lang   models.Language
	logger *log.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	closed bool
}

// Open detects the configured recognizer. The session is nil unless the capability is Ready.
func Open(cfg shared.SpeechConfig, lang models.Language, logger *log.Logger) (*Session, Capability) {
	if logger == nil {
		logger = log.Default()
	}

	name := strings.TrimSpace(cfg.Command)
	if name == "" {
		return nil, Unsupported
	}

	path, err := exec.LookPath(name)
	if err != nil {
		logger.Debug("speech recognizer not found", "command", name, "error", err)
		return nil, Unsupported
	}

	return &Session{path: path, args: cfg.Args, lang: lang, logger: logger}, Ready
}

// Language returns the recognition language.
func (s *Session) Language() models.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lang
}

// SetLanguage changes the language used by the next Listen.
func (s *Session) SetLanguage(lang models.Language) {
	s.mu.Lock()
	s.lang = lang
	s.mu.Unlock()
}

func (s *Session) command(ctx context.Context, lang models.Language) *exec.Cmd {
	tag := lang.SpeechTag()
	args := make([]string, len(s.args))
	for i, a := range s.args {
		args[i] = strings.ReplaceAll(a, "{lang}", tag)
	}

	cmd := exec.CommandContext(ctx, s.path, args...)
	cmd.Env = append(os.Environ(), "MOODTUNE_LANG="+tag)
	// Recognizers often spawn recorders that inherit stdout.
	cmd.WaitDelay = 500 * time.Millisecond
	return cmd
}

// Listen records one utterance and returns its transcript with whitespace collapsed.
//
// Cancelling ctx or closing the session yields an Aborted error.
func (s *Session) Listen(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", &Error{Kind: Aborted}
	}
	if s.cancel != nil {
		s.mu.Unlock()
		return "", &Error{Kind: Failed, Err: ErrBusy}
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	lang := s.lang
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.cancel = nil
		s.mu.Unlock()
		cancel()
	}()

	var stderr bytes.Buffer
	cmd := s.command(ctx, lang)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if ctx.Err() != nil {
		return "", &Error{Kind: Aborted, Err: ctx.Err()}
	}
	if err != nil {
		return "", s.classify(err, stderr.String())
	}

	text := strings.Join(strings.Fields(string(out)), " ")
	if text == "" {
		return "", &Error{Kind: NoSpeech}
	}
	s.logger.Debug("transcribed", "lang", lang, "chars", len(text))
	return text, nil
}

func (s *Session) classify(err error, stderr string) error {
	detail := strings.TrimSpace(stderr)

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		switch exitErr.ExitCode() {
		case exitNotPermitted, exitCannotExec:
			return &Error{Kind: PermissionDenied, Err: err}
		}
		if detail != "" {
			err = fmt.Errorf("%w: %s", err, shared.Truncate(detail, 200))
		}
	}
	s.logger.Warn("speech recognizer failed", "error", err)
	return &Error{Kind: Failed, Err: err}
}

// Close aborts any utterance in progress. Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}
