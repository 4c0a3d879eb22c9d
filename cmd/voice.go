package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/desertthunder/moodtune/internal/formatter"
	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/shared"
	"github.com/desertthunder/moodtune/internal/speech"
	"github.com/urfave/cli/v3"
)

// Voice records one utterance with the configured recognizer and prints the transcript.
func (r *Runner) Voice(ctx context.Context, cmd *cli.Command) error {
	lang, err := r.language(cmd)
	if err != nil {
		return err
	}

	session, capability := speech.Open(r.config.Speech, lang, r.logger)
	if capability != speech.Ready {
		return fmt.Errorf("%w: voice input needs speech.command in the config", shared.ErrServiceUnavailable)
	}
	defer session.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	r.writePlain("🎙 Listening (%s)... press Ctrl+C to cancel\n", lang.SpeechTag())
	transcript, err := session.Listen(ctx)
	if err != nil {
		return voiceError(err)
	}

	if !cmd.Bool("discover") {
		return r.writePlain("%s\n", transcript)
	}

	r.writePlain("Heard: %q\n", transcript)
	if err := models.ValidateQuery(transcript); err != nil {
		return err
	}

	engine, err := r.discoveryEngine(true)
	if err != nil {
		return err
	}
	run, err := engine.Discover(ctx, transcript, lang, nil)
	if err != nil {
		return err
	}
	r.writePlain("\n")
	_, err = r.output.Write(formatter.ToText(run.Result))
	return err
}

func voiceError(err error) error {
	switch speech.KindOf(err) {
	case speech.PermissionDenied:
		return fmt.Errorf("microphone access was denied: %w", err)
	case speech.NoSpeech:
		return fmt.Errorf("no speech was detected, try again: %w", err)
	case speech.Aborted:
		return errors.New("voice input cancelled")
	}
	return err
}
