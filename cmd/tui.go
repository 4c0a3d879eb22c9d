package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/moodtune/internal/audio"
	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/player"
	"github.com/desertthunder/moodtune/internal/shared"
	"github.com/desertthunder/moodtune/internal/speech"
	"github.com/desertthunder/moodtune/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive mood player.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, closer, err := shared.NewFileLogger(cmd.String("log"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer closer.Close()
	r.SetLogger(fileLogger)

	discovery, err := r.discoveryEngine(true)
	if err != nil {
		return err
	}

	deps := ui.Deps{
		Discovery: discovery,
		Audio:     audio.NewBackend(r.httpClient, fileLogger),
		Logger:    fileLogger,
		Player: []player.Option{
			player.WithLogger(fileLogger),
			player.WithVolume(r.config.Player.Volume),
			player.WithFallbackDuration(r.config.Player.FallbackDuration),
			player.WithRestartThreshold(r.config.Player.RestartThreshold),
		},
	}

	if exporter, err := r.exportEngine(); err == nil {
		deps.Export = exporter
	} else {
		fileLogger.Warn("export disabled", "error", err)
	}

	lang, err := models.ParseLanguage(r.config.Language())
	if err != nil {
		lang = models.English
	}
	if session, capability := speech.Open(r.config.Speech, lang, fileLogger); capability == speech.Ready {
		deps.Speech = session
		defer session.Close()
	}

	model := ui.NewModel(ctx, r.config, deps)
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
