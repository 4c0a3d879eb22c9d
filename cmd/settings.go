package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/shared"
	"github.com/urfave/cli/v3"
)

// SettingsShow prints the persisted preferences.
func (r *Runner) SettingsShow(ctx context.Context, cmd *cli.Command) error {
	speechCommand := r.config.Speech.Command
	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"language": r.config.Language(),
			"theme":    r.config.Theme(),
			"speech":   speechCommand,
			"cache":    r.config.Cache.Enabled,
			"api":      r.config.API.BaseURL,
		}, cmd.Bool("pretty"))
	}

	if speechCommand == "" {
		speechCommand = "(not configured)"
	}
	r.writePlain("Language: %s\n", r.config.Language())
	r.writePlain("Theme: %s\n", r.config.Theme())
	r.writePlain("Speech: %s\n", speechCommand)
	r.writePlain("Cache: %t\n", r.config.Cache.Enabled)
	return r.writePlain("API: %s\n", r.config.API.BaseURL)
}

// SettingsLanguage persists the interface and speech language.
func (r *Runner) SettingsLanguage(ctx context.Context, cmd *cli.Command) error {
	lang, err := models.ParseLanguage(cmd.StringArg("value"))
	if err != nil {
		return err
	}
	r.config.Preferences.Language = string(lang)
	if err := r.saveConfig(); err != nil {
		return err
	}
	return r.writePlain("✓ Language set to %s\n", lang)
}

// SettingsTheme persists the TUI theme.
func (r *Runner) SettingsTheme(ctx context.Context, cmd *cli.Command) error {
	theme := strings.ToLower(strings.TrimSpace(cmd.StringArg("value")))
	if theme != "dark" && theme != "light" {
		return fmt.Errorf("%w: theme %q (want dark or light)", shared.ErrInvalidArgument, theme)
	}
	r.config.Preferences.Theme = theme
	if err := r.saveConfig(); err != nil {
		return err
	}
	return r.writePlain("✓ Theme set to %s\n", theme)
}
