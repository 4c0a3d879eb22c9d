package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/desertthunder/moodtune/internal/services"
	"github.com/desertthunder/moodtune/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := os.Getenv("MOODTUNE_CONFIG")
	if configPath == "" {
		configPath = "config.toml"
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
	}

	httpClient := &http.Client{Timeout: config.API.Timeout()}
	discovery := services.NewDiscoveryService(config.API.BaseURL, httpClient, logger)

	deezer := services.NewDeezerService(
		config.Credentials.Deezer.Map(),
		services.WithRateLimit(config.Deezer.RateLimit),
		services.WithDeezerLogger(logger),
	)
	if token := config.Credentials.Deezer.Token(); token != nil {
		deezer.SetToken(token)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Discovery:  discovery,
		Deezer:     deezer,
		HTTPClient: httpClient,
		Logger:     logger,
	})
	defer runner.Close()

	app := &cli.Command{
		Name:     "moodtune",
		Usage:    "Describe a mood, hear matching tracks, save them to Deezer",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			return
		}
		runner.Close()
		logger.Fatalf("application error: %v", err)
	}
}
