// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlags(prettyDefault bool) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: prettyDefault,
		},
	}
}

func langFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "lang",
		Aliases: []string{"l"},
		Usage:   "Language for interpretation and speech (en or es); defaults to the saved preference",
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	configFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		}
	}

	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "status",
				Usage:  "Show applied database migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupStatus,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent database migration",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupRollback,
			},
		},
	}
}

// discoverCommand turns a mood description into tracks.
func discoverCommand(r *Runner) *cli.Command {
	flags := append(jsonFlags(true),
		langFlag(),
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Write results to files: json, csv, markdown or txt",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output directory for --format and --batch",
		},
		&cli.StringFlag{
			Name:  "name",
			Usage: "Base file name for --format (default: mood slug)",
		},
		&cli.BoolFlag{
			Name:  "no-cache",
			Usage: "Always ask the discovery backend",
		},
		&cli.StringFlag{
			Name:  "batch",
			Usage: "File with one mood description per line",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Concurrent discoveries in batch mode",
			Value: 3,
		},
		&cli.FloatFlag{
			Name:  "rate",
			Usage: "Discovery requests per second in batch mode",
			Value: 2,
		},
	)

	return &cli.Command{
		Name:    "discover",
		Aliases: []string{"find"},
		Usage:   "Find tracks that match a mood description",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags:  flags,
		Action: r.Discover,
	}
}

// deezerCommand handles the Deezer session and playlist export.
func deezerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "deezer",
		Aliases: []string{"dz"},
		Usage:   "Deezer authentication and playlist export",
		Commands: []*cli.Command{
			{
				Name:   "auth",
				Usage:  "Authenticate with Deezer using OAuth",
				Action: r.DeezerAuth,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored Deezer session",
				Action: r.DeezerLogout,
			},
			{
				Name:   "status",
				Usage:  "Show whether export is configured and authenticated",
				Flags:  jsonFlags(false),
				Action: r.DeezerStatus,
			},
			{
				Name:   "whoami",
				Usage:  "Show the authenticated Deezer account",
				Flags:  jsonFlags(false),
				Action: r.DeezerWhoami,
			},
			{
				Name:  "export",
				Usage: "Discover tracks for a mood and save them as a Deezer playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "query",
					},
				},
				Flags: append(jsonFlags(false),
					langFlag(),
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the playlist after export",
					},
				),
				Action: r.DeezerExport,
			},
			{
				Name:  "history",
				Usage: "List playlists exported from this machine",
				Flags: append(jsonFlags(false),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of exports to show",
						Value: 20,
					},
				),
				Action: r.DeezerHistory,
			},
		},
	}
}

// voiceCommand captures one spoken mood description.
func voiceCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "voice",
		Usage: "Transcribe a spoken mood description",
		Flags: []cli.Flag{
			langFlag(),
			&cli.BoolFlag{
				Name:  "discover",
				Usage: "Run discovery with the transcript",
			},
		},
		Action: r.Voice,
	}
}

// settingsCommand reads and changes persisted preferences.
func settingsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show or change preferences",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the current preferences",
				Flags:  jsonFlags(false),
				Action: r.SettingsShow,
			},
			{
				Name:  "language",
				Usage: "Set the interface and speech language (en or es)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "value"},
				},
				Action: r.SettingsLanguage,
			},
			{
				Name:  "theme",
				Usage: "Set the TUI theme (dark or light)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "value"},
				},
				Action: r.SettingsTheme,
			},
		},
	}
}

// cacheCommand manages the local discovery cache.
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clear cached discoveries",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List cached discoveries",
				Flags: append(jsonFlags(false),
					langFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of entries to show",
						Value: 20,
					},
				),
				Action: r.CacheList,
			},
			{
				Name:   "clear",
				Usage:  "Remove every cached discovery",
				Action: r.CacheClear,
			},
		},
	}
}

// healthCommand checks the discovery backend.
func healthCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "health",
		Usage:  "Check the discovery backend",
		Flags:  jsonFlags(false),
		Action: r.Health,
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"play", "ui"},
		Usage:   "Launch the interactive mood player",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log",
				Usage: "Log file for the interactive session",
				Value: "moodtune-tui.log",
			},
		},
		Action: r.TUI,
	}
}
