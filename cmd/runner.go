package main

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodtune/internal/repositories"
	"github.com/desertthunder/moodtune/internal/services"
	"github.com/desertthunder/moodtune/internal/shared"
	"github.com/desertthunder/moodtune/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// DeezerClient is the Deezer surface used by the CLI: exporting plus the OAuth handshake.
type DeezerClient interface {
	services.PlaylistExporter
	services.OAuthService
	SetToken(token *oauth2.Token)
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	discovery  services.Discoverer
	deezer     DeezerClient
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	db         *sql.DB
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string // where tokens and settings are saved; empty keeps changes in memory
	Discovery  services.Discoverer
	Deezer     DeezerClient
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	DB         *sql.DB // opened lazily from Config.Database when nil
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		discovery:  opts.Discovery,
		deezer:     opts.Deezer,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		db:         opts.DB,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, discoverCommand, deezerCommand, voiceCommand, settingsCommand, cacheCommand, healthCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by the runner and the engines it builds.
func (r *Runner) SetLogger(l *log.Logger) {
	if l != nil {
		r.logger = l
	}
}

// Close releases the database, if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// database opens the configured database on first use.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, err
	}
	r.db = db
	return db, nil
}

// discoveryEngine builds the discovery engine. A database that cannot be
// opened disables the cache instead of failing discovery.
func (r *Runner) discoveryEngine(useCache bool) (*tasks.DiscoveryEngine, error) {
	if r.discovery == nil {
		return nil, fmt.Errorf("%w: discovery service not initialized", shared.ErrServiceUnavailable)
	}

	var cache tasks.DiscoveryCache
	if useCache && r.config.Cache.Enabled {
		if db, err := r.database(); err != nil {
			r.logger.Warn("discovery cache disabled", "error", err)
		} else {
			repo := repositories.NewDiscoveryRepository(db)
			cache = repositories.NewDiscoveryCacheAdapter(repo, r.config.Cache.Similarity)
		}
	}
	return tasks.NewDiscoveryEngine(r.discovery, cache, r.logger), nil
}

// exportEngine builds the export engine with history recording when the database is available.
func (r *Runner) exportEngine() (*tasks.ExportEngine, error) {
	if r.deezer == nil {
		return nil, fmt.Errorf("%w: Deezer service not initialized", shared.ErrServiceUnavailable)
	}

	var history tasks.ExportHistory
	if db, err := r.database(); err != nil {
		r.logger.Warn("export history disabled", "error", err)
	} else {
		history = repositories.NewExportHistoryAdapter(repositories.NewExportRepository(db))
	}
	return tasks.NewExportEngine(r.deezer, history, r.logger), nil
}

// saveConfig persists the current configuration. With no config path the change stays in memory.
func (r *Runner) saveConfig() error {
	if r.configPath == "" {
		return nil
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// saveTokens stores a fresh Deezer session in the config and the live client.
func (r *Runner) saveTokens(token *oauth2.Token) error {
	if r.config == nil {
		return fmt.Errorf("config is nil")
	}
	if err := r.config.Credentials.Deezer.Update(token); err != nil {
		return fmt.Errorf("failed to update deezer configuration: %w", err)
	}
	if r.deezer != nil {
		r.deezer.SetToken(token)
	}
	return r.saveConfig()
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return err
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// printProgress drains progress updates to the output until the channel is closed.
func (r *Runner) printProgress(ch <-chan tasks.ProgressUpdate, done chan<- struct{}) {
	defer close(done)
	for update := range ch {
		if update.Message == "" {
			continue
		}
		r.writePlain("  [%d/%d] %s\n", update.Step, update.Total, update.Message)
	}
}
