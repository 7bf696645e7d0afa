package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/outside/internal/mapview"
	"github.com/desertthunder/outside/internal/notify"
	"github.com/desertthunder/outside/internal/repositories"
	"github.com/desertthunder/outside/internal/services"
	"github.com/desertthunder/outside/internal/shared"
	"github.com/desertthunder/outside/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	api        services.API
	raw        *services.APIService
	tiles      tasks.TileFetcher
	jar        *services.PersistentJar
	db         *sql.DB
	ownsDB     bool
	venues     *repositories.VenueRepository
	cacher     tasks.VenueCacher
	renderer   *mapview.Renderer
	ctrl       *tasks.Controllers
	openURL    func(string) error
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// When API is nil the dependencies are built from the config file before the first command runs.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	API        services.API
	Raw        *services.APIService
	Tiles      tasks.TileFetcher
	Jar        *services.PersistentJar
	DB         *sql.DB
	OpenURL    func(string) error
	Logger     *log.Logger
	Output     io.Writer
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
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		api:        opts.API,
		raw:        opts.Raw,
		tiles:      opts.Tiles,
		jar:        opts.Jar,
		openURL:    opts.OpenURL,
		logger:     opts.Logger,
		output:     opts.Output,
	}
	r.useDatabase(opts.DB)
	if r.api != nil {
		r.wire()
	}
	return r
}

// app returns the root command.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "outside",
		Usage:   "Find restaurants, cafes, bars and more near you",
		Version: "0.1.0",
		Writer:  r.output,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("OUTSIDE_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.before,
		After:    r.after,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, categoriesCommand, searchCommand, historyCommand, venueCommand,
		mapCommand, apiCommand, cacheCommand, devCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// before loads the config file and connects the API client, the cookie jar and the cache.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	if r.api != nil {
		return ctx, nil
	}

	r.configPath = cmd.String("config")
	config, err := loadConfig(r.configPath, r.logger)
	if err != nil {
		return ctx, err
	}
	r.config = config

	if !cmd.Bool("debug") {
		if level, err := log.ParseLevel(config.Log.Level); err == nil {
			shared.SetLogLevel(r.logger, level)
		}
	}

	return ctx, r.connect()
}

// after closes the database opened by before.
func (r *Runner) after(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil || !r.ownsDB {
		return nil
	}
	if err := r.db.Close(); err != nil {
		r.logger.Warn("failed to close database", "error", err)
	}
	return nil
}

// loadConfig reads path when it exists, then applies environment overrides.
func loadConfig(path string, logger *log.Logger) (*shared.Config, error) {
	config := shared.DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		if config, err = shared.LoadConfig(path); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
		}
	} else {
		logger.Debug("config file not found, using defaults", "path", path)
	}

	if err := shared.ApplyEnv(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// connect builds the API client around a cookie jar persisted in the database. Without a database
// the session lasts for a single command.
func (r *Runner) connect() error {
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		r.logger.Warn("database unavailable, session will not persist", "path", r.config.Database.Path, "error", err)
	}
	r.useDatabase(db)
	r.ownsDB = db != nil

	base, err := url.Parse(r.config.API.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}

	var store services.CookieStore
	if r.db != nil {
		store = repositories.NewCookieRepository(r.db)
	}
	jar, err := services.NewPersistentJar(store, shared.WithLogger(r.logger, "component", "jar"), base)
	if err != nil {
		return err
	}

	svc, err := services.NewVenueService(r.config.API.BaseURL,
		services.WithCookieJar(jar),
		services.WithTimeout(r.config.API.Timeout()),
		services.WithUserAgent(r.config.API.UserAgent),
		services.WithLogger(shared.WithLogger(r.logger, "component", "api")),
	)
	if err != nil {
		return err
	}

	r.jar = jar
	r.api = svc
	r.raw = services.NewAPIService(r.config.API.BaseURL, svc.Client())
	r.tiles = services.NewTileService(nil, r.config.Map.TileRateLimit, r.config.Map.TileRetry(), r.config.API.UserAgent,
		shared.WithLogger(r.logger, "component", "tiles"))
	r.wire()
	return nil
}

func (r *Runner) useDatabase(db *sql.DB) {
	if db == nil {
		return
	}
	r.db = db
	r.venues = repositories.NewVenueRepository(db)
	r.cacher = repositories.NewVenueCacheAdapter(r.venues)
}

// wire creates the controllers. Scheduled work runs inline since the process exits after one command.
func (r *Runner) wire() {
	r.renderer = mapview.New(mapview.OptionsFromConfig(r.config.Map), r.logger)
	r.renderer.Init()

	opts := tasks.OptionsFromConfig(r.config)
	opts.Logger = r.logger
	opts.Map = r.renderer
	opts.Cacher = r.cacher
	opts.Notifier = notify.Func(r.notify)
	opts.Schedule = func(_ time.Duration, fn func()) { fn() }
	r.ctrl = tasks.NewControllers(r.api, opts)
	r.renderer.OnMarkerClick(r.ctrl.Search.MarkerClicked)
}

// notify prints successes and hints. Errors reach the user through the returned error instead.
func (r *Runner) notify(message string, kind notify.Kind) {
	if kind == notify.Error {
		r.logger.Debug("notification", "kind", kind, "message", message)
		return
	}
	r.writePlain("%s %s\n", kind.Glyph(), message)
}

func (r *Runner) requireAPI() error {
	if r.api == nil || r.ctrl == nil {
		return fmt.Errorf("%w: API client not initialized", shared.ErrServiceUnavailable)
	}
	return nil
}

// requireSession checks the session cookie with the server.
func (r *Runner) requireSession(ctx context.Context) (string, error) {
	if err := r.requireAPI(); err != nil {
		return "", err
	}
	session := r.ctrl.Auth.CheckStatus(ctx)
	if !session.Authenticated {
		return "", fmt.Errorf("%w: run 'outside auth login' first", shared.ErrNotAuthenticated)
	}
	return session.Username(), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
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
