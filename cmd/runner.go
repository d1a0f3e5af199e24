package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reminisce/internal/auth"
	"github.com/desertthunder/reminisce/internal/cache"
	"github.com/desertthunder/reminisce/internal/formatter"
	"github.com/desertthunder/reminisce/internal/playback"
	"github.com/desertthunder/reminisce/internal/remote"
	"github.com/desertthunder/reminisce/internal/remote/httpdoc"
	"github.com/desertthunder/reminisce/internal/remote/postgres"
	"github.com/desertthunder/reminisce/internal/shared"
	"github.com/desertthunder/reminisce/internal/storage"
	"github.com/desertthunder/reminisce/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The store and its collaborators are built on first use so setup and serve never open the cache.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	cache  cache.Cache
	remote remote.DocumentStore
	auth   auth.Authenticator
	opener playback.Opener

	store   *storage.Store
	prefs   *storage.Preferences
	session *playback.Session
	engine  *tasks.Engine
	dbs     []*sql.DB
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Cache, Remote and Auth override what the config would build.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Cache      cache.Cache
	Remote     remote.DocumentStore
	Auth       auth.Authenticator
	Opener     playback.Opener
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
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
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		cache:      opts.Cache,
		remote:     opts.Remote,
		auth:       opts.Auth,
		opener:     opts.Opener,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, songsCommand, moodsCommand, playlistsCommand, memoriesCommand, logsCommand,
		prefsCommand, clearCommand, authCommand, catalogCommand, exportCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// before resolves the configuration once per process and applies the log level.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}
	if r.config == nil {
		config, err := shared.ResolveConfig(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	}

	level := r.config.Log.Level
	if cmd.Bool("verbose") {
		level = "debug"
	}
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(level))
	return ctx, nil
}

// open wires the cache, remote store, authenticator, store and playback session.
func (r *Runner) open(ctx context.Context) error {
	if r.store != nil {
		return nil
	}
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}

	if r.cache == nil {
		db, err := shared.OpenLocalDatabase(r.config.Cache)
		if err != nil {
			return fmt.Errorf("failed to open local cache: %w", err)
		}
		r.dbs = append(r.dbs, db)
		r.cache = cache.NewSQLiteCache(db)
	}

	if err := r.openRemote(ctx); err != nil {
		return err
	}

	r.store = storage.NewStore(storage.Options{
		Cache:           r.cache,
		Remote:          r.remote,
		RemoteAvailable: r.remote != nil,
		Auth:            r.auth,
		Logger:          r.logger,
	})
	r.prefs = storage.NewPreferences(r.cache)
	r.session = playback.NewSession(r.opener, r.store, r.logger)
	r.engine = tasks.NewEngine(tasks.StoreLibrary(r.store), r.remote, r.logger)
	return nil
}

func (r *Runner) openRemote(ctx context.Context) error {
	cfg := r.config.Remote
	if r.remote == nil && cfg.Enabled {
		switch cfg.Backend {
		case shared.BackendHTTP:
			opts := []httpdoc.Option{httpdoc.WithHTTPClient(r.httpClient)}
			if r.auth == nil && r.config.Auth.Mode == shared.AuthAnonymous {
				anon := auth.NewAnonymous(cfg.URL, r.cache, &http.Client{Timeout: cfg.Timeout}, r.logger)
				r.auth = anon
				opts = append(opts, httpdoc.WithTokenSource(anon))
			}
			r.remote = httpdoc.NewClient(cfg.URL, cfg.Timeout, opts...)
		case shared.BackendPostgres:
			db, err := postgres.Open(ctx, cfg.DSN)
			if err != nil {
				r.logger.Warn("remote store unavailable, running offline", "error", err)
				break
			}
			if err := postgres.Migrate(ctx, db); err != nil {
				db.Close()
				return fmt.Errorf("failed to migrate remote store: %w", err)
			}
			r.dbs = append(r.dbs, db)
			r.remote = postgres.NewStore(db)
		}
	}

	if r.auth == nil {
		if r.config.Auth.Mode == shared.AuthAnonymous && r.remote != nil {
			r.logger.Warn("anonymous sign-in needs the http backend, falling back to auth.owner_id")
		}
		r.auth = auth.Static{UID: r.config.Auth.OwnerID}
	}
	return nil
}

// Close waits for pending activity writes and releases database handles.
func (r *Runner) Close() error {
	if r.session != nil {
		if err := r.session.Close(context.Background()); err != nil {
			r.logger.Warn("failed to stop playback", "error", err)
		}
	}
	var firstErr error
	for _, db := range r.dbs {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.dbs = nil
	return firstErr
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := formatter.MarshalJSON(data, pretty)
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
