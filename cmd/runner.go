package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/melody/internal/library"
	"github.com/desertthunder/melody/internal/repositories"
	"github.com/desertthunder/melody/internal/router"
	"github.com/desertthunder/melody/internal/services"
	"github.com/desertthunder/melody/internal/session"
	"github.com/desertthunder/melody/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/net/publicsuffix"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The session, library and router are wired on first use so a command can swap the logger first.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	input      *bufio.Reader

	db        *sql.DB
	auth      *services.Client
	resources *services.Client
	session   *session.Store
	library   *library.Library
	router    *router.Router
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
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
	if opts.Input == nil {
		opts.Input = os.Stdin
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
		input:      bufio.NewReader(opts.Input),
	}
}

// SetLogger replaces the logger used by components wired after this call.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// connect wires the auth and resource API clients, session store, playlist library and router,
// then loads the persisted token.
//
// The two clients share one cookie jar so a cookie set at login reaches the playlist endpoints.
func (r *Runner) connect(ctx context.Context) error {
	if r.session != nil {
		return nil
	}

	cfg := r.config
	var cache library.Cache
	db, err := r.openDatabase(ctx)
	switch {
	case err != nil && cfg.Session.Store == shared.StoreSQLite:
		return err
	case err != nil:
		r.logger.Warn("playlist cache disabled", "error", err)
	default:
		cache = repositories.NewPlaylistRepository(db)
	}

	var persister session.Persister
	switch cfg.Session.Store {
	case shared.StoreSQLite:
		persister = repositories.NewTokenRepository(db)
	default:
		persister = session.NewFileStore(cfg.Session.TokenPath)
	}

	httpClient := *r.httpClient
	if httpClient.Jar == nil {
		if jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List}); err == nil {
			httpClient.Jar = jar
		}
	}

	var store *session.Store
	tokens := services.TokenFunc(func() string { return store.Token() })
	r.auth = services.NewClient(services.Options{
		BaseURL:    cfg.API.BaseURL,
		BasePath:   cfg.API.BasePath,
		Timeout:    cfg.API.Timeout(),
		Tokens:     tokens,
		AuthScheme: cfg.API.AuthScheme,
		FormPaths:  []string{"/login"},
		RateLimit:  cfg.API.RateLimit,
		HTTPClient: &httpClient,
		Logger:     shared.WithLogger(r.logger, "component", "auth"),
	})
	r.resources = services.NewClient(services.Options{
		BaseURL:    cfg.API.BaseURL,
		BasePath:   cfg.API.BasePath,
		Timeout:    cfg.API.Timeout(),
		Tokens:     tokens,
		AuthScheme: cfg.API.AuthScheme,
		FormPaths:  []string{},
		RateLimit:  cfg.API.RateLimit,
		HTTPClient: &httpClient,
		Logger:     shared.WithLogger(r.logger, "component", "resources"),
	})
	store = session.New(session.Options{
		Users:         services.NewUserAPI(r.auth),
		Persister:     persister,
		Logger:        shared.WithLogger(r.logger, "component", "session"),
		DefaultAvatar: cfg.API.DefaultAvatar,
	})
	if err := store.Init(ctx); err != nil {
		r.logger.Warn("starting signed out", "error", err)
	}

	r.session = store
	r.library = library.New(services.NewPlaylistAPI(r.resources), store, cache, shared.WithLogger(r.logger, "component", "library"))
	r.router = router.New(store, shared.WithLogger(r.logger, "component", "router"))
	return nil
}

func (r *Runner) openDatabase(ctx context.Context) (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, err
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrationsContext(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	r.db = db
	return db, nil
}

// Close releases the database handle, if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// requireRoute wires the runner and runs the navigation guard for path, failing with
// [shared.ErrNotAuthenticated] when the guard would redirect.
func (r *Runner) requireRoute(ctx context.Context, path string) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	_, _, decision, err := r.router.Check(path)
	if err != nil {
		return err
	}
	if !decision.Allow {
		return fmt.Errorf("%w: sign in with 'melody login' first (redirect %s)", shared.ErrNotAuthenticated, decision.Redirect.FullPath())
	}
	return nil
}

// prompt writes label and reads one line of input, without the trailing newline.
func (r *Runner) prompt(label string) (string, error) {
	if err := r.writePlain("%s: ", label); err != nil {
		return "", err
	}
	line, err := r.input.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, strings.ToLower(label))
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// valueOrPrompt returns the named flag, prompting for it when unset.
func (r *Runner) valueOrPrompt(cmd *cli.Command, flag, label string) (string, error) {
	if v := cmd.String(flag); v != "" {
		return v, nil
	}
	return r.prompt(label)
}

// confirm asks a yes/no question unless --yes was given.
func (r *Runner) confirm(cmd *cli.Command, question string) (bool, error) {
	if cmd.Bool("yes") {
		return true, nil
	}
	answer, err := r.prompt(question + " [y/N]")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		loginCommand, logoutCommand, registerCommand, whoamiCommand, profileCommand, passwordCommand,
		accountCommand, playlistsCommand, routeCommand, validateCommand, tuiCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
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
