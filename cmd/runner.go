package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mvx/internal/repositories"
	"github.com/desertthunder/mvx/internal/services"
	"github.com/desertthunder/mvx/internal/shared"
	"github.com/desertthunder/mvx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	opts       RunnerOpts
	config     *shared.Config
	configPath string
	db         *sql.DB
	local      shared.Storage
	session    shared.Storage
	users      *repositories.UserRepository
	wishlist   *repositories.WishlistRepository
	auth       *services.AuthService
	movies     services.MovieService
	validator  services.KeyValidator
	api        *services.APIService
	engine     *tasks.Engine
	httpClient *http.Client
	opener     func(string) error
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Nil storages fall back to in-memory ones. A nil Movies service builds a TMDB client that
// reads the signed in user's key; it also becomes the key validator unless Validator is set.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	DB         *sql.DB
	Local      shared.Storage
	Session    shared.Storage
	Movies     services.MovieService
	Validator  services.KeyValidator
	API        *services.APIService
	HTTPClient *http.Client
	Opener     func(string) error
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
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Local == nil {
		opts.Local = shared.NewMemoryStorage()
	}
	if opts.Session == nil {
		opts.Session = shared.NewMemoryStorage()
	}
	if opts.Opener == nil {
		opts.Opener = shared.OpenBrowser
	}

	r := &Runner{}
	r.build(opts)
	return r
}

// build wires the repositories and services from opts.
func (r *Runner) build(opts RunnerOpts) {
	r.opts = opts
	r.config = opts.Config
	r.configPath = opts.ConfigPath
	r.db = opts.DB
	r.local = opts.Local
	r.session = opts.Session
	r.httpClient = opts.HTTPClient
	r.opener = opts.Opener
	r.logger = opts.Logger
	r.output = opts.Output

	r.users = repositories.NewUserRepository(opts.Local, opts.Logger)
	r.wishlist = repositories.NewWishlistRepository(opts.Local, opts.Logger)
	r.auth = services.NewAuthService(r.users, opts.Local, opts.Session, nil, opts.Logger)

	movies, validator := opts.Movies, opts.Validator
	if movies == nil {
		tmdbOpts := services.TMDBOptionsFromConfig(opts.Config.TMDB, opts.Logger)
		if r.httpClient != http.DefaultClient {
			tmdbOpts.HTTPClient = r.httpClient
		}
		tmdb := services.NewTMDBService(r.auth, tmdbOpts)
		movies = tmdb
		if validator == nil {
			validator = tmdb
		}
	}
	r.movies = movies
	r.validator = validator
	r.auth.SetValidator(validator)

	r.api = opts.API
	if r.api == nil {
		urls := services.NewURLBuilder(opts.Config.TMDB.APIBase, opts.Config.TMDB.ImageBase, opts.Config.TMDB.Language)
		r.api = services.NewAPIService(urls, r.auth, r.httpClient)
	}

	r.engine = tasks.NewEngine(movies, opts.Logger)
}

// SetLogger swaps the logger of the runner and everything it built.
func (r *Runner) SetLogger(logger *log.Logger) {
	opts := r.opts
	opts.Logger = logger
	r.build(opts)
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, moviesCommand, wishlistCommand, openCommand, apiCommand, storageCommand, serveCommand, tuiCommand,
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
