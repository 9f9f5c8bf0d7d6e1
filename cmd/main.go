package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mvx/internal/shared"
	"github.com/urfave/cli/v3"
)

const configPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadEnv(".env"); err != nil {
		logger.Warn("failed to load .env", "error", err)
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "error", err)
		}
	}
	if err := config.ApplyEnv(); err != nil {
		logger.Fatalf("invalid environment: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := RunnerOpts{Config: config, ConfigPath: configPath, Logger: logger}
	if db, err := shared.OpenDatabase(ctx, config.Database); err == nil {
		defer db.Close()
		opts.DB = db
		opts.Local = shared.NewLocalStorage(db)
		opts.Session = shared.NewSessionStorage(db, terminalSession())
	} else {
		logger.Warn("database unavailable, state will not persist", "path", config.Database.Path, "error", err)
	}

	runner := NewRunner(opts)

	app := &cli.Command{
		Name:    "mvx",
		Usage:   "Browse TMDB movies and keep a wishlist",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging"},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				shared.SetLogLevel(logger, log.DebugLevel)
				runner.SetLogger(logger)
			}
			return ctx, nil
		},
		Commands: runner.register(),
	}

	if err := app.Run(ctx, os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}

// terminalSession scopes a non-remembered login to the invoking shell.
func terminalSession() string {
	return fmt.Sprintf("tty-%d", os.Getppid())
}
