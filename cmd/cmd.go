// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/mvx/internal/formatter"
	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/tasks"
	"github.com/urfave/cli/v3"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
		},
	}
}

func pageFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "page",
		Aliases: []string{"p"},
		Usage:   "Page to fetch",
		Value:   1,
	}
}

func idArg() []cli.Argument {
	return []cli.Argument{&cli.StringArg{Name: "id"}}
}

func exportFlags(name string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Export format (csv, markdown, txt, json)",
			Value:   formatter.FormatCSV,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output path (directory for markdown)",
		},
		&cli.StringFlag{
			Name:  "name",
			Usage: "Title written into the export",
			Value: name,
		},
		&cli.StringFlag{
			Name:  "description",
			Usage: "Description written into the export",
		},
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config.toml populated with defaults",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "status",
				Usage:  "Show applied and pending migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupStatus,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupRollback,
			},
		},
	}
}

// authCommand handles account registration and sign in
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage accounts; the password is your TMDB API key",
		Commands: []*cli.Command{
			{
				Name:      "register",
				Aliases:   []string{"signup"},
				Usage:     "Create an account after checking the API key against TMDB",
				Arguments: []cli.Argument{&cli.StringArg{Name: "email"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"key"},
						Usage:    "TMDB API key used as the password",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "confirm",
						Usage:    "Repeat the password",
						Required: true,
					},
				},
				Action: r.AuthRegister,
			},
			{
				Name:      "login",
				Usage:     "Sign in and store the API key",
				Arguments: []cli.Argument{&cli.StringArg{Name: "email"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"key"},
						Usage:    "TMDB API key used as the password",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "remember",
						Usage: "Stay signed in across terminal sessions",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Forget the API key and signed in user",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show who is signed in",
				Flags:  outputFlags(),
				Action: r.AuthStatus,
			},
		},
	}
}

// moviesCommand handles catalogue browsing
func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movies",
		Aliases: []string{"m"},
		Usage:   "Browse the TMDB catalogue",
		Commands: []*cli.Command{
			{
				Name:   "home",
				Usage:  "Show the banner and home rows",
				Flags:  outputFlags(),
				Action: r.MoviesHome,
			},
			{
				Name:   "popular",
				Usage:  "Show one page of the popular table with its pager",
				Flags:  append([]cli.Flag{pageFlag()}, outputFlags()...),
				Action: r.MoviesPopular,
			},
			{
				Name:      "list",
				Usage:     "Fetch a range of pages from a listing (" + listingNames() + ")",
				Arguments: []cli.Argument{&cli.StringArg{Name: "listing", Value: tasks.ListPopular}},
				Flags: append([]cli.Flag{
					pageFlag(),
					&cli.IntFlag{Name: "to", Usage: "Last page to fetch (defaults to --page)"},
					&cli.IntFlag{Name: "genre", Usage: "Genre id for the genre listing"},
					&cli.IntFlag{Name: "workers", Usage: "Concurrent page fetches", Value: 3},
				}, outputFlags()...),
				Action: r.MoviesList,
			},
			{
				Name:  "discover",
				Usage: "Discover movies by filter",
				Flags: append([]cli.Flag{
					pageFlag(),
					&cli.IntSliceFlag{Name: "genre", Aliases: []string{"g"}, Usage: "Genre id (repeatable)"},
					&cli.StringSliceFlag{Name: "lang", Aliases: []string{"l"}, Usage: "Original language code (repeatable)"},
					&cli.FloatFlag{Name: "rating", Usage: "Minimum vote average"},
					&cli.IntFlag{Name: "year", Usage: "Primary release year"},
					&cli.StringFlag{Name: "sort", Usage: "Sort order", Value: models.DefaultSort},
				}, outputFlags()...),
				Action: r.MoviesDiscover,
			},
			{
				Name:      "search",
				Usage:     "Search movies by title",
				Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
				Flags:     append([]cli.Flag{pageFlag()}, outputFlags()...),
				Action:    r.MoviesSearch,
			},
			{
				Name:   "genres",
				Usage:  "List genre ids and names",
				Flags:  outputFlags(),
				Action: r.MoviesGenres,
			},
			{
				Name:      "export",
				Usage:     "Export a range of listing pages to a file",
				Arguments: []cli.Argument{&cli.StringArg{Name: "listing", Value: tasks.ListPopular}},
				Flags: append([]cli.Flag{
					pageFlag(),
					&cli.IntFlag{Name: "to", Usage: "Last page to fetch (defaults to --page)"},
					&cli.IntFlag{Name: "genre", Usage: "Genre id for the genre listing"},
				}, exportFlags("")...),
				Action: r.MoviesExport,
			},
		},
	}
}

// wishlistCommand handles the signed in user's wishlist
func wishlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "wishlist",
		Aliases: []string{"wl"},
		Usage:   "Manage your wishlist",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List saved movies",
				Flags:  outputFlags(),
				Action: r.WishlistList,
			},
			{
				Name:      "toggle",
				Usage:     "Add a movie, or remove it when already saved",
				Arguments: idArg(),
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "data",
						Aliases: []string{"d"},
						Usage:   "Movie JSON to store instead of looking the id up",
					},
					&cli.StringFlag{
						Name:  "from",
						Usage: "Listing to look the id up in (" + listingNames() + ")",
						Value: tasks.ListPopular,
					},
					&cli.IntFlag{Name: "genre", Usage: "Genre id for the genre listing"},
					pageFlag(),
				},
				Action: r.WishlistToggle,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a movie",
				Arguments: idArg(),
				Action:    r.WishlistRemove,
			},
			{
				Name:      "check",
				Usage:     "Report whether a movie is saved",
				Arguments: idArg(),
				Action:    r.WishlistCheck,
			},
			{
				Name:   "export",
				Usage:  "Export the wishlist to a file",
				Flags:  exportFlags("Wishlist"),
				Action: r.WishlistExport,
			},
		},
	}
}

// openCommand opens a movie page in the browser
func openCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "open",
		Usage:     "Open a movie's TMDB page in the browser",
		Arguments: idArg(),
		Action:    r.Open,
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the TMDB API",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET with the stored API key, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.APIGet,
			},
		},
	}
}

// storageCommand inspects the persisted key/value records
func storageCommand(r *Runner) *cli.Command {
	sessionFlag := &cli.BoolFlag{
		Name:  "session",
		Usage: "Use this terminal's session storage instead of local storage",
	}
	return &cli.Command{
		Name:  "storage",
		Usage: "Inspect stored records",
		Commands: []*cli.Command{
			{
				Name:   "keys",
				Usage:  "List stored keys",
				Flags:  []cli.Flag{sessionFlag},
				Action: r.StorageKeys,
			},
			{
				Name:      "get",
				Usage:     "Print a stored value",
				Arguments: []cli.Argument{&cli.StringArg{Name: "key"}},
				Flags:     []cli.Flag{sessionFlag},
				Action:    r.StorageGet,
			},
			{
				Name:   "clear",
				Usage:  "Delete every key in a storage",
				Flags:  []cli.Flag{sessionFlag},
				Action: r.StorageClear,
			},
		},
	}
}

// serveCommand starts the HTTP server
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the browser routes as a JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "Listen host (defaults to [server] host)"},
			&cli.IntFlag{Name: "port", Usage: "Listen port (defaults to [server] port)"},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive movie browser",
		Action:  r.TUI,
	}
}
