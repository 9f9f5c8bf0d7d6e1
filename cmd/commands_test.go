package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/mvx/internal/shared"
	"github.com/desertthunder/mvx/internal/tasks"
	tu "github.com/desertthunder/mvx/internal/testing"
	"github.com/urfave/cli/v3"
)

type cliFixture struct {
	runner *Runner
	output *bytes.Buffer
	movies *tu.MockMovieService
	local  *shared.MemoryStorage
	opened []string
}

func newCLIFixture(t *testing.T, config *shared.Config) *cliFixture {
	t.Helper()

	f := &cliFixture{
		output: &bytes.Buffer{},
		movies: tu.NewMockMovieService(tu.SamplePage(1, 10, 8)),
		local:  shared.NewMemoryStorage(),
	}
	f.runner = NewRunner(RunnerOpts{
		Config:    config,
		Local:     f.local,
		Session:   shared.NewMemoryStorage(),
		Movies:    f.movies,
		Validator: &tu.MockKeyValidator{},
		Logger:    shared.NewLogger(io.Discard),
		Output:    f.output,
		Opener: func(url string) error {
			f.opened = append(f.opened, url)
			return nil
		},
	})
	f.runner.engine.SetPicker(func(int) int { return 0 })
	return f
}

func (f *cliFixture) run(args ...string) error {
	app := &cli.Command{Name: "mvx", Commands: f.runner.register()}
	return app.Run(context.Background(), append([]string{"mvx"}, args...))
}

func (f *cliFixture) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	f.output.Reset()
	if err := f.run(args...); err != nil {
		t.Fatalf("mvx %s: %v", strings.Join(args, " "), err)
	}
	return f.output.String()
}

func (f *cliFixture) signIn(t *testing.T) {
	t.Helper()
	f.mustRun(t, "auth", "register", "--password", "key", "--confirm", "key", "a@b.com")
	f.mustRun(t, "auth", "login", "--password", "key", "a@b.com")
}

func assertContains(t *testing.T, got string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("expected output to contain %q, got:\n%s", w, got)
		}
	}
}

func TestAuthCommands(t *testing.T) {
	t.Run("Register And Login", func(t *testing.T) {
		f := newCLIFixture(t, nil)

		out := f.mustRun(t, "auth", "register", "--password", "key", "--confirm", "key", "a@b.com")
		assertContains(t, out, "Sign up complete")

		out = f.mustRun(t, "auth", "login", "--password", "key", "--remember", "a@b.com")
		assertContains(t, out, "Signed in as a@b.com", "stay signed in")

		out = f.mustRun(t, "auth", "status", "--json", "--pretty=false")
		assertContains(t, out, `{"authenticated":true,"user":"a@b.com","remembered":true}`)
	})

	t.Run("Password Mismatch", func(t *testing.T) {
		f := newCLIFixture(t, nil)
		err := f.run("auth", "register", "--password", "key", "--confirm", "other", "a@b.com")
		if !errors.Is(err, shared.ErrPasswordMismatch) {
			t.Errorf("expected ErrPasswordMismatch, got %v", err)
		}
	})

	t.Run("Missing Email", func(t *testing.T) {
		f := newCLIFixture(t, nil)
		err := f.run("auth", "login", "--password", "key")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("Wrong Password", func(t *testing.T) {
		f := newCLIFixture(t, nil)
		f.mustRun(t, "auth", "register", "--password", "key", "--confirm", "key", "a@b.com")

		err := f.run("auth", "login", "--password", "nope", "a@b.com")
		if !errors.Is(err, shared.ErrLoginFailed) {
			t.Errorf("expected ErrLoginFailed, got %v", err)
		}
	})

	t.Run("Logout", func(t *testing.T) {
		f := newCLIFixture(t, nil)
		f.signIn(t)

		f.mustRun(t, "auth", "logout")
		out := f.mustRun(t, "auth", "status")
		assertContains(t, out, "Not signed in")
	})
}

func TestMoviesCommands(t *testing.T) {
	t.Run("Requires Key", func(t *testing.T) {
		f := newCLIFixture(t, nil)
		for _, args := range [][]string{{"movies", "home"}, {"movies", "popular"}, {"movies", "genres"}} {
			if err := f.run(args...); !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("%v: expected ErrNotAuthenticated, got %v", args, err)
			}
		}
		if calls := f.movies.Calls(); len(calls) != 0 {
			t.Errorf("expected no API calls, got %v", calls)
		}
	})

	t.Run("Home", func(t *testing.T) {
		f := newCLIFixture(t, nil)
		f.signIn(t)

		out := f.mustRun(t, "movies", "home")
		assertContains(t, out, "★ Movie 1", tasks.RowPopular, tasks.RowNewReleases, tasks.RowAction)
	})

	t.Run("Home Failed Row", func(t *testing.T) {
		f := newCLIFixture(t, nil)
		f.signIn(t)
		f.movies.Errors["genre"] = errors.New("boom")

		out := f.mustRun(t, "movies", "home")
		assertContains(t, out, "Failed to load movies")

		out = f.mustRun(t, "movies", "home", "--json", "--pretty=false")
		assertContains(t, out, `"error":"boom"`)
	})

	t.Run("Popular Table", func(t *testing.T) {
		f := newCLIFixture(t, nil)
		f.signIn(t)

		out := f.mustRun(t, "movies", "popular", "--page", "2")
		assertContains(t, out, "page 2 of 10", "  7. Movie 1 (2024)", "‹ 1 [2] 3 4 … 10 ›")
	})

	t.Run("Popular Page Out Of Range", func(t *testing.T) {
		f := newCLIFixture(t, nil)
		f.signIn(t)

		if err := f.run("movies", "popular", "--page", "501"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("List Range", func(t *testing.T) {
		f := newCLIFixture(t, nil)
		f.signIn(t)

		out := f.mustRun(t, "movies", "list", "--page", "1", "--to", "3", "top-rated")
		assertContains(t, out, "top-rated: 8 movies from 3 pages")
	})

	t.Run("List Unknown Listing", func(t *testing.T) {
		f := newCLIFixture(t, nil)
		f.signIn(t)

		if err := f.run("movies", "list", "trending"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Discover", func(t *testing.T) {
		f := newCLIFixture(t, nil)
		f.signIn(t)

		out := f.mustRun(t, "movies", "discover", "--genre", "878", "--genre", "878", "--lang", "ja", "--rating", "7", "--sort", "vote_average.desc")
		assertContains(t, out, "정렬: 평점 높은순", "장르: SF", "언어: 일본어", "평점: 7점 이상")

		if len(f.movies.Filters) != 1 || len(f.movies.Filters[0].Genres) != 1 {
			t.Errorf("unexpected filters %+v", f.movies.Filters)
		}
	})

	t.Run("Discover Invalid Sort", func(t *testing.T) {
		f := newCLIFixture(t, nil)
		f.signIn(t)

		if err := f.run("movies", "discover", "--sort", "title.asc"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("Search", func(t *testing.T) {
		f := newCLIFixture(t, nil)
		f.signIn(t)

		out := f.mustRun(t, "movies", "search", "matrix")
		assertContains(t, out, "80 results")

		if err := f.run("movies", "search"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("Genres", func(t *testing.T) {
		f := newCLIFixture(t, nil)
		f.signIn(t)

		out := f.mustRun(t, "movies", "genres")
		assertContains(t, out, "    28  액션", "   878  SF")
	})

	t.Run("Export", func(t *testing.T) {
		f := newCLIFixture(t, nil)
		f.signIn(t)
		path := filepath.Join(t.TempDir(), "popular.json")

		out := f.mustRun(t, "movies", "export", "--format", "json", "--output", path)
		assertContains(t, out, "Exported 8 movies", path)
		assertContains(t, tu.MustReadFile(t, path), `"title": "Movie 8"`)
	})
}

func TestWishlistCommands(t *testing.T) {
	t.Run("Requires Key", func(t *testing.T) {
		f := newCLIFixture(t, nil)
		if err := f.run("wishlist", "list"); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Requires User", func(t *testing.T) {
		f := newCLIFixture(t, nil)
		if err := f.local.SetItem(shared.KeyAPIKey, "key"); err != nil {
			t.Fatalf("failed to store key: %v", err)
		}
		if err := f.run("wishlist", "list"); !errors.Is(err, shared.ErrNoCurrentUser) {
			t.Errorf("expected ErrNoCurrentUser, got %v", err)
		}
	})

	t.Run("Remembered User After Logout", func(t *testing.T) {
		f := newCLIFixture(t, nil)
		f.mustRun(t, "auth", "register", "--password", "key", "--confirm", "key", "a@b.com")
		f.mustRun(t, "auth", "login", "--password", "key", "--remember", "a@b.com")
		f.mustRun(t, "wishlist", "toggle", "--data", `{"id":42,"title":"Kept"}`, "42")
		f.mustRun(t, "auth", "logout")

		if user, _, _ := f.local.GetItem(shared.KeyCurrentUser); user != "a@b.com" {
			t.Fatalf("expected remembered user to survive logout, got %q", user)
		}

		for _, args := range [][]string{
			{"wishlist", "list"},
			{"wishlist", "toggle", "--data", `{"id":7,"title":"New"}`, "7"},
			{"wishlist", "remove", "42"},
			{"wishlist", "check", "42"},
			{"wishlist", "export", "--format", "txt", "--output", filepath.Join(t.TempDir(), "w.txt")},
		} {
			if err := f.run(args...); !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("mvx %s: expected ErrNotAuthenticated, got %v", strings.Join(args, " "), err)
			}
		}

		f.mustRun(t, "auth", "login", "--password", "key", "--remember", "a@b.com")
		out := f.mustRun(t, "wishlist", "list")
		assertContains(t, out, "Kept")
	})

	t.Run("Toggle From Data", func(t *testing.T) {
		f := newCLIFixture(t, nil)
		f.signIn(t)

		out := f.mustRun(t, "wishlist", "toggle", "--data", `{"id":550,"title":"Fight Club","video":false}`, "550")
		assertContains(t, out, "♥ Added to wishlist: Fight Club")

		out = f.mustRun(t, "wishlist", "list", "--json", "--pretty=false")
		assertContains(t, out, `[{"id":550,"title":"Fight Club","video":false}]`)

		out = f.mustRun(t, "wishlist", "toggle", "550")
		assertContains(t, out, "Removed from wishlist: 550")
	})

	t.Run("Toggle Looks Up Listing", func(t *testing.T) {
		f := newCLIFixture(t, nil)
		f.signIn(t)

		out := f.mustRun(t, "wishlist", "toggle", "--from", "upcoming", "3")
		assertContains(t, out, "♥ Added to wishlist: Movie 3")

		out = f.mustRun(t, "wishlist", "check", "3")
		assertContains(t, out, "3 is in your wishlist")
	})

	t.Run("Toggle Unknown Movie", func(t *testing.T) {
		f := newCLIFixture(t, nil)
		f.signIn(t)

		if err := f.run("wishlist", "toggle", "999"); !errors.Is(err, shared.ErrMovieNotFound) {
			t.Errorf("expected ErrMovieNotFound, got %v", err)
		}
	})

	t.Run("Toggle Mismatched Data", func(t *testing.T) {
		f := newCLIFixture(t, nil)
		f.signIn(t)

		if err := f.run("wishlist", "toggle", "--data", `{"id":1}`, "2"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Remove And Check", func(t *testing.T) {
		f := newCLIFixture(t, nil)
		f.signIn(t)
		f.mustRun(t, "wishlist", "toggle", "1")

		f.mustRun(t, "wishlist", "remove", "1")
		out := f.mustRun(t, "wishlist", "check", "1")
		assertContains(t, out, "1 is not in your wishlist")

		if err := f.run("wishlist", "remove", "abc"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Empty List", func(t *testing.T) {
		f := newCLIFixture(t, nil)
		f.signIn(t)

		out := f.mustRun(t, "wishlist", "list")
		assertContains(t, out, "My Wishlist", "Your wishlist is empty.")
	})

	t.Run("Export Text", func(t *testing.T) {
		f := newCLIFixture(t, nil)
		f.signIn(t)
		f.mustRun(t, "wishlist", "toggle", "2")
		path := filepath.Join(t.TempDir(), "wishlist.txt")

		f.mustRun(t, "wishlist", "export", "--format", "txt", "--output", path)
		assertContains(t, tu.MustReadFile(t, path), "List: Wishlist", "Saved movies of a@b.com", "Movie 2")
	})
}

func TestOpenCommand(t *testing.T) {
	f := newCLIFixture(t, nil)

	out := f.mustRun(t, "open", "550")
	if len(f.opened) != 1 || f.opened[0] != "https://www.themoviedb.org/movie/550" {
		t.Errorf("unexpected opened urls %v", f.opened)
	}
	assertContains(t, out, "Opened https://www.themoviedb.org/movie/550")
}

func TestStorageCommands(t *testing.T) {
	f := newCLIFixture(t, nil)
	f.signIn(t)

	out := f.mustRun(t, "storage", "keys")
	assertContains(t, out, "local storage", shared.KeyAPIKey, shared.KeyUsers)

	out = f.mustRun(t, "storage", "get", "--session", shared.KeyCurrentUser)
	assertContains(t, out, "a@b.com")

	if err := f.run("storage", "get", "missing"); !errors.Is(err, shared.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}

	f.mustRun(t, "storage", "clear", "--session")
	if keys := f.runner.session.(*shared.MemoryStorage).Keys(); len(keys) != 0 {
		t.Errorf("expected empty session storage, got %v", keys)
	}
}

func TestAPIGetCommand(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":550}`))
	}))
	defer srv.Close()

	config := shared.DefaultConfig()
	config.TMDB.APIBase = srv.URL
	f := newCLIFixture(t, config)
	f.signIn(t)

	out := f.mustRun(t, "api", "get", "--json", "/movie/550")
	if out != `{"id":550}`+"\n" {
		t.Errorf("unexpected output %q", out)
	}
	assertContains(t, gotQuery, "api_key=key", "language=ko-KR")
}

func TestServeCommand(t *testing.T) {
	f := newCLIFixture(t, nil)
	if err := f.run("serve"); !errors.Is(err, shared.ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestSetupCommands(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	dbPath := filepath.Join(dir, "data", "mvx.db")

	f := newCLIFixture(t, nil)
	f.mustRun(t, "setup", "config", "--config", configPath)
	tu.AssertFileExists(t, configPath)

	if err := f.run("setup", "config", "--config", configPath); err == nil {
		t.Error("expected error when config exists")
	}

	t.Setenv(shared.EnvDBPath, dbPath)
	out := f.mustRun(t, "setup", "database", "--config", configPath)
	assertContains(t, out, "Database ready at "+dbPath)

	out = f.mustRun(t, "setup", "status", "--config", configPath)
	assertContains(t, out, "✓ 0001")

	f.mustRun(t, "setup", "rollback", "--config", configPath)
	out = f.mustRun(t, "setup", "status", "--config", configPath)
	if !strings.Contains(out, "(pending)") {
		t.Errorf("expected a pending migration after rollback, got:\n%s", out)
	}

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("expected database file: %v", err)
	}
}

func TestPagerLine(t *testing.T) {
	tests := []struct {
		page tasks.TablePage
		want string
	}{
		{tasks.TablePage{Page: 1, TotalPages: 1, Window: []int{1}}, "[1]"},
		{
			tasks.TablePage{Page: 5, TotalPages: 500, Window: []int{3, 4, 5, 6, 7}, ShowFirst: true, LeadingGap: true, ShowLast: true, TrailGap: true},
			"‹ 1 … 3 4 [5] 6 7 … 500 ›",
		},
	}
	for _, tt := range tests {
		if got := pagerLine(&tt.page); got != tt.want {
			t.Errorf("pagerLine(%d) = %q, want %q", tt.page.Page, got, tt.want)
		}
	}
}
