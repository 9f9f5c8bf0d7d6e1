package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"slices"
	"strings"
	"testing"

	"github.com/desertthunder/mvx/internal/services"
	"github.com/desertthunder/mvx/internal/shared"
	tu "github.com/desertthunder/mvx/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			local := shared.NewMemoryStorage()
			movies := tu.NewMockMovieService(tu.SamplePage(1, 1, 1))
			validator := &tu.MockKeyValidator{}
			api := &services.APIService{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Local:      local,
				Movies:     movies,
				Validator:  validator,
				API:        api,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.local != local {
				t.Error("expected local storage to be set")
			}
			if runner.movies != movies {
				t.Error("expected movies to be set")
			}
			if runner.validator != validator {
				t.Error("expected validator to be set")
			}
			if runner.api != api {
				t.Error("expected api to be set")
			}
			if runner.engine.Movies() != movies {
				t.Error("expected engine to use the movie service")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config: nil,
			})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Logger: nil,
			})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Output: nil,
			})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				HTTPClient: nil,
			})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})

		t.Run("httpClient reaches the TMDB services", func(t *testing.T) {
			local := shared.NewMemoryStorage()
			if err := local.SetItem(shared.KeyAPIKey, "key"); err != nil {
				t.Fatalf("failed to store key: %v", err)
			}
			client := &http.Client{Transport: tu.NewMockRoundTripper(tu.JSONResponse(http.StatusOK, `{"page":1}`), nil)}

			runner := NewRunner(RunnerOpts{HTTPClient: client, Local: local, Logger: shared.NewLogger(io.Discard)})

			resp, err := runner.api.Get(context.Background(), "/movie/popular")
			if err != nil {
				t.Fatalf("expected request through the injected client, got %v", err)
			}
			if resp.StatusCode != http.StatusOK || !strings.Contains(string(resp.Body), `"page":1`) {
				t.Errorf("unexpected response %d %s", resp.StatusCode, resp.Body)
			}
		})

		t.Run("with nil storages uses memory", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if _, ok := runner.local.(*shared.MemoryStorage); !ok {
				t.Errorf("expected memory local storage, got %T", runner.local)
			}
			if _, ok := runner.session.(*shared.MemoryStorage); !ok {
				t.Errorf("expected memory session storage, got %T", runner.session)
			}
		})

		t.Run("with nil movies builds TMDB service", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			tmdb, ok := runner.movies.(*services.TMDBService)
			if !ok {
				t.Fatalf("expected TMDB service, got %T", runner.movies)
			}
			if runner.validator != tmdb {
				t.Error("expected TMDB service to validate keys")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				ConfigPath: "/test/path/config.toml",
			})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})
	})

	t.Run("SetLogger", func(t *testing.T) {
		movies := tu.NewMockMovieService(tu.SamplePage(1, 1, 1))
		local := shared.NewMemoryStorage()
		runner := NewRunner(RunnerOpts{Movies: movies, Local: local})
		engine := runner.engine

		logger := shared.NewLogger(&bytes.Buffer{})
		runner.SetLogger(logger)

		if runner.logger != logger {
			t.Error("expected logger to be replaced")
		}
		if runner.engine == engine {
			t.Error("expected engine to be rebuilt")
		}
		if runner.local != local || runner.movies != movies {
			t.Error("expected dependencies to be kept")
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("writes plain text without formatting", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("simple text")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "simple text" {
				t.Errorf("expected 'simple text', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := make([]string, len(commands))
		for i, c := range commands {
			names[i] = c.Name
		}
		for _, want := range []string{"setup", "auth", "movies", "wishlist", "open", "api", "storage", "serve", "tui"} {
			if !slices.Contains(names, want) {
				t.Errorf("expected %s command, got %v", want, names)
			}
		}
	})

	t.Run("writePlainHeader", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		runner.writePlainHeader("Title")

		if !strings.Contains(output.String(), "═\nTitle\n═") {
			t.Errorf("unexpected header %q", output.String())
		}
	})
}
