// package tasks assembles the movie views from catalogue calls.
//
// The core abstraction is Engine, which fans out catalogue requests and shapes the results
// for the CLI, TUI and HTTP layers.
package tasks

import (
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mvx/internal/services"
)

// Engine builds views on top of a [services.MovieService].
type Engine struct {
	movies services.MovieService
	logger *log.Logger
	pick   func(n int) int
}

// NewEngine creates a new Engine with the provided catalogue.
func NewEngine(movies services.MovieService, logger *log.Logger) *Engine {
	return &Engine{movies: movies, logger: logger, pick: rand.IntN}
}

// SetPicker replaces the random index source used to choose the banner.
func (e *Engine) SetPicker(pick func(n int) int) {
	e.pick = pick
}

// Movies returns the underlying catalogue.
func (e *Engine) Movies() services.MovieService {
	return e.movies
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}
