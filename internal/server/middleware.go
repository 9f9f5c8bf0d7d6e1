package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mvx/internal/shared"
)

// SessionCookie names the cookie that carries the session id.
const SessionCookie = "mvx_session"

// SessionStore issues session ids and scopes session storage to them.
type SessionStore interface {
	Create() (string, error)
	Touch(id string) (bool, error)
	Storage(id string) shared.Storage
	Prune(cutoff time.Time) (int, error)
}

var _ SessionStore = (*shared.SessionRegistry)(nil)

type sessionKey struct{}

// WithSession returns a copy of ctx carrying the session id.
func WithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionID returns the session id stored by [Sessions], or "".
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// Sessions resolves the session cookie, issuing a new session when it is missing or unknown.
func Sessions(store SessionStore, logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c, err := r.Cookie(SessionCookie); err == nil {
				ok, err := store.Touch(c.Value)
				if err != nil {
					logger.Error("failed to touch session", "error", err)
				}
				if ok {
					next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), c.Value)))
					return
				}
			}

			id, err := store.Create()
			if err != nil {
				logger.Error("failed to create session", "error", err)
				writeError(w, http.StatusInternalServerError, err)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), id)))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Logging logs each request with its status and duration.
func Logging(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
		})
	}
}

// Recover turns a panicking handler into a 500 response.
func Recover(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					logger.Error("handler panic", "path", r.URL.Path, "panic", v)
					http.Error(w, "Internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
