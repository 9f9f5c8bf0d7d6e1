package server

import (
	"net/http"
	"sort"
	"strings"
)

// BasicRouter is a simple HTTP router implementing the [Router] interface.
//
// Uses [http.ServeMux] internally for routing; several methods may share one path.
type BasicRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware
	routes      map[string]map[string]http.Handler
}

// NewBasicRouter creates a new [BasicRouter] instance.
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{
		mux:         http.NewServeMux(),
		middlewares: []Middleware{},
		routes:      make(map[string]map[string]http.Handler),
	}
}

// Use adds [Middleware] to the [Router] instance's middleware stack, applied in the order it's added.
//
// Only handlers registered after the call are wrapped.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers a [Handler] for the specified HTTP method and path.
//
// The handler is wrapped with all registered middleware. Requests with a method that has no
// handler on the path get 405 with an Allow header.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	methods, ok := r.routes[path]
	if !ok {
		methods = make(map[string]http.Handler)
		r.routes[path] = methods
		r.mux.Handle(path, r.dispatch(methods))
	}
	methods[strings.ToUpper(method)] = r.Apply(handler)
}

// HandleFunc registers a handler function for the specified HTTP method and path.
func (r *BasicRouter) HandleFunc(method, path string, handler http.HandlerFunc) {
	r.Handle(method, path, handler)
}

func (r *BasicRouter) dispatch(methods map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if h, ok := methods[req.Method]; ok {
			h.ServeHTTP(w, req)
			return
		}
		if h, ok := methods[http.MethodGet]; ok && req.Method == http.MethodHead {
			h.ServeHTTP(w, req)
			return
		}

		allowed := make([]string, 0, len(methods))
		for m := range methods {
			allowed = append(allowed, m)
		}
		sort.Strings(allowed)
		w.Header().Set("Allow", strings.Join(allowed, ", "))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})
}

// Handler registers a custom Handler implementation.
//
// All routes returned by [Handler.Routes] are registered with this handler.
func (r *BasicRouter) Handler(handler Handler) {
	wrapped := r.Apply(handler)

	for _, route := range handler.Routes() {
		r.mux.Handle(route, wrapped)
	}
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Apply wraps a handler with all registered middleware.
//
// Middleware is applied in reverse order (last added wraps first).
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	wrapped := handler

	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}

	return wrapped
}
