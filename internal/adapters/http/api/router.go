// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// Router dispatches requests through a static "METHOD path" table.
// The query string never participates in the lookup. OPTIONS requests are
// answered before the table is consulted.
type Router struct {
	routes map[string]http.HandlerFunc
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{routes: make(map[string]http.HandlerFunc)}
}

// Handle registers a handler for the given method and path. Registration
// happens once at startup; the table is read-only afterwards.
func (rt *Router) Handle(method, path string, h http.HandlerFunc) {
	rt.routes[method+" "+path] = h
}

// ServeHTTP implements http.Handler.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Every response is CORS-open.
	w.Header().Set("Access-Control-Allow-Origin", "*")

	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h, ok := rt.routes[r.Method+" "+r.URL.Path]
	if !ok {
		writeError(w, http.StatusNotFound, ErrNotFound.Error())
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			// A handler fault must not leak detail to the client.
			writeError(w, http.StatusInternalServerError, ErrInternal.Error())
		}
	}()
	h(w, r)
}
