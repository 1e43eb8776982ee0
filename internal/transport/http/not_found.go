package http

import "net/http"

// NotFoundHandler is the catch-all for routes outside the API surface.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	}
}
