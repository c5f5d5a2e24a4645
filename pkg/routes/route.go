package routes

import "net/http"

// Route binds an HTTP method and pattern to a handler.
// Public routes bypass the guard passed to RegisterGuarded.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	Public  bool
}
