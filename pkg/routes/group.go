package routes

import "net/http"

// Group organizes routes under a common prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	RegisterGuarded(mux, nil, groups...)
}

// RegisterGuarded adds all routes from the given groups to the mux,
// wrapping every non-public route with guard. A nil guard registers
// routes unwrapped.
func RegisterGuarded(mux *http.ServeMux, guard func(http.Handler) http.Handler, groups ...Group) {
	for _, group := range groups {
		registerGroup(mux, guard, "", group)
	}
}

func registerGroup(mux *http.ServeMux, guard func(http.Handler) http.Handler, parentPrefix string, group Group) {
	fullPrefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		pattern := route.Method + " " + fullPrefix + route.Pattern

		var handler http.Handler = route.Handler
		if guard != nil && !route.Public {
			handler = guard(handler)
		}
		mux.Handle(pattern, handler)
	}
	for _, child := range group.Children {
		registerGroup(mux, guard, fullPrefix, child)
	}
}
