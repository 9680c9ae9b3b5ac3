package ratelimit

import (
	"strings"
)

// Match returns the first route whose method and pattern fit the request, or nil.
func Match(path, method string, routes []Route) *Route {
	segments := split(path)
	for i := range routes {
		route := &routes[i]
		if route.Method != method {
			continue
		}
		if matchSegments(split(route.Pattern), segments) {
			return route
		}
	}
	return nil
}

func matchSegments(pattern, path []string) bool {
	if len(pattern) != len(path) {
		return false
	}
	for i, p := range pattern {
		if p != "*" && p != path[i] {
			return false
		}
	}
	return true
}

func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
