package ratelimit

import (
	"net/http"
	"time"
)

// Route limits one endpoint. Pattern segments equal to "*" match any single path segment, so
// "/chat/sessions/*/messages" covers every session.
type Route struct {
	Pattern string
	Method  string
	Limit   int           // Maximum requests per window; 0 means unlimited
	Window  time.Duration // Time window
	Burst   int           // Burst capacity (defaults to Limit if 0)
}

// DefaultRoutes returns the portal's endpoint limits.
func DefaultRoutes() []Route {
	return []Route{
		// Unlimited
		{Pattern: "/health", Method: http.MethodGet},

		// Uploads and payments
		{Pattern: "/admissions", Method: http.MethodPost, Limit: 5, Window: time.Hour, Burst: 2},
		{Pattern: "/payments/orders", Method: http.MethodPost, Limit: 20, Window: time.Hour, Burst: 5},

		// Expensive rendering and model calls
		{Pattern: "/resumes/*/generate", Method: http.MethodPost, Limit: 30, Window: time.Hour, Burst: 5},
		{Pattern: "/resumes/*/assist/summary", Method: http.MethodPost, Limit: 30, Window: time.Hour, Burst: 5},

		// Conversation
		{Pattern: "/chat/sessions/*/messages", Method: http.MethodPost, Limit: 120, Window: time.Minute, Burst: 20},
	}
}
