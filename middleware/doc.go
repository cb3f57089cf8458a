// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (duration_ms).

# Authentication

RequireAuth validates the Authorization Bearer token and stores the
claims in the request context; RequireRole adds a role check:

	middleware.RequireAuth(cfg.JWTSecret, handler)
	middleware.RequireRole(cfg.JWTSecret, models.RoleAdmin, handler)

Handlers read the identity back with ClaimsFromContext(r.Context()).

# Rate Limiting

Per-IP token buckets (golang.org/x/time/rate):

	voteLimiter := middleware.NewIPRateLimiter(rate.Every(90*time.Second), 10)
	mux.HandleFunc("POST /polls/{id}/vote", middleware.RateLimit(voteLimiter, handler))

Over-budget requests get 429. The limiter only throttles; duplicate-vote
safety is enforced by the votes uniqueness constraint regardless.

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(cfg.FrontendOrigin, mux),
	}

Allows methods GET, POST, PUT, DELETE, OPTIONS with headers
Content-Type, Authorization, User-Session.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, models.CodeValidation, "message")

Parse JSON request bodies:

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.CodeValidation, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Used as the voter fingerprint for vote deduplication.
*/
package middleware
