// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the livepoll API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, h)

# Endpoints

Health:

	GET /health

Authentication:

	POST /auth/register         - Register (role locked to "user")
	POST /auth/login            - Login, returns JWT
	GET  /auth/profile          - Current user (Bearer token)
	PUT  /auth/users/{id}/role  - Grant role (admin only)

Polls:

	POST   /polls        - Create poll with options (admin, rate limited)
	GET    /polls        - Paginated listing, ?active=true filter
	GET    /polls/{id}   - Poll with options and owner
	DELETE /polls/{id}   - Delete (owner or admin, cascades)

Voting and results (public):

	POST /polls/{id}/vote    - Cast a vote (rate limited per IP)
	GET  /polls/{id}/results - Options with percentages

Live updates:

	GET /live - Websocket; join_poll/leave_poll/refresh_results frames

# Middleware Chains

Handlers compose middleware outermost-first:

	middleware.WithLogging(
		middleware.RateLimit(createLimiter,
			middleware.RequireRole(cfg.JWTSecret, models.RoleAdmin, handler)))

The websocket route skips WithLogging; the handler logs open/close itself.
*/
package router
