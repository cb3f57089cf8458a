// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"livepoll/cliparse"
	"livepoll/handlers"
	"livepoll/hub"
	"livepoll/middleware"
	"livepoll/models"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, h *hub.Hub) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	pollHandler := handlers.NewPollHandler(db, cfg)
	voteHandler := handlers.NewVoteHandler(db, cfg, h)
	resultsHandler := handlers.NewResultsHandler(db, cfg)
	liveHandler := handlers.NewLiveHandler(db, cfg, h)

	// Rate limits: 10 votes per 15 minutes, 5 poll creations per hour,
	// per source IP. Correctness never depends on these.
	voteLimiter := middleware.NewIPRateLimiter(rate.Every(15*time.Minute/10), 10)
	createLimiter := middleware.NewIPRateLimiter(rate.Every(time.Hour/5), 5)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Authentication
	mux.HandleFunc("POST /auth/register", middleware.WithLogging(authHandler.Register))
	mux.HandleFunc("POST /auth/login", middleware.WithLogging(authHandler.Login))
	mux.HandleFunc("GET /auth/profile", middleware.WithLogging(
		middleware.RequireAuth(cfg.JWTSecret, authHandler.Profile)))
	mux.HandleFunc("PUT /auth/users/{id}/role", middleware.WithLogging(
		middleware.RequireRole(cfg.JWTSecret, models.RoleAdmin, authHandler.UpdateRole)))

	// Poll management
	mux.HandleFunc("POST /polls", middleware.WithLogging(
		middleware.RateLimit(createLimiter,
			middleware.RequireRole(cfg.JWTSecret, models.RoleAdmin, pollHandler.CreatePoll))))
	mux.HandleFunc("GET /polls", middleware.WithLogging(pollHandler.ListPolls))
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(pollHandler.GetPoll))
	mux.HandleFunc("DELETE /polls/{id}", middleware.WithLogging(
		middleware.RequireAuth(cfg.JWTSecret, pollHandler.DeletePoll)))

	// Voting and results (public)
	mux.HandleFunc("POST /polls/{id}/vote", middleware.WithLogging(
		middleware.RateLimit(voteLimiter, voteHandler.Vote)))
	mux.HandleFunc("GET /polls/{id}/results", middleware.WithLogging(resultsHandler.GetResults))

	// Live updates (websocket; logging middleware would distort upgrade timing)
	mux.HandleFunc("GET /live", liveHandler.Serve)

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("livepoll API v1"))
	})

	return mux
}
