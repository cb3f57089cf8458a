// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"livepoll/cliparse"
	"livepoll/middleware"
	"livepoll/models"
	"livepoll/vote"
)

type ResultsHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{db: db, cfg: cfg}
}

// GetResults handles GET /polls/:id/results
// Percentages are derived per request from the current counters;
// nothing here is cached or persisted.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.CodeValidation, "poll id is required")
		return
	}

	p, err := loadPollWithOptions(h.db, pollID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, models.CodeNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to load poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeInternal, "Database error")
		return
	}

	tally, err := vote.LoadTally(h.db, pollID)
	if err != nil {
		if errors.Is(err, vote.ErrPollNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, models.CodeNotFound, "Poll not found")
			return
		}
		slog.Error("failed to load tally", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeInternal, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PollResults{
		Poll:    p.Poll,
		Options: vote.Results(tally),
	})
}
