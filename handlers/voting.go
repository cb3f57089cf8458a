// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"livepoll/cliparse"
	"livepoll/hub"
	"livepoll/middleware"
	"livepoll/models"
	"livepoll/vote"
)

type VoteHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	hub *hub.Hub
}

func NewVoteHandler(db *sql.DB, cfg cliparse.Config, h *hub.Hub) *VoteHandler {
	return &VoteHandler{db: db, cfg: cfg, hub: h}
}

// Vote handles POST /polls/:id/vote
// The voter fingerprint is the client IP plus the optional User-Session
// header. On success the fresh tally goes back to the voter immediately
// and is pushed to the poll's room without blocking the response.
func (h *VoteHandler) Vote(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.CodeValidation, "poll id is required")
		return
	}

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.CodeValidation, "Invalid JSON")
		return
	}
	if req.OptionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.CodeValidation, "option_id is required")
		return
	}

	voterIP := middleware.GetClientIP(r)
	voterSession := r.Header.Get("User-Session")

	tally, err := vote.Cast(h.db, pollID, req.OptionID, voterIP, voterSession)
	if err != nil {
		switch {
		case errors.Is(err, vote.ErrPollNotFound):
			middleware.ErrorResponse(w, http.StatusNotFound, models.CodeNotFound, "Poll not found")
		case errors.Is(err, vote.ErrPollInactive):
			middleware.ErrorResponse(w, http.StatusConflict, models.CodePollInactive, "Poll is not active")
		case errors.Is(err, vote.ErrPollExpired):
			middleware.ErrorResponse(w, http.StatusBadRequest, models.CodePollExpired, "Poll has expired")
		case errors.Is(err, vote.ErrOptionNotFound):
			middleware.ErrorResponse(w, http.StatusNotFound, models.CodeNotFound, "Option not found for this poll")
		case errors.Is(err, vote.ErrDuplicateVote):
			middleware.ErrorResponse(w, http.StatusConflict, models.CodeDuplicateVote, "You have already voted in this poll")
		default:
			slog.Error("vote failed", "error", err, "poll_id", pollID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeInternal, "Failed to record vote")
		}
		return
	}

	slog.Info("vote recorded", "poll_id", pollID, "option_id", req.OptionID)

	middleware.JSONResponse(w, http.StatusOK, models.VoteResponse{
		Message: "Vote recorded successfully",
		Poll:    *tally,
	})

	// Fan-out strictly after commit, detached from the response path.
	go h.hub.Publish(pollID, tally)
}
