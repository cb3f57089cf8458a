// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"livepoll/cliparse"
	"livepoll/middleware"
	"livepoll/models"
	"livepoll/vote"
)

type PollHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewPollHandler(db *sql.DB, cfg cliparse.Config) *PollHandler {
	return &PollHandler{db: db, cfg: cfg}
}

// CreatePoll handles POST /polls (admin only, gated by the router).
// The poll and all its options are inserted in one transaction.
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, models.CodeUnauthorized, "Authentication required")
		return
	}

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.CodeValidation, "Invalid JSON")
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.CodeValidation, "Question is required")
		return
	}
	if len(req.Options) < 2 {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.CodeValidation, "Poll must have at least 2 options")
		return
	}
	for _, text := range req.Options {
		if strings.TrimSpace(text) == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, models.CodeValidation, "Option text cannot be empty")
			return
		}
	}

	pollID := uuid.NewString()
	now := time.Now()

	var description sql.NullString
	if req.Description != "" {
		description = sql.NullString{String: req.Description, Valid: true}
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeInternal, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO polls (id, question, description, is_active, expires_at, user_id, total_votes, created_at, updated_at)
		VALUES ($1, $2, $3, TRUE, $4, $5, 0, $6, $7)
	`, pollID, req.Question, description, req.ExpiresAt, claims.UserID, now, now)
	if err != nil {
		slog.Error("failed to insert poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeInternal, "Failed to create poll")
		return
	}

	for i, text := range req.Options {
		_, err = tx.Exec(`
			INSERT INTO options (id, text, poll_id, vote_count, position)
			VALUES ($1, $2, $3, 0, $4)
		`, uuid.NewString(), text, pollID, i)
		if err != nil {
			slog.Error("failed to insert option", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeInternal, "Failed to create poll")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit poll creation", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeInternal, "Failed to create poll")
		return
	}

	created, err := loadPollWithOptions(h.db, pollID)
	if err != nil {
		slog.Error("failed to load created poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeInternal, "Database error")
		return
	}

	slog.Info("poll created", "poll_id", pollID, "user_id", claims.UserID, "options", len(req.Options))

	middleware.JSONResponse(w, http.StatusCreated, map[string]interface{}{
		"message": "Poll created successfully",
		"poll":    created,
	})
}

// ListPolls handles GET /polls?page&limit&active
// active=true filters to active, non-expired polls.
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	page := 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	limit := 10
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}
	offset := (page - 1) * limit

	where := ""
	args := []interface{}{}
	if r.URL.Query().Get("active") == "true" {
		where = "WHERE is_active = TRUE AND (expires_at IS NULL OR expires_at > $1)"
		args = append(args, time.Now())
	}

	var total int
	err := h.db.QueryRow("SELECT COUNT(*) FROM polls "+where, args...).Scan(&total)
	if err != nil {
		slog.Error("failed to count polls", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeInternal, "Database error")
		return
	}

	limitArg := len(args) + 1
	offsetArg := len(args) + 2
	query := "SELECT id FROM polls " + where +
		" ORDER BY created_at DESC LIMIT $" + strconv.Itoa(limitArg) +
		" OFFSET $" + strconv.Itoa(offsetArg)
	rows, err := h.db.Query(query, append(args, limit, offset)...)
	if err != nil {
		slog.Error("failed to query polls", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeInternal, "Database error")
		return
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			slog.Error("failed to scan poll id", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeInternal, "Database error")
			return
		}
		ids = append(ids, id)
	}

	polls := []models.PollWithOptions{}
	for _, id := range ids {
		p, err := loadPollWithOptions(h.db, id)
		if err != nil {
			slog.Error("failed to load poll", "error", err, "poll_id", id)
			middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeInternal, "Database error")
			return
		}
		polls = append(polls, *p)
	}

	totalPages := (total + limit - 1) / limit

	middleware.JSONResponse(w, http.StatusOK, models.PollListResponse{
		Polls:       polls,
		TotalPages:  totalPages,
		CurrentPage: page,
		TotalPolls:  total,
	})
}

// GetPoll handles GET /polls/:id
// Reading a poll whose expiry has passed triggers the explicit
// deactivation transition before the response is built.
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
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

	if votable, reason := vote.CheckVotable(p.Poll.IsActive, p.Poll.ExpiresAt, time.Now()); !votable && reason == vote.ReasonExpired {
		if err := vote.Deactivate(h.db, pollID, time.Now()); err != nil {
			slog.Error("failed to deactivate expired poll", "error", err, "poll_id", pollID)
		} else {
			p.Poll.IsActive = false
		}
	}

	middleware.JSONResponse(w, http.StatusOK, p)
}

// DeletePoll handles DELETE /polls/:id (owner or admin).
// Options and votes go with it via the cascading foreign keys.
func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, models.CodeUnauthorized, "Authentication required")
		return
	}

	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, models.CodeValidation, "poll id is required")
		return
	}

	var ownerID string
	err := h.db.QueryRow("SELECT user_id FROM polls WHERE id = $1", pollID).Scan(&ownerID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, models.CodeNotFound, "Poll not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeInternal, "Database error")
		return
	}

	if ownerID != claims.UserID && claims.Role != models.RoleAdmin {
		middleware.ErrorResponse(w, http.StatusForbidden, models.CodeForbidden, "Access denied")
		return
	}

	_, err = h.db.Exec("DELETE FROM polls WHERE id = $1", pollID)
	if err != nil {
		slog.Error("failed to delete poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, models.CodeInternal, "Failed to delete poll")
		return
	}

	slog.Info("poll deleted", "poll_id", pollID, "deleted_by", claims.UserID)

	middleware.JSONResponse(w, http.StatusOK, models.DeletePollResponse{
		Message: "Poll deleted successfully",
	})
}

// loadPollWithOptions assembles a poll, its options in creation order, and
// the owner summary. Returns sql.ErrNoRows when the poll does not exist.
func loadPollWithOptions(db *sql.DB, pollID string) (*models.PollWithOptions, error) {
	var p models.Poll
	var description sql.NullString
	var expiresAt sql.NullTime
	var owner models.UserSummary

	err := db.QueryRow(`
		SELECT p.id, p.question, p.description, p.is_active, p.expires_at,
		       p.user_id, p.total_votes, p.created_at, p.updated_at,
		       u.id, u.username
		FROM polls p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = $1
	`, pollID).Scan(
		&p.ID, &p.Question, &description, &p.IsActive, &expiresAt,
		&p.UserID, &p.TotalVotes, &p.CreatedAt, &p.UpdatedAt,
		&owner.ID, &owner.Username,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		p.Description = &description.String
	}
	if expiresAt.Valid {
		p.ExpiresAt = &expiresAt.Time
	}

	rows, err := db.Query(`
		SELECT id, text, poll_id, vote_count
		FROM options
		WHERE poll_id = $1
		ORDER BY position
	`, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	options := []models.Option{}
	for rows.Next() {
		var opt models.Option
		if err := rows.Scan(&opt.ID, &opt.Text, &opt.PollID, &opt.VoteCount); err != nil {
			return nil, err
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &models.PollWithOptions{Poll: p, Options: options, User: &owner}, nil
}
