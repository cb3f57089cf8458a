// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// User role constants
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Machine-readable error codes used in ErrorResponse.Error
const (
	CodeValidation    = "validation_error"
	CodeUnauthorized  = "unauthorized"
	CodeForbidden     = "forbidden"
	CodeNotFound      = "not_found"
	CodePollInactive  = "poll_inactive"
	CodePollExpired   = "poll_expired"
	CodeDuplicateVote = "duplicate_vote"
	CodeRateLimited   = "rate_limited"
	CodeInternal      = "internal_error"
)

// Request types

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

type CreatePollRequest struct {
	Question    string     `json:"question"`
	Description string     `json:"description"`
	Options     []string   `json:"options"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

type VoteRequest struct {
	OptionID string `json:"option_id"`
}

// Response types

type AuthResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    UserSummary `json:"user"`
}

type PollListResponse struct {
	Polls       []PollWithOptions `json:"polls"`
	TotalPages  int               `json:"total_pages"`
	CurrentPage int               `json:"current_page"`
	TotalPolls  int               `json:"total_polls"`
}

type VoteResponse struct {
	Message string `json:"message"`
	Poll    Tally  `json:"poll"`
}

type DeletePollResponse struct {
	Message string `json:"message"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Domain types

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserSummary is the owner-facing projection attached to polls and tokens.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

type Poll struct {
	ID          string     `json:"id"`
	Question    string     `json:"question"`
	Description *string    `json:"description,omitempty"`
	IsActive    bool       `json:"is_active"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	UserID      string     `json:"user_id"`
	TotalVotes  int        `json:"total_votes"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	PollID    string `json:"poll_id"`
	VoteCount int    `json:"vote_count"`
}

type Vote struct {
	ID           string    `json:"id"`
	PollID       string    `json:"poll_id"`
	OptionID     string    `json:"option_id"`
	VoterIP      string    `json:"-"` // Never expose in JSON
	VoterSession *string   `json:"-"` // Never expose in JSON
	CreatedAt    time.Time `json:"created_at"`
}

type PollWithOptions struct {
	Poll    Poll         `json:"poll"`
	Options []Option     `json:"options"`
	User    *UserSummary `json:"user,omitempty"`
}

// Tally types

// OptionCount is one option's denormalized counter inside a tally.
type OptionCount struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	VoteCount int    `json:"vote_count"`
}

// Tally is the full counter state of a poll as of one committed vote.
// This is what the vote coordinator returns and what the hub fans out.
type Tally struct {
	PollID     string        `json:"poll_id"`
	Question   string        `json:"question"`
	TotalVotes int           `json:"total_votes"`
	Options    []OptionCount `json:"options"`
}

// Results types

type OptionResult struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	VoteCount  int    `json:"vote_count"`
	Percentage string `json:"percentage"`
}

type PollResults struct {
	Poll    Poll           `json:"poll"`
	Options []OptionResult `json:"options"`
}

// Live channel message types

const (
	LiveJoinPoll   = "join_poll"
	LiveLeavePoll  = "leave_poll"
	LiveRefresh    = "refresh_results"
	LiveVoteUpdate = "vote_update"
)

// LiveMessage is a client-to-server frame on the live channel.
type LiveMessage struct {
	Type   string `json:"type"`
	PollID string `json:"poll_id"`
	Token  string `json:"token,omitempty"`
}
