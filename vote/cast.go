// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package vote

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"livepoll/models"
)

// Cast records one vote as a single atomic transaction: eligibility check,
// ledger insert, and both counter increments commit together or not at all.
//
// Duplicate policy: a vote is rejected when any prior vote on the poll
// shares the voter's IP or, when a session token is supplied, the session
// token. The pre-check inside the transaction is a fast path only; the
// UNIQUE index on (poll_id, voter_ip) is the race-proof enforcement, and a
// constraint violation at insert time is translated to ErrDuplicateVote.
//
// On success the poll's full updated tally is returned. The caller triggers
// fan-out only after Cast returns without error, never speculatively.
func Cast(db *sql.DB, pollID, optionID, voterIP, voterSession string) (*models.Tally, error) {
	now := time.Now()

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Eligibility is re-checked inside the transaction so an expiry that
	// passes between an earlier read and this commit still rejects.
	var isActive bool
	var expiresAt sql.NullTime
	err = tx.QueryRow(`
		SELECT is_active, expires_at FROM polls WHERE id = $1
	`, pollID).Scan(&isActive, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, ErrPollNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load poll: %w", err)
	}

	var expiry *time.Time
	if expiresAt.Valid {
		expiry = &expiresAt.Time
	}

	if votable, reason := CheckVotable(isActive, expiry, now); !votable {
		tx.Rollback()
		if reason == ReasonExpired {
			// The active flip must outlive the rejected vote, so it is
			// persisted outside the (rolled back) vote transaction.
			if derr := Deactivate(db, pollID, now); derr != nil {
				return nil, derr
			}
			return nil, ErrPollExpired
		}
		return nil, ErrPollInactive
	}

	// Filtering by poll guards against voting for an option that exists
	// globally but belongs to a different poll.
	var foundOption string
	err = tx.QueryRow(`
		SELECT id FROM options WHERE id = $1 AND poll_id = $2
	`, optionID, pollID).Scan(&foundOption)
	if err == sql.ErrNoRows {
		return nil, ErrOptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load option: %w", err)
	}

	// Fast-path duplicate check across both fingerprint dimensions.
	// An empty session string matches no stored row (sessions are NULL
	// when absent).
	var exists bool
	err = tx.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM votes
			WHERE poll_id = $1 AND (voter_ip = $2 OR voter_session = $3)
		)
	`, pollID, voterIP, voterSession).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing vote: %w", err)
	}
	if exists {
		return nil, ErrDuplicateVote
	}

	var session sql.NullString
	if voterSession != "" {
		session = sql.NullString{String: voterSession, Valid: true}
	}

	_, err = tx.Exec(`
		INSERT INTO votes (id, poll_id, option_id, voter_ip, voter_session, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.NewString(), pollID, optionID, voterIP, session, now)
	if err != nil {
		if isUniqueViolation(err) {
			// Two concurrent requests with the same fingerprint both passed
			// the pre-check; the constraint decided the race.
			return nil, ErrDuplicateVote
		}
		return nil, fmt.Errorf("failed to insert vote: %w", err)
	}

	// Relative increments rather than read-modify-write, so concurrent
	// transactions cannot collapse two increments into one.
	_, err = tx.Exec(`
		UPDATE options SET vote_count = vote_count + 1 WHERE id = $1
	`, optionID)
	if err != nil {
		return nil, fmt.Errorf("failed to increment option count: %w", err)
	}

	_, err = tx.Exec(`
		UPDATE polls SET total_votes = total_votes + 1, updated_at = $1 WHERE id = $2
	`, now, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to increment poll total: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit vote: %w", err)
	}

	return LoadTally(db, pollID)
}
