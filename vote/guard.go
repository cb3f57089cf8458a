// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package vote

import (
	"database/sql"
	"fmt"
	"time"
)

// Not-votable reasons reported by CheckVotable.
const (
	ReasonInactive = "inactive"
	ReasonExpired  = "expired"
)

// CheckVotable decides whether a poll can accept votes at the given instant.
// A poll is votable iff it is active and either has no expiry or the expiry
// is still in the future. The decision is pure; persisting the expiry
// transition is Deactivate's job.
func CheckVotable(isActive bool, expiresAt *time.Time, now time.Time) (votable bool, reason string) {
	if !isActive {
		return false, ReasonInactive
	}
	if expiresAt != nil && !expiresAt.After(now) {
		return false, ReasonExpired
	}
	return true, ""
}

// Deactivate flips a poll's active flag off and persists it. Idempotent:
// re-running against an already-inactive poll is a no-op. This is the single
// place the active flag transitions; read and vote paths both call it when
// they observe a passed expiry.
func Deactivate(db *sql.DB, pollID string, now time.Time) error {
	_, err := db.Exec(`
		UPDATE polls
		SET is_active = FALSE, updated_at = $1
		WHERE id = $2 AND is_active = TRUE
	`, now, pollID)
	if err != nil {
		return fmt.Errorf("failed to deactivate poll: %w", err)
	}
	return nil
}
