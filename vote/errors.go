// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package vote

import (
	"errors"
	"strings"
)

var (
	ErrPollNotFound   = errors.New("poll not found")
	ErrPollInactive   = errors.New("poll is not active")
	ErrPollExpired    = errors.New("poll has expired")
	ErrOptionNotFound = errors.New("option not found for this poll")
	ErrDuplicateVote  = errors.New("voter has already voted in this poll")
)

// isUniqueViolation reports whether an insert failed on a uniqueness
// constraint. Matches both drivers we ship: modernc sqlite reports
// "UNIQUE constraint failed: votes.poll_id, votes.voter_ip" and lib/pq
// reports `duplicate key value violates unique constraint "..."`.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
