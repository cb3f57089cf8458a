// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package vote implements the vote-casting and tally-consistency core.

# Casting

Cast runs the whole protocol as one transaction:

	tally, err := vote.Cast(db, pollID, optionID, voterIP, voterSession)

Steps inside the transaction: load poll, lifecycle check, load option
scoped to the poll, duplicate fast-path check, ledger insert, relative
counter increments, commit. Any failure rolls everything back; no partial
vote or partial counter update is ever observable.

Errors form a closed taxonomy callers can branch on:

	ErrPollNotFound, ErrPollInactive, ErrPollExpired,
	ErrOptionNotFound, ErrDuplicateVote

# Duplicate Enforcement

Two concurrent requests with the same IP can both pass the in-transaction
existence check. The UNIQUE index on votes(poll_id, voter_ip) is what makes
the race safe: the losing insert fails with a constraint violation, which
Cast translates to ErrDuplicateVote. The same translation handles both the
lib/pq and the modernc sqlite message.

# Lifecycle

CheckVotable is the pure votability decision (active flag plus expiry).
Deactivate is the explicit, idempotent persisted transition; the read path
and the vote path both invoke it when they observe a passed expiry, and the
flip commits even when the vote that triggered it is rejected.

# Consistency Invariant

For every poll, at all times:

	polls.total_votes == Σ options.vote_count == COUNT(votes)

Cast maintains the invariant by only ever moving all three inside one
transaction. The test suite re-checks it after concurrent vote storms.

# Results

LoadTally reads the current counters; Percentage/Results derive the
read-only percentage view ("0.00" when the poll has no votes). Derived
values are computed per request and never stored.
*/
package vote
