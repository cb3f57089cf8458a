// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - RegisterRequest: username, email, password
  - LoginRequest: email, password
  - UpdateRoleRequest: role
  - CreatePollRequest: question, description, options, expires_at
  - VoteRequest: option_id

# Response Types

Types for JSON responses:

  - AuthResponse: message, token, user
  - PollListResponse: polls, total_pages, current_page, total_polls
  - VoteResponse: message, poll (tally)
  - ErrorResponse: error (machine-readable code), message

# Domain Types

Internal data structures:

  - User: account with role and active flag (password hash never serialized)
  - Poll: question, lifecycle state, denormalized total_votes
  - Option: option text with denormalized vote_count
  - Vote: one ledger row per cast vote (voter fingerprint never serialized)
  - Tally: full counter state of a poll after a committed vote
  - PollResults: options annotated with percentage strings

# Constants

Roles:

	RoleAdmin = "admin"
	RoleUser  = "user"

Live channel message types:

	LiveJoinPoll   = "join_poll"
	LiveLeavePoll  = "leave_poll"
	LiveRefresh    = "refresh_results"
	LiveVoteUpdate = "vote_update"
*/
package models
