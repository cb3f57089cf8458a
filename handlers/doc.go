// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the livepoll API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - AuthHandler: registration, login, profile, role grants
  - PollHandler: poll lifecycle (create, list, get, delete)
  - VoteHandler: vote casting and post-commit fan-out
  - ResultsHandler: percentage-annotated results view
  - LiveHandler: websocket live-update channel

Handlers are created via constructor functions that accept *sql.DB and
Config (VoteHandler and LiveHandler also take the fan-out *hub.Hub):

	voteHandler := handlers.NewVoteHandler(db, cfg, h)

# Auth Flow

	POST /auth/register → Register (always lowest-privilege role)
	POST /auth/login    → Login (returns 24h JWT)
	GET  /auth/profile  → Profile (requires Bearer token)
	PUT  /auth/users/{id}/role → UpdateRole (admin only)

# Poll Flow

	POST   /polls          → CreatePoll (admin, poll + options atomic)
	GET    /polls          → ListPolls (paginated, ?active=true filter)
	GET    /polls/{id}     → GetPoll (deactivates on passed expiry)
	DELETE /polls/{id}     → DeletePoll (owner or admin, cascades)

# Voting

	POST /polls/{id}/vote → Vote

Identity is the caller's IP plus the optional User-Session header. The
actual transaction lives in the vote package; this handler maps its error
taxonomy to HTTP codes and, on success, publishes the fresh tally to the
poll's room after responding.

# Live Channel

	GET /live → Serve (websocket)

Clients send join_poll / leave_poll frames with a poll_id, and admins may
send refresh_results with their token to force a push. The server emits
vote_update frames carrying the tally.
*/
package handlers
