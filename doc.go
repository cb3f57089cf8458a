// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Livepoll API server.

Livepoll is a real-time polling service: admins create polls, anonymous
visitors cast one vote each, and every connected viewer sees tallies
update over a websocket the moment a vote lands.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=postgres://... JWT_SECRET=... go run main.go

Or with flags:

	go run main.go -p 5000 -t sqlite -d livepoll.db -jwt-secret secret

# Configuration

Required settings:

  - DATABASE_URL (-d): PostgreSQL connection string or sqlite file path
  - JWT_SECRET (-jwt-secret): Secret for signing session tokens

Optional settings:

  - PORT (-p): Server port (default: 5000)
  - DATABASE_TYPE (-t): "postgres" or "sqlite" (default: sqlite)
  - FRONTEND_ORIGIN (-origin): Allowed CORS and websocket origin
  - ADMIN_EMAIL / ADMIN_PASSWORD: Seeds the first admin account

A .env file in the working directory is loaded at startup; already-set
environment variables take precedence.

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (auth, polls, voting, results, live)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, auth guards, rate limiting, JSON helpers
  - models: Request/response types
  - auth: Password hashing and session tokens
  - vote: Vote transaction, lifecycle guard, tally queries
  - hub: Per-poll websocket fan-out
  - db: Connection setup and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
