// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connection and schema creation.

# Opening a Connection

Open selects the driver from the configured database type:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

Supported types are "postgres" (lib/pq) and "sqlite" (modernc.org/sqlite,
no cgo). Sqlite DSNs get foreign_keys and busy_timeout pragmas appended
unless the caller already supplied query parameters.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The DDL is restricted to the dialect-neutral subset both drivers accept.

# Tables

  - users: accounts with role and active flag
  - polls: poll metadata plus the denormalized total_votes counter
  - options: option text plus the denormalized vote_count counter
  - votes: the ledger, one immutable row per cast vote

# Relationships

	users 1──* polls
	polls 1──* options
	polls 1──* votes
	options 1──* votes

All foreign keys use ON DELETE CASCADE.

# Indexes

  - users.username (unique), users.email (unique)
  - polls.user_id, polls.is_active
  - options.poll_id
  - votes.(poll_id, voter_ip) UNIQUE, the duplicate-vote enforcement
  - votes.(poll_id, voter_session) non-unique
*/
package db
