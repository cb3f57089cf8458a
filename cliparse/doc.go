// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 5000)
  - DatabaseURL: Database connection string (required)
  - DatabaseType: "sqlite" or "postgres" (default: sqlite)
  - JWTSecret: Secret for session token signing (required)
  - FrontendOrigin: Allowed CORS / websocket origin (optional)
  - AdminEmail, AdminPassword: bootstrap admin seeded at startup (optional)

# CLI Flags

	-p          Server port
	-d          Database URL
	-t          Database type
	-origin     Frontend origin
	-jwt-secret JWT signing secret

# Environment Variables

Flags fall back to environment variables:

	PORT            → -p
	DATABASE_URL    → -d
	DATABASE_TYPE   → -t
	FRONTEND_ORIGIN → -origin
	JWT_SECRET      → -jwt-secret

ADMIN_EMAIL and ADMIN_PASSWORD are env-only; they never appear on a
command line. CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - JWT_SECRET must be provided
*/
package cliparse
