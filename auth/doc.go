// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides session tokens and password hashing.

# Session Tokens

Tokens are HS256-signed JWTs carrying the user id, username and role:

	token, err := auth.GenerateToken(user, cfg.JWTSecret)
	claims, err := auth.ParseToken(token, cfg.JWTSecret)

Tokens expire after 24 hours. ParseToken collapses every validation
failure (bad signature, wrong algorithm, expiry, garbage input) into
ErrInvalidToken so callers never branch on parser internals.

# Passwords

Passwords are stored only as salted bcrypt hashes with cost factor 12:

	hash, err := auth.HashPassword(plaintext)
	ok := auth.CheckPassword(hash, plaintext)

The plaintext is never persisted or logged.
*/
package auth
