// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"livepoll/auth"
	"livepoll/cliparse"
	"livepoll/db"
	"livepoll/models"
)

// TestPassword is the plaintext password shared by all fixture users.
const TestPassword = "password123"

var (
	hashOnce     sync.Once
	passwordHash string
)

// testPasswordHash hashes TestPassword once per process; bcrypt at cost 12
// is too slow to re-run for every fixture user.
func testPasswordHash(t *testing.T) string {
	t.Helper()
	hashOnce.Do(func() {
		var err error
		passwordHash, err = auth.HashPassword(TestPassword)
		if err != nil {
			t.Fatalf("Failed to hash test password: %v", err)
		}
	})
	return passwordHash
}

// SetupTestDB creates a fresh sqlite database with the full schema.
// One writer connection keeps sqlite's locking out of concurrency tests;
// the duplicate-vote race still exercises the real uniqueness constraint.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "livepoll_test.db")
	conn, err := db.Open("sqlite", "file:"+path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         5000,
		DatabaseURL:  "file:livepoll_test.db",
		DatabaseType: "sqlite",
		JWTSecret:    "test-jwt-secret",
	}
}

// CreateTestUser inserts a user with the shared test password and the
// given role, and returns it.
func CreateTestUser(t *testing.T, conn *sql.DB, username, role string) models.User {
	t.Helper()

	now := time.Now()
	user := models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     username + "@example.com",
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := conn.Exec(`
		INSERT INTO users (id, username, email, password_hash, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, user.ID, user.Username, user.Email, testPasswordHash(t), user.Role, user.IsActive, now, now)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// AuthToken issues a session token for a fixture user.
func AuthToken(t *testing.T, cfg cliparse.Config, user models.User) string {
	t.Helper()

	token, err := auth.GenerateToken(user, cfg.JWTSecret)
	if err != nil {
		t.Fatalf("Failed to generate test token: %v", err)
	}
	return token
}

// CreateTestPoll inserts an active poll owned by userID with the given
// option texts, returning the poll ID and option IDs in creation order.
func CreateTestPoll(t *testing.T, conn *sql.DB, userID, question string, optionTexts ...string) (pollID string, optionIDs []string) {
	t.Helper()

	pollID = uuid.NewString()
	now := time.Now()

	_, err := conn.Exec(`
		INSERT INTO polls (id, question, description, is_active, expires_at, user_id, total_votes, created_at, updated_at)
		VALUES ($1, $2, NULL, TRUE, NULL, $3, 0, $4, $5)
	`, pollID, question, userID, now, now)
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	for i, text := range optionTexts {
		optionID := uuid.NewString()
		_, err := conn.Exec(`
			INSERT INTO options (id, text, poll_id, vote_count, position)
			VALUES ($1, $2, $3, 0, $4)
		`, optionID, text, pollID, i)
		if err != nil {
			t.Fatalf("Failed to create test option: %v", err)
		}
		optionIDs = append(optionIDs, optionID)
	}

	return pollID, optionIDs
}

// ExpireTestPoll backdates a poll's expiry while leaving it active, the
// state an expired-but-not-yet-deactivated poll is in.
func ExpireTestPoll(t *testing.T, conn *sql.DB, pollID string) {
	t.Helper()

	_, err := conn.Exec(`
		UPDATE polls SET expires_at = $1 WHERE id = $2
	`, time.Now().Add(-time.Hour), pollID)
	if err != nil {
		t.Fatalf("Failed to expire test poll: %v", err)
	}
}

// DeactivateTestPoll clears a poll's active flag directly.
func DeactivateTestPoll(t *testing.T, conn *sql.DB, pollID string) {
	t.Helper()

	_, err := conn.Exec(`
		UPDATE polls SET is_active = FALSE WHERE id = $1
	`, pollID)
	if err != nil {
		t.Fatalf("Failed to deactivate test poll: %v", err)
	}
}

// CastTestVote writes a vote row and both counter increments directly,
// for fixtures that need pre-existing tallies.
func CastTestVote(t *testing.T, conn *sql.DB, pollID, optionID, voterIP string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO votes (id, poll_id, option_id, voter_ip, voter_session, created_at)
		VALUES ($1, $2, $3, $4, NULL, $5)
	`, uuid.NewString(), pollID, optionID, voterIP, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}

	if _, err := conn.Exec(`UPDATE options SET vote_count = vote_count + 1 WHERE id = $1`, optionID); err != nil {
		t.Fatalf("Failed to increment option count: %v", err)
	}
	if _, err := conn.Exec(`UPDATE polls SET total_votes = total_votes + 1 WHERE id = $1`, pollID); err != nil {
		t.Fatalf("Failed to increment poll total: %v", err)
	}
}

// CheckTallyInvariant asserts the triple equality
// total_votes == Σ vote_count == COUNT(votes) for one poll.
func CheckTallyInvariant(t *testing.T, conn *sql.DB, pollID string) {
	t.Helper()

	var totalVotes, optionSum, ledgerCount int
	if err := conn.QueryRow(`SELECT total_votes FROM polls WHERE id = $1`, pollID).Scan(&totalVotes); err != nil {
		t.Fatalf("Failed to read poll total: %v", err)
	}
	if err := conn.QueryRow(`SELECT COALESCE(SUM(vote_count), 0) FROM options WHERE poll_id = $1`, pollID).Scan(&optionSum); err != nil {
		t.Fatalf("Failed to sum option counts: %v", err)
	}
	if err := conn.QueryRow(`SELECT COUNT(*) FROM votes WHERE poll_id = $1`, pollID).Scan(&ledgerCount); err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}

	if totalVotes != optionSum || totalVotes != ledgerCount {
		t.Errorf("Tally invariant broken: total_votes=%d, option sum=%d, ledger=%d",
			totalVotes, optionSum, ledgerCount)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
