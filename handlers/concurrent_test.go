// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"livepoll/hub"
	"livepoll/models"
	"livepoll/testutil"
)

// TestConcurrentDistinctVoters verifies that simultaneous votes from
// different voters all land and the denormalized counters stay consistent
// with the vote ledger
func TestConcurrentDistinctVoters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewVoteHandler(db, cfg, hub.New())

	admin := testutil.CreateTestUser(t, db, "admin", models.RoleAdmin)
	pollID, optionIDs := testutil.CreateTestPoll(t, db, admin.ID, "A, B or C?", "A", "B", "C")

	numVoters := 10
	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			ip := fmt.Sprintf("10.0.0.%d", idx+1)
			w := castVote(t, handler, pollID, optionIDs[idx%3], ip, "")
			if w.Code == http.StatusOK {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if int(successCount.Load()) != numVoters {
		t.Errorf("Expected %d successful votes, got %d", numVoters, successCount.Load())
	}

	// Ledger and counters must agree
	testutil.CheckTallyInvariant(t, db, pollID)

	var totalVotes int
	if err := db.QueryRow(`SELECT total_votes FROM polls WHERE id = $1`, pollID).Scan(&totalVotes); err != nil {
		t.Fatalf("Failed to query poll total: %v", err)
	}
	if totalVotes != numVoters {
		t.Errorf("Expected total_votes %d, got %d", numVoters, totalVotes)
	}
}

// TestConcurrentSameVoter verifies that when one fingerprint races itself,
// exactly one vote lands and the rest are rejected as duplicates
func TestConcurrentSameVoter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewVoteHandler(db, cfg, hub.New())

	admin := testutil.CreateTestUser(t, db, "admin", models.RoleAdmin)
	pollID, optionIDs := testutil.CreateTestPoll(t, db, admin.ID, "A or B?", "A", "B")

	numAttempts := 5
	var successCount, duplicateCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			// Same IP every time, alternating options
			w := castVote(t, handler, pollID, optionIDs[idx%2], "9.9.9.9", "")
			switch w.Code {
			case http.StatusOK:
				successCount.Add(1)
			case http.StatusConflict:
				duplicateCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if successCount.Load() != 1 {
		t.Errorf("Expected exactly 1 successful vote, got %d", successCount.Load())
	}
	if int(duplicateCount.Load()) != numAttempts-1 {
		t.Errorf("Expected %d duplicate rejections, got %d", numAttempts-1, duplicateCount.Load())
	}

	// Exactly one ledger row, counters matching
	var ledgerCount int
	if err := db.QueryRow(`SELECT COUNT(*) FROM votes WHERE poll_id = $1`, pollID).Scan(&ledgerCount); err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	if ledgerCount != 1 {
		t.Errorf("Expected 1 vote in ledger, got %d", ledgerCount)
	}
	testutil.CheckTallyInvariant(t, db, pollID)
}

// TestParallelPollVoting verifies that voting on different polls doesn't
// interfere across rooms or counters
func TestParallelPollVoting(t *testing.T) {
	t.Parallel()

	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewVoteHandler(db, cfg, hub.New())

	admin := testutil.CreateTestUser(t, db, "admin", models.RoleAdmin)

	numPolls := 5
	pollIDs := make([]string, numPolls)
	optionIDs := make([][]string, numPolls)
	for i := 0; i < numPolls; i++ {
		pollIDs[i], optionIDs[i] = testutil.CreateTestPoll(t, db, admin.ID,
			fmt.Sprintf("Parallel poll %d?", i), "Yes", "No")
	}

	var wg sync.WaitGroup
	for i := 0; i < numPolls; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			// The same IP may vote once per poll
			w := castVote(t, handler, pollIDs[idx], optionIDs[idx][0], "8.8.8.8", "")
			if w.Code != http.StatusOK {
				t.Errorf("Poll %d vote failed: %d", idx, w.Code)
			}
		}(i)
	}

	wg.Wait()

	for i := 0; i < numPolls; i++ {
		var totalVotes int
		if err := db.QueryRow(`SELECT total_votes FROM polls WHERE id = $1`, pollIDs[i]).Scan(&totalVotes); err != nil {
			t.Fatalf("Failed to query poll %d: %v", i, err)
		}
		if totalVotes != 1 {
			t.Errorf("Poll %d total_votes = %d, want 1", i, totalVotes)
		}
		testutil.CheckTallyInvariant(t, db, pollIDs[i])
	}
}
