// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"livepoll/models"
	"livepoll/testutil"
)

func TestGetResults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewResultsHandler(db, cfg)

	admin := testutil.CreateTestUser(t, db, "admin", models.RoleAdmin)
	pollID, optionIDs := testutil.CreateTestPoll(t, db, admin.ID, "A or B?", "A", "B")
	testutil.CastTestVote(t, db, pollID, optionIDs[0], "1.1.1.1")
	testutil.CastTestVote(t, db, pollID, optionIDs[0], "2.2.2.2")
	testutil.CastTestVote(t, db, pollID, optionIDs[0], "3.3.3.3")
	testutil.CastTestVote(t, db, pollID, optionIDs[1], "4.4.4.4")

	req := testutil.MakeRequest("GET", "/polls/"+pollID+"/results", nil, nil)
	req.SetPathValue("id", pollID)
	w := httptest.NewRecorder()

	handler.GetResults(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.PollResults
	testutil.AssertJSON(t, w, &resp)

	if resp.Poll.ID != pollID {
		t.Errorf("Poll ID = %s, want %s", resp.Poll.ID, pollID)
	}
	if resp.Poll.TotalVotes != 4 {
		t.Errorf("TotalVotes = %d, want 4", resp.Poll.TotalVotes)
	}
	if len(resp.Options) != 2 {
		t.Fatalf("Got %d options, want 2", len(resp.Options))
	}
	if resp.Options[0].Percentage != "75.00" {
		t.Errorf("First percentage = %q, want 75.00", resp.Options[0].Percentage)
	}
	if resp.Options[1].Percentage != "25.00" {
		t.Errorf("Second percentage = %q, want 25.00", resp.Options[1].Percentage)
	}
}

func TestGetResults_ZeroVotes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewResultsHandler(db, cfg)

	admin := testutil.CreateTestUser(t, db, "admin", models.RoleAdmin)
	pollID, _ := testutil.CreateTestPoll(t, db, admin.ID, "A or B?", "A", "B")

	req := testutil.MakeRequest("GET", "/polls/"+pollID+"/results", nil, nil)
	req.SetPathValue("id", pollID)
	w := httptest.NewRecorder()

	handler.GetResults(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.PollResults
	testutil.AssertJSON(t, w, &resp)

	for _, opt := range resp.Options {
		if opt.Percentage != "0.00" {
			t.Errorf("Percentage = %q with zero votes, want 0.00", opt.Percentage)
		}
	}
}

func TestGetResults_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewResultsHandler(db, cfg)

	req := testutil.MakeRequest("GET", "/polls/no-such-poll/results", nil, nil)
	req.SetPathValue("id", "no-such-poll")
	w := httptest.NewRecorder()

	handler.GetResults(w, req)

	testutil.AssertStatus(t, w, http.StatusNotFound)
}
