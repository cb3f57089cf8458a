// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package vote

import (
	"database/sql"
	"fmt"

	"livepoll/models"
)

// LoadTally reads a poll's current denormalized counters: the poll total and
// every option's count, in option creation order.
func LoadTally(db *sql.DB, pollID string) (*models.Tally, error) {
	tally := &models.Tally{PollID: pollID}

	err := db.QueryRow(`
		SELECT question, total_votes FROM polls WHERE id = $1
	`, pollID).Scan(&tally.Question, &tally.TotalVotes)
	if err == sql.ErrNoRows {
		return nil, ErrPollNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load poll tally: %w", err)
	}

	rows, err := db.Query(`
		SELECT id, text, vote_count
		FROM options
		WHERE poll_id = $1
		ORDER BY position
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to load option counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var oc models.OptionCount
		if err := rows.Scan(&oc.ID, &oc.Text, &oc.VoteCount); err != nil {
			return nil, fmt.Errorf("failed to scan option count: %w", err)
		}
		tally.Options = append(tally.Options, oc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read option counts: %w", err)
	}

	return tally, nil
}

// Percentage renders an option's share of the total as a string with two
// decimal places. A poll with no votes yields "0.00" for every option.
// This is a pure derived view; it is never cached or persisted.
func Percentage(voteCount, totalVotes int) string {
	if totalVotes <= 0 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", float64(voteCount)/float64(totalVotes)*100)
}

// Results annotates a tally with per-option percentages.
func Results(tally *models.Tally) []models.OptionResult {
	results := make([]models.OptionResult, 0, len(tally.Options))
	for _, oc := range tally.Options {
		results = append(results, models.OptionResult{
			ID:         oc.ID,
			Text:       oc.Text,
			VoteCount:  oc.VoteCount,
			Percentage: Percentage(oc.VoteCount, tally.TotalVotes),
		})
	}
	return results
}
