package main

import (
	"testing"

	mees "esg-reporting/internal/mees/domain"
)

func TestBuildBuildingIDs(t *testing.T) {
	ids := buildBuildingIDs("bld-seed-", 3)
	if len(ids) != 3 || ids[0] != "bld-seed-001" || ids[2] != "bld-seed-003" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestRatingCycleCoversEveryBand(t *testing.T) {
	seen := map[mees.Rating]bool{}
	for _, raw := range ratingCycle {
		seen[mees.ParseRating(raw)] = true
	}
	for _, rating := range append(append([]mees.Rating{}, mees.LetterRatings...), mees.RatingUnknown) {
		if !seen[rating] {
			t.Fatalf("rating %s missing from seed cycle", rating)
		}
	}
}
