package mees

import (
	"errors"
	"math"
	"testing"
)

func TestCalculateMEESSummary_MixedUnits(t *testing.T) {
	units := []Unit{
		{ID: "c", Rating: RatingC, AnnualRent: 100000},
		{ID: "d", Rating: RatingD, AnnualRent: 50000},
	}
	summary, err := CalculateMEESSummary(units)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalUnits != 2 {
		t.Fatalf("expected 2 units, got %d", summary.TotalUnits)
	}
	if summary.UnitsAtRisk2027 != 1 || summary.PercentageAtRisk2027 != 50 || summary.RentAtRisk2027 != 50000 {
		t.Fatalf("unexpected 2027 position: %+v", summary)
	}
	if summary.UnitsAtRisk2030 != 2 || summary.PercentageAtRisk2030 != 100 || summary.RentAtRisk2030 != 150000 {
		t.Fatalf("unexpected 2030 position: %+v", summary)
	}
}

func TestCalculateMEESSummary_Empty(t *testing.T) {
	summary, err := CalculateMEESSummary(nil)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalUnits != 0 {
		t.Fatalf("expected no units, got %d", summary.TotalUnits)
	}
	if summary.PercentageAtRisk2027 != 0 || summary.PercentageAtRisk2030 != 0 {
		t.Fatalf("expected zero percentages, got %+v", summary)
	}
	if math.IsNaN(summary.PercentageAtRisk2027) || math.IsNaN(summary.PercentageAtRisk2030) {
		t.Fatalf("percentages must not be NaN")
	}
}

func TestCalculateMEESSummary_UnknownIsAtRisk(t *testing.T) {
	units := []Unit{{ID: "u", Rating: Rating(""), AnnualRent: 30000}}
	summary, err := CalculateMEESSummary(units)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.UnitsAtRisk2027 != 1 || summary.UnitsAtRisk2030 != 1 {
		t.Fatalf("unknown rating should fail both thresholds: %+v", summary)
	}
}

func TestCalculateMEESSummary_InfiniteRent(t *testing.T) {
	_, err := CalculateMEESSummary([]Unit{{ID: "u", Rating: RatingC, AnnualRent: math.Inf(1)}})
	if !errors.Is(err, ErrMalformedUnit) {
		t.Fatalf("expected ErrMalformedUnit, got %v", err)
	}
}

func TestClassifyUnit(t *testing.T) {
	cases := []struct {
		rating Rating
		c2027  bool
		c2030  bool
		action string
	}{
		{RatingA, true, true, ActionCompliant},
		{RatingB, true, true, ActionCompliant},
		{RatingC, true, false, ActionUpgradeToB},
		{RatingD, false, false, ActionUpgradeToC},
		{RatingG, false, false, ActionUpgradeToC},
		{RatingUnknown, false, false, ActionUpgradeToC},
		{Rating("n/a"), false, false, ActionUpgradeToC},
	}
	for _, tc := range cases {
		detail := ClassifyUnit(Unit{ID: "u", Rating: tc.rating, AnnualRent: 1})
		if detail.Compliant2027 != tc.c2027 || detail.Compliant2030 != tc.c2030 || detail.Action != tc.action {
			t.Fatalf("%q: got %+v", tc.rating, detail)
		}
	}
}

func TestClassifyAndRentAgreeOnUnknown(t *testing.T) {
	unit := Unit{ID: "u", Rating: Rating("?"), AnnualRent: 1000}
	detail := ClassifyUnit(unit)
	result, err := CalculateRentProtected([]Unit{unit}, ScenarioBAU, DefaultRentParams())
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if detail.Compliant2027 == result.Breakdown[0].AtRisk2027 {
		t.Fatalf("classification and at-risk disagree for 2027")
	}
	if detail.Compliant2030 == result.Breakdown[0].AtRisk2030 {
		t.Fatalf("classification and at-risk disagree for 2030")
	}
}

func TestCalculateEPCDistribution(t *testing.T) {
	units := []Unit{
		{ID: "1", Rating: RatingA},
		{ID: "2", Rating: RatingC},
		{ID: "3", Rating: RatingC},
		{ID: "4", Rating: Rating("g")},
		{ID: "5", Rating: RatingUnknown},
	}
	buckets := CalculateEPCDistribution(units)
	if len(buckets) != 7 {
		t.Fatalf("expected 7 buckets, got %d", len(buckets))
	}
	want := map[Rating]int{RatingA: 1, RatingC: 2, RatingG: 1}
	for i, bucket := range buckets {
		if bucket.Rating != LetterRatings[i] {
			t.Fatalf("bucket %d out of order: %s", i, bucket.Rating)
		}
		if bucket.Count != want[bucket.Rating] {
			t.Fatalf("%s: expected %d, got %d", bucket.Rating, want[bucket.Rating], bucket.Count)
		}
		if bucket.Color == "" {
			t.Fatalf("%s: missing color", bucket.Rating)
		}
	}
	if buckets[2].Percentage != 40 {
		t.Fatalf("expected C at 40%%, got %v", buckets[2].Percentage)
	}
}

func TestCalculateEPCDistribution_Empty(t *testing.T) {
	for _, bucket := range CalculateEPCDistribution(nil) {
		if bucket.Count != 0 || bucket.Percentage != 0 {
			t.Fatalf("expected empty bucket, got %+v", bucket)
		}
	}
}
