package mees

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestCalculateRentProtected_EPCC2027UpgradesD(t *testing.T) {
	units := []Unit{{ID: "u1", Rating: RatingD, AnnualRent: 100000}}
	result, err := CalculateRentProtected(units, ScenarioEPCC2027, DefaultRentParams())
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	row := result.Breakdown[0]
	if row.PostEPC != RatingC {
		t.Fatalf("expected post epc C, got %s", row.PostEPC)
	}
	if result.RentProtected != 100000 || result.RentUplift != 0 {
		t.Fatalf("unexpected totals: protected=%v uplift=%v", result.RentProtected, result.RentUplift)
	}
	if row.Reason != "upgraded to EPC C for 2027 compliance" {
		t.Fatalf("unexpected reason %q", row.Reason)
	}
}

func TestCalculateRentProtected_NetZeroUpliftOnB(t *testing.T) {
	units := []Unit{{ID: "u1", Rating: RatingB, AnnualRent: 50000}}
	result, err := CalculateRentProtected(units, ScenarioNetZero2050, DefaultRentParams())
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	row := result.Breakdown[0]
	if row.PostEPC != RatingB {
		t.Fatalf("expected post epc B, got %s", row.PostEPC)
	}
	if result.RentProtected != 0 {
		t.Fatalf("expected no protected rent, got %v", result.RentProtected)
	}
	if result.RentUplift != 2500 {
		t.Fatalf("expected uplift 2500, got %v", result.RentUplift)
	}
	if row.Reason != "already EPC B compliant" {
		t.Fatalf("unexpected reason %q", row.Reason)
	}
}

func TestCalculateRentProtected_BAUKeepsBaselineRisk(t *testing.T) {
	units := []Unit{{ID: "u1", Rating: RatingUnknown, AnnualRent: 200000}}
	result, err := CalculateRentProtected(units, ScenarioBAU, DefaultRentParams())
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if result.RentProtected != 0 || result.RentUplift != 0 {
		t.Fatalf("bau should not protect or uplift: %+v", result)
	}
	if result.UnitsAtRisk2027 != 1 || result.RentAtRisk2027 != 200000 {
		t.Fatalf("expected unknown unit at risk for 2027, got %d/%v", result.UnitsAtRisk2027, result.RentAtRisk2027)
	}
	if result.Breakdown[0].Reason != "no retrofit — business as usual" {
		t.Fatalf("unexpected reason %q", result.Breakdown[0].Reason)
	}
}

func TestCalculateRentProtected_Reasons(t *testing.T) {
	cases := []struct {
		scenario Scenario
		rating   Rating
		post     Rating
		reason   string
	}{
		{ScenarioEPCC2027, RatingG, RatingC, "upgraded to EPC C for 2027 compliance"},
		{ScenarioEPCC2027, RatingUnknown, RatingC, "upgraded to EPC C for 2027 compliance"},
		{ScenarioEPCC2027, RatingC, RatingC, "already EPC C compliant"},
		{ScenarioEPCC2027, RatingA, RatingA, "already above EPC C standard"},
		{ScenarioEPCC2027, RatingB, RatingB, "already above EPC C standard"},
		{ScenarioNetZero2050, RatingC, RatingB, "upgraded to EPC B for 2030 compliance"},
		{ScenarioNetZero2050, RatingF, RatingB, "upgraded to EPC B for 2030 compliance"},
		{ScenarioNetZero2050, RatingB, RatingB, "already EPC B compliant"},
		{ScenarioNetZero2050, RatingA, RatingA, "already above EPC B standard"},
		{ScenarioBAU, RatingE, RatingE, "no retrofit — business as usual"},
	}
	for _, tc := range cases {
		result, err := CalculateRentProtected([]Unit{{ID: "u", Rating: tc.rating, AnnualRent: 1000}}, tc.scenario, DefaultRentParams())
		if err != nil {
			t.Fatalf("%s/%s: %v", tc.scenario, tc.rating, err)
		}
		row := result.Breakdown[0]
		if row.PostEPC != tc.post || row.Reason != tc.reason {
			t.Fatalf("%s/%s: got %s %q, want %s %q", tc.scenario, tc.rating, row.PostEPC, row.Reason, tc.post, tc.reason)
		}
	}
}

func TestCalculateRentProtected_InvalidScenario(t *testing.T) {
	_, err := CalculateRentProtected(nil, Scenario("epc_a_2040"), DefaultRentParams())
	if !errors.Is(err, ErrInvalidScenario) {
		t.Fatalf("expected ErrInvalidScenario, got %v", err)
	}
}

func TestCalculateRentProtected_NonNumericRent(t *testing.T) {
	units := []Unit{{ID: "u1", Rating: RatingD, AnnualRent: math.NaN()}}
	_, err := CalculateRentProtected(units, ScenarioEPCC2027, DefaultRentParams())
	if !errors.Is(err, ErrMalformedUnit) {
		t.Fatalf("expected ErrMalformedUnit, got %v", err)
	}
}

func TestCalculateRentProtected_NegativeRentPassesThrough(t *testing.T) {
	units := []Unit{
		{ID: "u1", Rating: RatingD, AnnualRent: 100},
		{ID: "u2", Rating: RatingC, AnnualRent: -10},
	}
	result, err := CalculateRentProtected(units, ScenarioEPCC2027, DefaultRentParams())
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	// The C unit is still at risk for 2030, so its rent counts as given.
	if result.RentProtected != 90 || result.RentUplift != 0 || result.TotalBenefit != 90 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Breakdown[1].CurrentRent != -10 {
		t.Fatalf("expected rent to be kept as given, got %+v", result.Breakdown[1])
	}

	summary, err := CalculateMEESSummary(units)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalUnits != 2 || summary.TotalRent != 90 || summary.RentAtRisk2027 != 100 || summary.RentAtRisk2030 != 90 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestCalculateRentProtected_NegativeParams(t *testing.T) {
	_, err := CalculateRentProtected(nil, ScenarioBAU, RentParams{EPCAUpliftPercent: -1})
	if !errors.Is(err, ErrInvalidRentParams) {
		t.Fatalf("expected ErrInvalidRentParams, got %v", err)
	}
}

func TestCalculateRentProtected_EmptyInput(t *testing.T) {
	for _, scenario := range Scenarios {
		result, err := CalculateRentProtected(nil, scenario, DefaultRentParams())
		if err != nil {
			t.Fatalf("%s: %v", scenario, err)
		}
		if result.RentProtected != 0 || result.RentUplift != 0 || result.TotalBenefit != 0 {
			t.Fatalf("%s: expected zero totals, got %+v", scenario, result)
		}
		if result.UnitsAtRisk2027 != 0 || result.UnitsAtRisk2030 != 0 {
			t.Fatalf("%s: expected zero at-risk counts", scenario)
		}
		if result.Breakdown == nil || len(result.Breakdown) != 0 {
			t.Fatalf("%s: expected empty breakdown", scenario)
		}
	}
}

func TestCalculateRentProtected_VacantUnitStaysInBreakdown(t *testing.T) {
	units := []Unit{
		{ID: "let", Rating: RatingE, AnnualRent: 40000},
		{ID: "vacant", Rating: RatingE, AnnualRent: 0},
	}
	result, err := CalculateRentProtected(units, ScenarioNetZero2050, DefaultRentParams())
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if len(result.Breakdown) != 2 || result.Breakdown[1].UnitID != "vacant" {
		t.Fatalf("expected vacant unit in breakdown, got %+v", result.Breakdown)
	}
	if result.Breakdown[1].TotalBenefit != 0 {
		t.Fatalf("vacant unit should carry no benefit")
	}
	if result.RentProtected != 40000 || result.RentUplift != 2000 {
		t.Fatalf("unexpected totals: %v %v", result.RentProtected, result.RentUplift)
	}
}

func TestCalculateRentProtected_Properties(t *testing.T) {
	units := []Unit{
		{ID: "a", Rating: RatingA, AnnualRent: 120000},
		{ID: "b", Rating: RatingB, AnnualRent: 80000},
		{ID: "c", Rating: RatingC, AnnualRent: 60000},
		{ID: "d", Rating: RatingD, AnnualRent: 55000},
		{ID: "g", Rating: RatingG, AnnualRent: 30000},
		{ID: "x", Rating: Rating("Z"), AnnualRent: 10000},
		{ID: "v", Rating: RatingF, AnnualRent: 0},
	}
	params := DefaultRentParams()
	for _, scenario := range Scenarios {
		first, err := CalculateRentProtected(units, scenario, params)
		if err != nil {
			t.Fatalf("%s: %v", scenario, err)
		}
		second, err := CalculateRentProtected(units, scenario, params)
		if err != nil {
			t.Fatalf("%s: %v", scenario, err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("%s: results differ between runs", scenario)
		}
		if len(first.Breakdown) != len(units) {
			t.Fatalf("%s: breakdown length %d, want %d", scenario, len(first.Breakdown), len(units))
		}
		var sum float64
		for i, row := range first.Breakdown {
			if row.UnitID != units[i].ID {
				t.Fatalf("%s: breakdown out of order at %d", scenario, i)
			}
			if row.RentProtected < 0 || row.RentUplift < 0 {
				t.Fatalf("%s: negative value in %+v", scenario, row)
			}
			if scenario == ScenarioBAU && row.TotalBenefit != 0 {
				t.Fatalf("bau: unit %s has benefit %v", row.UnitID, row.TotalBenefit)
			}
			sum += row.TotalBenefit
		}
		if math.Abs(sum-(first.RentProtected+first.RentUplift)) > 1e-9 {
			t.Fatalf("%s: breakdown sum %v != %v", scenario, sum, first.RentProtected+first.RentUplift)
		}
		if first.UnitsAtRisk2027 != 4 || first.UnitsAtRisk2030 != 5 {
			t.Fatalf("%s: baseline at-risk counts %d/%d", scenario, first.UnitsAtRisk2027, first.UnitsAtRisk2030)
		}
	}
}

func TestCalculateRentProtected_UpliftMonotonicInEPCA(t *testing.T) {
	units := []Unit{{ID: "a", Rating: RatingA, AnnualRent: 100000}}
	previous := -1.0
	for _, pct := range []float64{0, 2, 8, 15, 20} {
		result, err := CalculateRentProtected(units, ScenarioEPCC2027, RentParams{EPCAUpliftPercent: pct, EPCBUpliftPercent: 5})
		if err != nil {
			t.Fatalf("calculate: %v", err)
		}
		if result.RentUplift < previous {
			t.Fatalf("uplift decreased at %v%%: %v < %v", pct, result.RentUplift, previous)
		}
		previous = result.RentUplift
	}
	if previous != 20000 {
		t.Fatalf("expected uplift 20000 at 20%%, got %v", previous)
	}
}
