package mees

import "math"

// BuildingSummary pairs a building with its MEES summary.
type BuildingSummary struct {
	BuildingID   string  `json:"building_id"`
	BuildingName string  `json:"building_name"`
	Summary      Summary `json:"summary"`
}

// PortfolioSummary rolls building summaries up to portfolio level.
type PortfolioSummary struct {
	Buildings []BuildingSummary `json:"buildings"`
	Total     Summary           `json:"total"`
}

// CalculatePortfolioSummary sums building summaries. Percentages are
// recomputed from the summed unit counts.
func CalculatePortfolioSummary(buildings []BuildingSummary) PortfolioSummary {
	portfolio := PortfolioSummary{Buildings: make([]BuildingSummary, 0, len(buildings))}
	for _, building := range buildings {
		portfolio.Buildings = append(portfolio.Buildings, building)
		total := &portfolio.Total
		total.TotalUnits += building.Summary.TotalUnits
		total.UnitsAtRisk2027 += building.Summary.UnitsAtRisk2027
		total.RentAtRisk2027 += building.Summary.RentAtRisk2027
		total.UnitsAtRisk2030 += building.Summary.UnitsAtRisk2030
		total.RentAtRisk2030 += building.Summary.RentAtRisk2030
		total.TotalRent += building.Summary.TotalRent
	}
	portfolio.Total.PercentageAtRisk2027 = percentage(portfolio.Total.UnitsAtRisk2027, portfolio.Total.TotalUnits)
	portfolio.Total.PercentageAtRisk2030 = percentage(portfolio.Total.UnitsAtRisk2030, portfolio.Total.TotalUnits)
	return portfolio
}

// RetrofitScenario is a costed retrofit option stored against a building.
// Tag carries the calculation scenario explicitly.
type RetrofitScenario struct {
	ID                 string   `json:"id"`
	BuildingID         string   `json:"building_id"`
	Name               string   `json:"name"`
	Tag                Scenario `json:"scenario"`
	CapexTotal         float64  `json:"capex_total"`
	CarbonReductionPct float64  `json:"carbon_reduction_pct"`
}

// ScenarioComparison is one row of a retrofit comparison.
type ScenarioComparison struct {
	ScenarioID         string   `json:"scenario_id"`
	Name               string   `json:"name"`
	Tag                Scenario `json:"scenario"`
	CapexTotal         float64  `json:"capex_total"`
	CarbonReductionPct float64  `json:"carbon_reduction_pct"`
	RentProtected      float64  `json:"rent_protected"`
	RentUplift         float64  `json:"rent_uplift"`
	TotalBenefit       float64  `json:"total_benefit"`
	PaybackYears       *float64 `json:"payback_years,omitempty"`
}

// CompareScenarios evaluates every stored scenario against the same units.
// Payback is capex over annual benefit and is omitted when there is no benefit.
func CompareScenarios(units []Unit, scenarios []RetrofitScenario, params RentParams) ([]ScenarioComparison, error) {
	rows := make([]ScenarioComparison, 0, len(scenarios))
	for _, scenario := range scenarios {
		result, err := CalculateRentProtected(units, scenario.Tag, params)
		if err != nil {
			return nil, err
		}
		row := ScenarioComparison{
			ScenarioID:         scenario.ID,
			Name:               scenario.Name,
			Tag:                scenario.Tag,
			CapexTotal:         scenario.CapexTotal,
			CarbonReductionPct: scenario.CarbonReductionPct,
			RentProtected:      result.RentProtected,
			RentUplift:         result.RentUplift,
			TotalBenefit:       result.TotalBenefit,
		}
		if result.TotalBenefit > 0 && !math.IsNaN(scenario.CapexTotal) {
			payback := scenario.CapexTotal / result.TotalBenefit
			row.PaybackYears = &payback
		}
		rows = append(rows, row)
	}
	return rows, nil
}
