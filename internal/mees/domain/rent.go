package mees

// RentBreakdown is the per-unit outcome of a rent protection run.
type RentBreakdown struct {
	UnitID        string  `json:"unit_id"`
	CurrentEPC    Rating  `json:"current_epc"`
	PostEPC       Rating  `json:"post_epc"`
	CurrentRent   float64 `json:"current_rent"`
	AtRisk2027    bool    `json:"at_risk_2027"`
	AtRisk2030    bool    `json:"at_risk_2030"`
	RentProtected float64 `json:"rent_protected"`
	RentUplift    float64 `json:"rent_uplift"`
	TotalBenefit  float64 `json:"total_benefit"`
	Reason        string  `json:"reason"`
}

// RentProtectedResult aggregates a rent protection run over a unit list.
type RentProtectedResult struct {
	Scenario        Scenario        `json:"scenario"`
	Params          RentParams      `json:"params"`
	RentProtected   float64         `json:"rent_protected"`
	RentUplift      float64         `json:"rent_uplift"`
	TotalBenefit    float64         `json:"total_benefit"`
	UnitsAtRisk2027 int             `json:"units_at_risk_2027"`
	RentAtRisk2027  float64         `json:"rent_at_risk_2027"`
	UnitsAtRisk2030 int             `json:"units_at_risk_2030"`
	RentAtRisk2030  float64         `json:"rent_at_risk_2030"`
	Breakdown       []RentBreakdown `json:"breakdown"`
}

// CalculateRentProtected works out how much rent a scenario protects from
// MEES non-compliance and how much ESG uplift it earns. At-risk counters
// always reflect the unretrofitted baseline. Protection is all or nothing
// per unit.
func CalculateRentProtected(units []Unit, scenario Scenario, params RentParams) (RentProtectedResult, error) {
	if err := scenario.Validate(); err != nil {
		return RentProtectedResult{}, err
	}
	if err := params.Validate(); err != nil {
		return RentProtectedResult{}, err
	}
	if err := validateUnits(units); err != nil {
		return RentProtectedResult{}, err
	}

	result := RentProtectedResult{
		Scenario:  scenario,
		Params:    params,
		Breakdown: make([]RentBreakdown, 0, len(units)),
	}
	for _, unit := range units {
		current := unit.Rating.Normalize()
		post, reason := scenario.retrofit(current)
		row := RentBreakdown{
			UnitID:      unit.ID,
			CurrentEPC:  current,
			PostEPC:     post,
			CurrentRent: unit.AnnualRent,
			AtRisk2027:  current.FailsMEES2027(),
			AtRisk2030:  current.FailsMEES2030(),
			Reason:      reason,
		}

		if row.AtRisk2027 {
			result.UnitsAtRisk2027++
			result.RentAtRisk2027 += unit.AnnualRent
		}
		if row.AtRisk2030 {
			result.UnitsAtRisk2030++
			result.RentAtRisk2030 += unit.AnnualRent
		}

		if scenario.Retrofits() {
			if row.AtRisk2027 || row.AtRisk2030 {
				row.RentProtected = unit.AnnualRent
			}
			row.RentUplift = unit.AnnualRent * params.upliftPercent(post) / 100
		}
		row.TotalBenefit = row.RentProtected + row.RentUplift

		result.RentProtected += row.RentProtected
		result.RentUplift += row.RentUplift
		result.TotalBenefit += row.TotalBenefit
		result.Breakdown = append(result.Breakdown, row)
	}
	return result, nil
}
