package mees

const (
	ActionUpgradeToC = "Immediate upgrade to C"
	ActionUpgradeToB = "Upgrade to B by 2030"
	ActionCompliant  = "Compliant"
)

// Summary is the MEES compliance position of a unit list against the
// 2027 (EPC C) and 2030 (EPC B) thresholds.
type Summary struct {
	TotalUnits           int     `json:"total_units"`
	UnitsAtRisk2027      int     `json:"units_at_risk_2027"`
	PercentageAtRisk2027 float64 `json:"percentage_at_risk_2027"`
	RentAtRisk2027       float64 `json:"rent_at_risk_2027"`
	UnitsAtRisk2030      int     `json:"units_at_risk_2030"`
	PercentageAtRisk2030 float64 `json:"percentage_at_risk_2030"`
	RentAtRisk2030       float64 `json:"rent_at_risk_2030"`
	TotalRent            float64 `json:"total_rent"`
}

// UnitDetail is the baseline compliance classification of one unit.
type UnitDetail struct {
	UnitID        string  `json:"unit_id"`
	Floor         string  `json:"floor,omitempty"`
	SizeSqFt      float64 `json:"size_sqft,omitempty"`
	Rating        Rating  `json:"rating"`
	AnnualRent    float64 `json:"annual_rent"`
	Compliant2027 bool    `json:"compliant_2027"`
	Compliant2030 bool    `json:"compliant_2030"`
	Action        string  `json:"action"`
}

// DistributionBucket counts units in one EPC band.
type DistributionBucket struct {
	Rating     Rating  `json:"rating"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color"`
}

// ClassifyUnit reports the baseline compliance of a unit. Unknown ratings
// fail both thresholds, same as the rent protection at-risk rule.
func ClassifyUnit(unit Unit) UnitDetail {
	rating := unit.Rating.Normalize()
	detail := UnitDetail{
		UnitID:        unit.ID,
		Floor:         unit.Floor,
		SizeSqFt:      unit.SizeSqFt,
		Rating:        rating,
		AnnualRent:    unit.AnnualRent,
		Compliant2027: !rating.FailsMEES2027(),
		Compliant2030: !rating.FailsMEES2030(),
	}
	switch {
	case !detail.Compliant2027:
		detail.Action = ActionUpgradeToC
	case !detail.Compliant2030:
		detail.Action = ActionUpgradeToB
	default:
		detail.Action = ActionCompliant
	}
	return detail
}

// ClassifyUnits classifies every unit, preserving input order.
func ClassifyUnits(units []Unit) []UnitDetail {
	details := make([]UnitDetail, 0, len(units))
	for _, unit := range units {
		details = append(details, ClassifyUnit(unit))
	}
	return details
}

// CalculateMEESSummary counts units and rent failing each threshold.
func CalculateMEESSummary(units []Unit) (Summary, error) {
	if err := validateUnits(units); err != nil {
		return Summary{}, err
	}
	summary := Summary{TotalUnits: len(units)}
	for _, unit := range units {
		rating := unit.Rating.Normalize()
		summary.TotalRent += unit.AnnualRent
		if rating.FailsMEES2027() {
			summary.UnitsAtRisk2027++
			summary.RentAtRisk2027 += unit.AnnualRent
		}
		if rating.FailsMEES2030() {
			summary.UnitsAtRisk2030++
			summary.RentAtRisk2030 += unit.AnnualRent
		}
	}
	summary.PercentageAtRisk2027 = percentage(summary.UnitsAtRisk2027, summary.TotalUnits)
	summary.PercentageAtRisk2030 = percentage(summary.UnitsAtRisk2030, summary.TotalUnits)
	return summary, nil
}

// CalculateEPCDistribution buckets units into the seven lettered bands.
// Unknown ratings are not bucketed; percentages use the full unit count.
func CalculateEPCDistribution(units []Unit) []DistributionBucket {
	counts := make(map[Rating]int, len(LetterRatings))
	for _, unit := range units {
		counts[unit.Rating.Normalize()]++
	}
	buckets := make([]DistributionBucket, 0, len(LetterRatings))
	for _, rating := range LetterRatings {
		buckets = append(buckets, DistributionBucket{
			Rating:     rating,
			Count:      counts[rating],
			Percentage: percentage(counts[rating], len(units)),
			Color:      rating.Color(),
		})
	}
	return buckets
}

func percentage(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
