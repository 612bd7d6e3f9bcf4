package mees

import (
	"fmt"
	"math"
	"time"
)

// Building is a let asset owned by a tenant.
type Building struct {
	ID        string
	TenantID  string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Unit is a lettable unit within a building. Floor and size are descriptive.
type Unit struct {
	ID         string
	BuildingID string
	Floor      string
	SizeSqFt   float64
	Rating     Rating
	AnnualRent float64
}

// Validate checks that the unit can be assessed. Rating problems are not
// errors; they fall back to Unknown. The sign of the rent is the caller's
// concern and is passed through as given.
func (u Unit) Validate() error {
	if math.IsNaN(u.AnnualRent) || math.IsInf(u.AnnualRent, 0) {
		return fmt.Errorf("%w: unit %q has non-numeric rent", ErrMalformedUnit, u.ID)
	}
	return nil
}

func validateUnits(units []Unit) error {
	for _, unit := range units {
		if err := unit.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// RentParams configures the ESG rent premium for premium EPC bands.
type RentParams struct {
	EPCAUpliftPercent float64 `json:"epc_a_uplift_percent" yaml:"epc_a_uplift_percent"`
	EPCBUpliftPercent float64 `json:"epc_b_uplift_percent" yaml:"epc_b_uplift_percent"`
}

// DefaultRentParams returns the default uplift of 8% for A and 5% for B.
func DefaultRentParams() RentParams {
	return RentParams{EPCAUpliftPercent: 8, EPCBUpliftPercent: 5}
}

// Validate rejects negative or non-finite percentages. Upper bounds are the
// caller's concern.
func (p RentParams) Validate() error {
	for _, value := range []float64{p.EPCAUpliftPercent, p.EPCBUpliftPercent} {
		if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
			return fmt.Errorf("%w: %+v", ErrInvalidRentParams, p)
		}
	}
	return nil
}

func (p RentParams) upliftPercent(post Rating) float64 {
	switch post {
	case RatingA:
		return p.EPCAUpliftPercent
	case RatingB:
		return p.EPCBUpliftPercent
	default:
		return 0
	}
}
