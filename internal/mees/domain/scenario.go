package mees

import (
	"fmt"
	"strings"
)

// Scenario identifies a retrofit pathway.
type Scenario string

const (
	ScenarioBAU         Scenario = "bau"
	ScenarioEPCC2027    Scenario = "epc_c_2027"
	ScenarioNetZero2050 Scenario = "net_zero_2050"
)

// Scenarios lists every supported scenario.
var Scenarios = []Scenario{ScenarioBAU, ScenarioEPCC2027, ScenarioNetZero2050}

// ParseScenario validates a scenario tag. There is no default.
func ParseScenario(value string) (Scenario, error) {
	scenario := Scenario(strings.TrimSpace(value))
	if err := scenario.Validate(); err != nil {
		return "", err
	}
	return scenario, nil
}

// Validate returns ErrInvalidScenario for unknown tags.
func (s Scenario) Validate() error {
	switch s {
	case ScenarioBAU, ScenarioEPCC2027, ScenarioNetZero2050:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidScenario, string(s))
	}
}

// Retrofits reports whether the scenario applies any retrofit.
func (s Scenario) Retrofits() bool {
	return s == ScenarioEPCC2027 || s == ScenarioNetZero2050
}

// retrofit returns the post-retrofit rating and the explanation for a unit.
func (s Scenario) retrofit(current Rating) (Rating, string) {
	current = current.Normalize()
	switch s {
	case ScenarioEPCC2027:
		switch current {
		case RatingC:
			return current, "already EPC C compliant"
		case RatingA, RatingB:
			return current, "already above EPC C standard"
		default:
			return RatingC, "upgraded to EPC C for 2027 compliance"
		}
	case ScenarioNetZero2050:
		switch current {
		case RatingB:
			return current, "already EPC B compliant"
		case RatingA:
			return current, "already above EPC B standard"
		default:
			return RatingB, "upgraded to EPC B for 2030 compliance"
		}
	default:
		return current, "no retrofit — business as usual"
	}
}
