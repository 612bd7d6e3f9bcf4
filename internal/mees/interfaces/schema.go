package interfaces

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	mees "esg-reporting/internal/mees/domain"
)

// Upper bounds offered to dashboard users for the ESG uplift.
const (
	maxEPCAUpliftPercent = 20
	maxEPCBUpliftPercent = 15
)

func scenarioEnum() []any {
	values := make([]any, 0, len(mees.Scenarios))
	for _, scenario := range mees.Scenarios {
		values = append(values, string(scenario))
	}
	return values
}

func paramsProperties() map[string]any {
	return map[string]any{
		"scenario": map[string]any{"type": "string", "enum": scenarioEnum()},
		"epc_a_uplift_percent": map[string]any{
			"type": "number", "minimum": 0, "maximum": maxEPCAUpliftPercent,
		},
		"epc_b_uplift_percent": map[string]any{
			"type": "number", "minimum": 0, "maximum": maxEPCBUpliftPercent,
		},
	}
}

// rentQuerySchema validates the query of the building rent protection route.
func rentQuerySchema() map[string]any {
	return map[string]any{
		"type":       "object",
		"required":   []any{"scenario"},
		"properties": paramsProperties(),
	}
}

// calculateSchema validates an ad-hoc rent protection request.
func calculateSchema() map[string]any {
	properties := paramsProperties()
	properties["units"] = map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":     "object",
			"required": []any{"id", "annual_rent"},
			"properties": map[string]any{
				"id":          map[string]any{"type": "string"},
				"floor":       map[string]any{"type": []any{"string", "null"}},
				"size_sqft":   map[string]any{"type": []any{"number", "null"}, "minimum": 0},
				"epc_rating":  map[string]any{"type": []any{"string", "null"}},
				"annual_rent": map[string]any{"type": "number", "minimum": 0},
			},
		},
	}
	return map[string]any{
		"type":       "object",
		"required":   []any{"scenario", "units"},
		"properties": properties,
	}
}

func validateDocument(schema map[string]any, document gojsonschema.JSONLoader) error {
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), document)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("invalid request: %s", strings.Join(errs, "; "))
	}
	return nil
}
