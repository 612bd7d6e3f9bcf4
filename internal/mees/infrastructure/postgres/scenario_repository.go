package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	mees "esg-reporting/internal/mees/domain"
)

// ScenarioRepository reads costed retrofit scenarios. Each row carries an
// explicit scenario_tag; names are display text only.
type ScenarioRepository struct {
	db DBTX
}

// NewScenarioRepository constructs a repository.
func NewScenarioRepository(db DBTX) *ScenarioRepository {
	return &ScenarioRepository{db: db}
}

// ListScenarios loads the retrofit scenarios of a building.
func (r *ScenarioRepository) ListScenarios(ctx context.Context, buildingID string) ([]mees.RetrofitScenario, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("scenario repo: nil db")
	}
	if buildingID == "" {
		return nil, mees.ErrEmptyBuildingID
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, building_id, name, scenario_tag, capex_total, carbon_reduction_pct
FROM retrofit_scenarios
WHERE building_id = $1
ORDER BY sort_order ASC, id ASC`, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []mees.RetrofitScenario
	for rows.Next() {
		var scenario mees.RetrofitScenario
		var tag string
		var carbon sql.NullFloat64
		if err := rows.Scan(&scenario.ID, &scenario.BuildingID, &scenario.Name, &tag, &scenario.CapexTotal, &carbon); err != nil {
			return nil, err
		}
		parsed, err := mees.ParseScenario(tag)
		if err != nil {
			return nil, fmt.Errorf("retrofit scenario %q: %w", scenario.ID, err)
		}
		scenario.Tag = parsed
		scenario.CarbonReductionPct = carbon.Float64
		result = append(result, scenario)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
