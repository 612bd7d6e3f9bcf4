package application

import (
	"context"
	"errors"
	"time"

	"esg-reporting/internal/auth"
	mees "esg-reporting/internal/mees/domain"
	"esg-reporting/internal/observability/metrics"
)

const (
	kindSummary        = "summary"
	kindDistribution   = "distribution"
	kindUnits          = "units"
	kindRentProtection = "rent_protection"
	kindCompare        = "compare"
	kindPortfolio      = "portfolio"
	kindCalculate      = "calculate"
)

// AssessmentService answers MEES compliance and rent protection questions
// for stored buildings. Results are recomputed on every call.
type AssessmentService struct {
	buildings mees.BuildingReader
	units     mees.UnitReader
	scenarios mees.ScenarioReader
	config    Config
	tenantID  string
}

// NewAssessmentService constructs a service. scenarios may be nil, in which
// case comparisons use the built-in scenarios only.
func NewAssessmentService(buildings mees.BuildingReader, units mees.UnitReader, scenarios mees.ScenarioReader, cfg Config, tenantID string) (*AssessmentService, error) {
	if buildings == nil {
		return nil, errors.New("assessment service: nil building reader")
	}
	if units == nil {
		return nil, errors.New("assessment service: nil unit reader")
	}
	if tenantID == "" {
		return nil, errors.New("assessment service: empty tenant id")
	}
	return &AssessmentService{
		buildings: buildings,
		units:     units,
		scenarios: scenarios,
		config:    cfg,
		tenantID:  tenantID,
	}, nil
}

// Summary returns the MEES summary of a building.
func (s *AssessmentService) Summary(ctx context.Context, buildingID string) (mees.Summary, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	var count int
	defer func() {
		metrics.ObserveCalculation(kindSummary, result, count, time.Since(start))
	}()

	_, units, err := s.loadUnits(ctx, buildingID)
	if err != nil {
		result = metrics.ResultError
		return mees.Summary{}, err
	}
	count = len(units)
	summary, err := mees.CalculateMEESSummary(units)
	if err != nil {
		result = metrics.ResultError
		return mees.Summary{}, err
	}
	return summary, nil
}

// Distribution returns the EPC band counts of a building.
func (s *AssessmentService) Distribution(ctx context.Context, buildingID string) ([]mees.DistributionBucket, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	var count int
	defer func() {
		metrics.ObserveCalculation(kindDistribution, result, count, time.Since(start))
	}()

	_, units, err := s.loadUnits(ctx, buildingID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	count = len(units)
	return mees.CalculateEPCDistribution(units), nil
}

// Units returns the per-unit compliance classification of a building.
func (s *AssessmentService) Units(ctx context.Context, buildingID string) ([]mees.UnitDetail, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	var count int
	defer func() {
		metrics.ObserveCalculation(kindUnits, result, count, time.Since(start))
	}()

	_, units, err := s.loadUnits(ctx, buildingID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	count = len(units)
	return mees.ClassifyUnits(units), nil
}

// RentProtection runs the rent protection calculator for a building. A nil
// params uses the configured params for the building.
func (s *AssessmentService) RentProtection(ctx context.Context, buildingID string, scenario mees.Scenario, params *mees.RentParams) (mees.RentProtectedResult, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	var count int
	defer func() {
		metrics.ObserveCalculation(kindRentProtection, result, count, time.Since(start))
	}()

	if err := scenario.Validate(); err != nil {
		result = metrics.ResultError
		return mees.RentProtectedResult{}, err
	}
	_, units, err := s.loadUnits(ctx, buildingID)
	if err != nil {
		result = metrics.ResultError
		return mees.RentProtectedResult{}, err
	}
	count = len(units)
	res, err := mees.CalculateRentProtected(units, scenario, s.resolveParams(buildingID, params))
	if err != nil {
		result = metrics.ResultError
		return mees.RentProtectedResult{}, err
	}
	return res, nil
}

// CompareScenarios evaluates the retrofit scenarios stored for a building.
// Buildings without stored scenarios are compared across the built-in
// scenarios with no capex.
func (s *AssessmentService) CompareScenarios(ctx context.Context, buildingID string, params *mees.RentParams) ([]mees.ScenarioComparison, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	var count int
	defer func() {
		metrics.ObserveCalculation(kindCompare, result, count, time.Since(start))
	}()

	_, units, err := s.loadUnits(ctx, buildingID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	count = len(units)

	var scenarios []mees.RetrofitScenario
	if s.scenarios != nil {
		scenarios, err = s.scenarios.ListScenarios(ctx, buildingID)
		if err != nil {
			result = metrics.ResultError
			return nil, err
		}
	}
	if len(scenarios) == 0 {
		scenarios = builtinScenarios(buildingID)
	}
	rows, err := mees.CompareScenarios(units, scenarios, s.resolveParams(buildingID, params))
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return rows, nil
}

// Portfolio rolls up the MEES summaries of every building of the caller's tenant.
func (s *AssessmentService) Portfolio(ctx context.Context) (mees.PortfolioSummary, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	var count int
	defer func() {
		metrics.ObserveCalculation(kindPortfolio, result, count, time.Since(start))
	}()

	buildings, err := s.buildings.ListBuildings(ctx, s.tenant(ctx))
	if err != nil {
		result = metrics.ResultError
		return mees.PortfolioSummary{}, err
	}
	rows := make([]mees.BuildingSummary, 0, len(buildings))
	for _, building := range buildings {
		units, err := s.units.ListUnits(ctx, building.ID)
		if err != nil {
			result = metrics.ResultError
			return mees.PortfolioSummary{}, err
		}
		count += len(units)
		summary, err := mees.CalculateMEESSummary(units)
		if err != nil {
			result = metrics.ResultError
			return mees.PortfolioSummary{}, err
		}
		rows = append(rows, mees.BuildingSummary{
			BuildingID:   building.ID,
			BuildingName: building.Name,
			Summary:      summary,
		})
	}
	return mees.CalculatePortfolioSummary(rows), nil
}

// Calculate runs the rent protection calculator over an ad-hoc unit list.
// A nil params uses the configured defaults.
func (s *AssessmentService) Calculate(ctx context.Context, units []mees.Unit, scenario mees.Scenario, params *mees.RentParams) (mees.RentProtectedResult, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveCalculation(kindCalculate, result, len(units), time.Since(start))
	}()

	resolved := s.config.Defaults
	if params != nil {
		resolved = *params
	}
	res, err := mees.CalculateRentProtected(units, scenario, resolved)
	if err != nil {
		result = metrics.ResultError
		return mees.RentProtectedResult{}, err
	}
	return res, nil
}

func (s *AssessmentService) loadUnits(ctx context.Context, buildingID string) (*mees.Building, []mees.Unit, error) {
	building, err := loadBuilding(ctx, s.buildings, s.tenant(ctx), buildingID)
	if err != nil {
		return nil, nil, err
	}
	units, err := s.units.ListUnits(ctx, building.ID)
	if err != nil {
		return nil, nil, err
	}
	return building, units, nil
}

func (s *AssessmentService) resolveParams(buildingID string, params *mees.RentParams) mees.RentParams {
	if params != nil {
		return *params
	}
	return s.config.ParamsForBuilding(buildingID)
}

func (s *AssessmentService) tenant(ctx context.Context) string {
	if tenantID := auth.TenantIDFromContext(ctx); tenantID != "" {
		return tenantID
	}
	return s.tenantID
}

func loadBuilding(ctx context.Context, buildings mees.BuildingReader, tenantID, buildingID string) (*mees.Building, error) {
	if buildingID == "" {
		return nil, mees.ErrEmptyBuildingID
	}
	building, err := buildings.GetBuilding(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	if building == nil {
		return nil, mees.ErrBuildingNotFound
	}
	if tenantID != "" && building.TenantID != tenantID {
		return nil, auth.ErrTenantMismatch
	}
	return building, nil
}

func builtinScenarios(buildingID string) []mees.RetrofitScenario {
	names := map[mees.Scenario]string{
		mees.ScenarioBAU:         "Business as usual",
		mees.ScenarioEPCC2027:    "EPC C by 2027",
		mees.ScenarioNetZero2050: "Net zero 2050",
	}
	scenarios := make([]mees.RetrofitScenario, 0, len(mees.Scenarios))
	for _, tag := range mees.Scenarios {
		scenarios = append(scenarios, mees.RetrofitScenario{
			ID:         string(tag),
			BuildingID: buildingID,
			Name:       names[tag],
			Tag:        tag,
		})
	}
	return scenarios
}
