package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	mees "esg-reporting/internal/mees/domain"
)

// BuildingRepository is an in-memory store of buildings, units and retrofit scenarios.
type BuildingRepository struct {
	mu        sync.RWMutex
	buildings map[string]mees.Building
	units     map[string][]mees.Unit
	scenarios map[string][]mees.RetrofitScenario
}

// NewBuildingRepository constructs a repository.
func NewBuildingRepository() *BuildingRepository {
	return &BuildingRepository{
		buildings: make(map[string]mees.Building),
		units:     make(map[string][]mees.Unit),
		scenarios: make(map[string][]mees.RetrofitScenario),
	}
}

// PutBuilding stores a building with its units, replacing any previous units.
func (r *BuildingRepository) PutBuilding(building mees.Building, units []mees.Unit) {
	copied := make([]mees.Unit, len(units))
	for i, unit := range units {
		unit.BuildingID = building.ID
		copied[i] = unit
	}
	r.mu.Lock()
	r.buildings[building.ID] = building
	r.units[building.ID] = copied
	r.mu.Unlock()
}

// PutScenarios stores the retrofit scenarios of a building.
func (r *BuildingRepository) PutScenarios(buildingID string, scenarios []mees.RetrofitScenario) {
	copied := append([]mees.RetrofitScenario(nil), scenarios...)
	r.mu.Lock()
	r.scenarios[buildingID] = copied
	r.mu.Unlock()
}

// GetBuilding loads a building. Missing buildings return nil, nil.
func (r *BuildingRepository) GetBuilding(ctx context.Context, id string) (*mees.Building, error) {
	_ = ctx
	if id == "" {
		return nil, mees.ErrEmptyBuildingID
	}
	r.mu.RLock()
	building, ok := r.buildings[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return &building, nil
}

// ListBuildings lists a tenant's buildings ordered by name.
func (r *BuildingRepository) ListBuildings(ctx context.Context, tenantID string) ([]mees.Building, error) {
	_ = ctx
	r.mu.RLock()
	var result []mees.Building
	for _, building := range r.buildings {
		if building.TenantID == tenantID {
			result = append(result, building)
		}
	}
	r.mu.RUnlock()
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name == result[j].Name {
			return result[i].ID < result[j].ID
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// ListUnits returns a copy of a building's units in insertion order.
func (r *BuildingRepository) ListUnits(ctx context.Context, buildingID string) ([]mees.Unit, error) {
	_ = ctx
	if buildingID == "" {
		return nil, mees.ErrEmptyBuildingID
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]mees.Unit(nil), r.units[buildingID]...), nil
}

// ListScenarios returns a copy of a building's retrofit scenarios.
func (r *BuildingRepository) ListScenarios(ctx context.Context, buildingID string) ([]mees.RetrofitScenario, error) {
	_ = ctx
	if buildingID == "" {
		return nil, mees.ErrEmptyBuildingID
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]mees.RetrofitScenario(nil), r.scenarios[buildingID]...), nil
}

// ReportRepository is an in-memory report store.
type ReportRepository struct {
	mu      sync.RWMutex
	reports map[string]mees.Report
}

// NewReportRepository constructs a repository.
func NewReportRepository() *ReportRepository {
	return &ReportRepository{reports: make(map[string]mees.Report)}
}

// FindLatestActive returns the highest draft/frozen version.
func (r *ReportRepository) FindLatestActive(ctx context.Context, tenantID, buildingID string, scenario mees.Scenario) (*mees.Report, error) {
	list, err := r.List(ctx, tenantID, buildingID, scenario)
	if err != nil {
		return nil, err
	}
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Active() {
			report := list[i]
			return &report, nil
		}
	}
	return nil, nil
}

// NextVersion returns one above the highest stored version.
func (r *ReportRepository) NextVersion(ctx context.Context, tenantID, buildingID string, scenario mees.Scenario) (int, error) {
	list, err := r.List(ctx, tenantID, buildingID, scenario)
	if err != nil {
		return 0, err
	}
	version := 1
	for _, report := range list {
		if report.Version >= version {
			version = report.Version + 1
		}
	}
	return version, nil
}

// Create stores a report.
func (r *ReportRepository) Create(ctx context.Context, report *mees.Report) error {
	_ = ctx
	if report == nil {
		return mees.ErrNilReport
	}
	r.mu.Lock()
	r.reports[report.ID] = *report
	r.mu.Unlock()
	return nil
}

// GetByID returns a copy of a report. Missing reports return nil, nil.
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*mees.Report, error) {
	_ = ctx
	r.mu.RLock()
	report, ok := r.reports[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return &report, nil
}

// List returns reports ordered by scenario and version.
func (r *ReportRepository) List(ctx context.Context, tenantID, buildingID string, scenario mees.Scenario) ([]mees.Report, error) {
	_ = ctx
	r.mu.RLock()
	var result []mees.Report
	for _, report := range r.reports {
		if report.TenantID != tenantID || report.BuildingID != buildingID {
			continue
		}
		if scenario != "" && report.Scenario != scenario {
			continue
		}
		result = append(result, report)
	}
	r.mu.RUnlock()
	sort.Slice(result, func(i, j int) bool {
		if result[i].Scenario == result[j].Scenario {
			return result[i].Version < result[j].Version
		}
		return result[i].Scenario < result[j].Scenario
	})
	return result, nil
}

// MarkFrozen freezes a report.
func (r *ReportRepository) MarkFrozen(ctx context.Context, id, hash string, at time.Time) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.reports[id]
	if !ok {
		return mees.ErrReportNotFound
	}
	report.Status = mees.ReportStatusFrozen
	report.SnapshotHash = hash
	report.FrozenAt = &at
	report.UpdatedAt = at
	r.reports[id] = report
	return nil
}

// MarkVoided voids a report.
func (r *ReportRepository) MarkVoided(ctx context.Context, id, reason string, at time.Time) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.reports[id]
	if !ok {
		return mees.ErrReportNotFound
	}
	report.Status = mees.ReportStatusVoided
	report.VoidReason = reason
	report.VoidedAt = &at
	report.UpdatedAt = at
	r.reports[id] = report
	return nil
}
