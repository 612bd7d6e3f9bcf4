package mees

import (
	"context"
	"time"
)

// BuildingReader loads buildings.
type BuildingReader interface {
	GetBuilding(ctx context.Context, id string) (*Building, error)
	ListBuildings(ctx context.Context, tenantID string) ([]Building, error)
}

// UnitReader loads the unit list of a building in a stable order.
type UnitReader interface {
	ListUnits(ctx context.Context, buildingID string) ([]Unit, error)
}

// ScenarioReader loads the retrofit scenarios stored for a building.
type ScenarioReader interface {
	ListScenarios(ctx context.Context, buildingID string) ([]RetrofitScenario, error)
}

// ReportRepository persists report snapshots.
type ReportRepository interface {
	FindLatestActive(ctx context.Context, tenantID, buildingID string, scenario Scenario) (*Report, error)
	NextVersion(ctx context.Context, tenantID, buildingID string, scenario Scenario) (int, error)
	Create(ctx context.Context, report *Report) error
	GetByID(ctx context.Context, id string) (*Report, error)
	List(ctx context.Context, tenantID, buildingID string, scenario Scenario) ([]Report, error)
	MarkFrozen(ctx context.Context, id, hash string, at time.Time) error
	MarkVoided(ctx context.Context, id, reason string, at time.Time) error
}
