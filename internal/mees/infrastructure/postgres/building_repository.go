package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	mees "esg-reporting/internal/mees/domain"
)

const (
	defaultBuildingsTable = "buildings"
	defaultUnitsTable     = "units"
)

// DBTX is the subset of *sql.DB and *sql.Tx used by the repositories.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// BuildingRepository reads buildings and their units.
type BuildingRepository struct {
	db             DBTX
	buildingsTable string
	unitsTable     string
}

// BuildingOption configures the repository.
type BuildingOption func(*BuildingRepository)

// WithUnitsTable overrides the default units table name.
func WithUnitsTable(table string) BuildingOption {
	return func(repo *BuildingRepository) {
		if table != "" {
			repo.unitsTable = table
		}
	}
}

// NewBuildingRepository constructs a repository.
func NewBuildingRepository(db DBTX, opts ...BuildingOption) *BuildingRepository {
	repo := &BuildingRepository{db: db, buildingsTable: defaultBuildingsTable, unitsTable: defaultUnitsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// GetBuilding loads a building by id. Missing buildings return nil, nil.
func (r *BuildingRepository) GetBuilding(ctx context.Context, id string) (*mees.Building, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("building repo: nil db")
	}
	if id == "" {
		return nil, mees.ErrEmptyBuildingID
	}
	query := fmt.Sprintf(`
SELECT id, tenant_id, name, address, created_at, updated_at
FROM %s
WHERE id = $1
LIMIT 1`, r.buildingsTable)

	var building mees.Building
	var address sql.NullString
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&building.ID,
		&building.TenantID,
		&building.Name,
		&address,
		&building.CreatedAt,
		&building.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	building.Address = address.String
	building.CreatedAt = building.CreatedAt.UTC()
	building.UpdatedAt = building.UpdatedAt.UTC()
	return &building, nil
}

// ListBuildings lists a tenant's buildings ordered by name.
func (r *BuildingRepository) ListBuildings(ctx context.Context, tenantID string) ([]mees.Building, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("building repo: nil db")
	}
	query := fmt.Sprintf(`
SELECT id, tenant_id, name, address, created_at, updated_at
FROM %s
WHERE tenant_id = $1
ORDER BY name ASC, id ASC`, r.buildingsTable)
	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []mees.Building
	for rows.Next() {
		var building mees.Building
		var address sql.NullString
		if err := rows.Scan(&building.ID, &building.TenantID, &building.Name, &address, &building.CreatedAt, &building.UpdatedAt); err != nil {
			return nil, err
		}
		building.Address = address.String
		building.CreatedAt = building.CreatedAt.UTC()
		building.UpdatedAt = building.UpdatedAt.UTC()
		result = append(result, building)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListUnits loads the units of a building. A NULL rent is a data error and
// is surfaced; a NULL or unrecognized rating becomes Unknown.
func (r *BuildingRepository) ListUnits(ctx context.Context, buildingID string) ([]mees.Unit, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("building repo: nil db")
	}
	if buildingID == "" {
		return nil, mees.ErrEmptyBuildingID
	}
	query := fmt.Sprintf(`
SELECT id, building_id, floor, size_sqft, epc_rating, annual_rent
FROM %s
WHERE building_id = $1
ORDER BY id ASC`, r.unitsTable)
	rows, err := r.db.QueryContext(ctx, query, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []mees.Unit
	for rows.Next() {
		var unit mees.Unit
		var floor sql.NullString
		var size sql.NullFloat64
		var rating sql.NullString
		var rent sql.NullFloat64
		if err := rows.Scan(&unit.ID, &unit.BuildingID, &floor, &size, &rating, &rent); err != nil {
			return nil, err
		}
		if !rent.Valid {
			return nil, fmt.Errorf("%w: unit %q has no rent", mees.ErrMalformedUnit, unit.ID)
		}
		unit.Floor = floor.String
		unit.SizeSqFt = size.Float64
		unit.Rating = mees.ParseRating(rating.String)
		unit.AnnualRent = rent.Float64
		result = append(result, unit)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
