package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	mees "esg-reporting/internal/mees/domain"
)

const reportColumns = `id, tenant_id, building_id, scenario, status, version, currency,
	summary, rent, snapshot_hash, void_reason, created_at, updated_at, frozen_at, voided_at`

// ReportRepository persists MEES report snapshots.
type ReportRepository struct {
	db *sql.DB
}

// NewReportRepository constructs a repository.
func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// FindLatestActive returns the latest draft/frozen report.
func (r *ReportRepository) FindLatestActive(ctx context.Context, tenantID, buildingID string, scenario mees.Scenario) (*mees.Report, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("report repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT `+reportColumns+`
FROM mees_reports
WHERE tenant_id = $1 AND building_id = $2 AND scenario = $3
	AND status IN ('draft','frozen')
ORDER BY version DESC
LIMIT 1`, tenantID, buildingID, string(scenario))
	return scanReport(row)
}

// NextVersion returns the next version for building+scenario.
func (r *ReportRepository) NextVersion(ctx context.Context, tenantID, buildingID string, scenario mees.Scenario) (int, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("report repo: nil db")
	}
	var maxVersion sql.NullInt64
	err := r.db.QueryRowContext(ctx, `
SELECT MAX(version)
FROM mees_reports
WHERE tenant_id = $1 AND building_id = $2 AND scenario = $3`, tenantID, buildingID, string(scenario)).Scan(&maxVersion)
	if err != nil {
		return 0, err
	}
	if !maxVersion.Valid {
		return 1, nil
	}
	return int(maxVersion.Int64) + 1, nil
}

// Create inserts a report.
func (r *ReportRepository) Create(ctx context.Context, report *mees.Report) error {
	if r == nil || r.db == nil {
		return errors.New("report repo: nil db")
	}
	if report == nil {
		return mees.ErrNilReport
	}
	summary, err := json.Marshal(report.Summary)
	if err != nil {
		return err
	}
	rent, err := json.Marshal(report.Rent)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO mees_reports (
	id, tenant_id, building_id, scenario, status, version, currency,
	summary, rent, snapshot_hash, void_reason, created_at, updated_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13
)`,
		report.ID, report.TenantID, report.BuildingID, string(report.Scenario), report.Status, report.Version, report.Currency,
		summary, rent, report.SnapshotHash, report.VoidReason, report.CreatedAt, report.UpdatedAt,
	)
	return err
}

// GetByID fetches a report. Missing reports return nil, nil.
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*mees.Report, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("report repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT `+reportColumns+`
FROM mees_reports
WHERE id = $1
LIMIT 1`, id)
	return scanReport(row)
}

// List returns every version for a building, optionally for one scenario.
func (r *ReportRepository) List(ctx context.Context, tenantID, buildingID string, scenario mees.Scenario) ([]mees.Report, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("report repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+reportColumns+`
FROM mees_reports
WHERE tenant_id = $1 AND building_id = $2 AND ($3 = '' OR scenario = $3)
ORDER BY scenario ASC, version ASC`, tenantID, buildingID, string(scenario))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []mees.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		if report != nil {
			result = append(result, *report)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkFrozen marks a report as frozen.
func (r *ReportRepository) MarkFrozen(ctx context.Context, id, hash string, frozenAt time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("report repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
UPDATE mees_reports
SET status = $1, snapshot_hash = $2, frozen_at = $3, updated_at = $3
WHERE id = $4`, mees.ReportStatusFrozen, hash, frozenAt, id)
	return err
}

// MarkVoided marks a report as voided.
func (r *ReportRepository) MarkVoided(ctx context.Context, id, reason string, voidedAt time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("report repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
UPDATE mees_reports
SET status = $1, void_reason = $2, voided_at = $3, updated_at = $3
WHERE id = $4`, mees.ReportStatusVoided, reason, voidedAt, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*mees.Report, error) {
	var report mees.Report
	var scenario string
	var summary []byte
	var rent []byte
	var snapshot sql.NullString
	var voidReason sql.NullString
	var frozenAt sql.NullTime
	var voidedAt sql.NullTime
	err := row.Scan(
		&report.ID,
		&report.TenantID,
		&report.BuildingID,
		&scenario,
		&report.Status,
		&report.Version,
		&report.Currency,
		&summary,
		&rent,
		&snapshot,
		&voidReason,
		&report.CreatedAt,
		&report.UpdatedAt,
		&frozenAt,
		&voidedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	report.Scenario = mees.Scenario(scenario)
	if len(summary) > 0 {
		if err := json.Unmarshal(summary, &report.Summary); err != nil {
			return nil, err
		}
	}
	if len(rent) > 0 {
		if err := json.Unmarshal(rent, &report.Rent); err != nil {
			return nil, err
		}
	}
	report.SnapshotHash = snapshot.String
	report.VoidReason = voidReason.String
	if frozenAt.Valid {
		frozen := frozenAt.Time.UTC()
		report.FrozenAt = &frozen
	}
	if voidedAt.Valid {
		voided := voidedAt.Time.UTC()
		report.VoidedAt = &voided
	}
	report.CreatedAt = report.CreatedAt.UTC()
	report.UpdatedAt = report.UpdatedAt.UTC()
	return &report, nil
}
