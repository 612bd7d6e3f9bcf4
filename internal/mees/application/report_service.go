package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"esg-reporting/internal/auth"
	mees "esg-reporting/internal/mees/domain"
	"esg-reporting/internal/observability/metrics"
)

const (
	opGenerate = "generate"
	opFreeze   = "freeze"
	opVoid     = "void"
)

// ReportService handles MEES report snapshot workflows.
type ReportService struct {
	buildings mees.BuildingReader
	units     mees.UnitReader
	reports   mees.ReportRepository
	config    Config
	tenantID  string
	currency  string
}

// NewReportService constructs a service.
func NewReportService(buildings mees.BuildingReader, units mees.UnitReader, reports mees.ReportRepository, cfg Config, tenantID, currency string) (*ReportService, error) {
	if buildings == nil || units == nil {
		return nil, errors.New("report service: nil building reader")
	}
	if reports == nil {
		return nil, errors.New("report service: nil repo")
	}
	if tenantID == "" {
		return nil, errors.New("report service: empty tenant id")
	}
	if currency == "" {
		currency = "GBP"
	}
	return &ReportService{
		buildings: buildings,
		units:     units,
		reports:   reports,
		config:    cfg,
		tenantID:  tenantID,
		currency:  currency,
	}, nil
}

// Generate creates a report draft, or returns the latest active report
// unless regenerate is set.
func (s *ReportService) Generate(ctx context.Context, buildingID string, scenario mees.Scenario, regenerate bool) (*mees.Report, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveReportOperation(opGenerate, result, time.Since(start))
	}()

	if err := scenario.Validate(); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	tenantID := s.tenant(ctx)
	building, err := loadBuilding(ctx, s.buildings, tenantID, buildingID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}

	if !regenerate {
		existing, err := s.reports.FindLatestActive(ctx, tenantID, building.ID, scenario)
		if err != nil {
			result = metrics.ResultError
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	units, err := s.units.ListUnits(ctx, building.ID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	summary, err := mees.CalculateMEESSummary(units)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	rent, err := mees.CalculateRentProtected(units, scenario, s.config.ParamsForBuilding(building.ID))
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	version, err := s.reports.NextVersion(ctx, tenantID, building.ID, scenario)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}

	now := time.Now().UTC()
	report := &mees.Report{
		ID:         "rpt-" + uuid.NewString(),
		TenantID:   tenantID,
		BuildingID: building.ID,
		Scenario:   scenario,
		Status:     mees.ReportStatusDraft,
		Version:    version,
		Currency:   s.currency,
		Summary:    summary,
		Rent:       rent,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return report, nil
}

// Freeze freezes a report and computes its snapshot hash.
func (s *ReportService) Freeze(ctx context.Context, id string) (*mees.Report, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveReportOperation(opFreeze, result, time.Since(start))
	}()

	report, err := s.Get(ctx, id)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if report.Status == mees.ReportStatusFrozen {
		return report, nil
	}
	if report.Status == mees.ReportStatusVoided {
		result = metrics.ResultError
		return nil, mees.ErrReportVoided
	}

	hash, err := computeSnapshotHash(report)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	now := time.Now().UTC()
	if err := s.reports.MarkFrozen(ctx, id, hash, now); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	report.Status = mees.ReportStatusFrozen
	report.SnapshotHash = hash
	report.FrozenAt = &now
	report.UpdatedAt = now
	return report, nil
}

// Void voids a report.
func (s *ReportService) Void(ctx context.Context, id, reason string) (*mees.Report, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveReportOperation(opVoid, result, time.Since(start))
	}()

	report, err := s.Get(ctx, id)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if report.Status == mees.ReportStatusVoided {
		return report, nil
	}
	now := time.Now().UTC()
	if err := s.reports.MarkVoided(ctx, id, reason, now); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	report.Status = mees.ReportStatusVoided
	report.VoidReason = reason
	report.VoidedAt = &now
	report.UpdatedAt = now
	return report, nil
}

// Get returns a report owned by the caller's tenant.
func (s *ReportService) Get(ctx context.Context, id string) (*mees.Report, error) {
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, mees.ErrReportNotFound
	}
	if tenantID := s.tenant(ctx); tenantID != "" && report.TenantID != tenantID {
		return nil, auth.ErrTenantMismatch
	}
	return report, nil
}

// List returns reports of a building ordered by scenario and version. An
// empty scenario lists every scenario.
func (s *ReportService) List(ctx context.Context, buildingID string, scenario mees.Scenario) ([]mees.Report, error) {
	if buildingID == "" {
		return nil, mees.ErrEmptyBuildingID
	}
	if scenario != "" {
		if err := scenario.Validate(); err != nil {
			return nil, err
		}
	}
	return s.reports.List(ctx, s.tenant(ctx), buildingID, scenario)
}

func (s *ReportService) tenant(ctx context.Context) string {
	if tenantID := auth.TenantIDFromContext(ctx); tenantID != "" {
		return tenantID
	}
	return s.tenantID
}

// computeSnapshotHash hashes the report content, not its lifecycle fields.
func computeSnapshotHash(report *mees.Report) (string, error) {
	if report == nil {
		return "", mees.ErrNilReport
	}
	payload := struct {
		ID         string                   `json:"id"`
		TenantID   string                   `json:"tenant_id"`
		BuildingID string                   `json:"building_id"`
		Scenario   mees.Scenario            `json:"scenario"`
		Version    int                      `json:"version"`
		Currency   string                   `json:"currency"`
		Summary    mees.Summary             `json:"summary"`
		Rent       mees.RentProtectedResult `json:"rent"`
	}{
		ID:         report.ID,
		TenantID:   report.TenantID,
		BuildingID: report.BuildingID,
		Scenario:   report.Scenario,
		Version:    report.Version,
		Currency:   report.Currency,
		Summary:    report.Summary,
		Rent:       report.Rent,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}
