package mees

import "time"

const (
	ReportStatusDraft  = "draft"
	ReportStatusFrozen = "frozen"
	ReportStatusVoided = "voided"
)

// Report is a versioned snapshot of a building's MEES position under one
// scenario. Frozen reports carry a hash of their content.
type Report struct {
	ID           string              `json:"id"`
	TenantID     string              `json:"tenant_id"`
	BuildingID   string              `json:"building_id"`
	Scenario     Scenario            `json:"scenario"`
	Status       string              `json:"status"`
	Version      int                 `json:"version"`
	Currency     string              `json:"currency"`
	Summary      Summary             `json:"summary"`
	Rent         RentProtectedResult `json:"rent"`
	SnapshotHash string              `json:"snapshot_hash,omitempty"`
	VoidReason   string              `json:"void_reason,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	FrozenAt     *time.Time          `json:"frozen_at,omitempty"`
	VoidedAt     *time.Time          `json:"voided_at,omitempty"`
}

// Active reports whether the report is draft or frozen.
func (r *Report) Active() bool {
	return r != nil && (r.Status == ReportStatusDraft || r.Status == ReportStatusFrozen)
}
