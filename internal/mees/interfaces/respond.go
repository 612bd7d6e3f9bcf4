package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"

	"esg-reporting/internal/auth"
	mees "esg-reporting/internal/mees/domain"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func ensureBuildingTenant(r *http.Request, checker auth.BuildingTenantChecker, buildingID string) error {
	tenantID := auth.TenantIDFromContext(r.Context())
	if checker == nil || tenantID == "" || buildingID == "" {
		return nil
	}
	return checker.EnsureBuildingTenant(r.Context(), tenantID, buildingID)
}

func respondTenantError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, auth.ErrTenantMismatch) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if errors.Is(err, auth.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	http.Error(w, "tenant check failed", http.StatusInternalServerError)
}

func respondServiceError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, auth.ErrTenantMismatch):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, auth.ErrNotFound),
		errors.Is(err, mees.ErrBuildingNotFound),
		errors.Is(err, mees.ErrReportNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, mees.ErrReportVoided):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, mees.ErrInvalidScenario),
		errors.Is(err, mees.ErrMalformedUnit),
		errors.Is(err, mees.ErrInvalidRentParams),
		errors.Is(err, mees.ErrEmptyBuildingID):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
