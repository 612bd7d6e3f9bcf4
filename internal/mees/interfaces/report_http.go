package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"esg-reporting/internal/audit"
	"esg-reporting/internal/auth"
	meesapp "esg-reporting/internal/mees/application"
	mees "esg-reporting/internal/mees/domain"
	"esg-reporting/internal/observability/metrics"
)

// ReportHandler handles report APIs.
type ReportHandler struct {
	service         *meesapp.ReportService
	buildingChecker auth.BuildingTenantChecker
	auditLogger     audit.Logger
}

// NewReportHandler constructs a handler.
func NewReportHandler(service *meesapp.ReportService, buildingChecker auth.BuildingTenantChecker, auditLogger audit.Logger) (*ReportHandler, error) {
	if service == nil {
		return nil, errors.New("report handler: nil service")
	}
	return &ReportHandler{service: service, buildingChecker: buildingChecker, auditLogger: auditLogger}, nil
}

// ServeHTTP handles report routes under /api/v1/reports.
func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/api/v1/reports/generate" && r.Method == http.MethodPost {
		h.handleGenerate(w, r)
		return
	}
	if path == "/api/v1/reports" && r.Method == http.MethodGet {
		h.handleList(w, r)
		return
	}
	if strings.HasPrefix(path, "/api/v1/reports/") {
		h.handleByID(w, r, strings.TrimPrefix(path, "/api/v1/reports/"))
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *ReportHandler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BuildingID string `json:"building_id"`
		Scenario   string `json:"scenario"`
		Regenerate bool   `json:"regenerate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := ensureBuildingTenant(r, h.buildingChecker, req.BuildingID); err != nil {
		respondTenantError(w, err)
		return
	}
	scenario, err := mees.ParseScenario(req.Scenario)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	report, err := h.service.Generate(r.Context(), req.BuildingID, scenario, req.Regenerate)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"report_id": report.ID,
		"status":    report.Status,
		"version":   report.Version,
	})
	action := "report.generate"
	if req.Regenerate {
		action = "report.regenerate"
	}
	h.logAudit(r, report, action, map[string]any{
		"scenario":   report.Scenario,
		"regenerate": req.Regenerate,
	})
}

func (h *ReportHandler) handleList(w http.ResponseWriter, r *http.Request) {
	buildingID := r.URL.Query().Get("building_id")
	if err := ensureBuildingTenant(r, h.buildingChecker, buildingID); err != nil {
		respondTenantError(w, err)
		return
	}
	list, err := h.service.List(r.Context(), buildingID, mees.Scenario(r.URL.Query().Get("scenario")))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if list == nil {
		list = []mees.Report{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ReportHandler) handleByID(w http.ResponseWriter, r *http.Request, rest string) {
	if rest == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	parts := strings.Split(rest, "/")
	id := parts[0]
	if len(parts) == 1 && r.Method == http.MethodGet {
		h.handleGet(w, r, id)
		return
	}
	if len(parts) == 2 {
		switch parts[1] {
		case "freeze":
			if r.Method == http.MethodPost {
				h.handleFreeze(w, r, id)
				return
			}
		case "void":
			if r.Method == http.MethodPost {
				h.handleVoid(w, r, id)
				return
			}
		case "export.pdf":
			if r.Method == http.MethodGet {
				h.handleExport(w, r, id, "pdf")
				return
			}
		case "export.xlsx":
			if r.Method == http.MethodGet {
				h.handleExport(w, r, id, "xlsx")
				return
			}
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *ReportHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	report, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *ReportHandler) handleFreeze(w http.ResponseWriter, r *http.Request, id string) {
	report, err := h.service.Freeze(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"report_id":     report.ID,
		"status":        report.Status,
		"version":       report.Version,
		"snapshot_hash": report.SnapshotHash,
	})
	h.logAudit(r, report, "report.freeze", map[string]any{"status": report.Status})
}

func (h *ReportHandler) handleVoid(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Reason string `json:"reason"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	report, err := h.service.Void(r.Context(), id, req.Reason)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"report_id": report.ID,
		"status":    report.Status,
		"version":   report.Version,
	})
	h.logAudit(r, report, "report.void", map[string]any{"reason": req.Reason})
}

func (h *ReportHandler) handleExport(w http.ResponseWriter, r *http.Request, id, format string) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveReportExport(format, result, time.Since(start))
	}()

	report, err := h.service.Get(r.Context(), id)
	if err != nil {
		result = metrics.ResultError
		respondServiceError(w, err)
		return
	}

	var (
		data        []byte
		contentType string
	)
	switch format {
	case "pdf":
		data, err = BuildReportPDF(report)
		contentType = "application/pdf"
	default:
		data, err = BuildReportXLSX(report)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export "+format+" error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.ID+`.`+format+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	h.logAudit(r, report, "report.export", map[string]any{"format": format})
}

func (h *ReportHandler) logAudit(r *http.Request, report *mees.Report, action string, meta map[string]any) {
	if h.auditLogger == nil || report == nil {
		return
	}
	if auth.TenantIDFromContext(r.Context()) == "" {
		return
	}
	_ = h.auditLogger.Log(r.Context(), audit.FromRequest(r, action, "report", report.ID, report.BuildingID, meta))
}
