package interfaces

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"esg-reporting/internal/auth"
	meesapp "esg-reporting/internal/mees/application"
	mees "esg-reporting/internal/mees/domain"
)

const (
	buildingsPrefix = "/api/v1/buildings/"
	portfolioPath   = "/api/v1/portfolio/mees"
)

// BuildingHandler serves MEES dashboards under /api/v1/buildings and the
// portfolio rollup.
type BuildingHandler struct {
	service         *meesapp.AssessmentService
	buildingChecker auth.BuildingTenantChecker
}

// NewBuildingHandler constructs a handler.
func NewBuildingHandler(service *meesapp.AssessmentService, buildingChecker auth.BuildingTenantChecker) (*BuildingHandler, error) {
	if service == nil {
		return nil, errors.New("building handler: nil service")
	}
	return &BuildingHandler{service: service, buildingChecker: buildingChecker}, nil
}

// ServeHTTP routes building and portfolio requests.
func (h *BuildingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path == portfolioPath {
		h.handlePortfolio(w, r)
		return
	}
	if !strings.HasPrefix(r.URL.Path, buildingsPrefix) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, buildingsPrefix), "/")
	if len(parts) < 2 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	buildingID := parts[0]
	if err := ensureBuildingTenant(r, h.buildingChecker, buildingID); err != nil {
		respondTenantError(w, err)
		return
	}

	switch strings.Join(parts[1:], "/") {
	case "mees":
		h.handleSummary(w, r, buildingID)
	case "epc-distribution":
		h.handleDistribution(w, r, buildingID)
	case "units":
		h.handleUnits(w, r, buildingID)
	case "rent-protection":
		h.handleRentProtection(w, r, buildingID)
	case "scenarios/compare":
		h.handleCompare(w, r, buildingID)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *BuildingHandler) handleSummary(w http.ResponseWriter, r *http.Request, buildingID string) {
	summary, err := h.service.Summary(r.Context(), buildingID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"building_id": buildingID,
		"summary":     summary,
	})
}

func (h *BuildingHandler) handleDistribution(w http.ResponseWriter, r *http.Request, buildingID string) {
	buckets, err := h.service.Distribution(r.Context(), buildingID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"building_id":  buildingID,
		"distribution": buckets,
	})
}

func (h *BuildingHandler) handleUnits(w http.ResponseWriter, r *http.Request, buildingID string) {
	units, err := h.service.Units(r.Context(), buildingID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"building_id": buildingID,
		"units":       units,
	})
}

func (h *BuildingHandler) handleRentProtection(w http.ResponseWriter, r *http.Request, buildingID string) {
	query := r.URL.Query()
	scenario, params, err := parseRentQuery(query.Get("scenario"), query.Get("epc_a_uplift"), query.Get("epc_b_uplift"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result, err := h.service.RentProtection(r.Context(), buildingID, scenario, params)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *BuildingHandler) handleCompare(w http.ResponseWriter, r *http.Request, buildingID string) {
	query := r.URL.Query()
	_, params, err := parseRentQuery(string(mees.ScenarioBAU), query.Get("epc_a_uplift"), query.Get("epc_b_uplift"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rows, err := h.service.CompareScenarios(r.Context(), buildingID, params)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"building_id": buildingID,
		"scenarios":   rows,
	})
}

func (h *BuildingHandler) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.service.Portfolio(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, portfolio)
}

// parseRentQuery reads the scenario and optional uplift overrides. When
// neither uplift is given the returned params are nil so the configured
// params apply; a missing one falls back to the default.
func parseRentQuery(scenarioValue, upliftA, upliftB string) (mees.Scenario, *mees.RentParams, error) {
	doc := map[string]any{"scenario": strings.TrimSpace(scenarioValue)}
	var params *mees.RentParams
	if upliftA != "" || upliftB != "" {
		defaults := mees.DefaultRentParams()
		params = &defaults
	}
	for _, field := range []struct {
		raw  string
		key  string
		dest func(float64)
	}{
		{upliftA, "epc_a_uplift_percent", func(v float64) { params.EPCAUpliftPercent = v }},
		{upliftB, "epc_b_uplift_percent", func(v float64) { params.EPCBUpliftPercent = v }},
	} {
		if field.raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(field.raw, 64)
		if err != nil {
			return "", nil, errors.New("invalid request: " + field.key + " must be a number")
		}
		doc[field.key] = value
		field.dest(value)
	}
	if err := validateDocument(rentQuerySchema(), gojsonschema.NewGoLoader(doc)); err != nil {
		return "", nil, err
	}
	return mees.Scenario(doc["scenario"].(string)), params, nil
}
