package interfaces

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/xeipuuv/gojsonschema"

	meesapp "esg-reporting/internal/mees/application"
	mees "esg-reporting/internal/mees/domain"
)

const maxCalculateBody = 1 << 20

type calculateUnit struct {
	ID         string   `json:"id"`
	Floor      *string  `json:"floor"`
	SizeSqFt   *float64 `json:"size_sqft"`
	EPCRating  *string  `json:"epc_rating"`
	AnnualRent float64  `json:"annual_rent"`
}

type calculateRequest struct {
	Scenario          string          `json:"scenario"`
	EPCAUpliftPercent *float64        `json:"epc_a_uplift_percent"`
	EPCBUpliftPercent *float64        `json:"epc_b_uplift_percent"`
	Units             []calculateUnit `json:"units"`
}

// CalculateHandler runs the rent protection calculator over a posted unit list.
type CalculateHandler struct {
	service *meesapp.AssessmentService
}

// NewCalculateHandler constructs a handler.
func NewCalculateHandler(service *meesapp.AssessmentService) (*CalculateHandler, error) {
	if service == nil {
		return nil, errors.New("calculate handler: nil service")
	}
	return &CalculateHandler{service: service}, nil
}

// ServeHTTP handles POST /api/v1/mees/calculate.
func (h *CalculateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCalculateBody))
	if err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := validateDocument(calculateSchema(), gojsonschema.NewBytesLoader(body)); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req calculateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	var params *mees.RentParams
	if req.EPCAUpliftPercent != nil || req.EPCBUpliftPercent != nil {
		resolved := mees.DefaultRentParams()
		if req.EPCAUpliftPercent != nil {
			resolved.EPCAUpliftPercent = *req.EPCAUpliftPercent
		}
		if req.EPCBUpliftPercent != nil {
			resolved.EPCBUpliftPercent = *req.EPCBUpliftPercent
		}
		params = &resolved
	}

	result, err := h.service.Calculate(r.Context(), req.toUnits(), mees.Scenario(req.Scenario), params)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (req calculateRequest) toUnits() []mees.Unit {
	units := make([]mees.Unit, 0, len(req.Units))
	for _, item := range req.Units {
		unit := mees.Unit{ID: item.ID, AnnualRent: item.AnnualRent, Rating: mees.RatingUnknown}
		if item.Floor != nil {
			unit.Floor = *item.Floor
		}
		if item.SizeSqFt != nil {
			unit.SizeSqFt = *item.SizeSqFt
		}
		if item.EPCRating != nil {
			unit.Rating = mees.ParseRating(*item.EPCRating)
		}
		units = append(units, unit)
	}
	return units
}
