package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"esg-reporting/internal/audit"
	"esg-reporting/internal/auth"
	meesapp "esg-reporting/internal/mees/application"
	mees "esg-reporting/internal/mees/domain"
	"esg-reporting/internal/mees/infrastructure/memory"
)

type recordingAudit struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (a *recordingAudit) Log(ctx context.Context, entry audit.Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
	return nil
}

func (a *recordingAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, entry := range a.entries {
		out = append(out, entry.Action)
	}
	return out
}

type testServer struct {
	mux   *http.ServeMux
	audit *recordingAudit
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	repo := memory.NewBuildingRepository()
	repo.PutBuilding(mees.Building{ID: "bld-1", TenantID: "tenant-a", Name: "Canary House"}, []mees.Unit{
		{ID: "u1", BuildingID: "bld-1", Rating: mees.RatingD, AnnualRent: 100000},
		{ID: "u2", BuildingID: "bld-1", Rating: mees.RatingB, AnnualRent: 50000},
		{ID: "u3", BuildingID: "bld-1", Rating: mees.RatingA, AnnualRent: 30000},
	})
	repo.PutBuilding(mees.Building{ID: "bld-x", TenantID: "tenant-b", Name: "Elsewhere"}, nil)

	cfg := meesapp.Config{Defaults: mees.DefaultRentParams()}
	assessment, err := meesapp.NewAssessmentService(repo, repo, repo, cfg, "tenant-a")
	if err != nil {
		t.Fatalf("assessment service: %v", err)
	}
	reports, err := meesapp.NewReportService(repo, repo, memory.NewReportRepository(), cfg, "tenant-a", "GBP")
	if err != nil {
		t.Fatalf("report service: %v", err)
	}
	checker := auth.NewBuildingChecker(repo)
	recorder := &recordingAudit{}

	buildingHandler, err := NewBuildingHandler(assessment, checker)
	if err != nil {
		t.Fatalf("building handler: %v", err)
	}
	calculateHandler, err := NewCalculateHandler(assessment)
	if err != nil {
		t.Fatalf("calculate handler: %v", err)
	}
	reportHandler, err := NewReportHandler(reports, checker, recorder)
	if err != nil {
		t.Fatalf("report handler: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/buildings/", buildingHandler)
	mux.Handle("/api/v1/portfolio/mees", buildingHandler)
	mux.Handle("/api/v1/mees/calculate", calculateHandler)
	mux.Handle("/api/v1/reports", reportHandler)
	mux.Handle("/api/v1/reports/", reportHandler)
	return &testServer{mux: mux, audit: recorder}
}

func (s *testServer) do(t *testing.T, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{TenantID: "tenant-a", Role: auth.RoleAdmin, Subject: "user-1"}))
	resp := httptest.NewRecorder()
	s.mux.ServeHTTP(resp, req)
	return resp
}

func decode(t *testing.T, resp *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(resp.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", resp.Body.String(), err)
	}
}

func TestBuildingHandler_Summary(t *testing.T) {
	srv := newTestServer(t)
	resp := srv.do(t, http.MethodGet, "/api/v1/buildings/bld-1/mees", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body struct {
		Summary mees.Summary `json:"summary"`
	}
	decode(t, resp, &body)
	if body.Summary.TotalUnits != 3 || body.Summary.UnitsAtRisk2027 != 1 || body.Summary.UnitsAtRisk2030 != 1 {
		t.Fatalf("unexpected summary: %+v", body.Summary)
	}
}

func TestBuildingHandler_Routes(t *testing.T) {
	srv := newTestServer(t)
	cases := []struct {
		name string
		path string
		want int
	}{
		{"distribution", "/api/v1/buildings/bld-1/epc-distribution", http.StatusOK},
		{"units", "/api/v1/buildings/bld-1/units", http.StatusOK},
		{"compare", "/api/v1/buildings/bld-1/scenarios/compare", http.StatusOK},
		{"portfolio", "/api/v1/portfolio/mees", http.StatusOK},
		{"foreign building", "/api/v1/buildings/bld-x/mees", http.StatusForbidden},
		{"missing building", "/api/v1/buildings/bld-404/mees", http.StatusNotFound},
		{"unknown route", "/api/v1/buildings/bld-1/crrem", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := srv.do(t, http.MethodGet, tc.path, nil)
			if resp.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, resp.Code, resp.Body.String())
			}
		})
	}
}

func TestBuildingHandler_RentProtection(t *testing.T) {
	srv := newTestServer(t)
	resp := srv.do(t, http.MethodGet, "/api/v1/buildings/bld-1/rent-protection?scenario=net_zero_2050&epc_a_uplift=10&epc_b_uplift=5", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var result mees.RentProtectedResult
	decode(t, resp, &result)
	// D -> B protects 100000 and earns 5%; B earns 5%; A earns 10%.
	if result.RentProtected != 100000 || result.RentUplift != 5000+2500+3000 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Breakdown) != 3 {
		t.Fatalf("expected 3 breakdown rows, got %d", len(result.Breakdown))
	}

	bad := []string{
		"/api/v1/buildings/bld-1/rent-protection",
		"/api/v1/buildings/bld-1/rent-protection?scenario=epc_d",
		"/api/v1/buildings/bld-1/rent-protection?scenario=bau&epc_a_uplift=25",
		"/api/v1/buildings/bld-1/rent-protection?scenario=bau&epc_b_uplift=-1",
		"/api/v1/buildings/bld-1/rent-protection?scenario=bau&epc_a_uplift=abc",
	}
	for _, path := range bad {
		if resp := srv.do(t, http.MethodGet, path, nil); resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, resp.Code)
		}
	}
}

func TestCalculateHandler(t *testing.T) {
	srv := newTestServer(t)
	body := []byte(`{
		"scenario": "epc_c_2027",
		"units": [
			{"id": "u1", "epc_rating": "d", "annual_rent": 100000},
			{"id": "u2", "epc_rating": null, "annual_rent": 20000},
			{"id": "u3", "epc_rating": "B", "annual_rent": 50000}
		]
	}`)
	resp := srv.do(t, http.MethodPost, "/api/v1/mees/calculate", body)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var result mees.RentProtectedResult
	decode(t, resp, &result)
	if result.RentProtected != 120000 || result.RentUplift != 2500 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Breakdown[1].CurrentEPC != mees.RatingUnknown || result.Breakdown[1].PostEPC != mees.RatingC {
		t.Fatalf("expected null rating to be upgraded from Unknown: %+v", result.Breakdown[1])
	}
}

func TestCalculateHandler_Rejects(t *testing.T) {
	srv := newTestServer(t)
	cases := map[string]string{
		"invalid scenario": `{"scenario":"epc_d","units":[]}`,
		"missing scenario": `{"units":[]}`,
		"null rent":        `{"scenario":"bau","units":[{"id":"u1","annual_rent":null}]}`,
		"string rent":      `{"scenario":"bau","units":[{"id":"u1","annual_rent":"100"}]}`,
		"negative rent":    `{"scenario":"bau","units":[{"id":"u1","annual_rent":-5}]}`,
		"uplift too high":  `{"scenario":"bau","epc_b_uplift_percent":16,"units":[]}`,
		"malformed json":   `{"scenario":`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp := srv.do(t, http.MethodPost, "/api/v1/mees/calculate", []byte(body))
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
			}
		})
	}
}

func TestCalculateHandler_EmptyUnits(t *testing.T) {
	srv := newTestServer(t)
	resp := srv.do(t, http.MethodPost, "/api/v1/mees/calculate", []byte(`{"scenario":"bau","units":[]}`))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"breakdown":[]`) {
		t.Fatalf("expected empty breakdown array, got %s", resp.Body.String())
	}
}

func TestReportHandler_Lifecycle(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodPost, "/api/v1/reports/generate", []byte(`{"building_id":"bld-1","scenario":"epc_c_2027"}`))
	if resp.Code != http.StatusOK {
		t.Fatalf("generate: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var generated struct {
		ReportID string `json:"report_id"`
		Status   string `json:"status"`
		Version  int    `json:"version"`
	}
	decode(t, resp, &generated)
	if generated.ReportID == "" || generated.Status != mees.ReportStatusDraft || generated.Version != 1 {
		t.Fatalf("unexpected generate response: %+v", generated)
	}

	resp = srv.do(t, http.MethodGet, "/api/v1/reports/"+generated.ReportID, nil)
	if body := resp.Body.String(); strings.Contains(body, "frozen_at") || strings.Contains(body, "voided_at") {
		t.Fatalf("draft should not carry lifecycle timestamps: %s", body)
	}

	resp = srv.do(t, http.MethodPost, "/api/v1/reports/"+generated.ReportID+"/freeze", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("freeze: expected 200, got %d", resp.Code)
	}

	resp = srv.do(t, http.MethodGet, "/api/v1/reports/"+generated.ReportID, nil)
	var report mees.Report
	decode(t, resp, &report)
	if report.Status != mees.ReportStatusFrozen || report.SnapshotHash == "" {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.FrozenAt == nil || report.FrozenAt.IsZero() || report.VoidedAt != nil {
		t.Fatalf("unexpected timestamps: frozen=%v voided=%v", report.FrozenAt, report.VoidedAt)
	}

	resp = srv.do(t, http.MethodGet, "/api/v1/reports/"+generated.ReportID+"/export.pdf", nil)
	if resp.Code != http.StatusOK || !bytes.HasPrefix(resp.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("pdf export failed: %d", resp.Code)
	}
	resp = srv.do(t, http.MethodGet, "/api/v1/reports/"+generated.ReportID+"/export.xlsx", nil)
	if resp.Code != http.StatusOK || !bytes.HasPrefix(resp.Body.Bytes(), []byte("PK")) {
		t.Fatalf("xlsx export failed: %d", resp.Code)
	}

	resp = srv.do(t, http.MethodPost, "/api/v1/reports/"+generated.ReportID+"/void", []byte(`{"reason":"restated"}`))
	if resp.Code != http.StatusOK {
		t.Fatalf("void: expected 200, got %d", resp.Code)
	}
	resp = srv.do(t, http.MethodPost, "/api/v1/reports/"+generated.ReportID+"/freeze", nil)
	if resp.Code != http.StatusConflict {
		t.Fatalf("freeze voided: expected 409, got %d", resp.Code)
	}

	resp = srv.do(t, http.MethodGet, "/api/v1/reports?building_id=bld-1", nil)
	var list []mees.Report
	decode(t, resp, &list)
	if len(list) != 1 {
		t.Fatalf("expected 1 report, got %d", len(list))
	}

	want := []string{"report.generate", "report.freeze", "report.export", "report.export", "report.void"}
	got := srv.audit.actions()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected audit trail: %v", got)
	}
}

func TestReportHandler_Errors(t *testing.T) {
	srv := newTestServer(t)
	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"invalid scenario", http.MethodPost, "/api/v1/reports/generate", `{"building_id":"bld-1","scenario":"nope"}`, http.StatusBadRequest},
		{"foreign building", http.MethodPost, "/api/v1/reports/generate", `{"building_id":"bld-x","scenario":"bau"}`, http.StatusForbidden},
		{"missing report", http.MethodGet, "/api/v1/reports/rpt-404", "", http.StatusNotFound},
		{"list without building", http.MethodGet, "/api/v1/reports", "", http.StatusBadRequest},
		{"unknown action", http.MethodPost, "/api/v1/reports/rpt-1/approve", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := srv.do(t, tc.method, tc.path, []byte(tc.body))
			if resp.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, resp.Code, resp.Body.String())
			}
		})
	}
}

func TestBuildReportExports_Nil(t *testing.T) {
	if _, err := BuildReportPDF(nil); err == nil {
		t.Fatalf("expected error for nil report")
	}
	if _, err := BuildReportXLSX(nil); err == nil {
		t.Fatalf("expected error for nil report")
	}
}
