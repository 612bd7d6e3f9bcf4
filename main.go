package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"esg-reporting/internal/audit"
	"esg-reporting/internal/auth"
	meesapp "esg-reporting/internal/mees/application"
	mees "esg-reporting/internal/mees/domain"
	"esg-reporting/internal/mees/infrastructure/memory"
	meesrepo "esg-reporting/internal/mees/infrastructure/postgres"
	meeshttp "esg-reporting/internal/mees/interfaces"
	"esg-reporting/internal/observability/metrics"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type stores struct {
	buildings mees.BuildingReader
	units     mees.UnitReader
	scenarios mees.ScenarioReader
	reports   mees.ReportRepository
	audit     audit.Logger
}

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	meesCfg, err := meesapp.LoadConfig()
	if err != nil {
		logger.Fatalf("mees config error: %v", err)
	}

	var st stores
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("db open error: %v", err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			logger.Fatalf("db ping error: %v", err)
		}
		metrics.Init(db, logger)
		buildingRepo := meesrepo.NewBuildingRepository(db)
		st = stores{
			buildings: buildingRepo,
			units:     buildingRepo,
			scenarios: meesrepo.NewScenarioRepository(db),
			reports:   meesrepo.NewReportRepository(db),
			audit:     audit.NewRepository(db),
		}
	} else {
		logger.Printf("DATABASE_URL not set, using in-memory store")
		metrics.Init(nil, logger)
		buildingRepo := memory.NewBuildingRepository()
		st = stores{
			buildings: buildingRepo,
			units:     buildingRepo,
			scenarios: buildingRepo,
			reports:   memory.NewReportRepository(),
		}
	}
	buildingChecker := auth.NewBuildingChecker(st.buildings)

	assessmentService, err := meesapp.NewAssessmentService(st.buildings, st.units, st.scenarios, meesCfg, cfg.TenantID)
	if err != nil {
		logger.Fatalf("assessment service error: %v", err)
	}
	reportService, err := meesapp.NewReportService(st.buildings, st.units, st.reports, meesCfg, cfg.TenantID, cfg.Currency)
	if err != nil {
		logger.Fatalf("report service error: %v", err)
	}

	buildingHandler, err := meeshttp.NewBuildingHandler(assessmentService, buildingChecker)
	if err != nil {
		logger.Fatalf("building handler error: %v", err)
	}
	calculateHandler, err := meeshttp.NewCalculateHandler(assessmentService)
	if err != nil {
		logger.Fatalf("calculate handler error: %v", err)
	}
	reportHandler, err := meeshttp.NewReportHandler(reportService, buildingChecker, st.audit)
	if err != nil {
		logger.Fatalf("report handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/buildings/", buildingHandler)
	mux.Handle("/api/v1/portfolio/mees", buildingHandler)
	mux.Handle("/api/v1/mees/calculate", calculateHandler)
	mux.Handle("/api/v1/reports", reportHandler)
	mux.Handle("/api/v1/reports/", reportHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           loggingMiddleware(authMiddleware.Wrap(mux), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL string
	HTTPAddr    string
	TenantID    string
	Currency    string
	JWTSecret   string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL: getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:    getenvDefault("HTTP_ADDR", ":8080"),
		TenantID:    getenvDefault("TENANT_ID", "tenant-demo"),
		Currency:    getenvDefault("CURRENCY", "GBP"),
		JWTSecret:   getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		metrics.IncHTTPRequest(r.Method, resp.status)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
