package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"esg-reporting/internal/auth"
	mees "esg-reporting/internal/mees/domain"
)

// ratingCycle spreads units across bands; the empty entry seeds a unit
// without an EPC.
var ratingCycle = []string{"A", "B", "C", "C", "D", "D", "E", "F", "G", ""}

type config struct {
	dsn             string
	baseURL         string
	jwtSecret       string
	tenantID        string
	buildingPrefix  string
	buildingCount   int
	unitsPerFloor   int
	floors          int
	seedScenarios   bool
	generateReports bool
	reportScenario  string
}

func main() {
	cfg := parseConfig()
	if cfg.dsn == "" {
		log.Fatal("PG_DSN or DATABASE_URL is required")
	}
	if cfg.buildingCount <= 0 {
		log.Fatal("building-count must be > 0")
	}
	if cfg.floors <= 0 || cfg.unitsPerFloor <= 0 {
		log.Fatal("floors and units-per-floor must be > 0")
	}

	db, err := sql.Open("pgx", cfg.dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	buildingIDs := buildBuildingIDs(cfg.buildingPrefix, cfg.buildingCount)

	log.Printf("seeding buildings: tenant=%s buildings=%d units=%d", cfg.tenantID, cfg.buildingCount, cfg.floors*cfg.unitsPerFloor)
	if err := seedBuildings(ctx, db, cfg, buildingIDs); err != nil {
		log.Fatalf("seed buildings: %v", err)
	}

	if cfg.seedScenarios {
		log.Printf("seeding retrofit scenarios")
		if err := seedScenarios(ctx, db, buildingIDs); err != nil {
			log.Fatalf("seed scenarios: %v", err)
		}
	}

	if cfg.generateReports {
		if cfg.baseURL == "" || cfg.jwtSecret == "" {
			log.Fatal("base-url and AUTH_JWT_SECRET are required when generate-reports is enabled")
		}
		scenario, err := mees.ParseScenario(cfg.reportScenario)
		if err != nil {
			log.Fatalf("report scenario: %v", err)
		}
		ids, err := generateReports(ctx, cfg, buildingIDs, scenario)
		if err != nil {
			log.Fatalf("generate reports: %v", err)
		}
		log.Printf("generated %d reports", len(ids))
	}

	log.Printf("portfolio seed completed")
}

func parseConfig() config {
	cfg := config{}
	flag.StringVar(&cfg.dsn, "pg-dsn", envOrDefault("PG_DSN", envOrDefault("DATABASE_URL", "")), "Postgres DSN")
	flag.StringVar(&cfg.baseURL, "base-url", envOrDefault("BASE_URL", ""), "API base URL for report generation")
	flag.StringVar(&cfg.jwtSecret, "jwt-secret", envOrDefault("AUTH_JWT_SECRET", ""), "secret used to sign the admin token")
	flag.StringVar(&cfg.tenantID, "tenant-id", envOrDefault("TENANT_ID", "tenant-demo"), "tenant owning the seeded buildings")
	flag.StringVar(&cfg.buildingPrefix, "building-prefix", envOrDefault("BUILDING_PREFIX", "bld-seed-"), "building id prefix")
	flag.IntVar(&cfg.buildingCount, "building-count", envOrInt("BUILDING_COUNT", 5), "number of buildings to seed")
	flag.IntVar(&cfg.floors, "floors", envOrInt("FLOORS", 4), "floors per building")
	flag.IntVar(&cfg.unitsPerFloor, "units-per-floor", envOrInt("UNITS_PER_FLOOR", 3), "units per floor")
	flag.BoolVar(&cfg.seedScenarios, "seed-scenarios", envOrBool("SEED_SCENARIOS", true), "seed costed retrofit scenarios")
	flag.BoolVar(&cfg.generateReports, "generate-reports", envOrBool("GENERATE_REPORTS", false), "generate report drafts via API")
	flag.StringVar(&cfg.reportScenario, "report-scenario", envOrDefault("REPORT_SCENARIO", string(mees.ScenarioEPCC2027)), "scenario for generated reports")
	flag.Parse()
	return cfg
}

func buildBuildingIDs(prefix string, count int) []string {
	ids := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		ids = append(ids, fmt.Sprintf("%s%03d", prefix, i))
	}
	return ids
}

func seedBuildings(ctx context.Context, db *sql.DB, cfg config, buildingIDs []string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	buildingStmt, err := tx.PrepareContext(ctx, `
INSERT INTO buildings (id, tenant_id, name, address, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return err
	}
	defer buildingStmt.Close()

	unitStmt, err := tx.PrepareContext(ctx, `
INSERT INTO units (id, building_id, floor, size_sqft, epc_rating, annual_rent)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
ON CONFLICT (id) DO UPDATE SET epc_rating = EXCLUDED.epc_rating, annual_rent = EXCLUDED.annual_rent`)
	if err != nil {
		return err
	}
	defer unitStmt.Close()

	now := time.Now().UTC()
	seq := 0
	for b, buildingID := range buildingIDs {
		name := fmt.Sprintf("Seed House %d", b+1)
		address := fmt.Sprintf("%d Seed Street", (b+1)*10)
		if _, err := buildingStmt.ExecContext(ctx, buildingID, cfg.tenantID, name, address, now); err != nil {
			return err
		}
		for floor := 0; floor < cfg.floors; floor++ {
			for u := 0; u < cfg.unitsPerFloor; u++ {
				unitID := fmt.Sprintf("%s-%02d%02d", buildingID, floor, u+1)
				rating := ratingCycle[(seq+b)%len(ratingCycle)]
				size := 1500 + float64(u)*500
				rent := 20000 + float64((seq%7)*7500)
				if _, err := unitStmt.ExecContext(ctx, unitID, buildingID, strconv.Itoa(floor), size, rating, rent); err != nil {
					return err
				}
				seq++
			}
		}
	}
	return tx.Commit()
}

func seedScenarios(ctx context.Context, db *sql.DB, buildingIDs []string) error {
	stmt, err := db.PrepareContext(ctx, `
INSERT INTO retrofit_scenarios (id, building_id, name, scenario_tag, capex_total, carbon_reduction_pct, sort_order)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	options := []struct {
		suffix    string
		name      string
		tag       mees.Scenario
		capex     float64
		reduction float64
	}{
		{"bau", "Business as usual", mees.ScenarioBAU, 0, 0},
		{"led-bms", "LED and BMS upgrade", mees.ScenarioEPCC2027, 250000, 22},
		{"heat-pumps", "Heat pumps and fabric", mees.ScenarioNetZero2050, 1200000, 68},
	}
	for _, buildingID := range buildingIDs {
		for i, option := range options {
			id := buildingID + "-" + option.suffix
			if _, err := stmt.ExecContext(ctx, id, buildingID, option.name, string(option.tag), option.capex, option.reduction, i); err != nil {
				return err
			}
		}
	}
	return nil
}

func generateReports(ctx context.Context, cfg config, buildingIDs []string, scenario mees.Scenario) ([]string, error) {
	token, err := auth.IssueJWT(auth.Identity{TenantID: cfg.tenantID, Role: auth.RoleAdmin, Subject: "portfolio-seed"}, []byte(cfg.jwtSecret), time.Hour)
	if err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: 30 * time.Second}
	baseURL := strings.TrimRight(cfg.baseURL, "/")
	ids := make([]string, 0, len(buildingIDs))
	for _, buildingID := range buildingIDs {
		payload, _ := json.Marshal(map[string]any{
			"building_id": buildingID,
			"scenario":    scenario,
			"regenerate":  false,
		})
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/v1/reports/generate", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		var respBody struct {
			ReportID string `json:"report_id"`
		}
		if resp.StatusCode >= 300 {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("generate report failed for %s: http %d", buildingID, resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
			_ = resp.Body.Close()
			return nil, err
		}
		_ = resp.Body.Close()
		if respBody.ReportID == "" {
			return nil, fmt.Errorf("empty report id for %s", buildingID)
		}
		ids = append(ids, respBody.ReportID)
	}
	return ids, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envOrBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
