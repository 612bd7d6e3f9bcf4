package metrics

import (
	"database/sql"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "esg_"

	resultSuccess = "success"
	resultError   = "error"
)

// Exported result labels.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)

var (
	registerOnce sync.Once

	calculationTotal   *prometheus.CounterVec
	calculationLatency *prometheus.HistogramVec
	unitsAssessed      *prometheus.CounterVec

	reportOperationTotal   *prometheus.CounterVec
	reportOperationLatency *prometheus.HistogramVec
	reportExportTotal      *prometheus.CounterVec
	reportExportLatency    *prometheus.HistogramVec

	httpRequests *prometheus.CounterVec
)

// Init registers service metrics and DB-backed gauges on the default registry.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		calculationTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "calculation_total",
				Help: "Total MEES and rent calculations by kind and result",
			},
			[]string{"kind", "result"},
		)
		calculationLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "calculation_latency_seconds",
				Help:    "Calculation latency including unit loading, in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		)
		unitsAssessed = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "units_assessed_total",
				Help: "Units passed through a calculation by kind",
			},
			[]string{"kind"},
		)
		reportOperationTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_operation_total",
				Help: "Total report generate/freeze/void operations by result",
			},
			[]string{"operation", "result"},
		)
		reportOperationLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_operation_latency_seconds",
				Help:    "Report operation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		)
		reportExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_export_total",
				Help: "Total report exports by format and result",
			},
			[]string{"format", "result"},
		)
		reportExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		)
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "HTTP requests by method and status class",
			},
			[]string{"method", "status"},
		)

		prometheus.MustRegister(
			calculationTotal,
			calculationLatency,
			unitsAssessed,
			reportOperationTotal,
			reportOperationLatency,
			reportExportTotal,
			reportExportLatency,
			httpRequests,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "report_drafts_pending",
			Help: "Reports generated but not yet frozen or voided",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM mees_reports WHERE status = 'draft'")
		},
	))
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "units_missing_epc",
			Help: "Units stored without a lettered EPC rating",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM units WHERE epc_rating IS NULL OR upper(epc_rating) NOT IN ('A','B','C','D','E','F','G')")
		},
	))
}

func queryCount(db *sql.DB, logger *log.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if logger != nil {
			logger.Printf("metrics query failed: %v", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}

// ObserveCalculation records a calculation of the given kind.
func ObserveCalculation(kind, result string, units int, duration time.Duration) {
	if kind == "" {
		kind = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if calculationTotal != nil {
		calculationTotal.WithLabelValues(kind, result).Inc()
	}
	if calculationLatency != nil {
		calculationLatency.WithLabelValues(kind).Observe(duration.Seconds())
	}
	if unitsAssessed != nil && units > 0 {
		unitsAssessed.WithLabelValues(kind).Add(float64(units))
	}
}

// ObserveReportOperation records a report lifecycle operation.
func ObserveReportOperation(operation, result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if reportOperationTotal != nil {
		reportOperationTotal.WithLabelValues(operation, result).Inc()
	}
	if reportOperationLatency != nil {
		reportOperationLatency.WithLabelValues(operation).Observe(duration.Seconds())
	}
}

// ObserveReportExport records a report export.
func ObserveReportExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if reportExportTotal != nil {
		reportExportTotal.WithLabelValues(format, result).Inc()
	}
	if reportExportLatency != nil {
		reportExportLatency.WithLabelValues(format).Observe(duration.Seconds())
	}
}

// IncHTTPRequest counts a served request by status class (2xx, 4xx, ...).
func IncHTTPRequest(method string, status int) {
	if httpRequests == nil {
		return
	}
	httpRequests.WithLabelValues(method, strconv.Itoa(status/100)+"xx").Inc()
}
