package telemetry

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Measurement metrics
	CyclesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nperfd_measurement_cycles_total",
		Help: "Total number of completed measurement cycles",
	})
	CycleFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nperfd_measurement_cycle_failures_total",
		Help: "Total number of failed measurement cycles",
	})
	CycleDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "nperfd_measurement_cycle_duration_seconds",
		Help:    "Duration of measurement cycles in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// Result metrics
	ResultFilesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nperfd_result_files_total",
		Help: "Total number of result files installed",
	})

	// Launcher metrics
	ActiveInstances = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "nperfd_active_instances",
		Help: "Number of measurement instances currently running",
	})
	MetadataMessagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nperfd_metadata_messages_total",
		Help: "Total number of metadata messages received",
	})
	MetadataErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nperfd_metadata_errors_total",
		Help: "Total number of malformed metadata messages skipped",
	})

	registerOnce sync.Once
	serveOnce    sync.Once
)

// Registers all collectors with the default registry. Safe to call more
// than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			CyclesTotal,
			CycleFailuresTotal,
			CycleDurationSeconds,
			ResultFilesTotal,
			ActiveInstances,
			MetadataMessagesTotal,
			MetadataErrorsTotal,
		)
	})
}

// Starts the metrics HTTP endpoint in the background.
//
// A no-op when addr is empty; metrics stay registered but are not exposed.
// The server is never restarted once started.
func Serve(addr string) {
	if addr == "" {
		return
	}

	Register()

	serveOnce.Do(func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())

		srv := &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}

		go func() {
			slog.Info("metrics endpoint listening", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("metrics endpoint failed", "error", err)
			}
		}()
	})
}
