package metrics

import (
	"cmp"
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	RecordsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "producer_records_generated_total",
			Help: "Total number of fake users generated by topic",
		},
		[]string{"topic"},
	)

	RecordsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "producer_records_sent_total",
			Help: "Total number of records handed to the messaging client by topic",
		},
		[]string{"topic"},
	)

	SendErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "producer_send_errors_total",
			Help: "Total number of records that could not be handed to the messaging client by topic",
		},
		[]string{"topic"},
	)

	DeliverySuccesses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "producer_delivery_success_total",
			Help: "Total number of records acknowledged by the broker by topic",
		},
		[]string{"topic"},
	)

	DeliveryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "producer_delivery_errors_total",
			Help: "Total number of records the messaging client failed to deliver by topic",
		},
		[]string{"topic"},
	)

	TriggerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "producer_trigger_duration_seconds",
			Help:    "Duration of a generate-and-publish run",
			Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"mode", "outcome"},
	)

	JobsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "producer_jobs_running",
			Help: "Number of background publish jobs currently running",
		},
	)
)

type PromServerOpts struct {
	Logger            *zap.Logger
	Addr              string
	Path              string        // Path for metrics endpoint, defaults to "/metrics"
	ShutdownTimeout   time.Duration // Timeout for server shutdown, defaults to 5 seconds
	ReadHeaderTimeout time.Duration // Timeout for reading request headers, defaults to 3 seconds
}

func defaultPrometheusServerOptions() PromServerOpts {
	return PromServerOpts{
		Addr:              ":9100",
		Path:              "/metrics",
		ShutdownTimeout:   5 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// StartPrometheusServer starts a Prometheus metrics server with the given options.
// The server shuts down gracefully when ctx is canceled.
func StartPrometheusServer(ctx context.Context, wg *sync.WaitGroup, opts *PromServerOpts) {
	effectiveOpts := defaultPrometheusServerOptions()
	if opts != nil {
		effectiveOpts.Addr = cmp.Or(opts.Addr, effectiveOpts.Addr)
		effectiveOpts.Path = cmp.Or(opts.Path, effectiveOpts.Path)
		effectiveOpts.ShutdownTimeout = cmp.Or(opts.ShutdownTimeout, effectiveOpts.ShutdownTimeout)
		effectiveOpts.ReadHeaderTimeout = cmp.Or(opts.ReadHeaderTimeout, effectiveOpts.ReadHeaderTimeout)
		effectiveOpts.Logger = opts.Logger
	}
	logger := effectiveOpts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()
	mux.Handle(effectiveOpts.Path, promhttp.Handler())
	server := &http.Server{
		Addr:              effectiveOpts.Addr,
		Handler:           mux,
		ReadHeaderTimeout: effectiveOpts.ReadHeaderTimeout,
	}

	serverClosed := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("starting prometheus metrics server", zap.String("addr", effectiveOpts.Addr))
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", zap.Error(err))
		}
		close(serverClosed)
	}()

	go func() {
		<-ctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), effectiveOpts.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("error shutting down metrics server", zap.Error(err))
		}

		select {
		case <-serverClosed:
			logger.Info("metrics server shutdown complete")
		case <-shutdownCtx.Done():
			logger.Warn("metrics server shutdown timed out")
		}
	}()
}
