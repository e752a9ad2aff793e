package producer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/edgeflare/fakeuser/pkg/api"
	"github.com/edgeflare/fakeuser/pkg/httputil"
	mw "github.com/edgeflare/fakeuser/pkg/httputil/middleware"
	"github.com/edgeflare/fakeuser/pkg/metrics"
	"github.com/edgeflare/fakeuser/pkg/publisher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP trigger server",
	Long:  `Starts an HTTP server; GET /send/{count} publishes count fake users to Kafka`,
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringP("server.listenAddr", "l", "", "HTTP listen address")
	f.Bool("metrics.enabled", true, "Enable Prometheus metrics server")
	f.String("metrics.addr", "", "Prometheus metrics server address")
	bindFlags(f, "server.listenAddr", "metrics.enabled", "metrics.addr")
}

func runServe(cmd *cobra.Command, args []string) error {
	defer logger.Sync()

	// canceled on shutdown; interrupts in-flight publish loops
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	if cfg.Metrics.Enabled {
		metrics.StartPrometheusServer(ctx, &wg, &metrics.PromServerOpts{Addr: cfg.Metrics.Addr, Logger: logger})
	}

	pub, closer, err := newPublisher(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closer.Close(); err != nil {
			logger.Error("failed to close producer", zap.Error(err))
		}
	}()

	jobs := publisher.NewJobs(ctx, pub, cfg.Server.JobRetention, logger.Named("jobs"))

	r := httputil.NewRouter(httputil.WithBaseContext(ctx), httputil.WithLogger(logger))
	if logLevel != "none" {
		r.Use(mw.RequestID, mw.LoggerWithOptions(&mw.LoggerOptions{Logger: logger.Named("http")}), mw.Recoverer)
	} else {
		r.Use(mw.RequestID, mw.Recoverer)
	}
	api.NewHandler(pub, jobs).Register(r)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := r.ListenAndServe(cfg.Server.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-stop:
		logger.Info("received termination signal, shutting down gracefully")
	case err = <-errChan:
		logger.Error("server error", zap.Error(err))
	}

	cancel()
	jobs.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if serr := r.Shutdown(shutdownCtx); serr != nil {
		logger.Error("server shutdown error", zap.Error(serr))
	}
	wg.Wait()

	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info("server gracefully stopped")
	return nil
}
