package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"cpu-burn-lab/internal/burn"
	"cpu-burn-lab/internal/config"
	"cpu-burn-lab/internal/handlers"
	"cpu-burn-lab/internal/log"
	"cpu-burn-lab/internal/observability"
	"cpu-burn-lab/internal/routers"
)

func main() {
	cfg := config.Load()
	config.BindFlags(pflag.CommandLine, &cfg)
	pflag.Parse()

	if err := log.Setup(cfg.LogLevel, cfg.LogFormat, os.Stdout); err != nil {
		logrus.WithError(err).Fatal("log init failed")
	}
	if err := run(cfg); err != nil {
		logrus.WithError(err).Fatal("server failed")
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize OpenTelemetry (metrics + optional traces).
	shutdown, err := observability.SetupOTel(ctx, observability.Options{
		Endpoint:       cfg.OtelEndpoint,
		ServiceName:    cfg.ServiceName,
		DisableMetrics: cfg.DisableMetrics,
		DisableTraces:  cfg.DisableTraces,
	})
	if err != nil {
		return errors.Wrap(err, "otel init")
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logrus.WithError(err).Warn("otel shutdown")
		}
	}()

	m, err := observability.NewMetrics()
	if err != nil {
		return errors.Wrap(err, "metrics init")
	}

	coord := burn.New(
		burn.WithBatchSize(cfg.BatchSize),
		burn.WithMaxWorkers(cfg.MaxWorkers),
		burn.WithRecorder(m),
		burn.WithOnComplete(handlers.LogCompletion),
	)

	h := handlers.New(coord, cfg.DefaultThreads, cfg.DefaultDuration)

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: routers.NewRouter(m, h),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logrus.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return errors.Wrap(srv.Shutdown(sctx), "http shutdown")
	})
	return g.Wait()
}
