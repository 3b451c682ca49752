// Copyright 2025 The Vex Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vexhttp/vex/bridge"
	"github.com/vexhttp/vex/config"
	"github.com/vexhttp/vex/logging"
	"github.com/vexhttp/vex/metrics"
	"github.com/vexhttp/vex/render"
	"github.com/vexhttp/vex/router"
	"github.com/vexhttp/vex/router/route"
	"github.com/vexhttp/vex/telemetry"
	"github.com/vexhttp/vex/tracing"
)

// shutdownGrace bounds how long graceful shutdown waits for in-flight
// requests before cutting connections.
const shutdownGrace = 15 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}
}

func runServer(cfg config.Config) error {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger, err := logging.New(
		logging.WithFormat(logging.Format(cfg.LogFormat)),
		logging.WithLevel(level),
		logging.WithService(cfg.ServiceName, cfg.ServiceVersion),
	)
	if err != nil {
		return err
	}

	obs, metricsRecorder, tracer, err := buildTelemetry(cfg, logger)
	if err != nil {
		return err
	}

	runtime, err := bridge.New(
		bridge.WithTimeout(cfg.InvokeTimeout),
		bridge.WithQueueSize(cfg.QueueSize),
		bridge.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer runtime.Close()

	r, err := router.New(
		router.WithRuntime(runtime),
		router.WithRenderer(render.MustNew(render.WithDirs(cfg.TemplateDirs...))),
		router.WithLogger(logger),
		router.WithObservability(obs),
	)
	if err != nil {
		return err
	}

	if err := registerBuiltinRoutes(r); err != nil {
		return err
	}

	if metricsRecorder != nil && metricsRecorder.Handler() != nil {
		startMetricsServer(cfg.MetricsAddr, metricsRecorder.Handler(), logger)
	}

	// Serve blocks; run it aside so signals can drive shutdown.
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- r.Serve(cfg.Addr())
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()

		if err := r.Shutdown(ctx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
		if metricsRecorder != nil {
			if err := metricsRecorder.Shutdown(ctx); err != nil {
				logger.Error("metrics shutdown failed", "error", err)
			}
		}
		if tracer != nil {
			if err := tracer.Shutdown(ctx); err != nil {
				logger.Error("tracing shutdown failed", "error", err)
			}
		}
	}

	return nil
}

// buildTelemetry assembles the observability recorder from the enabled
// providers. With telemetry disabled, access logging still runs.
func buildTelemetry(cfg config.Config, logger *slog.Logger) (*telemetry.Telemetry, *metrics.Recorder, *tracing.Tracer, error) {
	opts := []telemetry.Option{telemetry.WithLogger(logger)}

	var metricsRecorder *metrics.Recorder
	var tracer *tracing.Tracer

	if cfg.OtelEnabled {
		var err error

		metricsOpts := []metrics.Option{
			metrics.WithServiceName(cfg.ServiceName),
			metrics.WithServiceVersion(cfg.ServiceVersion),
			metrics.WithEventHandler(metrics.DefaultEventHandler(logger)),
		}
		switch cfg.MetricsProvider {
		case "otlp":
			metricsOpts = append(metricsOpts, metrics.WithOTLP(cfg.OtlpEndpoint))
		case "stdout":
			metricsOpts = append(metricsOpts, metrics.WithStdout())
		default:
			metricsOpts = append(metricsOpts, metrics.WithPrometheus())
		}
		metricsRecorder, err = metrics.New(metricsOpts...)
		if err != nil {
			return nil, nil, nil, err
		}
		opts = append(opts, telemetry.WithMetrics(metricsRecorder))

		tracingOpts := []tracing.Option{
			tracing.WithServiceName(cfg.ServiceName),
			tracing.WithServiceVersion(cfg.ServiceVersion),
			tracing.WithEventHandler(tracing.DefaultEventHandler(logger)),
		}
		switch cfg.TracingProvider {
		case "otlp":
			tracingOpts = append(tracingOpts, tracing.WithOTLP(cfg.OtlpEndpoint))
		case "stdout":
			tracingOpts = append(tracingOpts, tracing.WithStdout())
		default:
			tracingOpts = append(tracingOpts, tracing.WithNoop())
		}
		tracer, err = tracing.New(tracingOpts...)
		if err != nil {
			return nil, nil, nil, err
		}
		opts = append(opts, telemetry.WithTracer(tracer))
	}

	return telemetry.New(opts...), metricsRecorder, tracer, nil
}

// registerBuiltinRoutes installs the routes every vexd instance serves.
// Application handlers are registered by embedding vexd's packages; the
// bare binary answers health checks.
func registerBuiltinRoutes(r *router.Router) error {
	return r.GET("/healthz", bridge.Sync(func(ctx context.Context, req *route.Request, args map[string]string) (any, error) {
		return map[string]any{"status": "ok", "version": version}, nil
	}))
}

// startMetricsServer exposes the Prometheus scrape endpoint on its own
// listener, kept off the application port.
func startMetricsServer(addr string, handler http.Handler, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("metrics server listening", "addr", addr, "path", "/metrics")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "error", err)
		}
	}()
}
