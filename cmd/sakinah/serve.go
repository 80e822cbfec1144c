package main

import (
	"context"
	stderrors "errors"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/sakinah-dev/sakinah/internal/errors"
	"github.com/sakinah-dev/sakinah/internal/logging"
	"github.com/sakinah-dev/sakinah/pkg/devtools"
	"github.com/sakinah-dev/sakinah/pkg/scale"
	"github.com/sakinah-dev/sakinah/pkg/store"
	"github.com/sakinah-dev/sakinah/pkg/telemetry"
)

func serveCmd(root *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the devtools inspector",
		Long: `Start the devtools server over the app's stores.

The stores are hydrated from the configured persistence backend and saved on
every change. The server exposes:

  GET /healthz                 liveness
  GET /stores                  store names and fields
  GET /stores/{name}           current state
  GET /stores/{name}/watch     websocket stream of changes
  GET /scale?size=16           responsive sizes for the configured screen
  GET /metrics                 Prometheus metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Devtools.Addr = addr
			}
			timeout, err := cfg.ShutdownTimeout()
			if err != nil {
				return err
			}

			logger, err := logging.New(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return errors.New("E102").Wrap(err)
			}

			if err := scale.InitFrom(cfg); err != nil && !stderrors.Is(err, scale.ErrAlreadyInitialized) {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			storeOpts := []store.Option{}
			if cfg.Telemetry.Metrics {
				storeOpts = append(storeOpts, store.WithObserver(telemetry.NewMetrics(telemetry.WithRegistry(reg))))
			}
			if cfg.Telemetry.Tracing {
				tp, err := telemetry.SetupTracing(ctx, cfg.Telemetry.ServiceName, telemetry.NewLogExporter(logger))
				if err != nil {
					return err
				}
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
					defer cancel()
					if err := tp.Shutdown(shutdownCtx); err != nil {
						logger.Warn("tracer shutdown failed", "error", err)
					}
				}()
				storeOpts = append(storeOpts, store.WithObserver(telemetry.NewTracer(telemetry.WithTracerProvider(tp))))
			}

			app, closeApp, err := openApp(ctx, cfg, logger, storeOpts...)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), timeout)
				defer cancel()
				if err := closeApp(closeCtx); err != nil {
					logger.Error("saving state failed", "error", err)
				}
			}()

			ln, err := net.Listen("tcp", cfg.Devtools.Addr)
			if err != nil {
				return errors.New("E303").WithDetailf("listen on %s", cfg.Devtools.Addr).Wrap(err)
			}

			srv := devtools.New(app.Registry,
				devtools.WithLogger(logger),
				devtools.WithGatherer(reg),
			)
			w := cmd.OutOrStdout()
			success(w, "Devtools listening on http://%s", ln.Addr())
			info(w, "Backend: %s", cfg.Persist.Backend)
			info(w, "Stores: %v", app.Registry.Names())

			started := time.Now()
			if err := srv.Serve(ctx, ln, timeout); err != nil {
				return errors.New("E303").Wrap(err)
			}
			logger.Info("devtools stopped", "uptime", time.Since(started).Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides devtools.addr)")
	return cmd
}
