package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/slovo/slovo/desktop/internal/agent"
	"github.com/slovo/slovo/desktop/internal/bridge"
	"github.com/slovo/slovo/desktop/internal/commands"
	"github.com/slovo/slovo/desktop/internal/config"
	"github.com/slovo/slovo/desktop/internal/grpchealth"
	"github.com/slovo/slovo/desktop/internal/logging"
	"github.com/slovo/slovo/desktop/internal/metrics"
	"github.com/slovo/slovo/desktop/internal/monitor"
	"github.com/slovo/slovo/desktop/internal/transport"
	"github.com/slovo/slovo/desktop/internal/window"
	"github.com/slovo/slovo/desktop/internal/ws"
)

// app is the wired desktop process.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	hub     *ws.Hub
	monitor *monitor.Monitor
	grpc    *grpchealth.Server // nil unless bridge.grpc_listen is set
	windows *window.Registry
	handler http.Handler
}

func newApp(cfg *config.Config, logger *slog.Logger, autostart bool) *app {
	a := &app{cfg: cfg, logger: logger}
	reg := metrics.NewRegistry()

	a.hub = ws.New(logger, cfg.Bridge.AllowedOrigins)
	a.windows = window.New(func(c window.Change) {
		if err := a.hub.Publish(window.EventName, c); err != nil {
			logger.Error("desktop: publish window change", "err", err)
		}
	})
	visible := !(autostart && cfg.Bridge.AutostartHidden)
	a.windows.Add(window.Main, visible)
	// Seed the hub so the first webview connection learns the visibility.
	a.hub.Publish(window.EventName, window.Change{Label: window.Main, Visible: visible}) //nolint:errcheck

	// One client serves both the monitor and the facade.
	client := agent.New(transport.New(cfg.Agent.BaseURL, cfg.Agent.Timeout,
		transport.WithUserAgent(userAgent())))

	opts := []monitor.Option{
		monitor.WithInterval(cfg.Agent.HealthInterval),
		monitor.WithHealthyStatus(cfg.Agent.HealthyStatus),
		monitor.WithLogger(logger),
		monitor.WithMetrics(reg),
		monitor.WithSink(monitor.SinkFunc(func(e monitor.Event) {
			if err := a.hub.Publish(monitor.EventName, e); err != nil {
				logger.Error("desktop: publish status change", "err", err)
			}
		})),
	}
	if cfg.Bridge.GRPCListen != "" {
		a.grpc = grpchealth.New(logger)
		opts = append(opts, monitor.WithSink(a.grpc))
	}
	a.monitor = monitor.New(client, opts...)

	facade := commands.New(client, a.windows,
		commands.WithLogger(logger),
		commands.WithHealthyStatus(cfg.Agent.HealthyStatus),
		commands.WithMetrics(reg),
	)
	a.handler = bridge.New(bridge.Deps{
		Commands:       facade,
		Windows:        a.windows,
		Events:         a.hub,
		Metrics:        reg,
		Logger:         logger,
		AllowedOrigins: cfg.Bridge.AllowedOrigins,
	})
	return a
}

// run serves until ctx is cancelled. grpcLis may be nil.
func (a *app) run(ctx context.Context, lis, grpcLis net.Listener) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	var wg sync.WaitGroup
	start := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	start(func() { a.hub.Run(ctx) })
	start(func() { a.monitor.Run(ctx) })

	errc := make(chan error, 2)
	if a.grpc != nil && grpcLis != nil {
		start(func() {
			if err := a.grpc.Serve(grpcLis); err != nil {
				errc <- fmt.Errorf("grpc health: %w", err)
			}
		})
	}

	httpSrv := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	start(func() {
		a.logger.Info("desktop: bridge listening", "addr", lis.Addr().String())
		if err := httpSrv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("bridge: %w", err)
		}
	})

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errc:
		a.logger.Error("desktop: server stopped", "err", runErr)
	}

	a.logger.Info("desktop: shutting down")
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if a.grpc != nil {
		a.grpc.Stop()
	}
	httpSrv.Shutdown(shutdownCtx) //nolint:errcheck
	wg.Wait()
	return runErr
}

func runServe(parent context.Context, flags *rootFlags, stderr io.Writer) error {
	cfg, watchable, err := loadConfig(flags.configPath)
	if err != nil {
		return err
	}
	logger, levelVar, err := logging.New(cfg.Log, stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	logger.Info("slovo-desktop starting",
		"version", version,
		"config", flags.configPath,
		"config_found", watchable,
		"agent", cfg.Agent.BaseURL,
		"health_interval", cfg.Agent.HealthInterval,
		"autostart", flags.autostart,
	)

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	lis, err := net.Listen("tcp", cfg.Bridge.Listen)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Bridge.Listen, err)
	}
	var grpcLis net.Listener
	if cfg.Bridge.GRPCListen != "" {
		grpcLis, err = net.Listen("tcp", cfg.Bridge.GRPCListen)
		if err != nil {
			lis.Close()
			return fmt.Errorf("listen on %s: %w", cfg.Bridge.GRPCListen, err)
		}
	}

	if watchable {
		go func() {
			// Only the log level is applied live; other changes need a restart.
			err := config.Watch(ctx, flags.configPath, func(next *config.Config) {
				logging.Apply(levelVar, next.Log)
			})
			if err != nil {
				logger.Warn("desktop: config watch unavailable", "err", err)
			}
		}()
	}

	return newApp(cfg, logger, flags.autostart).run(ctx, lis, grpcLis)
}
