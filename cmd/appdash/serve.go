package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"appdash/internal/api/handlers"
	"appdash/internal/api/routes"
	"appdash/internal/config"
	"appdash/internal/dashboard"
	"appdash/internal/exporter"
	"appdash/internal/grpc/interceptors"
	"appdash/internal/grpc/server"
	"appdash/internal/logging"
	"appdash/internal/mux"
	"appdash/internal/source"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and gRPC dashboard API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			defer logging.CloseLogging()
			return serve(cfg)
		},
	}
}

func serve(cfg *config.Config) error {
	logger := logging.GetGlobalLogger()
	logger.Info("Starting appdash", map[string]interface{}{
		"version": handlers.Version,
		"source":  cfg.Source.Type,
	})

	src, err := source.New(cfg)
	if err != nil {
		return fmt.Errorf("create dataset source: %w", err)
	}
	defer src.Close()

	registry := dashboard.NewRegistry(func() *dashboard.Controller {
		return dashboard.New(src, dashboard.Options{
			PageSize:       cfg.Dashboard.PageSize,
			LocationFocus:  cfg.Dashboard.LocationFocus,
			TopN:           cfg.Dashboard.TopN,
			DefaultDataset: cfg.Dashboard.DefaultDataset,
		})
	}, logger)

	checks := readinessChecks(src)
	grpcServer := server.NewServer()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	routes.SetupRoutes(e, cfg, routes.Dependencies{
		Registry:    registry,
		Publisher:   exporter.NewPublisher(cfg),
		Checks:      checks,
		GRPCMetrics: grpcServer.Metrics(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	grpcServer.WatchReadiness(ctx, 15*time.Second, combine(checks))
	interceptors.StartMetricsReporting(ctx, grpcServer.Metrics(), 5*time.Minute)

	registry.StartCleanup(ctx, 10*time.Minute, cfg.Dashboard.SessionMaxAge)

	multiplexer := mux.NewMultiplexer(cfg, grpcServer, e)
	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	if err := multiplexer.Start(address); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	logger.Info("Shutting down server...", map[string]interface{}{"signal": sig.String()})
	cancel()
	if err := multiplexer.Stop(); err != nil {
		logger.Error("Error stopping multiplexer", map[string]interface{}{"error": err.Error()})
	}
	logger.Info("Server shutdown complete")
	return nil
}

// readinessChecks tests the dataset backend the server depends on
func readinessChecks(src source.Source) map[string]handlers.Check {
	checks := map[string]handlers.Check{}

	switch s := src.(type) {
	case *source.RedisSource:
		checks["redis"] = s.Ping
	case *source.DirSource:
		checks["data_dir"] = func(context.Context) error {
			info, err := os.Stat(s.Dir())
			if err != nil {
				return err
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", s.Dir())
			}
			return nil
		}
	}
	return checks
}

// combine runs checks in name order and returns the first failure
func combine(checks map[string]handlers.Check) server.ReadinessFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(ctx context.Context) error {
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
		return nil
	}
}
