package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"appdash/internal/config"
	"appdash/internal/dashboard"
	"appdash/internal/logging"
	"appdash/internal/source"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "appdash",
		Short:         "Job application dashboard service and tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "configuration file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(extractCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads configuration and initializes the global logger
func setup() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if err := logging.InitializeLogging(cfg); err != nil {
		return nil, fmt.Errorf("initialize logging: %w", err)
	}
	return cfg, nil
}

// openDashboard returns a controller holding the named dataset. An existing
// file path is read directly; anything else is fetched from the configured
// source.
func openDashboard(ctx context.Context, cfg *config.Config, dataset string) (*dashboard.Controller, func(), error) {
	opts := dashboard.Options{
		PageSize:      cfg.Dashboard.PageSize,
		LocationFocus: cfg.Dashboard.LocationFocus,
		TopN:          cfg.Dashboard.TopN,
	}

	if info, err := os.Stat(dataset); err == nil && !info.IsDir() {
		raw, err := os.ReadFile(dataset)
		if err != nil {
			return nil, nil, err
		}
		ctrl := dashboard.New(nil, opts)
		if _, err := ctrl.LoadBytes(ctx, raw, fileFormat(dataset)); err != nil {
			return nil, nil, err
		}
		return ctrl, func() {}, nil
	}

	src, err := source.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	ctrl := dashboard.New(src, opts)
	if _, err := ctrl.Load(ctx, dataset); err != nil {
		src.Close()
		return nil, nil, err
	}
	return ctrl, func() { src.Close() }, nil
}

func fileFormat(path string) dashboard.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return dashboard.FormatHTML
	default:
		return dashboard.FormatJSON
	}
}
