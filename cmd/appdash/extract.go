package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"appdash/internal/ingest"
	"appdash/internal/logging"
	"appdash/pkg/models"
)

func extractCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "extract [page.html]",
		Short: "Extract applications from a saved history page into a dataset JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := setup(); err != nil {
				return err
			}
			defer logging.CloseLogging()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			now := time.Now()
			ds, err := ingest.ExtractHTML(f, now)
			if err != nil {
				return err
			}

			if err := writeDataset(output, ds, now); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d applications to %s\n", ds.Len(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", filepath.Join("data", "indeed-applications.json"), "dataset file to write")
	return cmd
}

// writeDataset writes ds as indented JSON, first copying any existing file
// to its backup name. A failed backup is logged and does not stop the write.
func writeDataset(path string, ds *models.Dataset, now time.Time) error {
	logger := logging.GetGlobalLogger()

	if existing, err := os.ReadFile(path); err == nil {
		backup := backupPath(path, now)
		if err := os.WriteFile(backup, existing, 0o644); err != nil {
			logger.Warn("Could not create backup", map[string]interface{}{
				"path":  backup,
				"error": err.Error(),
			})
		} else {
			logger.Info("Created backup", map[string]interface{}{"path": backup})
		}
	}

	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return err
	}

	logger.Info("Dataset written", map[string]interface{}{
		"path":    path,
		"records": ds.Len(),
	})
	return nil
}

// backupPath turns data/x.json into data/x.backup_YYYYMMDD_HHMMSS.json
func backupPath(path string, now time.Time) string {
	ext := filepath.Ext(path)
	if ext == "" {
		ext = ".json"
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".backup_" + now.Format("20060102_150405") + ext
}
