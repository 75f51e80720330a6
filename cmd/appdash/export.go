package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"appdash/internal/api/validation"
	"appdash/internal/exporter"
	"appdash/internal/logging"
	"appdash/pkg/models"
	"appdash/pkg/utils"
)

func exportCmd() *cobra.Command {
	var (
		filter    models.FilterState
		sortState models.SortState
		output    string
		publish   bool
	)

	cmd := &cobra.Command{
		Use:   "export [dataset]",
		Short: "Write the filtered and sorted view of a dataset as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			defer logging.CloseLogging()

			v := validation.New()
			if err := v.Struct(filter); err != nil {
				return fmt.Errorf("invalid filter: %w", err)
			}
			if err := v.Struct(sortState); err != nil {
				return fmt.Errorf("invalid sort: %w", err)
			}

			ctrl, closeSource, err := openDashboard(cmd.Context(), cfg, args[0])
			if err != nil {
				return err
			}
			defer closeSource()

			ctrl.SetFilter(filter)
			if !sortState.IsNone() {
				ctrl.SetSort(sortState.Normalized())
			}

			if publish {
				url, err := exporter.NewPublisher(cfg).Publish(cmd.Context(), ctrl.View())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), url)
				return nil
			}

			csv, err := ctrl.Export()
			if errors.Is(err, exporter.ErrEmptyExport) {
				fmt.Fprintln(cmd.ErrOrStderr(), "No rows match the filters; nothing exported.")
				return nil
			}
			if err != nil {
				return err
			}

			if output == "-" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), csv)
				return err
			}
			path := utils.GetStringOrDefault(output, cfg.Export.FileName)
			if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s\n", len(ctrl.View()), path)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&filter.DateStart, "from", "", "earliest application date (YYYY-MM-DD)")
	flags.StringVar(&filter.DateEnd, "to", "", "latest application date (YYYY-MM-DD)")
	flags.StringVar(&filter.Status, "status", "", "status substring")
	flags.StringVar(&filter.Title, "title", "", "title substring")
	flags.StringVar(&filter.Company, "company", "", "company substring")
	flags.StringVar(&filter.Location, "location", "", "location substring")
	flags.StringVar((*string)(&sortState.Column), "sort", "", "sort column")
	flags.StringVar((*string)(&sortState.Direction), "direction", "asc", "sort direction (asc or desc)")
	flags.StringVarP(&output, "output", "o", "", "output file, or - for stdout")
	flags.BoolVar(&publish, "publish", false, "upload the CSV to object storage and print its URL")
	return cmd
}
