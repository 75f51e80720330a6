package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"appdash/internal/logging"
	"appdash/pkg/models"
)

func statsCmd() *cobra.Command {
	var (
		location string
		top      int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "stats [dataset]",
		Short: "Print KPIs and top charts for a dataset name or file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			defer logging.CloseLogging()

			ctrl, closeSource, err := openDashboard(cmd.Context(), cfg, args[0])
			if err != nil {
				return err
			}
			defer closeSource()

			kpis := ctrl.KPIs(location)
			charts := ctrl.Charts(top)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{"kpis": kpis, "charts": charts})
			}
			printStats(cmd.OutOrStdout(), kpis, charts)
			return nil
		},
	}

	cmd.Flags().StringVar(&location, "location", "", "location for the location KPI (defaults to the configured focus)")
	cmd.Flags().IntVarP(&top, "top", "n", 5, "entries per top chart")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")
	return cmd
}

func printStats(w io.Writer, kpis models.KPIs, charts models.Charts) {
	fmt.Fprintf(w, "Total applications: %d\n", kpis.Total)
	fmt.Fprintf(w, "Response rate:      %s%%\n", kpis.ResponseRate)
	fmt.Fprintf(w, "%s rate: %s%%\n", kpis.Location, kpis.LocationRate)

	printCounts(w, "Status", charts.Status)
	printCounts(w, "Top locations", charts.TopLocations)
	printCounts(w, "Top titles", charts.TopTitles)
	printCounts(w, "Timeline", charts.Timeline)
}

func printCounts(w io.Writer, heading string, counts []models.Count) {
	fmt.Fprintf(w, "\n%s\n", heading)
	if len(counts) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, c := range counts {
		fmt.Fprintf(w, "  %-40s %d\n", c.Key, c.Count)
	}
}
