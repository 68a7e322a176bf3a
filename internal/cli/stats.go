package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mr1hm/go-cyber-patrol/internal/models"
	"github.com/mr1hm/go-cyber-patrol/internal/statsclient"
	"github.com/mr1hm/go-cyber-patrol/internal/summary"
)

func newStatsCmd() *cobra.Command {
	var (
		baseURL string
		timeout time.Duration
		output  string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Fetch the dashboard overview and category breakdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}
			client := statsclient.New(baseURL, statsclient.WithHTTPClient(statsclient.NewHTTPClient(timeout)))
			dash := client.LoadDashboard(cmd.Context())

			if output == outputJSON {
				if err := writeJSON(cmd.OutOrStdout(), dash); err != nil {
					return err
				}
			} else {
				writeDashboard(cmd.OutOrStdout(), dash)
			}

			if dash.Stats.Phase == statsclient.PhaseError {
				return fmt.Errorf("stats unavailable: %s", dash.Stats.Error)
			}
			return nil
		},
	}

	defaultURL := os.Getenv("STATS_BASE_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}
	cmd.Flags().StringVar(&baseURL, "base-url", defaultURL, "stats backend base URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")
	return cmd
}

func writeDashboard(out io.Writer, dash statsclient.Dashboard) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "OVERVIEW\t%s\n", dash.Stats.Phase)
	if ov := dash.Stats.Data; ov != nil {
		fmt.Fprintf(tw, "  total posts scanned\t%d\n", ov.TotalPostsScanned)
		fmt.Fprintf(tw, "  suspicious content\t%d\n", ov.SuspiciousContent)
		fmt.Fprintf(tw, "  high risk alerts\t%d\n", ov.HighRiskAlerts)
		fmt.Fprintf(tw, "  fake hotels detected\t%d\n", ov.FakeHotelsDetected)
	} else if dash.Stats.Error != "" {
		fmt.Fprintf(tw, "  error\t%s\n", dash.Stats.Error)
	}

	fmt.Fprintf(tw, "CATEGORIES\t%s\n", dash.Categories.Phase)
	if dash.Categories.Phase == statsclient.PhaseSuccess {
		for _, s := range summary.Shares(dash.Categories.Data) {
			fmt.Fprintf(tw, "  %s\t%s\t%d%%\n", s.Name, formatValue(s.CategorySlice), s.Percentage)
		}
	} else if dash.Categories.Error != "" {
		fmt.Fprintf(tw, "  error\t%s\n", dash.Categories.Error)
	}
}

func formatValue(s models.CategorySlice) string {
	return fmt.Sprintf("%g", s.Value)
}
