package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mr1hm/go-cyber-patrol/internal/config"
	"github.com/mr1hm/go-cyber-patrol/internal/filter"
	"github.com/mr1hm/go-cyber-patrol/internal/fixtures"
	"github.com/mr1hm/go-cyber-patrol/internal/models"
	"github.com/mr1hm/go-cyber-patrol/internal/risk"
	"github.com/mr1hm/go-cyber-patrol/internal/summary"
)

type recordsOptions struct {
	file        string
	viewsConfig string
	view        string
	kind        string
	platform    string
	category    string
	severity    string
	status      string
	minRisk     float64
	search      string
	window      string
	summary     bool
	output      string

	now func() time.Time
}

type recordRow struct {
	models.Record
	Severity models.Severity `json:"severity,omitempty"`
}

type recordsSummary struct {
	Total      int                     `json:"total"`
	Matched    int                     `json:"matched"`
	ByCategory []summary.CategoryCount `json:"by_category"`
	ByStatus   map[string]int          `json:"by_status"`
	BySeverity map[models.Severity]int `json:"by_severity"`
}

func newRecordsCmd() *cobra.Command {
	opts := &recordsOptions{now: time.Now}

	cmd := &cobra.Command{
		Use:   "records",
		Short: "Filter and summarise a record file",
		Long: "Loads records in the fixtures YAML layout (the embedded mock set when --file is empty), " +
			"applies the filter flags and prints the matching records or their summary.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecords(cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.file, "file", "", "record file (default: embedded mock data)")
	f.StringVar(&opts.viewsConfig, "views-config", "", "YAML file overriding view thresholds")
	f.StringVar(&opts.view, "view", "", "view name: alerts, evidence, hotels or a configured view")
	f.StringVar(&opts.kind, "kind", "", "record kind: alert, evidence or hotel")
	f.StringVar(&opts.platform, "platform", filter.All, "platform: telegram, instagram, web or all")
	f.StringVar(&opts.category, "category", filter.All, "category, exact match")
	f.StringVar(&opts.severity, "severity", filter.All, "severity: high, medium, low or all")
	f.StringVar(&opts.status, "status", filter.All, "status")
	f.Float64Var(&opts.minRisk, "min-risk", 0, "minimum risk score (0 disables)")
	f.StringVar(&opts.search, "q", "", "case-insensitive text search")
	f.StringVar(&opts.window, "window", filter.WindowAll, "time window: all or last24h")
	f.BoolVar(&opts.summary, "summary", false, "print category, status and severity counts instead of records")
	f.StringVarP(&opts.output, "output", "o", outputTable, "output format: table or json")
	return cmd
}

func runRecords(out io.Writer, opts *recordsOptions) error {
	if err := checkOutput(opts.output); err != nil {
		return err
	}

	views := config.DefaultViews()
	if opts.viewsConfig != "" {
		loaded, err := config.LoadViews(opts.viewsConfig)
		if err != nil {
			return err
		}
		views = loaded
	}

	view, scoped, err := views.Resolve(opts.view, models.Kind(strings.ToLower(opts.kind)))
	if err != nil {
		return err
	}

	set := filter.FilterSet{
		Kind:         view.Kind,
		Platform:     strings.ToLower(opts.platform),
		Category:     opts.category,
		Severity:     strings.ToLower(opts.severity),
		Status:       strings.ToLower(opts.status),
		MinRiskScore: opts.minRisk,
		SearchText:   opts.search,
		TimeWindow:   opts.window,
		Thresholds:   view.Thresholds,
	}
	if err := set.Validate(); err != nil {
		return err
	}

	var data *fixtures.Set
	if opts.file == "" {
		data, err = fixtures.Default()
	} else {
		data, err = fixtures.LoadFile(opts.file)
	}
	if err != nil {
		return err
	}

	thresholds := views.ThresholdsFor
	if scoped {
		thresholds = func(models.Kind) risk.Thresholds { return view.Thresholds }
	}

	// the collection a view starts from, before any predicate
	collection := data.Records
	if view.Kind != "" {
		collection = filter.Apply(data.Records, filter.FilterSet{Kind: view.Kind}, opts.now())
	}
	matched := filter.ApplyPerKind(collection, set, opts.now(), thresholds)

	if opts.summary {
		s := recordsSummary{
			Total:      len(collection),
			Matched:    len(matched),
			ByCategory: summary.ByCategory(matched),
			ByStatus:   summary.ByStatus(matched),
			BySeverity: summary.BySeverityPerKind(matched, thresholds),
		}
		if opts.output == outputJSON {
			return writeJSON(out, s)
		}
		writeSummary(out, s)
		return nil
	}

	rows := make([]recordRow, 0, len(matched))
	for i := range matched {
		sev, _ := risk.RecordSeverity(&matched[i], thresholds(matched[i].Kind))
		rows = append(rows, recordRow{Record: matched[i], Severity: sev})
	}
	if opts.output == outputJSON {
		return writeJSON(out, rows)
	}
	writeRecords(out, rows)
	return nil
}

func writeRecords(out io.Writer, rows []recordRow) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tKIND\tPLATFORM\tCATEGORY\tRISK\tSEVERITY\tSTATUS\tTIMESTAMP\tSUMMARY")
	for _, r := range rows {
		score := "-"
		if r.RiskScore != nil {
			score = fmt.Sprintf("%g", *r.RiskScore)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Kind, r.Platform, r.Category, score,
			orDash(string(r.Severity)), orDash(r.Status), r.Timestamp, truncate(headline(&r.Record), 60))
	}
}

func writeSummary(out io.Writer, s recordsSummary) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "MATCHED\t%d of %d\n", s.Matched, s.Total)
	fmt.Fprintln(tw, "CATEGORY\tCOUNT\tSHARE")
	for _, c := range s.ByCategory {
		fmt.Fprintf(tw, "%s\t%d\t%d%%\n", c.Category, c.Count, c.Percentage)
	}
	fmt.Fprintln(tw, "SEVERITY\tCOUNT")
	for _, sev := range []models.Severity{models.SeverityHigh, models.SeverityMedium, models.SeverityLow} {
		fmt.Fprintf(tw, "%s\t%d\n", sev, s.BySeverity[sev])
	}
	if len(s.ByStatus) > 0 {
		fmt.Fprintln(tw, "STATUS\tCOUNT")
		for _, st := range sortedKeys(s.ByStatus) {
			fmt.Fprintf(tw, "%s\t%d\n", st, s.ByStatus[st])
		}
	}
}
