// Package report exports a single record as a JSON or PDF evidence report.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"

	"github.com/mr1hm/go-cyber-patrol/internal/models"
	"github.com/mr1hm/go-cyber-patrol/internal/risk"
)

const (
	FormatJSON = "json"
	FormatPDF  = "pdf"
)

type Report struct {
	ReportID    string          `json:"report_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Severity    models.Severity `json:"severity,omitempty"`
	Record      models.Record   `json:"record"`
}

func New(r models.Record, t risk.Thresholds, now time.Time) Report {
	rep := Report{
		ReportID:    uuid.NewString(),
		GeneratedAt: now.UTC(),
		Record:      r,
	}
	if sev, ok := risk.RecordSeverity(&r, t); ok {
		rep.Severity = sev
	}
	return rep
}

func GenerateJSON(rep Report) ([]byte, error) {
	return json.MarshalIndent(rep, "", "  ")
}

var severityColors = map[models.Severity][3]int{
	models.SeverityHigh:   {250, 77, 86},
	models.SeverityMedium: {241, 194, 27},
	models.SeverityLow:    {66, 190, 101},
}

func GeneratePDF(rep Report) (*bytes.Buffer, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(rep.GeneratedAt)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	r := rep.Record

	pdf.SetFont("Arial", "B", 20)
	pdf.SetTextColor(15, 98, 254)
	pdf.Cell(0, 10, fmt.Sprintf("Cyber Patrol %s Report", kindTitle(r.Kind)))
	pdf.Ln(12)

	pdf.SetFillColor(240, 240, 240)
	pdf.Rect(10, 22, 190, 40, "F")

	pdf.SetFont("Arial", "B", 10)
	pdf.SetTextColor(0, 0, 0)

	pdf.SetXY(12, 25)
	pdf.Cell(0, 10, tr(fmt.Sprintf("Record: %s", r.ID)))
	pdf.SetXY(120, 25)
	pdf.Cell(0, 10, fmt.Sprintf("Generated: %s", rep.GeneratedAt.Format("2006-01-02 15:04")))

	pdf.SetXY(12, 32)
	pdf.SetFont("Courier", "", 9)
	pdf.Cell(0, 10, tr(fmt.Sprintf("Platform: %s  Category: %s  Seen: %s", r.Platform, r.Category, r.Timestamp)))

	pdf.SetXY(12, 40)
	pdf.SetFont("Arial", "B", 12)
	if c, ok := severityColors[rep.Severity]; ok {
		pdf.SetTextColor(c[0], c[1], c[2])
	}
	pdf.Cell(0, 10, riskLine(rep))

	pdf.SetXY(12, 48)
	pdf.SetFont("Courier", "", 8)
	pdf.SetTextColor(90, 90, 90)
	pdf.Cell(0, 10, "Report ID: "+rep.ReportID)

	pdf.Ln(20)

	for _, sec := range sections(r) {
		if len(sec.lines) == 0 {
			continue
		}
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Arial", "B", 14)
		pdf.Cell(0, 10, sec.title)
		pdf.Ln(10)

		pdf.SetFont("Courier", "", 10)
		pdf.SetFillColor(30, 30, 30)
		pdf.SetTextColor(255, 255, 255)
		for _, line := range sec.lines {
			pdf.MultiCell(0, 7, tr(" > "+line), "0", "L", true)
		}
		pdf.Ln(5)
	}

	var buf bytes.Buffer
	err := pdf.Output(&buf)
	return &buf, err
}

type section struct {
	title string
	lines []string
}

func sections(r models.Record) []section {
	switch r.Kind {
	case models.KindAlert:
		return []section{
			{"Alert", nonEmpty(r.Message)},
			{"Details", nonEmpty(r.Details)},
		}
	case models.KindEvidence:
		return []section{
			{"Content Snippet", nonEmpty(r.Snippet)},
			{"Detected Keywords", r.Keywords},
		}
	case models.KindHotel:
		evidence := make([]string, 0, len(r.Evidence))
		keys := make([]string, 0, len(r.Evidence))
		for k := range r.Evidence {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			evidence = append(evidence, fmt.Sprintf("%s: %s", k, r.Evidence[k]))
		}
		return []section{
			{"Domain", nonEmpty(strings.TrimSpace(r.Domain + "  " + r.ClaimedHotel))},
			{"Detected Issues", r.DetectedIssues},
			{"Evidence", evidence},
		}
	}
	return nil
}

func riskLine(rep Report) string {
	sev := "unclassified"
	if rep.Severity != "" {
		sev = string(rep.Severity)
	}
	if rep.Record.RiskScore != nil {
		return fmt.Sprintf("Risk Score: %.0f/100 (%s)", *rep.Record.RiskScore, sev)
	}
	return fmt.Sprintf("Priority: %s", sev)
}

func kindTitle(k models.Kind) string {
	switch k {
	case models.KindAlert:
		return "Alert"
	case models.KindHotel:
		return "Hotel Verification"
	default:
		return "Evidence"
	}
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}
