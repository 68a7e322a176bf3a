// Package summary computes the counts behind stat cards and the category
// chart. All functions are pure and tolerate empty input.
package summary

import (
	"math"

	"github.com/mr1hm/go-cyber-patrol/internal/models"
	"github.com/mr1hm/go-cyber-patrol/internal/risk"
)

type CategoryCount struct {
	Category   string `json:"category"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

type SliceShare struct {
	models.CategorySlice
	Percentage int `json:"percentage"`
}

// ByCategory groups records by category in first-seen order.
func ByCategory(records []models.Record) []CategoryCount {
	total := len(records)
	if total == 0 {
		return []CategoryCount{}
	}

	index := make(map[string]int)
	var groups []CategoryCount
	for _, r := range records {
		i, ok := index[r.Category]
		if !ok {
			i = len(groups)
			index[r.Category] = i
			groups = append(groups, CategoryCount{Category: r.Category})
		}
		groups[i].Count++
	}

	for i := range groups {
		groups[i].Percentage = percent(float64(groups[i].Count), float64(total))
	}
	return groups
}

// ByStatus counts records per status. Callers pass the unfiltered collection
// so stat cards show global totals.
func ByStatus(records []models.Record) map[string]int {
	out := make(map[string]int)
	for _, r := range records {
		if r.Status == "" {
			continue
		}
		out[r.Status]++
	}
	return out
}

func BySeverity(records []models.Record, t risk.Thresholds) map[models.Severity]int {
	out := make(map[models.Severity]int)
	for i := range records {
		if sev, ok := risk.RecordSeverity(&records[i], t); ok {
			out[sev]++
		}
	}
	return out
}

// BySeverityPerKind counts severities of a mixed collection, classifying
// each record with the thresholds of its own kind.
func BySeverityPerKind(records []models.Record, thresholds func(models.Kind) risk.Thresholds) map[models.Severity]int {
	out := make(map[models.Severity]int)
	for i := range records {
		if sev, ok := risk.RecordSeverity(&records[i], thresholds(records[i].Kind)); ok {
			out[sev]++
		}
	}
	return out
}

// Shares computes tooltip percentages for weighted chart slices.
func Shares(slices []models.CategorySlice) []SliceShare {
	var sum float64
	for _, s := range slices {
		sum += s.Value
	}
	if sum <= 0 {
		return []SliceShare{}
	}

	out := make([]SliceShare, 0, len(slices))
	for _, s := range slices {
		out = append(out, SliceShare{CategorySlice: s, Percentage: percent(s.Value, sum)})
	}
	return out
}

// Breakdown turns record counts into chart slices colored from the
// descriptor table.
func Breakdown(records []models.Record) []models.CategorySlice {
	groups := ByCategory(records)
	out := make([]models.CategorySlice, 0, len(groups))
	for _, g := range groups {
		out = append(out, models.CategorySlice{
			Name:  g.Category,
			Value: float64(g.Count),
			Color: risk.ForCategory(g.Category).Style,
		})
	}
	return out
}

// Overview computes the dashboard stats contract from a snapshot. Each
// record's severity is derived with the thresholds of its own view.
func Overview(records []models.Record, thresholds func(models.Kind) risk.Thresholds) models.Overview {
	o := models.Overview{TotalPostsScanned: len(records)}
	for i := range records {
		r := &records[i]
		if sev, ok := risk.RecordSeverity(r, thresholds(r.Kind)); ok {
			switch sev {
			case models.SeverityHigh:
				o.SuspiciousContent++
				if r.Kind == models.KindAlert {
					o.HighRiskAlerts++
				}
			case models.SeverityMedium:
				o.SuspiciousContent++
			}
		}
		if r.Kind == models.KindHotel && r.Status == models.StatusMismatch {
			o.FakeHotelsDetected++
		}
	}
	return o
}

func percent(part, total float64) int {
	return int(math.Round(100 * part / total))
}
