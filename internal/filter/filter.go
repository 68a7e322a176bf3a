package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/mr1hm/go-cyber-patrol/internal/models"
	"github.com/mr1hm/go-cyber-patrol/internal/risk"
)

const (
	All = "all"

	WindowAll     = "all"
	WindowLast24h = "last24h"
)

// FilterSet is the active predicate set of one view. Empty string fields and
// "all" disable the matching predicate.
type FilterSet struct {
	Kind         models.Kind
	Platform     string
	Category     string
	Severity     string
	Status       string
	MinRiskScore float64
	SearchText   string
	TimeWindow   string
	Thresholds   risk.Thresholds
}

// Identity returns a FilterSet that lets every record through.
func Identity() FilterSet {
	return FilterSet{
		Platform:   All,
		Category:   All,
		Severity:   All,
		Status:     All,
		TimeWindow: WindowAll,
		Thresholds: risk.DefaultThresholds,
	}
}

func (f FilterSet) Validate() error {
	if active(f.Platform) && !models.Platform(f.Platform).Valid() {
		return fmt.Errorf("unknown platform: %q", f.Platform)
	}
	if active(f.Severity) {
		if _, err := risk.ParseSeverity(f.Severity); err != nil {
			return err
		}
	}
	if f.MinRiskScore < 0 || f.MinRiskScore > 100 {
		return fmt.Errorf("min risk score out of range: %g", f.MinRiskScore)
	}
	switch f.TimeWindow {
	case "", WindowAll, WindowLast24h:
	default:
		return fmt.Errorf("unknown time window: %q", f.TimeWindow)
	}
	return f.Thresholds.Validate()
}

// Apply returns the records matching every active predicate, in their
// original order. The input slice is not modified.
func Apply(records []models.Record, f FilterSet, now time.Time) []models.Record {
	out := make([]models.Record, 0, len(records))
	for i := range records {
		if f.Match(&records[i], now) {
			out = append(out, records[i])
		}
	}
	return out
}

// ApplyPerKind is Apply for mixed collections: each record's severity is
// derived with the thresholds of its own kind instead of f.Thresholds.
func ApplyPerKind(records []models.Record, f FilterSet, now time.Time, thresholds func(models.Kind) risk.Thresholds) []models.Record {
	out := make([]models.Record, 0, len(records))
	for i := range records {
		set := f
		set.Thresholds = thresholds(records[i].Kind)
		if set.Match(&records[i], now) {
			out = append(out, records[i])
		}
	}
	return out
}

func (f FilterSet) Match(r *models.Record, now time.Time) bool {
	if f.Kind != "" && r.Kind != f.Kind {
		return false
	}
	if active(f.Platform) && string(r.Platform) != f.Platform {
		return false
	}
	if active(f.Category) && r.Category != f.Category {
		return false
	}
	if active(f.Status) && r.Status != f.Status {
		return false
	}
	if active(f.Severity) {
		sev, ok := risk.RecordSeverity(r, f.Thresholds)
		if !ok || string(sev) != strings.ToLower(f.Severity) {
			return false
		}
	}
	if f.MinRiskScore > 0 {
		if r.RiskScore == nil || *r.RiskScore < f.MinRiskScore {
			return false
		}
	}
	if f.SearchText != "" && !matchesText(r, f.SearchText) {
		return false
	}
	if f.TimeWindow == WindowLast24h {
		ts, err := ParseTimestamp(r.Timestamp, now)
		if err != nil {
			return false
		}
		if ts.Before(now.Add(-24*time.Hour)) || ts.After(now) {
			return false
		}
	}
	return true
}

func matchesText(r *models.Record, text string) bool {
	needle := strings.ToLower(text)
	for _, field := range r.SearchFields() {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func active(v string) bool {
	return v != "" && v != All
}
