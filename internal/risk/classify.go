package risk

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mr1hm/go-cyber-patrol/internal/models"
)

var (
	ErrInvalidScore      = errors.New("invalid risk score")
	ErrInvalidThresholds = errors.New("invalid risk thresholds")
)

// Thresholds are inclusive lower bounds for the high and medium buckets.
type Thresholds struct {
	High   float64 `yaml:"high" json:"high"`
	Medium float64 `yaml:"medium" json:"medium"`
}

var (
	// DefaultThresholds apply to the alert and evidence views.
	DefaultThresholds = Thresholds{High: 80, Medium: 50}
	// HotelThresholds apply to the fake-hotel view.
	HotelThresholds = Thresholds{High: 70, Medium: 40}
)

func (t Thresholds) Validate() error {
	if t.Medium < 0 || t.High > 100 || t.Medium >= t.High {
		return fmt.Errorf("%w: high=%g medium=%g", ErrInvalidThresholds, t.High, t.Medium)
	}
	return nil
}

// Classify maps a score in [0,100] to a severity bucket.
func Classify(score float64, t Thresholds) (models.Severity, error) {
	if math.IsNaN(score) || score < 0 || score > 100 {
		return "", fmt.Errorf("%w: %g", ErrInvalidScore, score)
	}
	if err := t.Validate(); err != nil {
		return "", err
	}

	switch {
	case score >= t.High:
		return models.SeverityHigh, nil
	case score >= t.Medium:
		return models.SeverityMedium, nil
	default:
		return models.SeverityLow, nil
	}
}

// RecordSeverity prefers an explicit priority and falls back to classifying
// the numeric score. ok is false when neither yields a bucket.
func RecordSeverity(r *models.Record, t Thresholds) (models.Severity, bool) {
	if r.Priority != "" {
		sev, err := ParseSeverity(string(r.Priority))
		return sev, err == nil
	}
	if r.RiskScore == nil {
		return "", false
	}
	sev, err := Classify(*r.RiskScore, t)
	if err != nil {
		return "", false
	}
	return sev, true
}

func ParseSeverity(s string) (models.Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return models.SeverityHigh, nil
	case "medium":
		return models.SeverityMedium, nil
	case "low":
		return models.SeverityLow, nil
	default:
		return "", fmt.Errorf("unknown severity: %q", s)
	}
}
