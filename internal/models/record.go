package models

type Kind string

const (
	KindAlert    Kind = "alert"
	KindEvidence Kind = "evidence"
	KindHotel    Kind = "hotel"
)

func (k Kind) Valid() bool {
	switch k {
	case KindAlert, KindEvidence, KindHotel:
		return true
	}
	return false
}

type Platform string

const (
	PlatformTelegram  Platform = "telegram"
	PlatformInstagram Platform = "instagram"
	PlatformWeb       Platform = "web"
)

func (p Platform) Valid() bool {
	switch p {
	case PlatformTelegram, PlatformInstagram, PlatformWeb:
		return true
	}
	return false
}

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// Alert lifecycle statuses.
const (
	StatusNew           = "new"
	StatusInvestigating = "investigating"
	StatusResolved      = "resolved"
)

// Hotel verification statuses.
const (
	StatusVerified   = "verified"
	StatusMismatch   = "mismatch"
	StatusSuspicious = "suspicious"
)

// Record is a single flagged item: an alert, an evidence entry or a
// hotel-verification result. Records are delivered as an immutable snapshot.
type Record struct {
	ID        string   `json:"id" yaml:"id"`
	Kind      Kind     `json:"kind" yaml:"kind"`
	Platform  Platform `json:"platform" yaml:"platform"`
	Category  string   `json:"category" yaml:"category"`
	RiskScore *float64 `json:"risk_score,omitempty" yaml:"risk_score,omitempty"` // 0-100 when present
	Priority  Severity `json:"priority,omitempty" yaml:"priority,omitempty"`
	Status    string   `json:"status,omitempty" yaml:"status,omitempty"`
	Timestamp string   `json:"timestamp" yaml:"timestamp"` // display-formatted

	// alert
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
	Details string `json:"details,omitempty" yaml:"details,omitempty"`

	// evidence
	Snippet  string   `json:"snippet,omitempty" yaml:"snippet,omitempty"`
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// hotel
	Domain         string            `json:"domain,omitempty" yaml:"domain,omitempty"`
	ClaimedHotel   string            `json:"claimed_hotel,omitempty" yaml:"claimed_hotel,omitempty"`
	DetectedIssues []string          `json:"detected_issues,omitempty" yaml:"detected_issues,omitempty"`
	Evidence       map[string]string `json:"evidence,omitempty" yaml:"evidence,omitempty"` // phone, email, address, pricing
}

// SearchFields returns the text a free-text search is matched against.
func (r *Record) SearchFields() []string {
	switch r.Kind {
	case KindAlert:
		return []string{r.Message, r.Details}
	case KindEvidence:
		fields := make([]string, 0, len(r.Keywords)+2)
		fields = append(fields, r.ID, r.Snippet)
		return append(fields, r.Keywords...)
	case KindHotel:
		return []string{r.ID, r.Domain, r.ClaimedHotel}
	default:
		return []string{r.Message, r.Snippet}
	}
}

func Score(v float64) *float64 {
	return &v
}
