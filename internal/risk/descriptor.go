package risk

import (
	"strings"

	"github.com/mr1hm/go-cyber-patrol/internal/models"
)

// Descriptor is what a view needs to render a tag: an icon and a style class.
type Descriptor struct {
	Icon  string `json:"icon"`
	Style string `json:"style"`
}

var fallbackDescriptor = Descriptor{Icon: "globe", Style: "text-muted-foreground border-border"}

var platformDescriptors = map[models.Platform]Descriptor{
	models.PlatformTelegram:  {Icon: "message-square", Style: "platform-telegram"},
	models.PlatformInstagram: {Icon: "camera", Style: "platform-instagram"},
	models.PlatformWeb:       {Icon: "globe", Style: "platform-web"},
}

var severityDescriptors = map[models.Severity]Descriptor{
	models.SeverityHigh:   {Icon: "alert-triangle", Style: "text-risk-high border-risk-high bg-risk-high/10"},
	models.SeverityMedium: {Icon: "alert-triangle", Style: "text-risk-medium border-risk-medium bg-risk-medium/10"},
	models.SeverityLow:    {Icon: "shield", Style: "text-risk-low border-risk-low bg-risk-low/10"},
}

var statusDescriptors = map[string]Descriptor{
	models.StatusNew:           {Icon: "bell", Style: "badge-destructive pulse-alert"},
	models.StatusInvestigating: {Icon: "search", Style: "badge-secondary text-risk-medium"},
	models.StatusResolved:      {Icon: "shield", Style: "badge-outline text-risk-low"},
	models.StatusVerified:      {Icon: "check-circle", Style: "badge-outline text-risk-low"},
	models.StatusMismatch:      {Icon: "x-circle", Style: "badge-destructive"},
	models.StatusSuspicious:    {Icon: "alert-triangle", Style: "badge-secondary text-risk-medium"},
}

// categoryDescriptors is keyed by lower-cased category; Style doubles as the
// chart color.
var categoryDescriptors = map[string]Descriptor{
	"scam":         {Icon: "dollar-sign", Style: "hsl(var(--risk-high))"},
	"loan scam":    {Icon: "dollar-sign", Style: "hsl(var(--risk-high))"},
	"loan scams":   {Icon: "dollar-sign", Style: "hsl(var(--risk-high))"},
	"job scam":     {Icon: "briefcase", Style: "hsl(var(--risk-medium))"},
	"job scams":    {Icon: "briefcase", Style: "hsl(var(--risk-medium))"},
	"fake-domain":  {Icon: "globe", Style: "hsl(var(--neon-blue))"},
	"fake hotel":   {Icon: "hotel", Style: "hsl(var(--neon-blue))"},
	"fake hotels":  {Icon: "hotel", Style: "hsl(var(--neon-blue))"},
	"gambling":     {Icon: "dollar-sign", Style: "hsl(var(--warning))"},
	"prostitution": {Icon: "shield", Style: "hsl(var(--risk-low))"},
}

func ForPlatform(p models.Platform) Descriptor {
	if d, ok := platformDescriptors[p]; ok {
		return d
	}
	return fallbackDescriptor
}

func ForSeverity(s models.Severity) Descriptor {
	if d, ok := severityDescriptors[s]; ok {
		return d
	}
	return fallbackDescriptor
}

func ForStatus(status string) Descriptor {
	if d, ok := statusDescriptors[status]; ok {
		return d
	}
	return fallbackDescriptor
}

func ForCategory(category string) Descriptor {
	if d, ok := categoryDescriptors[strings.ToLower(category)]; ok {
		return d
	}
	return Descriptor{Icon: "alert-triangle", Style: "hsl(var(--muted))"}
}

// Display bundles the descriptors of one record.
type Display struct {
	Severity models.Severity `json:"severity,omitempty"`
	Platform Descriptor      `json:"platform"`
	Category Descriptor      `json:"category"`
	Risk     Descriptor      `json:"risk"`
	Status   *Descriptor     `json:"status,omitempty"`
}

func Describe(r *models.Record, t Thresholds) Display {
	d := Display{
		Platform: ForPlatform(r.Platform),
		Category: ForCategory(r.Category),
		Risk:     fallbackDescriptor,
	}
	if sev, ok := RecordSeverity(r, t); ok {
		d.Severity = sev
		d.Risk = ForSeverity(sev)
	}
	if r.Status != "" {
		st := ForStatus(r.Status)
		d.Status = &st
	}
	return d
}
