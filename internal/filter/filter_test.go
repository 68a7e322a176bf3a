package filter

import (
	"testing"
	"time"

	"github.com/mr1hm/go-cyber-patrol/internal/fixtures"
	"github.com/mr1hm/go-cyber-patrol/internal/models"
	"github.com/mr1hm/go-cyber-patrol/internal/risk"
)

var testNow = time.Date(2024, 1, 15, 15, 0, 0, 0, time.UTC)

func loadRecords(t *testing.T) []models.Record {
	t.Helper()
	set, err := fixtures.Default()
	if err != nil {
		t.Fatalf("failed to load fixtures: %v", err)
	}
	return set.Records
}

func ids(records []models.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isSubsequence(sub, full []string) bool {
	j := 0
	for _, id := range full {
		if j < len(sub) && sub[j] == id {
			j++
		}
	}
	return j == len(sub)
}

func TestApply_IdentityReturnsInput(t *testing.T) {
	records := loadRecords(t)

	got := Apply(records, Identity(), testNow)
	if !equalIDs(ids(got), ids(records)) {
		t.Errorf("expected identity filter to return all records, got %v", ids(got))
	}

	zero := Apply(records, FilterSet{}, testNow)
	if len(zero) != len(records) {
		t.Errorf("expected zero FilterSet to return %d records, got %d", len(records), len(zero))
	}
}

func TestApply_HighPriorityAlerts(t *testing.T) {
	records := loadRecords(t)

	f := Identity()
	f.Kind = models.KindAlert
	f.Severity = "high"

	got := ids(Apply(records, f, testNow))
	want := []string{"A001", "A002", "A005"}
	if !equalIDs(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestApply_HighPriorityMockAlerts(t *testing.T) {
	// A002 downgraded so the set matches the alert feed where only two
	// alerts carry the high tag.
	records := []models.Record{
		{ID: "A001", Kind: models.KindAlert, Platform: models.PlatformTelegram, Category: "scam", Priority: models.SeverityHigh},
		{ID: "A002", Kind: models.KindAlert, Platform: models.PlatformWeb, Category: "fake-domain", Priority: models.SeverityMedium},
		{ID: "A003", Kind: models.KindAlert, Platform: models.PlatformInstagram, Category: "prostitution", Priority: models.SeverityMedium},
		{ID: "A004", Kind: models.KindAlert, Platform: models.PlatformWeb, Category: "gambling", Priority: models.SeverityLow},
		{ID: "A005", Kind: models.KindAlert, Platform: models.PlatformTelegram, Category: "scam", Priority: models.SeverityHigh},
	}

	got := ids(Apply(records, FilterSet{Severity: "high"}, testNow))
	if !equalIDs(got, []string{"A001", "A005"}) {
		t.Errorf("expected [A001 A005], got %v", got)
	}
}

func TestApply_Predicates(t *testing.T) {
	records := loadRecords(t)

	tests := []struct {
		name string
		set  FilterSet
		want []string
	}{
		{"platform", FilterSet{Platform: "instagram"}, []string{"A003", "EV002"}},
		{"category_exact", FilterSet{Kind: models.KindEvidence, Category: "Loan Scam"}, []string{"EV001"}},
		{"category_case_differs", FilterSet{Kind: models.KindEvidence, Category: "loan scam"}, []string{}},
		{"min_risk_inclusive", FilterSet{MinRiskScore: 87}, []string{"EV001", "EV002", "FH001"}},
		{"min_risk_excludes_unscored", FilterSet{Kind: models.KindAlert, MinRiskScore: 1}, []string{}},
		{"search_keywords", FilterSet{Kind: models.KindEvidence, SearchText: "INSTANT LOAN"}, []string{"EV001"}},
		{"search_case_id", FilterSet{Kind: models.KindEvidence, SearchText: "ev003"}, []string{"EV003"}},
		{"search_alert_details", FilterSet{Kind: models.KindAlert, SearchText: "casino"}, []string{"A004"}},
		{"search_hotel_domain", FilterSet{Kind: models.KindHotel, SearchText: "leela"}, []string{"FH003"}},
		{"status", FilterSet{Status: models.StatusMismatch}, []string{"FH001"}},
		{"anded", FilterSet{Platform: "telegram", Kind: models.KindAlert, Status: models.StatusNew}, []string{"A001"}},
		{"no_match", FilterSet{Platform: "web", SearchText: "whatsapp"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Apply(records, tt.set, testNow))
			if !equalIDs(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			if !isSubsequence(got, ids(records)) {
				t.Errorf("result %v is not a subsequence of the input", got)
			}
		})
	}
}

func TestApply_SeverityUsesViewThresholds(t *testing.T) {
	records := loadRecords(t)

	hotels := FilterSet{Kind: models.KindHotel, Severity: "medium", Thresholds: risk.HotelThresholds}
	if got := ids(Apply(records, hotels, testNow)); !equalIDs(got, []string{"FH002"}) {
		t.Errorf("expected FH002 as medium under hotel thresholds, got %v", got)
	}

	evidence := FilterSet{Kind: models.KindEvidence, Severity: "medium", Thresholds: risk.DefaultThresholds}
	if got := ids(Apply(records, evidence, testNow)); !equalIDs(got, []string{"EV003"}) {
		t.Errorf("expected EV003 as medium under default thresholds, got %v", got)
	}
}

func TestApply_Last24h(t *testing.T) {
	records := []models.Record{
		{ID: "recent", Timestamp: "2 minutes ago"},
		{ID: "abs_recent", Timestamp: "2024-01-15 09:00"},
		{ID: "old", Timestamp: "2024-01-13 09:00"},
		{ID: "garbage", Timestamp: "yesterday-ish"},
		{ID: "empty"},
		{ID: "future", Timestamp: "2024-01-16 09:00"},
		{ID: "rfc3339", Timestamp: "2024-01-15T14:59:00Z"},
	}

	got := ids(Apply(records, FilterSet{TimeWindow: WindowLast24h}, testNow))
	want := []string{"recent", "abs_recent", "rfc3339"}
	if !equalIDs(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	all := Apply(records, FilterSet{TimeWindow: WindowAll}, testNow)
	if len(all) != len(records) {
		t.Errorf("expected window=all to keep unparsable timestamps, got %d records", len(all))
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	records := loadRecords(t)
	before := ids(records)

	Apply(records, FilterSet{Platform: "web"}, testNow)

	if !equalIDs(ids(records), before) {
		t.Error("input slice was modified")
	}
}

func TestApply_EmptyInput(t *testing.T) {
	got := Apply(nil, FilterSet{Platform: "web"}, testNow)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result, got %v", got)
	}
}

func TestFilterSet_Validate(t *testing.T) {
	tests := []struct {
		name    string
		set     FilterSet
		wantErr bool
	}{
		{"identity", Identity(), false},
		{"platform", FilterSet{Platform: "web", Thresholds: risk.DefaultThresholds}, false},
		{"bad_platform", FilterSet{Platform: "myspace", Thresholds: risk.DefaultThresholds}, true},
		{"bad_severity", FilterSet{Severity: "urgent", Thresholds: risk.DefaultThresholds}, true},
		{"bad_window", FilterSet{TimeWindow: "last7d", Thresholds: risk.DefaultThresholds}, true},
		{"bad_min_risk", FilterSet{MinRiskScore: 150, Thresholds: risk.DefaultThresholds}, true},
		{"bad_thresholds", FilterSet{Thresholds: risk.Thresholds{High: 10, Medium: 20}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.set.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseTimestamp_Relative(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"2 minutes ago", 2 * time.Minute},
		{"5 min ago", 5 * time.Minute},
		{"3 hours ago", 3 * time.Hour},
		{"1 day ago", 24 * time.Hour},
		{"just now", 0},
	}

	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in, testNow)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q) failed: %v", tt.in, err)
		}
		if d := testNow.Sub(got); d != tt.want {
			t.Errorf("ParseTimestamp(%q): expected offset %v, got %v", tt.in, tt.want, d)
		}
	}
}

func TestParseTimestamp_RelativeOutOfRange(t *testing.T) {
	for _, in := range []string{"20211507185753197 seconds ago", "9999999999 days ago", "99999999999999999999 minutes ago"} {
		if _, err := ParseTimestamp(in, testNow); err == nil {
			t.Errorf("ParseTimestamp(%q): expected error", in)
		}
	}

	r := models.Record{ID: "old", Timestamp: "20211507185753197 seconds ago"}
	if got := Apply([]models.Record{r}, FilterSet{TimeWindow: WindowLast24h}, testNow); len(got) != 0 {
		t.Errorf("expected out-of-range timestamp to be excluded from last24h, got %v", ids(got))
	}
}

func TestApply_CategoryMatchesByCase(t *testing.T) {
	records := []models.Record{
		{ID: "1", Kind: models.KindAlert, Category: "Scam"},
		{ID: "2", Kind: models.KindAlert, Category: "scam"},
	}

	if got := ids(Apply(records, FilterSet{Category: "scam"}, testNow)); !equalIDs(got, []string{"2"}) {
		t.Errorf("expected [2], got %v", got)
	}
	if got := ids(Apply(records, FilterSet{Category: "Scam"}, testNow)); !equalIDs(got, []string{"1"}) {
		t.Errorf("expected [1], got %v", got)
	}
}

func TestApplyPerKind_MixedCollection(t *testing.T) {
	records := []models.Record{
		{ID: "EV", Kind: models.KindEvidence, RiskScore: models.Score(45)},
		{ID: "FH", Kind: models.KindHotel, RiskScore: models.Score(45)},
	}
	thresholds := func(k models.Kind) risk.Thresholds {
		if k == models.KindHotel {
			return risk.HotelThresholds
		}
		return risk.DefaultThresholds
	}

	got := ids(ApplyPerKind(records, FilterSet{Severity: "medium"}, testNow, thresholds))
	if !equalIDs(got, []string{"FH"}) {
		t.Errorf("expected only the hotel to be medium at 45, got %v", got)
	}
}
