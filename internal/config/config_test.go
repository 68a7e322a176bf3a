package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mr1hm/go-cyber-patrol/internal/models"
	"github.com/mr1hm/go-cyber-patrol/internal/risk"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.DB.Path != ":memory:" {
		t.Errorf("expected in-memory db, got %s", cfg.DB.Path)
	}
	if cfg.Sources.FeedEnabled {
		t.Error("expected feed disabled by default")
	}
	if got := cfg.StatsBaseURL(); got != "http://localhost:8080" {
		t.Errorf("expected stats to default to self, got %s", got)
	}
	if got := cfg.Views.ThresholdsFor(models.KindHotel); got != risk.HotelThresholds {
		t.Errorf("expected hotel thresholds, got %+v", got)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STATS_BASE_URL", "http://stats.internal")
	t.Setenv("STATS_TIMEOUT", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9090 || cfg.Logging.Level != "debug" {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.StatsBaseURL() != "http://stats.internal" || cfg.Stats.Timeout != 3*time.Second {
		t.Errorf("unexpected stats config: %+v", cfg.Stats)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"port", map[string]string{"SERVER_PORT": "70000"}},
		{"log level", map[string]string{"LOG_LEVEL": "verbose"}},
		{"log format", map[string]string{"LOG_FORMAT": "xml"}},
		{"feed without url", map[string]string{"FEED_ENABLED": "true"}},
		{"feed poll too fast", map[string]string{"FEED_ENABLED": "true", "FEED_URL": "http://x", "FEED_POLL_INTERVAL": "10s"}},
		{"rate limit", map[string]string{"RATE_LIMIT_BURST": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func writeViews(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "views.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadViews_Overrides(t *testing.T) {
	path := writeViews(t, `
views:
  hotels:
    kind: hotel
    thresholds: {high: 90, medium: 60}
  telegram-watch:
    kind: alert
    thresholds: {high: 75, medium: 30}
`)
	t.Setenv("VIEWS_CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	hotels, err := cfg.Views.Lookup("hotels")
	if err != nil {
		t.Fatal(err)
	}
	if hotels.Thresholds != (risk.Thresholds{High: 90, Medium: 60}) {
		t.Errorf("override not applied: %+v", hotels.Thresholds)
	}
	if _, err := cfg.Views.Lookup("evidence"); err != nil {
		t.Errorf("expected default view to survive: %v", err)
	}
	// "alerts" sorts before "telegram-watch"
	if got := cfg.Views.ThresholdsFor(models.KindAlert); got != risk.DefaultThresholds {
		t.Errorf("expected alerts view thresholds, got %+v", got)
	}
}

func TestLoadViews_Invalid(t *testing.T) {
	path := writeViews(t, `
views:
  hotels:
    kind: hotel
    thresholds: {high: 40, medium: 60}
`)
	if _, err := LoadViews(path); !errors.Is(err, risk.ErrInvalidThresholds) {
		t.Errorf("expected ErrInvalidThresholds, got %v", err)
	}

	path = writeViews(t, `
views:
  misc:
    kind: bulletin
    thresholds: {high: 80, medium: 50}
`)
	if _, err := LoadViews(path); err == nil {
		t.Error("expected unknown kind error")
	}

	if _, err := LoadViews(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestViews_LookupUnknown(t *testing.T) {
	if _, err := DefaultViews().Lookup("nope"); err == nil {
		t.Error("expected error for unknown view")
	}
}

func TestViews_Resolve(t *testing.T) {
	views := DefaultViews()

	tests := []struct {
		name       string
		view       string
		kind       models.Kind
		wantKind   models.Kind
		wantScoped bool
		wantT      risk.Thresholds
		wantErr    bool
	}{
		{"neither", "", "", "", false, risk.DefaultThresholds, false},
		{"view", "hotels", "", models.KindHotel, true, risk.HotelThresholds, false},
		{"kind", "", models.KindHotel, models.KindHotel, true, risk.HotelThresholds, false},
		{"matching pair", "alerts", models.KindAlert, models.KindAlert, true, risk.DefaultThresholds, false},
		{"conflicting pair", "hotels", models.KindAlert, "", false, risk.Thresholds{}, true},
		{"unknown kind", "", "tweet", "", false, risk.Thresholds{}, true},
		{"unknown view", "nope", "", "", false, risk.Thresholds{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, scoped, err := views.Resolve(tt.view, tt.kind)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr {
				return
			}
			if v.Kind != tt.wantKind || scoped != tt.wantScoped || v.Thresholds != tt.wantT {
				t.Errorf("got %+v scoped=%v", v, scoped)
			}
		})
	}
}
