// Package fixtures holds the mock record set the dashboard ships with and
// decodes record files in the same YAML layout.
package fixtures

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mr1hm/go-cyber-patrol/internal/models"
)

//go:embed records.yaml
var defaultData []byte

type Set struct {
	Records           []models.Record        `yaml:"records"`
	CategoryBreakdown []models.CategorySlice `yaml:"category_breakdown"`
}

// Default returns a fresh copy of the embedded mock data.
func Default() (*Set, error) {
	return Decode(bytes.NewReader(defaultData))
}

func Decode(r io.Reader) (*Set, error) {
	var s Set
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("error decoding fixtures: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func LoadFile(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening fixtures: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

func (s *Set) validate() error {
	seen := make(map[string]struct{}, len(s.Records))
	for _, r := range s.Records {
		if r.ID == "" {
			return fmt.Errorf("record without id")
		}
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("duplicate record id: %s", r.ID)
		}
		seen[r.ID] = struct{}{}

		if !r.Kind.Valid() {
			return fmt.Errorf("record %s: unknown kind %q", r.ID, r.Kind)
		}
		if r.Priority != "" && !r.Priority.Valid() {
			return fmt.Errorf("record %s: unknown priority %q", r.ID, r.Priority)
		}
		if !r.Platform.Valid() {
			return fmt.Errorf("record %s: unknown platform %q", r.ID, r.Platform)
		}
		if r.Category == "" {
			return fmt.Errorf("record %s: missing category", r.ID)
		}
		if r.RiskScore != nil && (*r.RiskScore < 0 || *r.RiskScore > 100) {
			return fmt.Errorf("record %s: risk score %g out of range", r.ID, *r.RiskScore)
		}
	}
	return nil
}
