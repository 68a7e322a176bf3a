package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/mr1hm/go-cyber-patrol/internal/models"
	"github.com/mr1hm/go-cyber-patrol/internal/risk"
)

// View binds a dashboard view to the record kind it lists and the
// thresholds its severity badges use.
type View struct {
	Kind       models.Kind     `yaml:"kind"`
	Thresholds risk.Thresholds `yaml:"thresholds"`
}

type Views map[string]View

type viewsFile struct {
	Views Views `yaml:"views"`
}

func DefaultViews() Views {
	return Views{
		"alerts":   {Kind: models.KindAlert, Thresholds: risk.DefaultThresholds},
		"evidence": {Kind: models.KindEvidence, Thresholds: risk.DefaultThresholds},
		"hotels":   {Kind: models.KindHotel, Thresholds: risk.HotelThresholds},
	}
}

// LoadViews reads view overrides from a YAML file. Views missing from the
// file keep their defaults.
func LoadViews(path string) (Views, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read views config: %w", err)
	}
	var f viewsFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse views config: %w", err)
	}

	views := DefaultViews()
	for name, v := range f.Views {
		views[name] = v
	}
	if err := views.Validate(); err != nil {
		return nil, err
	}
	return views, nil
}

func (v Views) Validate() error {
	for _, name := range v.Names() {
		view := v[name]
		if !view.Kind.Valid() {
			return fmt.Errorf("view %s: unknown kind %q", name, view.Kind)
		}
		if err := view.Thresholds.Validate(); err != nil {
			return fmt.Errorf("view %s: %w", name, err)
		}
	}
	return nil
}

// Lookup resolves a view by name.
func (v Views) Lookup(name string) (View, error) {
	view, ok := v[name]
	if !ok {
		return View{}, fmt.Errorf("unknown view: %q", name)
	}
	return view, nil
}

// Resolve picks the kind and thresholds for a request naming a view, a kind,
// both or neither. scoped is false when neither is given; the caller then
// classifies each record with ThresholdsFor its own kind.
func (v Views) Resolve(view string, kind models.Kind) (resolved View, scoped bool, err error) {
	if view != "" {
		resolved, err = v.Lookup(view)
		if err != nil {
			return View{}, false, err
		}
		if kind != "" && kind != resolved.Kind {
			return View{}, false, fmt.Errorf("kind %q does not match view %q", kind, view)
		}
		return resolved, true, nil
	}
	if kind != "" {
		if !kind.Valid() {
			return View{}, false, fmt.Errorf("unknown kind: %q", kind)
		}
		return View{Kind: kind, Thresholds: v.ThresholdsFor(kind)}, true, nil
	}
	return View{Thresholds: risk.DefaultThresholds}, false, nil
}

// ThresholdsFor returns the thresholds of the first view (by name) listing
// kind, or the defaults.
func (v Views) ThresholdsFor(kind models.Kind) risk.Thresholds {
	for _, name := range v.Names() {
		if v[name].Kind == kind {
			return v[name].Thresholds
		}
	}
	if kind == models.KindHotel {
		return risk.HotelThresholds
	}
	return risk.DefaultThresholds
}

func (v Views) Names() []string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
