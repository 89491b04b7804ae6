// Package profile loads the map profiles a session can be opened with: the
// initial viewport, the focus zoom and the autocomplete region limits.
package profile

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"mapview_backend/internal/places"
	"mapview_backend/internal/viewport"
	"mapview_backend/platform/validator"

	"gopkg.in/yaml.v3"
)

// DefaultName is used when no profile is requested.
const DefaultName = "default"

//go:embed profiles.yaml
var builtin []byte

// Profile is a named map configuration.
type Profile struct {
	Name      string          `yaml:"name" json:"name" validate:"required"`
	Center    places.Position `yaml:"center" json:"center"`
	Zoom      int             `yaml:"zoom" json:"zoom" validate:"min=0,max=22"`
	FocusZoom int             `yaml:"focusZoom" json:"focusZoom" validate:"min=0,max=22"`
	Libraries []string        `yaml:"libraries" json:"libraries,omitempty"`
	Bounds    *places.Bounds  `yaml:"bounds,omitempty" json:"bounds,omitempty"`
	Countries []string        `yaml:"countries,omitempty" json:"countries,omitempty" validate:"dive,len=2"`
	Language  string          `yaml:"language,omitempty" json:"language,omitempty"`
}

// InitialViewport is the viewport a new session starts with.
func (p Profile) InitialViewport() viewport.State {
	return viewport.State{Center: p.Center, Zoom: p.Zoom}
}

// Autocomplete applies the profile's region limits to a suggestion request.
func (p Profile) Autocomplete(input, sessionToken string) places.AutocompleteRequest {
	return places.AutocompleteRequest{
		Input:        input,
		SessionToken: sessionToken,
		Restriction:  p.Bounds,
		Countries:    p.Countries,
		Language:     p.Language,
	}
}

type file struct {
	Profiles []Profile `yaml:"profiles"`
}

// Registry holds profiles by name.
type Registry struct {
	profiles    map[string]Profile
	defaultName string
}

// Load reads the built-in profiles, then the profiles in path when path is
// not empty. Profiles from path replace built-ins of the same name.
// defaultName must name a loaded profile.
func Load(path, defaultName string) (*Registry, error) {
	r := &Registry{profiles: make(map[string]Profile), defaultName: defaultName}
	if r.defaultName == "" {
		r.defaultName = DefaultName
	}

	if err := r.add(builtin, "built-in profiles"); err != nil {
		return nil, err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read map profiles %s: %w", path, err)
		}
		if err := r.add(data, path); err != nil {
			return nil, err
		}
	}

	if _, ok := r.profiles[r.defaultName]; !ok {
		return nil, fmt.Errorf("map profile %q is not defined", r.defaultName)
	}
	return r, nil
}

func (r *Registry) add(data []byte, source string) error {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse %s: %w", source, err)
	}

	v := validator.New()
	for _, p := range f.Profiles {
		if err := v.Struct(p); err != nil {
			return fmt.Errorf("invalid profile %q in %s: %w", p.Name, source, err)
		}
		if p.FocusZoom == 0 {
			p.FocusZoom = viewport.DefaultFocusZoom
		}
		r.profiles[p.Name] = p
	}
	return nil
}

// Get returns the named profile. An empty name selects the default.
func (r *Registry) Get(name string) (Profile, bool) {
	if name == "" {
		name = r.defaultName
	}
	p, ok := r.profiles[name]
	return p, ok
}

// Default returns the configured default profile.
func (r *Registry) Default() Profile {
	return r.profiles[r.defaultName]
}

// List returns all profiles sorted by name.
func (r *Registry) List() []Profile {
	out := make([]Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
