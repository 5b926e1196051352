// Package ociocfg loads OCIO-style color-management configurations: a set of
// named color spaces (each a transfer curve plus a gamut), role aliases, and
// display/view pairings. A loaded Config is immutable; its indexed lists
// never change for its lifetime, so concurrent read-only queries are safe.
package ociocfg

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kovidgoyal/colorbridge/cms/transfer"
)

// ColorSpace is one named entry of a Config. Transfer decodes the space to
// linear light and ToXYZ maps its linear RGB into the CIE XYZ reference.
type ColorSpace struct {
	Name        string
	Family      string
	Description string
	Transfer    transfer.Function
	Primaries   string
	ToXYZ       transfer.Mat3
}

// View is a named rendering of a display, expressed as the color space the
// view encodes into.
type View struct {
	Name       string
	ColorSpace string
}

// Display is a named output device profile with an ordered list of views.
type Display struct {
	Name        string
	DefaultView string
	Views       []View
}

// Config is a loaded, immutable color-management definition.
type Config struct {
	Name        string
	Description string

	colorSpaces []*ColorSpace
	byName      map[string]*ColorSpace
	roles       map[string]string
	displays    []*Display
	byDisplay   map[string]*Display
	defaultDpy  string
}

// The YAML document shape. Kept separate from the public model so the loader
// can validate and resolve before anything becomes visible to callers.
type rawConfig struct {
	Name           string            `yaml:"name"`
	Description    string            `yaml:"description"`
	Roles          map[string]string `yaml:"roles"`
	ColorSpaces    []rawColorSpace   `yaml:"colorspaces"`
	Displays       []rawDisplay      `yaml:"displays"`
	DefaultDisplay string            `yaml:"default_display"`
}

type rawColorSpace struct {
	Name        string  `yaml:"name"`
	Family      string  `yaml:"family"`
	Description string  `yaml:"description"`
	Transfer    string  `yaml:"transfer"`
	Gamma       float32 `yaml:"gamma"`
	Primaries   string  `yaml:"primaries"`
}

type rawDisplay struct {
	Name        string    `yaml:"name"`
	DefaultView string    `yaml:"default_view"`
	Views       []rawView `yaml:"views"`
}

type rawView struct {
	Name       string `yaml:"name"`
	ColorSpace string `yaml:"colorspace"`
}

// Load parses a configuration document from r.
func Load(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return build(&raw)
}

// LoadFile parses the configuration file at path.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func build(raw *rawConfig) (*Config, error) {
	if len(raw.ColorSpaces) == 0 {
		return nil, fmt.Errorf("config %q declares no color spaces", raw.Name)
	}
	cfg := &Config{
		Name:        raw.Name,
		Description: raw.Description,
		byName:      make(map[string]*ColorSpace, len(raw.ColorSpaces)),
		roles:       make(map[string]string, len(raw.Roles)),
		byDisplay:   make(map[string]*Display, len(raw.Displays)),
	}

	for _, rc := range raw.ColorSpaces {
		if rc.Name == "" {
			return nil, fmt.Errorf("config %q: color space with empty name", raw.Name)
		}
		if _, dup := cfg.byName[rc.Name]; dup {
			return nil, fmt.Errorf("config %q: duplicate color space %q", raw.Name, rc.Name)
		}
		fn, err := transferFor(rc)
		if err != nil {
			return nil, fmt.Errorf("color space %q: %w", rc.Name, err)
		}
		prim := rc.Primaries
		if prim == "" {
			prim = "srgb"
		}
		toXYZ, ok := transfer.PrimariesToXYZ(prim)
		if !ok {
			return nil, fmt.Errorf("color space %q: unknown primaries %q", rc.Name, prim)
		}
		cs := &ColorSpace{
			Name:        rc.Name,
			Family:      rc.Family,
			Description: rc.Description,
			Transfer:    fn,
			Primaries:   prim,
			ToXYZ:       toXYZ,
		}
		cfg.colorSpaces = append(cfg.colorSpaces, cs)
		cfg.byName[cs.Name] = cs
	}

	for role, target := range raw.Roles {
		if _, ok := cfg.byName[target]; !ok {
			return nil, fmt.Errorf("role %q references unknown color space %q", role, target)
		}
		cfg.roles[role] = target
	}

	for _, rd := range raw.Displays {
		if rd.Name == "" {
			return nil, fmt.Errorf("config %q: display with empty name", raw.Name)
		}
		if _, dup := cfg.byDisplay[rd.Name]; dup {
			return nil, fmt.Errorf("config %q: duplicate display %q", raw.Name, rd.Name)
		}
		if len(rd.Views) == 0 {
			return nil, fmt.Errorf("display %q declares no views", rd.Name)
		}
		d := &Display{Name: rd.Name, DefaultView: rd.DefaultView}
		for _, rv := range rd.Views {
			if rv.Name == "" {
				return nil, fmt.Errorf("display %q: view with empty name", rd.Name)
			}
			if _, ok := cfg.byName[rv.ColorSpace]; !ok {
				return nil, fmt.Errorf("display %q view %q references unknown color space %q",
					rd.Name, rv.Name, rv.ColorSpace)
			}
			d.Views = append(d.Views, View{Name: rv.Name, ColorSpace: rv.ColorSpace})
		}
		if d.DefaultView == "" {
			d.DefaultView = d.Views[0].Name
		} else if d.view(d.DefaultView) == nil {
			return nil, fmt.Errorf("display %q: default view %q not declared", rd.Name, rd.DefaultView)
		}
		cfg.displays = append(cfg.displays, d)
		cfg.byDisplay[d.Name] = d
	}

	cfg.defaultDpy = raw.DefaultDisplay
	if cfg.defaultDpy == "" && len(cfg.displays) > 0 {
		cfg.defaultDpy = cfg.displays[0].Name
	} else if cfg.defaultDpy != "" {
		if _, ok := cfg.byDisplay[cfg.defaultDpy]; !ok {
			return nil, fmt.Errorf("default display %q not declared", cfg.defaultDpy)
		}
	}
	return cfg, nil
}

func transferFor(rc rawColorSpace) (transfer.Function, error) {
	name := rc.Transfer
	if name == "" {
		name = "linear"
	}
	if name == "gamma" {
		if rc.Gamma <= 0 {
			return nil, fmt.Errorf("gamma transfer needs a positive gamma value")
		}
		return transfer.NewGamma(rc.Gamma), nil
	}
	fn, ok := transfer.ForName(name)
	if !ok {
		return nil, fmt.Errorf("unknown transfer %q", name)
	}
	return fn, nil
}

func (d *Display) view(name string) *View {
	for i := range d.Views {
		if d.Views[i].Name == name {
			return &d.Views[i]
		}
	}
	return nil
}

// NumColorSpaces returns the number of declared color spaces.
func (c *Config) NumColorSpaces() int { return len(c.colorSpaces) }

// ColorSpaceNameByIndex returns the name at index i, or "" when out of range.
func (c *Config) ColorSpaceNameByIndex(i int) string {
	if i < 0 || i >= len(c.colorSpaces) {
		return ""
	}
	return c.colorSpaces[i].Name
}

// ColorSpaceByName resolves name to a color space, following role aliases.
// Returns nil when the name is unknown.
func (c *Config) ColorSpaceByName(name string) *ColorSpace {
	if cs, ok := c.byName[name]; ok {
		return cs
	}
	if target, ok := c.roles[name]; ok {
		return c.byName[target]
	}
	return nil
}

// Role returns the color-space name a role maps to, or "" when undeclared.
func (c *Config) Role(role string) string { return c.roles[role] }

// NumDisplays returns the number of declared displays.
func (c *Config) NumDisplays() int { return len(c.displays) }

// DisplayNameByIndex returns the display name at index i, or "" out of range.
func (c *Config) DisplayNameByIndex(i int) string {
	if i < 0 || i >= len(c.displays) {
		return ""
	}
	return c.displays[i].Name
}

// DefaultDisplay returns the config's default display name.
func (c *Config) DefaultDisplay() string { return c.defaultDpy }

// NumViews returns the number of views of a display, or -1 for an unknown
// display.
func (c *Config) NumViews(display string) int {
	d, ok := c.byDisplay[display]
	if !ok {
		return -1
	}
	return len(d.Views)
}

// ViewNameByIndex returns a display's view name at index i, or "".
func (c *Config) ViewNameByIndex(display string, i int) string {
	d, ok := c.byDisplay[display]
	if !ok || i < 0 || i >= len(d.Views) {
		return ""
	}
	return d.Views[i].Name
}

// DefaultView returns a display's default view name, or "" for an unknown
// display.
func (c *Config) DefaultView(display string) string {
	d, ok := c.byDisplay[display]
	if !ok {
		return ""
	}
	return d.DefaultView
}

// ViewColorSpace returns the color space a display/view pair encodes into,
// or nil when either is unknown.
func (c *Config) ViewColorSpace(display, view string) *ColorSpace {
	d, ok := c.byDisplay[display]
	if !ok {
		return nil
	}
	v := d.view(view)
	if v == nil {
		return nil
	}
	return c.byName[v.ColorSpace]
}
