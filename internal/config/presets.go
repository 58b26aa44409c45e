package config

import (
	"fmt"
	"math"
	"sort"
)

// Presets are named ready-to-run scenarios, grouped by family.
var Presets = map[string]map[string]*Config{
	"solar": {
		"compact": DefaultConfig(),
		"wide": func() *Config {
			c := DefaultConfig()
			for i := range c.Bodies {
				c.Bodies[i].X *= 2
				c.Bodies[i].Y *= 2
			}
			c.Route.ExclusionRadius = 80
			return c
		}(),
	},
	"binary": {
		"tight": func() *Config {
			c := DefaultConfig()
			c.Mode = "physics"
			c.AnchorID = ""
			c.Bodies = []BodyConfig{
				{ID: "1", Name: "Castor", Mass: 100, X: -60, VY: -4},
				{ID: "2", Name: "Pollux", Mass: 100, X: 60, VY: 4},
			}
			c.Links = nil
			return c
		}(),
	},
	"ring": {
		"n8": RingConfig(8, 140),
	},
}

// RingConfig generates n bodies evenly spaced on a circle around an
// anchor star, each linked to its ring neighbors. The layout mirrors the
// default initial graph of the sandbox.
func RingConfig(n int, radius float64) *Config {
	c := DefaultConfig()
	c.Bodies = []BodyConfig{{ID: "1", Name: "Sol", Mass: 200}}
	c.Links = nil

	for i := 0; i < n; i++ {
		angle := float64(i) * 2 * math.Pi / float64(n)
		id := fmt.Sprintf("%d", i+2)
		c.Bodies = append(c.Bodies, BodyConfig{
			ID:   id,
			Name: fmt.Sprintf("Star %d", i+1),
			Mass: 30,
			X:    radius * math.Cos(angle),
			Y:    radius * math.Sin(angle),
		})
	}

	for i := 0; i < n; i++ {
		src := fmt.Sprintf("%d", i+2)
		dst := fmt.Sprintf("%d", (i+1)%n+2)
		side := 2 * radius * math.Sin(math.Pi/float64(n))
		c.Links = append(c.Links, LinkConfig{Source: src, Target: dst, Distance: side})
	}
	return c
}

// GetPreset looks up a preset by family and name, returning nil when
// either is unknown.
func GetPreset(family, name string) *Config {
	group, ok := Presets[family]
	if !ok {
		return nil
	}
	return group[name]
}

// ListPresets returns the sorted preset names of a family, or nil for an
// unknown family.
func ListPresets(family string) []string {
	group, ok := Presets[family]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(group))
	for name := range group {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListFamilies returns the sorted preset family names.
func ListFamilies() []string {
	families := make([]string, 0, len(Presets))
	for f := range Presets {
		families = append(families, f)
	}
	sort.Strings(families)
	return families
}
