// Package config loads and saves YAML scenario files: the body/link
// layout plus all engine and solver tunables for a session.
package config

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/kirolan/orbitlab/internal/physics"
	"github.com/kirolan/orbitlab/internal/routing"
	"github.com/kirolan/orbitlab/internal/space"
)

const (
	DefaultDt            = 1.0 / 60
	DefaultDuration      = 30.0
	DefaultSpeed         = 1.0
	DefaultG             = 50.0
	DefaultSoftening     = 5.0
	DefaultMergeDistance = 10.0
	DefaultDamping       = 0.999
	DefaultExclusion     = 40.0
	DefaultPenalty       = 10000.0
)

type Config struct {
	Mode     string        `yaml:"mode"`
	Engine   string        `yaml:"engine"`
	Dt       float64       `yaml:"dt"`
	Duration float64       `yaml:"duration"`
	Speed    float64       `yaml:"speed"`
	AnchorID string        `yaml:"anchor_id"`
	Gravity  GravityConfig `yaml:"gravity"`
	Route    RouteConfig   `yaml:"route"`
	Bodies   []BodyConfig  `yaml:"bodies"`
	Links    []LinkConfig  `yaml:"links"`
}

type GravityConfig struct {
	G             float64 `yaml:"g"`
	Softening     float64 `yaml:"softening"`
	MergeDistance float64 `yaml:"merge_distance"`
	Damping       float64 `yaml:"damping"`
}

type RouteConfig struct {
	ExclusionRadius     float64 `yaml:"exclusion_radius"`
	Penalty             float64 `yaml:"penalty"`
	PowerExponent       float64 `yaml:"power_exponent"`
	ForbidThroughAnchor bool    `yaml:"forbid_through_anchor"`
}

type BodyConfig struct {
	ID   string  `yaml:"id"`
	Name string  `yaml:"name"`
	Mass float64 `yaml:"mass"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
	VX   float64 `yaml:"vx"`
	VY   float64 `yaml:"vy"`
}

type LinkConfig struct {
	Source   string  `yaml:"source"`
	Target   string  `yaml:"target"`
	Distance float64 `yaml:"distance"`
}

// DefaultConfig is a small five-body solar layout: an anchor star with
// four satellites and a sparse link net.
func DefaultConfig() *Config {
	return &Config{
		Mode:     "orbit",
		Engine:   "leapfrog",
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Speed:    DefaultSpeed,
		AnchorID: "1",
		Gravity: GravityConfig{
			G:             DefaultG,
			Softening:     DefaultSoftening,
			MergeDistance: DefaultMergeDistance,
			Damping:       DefaultDamping,
		},
		Route: RouteConfig{
			ExclusionRadius:     DefaultExclusion,
			Penalty:             DefaultPenalty,
			PowerExponent:       1,
			ForbidThroughAnchor: true,
		},
		Bodies: []BodyConfig{
			{ID: "1", Name: "Sol", Mass: 100},
			{ID: "2", Name: "Hermes", Mass: 50, X: 150},
			{ID: "3", Name: "Aphra", Mass: 60, Y: 260},
			{ID: "4", Name: "Gaia", Mass: 55, X: -340},
			{ID: "5", Name: "Ares", Mass: 40, Y: -480},
		},
		Links: []LinkConfig{
			{Source: "2", Target: "3", Distance: 300},
			{Source: "3", Target: "4", Distance: 428},
			{Source: "4", Target: "5", Distance: 590},
			{Source: "2", Target: "5", Distance: 505},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate catches the mistakes that would otherwise surface as silent
// numerical garbage inside the engines.
func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.Dt)
	}
	seen := make(map[string]bool, len(c.Bodies))
	for _, b := range c.Bodies {
		if b.ID == "" {
			return fmt.Errorf("body %q has empty id", b.Name)
		}
		if seen[b.ID] {
			return fmt.Errorf("duplicate body id: %s", b.ID)
		}
		seen[b.ID] = true
		if b.Mass <= 0 {
			return fmt.Errorf("body %s: mass must be positive, got %f", b.ID, b.Mass)
		}
	}
	return nil
}

// ToBodies converts the configured layout into engine snapshots.
func (c *Config) ToBodies() []space.Body {
	bodies := make([]space.Body, 0, len(c.Bodies))
	for _, b := range c.Bodies {
		bodies = append(bodies, space.Body{
			ID:   b.ID,
			Name: b.Name,
			Mass: b.Mass,
			Pos:  mgl64.Vec2{b.X, b.Y},
			Vel:  mgl64.Vec2{b.VX, b.VY},
		})
	}
	return bodies
}

// ToLinks converts the configured link list, deduplicating pairs.
func (c *Config) ToLinks() []space.Link {
	var links []space.Link
	for _, l := range c.Links {
		links = space.AddLink(links, space.Link{
			Source:   l.Source,
			Target:   l.Target,
			Distance: l.Distance,
		})
	}
	return links
}

// PhysicsParams assembles the leapfrog tunables.
func (c *Config) PhysicsParams() physics.Params {
	return physics.Params{
		G:             c.Gravity.G,
		Softening:     c.Gravity.Softening,
		Dt:            c.Dt,
		MergeDistance: c.Gravity.MergeDistance,
		AnchorID:      c.AnchorID,
	}
}

// RouteOptions assembles the solver options.
func (c *Config) RouteOptions() routing.Options {
	return routing.Options{
		AnchorID:            c.AnchorID,
		ExclusionRadius:     c.Route.ExclusionRadius,
		ForbidThroughAnchor: c.Route.ForbidThroughAnchor,
		Penalty:             c.Route.Penalty,
		PowerExponent:       c.Route.PowerExponent,
	}
}
