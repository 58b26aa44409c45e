// Package metrics provides per-step observations over body snapshots for
// offline runs: total mechanical energy, linear momentum and the number
// of surviving bodies.
package metrics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/kirolan/orbitlab/internal/physics"
	"github.com/kirolan/orbitlab/internal/space"
)

// Energy tracks total kinetic plus softened potential energy.
type Energy struct {
	g         float64
	softening float64
	value     float64
}

func NewEnergy(g, softening float64) *Energy {
	return &Energy{g: g, softening: softening}
}

func (e *Energy) Name() string { return "energy" }

func (e *Energy) Observe(bodies []space.Body, t float64) {
	e.value = physics.TotalEnergy(bodies, e.g, e.softening)
}

func (e *Energy) Value() float64 { return e.value }
func (e *Energy) Reset()         { e.value = 0 }

// Momentum tracks the magnitude of the total linear momentum.
type Momentum struct {
	value float64
}

func NewMomentum() *Momentum { return &Momentum{} }

func (m *Momentum) Name() string { return "momentum" }

func (m *Momentum) Observe(bodies []space.Body, t float64) {
	var total mgl64.Vec2
	for _, b := range bodies {
		total = total.Add(b.Vel.Mul(b.Mass))
	}
	m.value = total.Len()
}

func (m *Momentum) Value() float64 { return m.value }
func (m *Momentum) Reset()         { m.value = 0 }

// BodyCount tracks the surviving body count, exposing merges in run
// summaries.
type BodyCount struct {
	value float64
}

func NewBodyCount() *BodyCount { return &BodyCount{} }

func (c *BodyCount) Name() string { return "bodies" }

func (c *BodyCount) Observe(bodies []space.Body, t float64) {
	c.value = float64(len(bodies))
}

func (c *BodyCount) Value() float64 { return c.value }
func (c *BodyCount) Reset()         { c.value = 0 }
