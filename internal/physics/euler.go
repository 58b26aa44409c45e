package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kirolan/orbitlab/internal/space"
)

// eulerMinDistance caps force magnitude at close range. It is a hard
// floor on the separation used in the force law, distinct from the
// leapfrog softening term.
const eulerMinDistance = 50.0

// EulerState holds per-body position and velocity keyed by id. Step
// treats it as copy-on-write: the input maps are never mutated, so the
// caller can diff snapshots or roll back.
type EulerState struct {
	Pos map[string]mgl64.Vec2
	Vel map[string]mgl64.Vec2
}

// NewEulerState returns an empty state; bodies are picked up lazily on
// the first step that sees them.
func NewEulerState() EulerState {
	return EulerState{
		Pos: make(map[string]mgl64.Vec2),
		Vel: make(map[string]mgl64.Vec2),
	}
}

// EulerEngine is a first-order explicit integrator with multiplicative
// velocity damping. Damping below 1 trades slow energy loss for
// numerical stability; it is not physical drag.
type EulerEngine struct {
	g       float64
	dt      float64
	damping float64
}

func NewEulerEngine(g, dt, damping float64) *EulerEngine {
	return &EulerEngine{g: g, dt: dt, damping: damping}
}

// Setters take effect on the next Step call.
func (e *EulerEngine) SetG(g float64)             { e.g = g }
func (e *EulerEngine) SetDt(dt float64)           { e.dt = dt }
func (e *EulerEngine) SetDamping(damping float64) { e.damping = damping }

func (e *EulerEngine) G() float64       { return e.g }
func (e *EulerEngine) Dt() float64      { return e.dt }
func (e *EulerEngine) Damping() float64 { return e.damping }

// Step advances the state by one explicit-Euler cycle. Bodies whose id is
// not yet tracked are initialized from their own fields. Forces are
// evaluated against the positions at the start of the step.
func (e *EulerEngine) Step(bodies []space.Body, st EulerState) EulerState {
	basePos := make(map[string]mgl64.Vec2, len(st.Pos)+len(bodies))
	baseVel := make(map[string]mgl64.Vec2, len(st.Vel)+len(bodies))
	for id, p := range st.Pos {
		basePos[id] = p
	}
	for id, v := range st.Vel {
		baseVel[id] = v
	}
	for _, b := range bodies {
		if _, ok := basePos[b.ID]; !ok {
			basePos[b.ID] = b.Pos
			baseVel[b.ID] = b.Vel
		}
	}

	next := EulerState{
		Pos: make(map[string]mgl64.Vec2, len(basePos)),
		Vel: make(map[string]mgl64.Vec2, len(baseVel)),
	}
	for id, p := range basePos {
		next.Pos[id] = p
		next.Vel[id] = baseVel[id]
	}

	for _, b := range bodies {
		pi := basePos[b.ID]

		var force mgl64.Vec2
		for _, other := range bodies {
			if other.ID == b.ID {
				continue
			}
			d := basePos[other.ID].Sub(pi)
			r := d.Len()
			if r == 0 {
				continue
			}
			sep := math.Max(r, eulerMinDistance)
			f := e.g * b.Mass * other.Mass / (sep * sep)
			force = force.Add(d.Mul(f / r))
		}

		v := baseVel[b.ID].Add(force.Mul(e.dt / b.Mass))
		v = v.Mul(e.damping)
		next.Vel[b.ID] = v
		next.Pos[b.ID] = pi.Add(v.Mul(e.dt))
	}

	return next
}
