// Package physics implements the two gravitational engines: a symplectic
// leapfrog (kick-drift-kick) stepper with inelastic merging, and a simpler
// damped explicit-Euler stepper. Both are snapshot-in/snapshot-out over
// the space.Body schema.
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kirolan/orbitlab/internal/space"
)

// Params are the leapfrog tunables. Softening bounds the force magnitude
// as separation goes to zero; it is fixed at setup, not a runtime knob.
// When AnchorID names a body in the snapshot, that body is pinned: it
// receives no kicks, its velocity is forced to zero and it never drifts.
type Params struct {
	G             float64
	Softening     float64
	Dt            float64
	MergeDistance float64
	AnchorID      string
}

// Step advances the snapshot by one kick-drift-kick cycle and then merges
// bodies closer than MergeDistance. The input is never mutated.
func Step(bodies []space.Body, p Params) []space.Body {
	out := space.Clone(bodies)
	half := p.Dt / 2

	acc := accelerations(out, p.G, p.Softening)
	for i := range out {
		if out[i].ID == p.AnchorID {
			continue
		}
		out[i].Vel = out[i].Vel.Add(acc[i].Mul(half))
	}

	for i := range out {
		if out[i].ID == p.AnchorID {
			out[i].Vel = mgl64.Vec2{}
			continue
		}
		out[i].Pos = out[i].Pos.Add(out[i].Vel.Mul(p.Dt))
	}

	acc = accelerations(out, p.G, p.Softening)
	for i := range out {
		if out[i].ID == p.AnchorID {
			continue
		}
		out[i].Vel = out[i].Vel.Add(acc[i].Mul(half))
	}

	if p.MergeDistance > 0 {
		out = mergeClose(out, p.MergeDistance)
	}
	return out
}

// accelerations computes the softened pairwise gravitational acceleration
// on every body: a_i = sum G*m_j*(p_j-p_i) / (|p_j-p_i|^2 + eps^2)^(3/2).
// Forces are accumulated symmetrically so each pair is visited once.
func accelerations(bodies []space.Body, g, softening float64) []mgl64.Vec2 {
	n := len(bodies)
	acc := make([]mgl64.Vec2, n)
	eps2 := softening * softening

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := bodies[j].Pos.Sub(bodies[i].Pos)
			r2 := d.Dot(d) + eps2
			if r2 == 0 {
				continue
			}
			rInv := 1 / math.Sqrt(r2)
			r3Inv := rInv * rInv * rInv

			acc[i] = acc[i].Add(d.Mul(g * bodies[j].Mass * r3Inv))
			acc[j] = acc[j].Sub(d.Mul(g * bodies[i].Mass * r3Inv))
		}
	}
	return acc
}

// mergeClose performs one inelastic merge pass. Pairs within dist are
// grouped transitively with a union-find over the current positions, then
// each group is materialized as a single body: mass sums, velocity is the
// momentum-weighted average, position and identity come from the heaviest
// member (ties toward the earliest index). Groups form from positions at
// the start of the pass; bodies that only become close because a merged
// body moved wait for the next step.
func mergeClose(bodies []space.Body, dist float64) []space.Body {
	n := len(bodies)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}

	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	merged := false
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if bodies[j].Pos.Sub(bodies[i].Pos).Len() <= dist {
				ri, rj := find(i), find(j)
				if ri != rj {
					if rj < ri {
						ri, rj = rj, ri
					}
					parent[rj] = ri
					merged = true
				}
			}
		}
	}
	if !merged {
		return bodies
	}

	groups := make(map[int][]int, n)
	order := make([]int, 0, n)
	for i := 0; i < n; i++ {
		r := find(i)
		if _, seen := groups[r]; !seen {
			order = append(order, r)
		}
		groups[r] = append(groups[r], i)
	}

	out := make([]space.Body, 0, len(order))
	for _, r := range order {
		members := groups[r]
		if len(members) == 1 {
			out = append(out, bodies[members[0]])
			continue
		}

		heaviest := members[0]
		for _, m := range members[1:] {
			if bodies[m].Mass > bodies[heaviest].Mass {
				heaviest = m
			}
		}

		var mass float64
		var momentum mgl64.Vec2
		for _, m := range members {
			mass += bodies[m].Mass
			momentum = momentum.Add(bodies[m].Vel.Mul(bodies[m].Mass))
		}

		b := bodies[heaviest]
		b.Mass = mass
		b.Vel = momentum.Mul(1 / mass)
		out = append(out, b)
	}
	return out
}

// CircularOrbitVelocity returns the velocity perpendicular to the
// anchor-relative radius vector (counter-clockwise) with magnitude
// sqrt(G*m_anchor/r), r floored at 1. Used to seed a stable velocity when
// a body's motion switches into this engine's mode. A body coinciding
// with the anchor gets a zero vector.
func CircularOrbitVelocity(b, anchor space.Body, g float64) mgl64.Vec2 {
	d := b.Pos.Sub(anchor.Pos)
	r := d.Len()
	if r == 0 {
		return mgl64.Vec2{}
	}

	speed := math.Sqrt(g * anchor.Mass / math.Max(1, r))
	return mgl64.Vec2{-d.Y() / r, d.X() / r}.Mul(speed)
}

// TotalEnergy returns kinetic plus softened pairwise potential energy,
// used for drift reporting on offline runs.
func TotalEnergy(bodies []space.Body, g, softening float64) float64 {
	ke := 0.0
	pe := 0.0
	eps2 := softening * softening

	for i := range bodies {
		ke += 0.5 * bodies[i].Mass * bodies[i].Vel.Dot(bodies[i].Vel)
		for j := i + 1; j < len(bodies); j++ {
			d := bodies[j].Pos.Sub(bodies[i].Pos)
			r := math.Sqrt(d.Dot(d) + eps2)
			if r == 0 {
				continue
			}
			pe -= g * bodies[i].Mass * bodies[j].Mass / r
		}
	}
	return ke + pe
}
