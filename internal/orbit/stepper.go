// Package orbit implements the simplified angular-orbit stepper: an
// algebraic stand-in for full gravity that keeps bodies on fixed-radius
// circular tracks around an anchor body. It gives visually plausible
// motion with no integration instability.
package orbit

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kirolan/orbitlab/internal/space"
)

// BasePeriod is the revolution time, in simulated seconds at 1x speed, of
// the closest body at calibration.
const BasePeriod = 5.0

type bodyState struct {
	radius float64
	theta  float64
	omega  float64
}

// Stepper holds the derived per-body polar cache. The cache is rebuilt
// whenever the body count changes; a drag on a single body performs a
// targeted update instead (see SetBodyPosition). The anchor itself never
// moves and carries no orbit state.
type Stepper struct {
	anchorID   string
	basePeriod float64
	minR0      float64
	states     map[string]bodyState
	count      int
}

func NewStepper(anchorID string) *Stepper {
	return &Stepper{
		anchorID:   anchorID,
		basePeriod: BasePeriod,
		states:     make(map[string]bodyState),
		count:      -1,
	}
}

func (s *Stepper) baseOmega() float64 {
	return 2 * math.Pi / s.basePeriod
}

// omegaFor applies the Kepler-inspired falloff: period grows as r^1.5,
// calibrated so the body at minR0 revolves once per basePeriod. minR0 is
// fixed at rebuild time; recomputing it from the live closest body would
// make the law discontinuous under drags.
func (s *Stepper) omegaFor(r float64) float64 {
	if s.minR0 <= 0 {
		return 0
	}
	return s.baseOmega() * math.Pow(s.minR0/math.Max(1, r), 1.5)
}

// Rebuild recomputes minR0 and every body's polar state from the current
// cartesian positions. With no anchor in the snapshot the stepper holds
// no orbit state and Advance leaves bodies untouched.
func (s *Stepper) Rebuild(bodies []space.Body) {
	s.states = make(map[string]bodyState, len(bodies))
	s.count = len(bodies)
	s.minR0 = 0

	anchor, ok := space.Find(bodies, s.anchorID)
	if !ok {
		return
	}

	minR := math.Inf(1)
	for _, b := range bodies {
		if b.ID == s.anchorID {
			continue
		}
		if r := b.Pos.Sub(anchor.Pos).Len(); r < minR {
			minR = r
		}
	}
	if math.IsInf(minR, 1) {
		return
	}
	s.minR0 = math.Max(1, minR)

	for _, b := range bodies {
		if b.ID == s.anchorID {
			continue
		}
		d := b.Pos.Sub(anchor.Pos)
		r := d.Len()
		s.states[b.ID] = bodyState{
			radius: r,
			theta:  math.Atan2(d.Y(), d.X()),
			omega:  s.omegaFor(r),
		}
	}
}

// Invalidate forces a rebuild on the next Advance. Used after structural
// edits that do not change the body count.
func (s *Stepper) Invalidate() {
	s.count = -1
}

// Advance steps every tracked body's angle by omega*dt*speed and returns
// a new snapshot with the resulting positions. The cache is rebuilt first
// if the body count changed since the last call.
func (s *Stepper) Advance(bodies []space.Body, dt, speed float64) []space.Body {
	if len(bodies) != s.count {
		s.Rebuild(bodies)
	}

	out := space.Clone(bodies)
	anchor, ok := space.Find(bodies, s.anchorID)
	if !ok {
		return out
	}

	for i := range out {
		st, tracked := s.states[out[i].ID]
		if !tracked {
			continue
		}
		st.theta += st.omega * dt * speed
		s.states[out[i].ID] = st

		out[i].Pos = anchor.Pos.Add(mgl64.Vec2{
			st.radius * math.Cos(st.theta),
			st.radius * math.Sin(st.theta),
		})
	}
	return out
}

// SetBodyPosition handles a user drag: the dropped body's radius and
// theta are recomputed from its new position, and its omega from the
// existing minR0 calibration. No other body's angular rate changes.
func (s *Stepper) SetBodyPosition(id string, pos mgl64.Vec2, bodies []space.Body) {
	if id == s.anchorID {
		return
	}
	anchor, ok := space.Find(bodies, s.anchorID)
	if !ok {
		return
	}

	d := pos.Sub(anchor.Pos)
	r := d.Len()
	s.states[id] = bodyState{
		radius: r,
		theta:  math.Atan2(d.Y(), d.X()),
		omega:  s.omegaFor(r),
	}
}

// Theta returns the current angle of a tracked body.
func (s *Stepper) Theta(id string) (float64, bool) {
	st, ok := s.states[id]
	return st.theta, ok
}

// Omega returns the angular velocity of a tracked body.
func (s *Stepper) Omega(id string) (float64, bool) {
	st, ok := s.states[id]
	return st.omega, ok
}

// Tracked reports how many bodies currently carry orbit state.
func (s *Stepper) Tracked() int {
	return len(s.states)
}
