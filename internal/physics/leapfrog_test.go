package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kirolan/orbitlab/internal/space"
)

func TestMergeMomentumConservation(t *testing.T) {
	bodies := []space.Body{
		{ID: "a", Mass: 30, Pos: mgl64.Vec2{0, 0}, Vel: mgl64.Vec2{2, 1}},
		{ID: "b", Mass: 10, Pos: mgl64.Vec2{1, 0}, Vel: mgl64.Vec2{-2, 3}},
	}
	// dt=0 isolates the merge pass from the kicks.
	out := Step(bodies, Params{G: 1, Softening: 1, Dt: 0, MergeDistance: 5})

	if len(out) != 1 {
		t.Fatalf("expected 1 body after merge, got %d", len(out))
	}
	m := out[0]
	if m.ID != "a" {
		t.Errorf("merged identity should come from heavier body, got %s", m.ID)
	}
	if m.Mass != 40 {
		t.Errorf("expected merged mass 40, got %f", m.Mass)
	}

	wantVx := (30.0*2 + 10.0*-2) / 40.0
	wantVy := (30.0*1 + 10.0*3) / 40.0
	if math.Abs(m.Vel.X()-wantVx) > 1e-12 || math.Abs(m.Vel.Y()-wantVy) > 1e-12 {
		t.Errorf("expected momentum-weighted velocity (%f,%f), got (%f,%f)",
			wantVx, wantVy, m.Vel.X(), m.Vel.Y())
	}
}

func TestMergeTieBreaksTowardFirst(t *testing.T) {
	bodies := []space.Body{
		{ID: "first", Mass: 10, Pos: mgl64.Vec2{0, 0}},
		{ID: "second", Mass: 10, Pos: mgl64.Vec2{1, 0}},
	}
	out := Step(bodies, Params{G: 1, Softening: 1, Dt: 0, MergeDistance: 5})

	if len(out) != 1 || out[0].ID != "first" {
		t.Fatalf("equal-mass merge should keep the first operand, got %+v", out)
	}
}

func TestMergeChained(t *testing.T) {
	// Three bodies in a line, each within range of its neighbor but the
	// endpoints 8 apart: the whole chain collapses in one pass.
	bodies := []space.Body{
		{ID: "a", Mass: 1, Pos: mgl64.Vec2{0, 0}},
		{ID: "b", Mass: 5, Pos: mgl64.Vec2{4, 0}},
		{ID: "c", Mass: 1, Pos: mgl64.Vec2{8, 0}},
	}
	out := Step(bodies, Params{G: 1, Softening: 1, Dt: 0, MergeDistance: 5})

	if len(out) != 1 {
		t.Fatalf("expected chained merge to one body, got %d", len(out))
	}
	if out[0].ID != "b" || out[0].Mass != 7 {
		t.Errorf("expected heaviest identity b with mass 7, got %s mass %f",
			out[0].ID, out[0].Mass)
	}
}

func TestMergeUnrelatedPairsSurvive(t *testing.T) {
	bodies := []space.Body{
		{ID: "a", Mass: 1, Pos: mgl64.Vec2{0, 0}},
		{ID: "b", Mass: 1, Pos: mgl64.Vec2{1, 0}},
		{ID: "far", Mass: 1, Pos: mgl64.Vec2{500, 500}},
	}
	out := Step(bodies, Params{G: 1, Softening: 1, Dt: 0, MergeDistance: 5})

	if len(out) != 2 {
		t.Fatalf("expected 2 bodies, got %d", len(out))
	}
	if _, ok := space.Find(out, "far"); !ok {
		t.Error("distant body was incorrectly merged")
	}
}

func TestAnchorPinning(t *testing.T) {
	bodies := []space.Body{
		{ID: "sun", Mass: 1000, Pos: mgl64.Vec2{0, 0}},
		{ID: "p", Mass: 1, Pos: mgl64.Vec2{100, 0}, Vel: mgl64.Vec2{0, 3}},
	}
	p := Params{G: 50, Softening: 2, Dt: 0.1, AnchorID: "sun"}

	out := bodies
	for i := 0; i < 50; i++ {
		out = Step(out, p)
	}

	sun, ok := space.Find(out, "sun")
	if !ok {
		t.Fatal("anchor missing from output")
	}
	if sun.Pos != (mgl64.Vec2{0, 0}) {
		t.Errorf("anchor position moved to %v", sun.Pos)
	}
	if sun.Vel != (mgl64.Vec2{}) {
		t.Errorf("anchor velocity changed to %v", sun.Vel)
	}
}

func TestSofteningBoundsAcceleration(t *testing.T) {
	g, eps, m := 10.0, 3.0, 7.0
	bound := g * m / (eps * eps)

	for _, sep := range []float64{1, 0.1, 0.001, 0} {
		bodies := []space.Body{
			{ID: "a", Mass: m, Pos: mgl64.Vec2{0, 0}},
			{ID: "b", Mass: m, Pos: mgl64.Vec2{sep, 0}},
		}
		acc := accelerations(bodies, g, eps)
		for i, a := range acc {
			mag := a.Len()
			if math.IsNaN(mag) || math.IsInf(mag, 0) {
				t.Fatalf("sep=%f body %d: acceleration not finite", sep, i)
			}
			if mag > bound+1e-9 {
				t.Errorf("sep=%f body %d: |a|=%f exceeds G*m/eps^2=%f", sep, i, mag, bound)
			}
		}
	}
}

func TestCircularOrbitVelocity(t *testing.T) {
	anchor := space.Body{ID: "sun", Mass: 100, Pos: mgl64.Vec2{0, 0}}
	b := space.Body{ID: "p", Pos: mgl64.Vec2{150, 0}}
	g := 50.0

	v := CircularOrbitVelocity(b, anchor, g)

	wantSpeed := math.Sqrt(g * anchor.Mass / 150)
	if math.Abs(v.Len()-wantSpeed) > 1e-9 {
		t.Errorf("expected speed %f, got %f", wantSpeed, v.Len())
	}

	radial := b.Pos.Sub(anchor.Pos)
	if dot := v.Dot(radial); math.Abs(dot) > 1e-9 {
		t.Errorf("velocity not perpendicular to radius, dot=%f", dot)
	}
}

func TestCircularOrbitVelocityCoincident(t *testing.T) {
	anchor := space.Body{ID: "sun", Mass: 100}
	b := space.Body{ID: "p"}

	if v := CircularOrbitVelocity(b, anchor, 50); v != (mgl64.Vec2{}) {
		t.Errorf("expected zero vector for coincident body, got %v", v)
	}
}

func TestStepDoesNotMutateInput(t *testing.T) {
	bodies := []space.Body{
		{ID: "a", Mass: 1, Pos: mgl64.Vec2{0, 0}, Vel: mgl64.Vec2{1, 0}},
		{ID: "b", Mass: 1, Pos: mgl64.Vec2{10, 0}},
	}
	snapshot := space.Clone(bodies)

	Step(bodies, Params{G: 1, Softening: 1, Dt: 0.5})

	for i := range bodies {
		if bodies[i] != snapshot[i] {
			t.Fatalf("input body %d mutated: %+v != %+v", i, bodies[i], snapshot[i])
		}
	}
}

func TestLeapfrogEnergyStability(t *testing.T) {
	// A body on a seeded circular orbit should hold its energy to within
	// a small fraction over many steps.
	g := 50.0
	anchor := space.Body{ID: "sun", Mass: 1000, Pos: mgl64.Vec2{0, 0}}
	planet := space.Body{ID: "p", Mass: 1, Pos: mgl64.Vec2{200, 0}}
	planet.Vel = CircularOrbitVelocity(planet, anchor, g)

	bodies := []space.Body{anchor, planet}
	p := Params{G: g, Softening: 1, Dt: 0.01, AnchorID: "sun"}

	e0 := TotalEnergy(bodies, g, p.Softening)
	for i := 0; i < 2000; i++ {
		bodies = Step(bodies, p)
	}
	e1 := TotalEnergy(bodies, g, p.Softening)

	drift := math.Abs(e1-e0) / math.Abs(e0)
	if drift > 0.01 {
		t.Errorf("energy drift %f over circular orbit exceeds 1%%", drift)
	}
}
