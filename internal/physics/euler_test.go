package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kirolan/orbitlab/internal/space"
)

func TestEulerInitializesUnseenBodies(t *testing.T) {
	e := NewEulerEngine(1, 0.1, 1)
	bodies := []space.Body{
		{ID: "a", Mass: 1, Pos: mgl64.Vec2{10, 20}, Vel: mgl64.Vec2{1, 0}},
	}

	st := e.Step(bodies, NewEulerState())

	// A lone body feels no force; it just drifts at its seeded velocity.
	want := mgl64.Vec2{10.1, 20}
	if got := st.Pos["a"]; math.Abs(got.X()-want.X()) > 1e-12 || got.Y() != want.Y() {
		t.Errorf("expected position %v, got %v", want, got)
	}
	if st.Vel["a"] != (mgl64.Vec2{1, 0}) {
		t.Errorf("expected seeded velocity, got %v", st.Vel["a"])
	}
}

func TestEulerCopyOnWrite(t *testing.T) {
	e := NewEulerEngine(10, 0.5, 0.99)
	bodies := []space.Body{
		{ID: "a", Mass: 5, Pos: mgl64.Vec2{0, 0}},
		{ID: "b", Mass: 5, Pos: mgl64.Vec2{100, 0}},
	}

	st := e.Step(bodies, NewEulerState())
	posBefore := st.Pos["a"]
	velBefore := st.Vel["a"]

	e.Step(bodies, st)

	if st.Pos["a"] != posBefore || st.Vel["a"] != velBefore {
		t.Error("Step mutated the input state maps")
	}
}

func TestEulerDamping(t *testing.T) {
	e := NewEulerEngine(0, 1, 0.5)
	bodies := []space.Body{
		{ID: "a", Mass: 1, Vel: mgl64.Vec2{8, 0}},
	}

	st := e.Step(bodies, NewEulerState())
	if got := st.Vel["a"].X(); math.Abs(got-4) > 1e-12 {
		t.Errorf("expected damped velocity 4, got %f", got)
	}

	st = e.Step(bodies, st)
	if got := st.Vel["a"].X(); math.Abs(got-2) > 1e-12 {
		t.Errorf("expected damped velocity 2, got %f", got)
	}
}

func TestEulerMinDistanceFloorsForce(t *testing.T) {
	// With separation far below the floor, acceleration must match the
	// value computed at the floor distance rather than blowing up.
	g, m := 100.0, 10.0
	e := NewEulerEngine(g, 0.01, 1)
	bodies := []space.Body{
		{ID: "a", Mass: m, Pos: mgl64.Vec2{0, 0}},
		{ID: "b", Mass: m, Pos: mgl64.Vec2{0.001, 0}},
	}

	st := e.Step(bodies, NewEulerState())

	wantAccel := g * m / (eulerMinDistance * eulerMinDistance)
	gotAccel := st.Vel["a"].Len() / 0.01
	if math.Abs(gotAccel-wantAccel) > 1e-6 {
		t.Errorf("expected floored acceleration %f, got %f", wantAccel, gotAccel)
	}
}

func TestEulerSettersTakeEffectNextStep(t *testing.T) {
	e := NewEulerEngine(0, 1, 1)
	bodies := []space.Body{{ID: "a", Mass: 1, Vel: mgl64.Vec2{1, 0}}}

	st := e.Step(bodies, NewEulerState())
	if st.Pos["a"].X() != 1 {
		t.Fatalf("expected x=1 after first step, got %f", st.Pos["a"].X())
	}

	e.SetDt(2)
	st = e.Step(bodies, st)
	if st.Pos["a"].X() != 3 {
		t.Errorf("expected x=3 after dt change, got %f", st.Pos["a"].X())
	}
}
