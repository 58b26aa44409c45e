package metrics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/kirolan/orbitlab/internal/space"
)

func TestEnergyValue(t *testing.T) {
	m := NewEnergy(2, 0)
	bodies := []space.Body{
		{ID: "a", Mass: 4, Pos: mgl64.Vec2{0, 0}, Vel: mgl64.Vec2{3, 0}},
		{ID: "b", Mass: 5, Pos: mgl64.Vec2{10, 0}},
	}

	m.Observe(bodies, 0)

	ke := 0.5 * 4 * 9.0
	pe := -2.0 * 4 * 5 / 10
	want := ke + pe
	if math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("expected energy %f, got %f", want, m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestMomentumValue(t *testing.T) {
	m := NewMomentum()
	bodies := []space.Body{
		{ID: "a", Mass: 2, Vel: mgl64.Vec2{3, 0}},
		{ID: "b", Mass: 3, Vel: mgl64.Vec2{0, -2}},
	}

	m.Observe(bodies, 0)

	want := math.Hypot(6, -6)
	if math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("expected momentum %f, got %f", want, m.Value())
	}
}

func TestBodyCount(t *testing.T) {
	c := NewBodyCount()
	c.Observe(make([]space.Body, 7), 0)
	if c.Value() != 7 {
		t.Errorf("expected 7, got %f", c.Value())
	}
}
