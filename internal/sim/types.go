package sim

import (
	"fmt"

	"github.com/kirolan/orbitlab/internal/space"
)

// Mode selects which motion engine a tick advances. The two modes share
// no contract beyond operating on the same body schema, so the switch is
// a tagged enum rather than an interface.
type Mode int

const (
	ModeOrbit Mode = iota
	ModePhysics
)

func (m Mode) String() string {
	switch m {
	case ModeOrbit:
		return "orbit"
	case ModePhysics:
		return "physics"
	default:
		return "unknown"
	}
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "orbit":
		return ModeOrbit, nil
	case "physics":
		return ModePhysics, nil
	default:
		return 0, fmt.Errorf("unknown mode: %s", s)
	}
}

// Engine selects the integrator used in physics mode.
type Engine int

const (
	EngineLeapfrog Engine = iota
	EngineEuler
)

func (e Engine) String() string {
	switch e {
	case EngineLeapfrog:
		return "leapfrog"
	case EngineEuler:
		return "euler"
	default:
		return "unknown"
	}
}

func ParseEngine(s string) (Engine, error) {
	switch s {
	case "leapfrog":
		return EngineLeapfrog, nil
	case "euler":
		return EngineEuler, nil
	default:
		return 0, fmt.Errorf("unknown engine: %s", s)
	}
}

// Config drives an offline Run.
type Config struct {
	Dt       float64
	Duration float64
}

// Result collects the per-step snapshots and aggregate metrics of an
// offline run.
type Result struct {
	Snapshots   [][]space.Body
	Times       []float64
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
}

// Metric aggregates a scalar over the course of a run.
type Metric interface {
	Name() string
	Observe(bodies []space.Body, t float64)
	Value() float64
	Reset()
}

// Observer is notified after every tick.
type Observer interface {
	OnTick(bodies []space.Body, t float64)
}
