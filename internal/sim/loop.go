// Package sim owns the frame-driven control loop around the motion
// engines: mode switching, speed scaling, drag pausing and offline runs.
// Everything is single-threaded; ticks and edits run strictly
// sequentially on one logical thread and no locking is done.
package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/kirolan/orbitlab/internal/orbit"
	"github.com/kirolan/orbitlab/internal/physics"
	"github.com/kirolan/orbitlab/internal/routing"
	"github.com/kirolan/orbitlab/internal/space"
)

// Loop holds the canonical body and link collections and advances them
// through whichever engine the current mode selects. Engines themselves
// stay snapshot-in/snapshot-out; the loop is the single writer.
type Loop struct {
	mode   Mode
	engine Engine
	speed  float64
	paused bool
	t      float64

	bodies []space.Body
	links  []space.Link

	params     physics.Params
	euler      *physics.EulerEngine
	eulerState physics.EulerState
	stepper    *orbit.Stepper

	metrics   []Metric
	observers []Observer
	log       *zap.Logger
}

// New builds a loop in orbit mode. damping applies only to the Euler
// engine. A nil logger is replaced with a no-op.
func New(bodies []space.Body, links []space.Link, params physics.Params, damping float64, log *zap.Logger) *Loop {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loop{
		mode:       ModeOrbit,
		engine:     EngineLeapfrog,
		speed:      1,
		bodies:     space.Clone(bodies),
		links:      append([]space.Link(nil), links...),
		params:     params,
		euler:      physics.NewEulerEngine(params.G, params.Dt, damping),
		eulerState: physics.NewEulerState(),
		stepper:    orbit.NewStepper(params.AnchorID),
		log:        log,
	}
}

func (l *Loop) AddMetric(m Metric)     { l.metrics = append(l.metrics, m) }
func (l *Loop) AddObserver(o Observer) { l.observers = append(l.observers, o) }

func (l *Loop) Mode() Mode     { return l.mode }
func (l *Loop) Engine() Engine { return l.engine }
func (l *Loop) Speed() float64 { return l.speed }
func (l *Loop) Paused() bool   { return l.paused }
func (l *Loop) Time() float64  { return l.t }

// Bodies returns a copy of the current snapshot.
func (l *Loop) Bodies() []space.Body { return space.Clone(l.bodies) }

func (l *Loop) Links() []space.Link {
	return append([]space.Link(nil), l.links...)
}

func (l *Loop) SetSpeed(speed float64) {
	if speed > 0 {
		l.speed = speed
	}
}

func (l *Loop) SetPaused(paused bool) { l.paused = paused }

func (l *Loop) SetEngine(e Engine) {
	l.engine = e
	l.log.Debug("engine selected", zap.Stringer("engine", e))
}

// SetMode switches the motion engine. Entering physics mode seeds every
// non-anchor body with a circular-orbit velocity so the handoff from the
// angular stepper does not start from rest; entering orbit mode rebuilds
// the polar cache from the current cartesian layout.
func (l *Loop) SetMode(m Mode) {
	if m == l.mode {
		return
	}
	l.mode = m

	switch m {
	case ModePhysics:
		if anchor, ok := space.Find(l.bodies, l.params.AnchorID); ok {
			for i := range l.bodies {
				if l.bodies[i].ID == anchor.ID {
					continue
				}
				l.bodies[i].Vel = physics.CircularOrbitVelocity(l.bodies[i], anchor, l.params.G)
			}
		}
		l.eulerState = physics.NewEulerState()
	case ModeOrbit:
		l.stepper.Rebuild(l.bodies)
	}
	l.log.Debug("mode switched", zap.Stringer("mode", m))
}

// AddBody appends a body and invalidates the orbit cache. Duplicate ids
// are rejected.
func (l *Loop) AddBody(b space.Body) error {
	if _, exists := space.Find(l.bodies, b.ID); exists {
		return fmt.Errorf("duplicate body id: %s", b.ID)
	}
	l.bodies = append(l.bodies, b)
	l.stepper.Invalidate()
	l.log.Debug("body added", zap.String("id", b.ID))
	return nil
}

// RemoveBody drops a body; links referencing it become dangling and are
// skipped by consumers.
func (l *Loop) RemoveBody(id string) {
	out := l.bodies[:0]
	for _, b := range l.bodies {
		if b.ID != id {
			out = append(out, b)
		}
	}
	l.bodies = out
	l.stepper.Invalidate()
}

// AddLink inserts a link; a second add of the same unordered pair is a
// no-op.
func (l *Loop) AddLink(link space.Link) {
	l.links = space.AddLink(l.links, link)
}

// SetMass applies a user mass edit.
func (l *Loop) SetMass(id string, mass float64) {
	if mass <= 0 {
		return
	}
	for i := range l.bodies {
		if l.bodies[i].ID == id {
			l.bodies[i].Mass = mass
			return
		}
	}
}

// DragBody moves a body to a dropped position. In orbit mode the
// stepper's state for that body is recalibrated in place without touching
// any other body's angular rate. Callers pause the loop around a drag
// gesture via SetPaused.
func (l *Loop) DragBody(id string, pos mgl64.Vec2) {
	for i := range l.bodies {
		if l.bodies[i].ID == id {
			l.bodies[i].Pos = pos
			l.stepper.SetBodyPosition(id, pos, l.bodies)
			return
		}
	}
}

// Tick advances the simulation by elapsed seconds of wall time. While the
// drag pause flag is set the tick is a no-op. The speed multiplier scales
// the effective time step; in physics mode the tick is subdivided into
// ceil(speed) fixed substeps to keep the integrator stable at high
// multipliers.
func (l *Loop) Tick(elapsed float64) {
	if l.paused || elapsed <= 0 {
		return
	}

	scaled := elapsed * l.speed

	switch l.mode {
	case ModeOrbit:
		l.bodies = l.stepper.Advance(l.bodies, elapsed, l.speed)
	case ModePhysics:
		substeps := int(math.Ceil(l.speed))
		if substeps < 1 {
			substeps = 1
		}
		h := scaled / float64(substeps)

		for s := 0; s < substeps; s++ {
			switch l.engine {
			case EngineEuler:
				l.euler.SetDt(h)
				l.eulerState = l.euler.Step(l.bodies, l.eulerState)
				l.applyEulerState()
			default:
				p := l.params
				p.Dt = h
				before := len(l.bodies)
				l.bodies = physics.Step(l.bodies, p)
				if merged := before - len(l.bodies); merged > 0 {
					l.stepper.Invalidate()
					l.log.Debug("bodies merged",
						zap.Int("removed", merged),
						zap.Int("remaining", len(l.bodies)))
				}
			}
		}
	}

	l.t += scaled
	for _, m := range l.metrics {
		m.Observe(l.bodies, l.t)
	}
	for _, o := range l.observers {
		o.OnTick(l.bodies, l.t)
	}
}

func (l *Loop) applyEulerState() {
	for i := range l.bodies {
		if p, ok := l.eulerState.Pos[l.bodies[i].ID]; ok {
			l.bodies[i].Pos = p
		}
		if v, ok := l.eulerState.Vel[l.bodies[i].ID]; ok {
			l.bodies[i].Vel = v
		}
	}
}

// Route answers a route query against the current graph snapshot.
func (l *Loop) Route(start, goal string, opts routing.Options) routing.Route {
	route := routing.ShortestPath(l.bodies, l.links, start, goal, opts)
	l.log.Debug("route query",
		zap.String("start", start),
		zap.String("goal", goal),
		zap.Float64("cost", route.Cost),
		zap.Int("hops", len(route.Path)))
	return route
}

// Run executes a fixed-step offline simulation, recording a snapshot per
// step. The context cancels a long run between steps.
func (l *Loop) Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Dt <= 0 {
		return nil, fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}

	steps := int(cfg.Duration / cfg.Dt)
	result := &Result{
		Snapshots: make([][]space.Body, 0, steps+1),
		Times:     make([]float64, 0, steps+1),
		Metrics:   make(map[string]float64),
	}

	for _, m := range l.metrics {
		m.Reset()
	}

	result.Snapshots = append(result.Snapshots, l.Bodies())
	result.Times = append(result.Times, l.t)

	initialEnergy := physics.TotalEnergy(l.bodies, l.params.G, l.params.Softening)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		l.Tick(cfg.Dt)
		result.StepsTaken++
		result.Snapshots = append(result.Snapshots, l.Bodies())
		result.Times = append(result.Times, l.t)
	}

	finalEnergy := physics.TotalEnergy(l.bodies, l.params.G, l.params.Softening)
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}

	for _, m := range l.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}
