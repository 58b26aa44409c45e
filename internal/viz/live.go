// Package viz renders the sandbox live in the terminal. The bubbletea
// tick is the animation-frame callback: each frame advances the loop by
// the elapsed wall time, and quitting simply stops scheduling the next
// tick, so teardown never leaves a stray pending frame.
package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kirolan/orbitlab/internal/routing"
	"github.com/kirolan/orbitlab/internal/sim"
	"github.com/kirolan/orbitlab/internal/space"
)

const (
	canvasWidth  = 72
	canvasHeight = 22
	// Clamp long stalls (e.g. a suspended terminal) so the simulation
	// does not leap forward on resume.
	maxFrameDelta = 0.25
)

type TickMsg time.Time

// Model is the live-view state around a sim.Loop.
type Model struct {
	loop      *sim.Loop
	routeOpts routing.Options
	routeFrom string
	routeTo   string
	route     routing.Route
	showRoute bool

	canvas   *Canvas
	fps      int
	lastTick time.Time
}

// NewModel wires a loop into the live view. routeFrom/routeTo may be
// empty; the route overlay is then unavailable.
func NewModel(loop *sim.Loop, routeOpts routing.Options, routeFrom, routeTo string, fps int) Model {
	if fps <= 0 {
		fps = 30
	}
	return Model{
		loop:      loop,
		routeOpts: routeOpts,
		routeFrom: routeFrom,
		routeTo:   routeTo,
		canvas:    NewCanvas(canvasWidth, canvasHeight),
		fps:       fps,
	}
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return m.tickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		now := time.Time(msg)
		elapsed := 1.0 / float64(m.fps)
		if !m.lastTick.IsZero() {
			elapsed = now.Sub(m.lastTick).Seconds()
			if elapsed > maxFrameDelta {
				elapsed = maxFrameDelta
			}
		}
		m.lastTick = now

		m.loop.Tick(elapsed)
		if m.showRoute {
			m.route = m.loop.Route(m.routeFrom, m.routeTo, m.routeOpts)
		}
		return m, m.tickCmd()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.loop.SetPaused(!m.loop.Paused())
		case "m":
			if m.loop.Mode() == sim.ModeOrbit {
				m.loop.SetMode(sim.ModePhysics)
			} else {
				m.loop.SetMode(sim.ModeOrbit)
			}
		case "e":
			if m.loop.Engine() == sim.EngineLeapfrog {
				m.loop.SetEngine(sim.EngineEuler)
			} else {
				m.loop.SetEngine(sim.EngineLeapfrog)
			}
		case "+", "=":
			m.loop.SetSpeed(m.loop.Speed() * 2)
		case "-":
			m.loop.SetSpeed(m.loop.Speed() / 2)
		case "r":
			if m.routeFrom != "" && m.routeTo != "" {
				m.showRoute = !m.showRoute
				if m.showRoute {
					m.route = m.loop.Route(m.routeFrom, m.routeTo, m.routeOpts)
				}
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	bodies := m.loop.Bodies()
	links := m.loop.Links()

	m.canvas.Clear()
	project := makeProjection(bodies)

	pos := space.Positions(bodies)
	for _, l := range links {
		a, okA := pos[l.Source]
		b, okB := pos[l.Target]
		if !okA || !okB {
			continue
		}
		ax, ay := project(a.X(), a.Y())
		bx, by := project(b.X(), b.Y())
		m.canvas.Line(ax, ay, bx, by)
	}
	for _, b := range bodies {
		x, y := project(b.Pos.X(), b.Pos.Y())
		m.canvas.Blob(x, y, 1)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(m.canvas.String()),
		panelStyle.Render(m.statsPanel(bodies)),
	)
}

func (m Model) statsPanel(bodies []space.Body) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("orbitlab"))
	b.WriteByte('\n')

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(value))
		b.WriteByte('\n')
	}

	row("mode", m.loop.Mode().String())
	if m.loop.Mode() == sim.ModePhysics {
		row("engine", m.loop.Engine().String())
	}
	row("speed", fmt.Sprintf("%.2gx", m.loop.Speed()))
	row("time", fmt.Sprintf("%.1fs", m.loop.Time()))
	row("bodies", fmt.Sprintf("%d", len(bodies)))

	if m.loop.Paused() {
		b.WriteString(pausedStyle.Render("PAUSED"))
		b.WriteByte('\n')
	}

	if m.showRoute {
		b.WriteByte('\n')
		if m.route.Reachable() {
			b.WriteString(routeStyle.Render(fmt.Sprintf("route %s -> %s", m.routeFrom, m.routeTo)))
			b.WriteByte('\n')
			b.WriteString(routeStyle.Render(strings.Join(m.route.Path, " > ")))
			b.WriteByte('\n')
			b.WriteString(routeStyle.Render(fmt.Sprintf("cost %.1f", m.route.Cost)))
		} else {
			b.WriteString(routeStyle.Render("no route"))
		}
		b.WriteByte('\n')
	}

	b.WriteString(helpStyle.Render("space pause · m mode · e engine\n+/- speed · r route · q quit"))
	return b.String()
}

// makeProjection maps world coordinates into the canvas dot grid, fitted
// to the current body bounds with a margin so orbits stay in frame.
func makeProjection(bodies []space.Body) func(wx, wy float64) (int, int) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, b := range bodies {
		minX = math.Min(minX, b.Pos.X())
		minY = math.Min(minY, b.Pos.Y())
		maxX = math.Max(maxX, b.Pos.X())
		maxY = math.Max(maxY, b.Pos.Y())
	}
	if len(bodies) == 0 {
		return func(float64, float64) (int, int) { return 0, 0 }
	}

	spanX := maxX - minX
	spanY := maxY - minY
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}
	// 10% margin on each side.
	minX -= spanX * 0.1
	maxX += spanX * 0.1
	minY -= spanY * 0.1
	maxY += spanY * 0.1

	dotsW := float64(canvasWidth*2 - 1)
	dotsH := float64(canvasHeight*4 - 1)

	return func(wx, wy float64) (int, int) {
		x := (wx - minX) / (maxX - minX) * dotsW
		// Flip y: world up is screen up.
		y := (1 - (wy-minY)/(maxY-minY)) * dotsH
		return int(x), int(y)
	}
}
