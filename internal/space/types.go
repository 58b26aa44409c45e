// Package space defines the shared body/link schema that all engines
// operate on. Engines take a snapshot in and hand a new snapshot back;
// the canonical collections are owned by the caller.
package space

import "github.com/go-gl/mathgl/mgl64"

// Body is a point mass. ID is unique within a snapshot and stable for the
// body's lifetime. Mass must be positive before a snapshot reaches any
// force computation.
type Body struct {
	ID   string
	Name string
	Mass float64
	Pos  mgl64.Vec2
	Vel  mgl64.Vec2
}

// Link is an unordered pair of body ids. Distance is an initial/display
// hint only; consumers recompute the true weight from live positions.
type Link struct {
	Source   string
	Target   string
	Distance float64
}

// Same reports whether two links connect the same unordered pair.
func (l Link) Same(o Link) bool {
	return (l.Source == o.Source && l.Target == o.Target) ||
		(l.Source == o.Target && l.Target == o.Source)
}

// Clone returns a copy of the snapshot. Body values are plain data, so a
// shallow element copy is a full copy.
func Clone(bodies []Body) []Body {
	out := make([]Body, len(bodies))
	copy(out, bodies)
	return out
}

// Index maps body ids to their slice positions.
func Index(bodies []Body) map[string]int {
	idx := make(map[string]int, len(bodies))
	for i, b := range bodies {
		idx[b.ID] = i
	}
	return idx
}

// Find returns the body with the given id.
func Find(bodies []Body, id string) (Body, bool) {
	for _, b := range bodies {
		if b.ID == id {
			return b, true
		}
	}
	return Body{}, false
}

// AddLink appends l unless an equivalent link (in either direction) is
// already present. A second add of the same pair is a no-op.
func AddLink(links []Link, l Link) []Link {
	for _, existing := range links {
		if existing.Same(l) {
			return links
		}
	}
	return append(links, l)
}

// Positions returns a lookup from body id to live position.
func Positions(bodies []Body) map[string]mgl64.Vec2 {
	pos := make(map[string]mgl64.Vec2, len(bodies))
	for _, b := range bodies {
		pos[b.ID] = b.Pos
	}
	return pos
}
