// Package geom provides the small amount of 2D geometry the route solver
// needs beyond plain vector arithmetic.
package geom

import "github.com/go-gl/mathgl/mgl64"

// SegmentDistance returns the minimum distance from point p to the line
// segment ab. The closest point is found by projecting p onto the segment
// and clamping the projection parameter to [0, 1]. A zero-length segment
// degenerates to the point-to-point distance.
func SegmentDistance(p, a, b mgl64.Vec2) float64 {
	ab := b.Sub(a)
	len2 := ab.Dot(ab)
	if len2 == 0 {
		return p.Sub(a).Len()
	}

	t := p.Sub(a).Dot(ab) / len2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	closest := a.Add(ab.Mul(t))
	return p.Sub(closest).Len()
}
