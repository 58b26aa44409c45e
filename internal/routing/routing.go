// Package routing computes shortest travel routes over the star-link
// graph. Edge weights come from live body positions, and edges passing
// too close to the anchor body are penalized or forbidden outright (the
// solar exclusion zone).
package routing

import (
	"container/heap"
	"math"

	"github.com/kirolan/orbitlab/internal/geom"
	"github.com/kirolan/orbitlab/internal/space"
)

// Options configure graph construction and the exclusion-zone cost model.
// PowerExponent defaults to 1 (linear fuel cost) when left zero.
type Options struct {
	AnchorID            string
	ExclusionRadius     float64
	ForbidThroughAnchor bool
	Penalty             float64
	PowerExponent       float64
}

// Route is a solver result. An unreachable goal yields Cost = +Inf and an
// empty path; callers treat that as "no route", not an error.
type Route struct {
	Path []string
	Cost float64
}

// Reachable reports whether the route actually connects start to goal.
func (r Route) Reachable() bool {
	return !math.IsInf(r.Cost, 1)
}

type edge struct {
	to     string
	weight float64
}

// buildGraph turns the link list into an undirected adjacency map.
// Dangling links, self-links and duplicate pairs are skipped silently.
func buildGraph(bodies []space.Body, links []space.Link, opts Options) map[string][]edge {
	pos := space.Positions(bodies)
	anchorPos, hasAnchor := pos[opts.AnchorID]

	exponent := opts.PowerExponent
	if exponent == 0 {
		exponent = 1
	}

	adj := make(map[string][]edge, len(bodies))
	seen := make(map[[2]string]bool, len(links))

	for _, l := range links {
		a, okA := pos[l.Source]
		b, okB := pos[l.Target]
		if !okA || !okB || l.Source == l.Target {
			continue
		}

		key := [2]string{l.Source, l.Target}
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		w := math.Pow(a.Sub(b).Len(), exponent)

		if hasAnchor && opts.ExclusionRadius > 0 &&
			geom.SegmentDistance(anchorPos, a, b) < opts.ExclusionRadius {
			if opts.ForbidThroughAnchor {
				continue
			}
			w += opts.Penalty
		}

		adj[l.Source] = append(adj[l.Source], edge{to: l.Target, weight: w})
		adj[l.Target] = append(adj[l.Target], edge{to: l.Source, weight: w})
	}
	return adj
}

// ShortestPath runs single-source Dijkstra from start, stopping as soon
// as goal is settled. Ties between equal-cost frontier entries break
// toward the lexicographically lowest id so results are deterministic.
func ShortestPath(bodies []space.Body, links []space.Link, start, goal string, opts Options) Route {
	if _, ok := space.Find(bodies, start); !ok {
		return Route{Cost: math.Inf(1)}
	}
	if _, ok := space.Find(bodies, goal); !ok {
		return Route{Cost: math.Inf(1)}
	}
	if start == goal {
		return Route{Path: []string{start}, Cost: 0}
	}

	adj := buildGraph(bodies, links, opts)

	dist := map[string]float64{start: 0}
	prev := map[string]string{}

	pq := &frontier{{id: start, cost: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(frontierItem)
		if cur.cost > dist[cur.id] {
			continue // stale entry
		}
		if cur.id == goal {
			return Route{Path: reconstruct(prev, start, goal), Cost: cur.cost}
		}

		for _, e := range adj[cur.id] {
			next := cur.cost + e.weight
			if d, ok := dist[e.to]; !ok || next < d {
				dist[e.to] = next
				prev[e.to] = cur.id
				heap.Push(pq, frontierItem{id: e.to, cost: next})
			}
		}
	}

	return Route{Cost: math.Inf(1)}
}

// reconstruct walks the predecessor map back from goal and reverses the
// result into start-to-goal order.
func reconstruct(prev map[string]string, start, goal string) []string {
	path := []string{goal}
	for at := goal; at != start; {
		at = prev[at]
		path = append(path, at)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type frontierItem struct {
	id   string
	cost float64
}

type frontier []frontierItem

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].cost != f[j].cost {
		return f[i].cost < f[j].cost
	}
	return f[i].id < f[j].id
}
func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

func (f *frontier) Push(x any) { *f = append(*f, x.(frontierItem)) }

func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	item := old[n-1]
	*f = old[:n-1]
	return item
}
