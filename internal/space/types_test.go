package space

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestAddLinkIdempotent(t *testing.T) {
	links := []Link{}
	links = AddLink(links, Link{Source: "a", Target: "b"})
	links = AddLink(links, Link{Source: "a", Target: "b"})
	links = AddLink(links, Link{Source: "b", Target: "a"})

	if len(links) != 1 {
		t.Fatalf("expected 1 link after duplicate adds, got %d", len(links))
	}

	links = AddLink(links, Link{Source: "a", Target: "c"})
	if len(links) != 2 {
		t.Errorf("expected 2 links, got %d", len(links))
	}
}

func TestIndexAndFind(t *testing.T) {
	bodies := []Body{
		{ID: "1", Name: "Sol", Mass: 100},
		{ID: "2", Name: "Terra", Mass: 50, Pos: mgl64.Vec2{150, 0}},
	}

	idx := Index(bodies)
	if idx["2"] != 1 {
		t.Errorf("expected index 1 for body 2, got %d", idx["2"])
	}

	b, ok := Find(bodies, "2")
	if !ok || b.Name != "Terra" {
		t.Errorf("expected to find Terra, got %+v ok=%v", b, ok)
	}

	if _, ok := Find(bodies, "missing"); ok {
		t.Error("expected missing id to report not found")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	bodies := []Body{{ID: "1", Mass: 1, Pos: mgl64.Vec2{1, 2}}}
	c := Clone(bodies)
	c[0].Pos = mgl64.Vec2{9, 9}

	if bodies[0].Pos != (mgl64.Vec2{1, 2}) {
		t.Error("clone mutation leaked into original snapshot")
	}
}
