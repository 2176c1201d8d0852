package force

import (
	"math"
	"testing"

	"github.com/vanderheijden86/mindmesh/pkg/model"
)

func star(topic string, leaves ...string) ([]*model.Node, []*model.Link) {
	nodes := []*model.Node{{ID: topic, Width: 80, Height: 34}}
	var links []*model.Link
	for _, id := range leaves {
		nodes = append(nodes, &model.Node{ID: id, Width: 80, Height: 34})
		links = append(links, model.NewLink(topic, id))
	}
	return nodes, links
}

func dist(a, b *model.Node) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func TestRebindSeedsNewNodesApart(t *testing.T) {
	s := New()
	nodes, links := star("T", "A", "B", "C")
	s.Rebind(nodes, links)

	for i, a := range nodes {
		for _, b := range nodes[i+1:] {
			if dist(a, b) == 0 {
				t.Errorf("nodes %s and %s seeded at the same point", a.ID, b.ID)
			}
		}
	}
}

func TestRebindPreservesSurvivorState(t *testing.T) {
	s := New()
	nodes, links := star("T", "A", "B")
	s.Rebind(nodes, links)
	s.SetEnergy(ReheatEnergy)
	for i := 0; i < 20; i++ {
		s.Step()
	}

	a := nodes[1]
	x, y, vx, vy := a.X, a.Y, a.VX, a.VY

	// Replace the dataset, keeping node A (same object, as the reconciler
	// does) and introducing a new node C.
	c := &model.Node{ID: "C", Width: 80, Height: 34}
	s.Rebind([]*model.Node{nodes[0], a, c}, []*model.Link{
		model.NewLink("T", "A"),
		model.NewLink("T", "C"),
	})

	if a.X != x || a.Y != y || a.VX != vx || a.VY != vy {
		t.Error("rebind disturbed a surviving node's position or velocity")
	}
	if c.X == 0 && c.Y == 0 {
		t.Error("new node was not seeded")
	}
}

func TestRebindDropsDanglingLinks(t *testing.T) {
	s := New()
	nodes, _ := star("T", "A")
	s.Rebind(nodes, []*model.Link{
		model.NewLink("T", "A"),
		model.NewLink("T", "missing"),
	})

	for _, l := range s.links {
		if l.Source == nil || l.Target == nil {
			t.Fatal("dangling link survived rebind")
		}
	}
	if len(s.links) != 1 {
		t.Fatalf("link count after rebind = %d, want 1", len(s.links))
	}
}

func TestPinnedPositionIsAuthoritative(t *testing.T) {
	s := New()
	nodes, links := star("T", "A", "B", "C", "D")
	s.Rebind(nodes, links)
	s.SetEnergy(ReheatEnergy)
	s.SetTargetEnergy(ReheatEnergy)

	a := nodes[1]
	a.Pin(123, -45)
	for i := 0; i < 50; i++ {
		s.Step()
		if a.X != 123 || a.Y != -45 {
			t.Fatalf("tick %d: pinned node at (%v, %v), want (123, -45)", i, a.X, a.Y)
		}
		if a.VX != 0 || a.VY != 0 {
			t.Fatalf("tick %d: pinned node kept velocity (%v, %v)", i, a.VX, a.VY)
		}
	}
}

func TestUnpinResumesSimulation(t *testing.T) {
	s := New()
	nodes, links := star("T", "A")
	s.Rebind(nodes, links)
	s.SetEnergy(ReheatEnergy)
	s.SetTargetEnergy(ReheatEnergy)

	a := nodes[1]
	// Pin far from the link's rest distance so an unbalanced force remains.
	a.Pin(1000, 0)
	s.Step()
	a.Unpin()

	x, y := a.X, a.Y
	for i := 0; i < 10; i++ {
		s.Step()
	}
	if a.X == x && a.Y == y {
		t.Error("released node did not move under remaining forces")
	}
}

func TestEnergyProtocol(t *testing.T) {
	s := New()
	nodes, links := star("T", "A", "B")
	s.Rebind(nodes, links)

	if s.Running() {
		t.Fatal("fresh simulation should be settled")
	}

	s.SetEnergy(ReheatEnergy)
	if !s.Running() {
		t.Fatal("reheated simulation should be running")
	}

	// A raised target keeps the layout warm indefinitely.
	s.SetTargetEnergy(ReheatEnergy)
	for i := 0; i < 500; i++ {
		s.Step()
	}
	if !s.Running() {
		t.Fatal("simulation cooled despite a raised energy target")
	}

	// Dropping the target lets it settle.
	s.SetTargetEnergy(0)
	steps := s.Settle(1000)
	if s.Running() {
		t.Fatalf("simulation still running after %d settle steps", steps)
	}
}

func TestLargerLabelsSettleFartherApart(t *testing.T) {
	settleDistance := func(w, h float64) float64 {
		s := New()
		a := &model.Node{ID: "A", Width: w, Height: h}
		b := &model.Node{ID: "B", Width: w, Height: h}
		s.Rebind([]*model.Node{a, b}, []*model.Link{model.NewLink("A", "B")})
		s.SetEnergy(1)
		s.Settle(2000)
		return dist(a, b)
	}

	short := settleDistance(60, 40)
	long := settleDistance(240, 40)

	if long < short {
		t.Errorf("long labels settled closer (%v) than short labels (%v)", long, short)
	}
	// Collision radii of the long pair sum past the link distance, so the
	// collide force must win out over link attraction.
	longRadius := math.Hypot(240, 40)/2 + DefaultCollidePadding
	if long < 2*longRadius*0.9 {
		t.Errorf("long-label pair settled at %v, want at least ~%v", long, 2*longRadius*0.9)
	}
}
