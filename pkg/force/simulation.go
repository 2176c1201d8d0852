// Package force implements the physics simulation behind the mind map: a
// velocity-Verlet style force layout with link attraction, many-body
// repulsion, per-node collision avoidance and viewport centering.
//
// The simulation is an owned, single-writer resource. The renderer drives it
// through an explicit protocol: Rebind replaces the node/link sets after a
// data change, SetEnergy/SetTargetEnergy implement the reheat/cool protocol
// (data loads and drags keep the layout warm, release lets it settle), and
// Step advances one tick. Pinned nodes (Node.FX/FY) have authoritative
// positions each tick regardless of force contributions.
package force

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/mindmesh/pkg/model"
)

// Force defaults, tuned for labels measured in font units (~9 per character).
const (
	DefaultLinkDistance   = 150
	DefaultLinkStrength   = 0.5
	DefaultChargeStrength = -200
	DefaultCollidePadding = 8

	// ReheatEnergy is the alpha level used when new data arrives or a drag
	// starts, high enough that the layout visibly re-settles instead of
	// snapping.
	ReheatEnergy = 0.3

	alphaMin      = 0.001
	velocityDecay = 0.4
	initialRadius = 10
	maxSettleTime = 300 // ticks for a full decay from alpha 1
)

// goldenAngle spreads initial placements in a phyllotaxis spiral so new
// nodes never start stacked on top of each other.
var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// Simulation evolves 2D positions for a node set under the four forces.
type Simulation struct {
	nodes []*model.Node
	links []*model.Link

	alpha       float64
	alphaTarget float64
	alphaDecay  float64

	linkDistance   float64
	linkStrength   float64
	chargeStrength float64
	center         r2.Vec

	radius func(*model.Node) float64

	seen   map[string]bool
	placed int
	rng    *rand.Rand
}

// New constructs a stopped simulation with default force parameters and a
// center at the world origin.
func New() *Simulation {
	return &Simulation{
		alphaDecay:     1 - math.Pow(alphaMin, 1.0/maxSettleTime),
		linkDistance:   DefaultLinkDistance,
		linkStrength:   DefaultLinkStrength,
		chargeStrength: DefaultChargeStrength,
		radius:         defaultRadius,
		seen:           make(map[string]bool),
		rng:            rand.New(rand.NewSource(1)),
	}
}

func defaultRadius(n *model.Node) float64 {
	return math.Hypot(n.Width, n.Height)/2 + DefaultCollidePadding
}

// SetCenter moves the centering force's target point.
func (s *Simulation) SetCenter(x, y float64) {
	s.center = r2.Vec{X: x, Y: y}
}

// SetRadius replaces the collision radius function. The function is consulted
// live on every tick, so radii follow node re-measurement automatically.
func (s *Simulation) SetRadius(fn func(*model.Node) float64) {
	if fn != nil {
		s.radius = fn
	}
}

// Rebind replaces the simulation's node and link references. Nodes whose id
// has been seen before keep their position and velocity; unseen nodes are
// seeded on a phyllotaxis spiral around the center. Links are resolved
// against the new node set; links with a dangling endpoint are dropped.
func (s *Simulation) Rebind(nodes []*model.Node, links []*model.Link) {
	s.nodes = nodes

	byID := make(map[string]*model.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
		if !s.seen[n.ID] {
			s.place(n)
			s.seen[n.ID] = true
		}
	}

	resolved := links[:0]
	for _, l := range links {
		if l.Resolve(byID) {
			resolved = append(resolved, l)
		}
	}
	s.links = resolved
}

func (s *Simulation) place(n *model.Node) {
	radius := initialRadius * math.Sqrt(0.5+float64(s.placed))
	angle := float64(s.placed) * goldenAngle
	n.X = s.center.X + radius*math.Cos(angle)
	n.Y = s.center.Y + radius*math.Sin(angle)
	n.VX, n.VY = 0, 0
	s.placed++
}

// SetEnergy raises (or lowers) the simulation's alpha and implicitly
// restarts stepping: callers keep ticking while Running reports true.
func (s *Simulation) SetEnergy(a float64) {
	s.alpha = clamp(a, 0, 1)
}

// SetTargetEnergy sets the level alpha decays toward. A non-zero target
// keeps the simulation warm indefinitely (active drag); zero lets it settle.
func (s *Simulation) SetTargetEnergy(a float64) {
	s.alphaTarget = clamp(a, 0, 1)
}

// Energy returns the current alpha.
func (s *Simulation) Energy() float64 { return s.alpha }

// TargetEnergy returns the current alpha target.
func (s *Simulation) TargetEnergy() float64 { return s.alphaTarget }

// Running reports whether the layout is still unsettled and needs ticks.
func (s *Simulation) Running() bool {
	return s.alpha >= alphaMin || s.alphaTarget >= alphaMin
}

// Step advances the simulation one tick: decay alpha toward its target,
// apply the four forces to velocities, then integrate positions. Pinned
// nodes snap to their fixed position with zeroed velocity.
func (s *Simulation) Step() {
	if len(s.nodes) == 0 {
		s.alpha = 0
		return
	}

	s.alpha += (s.alphaTarget - s.alpha) * s.alphaDecay

	s.applyLinks()
	s.applyCharge()
	s.applyCollide()
	s.applyCenter()

	for _, n := range s.nodes {
		if n.FX != nil {
			n.X, n.VX = *n.FX, 0
		} else {
			n.VX *= 1 - velocityDecay
			n.X += n.VX
		}
		if n.FY != nil {
			n.Y, n.VY = *n.FY, 0
		} else {
			n.VY *= 1 - velocityDecay
			n.Y += n.VY
		}
	}
}

// Settle steps until the simulation cools or maxSteps elapse, returning the
// number of steps taken. Used by the headless snapshot path.
func (s *Simulation) Settle(maxSteps int) int {
	steps := 0
	for s.Running() && steps < maxSteps {
		s.Step()
		steps++
	}
	return steps
}

// applyLinks pulls linked nodes toward the target link distance.
func (s *Simulation) applyLinks() {
	for _, l := range s.links {
		src, tgt := l.Source, l.Target
		d := r2.Vec{
			X: tgt.X + tgt.VX - src.X - src.VX,
			Y: tgt.Y + tgt.VY - src.Y - src.VY,
		}
		d = s.jiggle(d)
		dist := math.Hypot(d.X, d.Y)
		k := (dist - s.linkDistance) / dist * s.alpha * s.linkStrength
		d = r2.Scale(k, d)
		tgt.VX -= d.X / 2
		tgt.VY -= d.Y / 2
		src.VX += d.X / 2
		src.VY += d.Y / 2
	}
}

// applyCharge applies pairwise many-body repulsion. The node counts here are
// small (a topic star), so the O(n^2) pass beats a Barnes-Hut tree.
func (s *Simulation) applyCharge() {
	for i, a := range s.nodes {
		for _, b := range s.nodes[i+1:] {
			d := s.jiggle(r2.Vec{X: b.X - a.X, Y: b.Y - a.Y})
			l2 := d.X*d.X + d.Y*d.Y
			if l2 < 1 {
				// Clamp near-coincident pairs so repulsion stays finite.
				l2 = math.Sqrt(l2)
			}
			w := s.chargeStrength * s.alpha / l2
			b.VX += d.X * w
			b.VY += d.Y * w
			a.VX -= d.X * w
			a.VY -= d.Y * w
		}
	}
}

// applyCollide pushes overlapping nodes apart, each node's radius derived
// from its rendered size so larger labels claim more space.
func (s *Simulation) applyCollide() {
	for i, a := range s.nodes {
		ra := s.radius(a)
		for _, b := range s.nodes[i+1:] {
			rb := s.radius(b)
			d := s.jiggle(r2.Vec{
				X: a.X + a.VX - b.X - b.VX,
				Y: a.Y + a.VY - b.Y - b.VY,
			})
			l2 := d.X*d.X + d.Y*d.Y
			r := ra + rb
			if l2 >= r*r {
				continue
			}
			dist := math.Hypot(d.X, d.Y)
			push := (r - dist) / dist
			wb := rb * rb / (ra*ra + rb*rb)
			a.VX += d.X * push * wb
			a.VY += d.Y * push * wb
			b.VX -= d.X * push * (1 - wb)
			b.VY -= d.Y * push * (1 - wb)
		}
	}
}

// applyCenter translates the whole layout so its centroid sits on the
// center point. Pinned nodes are shifted too and re-snapped on integration.
func (s *Simulation) applyCenter() {
	var sum r2.Vec
	for _, n := range s.nodes {
		sum = r2.Add(sum, r2.Vec{X: n.X, Y: n.Y})
	}
	shift := r2.Sub(s.center, r2.Scale(1/float64(len(s.nodes)), sum))
	for _, n := range s.nodes {
		n.X += shift.X
		n.Y += shift.Y
	}
}

// jiggle replaces a zero vector with a tiny random offset so coincident
// nodes separate instead of dividing by zero.
func (s *Simulation) jiggle(d r2.Vec) r2.Vec {
	if d.X == 0 && d.Y == 0 {
		return r2.Vec{
			X: (s.rng.Float64() - 0.5) * 1e-6,
			Y: (s.rng.Float64() - 0.5) * 1e-6,
		}
	}
	return d
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
