package force

import (
	"fmt"
	"math"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/mindmesh/pkg/model"
)

// TestSimulationStaysFinite drives the simulation through random sequences
// of rebinds, reheats and drags and checks that no position or velocity ever
// becomes NaN or infinite, and that every bound link stays resolved against
// the live node set.
func TestSimulationStaysFinite(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := New()
		s.SetCenter(0, 0)

		genCount := rapid.IntRange(1, 12)
		rounds := rapid.IntRange(1, 4).Draw(t, "rounds")

		for round := 0; round < rounds; round++ {
			n := genCount.Draw(t, "n")
			topic := fmt.Sprintf("topic-%d", round)
			var leaves []string
			for i := 0; i < n; i++ {
				leaves = append(leaves, fmt.Sprintf("%s/c%d", topic, i))
			}
			nodes, links := star(topic, leaves...)
			for _, node := range nodes {
				node.Width = float64(rapid.IntRange(40, 400).Draw(t, "w"))
				node.Height = float64(rapid.IntRange(20, 80).Draw(t, "h"))
			}

			s.Rebind(nodes, links)
			s.SetEnergy(ReheatEnergy)

			// Occasionally drag a node around mid-settle.
			if rapid.Bool().Draw(t, "drag") {
				victim := nodes[rapid.IntRange(0, len(nodes)-1).Draw(t, "victim")]
				victim.Pin(
					rapid.Float64Range(-500, 500).Draw(t, "px"),
					rapid.Float64Range(-500, 500).Draw(t, "py"),
				)
				s.SetTargetEnergy(ReheatEnergy)
				for i := 0; i < 10; i++ {
					s.Step()
				}
				victim.Unpin()
				s.SetTargetEnergy(0)
			}

			s.Settle(500)

			byID := make(map[string]bool, len(s.nodes))
			for _, node := range s.nodes {
				byID[node.ID] = true
				for _, v := range []float64{node.X, node.Y, node.VX, node.VY} {
					if math.IsNaN(v) || math.IsInf(v, 0) {
						t.Fatalf("node %s has non-finite state: %+v", node.ID, node)
					}
				}
			}
			for _, l := range s.links {
				if l.Source == nil || l.Target == nil {
					t.Fatalf("link %s has unresolved endpoint", l.Key())
				}
				if !byID[l.Source.ID] || !byID[l.Target.ID] {
					t.Fatalf("link %s points outside the node set", l.Key())
				}
			}
		}
	})
}

// TestCollideRadiusMonotonicInLabelSize checks that the default collision
// radius never shrinks as the measured label grows.
func TestCollideRadiusMonotonicInLabelSize(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		w := rapid.Float64Range(0, 500).Draw(t, "w")
		h := rapid.Float64Range(0, 100).Draw(t, "h")
		dw := rapid.Float64Range(0, 200).Draw(t, "dw")
		dh := rapid.Float64Range(0, 50).Draw(t, "dh")

		small := defaultRadius(&model.Node{Width: w, Height: h})
		large := defaultRadius(&model.Node{Width: w + dw, Height: h + dh})
		if large < small {
			t.Fatalf("radius shrank: %v -> %v", small, large)
		}
	})
}
