package ui

import (
	"fmt"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"pgregory.net/rapid"

	"github.com/vanderheijden86/mindmesh/pkg/model"
)

func testTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(io.Discard))
}

func fixedMeasurer(string) (float64, float64) { return 60, 18 }

func conceptsNamed(names ...string) []model.Concept {
	out := make([]model.Concept, len(names))
	for i, n := range names {
		out[i] = model.Concept{Concept: n, Relation: "related to"}
	}
	return out
}

func TestSetDataDeferredUntilViewportReady(t *testing.T) {
	m := NewMindMap(testTheme(), fixedMeasurer)
	data := model.BuildGraph("Heart", conceptsNamed("Aorta", "Ventricle"))

	m.SetData(data)
	if got := len(m.Nodes()); got != 0 {
		t.Fatalf("data applied with no viewport: %d nodes", got)
	}

	m.SetSize(0, 0)
	if m.Ready() {
		t.Fatal("ready with degenerate viewport")
	}

	m.SetSize(120, 40)
	if !m.Ready() {
		t.Fatal("not ready after usable viewport")
	}
	if got := len(m.Nodes()); got != 3 {
		t.Fatalf("deferred data not applied: %d nodes, want 3", got)
	}
}

func TestReconcilePreservesSurvivingNodes(t *testing.T) {
	m := NewMindMap(testTheme(), fixedMeasurer)
	m.SetSize(120, 40)
	m.SetData(model.BuildGraph("Heart", conceptsNamed("Aorta", "Ventricle")))

	var aorta *model.Node
	for _, n := range m.Nodes() {
		if n.ID == "Aorta" {
			aorta = n
		}
	}
	if aorta == nil {
		t.Fatal("Aorta missing after first SetData")
	}
	aorta.X, aorta.Y = 500, 500
	aorta.VX, aorta.VY = 3, -3

	m.SetData(model.BuildGraph("Heart", conceptsNamed("Aorta", "Atrium")))

	var after *model.Node
	for _, n := range m.Nodes() {
		switch n.ID {
		case "Aorta":
			after = n
		case "Ventricle":
			t.Fatal("removed node still rendered")
		}
	}
	if after != aorta {
		t.Fatal("surviving node was recreated instead of kept")
	}
	if after.X != 500 || after.VX != 3 {
		t.Errorf("surviving node lost simulation state: pos (%v,%v) vel (%v,%v)",
			after.X, after.Y, after.VX, after.VY)
	}
}

func TestReconcileUpdatesKeptNodeData(t *testing.T) {
	m := NewMindMap(testTheme(), fixedMeasurer)
	m.SetSize(120, 40)

	first := model.BuildGraph("Heart", conceptsNamed("Aorta"))
	m.SetData(first)

	second := model.BuildGraph("Heart", []model.Concept{
		{Concept: "Aorta", Relation: "artery of", System: "Cardiovascular", Note: "updated"},
	})
	m.SetData(second)

	for _, n := range m.Nodes() {
		if n.ID == "Aorta" && n.Data.Note != "updated" {
			t.Errorf("kept node Data not refreshed: %+v", n.Data)
		}
	}
}

func TestReconcileDropsSelectionOfRemovedNode(t *testing.T) {
	m := NewMindMap(testTheme(), fixedMeasurer)
	m.SetSize(120, 40)
	m.SetData(model.BuildGraph("Heart", conceptsNamed("Aorta")))

	m.selected = "Aorta"
	m.SetData(model.BuildGraph("Heart", conceptsNamed("Atrium")))
	if m.Selected() != nil {
		t.Error("selection survived removal of its node")
	}
}

func TestSetDataReheats(t *testing.T) {
	m := NewMindMap(testTheme(), fixedMeasurer)
	m.SetSize(120, 40)
	m.SetData(model.BuildGraph("Heart", conceptsNamed("Aorta", "Ventricle")))

	for m.Tick() {
	}
	if m.Running() {
		t.Fatal("simulation never settled")
	}

	m.SetData(model.BuildGraph("Heart", conceptsNamed("Aorta", "Atrium")))
	if !m.Running() {
		t.Error("data swap did not reheat the simulation")
	}
}

func TestDragPinsAndClickSelects(t *testing.T) {
	m := NewMindMap(testTheme(), fixedMeasurer)
	m.SetSize(120, 40)
	m.SetData(model.BuildGraph("Heart", conceptsNamed("Aorta")))
	m.View() // populate hit rects

	r, ok := m.rects["Heart"]
	if !ok {
		t.Fatal("central node has no hit rect")
	}
	cx, cy := r.x+r.w/2, r.y+r.h/2

	// Press, drag away, release: the node follows the pointer while pinned
	// and unpins on release without becoming selected.
	m.Mouse(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonLeft, X: cx, Y: cy})
	if !m.Dragging() {
		t.Fatal("press on node did not start a drag")
	}
	m.Mouse(tea.MouseMsg{Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft, X: cx + 10, Y: cy + 5})
	heart := m.nodes["Heart"]
	if !heart.Pinned() {
		t.Fatal("dragged node is not pinned")
	}
	if id := m.Mouse(tea.MouseMsg{Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft, X: cx + 10, Y: cy + 5}); id != "" {
		t.Errorf("drag release reported selection %q", id)
	}
	if heart.Pinned() {
		t.Error("node still pinned after release")
	}

	// Press and release in place: a click, which selects.
	m.View()
	r = m.rects["Heart"]
	cx, cy = r.x+r.w/2, r.y+r.h/2
	m.Mouse(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonLeft, X: cx, Y: cy})
	if id := m.Mouse(tea.MouseMsg{Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft, X: cx, Y: cy}); id != "Heart" {
		t.Errorf("click selected %q, want Heart", id)
	}
}

func TestZoomClamped(t *testing.T) {
	m := NewMindMap(testTheme(), fixedMeasurer)
	m.SetSize(120, 40)

	for i := 0; i < 50; i++ {
		m.Mouse(tea.MouseMsg{Button: tea.MouseButtonWheelUp, X: 60, Y: 20})
	}
	if m.Zoom() > maxZoom {
		t.Errorf("zoom %v above max %v", m.Zoom(), maxZoom)
	}
	for i := 0; i < 100; i++ {
		m.Mouse(tea.MouseMsg{Button: tea.MouseButtonWheelDown, X: 60, Y: 20})
	}
	if m.Zoom() < minZoom {
		t.Errorf("zoom %v below min %v", m.Zoom(), minZoom)
	}
}

// Any sequence of data swaps must leave every rendered link with both
// endpoints resolved against rendered nodes.
func TestReconcileLinksAlwaysResolved(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := NewMindMap(testTheme(), fixedMeasurer)
		m.SetSize(120, 40)

		names := []string{"Aorta", "Atrium", "Ventricle", "Valve", "Septum", "Myocardium"}
		swaps := rapid.IntRange(1, 6).Draw(t, "swaps")
		for s := 0; s < swaps; s++ {
			subset := rapid.SliceOfNDistinct(rapid.SampledFrom(names), 1, len(names), rapid.ID[string]).Draw(t, fmt.Sprintf("subset%d", s))
			m.SetData(model.BuildGraph("Heart", conceptsNamed(subset...)))
			for i := 0; i < 5; i++ {
				m.Tick()
			}

			byID := make(map[string]*model.Node)
			for _, n := range m.Nodes() {
				byID[n.ID] = n
			}
			for _, l := range m.Links() {
				if l.Source == nil || l.Target == nil {
					t.Fatalf("unresolved link %s", l.Key())
				}
				if byID[l.Source.ID] != l.Source || byID[l.Target.ID] != l.Target {
					t.Fatalf("link %s points at a node not in the render set", l.Key())
				}
			}
		}
	})
}
