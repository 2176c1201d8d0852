package ui

import (
	"math"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/mindmesh/pkg/debug"
	"github.com/vanderheijden86/mindmesh/pkg/force"
	"github.com/vanderheijden86/mindmesh/pkg/model"
)

// World-to-cell scale: a terminal cell stands for roughly 9x18 font units,
// which keeps the force defaults (link distance 150, charge -200) usable
// as-is.
const (
	cellWorldW = 9.0
	cellWorldH = 18.0

	// Label padding added to the measured text box, and the fallback size
	// when measurement is unavailable.
	labelPadW = 24.0
	labelPadH = 16.0

	defaultNodeW = 60.0
	defaultNodeH = 40.0

	maxLabelCells = 24

	minZoom = 0.1
	maxZoom = 4.0
)

// Measurer reports the rendered text size of a label in world units. It is
// injected so layout and collision logic are testable without a real
// rendering surface.
type Measurer func(label string) (w, h float64)

// CellMeasurer measures labels by terminal cell width.
func CellMeasurer(label string) (float64, float64) {
	return float64(runewidth.StringWidth(label)) * cellWorldW, cellWorldH
}

type cellRect struct {
	x, y, w, h int
}

func (r cellRect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// MindMap owns the force simulation and reconciles its render state against
// each new GraphData. It supports pan/zoom, hover tooltips, drag-to-pin and
// click-to-select.
type MindMap struct {
	theme   Theme
	measure Measurer
	sim     *force.Simulation

	width, height int
	ready         bool
	pending       *model.GraphData

	nodes     map[string]*model.Node
	links     map[string]*model.Link
	nodeOrder []string
	linkOrder []string

	camX, camY float64
	zoom       float64

	selected string
	hovered  string
	hoverX   int
	hoverY   int

	dragID    string
	dragMoved bool
	panning   bool
	panFromX  int
	panFromY  int
	panCamX   float64
	panCamY   float64

	rects map[string]cellRect
}

// NewMindMap creates an empty renderer. It stays inert until SetSize gives
// it a usable viewport.
func NewMindMap(theme Theme, measure Measurer) *MindMap {
	if measure == nil {
		measure = CellMeasurer
	}
	return &MindMap{
		theme:   theme,
		measure: measure,
		sim:     force.New(),
		nodes:   make(map[string]*model.Node),
		links:   make(map[string]*model.Link),
		zoom:    1,
		rects:   make(map[string]cellRect),
	}
}

// SetSize updates the viewport. Initialization against a degenerate 0x0
// extent is skipped; data that arrived too early is applied on the first
// usable size.
func (m *MindMap) SetSize(width, height int) {
	m.width, m.height = width, height
	if m.ready || width <= 0 || height <= 0 {
		return
	}
	m.ready = true
	if m.pending != nil {
		data := *m.pending
		m.pending = nil
		m.SetData(data)
	}
}

// Ready reports whether the renderer has a usable viewport.
func (m *MindMap) Ready() bool { return m.ready }

// Selected returns the currently selected node, or nil.
func (m *MindMap) Selected() *model.Node {
	if m.selected == "" {
		return nil
	}
	return m.nodes[m.selected]
}

// ClearSelection drops the current selection.
func (m *MindMap) ClearSelection() { m.selected = "" }

// Nodes returns the rendered nodes in draw order.
func (m *MindMap) Nodes() []*model.Node {
	out := make([]*model.Node, 0, len(m.nodeOrder))
	for _, id := range m.nodeOrder {
		out = append(out, m.nodes[id])
	}
	return out
}

// Links returns the rendered links in draw order.
func (m *MindMap) Links() []*model.Link {
	out := make([]*model.Link, 0, len(m.linkOrder))
	for _, key := range m.linkOrder {
		out = append(out, m.links[key])
	}
	return out
}

// SetData reconciles the renderer against a replacement dataset and reheats
// the simulation so the new topology visibly settles instead of snapping.
// With no viewport yet, the data is stashed and applied on the next SetSize.
func (m *MindMap) SetData(data model.GraphData) {
	if !m.ready {
		d := data
		m.pending = &d
		debug.Log("mindmap: viewport not ready, deferring %d nodes", len(data.Nodes))
		return
	}
	m.reconcile(data)
	m.sim.SetEnergy(force.ReheatEnergy)
}

// reconcile joins the new node and link sets against the rendered ones by
// stable identity: elements present in both are kept as-is (preserving
// position and velocity), missing ones are removed, new ones created.
func (m *MindMap) reconcile(data model.GraphData) {
	// Links join by normalized "sourceId-targetId" identity. Joining by
	// identity rather than index is what keeps link endpoints attached to
	// their nodes across a data swap.
	newLinks := make(map[string]*model.Link, len(data.Links))
	for _, l := range data.Links {
		newLinks[l.Key()] = l
	}
	keptLinks := m.linkOrder[:0]
	for _, key := range m.linkOrder {
		if _, ok := newLinks[key]; ok {
			keptLinks = append(keptLinks, key)
		} else {
			delete(m.links, key)
		}
	}
	m.linkOrder = keptLinks
	for _, l := range data.Links {
		key := l.Key()
		if _, ok := m.links[key]; !ok {
			m.links[key] = model.NewLink(l.SourceID, l.TargetID)
			m.linkOrder = append(m.linkOrder, key)
		}
	}

	// Nodes join by id with the same create/keep/remove discipline.
	newNodes := data.Index()
	keptNodes := m.nodeOrder[:0]
	for _, id := range m.nodeOrder {
		if _, ok := newNodes[id]; ok {
			keptNodes = append(keptNodes, id)
		} else {
			delete(m.nodes, id)
			if m.selected == id {
				m.selected = ""
			}
			if m.hovered == id {
				m.hovered = ""
			}
			if m.dragID == id {
				m.dragID = ""
			}
		}
	}
	m.nodeOrder = keptNodes
	for _, n := range data.Nodes {
		if kept, ok := m.nodes[n.ID]; ok {
			// Same identity: keep the live node (and its simulation
			// state), refresh what the new dataset says about it.
			kept.Data = n.Data
			kept.Color = n.Color
			continue
		}
		m.nodes[n.ID] = n
		m.nodeOrder = append(m.nodeOrder, n.ID)
	}

	// Re-measure every node, new and kept: label text may have changed,
	// and measured size drives both the drawn pill and the collision
	// radius.
	for _, id := range m.nodeOrder {
		m.measureNode(m.nodes[id])
	}

	m.sim.Rebind(m.Nodes(), m.Links())
}

func (m *MindMap) measureNode(n *model.Node) {
	w, h := m.measure(nodeLabel(n))
	if w <= 0 || h <= 0 {
		n.Width, n.Height = defaultNodeW, defaultNodeH
		return
	}
	n.Width = w + labelPadW
	n.Height = h + labelPadH
}

func nodeLabel(n *model.Node) string {
	return truncateCells(n.ID, maxLabelCells)
}

// Tick advances the simulation one step if it is running, and reports
// whether further frames are needed.
func (m *MindMap) Tick() bool {
	if !m.sim.Running() {
		return false
	}
	m.sim.Step()
	return m.sim.Running()
}

// Running reports whether the simulation is unsettled.
func (m *MindMap) Running() bool { return m.sim.Running() }

// --- coordinate transforms --------------------------------------------------

func (m *MindMap) worldToScreen(wx, wy float64) (int, int) {
	sx := (wx-m.camX)*m.zoom/cellWorldW + float64(m.width)/2
	sy := (wy-m.camY)*m.zoom/cellWorldH + float64(m.height)/2
	return int(math.Round(sx)), int(math.Round(sy))
}

func (m *MindMap) screenToWorld(sx, sy int) (float64, float64) {
	wx := (float64(sx)-float64(m.width)/2)*cellWorldW/m.zoom + m.camX
	wy := (float64(sy)-float64(m.height)/2)*cellWorldH/m.zoom + m.camY
	return wx, wy
}

// Zoom returns the current zoom factor.
func (m *MindMap) Zoom() float64 { return m.zoom }

// zoomAt scales around a screen point so the world under the cursor stays
// put. Scale is clamped to [0.1, 4].
func (m *MindMap) zoomAt(sx, sy int, factor float64) {
	wx, wy := m.screenToWorld(sx, sy)
	m.zoom = math.Min(maxZoom, math.Max(minZoom, m.zoom*factor))
	// Re-anchor the camera so (wx, wy) still maps to (sx, sy).
	m.camX = wx - (float64(sx)-float64(m.width)/2)*cellWorldW/m.zoom
	m.camY = wy - (float64(sy)-float64(m.height)/2)*cellWorldH/m.zoom
}

// Pan shifts the camera by cell deltas (keyboard panning).
func (m *MindMap) Pan(dxCells, dyCells int) {
	m.camX += float64(dxCells) * cellWorldW / m.zoom
	m.camY += float64(dyCells) * cellWorldH / m.zoom
}

// ResetView recenters the camera and resets zoom.
func (m *MindMap) ResetView() {
	m.camX, m.camY, m.zoom = 0, 0, 1
}

// --- interaction ------------------------------------------------------------

// Mouse handles a mouse event in map-local cell coordinates. It returns the
// id of a node selected by this event, or "".
func (m *MindMap) Mouse(msg tea.MouseMsg) string {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.zoomAt(msg.X, msg.Y, 1.15)
		return ""
	case tea.MouseButtonWheelDown:
		m.zoomAt(msg.X, msg.Y, 1/1.15)
		return ""
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return ""
		}
		if id := m.hitTest(msg.X, msg.Y); id != "" {
			m.startDrag(id, msg.X, msg.Y)
		} else {
			m.panning = true
			m.panFromX, m.panFromY = msg.X, msg.Y
			m.panCamX, m.panCamY = m.camX, m.camY
		}
	case tea.MouseActionMotion:
		switch {
		case m.dragID != "":
			m.moveDrag(msg.X, msg.Y)
		case m.panning:
			m.camX = m.panCamX - float64(msg.X-m.panFromX)*cellWorldW/m.zoom
			m.camY = m.panCamY - float64(msg.Y-m.panFromY)*cellWorldH/m.zoom
		default:
			m.hovered = m.hitTest(msg.X, msg.Y)
			m.hoverX, m.hoverY = msg.X, msg.Y
		}
	case tea.MouseActionRelease:
		if m.panning {
			m.panning = false
			return ""
		}
		if m.dragID != "" {
			id := m.dragID
			clicked := !m.dragMoved
			m.endDrag()
			if clicked {
				m.selected = id
				return id
			}
		}
	}
	return ""
}

// startDrag pins a node and warms the simulation so the layout stays live
// while manipulated.
func (m *MindMap) startDrag(id string, sx, sy int) {
	n := m.nodes[id]
	if n == nil {
		return
	}
	m.dragID = id
	m.dragMoved = false
	if !m.sim.Running() {
		m.sim.SetEnergy(force.ReheatEnergy)
	}
	m.sim.SetTargetEnergy(force.ReheatEnergy)
	n.Pin(n.X, n.Y)
}

// moveDrag rigidly attaches the pinned node to the pointer.
func (m *MindMap) moveDrag(sx, sy int) {
	n := m.nodes[m.dragID]
	if n == nil {
		m.dragID = ""
		return
	}
	m.dragMoved = true
	wx, wy := m.screenToWorld(sx, sy)
	n.Pin(wx, wy)
}

// endDrag releases the pin. A terminal has a single pointer, so no other
// drag can be active and the energy target always drops back to zero.
func (m *MindMap) endDrag() {
	if n := m.nodes[m.dragID]; n != nil {
		n.Unpin()
	}
	m.dragID = ""
	m.dragMoved = false
	m.sim.SetTargetEnergy(0)
}

// Dragging reports whether a drag is in progress.
func (m *MindMap) Dragging() bool { return m.dragID != "" }

func (m *MindMap) hitTest(x, y int) string {
	// Later-drawn nodes sit on top; test in reverse draw order.
	for i := len(m.nodeOrder) - 1; i >= 0; i-- {
		id := m.nodeOrder[i]
		if r, ok := m.rects[id]; ok && r.contains(x, y) {
			return id
		}
	}
	return ""
}

// --- rendering --------------------------------------------------------------

// View renders the map into its viewport. Links are painted first so nodes
// always cover them.
func (m *MindMap) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	c := NewCanvas(m.width, m.height)

	if len(m.nodeOrder) == 0 {
		empty := m.theme.HelpText.Render("Search a topic to grow a mind map")
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, empty)
	}

	linkStyle := m.theme.LinkLine
	for _, key := range m.linkOrder {
		l := m.links[key]
		if l.Source == nil || l.Target == nil {
			continue
		}
		x0, y0 := m.worldToScreen(l.Source.X, l.Source.Y)
		x1, y1 := m.worldToScreen(l.Target.X, l.Target.Y)
		c.Line(x0, y0, x1, y1, &linkStyle)
	}

	m.rects = make(map[string]cellRect, len(m.nodeOrder))
	for _, id := range m.nodeOrder {
		m.drawNode(c, m.nodes[id])
	}

	if m.hovered != "" && m.dragID == "" {
		m.drawTooltip(c, m.nodes[m.hovered])
	}

	return c.String()
}

func (m *MindMap) drawNode(c *Canvas, n *model.Node) {
	if n == nil {
		return
	}
	label := nodeLabel(n)
	boxW := runewidth.StringWidth(label) + 4
	boxH := 3
	cx, cy := m.worldToScreen(n.X, n.Y)
	r := cellRect{x: cx - boxW/2, y: cy - boxH/2, w: boxW, h: boxH}
	m.rects[n.ID] = r

	style := m.theme.Renderer.NewStyle().Foreground(lipgloss.Color(n.Color))
	switch {
	case n.ID == m.selected:
		style = style.Bold(true).Background(m.theme.Highlight)
	case n.ID == m.hovered:
		style = style.Bold(true)
	}

	c.Box(r.x, r.y, r.w, r.h, n.Data.IsCentral(), &style)
	c.Text(r.x+2, r.y+1, label, &style)
}

func (m *MindMap) drawTooltip(c *Canvas, n *model.Node) {
	if n == nil {
		return
	}
	lines := []string{n.Data.Relation}
	if n.Data.System != "" {
		lines = append(lines, n.Data.System)
	}
	lines = append(lines, truncateCells(n.Data.Concept, 30))

	w := 0
	for _, l := range lines {
		if lw := runewidth.StringWidth(l); lw > w {
			w = lw
		}
	}
	boxW, boxH := w+4, len(lines)+2
	x := clampInt(m.hoverX+2, 0, m.width-boxW)
	y := clampInt(m.hoverY+1, 0, m.height-boxH)

	st := m.theme.Tooltip
	c.Box(x, y, boxW, boxH, false, &st)
	for i, l := range lines {
		c.Text(x+2, y+1+i, l, &st)
	}
}
