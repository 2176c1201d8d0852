package model

// Node is a positioned concept in the mind map. X/Y/VX/VY are owned by the
// force simulation; FX/FY, when non-nil, pin the node to a fixed position
// (drag interaction). Width/Height are derived from the rendered label and
// feed the collision radius, so label size directly drives physical spacing.
type Node struct {
	ID     string // concept name, unique within a graph; the sole join key
	Width  float64
	Height float64
	Color  string // hex fill color, from the system lookup table

	X, Y   float64
	VX, VY float64
	FX, FY *float64

	Data Concept
}

// Pin fixes the node at (x, y). The simulation treats a pinned position as
// authoritative until Unpin.
func (n *Node) Pin(x, y float64) {
	fx, fy := x, y
	n.FX, n.FY = &fx, &fy
}

// Unpin releases a pinned node back to free simulation.
func (n *Node) Unpin() {
	n.FX, n.FY = nil, nil
}

// Pinned reports whether the node currently has a fixed position.
func (n *Node) Pinned() bool {
	return n.FX != nil && n.FY != nil
}

// Link connects two nodes. Endpoints may arrive as bare ids or as resolved
// node references; both are acceptable representations of the same link, so
// identity is always computed over normalized ids (see LinkKey). Source and
// Target are resolved against the live node set before the simulation runs.
type Link struct {
	SourceID string
	TargetID string

	Source *Node
	Target *Node
}

// NewLink builds a link from either endpoint representation (string id or
// *Node). Unknown endpoint types yield an empty id, which Resolve rejects.
func NewLink(source, target any) *Link {
	return &Link{SourceID: EndpointID(source), TargetID: EndpointID(target)}
}

// EndpointID normalizes a link endpoint to its node id.
func EndpointID(endpoint any) string {
	switch e := endpoint.(type) {
	case string:
		return e
	case *Node:
		if e == nil {
			return ""
		}
		return e.ID
	case Node:
		return e.ID
	}
	return ""
}

// Key returns the stable link identity "sourceId-targetId".
func (l *Link) Key() string {
	return l.SourceID + "-" + l.TargetID
}

// LinkKey computes the stable identity for any endpoint representation
// without constructing a Link.
func LinkKey(source, target any) string {
	return EndpointID(source) + "-" + EndpointID(target)
}

// Resolve binds Source/Target pointers from an id-indexed node map. It
// reports whether both endpoints are present in the node set.
func (l *Link) Resolve(byID map[string]*Node) bool {
	l.Source = byID[l.SourceID]
	l.Target = byID[l.TargetID]
	return l.Source != nil && l.Target != nil
}

// GraphData is the full dataset the renderer observes. A new value fully
// replaces the previous one on every completed search.
type GraphData struct {
	Nodes []*Node
	Links []*Link
}

// Index returns an id-indexed map over the node set.
func (g GraphData) Index() map[string]*Node {
	byID := make(map[string]*Node, len(g.Nodes))
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}
	return byID
}

// BuildGraph maps a generative-service result into a star-shaped graph: one
// central node for the topic plus one node per concept, each linked from the
// central node. Concepts whose name collides with an earlier one (or with the
// topic itself) are dropped so node ids stay unique.
func BuildGraph(topic string, concepts []Concept) GraphData {
	central := &Node{
		ID:    topic,
		Color: CentralColor,
		Data:  Central(topic),
	}

	g := GraphData{Nodes: []*Node{central}}
	seen := map[string]bool{topic: true}

	for _, c := range concepts {
		if c.Concept == "" || seen[c.Concept] {
			continue
		}
		seen[c.Concept] = true
		g.Nodes = append(g.Nodes, &Node{
			ID:    c.Concept,
			Color: SystemColor(c.System),
			Data:  c,
		})
		g.Links = append(g.Links, NewLink(central, c.Concept))
	}
	return g
}
