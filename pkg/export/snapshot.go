// Package export renders a settled mind map to a static SVG or PNG file, for
// sharing a study map outside the terminal.
package export

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/mindmesh/pkg/force"
	"github.com/vanderheijden86/mindmesh/pkg/model"
)

// SnapshotOptions controls snapshot export behaviour.
type SnapshotOptions struct {
	Path   string          // output path; format inferred from extension when Format empty
	Format string          // "svg" or "png" (case-insensitive)
	Title  string          // rendered in the summary block; defaults to the central topic
	Data   model.GraphData // graph to render
	Settle int             // max simulation steps before rendering (0 = default)
}

// SaveSnapshot lays the graph out with the force simulation, then renders it
// to a static file.
func SaveSnapshot(opts SnapshotOptions) error {
	if len(opts.Data.Nodes) == 0 {
		return fmt.Errorf("no nodes to export")
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		default:
			format = "svg" // safe default
			if opts.Path != "" && filepath.Ext(opts.Path) == "" {
				opts.Path += ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}

	if dir := filepath.Dir(opts.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create parent dir: %w", err)
		}
	}

	layout := buildLayout(opts)

	switch format {
	case "png":
		return renderPNG(opts.Path, layout)
	default:
		return renderSVG(opts.Path, layout)
	}
}

// --- layout computation ------------------------------------------------------

type layoutNode struct {
	Label    string
	Relation string
	Central  bool
	Color    color.RGBA
	X, Y     float64 // top-left after settle and margin shift
	W, H     float64
}

type layoutEdge struct {
	X1, Y1, X2, Y2 float64
}

type layoutResult struct {
	Nodes  []layoutNode
	Edges  []layoutEdge
	Width  int
	Height int
	Title  string
}

const (
	snapNodeW   = 170.0
	snapNodeH   = 46.0
	snapMargin  = 40.0
	snapHeader  = 56.0
	maxLabelLen = 26
)

// buildLayout settles the force simulation and shifts world coordinates into
// a positive image frame with a header band.
func buildLayout(opts SnapshotOptions) layoutResult {
	nodes := opts.Data.Nodes
	links := opts.Data.Links
	for _, n := range nodes {
		n.Width, n.Height = snapNodeW, snapNodeH
	}

	sim := force.New()
	sim.Rebind(nodes, links)
	steps := opts.Settle
	if steps <= 0 {
		steps = 300
	}
	sim.Settle(steps)

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		minX = math.Min(minX, n.X-n.Width/2)
		minY = math.Min(minY, n.Y-n.Height/2)
		maxX = math.Max(maxX, n.X+n.Width/2)
		maxY = math.Max(maxY, n.Y+n.Height/2)
	}

	shiftX := snapMargin - minX
	shiftY := snapMargin + snapHeader - minY

	title := strings.TrimSpace(opts.Title)
	var out []layoutNode
	for _, n := range nodes {
		central := n.Data.IsCentral()
		if central && title == "" {
			title = n.Data.Concept
		}
		out = append(out, layoutNode{
			Label:    truncate(n.Data.Concept, maxLabelLen),
			Relation: truncate(n.Data.Relation, maxLabelLen),
			Central:  central,
			Color:    parseHex(n.Color),
			X:        n.X - n.Width/2 + shiftX,
			Y:        n.Y - n.Height/2 + shiftY,
			W:        n.Width,
			H:        n.Height,
		})
	}
	if title == "" {
		title = "Mind Map"
	}

	var edges []layoutEdge
	for _, l := range links {
		if l.Source == nil || l.Target == nil {
			continue
		}
		edges = append(edges, layoutEdge{
			X1: l.Source.X + shiftX, Y1: l.Source.Y + shiftY,
			X2: l.Target.X + shiftX, Y2: l.Target.Y + shiftY,
		})
	}

	width := int(maxX - minX + 2*snapMargin)
	height := int(maxY - minY + 2*snapMargin + snapHeader)
	if width < 640 {
		width = 640
	}
	if height < 480 {
		height = 480
	}

	return layoutResult{Nodes: out, Edges: edges, Width: width, Height: height, Title: title}
}

// --- rendering ---------------------------------------------------------------

var (
	colorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorHeaderBG = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	colorStroke   = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorEdge     = color.RGBA{0x94, 0xa3, 0xb8, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorFallback = color.RGBA{0x64, 0x74, 0x8b, 0xff}
)

func renderPNG(path string, layout layoutResult) error {
	dc := gg.NewContext(layout.Width, layout.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 16, float64(layout.Width)-32, snapHeader-16, 10)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(colorText)
	dc.DrawStringAnchored(layout.Title, 32, 36, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(fmt.Sprintf("nodes: %d  links: %d", len(layout.Nodes), len(layout.Edges)),
		float64(layout.Width)-220, 36, 0, 0.5)

	dc.SetColor(colorEdge)
	dc.SetLineWidth(1.5)
	for _, e := range layout.Edges {
		dc.DrawLine(e.X1, e.Y1, e.X2, e.Y2)
		dc.Stroke()
	}

	for _, n := range layout.Nodes {
		fill := lighten(n.Color)
		dc.SetColor(fill)
		dc.DrawRoundedRectangle(n.X, n.Y, n.W, n.H, 8)
		dc.Fill()
		dc.SetColor(n.Color)
		if n.Central {
			dc.SetLineWidth(2.5)
		} else {
			dc.SetLineWidth(1.2)
		}
		dc.DrawRoundedRectangle(n.X, n.Y, n.W, n.H, 8)
		dc.Stroke()

		dc.SetColor(colorText)
		dc.DrawStringAnchored(n.Label, n.X+10, n.Y+16, 0, 0.5)
		if !n.Central && n.Relation != "" {
			dc.SetColor(colorSubtle)
			dc.DrawStringAnchored(n.Relation, n.X+10, n.Y+32, 0, 0.5)
		}
	}

	return dc.SavePNG(path)
}

func renderSVG(path string, layout layoutResult) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return renderSVGToWriter(file, layout)
}

func renderSVGToWriter(w io.Writer, layout layoutResult) error {
	canvas := svg.New(w)
	canvas.Start(layout.Width, layout.Height)
	canvas.Rect(0, 0, layout.Width, layout.Height, "fill:"+css(colorBackdrop))
	canvas.Roundrect(16, 16, layout.Width-32, int(snapHeader-16), 10, 10, "fill:"+css(colorHeaderBG))
	canvas.Text(32, 40, layout.Title,
		fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	canvas.Text(layout.Width-220, 40,
		fmt.Sprintf("nodes: %d  links: %d", len(layout.Nodes), len(layout.Edges)),
		fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))

	for _, e := range layout.Edges {
		canvas.Line(int(e.X1), int(e.Y1), int(e.X2), int(e.Y2),
			fmt.Sprintf("stroke:%s;stroke-width:1.5", css(colorEdge)))
	}

	for _, n := range layout.Nodes {
		strokeW := "1.2"
		if n.Central {
			strokeW = "2.5"
		}
		canvas.Roundrect(int(n.X), int(n.Y), int(n.W), int(n.H), 8, 8,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%s", css(lighten(n.Color)), css(n.Color), strokeW))
		canvas.Text(int(n.X)+10, int(n.Y)+20, n.Label,
			fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace;font-weight:bold", css(colorText)))
		if !n.Central && n.Relation != "" {
			canvas.Text(int(n.X)+10, int(n.Y)+36, n.Relation,
				fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace", css(colorSubtle)))
		}
	}

	canvas.End()
	return nil
}

// --- helpers -----------------------------------------------------------------

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// parseHex parses "#rrggbb"; anything else falls back to a neutral slate.
func parseHex(s string) color.RGBA {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return colorFallback
	}
	return color.RGBA{r, g, b, 0xff}
}

// lighten blends a color toward white for node fills, keeping the full color
// for the border.
func lighten(c color.RGBA) color.RGBA {
	mix := func(v uint8) uint8 { return uint8((uint16(v) + 3*0xff) / 4) }
	return color.RGBA{mix(c.R), mix(c.G), mix(c.B), 0xff}
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
