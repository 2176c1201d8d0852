package export

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/mindmesh/pkg/model"
)

func sampleData() model.GraphData {
	return model.BuildGraph("Diabetes", []model.Concept{
		{Concept: "Insulin", Relation: "regulated by", System: "Endocrine"},
		{Concept: "Neuropathy", Relation: "complication of", System: "Nervous"},
		{Concept: "Metformin", Relation: "treatment for", System: "Pharmacology"},
	})
}

func TestSaveSnapshotSVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.svg")
	err := SaveSnapshot(SnapshotOptions{Path: path, Data: sampleData(), Settle: 50})
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(raw)
	for _, want := range []string{"<svg", "Diabetes", "Insulin", "complication of", "</svg>"} {
		if !strings.Contains(out, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
}

func TestSaveSnapshotPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.png")
	err := SaveSnapshot(SnapshotOptions{Path: path, Data: sampleData(), Settle: 50})
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(raw, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}

func TestSaveSnapshotInfersFormat(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "map") // no extension
	if err := SaveSnapshot(SnapshotOptions{Path: path, Data: sampleData(), Settle: 10}); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if _, err := os.Stat(path + ".svg"); err != nil {
		t.Errorf("extensionless path did not default to .svg: %v", err)
	}

	if err := SaveSnapshot(SnapshotOptions{Path: filepath.Join(dir, "x.txt"), Format: "gif", Data: sampleData()}); err == nil {
		t.Error("unsupported format accepted")
	}
}

func TestSaveSnapshotRejectsEmptyGraph(t *testing.T) {
	err := SaveSnapshot(SnapshotOptions{Path: "out.svg"})
	if err == nil {
		t.Fatal("empty graph accepted")
	}
}

func TestLayoutNodesInsideFrame(t *testing.T) {
	layout := buildLayout(SnapshotOptions{Data: sampleData(), Settle: 100})
	for _, n := range layout.Nodes {
		if n.X < 0 || n.Y < snapHeader || n.X+n.W > float64(layout.Width) || n.Y+n.H > float64(layout.Height) {
			t.Errorf("node %q at (%v,%v) outside %dx%d frame", n.Label, n.X, n.Y, layout.Width, layout.Height)
		}
	}
	if layout.Title != "Diabetes" {
		t.Errorf("title = %q, want central topic", layout.Title)
	}
}

func TestParseHex(t *testing.T) {
	if got := parseHex("#f59e0b"); got != (color.RGBA{0xf5, 0x9e, 0x0b, 0xff}) {
		t.Errorf("parseHex = %+v", got)
	}
	if got := parseHex("tomato"); got != colorFallback {
		t.Errorf("bad input gave %+v, want fallback", got)
	}
}
