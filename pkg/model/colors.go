package model

// CentralColor is the fill for the central topic node.
const CentralColor = "#f59e0b"

// DefaultColor is used for concepts with an unrecognized or missing system.
const DefaultColor = "#64748b"

// systemColors maps a concept's system/category to its node fill color.
var systemColors = map[string]string{
	"Cardiovascular":  "#ef4444",
	"Respiratory":     "#38bdf8",
	"Nervous":         "#a78bfa",
	"Endocrine":       "#f472b6",
	"Digestive":       "#fb923c",
	"Renal":           "#fbbf24",
	"Musculoskeletal": "#34d399",
	"Immune":          "#22d3ee",
	"Integumentary":   "#e879f9",
	"Reproductive":    "#f87171",
	"Hematologic":     "#dc2626",
	"Pharmacology":    "#4ade80",
	"Pathology":       "#94a3b8",
	"Microbiology":    "#2dd4bf",
}

// SystemColor returns the fill color for a system, falling back to
// DefaultColor for unrecognized or empty values.
func SystemColor(system string) string {
	if c, ok := systemColors[system]; ok {
		return c
	}
	return DefaultColor
}
