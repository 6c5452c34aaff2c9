package model

// LayoutKind discriminates which entity owns a set of spaces/zones: a
// reusable template or an operational per-bus seat diagram.
type LayoutKind string

const (
	KindTemplate LayoutKind = "TEMPLATE"
	KindDiagram  LayoutKind = "DIAGRAM"
)

// LayoutRef identifies the owning layout of spaces and zones. Spaces and
// zones of templates and diagrams live in shared tables keyed by
// (layout_kind, layout_id).
type LayoutRef struct {
	Kind LayoutKind `json:"kind"`
	ID   uint64     `json:"id"`
}

// TemplateRef builds a reference to a template's collections.
func TemplateRef(id uint64) LayoutRef { return LayoutRef{Kind: KindTemplate, ID: id} }

// DiagramRef builds a reference to a diagram's collections.
func DiagramRef(id uint64) LayoutRef { return LayoutRef{Kind: KindDiagram, ID: id} }
