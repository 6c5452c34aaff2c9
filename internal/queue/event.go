// Package queue defines the layout domain events exchanged over the
// message broker, their publisher and the background consumer.
package queue

// Event types carried on the layout.events queue.
const (
	EventLayoutReconciled = "layout.reconciled"
	EventTemplateSynced   = "template.synced"
)

// LayoutEvent is published after a layout write commits. For
// EventLayoutReconciled the Layout* fields identify the edited layout
// and the counters describe the batch outcome. For EventTemplateSynced
// the TemplateID and DiagramIDs identify what was pushed; Failed counts
// diagrams whose per-diagram transaction rolled back.
type LayoutEvent struct {
	Type        string   `json:"type"`
	OwnerID     uint64   `json:"owner_id"`
	LayoutKind  string   `json:"layout_kind,omitempty"`
	LayoutID    uint64   `json:"layout_id,omitempty"`
	TemplateID  uint64   `json:"template_id,omitempty"`
	DiagramIDs  []uint64 `json:"diagram_ids,omitempty"`
	Created     int      `json:"created"`
	Updated     int      `json:"updated"`
	Deactivated int      `json:"deactivated,omitempty"`
	Deleted     int      `json:"deleted,omitempty"`
	Failed      int      `json:"failed,omitempty"`
	TotalSeats  int      `json:"total_seats"`
	OccurredAt  string   `json:"occurred_at"`
}
