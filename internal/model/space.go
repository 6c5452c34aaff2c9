package model

import (
	"time"

	"github.com/davilat/bus-inventory/internal/layout"
)

// Space is a single cell in a layout grid, owned by either a template or
// a diagram (LayoutKind/LayoutID). Only SEAT cells carry SeatNumber,
// SeatType and ReclinementAngle; the constructor and the batch validator
// keep that invariant out of the database's hands.
//
// Spaces edited through reconciliation are soft-deactivated, never
// deleted; template sync is the one path that hard-deletes.
type Space struct {
	ID               uint64           `json:"id"`          // spaces.id
	LayoutKind       LayoutKind       `json:"layout_kind"` // spaces.layout_kind
	LayoutID         uint64           `json:"layout_id"`   // spaces.layout_id
	FloorNumber      int              `json:"floor_number"`
	Position         layout.Position  `json:"position"`          // spaces.pos_x / spaces.pos_y
	SpaceType        layout.SpaceType `json:"space_type"`        // spaces.space_type
	SeatNumber       string           `json:"seat_number"`       // empty unless SEAT
	SeatType         string           `json:"seat_type"`         // empty unless SEAT
	ReclinementAngle int              `json:"reclinement_angle"` // zero unless SEAT
	Amenities        []string         `json:"amenities"`         // spaces.amenities (JSON)
	Meta             map[string]any   `json:"meta"`              // spaces.meta (JSON)
	IsActive         bool             `json:"is_active"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// Key is the canonical position key of this space.
func (s *Space) Key() string {
	return layout.PositionKey(s.FloorNumber, s.Position.X, s.Position.Y)
}

// IsSeat reports whether this space is an active-or-not seat cell.
func (s *Space) IsSeat() bool { return s.SpaceType == layout.SpaceSeat }
