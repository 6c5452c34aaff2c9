package model

import (
	"time"

	"github.com/davilat/bus-inventory/internal/layout"
)

// SeatDiagram is an operational, per-bus clone of a LayoutTemplate's shape
// at creation time. It owns independent Space and Zone copies.
//
// IsModified flips to true the moment an operator edits the diagram's own
// space configuration, which permanently opts the diagram out of template
// push-downs until an explicit reset-to-template.
type SeatDiagram struct {
	ID               uint64               `json:"id"`          // seat_diagrams.id
	OwnerID          uint64               `json:"owner_id"`    // seat_diagrams.owner_id
	TemplateID       uint64               `json:"template_id"` // seat_diagrams.template_id
	BusID            *uint64              `json:"bus_id"`      // seat_diagrams.bus_id (nullable)
	Name             string               `json:"name"`        // seat_diagrams.name
	NumFloors        int                  `json:"num_floors"`
	SeatsPerFloor    []layout.FloorConfig `json:"seats_per_floor"` // JSON column
	TotalSeats       int                  `json:"total_seats"`
	MaxCapacity      int                  `json:"max_capacity"`
	IsFactoryDefault bool                 `json:"is_factory_default"`
	IsModified       bool                 `json:"is_modified"` // seat_diagrams.is_modified
	IsActive         bool                 `json:"is_active"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// Bounds returns the validation context for this diagram's grid.
func (d *SeatDiagram) Bounds() *layout.Bounds {
	return &layout.Bounds{NumFloors: d.NumFloors, Floors: d.SeatsPerFloor}
}
