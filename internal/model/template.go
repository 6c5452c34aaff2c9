package model

import (
	"time"

	"github.com/davilat/bus-inventory/internal/layout"
)

// LayoutTemplate is a reusable seat-layout blueprint. Creating a template
// atomically generates its seat spaces from SeatsPerFloor; diagrams are
// cloned from it and evolve independently afterwards.
//
// A template is never hard-deleted while diagrams reference it; IsActive
// soft-hides it from listings instead.
type LayoutTemplate struct {
	ID               uint64               `json:"id"`                 // layout_templates.id
	OwnerID          uint64               `json:"owner_id"`           // layout_templates.owner_id
	Name             string               `json:"name"`               // layout_templates.name
	Description      *string              `json:"description"`        // layout_templates.description (nullable)
	NumFloors        int                  `json:"num_floors"`         // layout_templates.num_floors
	SeatsPerFloor    []layout.FloorConfig `json:"seats_per_floor"`    // layout_templates.seats_per_floor (JSON)
	TotalSeats       int                  `json:"total_seats"`        // layout_templates.total_seats
	MaxCapacity      int                  `json:"max_capacity"`       // layout_templates.max_capacity
	IsFactoryDefault bool                 `json:"is_factory_default"` // layout_templates.is_factory_default
	IsActive         bool                 `json:"is_active"`          // layout_templates.is_active
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// Bounds returns the validation context for this template's grid.
func (t *LayoutTemplate) Bounds() *layout.Bounds {
	return &layout.Bounds{NumFloors: t.NumFloors, Floors: t.SeatsPerFloor}
}
