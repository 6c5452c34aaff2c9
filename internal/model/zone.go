package model

import "time"

// Zone is a named group of rows carrying a price multiplier, scoped to a
// template or a diagram. Zones are cloned by value when a diagram is
// created from a template, so later template zone edits only reach
// diagrams through an explicit sync.
type Zone struct {
	ID              uint64     `json:"id"`          // zones.id
	LayoutKind      LayoutKind `json:"layout_kind"` // zones.layout_kind
	LayoutID        uint64     `json:"layout_id"`   // zones.layout_id
	Name            string     `json:"name"`
	RowNumbers      []int      `json:"row_numbers"`      // zones.row_numbers (JSON)
	PriceMultiplier float64    `json:"price_multiplier"` // zones.price_multiplier
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
