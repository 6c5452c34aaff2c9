package model

import "time"

// Bus is a fleet vehicle. A bus gets its operational seat diagram by
// cloning a layout template at registration time; DiagramID stays nil
// until a diagram is attached.
type Bus struct {
	ID        uint64    `json:"id"`       // buses.id
	OwnerID   uint64    `json:"owner_id"` // buses.owner_id
	Plate     string    `json:"plate"`    // buses.plate (unique per owner)
	ModelName string    `json:"model_name"`
	DiagramID *uint64   `json:"diagram_id"` // buses.diagram_id (nullable)
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
