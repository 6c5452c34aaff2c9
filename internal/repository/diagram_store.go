package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/davilat/bus-inventory/internal/layout"
	"github.com/davilat/bus-inventory/internal/model"
)

const diagramCols = `id, owner_id, template_id, bus_id, name, num_floors, seats_per_floor,
	total_seats, max_capacity, is_factory_default, is_modified, is_active, created_at, updated_at`

// CreateDiagram inserts a seat diagram. On success the diagram's ID is
// populated.
func (s *SQLStore) CreateDiagram(ctx context.Context, d *model.SeatDiagram) error {
	floors, err := marshalJSON(d.SeatsPerFloor)
	if err != nil {
		return err
	}
	const q = `INSERT INTO seat_diagrams
	           (owner_id, template_id, bus_id, name, num_floors, seats_per_floor,
	            total_seats, max_capacity, is_factory_default, is_modified, is_active)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := s.q.ExecContext(ctx, q,
		d.OwnerID, d.TemplateID, d.BusID, d.Name, d.NumFloors, floors,
		d.TotalSeats, d.MaxCapacity, d.IsFactoryDefault, d.IsModified, d.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	return nil
}

func scanDiagram(row interface{ Scan(...any) error }) (*model.SeatDiagram, error) {
	var d model.SeatDiagram
	var floors sql.NullString
	err := row.Scan(&d.ID, &d.OwnerID, &d.TemplateID, &d.BusID, &d.Name, &d.NumFloors, &floors,
		&d.TotalSeats, &d.MaxCapacity, &d.IsFactoryDefault, &d.IsModified, &d.IsActive,
		&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	d.SeatsPerFloor = []layout.FloorConfig{}
	if err := unmarshalJSON(floors, &d.SeatsPerFloor); err != nil {
		return nil, err
	}
	return &d, nil
}

// DiagramByID retrieves a diagram without ownership check.
func (s *SQLStore) DiagramByID(ctx context.Context, id uint64) (*model.SeatDiagram, error) {
	const q = `SELECT ` + diagramCols + ` FROM seat_diagrams WHERE id = ?`
	d, err := scanDiagram(s.q.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDiagramNotFound
		}
		return nil, err
	}
	return d, nil
}

// DiagramByIDAndOwner retrieves a diagram while enforcing ownership.
func (s *SQLStore) DiagramByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.SeatDiagram, error) {
	const q = `SELECT ` + diagramCols + ` FROM seat_diagrams WHERE id = ? AND owner_id = ?`
	d, err := scanDiagram(s.q.QueryRowContext(ctx, q, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDiagramNotFound
		}
		return nil, err
	}
	return d, nil
}

// DiagramsByTemplate lists every active diagram cloned from a template,
// in creation order. The synchronizer walks this list.
func (s *SQLStore) DiagramsByTemplate(ctx context.Context, templateID uint64) ([]model.SeatDiagram, error) {
	const q = `SELECT ` + diagramCols + ` FROM seat_diagrams
	           WHERE template_id = ? AND is_active = 1 ORDER BY id`
	rows, err := s.q.QueryContext(ctx, q, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.SeatDiagram
	for rows.Next() {
		d, err := scanDiagram(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}
	return result, rows.Err()
}

// UpdateDiagramShape rewrites a diagram's structural fields. The name is
// deliberately not touched here: template sync must not clobber a name
// the operator customized.
func (s *SQLStore) UpdateDiagramShape(ctx context.Context, d *model.SeatDiagram) error {
	floors, err := marshalJSON(d.SeatsPerFloor)
	if err != nil {
		return err
	}
	const q = `UPDATE seat_diagrams
	           SET num_floors = ?, seats_per_floor = ?, total_seats = ?,
	               max_capacity = ?, is_factory_default = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := s.q.ExecContext(ctx, q,
		d.NumFloors, floors, d.TotalSeats, d.MaxCapacity, d.IsFactoryDefault, d.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDiagramNotFound
	}
	return nil
}

// SetDiagramModified flips the local-modification flag.
func (s *SQLStore) SetDiagramModified(ctx context.Context, id uint64, modified bool) error {
	const q = `UPDATE seat_diagrams SET is_modified = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := s.q.ExecContext(ctx, q, modified, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDiagramNotFound
	}
	return nil
}
