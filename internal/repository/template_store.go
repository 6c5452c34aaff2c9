package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/davilat/bus-inventory/internal/layout"
	"github.com/davilat/bus-inventory/internal/model"
)

const templateCols = `id, owner_id, name, description, num_floors, seats_per_floor,
	total_seats, max_capacity, is_factory_default, is_active, created_at, updated_at`

// CreateTemplate inserts a layout template. On success the template's ID
// is populated.
func (s *SQLStore) CreateTemplate(ctx context.Context, t *model.LayoutTemplate) error {
	floors, err := marshalJSON(t.SeatsPerFloor)
	if err != nil {
		return err
	}
	const q = `INSERT INTO layout_templates
	           (owner_id, name, description, num_floors, seats_per_floor,
	            total_seats, max_capacity, is_factory_default, is_active)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := s.q.ExecContext(ctx, q,
		t.OwnerID, t.Name, t.Description, t.NumFloors, floors,
		t.TotalSeats, t.MaxCapacity, t.IsFactoryDefault, t.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

func scanTemplate(row interface{ Scan(...any) error }) (*model.LayoutTemplate, error) {
	var t model.LayoutTemplate
	var floors sql.NullString
	err := row.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Description, &t.NumFloors, &floors,
		&t.TotalSeats, &t.MaxCapacity, &t.IsFactoryDefault, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.SeatsPerFloor = []layout.FloorConfig{}
	if err := unmarshalJSON(floors, &t.SeatsPerFloor); err != nil {
		return nil, err
	}
	return &t, nil
}

// TemplateByID retrieves a template without ownership check; used by the
// synchronizer and the queue consumer.
func (s *SQLStore) TemplateByID(ctx context.Context, id uint64) (*model.LayoutTemplate, error) {
	const q = `SELECT ` + templateCols + ` FROM layout_templates WHERE id = ?`
	t, err := scanTemplate(s.q.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return t, nil
}

// TemplateByIDAndOwner retrieves a template while enforcing ownership.
func (s *SQLStore) TemplateByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.LayoutTemplate, error) {
	const q = `SELECT ` + templateCols + ` FROM layout_templates WHERE id = ? AND owner_id = ?`
	t, err := scanTemplate(s.q.QueryRowContext(ctx, q, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return t, nil
}

// TemplatesByOwner lists an operator's active templates.
func (s *SQLStore) TemplatesByOwner(ctx context.Context, ownerID uint64) ([]model.LayoutTemplate, error) {
	const q = `SELECT ` + templateCols + ` FROM layout_templates
	           WHERE owner_id = ? AND is_active = 1 ORDER BY id`
	rows, err := s.q.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.LayoutTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	return result, rows.Err()
}

// UpdateTemplate rewrites a template's mutable fields.
func (s *SQLStore) UpdateTemplate(ctx context.Context, t *model.LayoutTemplate) error {
	floors, err := marshalJSON(t.SeatsPerFloor)
	if err != nil {
		return err
	}
	const q = `UPDATE layout_templates
	           SET name = ?, description = ?, num_floors = ?, seats_per_floor = ?,
	               total_seats = ?, max_capacity = ?, is_factory_default = ?, is_active = ?,
	               updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := s.q.ExecContext(ctx, q,
		t.Name, t.Description, t.NumFloors, floors,
		t.TotalSeats, t.MaxCapacity, t.IsFactoryDefault, t.IsActive, t.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

// UpdateLayoutTotalSeats persists a freshly recomputed active-seat count
// onto the owning layout, template or diagram.
func (s *SQLStore) UpdateLayoutTotalSeats(ctx context.Context, ref model.LayoutRef, total int) error {
	q := `UPDATE layout_templates SET total_seats = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if ref.Kind == model.KindDiagram {
		q = `UPDATE seat_diagrams SET total_seats = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	}
	_, err := s.q.ExecContext(ctx, q, total, ref.ID)
	return err
}
