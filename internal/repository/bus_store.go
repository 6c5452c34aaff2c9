package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/davilat/bus-inventory/internal/model"
)

const busCols = `id, owner_id, plate, model_name, diagram_id, is_active, created_at, updated_at`

// CreateBus inserts a fleet vehicle. On success the bus's ID is populated.
func (s *SQLStore) CreateBus(ctx context.Context, b *model.Bus) error {
	const q = `INSERT INTO buses (owner_id, plate, model_name, diagram_id) VALUES (?, ?, ?, ?)`
	res, err := s.q.ExecContext(ctx, q, b.OwnerID, b.Plate, b.ModelName, b.DiagramID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// BusByIDAndOwner retrieves a bus while enforcing ownership.
func (s *SQLStore) BusByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Bus, error) {
	const q = `SELECT ` + busCols + ` FROM buses WHERE id = ? AND owner_id = ?`
	var b model.Bus
	err := s.q.QueryRowContext(ctx, q, id, ownerID).
		Scan(&b.ID, &b.OwnerID, &b.Plate, &b.ModelName, &b.DiagramID,
			&b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBusNotFound
		}
		return nil, err
	}
	return &b, nil
}

// BusesByOwner lists an operator's active buses.
func (s *SQLStore) BusesByOwner(ctx context.Context, ownerID uint64) ([]model.Bus, error) {
	const q = `SELECT ` + busCols + ` FROM buses WHERE owner_id = ? AND is_active = 1 ORDER BY id`
	rows, err := s.q.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Bus
	for rows.Next() {
		var b model.Bus
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.Plate, &b.ModelName, &b.DiagramID,
			&b.IsActive, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

// AttachDiagramToBus links a freshly cloned seat diagram to its bus.
func (s *SQLStore) AttachDiagramToBus(ctx context.Context, busID, diagramID uint64) error {
	const q = `UPDATE buses SET diagram_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := s.q.ExecContext(ctx, q, diagramID, busID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBusNotFound
	}
	return nil
}
