package repository

import (
	"context"
	"database/sql"

	"github.com/davilat/bus-inventory/internal/model"
)

const zoneCols = `id, layout_kind, layout_id, name, row_numbers, price_multiplier, created_at, updated_at`

func scanZone(row interface{ Scan(...any) error }) (*model.Zone, error) {
	var z model.Zone
	var rowNumbers sql.NullString
	err := row.Scan(&z.ID, &z.LayoutKind, &z.LayoutID, &z.Name, &rowNumbers,
		&z.PriceMultiplier, &z.CreatedAt, &z.UpdatedAt)
	if err != nil {
		return nil, err
	}
	z.RowNumbers = []int{}
	if err := unmarshalJSON(rowNumbers, &z.RowNumbers); err != nil {
		return nil, err
	}
	return &z, nil
}

// ZonesByLayout retrieves every zone of a layout in creation order.
func (s *SQLStore) ZonesByLayout(ctx context.Context, ref model.LayoutRef) ([]model.Zone, error) {
	const q = `SELECT ` + zoneCols + ` FROM zones
	           WHERE layout_kind = ? AND layout_id = ? ORDER BY id`
	rows, err := s.q.QueryContext(ctx, q, ref.Kind, ref.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Zone
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *z)
	}
	return result, rows.Err()
}

// CreateZone inserts a single zone. On success the zone's ID is populated.
func (s *SQLStore) CreateZone(ctx context.Context, z *model.Zone) error {
	rowNumbers, err := marshalJSON(z.RowNumbers)
	if err != nil {
		return err
	}
	const q = `INSERT INTO zones (layout_kind, layout_id, name, row_numbers, price_multiplier)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := s.q.ExecContext(ctx, q, z.LayoutKind, z.LayoutID, z.Name, rowNumbers, z.PriceMultiplier)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	z.ID = uint64(id)
	return nil
}

// CreateZones inserts multiple zones in a single statement.
func (s *SQLStore) CreateZones(ctx context.Context, zones []model.Zone) error {
	if len(zones) == 0 {
		return nil
	}
	query := `INSERT INTO zones (layout_kind, layout_id, name, row_numbers, price_multiplier) VALUES `
	args := make([]any, 0, len(zones)*5)
	for i, z := range zones {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?)"
		rowNumbers, err := marshalJSON(z.RowNumbers)
		if err != nil {
			return err
		}
		args = append(args, z.LayoutKind, z.LayoutID, z.Name, rowNumbers, z.PriceMultiplier)
	}
	_, err := s.q.ExecContext(ctx, query, args...)
	return err
}

// UpdateZone rewrites a zone's name, rows and multiplier.
func (s *SQLStore) UpdateZone(ctx context.Context, z *model.Zone) error {
	rowNumbers, err := marshalJSON(z.RowNumbers)
	if err != nil {
		return err
	}
	const q = `UPDATE zones
	           SET name = ?, row_numbers = ?, price_multiplier = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND layout_kind = ? AND layout_id = ?`
	res, err := s.q.ExecContext(ctx, q, z.Name, rowNumbers, z.PriceMultiplier,
		z.ID, z.LayoutKind, z.LayoutID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrZoneNotFound
	}
	return nil
}

// DeleteZone removes a single zone, scoped to its layout so a zone id
// from another layout cannot be deleted by mistake.
func (s *SQLStore) DeleteZone(ctx context.Context, id uint64, ref model.LayoutRef) error {
	const q = `DELETE FROM zones WHERE id = ? AND layout_kind = ? AND layout_id = ?`
	res, err := s.q.ExecContext(ctx, q, id, ref.Kind, ref.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrZoneNotFound
	}
	return nil
}

// DeleteZonesByLayout removes every zone of a layout; the synchronizer
// replaces diagram zones wholesale with the template's.
func (s *SQLStore) DeleteZonesByLayout(ctx context.Context, ref model.LayoutRef) error {
	const q = `DELETE FROM zones WHERE layout_kind = ? AND layout_id = ?`
	_, err := s.q.ExecContext(ctx, q, ref.Kind, ref.ID)
	return err
}
