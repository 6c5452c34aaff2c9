package repository

import (
	"context"
	"database/sql"

	"github.com/davilat/bus-inventory/internal/model"
)

const spaceCols = `id, layout_kind, layout_id, floor_number, pos_x, pos_y, space_type,
	seat_number, seat_type, reclinement_angle, amenities, meta, is_active, created_at, updated_at`

func scanSpace(row interface{ Scan(...any) error }) (*model.Space, error) {
	var sp model.Space
	var seatNumber, seatType sql.NullString
	var angle sql.NullInt64
	var amenities, meta sql.NullString
	err := row.Scan(&sp.ID, &sp.LayoutKind, &sp.LayoutID, &sp.FloorNumber,
		&sp.Position.X, &sp.Position.Y, &sp.SpaceType,
		&seatNumber, &seatType, &angle, &amenities, &meta,
		&sp.IsActive, &sp.CreatedAt, &sp.UpdatedAt)
	if err != nil {
		return nil, err
	}
	sp.SeatNumber = seatNumber.String
	sp.SeatType = seatType.String
	sp.ReclinementAngle = int(angle.Int64)
	if err := unmarshalJSON(amenities, &sp.Amenities); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(meta, &sp.Meta); err != nil {
		return nil, err
	}
	return &sp, nil
}

// SpacesByLayout retrieves every space of a layout, active and inactive,
// ordered by floor, row, column. Reconciliation needs the inactive rows
// too so a previously deactivated position can be revived in place.
func (s *SQLStore) SpacesByLayout(ctx context.Context, ref model.LayoutRef) ([]model.Space, error) {
	const q = `SELECT ` + spaceCols + ` FROM spaces
	           WHERE layout_kind = ? AND layout_id = ?
	           ORDER BY floor_number, pos_y, pos_x`
	rows, err := s.q.QueryContext(ctx, q, ref.Kind, ref.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Space
	for rows.Next() {
		sp, err := scanSpace(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *sp)
	}
	return result, rows.Err()
}

// CreateSpaces inserts multiple spaces in a single statement. Inserted
// IDs are not reported back; callers re-read the layout when they need
// them.
func (s *SQLStore) CreateSpaces(ctx context.Context, spaces []model.Space) error {
	if len(spaces) == 0 {
		return nil
	}
	query := `INSERT INTO spaces
	          (layout_kind, layout_id, floor_number, pos_x, pos_y, space_type,
	           seat_number, seat_type, reclinement_angle, amenities, meta, is_active) VALUES `
	args := make([]any, 0, len(spaces)*12)
	for i, sp := range spaces {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		amenities, err := marshalJSON(sp.Amenities)
		if err != nil {
			return err
		}
		meta, err := marshalJSON(sp.Meta)
		if err != nil {
			return err
		}
		args = append(args, sp.LayoutKind, sp.LayoutID, sp.FloorNumber,
			sp.Position.X, sp.Position.Y, sp.SpaceType,
			nullStr(sp.SeatNumber), nullStr(sp.SeatType), sp.ReclinementAngle,
			amenities, meta, sp.IsActive)
	}
	_, err := s.q.ExecContext(ctx, query, args...)
	return err
}

// UpdateSpace rewrites a space's mutable fields.
func (s *SQLStore) UpdateSpace(ctx context.Context, sp *model.Space) error {
	amenities, err := marshalJSON(sp.Amenities)
	if err != nil {
		return err
	}
	meta, err := marshalJSON(sp.Meta)
	if err != nil {
		return err
	}
	const q = `UPDATE spaces
	           SET space_type = ?, seat_number = ?, seat_type = ?, reclinement_angle = ?,
	               amenities = ?, meta = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := s.q.ExecContext(ctx, q, sp.SpaceType,
		nullStr(sp.SeatNumber), nullStr(sp.SeatType), sp.ReclinementAngle,
		amenities, meta, sp.IsActive, sp.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSpaceNotFound
	}
	return nil
}

// DeactivateSpace soft-deletes a space; the row stays for revival.
func (s *SQLStore) DeactivateSpace(ctx context.Context, id uint64) error {
	const q = `UPDATE spaces SET is_active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := s.q.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSpaceNotFound
	}
	return nil
}

// DeleteSpace hard-deletes a space. Only the template synchronizer uses
// this, where diagram state must mirror template truth exactly.
func (s *SQLStore) DeleteSpace(ctx context.Context, id uint64) error {
	const q = `DELETE FROM spaces WHERE id = ?`
	res, err := s.q.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSpaceNotFound
	}
	return nil
}

// DeleteSpacesByLayout removes every space of a layout. Used by the
// reset-to-template operation before re-cloning.
func (s *SQLStore) DeleteSpacesByLayout(ctx context.Context, ref model.LayoutRef) error {
	const q = `DELETE FROM spaces WHERE layout_kind = ? AND layout_id = ?`
	_, err := s.q.ExecContext(ctx, q, ref.Kind, ref.ID)
	return err
}

// CountActiveSeats counts active SEAT spaces of a layout.
func (s *SQLStore) CountActiveSeats(ctx context.Context, ref model.LayoutRef) (int, error) {
	const q = `SELECT COUNT(*) FROM spaces
	           WHERE layout_kind = ? AND layout_id = ? AND space_type = 'SEAT' AND is_active = 1`
	var n int
	if err := s.q.QueryRowContext(ctx, q, ref.Kind, ref.ID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// nullStr maps "" to SQL NULL so seat-only columns stay NULL on non-seat
// rows.
func nullStr(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
