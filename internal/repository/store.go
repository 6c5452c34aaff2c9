package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/davilat/bus-inventory/internal/model"
)

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx, so
// every query method runs unchanged inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the persistence boundary the services program against. The
// SQL implementation lives in this package; tests swap in an in-memory
// implementation.
type Store interface {
	// ExecTx runs fn inside one atomic transaction; any error rolls back
	// every write fn attempted. A store already bound to a transaction
	// runs fn directly on itself, so transactional helpers compose.
	ExecTx(ctx context.Context, fn func(Store) error) error

	// Users and sessions.
	CreateUser(ctx context.Context, u *model.User) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UserByID(ctx context.Context, id uint64) (*model.User, error)
	CreateRefreshToken(ctx context.Context, t *model.RefreshToken) error
	RefreshTokenByHash(ctx context.Context, hash string) (*model.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id uint64) error

	// Layout templates.
	CreateTemplate(ctx context.Context, t *model.LayoutTemplate) error
	TemplateByID(ctx context.Context, id uint64) (*model.LayoutTemplate, error)
	TemplateByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.LayoutTemplate, error)
	TemplatesByOwner(ctx context.Context, ownerID uint64) ([]model.LayoutTemplate, error)
	UpdateTemplate(ctx context.Context, t *model.LayoutTemplate) error
	UpdateLayoutTotalSeats(ctx context.Context, ref model.LayoutRef, total int) error

	// Seat diagrams.
	CreateDiagram(ctx context.Context, d *model.SeatDiagram) error
	DiagramByID(ctx context.Context, id uint64) (*model.SeatDiagram, error)
	DiagramByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.SeatDiagram, error)
	DiagramsByTemplate(ctx context.Context, templateID uint64) ([]model.SeatDiagram, error)
	UpdateDiagramShape(ctx context.Context, d *model.SeatDiagram) error
	SetDiagramModified(ctx context.Context, id uint64, modified bool) error

	// Spaces.
	SpacesByLayout(ctx context.Context, ref model.LayoutRef) ([]model.Space, error)
	CreateSpaces(ctx context.Context, spaces []model.Space) error
	UpdateSpace(ctx context.Context, s *model.Space) error
	DeactivateSpace(ctx context.Context, id uint64) error
	DeleteSpace(ctx context.Context, id uint64) error
	DeleteSpacesByLayout(ctx context.Context, ref model.LayoutRef) error
	CountActiveSeats(ctx context.Context, ref model.LayoutRef) (int, error)

	// Zones.
	ZonesByLayout(ctx context.Context, ref model.LayoutRef) ([]model.Zone, error)
	CreateZone(ctx context.Context, z *model.Zone) error
	CreateZones(ctx context.Context, zones []model.Zone) error
	UpdateZone(ctx context.Context, z *model.Zone) error
	DeleteZone(ctx context.Context, id uint64, ref model.LayoutRef) error
	DeleteZonesByLayout(ctx context.Context, ref model.LayoutRef) error

	// Buses.
	CreateBus(ctx context.Context, b *model.Bus) error
	BusByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Bus, error)
	BusesByOwner(ctx context.Context, ownerID uint64) ([]model.Bus, error)
	AttachDiagramToBus(ctx context.Context, busID, diagramID uint64) error
}

// SQLStore implements Store over MySQL. The zero q field is the root
// *sql.DB; ExecTx produces a copy bound to an open *sql.Tx.
type SQLStore struct {
	db *sql.DB
	q  DBTX
}

// NewStore constructs the root SQLStore with the given DB handle.
func NewStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, q: db}
}

// ExecTx begins a transaction, runs fn on a tx-bound copy of the store
// and commits, rolling back on any error or panic. When the receiver is
// already tx-bound, fn runs directly so nested transactional helpers
// share the outer transaction.
func (s *SQLStore) ExecTx(ctx context.Context, fn func(Store) error) error {
	if _, inTx := s.q.(*sql.Tx); inTx {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	bound := &SQLStore{db: s.db, q: tx}
	if err := fn(bound); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx err: %v, rollback err: %w", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

// marshalJSON encodes v for storage in a JSON/TEXT column. A nil slice or
// map is stored as the empty JSON value rather than SQL NULL.
func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// unmarshalJSON decodes a JSON column into out, tolerating empty columns.
func unmarshalJSON(raw sql.NullString, out any) error {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw.String), out)
}
