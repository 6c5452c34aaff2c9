// Package service orchestrates the seat-layout engine: procedural
// generation at template creation, position-keyed batch reconciliation of
// seat-editor submissions, and template-to-diagram synchronization.
package service

import (
	"context"

	"github.com/davilat/bus-inventory/internal/layout"
	"github.com/davilat/bus-inventory/internal/model"
	"github.com/davilat/bus-inventory/internal/repository"
)

// ReconcileResult summarizes one batch reconciliation.
type ReconcileResult struct {
	Created          int `json:"created"`
	Updated          int `json:"updated"`
	Deactivated      int `json:"deactivated"`
	TotalActiveSeats int `json:"total_active_seats"`
}

// Reconciler diffs an incoming batch of desired space configurations
// against a layout's persisted spaces and applies the minimal set of
// creates, updates and deactivations in one transaction.
type Reconciler struct {
	store repository.Store
}

// NewReconciler constructs a Reconciler over the given store.
func NewReconciler(store repository.Store) *Reconciler {
	return &Reconciler{store: store}
}

// Reconcile validates the batch against bounds, then applies it to the
// layout identified by ref. Existing spaces are looked up by position key
// including inactive ones, so a previously deactivated position is
// revived and edited in place instead of spawning a duplicate row.
//
// Any active space whose position is absent from the batch is
// deactivated, never deleted; an empty batch therefore clears the layout.
// The layout's total_seats is recounted from active SEAT rows, and
// diagrams are flagged as locally modified. Everything runs in a single
// transaction; a failure leaves the layout's prior state intact.
func (r *Reconciler) Reconcile(ctx context.Context, ref model.LayoutRef, bounds *layout.Bounds, batch []layout.SpaceConfig) (*ReconcileResult, error) {
	if err := layout.ValidateBatch(batch, bounds); err != nil {
		return nil, err
	}

	var result ReconcileResult
	err := r.store.ExecTx(ctx, func(st repository.Store) error {
		existing, err := st.SpacesByLayout(ctx, ref)
		if err != nil {
			return err
		}
		byKey := make(map[string]*model.Space, len(existing))
		for i := range existing {
			byKey[existing[i].Key()] = &existing[i]
		}

		inBatch := make(map[string]bool, len(batch))
		var toCreate []model.Space
		for _, cfg := range batch {
			key := cfg.Key()
			inBatch[key] = true

			cur, ok := byKey[key]
			if !ok {
				toCreate = append(toCreate, buildSpace(ref, cfg, bounds))
				continue
			}
			desired := desiredSpace(cur, cfg, bounds)
			if !spaceEqual(cur, &desired) {
				if err := st.UpdateSpace(ctx, &desired); err != nil {
					return err
				}
				result.Updated++
			}
		}
		if len(toCreate) > 0 {
			if err := st.CreateSpaces(ctx, toCreate); err != nil {
				return err
			}
			result.Created = len(toCreate)
		}

		for i := range existing {
			sp := &existing[i]
			if sp.IsActive && !inBatch[sp.Key()] {
				if err := st.DeactivateSpace(ctx, sp.ID); err != nil {
					return err
				}
				result.Deactivated++
			}
		}

		total, err := st.CountActiveSeats(ctx, ref)
		if err != nil {
			return err
		}
		result.TotalActiveSeats = total
		if err := st.UpdateLayoutTotalSeats(ctx, ref, total); err != nil {
			return err
		}
		if ref.Kind == model.KindDiagram {
			if err := st.SetDiagramModified(ctx, ref.ID, true); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// buildSpace materializes a new Space from a validated batch entry.
// Seat-only fields are populated only for SEAT cells; derived meta uses
// the same window/legroom formula as the generator.
func buildSpace(ref model.LayoutRef, cfg layout.SpaceConfig, bounds *layout.Bounds) model.Space {
	sp := model.Space{
		LayoutKind:  ref.Kind,
		LayoutID:    ref.ID,
		FloorNumber: cfg.FloorNumber,
		Position:    *cfg.Position,
		SpaceType:   cfg.EffectiveType(),
		Amenities:   cfg.Amenities,
		IsActive:    cfg.EffectiveActive(),
	}
	if sp.SpaceType == layout.SpaceSeat {
		sp.SeatNumber = cfg.SeatNumber
		sp.SeatType = cfg.SeatType
		if sp.SeatType == "" {
			sp.SeatType = layout.DefaultSeatType
		}
		sp.ReclinementAngle = cfg.ReclinementAngle
		sp.Meta = seatMetaFor(cfg.FloorNumber, cfg.Position, bounds)
	} else {
		sp.Meta = layout.BaseMeta(cfg.Position.Y, cfg.Position.X)
	}
	return sp
}

// desiredSpace projects a batch entry onto an existing space, rewriting
// exactly the fields the entry controls. Meta is recomputed only when the
// space type changes; converting away from SEAT strips the seat-only
// fields and meta keys.
func desiredSpace(cur *model.Space, cfg layout.SpaceConfig, bounds *layout.Bounds) model.Space {
	next := *cur
	next.SpaceType = cfg.EffectiveType()
	next.Amenities = cfg.Amenities
	next.IsActive = cfg.EffectiveActive()

	if next.SpaceType == layout.SpaceSeat {
		next.SeatNumber = cfg.SeatNumber
		next.SeatType = cfg.SeatType
		if next.SeatType == "" {
			next.SeatType = layout.DefaultSeatType
		}
		next.ReclinementAngle = cfg.ReclinementAngle
	} else {
		next.SeatNumber = ""
		next.SeatType = ""
		next.ReclinementAngle = 0
	}
	if next.SpaceType != cur.SpaceType {
		if next.SpaceType == layout.SpaceSeat {
			next.Meta = seatMetaFor(next.FloorNumber, &next.Position, bounds)
		} else {
			next.Meta = layout.BaseMeta(next.Position.Y, next.Position.X)
		}
	}
	return next
}

func seatMetaFor(floorNumber int, pos *layout.Position, bounds *layout.Bounds) map[string]any {
	if bounds != nil {
		if fc, ok := bounds.Floor(floorNumber); ok {
			return layout.SeatMeta(pos.Y, pos.X, fc)
		}
	}
	return layout.BaseMeta(pos.Y, pos.X)
}

// spaceEqual compares the reconciliation-relevant fields of two spaces.
func spaceEqual(a, b *model.Space) bool {
	if a.SpaceType != b.SpaceType || a.IsActive != b.IsActive {
		return false
	}
	if !sameStringSet(a.Amenities, b.Amenities) {
		return false
	}
	if a.SpaceType == layout.SpaceSeat {
		if a.SeatNumber != b.SeatNumber || a.SeatType != b.SeatType ||
			a.ReclinementAngle != b.ReclinementAngle {
			return false
		}
	}
	return true
}

// sameStringSet compares amenity lists as sets.
func sameStringSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]int, len(a))
	for _, v := range a {
		set[v]++
	}
	for _, v := range b {
		set[v]--
		if set[v] < 0 {
			return false
		}
	}
	return true
}
