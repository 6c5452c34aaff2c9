package service

import (
	"context"

	"github.com/davilat/bus-inventory/internal/layout"
	"github.com/davilat/bus-inventory/internal/model"
	"github.com/davilat/bus-inventory/internal/repository"
)

// CreateTemplateInput carries the fields of a template creation request.
type CreateTemplateInput struct {
	Name             string               `json:"name"`
	Description      *string              `json:"description"`
	NumFloors        int                  `json:"num_floors"`
	SeatsPerFloor    []layout.FloorConfig `json:"seats_per_floor"`
	MaxCapacity      int                  `json:"max_capacity"`
	IsFactoryDefault bool                 `json:"is_factory_default"`
}

// UpdateTemplateInput carries the optional fields of a template edit.
// Nil fields keep their current values. Changing NumFloors or
// SeatsPerFloor regenerates the template's seat layout.
type UpdateTemplateInput struct {
	Name          *string              `json:"name"`
	Description   *string              `json:"description"`
	NumFloors     *int                 `json:"num_floors"`
	SeatsPerFloor []layout.FloorConfig `json:"seats_per_floor"`
	MaxCapacity   *int                 `json:"max_capacity"`
}

// TemplateDetail is a template together with its owned collections.
type TemplateDetail struct {
	Template model.LayoutTemplate `json:"template"`
	Spaces   []model.Space        `json:"spaces"`
	Zones    []model.Zone         `json:"zones"`
}

// TemplateService owns the template lifecycle: atomic create+generate,
// shape edits with regeneration, and reads.
type TemplateService struct {
	store repository.Store
	rec   *Reconciler
}

// NewTemplateService constructs a TemplateService over the given store.
func NewTemplateService(store repository.Store) *TemplateService {
	return &TemplateService{store: store, rec: NewReconciler(store)}
}

// Create generates the seat layout from the floor configuration and
// persists template plus spaces in one transaction. A floor without a
// configuration fails the whole operation and nothing is stored.
func (s *TemplateService) Create(ctx context.Context, ownerID uint64, in CreateTemplateInput) (*model.LayoutTemplate, error) {
	if in.NumFloors < 1 {
		return nil, layout.NewValidationError("num_floors must be at least 1")
	}
	generated, err := layout.Generate(in.NumFloors, in.SeatsPerFloor)
	if err != nil {
		return nil, err
	}

	tpl := &model.LayoutTemplate{
		OwnerID:          ownerID,
		Name:             in.Name,
		Description:      in.Description,
		NumFloors:        in.NumFloors,
		SeatsPerFloor:    in.SeatsPerFloor,
		TotalSeats:       len(generated),
		MaxCapacity:      in.MaxCapacity,
		IsFactoryDefault: in.IsFactoryDefault,
		IsActive:         true,
	}
	err = s.store.ExecTx(ctx, func(st repository.Store) error {
		if err := st.CreateTemplate(ctx, tpl); err != nil {
			return err
		}
		return st.CreateSpaces(ctx, generatedToSpaces(generated, model.TemplateRef(tpl.ID)))
	})
	if err != nil {
		return nil, err
	}
	return tpl, nil
}

// Update applies a template edit. When the floor shape changes, the
// layout is regenerated and reconciled against the existing space models
// in the same transaction, so customized space ids survive where their
// position still exists.
func (s *TemplateService) Update(ctx context.Context, ownerID, id uint64, in UpdateTemplateInput) (*model.LayoutTemplate, error) {
	tpl, err := s.store.TemplateByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	shapeChanged := false
	if in.Name != nil {
		tpl.Name = *in.Name
	}
	if in.Description != nil {
		tpl.Description = in.Description
	}
	if in.MaxCapacity != nil {
		tpl.MaxCapacity = *in.MaxCapacity
	}
	if in.NumFloors != nil && *in.NumFloors != tpl.NumFloors {
		tpl.NumFloors = *in.NumFloors
		shapeChanged = true
	}
	if in.SeatsPerFloor != nil {
		tpl.SeatsPerFloor = in.SeatsPerFloor
		shapeChanged = true
	}

	var generated []layout.GeneratedSpace
	if shapeChanged {
		generated, err = layout.Generate(tpl.NumFloors, tpl.SeatsPerFloor)
		if err != nil {
			return nil, err
		}
		tpl.TotalSeats = len(generated)
	}

	err = s.store.ExecTx(ctx, func(st repository.Store) error {
		if err := st.UpdateTemplate(ctx, tpl); err != nil {
			return err
		}
		if !shapeChanged {
			return nil
		}
		rec := NewReconciler(st)
		result, err := rec.Reconcile(ctx, model.TemplateRef(tpl.ID), tpl.Bounds(), generatedToConfigs(generated))
		if err != nil {
			return err
		}
		tpl.TotalSeats = result.TotalActiveSeats
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tpl, nil
}

// Detail loads a template with its spaces and zones.
func (s *TemplateService) Detail(ctx context.Context, ownerID, id uint64) (*TemplateDetail, error) {
	tpl, err := s.store.TemplateByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	ref := model.TemplateRef(tpl.ID)
	spaces, err := s.store.SpacesByLayout(ctx, ref)
	if err != nil {
		return nil, err
	}
	zones, err := s.store.ZonesByLayout(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &TemplateDetail{Template: *tpl, Spaces: spaces, Zones: zones}, nil
}

// generatedToSpaces converts generator output into persistable spaces.
func generatedToSpaces(gen []layout.GeneratedSpace, ref model.LayoutRef) []model.Space {
	out := make([]model.Space, 0, len(gen))
	for _, g := range gen {
		out = append(out, model.Space{
			LayoutKind:  ref.Kind,
			LayoutID:    ref.ID,
			FloorNumber: g.FloorNumber,
			Position:    g.Position,
			SpaceType:   g.SpaceType,
			SeatNumber:  g.SeatNumber,
			SeatType:    g.SeatType,
			Meta:        g.Meta,
			IsActive:    true,
		})
	}
	return out
}

// generatedToConfigs converts generator output into a reconciliation
// batch, which is how a shape edit reaches the existing space models.
func generatedToConfigs(gen []layout.GeneratedSpace) []layout.SpaceConfig {
	out := make([]layout.SpaceConfig, 0, len(gen))
	for _, g := range gen {
		pos := g.Position
		out = append(out, layout.SpaceConfig{
			FloorNumber: g.FloorNumber,
			Position:    &pos,
			SpaceType:   g.SpaceType,
			SeatNumber:  g.SeatNumber,
			SeatType:    g.SeatType,
		})
	}
	return out
}
