package service

import (
	"context"

	"github.com/davilat/bus-inventory/internal/model"
	"github.com/davilat/bus-inventory/internal/repository"
)

// DiagramDetail is a diagram together with its owned collections.
type DiagramDetail struct {
	Diagram model.SeatDiagram `json:"diagram"`
	Spaces  []model.Space     `json:"spaces"`
	Zones   []model.Zone      `json:"zones"`
}

// DiagramService owns the diagram lifecycle: cloning from a template
// (spaces and zones copied by value in one transaction), reads, and the
// explicit reset-to-template operation.
type DiagramService struct {
	store repository.Store
}

// NewDiagramService constructs a DiagramService over the given store.
func NewDiagramService(store repository.Store) *DiagramService {
	return &DiagramService{store: store}
}

// CreateFromTemplate clones a template into a new operational diagram.
// The template's active space models and all its zones are copied by
// value; the diagram owns the copies outright and later template edits
// only reach it through an explicit sync. The clone runs in one
// transaction, so a zone-clone failure rolls back the whole diagram.
func (s *DiagramService) CreateFromTemplate(ctx context.Context, ownerID, templateID uint64, busID *uint64, name string) (*model.SeatDiagram, error) {
	tpl, err := s.store.TemplateByIDAndOwner(ctx, templateID, ownerID)
	if err != nil {
		return nil, err
	}
	if busID != nil {
		if _, err := s.store.BusByIDAndOwner(ctx, *busID, ownerID); err != nil {
			return nil, err
		}
	}
	if name == "" {
		name = tpl.Name
	}

	d := &model.SeatDiagram{
		OwnerID:          ownerID,
		TemplateID:       tpl.ID,
		BusID:            busID,
		Name:             name,
		NumFloors:        tpl.NumFloors,
		SeatsPerFloor:    tpl.SeatsPerFloor,
		TotalSeats:       tpl.TotalSeats,
		MaxCapacity:      tpl.MaxCapacity,
		IsFactoryDefault: tpl.IsFactoryDefault,
		IsModified:       false,
		IsActive:         true,
	}
	err = s.store.ExecTx(ctx, func(st repository.Store) error {
		if err := st.CreateDiagram(ctx, d); err != nil {
			return err
		}
		if err := s.cloneLayout(ctx, st, model.TemplateRef(tpl.ID), model.DiagramRef(d.ID)); err != nil {
			return err
		}
		if busID != nil {
			return st.AttachDiagramToBus(ctx, *busID, d.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ResetToTemplate discards a diagram's local customizations: spaces and
// zones are re-cloned from the template, structural fields restored and
// IsModified cleared, re-enrolling the diagram in template push-downs.
func (s *DiagramService) ResetToTemplate(ctx context.Context, ownerID, diagramID uint64) (*model.SeatDiagram, error) {
	d, err := s.store.DiagramByIDAndOwner(ctx, diagramID, ownerID)
	if err != nil {
		return nil, err
	}
	tpl, err := s.store.TemplateByID(ctx, d.TemplateID)
	if err != nil {
		return nil, err
	}

	ref := model.DiagramRef(d.ID)
	d.NumFloors = tpl.NumFloors
	d.SeatsPerFloor = tpl.SeatsPerFloor
	d.TotalSeats = tpl.TotalSeats
	d.MaxCapacity = tpl.MaxCapacity
	d.IsFactoryDefault = tpl.IsFactoryDefault
	d.IsModified = false

	err = s.store.ExecTx(ctx, func(st repository.Store) error {
		if err := st.DeleteSpacesByLayout(ctx, ref); err != nil {
			return err
		}
		if err := st.DeleteZonesByLayout(ctx, ref); err != nil {
			return err
		}
		if err := s.cloneLayout(ctx, st, model.TemplateRef(tpl.ID), ref); err != nil {
			return err
		}
		if err := st.UpdateDiagramShape(ctx, d); err != nil {
			return err
		}
		return st.SetDiagramModified(ctx, d.ID, false)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Detail loads a diagram with its spaces and zones.
func (s *DiagramService) Detail(ctx context.Context, ownerID, id uint64) (*DiagramDetail, error) {
	d, err := s.store.DiagramByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	ref := model.DiagramRef(d.ID)
	spaces, err := s.store.SpacesByLayout(ctx, ref)
	if err != nil {
		return nil, err
	}
	zones, err := s.store.ZonesByLayout(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &DiagramDetail{Diagram: *d, Spaces: spaces, Zones: zones}, nil
}

// cloneLayout copies a template's active space models and all its zones
// into the destination layout.
func (s *DiagramService) cloneLayout(ctx context.Context, st repository.Store, src, dst model.LayoutRef) error {
	spaces, err := st.SpacesByLayout(ctx, src)
	if err != nil {
		return err
	}
	var clones []model.Space
	for i := range spaces {
		if spaces[i].IsActive {
			clones = append(clones, cloneSpace(&spaces[i], dst))
		}
	}
	if err := st.CreateSpaces(ctx, clones); err != nil {
		return err
	}
	zones, err := st.ZonesByLayout(ctx, src)
	if err != nil {
		return err
	}
	return st.CreateZones(ctx, cloneZones(zones, dst))
}
