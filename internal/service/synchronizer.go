package service

import (
	"context"
	"log"

	"github.com/davilat/bus-inventory/internal/model"
	"github.com/davilat/bus-inventory/internal/repository"
)

// SyncResult summarizes the synchronization of one diagram. Error is set
// when that diagram's transaction failed; other diagrams are unaffected.
type SyncResult struct {
	DiagramID uint64 `json:"diagram_id"`
	Created   int    `json:"created"`
	Updated   int    `json:"updated"`
	Deleted   int    `json:"deleted"`
	Error     string `json:"error,omitempty"`
}

// SyncService pushes a template's current shape (structural fields,
// spaces, zones) down to every diagram cloned from it that has not been
// locally modified. Modified diagrams are skipped entirely and excluded
// from the results.
type SyncService struct {
	store repository.Store
}

// NewSyncService constructs a SyncService over the given store.
func NewSyncService(store repository.Store) *SyncService {
	return &SyncService{store: store}
}

// PushTemplate synchronizes all eligible diagrams of a template. Each
// diagram runs in its own transaction: one failing diagram is reported in
// its SyncResult and neither rolls back already-committed diagrams nor
// stops the remaining ones.
func (s *SyncService) PushTemplate(ctx context.Context, templateID uint64) ([]SyncResult, error) {
	tpl, err := s.store.TemplateByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	tplSpaces, err := s.store.SpacesByLayout(ctx, model.TemplateRef(tpl.ID))
	if err != nil {
		return nil, err
	}
	// Template truth is its active space models only.
	active := tplSpaces[:0:0]
	for _, sp := range tplSpaces {
		if sp.IsActive {
			active = append(active, sp)
		}
	}
	tplZones, err := s.store.ZonesByLayout(ctx, model.TemplateRef(tpl.ID))
	if err != nil {
		return nil, err
	}
	diagrams, err := s.store.DiagramsByTemplate(ctx, tpl.ID)
	if err != nil {
		return nil, err
	}

	var results []SyncResult
	for i := range diagrams {
		d := &diagrams[i]
		if d.IsModified {
			continue
		}
		res := SyncResult{DiagramID: d.ID}
		err := s.store.ExecTx(ctx, func(st repository.Store) error {
			return s.syncOne(ctx, st, tpl, d, active, tplZones, &res)
		})
		if err != nil {
			log.Printf("sync: diagram %d failed: %v", d.ID, err)
			res = SyncResult{DiagramID: d.ID, Error: err.Error()}
		}
		results = append(results, res)
	}
	return results, nil
}

// syncOne makes one diagram mirror the template exactly: structural
// fields overwritten (name preserved), spaces diffed by position key with
// hard deletes for positions the template no longer has, zones replaced
// wholesale.
func (s *SyncService) syncOne(ctx context.Context, st repository.Store, tpl *model.LayoutTemplate, d *model.SeatDiagram, tplSpaces []model.Space, tplZones []model.Zone, res *SyncResult) error {
	ref := model.DiagramRef(d.ID)

	shape := *d
	shape.NumFloors = tpl.NumFloors
	shape.SeatsPerFloor = tpl.SeatsPerFloor
	shape.TotalSeats = tpl.TotalSeats
	shape.MaxCapacity = tpl.MaxCapacity
	shape.IsFactoryDefault = tpl.IsFactoryDefault
	if err := st.UpdateDiagramShape(ctx, &shape); err != nil {
		return err
	}

	existing, err := st.SpacesByLayout(ctx, ref)
	if err != nil {
		return err
	}
	byKey := make(map[string]*model.Space, len(existing))
	for i := range existing {
		byKey[existing[i].Key()] = &existing[i]
	}

	inTemplate := make(map[string]bool, len(tplSpaces))
	var toCreate []model.Space
	for i := range tplSpaces {
		src := &tplSpaces[i]
		key := src.Key()
		inTemplate[key] = true

		cur, ok := byKey[key]
		if !ok {
			toCreate = append(toCreate, cloneSpace(src, ref))
			continue
		}
		desired := *cur
		desired.SpaceType = src.SpaceType
		desired.SeatNumber = src.SeatNumber
		desired.SeatType = src.SeatType
		desired.ReclinementAngle = src.ReclinementAngle
		desired.Amenities = src.Amenities
		desired.Meta = src.Meta
		desired.IsActive = src.IsActive
		if !spaceEqual(cur, &desired) {
			if err := st.UpdateSpace(ctx, &desired); err != nil {
				return err
			}
			res.Updated++
		}
	}
	if len(toCreate) > 0 {
		if err := st.CreateSpaces(ctx, toCreate); err != nil {
			return err
		}
		res.Created = len(toCreate)
	}

	// Hard delete, not deactivate: after a sync the diagram reflects
	// template truth exactly.
	for i := range existing {
		sp := &existing[i]
		if !inTemplate[sp.Key()] {
			if err := st.DeleteSpace(ctx, sp.ID); err != nil {
				return err
			}
			res.Deleted++
		}
	}

	if err := st.DeleteZonesByLayout(ctx, ref); err != nil {
		return err
	}
	if err := st.CreateZones(ctx, cloneZones(tplZones, ref)); err != nil {
		return err
	}

	total, err := st.CountActiveSeats(ctx, ref)
	if err != nil {
		return err
	}
	return st.UpdateLayoutTotalSeats(ctx, ref, total)
}

// cloneSpace copies a template space model into a diagram-owned space.
func cloneSpace(src *model.Space, ref model.LayoutRef) model.Space {
	sp := *src
	sp.ID = 0
	sp.LayoutKind = ref.Kind
	sp.LayoutID = ref.ID
	sp.Amenities = append([]string(nil), src.Amenities...)
	if src.Meta != nil {
		sp.Meta = make(map[string]any, len(src.Meta))
		for k, v := range src.Meta {
			sp.Meta[k] = v
		}
	}
	return sp
}

// cloneZones copies zones by value, rebinding them to ref.
func cloneZones(zones []model.Zone, ref model.LayoutRef) []model.Zone {
	out := make([]model.Zone, 0, len(zones))
	for _, z := range zones {
		c := z
		c.ID = 0
		c.LayoutKind = ref.Kind
		c.LayoutID = ref.ID
		c.RowNumbers = append([]int(nil), z.RowNumbers...)
		out = append(out, c)
	}
	return out
}
