package service

import (
	"context"
	"testing"

	"github.com/davilat/bus-inventory/internal/layout"
	"github.com/davilat/bus-inventory/internal/model"
)

func seedTemplate(t *testing.T, m *mockStore, rows, left, right int) *model.LayoutTemplate {
	t.Helper()
	tpl, err := NewTemplateService(m).Create(context.Background(), 1, CreateTemplateInput{
		Name:      "Standard Coach",
		NumFloors: 1,
		SeatsPerFloor: []layout.FloorConfig{
			{FloorNumber: 1, NumRows: rows, SeatsLeft: left, SeatsRight: right},
		},
		MaxCapacity: rows * (left + right),
	})
	if err != nil {
		t.Fatalf("seed template: %v", err)
	}
	return tpl
}

// batchFromSpaces rebuilds the submit payload matching current state.
func batchFromSpaces(spaces []model.Space) []layout.SpaceConfig {
	var out []layout.SpaceConfig
	for _, sp := range spaces {
		if !sp.IsActive {
			continue
		}
		pos := sp.Position
		out = append(out, layout.SpaceConfig{
			FloorNumber:      sp.FloorNumber,
			Position:         &pos,
			SpaceType:        sp.SpaceType,
			SeatNumber:       sp.SeatNumber,
			SeatType:         sp.SeatType,
			ReclinementAngle: sp.ReclinementAngle,
			Amenities:        sp.Amenities,
		})
	}
	return out
}

func TestReconcileIdempotent(t *testing.T) {
	ctx := context.Background()
	m := newMockStore()
	tpl := seedTemplate(t, m, 10, 2, 2)
	ref := model.TemplateRef(tpl.ID)

	spaces, _ := m.SpacesByLayout(ctx, ref)
	batch := batchFromSpaces(spaces)

	rec := NewReconciler(m)
	for i := 0; i < 2; i++ {
		res, err := rec.Reconcile(ctx, ref, tpl.Bounds(), batch)
		if err != nil {
			t.Fatalf("reconcile pass %d: %v", i+1, err)
		}
		if res.Created != 0 || res.Updated != 0 || res.Deactivated != 0 {
			t.Fatalf("pass %d not a no-op: %+v", i+1, res)
		}
		if res.TotalActiveSeats != 40 {
			t.Fatalf("pass %d total = %d, want 40", i+1, res.TotalActiveSeats)
		}
	}
}

func TestReconcileSingleSeatKeepsOneDeactivatesRest(t *testing.T) {
	ctx := context.Background()
	m := newMockStore()
	tpl := seedTemplate(t, m, 10, 2, 2)
	ref := model.TemplateRef(tpl.ID)

	spaces, _ := m.SpacesByLayout(ctx, ref)
	first := spaces[0]
	pos := first.Position
	batch := []layout.SpaceConfig{{
		FloorNumber: first.FloorNumber,
		Position:    &pos,
		SeatNumber:  first.SeatNumber,
		SeatType:    "VIP", // changed field forces an update
	}}

	res, err := NewReconciler(m).Reconcile(ctx, ref, tpl.Bounds(), batch)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if res.Created != 0 || res.Updated != 1 || res.Deactivated != 39 {
		t.Fatalf("result %+v, want {0 1 39 1}", res)
	}
	if res.TotalActiveSeats != 1 {
		t.Fatalf("total = %d, want 1", res.TotalActiveSeats)
	}
	got, _ := m.TemplateByID(ctx, tpl.ID)
	if got.TotalSeats != 1 {
		t.Fatalf("persisted total_seats = %d, want 1", got.TotalSeats)
	}
}

func TestReconcileEmptyBatchClearsLayout(t *testing.T) {
	ctx := context.Background()
	m := newMockStore()
	tpl := seedTemplate(t, m, 5, 2, 2)
	ref := model.TemplateRef(tpl.ID)

	res, err := NewReconciler(m).Reconcile(ctx, ref, tpl.Bounds(), nil)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if res.Deactivated != 20 || res.TotalActiveSeats != 0 {
		t.Fatalf("result %+v, want deactivated=20 total=0", res)
	}
	// Spaces are soft-deactivated, not deleted.
	spaces, _ := m.SpacesByLayout(ctx, ref)
	if len(spaces) != 20 {
		t.Fatalf("%d rows remain, want 20", len(spaces))
	}
	for _, sp := range spaces {
		if sp.IsActive {
			t.Fatalf("space %d still active after empty batch", sp.ID)
		}
	}
}

func TestReconcileRevivesDeactivatedPosition(t *testing.T) {
	ctx := context.Background()
	m := newMockStore()
	tpl := seedTemplate(t, m, 5, 2, 2)
	ref := model.TemplateRef(tpl.ID)
	rec := NewReconciler(m)

	// Clear the layout, then resubmit one of the original positions.
	if _, err := rec.Reconcile(ctx, ref, tpl.Bounds(), nil); err != nil {
		t.Fatalf("clear: %v", err)
	}
	spaces, _ := m.SpacesByLayout(ctx, ref)
	first := spaces[0]
	pos := first.Position
	res, err := rec.Reconcile(ctx, ref, tpl.Bounds(), []layout.SpaceConfig{{
		FloorNumber: first.FloorNumber,
		Position:    &pos,
		SeatNumber:  first.SeatNumber,
	}})
	if err != nil {
		t.Fatalf("revive: %v", err)
	}
	// The inactive row is revived in place, not recreated.
	if res.Created != 0 || res.Updated != 1 {
		t.Fatalf("result %+v, want created=0 updated=1", res)
	}
	after, _ := m.SpacesByLayout(ctx, ref)
	if len(after) != 20 {
		t.Fatalf("%d rows after revival, want 20 (no duplicate row)", len(after))
	}
}

func TestReconcileCreatesHallwayWithoutSeatFields(t *testing.T) {
	ctx := context.Background()
	m := newMockStore()
	tpl := seedTemplate(t, m, 5, 2, 2)
	ref := model.TemplateRef(tpl.ID)

	spaces, _ := m.SpacesByLayout(ctx, ref)
	batch := batchFromSpaces(spaces)
	// Add the aisle cell of row 1 as a hallway.
	batch = append(batch, layout.SpaceConfig{
		FloorNumber: 1,
		Position:    &layout.Position{X: 2, Y: 1},
		SpaceType:   layout.SpaceHallway,
	})

	res, err := NewReconciler(m).Reconcile(ctx, ref, tpl.Bounds(), batch)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if res.Created != 1 {
		t.Fatalf("created = %d, want 1", res.Created)
	}
	// Hallways do not count as seats.
	if res.TotalActiveSeats != 20 {
		t.Fatalf("total = %d, want 20", res.TotalActiveSeats)
	}
	after, _ := m.SpacesByLayout(ctx, ref)
	for _, sp := range after {
		if sp.SpaceType != layout.SpaceHallway {
			continue
		}
		if sp.SeatNumber != "" || sp.SeatType != "" || sp.ReclinementAngle != 0 {
			t.Fatalf("hallway carries seat fields: %+v", sp)
		}
		if _, ok := sp.Meta[layout.MetaIsWindow]; ok {
			t.Fatalf("hallway meta carries seat-only keys: %v", sp.Meta)
		}
	}
}

func TestReconcileTypeChangeStripsSeatFields(t *testing.T) {
	ctx := context.Background()
	m := newMockStore()
	tpl := seedTemplate(t, m, 2, 1, 1)
	ref := model.TemplateRef(tpl.ID)

	spaces, _ := m.SpacesByLayout(ctx, ref)
	batch := batchFromSpaces(spaces)
	// Convert the first seat into stairs.
	batch[0].SpaceType = layout.SpaceStairs
	batch[0].SeatNumber = ""

	res, err := NewReconciler(m).Reconcile(ctx, ref, tpl.Bounds(), batch)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if res.Updated != 1 {
		t.Fatalf("updated = %d, want 1", res.Updated)
	}
	if res.TotalActiveSeats != 3 {
		t.Fatalf("total = %d, want 3", res.TotalActiveSeats)
	}
	after, _ := m.SpacesByLayout(ctx, ref)
	if after[0].SpaceType != layout.SpaceStairs {
		t.Fatalf("space type = %s, want STAIRS", after[0].SpaceType)
	}
	if after[0].SeatNumber != "" || after[0].SeatType != "" {
		t.Fatalf("seat fields survived type change: %+v", after[0])
	}
	if _, ok := after[0].Meta[layout.MetaIsLegroom]; ok {
		t.Fatalf("seat-only meta survived type change: %v", after[0].Meta)
	}
}

func TestReconcileRejectsInvalidBatchUntouched(t *testing.T) {
	ctx := context.Background()
	m := newMockStore()
	tpl := seedTemplate(t, m, 5, 2, 2)
	ref := model.TemplateRef(tpl.ID)

	batch := []layout.SpaceConfig{
		{FloorNumber: 1, Position: &layout.Position{X: 0, Y: 1}, SeatNumber: "1"},
		{FloorNumber: 1, Position: &layout.Position{X: 0, Y: 1}, SeatNumber: "2"},
	}
	_, err := NewReconciler(m).Reconcile(ctx, ref, tpl.Bounds(), batch)
	if _, ok := layout.AsValidation(err); !ok {
		t.Fatalf("want ValidationError, got %v", err)
	}
	// Nothing was persisted.
	got, _ := m.TemplateByID(ctx, tpl.ID)
	if got.TotalSeats != 20 {
		t.Fatalf("total_seats changed to %d on invalid batch", got.TotalSeats)
	}
}

func TestReconcileRollsBackOnStorageFailure(t *testing.T) {
	ctx := context.Background()
	m := newMockStore()
	tpl := seedTemplate(t, m, 5, 2, 2)
	ref := model.TemplateRef(tpl.ID)

	m.failOn = "UpdateLayoutTotalSeats"
	_, err := NewReconciler(m).Reconcile(ctx, ref, tpl.Bounds(), nil)
	if err == nil {
		t.Fatal("want induced storage failure")
	}
	m.failOn = ""

	// The deactivations of the failed transaction were rolled back.
	spaces, _ := m.SpacesByLayout(ctx, ref)
	active := 0
	for _, sp := range spaces {
		if sp.IsActive {
			active++
		}
	}
	if active != 20 {
		t.Fatalf("%d active spaces after rollback, want 20", active)
	}
}

func TestReconcileDiagramSetsModified(t *testing.T) {
	ctx := context.Background()
	m := newMockStore()
	tpl := seedTemplate(t, m, 5, 2, 2)
	d, err := NewDiagramService(m).CreateFromTemplate(ctx, 1, tpl.ID, nil, "")
	if err != nil {
		t.Fatalf("clone: %v", err)
	}
	if d.IsModified {
		t.Fatal("fresh diagram already marked modified")
	}

	ref := model.DiagramRef(d.ID)
	spaces, _ := m.SpacesByLayout(ctx, ref)
	if _, err := NewReconciler(m).Reconcile(ctx, ref, d.Bounds(), batchFromSpaces(spaces[:1])); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	got, _ := m.DiagramByID(ctx, d.ID)
	if !got.IsModified {
		t.Fatal("diagram not marked modified after batch edit")
	}
}
