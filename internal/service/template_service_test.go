package service

import (
	"context"
	"strconv"
	"testing"

	"github.com/davilat/bus-inventory/internal/layout"
	"github.com/davilat/bus-inventory/internal/model"
	"github.com/davilat/bus-inventory/internal/repository"
)

func TestCreateTemplateGeneratesLayout(t *testing.T) {
	ctx := context.Background()
	m := newMockStore()
	tpl, err := NewTemplateService(m).Create(ctx, 1, CreateTemplateInput{
		Name:      "Intercity 40",
		NumFloors: 1,
		SeatsPerFloor: []layout.FloorConfig{
			{FloorNumber: 1, NumRows: 10, SeatsLeft: 2, SeatsRight: 2},
		},
		MaxCapacity: 44,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tpl.TotalSeats != 40 {
		t.Fatalf("total_seats = %d, want 40", tpl.TotalSeats)
	}

	spaces, _ := m.SpacesByLayout(ctx, model.TemplateRef(tpl.ID))
	if len(spaces) != 40 {
		t.Fatalf("generated %d spaces, want 40", len(spaces))
	}
	seen := make(map[string]bool, 40)
	for _, sp := range spaces {
		if sp.SpaceType != layout.SpaceSeat || !sp.IsActive {
			t.Fatalf("unexpected generated space %+v", sp)
		}
		seen[sp.SeatNumber] = true
	}
	for n := 1; n <= 40; n++ {
		if !seen[strconv.Itoa(n)] {
			t.Fatalf("seat number %d missing from generated layout", n)
		}
	}
}

func TestCreateTemplateMissingFloorConfigFails(t *testing.T) {
	ctx := context.Background()
	m := newMockStore()
	_, err := NewTemplateService(m).Create(ctx, 1, CreateTemplateInput{
		Name:      "broken",
		NumFloors: 2,
		SeatsPerFloor: []layout.FloorConfig{
			{FloorNumber: 1, NumRows: 10, SeatsLeft: 2, SeatsRight: 2},
		},
	})
	if _, ok := layout.AsValidation(err); !ok {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if len(m.templates) != 0 || len(m.spaces) != 0 {
		t.Fatal("failed creation left rows behind")
	}
}

func TestCreateTemplateRollsBackOnSpacePersistFailure(t *testing.T) {
	ctx := context.Background()
	m := newMockStore()
	m.failOn = "CreateSpaces"
	_, err := NewTemplateService(m).Create(ctx, 1, CreateTemplateInput{
		Name:      "doomed",
		NumFloors: 1,
		SeatsPerFloor: []layout.FloorConfig{
			{FloorNumber: 1, NumRows: 4, SeatsLeft: 2, SeatsRight: 2},
		},
	})
	if err == nil {
		t.Fatal("want induced storage failure")
	}
	if len(m.templates) != 0 {
		t.Fatal("template row survived the rolled-back creation")
	}
}

func TestUpdateTemplateShapeRegenerates(t *testing.T) {
	ctx := context.Background()
	m := newMockStore()
	tpl := seedTemplate(t, m, 10, 2, 2)

	in := UpdateTemplateInput{
		SeatsPerFloor: []layout.FloorConfig{{FloorNumber: 1, NumRows: 12, SeatsLeft: 2, SeatsRight: 2}},
	}
	got, err := NewTemplateService(m).Update(ctx, 1, tpl.ID, in)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.TotalSeats != 48 {
		t.Fatalf("total_seats = %d, want 48", got.TotalSeats)
	}
	spaces, _ := m.SpacesByLayout(ctx, model.TemplateRef(tpl.ID))
	active := 0
	for _, sp := range spaces {
		if sp.IsActive {
			active++
		}
	}
	if active != 48 {
		t.Fatalf("%d active spaces after grow, want 48", active)
	}
}

func TestUpdateTemplateNameOnlyKeepsSpaces(t *testing.T) {
	ctx := context.Background()
	m := newMockStore()
	tpl := seedTemplate(t, m, 10, 2, 2)
	before, _ := m.SpacesByLayout(ctx, model.TemplateRef(tpl.ID))

	name := "renamed"
	got, err := NewTemplateService(m).Update(ctx, 1, tpl.ID, UpdateTemplateInput{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "renamed" || got.TotalSeats != 40 {
		t.Fatalf("unexpected template %+v", got)
	}
	after, _ := m.SpacesByLayout(ctx, model.TemplateRef(tpl.ID))
	if len(after) != len(before) {
		t.Fatalf("space count changed on a rename: %d -> %d", len(before), len(after))
	}
}

func TestUpdateTemplateOwnershipEnforced(t *testing.T) {
	ctx := context.Background()
	m := newMockStore()
	tpl := seedTemplate(t, m, 5, 2, 2)

	name := "stolen"
	_, err := NewTemplateService(m).Update(ctx, 99, tpl.ID, UpdateTemplateInput{Name: &name})
	if err != repository.ErrTemplateNotFound {
		t.Fatalf("want ErrTemplateNotFound for foreign owner, got %v", err)
	}
}
