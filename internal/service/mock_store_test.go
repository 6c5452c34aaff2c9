package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/davilat/bus-inventory/internal/model"
	"github.com/davilat/bus-inventory/internal/repository"
)

// mockStore is a map-backed repository.Store. ExecTx snapshots all state
// and restores it when fn fails, so rollback behavior is observable in
// tests. Setting failOn to a method name makes that method error, which
// is how partial-failure isolation is exercised.
type mockStore struct {
	users     map[uint64]*model.User
	tokens    map[uint64]*model.RefreshToken
	templates map[uint64]*model.LayoutTemplate
	diagrams  map[uint64]*model.SeatDiagram
	spaces    map[uint64]*model.Space
	zones     map[uint64]*model.Zone
	buses     map[uint64]*model.Bus
	nextID    uint64
	inTx      bool
	failOn    string
}

func newMockStore() *mockStore {
	return &mockStore{
		users:     make(map[uint64]*model.User),
		tokens:    make(map[uint64]*model.RefreshToken),
		templates: make(map[uint64]*model.LayoutTemplate),
		diagrams:  make(map[uint64]*model.SeatDiagram),
		spaces:    make(map[uint64]*model.Space),
		zones:     make(map[uint64]*model.Zone),
		buses:     make(map[uint64]*model.Bus),
	}
}

func (m *mockStore) fail(method string) error {
	if m.failOn == method {
		return fmt.Errorf("induced failure in %s", method)
	}
	return nil
}

func (m *mockStore) id() uint64 {
	m.nextID++
	return m.nextID
}

func copyMap[V any](src map[uint64]*V) map[uint64]*V {
	dst := make(map[uint64]*V, len(src))
	for k, v := range src {
		c := *v
		dst[k] = &c
	}
	return dst
}

func (m *mockStore) ExecTx(ctx context.Context, fn func(repository.Store) error) error {
	if m.inTx {
		return fn(m)
	}
	users, tokens := copyMap(m.users), copyMap(m.tokens)
	templates, diagrams := copyMap(m.templates), copyMap(m.diagrams)
	spaces, zones, buses := copyMap(m.spaces), copyMap(m.zones), copyMap(m.buses)
	nextID := m.nextID

	m.inTx = true
	err := fn(m)
	m.inTx = false
	if err != nil {
		m.users, m.tokens = users, tokens
		m.templates, m.diagrams = templates, diagrams
		m.spaces, m.zones, m.buses = spaces, zones, buses
		m.nextID = nextID
	}
	return err
}

// --- users and tokens ---

func (m *mockStore) CreateUser(ctx context.Context, u *model.User) error {
	u.ID = m.id()
	c := *u
	m.users[u.ID] = &c
	return nil
}

func (m *mockStore) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockStore) UserByID(ctx context.Context, id uint64) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (m *mockStore) CreateRefreshToken(ctx context.Context, t *model.RefreshToken) error {
	t.ID = m.id()
	c := *t
	m.tokens[t.ID] = &c
	return nil
}

func (m *mockStore) RefreshTokenByHash(ctx context.Context, hash string) (*model.RefreshToken, error) {
	for _, t := range m.tokens {
		if t.TokenHash == hash && t.RevokedAt == nil {
			c := *t
			return &c, nil
		}
	}
	return nil, repository.ErrTokenNotFound
}

func (m *mockStore) RevokeRefreshToken(ctx context.Context, id uint64) error {
	t, ok := m.tokens[id]
	if !ok || t.RevokedAt != nil {
		return repository.ErrTokenNotFound
	}
	now := t.ExpiresAt
	t.RevokedAt = &now
	return nil
}

// --- templates ---

func (m *mockStore) CreateTemplate(ctx context.Context, t *model.LayoutTemplate) error {
	if err := m.fail("CreateTemplate"); err != nil {
		return err
	}
	t.ID = m.id()
	c := *t
	m.templates[t.ID] = &c
	return nil
}

func (m *mockStore) TemplateByID(ctx context.Context, id uint64) (*model.LayoutTemplate, error) {
	t, ok := m.templates[id]
	if !ok {
		return nil, repository.ErrTemplateNotFound
	}
	c := *t
	return &c, nil
}

func (m *mockStore) TemplateByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.LayoutTemplate, error) {
	t, ok := m.templates[id]
	if !ok || t.OwnerID != ownerID {
		return nil, repository.ErrTemplateNotFound
	}
	c := *t
	return &c, nil
}

func (m *mockStore) TemplatesByOwner(ctx context.Context, ownerID uint64) ([]model.LayoutTemplate, error) {
	var out []model.LayoutTemplate
	for _, t := range m.templates {
		if t.OwnerID == ownerID && t.IsActive {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockStore) UpdateTemplate(ctx context.Context, t *model.LayoutTemplate) error {
	if _, ok := m.templates[t.ID]; !ok {
		return repository.ErrTemplateNotFound
	}
	c := *t
	m.templates[t.ID] = &c
	return nil
}

func (m *mockStore) UpdateLayoutTotalSeats(ctx context.Context, ref model.LayoutRef, total int) error {
	if err := m.fail("UpdateLayoutTotalSeats"); err != nil {
		return err
	}
	switch ref.Kind {
	case model.KindTemplate:
		if t, ok := m.templates[ref.ID]; ok {
			t.TotalSeats = total
		}
	case model.KindDiagram:
		if d, ok := m.diagrams[ref.ID]; ok {
			d.TotalSeats = total
		}
	}
	return nil
}

// --- diagrams ---

func (m *mockStore) CreateDiagram(ctx context.Context, d *model.SeatDiagram) error {
	if err := m.fail("CreateDiagram"); err != nil {
		return err
	}
	d.ID = m.id()
	c := *d
	m.diagrams[d.ID] = &c
	return nil
}

func (m *mockStore) DiagramByID(ctx context.Context, id uint64) (*model.SeatDiagram, error) {
	d, ok := m.diagrams[id]
	if !ok {
		return nil, repository.ErrDiagramNotFound
	}
	c := *d
	return &c, nil
}

func (m *mockStore) DiagramByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.SeatDiagram, error) {
	d, ok := m.diagrams[id]
	if !ok || d.OwnerID != ownerID {
		return nil, repository.ErrDiagramNotFound
	}
	c := *d
	return &c, nil
}

func (m *mockStore) DiagramsByTemplate(ctx context.Context, templateID uint64) ([]model.SeatDiagram, error) {
	var out []model.SeatDiagram
	for _, d := range m.diagrams {
		if d.TemplateID == templateID && d.IsActive {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockStore) UpdateDiagramShape(ctx context.Context, d *model.SeatDiagram) error {
	if err := m.fail("UpdateDiagramShape"); err != nil {
		return err
	}
	cur, ok := m.diagrams[d.ID]
	if !ok {
		return repository.ErrDiagramNotFound
	}
	cur.NumFloors = d.NumFloors
	cur.SeatsPerFloor = d.SeatsPerFloor
	cur.TotalSeats = d.TotalSeats
	cur.MaxCapacity = d.MaxCapacity
	cur.IsFactoryDefault = d.IsFactoryDefault
	return nil
}

func (m *mockStore) SetDiagramModified(ctx context.Context, id uint64, modified bool) error {
	d, ok := m.diagrams[id]
	if !ok {
		return repository.ErrDiagramNotFound
	}
	d.IsModified = modified
	return nil
}

// --- spaces ---

func (m *mockStore) SpacesByLayout(ctx context.Context, ref model.LayoutRef) ([]model.Space, error) {
	var out []model.Space
	for _, sp := range m.spaces {
		if sp.LayoutKind == ref.Kind && sp.LayoutID == ref.ID {
			out = append(out, *sp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.FloorNumber != b.FloorNumber {
			return a.FloorNumber < b.FloorNumber
		}
		if a.Position.Y != b.Position.Y {
			return a.Position.Y < b.Position.Y
		}
		return a.Position.X < b.Position.X
	})
	return out, nil
}

func (m *mockStore) CreateSpaces(ctx context.Context, spaces []model.Space) error {
	if err := m.fail("CreateSpaces"); err != nil {
		return err
	}
	for _, sp := range spaces {
		sp.ID = m.id()
		c := sp
		m.spaces[sp.ID] = &c
	}
	return nil
}

func (m *mockStore) UpdateSpace(ctx context.Context, sp *model.Space) error {
	if err := m.fail("UpdateSpace"); err != nil {
		return err
	}
	if _, ok := m.spaces[sp.ID]; !ok {
		return repository.ErrSpaceNotFound
	}
	c := *sp
	m.spaces[sp.ID] = &c
	return nil
}

func (m *mockStore) DeactivateSpace(ctx context.Context, id uint64) error {
	sp, ok := m.spaces[id]
	if !ok {
		return repository.ErrSpaceNotFound
	}
	sp.IsActive = false
	return nil
}

func (m *mockStore) DeleteSpace(ctx context.Context, id uint64) error {
	if err := m.fail("DeleteSpace"); err != nil {
		return err
	}
	if _, ok := m.spaces[id]; !ok {
		return repository.ErrSpaceNotFound
	}
	delete(m.spaces, id)
	return nil
}

func (m *mockStore) DeleteSpacesByLayout(ctx context.Context, ref model.LayoutRef) error {
	for id, sp := range m.spaces {
		if sp.LayoutKind == ref.Kind && sp.LayoutID == ref.ID {
			delete(m.spaces, id)
		}
	}
	return nil
}

func (m *mockStore) CountActiveSeats(ctx context.Context, ref model.LayoutRef) (int, error) {
	n := 0
	for _, sp := range m.spaces {
		if sp.LayoutKind == ref.Kind && sp.LayoutID == ref.ID && sp.IsActive && sp.IsSeat() {
			n++
		}
	}
	return n, nil
}

// --- zones ---

func (m *mockStore) ZonesByLayout(ctx context.Context, ref model.LayoutRef) ([]model.Zone, error) {
	var out []model.Zone
	for _, z := range m.zones {
		if z.LayoutKind == ref.Kind && z.LayoutID == ref.ID {
			out = append(out, *z)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockStore) CreateZone(ctx context.Context, z *model.Zone) error {
	z.ID = m.id()
	c := *z
	m.zones[z.ID] = &c
	return nil
}

func (m *mockStore) CreateZones(ctx context.Context, zones []model.Zone) error {
	if err := m.fail("CreateZones"); err != nil {
		return err
	}
	for _, z := range zones {
		z.ID = m.id()
		c := z
		m.zones[z.ID] = &c
	}
	return nil
}

func (m *mockStore) UpdateZone(ctx context.Context, z *model.Zone) error {
	cur, ok := m.zones[z.ID]
	if !ok || cur.LayoutKind != z.LayoutKind || cur.LayoutID != z.LayoutID {
		return repository.ErrZoneNotFound
	}
	c := *z
	m.zones[z.ID] = &c
	return nil
}

func (m *mockStore) DeleteZone(ctx context.Context, id uint64, ref model.LayoutRef) error {
	z, ok := m.zones[id]
	if !ok || z.LayoutKind != ref.Kind || z.LayoutID != ref.ID {
		return repository.ErrZoneNotFound
	}
	delete(m.zones, id)
	return nil
}

func (m *mockStore) DeleteZonesByLayout(ctx context.Context, ref model.LayoutRef) error {
	if err := m.fail("DeleteZonesByLayout"); err != nil {
		return err
	}
	for id, z := range m.zones {
		if z.LayoutKind == ref.Kind && z.LayoutID == ref.ID {
			delete(m.zones, id)
		}
	}
	return nil
}

// --- buses ---

func (m *mockStore) CreateBus(ctx context.Context, b *model.Bus) error {
	b.ID = m.id()
	c := *b
	m.buses[b.ID] = &c
	return nil
}

func (m *mockStore) BusByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Bus, error) {
	b, ok := m.buses[id]
	if !ok || b.OwnerID != ownerID {
		return nil, repository.ErrBusNotFound
	}
	c := *b
	return &c, nil
}

func (m *mockStore) BusesByOwner(ctx context.Context, ownerID uint64) ([]model.Bus, error) {
	var out []model.Bus
	for _, b := range m.buses {
		if b.OwnerID == ownerID && b.IsActive {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockStore) AttachDiagramToBus(ctx context.Context, busID, diagramID uint64) error {
	b, ok := m.buses[busID]
	if !ok {
		return repository.ErrBusNotFound
	}
	d := diagramID
	b.DiagramID = &d
	return nil
}

var _ repository.Store = (*mockStore)(nil)
