package dealership

import (
	"context"
	"errors"
	"testing"

	"github.com/FleetDesk/FleetDesk/internal/apperrors"
)

type fakeStore struct {
	items   map[string]*Dealership
	deleted []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: make(map[string]*Dealership)}
}

func (f *fakeStore) Create(ctx context.Context, d *Dealership) error {
	cp := *d
	f.items[d.ID] = &cp
	return nil
}

func (f *fakeStore) Update(ctx context.Context, d *Dealership) error {
	if _, ok := f.items[d.ID]; !ok {
		return apperrors.NotFoundf("dealership %s not found", d.ID)
	}
	cp := *d
	f.items[d.ID] = &cp
	return nil
}

func (f *fakeStore) FindByID(ctx context.Context, id string) (*Dealership, error) {
	d, ok := f.items[id]
	if !ok {
		return nil, apperrors.NotFoundf("dealership %s not found", id)
	}
	cp := *d
	return &cp, nil
}

func (f *fakeStore) List(ctx context.Context) ([]Dealership, error) {
	var out []Dealership
	for _, d := range f.items {
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return apperrors.NotFoundf("dealership %s not found", id)
	}
	delete(f.items, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeFleet struct {
	counts map[string]int64
}

func (f *fakeFleet) CountByDealership(ctx context.Context, dealershipID string) (int64, error) {
	return f.counts[dealershipID], nil
}

func TestCreateRequiresName(t *testing.T) {
	svc := NewService(newFakeStore(), &fakeFleet{counts: map[string]int64{}})

	_, err := svc.Create(context.Background(), Input{City: "Madrid"})
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	d, err := svc.Create(context.Background(), Input{Name: "  Central  ", City: "Madrid"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if d.Name != "Central" {
		t.Fatalf("expected trimmed name, got %q", d.Name)
	}
}

func TestDeleteRefusedWhileVehiclesRemain(t *testing.T) {
	store := newFakeStore()
	fleet := &fakeFleet{counts: map[string]int64{}}
	svc := NewService(store, fleet)

	d, err := svc.Create(context.Background(), Input{Name: "North"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	fleet.counts[d.ID] = 4

	err = svc.Delete(context.Background(), d.ID)
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected conflict while vehicles remain, got %v", err)
	}
	if len(store.deleted) != 0 {
		t.Fatalf("dealership must not be deleted")
	}

	fleet.counts[d.ID] = 0
	if err := svc.Delete(context.Background(), d.ID); err != nil {
		t.Fatalf("Delete on empty site: %v", err)
	}
	if len(store.deleted) != 1 {
		t.Fatalf("expected dealership deleted")
	}
}

func TestDeleteUnknownDealership(t *testing.T) {
	svc := NewService(newFakeStore(), &fakeFleet{counts: map[string]int64{}})
	err := svc.Delete(context.Background(), "missing")
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
