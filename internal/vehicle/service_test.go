package vehicle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/FleetDesk/FleetDesk/internal/apperrors"
)

type fakeStore struct {
	items   map[string]*Vehicle
	deleted []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: make(map[string]*Vehicle)}
}

func (f *fakeStore) Create(ctx context.Context, v *Vehicle) error {
	for _, existing := range f.items {
		if existing.LicensePlate == v.LicensePlate {
			return apperrors.Conflictf("license plate %s already registered", v.LicensePlate)
		}
	}
	cp := *v
	f.items[v.ID] = &cp
	return nil
}

func (f *fakeStore) Update(ctx context.Context, v *Vehicle) error {
	existing, ok := f.items[v.ID]
	if !ok {
		return apperrors.NotFoundf("vehicle %s not found", v.ID)
	}
	status := existing.Status
	cp := *v
	cp.Status = status
	f.items[v.ID] = &cp
	return nil
}

func (f *fakeStore) FindByID(ctx context.Context, id string) (*Vehicle, error) {
	v, ok := f.items[id]
	if !ok {
		return nil, apperrors.NotFoundf("vehicle %s not found", id)
	}
	cp := *v
	return &cp, nil
}

func (f *fakeStore) ListAvailable(ctx context.Context, dealershipID string) ([]Vehicle, error) {
	var out []Vehicle
	for _, v := range f.items {
		if v.Status != StatusAvailable {
			continue
		}
		if dealershipID != "" && v.DealershipID != dealershipID {
			continue
		}
		out = append(out, *v)
	}
	return out, nil
}

func (f *fakeStore) ListAll(ctx context.Context, offset, limit int) ([]Vehicle, int64, error) {
	var out []Vehicle
	for _, v := range f.items {
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, id string, status Status) error {
	v, ok := f.items[id]
	if !ok {
		return apperrors.NotFoundf("vehicle %s not found", id)
	}
	v.Status = status
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return apperrors.NotFoundf("vehicle %s not found", id)
	}
	delete(f.items, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeGuard struct {
	activeFuture map[string]bool
	history      map[string]int64
}

func (g *fakeGuard) HasActiveFuture(ctx context.Context, vehicleID string, now time.Time) (bool, error) {
	return g.activeFuture[vehicleID], nil
}

func (g *fakeGuard) CountByVehicle(ctx context.Context, vehicleID string) (int64, error) {
	return g.history[vehicleID], nil
}

func seedVehicle(t *testing.T, svc *Service, plate string) *Vehicle {
	t.Helper()
	v, err := svc.Create(context.Background(), Input{
		LicensePlate: plate,
		Make:         "Tesla",
		Model:        "Model 3",
		Year:         2022,
		Seats:        5,
		RangeKm:      450,
		DealershipID: "d-1",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return v
}

func TestCreateDefaultsAndDuplicatePlate(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeGuard{activeFuture: map[string]bool{}, history: map[string]int64{}})

	v := seedVehicle(t, svc, "1234-ABC")
	if v.Status != StatusAvailable {
		t.Fatalf("expected new vehicle available, got %s", v.Status)
	}
	if v.ImageRef != "default_car.jpg" {
		t.Fatalf("expected default image ref, got %s", v.ImageRef)
	}

	_, err := svc.Create(context.Background(), Input{
		LicensePlate: "1234-ABC",
		Make:         "Renault",
		Model:        "Zoe",
		Year:         2021,
		DealershipID: "d-1",
	})
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected conflict on duplicate plate, got %v", err)
	}
}

// A vehicle with an active reservation ending in the future cannot be
// deleted, whatever its history looks like.
func TestDeleteDeniedForActiveFutureReservations(t *testing.T) {
	store := newFakeStore()
	guard := &fakeGuard{activeFuture: map[string]bool{}, history: map[string]int64{}}
	svc := NewService(store, guard)

	v := seedVehicle(t, svc, "1111-AAA")
	guard.activeFuture[v.ID] = true
	guard.history[v.ID] = 3

	allowed, reason, err := svc.CanDelete(context.Background(), v.ID)
	if err != nil {
		t.Fatalf("CanDelete: %v", err)
	}
	if allowed {
		t.Fatalf("expected deletion denied")
	}
	if reason != "vehicle has active or future reservations" {
		t.Fatalf("unexpected reason: %q", reason)
	}

	err = svc.Delete(context.Background(), v.ID)
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(store.deleted) != 0 {
		t.Fatalf("vehicle must not be deleted")
	}
}

// Historical reservations alone also block physical deletion; the error
// points the administrator at the maintenance status instead.
func TestDeleteDeniedForHistoryAdvisesRetirement(t *testing.T) {
	store := newFakeStore()
	guard := &fakeGuard{activeFuture: map[string]bool{}, history: map[string]int64{}}
	svc := NewService(store, guard)

	v := seedVehicle(t, svc, "2222-BBB")
	guard.history[v.ID] = 7

	allowed, reason, err := svc.CanDelete(context.Background(), v.ID)
	if err != nil {
		t.Fatalf("CanDelete: %v", err)
	}
	if allowed {
		t.Fatalf("expected deletion denied")
	}
	if reason == "" || !errors.Is(svc.Delete(context.Background(), v.ID), apperrors.ErrConflict) {
		t.Fatalf("expected conflict with retirement advice, got reason=%q", reason)
	}

	// the safe path still works
	if err := svc.SetStatus(context.Background(), v.ID, StatusMaintenance); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	got, _ := store.FindByID(context.Background(), v.ID)
	if got.Status != StatusMaintenance {
		t.Fatalf("expected maintenance, got %s", got.Status)
	}
}

func TestDeleteAllowedWithNoHistory(t *testing.T) {
	store := newFakeStore()
	guard := &fakeGuard{activeFuture: map[string]bool{}, history: map[string]int64{}}
	svc := NewService(store, guard)

	v := seedVehicle(t, svc, "3333-CCC")

	allowed, _, err := svc.CanDelete(context.Background(), v.ID)
	if err != nil || !allowed {
		t.Fatalf("expected deletion allowed, got allowed=%v err=%v", allowed, err)
	}
	if err := svc.Delete(context.Background(), v.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != v.ID {
		t.Fatalf("expected vehicle deleted, got %v", store.deleted)
	}
}

func TestSetStatusRejectsUnknown(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeGuard{activeFuture: map[string]bool{}, history: map[string]int64{}})
	v := seedVehicle(t, svc, "4444-DDD")

	if err := svc.SetStatus(context.Background(), v.ID, Status("scrapped")); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListAvailableScopedByDealership(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeGuard{activeFuture: map[string]bool{}, history: map[string]int64{}})

	a := seedVehicle(t, svc, "5555-EEE")
	b, err := svc.Create(context.Background(), Input{
		LicensePlate: "6666-FFF",
		Make:         "Kia",
		Model:        "EV6",
		Year:         2023,
		DealershipID: "d-2",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.SetStatus(context.Background(), b.ID, StatusMaintenance); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	all, err := svc.ListAvailable(context.Background(), "")
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	if len(all) != 1 || all[0].ID != a.ID {
		t.Fatalf("expected only available vehicle %s, got %v", a.ID, all)
	}

	scoped, err := svc.ListAvailable(context.Background(), "d-2")
	if err != nil {
		t.Fatalf("ListAvailable scoped: %v", err)
	}
	if len(scoped) != 0 {
		t.Fatalf("maintenance vehicle must not appear, got %v", scoped)
	}
}
