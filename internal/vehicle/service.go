package vehicle

import (
	"context"
	"strings"
	"time"

	"github.com/FleetDesk/FleetDesk/internal/apperrors"
	"github.com/google/uuid"
)

// Store is the persistence surface the service needs. *Repo implements it.
type Store interface {
	Create(ctx context.Context, v *Vehicle) error
	Update(ctx context.Context, v *Vehicle) error
	FindByID(ctx context.Context, id string) (*Vehicle, error)
	ListAvailable(ctx context.Context, dealershipID string) ([]Vehicle, error)
	ListAll(ctx context.Context, offset, limit int) ([]Vehicle, int64, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	Delete(ctx context.Context, id string) error
}

// ReservationGuard answers the two questions the deletion guard asks.
// Implemented by the reservation repository; wired up in main.
type ReservationGuard interface {
	HasActiveFuture(ctx context.Context, vehicleID string, now time.Time) (bool, error)
	CountByVehicle(ctx context.Context, vehicleID string) (int64, error)
}

// Service owns vehicle administration, including the deletion guard.
type Service struct {
	store Store
	guard ReservationGuard
	now   func() time.Time
}

func NewService(store Store, guard ReservationGuard) *Service {
	return &Service{store: store, guard: guard, now: time.Now}
}

// Input carries the administrator-editable vehicle fields.
type Input struct {
	LicensePlate string
	Make         string
	Model        string
	Year         int
	Seats        int
	RangeKm      int
	Color        string
	ImageRef     string
	DealershipID string
}

func (in *Input) validate() error {
	if strings.TrimSpace(in.LicensePlate) == "" {
		return apperrors.Validationf("license_plate required")
	}
	if strings.TrimSpace(in.Make) == "" || strings.TrimSpace(in.Model) == "" {
		return apperrors.Validationf("make and model required")
	}
	if strings.TrimSpace(in.DealershipID) == "" {
		return apperrors.Validationf("dealership_id required")
	}
	if in.Year < 1900 {
		return apperrors.Validationf("year looks wrong")
	}
	return nil
}

// Create registers a new vehicle; it starts in the available status.
func (s *Service) Create(ctx context.Context, in Input) (*Vehicle, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	v := &Vehicle{
		ID:           uuid.NewString(),
		LicensePlate: strings.TrimSpace(in.LicensePlate),
		Make:         strings.TrimSpace(in.Make),
		Model:        strings.TrimSpace(in.Model),
		Year:         in.Year,
		Seats:        in.Seats,
		RangeKm:      in.RangeKm,
		Color:        strings.TrimSpace(in.Color),
		ImageRef:     strings.TrimSpace(in.ImageRef),
		Status:       StatusAvailable,
		DealershipID: strings.TrimSpace(in.DealershipID),
	}
	if v.ImageRef == "" {
		v.ImageRef = "default_car.jpg"
	}

	if err := s.store.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Update edits the vehicle's descriptive fields. Status changes go through
// SetStatus.
func (s *Service) Update(ctx context.Context, id string, in Input) (*Vehicle, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.Validationf("vehicle id required")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	v := &Vehicle{
		ID:           id,
		LicensePlate: strings.TrimSpace(in.LicensePlate),
		Make:         strings.TrimSpace(in.Make),
		Model:        strings.TrimSpace(in.Model),
		Year:         in.Year,
		Seats:        in.Seats,
		RangeKm:      in.RangeKm,
		Color:        strings.TrimSpace(in.Color),
		ImageRef:     strings.TrimSpace(in.ImageRef),
		DealershipID: strings.TrimSpace(in.DealershipID),
	}
	if err := s.store.Update(ctx, v); err != nil {
		return nil, err
	}
	return s.store.FindByID(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (*Vehicle, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.Validationf("vehicle id required")
	}
	return s.store.FindByID(ctx, id)
}

func (s *Service) ListAvailable(ctx context.Context, dealershipID string) ([]Vehicle, error) {
	return s.store.ListAvailable(ctx, strings.TrimSpace(dealershipID))
}

func (s *Service) ListAll(ctx context.Context, offset, limit int) ([]Vehicle, int64, error) {
	return s.store.ListAll(ctx, offset, limit)
}

// SetStatus is the safe alternative to deletion: retire a vehicle by moving
// it to maintenance instead of dropping its history.
func (s *Service) SetStatus(ctx context.Context, id string, status Status) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperrors.Validationf("vehicle id required")
	}
	if !ValidStatus(status) {
		return apperrors.Validationf("unknown vehicle status %q", status)
	}
	return s.store.UpdateStatus(ctx, id, status)
}

// CanDelete evaluates the deletion guard without deleting anything.
// Rule 1: an active reservation ending today or later blocks deletion.
// Rule 2: any historical reservation rows block physical deletion; the
// vehicle should be retired to maintenance instead.
func (s *Service) CanDelete(ctx context.Context, id string) (allowed bool, reason string, err error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, "", apperrors.Validationf("vehicle id required")
	}
	if _, err := s.store.FindByID(ctx, id); err != nil {
		return false, "", err
	}

	busy, err := s.guard.HasActiveFuture(ctx, id, s.now())
	if err != nil {
		return false, "", err
	}
	if busy {
		return false, "vehicle has active or future reservations", nil
	}

	history, err := s.guard.CountByVehicle(ctx, id)
	if err != nil {
		return false, "", err
	}
	if history > 0 {
		return false, "vehicle has reservation history; set its status to maintenance instead of deleting", nil
	}
	return true, "", nil
}

// Delete physically removes a vehicle, but only when the guard allows it.
func (s *Service) Delete(ctx context.Context, id string) error {
	allowed, reason, err := s.CanDelete(ctx, id)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.Conflictf("%s", reason)
	}
	return s.store.Delete(ctx, id)
}
