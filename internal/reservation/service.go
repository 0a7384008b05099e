package reservation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/FleetDesk/FleetDesk/internal/apperrors"
	"github.com/FleetDesk/FleetDesk/internal/common/logger"
	"github.com/FleetDesk/FleetDesk/internal/events"
	"github.com/google/uuid"
)

// Store is the persistence surface the service needs. *Repo implements it.
type Store interface {
	CreateExclusive(ctx context.Context, res *Reservation) error
	HasOverlap(ctx context.Context, vehicleID string, start, end time.Time) (bool, error)
	GetByID(ctx context.Context, id string) (*Reservation, error)
	Cancel(ctx context.Context, id string, now time.Time) (int64, error)
	ListByUser(ctx context.Context, userID string) ([]UserView, error)
	ListAll(ctx context.Context, offset, limit int) ([]AdminView, int64, error)
}

// EventPublisher is satisfied by *events.Publisher; nil means no events.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{})
}

// Service owns the reservation lifecycle: availability, creation, and
// cancellation.
type Service struct {
	store Store
	pub   EventPublisher
	log   logger.Logger
	now   func() time.Time
}

func NewService(store Store, pub EventPublisher, log logger.Logger) *Service {
	return &Service{store: store, pub: pub, log: log, now: time.Now}
}

// CreateInput is the caller-supplied part of a new reservation. The user is
// never part of it; it always comes from the authenticated principal.
type CreateInput struct {
	VehicleID         string
	StartDate         time.Time
	EndDate           time.Time
	KilometersDriven  int64
	ReportedIncidents string
}

// Event is the payload published on reservation lifecycle changes.
type Event struct {
	ReservationID string    `json:"reservation_id"`
	VehicleID     string    `json:"vehicle_id"`
	UserID        string    `json:"user_id"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Status        Status    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Create books a vehicle for the authenticated user. Availability is
// re-checked inside the store's transaction, so two concurrent overlapping
// requests cannot both succeed: exactly one gets a conflict.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*Reservation, error) {
	if s == nil || s.store == nil {
		return nil, apperrors.Storage("create reservation", errNotInitialized)
	}
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.Validationf("user required")
	}
	if strings.TrimSpace(in.VehicleID) == "" {
		return nil, apperrors.Validationf("vehicle_id required")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return nil, apperrors.Validationf("start_date and end_date required")
	}

	start := Day(in.StartDate)
	end := Day(in.EndDate)
	if end.Before(start) {
		return nil, apperrors.Validationf("end_date before start_date")
	}
	if in.KilometersDriven < 0 {
		return nil, apperrors.Validationf("kilometers_driven must be non-negative")
	}

	res := &Reservation{
		ID:                uuid.NewString(),
		UserID:            strings.TrimSpace(userID),
		VehicleID:         strings.TrimSpace(in.VehicleID),
		StartDate:         start,
		EndDate:           end,
		Status:            StatusActive,
		KilometersDriven:  in.KilometersDriven,
		ReportedIncidents: strings.TrimSpace(in.ReportedIncidents),
	}

	if err := s.store.CreateExclusive(ctx, res); err != nil {
		return nil, err
	}

	s.publish(ctx, events.RoutingReservationCreated, res)
	return res, nil
}

// IsAvailable reports whether the vehicle is free for the inclusive range.
// Advisory only: Create re-checks under the lock.
func (s *Service) IsAvailable(ctx context.Context, vehicleID string, start, end time.Time) (bool, error) {
	if s == nil || s.store == nil {
		return false, apperrors.Storage("check availability", errNotInitialized)
	}
	if strings.TrimSpace(vehicleID) == "" {
		return false, apperrors.Validationf("vehicle_id required")
	}
	overlap, err := s.store.HasOverlap(ctx, vehicleID, Day(start), Day(end))
	if err != nil {
		return false, err
	}
	return !overlap, nil
}

// Cancel moves a reservation to cancelled. Only the owning user or an admin
// may cancel. Cancelling an already-cancelled reservation is a no-op
// reported as success.
func (s *Service) Cancel(ctx context.Context, id, actorID string, actorIsAdmin bool) (*Reservation, error) {
	if s == nil || s.store == nil {
		return nil, apperrors.Storage("cancel reservation", errNotInitialized)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.Validationf("reservation id required")
	}

	res, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actorIsAdmin && res.UserID != actorID {
		return nil, apperrors.Forbiddenf("reservation belongs to another user")
	}

	now := s.now()
	affected, err := s.store.Cancel(ctx, id, now)
	if err != nil {
		return nil, err
	}
	if affected > 0 {
		if applyErr := ApplyTransition(res, StatusCancelled, now); applyErr == nil {
			s.publish(ctx, events.RoutingReservationCancelled, res)
		}
	}
	// zero affected rows: it was already cancelled, state is unchanged
	res.Status = StatusCancelled
	return res, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Reservation, error) {
	if s == nil || s.store == nil {
		return nil, apperrors.Storage("get reservation", errNotInitialized)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.Validationf("reservation id required")
	}
	return s.store.GetByID(ctx, id)
}

// ListMine returns the caller's reservation history.
func (s *Service) ListMine(ctx context.Context, userID string) ([]UserView, error) {
	if s == nil || s.store == nil {
		return nil, apperrors.Storage("list reservations", errNotInitialized)
	}
	return s.store.ListByUser(ctx, userID)
}

// ListAll returns every reservation, paged. Admin surface.
func (s *Service) ListAll(ctx context.Context, offset, limit int) ([]AdminView, int64, error) {
	if s == nil || s.store == nil {
		return nil, 0, apperrors.Storage("list reservations", errNotInitialized)
	}
	return s.store.ListAll(ctx, offset, limit)
}

func (s *Service) publish(ctx context.Context, key string, res *Reservation) {
	if s.pub == nil {
		return
	}
	s.pub.Publish(ctx, key, Event{
		ReservationID: res.ID,
		VehicleID:     res.VehicleID,
		UserID:        res.UserID,
		StartDate:     res.StartDate,
		EndDate:       res.EndDate,
		Status:        res.Status,
		OccurredAt:    s.now(),
	})
}

var errNotInitialized = errors.New("service not initialized")
