package dealership

import (
	"context"
	"strings"

	"github.com/FleetDesk/FleetDesk/internal/apperrors"
	"github.com/google/uuid"
)

// Store is the persistence surface the service needs. *Repo implements it.
type Store interface {
	Create(ctx context.Context, d *Dealership) error
	Update(ctx context.Context, d *Dealership) error
	FindByID(ctx context.Context, id string) (*Dealership, error)
	List(ctx context.Context) ([]Dealership, error)
	Delete(ctx context.Context, id string) error
}

// FleetCounter reports how many vehicles still belong to a dealership.
// Implemented by the vehicle repository; wired up in main.
type FleetCounter interface {
	CountByDealership(ctx context.Context, dealershipID string) (int64, error)
}

type Service struct {
	store Store
	fleet FleetCounter
}

func NewService(store Store, fleet FleetCounter) *Service {
	return &Service{store: store, fleet: fleet}
}

// Input carries the administrator-editable dealership fields.
type Input struct {
	Name         string
	City         string
	Address      string
	ContactPhone string
}

func (in *Input) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperrors.Validationf("name required")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in Input) (*Dealership, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	d := &Dealership{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		City:         strings.TrimSpace(in.City),
		Address:      strings.TrimSpace(in.Address),
		ContactPhone: strings.TrimSpace(in.ContactPhone),
	}
	if err := s.store.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*Dealership, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.Validationf("dealership id required")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	d := &Dealership{
		ID:           id,
		Name:         strings.TrimSpace(in.Name),
		City:         strings.TrimSpace(in.City),
		Address:      strings.TrimSpace(in.Address),
		ContactPhone: strings.TrimSpace(in.ContactPhone),
	}
	if err := s.store.Update(ctx, d); err != nil {
		return nil, err
	}
	return s.store.FindByID(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (*Dealership, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.Validationf("dealership id required")
	}
	return s.store.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Dealership, error) {
	return s.store.List(ctx)
}

// Delete removes an empty dealership. A site that still owns vehicles
// cannot be deleted; reassign or delete its fleet first.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperrors.Validationf("dealership id required")
	}
	if _, err := s.store.FindByID(ctx, id); err != nil {
		return err
	}
	owned, err := s.fleet.CountByDealership(ctx, id)
	if err != nil {
		return err
	}
	if owned > 0 {
		return apperrors.Conflictf("dealership still owns %d vehicles", owned)
	}
	return s.store.Delete(ctx, id)
}
