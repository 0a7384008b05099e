package reservation

import (
	"context"
	"errors"
	"time"

	"github.com/FleetDesk/FleetDesk/internal/apperrors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// overlapPredicate is the interval-overlap test from the booking rules:
// inclusive BETWEEN on both ends, so reservations sharing a boundary day
// conflict. Parameters: start, end, start, end.
const overlapPredicate = "(? BETWEEN start_date AND end_date) OR " +
	"(? BETWEEN start_date AND end_date) OR " +
	"(start_date BETWEEN ? AND ?)"

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// CreateExclusive inserts a reservation after re-checking availability, all
// inside one transaction that first takes a FOR UPDATE lock on the vehicle
// row. Concurrent creates for the same vehicle serialize on that lock, so
// the check-then-insert cannot race.
func (r *Repo) CreateExclusive(ctx context.Context, res *Reservation) error {
	if r == nil || r.db == nil {
		return apperrors.Storage("create reservation", errors.New("repo db is nil"))
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked struct {
			ID     string
			Status string
		}
		err := tx.Table("vehicles").
			Select("id, status").
			Where("id = ?", res.VehicleID).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Take(&locked).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFoundf("vehicle %s not found", res.VehicleID)
		}
		if err != nil {
			return err
		}
		if locked.Status == "maintenance" {
			return apperrors.Conflictf("vehicle is in maintenance")
		}

		var overlapping int64
		err = tx.Model(&Reservation{}).
			Where("vehicle_id = ? AND status = ?", res.VehicleID, StatusActive).
			Where(overlapPredicate, res.StartDate, res.EndDate, res.StartDate, res.EndDate).
			Count(&overlapping).Error
		if err != nil {
			return err
		}
		if overlapping > 0 {
			return apperrors.Conflictf("vehicle not available for requested dates")
		}

		return tx.Create(res).Error
	})
	return apperrors.Storage("create reservation", err)
}

// HasOverlap reports whether any active reservation for the vehicle shares
// at least one day with [start, end].
func (r *Repo) HasOverlap(ctx context.Context, vehicleID string, start, end time.Time) (bool, error) {
	if r == nil || r.db == nil {
		return false, apperrors.Storage("check availability", errors.New("repo db is nil"))
	}
	var n int64
	err := r.db.WithContext(ctx).Model(&Reservation{}).
		Where("vehicle_id = ? AND status = ?", vehicleID, StatusActive).
		Where(overlapPredicate, start, end, start, end).
		Count(&n).Error
	if err != nil {
		return false, apperrors.Storage("check availability", err)
	}
	return n > 0, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Reservation, error) {
	if r == nil || r.db == nil {
		return nil, apperrors.Storage("get reservation", errors.New("repo db is nil"))
	}
	var res Reservation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFoundf("reservation %s not found", id)
	}
	if err != nil {
		return nil, apperrors.Storage("get reservation", err)
	}
	return &res, nil
}

// Cancel flips an active reservation to cancelled. The status predicate in
// the WHERE clause makes the operation idempotent: cancelling an already
// cancelled reservation touches zero rows. Returns the affected row count.
func (r *Repo) Cancel(ctx context.Context, id string, now time.Time) (int64, error) {
	if r == nil || r.db == nil {
		return 0, apperrors.Storage("cancel reservation", errors.New("repo db is nil"))
	}
	result := r.db.WithContext(ctx).Model(&Reservation{}).
		Where("id = ? AND status = ?", id, StatusActive).
		Updates(map[string]interface{}{
			"status":       StatusCancelled,
			"cancelled_at": now,
		})
	if result.Error != nil {
		return 0, apperrors.Storage("cancel reservation", result.Error)
	}
	return result.RowsAffected, nil
}

// UserView is a reservation joined with its vehicle and dealership, the
// shape the "my reservations" listing renders.
type UserView struct {
	ID                string     `json:"id"`
	StartDate         time.Time  `json:"start_date"`
	EndDate           time.Time  `json:"end_date"`
	Status            Status     `json:"status"`
	KilometersDriven  int64      `json:"kilometers_driven"`
	ReportedIncidents string     `json:"reported_incidents,omitempty"`
	CancelledAt       *time.Time `json:"cancelled_at,omitempty"`

	Make           string `json:"make"`
	Model          string `json:"model"`
	LicensePlate   string `json:"license_plate"`
	ImageRef       string `json:"image_ref"`
	DealershipName string `json:"dealership_name"`
	DealershipCity string `json:"dealership_city"`
}

// ListByUser returns the caller's reservation history, newest first.
func (r *Repo) ListByUser(ctx context.Context, userID string) ([]UserView, error) {
	if r == nil || r.db == nil {
		return nil, apperrors.Storage("list reservations", errors.New("repo db is nil"))
	}
	var views []UserView
	err := r.db.WithContext(ctx).Model(&Reservation{}).
		Select(`reservations.id, reservations.start_date, reservations.end_date,
			reservations.status, reservations.kilometers_driven,
			reservations.reported_incidents, reservations.cancelled_at,
			v.make AS make, v.model AS model, v.license_plate AS license_plate,
			v.image_ref AS image_ref,
			d.name AS dealership_name, d.city AS dealership_city`).
		Joins("JOIN vehicles v ON reservations.vehicle_id = v.id").
		Joins("JOIN dealerships d ON v.dealership_id = d.id").
		Where("reservations.user_id = ?", userID).
		Order("reservations.start_date DESC").
		Scan(&views).Error
	if err != nil {
		return nil, apperrors.Storage("list reservations", err)
	}
	return views, nil
}

// AdminView is a reservation joined with its user and vehicle, the shape
// the administrator listing renders.
type AdminView struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	VehicleID         string    `json:"vehicle_id"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	Status            Status    `json:"status"`
	KilometersDriven  int64     `json:"kilometers_driven"`
	ReportedIncidents string    `json:"reported_incidents,omitempty"`

	UserName     string `json:"user_name"`
	UserEmail    string `json:"user_email"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	LicensePlate string `json:"license_plate"`
}

// ListAll returns every reservation with user and vehicle detail, paged.
func (r *Repo) ListAll(ctx context.Context, offset, limit int) ([]AdminView, int64, error) {
	if r == nil || r.db == nil {
		return nil, 0, apperrors.Storage("list reservations", errors.New("repo db is nil"))
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&Reservation{}).Count(&total).Error; err != nil {
		return nil, 0, apperrors.Storage("list reservations", err)
	}

	var views []AdminView
	err := r.db.WithContext(ctx).Model(&Reservation{}).
		Select(`reservations.id, reservations.user_id, reservations.vehicle_id,
			reservations.start_date, reservations.end_date, reservations.status,
			reservations.kilometers_driven, reservations.reported_incidents,
			u.name AS user_name, u.email AS user_email,
			v.make AS make, v.model AS model, v.license_plate AS license_plate`).
		Joins("JOIN users u ON reservations.user_id = u.id").
		Joins("JOIN vehicles v ON reservations.vehicle_id = v.id").
		Order("reservations.start_date DESC").
		Offset(offset).Limit(limit).
		Scan(&views).Error
	if err != nil {
		return nil, 0, apperrors.Storage("list reservations", err)
	}
	return views, total, nil
}

// HasActiveFuture reports whether the vehicle has an active reservation
// ending today or later. Backs the vehicle deletion guard.
func (r *Repo) HasActiveFuture(ctx context.Context, vehicleID string, now time.Time) (bool, error) {
	if r == nil || r.db == nil {
		return false, apperrors.Storage("check active reservations", errors.New("repo db is nil"))
	}
	var n int64
	err := r.db.WithContext(ctx).Model(&Reservation{}).
		Where("vehicle_id = ? AND status = ? AND end_date >= ?", vehicleID, StatusActive, now).
		Count(&n).Error
	if err != nil {
		return false, apperrors.Storage("check active reservations", err)
	}
	return n > 0, nil
}

// CountByVehicle counts all reservation rows for a vehicle, any status.
// Backs the historical-record half of the deletion guard.
func (r *Repo) CountByVehicle(ctx context.Context, vehicleID string) (int64, error) {
	if r == nil || r.db == nil {
		return 0, apperrors.Storage("count reservations", errors.New("repo db is nil"))
	}
	var n int64
	err := r.db.WithContext(ctx).Model(&Reservation{}).
		Where("vehicle_id = ?", vehicleID).
		Count(&n).Error
	if err != nil {
		return 0, apperrors.Storage("count reservations", err)
	}
	return n, nil
}
