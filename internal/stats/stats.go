// Package stats computes the administrator dashboard aggregates.
package stats

import (
	"context"
	"errors"
	"time"

	"github.com/FleetDesk/FleetDesk/internal/apperrors"
	"github.com/FleetDesk/FleetDesk/internal/reservation"
	"github.com/FleetDesk/FleetDesk/internal/user"
	"github.com/FleetDesk/FleetDesk/internal/vehicle"
	"gorm.io/gorm"
)

const recentLimit = 5

// Dashboard is the one-shot aggregate the admin landing page renders.
type Dashboard struct {
	ActiveReservations  int64 `json:"active_reservations"`
	AvailableVehicles   int64 `json:"available_vehicles"`
	ReportedIncidents   int64 `json:"reported_incidents"`
	TotalUsers          int64 `json:"total_users"`
	TotalDealerships    int64 `json:"total_dealerships"`
	KilometersThisMonth int64 `json:"kilometers_this_month"`

	RecentReservations []reservation.AdminView `json:"recent_reservations"`
}

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Dashboard runs the aggregate queries. Each count is independent; the
// snapshot is not transactional.
func (r *Repo) Dashboard(ctx context.Context, now time.Time) (*Dashboard, error) {
	if r == nil || r.db == nil {
		return nil, apperrors.Storage("dashboard", errors.New("repo db is nil"))
	}

	var d Dashboard

	err := r.db.WithContext(ctx).Model(&reservation.Reservation{}).
		Where("status = ?", reservation.StatusActive).
		Count(&d.ActiveReservations).Error
	if err != nil {
		return nil, apperrors.Storage("dashboard", err)
	}

	err = r.db.WithContext(ctx).Model(&vehicle.Vehicle{}).
		Where("status = ?", vehicle.StatusAvailable).
		Count(&d.AvailableVehicles).Error
	if err != nil {
		return nil, apperrors.Storage("dashboard", err)
	}

	err = r.db.WithContext(ctx).Model(&reservation.Reservation{}).
		Where("reported_incidents IS NOT NULL AND reported_incidents <> ''").
		Count(&d.ReportedIncidents).Error
	if err != nil {
		return nil, apperrors.Storage("dashboard", err)
	}

	err = r.db.WithContext(ctx).Model(&user.User{}).Count(&d.TotalUsers).Error
	if err != nil {
		return nil, apperrors.Storage("dashboard", err)
	}

	err = r.db.WithContext(ctx).Table("dealerships").Count(&d.TotalDealerships).Error
	if err != nil {
		return nil, apperrors.Storage("dashboard", err)
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	row := r.db.WithContext(ctx).Model(&reservation.Reservation{}).
		Select("COALESCE(SUM(kilometers_driven), 0)").
		Where("start_date >= ?", monthStart).
		Row()
	if err := row.Scan(&d.KilometersThisMonth); err != nil {
		return nil, apperrors.Storage("dashboard", err)
	}

	err = r.db.WithContext(ctx).Model(&reservation.Reservation{}).
		Select(`reservations.id, reservations.user_id, reservations.vehicle_id,
			reservations.start_date, reservations.end_date, reservations.status,
			reservations.kilometers_driven, reservations.reported_incidents,
			u.name AS user_name, u.email AS user_email,
			v.make AS make, v.model AS model, v.license_plate AS license_plate`).
		Joins("JOIN users u ON reservations.user_id = u.id").
		Joins("JOIN vehicles v ON reservations.vehicle_id = v.id").
		Order("reservations.created_at DESC").
		Limit(recentLimit).
		Scan(&d.RecentReservations).Error
	if err != nil {
		return nil, apperrors.Storage("dashboard", err)
	}

	return &d, nil
}
