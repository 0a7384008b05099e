package reservation

import (
	"fmt"
	"time"
)

// Status is the reservation state, persisted as a string.
type Status string

const (
	StatusActive    Status = "active"    // live booking; does not imply the date range includes "now"
	StatusCancelled Status = "cancelled" // terminal
)

// AllowTransition is the reservation state machine as a directed graph.
// There is deliberately no completed/expired state: past reservations stay
// active in storage until cancelled, and callers must not read active as
// "currently ongoing".
var AllowTransition = map[Status][]Status{
	StatusActive:    {StatusCancelled},
	StatusCancelled: {},
}

// CanTransition reports whether from -> to is an allowed transition.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	allowed, ok := AllowTransition[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ApplyTransition moves r to the target status and maintains the timestamp
// fields. Call only after CanTransition.
func ApplyTransition(r *Reservation, to Status, now time.Time) error {
	if r == nil {
		return fmt.Errorf("reservation is nil")
	}
	from := r.Status
	if !CanTransition(from, to) {
		return fmt.Errorf("invalid reservation status transition: %s -> %s", from, to)
	}

	r.Status = to

	if to == StatusCancelled && r.CancelledAt == nil {
		t := now
		r.CancelledAt = &t
	}
	return nil
}

// Reservation is the reservations table model. Dates are whole days.
// Once created, the vehicle and date range never change; the only mutation
// is cancellation.
type Reservation struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"index;size:36;not null"`
	VehicleID string    `gorm:"index;size:36;not null"`
	StartDate time.Time `gorm:"type:date;not null;index"`
	EndDate   time.Time `gorm:"type:date;not null"`
	Status    Status    `gorm:"type:varchar(16);index;not null"`

	KilometersDriven  int64  `gorm:"not null;default:0"`
	ReportedIncidents string `gorm:"type:text"`

	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
	CancelledAt *time.Time
}

// Overlaps reports whether two inclusive date intervals share at least one
// day. Back-to-back bookings that meet on a boundary date conflict; that
// policy is intentional and mirrored by the SQL predicate in the repo.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}

// Day truncates t to midnight UTC, the granularity reservations work at.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
