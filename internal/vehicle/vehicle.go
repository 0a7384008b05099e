package vehicle

import "time"

// Status is the administrator-controlled vehicle state. It is authoritative
// for administrative concerns (a maintenance vehicle is withheld from the
// browse list); booking availability is always computed from reservations.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusReserved    Status = "reserved"
	StatusMaintenance Status = "maintenance"
)

// ValidStatus reports whether s is a known vehicle status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusMaintenance:
		return true
	}
	return false
}

// Vehicle is the vehicles table model.
type Vehicle struct {
	ID           string `gorm:"primaryKey;size:36" json:"id"`
	LicensePlate string `gorm:"uniqueIndex;size:32;not null" json:"license_plate"`
	Make         string `gorm:"size:64;not null" json:"make"`
	Model        string `gorm:"size:64;not null" json:"model"`
	Year         int    `gorm:"not null" json:"year"`
	Seats        int    `gorm:"not null;default:0" json:"seats"`
	RangeKm      int    `gorm:"not null;default:0" json:"range_km"`
	Color        string `gorm:"size:32" json:"color"`

	// opaque reference to the vehicle photo, passed through unmodified
	ImageRef string `gorm:"size:255" json:"image_ref"`

	Status       Status `gorm:"type:varchar(16);index;not null" json:"status"`
	DealershipID string `gorm:"index;size:36" json:"dealership_id"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
