// Package dealership manages the physical sites that own vehicles.
package dealership

import "time"

// Dealership is the dealerships table model.
type Dealership struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Name         string    `gorm:"size:128;not null" json:"name"`
	City         string    `gorm:"size:64;index" json:"city"`
	Address      string    `gorm:"size:255" json:"address"`
	ContactPhone string    `gorm:"size:32" json:"contact_phone"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
