package models

import "time"

// Packaging es una presentación de empaque para cosecha.
type Packaging struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"nombre"`
	CapacityKg float64   `gorm:"not null;default:0" json:"capacidad_kg"`
	Active     bool      `gorm:"not null;default:true" json:"activo"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
