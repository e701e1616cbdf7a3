package models

import "time"

// Pool es un estanque de cultivo.
type Pool struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"nombre"`
	Location   string    `gorm:"type:varchar(255)" json:"ubicacion"`
	CapacityKg float64   `gorm:"not null;default:0" json:"capacidad_kg"`
	Active     bool      `gorm:"not null;default:true" json:"activo"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
