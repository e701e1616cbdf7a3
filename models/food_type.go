package models

import "time"

// FoodType es un tipo de alimento concentrado.
type FoodType struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"nombre"`
	Brand      string    `gorm:"type:varchar(255)" json:"marca"`
	ProteinPct float64   `gorm:"not null;default:0" json:"porcentaje_proteina"`
	Active     bool      `gorm:"not null;default:true" json:"activo"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
