package models

import "time"

// Provider es un proveedor de alevinos o insumos.
type Provider struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"nombre"`
	Contact   string    `gorm:"type:varchar(255)" json:"contacto"`
	Phone     string    `gorm:"type:varchar(30)" json:"telefono"`
	Active    bool      `gorm:"not null;default:true" json:"activo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
