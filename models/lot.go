package models

import "time"

// Lot es un lote de peces sembrado en un estanque.
type Lot struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Code         string    `gorm:"type:varchar(50);not null" json:"codigo"`
	PoolID       uint      `gorm:"not null;index" json:"estanque_id"`
	Pool         Pool      `gorm:"foreignKey:PoolID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	ProviderID   uint      `gorm:"not null;index" json:"proveedor_id"`
	Provider     Provider  `gorm:"foreignKey:ProviderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Species      string    `gorm:"type:varchar(100);not null" json:"especie"`
	InitialCount int       `gorm:"not null" json:"cantidad_inicial"`
	SeedDate     time.Time `gorm:"not null" json:"fecha_siembra"`
	Active       bool      `gorm:"not null;default:true" json:"activo"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
