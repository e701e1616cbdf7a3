package models

import "time"

// Harvest es una cosecha registrada sobre un lote.
type Harvest struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	LotID       uint      `gorm:"not null;index" json:"lote_id"`
	Lot         Lot       `gorm:"foreignKey:LotID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	PackagingID uint      `gorm:"not null;index" json:"empaque_id"`
	Packaging   Packaging `gorm:"foreignKey:PackagingID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Count       int       `gorm:"not null" json:"cantidad"`
	WeightKg    float64   `gorm:"not null" json:"peso_kg"`
	HarvestedAt time.Time `gorm:"not null" json:"fecha_cosecha"`
	UserID      uint      `gorm:"not null;index" json:"usuario_id"`
	CreatedAt   time.Time `json:"created_at"`
}
