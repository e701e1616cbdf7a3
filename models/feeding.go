package models

import "time"

// Feeding es una alimentación registrada sobre un lote.
type Feeding struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	LotID      uint      `gorm:"not null;index" json:"lote_id"`
	Lot        Lot       `gorm:"foreignKey:LotID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	FoodTypeID uint      `gorm:"not null;index" json:"tipo_alimento_id"`
	FoodType   FoodType  `gorm:"foreignKey:FoodTypeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	QuantityKg float64   `gorm:"not null" json:"cantidad_kg"`
	FedAt      time.Time `gorm:"not null" json:"fecha_alimentacion"`
	UserID     uint      `gorm:"not null;index" json:"usuario_id"`
	CreatedAt  time.Time `json:"created_at"`
}
