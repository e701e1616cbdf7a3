package models

import "time"

// Loss es una mortalidad registrada sobre un lote.
type Loss struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	LotID     uint      `gorm:"not null;index" json:"lote_id"`
	Lot       Lot       `gorm:"foreignKey:LotID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Count     int       `gorm:"not null" json:"cantidad"`
	Cause     string    `gorm:"type:varchar(255)" json:"causa"`
	LostAt    time.Time `gorm:"not null" json:"fecha_perdida"`
	UserID    uint      `gorm:"not null;index" json:"usuario_id"`
	CreatedAt time.Time `json:"created_at"`
}
