package models

import "time"

// LotDetail es un registro de seguimiento (muestreo) de un lote.
type LotDetail struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	LotID       uint      `gorm:"not null;index" json:"lote_id"`
	Lot         Lot       `gorm:"foreignKey:LotID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Note        string    `gorm:"type:text" json:"observacion"`
	AvgWeightG  float64   `gorm:"not null;default:0" json:"peso_promedio_g"`
	SampleCount int       `gorm:"not null;default:0" json:"cantidad_muestra"`
	RecordedAt  time.Time `gorm:"not null" json:"fecha_registro"`
	Active      bool      `gorm:"not null;default:true" json:"activo"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
