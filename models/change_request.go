package models

import "time"

// Estados de una solicitud de cambio.
const (
	RequestStatusPending  = "PENDING"
	RequestStatusApproved = "APPROVED"
	RequestStatusRejected = "REJECTED"
)

// ChangeRequest es el cuerpo común de las solicitudes de edición e
// inactivación. CodeHash y CodeExpiresAt se fijan juntos, únicamente al
// pasar a APPROVED. CodeConsumed solo puede pasar de false a true, bajo
// las reglas de verificación del workflow.
type ChangeRequest struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	TableName     string     `gorm:"type:varchar(64);not null;index" json:"tabla"`
	RecordID      uint       `gorm:"not null;index" json:"registro_id"`
	RequesterID   uint       `gorm:"not null;index" json:"solicitante_id"`
	Reason        string     `gorm:"type:text" json:"motivo"`
	Status        string     `gorm:"type:varchar(12);not null;default:'PENDING'" json:"estado"`
	CodeHash      *string    `gorm:"type:varchar(100)" json:"-"`
	CodeExpiresAt *time.Time `json:"expira_en,omitempty"`
	CodeConsumed  bool       `gorm:"not null;default:false" json:"codigo_usado"`
	ApproverID    *uint      `json:"aprobador_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// EditRequest es una solicitud para editar un registro sensible.
type EditRequest struct {
	ChangeRequest `gorm:"embedded"`
}

// InactivationRequest es una solicitud para inactivar un registro sensible.
type InactivationRequest struct {
	ChangeRequest `gorm:"embedded"`
}

// HasValidCode indica si la solicitud tiene un código vigente sin usar.
func (r *ChangeRequest) HasValidCode(now time.Time) bool {
	return r.Status == RequestStatusApproved &&
		r.CodeHash != nil &&
		!r.CodeConsumed &&
		r.CodeExpiresAt != nil &&
		now.Before(*r.CodeExpiresAt)
}

// IsPending indica si la solicitud sigue viva para efectos de la UI:
// PENDING, o APPROVED con código vigente sin consumir.
func (r *ChangeRequest) IsPending(now time.Time) bool {
	return r.Status == RequestStatusPending || r.HasValidCode(now)
}
