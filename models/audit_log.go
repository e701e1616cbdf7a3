package models

import "time"

// Acciones registradas en auditoría.
const (
	AuditActionCreate     = "CREATE"
	AuditActionUpdate     = "UPDATE"
	AuditActionInactivate = "INACTIVATE"
	AuditActionRestore    = "RESTORE"
	AuditActionCodeUsed   = "CODE_USED"
	AuditActionApprove    = "APPROVE"
	AuditActionReject     = "REJECT"
)

// AuditLog es el registro inmutable de acciones. Se inserta siempre en
// la misma transacción que la mutación que describe; nunca se actualiza
// ni se borra.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"usuario_id"`
	TableName string    `gorm:"type:varchar(64);not null;index" json:"tabla"`
	RecordID  uint      `gorm:"not null" json:"registro_id"`
	Action    string    `gorm:"type:varchar(20);not null;index" json:"accion"`
	Detail    string    `gorm:"type:text" json:"detalle"`
	CreatedAt time.Time `json:"created_at"`
}
