package services

import (
	"encoding/json"

	"github.com/acuaterra/piscicola-backend/models"
	"gorm.io/gorm"
)

// RecordAudit inserta una fila de auditoría usando la transacción del
// llamador, para que la mutación y su rastro se confirmen juntos.
func RecordAudit(tx *gorm.DB, userID uint, table string, recordID uint, action string, detail interface{}) error {
	detailJSON := ""
	if detail != nil {
		if b, err := json.Marshal(detail); err == nil {
			detailJSON = string(b)
		}
	}

	entry := models.AuditLog{
		UserID:    userID,
		TableName: table,
		RecordID:  recordID,
		Action:    action,
		Detail:    detailJSON,
	}
	return tx.Create(&entry).Error
}
