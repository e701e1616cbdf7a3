package controllers

import (
	"errors"
	"strings"

	"github.com/acuaterra/piscicola-backend/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Errores de negocio compartidos por los controladores. Los mensajes
// son los que viajan al cliente.
var (
	ErrDuplicadoActivo   = errors.New("Ya existe un registro activo con ese nombre")
	ErrDuplicadoInactivo = errors.New("Existe un registro inactivo con ese nombre, considere restaurarlo")

	ErrSolicitudNoEncontrada = errors.New("Solicitud no encontrada")
	ErrSinPermiso            = errors.New("No tiene permisos para esta operación")
	ErrSolicitudNoAprobada   = errors.New("La solicitud no está aprobada")
	ErrSolicitudNoPendiente  = errors.New("La solicitud no está pendiente")
	ErrCodigoYaUsado         = errors.New("El código ya fue usado")
	ErrCodigoExpirado        = errors.New("El código ha expirado")
	ErrCodigoIncorrecto      = errors.New("El código es incorrecto")
)

// currentUser lee la identidad que dejó el middleware de autenticación.
func currentUser(c *gin.Context) (uint, string) {
	var userID uint
	var role string
	if v, ok := c.Get("user_id"); ok {
		userID, _ = v.(uint)
	}
	if v, ok := c.Get("role"); ok {
		role, _ = v.(string)
	}
	return userID, role
}

// lockForUpdate agrega SELECT ... FOR UPDATE cuando el motor lo
// soporta. sqlite no tiene FOR UPDATE; ahí la exclusión la da el
// bloqueo de escritura del propio archivo.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// uniqueName valida la colisión case-insensitive de un nombre: primero
// contra filas activas, después contra inactivas, con mensajes
// distintos para que la UI pueda sugerir restaurar.
func uniqueName(db *gorm.DB, table, column, value string, excludeID uint) error {
	lower := strings.ToLower(strings.TrimSpace(value))

	var count int64
	if err := db.Table(table).
		Where("LOWER("+column+") = ? AND active = ? AND id <> ?", lower, true, excludeID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicadoActivo
	}

	if err := db.Table(table).
		Where("LOWER("+column+") = ? AND active = ? AND id <> ?", lower, false, excludeID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicadoInactivo
	}
	return nil
}

// hasConsumedRequest indica si el usuario tiene autorizada la mutación
// de un registro: su solicitud más reciente para (tabla, registro) está
// aprobada y con el código consumido.
func hasConsumedRequest(db *gorm.DB, requestTable, table string, recordID, userID uint) bool {
	var req models.ChangeRequest
	err := db.Table(requestTable).
		Where("table_name = ? AND record_id = ? AND requester_id = ?", table, recordID, userID).
		Order("created_at DESC, id DESC").
		Limit(1).
		Take(&req).Error
	if err != nil {
		return false
	}
	return req.Status == models.RequestStatusApproved && req.CodeConsumed
}

// canMutate decide si el caller puede editar/inactivar un registro:
// superadmin siempre, operario solo con solicitud verificada.
func canMutate(db *gorm.DB, requestTable, table string, recordID, userID uint, role string) bool {
	if role == models.RoleSuperAdmin {
		return true
	}
	return hasConsumedRequest(db, requestTable, table, recordID, userID)
}
