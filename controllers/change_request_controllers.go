package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/acuaterra/piscicola-backend/models"
	"github.com/acuaterra/piscicola-backend/services"
	"github.com/acuaterra/piscicola-backend/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ChangeRequestController implementa el workflow de aprobación con
// código de un solo uso. Las solicitudes de edición y de inactivación
// comparten la misma máquina de estados sobre tablas separadas.
type ChangeRequestController struct {
	DB     *gorm.DB
	Table  string
	Mailer *services.Mailer
}

func NewEditRequestController(db *gorm.DB, mailer *services.Mailer) *ChangeRequestController {
	return &ChangeRequestController{DB: db, Table: "edit_requests", Mailer: mailer}
}

func NewInactivationRequestController(db *gorm.DB, mailer *services.Mailer) *ChangeRequestController {
	return &ChangeRequestController{DB: db, Table: "inactivation_requests", Mailer: mailer}
}

// CreateRequest registra una solicitud PENDING. No se impide tener
// varias solicitudes vivas sobre el mismo registro; la consulta de
// pendientes siempre reduce a la más reciente.
func (cc *ChangeRequestController) CreateRequest(c *gin.Context) {
	var body struct {
		Tabla      string `json:"tabla" binding:"required"`
		RegistroID uint   `json:"registro_id" binding:"required"`
		Motivo     string `json:"motivo" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	userID, _ := currentUser(c)

	req := models.ChangeRequest{
		TableName:   strings.TrimSpace(body.Tabla),
		RecordID:    body.RegistroID,
		RequesterID: userID,
		Reason:      body.Motivo,
		Status:      models.RequestStatusPending,
	}
	if err := cc.DB.Table(cc.Table).Create(&req).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Solicitud %s #%d creada por usuario %d sobre %s/%d",
		cc.Table, req.ID, userID, req.TableName, req.RecordID)

	utils.RespondJSON(c, http.StatusCreated, "Solicitud registrada", req)
}

// ListRequests lista solicitudes paginadas. El operario solo ve las
// propias; el superadmin las ve todas.
func (cc *ChangeRequestController) ListRequests(c *gin.Context) {
	userID, role := currentUser(c)
	page, pageSize := utils.ParsePagination(c)

	q := cc.DB.Table(cc.Table)
	if role != models.RoleSuperAdmin {
		q = q.Where("requester_id = ?", userID)
	}
	if estado := c.Query("estado"); estado != "" {
		q = q.Where("status = ?", strings.ToUpper(estado))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var requests []models.ChangeRequest
	if err := q.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&requests).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondPage(c, http.StatusOK, requests, page, pageSize, total)
}

// GetPending reduce a la solicitud más reciente para (tabla, registro)
// y reporta si sigue viva: PENDING, o APPROVED con código vigente sin
// consumir. El operario solo consulta sus propias solicitudes.
func (cc *ChangeRequestController) GetPending(c *gin.Context) {
	tabla := strings.TrimSpace(c.Query("tabla"))
	registroStr := c.Query("registro_id")
	if tabla == "" || registroStr == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("tabla y registro_id son requeridos"))
		return
	}
	registroID, err := strconv.Atoi(registroStr)
	if err != nil || registroID <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("registro_id inválido"))
		return
	}

	userID, role := currentUser(c)

	q := cc.DB.Table(cc.Table).Where("table_name = ? AND record_id = ?", tabla, registroID)
	if role != models.RoleSuperAdmin {
		q = q.Where("requester_id = ?", userID)
	}

	var req models.ChangeRequest
	err = q.Order("created_at DESC, id DESC").Limit(1).Take(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondJSON(c, http.StatusOK, "", gin.H{"pending": false, "request": nil})
		return
	}
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	now := time.Now()
	utils.RespondJSON(c, http.StatusOK, "", gin.H{
		"pending": req.IsPending(now),
		"request": gin.H{
			"id":           req.ID,
			"status":       req.Status,
			"hasValidCode": req.HasValidCode(now),
			"expiresAt":    req.CodeExpiresAt,
			"requesterId":  req.RequesterID,
		},
	})
}

// ApproveRequest pasa PENDING -> APPROVED y acuña el código de un solo
// uso. El hash y la expiración se fijan juntos en la misma transición.
// El código en claro se devuelve al aprobador y se envía por correo al
// solicitante; el envío nunca bloquea ni falla la petición.
func (cc *ChangeRequestController) ApproveRequest(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("id inválido"))
		return
	}

	approverID, _ := currentUser(c)

	code, err := utils.GenerateVerificationCode()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	codeHash, err := utils.HashVerificationCode(code)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	expiresAt := time.Now().Add(utils.VerificationCodeTTL)

	var req models.ChangeRequest
	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).Table(cc.Table).
			Where("id = ?", id).
			Take(&req).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSolicitudNoEncontrada
			}
			return err
		}

		if req.Status != models.RequestStatusPending {
			return ErrSolicitudNoPendiente
		}

		if err := tx.Table(cc.Table).Where("id = ?", req.ID).Updates(map[string]interface{}{
			"status":          models.RequestStatusApproved,
			"code_hash":       codeHash,
			"code_expires_at": expiresAt,
			"approver_id":     approverID,
		}).Error; err != nil {
			return err
		}

		return services.RecordAudit(tx, approverID, cc.Table, req.ID, models.AuditActionApprove, gin.H{
			"tabla":       req.TableName,
			"registro_id": req.RecordID,
		})
	})

	switch {
	case err == nil:
	case errors.Is(err, ErrSolicitudNoEncontrada):
		utils.RespondError(c, http.StatusNotFound, err)
		return
	case errors.Is(err, ErrSolicitudNoPendiente):
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// Entrega del código al solicitante, fuera de la transacción.
	if cc.Mailer != nil {
		var requester models.User
		if err := cc.DB.First(&requester, req.RequesterID).Error; err == nil {
			cc.Mailer.SendVerificationCode(requester.Email, code)
		} else {
			utils.ErrorLogger.Printf("No se pudo resolver el solicitante %d: %v", req.RequesterID, err)
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Solicitud aprobada", gin.H{
		"codigo":    code,
		"expira_en": expiresAt,
	})
}

// RejectRequest pasa PENDING -> REJECTED. Estado terminal.
func (cc *ChangeRequestController) RejectRequest(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("id inválido"))
		return
	}

	approverID, _ := currentUser(c)

	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		var req models.ChangeRequest
		if err := lockForUpdate(tx).Table(cc.Table).
			Where("id = ?", id).
			Take(&req).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSolicitudNoEncontrada
			}
			return err
		}

		if req.Status != models.RequestStatusPending {
			return ErrSolicitudNoPendiente
		}

		if err := tx.Table(cc.Table).Where("id = ?", req.ID).Updates(map[string]interface{}{
			"status":      models.RequestStatusRejected,
			"approver_id": approverID,
		}).Error; err != nil {
			return err
		}

		return services.RecordAudit(tx, approverID, cc.Table, req.ID, models.AuditActionReject, gin.H{
			"tabla":       req.TableName,
			"registro_id": req.RecordID,
		})
	})

	switch {
	case err == nil:
		utils.RespondJSON(c, http.StatusOK, "Solicitud rechazada", nil)
	case errors.Is(err, ErrSolicitudNoEncontrada):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, ErrSolicitudNoPendiente):
		utils.RespondError(c, http.StatusBadRequest, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

// VerifyCode consume el código de un solo uso. Toda la verificación
// corre en una transacción con lock exclusivo sobre la fila: es la
// única defensa contra dos verificaciones concurrentes que vean ambas
// code_consumed=false y consuman el mismo código dos veces.
func (cc *ChangeRequestController) VerifyCode(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("id inválido"))
		return
	}

	var body struct {
		Codigo string `json:"codigo" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("codigo es requerido"))
		return
	}

	userID, role := currentUser(c)

	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		var req models.ChangeRequest
		if err := lockForUpdate(tx).Table(cc.Table).
			Where("id = ?", id).
			Take(&req).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSolicitudNoEncontrada
			}
			return err
		}

		if role != models.RoleSuperAdmin && req.RequesterID != userID {
			return ErrSinPermiso
		}
		if req.Status != models.RequestStatusApproved || req.CodeHash == nil {
			return ErrSolicitudNoAprobada
		}
		if req.CodeConsumed {
			return ErrCodigoYaUsado
		}
		if req.CodeExpiresAt == nil || time.Now().After(*req.CodeExpiresAt) {
			return ErrCodigoExpirado
		}
		if !utils.CheckVerificationCode(*req.CodeHash, body.Codigo) {
			return ErrCodigoIncorrecto
		}

		if err := tx.Table(cc.Table).Where("id = ?", req.ID).
			Update("code_consumed", true).Error; err != nil {
			return err
		}

		return services.RecordAudit(tx, userID, cc.Table, req.ID, models.AuditActionCodeUsed, gin.H{
			"tabla":       req.TableName,
			"registro_id": req.RecordID,
		})
	})

	switch {
	case err == nil:
		utils.InfoLogger.Printf("Código consumido en %s #%d por usuario %d", cc.Table, id, userID)
		utils.RespondJSON(c, http.StatusOK, "Código verificado correctamente", nil)
	case errors.Is(err, ErrSolicitudNoEncontrada):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, ErrSinPermiso):
		utils.RespondError(c, http.StatusForbidden, err)
	case errors.Is(err, ErrSolicitudNoAprobada),
		errors.Is(err, ErrCodigoYaUsado),
		errors.Is(err, ErrCodigoExpirado),
		errors.Is(err, ErrCodigoIncorrecto):
		utils.RespondError(c, http.StatusBadRequest, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
