package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/acuaterra/piscicola-backend/models"
	"github.com/acuaterra/piscicola-backend/services"
	"github.com/acuaterra/piscicola-backend/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type LotDetailController struct {
	DB *gorm.DB
}

func NewLotDetailController(db *gorm.DB) *LotDetailController {
	return &LotDetailController{DB: db}
}

func (dc *LotDetailController) GetAllLotDetails(c *gin.Context) {
	page, pageSize := utils.ParsePagination(c)

	q := dc.DB.Model(&models.LotDetail{})
	if c.Query("include_inactive") != "true" {
		q = q.Where("active = ?", true)
	}
	if lote := c.Query("lote_id"); lote != "" {
		q = q.Where("lot_id = ?", lote)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var details []models.LotDetail
	if err := q.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&details).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondPage(c, http.StatusOK, details, page, pageSize, total)
}

func (dc *LotDetailController) CreateLotDetail(c *gin.Context) {
	var body struct {
		LoteID          uint      `json:"lote_id" binding:"required"`
		Observacion     string    `json:"observacion"`
		PesoPromedioG   float64   `json:"peso_promedio_g"`
		CantidadMuestra int       `json:"cantidad_muestra"`
		FechaRegistro   time.Time `json:"fecha_registro" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	userID, _ := currentUser(c)

	detail := models.LotDetail{
		LotID:       body.LoteID,
		Note:        body.Observacion,
		AvgWeightG:  body.PesoPromedioG,
		SampleCount: body.CantidadMuestra,
		RecordedAt:  body.FechaRegistro,
		Active:      true,
	}

	err := dc.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Lot{}).Where("id = ? AND active = ?", detail.LotID, true).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errors.New("el lote no existe o está inactivo")
		}
		if err := tx.Create(&detail).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, userID, "lot_details", detail.ID, models.AuditActionCreate, detail)
	})

	switch {
	case err == nil:
		utils.RespondJSON(c, http.StatusCreated, "Detalle de lote creado", detail)
	case err.Error() == "el lote no existe o está inactivo":
		utils.RespondError(c, http.StatusBadRequest, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

func (dc *LotDetailController) UpdateLotDetail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("detail_id"))
	if err != nil || id <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("id inválido"))
		return
	}

	var body struct {
		Observacion     string   `json:"observacion"`
		PesoPromedioG   *float64 `json:"peso_promedio_g"`
		CantidadMuestra *int     `json:"cantidad_muestra"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var detail models.LotDetail
	if err := dc.DB.First(&detail, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("detalle no encontrado"))
		return
	}

	userID, role := currentUser(c)
	if !canMutate(dc.DB, "edit_requests", "lot_details", detail.ID, userID, role) {
		utils.RespondError(c, http.StatusForbidden, errors.New("requiere una solicitud de edición verificada"))
		return
	}

	if body.Observacion != "" {
		detail.Note = body.Observacion
	}
	if body.PesoPromedioG != nil {
		detail.AvgWeightG = *body.PesoPromedioG
	}
	if body.CantidadMuestra != nil {
		detail.SampleCount = *body.CantidadMuestra
	}

	err = dc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&detail).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, userID, "lot_details", detail.ID, models.AuditActionUpdate, body)
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Detalle actualizado", detail)
}

func (dc *LotDetailController) DeleteLotDetail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("detail_id"))
	if err != nil || id <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("id inválido"))
		return
	}

	var detail models.LotDetail
	if err := dc.DB.First(&detail, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("detalle no encontrado"))
		return
	}
	if !detail.Active {
		utils.RespondError(c, http.StatusBadRequest, errors.New("el detalle ya está inactivo"))
		return
	}

	userID, role := currentUser(c)
	if !canMutate(dc.DB, "inactivation_requests", "lot_details", detail.ID, userID, role) {
		utils.RespondError(c, http.StatusForbidden, errors.New("requiere una solicitud de inactivación verificada"))
		return
	}

	err = dc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&detail).Update("active", false).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, userID, "lot_details", detail.ID, models.AuditActionInactivate, nil)
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Detalle inactivado", gin.H{"id": detail.ID})
}

func (dc *LotDetailController) RestoreLotDetail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("detail_id"))
	if err != nil || id <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("id inválido"))
		return
	}

	var detail models.LotDetail
	if err := dc.DB.First(&detail, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("detalle no encontrado"))
		return
	}
	if detail.Active {
		utils.RespondError(c, http.StatusBadRequest, errors.New("el detalle ya está activo"))
		return
	}

	userID, _ := currentUser(c)

	err = dc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&detail).Update("active", true).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, userID, "lot_details", detail.ID, models.AuditActionRestore, nil)
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Detalle restaurado", detail)
}
