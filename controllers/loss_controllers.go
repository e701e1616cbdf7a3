package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/acuaterra/piscicola-backend/models"
	"github.com/acuaterra/piscicola-backend/services"
	"github.com/acuaterra/piscicola-backend/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type LossController struct {
	DB *gorm.DB
}

func NewLossController(db *gorm.DB) *LossController {
	return &LossController{DB: db}
}

func (lc *LossController) GetAllLosses(c *gin.Context) {
	page, pageSize := utils.ParsePagination(c)

	q := lc.DB.Model(&models.Loss{})
	if lote := c.Query("lote_id"); lote != "" {
		q = q.Where("lot_id = ?", lote)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var losses []models.Loss
	if err := q.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&losses).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondPage(c, http.StatusOK, losses, page, pageSize, total)
}

// CreateLoss registra una mortalidad sobre un lote activo.
func (lc *LossController) CreateLoss(c *gin.Context) {
	var body struct {
		LoteID       uint      `json:"lote_id" binding:"required"`
		Cantidad     int       `json:"cantidad" binding:"required,gt=0"`
		Causa        string    `json:"causa"`
		FechaPerdida time.Time `json:"fecha_perdida" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	userID, _ := currentUser(c)

	loss := models.Loss{
		LotID:  body.LoteID,
		Count:  body.Cantidad,
		Cause:  body.Causa,
		LostAt: body.FechaPerdida,
		UserID: userID,
	}

	err := lc.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Lot{}).Where("id = ? AND active = ?", loss.LotID, true).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errors.New("el lote no existe o está inactivo")
		}
		if err := tx.Create(&loss).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, userID, "losses", loss.ID, models.AuditActionCreate, loss)
	})

	switch {
	case err == nil:
		utils.RespondJSON(c, http.StatusCreated, "Pérdida registrada", loss)
	case err.Error() == "el lote no existe o está inactivo":
		utils.RespondError(c, http.StatusBadRequest, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
