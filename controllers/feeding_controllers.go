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

type FeedingController struct {
	DB *gorm.DB
}

func NewFeedingController(db *gorm.DB) *FeedingController {
	return &FeedingController{DB: db}
}

func (fc *FeedingController) GetAllFeedings(c *gin.Context) {
	page, pageSize := utils.ParsePagination(c)

	q := fc.DB.Model(&models.Feeding{})
	if lote := c.Query("lote_id"); lote != "" {
		q = q.Where("lot_id = ?", lote)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var feedings []models.Feeding
	if err := q.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&feedings).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondPage(c, http.StatusOK, feedings, page, pageSize, total)
}

// CreateFeeding registra una alimentación. El lote y el tipo de
// alimento deben existir activos.
func (fc *FeedingController) CreateFeeding(c *gin.Context) {
	var body struct {
		LoteID            uint      `json:"lote_id" binding:"required"`
		TipoAlimentoID    uint      `json:"tipo_alimento_id" binding:"required"`
		CantidadKg        float64   `json:"cantidad_kg" binding:"required,gt=0"`
		FechaAlimentacion time.Time `json:"fecha_alimentacion" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	userID, _ := currentUser(c)

	feeding := models.Feeding{
		LotID:      body.LoteID,
		FoodTypeID: body.TipoAlimentoID,
		QuantityKg: body.CantidadKg,
		FedAt:      body.FechaAlimentacion,
		UserID:     userID,
	}

	err := fc.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Lot{}).Where("id = ? AND active = ?", feeding.LotID, true).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errors.New("el lote no existe o está inactivo")
		}
		if err := tx.Model(&models.FoodType{}).Where("id = ? AND active = ?", feeding.FoodTypeID, true).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errors.New("el tipo de alimento no existe o está inactivo")
		}
		if err := tx.Create(&feeding).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, userID, "feedings", feeding.ID, models.AuditActionCreate, feeding)
	})

	switch {
	case err == nil:
		utils.RespondJSON(c, http.StatusCreated, "Alimentación registrada", feeding)
	case err.Error() == "el lote no existe o está inactivo",
		err.Error() == "el tipo de alimento no existe o está inactivo":
		utils.RespondError(c, http.StatusBadRequest, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
