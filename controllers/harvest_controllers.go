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

type HarvestController struct {
	DB *gorm.DB
}

func NewHarvestController(db *gorm.DB) *HarvestController {
	return &HarvestController{DB: db}
}

func (hc *HarvestController) GetAllHarvests(c *gin.Context) {
	page, pageSize := utils.ParsePagination(c)

	q := hc.DB.Model(&models.Harvest{})
	if lote := c.Query("lote_id"); lote != "" {
		q = q.Where("lot_id = ?", lote)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var harvests []models.Harvest
	if err := q.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&harvests).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondPage(c, http.StatusOK, harvests, page, pageSize, total)
}

// CreateHarvest registra una cosecha con su empaque.
func (hc *HarvestController) CreateHarvest(c *gin.Context) {
	var body struct {
		LoteID       uint      `json:"lote_id" binding:"required"`
		EmpaqueID    uint      `json:"empaque_id" binding:"required"`
		Cantidad     int       `json:"cantidad" binding:"required,gt=0"`
		PesoKg       float64   `json:"peso_kg" binding:"required,gt=0"`
		FechaCosecha time.Time `json:"fecha_cosecha" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	userID, _ := currentUser(c)

	harvest := models.Harvest{
		LotID:       body.LoteID,
		PackagingID: body.EmpaqueID,
		Count:       body.Cantidad,
		WeightKg:    body.PesoKg,
		HarvestedAt: body.FechaCosecha,
		UserID:      userID,
	}

	err := hc.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Lot{}).Where("id = ? AND active = ?", harvest.LotID, true).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errors.New("el lote no existe o está inactivo")
		}
		if err := tx.Model(&models.Packaging{}).Where("id = ? AND active = ?", harvest.PackagingID, true).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errors.New("el empaque no existe o está inactivo")
		}
		if err := tx.Create(&harvest).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, userID, "harvests", harvest.ID, models.AuditActionCreate, harvest)
	})

	switch {
	case err == nil:
		utils.RespondJSON(c, http.StatusCreated, "Cosecha registrada", harvest)
	case err.Error() == "el lote no existe o está inactivo",
		err.Error() == "el empaque no existe o está inactivo":
		utils.RespondError(c, http.StatusBadRequest, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
