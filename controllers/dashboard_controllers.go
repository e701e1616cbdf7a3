package controllers

import (
	"net/http"
	"time"

	"github.com/acuaterra/piscicola-backend/models"
	"github.com/acuaterra/piscicola-backend/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DashboardController struct {
	DB *gorm.DB
}

func NewDashboardController(db *gorm.DB) *DashboardController {
	return &DashboardController{DB: db}
}

// GetStats resume el estado de la operación para el panel del
// superadmin. Solo lecturas agregadas, sin estado propio.
func (dc *DashboardController) GetStats(c *gin.Context) {
	since := time.Now().AddDate(0, 0, -30)

	var stats struct {
		ActiveLots          int64   `json:"lotes_activos"`
		ActivePools         int64   `json:"estanques_activos"`
		ActiveProviders     int64   `json:"proveedores_activos"`
		PendingEditReqs     int64   `json:"solicitudes_edicion_pendientes"`
		PendingInactReqs    int64   `json:"solicitudes_inactivacion_pendientes"`
		FeedingKgLast30     float64 `json:"alimentacion_kg_30d"`
		LossCountLast30     int64   `json:"perdidas_30d"`
		HarvestWeightKg     float64 `json:"cosecha_kg_total"`
		HarvestWeightLast30 float64 `json:"cosecha_kg_30d"`
	}

	dc.DB.Model(&models.Lot{}).Where("active = ?", true).Count(&stats.ActiveLots)
	dc.DB.Model(&models.Pool{}).Where("active = ?", true).Count(&stats.ActivePools)
	dc.DB.Model(&models.Provider{}).Where("active = ?", true).Count(&stats.ActiveProviders)

	dc.DB.Table("edit_requests").Where("status = ?", models.RequestStatusPending).Count(&stats.PendingEditReqs)
	dc.DB.Table("inactivation_requests").Where("status = ?", models.RequestStatusPending).Count(&stats.PendingInactReqs)

	dc.DB.Model(&models.Feeding{}).Where("fed_at >= ?", since).
		Select("COALESCE(SUM(quantity_kg), 0)").Row().Scan(&stats.FeedingKgLast30)

	dc.DB.Model(&models.Loss{}).Where("lost_at >= ?", since).
		Select("COALESCE(SUM(count), 0)").Row().Scan(&stats.LossCountLast30)

	dc.DB.Model(&models.Harvest{}).
		Select("COALESCE(SUM(weight_kg), 0)").Row().Scan(&stats.HarvestWeightKg)
	dc.DB.Model(&models.Harvest{}).Where("harvested_at >= ?", since).
		Select("COALESCE(SUM(weight_kg), 0)").Row().Scan(&stats.HarvestWeightLast30)

	utils.RespondJSON(c, http.StatusOK, "", stats)
}
