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

type LotController struct {
	DB *gorm.DB
}

func NewLotController(db *gorm.DB) *LotController {
	return &LotController{DB: db}
}

func (lc *LotController) GetAllLots(c *gin.Context) {
	page, pageSize := utils.ParsePagination(c)

	q := lc.DB.Model(&models.Lot{})
	if c.Query("include_inactive") != "true" {
		q = q.Where("active = ?", true)
	}
	if filtro := strings.TrimSpace(c.Query("q")); filtro != "" {
		like := "%" + strings.ToLower(filtro) + "%"
		q = q.Where("LOWER(code) LIKE ? OR LOWER(species) LIKE ?", like, like)
	}
	if estanque := c.Query("estanque_id"); estanque != "" {
		q = q.Where("pool_id = ?", estanque)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var lots []models.Lot
	if err := q.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&lots).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondPage(c, http.StatusOK, lots, page, pageSize, total)
}

// CreateLot valida que el estanque y el proveedor existan y estén
// activos antes de sembrar el lote.
func (lc *LotController) CreateLot(c *gin.Context) {
	var body struct {
		Codigo          string    `json:"codigo" binding:"required"`
		EstanqueID      uint      `json:"estanque_id" binding:"required"`
		ProveedorID     uint      `json:"proveedor_id" binding:"required"`
		Especie         string    `json:"especie" binding:"required"`
		CantidadInicial int       `json:"cantidad_inicial" binding:"required,gt=0"`
		FechaSiembra    time.Time `json:"fecha_siembra" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	userID, _ := currentUser(c)

	lot := models.Lot{
		Code:         strings.TrimSpace(body.Codigo),
		PoolID:       body.EstanqueID,
		ProviderID:   body.ProveedorID,
		Species:      body.Especie,
		InitialCount: body.CantidadInicial,
		SeedDate:     body.FechaSiembra,
		Active:       true,
	}

	err := lc.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Pool{}).Where("id = ? AND active = ?", lot.PoolID, true).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errors.New("el estanque no existe o está inactivo")
		}
		if err := tx.Model(&models.Provider{}).Where("id = ? AND active = ?", lot.ProviderID, true).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errors.New("el proveedor no existe o está inactivo")
		}

		if err := uniqueName(tx, "lots", "code", lot.Code, 0); err != nil {
			return err
		}
		if err := tx.Create(&lot).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, userID, "lots", lot.ID, models.AuditActionCreate, lot)
	})

	switch {
	case err == nil:
		utils.RespondJSON(c, http.StatusCreated, "Lote creado", lot)
	case errors.Is(err, ErrDuplicadoActivo), errors.Is(err, ErrDuplicadoInactivo):
		utils.RespondError(c, http.StatusConflict, err)
	case err.Error() == "el estanque no existe o está inactivo",
		err.Error() == "el proveedor no existe o está inactivo":
		utils.RespondError(c, http.StatusBadRequest, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

func (lc *LotController) UpdateLot(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("lot_id"))
	if err != nil || id <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("id inválido"))
		return
	}

	var body struct {
		Codigo          string `json:"codigo"`
		Especie         string `json:"especie"`
		CantidadInicial *int   `json:"cantidad_inicial"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var lot models.Lot
	if err := lc.DB.First(&lot, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("lote no encontrado"))
		return
	}

	userID, role := currentUser(c)
	if !canMutate(lc.DB, "edit_requests", "lots", lot.ID, userID, role) {
		utils.RespondError(c, http.StatusForbidden, errors.New("requiere una solicitud de edición verificada"))
		return
	}

	if body.Codigo != "" {
		lot.Code = strings.TrimSpace(body.Codigo)
	}
	if body.Especie != "" {
		lot.Species = body.Especie
	}
	if body.CantidadInicial != nil {
		lot.InitialCount = *body.CantidadInicial
	}

	err = lc.DB.Transaction(func(tx *gorm.DB) error {
		if body.Codigo != "" {
			if err := uniqueName(tx, "lots", "code", lot.Code, lot.ID); err != nil {
				return err
			}
		}
		if err := tx.Save(&lot).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, userID, "lots", lot.ID, models.AuditActionUpdate, body)
	})

	switch {
	case err == nil:
		utils.RespondJSON(c, http.StatusOK, "Lote actualizado", lot)
	case errors.Is(err, ErrDuplicadoActivo), errors.Is(err, ErrDuplicadoInactivo):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

func (lc *LotController) DeleteLot(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("lot_id"))
	if err != nil || id <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("id inválido"))
		return
	}

	var lot models.Lot
	if err := lc.DB.First(&lot, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("lote no encontrado"))
		return
	}
	if !lot.Active {
		utils.RespondError(c, http.StatusBadRequest, errors.New("el lote ya está inactivo"))
		return
	}

	userID, role := currentUser(c)
	if !canMutate(lc.DB, "inactivation_requests", "lots", lot.ID, userID, role) {
		utils.RespondError(c, http.StatusForbidden, errors.New("requiere una solicitud de inactivación verificada"))
		return
	}

	err = lc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&lot).Update("active", false).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, userID, "lots", lot.ID, models.AuditActionInactivate, nil)
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Lote inactivado", gin.H{"id": lot.ID})
}

func (lc *LotController) RestoreLot(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("lot_id"))
	if err != nil || id <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("id inválido"))
		return
	}

	var lot models.Lot
	if err := lc.DB.First(&lot, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("lote no encontrado"))
		return
	}
	if lot.Active {
		utils.RespondError(c, http.StatusBadRequest, errors.New("el lote ya está activo"))
		return
	}

	userID, _ := currentUser(c)

	err = lc.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Lot{}).
			Where("LOWER(code) = ? AND active = ? AND id <> ?", strings.ToLower(lot.Code), true, lot.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicadoActivo
		}
		if err := tx.Model(&lot).Update("active", true).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, userID, "lots", lot.ID, models.AuditActionRestore, nil)
	})

	switch {
	case err == nil:
		utils.RespondJSON(c, http.StatusOK, "Lote restaurado", lot)
	case errors.Is(err, ErrDuplicadoActivo):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
