package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/acuaterra/piscicola-backend/models"
	"github.com/acuaterra/piscicola-backend/services"
	"github.com/acuaterra/piscicola-backend/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PoolController struct {
	DB *gorm.DB
}

func NewPoolController(db *gorm.DB) *PoolController {
	return &PoolController{DB: db}
}

func (pc *PoolController) GetAllPools(c *gin.Context) {
	page, pageSize := utils.ParsePagination(c)

	q := pc.DB.Model(&models.Pool{})
	if c.Query("include_inactive") != "true" {
		q = q.Where("active = ?", true)
	}
	if filtro := strings.TrimSpace(c.Query("q")); filtro != "" {
		like := "%" + strings.ToLower(filtro) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(location) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var pools []models.Pool
	if err := q.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&pools).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondPage(c, http.StatusOK, pools, page, pageSize, total)
}

func (pc *PoolController) CreatePool(c *gin.Context) {
	var body struct {
		Nombre      string  `json:"nombre" binding:"required"`
		Ubicacion   string  `json:"ubicacion"`
		CapacidadKg float64 `json:"capacidad_kg"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	userID, _ := currentUser(c)

	pool := models.Pool{
		Name:       strings.TrimSpace(body.Nombre),
		Location:   body.Ubicacion,
		CapacityKg: body.CapacidadKg,
		Active:     true,
	}

	err := pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := uniqueName(tx, "pools", "name", pool.Name, 0); err != nil {
			return err
		}
		if err := tx.Create(&pool).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, userID, "pools", pool.ID, models.AuditActionCreate, pool)
	})

	switch {
	case err == nil:
		utils.RespondJSON(c, http.StatusCreated, "Estanque creado", pool)
	case errors.Is(err, ErrDuplicadoActivo), errors.Is(err, ErrDuplicadoInactivo):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

func (pc *PoolController) UpdatePool(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("pool_id"))
	if err != nil || id <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("id inválido"))
		return
	}

	var body struct {
		Nombre      string   `json:"nombre"`
		Ubicacion   string   `json:"ubicacion"`
		CapacidadKg *float64 `json:"capacidad_kg"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var pool models.Pool
	if err := pc.DB.First(&pool, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("estanque no encontrado"))
		return
	}

	userID, role := currentUser(c)
	if !canMutate(pc.DB, "edit_requests", "pools", pool.ID, userID, role) {
		utils.RespondError(c, http.StatusForbidden, errors.New("requiere una solicitud de edición verificada"))
		return
	}

	if body.Nombre != "" {
		pool.Name = strings.TrimSpace(body.Nombre)
	}
	if body.Ubicacion != "" {
		pool.Location = body.Ubicacion
	}
	if body.CapacidadKg != nil {
		pool.CapacityKg = *body.CapacidadKg
	}

	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		if body.Nombre != "" {
			if err := uniqueName(tx, "pools", "name", pool.Name, pool.ID); err != nil {
				return err
			}
		}
		if err := tx.Save(&pool).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, userID, "pools", pool.ID, models.AuditActionUpdate, body)
	})

	switch {
	case err == nil:
		utils.RespondJSON(c, http.StatusOK, "Estanque actualizado", pool)
	case errors.Is(err, ErrDuplicadoActivo), errors.Is(err, ErrDuplicadoInactivo):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

func (pc *PoolController) DeletePool(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("pool_id"))
	if err != nil || id <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("id inválido"))
		return
	}

	var pool models.Pool
	if err := pc.DB.First(&pool, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("estanque no encontrado"))
		return
	}
	if !pool.Active {
		utils.RespondError(c, http.StatusBadRequest, errors.New("el estanque ya está inactivo"))
		return
	}

	userID, role := currentUser(c)
	if !canMutate(pc.DB, "inactivation_requests", "pools", pool.ID, userID, role) {
		utils.RespondError(c, http.StatusForbidden, errors.New("requiere una solicitud de inactivación verificada"))
		return
	}

	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&pool).Update("active", false).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, userID, "pools", pool.ID, models.AuditActionInactivate, nil)
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Estanque inactivado", gin.H{"id": pool.ID})
}

func (pc *PoolController) RestorePool(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("pool_id"))
	if err != nil || id <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("id inválido"))
		return
	}

	var pool models.Pool
	if err := pc.DB.First(&pool, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("estanque no encontrado"))
		return
	}
	if pool.Active {
		utils.RespondError(c, http.StatusBadRequest, errors.New("el estanque ya está activo"))
		return
	}

	userID, _ := currentUser(c)

	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Pool{}).
			Where("LOWER(name) = ? AND active = ? AND id <> ?", strings.ToLower(pool.Name), true, pool.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicadoActivo
		}
		if err := tx.Model(&pool).Update("active", true).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, userID, "pools", pool.ID, models.AuditActionRestore, nil)
	})

	switch {
	case err == nil:
		utils.RespondJSON(c, http.StatusOK, "Estanque restaurado", pool)
	case errors.Is(err, ErrDuplicadoActivo):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
