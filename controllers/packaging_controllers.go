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

type PackagingController struct {
	DB *gorm.DB
}

func NewPackagingController(db *gorm.DB) *PackagingController {
	return &PackagingController{DB: db}
}

func (pc *PackagingController) GetAllPackagings(c *gin.Context) {
	page, pageSize := utils.ParsePagination(c)

	q := pc.DB.Model(&models.Packaging{})
	if c.Query("include_inactive") != "true" {
		q = q.Where("active = ?", true)
	}
	if filtro := strings.TrimSpace(c.Query("q")); filtro != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filtro)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var packagings []models.Packaging
	if err := q.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&packagings).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondPage(c, http.StatusOK, packagings, page, pageSize, total)
}

func (pc *PackagingController) CreatePackaging(c *gin.Context) {
	var body struct {
		Nombre      string  `json:"nombre" binding:"required"`
		CapacidadKg float64 `json:"capacidad_kg"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	userID, _ := currentUser(c)

	packaging := models.Packaging{
		Name:       strings.TrimSpace(body.Nombre),
		CapacityKg: body.CapacidadKg,
		Active:     true,
	}

	err := pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := uniqueName(tx, "packagings", "name", packaging.Name, 0); err != nil {
			return err
		}
		if err := tx.Create(&packaging).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, userID, "packagings", packaging.ID, models.AuditActionCreate, packaging)
	})

	switch {
	case err == nil:
		utils.RespondJSON(c, http.StatusCreated, "Empaque creado", packaging)
	case errors.Is(err, ErrDuplicadoActivo), errors.Is(err, ErrDuplicadoInactivo):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

func (pc *PackagingController) UpdatePackaging(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("packaging_id"))
	if err != nil || id <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("id inválido"))
		return
	}

	var body struct {
		Nombre      string   `json:"nombre"`
		CapacidadKg *float64 `json:"capacidad_kg"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var packaging models.Packaging
	if err := pc.DB.First(&packaging, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("empaque no encontrado"))
		return
	}

	userID, role := currentUser(c)
	if !canMutate(pc.DB, "edit_requests", "packagings", packaging.ID, userID, role) {
		utils.RespondError(c, http.StatusForbidden, errors.New("requiere una solicitud de edición verificada"))
		return
	}

	if body.Nombre != "" {
		packaging.Name = strings.TrimSpace(body.Nombre)
	}
	if body.CapacidadKg != nil {
		packaging.CapacityKg = *body.CapacidadKg
	}

	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		if body.Nombre != "" {
			if err := uniqueName(tx, "packagings", "name", packaging.Name, packaging.ID); err != nil {
				return err
			}
		}
		if err := tx.Save(&packaging).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, userID, "packagings", packaging.ID, models.AuditActionUpdate, body)
	})

	switch {
	case err == nil:
		utils.RespondJSON(c, http.StatusOK, "Empaque actualizado", packaging)
	case errors.Is(err, ErrDuplicadoActivo), errors.Is(err, ErrDuplicadoInactivo):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

func (pc *PackagingController) DeletePackaging(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("packaging_id"))
	if err != nil || id <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("id inválido"))
		return
	}

	var packaging models.Packaging
	if err := pc.DB.First(&packaging, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("empaque no encontrado"))
		return
	}
	if !packaging.Active {
		utils.RespondError(c, http.StatusBadRequest, errors.New("el empaque ya está inactivo"))
		return
	}

	userID, role := currentUser(c)
	if !canMutate(pc.DB, "inactivation_requests", "packagings", packaging.ID, userID, role) {
		utils.RespondError(c, http.StatusForbidden, errors.New("requiere una solicitud de inactivación verificada"))
		return
	}

	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&packaging).Update("active", false).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, userID, "packagings", packaging.ID, models.AuditActionInactivate, nil)
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Empaque inactivado", gin.H{"id": packaging.ID})
}

func (pc *PackagingController) RestorePackaging(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("packaging_id"))
	if err != nil || id <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("id inválido"))
		return
	}

	var packaging models.Packaging
	if err := pc.DB.First(&packaging, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("empaque no encontrado"))
		return
	}
	if packaging.Active {
		utils.RespondError(c, http.StatusBadRequest, errors.New("el empaque ya está activo"))
		return
	}

	userID, _ := currentUser(c)

	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Packaging{}).
			Where("LOWER(name) = ? AND active = ? AND id <> ?", strings.ToLower(packaging.Name), true, packaging.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicadoActivo
		}
		if err := tx.Model(&packaging).Update("active", true).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, userID, "packagings", packaging.ID, models.AuditActionRestore, nil)
	})

	switch {
	case err == nil:
		utils.RespondJSON(c, http.StatusOK, "Empaque restaurado", packaging)
	case errors.Is(err, ErrDuplicadoActivo):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
