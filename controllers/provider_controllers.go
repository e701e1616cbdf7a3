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

type ProviderController struct {
	DB *gorm.DB
}

func NewProviderController(db *gorm.DB) *ProviderController {
	return &ProviderController{DB: db}
}

// GetAllProviders lista proveedores paginados, más recientes primero.
// Las filas inactivas se excluyen salvo include_inactive=true.
func (pc *ProviderController) GetAllProviders(c *gin.Context) {
	page, pageSize := utils.ParsePagination(c)

	q := pc.DB.Model(&models.Provider{})
	if c.Query("include_inactive") != "true" {
		q = q.Where("active = ?", true)
	}
	if filtro := strings.TrimSpace(c.Query("q")); filtro != "" {
		like := "%" + strings.ToLower(filtro) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(contact) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var providers []models.Provider
	if err := q.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&providers).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondPage(c, http.StatusOK, providers, page, pageSize, total)
}

// CreateProvider inserta el proveedor y su fila de auditoría en la
// misma transacción.
func (pc *ProviderController) CreateProvider(c *gin.Context) {
	var body struct {
		Nombre   string `json:"nombre" binding:"required"`
		Contacto string `json:"contacto"`
		Telefono string `json:"telefono"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	userID, _ := currentUser(c)

	provider := models.Provider{
		Name:    strings.TrimSpace(body.Nombre),
		Contact: body.Contacto,
		Phone:   body.Telefono,
		Active:  true,
	}

	err := pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := uniqueName(tx, "providers", "name", provider.Name, 0); err != nil {
			return err
		}
		if err := tx.Create(&provider).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, userID, "providers", provider.ID, models.AuditActionCreate, provider)
	})

	switch {
	case err == nil:
		utils.RespondJSON(c, http.StatusCreated, "Proveedor creado", provider)
	case errors.Is(err, ErrDuplicadoActivo), errors.Is(err, ErrDuplicadoInactivo):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

// UpdateProvider aplica cambios parciales. El operario necesita una
// solicitud de edición verificada sobre el registro.
func (pc *ProviderController) UpdateProvider(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("provider_id"))
	if err != nil || id <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("id inválido"))
		return
	}

	var body struct {
		Nombre   string `json:"nombre"`
		Contacto string `json:"contacto"`
		Telefono string `json:"telefono"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var provider models.Provider
	if err := pc.DB.First(&provider, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("proveedor no encontrado"))
		return
	}

	userID, role := currentUser(c)
	if !canMutate(pc.DB, "edit_requests", "providers", provider.ID, userID, role) {
		utils.RespondError(c, http.StatusForbidden, errors.New("requiere una solicitud de edición verificada"))
		return
	}

	if body.Nombre != "" {
		provider.Name = strings.TrimSpace(body.Nombre)
	}
	if body.Contacto != "" {
		provider.Contact = body.Contacto
	}
	if body.Telefono != "" {
		provider.Phone = body.Telefono
	}

	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		if body.Nombre != "" {
			if err := uniqueName(tx, "providers", "name", provider.Name, provider.ID); err != nil {
				return err
			}
		}
		if err := tx.Save(&provider).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, userID, "providers", provider.ID, models.AuditActionUpdate, body)
	})

	switch {
	case err == nil:
		utils.RespondJSON(c, http.StatusOK, "Proveedor actualizado", provider)
	case errors.Is(err, ErrDuplicadoActivo), errors.Is(err, ErrDuplicadoInactivo):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

// DeleteProvider inactiva (borrado lógico). El operario necesita una
// solicitud de inactivación verificada.
func (pc *ProviderController) DeleteProvider(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("provider_id"))
	if err != nil || id <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("id inválido"))
		return
	}

	var provider models.Provider
	if err := pc.DB.First(&provider, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("proveedor no encontrado"))
		return
	}
	if !provider.Active {
		utils.RespondError(c, http.StatusBadRequest, errors.New("el proveedor ya está inactivo"))
		return
	}

	userID, role := currentUser(c)
	if !canMutate(pc.DB, "inactivation_requests", "providers", provider.ID, userID, role) {
		utils.RespondError(c, http.StatusForbidden, errors.New("requiere una solicitud de inactivación verificada"))
		return
	}

	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&provider).Update("active", false).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, userID, "providers", provider.ID, models.AuditActionInactivate, nil)
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Proveedor inactivado", gin.H{"id": provider.ID})
}

// RestoreProvider reactiva un proveedor inactivo (solo superadmin por
// ruta). Falla si un activo ya ocupa el nombre.
func (pc *ProviderController) RestoreProvider(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("provider_id"))
	if err != nil || id <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("id inválido"))
		return
	}

	var provider models.Provider
	if err := pc.DB.First(&provider, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("proveedor no encontrado"))
		return
	}
	if provider.Active {
		utils.RespondError(c, http.StatusBadRequest, errors.New("el proveedor ya está activo"))
		return
	}

	userID, _ := currentUser(c)

	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Provider{}).
			Where("LOWER(name) = ? AND active = ? AND id <> ?", strings.ToLower(provider.Name), true, provider.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicadoActivo
		}
		if err := tx.Model(&provider).Update("active", true).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, userID, "providers", provider.ID, models.AuditActionRestore, nil)
	})

	switch {
	case err == nil:
		utils.RespondJSON(c, http.StatusOK, "Proveedor restaurado", provider)
	case errors.Is(err, ErrDuplicadoActivo):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
