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

type FoodTypeController struct {
	DB *gorm.DB
}

func NewFoodTypeController(db *gorm.DB) *FoodTypeController {
	return &FoodTypeController{DB: db}
}

func (fc *FoodTypeController) GetAllFoodTypes(c *gin.Context) {
	page, pageSize := utils.ParsePagination(c)

	q := fc.DB.Model(&models.FoodType{})
	if c.Query("include_inactive") != "true" {
		q = q.Where("active = ?", true)
	}
	if filtro := strings.TrimSpace(c.Query("q")); filtro != "" {
		like := "%" + strings.ToLower(filtro) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(brand) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var foodTypes []models.FoodType
	if err := q.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&foodTypes).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondPage(c, http.StatusOK, foodTypes, page, pageSize, total)
}

func (fc *FoodTypeController) CreateFoodType(c *gin.Context) {
	var body struct {
		Nombre             string  `json:"nombre" binding:"required"`
		Marca              string  `json:"marca"`
		PorcentajeProteina float64 `json:"porcentaje_proteina"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	userID, _ := currentUser(c)

	foodType := models.FoodType{
		Name:       strings.TrimSpace(body.Nombre),
		Brand:      body.Marca,
		ProteinPct: body.PorcentajeProteina,
		Active:     true,
	}

	err := fc.DB.Transaction(func(tx *gorm.DB) error {
		if err := uniqueName(tx, "food_types", "name", foodType.Name, 0); err != nil {
			return err
		}
		if err := tx.Create(&foodType).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, userID, "food_types", foodType.ID, models.AuditActionCreate, foodType)
	})

	switch {
	case err == nil:
		utils.RespondJSON(c, http.StatusCreated, "Tipo de alimento creado", foodType)
	case errors.Is(err, ErrDuplicadoActivo), errors.Is(err, ErrDuplicadoInactivo):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

func (fc *FoodTypeController) UpdateFoodType(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("food_type_id"))
	if err != nil || id <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("id inválido"))
		return
	}

	var body struct {
		Nombre             string   `json:"nombre"`
		Marca              string   `json:"marca"`
		PorcentajeProteina *float64 `json:"porcentaje_proteina"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var foodType models.FoodType
	if err := fc.DB.First(&foodType, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("tipo de alimento no encontrado"))
		return
	}

	userID, role := currentUser(c)
	if !canMutate(fc.DB, "edit_requests", "food_types", foodType.ID, userID, role) {
		utils.RespondError(c, http.StatusForbidden, errors.New("requiere una solicitud de edición verificada"))
		return
	}

	if body.Nombre != "" {
		foodType.Name = strings.TrimSpace(body.Nombre)
	}
	if body.Marca != "" {
		foodType.Brand = body.Marca
	}
	if body.PorcentajeProteina != nil {
		foodType.ProteinPct = *body.PorcentajeProteina
	}

	err = fc.DB.Transaction(func(tx *gorm.DB) error {
		if body.Nombre != "" {
			if err := uniqueName(tx, "food_types", "name", foodType.Name, foodType.ID); err != nil {
				return err
			}
		}
		if err := tx.Save(&foodType).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, userID, "food_types", foodType.ID, models.AuditActionUpdate, body)
	})

	switch {
	case err == nil:
		utils.RespondJSON(c, http.StatusOK, "Tipo de alimento actualizado", foodType)
	case errors.Is(err, ErrDuplicadoActivo), errors.Is(err, ErrDuplicadoInactivo):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

func (fc *FoodTypeController) DeleteFoodType(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("food_type_id"))
	if err != nil || id <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("id inválido"))
		return
	}

	var foodType models.FoodType
	if err := fc.DB.First(&foodType, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("tipo de alimento no encontrado"))
		return
	}
	if !foodType.Active {
		utils.RespondError(c, http.StatusBadRequest, errors.New("el tipo de alimento ya está inactivo"))
		return
	}

	userID, role := currentUser(c)
	if !canMutate(fc.DB, "inactivation_requests", "food_types", foodType.ID, userID, role) {
		utils.RespondError(c, http.StatusForbidden, errors.New("requiere una solicitud de inactivación verificada"))
		return
	}

	err = fc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&foodType).Update("active", false).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, userID, "food_types", foodType.ID, models.AuditActionInactivate, nil)
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Tipo de alimento inactivado", gin.H{"id": foodType.ID})
}

func (fc *FoodTypeController) RestoreFoodType(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("food_type_id"))
	if err != nil || id <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("id inválido"))
		return
	}

	var foodType models.FoodType
	if err := fc.DB.First(&foodType, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("tipo de alimento no encontrado"))
		return
	}
	if foodType.Active {
		utils.RespondError(c, http.StatusBadRequest, errors.New("el tipo de alimento ya está activo"))
		return
	}

	userID, _ := currentUser(c)

	err = fc.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.FoodType{}).
			Where("LOWER(name) = ? AND active = ? AND id <> ?", strings.ToLower(foodType.Name), true, foodType.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicadoActivo
		}
		if err := tx.Model(&foodType).Update("active", true).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, userID, "food_types", foodType.ID, models.AuditActionRestore, nil)
	})

	switch {
	case err == nil:
		utils.RespondJSON(c, http.StatusOK, "Tipo de alimento restaurado", foodType)
	case errors.Is(err, ErrDuplicadoActivo):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
