package controllers

import (
	"net/http"
	"strings"

	"github.com/acuaterra/piscicola-backend/models"
	"github.com/acuaterra/piscicola-backend/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuditLogController struct {
	DB *gorm.DB
}

func NewAuditLogController(db *gorm.DB) *AuditLogController {
	return &AuditLogController{DB: db}
}

// GetAllAuditLogs lista el rastro de auditoría paginado, con filtros
// opcionales por tabla, acción y usuario. Solo lectura.
func (ac *AuditLogController) GetAllAuditLogs(c *gin.Context) {
	page, pageSize := utils.ParsePagination(c)

	q := ac.DB.Model(&models.AuditLog{})
	if tabla := strings.TrimSpace(c.Query("tabla")); tabla != "" {
		q = q.Where("table_name = ?", tabla)
	}
	if accion := strings.TrimSpace(c.Query("accion")); accion != "" {
		q = q.Where("action = ?", strings.ToUpper(accion))
	}
	if usuario := c.Query("usuario_id"); usuario != "" {
		q = q.Where("user_id = ?", usuario)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var logs []models.AuditLog
	if err := q.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&logs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondPage(c, http.StatusOK, logs, page, pageSize, total)
}
