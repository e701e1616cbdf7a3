package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/acuaterra/piscicola-backend/models"
	"github.com/acuaterra/piscicola-backend/services"
	"github.com/acuaterra/piscicola-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const resetTokenTTL = 30 * time.Minute

type PasswordResetController struct {
	DB     *gorm.DB
	Mailer *services.Mailer
}

func NewPasswordResetController(db *gorm.DB, mailer *services.Mailer) *PasswordResetController {
	return &PasswordResetController{DB: db, Mailer: mailer}
}

// RequestReset siempre responde éxito, exista o no el correo, para no
// permitir enumeración de cuentas. El fallo de envío se registra y no
// afecta la respuesta.
func (pc *PasswordResetController) RequestReset(c *gin.Context) {
	var body struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := pc.DB.Where("email = ? AND active = ?", body.Email, true).First(&user).Error; err == nil {
		token := uuid.NewString()
		if hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost); err == nil {
			reset := models.PasswordReset{
				UserID:    user.ID,
				TokenHash: string(hash),
				ExpiresAt: time.Now().Add(resetTokenTTL),
			}
			if err := pc.DB.Create(&reset).Error; err != nil {
				utils.ErrorLogger.Printf("Error guardando reset para %s: %v", user.Email, err)
			} else if pc.Mailer != nil {
				pc.Mailer.SendPasswordReset(user.Email, token)
			}
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Si el correo existe, se enviaron instrucciones", nil)
}

// ConfirmReset valida el token vigente más reciente y cambia la
// contraseña. El token es de un solo uso.
func (pc *PasswordResetController) ConfirmReset(c *gin.Context) {
	var body struct {
		Email    string `json:"email" binding:"required,email"`
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := pc.DB.Where("email = ? AND active = ?", body.Email, true).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("token inválido o expirado"))
		return
	}

	var reset models.PasswordReset
	err := pc.DB.Where("user_id = ? AND used = ? AND expires_at > ?", user.ID, false, time.Now()).
		Order("id DESC").Limit(1).Take(&reset).Error
	if err != nil || bcrypt.CompareHashAndPassword([]byte(reset.TokenHash), []byte(body.Token)) != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("token inválido o expirado"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&reset).Update("used", true).Error; err != nil {
			return err
		}
		if err := tx.Model(&user).Update("password", string(hashed)).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, user.ID, "users", user.ID, models.AuditActionUpdate, gin.H{
			"campo": "password",
		})
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Contraseña actualizada", nil)
}
