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
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

// Login valida credenciales y emite la sesión: cookie auth_token
// HTTP-only más el token en el cuerpo para clientes que usan Bearer.
// El mensaje de error es el mismo exista o no el correo.
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := uc.DB.Where("email = ? AND active = ?", input.Email, true).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("credenciales inválidas"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("credenciales inválidas"))
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.SetAuthCookie(c, token)
	utils.InfoLogger.Printf("Login de %s (rol=%s)", user.Email, user.Role)

	utils.RespondJSON(c, http.StatusOK, "Login exitoso", gin.H{
		"token": token,
		"rol":   strings.ToLower(user.Role),
	})
}

// Logout borra la cookie de sesión. El token sigue siendo válido hasta
// su expiración; la revocación es solo por expiración o borrado de la
// cookie.
func (uc *UserController) Logout(c *gin.Context) {
	utils.ClearAuthCookie(c)
	utils.RespondJSON(c, http.StatusOK, "Sesión cerrada", nil)
}

// GetProfile devuelve el usuario de la sesión actual.
func (uc *UserController) GetProfile(c *gin.Context) {
	userID, _ := currentUser(c)

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("usuario no encontrado"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "", user)
}

// GetAllUsers lista usuarios paginados (solo superadmin por ruta).
func (uc *UserController) GetAllUsers(c *gin.Context) {
	page, pageSize := utils.ParsePagination(c)

	q := uc.DB.Model(&models.User{})
	if c.Query("include_inactive") != "true" {
		q = q.Where("active = ?", true)
	}
	if filtro := strings.TrimSpace(c.Query("q")); filtro != "" {
		like := "%" + strings.ToLower(filtro) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var users []models.User
	if err := q.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondPage(c, http.StatusOK, users, page, pageSize, total)
}

// CreateUser da de alta un usuario (solo superadmin por ruta).
func (uc *UserController) CreateUser(c *gin.Context) {
	var body struct {
		Nombre   string `json:"nombre" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Rol      string `json:"rol" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if !models.IsValidRole(body.Rol) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("rol inválido"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	adminID, _ := currentUser(c)

	user := models.User{
		Name:     strings.TrimSpace(body.Nombre),
		Email:    strings.ToLower(strings.TrimSpace(body.Email)),
		Password: string(hashed),
		Role:     strings.ToLower(body.Rol),
		Active:   true,
	}

	err = uc.DB.Transaction(func(tx *gorm.DB) error {
		if err := uniqueName(tx, "users", "email", user.Email, 0); err != nil {
			return err
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, adminID, "users", user.ID, models.AuditActionCreate, gin.H{
			"email": user.Email,
			"rol":   user.Role,
		})
	})

	switch {
	case err == nil:
		utils.InfoLogger.Printf("Usuario creado: %s (rol=%s)", user.Email, user.Role)
		utils.RespondJSON(c, http.StatusCreated, "Usuario creado", user)
	case errors.Is(err, ErrDuplicadoActivo), errors.Is(err, ErrDuplicadoInactivo):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

// UpdateUser modifica nombre o rol (solo superadmin por ruta).
func (uc *UserController) UpdateUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("user_id"))
	if err != nil || id <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("id inválido"))
		return
	}

	var body struct {
		Nombre string `json:"nombre"`
		Rol    string `json:"rol"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if body.Rol != "" && !models.IsValidRole(body.Rol) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("rol inválido"))
		return
	}

	var user models.User
	if err := uc.DB.First(&user, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("usuario no encontrado"))
		return
	}

	if body.Nombre != "" {
		user.Name = strings.TrimSpace(body.Nombre)
	}
	if body.Rol != "" {
		user.Role = strings.ToLower(body.Rol)
	}

	adminID, _ := currentUser(c)

	err = uc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, adminID, "users", user.ID, models.AuditActionUpdate, body)
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Usuario actualizado", user)
}

// DeleteUser inactiva un usuario (borrado lógico, solo superadmin).
func (uc *UserController) DeleteUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("user_id"))
	if err != nil || id <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("id inválido"))
		return
	}

	adminID, _ := currentUser(c)
	if uint(id) == adminID {
		utils.RespondError(c, http.StatusBadRequest, errors.New("no puede inactivarse a sí mismo"))
		return
	}

	var user models.User
	if err := uc.DB.First(&user, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("usuario no encontrado"))
		return
	}
	if !user.Active {
		utils.RespondError(c, http.StatusBadRequest, errors.New("el usuario ya está inactivo"))
		return
	}

	err = uc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("active", false).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, adminID, "users", user.ID, models.AuditActionInactivate, nil)
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Usuario inactivado", gin.H{"id": user.ID})
}

// RestoreUser reactiva un usuario inactivo (solo superadmin).
func (uc *UserController) RestoreUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("user_id"))
	if err != nil || id <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("id inválido"))
		return
	}

	var user models.User
	if err := uc.DB.First(&user, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("usuario no encontrado"))
		return
	}
	if user.Active {
		utils.RespondError(c, http.StatusBadRequest, errors.New("el usuario ya está activo"))
		return
	}

	adminID, _ := currentUser(c)

	err = uc.DB.Transaction(func(tx *gorm.DB) error {
		if err := uniqueName(tx, "users", "email", user.Email, user.ID); err != nil {
			return err
		}
		if err := tx.Model(&user).Update("active", true).Error; err != nil {
			return err
		}
		return services.RecordAudit(tx, adminID, "users", user.ID, models.AuditActionRestore, nil)
	})

	switch {
	case err == nil:
		utils.RespondJSON(c, http.StatusOK, "Usuario restaurado", user)
	case errors.Is(err, ErrDuplicadoActivo), errors.Is(err, ErrDuplicadoInactivo):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
