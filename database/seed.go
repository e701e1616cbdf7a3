package database

import (
	"os"

	"github.com/acuaterra/piscicola-backend/models"
	"github.com/acuaterra/piscicola-backend/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedSuperAdmin crea el usuario superadmin inicial cuando la tabla de
// usuarios está vacía. Las credenciales salen del entorno.
func SeedSuperAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		utils.InfoLogger.Println("ADMIN_EMAIL/ADMIN_PASSWORD no configurados, se omite el seed")
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Name:     "Administrador",
		Email:    email,
		Password: string(hashed),
		Role:     models.RoleSuperAdmin,
		Active:   true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	utils.InfoLogger.Printf("Superadmin inicial creado: %s", email)
	return nil
}
