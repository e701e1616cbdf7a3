package main

import (
	"log"
	"os"

	"github.com/acuaterra/piscicola-backend/config"
	"github.com/acuaterra/piscicola-backend/database"
	"github.com/acuaterra/piscicola-backend/middlewares"
	"github.com/acuaterra/piscicola-backend/models"
	"github.com/acuaterra/piscicola-backend/router"
	"github.com/acuaterra/piscicola-backend/services"
	"github.com/acuaterra/piscicola-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Aviso: no se encontró archivo .env: %v", err)
	}
	utils.InitLogger()
}

func main() {
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("No se pudo conectar a la base de datos: %v", err)
	}
	utils.InitDB(db)

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	if err := database.SeedSuperAdmin(db); err != nil {
		utils.ErrorLogger.Printf("Error en seed de superadmin: %v", err)
	}

	mailer := services.NewMailerFromEnv()

	r := router.SetupRouter(db, mailer)

	// Limitador global: 50 peticiones por segundo por IP.
	rateLimiter := middlewares.NewRateLimiter(50, 1)
	r.Use(rateLimiter.RateLimit())

	r.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Escuchando en el puerto %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Provider{},
		&models.Pool{},
		&models.FoodType{},
		&models.Packaging{},
		&models.Lot{},
		&models.LotDetail{},
		&models.Feeding{},
		&models.Loss{},
		&models.Harvest{},
		&models.EditRequest{},
		&models.InactivationRequest{},
		&models.AuditLog{},
		&models.PasswordReset{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Fallo AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completado.")
}
