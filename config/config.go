package config

import (
	"fmt"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// InitDB abre la conexión según DB_DRIVER (mysql por defecto, sqlite
// para desarrollo local).
func InitDB() (*gorm.DB, error) {
	switch envOr("DB_DRIVER", "mysql") {
	case "sqlite":
		return gorm.Open(sqlite.Open(envOr("DB_PATH", "piscicola.db")), &gorm.Config{})
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			envOr("DB_USER", "root"),
			os.Getenv("DB_PASSWORD"),
			envOr("DB_HOST", "127.0.0.1"),
			envOr("DB_PORT", "3306"),
			envOr("DB_NAME", "piscicola"),
		)
		return gorm.Open(mysql.Open(dsn), &gorm.Config{})
	default:
		return nil, fmt.Errorf("DB_DRIVER no soportado: %s", os.Getenv("DB_DRIVER"))
	}
}
