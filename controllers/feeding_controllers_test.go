package controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/acuaterra/piscicola-backend/controllers"
	"github.com/acuaterra/piscicola-backend/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func setupFeedingDB(name string) (*gorm.DB, models.Lot, models.FoodType) {
	db := openTestDB(name,
		&models.User{},
		&models.Provider{},
		&models.Pool{},
		&models.FoodType{},
		&models.Lot{},
		&models.Feeding{},
		&models.AuditLog{},
	)

	pool := models.Pool{Name: "Estanque 1", Active: true}
	db.Create(&pool)
	provider := models.Provider{Name: "Alevinos del Valle", Active: true}
	db.Create(&provider)
	lot := models.Lot{
		Code: "LT-001", PoolID: pool.ID, ProviderID: provider.ID,
		Species: "Tilapia roja", InitialCount: 1000,
		SeedDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), Active: true,
	}
	db.Create(&lot)
	foodType := models.FoodType{Name: "Mojarra 45", Brand: "Italcol", ProteinPct: 45, Active: true}
	db.Create(&foodType)
	return db, lot, foodType
}

func setupFeedingRouter(db *gorm.DB, userID uint, role string) *gin.Engine {
	r := gin.New()
	ctrl := controllers.NewFeedingController(db)

	grp := r.Group("/", asUser(userID, role))
	grp.GET("/feedings", ctrl.GetAllFeedings)
	grp.POST("/feedings", ctrl.CreateFeeding)
	return r
}

func TestCreateFeeding(t *testing.T) {
	db, lot, foodType := setupFeedingDB("feedings_create")
	router := setupFeedingRouter(db, 2, models.RoleOperario)

	payload := gin.H{
		"lote_id":            lot.ID,
		"tipo_alimento_id":   foodType.ID,
		"cantidad_kg":        12.5,
		"fecha_alimentacion": time.Date(2026, 4, 2, 7, 30, 0, 0, time.UTC),
	}
	w := performJSON(router, "POST", "/feedings", payload)
	assert.Equal(t, http.StatusCreated, w.Code)

	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, 12.5, data["cantidad_kg"])
	// La fila queda atribuida al usuario de la sesión.
	assert.Equal(t, float64(2), data["usuario_id"])

	var audits int64
	db.Model(&models.AuditLog{}).Where("table_name = ?", "feedings").Count(&audits)
	assert.Equal(t, int64(1), audits)

	// Cantidades no positivas se rechazan.
	payload["cantidad_kg"] = 0
	w = performJSON(router, "POST", "/feedings", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Lote inactivo: sin registro.
	db.Model(&models.Lot{}).Where("id = ?", lot.ID).Update("active", false)
	payload["cantidad_kg"] = 5.0
	w = performJSON(router, "POST", "/feedings", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "el lote no existe o está inactivo", decodeResponse(t, w)["msg"])
}

func TestListFeedingsByLot(t *testing.T) {
	db, lot, foodType := setupFeedingDB("feedings_list")

	otherLot := models.Lot{
		Code: "LT-002", PoolID: lot.PoolID, ProviderID: lot.ProviderID,
		Species: "Cachama", InitialCount: 500,
		SeedDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), Active: true,
	}
	db.Create(&otherLot)

	fed := time.Date(2026, 4, 2, 7, 30, 0, 0, time.UTC)
	db.Create(&models.Feeding{LotID: lot.ID, FoodTypeID: foodType.ID, QuantityKg: 10, FedAt: fed, UserID: 2})
	db.Create(&models.Feeding{LotID: lot.ID, FoodTypeID: foodType.ID, QuantityKg: 8, FedAt: fed, UserID: 2})
	db.Create(&models.Feeding{LotID: otherLot.ID, FoodTypeID: foodType.ID, QuantityKg: 6, FedAt: fed, UserID: 2})

	router := setupFeedingRouter(db, 2, models.RoleOperario)

	w := performJSON(router, "GET", "/feedings", nil)
	resp := decodeResponse(t, w)
	assert.Len(t, resp["data"], 3)
	assert.Equal(t, float64(3), resp["total"])

	w = performJSON(router, "GET", "/feedings?lote_id=1", nil)
	assert.Len(t, decodeResponse(t, w)["data"], 2)
}
