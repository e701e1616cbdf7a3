package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/acuaterra/piscicola-backend/models"
	"github.com/acuaterra/piscicola-backend/router"
	"github.com/acuaterra/piscicola-backend/utils"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// TestEndToEndApprovalFlow recorre el flujo principal:
// 0. Seed de superadmin y operario, login de ambos -> tokens
// 1. El operario crea un proveedor
// 2. El operario intenta editarlo directo => 403
// 3. El operario registra una solicitud de edición
// 4. El superadmin la aprueba y recibe el código en claro
// 5. El operario verifica el código
// 6. La edición del operario ahora pasa
// 7. El mismo código ya no sirve una segunda vez
func TestEndToEndApprovalFlow(t *testing.T) {
	db := setupIntegrationDB()
	r := router.SetupRouter(db, nil)

	adminToken := loginAs(t, r, "admin@acuaterra.co", "ClaveAdmin123")
	operToken := loginAs(t, r, "operario@acuaterra.co", "ClaveOper123")

	providerID := createProviderTest(t, r, operToken)

	// Edición directa sin solicitud => 403
	w := doJSON(r, http.MethodPatch, fmt.Sprintf("/api/providers/%d", providerID), operToken,
		map[string]interface{}{"telefono": "3115550000"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("edición sin solicitud: esperaba 403, llegó %d, body=%s", w.Code, w.Body.String())
	}

	requestID := createEditRequestTest(t, r, operToken, providerID)
	code := approveRequestTest(t, r, adminToken, requestID)
	verifyCodeTest(t, r, operToken, requestID, code)

	// Con el código consumido, la edición pasa.
	w = doJSON(r, http.MethodPatch, fmt.Sprintf("/api/providers/%d", providerID), operToken,
		map[string]interface{}{"telefono": "3115550000"})
	if w.Code != http.StatusOK {
		t.Fatalf("edición con solicitud verificada: esperaba 200, llegó %d, body=%s", w.Code, w.Body.String())
	}

	// El mismo código, segunda vez => 400 "El código ya fue usado".
	w = doJSON(r, http.MethodPost, fmt.Sprintf("/api/edit-requests/%d/verify", requestID), operToken,
		map[string]interface{}{"codigo": code})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("segunda verificación: esperaba 400, llegó %d, body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Msg string `json:"msg"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Msg != "El código ya fue usado" {
		t.Fatalf("segunda verificación: mensaje inesperado %q", resp.Msg)
	}
}

// setupIntegrationDB -> sqlite en memoria + migraciones + usuarios seed.
func setupIntegrationDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:integration?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
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
		log.Fatalf("failed to migrate: %v", err)
	}

	adminPass, _ := bcrypt.GenerateFromPassword([]byte("ClaveAdmin123"), bcrypt.DefaultCost)
	db.Create(&models.User{
		Name:     "Admin Integración",
		Email:    "admin@acuaterra.co",
		Password: string(adminPass),
		Role:     models.RoleSuperAdmin,
		Active:   true,
	})

	operPass, _ := bcrypt.GenerateFromPassword([]byte("ClaveOper123"), bcrypt.DefaultCost)
	db.Create(&models.User{
		Name:     "Operario Integración",
		Email:    "operario@acuaterra.co",
		Password: string(operPass),
		Role:     models.RoleOperario,
		Active:   true,
	})

	return db
}

func doJSON(r *gin.Engine, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewBuffer(b)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func loginAs(t *testing.T, r *gin.Engine, email, password string) string {
	w := doJSON(r, http.MethodPost, "/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login de %s: code=%d, body=%s", email, w.Code, w.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Success || resp.Data.Token == "" {
		t.Fatalf("login de %s: token vacío, body=%s", email, w.Body.String())
	}
	return resp.Data.Token
}

func createProviderTest(t *testing.T, r *gin.Engine, token string) uint {
	w := doJSON(r, http.MethodPost, "/api/providers", token, map[string]interface{}{
		"nombre":   "Alevinos Magdalena",
		"contacto": "Julián",
		"telefono": "3001112233",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("createProviderTest: esperaba 201, llegó %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.ID == 0 {
		t.Fatalf("createProviderTest: id vacío, body=%s", w.Body.String())
	}
	return resp.Data.ID
}

func createEditRequestTest(t *testing.T, r *gin.Engine, token string, providerID uint) uint {
	w := doJSON(r, http.MethodPost, "/api/edit-requests", token, map[string]interface{}{
		"tabla":       "providers",
		"registro_id": providerID,
		"motivo":      "teléfono desactualizado",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("createEditRequestTest: esperaba 201, llegó %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			ID     uint   `json:"id"`
			Estado string `json:"estado"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.Estado != models.RequestStatusPending {
		t.Fatalf("createEditRequestTest: esperaba PENDING, llegó %s", resp.Data.Estado)
	}
	return resp.Data.ID
}

func approveRequestTest(t *testing.T, r *gin.Engine, adminToken string, requestID uint) string {
	w := doJSON(r, http.MethodPost, fmt.Sprintf("/api/edit-requests/%d/approve", requestID), adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("approveRequestTest: esperaba 200, llegó %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Codigo string `json:"codigo"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Data.Codigo) != 6 {
		t.Fatalf("approveRequestTest: código inesperado %q", resp.Data.Codigo)
	}
	return resp.Data.Codigo
}

func verifyCodeTest(t *testing.T, r *gin.Engine, token string, requestID uint, code string) {
	w := doJSON(r, http.MethodPost, fmt.Sprintf("/api/edit-requests/%d/verify", requestID), token,
		map[string]interface{}{"codigo": code})
	if w.Code != http.StatusOK {
		t.Fatalf("verifyCodeTest: esperaba 200, llegó %d, body=%s", w.Code, w.Body.String())
	}
}
