package controllers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/acuaterra/piscicola-backend/controllers"
	"github.com/acuaterra/piscicola-backend/models"
	"github.com/acuaterra/piscicola-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func setupRequestDB(name string) *gorm.DB {
	return openTestDB(name,
		&models.User{},
		&models.EditRequest{},
		&models.InactivationRequest{},
		&models.AuditLog{},
	)
}

func setupRequestRouter(db *gorm.DB, userID uint, role string) *gin.Engine {
	r := gin.New()
	ctrl := controllers.NewEditRequestController(db, nil)

	grp := r.Group("/", asUser(userID, role))
	grp.POST("/edit-requests", ctrl.CreateRequest)
	grp.GET("/edit-requests", ctrl.ListRequests)
	grp.GET("/edit-requests/pending", ctrl.GetPending)
	grp.POST("/edit-requests/:id/approve", ctrl.ApproveRequest)
	grp.POST("/edit-requests/:id/reject", ctrl.RejectRequest)
	grp.POST("/edit-requests/:id/verify", ctrl.VerifyCode)
	return r
}

func seedRequester(db *gorm.DB, id uint) {
	db.Create(&models.User{ID: id, Name: "Operario Prueba", Email: fmt.Sprintf("op%d@acuaterra.co", id), Password: "x", Role: models.RoleOperario, Active: true})
}

func seedApprovedRequest(t *testing.T, db *gorm.DB, code string, expiresAt time.Time, requesterID uint) models.EditRequest {
	t.Helper()
	hash, err := utils.HashVerificationCode(code)
	assert.NoError(t, err)

	req := models.EditRequest{ChangeRequest: models.ChangeRequest{
		TableName:     "providers",
		RecordID:      7,
		RequesterID:   requesterID,
		Reason:        "corrección de teléfono",
		Status:        models.RequestStatusApproved,
		CodeHash:      &hash,
		CodeExpiresAt: &expiresAt,
	}}
	assert.NoError(t, db.Create(&req).Error)
	return req
}

func verifyWith(router *gin.Engine, id uint, code string) *httptest.ResponseRecorder {
	return performJSON(router, "POST", fmt.Sprintf("/edit-requests/%d/verify", id), gin.H{"codigo": code})
}

func TestCreateAndListRequests(t *testing.T) {
	db := setupRequestDB("req_create")
	seedRequester(db, 2)
	seedRequester(db, 3)
	router := setupRequestRouter(db, 2, models.RoleOperario)

	w := performJSON(router, "POST", "/edit-requests", gin.H{
		"tabla":       "providers",
		"registro_id": 7,
		"motivo":      "teléfono desactualizado",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	resp := decodeResponse(t, w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "PENDING", data["estado"])
	assert.Equal(t, float64(2), data["solicitante_id"])

	// Sin motivo la solicitud no se registra.
	w = performJSON(router, "POST", "/edit-requests", gin.H{
		"tabla":       "providers",
		"registro_id": 7,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Otra solicitud de un segundo operario.
	otherRouter := setupRequestRouter(db, 3, models.RoleOperario)
	w = performJSON(otherRouter, "POST", "/edit-requests", gin.H{
		"tabla":       "pools",
		"registro_id": 1,
		"motivo":      "capacidad errada",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	// El operario solo lista lo suyo.
	w = performJSON(router, "GET", "/edit-requests", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	resp = decodeResponse(t, w)
	assert.Len(t, resp["data"], 1)

	// El superadmin lo ve todo.
	adminRouter := setupRequestRouter(db, 1, models.RoleSuperAdmin)
	w = performJSON(adminRouter, "GET", "/edit-requests", nil)
	resp = decodeResponse(t, w)
	assert.Len(t, resp["data"], 2)
}

func TestApproveMintsSingleUseCode(t *testing.T) {
	db := setupRequestDB("req_approve")
	seedRequester(db, 2)

	req := models.EditRequest{ChangeRequest: models.ChangeRequest{
		TableName: "providers", RecordID: 7, RequesterID: 2,
		Reason: "dato errado", Status: models.RequestStatusPending,
	}}
	assert.NoError(t, db.Create(&req).Error)

	adminRouter := setupRequestRouter(db, 1, models.RoleSuperAdmin)
	w := performJSON(adminRouter, "POST", fmt.Sprintf("/edit-requests/%d/approve", req.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	data := resp["data"].(map[string]interface{})
	code := data["codigo"].(string)
	assert.Len(t, code, 6)

	var stored models.EditRequest
	assert.NoError(t, db.First(&stored, req.ID).Error)
	assert.Equal(t, models.RequestStatusApproved, stored.Status)
	assert.NotNil(t, stored.CodeHash)
	assert.NotNil(t, stored.CodeExpiresAt)
	assert.False(t, stored.CodeConsumed)
	// En la base solo vive el hash, nunca el código en claro.
	assert.NotEqual(t, code, *stored.CodeHash)
	assert.True(t, utils.CheckVerificationCode(*stored.CodeHash, code))

	// Aprobar dos veces no reabre la solicitud.
	w = performJSON(adminRouter, "POST", fmt.Sprintf("/edit-requests/%d/approve", req.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Tampoco se puede rechazar lo ya aprobado.
	w = performJSON(adminRouter, "POST", fmt.Sprintf("/edit-requests/%d/reject", req.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performJSON(adminRouter, "POST", "/edit-requests/9999/approve", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVerifyCodeLifecycle(t *testing.T) {
	db := setupRequestDB("req_verify")
	seedRequester(db, 2)
	req := seedApprovedRequest(t, db, "482913", time.Now().Add(10*time.Minute), 2)

	router := setupRequestRouter(db, 2, models.RoleOperario)

	// Código equivocado.
	w := verifyWith(router, req.ID, "000000")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "El código es incorrecto", decodeResponse(t, w)["msg"])

	// Código correcto: consume y audita.
	w = verifyWith(router, req.ID, "482913")
	assert.Equal(t, http.StatusOK, w.Code)

	var stored models.EditRequest
	assert.NoError(t, db.First(&stored, req.ID).Error)
	assert.True(t, stored.CodeConsumed)

	var audit models.AuditLog
	err := db.Where("table_name = ? AND record_id = ? AND action = ?",
		"edit_requests", req.ID, models.AuditActionCodeUsed).First(&audit).Error
	assert.NoError(t, err)
	assert.Equal(t, uint(2), audit.UserID)

	// Reintento con el mismo código, aunque siga vigente.
	w = verifyWith(router, req.ID, "482913")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "El código ya fue usado", decodeResponse(t, w)["msg"])
}

func TestVerifyCodeRejectsUnapproved(t *testing.T) {
	db := setupRequestDB("req_verify_states")
	seedRequester(db, 2)
	router := setupRequestRouter(db, 2, models.RoleOperario)

	pending := models.EditRequest{ChangeRequest: models.ChangeRequest{
		TableName: "providers", RecordID: 1, RequesterID: 2,
		Reason: "x", Status: models.RequestStatusPending,
	}}
	assert.NoError(t, db.Create(&pending).Error)

	w := verifyWith(router, pending.ID, "123456")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "La solicitud no está aprobada", decodeResponse(t, w)["msg"])

	rejected := models.EditRequest{ChangeRequest: models.ChangeRequest{
		TableName: "providers", RecordID: 2, RequesterID: 2,
		Reason: "x", Status: models.RequestStatusRejected,
	}}
	assert.NoError(t, db.Create(&rejected).Error)

	w = verifyWith(router, rejected.ID, "123456")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyCodeExpired(t *testing.T) {
	db := setupRequestDB("req_verify_expired")
	seedRequester(db, 2)
	req := seedApprovedRequest(t, db, "482913", time.Now().Add(-1*time.Minute), 2)

	router := setupRequestRouter(db, 2, models.RoleOperario)
	w := verifyWith(router, req.ID, "482913")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "El código ha expirado", decodeResponse(t, w)["msg"])

	// Expirado no cuenta como consumido.
	var stored models.EditRequest
	assert.NoError(t, db.First(&stored, req.ID).Error)
	assert.False(t, stored.CodeConsumed)
}

func TestVerifyCodeOwnership(t *testing.T) {
	db := setupRequestDB("req_verify_owner")
	seedRequester(db, 2)
	seedRequester(db, 3)
	req := seedApprovedRequest(t, db, "482913", time.Now().Add(10*time.Minute), 2)

	// Otro operario no puede consumir un código ajeno.
	stranger := setupRequestRouter(db, 3, models.RoleOperario)
	w := verifyWith(stranger, req.ID, "482913")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// El superadmin sí puede verificar por el solicitante.
	admin := setupRequestRouter(db, 1, models.RoleSuperAdmin)
	w = verifyWith(admin, req.ID, "482913")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestVerifyCodeBadInput(t *testing.T) {
	db := setupRequestDB("req_verify_input")
	seedRequester(db, 2)
	router := setupRequestRouter(db, 2, models.RoleOperario)

	w := verifyWith(router, 9999, "123456")
	assert.Equal(t, http.StatusNotFound, w.Code)

	req := seedApprovedRequest(t, db, "482913", time.Now().Add(10*time.Minute), 2)
	raw := performJSON(router, "POST", fmt.Sprintf("/edit-requests/%d/verify", req.ID), gin.H{})
	assert.Equal(t, http.StatusBadRequest, raw.Code)

	raw = performJSON(router, "POST", "/edit-requests/abc/verify", gin.H{"codigo": "482913"})
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

// Dos verificaciones simultáneas del mismo código: exactamente una
// debe ganar.
func TestVerifyCodeConcurrentSingleUse(t *testing.T) {
	db := setupRequestDB("req_verify_race")
	seedRequester(db, 2)
	req := seedApprovedRequest(t, db, "482913", time.Now().Add(10*time.Minute), 2)

	router := setupRequestRouter(db, 2, models.RoleOperario)

	const attempts = 4
	codes := make([]int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = verifyWith(router, req.ID, "482913").Code
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, code := range codes {
		if code == http.StatusOK {
			ok++
		} else {
			assert.Equal(t, http.StatusBadRequest, code)
		}
	}
	assert.Equal(t, 1, ok)

	var audits int64
	db.Model(&models.AuditLog{}).
		Where("table_name = ? AND record_id = ? AND action = ?", "edit_requests", req.ID, models.AuditActionCodeUsed).
		Count(&audits)
	assert.Equal(t, int64(1), audits)
}

func TestGetPendingReducesToLatest(t *testing.T) {
	db := setupRequestDB("req_pending")
	seedRequester(db, 2)
	seedRequester(db, 3)
	router := setupRequestRouter(db, 2, models.RoleOperario)

	// Sin solicitudes.
	w := performJSON(router, "GET", "/edit-requests/pending?tabla=providers&registro_id=7", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, false, data["pending"])
	assert.Nil(t, data["request"])

	// Parámetros obligatorios.
	w = performJSON(router, "GET", "/edit-requests/pending?tabla=providers", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = performJSON(router, "GET", "/edit-requests/pending?tabla=providers&registro_id=cero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	pending := models.EditRequest{ChangeRequest: models.ChangeRequest{
		TableName: "providers", RecordID: 7, RequesterID: 2,
		Reason: "x", Status: models.RequestStatusPending,
	}}
	assert.NoError(t, db.Create(&pending).Error)

	w = performJSON(router, "GET", "/edit-requests/pending?tabla=providers&registro_id=7", nil)
	resp = decodeResponse(t, w)
	data = resp["data"].(map[string]interface{})
	assert.Equal(t, true, data["pending"])
	reqData := data["request"].(map[string]interface{})
	assert.Equal(t, "PENDING", reqData["status"])
	assert.Equal(t, false, reqData["hasValidCode"])

	// Otro operario no ve la solicitud ajena.
	stranger := setupRequestRouter(db, 3, models.RoleOperario)
	w = performJSON(stranger, "GET", "/edit-requests/pending?tabla=providers&registro_id=7", nil)
	resp = decodeResponse(t, w)
	assert.Equal(t, false, resp["data"].(map[string]interface{})["pending"])

	// El superadmin sí.
	admin := setupRequestRouter(db, 1, models.RoleSuperAdmin)
	w = performJSON(admin, "GET", "/edit-requests/pending?tabla=providers&registro_id=7", nil)
	resp = decodeResponse(t, w)
	assert.Equal(t, true, resp["data"].(map[string]interface{})["pending"])

	// Aprobada con código vigente sigue viva; consumida deja de estarlo.
	w = performJSON(admin, "POST", fmt.Sprintf("/edit-requests/%d/approve", pending.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	code := decodeResponse(t, w)["data"].(map[string]interface{})["codigo"].(string)

	w = performJSON(router, "GET", "/edit-requests/pending?tabla=providers&registro_id=7", nil)
	data = decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, true, data["pending"])
	assert.Equal(t, true, data["request"].(map[string]interface{})["hasValidCode"])

	rec := verifyWith(router, pending.ID, code)
	assert.Equal(t, http.StatusOK, rec.Code)

	w = performJSON(router, "GET", "/edit-requests/pending?tabla=providers&registro_id=7", nil)
	data = decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, false, data["pending"])
}

func TestInactivationRequestsUseOwnTable(t *testing.T) {
	db := setupRequestDB("req_tables")
	seedRequester(db, 2)

	r := gin.New()
	ctrl := controllers.NewInactivationRequestController(db, nil)
	grp := r.Group("/", asUser(2, models.RoleOperario))
	grp.POST("/inactivation-requests", ctrl.CreateRequest)

	w := performJSON(r, "POST", "/inactivation-requests", gin.H{
		"tabla":       "pools",
		"registro_id": 3,
		"motivo":      "estanque fuera de servicio",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var inactCount, editCount int64
	db.Model(&models.InactivationRequest{}).Count(&inactCount)
	db.Model(&models.EditRequest{}).Count(&editCount)
	assert.Equal(t, int64(1), inactCount)
	assert.Equal(t, int64(0), editCount)
}
