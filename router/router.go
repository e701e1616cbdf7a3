package router

import (
	"github.com/acuaterra/piscicola-backend/controllers"
	"github.com/acuaterra/piscicola-backend/middlewares"
	"github.com/acuaterra/piscicola-backend/models"
	"github.com/acuaterra/piscicola-backend/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter arma el árbol de rutas. La autorización se declara aquí,
// endpoint por endpoint, con listas cerradas de roles.
func SetupRouter(db *gorm.DB, mailer *services.Mailer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.RequestID())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	userCtrl := controllers.NewUserController(db)
	resetCtrl := controllers.NewPasswordResetController(db, mailer)
	providerCtrl := controllers.NewProviderController(db)
	poolCtrl := controllers.NewPoolController(db)
	foodTypeCtrl := controllers.NewFoodTypeController(db)
	packagingCtrl := controllers.NewPackagingController(db)
	lotCtrl := controllers.NewLotController(db)
	lotDetailCtrl := controllers.NewLotDetailController(db)
	feedingCtrl := controllers.NewFeedingController(db)
	lossCtrl := controllers.NewLossController(db)
	harvestCtrl := controllers.NewHarvestController(db)
	editReqCtrl := controllers.NewEditRequestController(db, mailer)
	inactReqCtrl := controllers.NewInactivationRequestController(db, mailer)
	dashboardCtrl := controllers.NewDashboardController(db)
	auditCtrl := controllers.NewAuditLogController(db)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// ----------------------------------------------------------------
	//                      RUTAS PÚBLICAS
	// ----------------------------------------------------------------
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/login", userCtrl.Login)
		public.POST("/logout", userCtrl.Logout)
		public.POST("/password-reset/request", resetCtrl.RequestReset)
		public.POST("/password-reset/confirm", resetCtrl.ConfirmReset)
	}

	// ----------------------------------------------------------------
	//                      RUTAS AUTENTICADAS
	// ----------------------------------------------------------------
	anyRole := middlewares.RequireRoles(models.RoleSuperAdmin, models.RoleOperario)
	superOnly := middlewares.RequireRoles(models.RoleSuperAdmin)

	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware())

	api.GET("/profile", anyRole, userCtrl.GetProfile)

	// USUARIOS (solo superadmin)
	api.GET("/users", superOnly, userCtrl.GetAllUsers)
	api.POST("/users", superOnly, userCtrl.CreateUser)
	api.PATCH("/users/:user_id", superOnly, userCtrl.UpdateUser)
	api.DELETE("/users/:user_id", superOnly, userCtrl.DeleteUser)
	api.POST("/users/:user_id/restore", superOnly, userCtrl.RestoreUser)

	// PROVEEDORES
	api.GET("/providers", anyRole, providerCtrl.GetAllProviders)
	api.POST("/providers", anyRole, providerCtrl.CreateProvider)
	api.PATCH("/providers/:provider_id", anyRole, providerCtrl.UpdateProvider)
	api.DELETE("/providers/:provider_id", anyRole, providerCtrl.DeleteProvider)
	api.POST("/providers/:provider_id/restore", superOnly, providerCtrl.RestoreProvider)

	// ESTANQUES
	api.GET("/pools", anyRole, poolCtrl.GetAllPools)
	api.POST("/pools", anyRole, poolCtrl.CreatePool)
	api.PATCH("/pools/:pool_id", anyRole, poolCtrl.UpdatePool)
	api.DELETE("/pools/:pool_id", anyRole, poolCtrl.DeletePool)
	api.POST("/pools/:pool_id/restore", superOnly, poolCtrl.RestorePool)

	// TIPOS DE ALIMENTO
	api.GET("/food-types", anyRole, foodTypeCtrl.GetAllFoodTypes)
	api.POST("/food-types", anyRole, foodTypeCtrl.CreateFoodType)
	api.PATCH("/food-types/:food_type_id", anyRole, foodTypeCtrl.UpdateFoodType)
	api.DELETE("/food-types/:food_type_id", anyRole, foodTypeCtrl.DeleteFoodType)
	api.POST("/food-types/:food_type_id/restore", superOnly, foodTypeCtrl.RestoreFoodType)

	// EMPAQUES
	api.GET("/packagings", anyRole, packagingCtrl.GetAllPackagings)
	api.POST("/packagings", anyRole, packagingCtrl.CreatePackaging)
	api.PATCH("/packagings/:packaging_id", anyRole, packagingCtrl.UpdatePackaging)
	api.DELETE("/packagings/:packaging_id", anyRole, packagingCtrl.DeletePackaging)
	api.POST("/packagings/:packaging_id/restore", superOnly, packagingCtrl.RestorePackaging)

	// LOTES
	api.GET("/lots", anyRole, lotCtrl.GetAllLots)
	api.POST("/lots", anyRole, lotCtrl.CreateLot)
	api.PATCH("/lots/:lot_id", anyRole, lotCtrl.UpdateLot)
	api.DELETE("/lots/:lot_id", anyRole, lotCtrl.DeleteLot)
	api.POST("/lots/:lot_id/restore", superOnly, lotCtrl.RestoreLot)

	// DETALLES DE LOTE
	api.GET("/lot-details", anyRole, lotDetailCtrl.GetAllLotDetails)
	api.POST("/lot-details", anyRole, lotDetailCtrl.CreateLotDetail)
	api.PATCH("/lot-details/:detail_id", anyRole, lotDetailCtrl.UpdateLotDetail)
	api.DELETE("/lot-details/:detail_id", anyRole, lotDetailCtrl.DeleteLotDetail)
	api.POST("/lot-details/:detail_id/restore", superOnly, lotDetailCtrl.RestoreLotDetail)

	// REGISTROS TRANSACCIONALES
	api.GET("/feedings", anyRole, feedingCtrl.GetAllFeedings)
	api.POST("/feedings", anyRole, feedingCtrl.CreateFeeding)
	api.GET("/losses", anyRole, lossCtrl.GetAllLosses)
	api.POST("/losses", anyRole, lossCtrl.CreateLoss)
	api.GET("/harvests", anyRole, harvestCtrl.GetAllHarvests)
	api.POST("/harvests", anyRole, harvestCtrl.CreateHarvest)

	// SOLICITUDES DE EDICIÓN
	api.POST("/edit-requests", anyRole, editReqCtrl.CreateRequest)
	api.GET("/edit-requests", anyRole, editReqCtrl.ListRequests)
	api.GET("/edit-requests/pending", anyRole, editReqCtrl.GetPending)
	api.POST("/edit-requests/:id/approve", superOnly, editReqCtrl.ApproveRequest)
	api.POST("/edit-requests/:id/reject", superOnly, editReqCtrl.RejectRequest)
	api.POST("/edit-requests/:id/verify", anyRole, editReqCtrl.VerifyCode)

	// SOLICITUDES DE INACTIVACIÓN
	api.POST("/inactivation-requests", anyRole, inactReqCtrl.CreateRequest)
	api.GET("/inactivation-requests", anyRole, inactReqCtrl.ListRequests)
	api.GET("/inactivation-requests/pending", anyRole, inactReqCtrl.GetPending)
	api.POST("/inactivation-requests/:id/approve", superOnly, inactReqCtrl.ApproveRequest)
	api.POST("/inactivation-requests/:id/reject", superOnly, inactReqCtrl.RejectRequest)
	api.POST("/inactivation-requests/:id/verify", anyRole, inactReqCtrl.VerifyCode)

	// PANEL Y AUDITORÍA (solo superadmin)
	api.GET("/dashboard/stats", superOnly, dashboardCtrl.GetStats)
	api.GET("/audit-logs", superOnly, auditCtrl.GetAllAuditLogs)

	return r
}
