package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/restropos/billing-app/controllers"
	"github.com/restropos/billing-app/middlewares"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// 50 requests per second per IP. Registered before the routes so
	// every handler chain picks it up.
	rateLimiter := middlewares.NewRateLimiter(50, 1)
	r.Use(rateLimiter.RateLimit())

	userCtrl := controllers.NewUserController(db)
	tableCtrl := controllers.NewTableController(db)
	subTableCtrl := controllers.NewSubTableController(db)
	menuCtrl := controllers.NewMenuController(db)
	kotCtrl := controllers.NewKOTController(db)
	billCtrl := controllers.NewBillController(db)
	reversalCtrl := controllers.NewReversalController(db)
	settlementCtrl := controllers.NewSettlementController(db)
	settingsCtrl := controllers.NewOutletSettingsController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Rate limiter for login/register
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware())

	api.GET("/profile", userCtrl.GetProfile)
	api.POST("/verify-admin", userCtrl.VerifyAdmin)

	// TABLES
	api.GET("/tables", tableCtrl.GetAllTables)
	api.GET("/tables/overview", tableCtrl.GetTablesOverview)
	api.POST("/tables", middlewares.RequireRole("admin"), tableCtrl.CreateTable)
	api.GET("/tables/:table_id", tableCtrl.GetTableByID)
	api.POST("/tables/:table_id/release", tableCtrl.ReleaseTable)
	api.DELETE("/tables/:table_id", middlewares.RequireRole("admin"), tableCtrl.DeleteTable)

	// SUB-TABLES (split billing A-Z)
	api.POST("/sub-tables", subTableCtrl.CreateSubTable)
	api.GET("/tables/:table_id/sub-tables", subTableCtrl.GetSubTables)
	api.POST("/tables/:table_id/sub-tables/init", subTableCtrl.InitializeSubTables)
	api.POST("/tables/:table_id/sub-tables/cleanup", subTableCtrl.CheckAndCleanup)
	api.GET("/sub-tables/:sub_table_id", subTableCtrl.GetSubTableByID)
	api.POST("/sub-tables/:sub_table_id/release", subTableCtrl.ReleaseSubTable)
	api.DELETE("/sub-tables/:sub_table_id", subTableCtrl.DeleteSubTable)

	// MENU
	api.GET("/menu-items", menuCtrl.GetAllMenuItems)
	api.POST("/menu-items", middlewares.RequireRole("admin"), menuCtrl.CreateMenuItem)
	api.GET("/menu-items/:item_id", menuCtrl.GetMenuItemByID)
	api.PATCH("/menu-items/:item_id", middlewares.RequireRole("admin"), menuCtrl.UpdateMenuItem)
	api.DELETE("/menu-items/:item_id", middlewares.RequireRole("admin"), menuCtrl.DeleteMenuItem)

	// KOT
	api.POST("/kots", kotCtrl.CreateKOT)
	api.GET("/tables/:table_id/kots", billCtrl.GetSavedKOTs)
	api.GET("/tables/:table_id/unbilled-items", billCtrl.GetUnbilledItems)

	// BILLS
	api.GET("/bills", billCtrl.GetAllBills)
	api.GET("/bills/:bill_id", billCtrl.GetBillByID)
	api.GET("/tables/:table_id/bill", billCtrl.GetOpenBillForTable)
	api.POST("/bills/:bill_id/print", billCtrl.MarkBilled)
	api.DELETE("/bills/:bill_id", middlewares.RequireRole("admin"), billCtrl.DeleteBill)

	// REVERSALS
	api.POST("/reversals", reversalCtrl.ReverseQuantity)
	api.POST("/tables/:table_id/reverse-all", reversalCtrl.ReverseAll)

	// SETTLEMENTS
	api.GET("/settlements", settlementCtrl.GetAllSettlements)
	api.POST("/bills/:bill_id/settle", settlementCtrl.SettleBill)
	api.PUT("/orders/:order_no/settlements", settlementCtrl.ReplaceSettlements)
	api.PATCH("/settlements/:settlement_id", settlementCtrl.UpdateSettlement)
	api.POST("/settlements/:settlement_id/reverse", settlementCtrl.ReverseSettlement)

	// OUTLET SETTINGS
	api.GET("/outlets/:outlet_id/settings", settingsCtrl.GetSettings)
	api.PUT("/outlets/:outlet_id/settings", middlewares.RequireRole("admin"), settingsCtrl.UpdateSettings)

	return r
}
