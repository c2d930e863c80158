package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/restropos/billing-app/controllers"
	"github.com/restropos/billing-app/models"
	"github.com/restropos/billing-app/utils"
)

func setupTestDBForTables(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:table_test?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.Table{}, &models.SubTable{}, &models.Bill{}, &models.BillItem{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	db.Exec("DELETE FROM bill_items")
	db.Exec("DELETE FROM bills")
	db.Exec("DELETE FROM sub_tables")
	db.Exec("DELETE FROM tables")
	db.Exec("DELETE FROM sqlite_sequence")
	return db
}

func setupTableRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	tableCtrl := controllers.NewTableController(db)
	router.POST("/tables", tableCtrl.CreateTable)
	router.GET("/tables", tableCtrl.GetAllTables)
	router.GET("/tables/overview", tableCtrl.GetTablesOverview)
	router.GET("/tables/:table_id", tableCtrl.GetTableByID)
	router.POST("/tables/:table_id/release", tableCtrl.ReleaseTable)
	router.DELETE("/tables/:table_id", tableCtrl.DeleteTable)
	return router
}

func TestCreateAndListTables(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForTables(t)
	router := setupTableRouter(db)

	payload := map[string]interface{}{"name": "12", "outlet_id": 1}
	payloadBytes, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", "/tables", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, models.TableStatusVacant, data["status"])

	req, _ = http.NewRequest("GET", "/tables?status=vacant", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var listResp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	assert.Len(t, listResp["data"].([]interface{}), 1)
}

func TestReleaseTableSkippedWhileSubTableActive(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForTables(t)
	router := setupTableRouter(db)

	db.Create(&models.Table{Name: "4", OutletID: 1, Status: models.TableStatusOccupied})
	db.Create(&models.SubTable{ParentTableID: 1, Name: "4A", OutletID: 1, Status: models.SubTableRunning})

	req, _ := http.NewRequest("POST", "/tables/1/release", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Active sub-table holds the parent occupied
	var table models.Table
	assert.NoError(t, db.First(&table, 1).Error)
	assert.Equal(t, models.TableStatusOccupied, table.Status)

	// Without the sub-table the release goes through
	db.Model(&models.SubTable{}).Where("id = ?", 1).Update("status", models.SubTableAvailable)
	req, _ = http.NewRequest("POST", "/tables/1/release", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.NoError(t, db.First(&table, 1).Error)
	assert.Equal(t, models.TableStatusVacant, table.Status)
}

func TestTablesOverviewCarriesOpenBillAmount(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForTables(t)
	router := setupTableRouter(db)

	db.Create(&models.Table{Name: "10", OutletID: 1, Status: models.TableStatusOccupied})
	db.Create(&models.Table{Name: "11", OutletID: 1, Status: models.TableStatusVacant})
	db.Create(&models.Bill{
		OutletID: 1, TableID: 1, BillSeq: 1, OrderNo: "1", NetAmt: 450,
	})

	req, _ := http.NewRequest("GET", "/tables/overview", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	rows := resp["data"].([]interface{})
	assert.Len(t, rows, 2)

	first := rows[0].(map[string]interface{})
	assert.Equal(t, "10", first["name"])
	assert.Equal(t, 450.0, first["open_net_amt"])

	second := rows[1].(map[string]interface{})
	assert.Equal(t, 0.0, second["open_net_amt"])
	_, hasBill := second["open_bill_id"]
	assert.False(t, hasBill)
}

func TestDeleteOccupiedTableRejected(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForTables(t)
	router := setupTableRouter(db)

	db.Create(&models.Table{Name: "6", OutletID: 1, Status: models.TableStatusOccupied})

	req, _ := http.NewRequest("DELETE", "/tables/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	var count int64
	db.Model(&models.Table{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
