package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/restropos/billing-app/controllers"
	"github.com/restropos/billing-app/models"
	"github.com/restropos/billing-app/services"
	"github.com/restropos/billing-app/utils"
)

func setupTestDBForKOT(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:kot_test?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Table{}, &models.SubTable{}, &models.MenuItem{},
		&models.OutletSetting{}, &models.Bill{}, &models.BillItem{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	// Fresh state per test; the shared-cache DB survives across tests.
	db.Exec("DELETE FROM bill_items")
	db.Exec("DELETE FROM bills")
	db.Exec("DELETE FROM sub_tables")
	db.Exec("DELETE FROM menu_items")
	db.Exec("DELETE FROM tables")
	db.Exec("DELETE FROM outlet_settings")
	db.Exec("DELETE FROM sqlite_sequence")

	// Seed: one table and two menu items
	db.Create(&models.Table{Name: "5", OutletID: 1, Status: models.TableStatusVacant})
	db.Create(&models.MenuItem{Name: "Paneer Tikka", OutletID: 1, Rate: 100, CGSTPer: 9, SGSTPer: 9})
	db.Create(&models.MenuItem{Name: "Lassi", OutletID: 1, Rate: 50, CGSTPer: 9, SGSTPer: 9})
	return db
}

func setupKOTRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	kotCtrl := controllers.NewKOTController(db)
	billCtrl := controllers.NewBillController(db)
	router.POST("/kots", kotCtrl.CreateKOT)
	router.GET("/tables/:table_id/bill", billCtrl.GetOpenBillForTable)
	router.GET("/tables/:table_id/unbilled-items", billCtrl.GetUnbilledItems)
	return router
}

func postKOT(t *testing.T, router *gin.Engine, payload map[string]interface{}) *httptest.ResponseRecorder {
	payloadBytes, err := json.Marshal(payload)
	assert.NoError(t, err)
	req, err := http.NewRequest("POST", "/kots", bytes.NewBuffer(payloadBytes))
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateKOTComputesTotals(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForKOT(t)
	router := setupKOTRouter(db)

	payload := map[string]interface{}{
		"outlet_id": 1,
		"table_id":  1,
		"user_id":   1,
		"lines": []map[string]interface{}{
			{"item_id": 1, "qty": 2, "rate": 100, "cgst_amt": 18, "sgst_amt": 18},
			{"item_id": 2, "qty": 1, "rate": 50, "cgst_amt": 9, "sgst_amt": 9},
		},
	}
	w := postKOT(t, router, payload)
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["kot_no"])

	var bill models.Bill
	assert.NoError(t, db.First(&bill).Error)
	assert.Equal(t, 250.0, bill.GrossAmt)
	assert.Equal(t, 27.0, bill.CGSTAmt)
	assert.Equal(t, 27.0, bill.SGSTAmt)
	assert.Equal(t, 304.0, bill.NetAmt)
	assert.Equal(t, 1, bill.KOTNo)
	assert.NotEmpty(t, bill.OrderNo)

	var table models.Table
	assert.NoError(t, db.First(&table, 1).Error)
	assert.Equal(t, models.TableStatusOccupied, table.Status)
}

func TestSecondKOTAppendsToSameBill(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForKOT(t)
	router := setupKOTRouter(db)

	first := map[string]interface{}{
		"outlet_id": 1,
		"table_id":  1,
		"lines": []map[string]interface{}{
			{"item_id": 1, "qty": 1, "rate": 100},
		},
	}
	w := postKOT(t, router, first)
	assert.Equal(t, http.StatusCreated, w.Code)

	second := map[string]interface{}{
		"outlet_id": 1,
		"table_id":  1,
		"lines": []map[string]interface{}{
			{"item_id": 2, "qty": 2, "rate": 50},
		},
	}
	w = postKOT(t, router, second)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Still exactly one bill for the table
	var billCount int64
	db.Model(&models.Bill{}).Where("table_id = ?", 1).Count(&billCount)
	assert.Equal(t, int64(1), billCount)

	var bill models.Bill
	assert.NoError(t, db.First(&bill).Error)
	assert.Equal(t, 2, bill.KOTNo)
	assert.Equal(t, 200.0, bill.GrossAmt)

	var items []models.BillItem
	db.Where("bill_id = ?", bill.ID).Order("id ASC").Find(&items)
	assert.Len(t, items, 2)
	assert.Equal(t, 1, items[0].KOTNo)
	assert.Equal(t, 2, items[1].KOTNo)
}

func TestKOTRatesResolvedFromMenu(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForKOT(t)
	router := setupKOTRouter(db)

	// No rate or tax supplied; resolver uses the menu item
	payload := map[string]interface{}{
		"outlet_id": 1,
		"table_id":  1,
		"lines": []map[string]interface{}{
			{"item_id": 1, "qty": 1},
		},
	}
	w := postKOT(t, router, payload)
	assert.Equal(t, http.StatusCreated, w.Code)

	var item models.BillItem
	assert.NoError(t, db.First(&item).Error)
	assert.Equal(t, 100.0, item.Rate)
	assert.Equal(t, 9.0, item.CGSTPer)
	assert.Equal(t, 9.0, item.CGSTAmt)
	assert.Equal(t, 9.0, item.SGSTAmt)
}

func TestFixedDiscountWrittenOnEveryLine(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForKOT(t)
	router := setupKOTRouter(db)

	payload := map[string]interface{}{
		"outlet_id": 1,
		"table_id":  1,
		"discount":  map[string]interface{}{"type": "fixed", "fixed": 10},
		"lines": []map[string]interface{}{
			{"item_id": 1, "qty": 1, "rate": 100},
			{"item_id": 2, "qty": 1, "rate": 50},
		},
	}
	w := postKOT(t, router, payload)
	assert.Equal(t, http.StatusCreated, w.Code)

	var items []models.BillItem
	db.Order("id ASC").Find(&items)
	assert.Len(t, items, 2)
	// The fixed amount lands in full on each line, so the header
	// discount is fixed * line count.
	assert.Equal(t, 10.0, items[0].DiscountAmt)
	assert.Equal(t, 10.0, items[1].DiscountAmt)

	var bill models.Bill
	assert.NoError(t, db.First(&bill).Error)
	assert.Equal(t, 20.0, bill.Discount)
	assert.Equal(t, 130.0, bill.NetAmt)
}

func TestPercentageDiscountProRated(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForKOT(t)
	router := setupKOTRouter(db)

	payload := map[string]interface{}{
		"outlet_id": 1,
		"table_id":  1,
		"discount":  map[string]interface{}{"type": "percentage", "percent": 10},
		"lines": []map[string]interface{}{
			{"item_id": 1, "qty": 2, "rate": 100},
			{"item_id": 2, "qty": 1, "rate": 50},
		},
	}
	w := postKOT(t, router, payload)
	assert.Equal(t, http.StatusCreated, w.Code)

	var bill models.Bill
	assert.NoError(t, db.First(&bill).Error)
	assert.Equal(t, 250.0, bill.GrossAmt)
	assert.Equal(t, 25.0, bill.Discount)
	assert.Equal(t, 225.0, bill.NetAmt)
}

func TestCreateKOTRejectsEmptyLines(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForKOT(t)
	router := setupKOTRouter(db)

	payload := map[string]interface{}{
		"outlet_id": 1,
		"table_id":  1,
		"lines":     []map[string]interface{}{},
	}
	w := postKOT(t, router, payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestKOTNumbersScopedPerOutlet(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForKOT(t)
	router := setupKOTRouter(db)

	db.Create(&models.Table{Name: "9", OutletID: 2, Status: models.TableStatusVacant})
	db.Create(&models.MenuItem{Name: "Tea", OutletID: 2, Rate: 20})

	w := postKOT(t, router, map[string]interface{}{
		"outlet_id": 1,
		"table_id":  1,
		"lines":     []map[string]interface{}{{"item_id": 1, "qty": 1, "rate": 100}},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	// The other outlet starts its own sequence at 1
	w = postKOT(t, router, map[string]interface{}{
		"outlet_id": 2,
		"table_id":  2,
		"lines":     []map[string]interface{}{{"item_id": 3, "qty": 1, "rate": 20}},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["kot_no"])
}

func TestKOTNumbersResetAtDayBoundary(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForKOT(t)

	db.Create(&models.Bill{TableID: 1, OutletID: 1, BillSeq: 1, OrderNo: "1"})

	// Yesterday's service reached KOT 7
	yesterday := time.Now().Add(-24 * time.Hour)
	db.Create(&models.BillItem{
		BillID: 1, ItemID: 1, TableID: 1, OutletID: 1,
		Qty: 1, Rate: 100,
		KOTNo: 7, KOTUsedAt: yesterday,
	})

	next, err := services.NextKOTNumber(db, 1, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, 1, next)

	// A line stamped today keeps the sequence moving
	db.Create(&models.BillItem{
		BillID: 1, ItemID: 2, TableID: 1, OutletID: 1,
		Qty: 1, Rate: 50,
		KOTNo: 1, KOTUsedAt: time.Now(),
	})
	next, err = services.NextKOTNumber(db, 1, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, 2, next)
}

func TestBillNumberUsesOutletPrefix(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForKOT(t)
	router := setupKOTRouter(db)

	db.Create(&models.OutletSetting{OutletID: 1, BillPrefix: "RST-"})

	w := postKOT(t, router, map[string]interface{}{
		"outlet_id": 1,
		"table_id":  1,
		"lines":     []map[string]interface{}{{"item_id": 1, "qty": 1, "rate": 100}},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var bill models.Bill
	assert.NoError(t, db.First(&bill).Error)
	assert.Equal(t, 1, bill.BillSeq)
	assert.Equal(t, "RST-1", bill.OrderNo)
}
