package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/restropos/billing-app/models"
	"github.com/restropos/billing-app/router"
	"github.com/restropos/billing-app/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

// TestEndToEndBillingFlow walks the main dine-in path:
// 1. Login as admin -> token
// 2. Create a table and a menu item
// 3. Append a KOT -> table occupied, totals computed
// 4. Reverse one unit -> audit row, totals recomputed
// 5. Print the bill
// 6. Settle with a split tender -> table vacant
func TestEndToEndBillingFlow(t *testing.T) {
	db := setupIntegrationDB(t)
	r := router.SetupRouter(db)

	token := loginTest(t, r)

	tableID := createTableTest(t, r, token)
	itemID := createMenuItemTest(t, r, token)

	billID, lineID := appendKOTTest(t, r, token, tableID, itemID)

	reverseOneUnitTest(t, r, token, lineID)

	printBillTest(t, r, token, billID)

	settleBillTest(t, r, token, billID)

	var table models.Table
	assert.NoError(t, db.First(&table, tableID).Error)
	assert.Equal(t, models.TableStatusVacant, table.Status)
}

func setupIntegrationDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Table{},
		&models.SubTable{},
		&models.MenuItem{},
		&models.OutletSetting{},
		&models.Bill{},
		&models.BillItem{},
		&models.ReversalLog{},
		&models.Settlement{},
		&models.SettlementLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	db.Create(&models.User{
		Name:     "Test Admin",
		Email:    "admin@example.com",
		Password: string(hashedPassword),
		Role:     "admin",
	})
	db.Create(&models.OutletSetting{OutletID: 1, BillPrefix: "INV-"})

	return db
}

func doJSON(t *testing.T, r *gin.Engine, method, url, token string, body interface{}) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != nil {
		b, err := json.Marshal(body)
		assert.NoError(t, err)
		buf = bytes.NewBuffer(b)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, url, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func loginTest(t *testing.T, r *gin.Engine) string {
	w := doJSON(t, r, http.MethodPost, "/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	token, _ := data["token"].(string)
	assert.NotEmpty(t, token)
	return token
}

func createTableTest(t *testing.T, r *gin.Engine, token string) uint {
	w := doJSON(t, r, http.MethodPost, "/api/tables", token, map[string]interface{}{
		"name":      "8",
		"outlet_id": 1,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return uint(resp["data"].(map[string]interface{})["id"].(float64))
}

func createMenuItemTest(t *testing.T, r *gin.Engine, token string) uint {
	w := doJSON(t, r, http.MethodPost, "/api/menu-items", token, map[string]interface{}{
		"name":      "Veg Biryani",
		"outlet_id": 1,
		"rate":      120,
		"cgst_per":  2.5,
		"sgst_per":  2.5,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return uint(resp["data"].(map[string]interface{})["id"].(float64))
}

func appendKOTTest(t *testing.T, r *gin.Engine, token string, tableID, itemID uint) (uint, uint) {
	w := doJSON(t, r, http.MethodPost, "/api/kots", token, map[string]interface{}{
		"outlet_id": 1,
		"table_id":  tableID,
		"lines": []map[string]interface{}{
			{"item_id": itemID, "qty": 2},
		},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["kot_no"])

	bill := data["bill"].(map[string]interface{})
	assert.Equal(t, "INV-1", bill["order_no"])
	assert.Equal(t, 240.0, bill["gross_amt"])
	assert.Equal(t, 6.0, bill["cgst_amt"])
	assert.Equal(t, 6.0, bill["sgst_amt"])
	assert.Equal(t, 252.0, bill["net_amt"])

	billID := uint(bill["id"].(float64))

	// Table is occupied while the bill is open
	wt := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/tables/%d", tableID), token, nil)
	assert.Equal(t, http.StatusOK, wt.Code)
	var tableResp map[string]interface{}
	assert.NoError(t, json.Unmarshal(wt.Body.Bytes(), &tableResp))
	assert.Equal(t, models.TableStatusOccupied, tableResp["data"].(map[string]interface{})["status"])

	// Fetch the line id from the open bill
	wb := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/tables/%d/bill", tableID), token, nil)
	assert.Equal(t, http.StatusOK, wb.Code)
	var billResp map[string]interface{}
	assert.NoError(t, json.Unmarshal(wb.Body.Bytes(), &billResp))
	items := billResp["data"].(map[string]interface{})["items"].([]interface{})
	assert.Len(t, items, 1)
	lineID := uint(items[0].(map[string]interface{})["id"].(float64))

	return billID, lineID
}

func reverseOneUnitTest(t *testing.T, r *gin.Engine, token string, lineID uint) {
	w := doJSON(t, r, http.MethodPost, "/api/reversals", token, map[string]interface{}{
		"line_id": lineID,
		"reason":  "customer changed mind",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["qty_remaining"])
}

func printBillTest(t *testing.T, r *gin.Engine, token string, billID uint) {
	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/bills/%d/print", billID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func settleBillTest(t *testing.T, r *gin.Engine, token string, billID uint) {
	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/bills/%d/settle", billID), token, map[string]interface{}{
		"tenders": []map[string]interface{}{
			{"payment_type": "Cash", "amount": 100},
			{"payment_type": "Card", "amount": 152},
		},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	settlements := data["settlements"].([]interface{})
	assert.Len(t, settlements, 2)
	bill := data["bill"].(map[string]interface{})
	assert.Equal(t, true, bill["is_settled"])
}

// The per-IP limiter is registered inside SetupRouter, so every route
// carries it. A burst past the window cap gets 429.
func TestRateLimiterAppliesToRoutes(t *testing.T) {
	db := setupIntegrationDB(t)
	r := router.SetupRouter(db)

	last := http.StatusOK
	for i := 0; i < 60; i++ {
		req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		last = w.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}
