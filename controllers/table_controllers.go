package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/restropos/billing-app/models"
	"github.com/restropos/billing-app/services"
	"github.com/restropos/billing-app/utils"
)

type TableController struct {
	DB *gorm.DB
}

func NewTableController(db *gorm.DB) *TableController {
	return &TableController{DB: db}
}

// CreateTable adds a new physical table.
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		OutletID uint   `json:"outlet_id" binding:"required"`
		DeptID   uint   `json:"dept_id"`
		HotelID  uint   `json:"hotel_id"`
		Status   string `json:"status"` // optional, default "vacant"
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table := models.Table{
		Name:     req.Name,
		OutletID: req.OutletID,
		DeptID:   req.DeptID,
		HotelID:  req.HotelID,
		Status:   models.TableStatusVacant,
	}
	if req.Status != "" {
		table.Status = req.Status
	}

	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New table created: %s (status=%s)", table.Name, table.Status)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables lists every table, optionally filtered by status or outlet.
func (tc *TableController) GetAllTables(c *gin.Context) {
	query := tc.DB.Model(&models.Table{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if outletID := c.Query("outlet_id"); outletID != "" {
		query = query.Where("outlet_id = ?", outletID)
	}

	var tables []models.Table
	if err := query.Order("name ASC").Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// GetTablesOverview lists tables together with the net amount of each
// table's open bill, for the floor view.
func (tc *TableController) GetTablesOverview(c *gin.Context) {
	query := tc.DB.Model(&models.Table{})
	if outletID := c.Query("outlet_id"); outletID != "" {
		query = query.Where("outlet_id = ?", outletID)
	}

	var tables []models.Table
	if err := query.Order("name ASC").Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	type tableOverview struct {
		models.Table
		OpenBillID  *uint   `json:"open_bill_id,omitempty"`
		OpenOrderNo string  `json:"open_order_no,omitempty"`
		OpenNetAmt  float64 `json:"open_net_amt"`
	}

	overview := make([]tableOverview, 0, len(tables))
	for _, table := range tables {
		row := tableOverview{Table: table}

		var bill models.Bill
		err := tc.DB.Where("table_id = ? AND is_cancelled = ? AND is_settled = ?", table.ID, false, false).
			Order("id DESC").
			First(&bill).Error
		if err == nil {
			id := bill.ID
			row.OpenBillID = &id
			row.OpenOrderNo = bill.OrderNo
			row.OpenNetAmt = bill.NetAmt
		}
		overview = append(overview, row)
	}

	utils.RespondJSON(c, http.StatusOK, "Tables overview", overview)
}

// GetTableByID returns one table.
func (tc *TableController) GetTableByID(c *gin.Context) {
	tableID := c.Param("table_id")
	var table models.Table
	if err := tc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// ReleaseTable forces a table back to vacant. The release is skipped
// while any of its sub-tables is still active.
func (tc *TableController) ReleaseTable(c *gin.Context) {
	tableID := c.Param("table_id")

	var table models.Table
	if err := tc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	err := tc.DB.Transaction(func(tx *gorm.DB) error {
		return services.ReleaseTable(tx, table.ID)
	})
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}

	if err := tc.DB.First(&table, table.ID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Table %d released (status=%s)", table.ID, table.Status)
	utils.RespondJSON(c, http.StatusOK, "Table released", table)
}

// DeleteTable removes a table. Occupied tables are protected.
func (tc *TableController) DeleteTable(c *gin.Context) {
	tableID := c.Param("table_id")
	var table models.Table

	if err := tc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if table.Status == models.TableStatusOccupied {
		utils.RespondError(c, http.StatusConflict, ErrNoPermission)
		return
	}

	if err := tc.DB.Delete(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Table %d deleted", table.ID)
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{
		"id": table.ID,
	})
}
