package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/restropos/billing-app/models"
	"github.com/restropos/billing-app/services"
	"github.com/restropos/billing-app/utils"
)

type BillController struct {
	DB      *gorm.DB
	billing *services.BillingService
}

func NewBillController(db *gorm.DB) *BillController {
	return &BillController{
		DB:      db,
		billing: services.NewBillingService(db),
	}
}

// GetAllBills lists bill headers with optional filters and pagination.
func (bc *BillController) GetAllBills(c *gin.Context) {
	query := bc.DB.Model(&models.Bill{}).Where("is_cancelled = ?", false)

	if v := c.Query("is_billed"); v != "" {
		query = query.Where("is_billed = ?", v == "true" || v == "1")
	}
	if v := c.Query("is_settled"); v != "" {
		query = query.Where("is_settled = ?", v == "true" || v == "1")
	}
	if v := c.Query("table_id"); v != "" {
		query = query.Where("table_id = ?", v)
	}
	if v := c.Query("outlet_id"); v != "" {
		query = query.Where("outlet_id = ?", v)
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var bills []models.Bill
	err := query.Order("id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&bills).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of bills", gin.H{
		"bills": bills,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetBillByID returns one bill with its lines and active settlements.
func (bc *BillController) GetBillByID(c *gin.Context) {
	billID := c.Param("bill_id")

	var bill models.Bill
	err := bc.DB.Preload("Items", "is_cancelled = ?", false).
		First(&bill, billID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, services.ErrBillNotFound)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var settlements []models.Settlement
	err = bc.DB.Where("order_no = ? AND is_active = ?", bill.OrderNo, true).
		Find(&settlements).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Bill detail", gin.H{
		"bill":        bill,
		"settlements": settlements,
	})
}

// GetOpenBillForTable returns the table's open bill with its lines, or
// 404 when the table has none.
func (bc *BillController) GetOpenBillForTable(c *gin.Context) {
	tableID, err := strconv.ParseUint(c.Param("table_id"), 10, 64)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid table id"))
		return
	}

	bill, err := bc.billing.OpenBillForTable(uint(tableID))
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Open bill", bill)
}

// GetSavedKOTs groups the open bill's lines by KOT batch, oldest first.
func (bc *BillController) GetSavedKOTs(c *gin.Context) {
	tableID, err := strconv.ParseUint(c.Param("table_id"), 10, 64)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid table id"))
		return
	}

	bill, err := bc.billing.OpenBillForTable(uint(tableID))
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}

	type kotBatch struct {
		KOTNo int               `json:"kot_no"`
		Items []models.BillItem `json:"items"`
	}

	byKOT := map[int]*kotBatch{}
	var order []int
	for _, item := range bill.Items {
		batch, ok := byKOT[item.KOTNo]
		if !ok {
			batch = &kotBatch{KOTNo: item.KOTNo}
			byKOT[item.KOTNo] = batch
			order = append(order, item.KOTNo)
		}
		batch.Items = append(batch.Items, item)
	}

	batches := make([]kotBatch, 0, len(order))
	for _, kotNo := range order {
		batches = append(batches, *byKOT[kotNo])
	}

	utils.RespondJSON(c, http.StatusOK, "Saved KOTs", gin.H{
		"order_no": bill.OrderNo,
		"kots":     batches,
	})
}

// GetUnbilledItems returns the open bill's lines that still carry net
// quantity, flagging lines from the latest KOT batch as new.
func (bc *BillController) GetUnbilledItems(c *gin.Context) {
	tableID, err := strconv.ParseUint(c.Param("table_id"), 10, 64)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid table id"))
		return
	}

	bill, err := bc.billing.OpenBillForTable(uint(tableID))
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}

	type unbilledItem struct {
		models.BillItem
		NetQty int  `json:"net_qty"`
		IsNew  bool `json:"is_new"`
	}

	var items []unbilledItem
	for _, item := range bill.Items {
		net := item.NetQty()
		if net <= 0 {
			continue
		}
		items = append(items, unbilledItem{
			BillItem: item,
			NetQty:   net,
			IsNew:    item.KOTNo == bill.KOTNo,
		})
	}

	utils.RespondJSON(c, http.StatusOK, "Unbilled items", gin.H{
		"order_no": bill.OrderNo,
		"items":    items,
	})
}

// MarkBilled freezes the bill for payment: the print step.
func (bc *BillController) MarkBilled(c *gin.Context) {
	billID, err := strconv.ParseUint(c.Param("bill_id"), 10, 64)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid bill id"))
		return
	}

	bill, err := bc.billing.MarkBilled(uint(billID))
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}

	utils.InfoLogger.Printf("Bill %s marked billed", bill.OrderNo)
	utils.RespondJSON(c, http.StatusOK, "Bill marked billed", bill)
}

// DeleteBill removes a bill and its lines, releasing the table if this
// was its open bill.
func (bc *BillController) DeleteBill(c *gin.Context) {
	billID, err := strconv.ParseUint(c.Param("bill_id"), 10, 64)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid bill id"))
		return
	}

	if err := bc.billing.DeleteBill(uint(billID)); err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}

	utils.InfoLogger.Printf("Bill %d deleted", billID)
	utils.RespondJSON(c, http.StatusOK, "Bill deleted", gin.H{
		"id": billID,
	})
}
