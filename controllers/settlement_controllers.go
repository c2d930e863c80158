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

type SettlementController struct {
	DB         *gorm.DB
	settlement *services.SettlementService
}

func NewSettlementController(db *gorm.DB) *SettlementController {
	return &SettlementController{
		DB:         db,
		settlement: services.NewSettlementService(db),
	}
}

// editorFrom resolves who is making the change, body first, JWT second.
func editorFrom(c *gin.Context, bodyValue string) string {
	if bodyValue != "" {
		return bodyValue
	}
	if userID, ok := c.Get("user_id"); ok {
		if id, ok := userID.(uint); ok {
			return strconv.FormatUint(uint64(id), 10)
		}
	}
	return "system"
}

// GetAllSettlements lists active settlements with optional filters.
func (sc *SettlementController) GetAllSettlements(c *gin.Context) {
	query := sc.DB.Model(&models.Settlement{}).Where("is_active = ?", true)

	if v := c.Query("order_no"); v != "" {
		query = query.Where("order_no = ?", v)
	}
	if v := c.Query("payment_type"); v != "" {
		query = query.Where("payment_type = ?", v)
	}
	if v := c.Query("hotel_id"); v != "" {
		query = query.Where("hotel_id = ?", v)
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

	var settlements []models.Settlement
	err := query.Order("id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&settlements).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of settlements", gin.H{
		"settlements": settlements,
		"total":       total,
		"page":        page,
		"limit":       limit,
	})
}

// SettleBill records the bill's tenders, closes it and frees its billing
// target. Tender amounts are recorded as submitted.
func (sc *SettlementController) SettleBill(c *gin.Context) {
	billID, err := strconv.ParseUint(c.Param("bill_id"), 10, 64)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid bill id"))
		return
	}

	var req struct {
		Tenders []services.Tender `json:"tenders" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	bill, settlements, err := sc.settlement.Settle(uint(billID), req.Tenders)
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}

	utils.InfoLogger.Printf("Bill %s settled with %d tender(s)", bill.OrderNo, len(settlements))
	utils.RespondJSON(c, http.StatusOK, "Bill settled", gin.H{
		"bill":        bill,
		"settlements": settlements,
	})
}

// ReplaceSettlements swaps every settlement of an order for a new tender
// set, logging each removed row.
func (sc *SettlementController) ReplaceSettlements(c *gin.Context) {
	orderNo := c.Param("order_no")

	var req struct {
		Tenders  []services.Tender `json:"tenders" binding:"required"`
		EditedBy string            `json:"edited_by"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	settlements, err := sc.settlement.ReplaceSettlements(orderNo, req.Tenders, editorFrom(c, req.EditedBy))
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}

	utils.InfoLogger.Printf("Settlements replaced for order %s (%d tender(s))", orderNo, len(settlements))
	utils.RespondJSON(c, http.StatusOK, "Settlements replaced", settlements)
}

// UpdateSettlement edits one settlement in place. The new amount must
// still match the bill total.
func (sc *SettlementController) UpdateSettlement(c *gin.Context) {
	settlementID, err := strconv.ParseUint(c.Param("settlement_id"), 10, 64)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid settlement id"))
		return
	}

	var req struct {
		PaymentType string  `json:"payment_type" binding:"required"`
		Amount      float64 `json:"amount" binding:"required"`
		EditedBy    string  `json:"edited_by"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	settlement, err := sc.settlement.UpdateSettlement(uint(settlementID), req.PaymentType, req.Amount, editorFrom(c, req.EditedBy))
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}

	utils.InfoLogger.Printf("Settlement %d updated (%s %.2f)", settlement.ID, settlement.PaymentType, settlement.Amount)
	utils.RespondJSON(c, http.StatusOK, "Settlement updated", settlement)
}

// ReverseSettlement soft-deletes one settlement row. The bill header
// stays settled; correcting it is a separate, deliberate step.
func (sc *SettlementController) ReverseSettlement(c *gin.Context) {
	settlementID, err := strconv.ParseUint(c.Param("settlement_id"), 10, 64)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid settlement id"))
		return
	}

	var req struct {
		EditedBy string `json:"edited_by"`
	}
	// Body is optional here.
	_ = c.ShouldBindJSON(&req)

	settlement, err := sc.settlement.ReverseSettlement(uint(settlementID), editorFrom(c, req.EditedBy))
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}

	utils.InfoLogger.Printf("Settlement %d reversed", settlement.ID)
	utils.RespondJSON(c, http.StatusOK, "Settlement reversed", settlement)
}
