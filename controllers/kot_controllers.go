package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/restropos/billing-app/services"
	"github.com/restropos/billing-app/utils"
)

type KOTController struct {
	DB      *gorm.DB
	billing *services.BillingService
}

func NewKOTController(db *gorm.DB) *KOTController {
	return &KOTController{
		DB:      db,
		billing: services.NewBillingService(db),
	}
}

// CreateKOT appends a batch of order lines to the table's open bill,
// opening one when the table is vacant. The acting user comes from the
// JWT context when the body leaves it empty.
func (kc *KOTController) CreateKOT(c *gin.Context) {
	var req services.KOTRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.UserID == 0 {
		if userID, ok := c.Get("user_id"); ok {
			if id, ok := userID.(uint); ok {
				req.UserID = id
			}
		}
	}

	bill, kotNo, err := kc.billing.AppendKOT(req)
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}

	utils.InfoLogger.Printf("KOT %d appended to bill %s (table=%d, lines=%d)",
		kotNo, bill.OrderNo, bill.TableID, len(req.Lines))

	utils.RespondJSON(c, http.StatusCreated, "KOT created", gin.H{
		"kot_no": kotNo,
		"bill":   bill,
	})
}
