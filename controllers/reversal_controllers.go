package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/restropos/billing-app/services"
	"github.com/restropos/billing-app/utils"
)

type ReversalController struct {
	DB       *gorm.DB
	reversal *services.ReversalService
}

func NewReversalController(db *gorm.DB) *ReversalController {
	return &ReversalController{
		DB:       db,
		reversal: services.NewReversalService(db),
	}
}

// ReverseQuantity removes exactly one unit from an order line and writes
// an audit row. Repeat the call to reverse more units.
func (rc *ReversalController) ReverseQuantity(c *gin.Context) {
	var req services.ReversalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.LineID == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("line_id is required"))
		return
	}

	if req.ReversedBy == 0 {
		if userID, ok := c.Get("user_id"); ok {
			if id, ok := userID.(uint); ok {
				req.ReversedBy = id
			}
		}
	}

	result, err := rc.reversal.ReverseQuantity(req)
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}

	utils.InfoLogger.Printf("Reversed 1 unit of line %d (rev_kot=%d, remaining=%d)",
		result.LineID, result.RevKOTNo, result.QtyRemaining)
	utils.RespondJSON(c, http.StatusOK, "Quantity reversed", result)
}

// ReverseAll reverses every outstanding unit on the table's open bill,
// one audit row per unit. An approver id must accompany the request; it
// is obtained through the admin verification endpoint first.
func (rc *ReversalController) ReverseAll(c *gin.Context) {
	tableID, err := strconv.ParseUint(c.Param("table_id"), 10, 64)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid table id"))
		return
	}

	var req services.ReversalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.ApprovedBy == nil {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	if req.ReversedBy == 0 {
		if userID, ok := c.Get("user_id"); ok {
			if id, ok := userID.(uint); ok {
				req.ReversedBy = id
			}
		}
	}

	results, err := rc.reversal.ReverseAllOpenQuantities(uint(tableID), req)
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}

	utils.InfoLogger.Printf("Reversed all quantities on table %d (%d units)", tableID, len(results))
	utils.RespondJSON(c, http.StatusOK, "All quantities reversed", gin.H{
		"units_reversed": len(results),
		"reversals":      results,
	})
}
