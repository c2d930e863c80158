package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/restropos/billing-app/models"
	"github.com/restropos/billing-app/utils"
)

type OutletSettingsController struct {
	DB *gorm.DB
}

func NewOutletSettingsController(db *gorm.DB) *OutletSettingsController {
	return &OutletSettingsController{DB: db}
}

// GetSettings returns the settings row for one outlet. Outlets without a
// row fall back to an empty bill prefix.
func (oc *OutletSettingsController) GetSettings(c *gin.Context) {
	outletID, err := strconv.ParseUint(c.Param("outlet_id"), 10, 64)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid outlet id"))
		return
	}

	var setting models.OutletSetting
	if err := oc.DB.Where("outlet_id = ?", outletID).First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondJSON(c, http.StatusOK, "Outlet settings", models.OutletSetting{
				OutletID: uint(outletID),
			})
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Outlet settings", setting)
}

// UpdateSettings upserts the outlet's bill prefix. Already-issued bill
// numbers are not rewritten.
func (oc *OutletSettingsController) UpdateSettings(c *gin.Context) {
	outletID, err := strconv.ParseUint(c.Param("outlet_id"), 10, 64)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid outlet id"))
		return
	}

	var req struct {
		BillPrefix string `json:"bill_prefix"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var setting models.OutletSetting
	err = oc.DB.Where("outlet_id = ?", outletID).First(&setting).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		setting = models.OutletSetting{
			OutletID:   uint(outletID),
			BillPrefix: req.BillPrefix,
		}
		if err := oc.DB.Create(&setting).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	case err != nil:
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	default:
		if err := oc.DB.Model(&setting).Update("bill_prefix", req.BillPrefix).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		setting.BillPrefix = req.BillPrefix
	}

	utils.InfoLogger.Printf("Outlet %d bill prefix set to %q", outletID, req.BillPrefix)
	utils.RespondJSON(c, http.StatusOK, "Outlet settings updated", setting)
}
