package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/restropos/billing-app/models"
	"github.com/restropos/billing-app/utils"
)

type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

// CreateMenuItem registers a sellable item with its rate and tax rates.
func (mc *MenuController) CreateMenuItem(c *gin.Context) {
	var req struct {
		Name     string  `json:"name" binding:"required"`
		OutletID uint    `json:"outlet_id" binding:"required"`
		DeptID   uint    `json:"dept_id"`
		Rate     float64 `json:"rate" binding:"required"`
		CGSTPer  float64 `json:"cgst_per"`
		SGSTPer  float64 `json:"sgst_per"`
		IGSTPer  float64 `json:"igst_per"`
		CESSPer  float64 `json:"cess_per"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item := models.MenuItem{
		Name:     req.Name,
		OutletID: req.OutletID,
		DeptID:   req.DeptID,
		Rate:     req.Rate,
		CGSTPer:  req.CGSTPer,
		SGSTPer:  req.SGSTPer,
		IGSTPer:  req.IGSTPer,
		CESSPer:  req.CESSPer,
	}

	if err := mc.DB.Create(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Menu item created: %s (rate=%.2f)", item.Name, item.Rate)
	utils.RespondJSON(c, http.StatusCreated, "Menu item created", item)
}

// GetAllMenuItems lists items, optionally scoped to an outlet.
func (mc *MenuController) GetAllMenuItems(c *gin.Context) {
	query := mc.DB.Model(&models.MenuItem{})
	if outletID := c.Query("outlet_id"); outletID != "" {
		query = query.Where("outlet_id = ?", outletID)
	}

	var items []models.MenuItem
	if err := query.Order("name ASC").Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menu items", items)
}

// GetMenuItemByID returns one item.
func (mc *MenuController) GetMenuItemByID(c *gin.Context) {
	itemID := c.Param("item_id")
	var item models.MenuItem
	if err := mc.DB.First(&item, itemID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item detail", item)
}

// UpdateMenuItem changes rate or tax rates. Existing bill lines keep the
// values captured when they were ordered.
func (mc *MenuController) UpdateMenuItem(c *gin.Context) {
	itemID := c.Param("item_id")

	var item models.MenuItem
	if err := mc.DB.First(&item, itemID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var req struct {
		Name    *string  `json:"name"`
		Rate    *float64 `json:"rate"`
		CGSTPer *float64 `json:"cgst_per"`
		SGSTPer *float64 `json:"sgst_per"`
		IGSTPer *float64 `json:"igst_per"`
		CESSPer *float64 `json:"cess_per"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Rate != nil {
		updates["rate"] = *req.Rate
	}
	if req.CGSTPer != nil {
		updates["cgst_per"] = *req.CGSTPer
	}
	if req.SGSTPer != nil {
		updates["sgst_per"] = *req.SGSTPer
	}
	if req.IGSTPer != nil {
		updates["igst_per"] = *req.IGSTPer
	}
	if req.CESSPer != nil {
		updates["cess_per"] = *req.CESSPer
	}

	if len(updates) > 0 {
		if err := mc.DB.Model(&item).Updates(updates).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Menu item updated", item)
}

// DeleteMenuItem removes an item from the menu.
func (mc *MenuController) DeleteMenuItem(c *gin.Context) {
	itemID := c.Param("item_id")
	var item models.MenuItem
	if err := mc.DB.First(&item, itemID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if err := mc.DB.Delete(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item deleted", gin.H{
		"id": item.ID,
	})
}
