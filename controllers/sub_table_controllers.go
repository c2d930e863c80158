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

type SubTableController struct {
	DB        *gorm.DB
	subTables *services.SubTableService
}

func NewSubTableController(db *gorm.DB) *SubTableController {
	return &SubTableController{
		DB:        db,
		subTables: services.NewSubTableService(db),
	}
}

// CreateSubTable opens a lettered sub-table on the parent. When the
// parent already has an active one, that row is returned instead of a
// new letter being assigned.
func (stc *SubTableController) CreateSubTable(c *gin.Context) {
	var req struct {
		ParentTableID uint   `json:"parent_table_id" binding:"required"`
		Name          string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	sub, reused, err := stc.subTables.CreateSubTable(req.ParentTableID, req.Name)
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}

	if reused {
		utils.InfoLogger.Printf("Reusing active sub-table %s on table %d", sub.Name, req.ParentTableID)
		utils.RespondJSON(c, http.StatusOK, "Active sub-table reused", sub)
		return
	}

	utils.InfoLogger.Printf("Sub-table %s opened on table %d", sub.Name, req.ParentTableID)
	utils.RespondJSON(c, http.StatusCreated, "Sub-table created", sub)
}

// GetSubTables lists the parent's sub-tables, optionally filtered by
// status.
func (stc *SubTableController) GetSubTables(c *gin.Context) {
	parentID, err := strconv.ParseUint(c.Param("table_id"), 10, 64)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid table id"))
		return
	}

	query := stc.DB.Where("parent_table_id = ?", parentID)
	if v := c.Query("status"); v != "" {
		query = query.Where("status = ?", v)
	}

	var subs []models.SubTable
	if err := query.Order("name ASC").Find(&subs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of sub-tables", subs)
}

// GetSubTableByID returns one sub-table, looked up by id or by name
// (e.g. "2A") when the parameter is not numeric.
func (stc *SubTableController) GetSubTableByID(c *gin.Context) {
	param := c.Param("sub_table_id")

	var sub models.SubTable
	var err error
	if id, convErr := strconv.ParseUint(param, 10, 64); convErr == nil {
		err = stc.DB.First(&sub, id).Error
	} else {
		err = stc.DB.Where("name = ?", param).First(&sub).Error
	}
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, services.ErrSubTableNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Sub-table detail", sub)
}

// ReleaseSubTable frees one sub-table. The parent goes vacant only when
// no sibling remains active.
func (stc *SubTableController) ReleaseSubTable(c *gin.Context) {
	subID, err := strconv.ParseUint(c.Param("sub_table_id"), 10, 64)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid sub-table id"))
		return
	}

	sub, err := stc.subTables.ReleaseSubTable(uint(subID))
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}

	utils.InfoLogger.Printf("Sub-table %s released", sub.Name)
	utils.RespondJSON(c, http.StatusOK, "Sub-table released", sub)
}

// CheckAndCleanup deletes all of the parent's sub-tables and frees the
// parent when every sub-table bill is settled; otherwise it returns the
// per-sub-table settlement status.
func (stc *SubTableController) CheckAndCleanup(c *gin.Context) {
	parentID, err := strconv.ParseUint(c.Param("table_id"), 10, 64)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid table id"))
		return
	}

	cleaned, report, err := stc.subTables.CheckAndCleanupAllSettled(uint(parentID))
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}

	if cleaned {
		utils.InfoLogger.Printf("Sub-tables of table %d cleaned up", parentID)
		utils.RespondJSON(c, http.StatusOK, "All sub-tables settled and cleaned up", gin.H{
			"cleaned": true,
		})
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Unsettled sub-tables remain", gin.H{
		"cleaned":    false,
		"sub_tables": report,
	})
}

// DeleteSubTable removes a single available sub-table.
func (stc *SubTableController) DeleteSubTable(c *gin.Context) {
	subID, err := strconv.ParseUint(c.Param("sub_table_id"), 10, 64)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid sub-table id"))
		return
	}

	if err := stc.subTables.DeleteSubTable(uint(subID)); err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Sub-table deleted", gin.H{
		"id": subID,
	})
}

// InitializeSubTables pre-creates the full letter range for a parent.
func (stc *SubTableController) InitializeSubTables(c *gin.Context) {
	parentID, err := strconv.ParseUint(c.Param("table_id"), 10, 64)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid table id"))
		return
	}

	created, err := stc.subTables.InitializeSubTables(uint(parentID))
	if err != nil {
		utils.RespondError(c, statusFor(err), err)
		return
	}

	utils.InfoLogger.Printf("Initialized %d sub-table(s) for table %d", created, parentID)
	utils.RespondJSON(c, http.StatusOK, "Sub-tables initialized", gin.H{
		"created": created,
	})
}
