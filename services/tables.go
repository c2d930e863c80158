package services

import (
	"gorm.io/gorm"

	"github.com/restropos/billing-app/models"
)

// OccupyTable marks a table occupied. Idempotent: occupying an already
// occupied table is a no-op.
func OccupyTable(tx *gorm.DB, tableID uint) error {
	return tx.Model(&models.Table{}).
		Where("id = ?", tableID).
		Update("status", models.TableStatusOccupied).Error
}

// ReleaseTable marks a table vacant, but only when none of its
// sub-tables is still active. Releasing a table with active sub-tables
// is a silent no-op, not an error.
func ReleaseTable(tx *gorm.DB, tableID uint) error {
	var active int64
	err := tx.Model(&models.SubTable{}).
		Where("parent_table_id = ? AND status > ?", tableID, models.SubTableAvailable).
		Count(&active).Error
	if err != nil {
		return err
	}
	if active > 0 {
		return nil
	}

	return tx.Model(&models.Table{}).
		Where("id = ?", tableID).
		Update("status", models.TableStatusVacant).Error
}
