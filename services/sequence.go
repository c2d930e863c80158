package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/restropos/billing-app/models"
)

// Sequence allocation for bill numbers, KOT numbers and reversal-KOT
// numbers. Every allocator runs a MAX()+1 scan inside the caller's
// transaction; there is no counter table, so KOT numbers reset on their
// own at the day boundary and concurrent callers are serialized by the
// store's transaction isolation.

// NextBillNumber returns the next per-outlet bill sequence along with
// its printable order number (outlet prefix + sequence).
func NextBillNumber(tx *gorm.DB, outletID uint) (int, string, error) {
	var maxSeq *int
	err := tx.Model(&models.Bill{}).
		Where("outlet_id = ?", outletID).
		Select("MAX(bill_seq)").
		Scan(&maxSeq).Error
	if err != nil {
		return 0, "", err
	}

	seq := 1
	if maxSeq != nil {
		seq = *maxSeq + 1
	}

	var setting models.OutletSetting
	prefix := ""
	if err := tx.Where("outlet_id = ?", outletID).First(&setting).Error; err == nil {
		prefix = setting.BillPrefix
	}

	return seq, fmt.Sprintf("%s%d", prefix, seq), nil
}

// NextKOTNumber returns the next KOT batch number for the outlet on the
// given day. Scoped per outlet per calendar day: the maximum is taken
// over the day's lines only.
func NextKOTNumber(tx *gorm.DB, outletID uint, now time.Time) (int, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var maxKOT *int
	err := tx.Model(&models.BillItem{}).
		Where("outlet_id = ? AND kot_used_at >= ? AND kot_used_at < ?", outletID, dayStart, dayEnd).
		Select("MAX(kot_no)").
		Scan(&maxKOT).Error
	if err != nil {
		return 0, err
	}

	if maxKOT == nil {
		return 1, nil
	}
	return *maxKOT + 1, nil
}

// NextRevKOTNumber returns the next reversal-KOT number for a table.
func NextRevKOTNumber(tx *gorm.DB, tableID uint) (int, error) {
	var maxRev *int
	err := tx.Model(&models.BillItem{}).
		Where("table_id = ?", tableID).
		Select("MAX(rev_kot_no)").
		Scan(&maxRev).Error
	if err != nil {
		return 0, err
	}

	if maxRev == nil {
		return 1, nil
	}
	return *maxRev + 1, nil
}
