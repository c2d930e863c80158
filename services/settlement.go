package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/restropos/billing-app/models"
	"github.com/restropos/billing-app/utils"
)

// SettlementService records tenders against bills and keeps the
// append-only settlement log. Over- and under-payment are allowed on
// purpose: the sum of tenders is reconciled downstream, not here.
type SettlementService struct {
	DB *gorm.DB
}

func NewSettlementService(db *gorm.DB) *SettlementService {
	return &SettlementService{DB: db}
}

// Tender is one payment entry in a (possibly split) settlement.
type Tender struct {
	PaymentType string  `json:"payment_type" binding:"required"`
	Amount      float64 `json:"amount"`
}

// Settle inserts one active settlement row per tender under the bill's
// order number, marks the bill and all its lines settled and billed,
// and releases the billing target.
func (s *SettlementService) Settle(billID uint, tenders []Tender) (*models.Bill, []models.Settlement, error) {
	if len(tenders) == 0 {
		return nil, nil, ErrEmptyTenders
	}

	var bill models.Bill
	var rows []models.Settlement

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&bill, billID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBillNotFound
			}
			return err
		}

		for _, t := range tenders {
			row := models.Settlement{
				OrderNo:     bill.OrderNo,
				HotelID:     bill.HotelID,
				PaymentType: t.PaymentType,
				Amount:      t.Amount,
				IsActive:    true,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			rows = append(rows, row)
		}

		if err := tx.Model(&bill).Updates(map[string]interface{}{
			"is_settled": true,
			"is_billed":  true,
			"billed_at":  gorm.Expr("CURRENT_TIMESTAMP"),
		}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.BillItem{}).
			Where("bill_id = ?", billID).
			Update("is_settled", true).Error; err != nil {
			return err
		}

		// A bill on a sub-table frees the sub-table first; the parent
		// goes vacant only when no sibling remains active.
		if bill.SubTableID != nil {
			if err := releaseSubTableTx(tx, *bill.SubTableID); err != nil {
				return err
			}
			return nil
		}
		return ReleaseTable(tx, bill.TableID)
	})
	if err != nil {
		return nil, nil, err
	}

	if err := s.DB.First(&bill, billID).Error; err != nil {
		return nil, nil, err
	}
	return &bill, rows, nil
}

// ReplaceSettlements swaps the full settlement set of an order number:
// every existing row is logged (old values, new = null) and
// hard-deleted, then the new tenders are inserted as active rows.
func (s *SettlementService) ReplaceSettlements(orderNo string, tenders []Tender, editedBy string) ([]models.Settlement, error) {
	if len(tenders) == 0 {
		return nil, ErrEmptyTenders
	}

	var rows []models.Settlement
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var existing []models.Settlement
		if err := tx.Where("order_no = ?", orderNo).Find(&existing).Error; err != nil {
			return err
		}

		for _, old := range existing {
			if err := s.writeLog(tx, &old, nil, editedBy); err != nil {
				return err
			}
			if err := tx.Delete(&models.Settlement{}, old.ID).Error; err != nil {
				return err
			}
		}

		var hotelID uint
		if len(existing) > 0 {
			hotelID = existing[0].HotelID
		} else {
			var bill models.Bill
			if err := tx.Where("order_no = ?", orderNo).First(&bill).Error; err == nil {
				hotelID = bill.HotelID
			}
		}

		for _, t := range tenders {
			row := models.Settlement{
				OrderNo:     orderNo,
				HotelID:     hotelID,
				PaymentType: t.PaymentType,
				Amount:      t.Amount,
				IsActive:    true,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			rows = append(rows, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateSettlement edits a single tender in place. The new amount must
// still match the bill's grand total; the old values go to the log
// first.
func (s *SettlementService) UpdateSettlement(id uint, paymentType string, amount float64, editedBy string) (*models.Settlement, error) {
	var row models.Settlement

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&row, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSettlementNotFound
			}
			return err
		}

		var bill models.Bill
		if err := tx.Where("order_no = ?", row.OrderNo).First(&bill).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBillNotFound
			}
			return err
		}

		if utils.Round2(amount) != utils.Round2(bill.NetAmt) {
			return ErrAmountMismatch
		}

		newRow := row
		newRow.PaymentType = paymentType
		newRow.Amount = amount
		if err := s.writeLog(tx, &row, &newRow, editedBy); err != nil {
			return err
		}

		if err := tx.Model(&row).Updates(map[string]interface{}{
			"payment_type": paymentType,
			"amount":       amount,
		}).Error; err != nil {
			return err
		}
		row.PaymentType = paymentType
		row.Amount = amount
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ReverseSettlement soft-deletes one tender: log entry plus active flag
// off. The bill header keeps its settled state; a bill with zero active
// tenders is a reconciliation half-state, not an error.
func (s *SettlementService) ReverseSettlement(id uint, editedBy string) (*models.Settlement, error) {
	var row models.Settlement

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&row, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSettlementNotFound
			}
			return err
		}

		if err := s.writeLog(tx, &row, nil, editedBy); err != nil {
			return err
		}

		if err := tx.Model(&row).Update("is_active", false).Error; err != nil {
			return err
		}
		row.IsActive = false
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *SettlementService) writeLog(tx *gorm.DB, old *models.Settlement, updated *models.Settlement, editedBy string) error {
	entry := models.SettlementLog{
		SettlementID:   old.ID,
		OldPaymentType: &old.PaymentType,
		OldAmount:      &old.Amount,
		EditedBy:       editedBy,
	}
	if updated != nil {
		entry.NewPaymentType = &updated.PaymentType
		entry.NewAmount = &updated.Amount
	}
	return tx.Create(&entry).Error
}
