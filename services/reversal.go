package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/restropos/billing-app/models"
)

// ReversalService decrements line quantities one unit at a time, keeping
// the ordered quantity on record and writing an audit row per unit.
type ReversalService struct {
	DB *gorm.DB
}

func NewReversalService(db *gorm.DB) *ReversalService {
	return &ReversalService{DB: db}
}

// ReversalRequest identifies the acting user and optional approver for
// one single-unit reversal.
type ReversalRequest struct {
	LineID     uint   `json:"line_id"`
	ReversedBy uint   `json:"reversed_by"`
	ApprovedBy *uint  `json:"approved_by,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// ReversalResult reports what remains on the line after the reversal.
type ReversalResult struct {
	LineID       uint `json:"line_id"`
	RevKOTNo     int  `json:"rev_kot_no"`
	QtyRemaining int  `json:"qty_remaining"`
}

// ReverseQuantity reverses exactly one unit of an order line. Fails with
// ErrNoQuantityAvailable when nothing remains; otherwise it bumps the
// line's reversed quantity, allocates a reversal-KOT number, accumulates
// the unit rate on the bill header, logs an audit entry classified by
// the bill's billed state, and re-occupies the table.
func (s *ReversalService) ReverseQuantity(req ReversalRequest) (*ReversalResult, error) {
	var result ReversalResult

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		r, err := s.reverseOneUnit(tx, req)
		if err != nil {
			return err
		}
		result = *r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// reverseOneUnit is the single-unit core shared by the one-line and the
// bulk path. Runs inside the caller's transaction.
func (s *ReversalService) reverseOneUnit(tx *gorm.DB, req ReversalRequest) (*ReversalResult, error) {
	var line models.BillItem
	if err := tx.First(&line, req.LineID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLineNotFound
		}
		return nil, err
	}

	if line.Qty-line.RevQty <= 0 {
		return nil, ErrNoQuantityAvailable
	}

	var bill models.Bill
	if err := tx.First(&bill, line.BillID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBillNotFound
		}
		return nil, err
	}

	revKOT, err := NextRevKOTNumber(tx, line.TableID)
	if err != nil {
		return nil, err
	}

	qtyBefore := line.Qty - line.RevQty
	line.RevQty++
	line.RevKOTNo = &revKOT
	if err := tx.Model(&line).Updates(map[string]interface{}{
		"rev_qty":    line.RevQty,
		"rev_kot_no": revKOT,
	}).Error; err != nil {
		return nil, err
	}

	if err := tx.Model(&bill).
		Update("rev_amt", gorm.Expr("rev_amt + ?", line.Rate)).Error; err != nil {
		return nil, err
	}

	phase := models.ReversalBeforeBill
	if bill.IsBilled {
		phase = models.ReversalAfterBill
	}

	// Audit writes are never optional: a failed log row aborts the
	// whole reversal.
	log := models.ReversalLog{
		BillItemID:   line.ID,
		BillID:       bill.ID,
		OrderNo:      bill.OrderNo,
		ItemID:       line.ItemID,
		KOTNo:        line.KOTNo,
		RevKOTNo:     revKOT,
		QtyBefore:    qtyBefore,
		QtyReversed:  1,
		QtyRemaining: line.Qty - line.RevQty,
		Phase:        phase,
		ReversedBy:   req.ReversedBy,
		ApprovedBy:   req.ApprovedBy,
		Reason:       req.Reason,
	}
	if err := tx.Create(&log).Error; err != nil {
		return nil, err
	}

	billing := &BillingService{DB: s.DB}
	if err := billing.RecomputeTotals(tx, bill.ID); err != nil {
		return nil, err
	}

	if err := OccupyTable(tx, line.TableID); err != nil {
		return nil, err
	}

	return &ReversalResult{
		LineID:       line.ID,
		RevKOTNo:     revKOT,
		QtyRemaining: line.Qty - line.RevQty,
	}, nil
}

// ReverseAllOpenQuantities reverses every outstanding unit on the
// table's open bill, in line-insertion order, one audit entry per unit.
// The privileged confirmation gating this operation (admin password
// re-check) lives with the identity provider, not here.
func (s *ReversalService) ReverseAllOpenQuantities(tableID uint, req ReversalRequest) ([]ReversalResult, error) {
	var results []ReversalResult

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var bill models.Bill
		err := tx.Where("table_id = ? AND is_cancelled = ? AND is_settled = ?", tableID, false, false).
			Order("id DESC").
			First(&bill).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBillNotFound
			}
			return err
		}

		var lines []models.BillItem
		if err := tx.Where("bill_id = ? AND is_cancelled = ?", bill.ID, false).
			Order("id ASC").Find(&lines).Error; err != nil {
			return err
		}

		for _, line := range lines {
			for line.Qty-line.RevQty > 0 {
				unitReq := req
				unitReq.LineID = line.ID
				r, err := s.reverseOneUnit(tx, unitReq)
				if err != nil {
					return err
				}
				results = append(results, *r)
				line.RevQty++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
