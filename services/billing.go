package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/restropos/billing-app/models"
	"github.com/restropos/billing-app/utils"
)

// BillingService owns the bill lifecycle: the one-open-bill-per-table
// invariant, KOT batch appends and the header total recompute.
type BillingService struct {
	DB *gorm.DB
}

func NewBillingService(db *gorm.DB) *BillingService {
	return &BillingService{DB: db}
}

// KOTLine is one submitted order line. Rate and tax percentages may be
// omitted; they are then resolved from the menu item (the price/tax
// lookup seam). Explicit tax amounts win over derived ones.
type KOTLine struct {
	ItemID      uint     `json:"item_id" binding:"required"`
	Qty         int      `json:"qty"`
	Rate        float64  `json:"rate"`
	CGSTPer     float64  `json:"cgst_per"`
	SGSTPer     float64  `json:"sgst_per"`
	IGSTPer     float64  `json:"igst_per"`
	CESSPer     float64  `json:"cess_per"`
	CGSTAmt     *float64 `json:"cgst_amt,omitempty"`
	SGSTAmt     *float64 `json:"sgst_amt,omitempty"`
	IGSTAmt     *float64 `json:"igst_amt,omitempty"`
	CESSAmt     *float64 `json:"cess_amt,omitempty"`
	IsNCKOT     bool     `json:"is_nckot"`
	NCName      string   `json:"nc_name"`
	NCPurpose   string   `json:"nc_purpose"`
	SpecialInst string   `json:"special_inst"`
}

// DiscountReq updates the bill's discount policy alongside a KOT.
type DiscountReq struct {
	Type    string  `json:"type" binding:"required"` // percentage | fixed
	Percent float64 `json:"percent"`
	Fixed   float64 `json:"fixed"`
}

// KOTRequest is one waiter action: append a batch of lines to the
// table's open bill, creating the bill if the table is vacant.
type KOTRequest struct {
	OutletID   uint         `json:"outlet_id" binding:"required"`
	HotelID    uint         `json:"hotel_id"`
	DeptID     uint         `json:"dept_id"`
	TableID    uint         `json:"table_id"`
	SubTableID *uint        `json:"sub_table_id,omitempty"`
	UserID     uint         `json:"user_id"`
	Discount   *DiscountReq `json:"discount,omitempty"`
	Lines      []KOTLine    `json:"lines"`
}

// AppendKOT resolves or creates the open bill for the request's billing
// target, stamps a fresh outlet-day KOT number on the submitted lines,
// recomputes header totals and occupies the table. One transaction:
// either the whole batch lands or none of it does.
func (s *BillingService) AppendKOT(req KOTRequest) (*models.Bill, int, error) {
	if req.TableID == 0 {
		return nil, 0, ErrTableRequired
	}
	if len(req.Lines) == 0 {
		return nil, 0, ErrEmptyLines
	}
	if req.Discount != nil &&
		req.Discount.Type != models.DiscountTypePercentage &&
		req.Discount.Type != models.DiscountTypeFixed {
		return nil, 0, ErrInvalidDiscount
	}

	var bill *models.Bill
	var kotNo int

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var table models.Table
		if err := tx.First(&table, req.TableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTableNotFound
			}
			return err
		}

		var err error
		bill, err = s.openOrReuseBill(tx, &table, req)
		if err != nil {
			return err
		}

		// A discount supplied with the KOT replaces the bill's policy
		// before any line is written, so the new lines and the recompute
		// both see the latest policy.
		if req.Discount != nil {
			bill.DiscountType = req.Discount.Type
			bill.DiscPer = req.Discount.Percent
			bill.DiscFixed = req.Discount.Fixed
			if err := tx.Model(bill).Updates(map[string]interface{}{
				"discount_type": bill.DiscountType,
				"disc_per":      bill.DiscPer,
				"disc_fixed":    bill.DiscFixed,
			}).Error; err != nil {
				return err
			}
		}

		now := time.Now()
		kotNo, err = NextKOTNumber(tx, req.OutletID, now)
		if err != nil {
			return err
		}

		for _, line := range req.Lines {
			// Non-positive quantities are reversals already applied
			// through the reversal path, not new insertions.
			if line.Qty <= 0 {
				continue
			}

			item, err := s.buildLine(tx, bill, &table, req, line, kotNo, now)
			if err != nil {
				return err
			}
			if err := tx.Create(item).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(bill).Update("kot_no", kotNo).Error; err != nil {
			return err
		}

		if err := s.RecomputeTotals(tx, bill.ID); err != nil {
			return err
		}

		if req.SubTableID != nil {
			if err := tx.Model(&models.SubTable{}).
				Where("id = ?", *req.SubTableID).
				Updates(map[string]interface{}{
					"status": models.SubTableRunning,
					"kot_no": kotNo,
				}).Error; err != nil {
				return err
			}
		}

		return OccupyTable(tx, table.ID)
	})
	if err != nil {
		return nil, 0, err
	}

	if err := s.DB.Preload("Items", "is_cancelled = ?", false).First(bill, bill.ID).Error; err != nil {
		return nil, 0, err
	}
	return bill, kotNo, nil
}

// openOrReuseBill returns the table's current non-cancelled, non-settled
// bill, or creates one with a fresh bill number. Must run inside the
// same transaction as the line inserts that follow it.
func (s *BillingService) openOrReuseBill(tx *gorm.DB, table *models.Table, req KOTRequest) (*models.Bill, error) {
	query := tx.Where("table_id = ? AND is_cancelled = ? AND is_settled = ?", table.ID, false, false)
	if req.SubTableID != nil {
		query = query.Where("sub_table_id = ?", *req.SubTableID)
	} else {
		query = query.Where("sub_table_id IS NULL")
	}

	var bill models.Bill
	err := query.Order("id DESC").First(&bill).Error
	if err == nil {
		return &bill, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	seq, orderNo, err := NextBillNumber(tx, req.OutletID)
	if err != nil {
		return nil, err
	}

	bill = models.Bill{
		OutletID:   req.OutletID,
		HotelID:    req.HotelID,
		TableID:    table.ID,
		SubTableID: req.SubTableID,
		BillSeq:    seq,
		OrderNo:    orderNo,
		CreatedBy:  req.UserID,
	}
	if err := tx.Create(&bill).Error; err != nil {
		return nil, err
	}
	return &bill, nil
}

// buildLine fills one BillItem from a submitted line, resolving missing
// rate/tax figures from the menu item and deriving tax amounts from the
// percentages when explicit amounts were not supplied.
func (s *BillingService) buildLine(tx *gorm.DB, bill *models.Bill, table *models.Table, req KOTRequest, line KOTLine, kotNo int, now time.Time) (*models.BillItem, error) {
	rate := line.Rate
	cgstPer, sgstPer := line.CGSTPer, line.SGSTPer
	igstPer, cessPer := line.IGSTPer, line.CESSPer

	if rate == 0 || (cgstPer == 0 && sgstPer == 0 && igstPer == 0 && cessPer == 0) {
		var menu models.MenuItem
		if err := tx.First(&menu, line.ItemID).Error; err == nil {
			if rate == 0 {
				rate = menu.Rate
			}
			if cgstPer == 0 && sgstPer == 0 && igstPer == 0 && cessPer == 0 {
				cgstPer, sgstPer = menu.CGSTPer, menu.SGSTPer
				igstPer, cessPer = menu.IGSTPer, menu.CESSPer
			}
		}
	}

	qty := decimal.NewFromInt(int64(line.Qty))
	subtotal := qty.Mul(decimal.NewFromFloat(rate))

	subtotalF, _ := subtotal.Float64()
	taxAmt := func(explicit *float64, per float64) float64 {
		if explicit != nil && *explicit != 0 {
			return *explicit
		}
		return utils.PercentOf(subtotalF, per)
	}

	item := &models.BillItem{
		BillID:      bill.ID,
		ItemID:      line.ItemID,
		TableID:     table.ID,
		OutletID:    req.OutletID,
		DeptID:      req.DeptID,
		HotelID:     req.HotelID,
		Qty:         line.Qty,
		Rate:        rate,
		CGSTPer:     cgstPer,
		CGSTAmt:     taxAmt(line.CGSTAmt, cgstPer),
		SGSTPer:     sgstPer,
		SGSTAmt:     taxAmt(line.SGSTAmt, sgstPer),
		IGSTPer:     igstPer,
		IGSTAmt:     taxAmt(line.IGSTAmt, igstPer),
		CESSPer:     cessPer,
		CESSAmt:     taxAmt(line.CESSAmt, cessPer),
		DiscountAmt: lineDiscount(bill, subtotal),
		KOTNo:       kotNo,
		KOTUsedAt:   now,
		IsNCKOT:     line.IsNCKOT,
		SpecialInst: line.SpecialInst,
	}
	if line.IsNCKOT {
		item.NCName = line.NCName
		item.NCPurpose = line.NCPurpose
	}
	return item, nil
}

// lineDiscount applies the bill's discount policy to one line subtotal.
// The fixed policy writes the entire fixed amount on every line, not a
// prorated share; downstream reports reconcile against exactly that, so
// do not "fix" it here.
func lineDiscount(bill *models.Bill, subtotal decimal.Decimal) float64 {
	switch bill.DiscountType {
	case models.DiscountTypePercentage:
		f, _ := subtotal.Float64()
		return utils.PercentOf(f, bill.DiscPer)
	case models.DiscountTypeFixed:
		return bill.DiscFixed
	default:
		return 0
	}
}

// RecomputeTotals re-derives every monetary header field from the bill's
// non-cancelled lines. Full scan, not an incremental delta: a discount
// policy change retroactively moves every line's share, so deltas would
// drift.
func (s *BillingService) RecomputeTotals(tx *gorm.DB, billID uint) error {
	var bill models.Bill
	if err := tx.First(&bill, billID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBillNotFound
		}
		return err
	}

	var items []models.BillItem
	if err := tx.Where("bill_id = ? AND is_cancelled = ?", billID, false).
		Order("id ASC").Find(&items).Error; err != nil {
		return err
	}

	gross := decimal.Zero
	discount := decimal.Zero
	cgst, sgst, igst, cess := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero

	for i := range items {
		it := &items[i]
		subtotal := decimal.NewFromInt(int64(it.Qty)).Mul(decimal.NewFromFloat(it.Rate))

		share := lineDiscount(&bill, subtotal)
		if share != it.DiscountAmt {
			if err := tx.Model(it).Update("discount_amt", share).Error; err != nil {
				return err
			}
		}

		gross = gross.Add(subtotal)
		discount = discount.Add(decimal.NewFromFloat(share))
		cgst = cgst.Add(decimal.NewFromFloat(it.CGSTAmt))
		sgst = sgst.Add(decimal.NewFromFloat(it.SGSTAmt))
		igst = igst.Add(decimal.NewFromFloat(it.IGSTAmt))
		cess = cess.Add(decimal.NewFromFloat(it.CESSAmt))
	}

	rawNet, _ := gross.Sub(discount).Add(cgst).Add(sgst).Add(igst).Add(cess).Float64()
	netF, roundOffF := utils.RoundWithResidue(rawNet)

	grossF, _ := gross.Round(2).Float64()
	discountF, _ := discount.Round(2).Float64()
	cgstF, _ := cgst.Round(2).Float64()
	sgstF, _ := sgst.Round(2).Float64()
	igstF, _ := igst.Round(2).Float64()
	cessF, _ := cess.Round(2).Float64()

	return tx.Model(&models.Bill{}).Where("id = ?", billID).Updates(map[string]interface{}{
		"gross_amt": grossF,
		"discount":  discountF,
		"cgst_amt":  cgstF,
		"sgst_amt":  sgstF,
		"igst_amt":  igstF,
		"cess_amt":  cessF,
		"round_off": roundOffF,
		"net_amt":   netF,
	}).Error
}

// MarkBilled transitions a bill from open to billed: header flag,
// billed timestamp and every line's billed flag, one transaction.
func (s *BillingService) MarkBilled(billID uint) (*models.Bill, error) {
	var bill models.Bill
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&bill, billID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBillNotFound
			}
			return err
		}

		now := time.Now()
		if err := tx.Model(&bill).Updates(map[string]interface{}{
			"is_billed": true,
			"billed_at": now,
		}).Error; err != nil {
			return err
		}

		return tx.Model(&models.BillItem{}).
			Where("bill_id = ?", billID).
			Update("is_billed", true).Error
	})
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

// DeleteBill is the administrative cancel: hard-deletes the header and
// all its lines, then releases the table if this was its open bill.
func (s *BillingService) DeleteBill(billID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var bill models.Bill
		if err := tx.First(&bill, billID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBillNotFound
			}
			return err
		}

		if err := tx.Where("bill_id = ?", billID).Delete(&models.BillItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Bill{}, billID).Error; err != nil {
			return err
		}

		if !bill.IsSettled && !bill.IsCancelled {
			return ReleaseTable(tx, bill.TableID)
		}
		return nil
	})
}

// OpenBillForTable returns the table's current open bill with its
// non-cancelled lines, or ErrBillNotFound.
func (s *BillingService) OpenBillForTable(tableID uint) (*models.Bill, error) {
	var bill models.Bill
	err := s.DB.Preload("Items", "is_cancelled = ?", false).
		Where("table_id = ? AND is_cancelled = ? AND is_settled = ?", tableID, false, false).
		Order("id DESC").
		First(&bill).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBillNotFound
		}
		return nil, err
	}
	return &bill, nil
}
