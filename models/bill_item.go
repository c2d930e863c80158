package models

import "time"

// BillItem is one order line: a single KOT insertion of an item.
// Quantities are never edited downward; reversals increment RevQty so the
// original order stays on record. Net quantity is Qty - RevQty.
type BillItem struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	BillID uint `gorm:"not null;index" json:"bill_id"`
	Bill   Bill `gorm:"foreignKey:BillID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	ItemID   uint     `gorm:"not null" json:"item_id"`
	Item     MenuItem `gorm:"foreignKey:ItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	TableID  uint     `gorm:"not null;index" json:"table_id"`
	OutletID uint     `gorm:"not null;index" json:"outlet_id"`
	DeptID   uint     `json:"dept_id"`
	HotelID  uint     `json:"hotel_id"`

	Qty    int     `gorm:"not null" json:"qty"`
	RevQty int     `gorm:"not null;default:0" json:"rev_qty"`
	Rate   float64 `gorm:"type:decimal(12,2);not null" json:"rate"`

	CGSTPer float64 `gorm:"type:decimal(5,2);not null;default:0.00" json:"cgst_per"`
	CGSTAmt float64 `gorm:"type:decimal(12,2);not null;default:0.00" json:"cgst_amt"`
	SGSTPer float64 `gorm:"type:decimal(5,2);not null;default:0.00" json:"sgst_per"`
	SGSTAmt float64 `gorm:"type:decimal(12,2);not null;default:0.00" json:"sgst_amt"`
	IGSTPer float64 `gorm:"type:decimal(5,2);not null;default:0.00" json:"igst_per"`
	IGSTAmt float64 `gorm:"type:decimal(12,2);not null;default:0.00" json:"igst_amt"`
	CESSPer float64 `gorm:"type:decimal(5,2);not null;default:0.00" json:"cess_per"`
	CESSAmt float64 `gorm:"type:decimal(12,2);not null;default:0.00" json:"cess_amt"`

	DiscountAmt float64 `gorm:"type:decimal(12,2);not null;default:0.00" json:"discount_amt"`

	KOTNo     int        `gorm:"not null;index" json:"kot_no"`
	RevKOTNo  *int       `json:"rev_kot_no,omitempty"`
	KOTUsedAt time.Time  `gorm:"not null;index" json:"kot_used_at"`

	IsBilled    bool `gorm:"not null;default:false" json:"is_billed"`
	IsSettled   bool `gorm:"not null;default:false" json:"is_settled"`
	IsCancelled bool `gorm:"not null;default:false" json:"is_cancelled"`
	// IsNCKOT marks a no-charge line (staff meal, complimentary).
	IsNCKOT   bool   `gorm:"not null;default:false" json:"is_nckot"`
	NCName    string `gorm:"type:varchar(100)" json:"nc_name,omitempty"`
	NCPurpose string `gorm:"type:varchar(255)" json:"nc_purpose,omitempty"`

	SpecialInst string `gorm:"type:text" json:"special_inst,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// NetQty returns the effective quantity after reversals.
func (bi *BillItem) NetQty() int {
	return bi.Qty - bi.RevQty
}
