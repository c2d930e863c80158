package models

import "time"

// Reversal phase relative to bill printing.
const (
	ReversalBeforeBill = "before_bill"
	ReversalAfterBill  = "after_bill"
)

// ReversalLog is an append-only audit record written for every
// single-unit quantity reversal. Rows are never updated or deleted.
type ReversalLog struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	BillItemID uint     `gorm:"not null;index" json:"bill_item_id"`
	BillItem   BillItem `gorm:"foreignKey:BillItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	BillID     uint     `gorm:"not null;index" json:"bill_id"`
	OrderNo    string   `gorm:"type:varchar(30)" json:"order_no"`
	ItemID     uint     `gorm:"not null" json:"item_id"`

	KOTNo    int `gorm:"not null" json:"kot_no"`
	RevKOTNo int `gorm:"not null" json:"rev_kot_no"`

	QtyBefore    int `gorm:"not null" json:"qty_before"`
	QtyReversed  int `gorm:"not null" json:"qty_reversed"`
	QtyRemaining int `gorm:"not null" json:"qty_remaining"`

	Phase      string `gorm:"type:varchar(20);not null" json:"phase"`
	ReversedBy uint   `gorm:"not null" json:"reversed_by"`
	ApprovedBy *uint  `json:"approved_by,omitempty"`
	Reason     string `gorm:"type:text" json:"reason,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
