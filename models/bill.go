package models

import "time"

// Discount policy kinds carried on the bill header. A percentage policy
// gives each line a proportional share; a fixed policy writes the full
// fixed amount on every line.
const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

// Bill is the order header: the aggregate root for one dining session of
// a table or sub-table. At most one non-cancelled, non-settled bill may
// exist per billing target at any time.
type Bill struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OutletID   uint      `gorm:"not null;index" json:"outlet_id"`
	HotelID    uint      `json:"hotel_id"`
	TableID    uint      `gorm:"not null;index" json:"table_id"`
	Table      Table     `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	SubTableID *uint     `gorm:"index" json:"sub_table_id,omitempty"`
	SubTable   *SubTable `gorm:"foreignKey:SubTableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`

	// BillSeq is the per-outlet sequence; OrderNo is the printable form
	// with the outlet's configured prefix.
	BillSeq int    `gorm:"not null" json:"bill_seq"`
	OrderNo string `gorm:"type:varchar(30);not null;index" json:"order_no"`
	KOTNo   int    `json:"kot_no"` // latest KOT batch stamped on this bill

	GrossAmt float64 `gorm:"type:decimal(12,2);not null;default:0.00" json:"gross_amt"`
	Discount float64 `gorm:"type:decimal(12,2);not null;default:0.00" json:"discount"`
	CGSTAmt  float64 `gorm:"type:decimal(12,2);not null;default:0.00" json:"cgst_amt"`
	SGSTAmt  float64 `gorm:"type:decimal(12,2);not null;default:0.00" json:"sgst_amt"`
	IGSTAmt  float64 `gorm:"type:decimal(12,2);not null;default:0.00" json:"igst_amt"`
	CESSAmt  float64 `gorm:"type:decimal(12,2);not null;default:0.00" json:"cess_amt"`
	RoundOff float64 `gorm:"type:decimal(12,2);not null;default:0.00" json:"round_off"`
	NetAmt   float64 `gorm:"type:decimal(12,2);not null;default:0.00" json:"net_amt"`
	// RevAmt accumulates the value of reversed units (unit rate per
	// single-unit reversal).
	RevAmt float64 `gorm:"type:decimal(12,2);not null;default:0.00" json:"rev_amt"`

	DiscountType string  `gorm:"type:varchar(20)" json:"discount_type"`
	DiscPer      float64 `gorm:"type:decimal(5,2);not null;default:0.00" json:"disc_per"`
	DiscFixed    float64 `gorm:"type:decimal(12,2);not null;default:0.00" json:"disc_fixed"`

	IsBilled      bool `gorm:"not null;default:false" json:"is_billed"`
	IsSettled     bool `gorm:"not null;default:false" json:"is_settled"`
	IsCancelled   bool `gorm:"not null;default:false" json:"is_cancelled"`
	IsReverseBill bool `gorm:"not null;default:false" json:"is_reverse_bill"`
	IsDayEnd      bool `gorm:"not null;default:false" json:"is_day_end"`

	CreatedBy uint       `json:"created_by"`
	BilledAt  *time.Time `json:"billed_at,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`

	Items []BillItem `gorm:"foreignKey:BillID" json:"items"`
}
