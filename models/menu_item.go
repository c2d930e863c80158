package models

import "time"

// MenuItem carries the unit price and tax percentages for an item within
// a department. It is reference data: the billing engine reads it when a
// KOT line arrives without explicit rate/tax figures.
type MenuItem struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"type:varchar(255);not null" json:"name"`
	OutletID uint   `gorm:"not null;index" json:"outlet_id"`
	DeptID   uint   `gorm:"index" json:"dept_id"`

	Rate    float64 `gorm:"type:decimal(12,2);not null" json:"rate"`
	CGSTPer float64 `gorm:"type:decimal(5,2);not null;default:0.00" json:"cgst_per"`
	SGSTPer float64 `gorm:"type:decimal(5,2);not null;default:0.00" json:"sgst_per"`
	IGSTPer float64 `gorm:"type:decimal(5,2);not null;default:0.00" json:"igst_per"`
	CESSPer float64 `gorm:"type:decimal(5,2);not null;default:0.00" json:"cess_per"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
