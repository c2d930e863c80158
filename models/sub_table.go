package models

import "time"

// Sub-table status values. A sub-table is a lettered child ("2A".."2Z")
// of a physical table, billed independently from its siblings.
const (
	SubTableAvailable = 0
	SubTableRunning   = 1
	SubTableBilled    = 2
)

type SubTable struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ParentTableID uint      `gorm:"not null;index" json:"parent_table_id"`
	ParentTable   Table     `gorm:"foreignKey:ParentTableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Name          string    `gorm:"type:varchar(55);not null" json:"name"`
	OutletID      uint      `gorm:"not null" json:"outlet_id"`
	DeptID        uint      `json:"dept_id"`
	HotelID       uint      `json:"hotel_id"`
	Status        int       `gorm:"not null;default:0" json:"status"`
	KOTNo         *int      `json:"kot_no,omitempty"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}
