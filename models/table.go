package models

import "time"

const (
	TableStatusVacant   = "vacant"
	TableStatusOccupied = "occupied"
)

type Table struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(50);not null" json:"name"`
	OutletID  uint      `gorm:"not null;index" json:"outlet_id"`
	DeptID    uint      `json:"dept_id"`
	HotelID   uint      `json:"hotel_id"`
	Status    string    `gorm:"type:varchar(20);not null;default:'vacant'" json:"status"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
