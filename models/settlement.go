package models

import "time"

// Settlement is one tender entry against a bill's order number. A bill
// settled with split payment has multiple rows sharing its OrderNo.
// IsActive=false means the tender was reversed (soft delete); the bill
// header is deliberately left untouched by a reversal.
type Settlement struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderNo     string    `gorm:"type:varchar(30);not null;index" json:"order_no"`
	HotelID     uint      `json:"hotel_id"`
	PaymentType string    `gorm:"type:varchar(50);not null" json:"payment_type"`
	Amount      float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}
