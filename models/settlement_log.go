package models

import "time"

// SettlementLog records old and new payment type/amount on every
// settlement edit, replacement or reversal. Nil new values mean the
// settlement was removed or reversed. Append-only.
type SettlementLog struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	SettlementID   uint       `gorm:"not null;index" json:"settlement_id"`
	OldPaymentType *string    `gorm:"type:varchar(50)" json:"old_payment_type,omitempty"`
	OldAmount      *float64   `gorm:"type:decimal(12,2)" json:"old_amount,omitempty"`
	NewPaymentType *string    `gorm:"type:varchar(50)" json:"new_payment_type,omitempty"`
	NewAmount      *float64   `gorm:"type:decimal(12,2)" json:"new_amount,omitempty"`
	EditedBy       string     `gorm:"type:varchar(100)" json:"edited_by"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
}
