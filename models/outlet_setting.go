package models

import "time"

// OutletSetting holds per-outlet billing configuration, currently the
// prefix stamped on bill order numbers (e.g. "BR1-").
type OutletSetting struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OutletID   uint      `gorm:"not null;uniqueIndex" json:"outlet_id"`
	BillPrefix string    `gorm:"type:varchar(10)" json:"bill_prefix"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}
