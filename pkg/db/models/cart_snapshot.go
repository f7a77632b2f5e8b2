package models

import "time"

// CartSnapshot is the durable mirror of one cart ledger. Payload holds the
// JSON encoded line item records.
type CartSnapshot struct {
	CartID    string    `gorm:"column:cart_id;primaryKey"`
	Payload   string    `gorm:"column:payload;type:text;not null"`
	ItemCount int       `gorm:"column:item_count;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table name used by migrations.
func (CartSnapshot) TableName() string {
	return "cart_snapshots"
}
