package infrastructure

import "time"

// OrderModel 对应数据库中的 orders 表
type OrderModel struct {
	ID          int64 `gorm:"primaryKey;autoIncrement"`
	UserID      int64 `gorm:"index;not null"`
	IsCooked    bool  `gorm:"not null;default:false"`
	IsPayment   bool  `gorm:"not null;default:false"`
	IsTakeOut   bool  `gorm:"not null;default:false"`
	CreatedAt   time.Time
	Description string `gorm:"type:varchar(1024)"`
	IsComplete  bool   `gorm:"not null;default:false"`
}

func (OrderModel) TableName() string {
	return "orders"
}

// OrderLineModel 对应数据库中的 order_lists 表
type OrderLineModel struct {
	ID       int64 `gorm:"primaryKey;autoIncrement"`
	OrderID  int64 `gorm:"index;not null"`
	ItemID   int64 `gorm:"not null"`
	Quantity int   `gorm:"not null"`
}

func (OrderLineModel) TableName() string {
	return "order_lists"
}

// Models 返回需要自动迁移的模型
func Models() []any {
	return []any{&OrderModel{}, &OrderLineModel{}}
}
