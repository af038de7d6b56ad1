package infrastructure

import (
	"time"

	"github.com/shopspring/decimal"
)

// CouponModel 对应数据库中的 coupons 表，code 上的唯一索引是并发创建时的最后防线
type CouponModel struct {
	ID             int64           `gorm:"primaryKey;autoIncrement"`
	UserID         int64           `gorm:"index;not null"`
	Code           string          `gorm:"size:64;uniqueIndex;not null"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	DiscountType   string          `gorm:"size:16;not null"`
	IsUsed         bool            `gorm:"not null;default:false"`
	ExpiresAt      time.Time       `gorm:"not null"`
	CreatedAt      time.Time
}

// TableName 指定 GORM 应该使用的表名
func (CouponModel) TableName() string {
	return "coupons"
}
