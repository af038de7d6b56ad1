package domain

import (
	"context"
	"time"
)

// CouponRepository 定义了优惠券的持久化接口。
// 查不到记录时返回 ErrCouponNotFound，code 冲突时返回 ErrDuplicateCode。
type CouponRepository interface {
	Create(ctx context.Context, coupon *Coupon) (*Coupon, error)
	FindByID(ctx context.Context, id int64) (*Coupon, error)
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	FindByUserID(ctx context.Context, userID int64) ([]*Coupon, error)
	FindAll(ctx context.Context) ([]*Coupon, error)

	// Update 覆盖可变字段。IsUsed 只会被置为 true，不会被改回 false
	Update(ctx context.Context, coupon *Coupon) (*Coupon, error)

	// UseCoupon 是一次条件写入：只有未使用且 now 未超过 ExpiresAt 时才置为已使用。
	// 条件不满足时按当前状态返回 ErrCouponAlreadyUsed 或 ErrCouponExpired
	UseCoupon(ctx context.Context, id int64, now time.Time) (*Coupon, error)
}
