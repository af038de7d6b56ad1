// internal/service/promotion/domain/coupon.go
package domain

import (
	"time"

	"bistro/internal/pkg/apperr"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingField        = apperr.New(apperr.ErrValidation, "missing required field")
	ErrDiscountOutOfRange  = apperr.New(apperr.ErrValidation, "discount amount out of range")
	ErrDiscountPrecision   = apperr.New(apperr.ErrValidation, "discount amount must have at most 2 decimal places")
	ErrInvalidDiscountType = apperr.New(apperr.ErrValidation, "discount type must be percentage or fixed")
	ErrInvalidExpiry       = apperr.New(apperr.ErrValidation, "expiresAt must be a valid future time")
	ErrNoFieldsToUpdate    = apperr.New(apperr.ErrValidation, "no fields to update")
	ErrInvalidSubtotal     = apperr.New(apperr.ErrValidation, "subtotal must not be negative")

	ErrDuplicateCode     = apperr.New(apperr.ErrConflict, "coupon code already exists")
	ErrCouponAlreadyUsed = apperr.New(apperr.ErrConflict, "coupon already used")
	ErrCouponExpired     = apperr.New(apperr.ErrTemporal, "coupon expired")
	ErrCouponNotFound    = apperr.New(apperr.ErrNotFound, "coupon not found")
)

// Coupon 的生命周期只有 未使用 -> 已使用 一次转换
type Coupon struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"userId"`
	Code           string          `json:"code"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	DiscountType   DiscountType    `json:"discountType"`
	IsUsed         bool            `json:"isUsed"`
	ExpiresAt      time.Time       `json:"expiresAt"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Discount 返回优惠券对应的优惠规则
func (c *Coupon) Discount() (Discount, error) {
	return NewDiscount(c.DiscountType, c.DiscountAmount)
}

// IsExpired 晚于 ExpiresAt 才算过期，恰好等于时仍可使用
func (c *Coupon) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// CheckRedeemable 校验当前是否可以核销
func (c *Coupon) CheckRedeemable(now time.Time) error {
	if c.IsUsed {
		return ErrCouponAlreadyUsed
	}
	if c.IsExpired(now) {
		return ErrCouponExpired
	}
	return nil
}

// Redeem 将优惠券标记为已使用
func (c *Coupon) Redeem(now time.Time) error {
	if err := c.CheckRedeemable(now); err != nil {
		return err
	}
	c.IsUsed = true
	return nil
}

// CouponRedeemed 在核销成功后发布
type CouponRedeemed struct {
	CouponID   int64     `json:"couponId"`
	UserID     int64     `json:"userId"`
	Code       string    `json:"code"`
	RedeemedAt time.Time `json:"redeemedAt"`
}

func (CouponRedeemed) EventName() string { return "coupon.redeemed" }
