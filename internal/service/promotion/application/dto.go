package application

import (
	"bistro/internal/service/promotion/domain"

	"github.com/shopspring/decimal"
)

// CreateCouponRequest 是创建优惠券的请求体，所有字段必填
type CreateCouponRequest struct {
	UserID         int64            `json:"userId"`
	Code           string           `json:"code"`
	DiscountAmount *decimal.Decimal `json:"discountAmount"`
	DiscountType   string           `json:"discountType"`
	ExpiresAt      string           `json:"expiresAt"`
}

// UpdateCouponRequest 是部分更新的请求体，nil 表示不修改
type UpdateCouponRequest struct {
	UserID         *int64           `json:"userId"`
	Code           *string          `json:"code"`
	DiscountAmount *decimal.Decimal `json:"discountAmount"`
	DiscountType   *string          `json:"discountType"`
	IsUsed         *bool            `json:"isUsed"`
	ExpiresAt      *string          `json:"expiresAt"`
}

func (r *UpdateCouponRequest) empty() bool {
	return r.UserID == nil && r.Code == nil && r.DiscountAmount == nil &&
		r.DiscountType == nil && r.IsUsed == nil && r.ExpiresAt == nil
}

// UseCouponResponse 是核销优惠券的响应体
type UseCouponResponse struct {
	Coupon  *domain.Coupon `json:"coupon"`
	Message string         `json:"message"`
}

// DiscountQuote 是对某个小计金额试算优惠的结果
type DiscountQuote struct {
	CouponID     int64               `json:"couponId"`
	DiscountType domain.DiscountType `json:"discountType"`
	Subtotal     decimal.Decimal     `json:"subtotal"`
	Discount     decimal.Decimal     `json:"discount"`
	FinalAmount  decimal.Decimal     `json:"finalAmount"`
}
