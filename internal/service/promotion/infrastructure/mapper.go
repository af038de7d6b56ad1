package infrastructure

import (
	"time"

	"bistro/internal/service/promotion/domain"
)

// ToDomainCoupon 将数据库模型转换为领域模型
func ToDomainCoupon(model *CouponModel) *domain.Coupon {
	if model == nil {
		return nil
	}
	return &domain.Coupon{
		ID:             model.ID,
		UserID:         model.UserID,
		Code:           model.Code,
		DiscountAmount: model.DiscountAmount,
		DiscountType:   domain.DiscountType(model.DiscountType),
		IsUsed:         model.IsUsed,
		ExpiresAt:      model.ExpiresAt.UTC(),
		CreatedAt:      model.CreatedAt.UTC(),
	}
}

// FromDomainCoupon 将领域模型转换为数据库模型。
// 金额按列精度保留两位，时间统一为 UTC 并截断到毫秒，与 datetime(3) 一致，
// 这样 Create 返回的记录和之后读出的记录相同
func FromDomainCoupon(dmn *domain.Coupon) *CouponModel {
	if dmn == nil {
		return nil
	}
	return &CouponModel{
		ID:             dmn.ID,
		UserID:         dmn.UserID,
		Code:           dmn.Code,
		DiscountAmount: dmn.DiscountAmount.Round(domain.AmountScale),
		DiscountType:   string(dmn.DiscountType),
		IsUsed:         dmn.IsUsed,
		ExpiresAt:      dmn.ExpiresAt.UTC().Truncate(time.Millisecond),
		CreatedAt:      dmn.CreatedAt.UTC().Truncate(time.Millisecond),
	}
}
