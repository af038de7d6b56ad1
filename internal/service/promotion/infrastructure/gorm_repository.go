package infrastructure

import (
	"context"
	"time"

	"bistro/internal/pkg/database"
	"bistro/internal/service/promotion/domain"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GormCouponRepository 是 CouponRepository 的 GORM 实现
type GormCouponRepository struct {
	db *gorm.DB
}

// NewGormCouponRepository 创建一个新的 GORM 仓储实例
func NewGormCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

func (r *GormCouponRepository) Create(ctx context.Context, coupon *domain.Coupon) (*domain.Coupon, error) {
	model := FromDomainCoupon(coupon)
	model.ID = 0
	if err := database.Conn(ctx, r.db).Create(model).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return nil, domain.ErrDuplicateCode
		}
		return nil, errors.Wrap(err, "insert coupon")
	}
	return ToDomainCoupon(model), nil
}

func (r *GormCouponRepository) FindByID(ctx context.Context, id int64) (*domain.Coupon, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByCode 使用 GORM 从数据库中查找优惠券
func (r *GormCouponRepository) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	return r.first(ctx, "code = ?", code)
}

func (r *GormCouponRepository) first(ctx context.Context, query string, arg any) (*domain.Coupon, error) {
	var model CouponModel
	err := database.Conn(ctx, r.db).Where(query, arg).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCouponNotFound
		}
		return nil, errors.Wrapf(err, "find coupon where %s", query)
	}
	// 使用 Mapper 将数据库模型转换为领域模型
	return ToDomainCoupon(&model), nil
}

func (r *GormCouponRepository) FindByUserID(ctx context.Context, userID int64) ([]*domain.Coupon, error) {
	return r.find(ctx, database.Conn(ctx, r.db).Where("user_id = ?", userID))
}

func (r *GormCouponRepository) FindAll(ctx context.Context) ([]*domain.Coupon, error) {
	return r.find(ctx, database.Conn(ctx, r.db))
}

func (r *GormCouponRepository) find(_ context.Context, q *gorm.DB) ([]*domain.Coupon, error) {
	var models []CouponModel
	if err := q.Order("id ASC").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "list coupons")
	}
	coupons := make([]*domain.Coupon, len(models))
	for i := range models {
		coupons[i] = ToDomainCoupon(&models[i])
	}
	return coupons, nil
}

// Update 只更新可变字段；is_used 只会写入 true，避免把并发核销的结果覆盖回去
func (r *GormCouponRepository) Update(ctx context.Context, coupon *domain.Coupon) (*domain.Coupon, error) {
	model := FromDomainCoupon(coupon)
	updateData := map[string]interface{}{
		"user_id":         model.UserID,
		"code":            model.Code,
		"discount_amount": model.DiscountAmount,
		"discount_type":   model.DiscountType,
		"expires_at":      model.ExpiresAt,
	}
	if model.IsUsed {
		updateData["is_used"] = true
	}

	err := database.Conn(ctx, r.db).Model(&CouponModel{}).Where("id = ?", coupon.ID).Updates(updateData).Error
	if err != nil {
		if database.IsDuplicateKey(err) {
			return nil, domain.ErrDuplicateCode
		}
		return nil, errors.Wrapf(err, "update coupon %d", coupon.ID)
	}
	return r.FindByID(ctx, coupon.ID)
}

// UseCoupon 通过带条件的 UPDATE 完成核销，影响行数为 0 说明条件已不满足
func (r *GormCouponRepository) UseCoupon(ctx context.Context, id int64, now time.Time) (*domain.Coupon, error) {
	res := database.Conn(ctx, r.db).Model(&CouponModel{}).
		Where("id = ? AND is_used = ? AND expires_at >= ?", id, false, now.UTC()).
		Update("is_used", true)
	if res.Error != nil {
		return nil, errors.Wrapf(res.Error, "redeem coupon %d", id)
	}

	current, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 1 {
		return current, nil
	}
	if current.IsExpired(now) && !current.IsUsed {
		return nil, domain.ErrCouponExpired
	}
	return nil, domain.ErrCouponAlreadyUsed
}
