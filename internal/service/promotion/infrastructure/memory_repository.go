package infrastructure

import (
	"context"
	"sort"
	"sync"
	"time"

	"bistro/internal/service/promotion/domain"
)

// MemoryCouponRepository 是进程内实现，code 唯一性和核销条件都在同一把锁内判断
type MemoryCouponRepository struct {
	mu      sync.RWMutex
	coupons map[int64]domain.Coupon
	byCode  map[string]int64
	nextID  int64
}

func NewMemoryCouponRepository() *MemoryCouponRepository {
	return &MemoryCouponRepository{
		coupons: make(map[int64]domain.Coupon),
		byCode:  make(map[string]int64),
	}
}

func (r *MemoryCouponRepository) Create(_ context.Context, coupon *domain.Coupon) (*domain.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byCode[coupon.Code]; taken {
		return nil, domain.ErrDuplicateCode
	}
	r.nextID++
	created := *coupon
	created.ID = r.nextID
	r.coupons[created.ID] = created
	r.byCode[created.Code] = created.ID
	return &created, nil
}

func (r *MemoryCouponRepository) FindByID(_ context.Context, id int64) (*domain.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.coupons[id]
	if !ok {
		return nil, domain.ErrCouponNotFound
	}
	return &c, nil
}

func (r *MemoryCouponRepository) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	r.mu.RLock()
	id, ok := r.byCode[code]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrCouponNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *MemoryCouponRepository) FindByUserID(_ context.Context, userID int64) ([]*domain.Coupon, error) {
	return r.filter(func(c *domain.Coupon) bool { return c.UserID == userID }), nil
}

func (r *MemoryCouponRepository) FindAll(_ context.Context) ([]*domain.Coupon, error) {
	return r.filter(func(*domain.Coupon) bool { return true }), nil
}

func (r *MemoryCouponRepository) filter(keep func(*domain.Coupon) bool) []*domain.Coupon {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*domain.Coupon{}
	for _, c := range r.coupons {
		c := c
		if keep(&c) {
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *MemoryCouponRepository) Update(_ context.Context, coupon *domain.Coupon) (*domain.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.coupons[coupon.ID]
	if !ok {
		return nil, domain.ErrCouponNotFound
	}
	if owner, taken := r.byCode[coupon.Code]; taken && owner != coupon.ID {
		return nil, domain.ErrDuplicateCode
	}

	updated := *coupon
	updated.CreatedAt = current.CreatedAt
	updated.IsUsed = current.IsUsed || coupon.IsUsed
	delete(r.byCode, current.Code)
	r.byCode[updated.Code] = updated.ID
	r.coupons[updated.ID] = updated
	return &updated, nil
}

func (r *MemoryCouponRepository) UseCoupon(_ context.Context, id int64, now time.Time) (*domain.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.coupons[id]
	if !ok {
		return nil, domain.ErrCouponNotFound
	}
	if err := c.Redeem(now); err != nil {
		return nil, err
	}
	r.coupons[id] = c
	return &c, nil
}
