package infrastructure

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"bistro/internal/pkg/database"
	"bistro/internal/service/promotion/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var now = time.Date(2025, 7, 14, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.Options{
		Driver:   "sqlite",
		DSN:      "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		LogLevel: "silent",
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&CouponModel{}))
	return db
}

func newCoupon(code string, expiresAt time.Time) *domain.Coupon {
	return &domain.Coupon{
		UserID:         1,
		Code:           code,
		DiscountAmount: decimal.NewFromInt(20),
		DiscountType:   domain.DiscountTypePercentage,
		ExpiresAt:      expiresAt,
		CreatedAt:      now,
	}
}

func TestGormCouponRepositoryCreateAndFind(t *testing.T) {
	repo := NewGormCouponRepository(setupTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, newCoupon("SAVE20", now.Add(24*time.Hour)))
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	byCode, err := repo.FindByCode(ctx, "SAVE20")
	require.NoError(t, err)

	for _, found := range []*domain.Coupon{byID, byCode} {
		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, created.Code, found.Code)
		assert.True(t, created.DiscountAmount.Equal(found.DiscountAmount))
		assert.Equal(t, created.DiscountType, found.DiscountType)
		assert.True(t, created.ExpiresAt.Equal(found.ExpiresAt))
		assert.False(t, found.IsUsed)
	}

	_, err = repo.FindByCode(ctx, "NOPE")
	assert.ErrorIs(t, err, domain.ErrCouponNotFound)
}

func TestGormCouponRepositoryCreateMatchesStoredRow(t *testing.T) {
	repo := NewGormCouponRepository(setupTestDB(t))
	ctx := context.Background()

	wallClock := time.Now()
	coupon := newCoupon("THIRD", wallClock.Add(72*time.Hour+123456789*time.Nanosecond))
	coupon.DiscountAmount = decimal.RequireFromString("33.333333333333333333")
	coupon.CreatedAt = wallClock

	created, err := repo.Create(ctx, coupon)
	require.NoError(t, err)
	assert.True(t, created.DiscountAmount.Equal(decimal.RequireFromString("33.33")), created.DiscountAmount.String())

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, created.DiscountAmount.Equal(found.DiscountAmount), "created=%s found=%s", created.DiscountAmount, found.DiscountAmount)
	assert.True(t, created.CreatedAt.Equal(found.CreatedAt), "created=%s found=%s", created.CreatedAt, found.CreatedAt)
	assert.True(t, created.ExpiresAt.Equal(found.ExpiresAt), "created=%s found=%s", created.ExpiresAt, found.ExpiresAt)
	assert.Zero(t, found.CreatedAt.Nanosecond()%int(time.Millisecond))
}

func TestGormCouponRepositoryUniqueCode(t *testing.T) {
	repo := NewGormCouponRepository(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, newCoupon("SAVE20", now.Add(time.Hour)))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newCoupon("SAVE20", now.Add(time.Hour)))
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)

	other, err := repo.Create(ctx, newCoupon("OTHER", now.Add(time.Hour)))
	require.NoError(t, err)
	other.Code = "SAVE20"
	_, err = repo.Update(ctx, other)
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)
}

func TestGormCouponRepositoryUseCoupon(t *testing.T) {
	repo := NewGormCouponRepository(setupTestDB(t))
	ctx := context.Background()

	live, err := repo.Create(ctx, newCoupon("LIVE", now.Add(time.Hour)))
	require.NoError(t, err)
	stale, err := repo.Create(ctx, newCoupon("STALE", now.Add(-time.Hour)))
	require.NoError(t, err)

	used, err := repo.UseCoupon(ctx, live.ID, now)
	require.NoError(t, err)
	assert.True(t, used.IsUsed)

	_, err = repo.UseCoupon(ctx, live.ID, now)
	assert.ErrorIs(t, err, domain.ErrCouponAlreadyUsed)

	_, err = repo.UseCoupon(ctx, stale.ID, now)
	assert.ErrorIs(t, err, domain.ErrCouponExpired)

	_, err = repo.UseCoupon(ctx, 999, now)
	assert.ErrorIs(t, err, domain.ErrCouponNotFound)
}

func TestGormCouponRepositoryConcurrentUse(t *testing.T) {
	repo := NewGormCouponRepository(setupTestDB(t))
	created, err := repo.Create(context.Background(), newCoupon("ONCE", now.Add(time.Hour)))
	require.NoError(t, err)

	var ok int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.UseCoupon(context.Background(), created.ID, now); err == nil {
				atomic.AddInt32(&ok, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), ok)
}

func TestGormCouponRepositoryUpdateNeverClearsUse(t *testing.T) {
	repo := NewGormCouponRepository(setupTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, newCoupon("KEEP", now.Add(time.Hour)))
	require.NoError(t, err)
	stale := *created

	_, err = repo.UseCoupon(ctx, created.ID, now)
	require.NoError(t, err)

	stale.DiscountAmount = decimal.NewFromInt(30)
	updated, err := repo.Update(ctx, &stale)
	require.NoError(t, err)
	assert.True(t, updated.IsUsed)
	assert.True(t, updated.DiscountAmount.Equal(decimal.NewFromInt(30)))

	stale.ID = 999
	_, err = repo.Update(ctx, &stale)
	assert.ErrorIs(t, err, domain.ErrCouponNotFound)
}

func TestGormCouponRepositoryFindByUserID(t *testing.T) {
	repo := NewGormCouponRepository(setupTestDB(t))
	ctx := context.Background()

	for i, code := range []string{"A", "B", "C"} {
		c := newCoupon(code, now.Add(time.Hour))
		c.UserID = int64(i%2 + 1)
		_, err := repo.Create(ctx, c)
		require.NoError(t, err)
	}
	mine, err := repo.FindByUserID(ctx, 2)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "B", mine[0].Code)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
