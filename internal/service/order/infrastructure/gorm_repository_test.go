package infrastructure

import (
	"context"
	"testing"
	"time"

	"bistro/internal/pkg/database"
	"bistro/internal/service/order/domain"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.Options{
		Driver:   "sqlite",
		DSN:      "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		LogLevel: "silent",
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(Models()...))
	return db
}

func TestGormOrderRepositoryRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	orders := NewGormOrderRepository(db)
	lines := NewGormOrderLineRepository(db)
	ctx := context.Background()

	createdAt := time.Date(2025, 7, 14, 12, 0, 0, 0, time.UTC)
	created, err := orders.Create(ctx, &domain.Order{UserID: 3, IsTakeOut: true, CreatedAt: createdAt, Description: "商品1 x2"})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	for _, item := range []domain.LineItem{{ItemID: 1, Quantity: 2}, {ItemID: 9, Quantity: 1}} {
		_, err := lines.Create(ctx, created.NewLine(item))
		require.NoError(t, err)
	}

	found, err := orders.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.UserID, found.UserID)
	assert.Equal(t, created.Description, found.Description)
	assert.True(t, found.IsTakeOut)
	assert.True(t, createdAt.Equal(found.CreatedAt))

	got, err := lines.FindByOrderID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ItemID)
	assert.Equal(t, int64(9), got[1].ItemID)

	require.NoError(t, lines.DeleteByOrderID(ctx, created.ID))
	require.NoError(t, orders.Delete(ctx, created.ID))
	_, err = orders.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestGormOrderRepositoryCreateMatchesStoredRow(t *testing.T) {
	orders := NewGormOrderRepository(setupTestDB(t))
	ctx := context.Background()

	created, err := orders.Create(ctx, &domain.Order{UserID: 5, CreatedAt: time.Now(), Description: "商品2 x1"})
	require.NoError(t, err)

	found, err := orders.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, created.CreatedAt.Equal(found.CreatedAt), "created=%s found=%s", created.CreatedAt, found.CreatedAt)
	assert.Zero(t, created.CreatedAt.Nanosecond()%int(time.Millisecond))
}

func TestGormOrderRepositoryJoinsTransaction(t *testing.T) {
	db := setupTestDB(t)
	orders := NewGormOrderRepository(db)
	lines := NewGormOrderLineRepository(db)
	tx := database.NewTransactor(db)

	err := tx.WithinTransaction(context.Background(), func(ctx context.Context) error {
		o, err := orders.Create(ctx, &domain.Order{UserID: 1, CreatedAt: time.Now().UTC()})
		if err != nil {
			return err
		}
		if _, err := lines.Create(ctx, o.NewLine(domain.LineItem{ItemID: 1, Quantity: 1})); err != nil {
			return err
		}
		return errors.New("line two failed")
	})
	require.Error(t, err)

	all, err := orders.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)

	var lineCount int64
	require.NoError(t, db.Model(&OrderLineModel{}).Count(&lineCount).Error)
	assert.Zero(t, lineCount)
}

func TestGormOrderRepositoryFindAllNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	orders := NewGormOrderRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := orders.Create(ctx, &domain.Order{UserID: int64(i + 1), CreatedAt: time.Now().UTC()})
		require.NoError(t, err)
	}
	all, err := orders.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Greater(t, all[0].ID, all[2].ID)
}
