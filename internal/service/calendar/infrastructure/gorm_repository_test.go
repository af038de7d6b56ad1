package infrastructure

import (
	"context"
	"testing"
	"time"

	"bistro/internal/pkg/database"
	"bistro/internal/service/calendar/domain"

	"github.com/google/uuid"
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
	require.NoError(t, db.AutoMigrate(&CalendarModel{}))
	return db
}

func ms(year int, month time.Month, day int) int64 {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC).UnixMilli()
}

func TestGormCalendarRepositoryMonthUniqueness(t *testing.T) {
	repo := NewGormCalendarRepository(setupTestDB(t), time.UTC)
	ctx := context.Background()

	july, err := repo.Create(ctx, &domain.Calendar{PhotoURL: "july.jpg", Timestamp: ms(2025, time.July, 1)})
	require.NoError(t, err)
	assert.NotZero(t, july.ID)

	_, err = repo.Create(ctx, &domain.Calendar{PhotoURL: "dup.jpg", Timestamp: ms(2025, time.July, 20)})
	assert.ErrorIs(t, err, domain.ErrMonthOccupied)

	aug, err := repo.Create(ctx, &domain.Calendar{PhotoURL: "aug.jpg", Timestamp: ms(2025, time.August, 3)})
	require.NoError(t, err)

	aug.Timestamp = ms(2025, time.July, 15)
	_, err = repo.Update(ctx, aug)
	assert.ErrorIs(t, err, domain.ErrMonthOccupied)

	july.Timestamp = ms(2025, time.July, 31)
	july.PhotoURL = "july-v2.jpg"
	updated, err := repo.Update(ctx, july)
	require.NoError(t, err)
	assert.Equal(t, "july-v2.jpg", updated.PhotoURL)
}

func TestGormCalendarRepositoryQueries(t *testing.T) {
	repo := NewGormCalendarRepository(setupTestDB(t), time.UTC)
	ctx := context.Background()

	for _, ts := range []int64{ms(2025, time.September, 1), ms(2025, time.July, 2), ms(2025, time.August, 9)} {
		_, err := repo.Create(ctx, &domain.Calendar{PhotoURL: "p.jpg", Timestamp: ts})
		require.NoError(t, err)
	}

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ms(2025, time.July, 2), all[0].Timestamp)

	aug, err := repo.FindByMonth(ctx, 2025, time.August)
	require.NoError(t, err)
	require.Len(t, aug, 1)
	assert.Equal(t, ms(2025, time.August, 9), aug[0].Timestamp)

	none, err := repo.FindByMonth(ctx, 2024, time.August)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = repo.FindByID(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrCalendarNotFound)
}

func TestMemoryCalendarRepositoryMatchesGorm(t *testing.T) {
	repo := NewMemoryCalendarRepository(time.UTC)
	ctx := context.Background()

	first, err := repo.Create(ctx, &domain.Calendar{PhotoURL: "a.jpg", Timestamp: ms(2025, time.July, 1)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)

	_, err = repo.Create(ctx, &domain.Calendar{PhotoURL: "b.jpg", Timestamp: ms(2025, time.July, 2)})
	assert.ErrorIs(t, err, domain.ErrMonthOccupied)

	_, err = repo.Update(ctx, &domain.Calendar{ID: 7, PhotoURL: "x.jpg", Timestamp: ms(2025, time.May, 1)})
	assert.ErrorIs(t, err, domain.ErrCalendarNotFound)

	found, err := repo.FindByMonth(ctx, 2025, time.July)
	require.NoError(t, err)
	assert.Len(t, found, 1)
}
