package infrastructure

import (
	"context"
	"time"

	"bistro/internal/pkg/database"
	"bistro/internal/service/calendar/domain"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GormCalendarRepository 是 CalendarRepository 的 GORM 实现
type GormCalendarRepository struct {
	db  *gorm.DB
	loc *time.Location
}

// NewGormCalendarRepository loc 必须与应用服务使用的时区一致
func NewGormCalendarRepository(db *gorm.DB, loc *time.Location) *GormCalendarRepository {
	return &GormCalendarRepository{db: db, loc: loc}
}

func (r *GormCalendarRepository) toModel(c *domain.Calendar) *CalendarModel {
	return &CalendarModel{
		ID:        c.ID,
		PhotoURL:  c.PhotoURL,
		Timestamp: c.Timestamp,
		Bucket:    domain.BucketOf(c.Timestamp, r.loc).String(),
	}
}

func (r *GormCalendarRepository) Create(ctx context.Context, calendar *domain.Calendar) (*domain.Calendar, error) {
	model := r.toModel(calendar)
	model.ID = 0
	if err := database.Conn(ctx, r.db).Create(model).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return nil, domain.ErrMonthOccupied
		}
		return nil, errors.Wrap(err, "insert calendar")
	}
	return toDomain(model), nil
}

func (r *GormCalendarRepository) FindByID(ctx context.Context, id int64) (*domain.Calendar, error) {
	var model CalendarModel
	if err := database.Conn(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCalendarNotFound
		}
		return nil, errors.Wrapf(err, "find calendar %d", id)
	}
	return toDomain(&model), nil
}

// FindByMonth 按时间戳区间查询，而不是按 bucket 列，以免依赖写入时的时区
func (r *GormCalendarRepository) FindByMonth(ctx context.Context, year int, month time.Month) ([]*domain.Calendar, error) {
	start, end := domain.Bucket{Year: year, Month: month}.Range(r.loc)
	return r.find(database.Conn(ctx, r.db).Where("timestamp >= ? AND timestamp < ?", start, end))
}

func (r *GormCalendarRepository) FindAll(ctx context.Context) ([]*domain.Calendar, error) {
	return r.find(database.Conn(ctx, r.db))
}

func (r *GormCalendarRepository) find(q *gorm.DB) ([]*domain.Calendar, error) {
	var models []CalendarModel
	if err := q.Order("timestamp ASC").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "list calendars")
	}
	out := make([]*domain.Calendar, len(models))
	for i := range models {
		out[i] = toDomain(&models[i])
	}
	return out, nil
}

func (r *GormCalendarRepository) Update(ctx context.Context, calendar *domain.Calendar) (*domain.Calendar, error) {
	model := r.toModel(calendar)
	err := database.Conn(ctx, r.db).Model(&CalendarModel{}).Where("id = ?", calendar.ID).Updates(map[string]interface{}{
		"photo_url": model.PhotoURL,
		"timestamp": model.Timestamp,
		"bucket":    model.Bucket,
	}).Error
	if err != nil {
		if database.IsDuplicateKey(err) {
			return nil, domain.ErrMonthOccupied
		}
		return nil, errors.Wrapf(err, "update calendar %d", calendar.ID)
	}
	return r.FindByID(ctx, calendar.ID)
}
