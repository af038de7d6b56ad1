package domain

import (
	"context"
	"time"
)

// CalendarRepository 定义了日历的持久化接口。
// 同一个月写入第二条记录时，实现必须返回 ErrMonthOccupied。
type CalendarRepository interface {
	Create(ctx context.Context, calendar *Calendar) (*Calendar, error)
	FindByID(ctx context.Context, id int64) (*Calendar, error)
	// FindByMonth 返回时间戳落在该月内的全部记录
	FindByMonth(ctx context.Context, year int, month time.Month) ([]*Calendar, error)
	Update(ctx context.Context, calendar *Calendar) (*Calendar, error)
	FindAll(ctx context.Context) ([]*Calendar, error)
}
