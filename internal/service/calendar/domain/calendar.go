package domain

import (
	"fmt"
	"time"

	"bistro/internal/pkg/apperr"
)

var (
	ErrMissingField     = apperr.New(apperr.ErrValidation, "photoUrl and timestamp are required")
	ErrNoFieldsToUpdate = apperr.New(apperr.ErrValidation, "no fields to update")
	ErrInvalidMonth     = apperr.New(apperr.ErrValidation, "month must be between 1 and 12")
	ErrMonthOccupied    = apperr.New(apperr.ErrConflict, "a calendar already exists for this month")
	ErrCalendarNotFound = apperr.New(apperr.ErrNotFound, "calendar not found")
)

// Calendar 是每月一张的日历照片
type Calendar struct {
	ID        int64
	PhotoURL  string
	Timestamp int64 // epoch 毫秒
}

// Time 返回 Timestamp 在 loc 中的时间
func (c *Calendar) Time(loc *time.Location) time.Time {
	return time.UnixMilli(c.Timestamp).In(loc)
}

// Bucket 是唯一性约束的粒度：一个自然月
type Bucket struct {
	Year  int
	Month time.Month
}

// BucketOf 返回毫秒时间戳在 loc 中所属的月份
func BucketOf(timestampMs int64, loc *time.Location) Bucket {
	t := time.UnixMilli(timestampMs).In(loc)
	return Bucket{Year: t.Year(), Month: t.Month()}
}

func NewBucket(year int, month time.Month) (Bucket, error) {
	if month < time.January || month > time.December {
		return Bucket{}, ErrInvalidMonth
	}
	return Bucket{Year: year, Month: month}, nil
}

// String 形如 2025-07，同时用作锁的 key 和唯一索引列的值
func (b Bucket) String() string {
	return fmt.Sprintf("%04d-%02d", b.Year, int(b.Month))
}

// Range 返回该月在 loc 中的毫秒区间 [start, end)
func (b Bucket) Range(loc *time.Location) (start, end int64) {
	first := time.Date(b.Year, b.Month, 1, 0, 0, 0, 0, loc)
	return first.UnixMilli(), first.AddDate(0, 1, 0).UnixMilli()
}

// Contains 判断时间戳是否落在该月
func (b Bucket) Contains(timestampMs int64, loc *time.Location) bool {
	return BucketOf(timestampMs, loc) == b
}
