package infrastructure

import "bistro/internal/service/calendar/domain"

// CalendarModel 对应数据库中的 calendars 表。
// Bucket 由 Timestamp 派生，唯一索引保证同一个月只有一条记录
type CalendarModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	PhotoURL  string `gorm:"size:1024;not null"`
	Timestamp int64  `gorm:"index;not null"`
	Bucket    string `gorm:"size:7;uniqueIndex;not null"`
}

func (CalendarModel) TableName() string {
	return "calendars"
}

func toDomain(m *CalendarModel) *domain.Calendar {
	return &domain.Calendar{ID: m.ID, PhotoURL: m.PhotoURL, Timestamp: m.Timestamp}
}
