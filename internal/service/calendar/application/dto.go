package application

import (
	"time"

	"bistro/internal/service/calendar/domain"
)

type CreateCalendarRequest struct {
	PhotoURL  string `json:"photoUrl"`
	Timestamp int64  `json:"timestamp"`
}

// UpdateCalendarRequest nil 表示不修改
type UpdateCalendarRequest struct {
	PhotoURL  *string `json:"photoUrl"`
	Timestamp *int64  `json:"timestamp"`
}

// CalendarView 是对外返回的日历，YearMonth 形如 2025-07
type CalendarView struct {
	ID        int64  `json:"id"`
	PhotoURL  string `json:"photoUrl"`
	YearMonth string `json:"yearMonth"`
	Timestamp int64  `json:"timestamp"`
}

type CalendarList struct {
	Calendars []*CalendarView `json:"calendars"`
	Total     int             `json:"total"`
}

func toView(c *domain.Calendar, loc *time.Location) *CalendarView {
	return &CalendarView{
		ID:        c.ID,
		PhotoURL:  c.PhotoURL,
		YearMonth: domain.BucketOf(c.Timestamp, loc).String(),
		Timestamp: c.Timestamp,
	}
}

func toList(cs []*domain.Calendar, loc *time.Location) *CalendarList {
	views := make([]*CalendarView, 0, len(cs))
	for _, c := range cs {
		views = append(views, toView(c, loc))
	}
	return &CalendarList{Calendars: views, Total: len(views)}
}
