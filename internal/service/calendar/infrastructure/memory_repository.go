package infrastructure

import (
	"context"
	"sort"
	"sync"
	"time"

	"bistro/internal/service/calendar/domain"
)

// MemoryCalendarRepository 是进程内实现，月份唯一性在写锁内检查
type MemoryCalendarRepository struct {
	mu        sync.RWMutex
	loc       *time.Location
	calendars map[int64]domain.Calendar
	nextID    int64
}

func NewMemoryCalendarRepository(loc *time.Location) *MemoryCalendarRepository {
	return &MemoryCalendarRepository{loc: loc, calendars: make(map[int64]domain.Calendar)}
}

// occupiedLocked 要求调用方已持有锁
func (r *MemoryCalendarRepository) occupiedLocked(c *domain.Calendar) bool {
	bucket := domain.BucketOf(c.Timestamp, r.loc)
	for id, other := range r.calendars {
		if id != c.ID && bucket.Contains(other.Timestamp, r.loc) {
			return true
		}
	}
	return false
}

func (r *MemoryCalendarRepository) Create(_ context.Context, calendar *domain.Calendar) (*domain.Calendar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	created := *calendar
	created.ID = 0
	if r.occupiedLocked(&created) {
		return nil, domain.ErrMonthOccupied
	}
	r.nextID++
	created.ID = r.nextID
	r.calendars[created.ID] = created
	return &created, nil
}

func (r *MemoryCalendarRepository) FindByID(_ context.Context, id int64) (*domain.Calendar, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.calendars[id]
	if !ok {
		return nil, domain.ErrCalendarNotFound
	}
	return &c, nil
}

func (r *MemoryCalendarRepository) FindByMonth(_ context.Context, year int, month time.Month) ([]*domain.Calendar, error) {
	bucket := domain.Bucket{Year: year, Month: month}
	return r.filter(func(c *domain.Calendar) bool { return bucket.Contains(c.Timestamp, r.loc) }), nil
}

func (r *MemoryCalendarRepository) FindAll(_ context.Context) ([]*domain.Calendar, error) {
	return r.filter(func(*domain.Calendar) bool { return true }), nil
}

func (r *MemoryCalendarRepository) filter(keep func(*domain.Calendar) bool) []*domain.Calendar {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*domain.Calendar{}
	for _, c := range r.calendars {
		c := c
		if keep(&c) {
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

func (r *MemoryCalendarRepository) Update(_ context.Context, calendar *domain.Calendar) (*domain.Calendar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.calendars[calendar.ID]; !ok {
		return nil, domain.ErrCalendarNotFound
	}
	if r.occupiedLocked(calendar) {
		return nil, domain.ErrMonthOccupied
	}
	updated := *calendar
	r.calendars[updated.ID] = updated
	return &updated, nil
}
