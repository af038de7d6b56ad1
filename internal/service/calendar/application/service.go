package application

import (
	"context"
	"time"

	"bistro/internal/pkg/lock"
	"bistro/internal/pkg/logger"
	"bistro/internal/pkg/metrics"
	"bistro/internal/service/calendar/domain"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// CalendarScheduler 保证每个自然月最多只有一条日历。
// 同一个月的写入先经过 Locker 串行化，再由存储的唯一索引兜底。
type CalendarScheduler struct {
	repo   domain.CalendarRepository
	locker lock.Locker
	tracer trace.Tracer
	loc    *time.Location
	now    func() time.Time
}

// NewCalendarScheduler loc 决定月份的划分方式
func NewCalendarScheduler(repo domain.CalendarRepository, locker lock.Locker, tracer trace.Tracer, loc *time.Location) *CalendarScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &CalendarScheduler{repo: repo, locker: locker, tracer: tracer, loc: loc, now: time.Now}
}

func (s *CalendarScheduler) WithClock(now func() time.Time) *CalendarScheduler {
	s.now = now
	return s
}

func (s *CalendarScheduler) Create(ctx context.Context, req *CreateCalendarRequest) (*CalendarView, error) {
	ctx, span := s.tracer.Start(ctx, "service.CreateCalendar")
	defer span.End()

	if req.PhotoURL == "" || req.Timestamp == 0 {
		return nil, domain.ErrMissingField
	}

	bucket := domain.BucketOf(req.Timestamp, s.loc)
	span.SetAttributes(attribute.String("calendar.bucket", bucket.String()))

	created, err := s.guard(ctx, bucket, 0, func(ctx context.Context) (*domain.Calendar, error) {
		return s.repo.Create(ctx, &domain.Calendar{PhotoURL: req.PhotoURL, Timestamp: req.Timestamp})
	})
	if err != nil {
		s.recordFailure(span, err)
		return nil, err
	}

	logger.Ctx(ctx).Info().Int64("calendar_id", created.ID).Str("bucket", bucket.String()).Msg("calendar created")
	return toView(created, s.loc), nil
}

func (s *CalendarScheduler) Update(ctx context.Context, id int64, req *UpdateCalendarRequest) (*CalendarView, error) {
	ctx, span := s.tracer.Start(ctx, "service.UpdateCalendar")
	defer span.End()
	span.SetAttributes(attribute.Int64("calendar.id", id))

	if (req.PhotoURL == nil || *req.PhotoURL == "") && req.Timestamp == nil {
		return nil, domain.ErrNoFieldsToUpdate
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.recordFailure(span, err)
		return nil, err
	}

	merged := *current
	if req.PhotoURL != nil && *req.PhotoURL != "" {
		merged.PhotoURL = *req.PhotoURL
	}
	write := func(ctx context.Context) (*domain.Calendar, error) {
		return s.repo.Update(ctx, &merged)
	}

	var updated *domain.Calendar
	if req.Timestamp != nil {
		merged.Timestamp = *req.Timestamp
		bucket := domain.BucketOf(merged.Timestamp, s.loc)
		span.SetAttributes(attribute.String("calendar.bucket", bucket.String()))
		updated, err = s.guard(ctx, bucket, id, write)
	} else {
		updated, err = write(ctx)
	}
	if err != nil {
		s.recordFailure(span, err)
		return nil, err
	}

	logger.Ctx(ctx).Info().Int64("calendar_id", id).Msg("calendar updated")
	return toView(updated, s.loc), nil
}

// guard 锁住 bucket，确认除 selfID 外没有记录占用该月后执行 write
func (s *CalendarScheduler) guard(ctx context.Context, bucket domain.Bucket, selfID int64, write func(ctx context.Context) (*domain.Calendar, error)) (*domain.Calendar, error) {
	release, err := s.locker.Acquire(ctx, "calendar:"+bucket.String())
	if err != nil {
		return nil, errors.Wrapf(err, "lock calendar month %s", bucket)
	}
	defer release()

	existing, err := s.repo.FindByMonth(ctx, bucket.Year, bucket.Month)
	if err != nil {
		return nil, err
	}
	for _, c := range existing {
		if c.ID != selfID {
			metrics.UniquenessConflicts.WithLabelValues("calendar_month").Inc()
			return nil, domain.ErrMonthOccupied
		}
	}

	saved, err := write(ctx)
	if errors.Is(err, domain.ErrMonthOccupied) {
		metrics.UniquenessConflicts.WithLabelValues("calendar_month").Inc()
	}
	return saved, err
}

func (s *CalendarScheduler) recordFailure(span trace.Span, err error) {
	span.RecordError(err)
	if !errors.Is(err, domain.ErrMonthOccupied) && !errors.Is(err, domain.ErrCalendarNotFound) {
		span.SetStatus(codes.Error, err.Error())
	}
}

func (s *CalendarScheduler) GetByID(ctx context.Context, id int64) (*CalendarView, error) {
	ctx, span := s.tracer.Start(ctx, "service.GetCalendar")
	defer span.End()

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toView(c, s.loc), nil
}

func (s *CalendarScheduler) FindByMonth(ctx context.Context, year int, month time.Month) (*CalendarList, error) {
	ctx, span := s.tracer.Start(ctx, "service.FindCalendarByMonth")
	defer span.End()

	bucket, err := domain.NewBucket(year, month)
	if err != nil {
		return nil, err
	}
	cs, err := s.repo.FindByMonth(ctx, bucket.Year, bucket.Month)
	if err != nil {
		return nil, err
	}
	return toList(cs, s.loc), nil
}

func (s *CalendarScheduler) ListAll(ctx context.Context) (*CalendarList, error) {
	ctx, span := s.tracer.Start(ctx, "service.ListCalendars")
	defer span.End()

	cs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return toList(cs, s.loc), nil
}

// ListUpcoming 只返回本月及以后的日历
func (s *CalendarScheduler) ListUpcoming(ctx context.Context) (*CalendarList, error) {
	ctx, span := s.tracer.Start(ctx, "service.ListUpcomingCalendars")
	defer span.End()

	cs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	start, _ := domain.BucketOf(s.now().UnixMilli(), s.loc).Range(s.loc)
	upcoming := make([]*domain.Calendar, 0, len(cs))
	for _, c := range cs {
		if c.Timestamp >= start {
			upcoming = append(upcoming, c)
		}
	}
	return toList(upcoming, s.loc), nil
}
