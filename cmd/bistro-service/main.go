// cmd/bistro-service/main.go
package main

import (
	"context"
	"io"
	"time"

	"bistro/internal/pkg/bootstrap"
	"bistro/internal/pkg/database"
	"bistro/internal/pkg/lock"
	"bistro/internal/pkg/logger"
	"bistro/internal/pkg/mq"
	"bistro/internal/pkg/redis"
	"bistro/internal/zookeeper"

	calendarapp "bistro/internal/service/calendar/application"
	calendardomain "bistro/internal/service/calendar/domain"
	calendarinfra "bistro/internal/service/calendar/infrastructure"
	calendarhttp "bistro/internal/service/calendar/interfaces"
	orderapp "bistro/internal/service/order/application"
	orderdomain "bistro/internal/service/order/domain"
	orderinfra "bistro/internal/service/order/infrastructure"
	orderhttp "bistro/internal/service/order/interfaces"
	promotionapp "bistro/internal/service/promotion/application"
	promotiondomain "bistro/internal/service/promotion/domain"
	promotioninfra "bistro/internal/service/promotion/infrastructure"
	promotionhttp "bistro/internal/service/promotion/interfaces"
	promotionport "bistro/internal/service/promotion/port"

	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
)

// repositories 是按存储驱动选出的一组仓储实现
type repositories struct {
	orders     orderdomain.OrderRepository
	lines      orderdomain.OrderLineRepository
	coupons    promotiondomain.CouponRepository
	calendars  calendardomain.CalendarRepository
	transactor *database.Transactor
}

// main 函数是应用的"组装根" (Composition Root)
// 它的核心职责是：创建并组装所有依赖项，然后启动应用。
func main() {
	cfg, err := bootstrap.Init()
	if err != nil {
		logger.L().Fatal().Err(err).Msg("failed to load config")
	}
	log := logger.L()
	loc := cfg.Location()

	var closers []io.Closer

	// 1. 存储
	repos, db, err := openRepositories(cfg.Infra.Database, loc)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Infra.Database.Driver).Msg("failed to open storage")
	}
	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to get sql.DB")
		}
		closers = append(closers, sqlDB)
	}

	// 2. 日历月份锁
	locker, closer, err := newLocker(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Infra.Lock.Backend).Msg("failed to create locker")
	}
	if closer != nil {
		closers = append(closers, closer)
	}

	// 3. 事件发布
	var orderOpts []orderapp.Option
	var couponPublisher promotionport.EventPublisher
	if repos.transactor != nil {
		orderOpts = append(orderOpts, orderapp.WithTransactor(repos.transactor))
	}
	if cfg.App.PublishEvents {
		orderPub := mq.NewKafkaPublisher(mq.NewKafkaWriter(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.OrderTopic))
		couponPub := mq.NewKafkaPublisher(mq.NewKafkaWriter(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.CouponTopic))
		orderOpts = append(orderOpts, orderapp.WithPublisher(orderPub))
		couponPublisher = couponPub
		closers = append(closers, orderPub, couponPub)
	}

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: cfg.App.ServiceName,
		Port:        cfg.App.Port,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			tracer := otel.Tracer(cfg.App.ServiceName)

			orders := orderapp.NewOrderPlacementService(repos.orders, repos.lines, tracer, orderOpts...)
			coupons := promotionapp.NewCouponLifecycleService(repos.coupons, couponPublisher, tracer)
			calendars := calendarapp.NewCalendarScheduler(repos.calendars, locker, tracer, loc)

			orderhttp.NewOrderHandler(orders).RegisterRoutes(appCtx.Mux)
			promotionhttp.NewCouponHandler(coupons).RegisterRoutes(appCtx.Mux)
			calendarhttp.NewCalendarHandler(calendars).RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: func(ctx context.Context) {
			for i := len(closers) - 1; i >= 0; i-- {
				if err := closers[i].Close(); err != nil {
					logger.Ctx(ctx).Error().Err(err).Msg("error releasing resource")
				}
			}
		},
	})
}

// openRepositories 在 memory 驱动下返回进程内实现，此时没有事务，下单走补偿路径
func openRepositories(opts database.Options, loc *time.Location) (*repositories, *gorm.DB, error) {
	if opts.Driver == "memory" {
		store := orderinfra.NewMemoryStore()
		return &repositories{
			orders:    store.Orders(),
			lines:     store.Lines(),
			coupons:   promotioninfra.NewMemoryCouponRepository(),
			calendars: calendarinfra.NewMemoryCalendarRepository(loc),
		}, nil, nil
	}

	db, err := database.Open(opts)
	if err != nil {
		return nil, nil, err
	}
	if opts.AutoMigrate {
		models := append(orderinfra.Models(), &promotioninfra.CouponModel{}, &calendarinfra.CalendarModel{})
		if err := db.AutoMigrate(models...); err != nil {
			return nil, nil, err
		}
	}
	return &repositories{
		orders:     orderinfra.NewGormOrderRepository(db),
		lines:      orderinfra.NewGormOrderLineRepository(db),
		coupons:    promotioninfra.NewGormCouponRepository(db),
		calendars:  calendarinfra.NewGormCalendarRepository(db, loc),
		transactor: database.NewTransactor(db),
	}, db, nil
}

type closeFunc func() error

func (f closeFunc) Close() error { return f() }

func newLocker(cfg *bootstrap.Config) (lock.Locker, io.Closer, error) {
	lc := cfg.Infra.Lock
	switch lc.Backend {
	case "redis":
		client, err := redis.NewClient(cfg.Infra.Redis.Addrs, cfg.Infra.Redis.Password, cfg.Infra.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		return lock.NewRedisLocker(client, lock.RedisLockerOptions{
			Prefix: cfg.App.ServiceName + ":lock:",
			TTL:    lc.TTL,
			Wait:   lc.Wait,
		}), client, nil
	case "zookeeper":
		conn, err := zookeeper.Connect(cfg.Infra.Zookeeper.Servers, cfg.Infra.Zookeeper.SessionTimeout)
		if err != nil {
			return nil, nil, err
		}
		return zookeeper.NewLocker(conn, lc.Wait), closeFunc(func() error { conn.Close(); return nil }), nil
	default:
		return lock.NewLocalLocker(lc.Wait), nil, nil
	}
}
