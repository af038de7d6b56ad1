// internal/service/order/application/service.go
package application

import (
	"context"
	"strconv"
	"time"

	"bistro/internal/pkg/logger"
	"bistro/internal/pkg/metrics"
	"bistro/internal/service/order/domain"
	"bistro/internal/service/order/port"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// OrderPlacementService 负责把订单头和订单行作为一个整体写入。
type OrderPlacementService struct {
	orderRepo domain.OrderRepository
	lineRepo  domain.OrderLineRepository
	tracer    trace.Tracer

	transactor port.Transactor     // 为空时使用补偿删除保证整体性
	publisher  port.EventPublisher // 为空时不发布事件
	now        func() time.Time
}

type Option func(*OrderPlacementService)

// WithTransactor 让订单头和订单行在同一个数据库事务中写入
func WithTransactor(tx port.Transactor) Option {
	return func(s *OrderPlacementService) { s.transactor = tx }
}

func WithPublisher(p port.EventPublisher) Option {
	return func(s *OrderPlacementService) { s.publisher = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *OrderPlacementService) { s.now = now }
}

func NewOrderPlacementService(orderRepo domain.OrderRepository, lineRepo domain.OrderLineRepository, tracer trace.Tracer, opts ...Option) *OrderPlacementService {
	s := &OrderPlacementService{
		orderRepo: orderRepo,
		lineRepo:  lineRepo,
		tracer:    tracer,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder 创建订单头和全部订单行，要么全部成功，要么不留下任何记录
func (s *OrderPlacementService) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*domain.OrderDetail, error) {
	ctx, span := s.tracer.Start(ctx, "app.PlaceOrder")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user.id", req.UserID),
		attribute.Bool("order.take_out", req.IsTakeOut),
		attribute.Int("order.item_count", len(req.ItemList)),
	)

	order, err := domain.NewOrder(req.UserID, req.IsTakeOut, req.ItemList, s.now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid order request")
		metrics.OrderPlacementFailures.WithLabelValues("validation").Inc()
		return nil, err
	}

	var detail *domain.OrderDetail
	if s.transactor != nil {
		err = s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
			var txErr error
			detail, txErr = s.persist(txCtx, order, req.ItemList, nil)
			return txErr
		})
	} else {
		comp := &compensations{}
		detail, err = s.persist(ctx, order, req.ItemList, comp)
		if err != nil {
			// 请求被取消时也要完成补偿
			if compErr := comp.trigger(context.WithoutCancel(ctx)); compErr != nil {
				logger.Ctx(ctx).Error().Err(compErr).Msg("CRITICAL: order compensation incomplete, manual cleanup required")
				span.RecordError(compErr, trace.WithAttributes(attribute.Bool("critical.error", true)))
			}
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist order")
		metrics.OrderPlacementFailures.WithLabelValues("persist").Inc()
		return nil, err
	}

	metrics.OrdersPlaced.Inc()
	span.SetAttributes(attribute.Int64("order.id", detail.ID))
	logger.Ctx(ctx).Info().
		Int64("order_id", detail.ID).
		Int64("user_id", detail.UserID).
		Int("lines", len(detail.Lines)).
		Msg("order placed")

	s.publishPlaced(ctx, detail)
	return detail, nil
}

// persist 依次写入订单头和订单行。comp 不为空时登记每一步的撤销动作
func (s *OrderPlacementService) persist(ctx context.Context, order *domain.Order, items []domain.LineItem, comp *compensations) (*domain.OrderDetail, error) {
	created, err := s.orderRepo.Create(ctx, order)
	if err != nil {
		return nil, errors.Wrap(err, "create order header")
	}
	if comp != nil {
		orderID := created.ID
		comp.add("delete order header", func(ctx context.Context) error {
			return s.orderRepo.Delete(ctx, orderID)
		})
		comp.add("delete order lines", func(ctx context.Context) error {
			return s.lineRepo.DeleteByOrderID(ctx, orderID)
		})
	}

	lines := make([]domain.OrderLine, 0, len(items))
	for i, item := range items {
		line, err := s.lineRepo.Create(ctx, created.NewLine(item))
		if err != nil {
			return nil, errors.Wrapf(err, "create order line %d of %d", i+1, len(items))
		}
		lines = append(lines, *line)
	}
	return &domain.OrderDetail{Order: *created, Lines: lines}, nil
}

// publishPlaced 事件发布失败不影响下单结果
func (s *OrderPlacementService) publishPlaced(ctx context.Context, detail *domain.OrderDetail) {
	if s.publisher == nil {
		return
	}
	key := strconv.FormatInt(detail.ID, 10)
	if err := s.publisher.Publish(ctx, key, domain.NewOrderPlaced(detail)); err != nil {
		trace.SpanFromContext(ctx).RecordError(err)
		logger.Ctx(ctx).Warn().Err(err).Int64("order_id", detail.ID).Msg("failed to publish order placed event")
	}
}

// GetOrder 并发加载订单头和订单行
func (s *OrderPlacementService) GetOrder(ctx context.Context, id int64) (*domain.OrderDetail, error) {
	ctx, span := s.tracer.Start(ctx, "app.GetOrder")
	defer span.End()
	span.SetAttributes(attribute.Int64("order.id", id))

	var (
		order *domain.Order
		lines []domain.OrderLine
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		order, err = s.orderRepo.FindByID(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		lines, err = s.lineRepo.FindByOrderID(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		if !errors.Is(err, domain.ErrOrderNotFound) {
			span.SetStatus(codes.Error, "failed to load order")
		}
		return nil, err
	}
	if lines == nil {
		lines = []domain.OrderLine{}
	}
	return &domain.OrderDetail{Order: *order, Lines: lines}, nil
}

func (s *OrderPlacementService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "app.ListOrders")
	defer span.End()

	orders, err := s.orderRepo.FindAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list orders")
		return nil, err
	}
	return orders, nil
}
