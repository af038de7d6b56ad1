package application

import (
	"context"
	"strconv"
	"strings"
	"time"

	"bistro/internal/pkg/logger"
	"bistro/internal/pkg/metrics"
	"bistro/internal/service/promotion/domain"
	"bistro/internal/service/promotion/port"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const redeemedMessage = "Coupon redeemed successfully."

// CouponLifecycleService 定义了优惠券的创建、修改和核销用例
type CouponLifecycleService struct {
	couponRepo domain.CouponRepository
	publisher  port.EventPublisher
	tracer     trace.Tracer
	now        func() time.Time
}

// NewCouponLifecycleService publisher 可以为 nil
func NewCouponLifecycleService(repo domain.CouponRepository, publisher port.EventPublisher, tracer trace.Tracer) *CouponLifecycleService {
	return &CouponLifecycleService{
		couponRepo: repo,
		publisher:  publisher,
		tracer:     tracer,
		now:        time.Now,
	}
}

// WithClock 替换时间源
func (s *CouponLifecycleService) WithClock(now func() time.Time) *CouponLifecycleService {
	s.now = now
	return s
}

// CreateCoupon 校验字段、优惠范围、过期时间和 code 唯一性后创建优惠券
func (s *CouponLifecycleService) CreateCoupon(ctx context.Context, req *CreateCouponRequest) (*domain.Coupon, error) {
	ctx, span := s.tracer.Start(ctx, "service.CreateCoupon")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user.id", req.UserID),
		attribute.String("coupon.code", req.Code),
		attribute.String("coupon.discount_type", req.DiscountType),
	)

	coupon, err := s.newCoupon(req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	// 先查一次给出明确的冲突错误，唯一索引兜住并发写入
	if err := s.ensureCodeFree(ctx, coupon.Code, 0); err != nil {
		span.RecordError(err)
		return nil, err
	}

	created, err := s.couponRepo.Create(ctx, coupon)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateCode) {
			metrics.UniquenessConflicts.WithLabelValues("coupon_code").Inc()
		} else {
			span.SetStatus(codes.Error, "failed to create coupon")
		}
		span.RecordError(err)
		return nil, err
	}

	logger.Ctx(ctx).Info().Int64("coupon_id", created.ID).Str("code", created.Code).Msg("coupon created")
	return created, nil
}

func (s *CouponLifecycleService) newCoupon(req *CreateCouponRequest) (*domain.Coupon, error) {
	var missing []string
	if req.UserID == 0 {
		missing = append(missing, "userId")
	}
	if strings.TrimSpace(req.Code) == "" {
		missing = append(missing, "code")
	}
	if req.DiscountAmount == nil {
		missing = append(missing, "discountAmount")
	}
	if req.DiscountType == "" {
		missing = append(missing, "discountType")
	}
	if req.ExpiresAt == "" {
		missing = append(missing, "expiresAt")
	}
	if len(missing) > 0 {
		return nil, errors.WithMessage(domain.ErrMissingField, strings.Join(missing, ", "))
	}

	discount, err := domain.NewDiscount(domain.DiscountType(req.DiscountType), *req.DiscountAmount)
	if err != nil {
		return nil, err
	}

	now := s.now()
	expiresAt, err := parseExpiry(req.ExpiresAt)
	if err != nil {
		return nil, err
	}
	if !expiresAt.After(now) {
		return nil, domain.ErrInvalidExpiry
	}

	return &domain.Coupon{
		UserID:         req.UserID,
		Code:           strings.TrimSpace(req.Code),
		DiscountAmount: discount.Amount(),
		DiscountType:   discount.Type(),
		IsUsed:         false,
		ExpiresAt:      expiresAt,
		CreatedAt:      now,
	}, nil
}

// ensureCodeFree 检查 code 是否已被 selfID 以外的优惠券占用
func (s *CouponLifecycleService) ensureCodeFree(ctx context.Context, code string, selfID int64) error {
	existing, err := s.couponRepo.FindByCode(ctx, code)
	switch {
	case errors.Is(err, domain.ErrCouponNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != selfID:
		metrics.UniquenessConflicts.WithLabelValues("coupon_code").Inc()
		return domain.ErrDuplicateCode
	default:
		return nil
	}
}

// UpdateCoupon 部分更新。合并后的优惠规则会重新校验，修改 code 会重新检查唯一性
func (s *CouponLifecycleService) UpdateCoupon(ctx context.Context, id int64, req *UpdateCouponRequest) (*domain.Coupon, error) {
	ctx, span := s.tracer.Start(ctx, "service.UpdateCoupon")
	defer span.End()
	span.SetAttributes(attribute.Int64("coupon.id", id))

	if req.empty() {
		return nil, domain.ErrNoFieldsToUpdate
	}

	coupon, err := s.couponRepo.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if req.UserID != nil {
		coupon.UserID = *req.UserID
	}
	if req.Code != nil {
		code := strings.TrimSpace(*req.Code)
		if code == "" {
			return nil, errors.WithMessage(domain.ErrMissingField, "code")
		}
		if code != coupon.Code {
			if err := s.ensureCodeFree(ctx, code, coupon.ID); err != nil {
				span.RecordError(err)
				return nil, err
			}
		}
		coupon.Code = code
	}
	if req.DiscountType != nil {
		coupon.DiscountType = domain.DiscountType(*req.DiscountType)
	}
	if req.DiscountAmount != nil {
		coupon.DiscountAmount = *req.DiscountAmount
	}
	if _, err := coupon.Discount(); err != nil {
		return nil, err
	}
	if req.ExpiresAt != nil {
		// 修改过期时间允许设为过去，用于提前作废
		expiresAt, err := parseExpiry(*req.ExpiresAt)
		if err != nil {
			return nil, err
		}
		coupon.ExpiresAt = expiresAt
	}
	if req.IsUsed != nil {
		if coupon.IsUsed && !*req.IsUsed {
			return nil, errors.WithMessage(domain.ErrCouponAlreadyUsed, "isUsed cannot be reverted")
		}
		coupon.IsUsed = *req.IsUsed
	}

	updated, err := s.couponRepo.Update(ctx, coupon)
	if err != nil {
		span.RecordError(err)
		if !errors.Is(err, domain.ErrDuplicateCode) && !errors.Is(err, domain.ErrCouponNotFound) {
			span.SetStatus(codes.Error, "failed to update coupon")
		}
		return nil, err
	}
	logger.Ctx(ctx).Info().Int64("coupon_id", id).Msg("coupon updated")
	return updated, nil
}

// UseCoupon 核销优惠券。最终的状态转换由仓储的条件写入完成，并发核销只有一个能成功
func (s *CouponLifecycleService) UseCoupon(ctx context.Context, id int64) (*UseCouponResponse, error) {
	ctx, span := s.tracer.Start(ctx, "service.UseCoupon")
	defer span.End()
	span.SetAttributes(attribute.Int64("coupon.id", id))

	now := s.now()

	// 1. 先读出来给出准确的错误原因
	coupon, err := s.couponRepo.FindByID(ctx, id)
	if err != nil {
		return nil, s.redeemFailed(ctx, span, err)
	}
	if err := coupon.CheckRedeemable(now); err != nil {
		return nil, s.redeemFailed(ctx, span, err)
	}

	// 2. 条件写入，防止两个请求都读到未使用
	used, err := s.couponRepo.UseCoupon(ctx, id, now)
	if err != nil {
		return nil, s.redeemFailed(ctx, span, err)
	}

	metrics.CouponRedemptions.WithLabelValues("success").Inc()
	span.AddEvent("coupon redeemed")
	logger.Ctx(ctx).Info().Int64("coupon_id", id).Str("code", used.Code).Msg("coupon redeemed")

	if s.publisher != nil {
		event := &domain.CouponRedeemed{CouponID: used.ID, UserID: used.UserID, Code: used.Code, RedeemedAt: now}
		if err := s.publisher.Publish(ctx, strconv.FormatInt(used.ID, 10), event); err != nil {
			span.RecordError(err)
			logger.Ctx(ctx).Warn().Err(err).Int64("coupon_id", id).Msg("failed to publish coupon redeemed event")
		}
	}

	return &UseCouponResponse{Coupon: used, Message: redeemedMessage}, nil
}

func (s *CouponLifecycleService) redeemFailed(ctx context.Context, span trace.Span, err error) error {
	result := "error"
	switch {
	case errors.Is(err, domain.ErrCouponNotFound):
		result = "not_found"
	case errors.Is(err, domain.ErrCouponAlreadyUsed):
		result = "already_used"
	case errors.Is(err, domain.ErrCouponExpired):
		result = "expired"
	default:
		span.SetStatus(codes.Error, "failed to redeem coupon")
		logger.Ctx(ctx).Error().Err(err).Msg("coupon redemption failed")
	}
	metrics.CouponRedemptions.WithLabelValues(result).Inc()
	span.RecordError(err)
	return err
}

// PreviewDiscount 试算优惠券对 subtotal 的减免，不改变优惠券状态
func (s *CouponLifecycleService) PreviewDiscount(ctx context.Context, id int64, subtotal decimal.Decimal) (*DiscountQuote, error) {
	ctx, span := s.tracer.Start(ctx, "service.PreviewDiscount")
	defer span.End()
	span.SetAttributes(attribute.Int64("coupon.id", id), attribute.String("order.subtotal", subtotal.String()))

	if subtotal.IsNegative() {
		return nil, domain.ErrInvalidSubtotal
	}
	coupon, err := s.couponRepo.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := coupon.CheckRedeemable(s.now()); err != nil {
		return nil, err
	}
	discount, err := coupon.Discount()
	if err != nil {
		return nil, err
	}

	off := discount.Apply(subtotal)
	return &DiscountQuote{
		CouponID:     coupon.ID,
		DiscountType: discount.Type(),
		Subtotal:     subtotal,
		Discount:     off,
		FinalAmount:  decimal.Max(subtotal.Sub(off), decimal.Zero),
	}, nil
}

func (s *CouponLifecycleService) GetCoupon(ctx context.Context, id int64) (*domain.Coupon, error) {
	ctx, span := s.tracer.Start(ctx, "service.GetCoupon")
	defer span.End()
	return s.couponRepo.FindByID(ctx, id)
}

func (s *CouponLifecycleService) ListCoupons(ctx context.Context) ([]*domain.Coupon, error) {
	ctx, span := s.tracer.Start(ctx, "service.ListCoupons")
	defer span.End()
	return s.couponRepo.FindAll(ctx)
}

func (s *CouponLifecycleService) ListCouponsByUser(ctx context.Context, userID int64) ([]*domain.Coupon, error) {
	ctx, span := s.tracer.Start(ctx, "service.ListCouponsByUser")
	defer span.End()
	return s.couponRepo.FindByUserID(ctx, userID)
}

var expiryLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// parseExpiry 接受 RFC3339，以及不带时区（按 UTC 解释）的日期时间
func parseExpiry(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range expiryLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.WithMessagef(domain.ErrInvalidExpiry, "cannot parse %q", raw)
}
