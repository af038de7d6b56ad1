package interfaces

import (
	"net/http"

	"bistro/internal/pkg/httpx"
	"bistro/internal/service/promotion/application"
	"bistro/internal/service/promotion/domain"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// CouponHandler 封装了优惠券服务的 HTTP 处理器
type CouponHandler struct {
	service *application.CouponLifecycleService
}

// NewCouponHandler 创建一个新的 HTTP 处理器实例
func NewCouponHandler(service *application.CouponLifecycleService) *CouponHandler {
	return &CouponHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *CouponHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /coupons", h.createCoupon)
	mux.HandleFunc("GET /coupons", h.listCoupons)
	mux.HandleFunc("GET /coupons/{id}", h.getCoupon)
	mux.HandleFunc("PATCH /coupons/{id}", h.updateCoupon)
	mux.HandleFunc("POST /coupons/{id}/use", h.useCoupon)
	mux.HandleFunc("GET /coupons/{id}/quote", h.quote)
	mux.HandleFunc("GET /users/{userId}/coupons", h.listUserCoupons)
}

func (h *CouponHandler) createCoupon(w http.ResponseWriter, r *http.Request) {
	r = httpx.Context(r)

	var req application.CreateCouponRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	coupon, err := h.service.CreateCoupon(r.Context(), &req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, coupon)
}

func (h *CouponHandler) listCoupons(w http.ResponseWriter, r *http.Request) {
	r = httpx.Context(r)

	coupons, err := h.service.ListCoupons(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, coupons)
}

func (h *CouponHandler) listUserCoupons(w http.ResponseWriter, r *http.Request) {
	r = httpx.Context(r)

	userID, ok := httpx.PathInt64(w, r, "userId")
	if !ok {
		return
	}
	coupons, err := h.service.ListCouponsByUser(r.Context(), userID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, coupons)
}

func (h *CouponHandler) getCoupon(w http.ResponseWriter, r *http.Request) {
	r = httpx.Context(r)

	id, ok := httpx.PathInt64(w, r, "id")
	if !ok {
		return
	}
	coupon, err := h.service.GetCoupon(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, coupon)
}

func (h *CouponHandler) updateCoupon(w http.ResponseWriter, r *http.Request) {
	r = httpx.Context(r)

	id, ok := httpx.PathInt64(w, r, "id")
	if !ok {
		return
	}
	var req application.UpdateCouponRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	coupon, err := h.service.UpdateCoupon(r.Context(), id, &req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, coupon)
}

func (h *CouponHandler) useCoupon(w http.ResponseWriter, r *http.Request) {
	r = httpx.Context(r)

	id, ok := httpx.PathInt64(w, r, "id")
	if !ok {
		return
	}
	resp, err := h.service.UseCoupon(r.Context(), id)
	if err != nil {
		// 已使用和已过期都返回 409，靠错误信息区分
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *CouponHandler) quote(w http.ResponseWriter, r *http.Request) {
	r = httpx.Context(r)

	id, ok := httpx.PathInt64(w, r, "id")
	if !ok {
		return
	}
	subtotal, err := decimal.NewFromString(r.URL.Query().Get("subtotal"))
	if err != nil {
		httpx.WriteError(w, r, errors.WithMessage(domain.ErrInvalidSubtotal, "subtotal query parameter"))
		return
	}
	quote, err := h.service.PreviewDiscount(r.Context(), id, subtotal)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, quote)
}
