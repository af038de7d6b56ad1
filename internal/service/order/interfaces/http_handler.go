package interfaces

import (
	"net/http"

	"bistro/internal/pkg/httpx"
	"bistro/internal/service/order/application"
)

// OrderHandler 封装了订单服务的 HTTP 处理器
type OrderHandler struct {
	service *application.OrderPlacementService
}

func NewOrderHandler(service *application.OrderPlacementService) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /orders", h.placeOrder)
	mux.HandleFunc("GET /orders", h.listOrders)
	mux.HandleFunc("GET /orders/{id}", h.getOrder)
}

func (h *OrderHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	r = httpx.Context(r)

	var req application.PlaceOrderRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	detail, err := h.service.PlaceOrder(r.Context(), &req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, detail)
}

func (h *OrderHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	r = httpx.Context(r)

	orders, err := h.service.ListOrders(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	r = httpx.Context(r)

	id, ok := httpx.PathInt64(w, r, "id")
	if !ok {
		return
	}
	detail, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, detail)
}
