// internal/service/order/domain/event.go
package domain

import "time"

// OrderPlaced 在订单头和全部订单行写入成功后发布
type OrderPlaced struct {
	OrderID     int64      `json:"orderId"`
	UserID      int64      `json:"userId"`
	IsTakeOut   bool       `json:"isTakeOut"`
	Description string     `json:"description"`
	Items       []LineItem `json:"items"`
	PlacedAt    time.Time  `json:"placedAt"`
}

func (OrderPlaced) EventName() string { return "order.placed" }

// NewOrderPlaced 从已持久化的订单构造事件
func NewOrderPlaced(detail *OrderDetail) *OrderPlaced {
	items := make([]LineItem, len(detail.Lines))
	for i, l := range detail.Lines {
		items[i] = LineItem{ItemID: l.ItemID, Quantity: l.Quantity}
	}
	return &OrderPlaced{
		OrderID:     detail.ID,
		UserID:      detail.UserID,
		IsTakeOut:   detail.IsTakeOut,
		Description: detail.Description,
		Items:       items,
		PlacedAt:    detail.CreatedAt,
	}
}
