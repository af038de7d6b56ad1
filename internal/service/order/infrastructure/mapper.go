package infrastructure

import (
	"time"

	"bistro/internal/service/order/domain"
)

func toDomainOrder(m *OrderModel) *domain.Order {
	return &domain.Order{
		ID:          m.ID,
		UserID:      m.UserID,
		IsCooked:    m.IsCooked,
		IsPayment:   m.IsPayment,
		IsTakeOut:   m.IsTakeOut,
		CreatedAt:   m.CreatedAt,
		Description: m.Description,
		IsComplete:  m.IsComplete,
	}
}

// fromDomainOrder 把时间截断到毫秒，与 datetime(3) 列的精度一致
func fromDomainOrder(o *domain.Order) *OrderModel {
	return &OrderModel{
		ID:          o.ID,
		UserID:      o.UserID,
		IsCooked:    o.IsCooked,
		IsPayment:   o.IsPayment,
		IsTakeOut:   o.IsTakeOut,
		CreatedAt:   o.CreatedAt.Truncate(time.Millisecond),
		Description: o.Description,
		IsComplete:  o.IsComplete,
	}
}

func toDomainLine(m *OrderLineModel) domain.OrderLine {
	return domain.OrderLine{
		ID:       m.ID,
		OrderID:  m.OrderID,
		ItemID:   m.ItemID,
		Quantity: m.Quantity,
	}
}

func fromDomainLine(l *domain.OrderLine) *OrderLineModel {
	return &OrderLineModel{
		ID:       l.ID,
		OrderID:  l.OrderID,
		ItemID:   l.ItemID,
		Quantity: l.Quantity,
	}
}
