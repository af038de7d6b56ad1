// internal/service/order/application/dto.go
package application

import "bistro/internal/service/order/domain"

// PlaceOrderRequest 是下单用例的输入数据
type PlaceOrderRequest struct {
	UserID    int64             `json:"userId"`
	IsTakeOut bool              `json:"isTakeOut"`
	ItemList  []domain.LineItem `json:"itemList"`
}
