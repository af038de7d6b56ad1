// internal/service/order/domain/order.go
package domain

import (
	"fmt"
	"strings"
	"time"

	"bistro/internal/pkg/apperr"
)

var (
	ErrEmptyItemList   = apperr.New(apperr.ErrValidation, "item list must not be empty")
	ErrInvalidItem     = apperr.New(apperr.ErrValidation, "item id must be positive")
	ErrInvalidQuantity = apperr.New(apperr.ErrValidation, "quantity must be positive")
	ErrOrderNotFound   = apperr.New(apperr.ErrNotFound, "order not found")
)

// Order 是订单头，履约相关的标记由后厨流程修改
type Order struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	IsCooked    bool      `json:"isCooked"`
	IsPayment   bool      `json:"isPayment"`
	IsTakeOut   bool      `json:"isTakeOut"`
	CreatedAt   time.Time `json:"createdAt"`
	Description string    `json:"description"`
	IsComplete  bool      `json:"isComplete"`
}

// OrderLine 是订单中的一行商品，下单后不可变
type OrderLine struct {
	ID       int64 `json:"id"`
	OrderID  int64 `json:"orderId"`
	ItemID   int64 `json:"itemId"`
	Quantity int   `json:"quantity"`
}

// LineItem 是下单请求中的一项
type LineItem struct {
	ItemID   int64 `json:"itemId"`
	Quantity int   `json:"quantity"`
}

// OrderDetail 订单头加上全部订单行
type OrderDetail struct {
	Order
	Lines []OrderLine `json:"orderLists"`
}

// NewOrder 校验商品列表并生成一个尚未持久化的订单头
func NewOrder(userID int64, isTakeOut bool, items []LineItem, now time.Time) (*Order, error) {
	if err := ValidateItems(items); err != nil {
		return nil, err
	}
	return &Order{
		UserID:      userID,
		IsTakeOut:   isTakeOut,
		CreatedAt:   now,
		Description: Describe(items),
	}, nil
}

// ValidateItems 要求至少一项，且每项的商品和数量都为正
func ValidateItems(items []LineItem) error {
	if len(items) == 0 {
		return ErrEmptyItemList
	}
	for i, it := range items {
		if it.ItemID <= 0 {
			return fmt.Errorf("items[%d]: %w", i, ErrInvalidItem)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
		}
	}
	return nil
}

// Describe 按输入顺序生成 "商品1 x1, 商品4 x2" 形式的摘要
func Describe(items []LineItem) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprintf("商品%d x%d", it.ItemID, it.Quantity)
	}
	return strings.Join(parts, ", ")
}

// NewLine 为已持久化的订单生成一行
func (o *Order) NewLine(item LineItem) *OrderLine {
	return &OrderLine{OrderID: o.ID, ItemID: item.ItemID, Quantity: item.Quantity}
}
