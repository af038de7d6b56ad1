// internal/service/order/domain/repository.go
package domain

import "context"

// OrderRepository 定义了订单头的持久化接口。
// 它位于领域层，但由基础设施层实现。
type OrderRepository interface {
	// Create 写入订单头，ID 由存储分配
	Create(ctx context.Context, order *Order) (*Order, error)

	// FindByID 找不到时返回 ErrOrderNotFound
	FindByID(ctx context.Context, id int64) (*Order, error)

	FindAll(ctx context.Context) ([]*Order, error)

	// Delete 只用于下单失败时的补偿
	Delete(ctx context.Context, id int64) error
}

// OrderLineRepository 定义了订单行的持久化接口
type OrderLineRepository interface {
	Create(ctx context.Context, line *OrderLine) (*OrderLine, error)

	// FindByOrderID 按写入顺序返回订单行
	FindByOrderID(ctx context.Context, orderID int64) ([]OrderLine, error)

	// DeleteByOrderID 只用于下单失败时的补偿
	DeleteByOrderID(ctx context.Context, orderID int64) error
}
