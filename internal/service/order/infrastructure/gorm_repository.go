package infrastructure

import (
	"context"

	"bistro/internal/pkg/database"
	"bistro/internal/service/order/domain"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GormOrderRepository 是 OrderRepository 的 GORM 实现。
// 所有方法都通过 database.Conn 取连接，因此会自动加入 ctx 中的事务。
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	model := fromDomainOrder(order)
	model.ID = 0
	if err := database.Conn(ctx, r.db).Create(model).Error; err != nil {
		return nil, errors.Wrap(err, "insert order")
	}
	return toDomainOrder(model), nil
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	var model OrderModel
	err := database.Conn(ctx, r.db).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, errors.Wrapf(err, "find order %d", id)
	}
	return toDomainOrder(&model), nil
}

func (r *GormOrderRepository) FindAll(ctx context.Context) ([]*domain.Order, error) {
	var models []OrderModel
	if err := database.Conn(ctx, r.db).Order("id DESC").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	orders := make([]*domain.Order, len(models))
	for i := range models {
		orders[i] = toDomainOrder(&models[i])
	}
	return orders, nil
}

func (r *GormOrderRepository) Delete(ctx context.Context, id int64) error {
	if err := database.Conn(ctx, r.db).Delete(&OrderModel{}, id).Error; err != nil {
		return errors.Wrapf(err, "delete order %d", id)
	}
	return nil
}

// GormOrderLineRepository 是 OrderLineRepository 的 GORM 实现
type GormOrderLineRepository struct {
	db *gorm.DB
}

func NewGormOrderLineRepository(db *gorm.DB) *GormOrderLineRepository {
	return &GormOrderLineRepository{db: db}
}

func (r *GormOrderLineRepository) Create(ctx context.Context, line *domain.OrderLine) (*domain.OrderLine, error) {
	model := fromDomainLine(line)
	model.ID = 0
	if err := database.Conn(ctx, r.db).Create(model).Error; err != nil {
		return nil, errors.Wrapf(err, "insert line for order %d", line.OrderID)
	}
	created := toDomainLine(model)
	return &created, nil
}

func (r *GormOrderLineRepository) FindByOrderID(ctx context.Context, orderID int64) ([]domain.OrderLine, error) {
	var models []OrderLineModel
	err := database.Conn(ctx, r.db).Where("order_id = ?", orderID).Order("id ASC").Find(&models).Error
	if err != nil {
		return nil, errors.Wrapf(err, "list lines of order %d", orderID)
	}
	lines := make([]domain.OrderLine, len(models))
	for i := range models {
		lines[i] = toDomainLine(&models[i])
	}
	return lines, nil
}

func (r *GormOrderLineRepository) DeleteByOrderID(ctx context.Context, orderID int64) error {
	if err := database.Conn(ctx, r.db).Where("order_id = ?", orderID).Delete(&OrderLineModel{}).Error; err != nil {
		return errors.Wrapf(err, "delete lines of order %d", orderID)
	}
	return nil
}
