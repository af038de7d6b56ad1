package infrastructure

import (
	"context"
	"sort"
	"sync"

	"bistro/internal/service/order/domain"
)

// MemoryStore 是进程内的订单存储，不支持事务，下单时走补偿路径。
// ID 由自增计数器分配。
type MemoryStore struct {
	mu         sync.RWMutex
	orders     map[int64]domain.Order
	lines      map[int64][]domain.OrderLine
	nextOrder  int64
	nextLineID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders: make(map[int64]domain.Order),
		lines:  make(map[int64][]domain.OrderLine),
	}
}

// Orders 返回 OrderRepository 视图
func (s *MemoryStore) Orders() *MemoryOrderRepository { return &MemoryOrderRepository{s: s} }

// Lines 返回 OrderLineRepository 视图
func (s *MemoryStore) Lines() *MemoryOrderLineRepository { return &MemoryOrderLineRepository{s: s} }

type MemoryOrderRepository struct{ s *MemoryStore }

func (r *MemoryOrderRepository) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextOrder++
	created := *order
	created.ID = r.s.nextOrder
	r.s.orders[created.ID] = created
	return &created, nil
}

func (r *MemoryOrderRepository) FindByID(_ context.Context, id int64) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return &o, nil
}

func (r *MemoryOrderRepository) FindAll(_ context.Context) ([]*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.Order, 0, len(r.s.orders))
	for _, o := range r.s.orders {
		o := o
		out = append(out, &o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *MemoryOrderRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.orders, id)
	return nil
}

type MemoryOrderLineRepository struct{ s *MemoryStore }

func (r *MemoryOrderLineRepository) Create(_ context.Context, line *domain.OrderLine) (*domain.OrderLine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextLineID++
	created := *line
	created.ID = r.s.nextLineID
	r.s.lines[created.OrderID] = append(r.s.lines[created.OrderID], created)
	return &created, nil
}

func (r *MemoryOrderLineRepository) FindByOrderID(_ context.Context, orderID int64) ([]domain.OrderLine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]domain.OrderLine(nil), r.s.lines[orderID]...), nil
}

func (r *MemoryOrderLineRepository) DeleteByOrderID(_ context.Context, orderID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.lines, orderID)
	return nil
}
