package port

import "context"

// Transactor 在同一个存储事务中执行 fn，fn 内的仓储调用必须使用传入的 ctx
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
