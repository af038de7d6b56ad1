package application

import (
	"context"
	stderrors "errors"
	"sync"

	"bistro/internal/pkg/logger"
	"bistro/internal/pkg/metrics"
)

// compensations 保存已完成写入的撤销动作，失败时按后进先出执行
type compensations struct {
	mu    sync.Mutex
	steps []compensation
}

type compensation struct {
	name string
	fn   func(ctx context.Context) error
}

func (c *compensations) add(name string, fn func(ctx context.Context) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps = append([]compensation{{name: name, fn: fn}}, c.steps...)
}

// trigger 执行全部补偿，单步失败不会中断后续步骤
func (c *compensations) trigger(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	logger.Ctx(ctx).Warn().Int("steps", len(c.steps)).Msg("executing order compensations")
	var errs []error
	for _, step := range c.steps {
		if err := step.fn(ctx); err != nil {
			metrics.OrderCompensations.WithLabelValues("failed").Inc()
			logger.Ctx(ctx).Error().Err(err).Str("step", step.name).Msg("compensation step failed")
			errs = append(errs, err)
			continue
		}
		metrics.OrderCompensations.WithLabelValues("succeeded").Inc()
	}
	c.steps = nil
	return stderrors.Join(errs...)
}
