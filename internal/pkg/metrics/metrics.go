// Package metrics 汇总了业务指标，由 /metrics 端点暴露给 Prometheus。
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bistro"

var (
	OrdersPlaced = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "order",
		Name:      "placed_total",
		Help:      "Orders persisted together with all of their lines.",
	})

	OrderPlacementFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "order",
		Name:      "placement_failures_total",
		Help:      "Order placements that did not complete, by stage.",
	}, []string{"stage"})

	OrderCompensations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "order",
		Name:      "compensations_total",
		Help:      "Rollback steps executed after a partial order write, by outcome.",
	}, []string{"outcome"})

	CouponRedemptions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "coupon",
		Name:      "redemptions_total",
		Help:      "Coupon redemption attempts, by result.",
	}, []string{"result"})

	UniquenessConflicts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uniqueness_conflicts_total",
		Help:      "Writes rejected because a unique slot was already taken, by scope.",
	}, []string{"scope"})
)

func init() {
	prometheus.MustRegister(
		OrdersPlaced,
		OrderPlacementFailures,
		OrderCompensations,
		CouponRedemptions,
		UniquenessConflicts,
	)
}

// Handler 返回 Prometheus 抓取端点
func Handler() http.Handler {
	return promhttp.Handler()
}
