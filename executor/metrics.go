package executor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersPlaced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gridbot_orders_placed_total",
		Help: "Limit orders accepted by the primary venue.",
	}, []string{"side"})

	ordersFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gridbot_orders_failed_total",
		Help: "Order operations rejected or unreachable, by operation (buy, sell, cancel).",
	}, []string{"op"})
)
