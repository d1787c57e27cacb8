package controller

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gridbot_rebuild_cycles_total",
		Help: "Completed grid rebuild cycles.",
	})

	correctionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gridbot_price_corrections_total",
		Help: "Cycles where the grid was re-centered on the consensus price.",
	})
)
