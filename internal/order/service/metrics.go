package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	kindSales = "sales"
	kindPoint = "point"
)

var (
	ordersSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "openunited",
		Subsystem: "settlement",
		Name:      "orders_settled_total",
		Help:      "Orders settled successfully, by order kind.",
	}, []string{"kind"})

	ordersRefunded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "openunited",
		Subsystem: "settlement",
		Name:      "orders_refunded_total",
		Help:      "Orders refunded, by order kind.",
	}, []string{"kind"})
)
