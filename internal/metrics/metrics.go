// Package metrics registers the Prometheus instruments exposed on the
// ops HTTP endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records chat-event and ledger counters.
type Metrics struct {
	Events         *prometheus.CounterVec
	SalesCreated   prometheus.Counter
	StockConflicts prometheus.Counter
}

// New registers the instruments on reg. A nil registerer yields inert
// instruments, which keeps tests free of registry bookkeeping.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bot_events_total",
			Help: "Chat events handled, by kind.",
		}, []string{"kind"}),
		SalesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bot_sales_created_total",
			Help: "Sales committed to the ledger.",
		}),
		StockConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bot_stock_conflicts_total",
			Help: "Sale commits rejected by the stock precondition.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Events, m.SalesCreated, m.StockConflicts)
	}
	return m
}
