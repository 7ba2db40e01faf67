package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MrJamesThe3rd/pillbox/internal/inventory"
)

type Metrics struct {
	SalesRecorded    prometheus.Counter
	UnitsSold        prometheus.Counter
	SalesRejected    *prometheus.CounterVec
	ExpiringProducts prometheus.Gauge
	LowStockProducts prometheus.Gauge
}

// New creates the ledger metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SalesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pillbox_sales_recorded_total",
			Help: "Sales successfully recorded",
		}),
		UnitsSold: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pillbox_units_sold_total",
			Help: "Units deducted from stock by sales",
		}),
		SalesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pillbox_sales_rejected_total",
			Help: "Sales rejected, by reason",
		}, []string{"reason"}),
		ExpiringProducts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pillbox_expiring_products",
			Help: "Products expiring within the alert window at the last sweep",
		}),
		LowStockProducts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pillbox_low_stock_products",
			Help: "Products below the low stock threshold at the last sweep",
		}),
	}

	reg.MustRegister(m.SalesRecorded, m.UnitsSold, m.SalesRejected, m.ExpiringProducts, m.LowStockProducts)

	return m
}

// ObserveSale counts the outcome of a RecordSale call.
func (m *Metrics) ObserveSale(sale *inventory.Sale, err error) {
	if err == nil {
		m.SalesRecorded.Inc()
		m.UnitsSold.Add(float64(sale.QuantitySold))

		return
	}

	m.SalesRejected.WithLabelValues(RejectReason(err)).Inc()
}

// RejectReason classifies a sale error for the rejected counter.
func RejectReason(err error) string {
	switch {
	case errors.Is(err, inventory.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, inventory.ErrNotFound):
		return "not_found"
	case errors.Is(err, inventory.ErrValidation):
		return "validation"
	default:
		return "internal"
	}
}
