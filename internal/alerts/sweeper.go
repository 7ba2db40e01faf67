package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/MrJamesThe3rd/pillbox/internal/inventory"
	"github.com/MrJamesThe3rd/pillbox/internal/metrics"
)

const sweepTimeout = 30 * time.Second

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Ledger is the read side of the inventory service used by the sweep.
type Ledger interface {
	ExpiringWithin(ctx context.Context, days int) ([]*inventory.Product, error)
	LowStockProducts(ctx context.Context) ([]inventory.ProductRow, error)
}

// Result is the outcome of a single sweep.
type Result struct {
	Expiring []*inventory.Product
	LowStock []*inventory.Product
}

// Sweeper periodically logs products that are about to expire or running low.
type Sweeper struct {
	ledger  Ledger
	days    int
	metrics *metrics.Metrics
	sched   *cron.Cron
}

func NewSweeper(ledger Ledger, days int, m *metrics.Metrics) *Sweeper {
	return &Sweeper{ledger: ledger, days: days, metrics: m}
}

// Run performs one sweep.
func (s *Sweeper) Run(ctx context.Context) (*Result, error) {
	expiring, err := s.ledger.ExpiringWithin(ctx, s.days)
	if err != nil {
		return nil, fmt.Errorf("expiring products: %w", err)
	}

	low, err := s.ledger.LowStockProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("low stock products: %w", err)
	}

	res := &Result{Expiring: expiring, LowStock: make([]*inventory.Product, 0, len(low))}

	for _, p := range expiring {
		slog.Warn("product expiring soon",
			"product_id", p.ID, "name", p.Name, "expiry_date", p.ExpiryDate, "window_days", s.days)
	}

	for _, r := range low {
		res.LowStock = append(res.LowStock, r.Product)
		slog.Warn("product low on stock",
			"product_id", r.Product.ID, "name", r.Product.Name, "quantity_remaining", r.Product.QuantityRemaining)
	}

	if s.metrics != nil {
		s.metrics.ExpiringProducts.Set(float64(len(res.Expiring)))
		s.metrics.LowStockProducts.Set(float64(len(res.LowStock)))
	}

	return res, nil
}

// Start schedules the sweep with a cron spec such as "@daily" or "0 8 * * *".
func (s *Sweeper) Start(spec string) error {
	s.sched = cron.New(cron.WithParser(cronParser))

	_, err := s.sched.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		if _, err := s.Run(ctx); err != nil {
			slog.Error("alert sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling alert sweep %q: %w", spec, err)
	}

	s.sched.Start()

	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.sched == nil {
		return
	}

	<-s.sched.Stop().Done()
}
