package alerts_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pillbox/internal/alerts"
	"github.com/MrJamesThe3rd/pillbox/internal/inventory"
	"github.com/MrJamesThe3rd/pillbox/internal/metrics"
)

type stubLedger struct {
	expiring    []*inventory.Product
	low         []inventory.ProductRow
	expiringErr error
	days        int
}

func (s *stubLedger) ExpiringWithin(_ context.Context, days int) ([]*inventory.Product, error) {
	s.days = days
	return s.expiring, s.expiringErr
}

func (s *stubLedger) LowStockProducts(_ context.Context) ([]inventory.ProductRow, error) {
	return s.low, nil
}

func TestSweeper_Run(t *testing.T) {
	low := &inventory.Product{ID: 2, Name: "Insulin", QuantityRemaining: 3}
	ledger := &stubLedger{
		expiring: []*inventory.Product{{ID: 1, Name: "Amoxicillin", ExpiryDate: "2024-06-05"}},
		low:      []inventory.ProductRow{{Product: low, IsLowStock: true}},
	}
	m := metrics.New(prometheus.NewRegistry())

	res, err := alerts.NewSweeper(ledger, 7, m).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, ledger.days)
	assert.Len(t, res.Expiring, 1)
	assert.Equal(t, []*inventory.Product{low}, res.LowStock)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ExpiringProducts))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.LowStockProducts))
}

func TestSweeper_RunError(t *testing.T) {
	ledger := &stubLedger{expiringErr: errors.New("db down")}

	_, err := alerts.NewSweeper(ledger, 7, nil).Run(context.Background())
	assert.Error(t, err)
}

func TestSweeper_StartRejectsBadSpec(t *testing.T) {
	s := alerts.NewSweeper(&stubLedger{}, 7, nil)

	assert.Error(t, s.Start("not a schedule"))
	s.Stop()
}

func TestSweeper_StartStop(t *testing.T) {
	s := alerts.NewSweeper(&stubLedger{}, 30, nil)

	require.NoError(t, s.Start("@daily"))
	s.Stop()
}
