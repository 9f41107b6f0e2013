package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/fastprodman/betroyal/internal/repos/transactions"
)

func sumOf(t *testing.T, rm metricdata.ResourceMetrics, name string, attrs ...attribute.KeyValue) int64 {
	t.Helper()

	want := attribute.NewSet(attrs...)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				if dp.Attributes.Equals(&want) {
					return dp.Value
				}
			}
		}
	}

	return 0
}

func TestLedgerMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	m, err := NewLedgerMetrics(mp)
	require.NoError(t, err)

	ctx := t.Context()
	m.Applied(ctx, transactions.KindDeposit, 1000)
	m.Applied(ctx, transactions.KindDeposit, 500)
	m.Applied(ctx, transactions.KindLoss, 200)
	m.Rejected(ctx, transactions.KindWithdrawal, "insufficient_balance")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	deposit := attribute.String("type", "deposit")
	assert.Equal(t, int64(2), sumOf(t, rm, "ledger_transactions_applied_total", deposit))
	assert.Equal(t, int64(1500), sumOf(t, rm, "ledger_coins_moved_total", deposit))
	assert.Equal(t, int64(1), sumOf(t, rm, "ledger_transactions_rejected_total",
		attribute.String("type", "withdrawal"), attribute.String("reason", "insufficient_balance")))
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := NewMeterProvider("betroyal-test", false, time.Minute)
	require.NoError(t, err)
	require.NoError(t, mp.Shutdown(context.Background()))
}
