package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/fastprodman/betroyal/internal/repos/transactions"
)

const meterName = "github.com/fastprodman/betroyal/ledger"

// NewMeterProvider builds the process meter provider and installs it globally.
// When disabled the provider has no reader and records nothing.
func NewMeterProvider(serviceName string, enabled bool, interval time.Duration) (*sdkmetric.MeterProvider, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(attribute.String("service.name", serviceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	if enabled {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("create console exporter: %w", err)
		}

		opts = append(opts, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)),
		))
	}

	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)

	return mp, nil
}

// LedgerMetrics counts ledger outcomes by transaction type.
type LedgerMetrics struct {
	applied  metric.Int64Counter
	coins    metric.Int64Counter
	rejected metric.Int64Counter
}

func NewLedgerMetrics(mp metric.MeterProvider) (*LedgerMetrics, error) {
	meter := mp.Meter(meterName)

	applied, err := meter.Int64Counter("ledger_transactions_applied_total",
		metric.WithDescription("Ledger requests applied"),
	)
	if err != nil {
		return nil, fmt.Errorf("create applied counter: %w", err)
	}

	coins, err := meter.Int64Counter("ledger_coins_moved_total",
		metric.WithDescription("Coins moved by applied ledger requests"),
		metric.WithUnit("{coin}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create coins counter: %w", err)
	}

	rejected, err := meter.Int64Counter("ledger_transactions_rejected_total",
		metric.WithDescription("Ledger requests rejected"),
	)
	if err != nil {
		return nil, fmt.Errorf("create rejected counter: %w", err)
	}

	return &LedgerMetrics{applied: applied, coins: coins, rejected: rejected}, nil
}

func (m *LedgerMetrics) Applied(ctx context.Context, kind transactions.Kind, amount int64) {
	attrs := metric.WithAttributes(attribute.String("type", string(kind)))
	m.applied.Add(ctx, 1, attrs)
	m.coins.Add(ctx, amount, attrs)
}

func (m *LedgerMetrics) Rejected(ctx context.Context, kind transactions.Kind, reason string) {
	m.rejected.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", string(kind)),
		attribute.String("reason", reason),
	))
}
