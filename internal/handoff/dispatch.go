package handoff

import (
	"context"
	"fmt"
	"time"

	pkgerrors "github.com/freshbowl/storefront/pkg/errors"
	"github.com/freshbowl/storefront/pkg/logger"
	"github.com/freshbowl/storefront/pkg/metrics"
	"go.uber.org/multierr"
)

// Strategy is one way of handing a deep link to the messaging client.
type Strategy interface {
	Name() string
	Open(ctx context.Context, link string) error
}

// Dispatcher tries its strategies in order until one succeeds. There are
// no retries; once a strategy accepts the link the handoff is done.
type Dispatcher struct {
	strategies []Strategy
	metrics    *metrics.HandoffMetrics
	logg       *logger.Logger
}

func NewDispatcher(logg *logger.Logger, m *metrics.HandoffMetrics, strategies ...Strategy) *Dispatcher {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Dispatcher{strategies: strategies, metrics: m, logg: logg}
}

// Dispatch returns the name of the strategy that accepted link. When every
// strategy fails the error is CHANNEL_UNAVAILABLE with all causes attached.
func (d *Dispatcher) Dispatch(ctx context.Context, link string) (string, error) {
	start := time.Now()
	var errs error
	for _, strategy := range d.strategies {
		err := strategy.Open(ctx, link)
		d.metrics.IncAttempt(strategy.Name(), err == nil)
		if err == nil {
			d.metrics.ObserveDispatch(time.Since(start), true)
			d.logg.Info(d.logg.WithField(ctx, "strategy", strategy.Name()), "handoff.dispatched")
			return strategy.Name(), nil
		}
		warnCtx := d.logg.WithFields(ctx, map[string]any{"strategy": strategy.Name(), "error": err.Error()})
		d.logg.Warn(warnCtx, "handoff.strategy_failed")
		errs = multierr.Append(errs, fmt.Errorf("%s: %w", strategy.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	d.metrics.ObserveDispatch(time.Since(start), false)
	if errs == nil {
		return "", pkgerrors.New(pkgerrors.CodeChannelUnavailable, "no messaging channel configured")
	}
	return "", pkgerrors.Wrap(pkgerrors.CodeChannelUnavailable, errs, "could not open the messaging app")
}
