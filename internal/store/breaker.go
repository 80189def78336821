package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/cmatteri/wxplot/internal/plot"
)

// ErrUnavailable is returned while the breaker is open and archive queries
// are being shed.
var ErrUnavailable = errors.New("archive store unavailable")

// Breaker wraps a plot.Reader with a circuit breaker so a failing database
// sheds load quickly instead of queueing every plot request behind timeouts.
type Breaker struct {
	inner plot.Reader
	cb    *gobreaker.CircuitBreaker
}

// NewBreaker wraps inner. The circuit opens after five consecutive failures
// and probes again after 30 seconds.
func NewBreaker(inner plot.Reader, log *zap.Logger) *Breaker {
	settings := gobreaker.Settings{
		Name:        "archive-store",
		MaxRequests: 3,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("store breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
	return &Breaker{inner: inner, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (b *Breaker) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return result, err
}

func (b *Breaker) QueryAggregate(ctx context.Context, table, column string, fn plot.AggregateType, startEx, stopInc int64) (*plot.AggregateRow, error) {
	result, err := b.execute(func() (interface{}, error) {
		return b.inner.QueryAggregate(ctx, table, column, fn, startEx, stopInc)
	})
	if err != nil {
		return nil, err
	}
	return result.(*plot.AggregateRow), nil
}

func (b *Breaker) QueryLast(ctx context.Context, table, column string, startEx, stopInc int64) (*plot.AggregateRow, error) {
	result, err := b.execute(func() (interface{}, error) {
		return b.inner.QueryLast(ctx, table, column, startEx, stopInc)
	})
	if err != nil {
		return nil, err
	}
	return result.(*plot.AggregateRow), nil
}

func (b *Breaker) ScanRaw(ctx context.Context, table, column string, startInc, stopInc int64) ([]plot.RawRecord, error) {
	result, err := b.execute(func() (interface{}, error) {
		return b.inner.ScanRaw(ctx, table, column, startInc, stopInc)
	})
	if err != nil {
		return nil, err
	}
	return result.([]plot.RawRecord), nil
}
