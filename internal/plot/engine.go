package plot

import (
	"context"
	"fmt"
	"time"
)

// Reader is the narrow read-only surface the engine needs from the archive
// store. A nil row (with nil error) means the bucket had no qualifying
// records; that is a normal condition, not an error.
type Reader interface {
	// QueryAggregate computes fn over column for records with
	// startEx < dateTime <= stopInc.
	QueryAggregate(ctx context.Context, table, column string, fn AggregateType, startEx, stopInc int64) (*AggregateRow, error)

	// QueryLast returns the value of column on the record with the greatest
	// dateTime in (startEx, stopInc] where column is non-null.
	QueryLast(ctx context.Context, table, column string, startEx, stopInc int64) (*AggregateRow, error)

	// ScanRaw returns the raw records with startInc <= dateTime <= stopInc in
	// ascending timestamp order.
	ScanRaw(ctx context.Context, table, column string, startInc, stopInc int64) ([]RawRecord, error)
}

// UnitResolver maps a unit-system code and observation type to the standard
// unit the stored values are expressed in.
type UnitResolver interface {
	StandardUnit(system int, obsType string, agg AggregateType) (unitType, unitGroup string)
}

// Engine evaluates series requests against an injected Reader. It holds no
// per-request state; all request state is local to a single Series call.
type Engine struct {
	reader Reader
	units  UnitResolver
	loc    *time.Location
}

// NewEngine creates an Engine. loc is the timezone used for local-wall-clock
// intervals; nil means the process-local zone.
func NewEngine(reader Reader, units UnitResolver, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{reader: reader, units: units, loc: loc}
}

// unitGuard pins the first unit system seen in a series and rejects any later
// deviation. One inconsistency anywhere aborts the whole request.
type unitGuard struct {
	system int
	pinned bool
}

func (g *unitGuard) observe(min, max int) error {
	if g.pinned {
		if g.system != min || g.system != max {
			return &UnitMismatchError{Seen: g.system, Min: min, Max: max}
		}
		return nil
	}
	if min != max {
		return &UnitMismatchError{Seen: min, Min: min, Max: max}
	}
	g.system = min
	g.pinned = true
	return nil
}

// Series evaluates opts and returns the start, stop and data vectors. With an
// aggregate type set, each generated bucket is aggregated independently and
// buckets without data are omitted from the result. With AggNone, the raw
// archive records in the timespan are returned, each spanning
// (timestamp - recorded interval, timestamp]. Unit-system consistency is
// enforced across the entire result either way.
func (e *Engine) Series(ctx context.Context, opts Options) (SeriesResult, error) {
	if !opts.Aggregate.Valid() {
		return SeriesResult{}, fmt.Errorf("%w: %q", ErrBadAggregate, opts.Aggregate)
	}

	var (
		startVec []int64
		stopVec  []int64
		dataVec  []*float64
		guard    unitGuard
	)

	if opts.Aggregate != AggNone {
		if opts.IntervalSecs <= 0 {
			return SeriesResult{}, ErrIntervalRequired
		}

		var spans []Span
		if opts.UnixIntervals {
			spans = UnixSpans(opts.Timespan, opts.IntervalSecs)
		} else {
			spans = LocalSpans(opts.Timespan, opts.IntervalSecs, e.loc)
		}

		for _, span := range spans {
			var (
				row *AggregateRow
				err error
			)
			if opts.Aggregate == AggLast {
				row, err = e.reader.QueryLast(ctx, opts.Table, opts.Observation, span.Start, span.Stop)
			} else {
				row, err = e.reader.QueryAggregate(ctx, opts.Table, opts.Observation, opts.Aggregate, span.Start, span.Stop)
			}
			if err != nil {
				return SeriesResult{}, err
			}
			if row == nil {
				continue
			}
			if err := guard.observe(row.MinUnitSystem, row.MaxUnitSystem); err != nil {
				return SeriesResult{}, err
			}
			startVec = append(startVec, span.Start)
			stopVec = append(stopVec, span.Stop)
			v := row.Value
			dataVec = append(dataVec, &v)
		}
	} else {
		records, err := e.reader.ScanRaw(ctx, opts.Table, opts.Observation, opts.Timespan.Start, opts.Timespan.Stop)
		if err != nil {
			return SeriesResult{}, err
		}
		for _, rec := range records {
			if err := guard.observe(rec.UnitSystem, rec.UnitSystem); err != nil {
				return SeriesResult{}, err
			}
			startVec = append(startVec, rec.Timestamp-rec.IntervalSecs)
			stopVec = append(stopVec, rec.Timestamp)
			dataVec = append(dataVec, rec.Value)
		}
	}

	timeType, timeGroup := e.units.StandardUnit(guard.system, "dateTime", AggNone)
	dataType, dataGroup := e.units.StandardUnit(guard.system, opts.Observation, opts.Aggregate)

	return SeriesResult{
		StartTimes: TimeVector{Values: startVec, UnitType: timeType, UnitGroup: timeGroup},
		StopTimes:  TimeVector{Values: stopVec, UnitType: timeType, UnitGroup: timeGroup},
		Data:       ValueTuple{Values: dataVec, UnitType: dataType, UnitGroup: dataGroup},
	}, nil
}

// DenseSeries evaluates an aggregated request and gap-fills the result into
// the dense, plottable form: one value per interval from the request start,
// nil for empty buckets, truncated after the last populated bucket.
func (e *Engine) DenseSeries(ctx context.Context, opts Options) (DenseSeries, error) {
	if opts.Aggregate == AggNone {
		return DenseSeries{}, fmt.Errorf("%w: dense series requires aggregation", ErrBadAggregate)
	}

	res, err := e.Series(ctx, opts)
	if err != nil {
		return DenseSeries{}, err
	}

	points := make([]SparsePoint, 0, len(res.Data.Values))
	for i, v := range res.Data.Values {
		if v == nil {
			continue
		}
		points = append(points, SparsePoint{Start: res.StartTimes.Values[i], Value: *v})
	}

	return DenseSeries{
		Values: Densify(opts.Timespan.Start, opts.IntervalSecs, points),
		Unit:   res.Data.UnitType,
	}, nil
}
