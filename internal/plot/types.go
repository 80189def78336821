package plot

// AggregateType identifies the aggregation applied to each interval.
type AggregateType string

const (
	// AggNone selects raw archive records instead of bucketed aggregates.
	AggNone  AggregateType = ""
	AggSum   AggregateType = "sum"
	AggAvg   AggregateType = "avg"
	AggMin   AggregateType = "min"
	AggMax   AggregateType = "max"
	AggCount AggregateType = "count"
	AggLast  AggregateType = "last"
)

// Valid reports whether t is one of the supported aggregate types.
func (t AggregateType) Valid() bool {
	switch t {
	case AggNone, AggSum, AggAvg, AggMin, AggMax, AggCount, AggLast:
		return true
	}
	return false
}

// TimeSpan is a [Start, Stop] range in unix epoch seconds, Start <= Stop.
type TimeSpan struct {
	Start int64
	Stop  int64
}

// Span is one aggregation bucket. When aggregating, a bucket is exclusive on
// the left and inclusive on the right: a record stamped exactly at Stop
// belongs to this bucket, not the next.
type Span struct {
	Start int64
	Stop  int64
}

// ValueTuple is a sequence of homogeneous observation values with the unit
// they are expressed in. Nil entries mean "no value".
type ValueTuple struct {
	Values    []*float64
	UnitType  string
	UnitGroup string
}

// TimeVector is a sequence of unix timestamps with their unit metadata.
type TimeVector struct {
	Values    []int64
	UnitType  string
	UnitGroup string
}

// SeriesResult holds the three index-aligned vectors produced by a series
// query: bucket start times, bucket stop times, and the data values.
type SeriesResult struct {
	StartTimes TimeVector
	StopTimes  TimeVector
	Data       ValueTuple
}

// DenseSeries is the client-facing artifact: one value per consecutive
// aggregation interval starting at the request start time, nil where a bucket
// had no data. The client reconstructs the time axis from start and interval.
type DenseSeries struct {
	Values []*float64 `json:"values"`
	Unit   string     `json:"unit"`
}

// AggregateRow is the result of aggregating one bucket. MinUnitSystem and
// MaxUnitSystem are the extremes of the unit-system codes among contributing
// records; they must agree for the bucket to be usable.
type AggregateRow struct {
	Value         float64
	MinUnitSystem int
	MaxUnitSystem int
}

// RawRecord is one un-aggregated archive row. IntervalSecs is the archive
// interval recorded with the row, used to reconstruct the span it covers.
type RawRecord struct {
	Timestamp    int64
	Value        *float64
	UnitSystem   int
	IntervalSecs int64
}

// Options describes one series request against a single archive table.
type Options struct {
	Table       string
	Observation string
	Timespan    TimeSpan

	// Aggregate and IntervalSecs select bucketed aggregation; AggNone selects
	// raw mode, in which IntervalSecs is ignored.
	Aggregate    AggregateType
	IntervalSecs int64

	// UnixIntervals selects fixed-length unix-time buckets instead of
	// local-wall-clock buckets.
	UnixIntervals bool
}
