package plot

import (
	"errors"
	"fmt"
)

var (
	// ErrIntervalRequired is returned when aggregation is requested without a
	// positive aggregation interval.
	ErrIntervalRequired = errors.New("aggregation interval required")

	// ErrBadAggregate is returned for an aggregate type outside the supported set.
	ErrBadAggregate = errors.New("unsupported aggregate type")
)

// UnitMismatchError reports that the unit system changed partway through the
// requested timespan. This indicates archive misconfiguration, not client
// misuse; the whole request is aborted and no partial result is returned.
type UnitMismatchError struct {
	Seen int
	Min  int
	Max  int
}

func (e *UnitMismatchError) Error() string {
	return fmt.Sprintf("unit system cannot change within a series (%d vs %d vs %d)", e.Seen, e.Min, e.Max)
}
