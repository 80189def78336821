package plot

import "math"

// SparsePoint is one populated bucket: the bucket's start time and its
// aggregated value.
type SparsePoint struct {
	Start int64
	Value float64
}

// Densify converts a sparse series into a dense value array aligned to
// consecutive intervals beginning at start. points must be sorted ascending by
// Start, at most one per interval. Missing buckets before and between points
// become nil; values are rounded to 2 decimal places. The output stops at the
// last populated bucket: trailing empty buckets are truncated, so the result
// may be shorter than the full interval count. values[i] covers
// [start+i*interval, start+(i+1)*interval).
func Densify(start, interval int64, points []SparsePoint) []*float64 {
	if interval <= 0 {
		return nil
	}

	values := make([]*float64, 0, len(points))
	t := start
	for _, p := range points {
		for t < p.Start {
			values = append(values, nil)
			t += interval
		}
		v := round2(p.Value)
		values = append(values, &v)
		t += interval
	}
	return values
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
