package plot

import "time"

// UnixSpans returns the fixed-length aggregation buckets covering ts:
// [start+k*interval, start+(k+1)*interval) for every k with
// start+k*interval < stop. The final bucket may extend past ts.Stop. An empty
// timespan yields no buckets.
func UnixSpans(ts TimeSpan, interval int64) []Span {
	if interval <= 0 || ts.Start >= ts.Stop {
		return nil
	}

	n := (ts.Stop - ts.Start + interval - 1) / interval
	spans := make([]Span, 0, n)
	for t := ts.Start; t < ts.Stop; t += interval {
		spans = append(spans, Span{Start: t, Stop: t + interval})
	}
	return spans
}

// LocalSpans returns aggregation buckets whose boundaries step by a constant
// wall-clock amount in loc, starting at ts.Start. Buckets have constant local
// duration but varying elapsed seconds across daylight-saving transitions: a
// nominal 3-hour bucket that crosses a spring-forward change covers only 2
// real hours. The final bucket is clipped to ts.Stop and zero-length buckets
// are dropped.
func LocalSpans(ts TimeSpan, interval int64, loc *time.Location) []Span {
	if interval <= 0 || ts.Start >= ts.Stop {
		return nil
	}
	if loc == nil {
		loc = time.Local
	}

	stop := time.Unix(ts.Stop, 0).In(loc)

	var spans []Span
	cur := time.Unix(ts.Start, 0).In(loc)
	for cur.Before(stop) {
		next := addWallClock(cur, interval, loc)
		if next.After(stop) {
			next = stop
		}
		if next.Unix() > cur.Unix() {
			spans = append(spans, Span{Start: cur.Unix(), Stop: next.Unix()})
		}
		cur = next
	}
	return spans
}

// addWallClock advances t by seconds of civil time in loc. time.Date
// normalizes the overflowed seconds field in local civil time, so stepping
// across a DST transition keeps the wall-clock boundary while the elapsed
// duration shrinks or grows.
func addWallClock(t time.Time, seconds int64, loc *time.Location) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()
	return time.Date(year, month, day, hour, min, sec+int(seconds), 0, loc)
}
