package cache

import (
	"testing"
	"time"

	"github.com/cmatteri/wxplot/internal/plot"
)

func TestKeyCoversAllOptions(t *testing.T) {
	base := plot.Options{
		Observation:   "outTemp",
		Timespan:      plot.TimeSpan{Start: 0, Stop: 21600},
		Aggregate:     plot.AggAvg,
		IntervalSecs:  3600,
		UnixIntervals: true,
	}

	variants := []plot.Options{base, base, base, base, base}
	variants[0].Observation = "rain"
	variants[1].Timespan.Stop = 25200
	variants[2].Aggregate = plot.AggMax
	variants[3].IntervalSecs = 7200
	variants[4].UnixIntervals = false

	baseKey := Key("wx_binding", base)
	for i, v := range variants {
		if Key("wx_binding", v) == baseKey {
			t.Errorf("variant %d collides with the base key", i)
		}
	}
	if Key("other", base) == baseKey {
		t.Error("different bindings must not share keys")
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	c, err := New(64, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	v := 3.46
	series := plot.DenseSeries{Values: []*float64{nil, &v}, Unit: "degree_F"}

	c.Put("k", series)
	c.Wait()

	got, ok := c.Get("k")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.Unit != "degree_F" || len(got.Values) != 2 {
		t.Errorf("unexpected cached series: %+v", got)
	}
	if got.Values[0] != nil || got.Values[1] == nil || *got.Values[1] != 3.46 {
		t.Error("cached series must preserve the null/value distinction")
	}
}

func TestGetMiss(t *testing.T) {
	c, err := New(64, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	if _, ok := c.Get("absent"); ok {
		t.Fatal("expected cache miss")
	}
}
