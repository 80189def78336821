package plot

import "testing"

// checkDense compares a dense value sequence against expectations where nil
// means "no data".
func checkDense(t *testing.T, got []*float64, want []*float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d values, got %d: %v", len(want), len(got), fmtDense(got))
	}
	for i := range want {
		switch {
		case want[i] == nil && got[i] == nil:
		case want[i] == nil || got[i] == nil:
			t.Errorf("value %d: expected %v, got %v", i, fmtVal(want[i]), fmtVal(got[i]))
		case *want[i] != *got[i]:
			t.Errorf("value %d: expected %v, got %v", i, *want[i], *got[i])
		}
	}
}

func fmtDense(vs []*float64) []interface{} {
	out := make([]interface{}, len(vs))
	for i, v := range vs {
		out[i] = fmtVal(v)
	}
	return out
}

func fmtVal(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func fptr(v float64) *float64 { return &v }

func TestDensifyFillsGapsAndTruncatesTail(t *testing.T) {
	points := []SparsePoint{
		{Start: 7200, Value: 3.456},
		{Start: 18000, Value: 7.001},
	}

	got := Densify(0, 3600, points)

	checkDense(t, got, []*float64{nil, nil, fptr(3.46), nil, nil, fptr(7.00)})
}

func TestDensifyDenseInputUnchanged(t *testing.T) {
	points := []SparsePoint{
		{Start: 0, Value: 1.5},
		{Start: 300, Value: 2.25},
		{Start: 600, Value: 3.75},
	}

	got := Densify(0, 300, points)

	checkDense(t, got, []*float64{fptr(1.5), fptr(2.25), fptr(3.75)})
}

func TestDensifyRoundsToTwoDecimals(t *testing.T) {
	got := Densify(0, 60, []SparsePoint{{Start: 0, Value: 1.005}, {Start: 60, Value: -2.339}})

	checkDense(t, got, []*float64{fptr(1.0), fptr(-2.34)})
}

func TestDensifyNoPoints(t *testing.T) {
	if got := Densify(0, 60, nil); len(got) != 0 {
		t.Fatalf("expected empty output, got %v", fmtDense(got))
	}
}

func TestDensifyOutputEndsAtLastPoint(t *testing.T) {
	// The last populated bucket is index 4; the output must not be padded to
	// the full timespan.
	points := []SparsePoint{{Start: 1200, Value: 9.0}}

	got := Densify(0, 300, points)

	if len(got) != 5 {
		t.Fatalf("expected 5 values, got %d", len(got))
	}
	if got[4] == nil || *got[4] != 9.0 {
		t.Errorf("expected final value 9.0, got %v", fmtVal(got[4]))
	}
	for i := 0; i < 4; i++ {
		if got[i] != nil {
			t.Errorf("value %d: expected nil, got %v", i, *got[i])
		}
	}
}
