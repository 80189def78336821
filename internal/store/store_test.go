package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cmatteri/wxplot/internal/plot"
)

func TestAggregateSQL(t *testing.T) {
	stmt, err := aggregateSQL("archive", "outTemp", plot.AggAvg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{`AVG("outTemp")`, `MIN("usUnits")`, `MAX("usUnits")`, `"dateTime" > $1`, `"dateTime" <= $2`} {
		if !strings.Contains(stmt, want) {
			t.Errorf("statement missing %q: %s", want, stmt)
		}
	}
}

func TestAggregateSQLQuotesIdentifiers(t *testing.T) {
	stmt, err := aggregateSQL(`arch"ive`, `out"Temp`, plot.AggSum)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Embedded quotes must be doubled, never close the identifier.
	if !strings.Contains(stmt, `"out""Temp"`) || !strings.Contains(stmt, `"arch""ive"`) {
		t.Errorf("identifiers not quoted safely: %s", stmt)
	}
}

func TestAggregateSQLRejectsOpenSet(t *testing.T) {
	for _, fn := range []plot.AggregateType{plot.AggNone, plot.AggLast, plot.AggregateType("median")} {
		if _, err := aggregateSQL("archive", "outTemp", fn); !errors.Is(err, plot.ErrBadAggregate) {
			t.Errorf("aggregateSQL(%q): expected ErrBadAggregate, got %v", fn, err)
		}
	}
}

func TestLastSQL(t *testing.T) {
	stmt := lastSQL("archive", "outTemp")
	for _, want := range []string{`"outTemp" IS NOT NULL`, `ORDER BY "dateTime" DESC`, `LIMIT 1`} {
		if !strings.Contains(stmt, want) {
			t.Errorf("statement missing %q: %s", want, stmt)
		}
	}
}

func TestRawSQL(t *testing.T) {
	stmt := rawSQL("archive", "rain")
	for _, want := range []string{`"dateTime" >= $1`, `"dateTime" <= $2`, `"interval"`, `ORDER BY "dateTime"`} {
		if !strings.Contains(stmt, want) {
			t.Errorf("statement missing %q: %s", want, stmt)
		}
	}
}

func addRow(m *Memory, table string, ts int64, value float64, unitSystem int, interval int64) {
	m.Add(table, plot.RawRecord{Timestamp: ts, Value: &value, UnitSystem: unitSystem, IntervalSecs: interval})
}

func TestMemoryQueryAggregateBoundaries(t *testing.T) {
	m := NewMemory()
	addRow(m, "archive", 1000, 1.0, 1, 300) // exactly at startEx: excluded
	addRow(m, "archive", 1500, 2.0, 1, 300)
	addRow(m, "archive", 2000, 4.0, 1, 300) // exactly at stopInc: included
	addRow(m, "archive", 2001, 100.0, 1, 300)

	row, err := m.QueryAggregate(context.Background(), "archive", "outTemp", plot.AggSum, 1000, 2000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row == nil {
		t.Fatal("expected a result")
	}
	if row.Value != 6.0 {
		t.Errorf("expected sum 6.0 over (1000, 2000], got %v", row.Value)
	}
}

func TestMemoryQueryAggregateFunctions(t *testing.T) {
	m := NewMemory()
	addRow(m, "archive", 10, 2.0, 1, 300)
	addRow(m, "archive", 20, 8.0, 1, 300)
	m.Add("archive", plot.RawRecord{Timestamp: 30, Value: nil, UnitSystem: 1, IntervalSecs: 300})

	tests := []struct {
		fn   plot.AggregateType
		want float64
	}{
		{plot.AggSum, 10.0},
		{plot.AggAvg, 5.0},
		{plot.AggMin, 2.0},
		{plot.AggMax, 8.0},
		{plot.AggCount, 2.0}, // null value does not count
	}
	for _, tt := range tests {
		row, err := m.QueryAggregate(context.Background(), "archive", "outTemp", tt.fn, 0, 100)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.fn, err)
		}
		if row == nil || row.Value != tt.want {
			t.Errorf("%s: expected %v, got %+v", tt.fn, tt.want, row)
		}
	}
}

func TestMemoryQueryAggregateEmptyBucket(t *testing.T) {
	m := NewMemory()
	addRow(m, "archive", 5000, 1.0, 1, 300)

	row, err := m.QueryAggregate(context.Background(), "archive", "outTemp", plot.AggAvg, 0, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row != nil {
		t.Fatalf("expected absent result for empty bucket, got %+v", row)
	}
}

func TestMemoryQueryAggregateUnitExtremes(t *testing.T) {
	m := NewMemory()
	addRow(m, "archive", 10, 1.0, 1, 300)
	addRow(m, "archive", 20, 2.0, 16, 300)

	row, err := m.QueryAggregate(context.Background(), "archive", "outTemp", plot.AggAvg, 0, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row.MinUnitSystem != 1 || row.MaxUnitSystem != 16 {
		t.Errorf("expected unit extremes (1, 16), got (%d, %d)", row.MinUnitSystem, row.MaxUnitSystem)
	}
}

func TestMemoryQueryLast(t *testing.T) {
	m := NewMemory()
	addRow(m, "archive", 10, 1.0, 1, 300)
	addRow(m, "archive", 20, 2.0, 1, 300)
	m.Add("archive", plot.RawRecord{Timestamp: 30, Value: nil, UnitSystem: 1, IntervalSecs: 300})

	row, err := m.QueryLast(context.Background(), "archive", "outTemp", 0, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row == nil || row.Value != 2.0 {
		t.Errorf("expected newest non-null value 2.0, got %+v", row)
	}
}

func TestMemoryScanRawInclusive(t *testing.T) {
	m := NewMemory()
	addRow(m, "archive", 400, 1.0, 1, 300)
	addRow(m, "archive", 500, 10.0, 1, 100)
	addRow(m, "archive", 600, 3.0, 1, 300)

	records, err := m.ScanRaw(context.Background(), "archive", "outTemp", 400, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records in [400, 500], got %d", len(records))
	}
	if records[1].Timestamp != 500 || records[1].IntervalSecs != 100 {
		t.Errorf("unexpected record: %+v", records[1])
	}
}

func TestMemoryStats(t *testing.T) {
	m := NewMemory()
	addRow(m, "archive", 100, 1.0, 1, 300)
	addRow(m, "archive", 200, 2.0, 1, 300)

	stats, err := m.Stats(context.Background(), "archive")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Rows != 2 || stats.Latest != 200 {
		t.Errorf("expected 2 rows with latest 200, got %+v", stats)
	}
}
