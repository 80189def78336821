package store

import (
	"context"
	"sort"
	"sync"

	"github.com/cmatteri/wxplot/internal/plot"
)

// Memory is a concurrency-safe in-memory archive reader. It backs tests and
// local development; the production reader is Postgres. Each table holds a
// single observation column, so the column argument is not consulted.
type Memory struct {
	mu sync.RWMutex

	// key: table name, value: records sorted by timestamp
	tables map[string][]plot.RawRecord
}

// NewMemory creates an empty in-memory archive.
func NewMemory() *Memory {
	return &Memory{tables: make(map[string][]plot.RawRecord)}
}

// Add inserts a record into table, keeping the table sorted by timestamp.
func (m *Memory) Add(table string, rec plot.RawRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := append(m.tables[table], rec)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Timestamp < rows[j].Timestamp })
	m.tables[table] = rows
}

// QueryAggregate computes fn over records with startEx < timestamp <= stopInc
// and a non-nil value. Returns nil when no record qualifies.
func (m *Memory) QueryAggregate(ctx context.Context, table, column string, fn plot.AggregateType, startEx, stopInc int64) (*plot.AggregateRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var (
		n        int
		sum      float64
		min, max float64
		minUnit  int
		maxUnit  int
	)

	for _, rec := range m.tables[table] {
		if rec.Timestamp <= startEx || rec.Timestamp > stopInc || rec.Value == nil {
			continue
		}
		v := *rec.Value
		if n == 0 {
			min, max = v, v
			minUnit, maxUnit = rec.UnitSystem, rec.UnitSystem
		} else {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
			if rec.UnitSystem < minUnit {
				minUnit = rec.UnitSystem
			}
			if rec.UnitSystem > maxUnit {
				maxUnit = rec.UnitSystem
			}
		}
		sum += v
		n++
	}

	if n == 0 {
		return nil, nil
	}

	row := &plot.AggregateRow{MinUnitSystem: minUnit, MaxUnitSystem: maxUnit}
	switch fn {
	case plot.AggSum:
		row.Value = sum
	case plot.AggAvg:
		row.Value = sum / float64(n)
	case plot.AggMin:
		row.Value = min
	case plot.AggMax:
		row.Value = max
	case plot.AggCount:
		row.Value = float64(n)
	default:
		return nil, plot.ErrBadAggregate
	}
	return row, nil
}

// QueryLast returns the newest record in (startEx, stopInc] with a non-nil
// value, or nil when the bucket is empty.
func (m *Memory) QueryLast(ctx context.Context, table, column string, startEx, stopInc int64) (*plot.AggregateRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := m.tables[table]
	for i := len(rows) - 1; i >= 0; i-- {
		rec := rows[i]
		if rec.Timestamp <= startEx || rec.Timestamp > stopInc || rec.Value == nil {
			continue
		}
		return &plot.AggregateRow{
			Value:         *rec.Value,
			MinUnitSystem: rec.UnitSystem,
			MaxUnitSystem: rec.UnitSystem,
		}, nil
	}
	return nil, nil
}

// ScanRaw returns records with startInc <= timestamp <= stopInc in ascending
// timestamp order.
func (m *Memory) ScanRaw(ctx context.Context, table, column string, startInc, stopInc int64) ([]plot.RawRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []plot.RawRecord
	for _, rec := range m.tables[table] {
		if rec.Timestamp < startInc || rec.Timestamp > stopInc {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Stats returns the row count and newest timestamp in table.
func (m *Memory) Stats(ctx context.Context, table string) (ArchiveStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := m.tables[table]
	stats := ArchiveStats{Rows: int64(len(rows))}
	if len(rows) > 0 {
		stats.Latest = rows[len(rows)-1].Timestamp
	}
	return stats, nil
}
