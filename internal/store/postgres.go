package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/cmatteri/wxplot/internal/plot"
)

// ErrStore wraps backing-store failures (connectivity, query errors). The
// core never retries; retry policy belongs to the request boundary.
var ErrStore = errors.New("archive store failure")

// aggFuncs maps the closed aggregate-type set to SQL function names. Only
// values from this map are ever interpolated into a statement.
var aggFuncs = map[plot.AggregateType]string{
	plot.AggSum:   "SUM",
	plot.AggAvg:   "AVG",
	plot.AggMin:   "MIN",
	plot.AggMax:   "MAX",
	plot.AggCount: "COUNT",
}

// DBConfig holds Postgres connection settings.
type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Connect opens and pings a Postgres connection.
func Connect(cfg DBConfig) (*sqlx.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("connect to archive database: %w", err)
	}
	return db, nil
}

// Postgres reads a weewx-style archive table: one row per archive interval
// with a dateTime epoch, a usUnits unit-system code, the recorded interval in
// seconds, and one column per observation.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres creates a Postgres reader over db.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

// aggregateSQL renders the bucket-aggregate statement. table and column must
// already be allowlist-validated; they are additionally quoted as identifiers
// so they can never extend the statement.
func aggregateSQL(table, column string, fn plot.AggregateType) (string, error) {
	sqlFn, ok := aggFuncs[fn]
	if !ok {
		return "", fmt.Errorf("%w: %q", plot.ErrBadAggregate, fn)
	}
	return fmt.Sprintf(
		`SELECT %s(%s), MIN("usUnits"), MAX("usUnits") FROM %s WHERE "dateTime" > $1 AND "dateTime" <= $2`,
		sqlFn, pq.QuoteIdentifier(column), pq.QuoteIdentifier(table)), nil
}

// lastSQL renders the newest-record statement for AggLast.
func lastSQL(table, column string) string {
	col := pq.QuoteIdentifier(column)
	return fmt.Sprintf(
		`SELECT %s, "usUnits" FROM %s WHERE "dateTime" > $1 AND "dateTime" <= $2 AND %s IS NOT NULL ORDER BY "dateTime" DESC LIMIT 1`,
		col, pq.QuoteIdentifier(table), col)
}

// rawSQL renders the un-aggregated scan statement.
func rawSQL(table, column string) string {
	return fmt.Sprintf(
		`SELECT "dateTime", %s, "usUnits", "interval" FROM %s WHERE "dateTime" >= $1 AND "dateTime" <= $2 ORDER BY "dateTime"`,
		pq.QuoteIdentifier(column), pq.QuoteIdentifier(table))
}

// QueryAggregate computes fn over column for records in (startEx, stopInc].
// A bucket with no contributing records returns nil.
func (p *Postgres) QueryAggregate(ctx context.Context, table, column string, fn plot.AggregateType, startEx, stopInc int64) (*plot.AggregateRow, error) {
	stmt, err := aggregateSQL(table, column, fn)
	if err != nil {
		return nil, err
	}

	var (
		value    sql.NullFloat64
		minUnits sql.NullInt64
		maxUnits sql.NullInt64
	)
	if err := p.db.QueryRowxContext(ctx, stmt, startEx, stopInc).Scan(&value, &minUnits, &maxUnits); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	// COUNT yields 0 for an empty bucket; a null usUnits extreme is the
	// reliable no-contributing-rows signal across all aggregate functions.
	if !value.Valid || !minUnits.Valid || !maxUnits.Valid {
		return nil, nil
	}
	return &plot.AggregateRow{
		Value:         value.Float64,
		MinUnitSystem: int(minUnits.Int64),
		MaxUnitSystem: int(maxUnits.Int64),
	}, nil
}

// QueryLast returns the newest record in (startEx, stopInc] where column is
// non-null, or nil when there is none.
func (p *Postgres) QueryLast(ctx context.Context, table, column string, startEx, stopInc int64) (*plot.AggregateRow, error) {
	var (
		value float64
		units int
	)
	err := p.db.QueryRowxContext(ctx, lastSQL(table, column), startEx, stopInc).Scan(&value, &units)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return &plot.AggregateRow{Value: value, MinUnitSystem: units, MaxUnitSystem: units}, nil
}

// ScanRaw returns the records in [startInc, stopInc] in timestamp order. The
// interval column holds the recorded archive interval in seconds.
func (p *Postgres) ScanRaw(ctx context.Context, table, column string, startInc, stopInc int64) ([]plot.RawRecord, error) {
	rows, err := p.db.QueryxContext(ctx, rawSQL(table, column), startInc, stopInc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	defer rows.Close()

	var records []plot.RawRecord
	for rows.Next() {
		var (
			ts       int64
			value    sql.NullFloat64
			units    int
			interval int64
		)
		if err := rows.Scan(&ts, &value, &units, &interval); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStore, err)
		}
		rec := plot.RawRecord{Timestamp: ts, UnitSystem: units, IntervalSecs: interval}
		if value.Valid {
			v := value.Float64
			rec.Value = &v
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return records, nil
}

// ArchiveStats summarizes one archive table.
type ArchiveStats struct {
	Rows   int64
	Latest int64
}

// Stats returns the row count and newest timestamp in table.
func (p *Postgres) Stats(ctx context.Context, table string) (ArchiveStats, error) {
	stmt := fmt.Sprintf(`SELECT COUNT(*), COALESCE(MAX("dateTime"), 0) FROM %s`, pq.QuoteIdentifier(table))

	var stats ArchiveStats
	if err := p.db.QueryRowxContext(ctx, stmt).Scan(&stats.Rows, &stats.Latest); err != nil {
		return ArchiveStats{}, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return stats, nil
}
